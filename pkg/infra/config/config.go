// 指示: miu200521358
// Package config はアーマチュア整理の設定ファイルを扱う。
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/logging"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/minteractor"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

const configFileMode = 0o644

// Config は設定ファイルの内容を表す。
type Config struct {
	ArmatureName            string   `yaml:"armatureName"`
	RequireAvatarDescriptor bool     `yaml:"requireAvatarDescriptor"`
	KeepWorldTransform      bool     `yaml:"keepWorldTransform"`
	ClearSelfReferences     bool     `yaml:"clearSelfReferences"`
	CopyKinds               []string `yaml:"copyKinds,omitempty"`
	LogLevel                string   `yaml:"logLevel"`
	Language                string   `yaml:"language"`
	Overwrite               bool     `yaml:"overwrite"`
}

// Default は既定の設定を返す。
func Default() *Config {
	options := minteractor.DefaultCleanupOptions()
	return &Config{
		ArmatureName:            options.ArmatureName,
		RequireAvatarDescriptor: options.RequireAvatarDescriptor,
		KeepWorldTransform:      options.KeepWorldTransform,
		ClearSelfReferences:     options.ClearSelfReferences,
		LogLevel:                logging.LOG_LEVEL_INFO.String(),
		Language:                "ja",
		Overwrite:               true,
	}
}

// Load は URL (ローカルパス可) から設定を読み込む。未指定の項目は既定値のまま。
func Load(ctx context.Context, fs afs.Service, url string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(url) == "" {
		return cfg, nil
	}
	if fs == nil {
		fs = afs.New()
	}

	exists, err := fs.Exists(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの確認に失敗しました: %s: %w", url, err)
	}
	if !exists {
		return nil, fmt.Errorf("設定ファイルが見つかりません: %s", url)
	}
	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %s: %w", url, err)
	}
	if err := Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルの解析に失敗しました: %s: %w", url, err)
	}
	return cfg, nil
}

// Decode は YAML を cfg へ上書きで読み込む。未知のキーはエラーとする。
func Decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

// Save は設定を URL へ書き出す。
func Save(ctx context.Context, fs afs.Service, url string, cfg *Config) error {
	if fs == nil {
		fs = afs.New()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return fs.Upload(ctx, url, configFileMode, bytes.NewReader(data))
}

// Validate は設定値を検証する。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ArmatureName) == "" {
		return errors.New("armatureName が空です")
	}
	if strings.Contains(c.ArmatureName, "/") {
		return fmt.Errorf("armatureName にパス区切りは使えません: %s", c.ArmatureName)
	}
	switch strings.ToLower(c.Language) {
	case "ja", "en":
	default:
		return fmt.Errorf("language が未対応です: %s", c.Language)
	}
	return nil
}

// CleanupOptions は整理処理の設定へ変換する。
func (c *Config) CleanupOptions() minteractor.CleanupOptions {
	kinds := make([]scene.ComponentKind, 0, len(c.CopyKinds))
	for _, kind := range c.CopyKinds {
		if trimmed := strings.TrimSpace(kind); trimmed != "" {
			kinds = append(kinds, scene.ComponentKind(trimmed))
		}
	}
	return minteractor.CleanupOptions{
		ArmatureName:            c.ArmatureName,
		RequireAvatarDescriptor: c.RequireAvatarDescriptor,
		KeepWorldTransform:      c.KeepWorldTransform,
		ClearSelfReferences:     c.ClearSelfReferences,
		CopyKinds:               kinds,
	}
}

// Level はログレベルを返す。
func (c *Config) Level() logging.LogLevel {
	return logging.ParseLogLevel(c.LogLevel)
}
