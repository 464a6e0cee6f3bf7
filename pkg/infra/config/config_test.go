// 指示: miu200521358
package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/shared/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestLoadEmptyURLReturnsDefault(t *testing.T) {
	cfg, err := Load(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "Armature", cfg.ArmatureName)
	assert.True(t, cfg.RequireAvatarDescriptor)
	assert.True(t, cfg.ClearSelfReferences)
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleanup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("armatureName: Root\nclearSelfReferences: false\ncopyKinds: [VRCPhysBone, ' MeshRenderer ']\nlogLevel: debug\n"), 0o644))

	cfg, err := Load(context.Background(), afs.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "Root", cfg.ArmatureName)
	assert.False(t, cfg.ClearSelfReferences)
	assert.True(t, cfg.KeepWorldTransform)
	assert.Equal(t, logging.LOG_LEVEL_DEBUG, cfg.Level())

	options := cfg.CleanupOptions()
	assert.Equal(t, []scene.ComponentKind{scene.KIND_PHYS_BONE, "MeshRenderer"}, options.CopyKinds)
	assert.False(t, options.ClearSelfReferences)
}

func TestLoadRejectsUnknownKeyAndMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("armatureNmae: Root\n"), 0o644))

	_, err := Load(context.Background(), nil, path)
	assert.Error(t, err)

	_, err = Load(context.Background(), nil, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Language = "en"
	cfg.CopyKinds = []string{"VRCStation"}

	require.NoError(t, Save(context.Background(), nil, path, cfg))
	loaded, err := Load(context.Background(), nil, path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidateRejectsPathArmatureName(t *testing.T) {
	cfg := Default()
	cfg.ArmatureName = "Avatar/Armature"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Language = "fr"
	assert.Error(t, cfg.Validate())
}
