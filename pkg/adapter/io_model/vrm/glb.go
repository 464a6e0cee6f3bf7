// 指示: miu200521358
package vrm

import (
	"bytes"
	"encoding/binary"
	"encoding/json"

	"github.com/miu200521358/mu_armature_cleanup/pkg/adapter/io_common"
)

const (
	glbHeaderLength   = 12
	glbChunkHeadSize  = 8
	glbMagic          = 0x46546C67
	glbVersion        = 2
	glbJSONChunkType  = 0x4E4F534A
	glbBINChunkType   = 0x004E4942
	glbMinValidLength = glbHeaderLength + glbChunkHeadSize
)

// parseGLBChunks はGLBバイナリからJSON/BINチャンクを取り出す。
func parseGLBChunks(sourceBytes []byte) ([]byte, []byte, error) {
	if len(sourceBytes) < glbMinValidLength {
		return nil, nil, io_common.NewIoParseFailed("GLBヘッダが不足しています", nil)
	}
	if binary.LittleEndian.Uint32(sourceBytes[0:4]) != glbMagic {
		return nil, nil, io_common.NewIoParseFailed("GLBマジックが不正です", nil)
	}
	if version := binary.LittleEndian.Uint32(sourceBytes[4:8]); version != glbVersion {
		return nil, nil, io_common.NewIoFormatNotSupported("GLBバージョンが未対応です: %d", nil, version)
	}

	totalLength := int(binary.LittleEndian.Uint32(sourceBytes[8:12]))
	if totalLength <= 0 || totalLength > len(sourceBytes) {
		return nil, nil, io_common.NewIoParseFailed("GLB全体長が不正です", nil)
	}

	var jsonChunk []byte
	var binChunk []byte
	offset := glbHeaderLength
	for offset+glbChunkHeadSize <= totalLength {
		chunkLength := int(binary.LittleEndian.Uint32(sourceBytes[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(sourceBytes[offset+4 : offset+8])
		chunkStart := offset + glbChunkHeadSize
		chunkEnd := chunkStart + chunkLength
		if chunkLength < 0 || chunkEnd > totalLength {
			return nil, nil, io_common.NewIoParseFailed("GLBチャンク長が不正です", nil)
		}
		chunkBytes := sourceBytes[chunkStart:chunkEnd]
		switch chunkType {
		case glbJSONChunkType:
			if jsonChunk == nil {
				jsonChunk = append([]byte(nil), chunkBytes...)
			}
		case glbBINChunkType:
			if binChunk == nil {
				binChunk = append([]byte(nil), chunkBytes...)
			}
		}
		offset = chunkEnd
	}
	if len(jsonChunk) == 0 {
		return nil, nil, io_common.NewIoParseFailed("GLB JSONチャンクが見つかりません", nil)
	}
	return jsonChunk, binChunk, nil
}

// decodeDocument はJSONチャンクを数値精度を保ったまま汎用マップへ展開する。
func decodeDocument(jsonChunk []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonChunk))
	decoder.UseNumber()
	doc := map[string]any{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, io_common.NewIoParseFailed("GLB JSONチャンクの解析に失敗しました", err)
	}
	return doc, nil
}

// encodeGLB はJSON文書とBINチャンクからGLBバイナリを組み立てる。
func encodeGLB(doc map[string]any, binChunk []byte) ([]byte, error) {
	var jsonBuf bytes.Buffer
	encoder := json.NewEncoder(&jsonBuf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return nil, io_common.NewIoSaveFailed("GLB JSONチャンクの生成に失敗しました", err)
	}
	jsonBytes := bytes.TrimRight(jsonBuf.Bytes(), "\n")
	jsonBytes = padChunk(jsonBytes, ' ')
	binBytes := padChunk(append([]byte(nil), binChunk...), 0x00)

	totalLength := glbHeaderLength + glbChunkHeadSize + len(jsonBytes)
	if len(binBytes) > 0 {
		totalLength += glbChunkHeadSize + len(binBytes)
	}

	out := make([]byte, 0, totalLength)
	out = binary.LittleEndian.AppendUint32(out, glbMagic)
	out = binary.LittleEndian.AppendUint32(out, glbVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(totalLength))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(jsonBytes)))
	out = binary.LittleEndian.AppendUint32(out, glbJSONChunkType)
	out = append(out, jsonBytes...)
	if len(binBytes) > 0 {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(binBytes)))
		out = binary.LittleEndian.AppendUint32(out, glbBINChunkType)
		out = append(out, binBytes...)
	}
	return out, nil
}

// padChunk はチャンク長を4バイト境界へ揃える。
func padChunk(chunk []byte, pad byte) []byte {
	padSize := (4 - (len(chunk) % 4)) % 4
	if padSize > 0 {
		chunk = append(chunk, bytes.Repeat([]byte{pad}, padSize)...)
	}
	return chunk
}
