// 指示: miu200521358
package vrm

import (
	"encoding/json"
	"strconv"
	"strings"
)

// asMap はJSON値をオブジェクトとして返す。
func asMap(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	return m, ok
}

// asSlice はJSON値を配列として返す。
func asSlice(value any) ([]any, bool) {
	s, ok := value.([]any)
	return s, ok
}

// asIndex はJSON値を非負の整数インデックスとして返す。
func asIndex(value any) (int, bool) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < 0 {
			return 0, false
		}
		return int(n), true
	case float64:
		if v < 0 || v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, v >= 0
	default:
		return 0, false
	}
}

// asFloat はJSON値を実数として返す。
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// asFloats はJSON配列を実数スライスとして返す。
func asFloats(value any) ([]float64, bool) {
	values, ok := asSlice(value)
	if !ok {
		return nil, false
	}
	floats := make([]float64, len(values))
	for i, v := range values {
		f, ok := asFloat(v)
		if !ok {
			return nil, false
		}
		floats[i] = f
	}
	return floats, true
}

// lookup はキー列をたどってJSON値を返す。
func lookup(root any, keys ...string) (any, bool) {
	current := root
	for _, key := range keys {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// escapePointerToken はJSONポインタのトークンをエスケープする。
func escapePointerToken(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

// unescapePointerToken はJSONポインタのトークンを復元する。
func unescapePointerToken(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
}

// pointerOf はトークン列からJSONポインタを組み立てる。
func pointerOf(tokens ...any) string {
	var b strings.Builder
	for _, token := range tokens {
		b.WriteByte('/')
		switch t := token.(type) {
		case int:
			b.WriteString(strconv.Itoa(t))
		case string:
			b.WriteString(escapePointerToken(t))
		}
	}
	return b.String()
}

// resolvePointer はJSONポインタの親コンテナと末尾トークンを返す。
func resolvePointer(root any, pointer string) (any, string, bool) {
	if !strings.HasPrefix(pointer, "/") {
		return nil, "", false
	}
	tokens := strings.Split(pointer[1:], "/")
	current := root
	for _, raw := range tokens[:len(tokens)-1] {
		token := unescapePointerToken(raw)
		switch c := current.(type) {
		case map[string]any:
			next, ok := c[token]
			if !ok {
				return nil, "", false
			}
			current = next
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(c) {
				return nil, "", false
			}
			current = c[index]
		default:
			return nil, "", false
		}
	}
	return current, unescapePointerToken(tokens[len(tokens)-1]), true
}

// getPointer はJSONポインタの値を返す。
func getPointer(root any, pointer string) (any, bool) {
	parent, last, ok := resolvePointer(root, pointer)
	if !ok {
		return nil, false
	}
	switch c := parent.(type) {
	case map[string]any:
		v, ok := c[last]
		return v, ok
	case []any:
		index, err := strconv.Atoi(last)
		if err != nil || index < 0 || index >= len(c) {
			return nil, false
		}
		return c[index], true
	}
	return nil, false
}

// setPointer はJSONポインタの位置へ値を設定する。親が存在しない場合は false。
func setPointer(root any, pointer string, value any) bool {
	parent, last, ok := resolvePointer(root, pointer)
	if !ok {
		return false
	}
	switch c := parent.(type) {
	case map[string]any:
		c[last] = value
		return true
	case []any:
		index, err := strconv.Atoi(last)
		if err != nil || index < 0 || index >= len(c) {
			return false
		}
		c[index] = value
		return true
	}
	return false
}

// deletePointer はJSONポインタの位置のキーを削除する。配列要素は削除しない。
func deletePointer(root any, pointer string) bool {
	parent, last, ok := resolvePointer(root, pointer)
	if !ok {
		return false
	}
	if c, ok := parent.(map[string]any); ok {
		delete(c, last)
		return true
	}
	return false
}
