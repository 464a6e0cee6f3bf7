// 指示: miu200521358
package scene

import (
	"bytes"
	"fmt"

	"github.com/minio/highwayhash"
)

var hashKey = []byte("mu_armature_cleanup_scene_hash_k")

// Hash は階層・名前・ローカル姿勢・コンポーネント参照 (パス表現) から構造ハッシュを求める。
// NodeID 自体は含めないため、同じ構造を再構築したグラフは同じ値になる。
func (g *Graph) Hash() (uint64, error) {
	hash, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	g.Walk(NilNode, func(id NodeID, depth int) bool {
		n, _ := g.Node(id)
		fmt.Fprintf(&buf, "%d|%s|%s|%s|%s\n", depth, n.name,
			n.Local.Translation, n.Local.Rotation, n.Local.Scale)
		for _, c := range n.components {
			fmt.Fprintf(&buf, "  %s", c.Kind())
			for _, ref := range References(c) {
				fmt.Fprintf(&buf, " %s=%s", ref.Field, g.Path(ref.Node))
			}
			buf.WriteByte('\n')
		}
		return true
	})

	if _, err := hash.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return hash.Sum64(), nil
}
