// 指示: miu200521358
// Package mmath はボーン姿勢計算用のベクトル・回転・行列型を提供する。
package mmath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

var (
	// ZERO_VEC3 はゼロベクトル。
	ZERO_VEC3 = Vec3{}
	// ONE_VEC3 は全要素1のベクトル。
	ONE_VEC3 = Vec3{Vec: r3.Vec{X: 1, Y: 1, Z: 1}}
)

// NewVec3 は要素を指定してVec3を生成する。
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// MuledScalar はスカラー倍の結果を返す。
func (v Vec3) MuledScalar(s float64) Vec3 {
	return Vec3{Vec: r3.Scale(s, v.Vec)}
}

// Length はベクトル長を返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// Normalized は正規化したベクトルを返す。長さ0の場合はそのまま返す。
func (v Vec3) Normalized() Vec3 {
	if v.Length() == 0 {
		return v
	}
	return Vec3{Vec: r3.Unit(v.Vec)}
}

// NearEquals は各要素が許容誤差内で一致するか判定する。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// Slice は要素を [x, y, z] の順で返す。
func (v Vec3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// String は表示用文字列を返す。
func (v Vec3) String() string {
	return fmt.Sprintf("[x=%.5f, y=%.5f, z=%.5f]", v.X, v.Y, v.Z)
}
