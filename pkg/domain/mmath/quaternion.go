// 指示: miu200521358
package mmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quaternion は回転を表す。
type Quaternion struct {
	mgl64.Quat
}

// NewQuaternion は単位回転を生成する。
func NewQuaternion() Quaternion {
	return Quaternion{Quat: mgl64.QuatIdent()}
}

// NewQuaternionByValues は x, y, z, w の順で回転を生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{Quat: mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}}
}

// NewQuaternionFromAxisAngle は軸と角度(ラジアン)から回転を生成する。
func NewQuaternionFromAxisAngle(axis Vec3, rad float64) Quaternion {
	n := axis.Normalized()
	return Quaternion{Quat: mgl64.QuatRotate(rad, mgl64.Vec3{n.X, n.Y, n.Z})}
}

// Normalized は正規化した回転を返す。ゼロ回転は単位回転とみなす。
func (q Quaternion) Normalized() Quaternion {
	if q.Len() == 0 {
		return NewQuaternion()
	}
	return Quaternion{Quat: q.Normalize()}
}

// Muled は回転の合成結果を返す。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{Quat: q.Mul(other.Quat)}
}

// Inverted は逆回転を返す。
func (q Quaternion) Inverted() Quaternion {
	return Quaternion{Quat: q.Inverse()}
}

// ToMat4 は回転行列へ変換する。
func (q Quaternion) ToMat4() Mat4 {
	return Mat4(q.Mat4())
}

// Rotated はベクトルを回転させた結果を返す。
func (q Quaternion) Rotated(v Vec3) Vec3 {
	r := q.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
	return NewVec3(r[0], r[1], r[2])
}

// NearEquals は同じ回転を表すか判定する。q と -q は同一回転とみなす。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	dot := q.Dot(other.Quat)
	return math.Abs(math.Abs(dot)-1.0) <= epsilon
}

// Slice は要素を [x, y, z, w] の順で返す。
func (q Quaternion) Slice() []float64 {
	return []float64{q.V[0], q.V[1], q.V[2], q.W}
}

// String は表示用文字列を返す。
func (q Quaternion) String() string {
	return fmt.Sprintf("[x=%.5f, y=%.5f, z=%.5f, w=%.5f]", q.V[0], q.V[1], q.V[2], q.W)
}
