// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const decomposeEpsilon = 1e-12

// Mat4 は列優先の4x4行列を表す。
type Mat4 mgl64.Mat4

// NewMat4 は単位行列を生成する。
func NewMat4() Mat4 {
	return Mat4(mgl64.Ident4())
}

// Muled は行列積 (m * other) を返す。
func (m Mat4) Muled(other Mat4) Mat4 {
	return Mat4(mgl64.Mat4(m).Mul4(mgl64.Mat4(other)))
}

// Inverted は逆行列を返す。特異行列の場合はゼロ行列となる。
func (m Mat4) Inverted() Mat4 {
	return Mat4(mgl64.Mat4(m).Inv())
}

// Translation は平行移動成分を返す。
func (m Mat4) Translation() Vec3 {
	return NewVec3(m[12], m[13], m[14])
}

// MulVec3 は点として変換した結果を返す。
func (m Mat4) MulVec3(v Vec3) Vec3 {
	r := mgl64.Mat4(m).Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 1})
	return NewVec3(r[0], r[1], r[2])
}

// NearEquals は各要素が許容誤差内で一致するか判定する。
func (m Mat4) NearEquals(other Mat4, epsilon float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > epsilon {
			return false
		}
	}
	return true
}

// Transform はローカル姿勢 (移動・回転・スケール) を表す。
type Transform struct {
	Translation Vec3
	Rotation    Quaternion
	Scale       Vec3
}

// NewTransform は恒等姿勢を生成する。
func NewTransform() Transform {
	return Transform{
		Translation: ZERO_VEC3,
		Rotation:    NewQuaternion(),
		Scale:       ONE_VEC3,
	}
}

// ToMat4 は T * R * S の行列へ変換する。
func (t Transform) ToMat4() Mat4 {
	translation := mgl64.Translate3D(t.Translation.X, t.Translation.Y, t.Translation.Z)
	rotation := t.Rotation.Normalized().Mat4()
	scale := mgl64.Scale3D(t.Scale.X, t.Scale.Y, t.Scale.Z)
	return Mat4(translation.Mul4(rotation).Mul4(scale))
}

// NearEquals は姿勢が許容誤差内で一致するか判定する。
func (t Transform) NearEquals(other Transform, epsilon float64) bool {
	return t.Translation.NearEquals(other.Translation, epsilon) &&
		t.Rotation.NearEquals(other.Rotation, epsilon) &&
		t.Scale.NearEquals(other.Scale, epsilon)
}

// NewTransformFromMat4 は行列を移動・回転・スケールへ分解する。
// せん断成分は表現できないため近似となる。
func NewTransformFromMat4(m Mat4) Transform {
	src := mgl64.Mat4(m)
	sx := src.Col(0).Vec3().Len()
	sy := src.Col(1).Vec3().Len()
	sz := src.Col(2).Vec3().Len()
	if src.Det() < 0 {
		sx = -sx
	}

	rot := mgl64.Ident4()
	if math.Abs(sx) > decomposeEpsilon && math.Abs(sy) > decomposeEpsilon && math.Abs(sz) > decomposeEpsilon {
		scales := [3]float64{sx, sy, sz}
		for c := 0; c < 3; c++ {
			col := src.Col(c)
			rot.SetCol(c, mgl64.Vec4{col[0] / scales[c], col[1] / scales[c], col[2] / scales[c], 0})
		}
	}

	return Transform{
		Translation: NewVec3(m[12], m[13], m[14]),
		Rotation:    Quaternion{Quat: mgl64.Mat4ToQuat(rot).Normalize()},
		Scale:       NewVec3(sx, sy, sz),
	}
}
