// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/model"
	"github.com/miu200521358/mu_armature_cleanup/pkg/domain/scene"
	"github.com/miu200521358/mu_armature_cleanup/pkg/usecase/port/moutput"
)

// DEFAULT_COPY_KINDS は重複ノードから統合先へ複製するコンポーネント種別の既定値。
var DEFAULT_COPY_KINDS = []scene.ComponentKind{
	scene.KIND_AIM_CONSTRAINT,
	"Animation",
	"Animator",
	"AudioSource",
	"Camera",
	"Cloth",
	"Collider",
	"FlareLayer",
	"CharacterJoint",
	"ConfigurableJoint",
	"HingeJoint",
	"FixedJoint",
	"SpringJoint",
	"Light",
	"LineRenderer",
	scene.KIND_LOOK_AT_CONSTRAINT,
	"MeshFilter",
	"MeshRenderer",
	scene.KIND_PARENT_CONSTRAINT,
	"ParticleSystem",
	"ParticleSystemRenderer",
	scene.KIND_POSITION_CONSTRAINT,
	"Rigidbody",
	scene.KIND_ROTATION_CONSTRAINT,
	scene.KIND_SCALE_CONSTRAINT,
	"TrailRenderer",
	scene.KIND_CONTACT_RECEIVER,
	scene.KIND_CONTACT_SENDER,
	scene.KIND_PHYS_BONE,
	scene.KIND_PHYS_BONE_COLLIDER,
	scene.KIND_STATION,
	"VRCSpatialAudioSource",
}

// ComponentMergeOptions はコンポーネント複製の設定を表す。
type ComponentMergeOptions struct {
	// CopyKinds は複製対象の種別。空の場合は DEFAULT_COPY_KINDS。
	CopyKinds []scene.ComponentKind
	// ClearSelfReferences が true の場合、複製元ノード自身を指すルート参照を空にする。
	ClearSelfReferences bool
}

// copyKindSet は複製対象種別の集合を返す。
func (o ComponentMergeOptions) copyKindSet() map[scene.ComponentKind]struct{} {
	kinds := o.CopyKinds
	if len(kinds) == 0 {
		kinds = DEFAULT_COPY_KINDS
	}
	set := make(map[scene.ComponentKind]struct{}, len(kinds))
	for _, kind := range kinds {
		set[kind] = struct{}{}
	}
	return set
}

// MergeSummary はコンポーネント複製の結果を表す。
type MergeSummary struct {
	Copied               int
	Skipped              int
	SelfReferenceCleared int
	Copies               []scene.AttachedComponent
	Warnings             []model.CleanupWarning
}

// MergeComponents は重複ノードのコンポーネントを値複製して統合先へ追加する。
// 複製元は重複ノードに残し、統合先の既存コンポーネントは置き換えない。
func MergeComponents(
	graph moutput.ISceneGraph,
	tx moutput.ITransaction,
	dups *DuplicateMap,
	opts ComponentMergeOptions,
) MergeSummary {
	summary := MergeSummary{
		Copies:   make([]scene.AttachedComponent, 0),
		Warnings: make([]model.CleanupWarning, 0),
	}
	copyKinds := opts.copyKindSet()

	for _, pair := range dups.Pairs() {
		survivor := dups.Survivor(pair.Duplicate)
		sourcePath := graph.Path(pair.Duplicate)
		targetPath := graph.Path(survivor)

		for _, component := range graph.Components(pair.Duplicate) {
			if _, ok := copyKinds[component.Kind()]; !ok {
				summary.Skipped++
				logMergeDebug("コンポーネント複製対象外: %s/%s", sourcePath, component.Kind())
				continue
			}

			if tx != nil {
				tx.RecordObject(survivor, "Copy "+string(component.Kind()))
			}
			copied, err := graph.CopyComponent(component, survivor)
			if err != nil {
				logMergeWarn("コンポーネント複製に失敗しました: %s/%s -> %s err=%v", sourcePath, component.Kind(), targetPath, err)
				summary.Warnings = append(summary.Warnings, model.CleanupWarning{
					ID:      model.CleanupWarningComponentCopyFailed,
					Path:    sourcePath + "/" + string(component.Kind()),
					Message: fmt.Sprintf("複製先=%s: %v", targetPath, err),
				})
				continue
			}

			if rooted, ok := copied.(scene.Rooted); ok && opts.ClearSelfReferences && rooted.Root() == pair.Duplicate {
				rooted.SetRoot(scene.NilNode)
				summary.SelfReferenceCleared++
				logMergeDebug("自己参照ルートを解除: %s/%s", targetPath, copied.Kind())
			}

			summary.Copied++
			summary.Copies = append(summary.Copies, scene.AttachedComponent{Node: survivor, Component: copied})
			logMergeInfo("コンポーネント複製: %s/%s -> %s", sourcePath, component.Kind(), targetPath)
		}
	}
	return summary
}
