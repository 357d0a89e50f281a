package ugraph

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"prefab-bundler/ubundle/uclass"
	"prefab-bundler/ubundle/uobject"
)

func classIDs(arena *uobject.Arena) []uclass.ID {
	return lo.Map(
		arena.Objects(),
		func(o uobject.Object, _ int) uclass.ID {
			return o.ClassID()
		},
	)
}

func TestNewPrefab(t *testing.T) {
	prefab := NewPrefab("Object")

	assert.Equal(t, StateInitial, prefab.State())
	assert.Equal(t, []uclass.ID{uclass.IDGameObject, uclass.IDTransform}, classIDs(prefab.Arena()))
	assert.Equal(t, "assets/object.prefab", prefab.ContainerPath())
	assert.Same(t, prefab.Root(), prefab.Transform().GameObject.Target())
	assert.Same(t, prefab.Transform(), prefab.Root().Components[0].Component.Target())
}

func TestPrefab_Stabilize(t *testing.T) {
	prefab := NewPrefab("object")
	script := uobject.NewMonoScript("Mod", "Sigil", "Mod.dll")
	require.NoError(t, prefab.AddComponent(uobject.NewMonoBehaviour(script)))
	assert.Equal(t, StateProcessing, prefab.State())

	inserted, err := prefab.AppendUnresolved()
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	inserted, err = prefab.AppendUnresolved()
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	require.NoError(t, prefab.Stabilize())
	assert.Equal(t, StateStable, prefab.State())
	assert.Equal(
		t,
		[]uclass.ID{uclass.IDGameObject, uclass.IDTransform, uclass.IDMonoBehaviour, uclass.IDMonoScript},
		classIDs(prefab.Arena()),
	)

	for _, o := range prefab.Arena().Objects() {
		for _, r := range o.OutgoingReferences() {
			if !r.IsNull() {
				assert.True(t, r.IsBound())
			}
		}
	}
}

func TestPrefab_AppendUnresolvedIsIdempotentOnceStable(t *testing.T) {
	prefab := NewPrefab("object")
	require.NoError(t, prefab.AddComponent(uobject.NewComponent(65, []byte{})))
	require.NoError(t, prefab.Stabilize())
	before := prefab.Arena().Len()

	for i := 0; i < 3; i++ {
		inserted, err := prefab.AppendUnresolved()
		require.NoError(t, err)
		assert.Equal(t, 0, inserted)
	}
	assert.Equal(t, before, prefab.Arena().Len())
	assert.Equal(t, StateStable, prefab.State())
}

func TestPrefab_SharedScriptIsAppendedOnce(t *testing.T) {
	prefab := NewPrefab("object")
	script := uobject.NewMonoScript("", "Shared", "Mod.dll")
	require.NoError(t, prefab.AddComponent(uobject.NewMonoBehaviour(script)))
	require.NoError(t, prefab.AddComponent(uobject.NewMonoBehaviour(script)))
	require.NoError(t, prefab.Stabilize())

	scripts := lo.Filter(
		classIDs(prefab.Arena()),
		func(id uclass.ID, _ int) bool {
			return id == uclass.IDMonoScript
		},
	)
	assert.Len(t, scripts, 1)
	assert.Equal(t, 5, prefab.Arena().Len())
}

func TestPrefab_Finalize(t *testing.T) {
	prefab := NewPrefab("object")

	bundle, err := prefab.Finalize("bundle")
	require.NoError(t, err)
	assert.Equal(t, StateFinalized, prefab.State())
	assert.Same(t, bundle, prefab.Bundle())
	assert.True(t, prefab.Arena().Frozen())

	objects := prefab.Arena().Objects()
	assert.Len(t, objects, 3)
	assert.Same(t, bundle, objects[2])

	assert.Len(t, bundle.PreloadTable, 2)
	for i := range bundle.PreloadTable {
		handle, ok := bundle.PreloadTable[i].Handle()
		assert.True(t, ok)
		assert.Equal(t, uobject.Handle(i), handle)
	}

	require.Len(t, bundle.Container, 1)
	entry := bundle.Container[0]
	assert.Equal(t, "assets/object.prefab", entry.Path)
	assert.Equal(t, int32(0), entry.Info.PreloadIndex)
	assert.Equal(t, int32(2), entry.Info.PreloadSize)
	assert.Same(t, prefab.Root(), entry.Info.Asset.Target())
	assert.True(t, bundle.MainAsset.Asset.IsNull())
}

func TestPrefab_FinalizedRejectsChanges(t *testing.T) {
	prefab := NewPrefab("object")
	_, err := prefab.Finalize("bundle")
	require.NoError(t, err)

	err = prefab.AddComponent(uobject.NewComponent(65, nil))
	assert.True(t, errors.Is(err, ErrFinalized))

	_, err = prefab.AppendUnresolved()
	assert.True(t, errors.Is(err, ErrFinalized))

	_, err = prefab.Finalize("again")
	assert.True(t, errors.Is(err, ErrFinalized))
}
