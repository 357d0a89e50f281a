package uobject

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"prefab-bundler/ubundle/ubytes"
	"prefab-bundler/ubundle/uclass"
)

func serialize(t *testing.T, o Object, arena *Arena) []byte {
	w := ubytes.NewLittleEndianWriter()
	require.NoError(t, o.Serialize(w, arena))
	return w.Bytes()
}

// A one-component GameObject named "object" and a childless Transform are the
// two layouts whose sizes the format is usually assumed to fix at 35 and 68.
func TestSerialize_PrefabSizes(t *testing.T) {
	gameObject, transform := createPrefabObjects()
	arena := createBoundArena(t, 0, gameObject, transform)

	assert.Len(t, serialize(t, gameObject, arena), 35)
	assert.Len(t, serialize(t, transform, arena), 68)

	gameObject.Name = "a_much_longer_prefab_name"
	assert.Len(t, serialize(t, gameObject, arena), 4+DefaultPPtrSize+4+4+28+2+1)

	child := NewTransform()
	transform.AddChild(child)
	arena = createBoundArena(t, 0, gameObject, transform, child)
	assert.Len(t, serialize(t, transform, arena), 68+DefaultPPtrSize)
}

func TestSerialize_GameObjectLayout(t *testing.T) {
	gameObject, transform := createPrefabObjects()
	arena := createBoundArena(t, 0, gameObject, transform)

	bs := serialize(t, gameObject, arena)
	r := ubytes.NewLittleEndianReader(bs)

	count, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(1), count)

	fileID, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(0), fileID)
	pathID, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), pathID)

	_, err = r.ReadUint32()
	require.NoError(t, err)
	name, err := r.ReadAlignedString()
	require.NoError(t, err)
	assert.Equal(t, "object", name)
}

func TestDecode_ReserializesIdentically(t *testing.T) {
	gameObject, transform := createPrefabObjects()
	transform.LocalPosition = Vector3{X: 1.5, Y: -2, Z: 0.25}
	script := NewMonoScript("Mod.Cards", "SigilHolder", "Mod.dll")
	script.ExecutionOrder = -10
	behaviour := NewMonoBehaviour(script)
	behaviour.Name = "holder"
	behaviour.Payload = []byte{1, 0, 0, 0}
	gameObject.AddComponent(behaviour)
	collider := NewComponent(65, []byte{1, 2, 3, 4})
	gameObject.AddComponent(collider)
	bundle := NewAssetBundle("bundle")
	bundle.PreloadTable = []Ref{RefTo(gameObject), RefTo(transform)}
	bundle.Container = []ContainerEntry{
		{Path: "assets/object.prefab", Info: AssetInfo{PreloadSize: 2, Asset: RefTo(gameObject)}},
	}
	bundle.Dependencies = []string{"shared"}
	bundle.SceneHashes = []SceneHash{{Scene: "a", Hash: "b"}}
	unknown := &Raw{Class: 21, Data: []byte{9, 9, 9}}

	objects := []Object{gameObject, transform, behaviour, script, collider, bundle, unknown}
	arena := createBoundArena(t, 0, objects...)

	for _, o := range objects {
		original := serialize(t, o, arena)
		decoded, err := Decode(o.ClassID(), original, binary.LittleEndian)
		require.NoError(t, err, o.ClassID().String())
		assert.IsType(t, o, decoded)
		assert.Equal(t, original, serialize(t, decoded, arena), o.ClassID().String())
	}
}

func TestDecode_Fields(t *testing.T) {
	gameObject, transform := createPrefabObjects()
	arena := createBoundArena(t, 0, gameObject, transform)

	decoded, err := Decode(uclass.IDTransform, serialize(t, transform, arena), binary.LittleEndian)
	require.NoError(t, err)
	decodedTransform := decoded.(*Transform)
	assert.Equal(t, PPtr{PathID: 2}, decodedTransform.GameObject.PPtr())
	assert.Equal(t, Quaternion{W: 1}, decodedTransform.LocalRotation)
	assert.Equal(t, Vector3{X: 1, Y: 1, Z: 1}, decodedTransform.LocalScale)
	assert.Empty(t, decodedTransform.Children)
	assert.True(t, decodedTransform.Father.IsNull())
}

func TestDecode_Rejects(t *testing.T) {
	gameObject, transform := createPrefabObjects()
	arena := createBoundArena(t, 0, gameObject, transform)
	bs := serialize(t, gameObject, arena)

	_, err := Decode(uclass.IDGameObject, append(bs, 0), binary.LittleEndian)
	assert.Error(t, err)

	_, err = Decode(uclass.IDGameObject, bs[:20], binary.LittleEndian)
	assert.Error(t, err)

	_, err = Decode(uclass.IDGameObject, []byte{0xFF, 0xFF, 0xFF, 0x7F}, binary.LittleEndian)
	assert.Error(t, err)

	// no components, layer 0, then a name length of -1
	negativeName := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}
	assert.NotPanics(t, func() {
		_, err = Decode(uclass.IDGameObject, negativeName, binary.LittleEndian)
	})
	assert.Error(t, err)

	hugeName := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0x7F}
	_, err = Decode(uclass.IDMonoScript, hugeName[8:], binary.LittleEndian)
	assert.Error(t, err)
}

func TestAssetBundle_ContainerMap(t *testing.T) {
	bundle := NewAssetBundle("bundle")
	bundle.Container = []ContainerEntry{
		{Path: "assets/b.prefab", Info: AssetInfo{PreloadIndex: 0, PreloadSize: 2}},
		{Path: "assets/a.prefab", Info: AssetInfo{PreloadIndex: 2, PreloadSize: 1}},
	}

	lhm := bundle.ContainerMap()
	assert.Equal(t, []string{"assets/b.prefab", "assets/a.prefab"}, lhm.Keys())
	info, ok := lhm.Get("assets/a.prefab")
	assert.True(t, ok)
	assert.Equal(t, int32(2), info.PreloadIndex)
}
