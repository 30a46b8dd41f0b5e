package addressspace

import (
	"context"
	"errors"
	"testing"
	"time"

	uaid "github.com/gopcua/opcua/id"
	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdoque/uacore/nodecache"
	"github.com/sdoque/uacore/node"
	"github.com/sdoque/uacore/uaclient"
	"github.com/sdoque/uacore/uaerrors"
)

func hasTypeDefinitionID() *ua.NodeID { return ua.NewNumericNodeID(0, uaid.HasTypeDefinition) }
func hierarchicalRefsID() *ua.NodeID  { return ua.NewNumericNodeID(0, uaid.HierarchicalReferences) }

func setBaseAttrs(f *fakeClient, id *ua.NodeID, class ua.NodeClass, browseName, displayName string) {
	f.setAttr(id, ua.AttributeIDNodeClass, goodDV(int32(class)))
	f.setAttr(id, ua.AttributeIDBrowseName, goodDV(ua.QualifiedName{Name: browseName}))
	f.setAttr(id, ua.AttributeIDDisplayName, goodDV(ua.LocalizedText{Text: displayName}))
	f.setAttr(id, ua.AttributeIDWriteMask, goodDV(uint32(0)))
	f.setAttr(id, ua.AttributeIDUserWriteMask, goodDV(uint32(0)))
}

func expandedOf(id *ua.NodeID) *ua.ExpandedNodeID {
	return &ua.ExpandedNodeID{NodeID: id}
}

// TestGetObjectColdThenCached resolves the Objects folder cold, then again,
// checking the second resolution is served entirely from the cache: no
// additional Read or Browse calls are observed.
func TestGetObjectColdThenCached(t *testing.T) {
	f := newFakeClient()
	objectsID := ua.NewNumericNodeID(0, 85)
	folderTypeID := ua.NewNumericNodeID(0, 61)

	setBaseAttrs(f, objectsID, ua.NodeClassObject, "Objects", "Objects")
	f.setAttr(objectsID, ua.AttributeIDEventNotifier, goodDV(byte(0)))
	f.setBrowse(objectsID, hasTypeDefinitionID(), []*ua.ReferenceDescription{
		{
			ReferenceTypeID: hasTypeDefinitionID(),
			NodeID:          expandedOf(folderTypeID),
			NodeClass:       ua.NodeClassObjectType,
		},
	})

	r := NewResolver(f)
	n, err := r.GetObject(context.Background(), objectsID)
	require.NoError(t, err)
	obj, ok := n.(node.Object)
	require.True(t, ok)
	assert.Equal(t, "Objects", obj.BrowseName.Name)
	assert.Equal(t, folderTypeID.String(), obj.TypeDefinition.String())

	readsAfterFirst := f.readCountFor(objectsID)
	browsesAfterFirst := f.browseCountFor(objectsID, hasTypeDefinitionID())
	require.Greater(t, readsAfterFirst, 0)

	n2, err := r.GetObject(context.Background(), objectsID)
	require.NoError(t, err)
	assert.Equal(t, n, n2)
	assert.Equal(t, readsAfterFirst, f.readCountFor(objectsID), "cache hit must not re-read attributes")
	assert.Equal(t, browsesAfterFirst, f.browseCountFor(objectsID, hasTypeDefinitionID()), "cache hit must not re-browse for type definition")
}

// TestTypeDefinitionBrowseFailureFallsBackToDefaultConstructor checks that a
// failed type-definition browse degrades to a nil type definition rather
// than surfacing an error, per the resolver's fixed "lookup failure is never
// an error" contract.
func TestTypeDefinitionBrowseFailureFallsBackToDefaultConstructor(t *testing.T) {
	f := newFakeClient()
	id := ua.NewNumericNodeID(1, 100)
	setBaseAttrs(f, id, ua.NodeClassObject, "Motor", "Motor")
	f.setAttr(id, ua.AttributeIDEventNotifier, goodDV(byte(0)))
	f.setBrowseErr(id, hasTypeDefinitionID(), errors.New("service unsupported"))

	r := NewResolver(f)
	n, err := r.GetObject(context.Background(), id)
	require.NoError(t, err)
	obj, ok := n.(node.Object)
	require.True(t, ok)
	assert.Nil(t, obj.TypeDefinition)
}

// TestRegisteredConstructorIsExercised confirms a constructor registered for
// a specific type definition is the one invoked for instances resolving to
// it. The registered constructor here delegates to DefaultObjectConstructor,
// so the result is still a plain node.Object.
func TestRegisteredConstructorIsExercised(t *testing.T) {
	f := newFakeClient()
	id := ua.NewNumericNodeID(1, 200)
	folderTypeID := ua.NewNumericNodeID(0, 61)
	setBaseAttrs(f, id, ua.NodeClassObject, "Sensors", "Sensors")
	f.setAttr(id, ua.AttributeIDEventNotifier, goodDV(byte(0)))
	f.setBrowse(id, hasTypeDefinitionID(), []*ua.ReferenceDescription{
		{ReferenceTypeID: hasTypeDefinitionID(), NodeID: expandedOf(folderTypeID), NodeClass: ua.NodeClassObjectType},
	})

	called := false
	f.ObjectTypeManager().Register(folderTypeID, func(c uaclient.Client, base node.Base, eventNotifier byte, typeDefinition *ua.NodeID) node.Node {
		called = true
		return uaclient.DefaultObjectConstructor(c, base, eventNotifier, typeDefinition)
	})

	r := NewResolver(f)
	n, err := r.GetObject(context.Background(), id)
	require.NoError(t, err)
	obj, ok := n.(node.Object)
	require.True(t, ok)
	assert.True(t, called, "registered constructor for FolderType must run instead of the default")
	assert.Equal(t, folderTypeID.String(), obj.TypeDefinition.String())
}

// TestGetObjectMismatchedClassFails checks that resolving a Variable id
// through GetObject fails with a VariantMismatch rather than silently
// returning a wrong variant.
func TestGetObjectMismatchedClassFails(t *testing.T) {
	f := newFakeClient()
	id := ua.NewNumericNodeID(1, 300)
	setBaseAttrs(f, id, ua.NodeClassVariable, "Temperature", "Temperature")

	r := NewResolver(f)
	_, err := r.GetObject(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, uaerrors.VariantMismatch, uaerrors.KindOf(err))
}

// TestLocalizeRefreshesNamespaceTableOnceOnMiss exercises the corrected
// retry-after-refresh behavior: a reference into a namespace URI the table
// doesn't know yet resolves once the Server object's NamespaceArray has been
// read and the table rebuilt, without requiring a second explicit call.
func TestLocalizeRefreshesNamespaceTableOnceOnMiss(t *testing.T) {
	f := newFakeClient()
	serverID := ua.NewNumericNodeID(0, uaid.Server)
	nsArrayID := ua.NewNumericNodeID(0, uaid.Server_NamespaceArray)

	setBaseAttrs(f, serverID, ua.NodeClassObject, "Server", "Server")
	f.setAttr(serverID, ua.AttributeIDEventNotifier, goodDV(byte(0)))
	f.setBrowse(serverID, hasTypeDefinitionID(), nil)
	f.setAttr(nsArrayID, ua.AttributeIDValue, goodDV([]string{
		"http://opcfoundation.org/UA/",
		"urn:example:custom",
	}))

	r := NewResolver(f)
	expanded := &ua.ExpandedNodeID{NamespaceURI: "urn:example:custom", NodeID: ua.NewNumericNodeID(0, 7)}

	localID := r.Localize(context.Background(), expanded)
	require.NotNil(t, localID)
	assert.Equal(t, uint16(1), localID.Namespace())

	readsAfterFirst := f.readCountFor(nsArrayID)
	require.Equal(t, 1, readsAfterFirst)

	// A second localize against an already-known namespace must not trigger
	// another refresh.
	again := r.Localize(context.Background(), expanded)
	require.NotNil(t, again)
	assert.Equal(t, readsAfterFirst, f.readCountFor(nsArrayID))
}

// TestLocalizeForeignServerDegradesToNil checks that a reference into a
// different server (non-zero ServerIndex) always resolves to nil.
func TestLocalizeForeignServerDegradesToNil(t *testing.T) {
	r := NewResolver(newFakeClient())
	expanded := &ua.ExpandedNodeID{ServerIndex: 2, NodeID: ua.NewNumericNodeID(0, 1)}
	assert.Nil(t, r.Localize(context.Background(), expanded))
}

// TestBrowsePreservesServerOrder checks that the parallel per-reference
// resolution still produces results in the server's original order, even
// though resolution itself runs concurrently.
func TestBrowsePreservesServerOrder(t *testing.T) {
	f := newFakeClient()
	parent := ua.NewNumericNodeID(1, 1)
	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
	refs := make([]*ua.ReferenceDescription, len(names))
	for i, name := range names {
		childID := ua.NewNumericNodeID(1, uint32(10+i))
		setBaseAttrs(f, childID, ua.NodeClassObject, name, name)
		f.setAttr(childID, ua.AttributeIDEventNotifier, goodDV(byte(0)))
		f.setBrowse(childID, hasTypeDefinitionID(), nil)
		refs[i] = &ua.ReferenceDescription{
			ReferenceTypeID: hierarchicalRefsID(),
			NodeID:          expandedOf(childID),
			NodeClass:       ua.NodeClassObject,
			TypeDefinition:  nil,
		}
	}
	f.setBrowse(parent, hierarchicalRefsID(), refs)

	r := NewResolver(f)
	results, err := r.Browse(context.Background(), parent)
	require.NoError(t, err)
	require.Len(t, results, len(names))
	for i, name := range names {
		assert.Equal(t, name, results[i].Attrs().BrowseName.Name)
	}
}

// TestBrowseFailsWholeCallOnSingleResolutionError checks that one failing
// reference resolution fails the entire browse.
func TestBrowseFailsWholeCallOnSingleResolutionError(t *testing.T) {
	f := newFakeClient()
	parent := ua.NewNumericNodeID(1, 2)
	goodChild := ua.NewNumericNodeID(1, 20)
	badChild := ua.NewNumericNodeID(1, 21)

	setBaseAttrs(f, goodChild, ua.NodeClassObject, "Good", "Good")
	f.setAttr(goodChild, ua.AttributeIDEventNotifier, goodDV(byte(0)))
	f.setBrowse(goodChild, hasTypeDefinitionID(), nil)
	f.setReadErr(badChild, errors.New("comm failure"))

	refs := []*ua.ReferenceDescription{
		{ReferenceTypeID: hierarchicalRefsID(), NodeID: expandedOf(goodChild), NodeClass: ua.NodeClassObject},
		{ReferenceTypeID: hierarchicalRefsID(), NodeID: expandedOf(badChild), NodeClass: ua.NodeClassObject},
	}
	f.setBrowse(parent, hierarchicalRefsID(), refs)

	r := NewResolver(f)
	_, err := r.Browse(context.Background(), parent)
	assert.Error(t, err)
}

// TestCacheEntryExpiresByTTL checks that a Resolver built with a short-TTL
// cache re-reads after the entry expires.
func TestCacheEntryExpiresByTTL(t *testing.T) {
	f := newFakeClient()
	id := ua.NewNumericNodeID(1, 400)
	setBaseAttrs(f, id, ua.NodeClassObject, "Shortlived", "Shortlived")
	f.setAttr(id, ua.AttributeIDEventNotifier, goodDV(byte(0)))
	f.setBrowse(id, hasTypeDefinitionID(), nil)

	r := NewResolver(f, WithCache(nodecache.New(nodecache.DefaultMaximumSize, 30*time.Millisecond)))

	_, err := r.GetObject(context.Background(), id)
	require.NoError(t, err)
	first := f.readCountFor(id)

	time.Sleep(80 * time.Millisecond)

	_, err = r.GetObject(context.Background(), id)
	require.NoError(t, err)
	assert.Greater(t, f.readCountFor(id), first, "expired cache entry must trigger a fresh read")
}

// TestGetVariableDecodesAllFields checks the remaining-attribute fan-out for
// Variable populates every field DefaultVariableConstructor is given.
func TestGetVariableDecodesAllFields(t *testing.T) {
	f := newFakeClient()
	id := ua.NewNumericNodeID(1, 500)
	setBaseAttrs(f, id, ua.NodeClassVariable, "Temperature", "Temperature")
	f.setAttr(id, ua.AttributeIDValue, goodDV(float64(21.5)))
	f.setAttr(id, ua.AttributeIDDataType, goodDV(ua.NewNumericNodeID(0, 11)))
	f.setAttr(id, ua.AttributeIDValueRank, goodDV(int32(-1)))
	f.setAttr(id, ua.AttributeIDAccessLevel, goodDV(byte(3)))
	f.setAttr(id, ua.AttributeIDUserAccessLevel, goodDV(byte(3)))
	f.setAttr(id, ua.AttributeIDHistorizing, goodDV(false))
	f.setBrowse(id, hasTypeDefinitionID(), nil)

	r := NewResolver(f)
	n, err := r.GetVariable(context.Background(), id)
	require.NoError(t, err)
	v, ok := n.(node.Variable)
	require.True(t, ok)
	require.NotNil(t, v.Value)
	require.NotNil(t, v.Value.Value)
	assert.Equal(t, float64(21.5), v.Value.Value.Value())
	require.NotNil(t, v.DataType)
	assert.Equal(t, ua.NewNumericNodeID(0, 11).String(), v.DataType.String())
	assert.Equal(t, int32(-1), v.ValueRank)
	assert.Nil(t, v.ArrayDimensions)
	assert.Equal(t, byte(3), v.AccessLevel)
	assert.Equal(t, byte(3), v.UserAccessLevel)
	assert.Nil(t, v.MinimumSamplingInterval)
	assert.False(t, v.Historizing)
	assert.Nil(t, v.TypeDefinition)
}

// sensorVariable is a VariableTypeManager-registered subtype used to exercise
// spec.md's scenario 3: a constructor producing something other than a plain
// node.Variable must still be what GetVariable returns and what the cache
// publishes, keyed off NodeClass rather than a literal node.Variable type
// assertion.
type sensorVariable struct {
	node.Variable
	Unit string
}

// TestVariableTypeManagerSubtypeSurvivesGetVariableAndCache checks that a
// registered VariableTypeManager constructor's subtype is what GetVariable
// returns, and that the cached entry round-trips as that same subtype rather
// than being rejected as a VariantMismatch.
func TestVariableTypeManagerSubtypeSurvivesGetVariableAndCache(t *testing.T) {
	f := newFakeClient()
	id := ua.NewNumericNodeID(1, 700)
	sensorTypeID := ua.NewNumericNodeID(0, 63)

	setBaseAttrs(f, id, ua.NodeClassVariable, "Temp", "Temp")
	f.setAttr(id, ua.AttributeIDDataType, goodDV(ua.NewNumericNodeID(0, 11)))
	f.setAttr(id, ua.AttributeIDValueRank, goodDV(int32(-1)))
	f.setAttr(id, ua.AttributeIDAccessLevel, goodDV(byte(3)))
	f.setBrowse(id, hasTypeDefinitionID(), []*ua.ReferenceDescription{
		{ReferenceTypeID: hasTypeDefinitionID(), NodeID: expandedOf(sensorTypeID), NodeClass: ua.NodeClassVariableType},
	})

	f.VariableTypeManager().Register(sensorTypeID, func(c uaclient.Client, base node.Base, fields uaclient.VariableFields, typeDefinition *ua.NodeID) node.Node {
		plain := uaclient.DefaultVariableConstructor(c, base, fields, typeDefinition).(node.Variable)
		return sensorVariable{Variable: plain, Unit: "C"}
	})

	r := NewResolver(f)
	n, err := r.GetVariable(context.Background(), id)
	require.NoError(t, err)
	sensor, ok := n.(sensorVariable)
	require.True(t, ok, "registered VariableTypeManager constructor's subtype must survive GetVariable")
	assert.Equal(t, "C", sensor.Unit)

	cached, err := r.GetVariable(context.Background(), id)
	require.NoError(t, err)
	_, ok = cached.(sensorVariable)
	assert.True(t, ok, "cached entry must round-trip as the registered subtype, not the plain Variable")
}

// TestModifyBrowseOptionsCarriesDirectionThroughRoundTrip exercises the
// corrected ModifyBrowseOptions seeding behavior: a direction installed by
// one call must survive an unrelated later call, since the builder it hands
// to the mutator is seeded from all four currently-installed fields.
func TestModifyBrowseOptionsCarriesDirectionThroughRoundTrip(t *testing.T) {
	r := NewResolver(newFakeClient())

	r.ModifyBrowseOptions(func(b *BrowseOptionsBuilder) {
		b.Direction(ua.BrowseDirectionInverse)
	})
	r.ModifyBrowseOptions(func(b *BrowseOptionsBuilder) {
		b.IncludeSubtypes(false)
	})

	got := r.GetBrowseOptions()
	assert.Equal(t, ua.BrowseDirectionInverse, got.Direction, "direction set by an earlier call must not revert")
	assert.False(t, got.IncludeSubtypes)
}

// TestGetUnrecognizedNodeClassFails checks that a null NodeClass attribute
// fails with BadNodeClassInvalid.
func TestGetUnrecognizedNodeClassFails(t *testing.T) {
	f := newFakeClient()
	id := ua.NewNumericNodeID(1, 600)
	f.setAttr(id, ua.AttributeIDBrowseName, goodDV(ua.QualifiedName{Name: "Broken"}))
	f.setAttr(id, ua.AttributeIDDisplayName, goodDV(ua.LocalizedText{Text: "Broken"}))

	r := NewResolver(f)
	_, err := r.Get(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, uaerrors.BadNodeClassInvalid, uaerrors.KindOf(err))
}
