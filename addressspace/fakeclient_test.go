package addressspace

import (
	"context"
	"sync"

	"github.com/gopcua/opcua/ua"

	"github.com/sdoque/uacore/uaclient"
)

// fakeClient is an in-memory uaclient.Client double: attribute values and
// browse results are registered ahead of time per NodeID (and, for Browse,
// per ReferenceTypeID too, since the resolver issues distinctly-filtered
// browse calls against the same starting node for type-definition discovery
// versus ordinary children).
type fakeClient struct {
	mu sync.Mutex

	ns      *uaclient.NamespaceTable
	objects *uaclient.ObjectTypeManager
	vars    *uaclient.VariableTypeManager

	attrs     map[string]map[ua.AttributeID]*ua.DataValue
	browseRef map[string][]*ua.ReferenceDescription
	readErr   map[string]error
	browseErr map[string]error

	readCount   map[string]int
	browseCount map[string]int
}

var _ uaclient.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		ns:          uaclient.NewNamespaceTable(),
		objects:     uaclient.NewObjectTypeManager(),
		vars:        uaclient.NewVariableTypeManager(),
		attrs:       map[string]map[ua.AttributeID]*ua.DataValue{},
		browseRef:   map[string][]*ua.ReferenceDescription{},
		readErr:     map[string]error{},
		browseErr:   map[string]error{},
		readCount:   map[string]int{},
		browseCount: map[string]int{},
	}
}

func (f *fakeClient) setAttr(id *ua.NodeID, a ua.AttributeID, dv *ua.DataValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := id.String()
	if f.attrs[key] == nil {
		f.attrs[key] = map[ua.AttributeID]*ua.DataValue{}
	}
	f.attrs[key][a] = dv
}

func (f *fakeClient) setBrowse(id, refType *ua.NodeID, refs []*ua.ReferenceDescription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.browseRef[browseKey(id, refType)] = refs
}

func (f *fakeClient) setReadErr(id *ua.NodeID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr[id.String()] = err
}

func (f *fakeClient) setBrowseErr(id, refType *ua.NodeID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.browseErr[browseKey(id, refType)] = err
}

func (f *fakeClient) readCountFor(id *ua.NodeID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readCount[id.String()]
}

func (f *fakeClient) browseCountFor(id, refType *ua.NodeID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.browseCount[browseKey(id, refType)]
}

func browseKey(id, refType *ua.NodeID) string {
	return id.String() + "|" + refType.String()
}

func nullDV() *ua.DataValue { return &ua.DataValue{Status: ua.StatusBadAttributeIDInvalid} }

func mustVariant(v any) *ua.Variant {
	variant, err := ua.NewVariant(v)
	if err != nil {
		panic(err)
	}
	return variant
}

func goodDV(v any) *ua.DataValue {
	return &ua.DataValue{Status: ua.StatusOK, Value: mustVariant(v)}
}

func (f *fakeClient) Read(ctx context.Context, ids []*ua.ReadValueID) ([]*ua.DataValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*ua.DataValue, len(ids))
	for i, rv := range ids {
		key := rv.NodeID.String()
		f.readCount[key]++
		if err, ok := f.readErr[key]; ok && err != nil {
			return nil, err
		}
		m := f.attrs[key]
		if m == nil {
			out[i] = nullDV()
			continue
		}
		dv, ok := m[rv.AttributeID]
		if !ok {
			out[i] = nullDV()
			continue
		}
		out[i] = dv
	}
	return out, nil
}

func (f *fakeClient) Browse(ctx context.Context, desc *ua.BrowseDescription) ([]*ua.ReferenceDescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := browseKey(desc.NodeID, desc.ReferenceTypeID)
	f.browseCount[key]++
	if err, ok := f.browseErr[key]; ok && err != nil {
		return nil, err
	}
	return f.browseRef[key], nil
}

func (f *fakeClient) NamespaceTable() *uaclient.NamespaceTable           { return f.ns }
func (f *fakeClient) ObjectTypeManager() *uaclient.ObjectTypeManager     { return f.objects }
func (f *fakeClient) VariableTypeManager() *uaclient.VariableTypeManager { return f.vars }
