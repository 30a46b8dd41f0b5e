/*******************************************************************************
 * Copyright (c) 2024 Synecdoque
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, subject to the following conditions:
 *
 * The software is licensed under the MIT License. See the LICENSE file in this repository for details.
 ***************************************************************************SDG*/

package addressspace

import (
	"context"
	"fmt"
	"strings"

	uaid "github.com/gopcua/opcua/id"
	"github.com/gopcua/opcua/ua"
)

// Localize turns an expanded node id into a local NodeId, refreshing the
// server's namespace table on a miss. It is the exported, public-facing
// form of C5; the browse fan-out and type-definition discovery call the
// unexported localizeExpanded directly.
func (r *Resolver) Localize(ctx context.Context, expanded *ua.ExpandedNodeID) *ua.NodeID {
	return r.localizeExpanded(ctx, expanded)
}

// localizeExpanded implements §4.4. A foreign-server reference always
// degrades to nil. A local, already-resolvable reference returns
// immediately. Otherwise the namespace table is refreshed from the
// server's NamespaceArray exactly once and the resolution retried against
// the refreshed table — the corrected behavior the spec calls out: the
// naive version that retries against the stale table would spuriously
// return nil for a namespace the refresh just learned about.
func (r *Resolver) localizeExpanded(ctx context.Context, expanded *ua.ExpandedNodeID) *ua.NodeID {
	if expanded == nil {
		return nil
	}
	if expanded.ServerIndex != 0 {
		return nil
	}
	if resolved, ok := r.resolveLocal(expanded); ok {
		return resolved
	}

	r.refreshNamespaceTable(ctx)

	resolved, ok := r.resolveLocal(expanded)
	if !ok {
		return nil
	}
	return resolved
}

// resolveLocal resolves expanded against the namespace table as it stands
// right now, without ever touching the server.
func (r *Resolver) resolveLocal(expanded *ua.ExpandedNodeID) (*ua.NodeID, bool) {
	if expanded.NamespaceURI != "" {
		idx, ok := r.client.NamespaceTable().Index(expanded.NamespaceURI)
		if !ok {
			return nil, false
		}
		if expanded.NodeID == nil {
			return nil, false
		}
		return withNamespace(expanded.NodeID, idx), true
	}
	if expanded.NodeID == nil {
		return nil, false
	}
	if _, ok := r.client.NamespaceTable().URI(expanded.NodeID.Namespace()); !ok {
		return nil, false
	}
	return expanded.NodeID, true
}

// refreshNamespaceTable resolves the well-known Server object (to mirror
// the spec's "recursively resolve Server as an Object" step, terminating
// because namespace 0 is always present), reads its NamespaceArray, and
// rebuilds the shared namespace table from the result.
func (r *Resolver) refreshNamespaceTable(ctx context.Context) {
	serverID := ua.NewNumericNodeID(0, uaid.Server)
	if _, err := r.GetObject(ctx, serverID); err != nil {
		r.log.Debug("namespace refresh: could not resolve Server object", "error", err)
	}

	arrayID := ua.NewNumericNodeID(0, uaid.Server_NamespaceArray)
	values, err := r.client.Read(ctx, []*ua.ReadValueID{
		{NodeID: arrayID, AttributeID: ua.AttributeIDValue},
	})
	if err != nil || len(values) == 0 || values[0].Status != ua.StatusOK || values[0].Value == nil {
		r.log.Debug("namespace refresh: could not read NamespaceArray", "error", err)
		return
	}
	uris, ok := values[0].Value.Value().([]string)
	if !ok {
		r.log.Debug("namespace refresh: NamespaceArray value was not a string array")
		return
	}
	r.client.NamespaceTable().Rebuild(uris)
}

// withNamespace rebuilds id with namespace index ns, preserving its
// identifier. It works for any identifier shape by round-tripping through
// the canonical "ns=N;<identifier>" string form rather than assuming which
// concrete NodeID accessor matches the identifier's type. NodeID.String()
// omits the "ns=" prefix entirely for namespace 0 (e.g. "i=7", not
// "ns=0;i=7"), so the prefix is stripped only when present rather than
// assumed.
func withNamespace(id *ua.NodeID, ns uint16) *ua.NodeID {
	s := id.String()
	if strings.HasPrefix(s, "ns=") {
		if sep := strings.IndexByte(s, ';'); sep >= 0 {
			s = s[sep+1:]
		}
	}
	rebuilt := fmt.Sprintf("ns=%d;%s", ns, s)
	parsed, err := ua.ParseNodeID(rebuilt)
	if err != nil {
		return id
	}
	return parsed
}
