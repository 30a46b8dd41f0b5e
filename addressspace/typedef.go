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

	uaid "github.com/gopcua/opcua/id"
	"github.com/gopcua/opcua/ua"
)

// readTypeDefinition implements C4: a single-reference browse specialized
// to HasTypeDefinition. It degrades to a nil NodeId on any failure —
// non-good status, no matching reference, or an unresolvable target — so
// the caller can fall back to the default constructor without surfacing an
// error. That degradation is deliberate per §4.3/§7: type-definition lookup
// failure is never an error at the resolver boundary.
func (r *Resolver) readTypeDefinition(ctx context.Context, nodeID *ua.NodeID) *ua.NodeID {
	desc := &ua.BrowseDescription{
		NodeID:          nodeID,
		BrowseDirection: ua.BrowseDirectionForward,
		ReferenceTypeID: ua.NewNumericNodeID(0, uaid.HasTypeDefinition),
		IncludeSubtypes: false,
		NodeClassMask:   uint32(ua.NodeClassObjectType | ua.NodeClassVariableType),
		ResultMask:      uint32(ua.BrowseResultMaskAll),
	}

	refs, err := r.client.Browse(ctx, desc)
	if err != nil {
		r.log.Debug("type definition browse failed, falling back to default constructor", "node", nodeID.String(), "error", err)
		return nil
	}

	hasTypeDefinition := ua.NewNumericNodeID(0, uaid.HasTypeDefinition)
	for _, ref := range refs {
		if ref.ReferenceTypeID == nil || ref.ReferenceTypeID.String() != hasTypeDefinition.String() {
			continue
		}
		return r.localizeExpanded(ctx, ref.NodeID)
	}
	return nil
}
