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

	"golang.org/x/sync/errgroup"

	"github.com/gopcua/opcua/ua"

	"github.com/sdoque/uacore/node"
	"github.com/sdoque/uacore/uaerrors"
)

// runBrowse implements C6: build a BrowseDescription from (startID, opts)
// and invoke the Client's Browse. Continuation-point handling is the
// Client's job (see uaclient.GopcuaClient); this call returns the full,
// server-ordered concatenation of every page.
func (r *Resolver) runBrowse(ctx context.Context, startID *ua.NodeID, opts BrowseOptions) ([]*ua.ReferenceDescription, error) {
	desc := &ua.BrowseDescription{
		NodeID:          startID,
		BrowseDirection: opts.Direction,
		ReferenceTypeID: opts.ReferenceTypeID,
		IncludeSubtypes: opts.IncludeSubtypes,
		NodeClassMask:   opts.NodeClassMask,
		ResultMask:      uint32(ua.BrowseResultMaskAll),
	}
	refs, err := r.client.Browse(ctx, desc)
	if err != nil {
		return nil, uaerrors.Wrap(uaerrors.ServiceError, err, "browse "+startID.String())
	}
	return refs, nil
}

// doBrowse implements §4.6.2: run the browse, then resolve every returned
// reference in parallel, preserving the server's return order in the
// result slice. If any single resolution fails, the whole browse fails —
// the errgroup's first non-nil error cancels gctx and is what Wait
// returns.
func (r *Resolver) doBrowse(ctx context.Context, startID *ua.NodeID, opts BrowseOptions) ([]node.Node, error) {
	refs, err := r.runBrowse(ctx, startID, opts)
	if err != nil {
		return nil, err
	}

	results := make([]node.Node, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			n, err := r.resolveReference(gctx, ref)
			if err != nil {
				return err
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveReference decides how to resolve a single ReferenceDescription
// per §4.6.2: Object/Variable references localize their id and type
// definition in parallel and skip the cache-miss type-definition read;
// every other class just localizes the id and calls get.
func (r *Resolver) resolveReference(ctx context.Context, ref *ua.ReferenceDescription) (node.Node, error) {
	switch ref.NodeClass {
	case ua.NodeClassObject, ua.NodeClassVariable:
		var id, tdef *ua.NodeID
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			id = r.localizeExpanded(gctx, ref.NodeID)
			return nil
		})
		g.Go(func() error {
			tdef = r.localizeExpanded(gctx, ref.TypeDefinition)
			return nil
		})
		_ = g.Wait()

		if id == nil {
			return nil, uaerrors.New(uaerrors.BadUnexpectedError, "browse: reference target could not be localized")
		}
		if ref.NodeClass == ua.NodeClassObject {
			n, err := r.getObject(ctx, id, tdef, true)
			return n, err
		}
		n, err := r.getVariable(ctx, id, tdef, true)
		return n, err
	default:
		id := r.localizeExpanded(ctx, ref.NodeID)
		if id == nil {
			return nil, uaerrors.New(uaerrors.BadUnexpectedError, "browse: reference target could not be localized")
		}
		return r.get(ctx, id)
	}
}
