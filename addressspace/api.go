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

	"github.com/gopcua/opcua/ua"

	"github.com/sdoque/uacore/node"
	"github.com/sdoque/uacore/uaerrors"
)

// NodeResult is the payload of a non-blocking Get.
type NodeResult struct {
	Node node.Node
	Err  error
}

// ObjectResult is the payload of a non-blocking GetObject. Object holds
// node.Node rather than the concrete node.Object struct: a registered
// ObjectTypeManager constructor (uaclient.ObjectConstructor) may return a
// specialized subtype, and that subtype must survive this result the same
// way a plain node.Object does.
type ObjectResult struct {
	Object node.Node
	Err    error
}

// VariableResult is the payload of a non-blocking GetVariable. Variable is
// node.Node for the same reason ObjectResult.Object is: a registered
// VariableTypeManager constructor may return a specialized subtype.
type VariableResult struct {
	Variable node.Node
	Err      error
}

// BrowseResult is the payload of a non-blocking Browse.
type BrowseResult struct {
	Nodes []node.Node
	Err   error
}

// GetAsync resolves id without blocking the caller: the read/dispatch work
// runs on its own goroutine and the result arrives on the returned channel.
// Get is a thin wrapper that waits for it.
func (r *Resolver) GetAsync(ctx context.Context, id *ua.NodeID) <-chan NodeResult {
	ch := make(chan NodeResult, 1)
	go func() {
		n, err := r.get(ctx, id)
		ch <- NodeResult{Node: n, Err: err}
	}()
	return ch
}

// Get resolves id to its typed node record, regardless of variant,
// returning the cached record unchanged if one is already published.
func (r *Resolver) Get(ctx context.Context, id *ua.NodeID) (node.Node, error) {
	res := <-r.GetAsync(ctx, id)
	return res.Node, res.Err
}

// GetObjectAsync is the non-blocking form of GetObject.
func (r *Resolver) GetObjectAsync(ctx context.Context, id *ua.NodeID) <-chan ObjectResult {
	ch := make(chan ObjectResult, 1)
	go func() {
		n, err := r.getObject(ctx, id, nil, false)
		ch <- toObjectResult(n, err)
	}()
	return ch
}

// GetObject resolves id as an Object, discovering its type definition
// internally. It fails with VariantMismatch if id's class is not Object. The
// returned node.Node is a plain node.Object unless a registered
// ObjectTypeManager constructor supplied a specialized subtype.
func (r *Resolver) GetObject(ctx context.Context, id *ua.NodeID) (node.Node, error) {
	res := <-r.GetObjectAsync(ctx, id)
	return res.Object, res.Err
}

// GetObjectWithTypeDefinitionAsync is the non-blocking form of
// GetObjectWithTypeDefinition.
func (r *Resolver) GetObjectWithTypeDefinitionAsync(ctx context.Context, id *ua.NodeID, tdef *ua.NodeID) <-chan ObjectResult {
	ch := make(chan ObjectResult, 1)
	go func() {
		n, err := r.getObject(ctx, id, tdef, true)
		ch <- toObjectResult(n, err)
	}()
	return ch
}

// GetObjectWithTypeDefinition resolves id as an Object using a
// caller-supplied type definition, skipping the internal discovery browse
// — the path the browse fan-out uses when the server already returned the
// type definition alongside the reference.
func (r *Resolver) GetObjectWithTypeDefinition(ctx context.Context, id *ua.NodeID, tdef *ua.NodeID) (node.Node, error) {
	res := <-r.GetObjectWithTypeDefinitionAsync(ctx, id, tdef)
	return res.Object, res.Err
}

// GetVariableAsync is the non-blocking form of GetVariable.
func (r *Resolver) GetVariableAsync(ctx context.Context, id *ua.NodeID) <-chan VariableResult {
	ch := make(chan VariableResult, 1)
	go func() {
		n, err := r.getVariable(ctx, id, nil, false)
		ch <- toVariableResult(n, err)
	}()
	return ch
}

// GetVariable resolves id as a Variable, discovering its type definition
// internally. The returned node.Node is a plain node.Variable unless a
// registered VariableTypeManager constructor supplied a specialized
// subtype.
func (r *Resolver) GetVariable(ctx context.Context, id *ua.NodeID) (node.Node, error) {
	res := <-r.GetVariableAsync(ctx, id)
	return res.Variable, res.Err
}

// GetVariableWithTypeDefinitionAsync is the non-blocking form of
// GetVariableWithTypeDefinition.
func (r *Resolver) GetVariableWithTypeDefinitionAsync(ctx context.Context, id *ua.NodeID, tdef *ua.NodeID) <-chan VariableResult {
	ch := make(chan VariableResult, 1)
	go func() {
		n, err := r.getVariable(ctx, id, tdef, true)
		ch <- toVariableResult(n, err)
	}()
	return ch
}

// GetVariableWithTypeDefinition is the Variable equivalent of
// GetObjectWithTypeDefinition.
func (r *Resolver) GetVariableWithTypeDefinition(ctx context.Context, id *ua.NodeID, tdef *ua.NodeID) (node.Node, error) {
	res := <-r.GetVariableWithTypeDefinitionAsync(ctx, id, tdef)
	return res.Variable, res.Err
}

// LocalizeAsync is the non-blocking form of Localize.
func (r *Resolver) LocalizeAsync(ctx context.Context, expanded *ua.ExpandedNodeID) <-chan *ua.NodeID {
	ch := make(chan *ua.NodeID, 1)
	go func() { ch <- r.localizeExpanded(ctx, expanded) }()
	return ch
}

// BrowseAsync is the non-blocking form of Browse.
func (r *Resolver) BrowseAsync(ctx context.Context, ref any, opts ...BrowseOptions) <-chan BrowseResult {
	ch := make(chan BrowseResult, 1)
	go func() {
		nodes, err := r.browseRef(ctx, ref, opts...)
		ch <- BrowseResult{Nodes: nodes, Err: err}
	}()
	return ch
}

// Browse resolves ref (a *ua.NodeID or an already-resolved node.Node) to
// the node's outgoing references per opts (or the resolver's installed
// options if opts is omitted), then resolves every reference in parallel,
// returning the results in the server's original order.
func (r *Resolver) Browse(ctx context.Context, ref any, opts ...BrowseOptions) ([]node.Node, error) {
	res := <-r.BrowseAsync(ctx, ref, opts...)
	return res.Nodes, res.Err
}

func (r *Resolver) browseRef(ctx context.Context, ref any, opts ...BrowseOptions) ([]node.Node, error) {
	startID, err := refToID(ref)
	if err != nil {
		return nil, err
	}
	o := r.GetBrowseOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	return r.doBrowse(ctx, startID, o)
}

func refToID(ref any) (*ua.NodeID, error) {
	switch v := ref.(type) {
	case *ua.NodeID:
		return v, nil
	case node.Node:
		return v.ID(), nil
	default:
		return nil, uaerrors.New(uaerrors.BadUnexpectedError, "browse: ref must be a *ua.NodeID or node.Node")
	}
}

func toObjectResult(n node.Node, err error) ObjectResult {
	if err != nil {
		return ObjectResult{Err: err}
	}
	if n.Class() != ua.NodeClassObject {
		return ObjectResult{Err: uaerrors.New(uaerrors.VariantMismatch, "resolved node is not an Object")}
	}
	return ObjectResult{Object: n}
}

func toVariableResult(n node.Node, err error) VariableResult {
	if err != nil {
		return VariableResult{Err: err}
	}
	if n.Class() != ua.NodeClassVariable {
		return VariableResult{Err: uaerrors.New(uaerrors.VariantMismatch, "resolved node is not a Variable")}
	}
	return VariableResult{Variable: n}
}
