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

// Package addressspace is the public façade: a live, caching, typed view
// over a remote OPC UA server's information model. Resolver is the single
// entry point callers construct; everything else in this package is the
// machinery behind it.
package addressspace

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/gopcua/opcua/ua"

	"github.com/sdoque/uacore/attrcat"
	"github.com/sdoque/uacore/node"
	"github.com/sdoque/uacore/nodecache"
	"github.com/sdoque/uacore/uaclient"
	"github.com/sdoque/uacore/uaerrors"
)

// Resolver is the node resolver (C7): get-by-id, get-as-object,
// get-as-variable and browse-from, coordinating the attribute catalog, node
// cache, type-definition discovery, namespace localization and browse
// engine behind it.
type Resolver struct {
	client uaclient.Client
	cache  *nodecache.Cache
	log    hclog.Logger

	optsMu sync.RWMutex
	opts   BrowseOptions
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithLogger installs a logger for namespace-refresh and
// type-definition-fallback diagnostics; cache misses are not logged. The
// default is a null logger.
func WithLogger(l hclog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithCache installs a pre-built node cache, e.g. to use non-default
// bounds. The default is nodecache.New with the package defaults.
func WithCache(c *nodecache.Cache) Option {
	return func(r *Resolver) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithBrowseOptions installs the initial browse options. The default is
// DefaultBrowseOptions().
func WithBrowseOptions(o BrowseOptions) Option {
	return func(r *Resolver) { r.opts = o }
}

// NewResolver builds a Resolver over client. The cache's size and
// expiration bounds are fixed for the resolver's lifetime; there is no
// setter for them because the spec treats them as construction-time only.
func NewResolver(client uaclient.Client, opts ...Option) *Resolver {
	r := &Resolver{
		client: client,
		cache:  nodecache.New(nodecache.DefaultMaximumSize, nodecache.DefaultExpireAfter),
		log:    hclog.NewNullLogger(),
		opts:   DefaultBrowseOptions(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// GetBrowseOptions returns a snapshot of the options currently installed.
func (r *Resolver) GetBrowseOptions() BrowseOptions {
	r.optsMu.RLock()
	defer r.optsMu.RUnlock()
	return r.opts
}

// SetBrowseOptions installs opts wholesale.
func (r *Resolver) SetBrowseOptions(opts BrowseOptions) {
	r.optsMu.Lock()
	defer r.optsMu.Unlock()
	r.opts = opts
}

// ModifyBrowseOptions seeds a builder from the currently installed options
// — all four fields, including BrowseDirection — hands it to mutate, and
// installs the result under exclusive access. Seeding BrowseDirection is
// the corrected behavior per §9: the source this is modeled on drops it
// when seeding the builder, which means a direction set by an earlier
// ModifyBrowseOptions call silently reverts on the next one.
func (r *Resolver) ModifyBrowseOptions(mutate func(*BrowseOptionsBuilder)) {
	r.optsMu.Lock()
	defer r.optsMu.Unlock()
	b := SeedFrom(r.opts)
	if mutate != nil {
		mutate(b)
	}
	r.opts = b.Build()
}

// get implements §4.6.1: cache lookup, then base-attribute read and
// class dispatch.
func (r *Resolver) get(ctx context.Context, id *ua.NodeID) (node.Node, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached, nil
	}

	values, err := r.client.Read(ctx, toReadValueIDs(id, attrcat.BaseAttributes))
	if err != nil {
		return nil, uaerrors.Wrap(uaerrors.ServiceError, err, "base attribute read "+id.String())
	}
	base, class, err := decodeBase(id, values)
	if err != nil {
		return nil, err
	}

	switch class {
	case ua.NodeClassObject:
		return r.resolveObject(ctx, id, base, nil, false)
	case ua.NodeClassVariable:
		return r.resolveVariable(ctx, id, base, nil, false)
	default:
		return r.resolveSimple(ctx, id, base, class)
	}
}

// getObject implements both get_object(id) and get_object(id, tdef): when
// tdefKnown is false, tdef is ignored and discovered internally (in
// parallel with the remaining-attribute read, inside resolveObject).
func (r *Resolver) getObject(ctx context.Context, id *ua.NodeID, tdef *ua.NodeID, tdefKnown bool) (node.Node, error) {
	if cached, ok := r.cache.Get(id); ok {
		if cached.Class() == ua.NodeClassObject {
			return cached, nil
		}
		return nil, variantMismatch(id, "Object")
	}

	values, err := r.client.Read(ctx, toReadValueIDs(id, attrcat.BaseAttributes))
	if err != nil {
		return nil, uaerrors.Wrap(uaerrors.ServiceError, err, "base attribute read "+id.String())
	}
	base, class, err := decodeBase(id, values)
	if err != nil {
		return nil, err
	}
	if class != ua.NodeClassObject {
		return nil, variantMismatch(id, "Object")
	}
	return r.resolveObject(ctx, id, base, tdef, tdefKnown)
}

// getVariable is the Variable equivalent of getObject.
func (r *Resolver) getVariable(ctx context.Context, id *ua.NodeID, tdef *ua.NodeID, tdefKnown bool) (node.Node, error) {
	if cached, ok := r.cache.Get(id); ok {
		if cached.Class() == ua.NodeClassVariable {
			return cached, nil
		}
		return nil, variantMismatch(id, "Variable")
	}

	values, err := r.client.Read(ctx, toReadValueIDs(id, attrcat.BaseAttributes))
	if err != nil {
		return nil, uaerrors.Wrap(uaerrors.ServiceError, err, "base attribute read "+id.String())
	}
	base, class, err := decodeBase(id, values)
	if err != nil {
		return nil, err
	}
	if class != ua.NodeClassVariable {
		return nil, variantMismatch(id, "Variable")
	}
	return r.resolveVariable(ctx, id, base, tdef, tdefKnown)
}

// resolveObject fans the remaining-attribute read out against type
// definition discovery (unless the caller already supplied one), consults
// the ObjectTypeManager, constructs and publishes. This is the one place
// §4.6.1's "(a) remaining-attribute read, (b) readTypeDefinition, run in
// parallel" requirement lives.
func (r *Resolver) resolveObject(ctx context.Context, id *ua.NodeID, base node.Base, knownTdef *ua.NodeID, tdefKnown bool) (node.Node, error) {
	remaining, _ := attrcat.RemainingForClass(ua.NodeClassObject)

	var eventNotifier byte
	typeDef := knownTdef

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		values, err := r.client.Read(gctx, toReadValueIDs(id, remaining))
		if err != nil {
			return uaerrors.Wrap(uaerrors.ServiceError, err, "object attribute read "+id.String())
		}
		eventNotifier = byteOrZero(values[0])
		return nil
	})
	if !tdefKnown {
		g.Go(func() error {
			typeDef = r.readTypeDefinition(gctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ctor := uaclient.DefaultObjectConstructor
	if custom, ok := r.client.ObjectTypeManager().GetNodeConstructor(typeDef); ok {
		ctor = custom
	}
	n := ctor(r.client, base, eventNotifier, typeDef)
	r.cache.Put(id, n)
	return n, nil
}

// resolveVariable is the Variable equivalent of resolveObject.
func (r *Resolver) resolveVariable(ctx context.Context, id *ua.NodeID, base node.Base, knownTdef *ua.NodeID, tdefKnown bool) (node.Node, error) {
	remaining, _ := attrcat.RemainingForClass(ua.NodeClassVariable)

	var fields uaclient.VariableFields
	typeDef := knownTdef

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		values, err := r.client.Read(gctx, toReadValueIDs(id, remaining))
		if err != nil {
			return uaerrors.Wrap(uaerrors.ServiceError, err, "variable attribute read "+id.String())
		}
		fields = uaclient.VariableFields{
			Value:                   values[0],
			DataType:                nodeIDOrNil(values[1]),
			ValueRank:               int32OrZero(values[2]),
			ArrayDimensions:         uint32SliceOrNil(values[3]),
			AccessLevel:             byteOrZero(values[4]),
			UserAccessLevel:         byteOrZero(values[5]),
			MinimumSamplingInterval: float64PtrOrNil(values[6]),
			Historizing:             boolOrZero(values[7]),
		}
		return nil
	})
	if !tdefKnown {
		g.Go(func() error {
			typeDef = r.readTypeDefinition(gctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ctor := uaclient.DefaultVariableConstructor
	if custom, ok := r.client.VariableTypeManager().GetNodeConstructor(typeDef); ok {
		ctor = custom
	}
	n := ctor(r.client, base, fields, typeDef)
	r.cache.Put(id, n)
	return n, nil
}

// resolveSimple handles every NodeClass that needs neither type-definition
// discovery nor a registry: Method, View, ObjectType, VariableType,
// DataType, ReferenceType.
func (r *Resolver) resolveSimple(ctx context.Context, id *ua.NodeID, base node.Base, class ua.NodeClass) (node.Node, error) {
	remaining, ok := attrcat.RemainingForClass(class)
	if !ok {
		return nil, uaerrors.New(uaerrors.BadNodeClassInvalid, "unrecognized NodeClass for "+id.String())
	}
	values, err := r.client.Read(ctx, toReadValueIDs(id, remaining))
	if err != nil {
		return nil, uaerrors.Wrap(uaerrors.ServiceError, err, "attribute read "+id.String())
	}

	var n node.Node
	switch class {
	case ua.NodeClassMethod:
		node.ExpectClass(ua.NodeClassMethod, base.NodeClass)
		n = node.Method{Base: base, Executable: boolOrZero(values[0]), UserExecutable: boolOrZero(values[1])}
	case ua.NodeClassView:
		node.ExpectClass(ua.NodeClassView, base.NodeClass)
		n = node.View{Base: base, ContainsNoLoops: boolOrZero(values[0]), EventNotifier: byteOrZero(values[1])}
	case ua.NodeClassObjectType:
		node.ExpectClass(ua.NodeClassObjectType, base.NodeClass)
		n = node.ObjectType{Base: base, IsAbstract: boolOrZero(values[0])}
	case ua.NodeClassVariableType:
		node.ExpectClass(ua.NodeClassVariableType, base.NodeClass)
		n = node.VariableType{
			Base:            base,
			IsAbstract:      boolOrZero(values[0]),
			Value:           values[1],
			DataType:        nodeIDOrNil(values[2]),
			ValueRank:       int32OrZero(values[3]),
			ArrayDimensions: uint32SliceOrNil(values[4]),
		}
	case ua.NodeClassDataType:
		node.ExpectClass(ua.NodeClassDataType, base.NodeClass)
		n = node.DataType{Base: base, IsAbstract: boolOrZero(values[0])}
	case ua.NodeClassReferenceType:
		node.ExpectClass(ua.NodeClassReferenceType, base.NodeClass)
		n = node.ReferenceType{
			Base:        base,
			IsAbstract:  boolOrZero(values[0]),
			Symmetric:   boolOrZero(values[1]),
			InverseName: localizedTextOrNil(values[2]),
		}
	default:
		return nil, uaerrors.New(uaerrors.BadNodeClassInvalid, "unsupported NodeClass for "+id.String())
	}

	r.cache.Put(id, n)
	return n, nil
}
