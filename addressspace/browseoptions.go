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
	uaid "github.com/gopcua/opcua/id"
	"github.com/gopcua/opcua/ua"
)

// BrowseOptions is the immutable configuration a browse call runs under.
// Mutation happens only by copy-through-builder: there is no setter on the
// value itself.
type BrowseOptions struct {
	Direction       ua.BrowseDirection
	ReferenceTypeID *ua.NodeID
	IncludeSubtypes bool
	NodeClassMask   uint32
}

// AllNodeClasses is the default NodeClassMask: every NodeClass bit set.
const AllNodeClasses = 0xFF

// DefaultBrowseOptions returns the spec's defaults: Forward,
// HierarchicalReferences, subtypes included, all node classes.
func DefaultBrowseOptions() BrowseOptions {
	return BrowseOptions{
		Direction:       ua.BrowseDirectionForward,
		ReferenceTypeID: ua.NewNumericNodeID(0, uaid.HierarchicalReferences),
		IncludeSubtypes: true,
		NodeClassMask:   AllNodeClasses,
	}
}

// BrowseOptionsBuilder mutates a copy of a BrowseOptions value; Build
// returns the result without touching whatever it was seeded from.
type BrowseOptionsBuilder struct {
	opts BrowseOptions
}

// NewBrowseOptionsBuilder seeds a builder with the package defaults.
func NewBrowseOptionsBuilder() *BrowseOptionsBuilder {
	return &BrowseOptionsBuilder{opts: DefaultBrowseOptions()}
}

// SeedFrom seeds a builder from an existing BrowseOptions value, copying
// all four fields.
func SeedFrom(opts BrowseOptions) *BrowseOptionsBuilder {
	return &BrowseOptionsBuilder{opts: opts}
}

func (b *BrowseOptionsBuilder) Direction(d ua.BrowseDirection) *BrowseOptionsBuilder {
	b.opts.Direction = d
	return b
}

func (b *BrowseOptionsBuilder) ReferenceTypeID(id *ua.NodeID) *BrowseOptionsBuilder {
	b.opts.ReferenceTypeID = id
	return b
}

func (b *BrowseOptionsBuilder) IncludeSubtypes(v bool) *BrowseOptionsBuilder {
	b.opts.IncludeSubtypes = v
	return b
}

func (b *BrowseOptionsBuilder) NodeClassMask(mask uint32) *BrowseOptionsBuilder {
	b.opts.NodeClassMask = mask
	return b
}

// Build returns the configured value.
func (b *BrowseOptionsBuilder) Build() BrowseOptions {
	return b.opts
}

// Copy returns a new BrowseOptions derived from opts by running mutate over
// a builder seeded from it. Unlike Resolver.ModifyBrowseOptions, this never
// touches a resolver's installed options.
func Copy(opts BrowseOptions, mutate func(*BrowseOptionsBuilder)) BrowseOptions {
	b := SeedFrom(opts)
	if mutate != nil {
		mutate(b)
	}
	return b.Build()
}
