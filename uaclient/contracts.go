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

// Package uaclient is the boundary between the address space and an OPC UA
// server: the Client capability the resolver consumes, plus a concrete
// adapter backing it with github.com/gopcua/opcua. Everything the address
// space needs from a live session is named here; secure channel setup,
// session activation and subscriptions are the adapter's problem, not the
// resolver's.
package uaclient

import (
	"context"

	"github.com/gopcua/opcua/ua"
)

// Client is the capability the address space resolves and browses through.
// The core never talks to *opcua.Client directly so that tests can supply
// an in-memory double.
type Client interface {
	// Read issues a single Read service call for ids, in order, with
	// maxAge 0.0 and TimestampsToReturn Neither. The result slice has the
	// same length and order as ids.
	Read(ctx context.Context, ids []*ua.ReadValueID) ([]*ua.DataValue, error)

	// Browse issues a Browse service call for desc, internally resolving
	// any continuation points, and returns the full, server-ordered
	// concatenation of all result pages.
	Browse(ctx context.Context, desc *ua.BrowseDescription) ([]*ua.ReferenceDescription, error)

	// NamespaceTable returns the shared, mutable namespace table.
	NamespaceTable() *NamespaceTable

	// ObjectTypeManager returns the registry of Object subtype
	// constructors.
	ObjectTypeManager() *ObjectTypeManager

	// VariableTypeManager returns the registry of Variable subtype
	// constructors.
	VariableTypeManager() *VariableTypeManager
}
