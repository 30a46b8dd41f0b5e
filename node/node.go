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

// Package node defines the typed node records the address space resolves
// into: one variant shape per OPC UA NodeClass, sharing a common set of
// base attributes.
package node

import "github.com/gopcua/opcua/ua"

// Base carries the seven attributes every NodeClass has in common, in the
// fixed order the attribute catalog reads them.
type Base struct {
	NodeID        *ua.NodeID
	NodeClass     ua.NodeClass
	BrowseName    *ua.QualifiedName
	DisplayName   *ua.LocalizedText
	Description   *ua.LocalizedText
	WriteMask     uint32
	UserWriteMask uint32
}

// Node is the sum type over the eight NodeClass variants. Callers that need
// a specific variant type-switch on it; callers that only need the base
// attributes use ID/Class/Attrs.
type Node interface {
	ID() *ua.NodeID
	Class() ua.NodeClass
	Attrs() Base
}

func (b Base) ID() *ua.NodeID      { return b.NodeID }
func (b Base) Class() ua.NodeClass { return b.NodeClass }
func (b Base) Attrs() Base         { return b }

// Object models an OPC UA Object node.
type Object struct {
	Base
	EventNotifier byte
	// TypeDefinition is the NodeId of the ObjectType that classifies this
	// instance, or nil if none could be resolved.
	TypeDefinition *ua.NodeID
}

// Variable models an OPC UA Variable node.
type Variable struct {
	Base
	Value                   *ua.DataValue
	DataType                *ua.NodeID
	ValueRank               int32
	ArrayDimensions         []uint32
	AccessLevel             byte
	UserAccessLevel         byte
	MinimumSamplingInterval *float64
	Historizing             bool
	TypeDefinition          *ua.NodeID
}

// Method models an OPC UA Method node.
type Method struct {
	Base
	Executable     bool
	UserExecutable bool
}

// View models an OPC UA View node.
type View struct {
	Base
	ContainsNoLoops bool
	EventNotifier   byte
}

// ObjectType models an OPC UA ObjectType node.
type ObjectType struct {
	Base
	IsAbstract bool
}

// VariableType models an OPC UA VariableType node.
type VariableType struct {
	Base
	IsAbstract      bool
	Value           *ua.DataValue
	DataType        *ua.NodeID
	ValueRank       int32
	ArrayDimensions []uint32
}

// DataType models an OPC UA DataType node.
type DataType struct {
	Base
	IsAbstract bool
}

// ReferenceType models an OPC UA ReferenceType node.
type ReferenceType struct {
	Base
	IsAbstract  bool
	Symmetric   bool
	InverseName *ua.LocalizedText
}

var (
	_ Node = Object{}
	_ Node = Variable{}
	_ Node = Method{}
	_ Node = View{}
	_ Node = ObjectType{}
	_ Node = VariableType{}
	_ Node = DataType{}
	_ Node = ReferenceType{}
)

// ExpectClass panics if got != want. Every constructor calls this once it
// has decoded the NodeClass attribute: a mismatch between the dispatched
// class and the stored attribute is a programmer error, never a runtime
// condition a caller can recover from.
func ExpectClass(want, got ua.NodeClass) {
	if want != got {
		panic("node: constructed variant does not match stored NodeClass attribute: want " + want.String() + " got " + got.String())
	}
}
