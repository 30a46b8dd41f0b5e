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

package uaclient

import (
	"sync"

	"github.com/gopcua/opcua/ua"

	"github.com/sdoque/uacore/node"
)

// VariableFields groups the Variable-specific attributes a VariableConstructor
// needs, shared verbatim by VariableType's value/data-type/value-rank/
// array-dimensions block.
type VariableFields struct {
	Value                   *ua.DataValue
	DataType                *ua.NodeID
	ValueRank               int32
	ArrayDimensions         []uint32
	AccessLevel             byte
	UserAccessLevel         byte
	MinimumSamplingInterval *float64
	Historizing             bool
}

// ObjectConstructor builds an Object node (or a registered subtype of it)
// from the assembled base attributes, the EventNotifier attribute, and the
// resolved type definition. Client is passed through so a subtype
// constructor can issue its own extra reads.
type ObjectConstructor func(c Client, base node.Base, eventNotifier byte, typeDefinition *ua.NodeID) node.Node

// VariableConstructor is the Variable equivalent of ObjectConstructor.
type VariableConstructor func(c Client, base node.Base, fields VariableFields, typeDefinition *ua.NodeID) node.Node

// DefaultObjectConstructor builds a plain node.Object. It is not stored in
// an ObjectTypeManager: the resolver uses it whenever GetNodeConstructor
// finds no registration for the type definition.
func DefaultObjectConstructor(_ Client, base node.Base, eventNotifier byte, typeDefinition *ua.NodeID) node.Node {
	node.ExpectClass(ua.NodeClassObject, base.NodeClass)
	return node.Object{Base: base, EventNotifier: eventNotifier, TypeDefinition: typeDefinition}
}

// DefaultVariableConstructor builds a plain node.Variable.
func DefaultVariableConstructor(_ Client, base node.Base, f VariableFields, typeDefinition *ua.NodeID) node.Node {
	node.ExpectClass(ua.NodeClassVariable, base.NodeClass)
	return node.Variable{
		Base:                    base,
		Value:                   f.Value,
		DataType:                f.DataType,
		ValueRank:               f.ValueRank,
		ArrayDimensions:         f.ArrayDimensions,
		AccessLevel:             f.AccessLevel,
		UserAccessLevel:         f.UserAccessLevel,
		MinimumSamplingInterval: f.MinimumSamplingInterval,
		Historizing:             f.Historizing,
		TypeDefinition:          typeDefinition,
	}
}

// ObjectTypeManager maps an ObjectType type-definition NodeId to the
// constructor that should build instances of it. This is an extension
// point, not polymorphism over the variant itself: registering a
// constructor for FolderType does not change how FolderType itself is
// represented, only how Objects typed by it are built.
type ObjectTypeManager struct {
	mu    sync.RWMutex
	ctors map[string]ObjectConstructor
}

// NewObjectTypeManager returns an empty registry; lookups on it always fall
// through to DefaultObjectConstructor.
func NewObjectTypeManager() *ObjectTypeManager {
	return &ObjectTypeManager{ctors: make(map[string]ObjectConstructor)}
}

// Register installs ctor for instances of typeDefinition.
func (m *ObjectTypeManager) Register(typeDefinition *ua.NodeID, ctor ObjectConstructor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctors[typeDefinition.String()] = ctor
}

// GetNodeConstructor returns the registered constructor for typeDefinition,
// if any. A nil typeDefinition (no type definition could be resolved) never
// matches.
func (m *ObjectTypeManager) GetNodeConstructor(typeDefinition *ua.NodeID) (ObjectConstructor, bool) {
	if typeDefinition == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ctor, ok := m.ctors[typeDefinition.String()]
	return ctor, ok
}

// VariableTypeManager is the Variable equivalent of ObjectTypeManager.
type VariableTypeManager struct {
	mu    sync.RWMutex
	ctors map[string]VariableConstructor
}

// NewVariableTypeManager returns an empty registry.
func NewVariableTypeManager() *VariableTypeManager {
	return &VariableTypeManager{ctors: make(map[string]VariableConstructor)}
}

// Register installs ctor for instances of typeDefinition.
func (m *VariableTypeManager) Register(typeDefinition *ua.NodeID, ctor VariableConstructor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctors[typeDefinition.String()] = ctor
}

// GetNodeConstructor returns the registered constructor for typeDefinition,
// if any.
func (m *VariableTypeManager) GetNodeConstructor(typeDefinition *ua.NodeID) (VariableConstructor, bool) {
	if typeDefinition == nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ctor, ok := m.ctors[typeDefinition.String()]
	return ctor, ok
}
