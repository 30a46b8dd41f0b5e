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

// Package attrcat holds the static, class-indexed table of OPC UA attribute
// ids that must be read to fully populate a node of a given NodeClass.
package attrcat

import "github.com/gopcua/opcua/ua"

// BaseAttributes is the attribute prefix shared by every NodeClass, in the
// order a UaNode's base fields are laid out.
var BaseAttributes = []ua.AttributeID{
	ua.AttributeIDNodeID,
	ua.AttributeIDNodeClass,
	ua.AttributeIDBrowseName,
	ua.AttributeIDDisplayName,
	ua.AttributeIDDescription,
	ua.AttributeIDWriteMask,
	ua.AttributeIDUserWriteMask,
}

// variableValueTail is the value/data-type/value-rank/array-dimensions block
// shared verbatim between Variable and VariableType (the latter stops there:
// it has no AccessLevel/UserAccessLevel/MinimumSamplingInterval/Historizing,
// those being run-time access attributes that only apply to instances).
var variableValueTail = []ua.AttributeID{
	ua.AttributeIDValue,
	ua.AttributeIDDataType,
	ua.AttributeIDValueRank,
	ua.AttributeIDArrayDimensions,
}

var variableTail = append(append([]ua.AttributeID{}, variableValueTail...),
	ua.AttributeIDAccessLevel,
	ua.AttributeIDUserAccessLevel,
	ua.AttributeIDMinimumSamplingInterval,
	ua.AttributeIDHistorizing,
)

var classTail = map[ua.NodeClass][]ua.AttributeID{
	ua.NodeClassObject: {
		ua.AttributeIDEventNotifier,
	},
	ua.NodeClassVariable: variableTail,
	ua.NodeClassMethod: {
		ua.AttributeIDExecutable,
		ua.AttributeIDUserExecutable,
	},
	ua.NodeClassView: {
		ua.AttributeIDContainsNoLoops,
		ua.AttributeIDEventNotifier,
	},
	ua.NodeClassObjectType: {
		ua.AttributeIDIsAbstract,
	},
	ua.NodeClassVariableType: append([]ua.AttributeID{
		ua.AttributeIDIsAbstract,
	}, variableValueTail...),
	ua.NodeClassDataType: {
		ua.AttributeIDIsAbstract,
	},
	ua.NodeClassReferenceType: {
		ua.AttributeIDIsAbstract,
		ua.AttributeIDSymmetric,
		ua.AttributeIDInverseName,
	},
}

// ForClass returns the full, ordered attribute list for class c: the base
// attributes followed by the class-specific tail. The second return value
// is false for an unrecognized class.
func ForClass(c ua.NodeClass) ([]ua.AttributeID, bool) {
	tail, ok := classTail[c]
	if !ok {
		return nil, false
	}
	full := make([]ua.AttributeID, 0, len(BaseAttributes)+len(tail))
	full = append(full, BaseAttributes...)
	full = append(full, tail...)
	return full, true
}

// RemainingForClass returns the attribute list for class c with the base
// prefix removed, preserving relative order. This is the set of ids read
// once the base attributes (and NodeClass dispatch) are already in hand.
func RemainingForClass(c ua.NodeClass) ([]ua.AttributeID, bool) {
	tail, ok := classTail[c]
	if !ok {
		return nil, false
	}
	out := make([]ua.AttributeID, len(tail))
	copy(out, tail)
	return out, true
}
