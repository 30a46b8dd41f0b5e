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
	"fmt"

	"github.com/gopcua/opcua/ua"

	"github.com/sdoque/uacore/node"
	"github.com/sdoque/uacore/uaerrors"
)

func toReadValueIDs(id *ua.NodeID, attrs []ua.AttributeID) []*ua.ReadValueID {
	out := make([]*ua.ReadValueID, len(attrs))
	for i, a := range attrs {
		out[i] = &ua.ReadValueID{NodeID: id, AttributeID: a}
	}
	return out
}

func variantOf(dv *ua.DataValue) *ua.Variant {
	if dv == nil || dv.Status != ua.StatusOK || dv.Value == nil {
		return nil
	}
	return dv.Value
}

func qualifiedNameOf(dv *ua.DataValue) *ua.QualifiedName {
	v := variantOf(dv)
	if v == nil {
		return nil
	}
	switch t := v.Value().(type) {
	case *ua.QualifiedName:
		return t
	case ua.QualifiedName:
		return &t
	default:
		return nil
	}
}

func localizedTextOrNil(dv *ua.DataValue) *ua.LocalizedText {
	v := variantOf(dv)
	if v == nil {
		return nil
	}
	switch t := v.Value().(type) {
	case *ua.LocalizedText:
		return t
	case ua.LocalizedText:
		return &t
	default:
		return nil
	}
}

func nodeIDOrNil(dv *ua.DataValue) *ua.NodeID {
	v := variantOf(dv)
	if v == nil {
		return nil
	}
	return v.NodeID()
}

func uint32OrZero(dv *ua.DataValue) uint32 {
	v := variantOf(dv)
	if v == nil {
		return 0
	}
	switch t := v.Value().(type) {
	case uint32:
		return t
	case int32:
		return uint32(t)
	default:
		return 0
	}
}

func int32OrZero(dv *ua.DataValue) int32 {
	v := variantOf(dv)
	if v == nil {
		return 0
	}
	switch t := v.Value().(type) {
	case int32:
		return t
	case int64:
		return int32(t)
	default:
		return 0
	}
}

func byteOrZero(dv *ua.DataValue) byte {
	v := variantOf(dv)
	if v == nil {
		return 0
	}
	switch t := v.Value().(type) {
	case byte:
		return t
	case int32:
		return byte(t)
	case uint32:
		return byte(t)
	default:
		return 0
	}
}

func boolOrZero(dv *ua.DataValue) bool {
	v := variantOf(dv)
	if v == nil {
		return false
	}
	b, _ := v.Value().(bool)
	return b
}

func float64PtrOrNil(dv *ua.DataValue) *float64 {
	v := variantOf(dv)
	if v == nil {
		return nil
	}
	switch t := v.Value().(type) {
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	default:
		return nil
	}
}

func uint32SliceOrNil(dv *ua.DataValue) []uint32 {
	v := variantOf(dv)
	if v == nil {
		return nil
	}
	dims, ok := v.Value().([]uint32)
	if !ok {
		return nil
	}
	return dims
}

func isRecognizedClass(c ua.NodeClass) bool {
	switch c {
	case ua.NodeClassObject, ua.NodeClassVariable, ua.NodeClassMethod, ua.NodeClassView,
		ua.NodeClassObjectType, ua.NodeClassVariableType, ua.NodeClassDataType, ua.NodeClassReferenceType:
		return true
	default:
		return false
	}
}

func variantMismatch(id *ua.NodeID, wantClass string) error {
	return uaerrors.New(uaerrors.VariantMismatch, fmt.Sprintf("node %s is not a %s", id.String(), wantClass))
}

// decodeBase reads the seven base attributes out of values, in the fixed
// order attrcat.BaseAttributes lists them, and returns the populated Base
// plus its NodeClass. A null or unrecognized NodeClass fails with
// BadNodeClassInvalid; a null BrowseName or DisplayName fails with
// BadUnexpectedError, since both are mandatory per §4.7.
func decodeBase(id *ua.NodeID, values []*ua.DataValue) (node.Base, ua.NodeClass, error) {
	if len(values) < 7 {
		return node.Base{}, 0, uaerrors.New(uaerrors.BadUnexpectedError, "short base attribute read for "+id.String())
	}

	classVariant := variantOf(values[1])
	if classVariant == nil {
		return node.Base{}, 0, uaerrors.New(uaerrors.BadNodeClassInvalid, "null NodeClass attribute for "+id.String())
	}
	class := ua.NodeClass(classVariant.Int())
	if !isRecognizedClass(class) {
		return node.Base{}, 0, uaerrors.New(uaerrors.BadNodeClassInvalid, fmt.Sprintf("unrecognized NodeClass %d for %s", class, id.String()))
	}

	browseName := qualifiedNameOf(values[2])
	if browseName == nil {
		return node.Base{}, 0, uaerrors.New(uaerrors.BadUnexpectedError, "null BrowseName attribute for "+id.String())
	}
	displayName := localizedTextOrNil(values[3])
	if displayName == nil {
		return node.Base{}, 0, uaerrors.New(uaerrors.BadUnexpectedError, "null DisplayName attribute for "+id.String())
	}

	base := node.Base{
		NodeID:        id,
		NodeClass:     class,
		BrowseName:    browseName,
		DisplayName:   displayName,
		Description:   localizedTextOrNil(values[4]),
		WriteMask:     uint32OrZero(values[5]),
		UserWriteMask: uint32OrZero(values[6]),
	}
	return base, class, nil
}
