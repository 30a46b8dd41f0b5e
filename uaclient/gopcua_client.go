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
	"context"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// GopcuaClient backs Client with a live github.com/gopcua/opcua session.
// It owns continuation-point handling for Browse, since the address space
// treats that as the Client's problem (see addressspace's browse engine):
// something in this repo has to loop BrowseNext until the server stops
// returning a continuation point, and this adapter is it.
type GopcuaClient struct {
	conn    *opcua.Client
	ns      *NamespaceTable
	objects *ObjectTypeManager
	vars    *VariableTypeManager
	log     hclog.Logger
}

// NewGopcuaClient wraps an already-connected *opcua.Client. The registries
// start empty; callers register subtype constructors before resolving
// anything that needs them.
func NewGopcuaClient(conn *opcua.Client, logger hclog.Logger) *GopcuaClient {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GopcuaClient{
		conn:    conn,
		ns:      NewNamespaceTable(),
		objects: NewObjectTypeManager(),
		vars:    NewVariableTypeManager(),
		log:     logger,
	}
}

func (c *GopcuaClient) NamespaceTable() *NamespaceTable           { return c.ns }
func (c *GopcuaClient) ObjectTypeManager() *ObjectTypeManager     { return c.objects }
func (c *GopcuaClient) VariableTypeManager() *VariableTypeManager { return c.vars }

// Read issues a single Read service call with maxAge 0.0 and
// TimestampsToReturn Neither, per the core's fixed contract.
func (c *GopcuaClient) Read(ctx context.Context, ids []*ua.ReadValueID) ([]*ua.DataValue, error) {
	req := &ua.ReadRequest{
		MaxAge:             0.0,
		TimestampsToReturn: ua.TimestampsToReturnNeither,
		NodesToRead:        ids,
	}
	resp, err := c.conn.Read(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "uaclient: read")
	}
	return resp.Results, nil
}

// Browse issues a Browse service call for desc and follows continuation
// points until the server returns none, concatenating every page in the
// order it was returned.
func (c *GopcuaClient) Browse(ctx context.Context, desc *ua.BrowseDescription) ([]*ua.ReferenceDescription, error) {
	req := &ua.BrowseRequest{
		NodesToBrowse: []*ua.BrowseDescription{desc},
	}
	resp, err := c.conn.Browse(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "uaclient: browse")
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	result := resp.Results[0]
	if result.StatusCode != ua.StatusOK {
		return nil, &StatusError{Code: result.StatusCode}
	}
	refs := append([]*ua.ReferenceDescription{}, result.References...)

	cp := result.ContinuationPoint
	for len(cp) > 0 {
		nextResp, err := c.conn.BrowseNext(ctx, &ua.BrowseNextRequest{
			ReleaseContinuationPoints: false,
			ContinuationPoints:        [][]byte{cp},
		})
		if err != nil {
			return nil, errors.Wrap(err, "uaclient: browse next")
		}
		if len(nextResp.Results) == 0 {
			break
		}
		next := nextResp.Results[0]
		if next.StatusCode != ua.StatusOK {
			return nil, &StatusError{Code: next.StatusCode}
		}
		refs = append(refs, next.References...)
		cp = next.ContinuationPoint
	}
	c.log.Trace("browsed", "node", desc.NodeID.String(), "references", len(refs))
	return refs, nil
}

// StatusError wraps a non-good OPC UA status code returned by Read or
// Browse, propagated verbatim per the ServiceError error kind.
type StatusError struct {
	Code ua.StatusCode
}

func (e *StatusError) Error() string { return "opc ua service error: " + e.Code.Error() }
