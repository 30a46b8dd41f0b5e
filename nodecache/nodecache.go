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

// Package nodecache is the bounded, write-time-expiring cache shared by
// every resolve and browse path. It wraps hashicorp/golang-lru's expirable
// LRU rather than hand-rolling eviction: the library already gives us the
// size bound and the per-entry TTL the node cache needs, with its own
// internal locking so concurrent Get/Put need no additional synchronization
// here.
package nodecache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gopcua/opcua/ua"
	"github.com/sdoque/uacore/node"
)

// DefaultExpireAfter and DefaultMaximumSize are the construction-time
// defaults. Per the spec, both are fixed at construction: later changes to
// "configured" values have no effect on an already-built cache, so there is
// deliberately no setter.
const (
	DefaultExpireAfter = 2 * time.Minute
	DefaultMaximumSize = 1024
)

// Cache maps a NodeId to its materialized node.Node. Entries are evicted
// either when they exceed expireAfter or when the cache exceeds
// maximumSize, whichever the underlying LRU enforces first.
type Cache struct {
	lru *lru.LRU[string, node.Node]
}

// New builds a Cache with the given bounds. A maximumSize <= 0 or
// expireAfter <= 0 falls back to the package defaults.
func New(maximumSize int, expireAfter time.Duration) *Cache {
	if maximumSize <= 0 {
		maximumSize = DefaultMaximumSize
	}
	if expireAfter <= 0 {
		expireAfter = DefaultExpireAfter
	}
	return &Cache{lru: lru.NewLRU[string, node.Node](maximumSize, nil, expireAfter)}
}

// Get returns the cached record for id, if any and not yet expired.
func (c *Cache) Get(id *ua.NodeID) (node.Node, bool) {
	if id == nil {
		return nil, false
	}
	return c.lru.Get(keyOf(id))
}

// Put publishes a record for id. Publication is at-most-once only in the
// sense that the cache's own internal lock serializes individual Add
// calls; two concurrent resolves of the same id may each construct a
// record and the later Put wins. That is acceptable: records for the same
// id and server state are value-equal, so a lost race merely costs one
// redundant resolve, never a wrong answer.
func (c *Cache) Put(id *ua.NodeID, n node.Node) {
	if id == nil || n == nil {
		return
	}
	c.lru.Add(keyOf(id), n)
}

// Len reports the number of live entries, mostly useful for tests.
func (c *Cache) Len() int { return c.lru.Len() }

func keyOf(id *ua.NodeID) string { return id.String() }
