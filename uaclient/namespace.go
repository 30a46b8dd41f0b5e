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

import "sync"

// wellKnownNamespaceZero is what a fresh table holds at index 0, which is
// reserved for the OPC UA namespace itself. Rebuild clears it along with
// every other entry and keeps it only if uris lists it.
const wellKnownNamespaceZero = "http://opcfoundation.org/UA/"

// NamespaceTable is the index <-> uri mapping a server uses to compress
// node identifiers on the wire. It is mutated only by Rebuild, which
// replaces its contents wholesale under an exclusive lock — the shape the
// Read of the Server object's NamespaceArray attribute drives, per the
// localization algorithm in the resolver package.
type NamespaceTable struct {
	mu      sync.RWMutex
	byIndex map[uint16]string
	byURI   map[string]uint16
}

// NewNamespaceTable returns a table pre-seeded with namespace 0.
func NewNamespaceTable() *NamespaceTable {
	return &NamespaceTable{
		byIndex: map[uint16]string{0: wellKnownNamespaceZero},
		byURI:   map[string]uint16{wellKnownNamespaceZero: 0},
	}
}

// Index returns the namespace index for uri, if present.
func (t *NamespaceTable) Index(uri string) (uint16, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.byURI[uri]
	return idx, ok
}

// URI returns the uri registered at idx, if present.
func (t *NamespaceTable) URI(idx uint16) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	uri, ok := t.byIndex[idx]
	return uri, ok
}

// Rebuild clears the table and reinserts entries from uris: for each index
// i < len(uris) capped at math.MaxUint16, a non-empty uri not already
// present at a lower index is kept. This mirrors a fresh read of the
// server's NamespaceArray attribute and runs under the table's own
// exclusive lock; no caller ever observes a partially rebuilt table.
func (t *NamespaceTable) Rebuild(uris []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byIndex = make(map[uint16]string, len(uris))
	t.byURI = make(map[string]uint16, len(uris))
	for i, u := range uris {
		if i > 0xFFFF {
			break
		}
		if u == "" {
			continue
		}
		if _, exists := t.byURI[u]; exists {
			continue
		}
		idx := uint16(i)
		t.byIndex[idx] = u
		t.byURI[u] = idx
	}
}
