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

// Command uabrowse connects to an OPC UA server, resolves a starting node
// and walks its hierarchy a few levels deep, printing what it finds as a
// table. The walk itself lives here, not in the address space: per the
// core's non-goals, discovering a complete sub-tree in one call is the
// caller's job, composing Browse with Get.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"
	"github.com/hashicorp/go-hclog"

	"github.com/sdoque/uacore/addressspace"
	"github.com/sdoque/uacore/uaclient"
)

func main() {
	endpoint := flag.String("endpoint", "opc.tcp://localhost:4840", "OPC UA server endpoint")
	start := flag.String("node", "ns=0;i=85", "starting node id to browse from (default: Objects folder)")
	depth := flag.Int("depth", 2, "how many browse levels to walk")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{Name: "uabrowse", Level: hclog.Info})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := opcua.NewClient(*endpoint, opcua.SecurityMode(ua.MessageSecurityModeNone))
	if err := conn.Connect(ctx); err != nil {
		logger.Error("connect failed", "endpoint", *endpoint, "error", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	client := uaclient.NewGopcuaClient(conn, logger.Named("client"))
	resolver := addressspace.NewResolver(client, addressspace.WithLogger(logger.Named("resolver")))

	startID, err := ua.ParseNodeID(*start)
	if err != nil {
		log.Fatalf("invalid node id %q: %v", *start, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Path\tClass\tNodeID\tBrowseName")
	fmt.Fprintln(w, "----\t-----\t------\t----------")

	if err := walk(ctx, resolver, startID, "", *depth, w); err != nil {
		log.Fatalf("walk failed: %v", err)
	}
	w.Flush()
}

func walk(ctx context.Context, r *addressspace.Resolver, id *ua.NodeID, path string, depth int, w *tabwriter.Writer) error {
	n, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	attrs := n.Attrs()
	name := attrs.BrowseName.Name
	fullPath := join(path, name)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fullPath, attrs.NodeClass, id.String(), name)

	if depth <= 0 {
		return nil
	}
	children, err := r.Browse(ctx, id)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := walk(ctx, r, child.ID(), fullPath, depth-1, w); err != nil {
			return err
		}
	}
	return nil
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + "/" + b
}
