// Copyright 2025 The EmojiServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the emojiserve picker backend and its debugging CLI.

Note: This is a BETA release. APIs and functionality may rapidly change.

EmojiServe searches emoji, symbol and emoticon catalogs by name and keyword
prefix, remembers recently used items and preferred skin tone or gender
variants, and pages GIF results from a remote backend. It runs as an IPC
server for picker front ends, or as an interactive REPL for testing.

# Usage

Start the IPC server with default settings:

	emojiserve

Use a custom data directory and enable debug logging:

	emojiserve serve --data /path/to/catalogs -d

Try searches by hand:

	emojiserve repl
	emojiserve search --category symbol arrow right

The data directory holds one catalog per category, named after it:
emoji.json, symbol.json, emoticon.json, or the same names with a .msgpack
extension.

# Configuration

Runtime configuration lives in a TOML file that is created with defaults if
missing:

	[server]
	max_limit = 64
	codec = "json"

	[recent]
	max_recents = 10
	backend = "bolt"

	[gif]
	enabled = true
	api_key = "..."

See package server for the IPC protocol.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "emojiserve"
	gh      = "https://github.com/bastiangx/emojiserve"
)

// sigHandler runs cleanup and exits normally on OS signals.
func sigHandler(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cleanup()
		os.Exit(0)
	}()
}

// main only manages the flow; commands live in commands.go.
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
