// Package main hosts the Sentinel CLI entrypoint and command graph.
//
// The Cobra command tree lets agents check a license id, register a new
// driver, request a transfer, and lets administrators import fresh branch
// snapshots, read reports, list past imports and export metrics. Config
// resolution, logging setup and service wiring live in commandContext so
// each command only deals with flags and rendering.
package main
