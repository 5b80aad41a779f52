// Package app contains the core application logic. It wires the engine
// configuration, the record store and the lineage and prediction engines
// together behind use cases that the CLI and the HTTP host share, decoupled
// from any specific entrypoint.
package app
