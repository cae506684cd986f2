// Package daemon wires the dataset layer and matching orchestrator into a
// single long-running service with single-instance enforcement.
package daemon
