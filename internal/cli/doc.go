// Package cli wires configuration, logging and storage backends into a
// tend.App for the command line entry points.
package cli
