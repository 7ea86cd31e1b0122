// Package cli wires the cobra command tree for the apm binary.
package cli
