// Package internal holds shared primitives (token material generation) that
// must not become part of the public API surface.
package internal
