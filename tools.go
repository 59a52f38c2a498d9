//go:build tools

package tools

// Pins CLI tooling used by `go generate` so its version is tracked in go.mod.
import (
	_ "github.com/swaggo/swag/cmd/swag"
)
