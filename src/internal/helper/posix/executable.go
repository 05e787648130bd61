// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"strings"
)

// DefaultExecutableName is returned when no program name can be derived.
const DefaultExecutableName = "mcp-upgrade-gateway"

// ExecutableName returns the base name of args[0] without a ".exe" suffix.
// Both '/' and '\' are treated as separators regardless of the host OS, so a
// Windows path is handled on Unix and the other way around.
//
// Returns DefaultExecutableName when args is empty or yields no name.
func ExecutableName(args []string) string {
	if len(args) == 0 {
		return DefaultExecutableName
	}

	parts := strings.FieldsFunc(args[0], func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) == 0 {
		return DefaultExecutableName
	}

	name := strings.TrimSuffix(parts[len(parts)-1], ".exe")
	if name == "" || name == "." || name == ".." {
		return DefaultExecutableName
	}
	return name
}

// GetExecutableName returns [ExecutableName] of os.Args.
func GetExecutableName() string { return ExecutableName(os.Args) }
