// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutableName(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "Relative path", args: []string{"./gw"}, expected: "gw"},
		{name: "Just filename", args: []string{"gw"}, expected: "gw"},
		{name: "Absolute unix path", args: []string{"/usr/local/bin/gw"}, expected: "gw"},
		{name: "Windows path", args: []string{`C:\bin\gw.exe`}, expected: "gw"},
		{name: "Mixed separators", args: []string{`C:\tools/gw.exe`}, expected: "gw"},
		{name: "Keeps other extensions", args: []string{"/opt/gw.bin"}, expected: "gw.bin"},
		{name: "Trailing separator", args: []string{"/opt/gw/"}, expected: "gw"},
		{name: "Empty args", args: nil, expected: DefaultExecutableName},
		{name: "Empty name", args: []string{""}, expected: DefaultExecutableName},
		{name: "Only separators", args: []string{"///"}, expected: DefaultExecutableName},
		{name: "Bare exe suffix", args: []string{".exe"}, expected: DefaultExecutableName},
		{name: "Dot", args: []string{"."}, expected: DefaultExecutableName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExecutableName(tt.args))
		})
	}
}

func TestGetExecutableName(t *testing.T) {
	assert.NotEmpty(t, GetExecutableName())
}
