// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-style helpers for command-line presentation.
//
// Key functions:
//   - ExecutableName: Derives a clean program name from an argument vector
//   - GetExecutableName: ExecutableName applied to os.Args
//
// The CLI uses the result for cobra's Use line, so help output shows
// "mcp-upgrade-gateway" for both "/usr/local/bin/mcp-upgrade-gateway" and
// "C:\bin\mcp-upgrade-gateway.exe".
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
