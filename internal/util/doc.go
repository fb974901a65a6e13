// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small file and text helpers shared by r9s packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file replacement with fsync and rename
//   - Ellipsize: rune-safe truncation with a trailing "…"
//   - FlattenLines: collapse a multi-line message into one display line
//   - FitWidth: clip a line to a terminal column budget (CJK aware)
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0o600)
//	preview := util.Ellipsize(util.FlattenLines(text), 60)
package util
