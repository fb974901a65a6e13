// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides terminal widgets shared by r9s commands.

Spinner (spinner.go) animates a waiting indicator on an interactive
terminal while a reply is pending. It owns the output line until Stop
returns; after that the caller may write freely.
*/
package components
