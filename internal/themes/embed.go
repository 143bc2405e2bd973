// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

// Package themes embeds the core site theme into the binary.
package themes

import "embed"

// FS contains the embedded default theme. A theme of the same name in the
// custom themes directory replaces it.
//
//go:embed all:default
var FS embed.FS
