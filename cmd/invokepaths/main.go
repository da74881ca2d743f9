// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

// Package main is the entry point for the application
package main

import (
	"os"

	"github.com/invoke-ai/invokepaths/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
