// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

// Package main prints the JSON schema of the settings file.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	v0 "github.com/invoke-ai/invokepaths/config/v0"
)

func main() {
	schema := v0.Schema()

	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stdout, string(b))
}
