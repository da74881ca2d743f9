// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

// Package main writes the settings file JSON schema to the repository root.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	v0 "github.com/invoke-ai/invokepaths/config/v0"
)

// SchemaFileName is the file written by run
const SchemaFileName = "invokeai.schema.json"

func run(root string) error {
	schema := v0.Schema()
	schema.ID = "https://raw.githubusercontent.com/invoke-ai/invokepaths/main/" + SchemaFileName

	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(root, SchemaFileName), append(b, '\n'), 0644)
}

func main() {
	// usage: `go run gen/main.go`
	if err := run(""); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
