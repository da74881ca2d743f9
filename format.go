// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

package invokepaths

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Format selects how a Layout is rendered
type Format string

var _ pflag.Value = (*Format)(nil)

const (
	// FormatText is an aligned key/value listing
	FormatText Format = "text"
	// FormatYAML is a YAML document
	FormatYAML Format = "yaml"
	// FormatJSON is an indented JSON object
	FormatJSON Format = "json"
	// FormatMarkdown is a markdown table
	FormatMarkdown Format = "markdown"
	// DefaultFormat is used when no format is specified
	DefaultFormat Format = FormatText
)

// AvailableFormats returns a list of available output formats
func AvailableFormats() []string {
	return []string{
		string(FormatText),
		string(FormatYAML),
		string(FormatJSON),
		string(FormatMarkdown),
	}
}

// String implements the pflag.Value and fmt.Stringer interfaces
func (f *Format) String() string {
	return string(*f)
}

// Set implements the pflag.Value interface
func (f *Format) Set(value string) error {
	switch value {
	case string(FormatText):
		*f = FormatText
	case string(FormatYAML):
		*f = FormatYAML
	case string(FormatJSON):
		*f = FormatJSON
	case string(FormatMarkdown):
		*f = FormatMarkdown
	default:
		return fmt.Errorf("invalid output format: %s", value)
	}
	return nil
}

// Type implements the pflag.Value interface
func (f *Format) Type() string {
	return "string"
}
