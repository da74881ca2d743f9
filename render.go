// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

package invokepaths

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Render writes l to w in the given format
//
// Output is only styled when w is a terminal and NO_COLOR is not set.
func Render(w io.Writer, l Layout, f Format) error {
	color := colorize(w)

	switch f {
	case FormatText, "":
		return renderText(w, l, color)
	case FormatYAML:
		return renderYAML(w, l, color)
	case FormatJSON:
		return renderJSON(w, l)
	case FormatMarkdown:
		return renderMarkdown(w, l, color)
	default:
		return fmt.Errorf("invalid output format: %s", f)
	}
}

func colorize(w io.Writer) bool {
	if termenv.EnvNoColor() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	keyStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#2e7de9", // tokyonight-day blue
		Dark:  "#7aa2f7", // tokyonight blue
	})
	flagStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#8c6c3e", // tokyonight-day amber/yellow
		Dark:  "#e0af68", // tokyonight amber/yellow
	})
)

func renderText(w io.Writer, l Layout, color bool) error {
	entries := l.Entries()

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Key))
	}

	for _, e := range entries {
		key := fmt.Sprintf("%-*s", width, e.Key)
		if color {
			if e.IsPath {
				key = keyStyle.Render(key)
			} else {
				key = flagStyle.Render(key)
			}
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func renderYAML(w io.Writer, l Layout, color bool) error {
	b, err := yaml.MarshalWithOptions(l, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	if !color {
		_, err := w.Write(b)
		return err
	}

	style := "tokyonight-day"
	if lipgloss.HasDarkBackground() {
		style = "tokyonight-moon"
	}

	var buf strings.Builder
	if err := quick.Highlight(&buf, string(b), "yaml", "terminal256", style); err != nil {
		_, err := w.Write(b)
		return err
	}

	_, err = fmt.Fprintln(w, strings.TrimSpace(buf.String()))
	return err
}

func renderJSON(w io.Writer, l Layout) error {
	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Markdown returns l as a markdown table
func Markdown(l Layout) string {
	var sb strings.Builder
	sb.WriteString("# InvokeAI layout\n\n")
	sb.WriteString("| setting | value |\n")
	sb.WriteString("| --- | --- |\n")
	for _, e := range l.Entries() {
		fmt.Fprintf(&sb, "| %s | `%s` |\n", e.Key, e.Value)
	}
	return sb.String()
}

func renderMarkdown(w io.Writer, l Layout, color bool) error {
	md := Markdown(l)

	if !color {
		_, err := io.WriteString(w, md)
		return err
	}

	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}

	out, err := glamour.Render(md, style)
	if err != nil {
		_, err := io.WriteString(w, md)
		return err
	}

	_, err = io.WriteString(w, out)
	return err
}
