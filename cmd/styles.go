// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// https://github.com/charmbracelet/vhs/blob/main/themes.json
var levelColors = map[log.Level]lipgloss.AdaptiveColor{
	log.DebugLevel: {Light: "#2e7de9", Dark: "#7aa2f7"}, // blue
	log.InfoLevel:  {Light: "#007197", Dark: "#7dcfff"}, // cyan
	log.WarnLevel:  {Light: "#8c6c3e", Dark: "#e0af68"}, // amber/yellow
	log.ErrorLevel: {Light: "#f52a65", Dark: "#f7768e"}, // red
	log.FatalLevel: {Light: "#9854f1", Dark: "#bb9af7"}, // magenta
}

// DefaultStyles returns the tokyonight log styles.
func DefaultStyles() *log.Styles {
	styles := log.DefaultStyles()
	for level, color := range levelColors {
		styles.Levels[level] = styles.Levels[level].Foreground(color)
	}
	return styles
}
