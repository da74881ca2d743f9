// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

// Package invokepaths reports the resolved InvokeAI directory layout
package invokepaths

import (
	"slices"
	"strconv"

	"github.com/invoke-ai/invokepaths/config"
)

// Layout is every derived path and flag, taken from one registry snapshot
type Layout struct {
	Root                    string `json:"root"`
	InitFile                string `json:"init-file"`
	SettingsFile            string `json:"settings-file"`
	ConfigDir               string `json:"config-dir"`
	ConfigFile              string `json:"config-file"`
	ModelsDir               string `json:"models-dir"`
	AutoscanDir             string `json:"autoscan-dir"`
	ConvertedCheckpointsDir string `json:"converted-ckpts-dir"`
	CacheDir                string `json:"cache-dir"`

	TryPatchmatch     bool `json:"try-patchmatch"`
	AlwaysUseCPU      bool `json:"always-use-cpu"`
	InternetAvailable bool `json:"internet-available"`
	DisableXformers   bool `json:"disable-xformers"`
	FullPrecision     bool `json:"full-precision"`
}

// NewLayout captures the current state of reg
func NewLayout(reg *config.Registry) Layout {
	s := reg.Load()

	return Layout{
		Root:                    s.Root,
		InitFile:                s.InitFile(),
		SettingsFile:            s.SettingsFile(),
		ConfigDir:               s.ConfigDir(),
		ConfigFile:              s.ConfigFile(),
		ModelsDir:               s.ModelsDir(),
		AutoscanDir:             s.AutoscanDir(),
		ConvertedCheckpointsDir: s.ConvertedCheckpointsDir(),
		CacheDir:                config.CacheDir(reg.Env(), s.Root),
		TryPatchmatch:           s.TryPatchmatch,
		AlwaysUseCPU:            s.AlwaysUseCPU,
		InternetAvailable:       s.InternetAvailable,
		DisableXformers:         s.DisableXformers,
		FullPrecision:           s.FullPrecision,
	}
}

// Entry is one named value of a Layout
type Entry struct {
	Key   string
	Value string
	// IsPath is false for the boolean flags
	IsPath bool
}

// Entries returns every value of l in display order
func (l Layout) Entries() []Entry {
	return []Entry{
		{"root", l.Root, true},
		{"init-file", l.InitFile, true},
		{"settings-file", l.SettingsFile, true},
		{"config-dir", l.ConfigDir, true},
		{"config-file", l.ConfigFile, true},
		{"models-dir", l.ModelsDir, true},
		{"autoscan-dir", l.AutoscanDir, true},
		{"converted-ckpts-dir", l.ConvertedCheckpointsDir, true},
		{"cache-dir", l.CacheDir, true},
		{"try-patchmatch", strconv.FormatBool(l.TryPatchmatch), false},
		{"always-use-cpu", strconv.FormatBool(l.AlwaysUseCPU), false},
		{"internet-available", strconv.FormatBool(l.InternetAvailable), false},
		{"disable-xformers", strconv.FormatBool(l.DisableXformers), false},
		{"full-precision", strconv.FormatBool(l.FullPrecision), false},
	}
}

// PathNames returns the keys accepted by Path, in display order
func (l Layout) PathNames() []string {
	names := []string{}
	for _, e := range l.Entries() {
		if e.IsPath {
			names = append(names, e.Key)
		}
	}
	return names
}

// Path returns the path stored under name
func (l Layout) Path(name string) (string, bool) {
	entries := l.Entries()
	idx := slices.IndexFunc(entries, func(e Entry) bool {
		return e.IsPath && e.Key == name
	})
	if idx < 0 {
		return "", false
	}
	return entries[idx].Value, true
}
