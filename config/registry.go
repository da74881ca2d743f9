// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

package config

import (
	"sync"
	"sync/atomic"
)

// Registry holds the current Settings and the Environment used to resolve them
//
// Settings are stored as immutable snapshots: readers always see a complete
// record and writers install a modified copy. It is safe for concurrent use,
// concurrent writers are last-writer-wins.
type Registry struct {
	env      Environment
	settings atomic.Pointer[Settings]
}

// New creates a registry whose root is resolved from env (see ResolveRoot)
//
// A nil env means the real process environment.
func New(env Environment) *Registry {
	if env == nil {
		env = OSEnvironment{}
	}

	root, _ := ResolveRoot(env)
	return NewWithSettings(env, Defaults(root))
}

// NewWithSettings creates a registry starting from an explicit snapshot
func NewWithSettings(env Environment, s Settings) *Registry {
	if env == nil {
		env = OSEnvironment{}
	}

	r := &Registry{env: env}
	r.settings.Store(&s)
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return New(OSEnvironment{})
})

// Default returns the process-wide registry, creating it on first use
func Default() *Registry {
	return defaultRegistry()
}

// Env returns the environment the registry reads from
func (r *Registry) Env() Environment {
	return r.env
}

// Load returns a copy of the current settings
func (r *Registry) Load() Settings {
	return *r.settings.Load()
}

// Update applies fn to a copy of the current settings and installs the result
//
// fn may be called more than once if another writer races it, so it must not
// have side effects.
func (r *Registry) Update(fn func(s *Settings)) {
	for {
		current := r.settings.Load()
		next := *current
		fn(&next)
		if r.settings.CompareAndSwap(current, &next) {
			return
		}
	}
}

// SetRoot overwrites the root with exactly the given value
func (r *Registry) SetRoot(root string) {
	r.Update(func(s *Settings) {
		s.Root = root
	})
}

// Root returns the current root
func (r *Registry) Root() string {
	return r.settings.Load().Root
}

// ConfigFile returns <root>/<config dir>/<models file>
func (r *Registry) ConfigFile() string {
	return r.settings.Load().ConfigFile()
}

// ConfigDir returns <root>/<config dir>
func (r *Registry) ConfigDir() string {
	return r.settings.Load().ConfigDir()
}

// ModelsDir returns <root>/<models dir>
func (r *Registry) ModelsDir() string {
	return r.settings.Load().ModelsDir()
}

// AutoscanDir returns <root>/<autoscan dir>
func (r *Registry) AutoscanDir() string {
	return r.settings.Load().AutoscanDir()
}

// InitFile returns <root>/<init file>
func (r *Registry) InitFile() string {
	return r.settings.Load().InitFile()
}

// ConvertedCheckpointsDir returns <root>/<converted checkpoints dir>
func (r *Registry) ConvertedCheckpointsDir() string {
	return r.settings.Load().ConvertedCheckpointsDir()
}

// CacheDir returns the model cache directory, see the package level CacheDir
func (r *Registry) CacheDir(subdir ...string) string {
	return CacheDir(r.env, r.Root(), subdir...)
}

// SettingsFile returns <root>/invokeai.yaml
func (r *Registry) SettingsFile() string {
	return r.settings.Load().SettingsFile()
}
