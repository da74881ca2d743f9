// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

// Package config provides the process-wide path registry for InvokeAI
package config

import (
	"path/filepath"
	"strings"
)

// Environment variables consulted while resolving paths
const (
	RootEnvVar         = "INVOKEAI_ROOT"
	VirtualEnvVar      = "VIRTUAL_ENV"
	HFHomeEnvVar       = "HF_HOME"
	XDGCacheHomeEnvVar = "XDG_CACHE_HOME"
)

// DefaultRootName is the directory under $HOME used when nothing else picks a root
const DefaultRootName = "invokeai"

// RootSource records which rule produced the root directory
type RootSource string

const (
	// RootFromEnv means INVOKEAI_ROOT was set
	RootFromEnv RootSource = RootEnvVar
	// RootFromVirtualEnv means the parent of VIRTUAL_ENV was used
	RootFromVirtualEnv RootSource = VirtualEnvVar
	// RootFromDefault means ~/invokeai was used
	RootFromDefault RootSource = "default"
)

// ExpandUser replaces a leading "~" with the user's home directory
//
// Paths like "~bob/x" are returned untouched, as is everything when the home
// directory cannot be determined.
func ExpandUser(env Environment, p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p
	}

	home, err := env.UserHomeDir()
	if err != nil || home == "" {
		return p
	}

	return filepath.Join(home, p[1:])
}

// ResolvePath expands a leading "~" and makes the result absolute
//
// Existence is never checked.
func ResolvePath(env Environment, p string) string {
	p = ExpandUser(env, p)
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// ResolveRoot picks the root directory from the environment
//
//  1. $INVOKEAI_ROOT
//  2. the parent of $VIRTUAL_ENV
//  3. ~/invokeai
func ResolveRoot(env Environment) (string, RootSource) {
	if root := env.Getenv(RootEnvVar); root != "" {
		return ResolvePath(env, root), RootFromEnv
	}

	if venv := env.Getenv(VirtualEnvVar); venv != "" {
		return ResolvePath(env, filepath.Join(ExpandUser(env, venv), "..")), RootFromVirtualEnv
	}

	return ResolvePath(env, filepath.Join("~", DefaultRootName)), RootFromDefault
}
