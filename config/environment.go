// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

package config

import (
	"errors"
	"os"
)

// Environment is the source of every environment lookup the registry performs
type Environment interface {
	// Getenv returns the value of the variable, or "" when it is unset
	Getenv(key string) string
	// UserHomeDir returns the current user's home directory
	UserHomeDir() (string, error)
}

// OSEnvironment reads from the real process environment
type OSEnvironment struct{}

var _ Environment = OSEnvironment{}

// Getenv implements Environment
func (OSEnvironment) Getenv(key string) string {
	return os.Getenv(key)
}

// UserHomeDir implements Environment
func (OSEnvironment) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// MapEnvironment is a fixed set of variables, mostly useful in tests
//
// The home directory is taken from the HOME key.
type MapEnvironment map[string]string

var _ Environment = MapEnvironment(nil)

// Getenv implements Environment
func (m MapEnvironment) Getenv(key string) string {
	return m[key]
}

// UserHomeDir implements Environment
func (m MapEnvironment) UserHomeDir() (string, error) {
	home := m["HOME"]
	if home == "" {
		return "", errors.New("$HOME is not defined")
	}
	return home, nil
}
