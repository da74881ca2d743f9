// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

package config

// The functions below operate on Default().

// SetRoot overwrites the root of the default registry
func SetRoot(root string) { Default().SetRoot(root) }

// Root returns the root of the default registry
func Root() string { return Default().Root() }

// ConfigFile returns the models config file of the default registry
func ConfigFile() string { return Default().ConfigFile() }

// ConfigDir returns the config directory of the default registry
func ConfigDir() string { return Default().ConfigDir() }

// ModelsDir returns the models directory of the default registry
func ModelsDir() string { return Default().ModelsDir() }

// AutoscanDir returns the autoscan directory of the default registry
func AutoscanDir() string { return Default().AutoscanDir() }

// GlobalCacheDir returns the model cache directory of the default registry
func GlobalCacheDir(subdir ...string) string { return Default().CacheDir(subdir...) }
