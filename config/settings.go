// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

package config

import (
	"path/filepath"
)

// Default file and directory names, all relative to the root
const (
	DefaultInitFileName                = "invokeai.init"
	DefaultModelsFileName              = "models.yaml"
	DefaultModelsDirName               = "models"
	DefaultConfigDirName               = "configs"
	DefaultAutoscanDirName             = "weights"
	DefaultConvertedCheckpointsDirName = "converted-ckpts"
)

// SettingsFileName is the optional settings file kept at the root
const SettingsFileName = "invokeai.yaml"

// HuggingFaceDirName is appended to $XDG_CACHE_HOME, mirroring the huggingface_hub client
const HuggingFaceDirName = "huggingface"

// fallbackCacheDirName is fixed, it does not follow ModelsDirName
const fallbackCacheDirName = "models"

// Settings is one snapshot of the registry
//
// Derivations on Settings are pure functions of its fields.
type Settings struct {
	// Root is the base directory for all application data
	Root string

	InitFileName                string
	ModelsFileName              string
	ModelsDirName               string
	ConfigDirName               string
	AutoscanDirName             string
	ConvertedCheckpointsDirName string

	// TryPatchmatch controls whether the optional inpainting helper is loaded
	TryPatchmatch bool
	// AlwaysUseCPU forces the CPU even if a GPU is available
	AlwaysUseCPU bool
	// InternetAvailable is normally set by the connectivity probe at startup
	InternetAvailable bool
	DisableXformers   bool
	FullPrecision     bool
}

// Defaults returns the default settings for the given root
func Defaults(root string) Settings {
	return Settings{
		Root:                        root,
		InitFileName:                DefaultInitFileName,
		ModelsFileName:              DefaultModelsFileName,
		ModelsDirName:               DefaultModelsDirName,
		ConfigDirName:               DefaultConfigDirName,
		AutoscanDirName:             DefaultAutoscanDirName,
		ConvertedCheckpointsDirName: DefaultConvertedCheckpointsDirName,
		TryPatchmatch:               true,
		InternetAvailable:           true,
	}
}

// ConfigFile returns <root>/<config dir>/<models file>
func (s Settings) ConfigFile() string {
	return filepath.Join(s.Root, s.ConfigDirName, s.ModelsFileName)
}

// ConfigDir returns <root>/<config dir>
func (s Settings) ConfigDir() string {
	return filepath.Join(s.Root, s.ConfigDirName)
}

// ModelsDir returns <root>/<models dir>
func (s Settings) ModelsDir() string {
	return filepath.Join(s.Root, s.ModelsDirName)
}

// AutoscanDir returns <root>/<autoscan dir>
func (s Settings) AutoscanDir() string {
	return filepath.Join(s.Root, s.AutoscanDirName)
}

// InitFile returns <root>/<init file>
func (s Settings) InitFile() string {
	return filepath.Join(s.Root, s.InitFileName)
}

// ConvertedCheckpointsDir returns <root>/<converted checkpoints dir>
func (s Settings) ConvertedCheckpointsDir() string {
	return filepath.Join(s.Root, s.ConvertedCheckpointsDirName)
}

// SettingsFile returns <root>/invokeai.yaml
func (s Settings) SettingsFile() string {
	return filepath.Join(s.Root, SettingsFileName)
}

// CacheDir returns the model cache directory, optionally namespaced by subdir
//
// The base follows the huggingface_hub convention:
//
//  1. $HF_HOME
//  2. $XDG_CACHE_HOME/huggingface
//  3. <root>/models
//
// The environment is read on every call.
func CacheDir(env Environment, root string, subdir ...string) string {
	var base string
	switch {
	case env.Getenv(HFHomeEnvVar) != "":
		base = ResolvePath(env, env.Getenv(HFHomeEnvVar))
	case env.Getenv(XDGCacheHomeEnvVar) != "":
		base = ResolvePath(env, filepath.Join(ExpandUser(env, env.Getenv(XDGCacheHomeEnvVar)), HuggingFaceDirName))
	default:
		base = ResolvePath(env, filepath.Join(root, fallbackCacheDirName))
	}

	return filepath.Join(append([]string{base}, subdir...)...)
}
