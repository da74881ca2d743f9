// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

// Package v0 provides the schema for v0 of the InvokeAI settings file
//
// v0 allows for breaking changes without a major version increase
package v0

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"

	"github.com/invoke-ai/invokepaths/config"
)

// SchemaVersion is the current schema version for settings files
const SchemaVersion = "v0"

// versioned is only used to sniff the schema version before a full decode
type versioned struct {
	SchemaVersion string `json:"schema-version"`
}

// Config is the on-disk settings file
//
// Every field except the schema version is optional, unset fields leave the
// registry defaults alone.
type Config struct {
	SchemaVersion           string `json:"schema-version"`
	InitFile                string `json:"init-file,omitempty"`
	ModelsFile              string `json:"models-file,omitempty"`
	ModelsDir               string `json:"models-dir,omitempty"`
	ConfigDir               string `json:"config-dir,omitempty"`
	AutoscanDir             string `json:"autoscan-dir,omitempty"`
	ConvertedCheckpointsDir string `json:"converted-ckpts-dir,omitempty"`
	TryPatchmatch           *bool  `json:"try-patchmatch,omitempty"`
	AlwaysUseCPU            *bool  `json:"always-use-cpu,omitempty"`
	DisableXformers         *bool  `json:"disable-xformers,omitempty"`
	FullPrecision           *bool  `json:"full-precision,omitempty"`
}

// nameProperties are the keys holding a single file or directory name
var nameProperties = map[string]string{
	"init-file":           "Name of the init file holding default command line switches",
	"models-file":         "Name of the models config file inside config-dir",
	"models-dir":          "Name of the models directory",
	"config-dir":          "Name of the config directory",
	"autoscan-dir":        "Name of the directory scanned for new weights",
	"converted-ckpts-dir": "Name of the directory holding converted checkpoints",
}

// JSONSchemaExtend extends the JSON schema for a settings file
func (Config) JSONSchemaExtend(schema *jsonschema.Schema) {
	if schemaVersion, ok := schema.Properties.Get("schema-version"); ok && schemaVersion != nil {
		schemaVersion.Description = "Settings schema version"
		schemaVersion.Enum = []any{SchemaVersion}
	}

	for key, description := range nameProperties {
		if prop, ok := schema.Properties.Get(key); ok && prop != nil {
			prop.Description = description
			prop.Pattern = `^[^/\\]+$`
			prop.Not = &jsonschema.Schema{Enum: []any{".", ".."}}
		}
	}

	if prop, ok := schema.Properties.Get("try-patchmatch"); ok && prop != nil {
		prop.Description = "Whether to try loading the patchmatch inpainting helper"
	}
	if prop, ok := schema.Properties.Get("always-use-cpu"); ok && prop != nil {
		prop.Description = "Use the CPU even if a GPU is available"
	}
	if prop, ok := schema.Properties.Get("disable-xformers"); ok && prop != nil {
		prop.Description = "Disable the xformers memory efficient attention"
	}
	if prop, ok := schema.Properties.Get("full-precision"); ok && prop != nil {
		prop.Description = "Force full (float32) precision"
	}
}

// Apply overlays every set field onto s
func (c *Config) Apply(s *config.Settings) {
	setName := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setName(&s.InitFileName, c.InitFile)
	setName(&s.ModelsFileName, c.ModelsFile)
	setName(&s.ModelsDirName, c.ModelsDir)
	setName(&s.ConfigDirName, c.ConfigDir)
	setName(&s.AutoscanDirName, c.AutoscanDir)
	setName(&s.ConvertedCheckpointsDirName, c.ConvertedCheckpointsDir)

	setFlag := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setFlag(&s.TryPatchmatch, c.TryPatchmatch)
	setFlag(&s.AlwaysUseCPU, c.AlwaysUseCPU)
	setFlag(&s.DisableXformers, c.DisableXformers)
	setFlag(&s.FullPrecision, c.FullPrecision)
}

// LoadConfig reads and validates a settings file
func LoadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var v versioned
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	switch version := v.SchemaVersion; version {
	case SchemaVersion:
		cfg := &Config{}
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, Validate(cfg)
	default:
		return nil, fmt.Errorf("unsupported config schema version: expected %q, got %q", SchemaVersion, version)
	}
}

// Load loads the settings file at path from fsys
//
// If the file does not exist, this function returns a valid but "empty" config
func Load(fsys afero.Fs, path string) (*Config, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{SchemaVersion: SchemaVersion}, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", path, err)
	}
	return cfg, nil
}

// Since every validation operation leverages the same schema, only calculate it once
var schemaOnce = sync.OnceValues(func() (string, error) {
	s := Schema()
	b, err := json.Marshal(s)
	return string(b), err
})

// Validate checks if a config adheres to the JSON schema
func Validate(cfg *Config) error {
	schema, err := schemaOnce()
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	var resErr error
	for _, err := range result.Errors() {
		resErr = errors.Join(resErr, errors.New(err.String()))
	}

	return resErr
}

// Schema returns the JSON schema for the Config type
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&Config{})
}
