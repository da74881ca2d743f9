// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoke-ai/invokepaths"
	"github.com/invoke-ai/invokepaths/config"
)

const home = "/home/invoke"

var defaultRoot = filepath.Join(home, "invokeai")

func execute(t *testing.T, env config.MapEnvironment, fsys afero.Fs, args ...string) (*config.Registry, string, error) {
	t.Helper()

	if env == nil {
		env = config.MapEnvironment{}
	}
	if _, ok := env["HOME"]; !ok {
		env["HOME"] = home
	}
	if fsys == nil {
		fsys = afero.NewMemMapFs()
	}

	reg := config.New(env)
	root := newRootCmd(reg, fsys)

	var out strings.Builder
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	ctx := log.WithContext(t.Context(), log.New(io.Discard))
	err := root.ExecuteContext(ctx)
	return reg, out.String(), err
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestRootResolution(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		reg, out, err := execute(t, nil, nil, "path", "models-dir")
		require.NoError(t, err)
		assert.Equal(t, defaultRoot, reg.Root())
		assert.Equal(t, filepath.Join(defaultRoot, "models")+"\n", out)
	})

	t.Run("environment", func(t *testing.T) {
		reg, _, err := execute(t, config.MapEnvironment{config.RootEnvVar: "/srv/invokeai"}, nil, "path", "root")
		require.NoError(t, err)
		assert.Equal(t, "/srv/invokeai", reg.Root())
	})

	t.Run("flag wins over environment", func(t *testing.T) {
		reg, out, err := execute(t, config.MapEnvironment{config.RootEnvVar: "/srv/invokeai"}, nil, "--root", "~/alt", "path", "root")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "alt"), reg.Root())
		assert.Equal(t, filepath.Join(home, "alt")+"\n", out)
	})
}

func TestSettingsFile(t *testing.T) {
	t.Run("default location", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, filepath.Join(defaultRoot, "invokeai.yaml"), "schema-version: v0\nmodels-dir: checkpoints\nalways-use-cpu: true\n")

		reg, out, err := execute(t, nil, fsys, "path", "models-dir")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(defaultRoot, "checkpoints")+"\n", out)
		assert.True(t, reg.Load().AlwaysUseCPU)
	})

	t.Run("environment override", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/etc/invokeai.yaml", "schema-version: v0\nconfig-dir: conf\n")

		reg, _, err := execute(t, config.MapEnvironment{ConfigEnvVar: "/etc/invokeai.yaml"}, fsys, "path", "config-file")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(defaultRoot, "conf", "models.yaml"), reg.ConfigFile())
	})

	t.Run("flag wins over environment", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/etc/env.yaml", "schema-version: v0\nconfig-dir: from-env\n")
		writeFile(t, fsys, "/etc/flag.yaml", "schema-version: v0\nconfig-dir: from-flag\n")

		reg, _, err := execute(t, config.MapEnvironment{ConfigEnvVar: "/etc/env.yaml"}, fsys, "--config", "/etc/flag.yaml", "path", "config-dir")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(defaultRoot, "from-flag"), reg.ConfigDir())
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		_, _, err := execute(t, nil, nil, "--config", "/nope.yaml")
		require.ErrorContains(t, err, "failed to open config file")
	})

	t.Run("invalid", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, filepath.Join(defaultRoot, "invokeai.yaml"), "schema-version: v0\nmodels-dir: ../escape\n")

		_, _, err := execute(t, nil, fsys)
		require.ErrorContains(t, err, "models-dir")
	})
}

func TestInitFile(t *testing.T) {
	initPath := filepath.Join(defaultRoot, "invokeai.init")

	t.Run("switches are applied", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, initPath, "# defaults\n--no-patchmatch --full-precision\n")

		reg, _, err := execute(t, nil, fsys, "path", "root")
		require.NoError(t, err)
		s := reg.Load()
		assert.False(t, s.TryPatchmatch)
		assert.True(t, s.FullPrecision)
		assert.False(t, s.AlwaysUseCPU)
	})

	t.Run("init file wins over settings file", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, filepath.Join(defaultRoot, "invokeai.yaml"), "schema-version: v0\nalways-use-cpu: false\n")
		writeFile(t, fsys, initPath, "--always-use-cpu\n")

		reg, _, err := execute(t, nil, fsys, "path", "root")
		require.NoError(t, err)
		assert.True(t, reg.Load().AlwaysUseCPU)
	})

	t.Run("command line wins over init file", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, initPath, "--always-use-cpu\n--output yaml\n")

		reg, out, err := execute(t, nil, fsys, "--always-use-cpu=false", "-o", "json")
		require.NoError(t, err)
		assert.False(t, reg.Load().AlwaysUseCPU)

		var l invokepaths.Layout
		require.NoError(t, json.Unmarshal([]byte(out), &l))
		assert.False(t, l.AlwaysUseCPU)
	})

	t.Run("renamed init file", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, filepath.Join(defaultRoot, "invokeai.yaml"), "schema-version: v0\ninit-file: custom.init\n")
		writeFile(t, fsys, filepath.Join(defaultRoot, "custom.init"), "--no-xformers\n")
		writeFile(t, fsys, initPath, "--always-use-cpu\n")

		reg, _, err := execute(t, nil, fsys, "path", "root")
		require.NoError(t, err)
		assert.True(t, reg.Load().DisableXformers)
		assert.False(t, reg.Load().AlwaysUseCPU)
	})

	t.Run("ignored", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, initPath, "--always-use-cpu\n")

		reg, _, err := execute(t, nil, fsys, "--ignore-init", "path", "root")
		require.NoError(t, err)
		assert.False(t, reg.Load().AlwaysUseCPU)
	})

	t.Run("startup flags are rejected", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, initPath, "--root /elsewhere\n")

		_, _, err := execute(t, nil, fsys, "path", "root")
		require.ErrorContains(t, err, "--root cannot be set from the init file")
	})

	t.Run("unknown flag", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, initPath, "--bogus\n")

		_, _, err := execute(t, nil, fsys, "path", "root")
		require.ErrorContains(t, err, "unknown flag: --bogus")
	})

	t.Run("positional argument", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, initPath, "models\n")

		_, _, err := execute(t, nil, fsys, "path", "root")
		require.ErrorContains(t, err, `unexpected argument "models"`)
	})
}

func TestPathCmd(t *testing.T) {
	_, out, err := execute(t, nil, nil, "path", "converted-ckpts-dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(defaultRoot, "converted-ckpts")+"\n", out)

	_, _, err = execute(t, nil, nil, "path", "always-use-cpu")
	require.ErrorContains(t, err, `unknown path "always-use-cpu", available: root, init-file,`)

	_, _, err = execute(t, nil, nil, "path")
	require.Error(t, err)
}

func TestCacheDirCmd(t *testing.T) {
	testCases := []struct {
		name     string
		env      config.MapEnvironment
		args     []string
		expected string
	}{
		{
			name:     "fallback",
			args:     []string{"cache-dir"},
			expected: filepath.Join(defaultRoot, "models"),
		},
		{
			name:     "HF_HOME",
			env:      config.MapEnvironment{config.HFHomeEnvVar: "/x"},
			args:     []string{"cache-dir", "diffusers"},
			expected: filepath.Join("/x", "diffusers"),
		},
		{
			name:     "XDG_CACHE_HOME",
			env:      config.MapEnvironment{config.XDGCacheHomeEnvVar: "/y"},
			args:     []string{"cache-dir", "hub"},
			expected: filepath.Join("/y", "huggingface", "hub"),
		},
		{
			name:     "fallback follows --root",
			args:     []string{"--root", "/new/root", "cache-dir"},
			expected: filepath.Join("/new/root", "models"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, out, err := execute(t, tc.env, nil, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.expected+"\n", out)
		})
	}

	_, _, err := execute(t, nil, nil, "cache-dir", "a", "b")
	require.Error(t, err)
}

func TestProbeInternet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg, _, err := execute(t, nil, nil, "--probe-internet", "--probe-url", server.URL, "path", "root")
	require.NoError(t, err)
	assert.True(t, reg.Load().InternetAvailable)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	reg, _, err = execute(t, nil, nil, "--probe-internet", "--probe-url", closed.URL, "path", "root")
	require.NoError(t, err)
	assert.False(t, reg.Load().InternetAvailable)

	reg, _, err = execute(t, nil, nil, "--probe-url", closed.URL, "path", "root")
	require.NoError(t, err)
	assert.True(t, reg.Load().InternetAvailable, "no probe without --probe-internet")
}

func TestLogLevel(t *testing.T) {
	_, _, err := execute(t, nil, nil, "--log-level", "loud")
	require.Error(t, err)

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(defaultRoot, "invokeai.init"), "--log-level loud\n")
	_, _, err = execute(t, nil, fsys, "path", "root")
	require.Error(t, err)
}

func TestApplyInitArgsNoop(t *testing.T) {
	require.NoError(t, applyInitArgs(newRootCmd(config.New(config.MapEnvironment{}), afero.NewMemMapFs()).Flags(), nil))
}
