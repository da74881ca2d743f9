// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

// Package initfile reads the init file holding default command line switches
package initfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/afero"
)

// Parse reads switches from r
//
// Blank lines and lines starting with "#" are skipped, every other line is
// split into words the way a POSIX shell would.
func Parse(r io.Reader) ([]string, error) {
	args := []string{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		words, err := shlex.Split(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		args = append(args, words...)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read init file: %w", err)
	}

	return args, nil
}

// Load parses the init file at path
//
// A missing file is not an error, it yields no switches.
func Load(fsys afero.Fs, path string) ([]string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open init file: %w", err)
	}
	defer f.Close()

	args, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return args, nil
}
