// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/consensys/go-simple/pkg/util/termio"
	"gopkg.in/yaml.v3"
)

// CONFIG_FILE is the name of the configuration file looked for in the current
// directory, when none is given explicitly.
const CONFIG_FILE = "simplec.yaml"

const (
	// FIXED_BACKEND names the fixed-register backend.
	FIXED_BACKEND = "fixed"
	// POOLED_BACKEND names the register-pooling backend.
	POOLED_BACKEND = "pooled"
)

const (
	// COLOUR_AUTO enables colour only when writing to a terminal.
	COLOUR_AUTO = "auto"
	// COLOUR_ALWAYS enables colour regardless.
	COLOUR_ALWAYS = "always"
	// COLOUR_NEVER disables colour regardless.
	COLOUR_NEVER = "never"
)

// Config represents the contents of a simplec.yaml file.
type Config struct {
	// Backend used when none is selected on the command line.
	Backend string `yaml:"backend,omitempty"`
	// Output is the directory into which listings are written.  When empty,
	// listings are written alongside their source files.
	Output string `yaml:"output,omitempty"`
	// Colour determines when diagnostics are highlighted.
	Colour string `yaml:"colour,omitempty"`
}

// DefaultConfig returns the configuration used when no configuration file
// exists.
func DefaultConfig() *Config {
	var config Config
	//
	config.setDefaults()
	//
	return &config
}

// FindConfig loads the configuration file at a given path or, when no path is
// given, from CONFIG_FILE if it exists.  Otherwise, the default configuration
// is returned.
func FindConfig(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	} else if _, err := os.Stat(CONFIG_FILE); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	//
	return LoadConfig(CONFIG_FILE)
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	return ParseConfig(data, path)
}

// ParseConfig parses the contents of a configuration file.  The path is used
// only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	config.setDefaults()

	if err := config.validate(path); err != nil {
		return nil, err
	}

	return &config, nil
}

// UseColour determines whether diagnostics written to a given file should be
// highlighted.
func (c *Config) UseColour(file *os.File) bool {
	switch c.Colour {
	case COLOUR_ALWAYS:
		return true
	case COLOUR_NEVER:
		return false
	default:
		return termio.IsTerminal(file)
	}
}

func (c *Config) validate(path string) error {
	if !slices.Contains([]string{FIXED_BACKEND, POOLED_BACKEND}, c.Backend) {
		return fmt.Errorf("%s: unknown backend %q (expected %s or %s)", path, c.Backend, FIXED_BACKEND,
			POOLED_BACKEND)
	}

	if !slices.Contains([]string{COLOUR_AUTO, COLOUR_ALWAYS, COLOUR_NEVER}, c.Colour) {
		return fmt.Errorf("%s: unknown colour mode %q", path, c.Colour)
	}

	if c.Output != "" {
		info, err := os.Stat(c.Output)
		if err != nil {
			return fmt.Errorf("%s: output directory %q not found: %w", path, c.Output, err)
		} else if !info.IsDir() {
			return fmt.Errorf("%s: output %q is not a directory", path, c.Output)
		}
	}

	return nil
}

func (c *Config) setDefaults() {
	if c.Backend == "" {
		c.Backend = FIXED_BACKEND
	}

	if c.Colour == "" {
		c.Colour = COLOUR_AUTO
	}
}
