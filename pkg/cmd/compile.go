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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/go-simple/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [source_file]",
	Short: "compile a SIMPLE program into an assembly listing.",
	Long: `Compile a given SIMPLE program into an x86-64 assembly listing (AT&T syntax).
	 When no source file is given, the program is read from stdin and the listing
	 written to stdout.  Otherwise, the listing is written alongside the source
	 file (or into the configured output directory) with the extension ".s".`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			config   = configure(cmd)
			filename = sourceArgument(args)
			backend  = selectBackend(cmd, config)
			output   = GetString(cmd, "output")
		)
		//
		program, srcmap := CompileSourceFile(config, filename)
		listing := GenerateProgram(config, program, srcmap, backend)
		//
		if output == "" {
			output = listingFile(config, filename)
		}
		//
		stats := util.NewPerfStats()
		//
		if err := writeListing(output, listing); err != nil {
			fmt.Println(err)
			os.Exit(EXIT_IO)
		}
		//
		stats.Log(fmt.Sprintf("Writing listing (%d instructions)", listing.Instructions()))
	},
}

// Determine where the listing for a given source file is written, where STDIN
// indicates the standard output.
func listingFile(config *Config, filename string) string {
	if filename == STDIN {
		return STDIN
	}
	//
	var (
		dir  = filepath.Dir(filename)
		stem = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	)
	//
	if config.Output != "" {
		dir = config.Output
	}
	//
	return filepath.Join(dir, stem+".s")
}

// Write a listing into a given file, or to the standard output.
func writeListing(output string, listing io.WriterTo) error {
	if output == STDIN {
		_, err := listing.WriteTo(os.Stdout)
		return err
	}
	//
	file, err := os.Create(output)
	//
	if err != nil {
		return err
	}
	//
	log.Debugf("writing listing to %s", output)
	//
	if _, err = listing.WriteTo(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", output, err)
	}
	//
	return file.Close()
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().BoolP("optimise", "x", false, "use the register-pooling backend")
	compileCmd.Flags().StringP("output", "o", "", "specify output file (\"-\" for stdout).")
}
