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
	"os"

	"github.com/consensys/go-simple/pkg/simple/machine"
	"github.com/consensys/go-simple/pkg/util"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [source_file]",
	Short: "compile a SIMPLE program and execute it on the emulator.",
	Long: `Compile a given SIMPLE program and execute the resulting listing on an emulated
	 x86-64 machine.  The program reads from stdin and writes to stdout, and the
	 command exits with the status of the program.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			config   = configure(cmd)
			filename = sourceArgument(args)
			backend  = selectBackend(cmd, config)
			limit    = GetUint(cmd, "limit")
		)
		//
		if filename == STDIN {
			fmt.Println("program must be given as a file, since stdin is its input")
			os.Exit(EXIT_FAILURE)
		}
		//
		program, srcmap := CompileSourceFile(config, filename)
		listing := GenerateProgram(config, program, srcmap, backend)
		m, err := machine.New(listing, os.Stdin, os.Stdout, os.Stderr)
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(EXIT_FAILURE)
		}
		//
		stats := util.NewPerfStats()
		//
		m.SetLimit(limit)
		status, err := m.Run()
		//
		stats.Log(fmt.Sprintf("Executing program (%d steps)", m.Steps()))
		//
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(EXIT_FAILURE)
		}
		//
		os.Exit(status)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("optimise", "x", false, "use the register-pooling backend")
	runCmd.Flags().Uint("limit", 0, "maximum number of instructions to execute (0 for unlimited)")
}
