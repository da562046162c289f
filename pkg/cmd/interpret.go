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
	"os"

	"github.com/consensys/go-simple/pkg/simple/interpreter"
	"github.com/consensys/go-simple/pkg/util"
	"github.com/spf13/cobra"
)

var interpretCmd = &cobra.Command{
	Use:   "interpret [flags] source_file",
	Short: "execute a SIMPLE program directly.",
	Long: `Execute a given SIMPLE program directly from its abstract syntax tree, without
	 generating code.  This supports the whole language, including procedures.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var config = configure(cmd)
		//
		program, srcmap := CompileSourceFile(config, args[0])
		//
		stats := util.NewPerfStats()
		err := interpreter.New(program, srcmap, os.Stdin, os.Stdout).Run()
		//
		stats.Log("Interpreting program")
		//
		if err != nil {
			printRuntimeError(config, err)
			os.Exit(EXIT_FAILURE)
		}
	},
}

func init() {
	rootCmd.AddCommand(interpretCmd)
}
