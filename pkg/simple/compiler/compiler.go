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
package compiler

import (
	"github.com/consensys/go-simple/pkg/simple/ast"
	"github.com/consensys/go-simple/pkg/util"
	"github.com/consensys/go-simple/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

// Compile takes a given source file, and parses it into a validated program.
// This includes performing various checks on the file, such as type checking
// and scope resolution.  Every node of the resulting program is recorded in the
// returned source map, such that later phases can report errors against it.
func Compile(file *source.File) (*ast.Program, *source.Map[any], []source.SyntaxError) {
	var stats = util.NewPerfStats()
	// Parse and validate source file
	program, srcmap, errs := Parse(file)
	//
	if len(errs) > 0 {
		log.Debugf("compilation of %s failed with %d error(s)", file.Filename(), len(errs))
		return nil, srcmap, errs
	}
	//
	stats.Log("Parsing " + file.Filename())
	//
	return program, srcmap, nil
}
