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
package stmt

import (
	"fmt"

	"github.com/consensys/go-simple/pkg/simple/ast/expr"
)

// Read represents reading an integer from the input into a location.
type Read struct {
	Target expr.Location
}

// NewRead constructs a new read statement.
func NewRead(target expr.Location) *Read {
	return &Read{target}
}

func (p *Read) String() string {
	return fmt.Sprintf("READ %s", p.Target.String())
}

// Write represents writing the value of an integer expression to the output,
// followed by a newline.
type Write struct {
	Source expr.Expr
}

// NewWrite constructs a new write statement.
func NewWrite(source expr.Expr) *Write {
	return &Write{source}
}

func (p *Write) String() string {
	return fmt.Sprintf("WRITE %s", p.Source.String())
}
