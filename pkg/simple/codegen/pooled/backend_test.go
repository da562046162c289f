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
package pooled

import (
	"strings"
	"testing"

	"github.com/consensys/go-simple/pkg/simple/codegen"
	"github.com/consensys/go-simple/pkg/simple/compiler"
	"github.com/consensys/go-simple/pkg/util/assert"
	"github.com/consensys/go-simple/pkg/util/source"
)

func Test_Pooled_Region(t *testing.T) {
	listing := generate(t, `PROGRAM p; VAR x: INTEGER; r: RECORD a: ARRAY 2 OF INTEGER END;
BEGIN x := 1; r.a[1] := x END p.`)
	//
	assert.Contains(t, listing, "space:\t.zero 24")
	assert.Contains(t, listing, "\tleaq space(%rip),%r8")
	assert.Contains(t, listing, "\tmovq $1,(%r8)")
	assert.Contains(t, listing, "\tmovq (%r8),%r9")
	assert.Contains(t, listing, "\tmovq %r9,16(%r8)")
	// No dynamic indices, hence no trap
	assert.False(t, strings.Contains(listing, BOUNDS_TRAP))
}

func Test_Pooled_Trap(t *testing.T) {
	listing := generate(t, `PROGRAM p; VAR a: ARRAY 4 OF INTEGER; i: INTEGER;
BEGIN
  a[i] := 1
END p.`)
	//
	assert.Contains(t, listing, "\tmovq %r9,%rdx\n\tmovq $3,%rcx\n\tmovq $3,%rax\n\tcmpq $4,%rdx\n\tjae _boundsTrap")
	assert.Contains(t, listing, BOUNDS_TRAP+":")
	assert.Contains(t, listing, "%ld out of range at %ld:%ld")
}

func Test_Pooled_Subroutines(t *testing.T) {
	listing := generate(t, "PROGRAM p; VAR x: INTEGER; BEGIN READ x END p.")
	// Base register restored after every host call
	for _, fn := range []string{READ_FN, WRITE_FN, COPY_FN} {
		start := strings.Index(listing, fn+":")
		body := listing[start:]
		body = body[:strings.Index(body, "ret")]
		//
		assert.Contains(t, body, "\tpushq %r9")
		assert.Contains(t, body, "\tleaq space(%rip),%r8")
	}
}

func generate(t *testing.T, text string) string {
	var (
		builder               strings.Builder
		srcfile               = source.NewSourceFile("test.simple", []byte(text))
		program, srcmap, errs = compiler.Compile(srcfile)
	)
	//
	if len(errs) > 0 {
		t.Fatal(errs[0].Message())
	}
	//
	backend := New(srcmap)
	out, errs := codegen.Generate(program, backend)
	//
	if len(errs) > 0 {
		t.Fatal(errs[0].Message())
	}
	//
	assert.False(t, backend.Pool().Busy())
	//
	_, err := out.WriteTo(&builder)
	assert.NoError(t, err)
	//
	return builder.String()
}
