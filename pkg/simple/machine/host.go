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
package machine

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/consensys/go-simple/pkg/simple/codegen/amd64"
)

// HostFunction emulates a C library function.  Arguments are passed and
// results returned in registers, according to the System V calling
// convention.  A host function returns true to halt the machine.
type HostFunction func(*Machine) (bool, error)

// HOST_FUNCTIONS identifies the C library functions which programs can call.
var HOST_FUNCTIONS = map[string]HostFunction{
	"scanf":   hostScanf,
	"printf":  hostPrintf,
	"fprintf": hostFprintf,
	"exit":    hostExit,
	"memmove": hostMemmove,
}

// Supports only a single "%ld" conversion.
func hostScanf(m *Machine) (bool, error) {
	var format = m.cstring(m.registers[amd64.RDI])
	//
	if format != "%ld" {
		return false, fmt.Errorf("unsupported format %q", format)
	}
	//
	value, matched, err := m.scanInteger()
	//
	if err != nil {
		return false, err
	} else if matched == 1 {
		m.store(m.registers[amd64.RSI], value)
	}
	//
	m.registers[amd64.RAX] = matched
	//
	return false, nil
}

func hostPrintf(m *Machine) (bool, error) {
	var (
		format = m.cstring(m.registers[amd64.RDI])
		args   = m.arguments(1)
	)
	//
	return false, m.printf(m.output, format, args)
}

func hostFprintf(m *Machine) (bool, error) {
	var (
		format = m.cstring(m.registers[amd64.RSI])
		args   = m.arguments(2)
	)
	//
	switch m.registers[amd64.RDI] {
	case STDOUT:
		return false, m.printf(m.output, format, args)
	case STDERR:
		return false, m.printf(m.errors, format, args)
	default:
		return false, fmt.Errorf("invalid stream %#x", m.registers[amd64.RDI])
	}
}

func hostExit(m *Machine) (bool, error) {
	m.status = int(m.registers[amd64.RDI] & 0xff)
	return true, nil
}

// Copies between possibly overlapping regions, returning the destination.
func hostMemmove(m *Machine) (bool, error) {
	var (
		dst = m.registers[amd64.RDI]
		src = m.registers[amd64.RSI]
		n   = m.registers[amd64.RDX]
	)
	//
	copy(m.bytes(dst, n), m.bytes(src, n))
	m.registers[amd64.RAX] = dst
	//
	return false, nil
}

// Values of the argument registers, starting from a given argument.
func (p *Machine) arguments(first int) []int64 {
	var args []int64
	//
	for _, r := range amd64.ARGUMENTS[first:] {
		args = append(args, p.registers[r])
	}
	//
	return args
}

// Write a formatted string, where each "%ld" conversion consumes the next
// argument.
func (p *Machine) printf(out io.Writer, format string, args []int64) error {
	var builder strings.Builder
	//
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			builder.WriteByte(format[i])
		} else if strings.HasPrefix(format[i:], "%%") {
			builder.WriteByte('%')
			i++
		} else if !strings.HasPrefix(format[i:], "%ld") {
			return fmt.Errorf("unsupported format %q", format)
		} else if len(args) == 0 {
			return fmt.Errorf("too many conversions in %q", format)
		} else {
			builder.WriteString(strconv.FormatInt(args[0], 10))
			args = args[1:]
			i += 2
		}
	}
	//
	_, err := io.WriteString(out, builder.String())
	//
	return err
}

// Scan an integer from the input, returning the number of values matched (or
// -1 at the end of the input).  Like scanf, input which does not match is left
// unconsumed.
func (p *Machine) scanInteger() (int64, int64, error) {
	var text []byte
	// Skip leading whitespace
	for {
		b, err := p.input.ReadByte()
		//
		if errors.Is(err, io.EOF) {
			return 0, -1, nil
		} else if err != nil {
			return 0, 0, err
		} else if !isSpace(b) {
			_ = p.input.UnreadByte()
			break
		}
	}
	//
	for {
		b, err := p.input.ReadByte()
		//
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return 0, 0, err
		} else if !isDigit(b) && (len(text) > 0 || (b != '-' && b != '+')) {
			_ = p.input.UnreadByte()
			break
		}
		//
		text = append(text, b)
	}
	//
	value, err := strconv.ParseInt(string(text), 10, 64)
	//
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, 0, nil
	}
	//
	return value, 1, nil
}

// Read a null-terminated string from memory.
func (p *Machine) cstring(address int64) string {
	var builder strings.Builder
	//
	for b := p.bytes(address, 1)[0]; b != 0; b = p.bytes(address, 1)[0] {
		builder.WriteByte(b)
		address++
	}
	//
	return builder.String()
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
