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
package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/consensys/go-simple/pkg/util/source"
)

// Extract the syntax error from a given line in the source file, or return
// false if it does not describe an error.  Expected errors are written as
// "(*error:X:Y-Z:msg*)" where X is the line number, and Y-Z the columns.
func extractSyntaxError(lineno int, lines []source.Line, srcfile *source.File) (bool, source.SyntaxError, error) {
	var (
		line          = lines[lineno]
		contents, ok  = attributeContents(line.String(), "error")
		number, start int
		end           int
		msg           string
		err           error
	)
	//
	if !ok {
		return false, source.SyntaxError{}, nil
	} else if number, start, end, msg, err = parseExpectedError(contents); err != nil {
		return true, source.SyntaxError{}, err
	}
	//
	span, err := determineFileSpan(number, start, end, lines)
	//
	return true, *srcfile.SyntaxError(span, msg), err
}

func parseExpectedError(contents string) (line, start, end int, msg string, err error) {
	var splits = strings.Split(contents, ":")
	//
	if len(splits) < 3 {
		return 0, 0, 0, "", fmt.Errorf("malformed expected error \"%s\", should be e.g. \"(*error:X:Y-Z:msg*)\"", contents)
	}
	// Parse line number
	if line, err = strconv.Atoi(splits[0]); err != nil {
		return 0, 0, 0, "", fmt.Errorf("invalid span \"%s:%s\" (%s)", splits[0], splits[1], err.Error())
	} else if line == 0 {
		return 0, 0, 0, "", fmt.Errorf("invalid span \"%s:%s\" (lines numbered from 1)", splits[0], splits[1])
	}
	// Parse columns
	if start, end, err = parseExpectedErrorSpan(splits[1]); err != nil {
		return 0, 0, 0, "", err
	}
	// Messages may themselves contain colons
	msg = strings.Join(splits[2:], ":")
	//
	return line, start, end, msg, nil
}

func parseExpectedErrorSpan(span string) (start, end int, err error) {
	var splits = strings.Split(span, "-")
	//
	if len(splits) != 2 {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (malformed, should be X-Y)", span)
	}
	// Parse span start as integer
	if start, err = strconv.Atoi(splits[0]); err != nil {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (%s)", span, err.Error())
	} else if start == 0 {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (columns numbered from 1)", span)
	}
	// Parse span end as integer
	if end, err = strconv.Atoi(splits[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (%s)", span, err.Error())
	} else if end <= start {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (empty)", span)
	}
	//
	return start, end, nil
}

// Determine the file span that a given line and column range corresponds to.
// Columns are numbered from 1, and the end column is exclusive.
func determineFileSpan(lineno, start, end int, lines []source.Line) (source.Span, error) {
	if lineno > len(lines) {
		return source.Span{}, fmt.Errorf("invalid span \"%d:%d-%d\" (non-existent line)", lineno, start, end)
	}
	//
	line := lines[lineno-1]
	//
	if start > line.Length() || end > line.Length()+1 {
		return source.Span{}, fmt.Errorf("invalid span \"%d:%d-%d\" (overflows line)", lineno, start, end)
	}
	//
	return source.NewSpan(line.Start()+start-1, line.Start()+end-1), nil
}

// Convert an error into a human readable string.
func errorToString(err source.SyntaxError) string {
	var (
		span       = err.Span()
		line       = err.FirstEnclosingLine()
		lineOffset = span.Start() - line.Start()
		// Calculate length (ensures don't overflow line)
		length = min(line.Length()-lineOffset, span.Length())
	)
	//
	return fmt.Sprintf("%s:%d:%d-%d %s", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Message())
}
