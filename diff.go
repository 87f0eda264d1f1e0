/*
 * Copyright (c) 2022 The GoPlus Authors (goplus.org). All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package c99to89

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffContext is the number of unchanged lines around a change.
const DiffContext = 3

type diffLine struct {
	op   byte // ' ', '-' or '+'
	text string
}

// Diff returns the changes from a to b in unified format, nil if there are
// none.
func Diff(name string, a, b []byte) []byte {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(string(a), string(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var ls []diffLine
	changed := false
	for _, d := range diffs {
		op := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op, changed = '+', true
		case diffmatchpatch.DiffDelete:
			op, changed = '-', true
		}
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text != "" {
				ls = append(ls, diffLine{op, text})
			}
		}
	}
	if !changed {
		return nil
	}

	// na[i], nb[i]: lines of a and b before ls[i]
	na, nb := make([]int, len(ls)+1), make([]int, len(ls)+1)
	for i, l := range ls {
		na[i+1], nb[i+1] = na[i], nb[i]
		if l.op != '+' {
			na[i+1]++
		}
		if l.op != '-' {
			nb[i+1]++
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- a/%s\n+++ b/%s\n", name, name)
	for i := 0; ; {
		j := i
		for j < len(ls) && ls[j].op == ' ' {
			j++
		}
		if j == len(ls) {
			break
		}
		s := max(j-DiffContext, i)
		e := j
		for {
			for e < len(ls) && ls[e].op != ' ' {
				e++
			}
			k := e
			for k < len(ls) && ls[k].op == ' ' {
				k++
			}
			if k == len(ls) || k-e > 2*DiffContext {
				e = min(e+DiffContext, k)
				break
			}
			e = k
		}
		fmt.Fprintf(&buf, "@@ -%s +%s @@\n", hunkRange(na[s], na[e]-na[s]), hunkRange(nb[s], nb[e]-nb[s]))
		for _, l := range ls[s:e] {
			buf.WriteByte(l.op)
			buf.WriteString(l.text)
			if !strings.HasSuffix(l.text, "\n") {
				buf.WriteString("\n\\ No newline at end of file\n")
			}
		}
		i = e
	}
	return buf.Bytes()
}

func hunkRange(before, n int) string {
	if n == 0 {
		return fmt.Sprintf("%d,0", before)
	}
	if n == 1 {
		return fmt.Sprint(before + 1)
	}
	return fmt.Sprintf("%d,%d", before+1, n)
}

// -----------------------------------------------------------------------------
