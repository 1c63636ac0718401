// vcfsplit: a tool for decomposing multi-allelic VCF records.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package vcf

import (
	"fmt"
	"strings"
)

// A StringScanner can be used scan/parse strings representing
// lines in VCF files.
//
// The zero StringScanner is valid and empty.
type StringScanner struct {
	index int
	data  string
	err   error
}

// Reset resets the scanner, and initializes it with the given string.
func (sc *StringScanner) Reset(s string) {
	sc.index = 0
	sc.data = s
	sc.err = nil
}

// Err returns the first error encountered by the scanner, if any.
func (sc *StringScanner) Err() error {
	return sc.err
}

func (sc *StringScanner) setErr(err error) {
	if sc.err == nil {
		sc.err = err
	}
}

// SkipSpace skips ' ' runes
func (sc *StringScanner) SkipSpace() {
	for end := sc.index; end < len(sc.data); end++ {
		if sc.data[end] != ' ' {
			sc.index = end
			return
		}
	}
	sc.index = len(sc.data)
}

func (sc *StringScanner) peek() (byte, bool) {
	if sc.index < len(sc.data) {
		return sc.data[sc.index], true
	}
	return 0, false
}

func (sc *StringScanner) readUntilByte(c byte) (s string, found bool) {
	start := sc.index
	if end := strings.IndexByte(sc.data[start:], c); end >= 0 {
		sc.index = start + end + 1
		return sc.data[start : start+end], true
	}
	sc.index = len(sc.data)
	return sc.data[start:], false
}

func (sc *StringScanner) readUntilBytes(bytes string) string {
	start := sc.index
	if end := strings.IndexAny(sc.data[start:], bytes); end >= 0 {
		sc.index = start + end
		return sc.data[start : start+end]
	}
	sc.index = len(sc.data)
	return sc.data[start:]
}

// ParseMetaField parses one key=value pair of a structured VCF
// meta-information line. Values may be double-quoted, in which case
// they may contain commas and \" or \\ escapes.
func (sc *StringScanner) ParseMetaField() (key, value string) {
	if sc.err != nil {
		return
	}
	sc.SkipSpace()
	key = strings.TrimRight(sc.readUntilBytes("=,>"), " ")
	if c, ok := sc.peek(); !ok || c != '=' || key == "" {
		sc.setErr(fmt.Errorf("invalid key=value pair in a VCF meta-information line: %v", sc.data))
		return
	}
	sc.index++
	sc.SkipSpace()
	if c, ok := sc.peek(); ok && c == '"' {
		sc.index++
		var buf strings.Builder
		for ; sc.index < len(sc.data); sc.index++ {
			switch sc.data[sc.index] {
			case '"':
				sc.index++
				return key, buf.String()
			case '\\':
				if sc.index+1 < len(sc.data) {
					sc.index++
				}
			}
			_ = buf.WriteByte(sc.data[sc.index])
		}
		sc.setErr(fmt.Errorf("missing closing \" in a VCF meta-information line: %v", sc.data))
		return key, buf.String()
	}
	value = strings.TrimRight(sc.readUntilBytes(",>"), " ")
	if sc.index >= len(sc.data) {
		sc.setErr(fmt.Errorf("missing closing > in a VCF meta-information line: %v", sc.data))
	}
	return key, value
}
