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
	"strconv"
	"strings"

	"github.com/exascience/vcfsplit/utils"
)

// A RecordParser turns data lines into Records. It reuses the slices
// of the previously returned Record, so a Record is only valid until
// the next call to Parse.
//
// The zero RecordParser is ready to use.
type RecordParser struct {
	record  Record
	columns []string
	samples [][]string
}

// appendSplit appends the sep-separated parts of s to dst.
func appendSplit(dst []string, s string, sep byte) []string {
	for {
		i := strings.IndexByte(s, sep)
		if i < 0 {
			return append(dst, s)
		}
		dst = append(dst, s[:i])
		s = s[i+1:]
	}
}

// peekAlt returns the ALT column of a data line without parsing it
// further. ok is false if the line has fewer than MandatoryColumns
// columns.
func peekAlt(line string) (alt string, ok bool) {
	start := 0
	for col := 0; col < MandatoryColumns-1; col++ {
		i := strings.IndexByte(line[start:], FieldSeparator)
		if i < 0 {
			return "", false
		}
		if col == 4 {
			alt = line[start : start+i]
		}
		start += i + 1
	}
	return alt, true
}

func validPosition(pos string) bool {
	p, err := strconv.ParseUint(pos, 10, 31)
	return err == nil && p > 0
}

// Parse splits a data line into a Record. It fails if the line has
// fewer than MandatoryColumns columns, or if POS is not a positive
// integer.
func (parser *RecordParser) Parse(line string) (*Record, error) {
	parser.columns = appendSplit(parser.columns[:0], line, FieldSeparator)
	columns := parser.columns
	if len(columns) < MandatoryColumns {
		return nil, fmt.Errorf("expected at least %v columns in a VCF data line, found %v", MandatoryColumns, len(columns))
	}
	if !validPosition(columns[1]) {
		return nil, fmt.Errorf("invalid POS %q in a VCF data line", columns[1])
	}
	record := &parser.record
	record.Chrom = columns[0]
	record.Pos = columns[1]
	record.ID = columns[2]
	record.Ref = columns[3]
	record.Alt = appendSplit(record.Alt[:0], columns[4], AlleleSeparator)
	record.Qual = columns[5]
	record.Filter = columns[6]
	record.Info = record.Info[:0]
	if columns[7] != Missing {
		record.Info = appendSplit(record.Info, columns[7], InfoSeparator)
	}
	record.GenotypeFormat = record.GenotypeFormat[:0]
	record.Samples = parser.samples[:0]
	if len(columns) == MandatoryColumns {
		return record, nil
	}
	rest := columns[MandatoryColumns]
	for {
		i := strings.IndexByte(rest, SubfieldSeparator)
		if i < 0 {
			record.GenotypeFormat = append(record.GenotypeFormat, utils.Intern(rest))
			break
		}
		record.GenotypeFormat = append(record.GenotypeFormat, utils.Intern(rest[:i]))
		rest = rest[i+1:]
	}
	for s, column := range columns[MandatoryColumns+1:] {
		if s < len(parser.samples) {
			parser.samples[s] = appendSplit(parser.samples[s][:0], column, SubfieldSeparator)
		} else {
			parser.samples = append(parser.samples, appendSplit(nil, column, SubfieldSeparator))
		}
	}
	record.Samples = parser.samples[:len(columns)-MandatoryColumns-1]
	return record, nil
}
