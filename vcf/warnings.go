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
)

// WarningKind classifies non-fatal problems found while decomposing a
// VCF stream.
type WarningKind uint8

// The different kinds of warnings.
const (
	// HeaderParseWarning: an INFO/FORMAT meta-line could not be
	// parsed. The line is emitted, but no catalog entry results.
	HeaderParseWarning WarningKind = iota
	// RecordParseError: a data line is structurally invalid. The line
	// is emitted unchanged.
	RecordParseError
	// ArityMismatchWarning: the number of values of a field does not
	// match its declared arity. The field is emitted as missing.
	ArityMismatchWarning
	// AlleleIndexOutOfRange: a genotype call refers to an allele that
	// is not in the ALT list. The allele is emitted as missing.
	AlleleIndexOutOfRange
)

func (kind WarningKind) String() string {
	switch kind {
	case HeaderParseWarning:
		return "HeaderParseWarning"
	case RecordParseError:
		return "RecordParseError"
	case ArityMismatchWarning:
		return "ArityMismatchWarning"
	case AlleleIndexOutOfRange:
		return "AlleleIndexOutOfRange"
	default:
		return "WarningKind(" + strconv.Itoa(int(kind)) + ")"
	}
}

// A Warning is a non-fatal problem. Line is the 1-based input line
// number, Field the INFO or FORMAT key involved, if any.
type Warning struct {
	Kind    WarningKind
	Line    int
	Field   string
	Message string
}

func (w Warning) Error() string {
	if w.Field != "" {
		return fmt.Sprintf("line %v: %v: %v (field %v)", w.Line, w.Kind, w.Message, w.Field)
	}
	return fmt.Sprintf("line %v: %v: %v", w.Line, w.Kind, w.Message)
}

// A WarningFunc receives warnings in input order.
type WarningFunc func(Warning)
