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
	"strconv"

	"github.com/exascience/vcfsplit/utils"
)

// Delimiters and markers of the VCF text format.
const (
	FieldSeparator    = '\t'
	AlleleSeparator   = ','
	InfoSeparator     = ';'
	SubfieldSeparator = ':'
	ValueSeparator    = ','
	HeaderMarker      = '#'

	// Missing is the placeholder for absent values.
	Missing = "."
)

// MandatoryColumns is the number of columns every data line must have:
// CHROM, POS, ID, REF, ALT, QUAL, FILTER, INFO.
const MandatoryColumns = 8

// GT is the genotype call subfield.
var GT = utils.Intern("GT")

// Role distinguishes site-level INFO declarations from per-sample
// FORMAT declarations.
type Role uint8

// The two roles of header field declarations.
const (
	Info Role = iota
	Format
)

func (role Role) String() string {
	switch role {
	case Info:
		return "INFO"
	case Format:
		return "FORMAT"
	default:
		return "Role(" + strconv.Itoa(int(role)) + ")"
	}
}

// ArityKind enumerates the declared Number semantics of a header field.
type ArityKind uint8

// The different arity kinds.
const (
	Unknown      ArityKind = iota // undeclared identifier or unrecognized Number
	Fixed                         // Number=<n>
	PerAltAllele                  // Number=A
	PerAllele                     // Number=R
	PerGenotype                   // Number=G
	Unbounded                     // Number=.
)

// Arity is the declared number of values of an INFO or FORMAT field.
// N is only meaningful for Fixed.
type Arity struct {
	Kind ArityKind
	N    int
}

// ParseArity maps the value of a Number= attribute to an Arity.
// Anything that is not A, R, G, . or a non-negative integer is Unknown.
func ParseArity(number string) Arity {
	switch number {
	case "A":
		return Arity{Kind: PerAltAllele}
	case "R":
		return Arity{Kind: PerAllele}
	case "G":
		return Arity{Kind: PerGenotype}
	case ".":
		return Arity{Kind: Unbounded}
	}
	if number == "" || number[0] == '+' || number[0] == '-' {
		return Arity{Kind: Unknown}
	}
	n, err := strconv.ParseUint(number, 10, 31)
	if err != nil {
		return Arity{Kind: Unknown}
	}
	return Arity{Kind: Fixed, N: int(n)}
}

func (arity Arity) String() string {
	switch arity.Kind {
	case Unknown:
		return "?"
	case Fixed:
		return strconv.Itoa(arity.N)
	case PerAltAllele:
		return "A"
	case PerAllele:
		return "R"
	case PerGenotype:
		return "G"
	case Unbounded:
		return "."
	default:
		return "ArityKind(" + strconv.Itoa(int(arity.Kind)) + ")"
	}
}

// AlleleDependent reports whether values of this arity must be
// rewritten when a record is decomposed.
func (arity Arity) AlleleDependent() bool {
	switch arity.Kind {
	case PerAltAllele, PerAllele, PerGenotype:
		return true
	case Unknown, Fixed, Unbounded:
		return false
	default:
		return false
	}
}

// FieldSpec is one INFO or FORMAT declaration from the header.
type FieldSpec struct {
	ID    string
	Role  Role
	Arity Arity
}

// Record is a structured VCF data line.
//
// All strings are substrings of the line the record was parsed from,
// so a Record is only valid as long as that line is. The slices are
// reused by RecordParser for subsequent lines.
type Record struct {
	Chrom          string
	Pos            string // verbatim, validated as a positive integer
	ID             string
	Ref            string
	Alt            []string // len(Alt) >= 1
	Qual           string
	Filter         string
	Info           []string // raw KEY or KEY=VALUE tokens; empty if the column is "."
	GenotypeFormat []utils.Symbol
	Samples        [][]string // may have fewer entries than GenotypeFormat
}

// Multiallelic reports whether the record has more than one alternate allele.
func (record *Record) Multiallelic() bool {
	return len(record.Alt) > 1
}
