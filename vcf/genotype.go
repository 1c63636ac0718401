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
	"strings"
)

// Genotype allele separators.
const (
	Unphased = '/'
	Phased   = '|'
)

const genotypeSeparators = "/|"

func recodeAllele(allele string, numAlts, target int) (recoded string, outOfRange bool) {
	if allele == Missing {
		return Missing, false
	}
	if allele == "" || allele[0] < '0' || allele[0] > '9' {
		return Missing, true
	}
	index, err := strconv.Atoi(allele)
	switch {
	case err != nil || index > numAlts:
		return Missing, true
	case index == 0:
		return "0", false
	case index == target:
		return "1", false
	default:
		return Missing, false
	}
}

// RecodeGenotype renumbers a diploid GT call for the record
// decomposed for the 1-based alternate allele target: the reference
// stays 0, target becomes 1, and any other allele becomes missing.
// The separator of the call is preserved.
//
// Calls that do not consist of exactly two alleles are returned
// unchanged. outOfRange reports alleles that are not integers in
// 0..numAlts; they are recoded to missing.
func RecodeGenotype(call string, numAlts, target int) (recoded string, outOfRange bool) {
	i := strings.IndexAny(call, genotypeSeparators)
	if i < 0 || strings.ContainsAny(call[i+1:], genotypeSeparators) {
		return call, false
	}
	first, oor1 := recodeAllele(call[:i], numAlts, target)
	second, oor2 := recodeAllele(call[i+1:], numAlts, target)
	return first + call[i:i+1] + second, oor1 || oor2
}
