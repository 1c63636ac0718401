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

// Triangular returns n(n+1)/2, the number of unordered pairs with
// repetition over n alleles.
func Triangular(n int) int {
	return n * (n + 1) / 2
}

// GenotypeIndex returns the position of the unordered allele pair
// (a, b) in a Number=G array: a + b(b+1)/2 for a <= b.
func GenotypeIndex(a, b int) int {
	if a > b {
		a, b = b, a
	}
	return a + b*(b+1)/2
}

// ExpectedLength returns the number of values a field of the given
// arity must have in a record with numAlts alternate alleles. ok is
// false for arities that do not constrain the number of values.
func (arity Arity) ExpectedLength(numAlts int) (n int, ok bool) {
	switch arity.Kind {
	case Fixed:
		return arity.N, true
	case PerAltAllele:
		return numAlts, true
	case PerAllele:
		return numAlts + 1, true
	case PerGenotype:
		return Triangular(numAlts + 1), true
	case Unbounded, Unknown:
		return 0, false
	default:
		return 0, false
	}
}

// AppendRecoded appends to dst the values of a field that belong in
// the record decomposed for the 1-based alternate allele target.
//
// Fixed, Unbounded and Unknown values are appended unchanged. For
// allele-dependent arities, ok is false if len(values) does not match
// ExpectedLength or target is not in 1..numAlts; dst is then returned
// unchanged and the caller is expected to emit the field as missing.
func AppendRecoded(dst, values []string, arity Arity, numAlts, target int) (result []string, ok bool) {
	switch arity.Kind {
	case Fixed, Unbounded, Unknown:
		return append(dst, values...), true
	case PerAltAllele, PerAllele, PerGenotype:
	default:
		return dst, false
	}
	if target < 1 || target > numAlts {
		return dst, false
	}
	if n, _ := arity.ExpectedLength(numAlts); len(values) != n {
		return dst, false
	}
	switch arity.Kind {
	case PerAltAllele:
		return append(dst, values[target-1]), true
	case PerAllele:
		return append(dst, values[0], values[target]), true
	default:
		i, j, k := GenotypeIndex(0, 0), GenotypeIndex(0, target), GenotypeIndex(target, target)
		if k >= len(values) {
			return dst, false
		}
		return append(dst, values[i], values[j], values[k]), true
	}
}

// Recode returns the values of a field that belong in the record
// decomposed for the 1-based alternate allele target. See
// AppendRecoded.
func Recode(values []string, arity Arity, numAlts, target int) ([]string, bool) {
	return AppendRecoded(nil, values, arity, numAlts, target)
}
