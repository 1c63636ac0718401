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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldSpec(t *testing.T) {
	spec, isDeclaration, err := ParseFieldSpec(`##INFO=<ID=AC,Number=A,Type=Integer,Description="Allele count, per alt">`)
	require.NoError(t, err)
	assert.True(t, isDeclaration)
	assert.Equal(t, FieldSpec{ID: "AC", Role: Info, Arity: Arity{Kind: PerAltAllele}}, spec)

	spec, isDeclaration, err = ParseFieldSpec(`##FORMAT=<Description="Phred \"scaled\" likelihoods",Type=Integer,Number=G,ID=PL>`)
	require.NoError(t, err)
	assert.True(t, isDeclaration)
	assert.Equal(t, FieldSpec{ID: "PL", Role: Format, Arity: Arity{Kind: PerGenotype}}, spec)

	spec, _, err = ParseFieldSpec(`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`)
	require.NoError(t, err)
	assert.Equal(t, Arity{Kind: Fixed, N: 1}, spec.Arity)

	spec, _, err = ParseFieldSpec(`##INFO=<ID=X,Number=weird,Type=String,Description="x">`)
	require.NoError(t, err)
	assert.Equal(t, Arity{Kind: Unknown}, spec.Arity)
}

func TestParseFieldSpecOtherLines(t *testing.T) {
	for _, line := range []string{
		"##fileformat=VCFv4.2",
		`##FILTER=<ID=q10,Description="Quality below 10">`,
		"##contig=<ID=1,length=249250621>",
		"##source",
		"#CHROM\tPOS",
	} {
		_, isDeclaration, err := ParseFieldSpec(line)
		assert.NoError(t, err, line)
		assert.False(t, isDeclaration, line)
	}
}

func TestParseFieldSpecMalformed(t *testing.T) {
	for _, line := range []string{
		"##INFO=ID=AC,Number=A",
		"##INFO=<ID=AC,Number=A",
		"##INFO=<Number=A,Type=Integer>",
		"##INFO=<ID=,Number=A>",
		"##FORMAT=<ID=AD,Type=Integer>",
		`##FORMAT=<ID=AD,Number=R,Description="unterminated>`,
		"##INFO=<ID=AC,ID=AN,Number=A>",
		"##INFO=<>",
	} {
		_, isDeclaration, err := ParseFieldSpec(line)
		assert.Error(t, err, line)
		assert.True(t, isDeclaration, line)
	}
}

func TestCatalog(t *testing.T) {
	catalog := NewCatalog()
	require.NoError(t, catalog.AddMetaLine("##INFO=<ID=AC,Number=A,Type=Integer>"))
	require.NoError(t, catalog.AddMetaLine("##FORMAT=<ID=AC,Number=R,Type=Integer>"))
	require.NoError(t, catalog.AddMetaLine("##contig=<ID=1>"))
	assert.Error(t, catalog.AddMetaLine("##INFO=<ID=BAD,Type=Integer>"))
	assert.Equal(t, 2, catalog.Len())

	assert.Equal(t, Arity{Kind: PerAltAllele}, catalog.Lookup(Info, "AC"))
	assert.Equal(t, Arity{Kind: PerAllele}, catalog.Lookup(Format, "AC"))
	assert.Equal(t, Arity{Kind: Unknown}, catalog.Lookup(Info, "BAD"))
	assert.Equal(t, Arity{Kind: Unknown}, catalog.Lookup(Info, "DP"))

	// later declarations update earlier ones
	require.NoError(t, catalog.AddMetaLine("##INFO=<ID=AC,Number=.,Type=Integer>"))
	assert.Equal(t, Arity{Kind: Unbounded}, catalog.Lookup(Info, "AC"))

	require.NoError(t, catalog.Override(FieldSpec{ID: "AC", Role: Info, Arity: Arity{Kind: PerAllele}}))
	require.NoError(t, catalog.AddMetaLine("##INFO=<ID=AC,Number=A,Type=Integer>"))
	assert.Equal(t, Arity{Kind: PerAllele}, catalog.Lookup(Info, "AC"))

	catalog.Seal()
	assert.True(t, catalog.Sealed())
	assert.Equal(t, ErrCatalogSealed, catalog.AddMetaLine("##INFO=<ID=DP,Number=1,Type=Integer>"))
	assert.Equal(t, Arity{Kind: Unknown}, catalog.Lookup(Info, "DP"))
}
