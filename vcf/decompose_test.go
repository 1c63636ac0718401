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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T, lines ...string) *Catalog {
	catalog := NewCatalog()
	for _, line := range lines {
		require.NoError(t, catalog.AddMetaLine(line))
	}
	catalog.Seal()
	return catalog
}

type warnings []Warning

func (w *warnings) add(warning Warning) {
	*w = append(*w, warning)
}

func decomposeLine(t *testing.T, catalog *Catalog, line string) ([]string, warnings, Stats) {
	var ws warnings
	var stats Stats
	out := NewDecomposer(catalog).AppendDataLine(nil, line, 1, ws.add, &stats)
	require.True(t, strings.HasSuffix(string(out), "\n"))
	return strings.Split(strings.TrimSuffix(string(out), "\n"), "\n"), ws, stats
}

func TestDecomposeExample(t *testing.T) {
	catalog := testCatalog(t,
		`##INFO=<ID=AC,Number=A,Type=Integer,Description="Allele count">`,
		`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
		`##FORMAT=<ID=AD,Number=R,Type=Integer,Description="Allelic depths">`,
	)
	lines, ws, stats := decomposeLine(t, catalog, tabs("1", "100", "rs1", "A", "C,G", "50", "PASS", "AC=10,20", "GT:AD", "0/1:5,3,2", "0/2:5,2,3"))
	assert.Empty(t, ws)
	assert.Equal(t, []string{
		tabs("1", "100", "rs1", "A", "C", "50", "PASS", "AC=10", "GT:AD", "0/1:5,3", "0/.:5,2"),
		tabs("1", "100", "rs1", "A", "G", "50", "PASS", "AC=20", "GT:AD", "0/.:5,2", "0/1:5,3"),
	}, lines)
	assert.Equal(t, Stats{Records: 1, Decomposed: 1, Emitted: 2}, stats)
}

func TestDecomposeSingleAltUnchanged(t *testing.T) {
	catalog := testCatalog(t, "##INFO=<ID=AC,Number=A,Type=Integer>")
	// even fields that would not survive recoding are left alone
	line := tabs("1", "100", ".", "A", "C", "50", "PASS", "AC=1,2,3;X", "GT:AD", "0/3:1")
	lines, ws, stats := decomposeLine(t, catalog, line)
	assert.Empty(t, ws)
	assert.Equal(t, []string{line}, lines)
	assert.Equal(t, Stats{Records: 1, Emitted: 1}, stats)

	var parser RecordParser
	record, err := parser.Parse(line)
	require.NoError(t, err)
	var emitted []string
	NewDecomposer(catalog).Decompose(record, 1, nil, func(r *Record) {
		emitted = append(emitted, string(r.Format(nil)))
	})
	assert.Equal(t, []string{line + "\n"}, emitted)
}

func TestDecomposeCount(t *testing.T) {
	catalog := testCatalog(t,
		"##INFO=<ID=AF,Number=A,Type=Float>",
		"##INFO=<ID=RD,Number=R,Type=Integer>",
	)
	lines, ws, _ := decomposeLine(t, catalog, tabs("3", "5", ".", "A", "C,G,T,<DEL>", ".", ".", "AF=0.1,0.2,0.3,0.4;RD=9,1,2,3,4"))
	assert.Empty(t, ws)
	require.Len(t, lines, 4)
	for i, alt := range []string{"C", "G", "T", "<DEL>"} {
		columns := strings.Split(lines[i], "\t")
		require.Len(t, columns, 8)
		assert.Equal(t, alt, columns[4])
		assert.NotContains(t, columns[4], ",")
	}
	assert.Equal(t, "AF=0.1;RD=9,1", strings.Split(lines[0], "\t")[7])
	assert.Equal(t, "AF=0.4;RD=9,4", strings.Split(lines[3], "\t")[7])
}

func TestDecomposePerGenotype(t *testing.T) {
	catalog := testCatalog(t,
		"##FORMAT=<ID=GT,Number=1,Type=String>",
		"##FORMAT=<ID=PL,Number=G,Type=Integer>",
		"##INFO=<ID=GL,Number=G,Type=Float>",
	)
	lines, ws, _ := decomposeLine(t, catalog, tabs("1", "9", ".", "G", "A,T", ".", ".", "GL=a,b,c,d,e,f", "GT:PL", "1/2:0,10,20,30,40,50"))
	assert.Empty(t, ws)
	assert.Equal(t, []string{
		tabs("1", "9", ".", "G", "A", ".", ".", "GL=a,b,c", "GT:PL", "1/.:0,10,20"),
		tabs("1", "9", ".", "G", "T", ".", ".", "GL=a,d,f", "GT:PL", "./1:0,30,50"),
	}, lines)
}

func TestDecomposeUnknownPassthrough(t *testing.T) {
	catalog := testCatalog(t,
		"##INFO=<ID=ODD,Number=foo,Type=String>",
		"##INFO=<ID=ANY,Number=.,Type=String>",
		"##INFO=<ID=TWO,Number=2,Type=Integer>",
		"##FORMAT=<ID=GT,Number=1,Type=String>",
	)
	lines, ws, _ := decomposeLine(t, catalog, tabs("1", "9", ".", "G", "A,T", ".", ".", "ODD=1,2,3;ANY=x,y;TWO=1,2;UNDECLARED=7,8;FLAG", "GT:XX", "0/1:q,r,s"))
	assert.Empty(t, ws)
	require.Len(t, lines, 2)
	for _, line := range lines {
		columns := strings.Split(line, "\t")
		assert.Equal(t, "ODD=1,2,3;ANY=x,y;TWO=1,2;UNDECLARED=7,8;FLAG", columns[7])
		assert.Equal(t, "q,r,s", strings.Split(columns[9], ":")[1])
	}
}

func TestDecomposeArityMismatch(t *testing.T) {
	catalog := testCatalog(t,
		"##INFO=<ID=AC,Number=A,Type=Integer>",
		"##INFO=<ID=DP,Number=1,Type=Integer>",
		"##FORMAT=<ID=GT,Number=1,Type=String>",
		"##FORMAT=<ID=AD,Number=R,Type=Integer>",
		"##FORMAT=<ID=PL,Number=G,Type=Integer>",
	)
	lines, ws, _ := decomposeLine(t, catalog, tabs("1", "9", ".", "G", "A,T", ".", ".", "AC=1;DP=30", "GT:AD:PL", "0/1:3,4:0,1,2", "1/1:.:0,1,2,3,4,5"))
	assert.Equal(t, []string{
		tabs("1", "9", ".", "G", "A", ".", ".", "AC=.;DP=30", "GT:AD:PL", "0/1:.:.", "1/1:.:0,1,2"),
		tabs("1", "9", ".", "G", "T", ".", ".", "AC=.;DP=30", "GT:AD:PL", "0/.:.:.", "./.:.:0,3,5"),
	}, lines)
	// reported once per record, not once per allele
	require.Len(t, ws, 3)
	assert.Equal(t, ArityMismatchWarning, ws[0].Kind)
	assert.Equal(t, "AC", ws[0].Field)
	assert.Equal(t, "AD", ws[1].Field)
	assert.Equal(t, "PL", ws[2].Field)
	for _, w := range ws {
		assert.Equal(t, 1, w.Line)
	}
}

func TestDecomposeTruncatedSamples(t *testing.T) {
	catalog := testCatalog(t,
		"##FORMAT=<ID=GT,Number=1,Type=String>",
		"##FORMAT=<ID=AD,Number=R,Type=Integer>",
		"##FORMAT=<ID=DP,Number=1,Type=Integer>",
	)
	lines, ws, _ := decomposeLine(t, catalog, tabs("1", "9", ".", "G", "A,T", ".", ".", ".", "GT:AD:DP", "0/2", "./.:1,2,3", "."))
	assert.Empty(t, ws)
	assert.Equal(t, []string{
		tabs("1", "9", ".", "G", "A", ".", ".", ".", "GT:AD:DP", "0/.", "./.:1,2", "."),
		tabs("1", "9", ".", "G", "T", ".", ".", ".", "GT:AD:DP", "0/1", "./.:1,3", "."),
	}, lines)
}

func TestDecomposeAlleleOutOfRange(t *testing.T) {
	catalog := testCatalog(t, "##FORMAT=<ID=GT,Number=1,Type=String>")
	lines, ws, _ := decomposeLine(t, catalog, tabs("1", "9", ".", "G", "A,T", ".", ".", ".", "GT", "0/3", "1|2"))
	assert.Equal(t, []string{
		tabs("1", "9", ".", "G", "A", ".", ".", ".", "GT", "0/.", "1|."),
		tabs("1", "9", ".", "G", "T", ".", ".", ".", "GT", "0/.", ".|1"),
	}, lines)
	require.Len(t, ws, 1)
	assert.Equal(t, AlleleIndexOutOfRange, ws[0].Kind)
	assert.Equal(t, "GT", ws[0].Field)
}

func TestDecomposeMalformedLine(t *testing.T) {
	catalog := testCatalog(t)
	line := tabs("1", "9", ".", "G", "A,T", ".", ".")
	lines, ws, stats := decomposeLine(t, catalog, line)
	assert.Equal(t, []string{line}, lines)
	require.Len(t, ws, 1)
	assert.Equal(t, RecordParseError, ws[0].Kind)
	assert.Equal(t, Stats{Records: 1, Emitted: 1}, stats)

	line = tabs("1", "nine", ".", "G", "A,T", ".", ".", ".")
	lines, ws, _ = decomposeLine(t, catalog, line)
	assert.Equal(t, []string{line}, lines)
	require.Len(t, ws, 1)
	assert.Equal(t, RecordParseError, ws[0].Kind)
}
