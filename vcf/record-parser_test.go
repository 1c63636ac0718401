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

	"github.com/exascience/vcfsplit/utils"
)

func tabs(columns ...string) string {
	return strings.Join(columns, "\t")
}

func symbolNames(symbols []utils.Symbol) (names []string) {
	for _, s := range symbols {
		names = append(names, *s)
	}
	return names
}

func TestParseRecord(t *testing.T) {
	var parser RecordParser
	line := tabs("1", "100", "rs1", "A", "C,G", "50", "PASS", "AC=10,20;DB", "GT:AD", "0/1:5,3,2", "0/2")
	record, err := parser.Parse(line)
	require.NoError(t, err)
	assert.Equal(t, "1", record.Chrom)
	assert.Equal(t, "100", record.Pos)
	assert.Equal(t, "rs1", record.ID)
	assert.Equal(t, "A", record.Ref)
	assert.Equal(t, []string{"C", "G"}, record.Alt)
	assert.True(t, record.Multiallelic())
	assert.Equal(t, "50", record.Qual)
	assert.Equal(t, "PASS", record.Filter)
	assert.Equal(t, []string{"AC=10,20", "DB"}, record.Info)
	assert.Equal(t, []string{"GT", "AD"}, symbolNames(record.GenotypeFormat))
	assert.Equal(t, GT, record.GenotypeFormat[0])
	assert.Equal(t, [][]string{{"0/1", "5,3,2"}, {"0/2"}}, record.Samples)
	assert.Equal(t, line+"\n", string(record.Format(nil)))
}

func TestParseRecordSitesOnly(t *testing.T) {
	var parser RecordParser
	line := tabs("2", "7", ".", "T", "A", ".", ".", ".")
	record, err := parser.Parse(line)
	require.NoError(t, err)
	assert.Empty(t, record.Info)
	assert.Empty(t, record.GenotypeFormat)
	assert.Empty(t, record.Samples)
	assert.False(t, record.Multiallelic())
	assert.Equal(t, line+"\n", string(record.Format(nil)))
}

func TestParseRecordReuse(t *testing.T) {
	var parser RecordParser
	_, err := parser.Parse(tabs("1", "1", ".", "A", "C,G,T", ".", ".", "X=1;Y=2;Z=3", "GT:AD:DP", "0/1:1,2,3,4:9", "1/1", "2/3"))
	require.NoError(t, err)
	line := tabs("1", "2", ".", "A", "C", ".", ".", "X=1", "GT", "0/1")
	record, err := parser.Parse(line)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, record.Alt)
	assert.Equal(t, []string{"X=1"}, record.Info)
	assert.Equal(t, [][]string{{"0/1"}}, record.Samples)
	assert.Equal(t, line+"\n", string(record.Format(nil)))
}

func TestParseRecordErrors(t *testing.T) {
	var parser RecordParser
	_, err := parser.Parse(tabs("1", "100", "rs1", "A", "C,G", "50", "PASS"))
	assert.Error(t, err)
	_, err = parser.Parse("")
	assert.Error(t, err)
	_, err = parser.Parse(tabs("1", "zero", "rs1", "A", "C,G", "50", "PASS", "."))
	assert.Error(t, err)
	_, err = parser.Parse(tabs("1", "0", "rs1", "A", "C,G", "50", "PASS", "."))
	assert.Error(t, err)
}

func TestPeekAlt(t *testing.T) {
	alt, ok := peekAlt(tabs("1", "100", "rs1", "A", "C,G", "50", "PASS", "."))
	assert.True(t, ok)
	assert.Equal(t, "C,G", alt)
	_, ok = peekAlt(tabs("1", "100", "rs1", "A", "C,G", "50", "PASS"))
	assert.False(t, ok)
}
