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

	"github.com/bits-and-blooms/bitset"
)

// Stats summarizes a run over a VCF stream.
type Stats struct {
	Lines       int // input lines read
	HeaderLines int // blank and marker lines
	Records     int // data lines
	Decomposed  int // data lines with more than one alternate allele
	Emitted     int // data lines written
	Warnings    int
}

// Add accumulates the counts of other into stats.
func (stats *Stats) Add(other Stats) {
	stats.Lines += other.Lines
	stats.HeaderLines += other.HeaderLines
	stats.Records += other.Records
	stats.Decomposed += other.Decomposed
	stats.Emitted += other.Emitted
	stats.Warnings += other.Warnings
}

// A Decomposer splits multi-allelic records into one record per
// alternate allele. It owns scratch space that is reused between
// records, so a Decomposer must not be used by more than one
// goroutine at a time. The Catalog is only read.
type Decomposer struct {
	catalog *Catalog
	parser  RecordParser

	// per INFO token of the current record
	infoArity    []Arity
	infoValues   [][]string
	infoRecode   *bitset.BitSet
	infoMismatch *bitset.BitSet

	// per FORMAT key, and per sample*len(Format)+key
	formatArity    []Arity
	formatRecode   *bitset.BitSet
	sampleValues   [][]string
	sampleMismatch *bitset.BitSet

	out     Record
	alt     [1]string
	info    []string
	samples [][]string
	kept    []string
	buf     []byte
}

// NewDecomposer creates a Decomposer that looks up field arities in
// the given catalog.
func NewDecomposer(catalog *Catalog) *Decomposer {
	return &Decomposer{
		catalog:        catalog,
		infoRecode:     bitset.New(64),
		infoMismatch:   bitset.New(64),
		formatRecode:   bitset.New(64),
		sampleMismatch: bitset.New(1024),
	}
}

func reuseValues(values [][]string, i int) [][]string {
	for len(values) <= i {
		values = append(values, nil)
	}
	values[i] = values[i][:0]
	return values
}

func splitInfo(token string) (key, value string, hasValue bool) {
	if i := strings.IndexByte(token, '='); i >= 0 {
		return token[:i], token[i+1:], true
	}
	return token, "", false
}

// prepare looks up the arities of all fields of the record, splits
// the allele-dependent ones, and checks their lengths once so that
// warnings are reported once per record rather than once per allele.
func (d *Decomposer) prepare(record *Record, line int, warn WarningFunc) {
	numAlts := len(record.Alt)

	d.infoArity = d.infoArity[:0]
	d.infoRecode.ClearAll()
	d.infoMismatch.ClearAll()
	for i, token := range record.Info {
		key, value, hasValue := splitInfo(token)
		var arity Arity
		if hasValue {
			arity = d.catalog.Lookup(Info, key)
		}
		d.infoArity = append(d.infoArity, arity)
		if !arity.AlleleDependent() || value == Missing {
			continue
		}
		d.infoRecode.Set(uint(i))
		d.infoValues = reuseValues(d.infoValues, i)
		d.infoValues[i] = appendSplit(d.infoValues[i], value, ValueSeparator)
		if n, _ := arity.ExpectedLength(numAlts); len(d.infoValues[i]) != n {
			d.infoMismatch.Set(uint(i))
			warn(Warning{
				Kind:    ArityMismatchWarning,
				Line:    line,
				Field:   key,
				Message: fmt.Sprintf("INFO field with Number=%v has %v values, expected %v for %v alternate alleles", arity, len(d.infoValues[i]), n, numAlts),
			})
		}
	}

	nKeys := len(record.GenotypeFormat)
	d.formatArity = d.formatArity[:0]
	d.formatRecode.ClearAll()
	d.sampleMismatch.ClearAll()
	for j, key := range record.GenotypeFormat {
		arity := d.catalog.LookupSymbol(Format, key)
		d.formatArity = append(d.formatArity, arity)
		if key == GT || arity.AlleleDependent() {
			d.formatRecode.Set(uint(j))
		}
	}
	if !d.formatRecode.Any() {
		return
	}
	for s, sample := range record.Samples {
		for j, value := range sample {
			if j >= nKeys || !d.formatRecode.Test(uint(j)) || value == Missing {
				continue
			}
			if record.GenotypeFormat[j] == GT {
				if _, outOfRange := RecodeGenotype(value, numAlts, 1); outOfRange {
					warn(Warning{
						Kind:    AlleleIndexOutOfRange,
						Line:    line,
						Field:   *GT,
						Message: fmt.Sprintf("genotype %v of sample %v refers to an allele outside 0..%v", value, s+1, numAlts),
					})
				}
				continue
			}
			index := s*nKeys + j
			d.sampleValues = reuseValues(d.sampleValues, index)
			d.sampleValues[index] = appendSplit(d.sampleValues[index], value, ValueSeparator)
			arity := d.formatArity[j]
			if n, _ := arity.ExpectedLength(numAlts); len(d.sampleValues[index]) != n {
				d.sampleMismatch.Set(uint(index))
				warn(Warning{
					Kind:    ArityMismatchWarning,
					Line:    line,
					Field:   *record.GenotypeFormat[j],
					Message: fmt.Sprintf("FORMAT field with Number=%v of sample %v has %v values, expected %v for %v alternate alleles", arity, s+1, len(d.sampleValues[index]), n, numAlts),
				})
			}
		}
	}
}

// joined returns key=values, or values if key is empty, as a new string.
func (d *Decomposer) joined(key string, values []string) string {
	d.buf = d.buf[:0]
	if key != "" {
		d.buf = append(append(d.buf, key...), '=')
	}
	d.buf = appendJoined(d.buf, values, ValueSeparator)
	return string(d.buf)
}

func (d *Decomposer) recodeInfo(record *Record, target int) []string {
	numAlts := len(record.Alt)
	d.info = d.info[:0]
	for i, token := range record.Info {
		if !d.infoRecode.Test(uint(i)) {
			d.info = append(d.info, token)
			continue
		}
		key, _, _ := splitInfo(token)
		if d.infoMismatch.Test(uint(i)) {
			d.info = append(d.info, key+"="+Missing)
			continue
		}
		var ok bool
		d.kept, ok = AppendRecoded(d.kept[:0], d.infoValues[i], d.infoArity[i], numAlts, target)
		if !ok {
			d.info = append(d.info, key+"="+Missing)
			continue
		}
		d.info = append(d.info, d.joined(key, d.kept))
	}
	return d.info
}

func (d *Decomposer) recodeSamples(record *Record, target int) [][]string {
	numAlts := len(record.Alt)
	nKeys := len(record.GenotypeFormat)
	for len(d.samples) < len(record.Samples) {
		d.samples = append(d.samples, nil)
	}
	for s, sample := range record.Samples {
		row := d.samples[s][:0]
		for j, value := range sample {
			if j >= nKeys || !d.formatRecode.Test(uint(j)) || value == Missing {
				row = append(row, value)
				continue
			}
			if record.GenotypeFormat[j] == GT {
				recoded, _ := RecodeGenotype(value, numAlts, target)
				row = append(row, recoded)
				continue
			}
			index := s*nKeys + j
			if d.sampleMismatch.Test(uint(index)) {
				row = append(row, Missing)
				continue
			}
			var ok bool
			d.kept, ok = AppendRecoded(d.kept[:0], d.sampleValues[index], d.formatArity[j], numAlts, target)
			if !ok {
				row = append(row, Missing)
				continue
			}
			row = append(row, d.joined("", d.kept))
		}
		d.samples[s] = row
	}
	return d.samples[:len(record.Samples)]
}

// Decompose calls emit once for each alternate allele of the record,
// in ALT order, with a single-allele record whose INFO and sample
// fields are recoded according to their declared arity. The record
// passed to emit is only valid during the call. A record with a
// single alternate allele is passed to emit as is.
func (d *Decomposer) Decompose(record *Record, line int, warn WarningFunc, emit func(*Record)) {
	if !record.Multiallelic() {
		emit(record)
		return
	}
	d.prepare(record, line, warn)
	for target := 1; target <= len(record.Alt); target++ {
		d.alt[0] = record.Alt[target-1]
		d.out = Record{
			Chrom:          record.Chrom,
			Pos:            record.Pos,
			ID:             record.ID,
			Ref:            record.Ref,
			Alt:            d.alt[:],
			Qual:           record.Qual,
			Filter:         record.Filter,
			Info:           d.recodeInfo(record, target),
			GenotypeFormat: record.GenotypeFormat,
			Samples:        d.recodeSamples(record, target),
		}
		emit(&d.out)
	}
}

func appendLine(out []byte, line string) []byte {
	return append(append(out, line...), '\n')
}

// AppendDataLine appends the output for one data line to out: the
// line itself if it has a single alternate allele or cannot be
// parsed, and one line per alternate allele otherwise. line is the
// 1-based input line number used in warnings.
func (d *Decomposer) AppendDataLine(out []byte, text string, line int, warn WarningFunc, stats *Stats) []byte {
	stats.Records++
	alt, ok := peekAlt(text)
	if !ok {
		warn(Warning{
			Kind:    RecordParseError,
			Line:    line,
			Message: fmt.Sprintf("expected at least %v columns in a VCF data line", MandatoryColumns),
		})
		stats.Emitted++
		return appendLine(out, text)
	}
	if strings.IndexByte(alt, AlleleSeparator) < 0 {
		stats.Emitted++
		return appendLine(out, text)
	}
	record, err := d.parser.Parse(text)
	if err != nil {
		warn(Warning{Kind: RecordParseError, Line: line, Message: err.Error()})
		stats.Emitted++
		return appendLine(out, text)
	}
	stats.Decomposed++
	d.Decompose(record, line, warn, func(r *Record) {
		out = r.Format(out)
		stats.Emitted++
	})
	return out
}
