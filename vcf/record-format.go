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

func appendJoined(out []byte, list []string, separator byte) []byte {
	if len(list) == 0 {
		return out
	}
	out = append(out, list[0]...)
	for _, entry := range list[1:] {
		out = append(out, separator)
		out = append(out, entry...)
	}
	return out
}

// Format appends a VCF data line for the record to out, including
// the terminating newline.
func (record *Record) Format(out []byte) []byte {
	out = append(append(out, record.Chrom...), FieldSeparator)
	out = append(append(out, record.Pos...), FieldSeparator)
	out = append(append(out, record.ID...), FieldSeparator)
	out = append(append(out, record.Ref...), FieldSeparator)
	out = append(appendJoined(out, record.Alt, AlleleSeparator), FieldSeparator)
	out = append(append(out, record.Qual...), FieldSeparator)
	out = append(append(out, record.Filter...), FieldSeparator)
	if len(record.Info) == 0 {
		out = append(out, Missing...)
	} else {
		out = appendJoined(out, record.Info, InfoSeparator)
	}
	if len(record.GenotypeFormat) > 0 {
		out = append(out, FieldSeparator)
		out = append(out, *record.GenotypeFormat[0]...)
		for _, key := range record.GenotypeFormat[1:] {
			out = append(out, SubfieldSeparator)
			out = append(out, *key...)
		}
		for _, sample := range record.Samples {
			out = append(out, FieldSeparator)
			out = appendJoined(out, sample, SubfieldSeparator)
		}
	}
	return append(out, '\n')
}
