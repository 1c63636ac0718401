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

package utils

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntern(t *testing.T) {
	line := "GT:AD:DP"
	gt := Intern(line[:2])
	assert.Same(t, gt, Intern("GT"))
	assert.Equal(t, "GT", *gt)
	assert.NotSame(t, gt, Intern("AD"))
	assert.Same(t, Intern(""), Intern(strings.Repeat("x", 0)))
}

func TestInternConcurrent(t *testing.T) {
	keys := []string{"GT", "AD", "DP", "PL", "GQ", "AC", "AF", "AN"}
	results := make([][]Symbol, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for _, key := range keys {
				results[i] = append(results[i], Intern(key+"_c"))
			}
		}(i)
	}
	wg.Wait()
	for _, result := range results[1:] {
		for j := range keys {
			assert.Same(t, results[0][j], result[j])
		}
	}
}
