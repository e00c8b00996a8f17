// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/walteh/gitingest/pkg/filter"
	"github.com/walteh/gitingest/pkg/status"
)

// assembler applies the digest budget in path order as fetches complete.
// Completed records wait until every earlier eligible record is done, so the
// outcome only depends on the sorted order and the fetched bytes.
type assembler struct {
	mu       sync.Mutex
	f        filter.Config
	records  []status.Record
	eligible []int
	hints    []int64
	done     []bool
	next     int
	total    int64

	// fullAt is the eligible position that overflowed the budget, -1 when none.
	// Every later position is digest-full.
	fullAt atomic.Int64
}

func newAssembler(records []status.Record, eligible []int, f filter.Config) *assembler {
	a := &assembler{
		f:        f,
		records:  records,
		eligible: eligible,
		hints:    make([]int64, len(eligible)),
		done:     make([]bool, len(eligible)),
	}
	for pos, idx := range eligible {
		a.hints[pos] = records[idx].Size
	}
	a.fullAt.Store(-1)
	return a
}

// full reports whether pos is already known to be past the budget
func (a *assembler) full(pos int) bool {
	at := a.fullAt.Load()
	return at >= 0 && int64(pos) > at
}

func (a *assembler) complete(pos int, rec status.Record) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records[a.eligible[pos]] = rec
	a.done[pos] = true

	for a.next < len(a.eligible) && a.done[a.next] {
		r := &a.records[a.eligible[a.next]]

		switch {
		case a.fullAt.Load() >= 0:
			*r = status.Record{
				Path:   r.Path,
				Status: status.StatusDigestFull,
				Size:   a.hints[a.next],
				Reason: a.fullReason(),
			}
		case r.Status == status.StatusIncluded:
			size := int64(len(r.Content))
			if a.f.Fits(a.total, size) {
				a.total += size
				break
			}
			r.Status = status.StatusDigestFull
			r.Content = nil
			r.Reason = a.fullReason()
			a.fullAt.Store(int64(a.next))
		}

		a.next++
	}
}

func (a *assembler) fullReason() string {
	return fmt.Sprintf("digest limit of %s reached", status.FormatBytes(a.f.MaxTotalSize))
}
