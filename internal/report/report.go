// Package report accumulates batch statistics for one run.
//
// Stats live only for the duration of a run; nothing here is persisted.
package report

import (
	"fmt"
	"strings"

	"github.com/cardpress/cardpress/pkg/format"
)

// BatchStats aggregates the outcome of one batch run.
type BatchStats struct {
	// Processed counts assets whose session reached commit or discard.
	Processed int
	// Failed counts assets whose session aborted with an error.
	Failed int
	// Converted counts committed assets that changed container.
	Converted int
	// BytesBefore sums original sizes of processed assets.
	BytesBefore int64
	// BytesAfter sums final on-disk sizes of processed assets.
	BytesAfter int64
	// FinalCount is the number of assets present after the run.
	FinalCount int
	// ExpectedCount is the configured collection size, 0 to disable the check.
	ExpectedCount int
}

// AddCommitted records an asset whose candidate replaced the original.
func (s *BatchStats) AddCommitted(originalBytes, candidateBytes int64, converted bool) {
	s.Processed++
	s.BytesBefore += originalBytes
	s.BytesAfter += candidateBytes
	if converted {
		s.Converted++
	}
}

// AddDiscarded records an asset whose candidate was not smaller.
func (s *BatchStats) AddDiscarded(originalBytes int64) {
	s.Processed++
	s.BytesBefore += originalBytes
	s.BytesAfter += originalBytes
}

// AddFailed records an asset whose session aborted.
func (s *BatchStats) AddFailed() {
	s.Failed++
}

// Merge folds other into s. FinalCount and ExpectedCount take the later value
// when set.
func (s *BatchStats) Merge(other BatchStats) {
	s.Processed += other.Processed
	s.Failed += other.Failed
	s.Converted += other.Converted
	s.BytesBefore += other.BytesBefore
	s.BytesAfter += other.BytesAfter
	if other.FinalCount != 0 {
		s.FinalCount = other.FinalCount
	}
	if other.ExpectedCount != 0 {
		s.ExpectedCount = other.ExpectedCount
	}
}

// Reduction returns the fraction of bytes saved across processed assets,
// in [0, 1]. Zero when nothing was processed.
func (s *BatchStats) Reduction() float64 {
	if s.BytesBefore <= 0 {
		return 0
	}
	saved := s.BytesBefore - s.BytesAfter
	if saved < 0 {
		return 0
	}
	return float64(saved) / float64(s.BytesBefore)
}

// Shortfall reports whether fewer assets than expected remain. The check is
// advisory only; nothing corrects the count.
func (s *BatchStats) Shortfall() bool {
	return s.ExpectedCount > 0 && s.FinalCount < s.ExpectedCount
}

// Summary renders a human-readable multi-line report.
func (s *BatchStats) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Processed: %s assets", format.Number(int64(s.Processed)))
	if s.Failed > 0 {
		fmt.Fprintf(&b, " (%s failed)", format.Number(int64(s.Failed)))
	}
	b.WriteString("\n")

	if s.Converted > 0 {
		fmt.Fprintf(&b, "Converted: %s assets changed container\n", format.Number(int64(s.Converted)))
	}

	fmt.Fprintf(&b, "Size: %s -> %s (%s saved)\n",
		format.Bytes(s.BytesBefore),
		format.Bytes(s.BytesAfter),
		format.Percentage(s.Reduction()*100, 1))

	if s.ExpectedCount > 0 {
		fmt.Fprintf(&b, "Collection: %d of %d assets", s.FinalCount, s.ExpectedCount)
		if s.Shortfall() {
			b.WriteString(" (SHORT)")
		}
		b.WriteString("\n")
	}

	return b.String()
}
