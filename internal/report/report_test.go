package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchStats_Accumulate(t *testing.T) {
	var s BatchStats

	s.AddCommitted(1000, 600, false)
	s.AddCommitted(2000, 900, true)
	s.AddDiscarded(500)
	s.AddFailed()

	assert.Equal(t, 3, s.Processed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Converted)
	assert.Equal(t, int64(3500), s.BytesBefore)
	assert.Equal(t, int64(2000), s.BytesAfter)
}

func TestBatchStats_Reduction(t *testing.T) {
	tests := []struct {
		name   string
		before int64
		after  int64
		want   float64
	}{
		{name: "half", before: 1000, after: 500, want: 0.5},
		{name: "no change", before: 1000, after: 1000, want: 0},
		{name: "empty run", before: 0, after: 0, want: 0},
		{name: "grew is clamped", before: 1000, after: 1200, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := BatchStats{BytesBefore: tt.before, BytesAfter: tt.after}
			assert.InDelta(t, tt.want, s.Reduction(), 1e-9)
		})
	}
}

func TestBatchStats_Shortfall(t *testing.T) {
	assert.True(t, (&BatchStats{FinalCount: 77, ExpectedCount: 78}).Shortfall())
	assert.False(t, (&BatchStats{FinalCount: 78, ExpectedCount: 78}).Shortfall())
	assert.False(t, (&BatchStats{FinalCount: 80, ExpectedCount: 78}).Shortfall())
	// Zero expected count disables the check.
	assert.False(t, (&BatchStats{FinalCount: 1, ExpectedCount: 0}).Shortfall())
}

func TestBatchStats_Merge(t *testing.T) {
	a := BatchStats{Processed: 2, Failed: 1, BytesBefore: 100, BytesAfter: 80}
	b := BatchStats{Processed: 3, Converted: 1, BytesBefore: 200, BytesAfter: 150, FinalCount: 78, ExpectedCount: 78}

	a.Merge(b)

	assert.Equal(t, 5, a.Processed)
	assert.Equal(t, 1, a.Failed)
	assert.Equal(t, 1, a.Converted)
	assert.Equal(t, int64(300), a.BytesBefore)
	assert.Equal(t, int64(230), a.BytesAfter)
	assert.Equal(t, 78, a.FinalCount)
	assert.Equal(t, 78, a.ExpectedCount)
}

func TestBatchStats_Summary(t *testing.T) {
	s := BatchStats{
		Processed:     78,
		Failed:        1,
		Converted:     10,
		BytesBefore:   10 * 1024 * 1024,
		BytesAfter:    5 * 1024 * 1024,
		FinalCount:    77,
		ExpectedCount: 78,
	}

	out := s.Summary()
	assert.Contains(t, out, "Processed: 78 assets (1 failed)")
	assert.Contains(t, out, "Converted: 10 assets changed container")
	assert.Contains(t, out, "10.00 MB -> 5.00 MB (50.0% saved)")
	assert.Contains(t, out, "Collection: 77 of 78 assets (SHORT)")
}

func TestBatchStats_SummaryMinimal(t *testing.T) {
	s := BatchStats{}
	out := s.Summary()
	assert.Contains(t, out, "Processed: 0 assets")
	assert.NotContains(t, out, "failed")
	assert.NotContains(t, out, "Converted")
	assert.NotContains(t, out, "Collection")
}
