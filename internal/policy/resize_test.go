package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name                 string
		w, h, maxW, maxH     int
		wantW, wantH         int
	}{
		{"within bound unchanged", 800, 1200, 2000, 3000, 800, 1200},
		{"exactly at bound unchanged", 2000, 3000, 2000, 3000, 2000, 3000},
		{"portrait scaled to fit", 5000, 7000, 2000, 3000, 2000, 2800},
		{"both dimensions clamp evenly", 3000, 5000, 1200, 2000, 1200, 2000},
		{"width overflow only", 4000, 1000, 2000, 3000, 2000, 500},
		{"height overflow only", 1000, 4000, 2000, 2000, 500, 2000},
		{"never upscale", 100, 150, 2000, 3000, 100, 150},
		{"extreme aspect keeps minimum one", 10000, 1, 100, 100, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := FitWithin(tt.w, tt.h, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, gotW)
			assert.Equal(t, tt.wantH, gotH)
			assert.LessOrEqual(t, gotW, tt.maxW)
			assert.LessOrEqual(t, gotH, tt.maxH)
		})
	}
}

func TestFitWithin_Deterministic(t *testing.T) {
	w1, h1 := FitWithin(5432, 7654, 1200, 2000)
	w2, h2 := FitWithin(5432, 7654, 1200, 2000)
	assert.Equal(t, w1, w2)
	assert.Equal(t, h1, h2)
}
