package plasmid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name     string
		cuts     []int
		length   int
		circular bool
		want     []Fragment
	}{
		{
			name:   "no cuts",
			length: 1000,
			want:   nil,
		},
		{
			name:   "linear single cut",
			cuts:   []int{300},
			length: 1000,
			want:   []Fragment{{1, 300, 300}, {301, 1000, 700}},
		},
		{
			name:     "circular single cut",
			cuts:     []int{300},
			length:   1000,
			circular: true,
			want:     []Fragment{{301, 300, 1000}},
		},
		{
			name:   "linear three cuts",
			cuts:   []int{800, 45, 300},
			length: 1000,
			want: []Fragment{
				{1, 45, 45}, {46, 300, 255}, {301, 800, 500}, {801, 1000, 200},
			},
		},
		{
			name:     "circular three cuts",
			cuts:     []int{45, 300, 800},
			length:   1000,
			circular: true,
			want: []Fragment{
				{46, 300, 255}, {301, 800, 500}, {801, 45, 245},
			},
		},
		{
			name:   "duplicates and out of range dropped",
			cuts:   []int{300, 300, 0, 1200},
			length: 1000,
			want:   []Fragment{{1, 300, 300}, {301, 1000, 700}},
		},
		{
			name:   "cut at the last base",
			cuts:   []int{1000},
			length: 1000,
			want:   []Fragment{{1, 1000, 1000}},
		},
		{
			name:     "circular cut at the last base",
			cuts:     []int{1000, 500},
			length:   1000,
			circular: true,
			want:     []Fragment{{501, 1000, 500}, {1, 500, 500}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Digest(tt.cuts, tt.length, tt.circular)
			assert.Equal(t, tt.want, got)

			total := 0
			for _, f := range got {
				total += f.Length
			}
			if len(got) > 0 {
				assert.Equal(t, tt.length, total, "fragments cover the sequence")
			}
		})
	}
}
