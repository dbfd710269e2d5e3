package archive_test

import (
	"testing"

	"github.com/mtgli/gatherer-archive/internal/archive"
)

func TestComment_StarRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		voteCount int
		voteSum   int
		want      float64
	}{
		{
			name:      "perfect rating",
			voteCount: 10,
			voteSum:   100,
			want:      5.0,
		},
		{
			name:      "average rating",
			voteCount: 4,
			voteSum:   24,
			want:      3.0,
		},
		{
			name:      "no votes",
			voteCount: 0,
			voteSum:   0,
			want:      0.0,
		},
		{
			name:      "fractional rating",
			voteCount: 2,
			voteSum:   17,
			want:      4.25,
		},
		{
			name:      "single vote",
			voteCount: 1,
			voteSum:   8,
			want:      4.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := archive.Comment{VoteCount: tt.voteCount, VoteSum: tt.voteSum}
			if got := c.StarRating(); got != tt.want {
				t.Errorf("StarRating() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComment_StarDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		voteCount int
		voteSum   int
		want      string
	}{
		{
			name:      "five full stars",
			voteCount: 10,
			voteSum:   100,
			want:      "★★★★★ (5.0/5.0)",
		},
		{
			name:      "four stars with small fraction",
			voteCount: 2,
			voteSum:   17,
			want:      "★★★★☆ (4.2/5.0)",
		},
		{
			name:      "half star shown as hollow",
			voteCount: 1,
			voteSum:   7,
			want:      "★★★☆☆ (3.5/5.0)",
		},
		{
			name:      "no votes",
			voteCount: 0,
			voteSum:   0,
			want:      "☆☆☆☆☆ (0.0/5.0)",
		},
		{
			name:      "three flat stars",
			voteCount: 4,
			voteSum:   24,
			want:      "★★★☆☆ (3.0/5.0)",
		},
		{
			name:      "one star",
			voteCount: 3,
			voteSum:   6,
			want:      "★☆☆☆☆ (1.0/5.0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := archive.Comment{VoteCount: tt.voteCount, VoteSum: tt.voteSum}
			if got := c.StarDisplay(); got != tt.want {
				t.Errorf("StarDisplay() = %q, want %q", got, tt.want)
			}
		})
	}
}
