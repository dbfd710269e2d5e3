package archive_test

import (
	"testing"

	"github.com/mtgli/gatherer-archive/internal/archive"
)

func TestCard_DisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		card *archive.Card
		want string
	}{
		{
			name: "full metadata",
			card: &archive.Card{
				MultiverseID:    97042,
				Name:            "Arena",
				SetCode:         "TSB",
				CollectorNumber: "117",
			},
			want: "Arena — (TSB) | #117",
		},
		{
			name: "set code only",
			card: &archive.Card{
				MultiverseID: 209,
				Name:         "Lightning Bolt",
				SetCode:      "LEA",
			},
			want: "Lightning Bolt — (LEA)",
		},
		{
			name: "collector number only",
			card: &archive.Card{
				MultiverseID:    3,
				Name:            "Black Lotus",
				CollectorNumber: "232",
			},
			want: "Black Lotus — #232",
		},
		{
			name: "no metadata falls back to id",
			card: &archive.Card{
				MultiverseID: 42,
				Name:         "Shivan Dragon",
			},
			want: "Shivan Dragon (ID: 42)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.card.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCard_CommentsSortedByDatetime(t *testing.T) {
	t.Parallel()

	card := archive.NewCard(97042, "Arena", []archive.Comment{
		{ID: 3, Datetime: "2012-06-01 10:00:00"},
		{ID: 1, Datetime: "2010-04-30 22:48:13"},
		{ID: 2, Datetime: "2011-01-15 08:30:00"},
	})

	wantOrder := []int64{1, 2, 3}
	for i, comment := range card.Comments {
		if comment.ID != wantOrder[i] {
			t.Errorf("Comments[%d].ID = %d, want %d", i, comment.ID, wantOrder[i])
		}
	}
}

func TestCard_AddCommentsKeepsOrder(t *testing.T) {
	t.Parallel()

	card := archive.NewCard(97042, "Arena", []archive.Comment{
		{ID: 2, Datetime: "2011-01-15 08:30:00"},
	})
	card.AddComments([]archive.Comment{
		{ID: 3, Datetime: "2012-06-01 10:00:00"},
		{ID: 1, Datetime: "2010-04-30 22:48:13"},
	})

	wantOrder := []int64{1, 2, 3}
	if len(card.Comments) != len(wantOrder) {
		t.Fatalf("got %d comments, want %d", len(card.Comments), len(wantOrder))
	}
	for i, comment := range card.Comments {
		if comment.ID != wantOrder[i] {
			t.Errorf("Comments[%d].ID = %d, want %d", i, comment.ID, wantOrder[i])
		}
	}
}

func TestCard_RatingStats(t *testing.T) {
	t.Parallel()

	card := archive.NewCard(209, "Lightning Bolt", []archive.Comment{
		{ID: 1, Datetime: "2010-01-01 00:00:00", VoteCount: 10, VoteSum: 100}, // 5.0
		{ID: 2, Datetime: "2010-01-02 00:00:00", VoteCount: 4, VoteSum: 24},   // 3.0
		{ID: 3, Datetime: "2010-01-03 00:00:00"},                              // unrated
	})

	if got := card.TotalComments(); got != 3 {
		t.Errorf("TotalComments() = %d, want 3", got)
	}
	if got := card.TotalRated(); got != 2 {
		t.Errorf("TotalRated() = %d, want 2", got)
	}
	if got := card.AverageRating(); got != 4.0 {
		t.Errorf("AverageRating() = %v, want 4.0", got)
	}
}

func TestCard_AverageRatingNoVotes(t *testing.T) {
	t.Parallel()

	card := archive.NewCard(3, "Black Lotus", []archive.Comment{
		{ID: 1, Datetime: "2010-01-01 00:00:00"},
	})

	if got := card.AverageRating(); got != 0 {
		t.Errorf("AverageRating() = %v, want 0", got)
	}
}
