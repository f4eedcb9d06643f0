package game

import (
	"strings"
	"testing"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/message"

	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	sentence25 := strings.Repeat("abcde", 5)
	tests := []struct {
		name     string
		sentence string
		seconds  float64
		want     int
	}{
		{"spec example", sentence25, 12, 25},
		{"one minute", strings.Repeat("x", 50), 60, 10},
		{"rounds up", sentence25, 14, 21}, // 5/(14/60) = 21.43
		{"invalid sentinel", sentence25, 0, 0},
		{"cheated sentinel", sentence25, -1, -50},
		{"other negative treated as invalid", sentence25, -3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Score(tt.sentence, tt.seconds))
		})
	}
}

func TestRankStandingsStableTieBreak(t *testing.T) {
	joinOrder := []string{"A", "B", "C"}
	aggregate := map[string]int{"A": 10, "B": 15, "C": 10}
	want := []message.Standing{
		{Username: "B", WPM: 15},
		{Username: "A", WPM: 10},
		{Username: "C", WPM: 10},
	}
	require.Equal(t, want, RankStandings(joinOrder, aggregate))
}
