package game

import (
	"math"
	"sort"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/message"
)

// CheatedSeconds is the submission sentinel for client-detected cheating.
const CheatedSeconds = -1

// CheatPenaltyWPM is the deterministic penalty for a cheated round.
const CheatPenaltyWPM = -50

// Score converts a submitted elapsed time into words per minute for the
// given sentence. Words are normalized to five characters, so
// WPM = round((len(sentence)/5) / (seconds/60)). The sentinel 0 (mismatched
// transcript) scores 0 and the sentinel -1 (cheating) scores the penalty;
// any other non-positive value is treated as a mismatch.
func Score(sentence string, seconds float64) int {
	switch {
	case seconds == CheatedSeconds:
		return CheatPenaltyWPM
	case seconds <= 0:
		return 0
	}
	words := float64(len(sentence)) / 5
	minutes := seconds / 60
	return int(math.Round(words / minutes))
}

// RankStandings orders usernames by descending aggregate WPM. The sort is
// stable over the given join order, so equal aggregates rank earlier
// joiners first.
func RankStandings(joinOrder []string, aggregate map[string]int) []message.Standing {
	standings := make([]message.Standing, 0, len(joinOrder))
	for _, username := range joinOrder {
		standings = append(standings, message.Standing{
			Username: username,
			WPM:      aggregate[username],
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].WPM > standings[j].WPM
	})
	return standings
}
