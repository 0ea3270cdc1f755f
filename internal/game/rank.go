package game

import (
	"cmp"
	"fmt"
	"slices"
)

// Standing is one row of the leaderboard
type Standing struct {
	Rank  int    `json:"rank"`
	Total int    `json:"total"`
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// Label formats the standing the way the client displays it
func (s Standing) Label() string {
	return fmt.Sprintf("Rank: %d/%d", s.Rank, s.Total)
}

// Leaderboard orders players by score, highest first. Ties are broken by id
// so the order is stable between calls.
func Leaderboard(players map[string]Player) []Standing {
	sorted := make([]Player, 0, len(players))
	for _, p := range players {
		sorted = append(sorted, p)
	}
	slices.SortFunc(sorted, func(a, b Player) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]Standing, len(sorted))
	for i, p := range sorted {
		out[i] = Standing{Rank: i + 1, Total: len(sorted), ID: p.ID, Score: p.Score}
	}
	return out
}

// Rank returns the 1-based position of id on the leaderboard and the number
// of ranked players. rank is 0 when id is not present.
func Rank(players map[string]Player, id string) (rank, total int) {
	for _, s := range Leaderboard(players) {
		if s.ID == id {
			return s.Rank, s.Total
		}
	}
	return 0, len(players)
}
