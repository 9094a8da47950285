// Package tally derives counts, completion and the winner from a ledger snapshot.
package tally

import (
	"math"

	"github.com/gravadigital/navidad-api/internal/domain/option"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
)

// Entry is one option's line in the results, in display order
type Entry struct {
	OptionID string `json:"option_id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Percent  int    `json:"percent"`
}

// Result is the derived, non-persistent outcome of a round
type Result struct {
	Counts     map[string]int `json:"counts"`
	Entries    []Entry        `json:"entries"`
	Total      int            `json:"total"`
	Winner     string         `json:"winner,omitempty"`
	IsTie      bool           `json:"is_tie"`
	Remaining  int            `json:"remaining"`
	RosterSize int            `json:"roster_size"`
	AllVoted   bool           `json:"all_voted"`
}

// HasWinner reports whether exactly one option holds the strict maximum
func (r Result) HasWinner() bool {
	return r.Winner != ""
}

// Tally is a pure function of its inputs. Votes for ids outside options
// count toward Total only, so a round whose ballots all name unknown ids has
// a positive Total with neither a winner nor a tie.
func Tally(votes []vote.Vote, options *option.Set, rosterSize int) Result {
	counts := make(map[string]int, options.Len())
	for _, id := range options.IDs() {
		counts[id] = 0
	}
	for _, v := range votes {
		if _, known := counts[v.OptionID]; known {
			counts[v.OptionID]++
		}
	}

	total := len(votes)
	res := Result{
		Counts:     counts,
		Entries:    make([]Entry, 0, options.Len()),
		Total:      total,
		Remaining:  max(0, rosterSize-total),
		RosterSize: rosterSize,
		AllVoted:   total == rosterSize,
	}

	maxCount := 0
	leader := ""
	for _, opt := range options.All() {
		n := counts[opt.ID]
		res.Entries = append(res.Entries, Entry{
			OptionID: opt.ID,
			Name:     opt.Name,
			Count:    n,
			Percent:  Percent(n, total),
		})

		switch {
		case n > maxCount:
			maxCount = n
			leader = opt.ID
			res.IsTie = false
		case n == maxCount && maxCount > 0:
			res.IsTie = true
		}
	}

	if !res.IsTie {
		res.Winner = leader
	}
	return res
}

// FromSnapshot tallies a full ledger snapshot
func FromSnapshot(snap vote.Snapshot, options *option.Set, rosterSize int) Result {
	return Tally(snap.Votes, options, rosterSize)
}

// Percent is count as a rounded share of total, 0 for an empty round
func Percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) * 100 / float64(total)))
}
