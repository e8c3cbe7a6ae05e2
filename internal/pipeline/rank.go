package pipeline

import (
	"sort"
	"time"

	"github.com/jobscout/jobscout-cli/internal/model"
)

// Rank sorts scored postings in place: composite score descending, then
// posting date descending. Postings without a parseable date sort after any
// dated posting within the same score. The sort is stable, so equal keys keep
// their input order and the result is deterministic.
func Rank(postings []model.ScoredPosting) {
	sort.SliceStable(postings, func(i, j int) bool {
		if postings[i].Score != postings[j].Score {
			return postings[i].Score > postings[j].Score
		}
		return dateAfter(postings[i].DatePosted, postings[j].DatePosted)
	})
}

// dateAfter reports whether a should sort before b under date-descending
// order with missing dates last.
func dateAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
