package pipeline

import (
	"strings"

	"github.com/jobscout/jobscout-cli/internal/geo"
	"github.com/jobscout/jobscout-cli/internal/model"
)

// Eligibility applies the remote, employment-type, pay-interval, and location
// sub-rules. Each sub-rule narrows the collection independently; every rule
// except location lets unknown values pass.
type Eligibility struct {
	// RemoteOnly enables the remote sub-rule. When false the rule is a no-op.
	RemoteOnly bool
	// AllowedJobTypes are the acceptable job_type values, compared case-insensitively.
	AllowedJobTypes []string
	// ExcludedIntervals are pay intervals that disqualify, compared case-insensitively.
	ExcludedIntervals []string
}

// Remote keeps postings whose remote flag is unknown or explicitly true.
// A posting is dropped only when the source says it is not remote.
func (e Eligibility) Remote(postings []model.Posting) []model.Posting {
	if !e.RemoteOnly {
		return postings
	}
	kept := postings[:0:0]
	for _, p := range postings {
		if !p.Remote.False() {
			kept = append(kept, p)
		}
	}
	return kept
}

// JobType keeps postings whose job_type is unknown or in the allowed set.
func (e Eligibility) JobType(postings []model.Posting) []model.Posting {
	kept := postings[:0:0]
	for _, p := range postings {
		if p.JobType == nil || e.jobTypeAllowed(*p.JobType) {
			kept = append(kept, p)
		}
	}
	return kept
}

func (e Eligibility) jobTypeAllowed(jobType string) bool {
	for _, allowed := range e.AllowedJobTypes {
		if strings.EqualFold(jobType, allowed) {
			return true
		}
	}
	return false
}

// Interval keeps postings whose pay interval is unknown or not excluded.
func (e Eligibility) Interval(postings []model.Posting) []model.Posting {
	kept := postings[:0:0]
	for _, p := range postings {
		if p.Interval == nil || !e.intervalExcluded(*p.Interval) {
			kept = append(kept, p)
		}
	}
	return kept
}

func (e Eligibility) intervalExcluded(interval string) bool {
	for _, excluded := range e.ExcludedIntervals {
		if strings.EqualFold(interval, excluded) {
			return true
		}
	}
	return false
}

// Location keeps postings classified as domestic. Missing locations pass.
func (e Eligibility) Location(postings []model.Posting) []model.Posting {
	kept := postings[:0:0]
	for _, p := range postings {
		if geo.IsDomestic(p.Location) {
			kept = append(kept, p)
		}
	}
	return kept
}
