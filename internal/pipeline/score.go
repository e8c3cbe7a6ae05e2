package pipeline

import (
	"strings"

	"github.com/jobscout/jobscout-cli/internal/config"
	"github.com/jobscout/jobscout-cli/internal/model"
)

// Scorer computes the composite desirability score for a posting: salary
// component plus keyword bonuses plus the remote bonus. Purely additive, no
// normalization; absent fields contribute zero.
type Scorer struct {
	bonuses       map[string]int
	remoteBonus   float64
	remoteEnabled bool
}

// NewScorer builds a Scorer from the score configuration. remoteEnabled
// gates the remote bonus and mirrors the remote-only search flag.
func NewScorer(cfg config.ScoreConfig, remoteEnabled bool) *Scorer {
	bonuses := make(map[string]int, len(cfg.KeywordBonuses))
	for kw, bonus := range cfg.KeywordBonuses {
		bonuses[strings.ToLower(kw)] = bonus
	}
	return &Scorer{
		bonuses:       bonuses,
		remoteBonus:   float64(cfg.RemoteBonus),
		remoteEnabled: remoteEnabled,
	}
}

// Score returns the composite score for one posting. It is total: it never
// fails, whatever fields are missing.
func (s *Scorer) Score(p model.Posting) float64 {
	return s.salaryComponent(p) + s.keywordComponent(p.Description) + s.remoteComponent(p)
}

// ScoreAll annotates every posting with its composite score.
func (s *Scorer) ScoreAll(postings []model.Posting) []model.ScoredPosting {
	scored := make([]model.ScoredPosting, 0, len(postings))
	for _, p := range postings {
		scored = append(scored, model.ScoredPosting{Posting: p, Score: s.Score(p)})
	}
	return scored
}

// salaryComponent is the mean of both salary bounds, a single bound when only
// one is present, and zero otherwise. Negative bounds are treated as absent.
func (s *Scorer) salaryComponent(p model.Posting) float64 {
	minAmount := validAmount(p.MinAmount)
	maxAmount := validAmount(p.MaxAmount)

	switch {
	case minAmount != nil && maxAmount != nil:
		return (*minAmount + *maxAmount) / 2
	case minAmount != nil:
		return *minAmount
	case maxAmount != nil:
		return *maxAmount
	default:
		return 0
	}
}

func validAmount(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

// keywordComponent sums the bonus of every configured keyword found in the
// lowercased description. Each keyword counts at most once however often it
// appears; bonuses may be negative.
func (s *Scorer) keywordComponent(description *string) float64 {
	if description == nil {
		return 0
	}
	desc := strings.ToLower(*description)

	var total float64
	for kw, bonus := range s.bonuses {
		if strings.Contains(desc, kw) {
			total += float64(bonus)
		}
	}
	return total
}

// remoteComponent adds the remote bonus only when remote filtering is enabled
// and the posting is explicitly remote. Unknown earns nothing.
func (s *Scorer) remoteComponent(p model.Posting) float64 {
	if s.remoteEnabled && p.Remote.True() {
		return s.remoteBonus
	}
	return 0
}
