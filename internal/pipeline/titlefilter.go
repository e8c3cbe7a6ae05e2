package pipeline

import (
	"regexp"

	"github.com/rotisserie/eris"

	"github.com/jobscout/jobscout-cli/internal/model"
)

// TitleFilter applies inclusion and exclusion keyword rules to posting titles.
// Inclusion runs first; exclusion removes from the survivors, so a title
// matching both sets is always dropped.
type TitleFilter struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// NewTitleFilter compiles the inclusion and exclusion patterns
// case-insensitively. An empty inclusion pattern keeps every titled posting;
// an empty exclusion pattern removes nothing.
func NewTitleFilter(includeExpr, excludeExpr string) (*TitleFilter, error) {
	f := &TitleFilter{}

	if includeExpr != "" {
		re, err := regexp.Compile("(?i)" + includeExpr)
		if err != nil {
			return nil, eris.Wrap(err, "titlefilter: compile inclusion pattern")
		}
		f.include = re
	}
	if excludeExpr != "" {
		re, err := regexp.Compile("(?i)" + excludeExpr)
		if err != nil {
			return nil, eris.Wrap(err, "titlefilter: compile exclusion pattern")
		}
		f.exclude = re
	}
	return f, nil
}

// Apply returns the postings whose titles pass both rules. A missing title
// fails inclusion: unlike location, absence disqualifies here.
func (f *TitleFilter) Apply(postings []model.Posting) []model.Posting {
	kept := postings[:0:0]
	for _, p := range postings {
		if f.Keep(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Keep reports whether a single posting passes the title rules.
func (f *TitleFilter) Keep(p model.Posting) bool {
	if p.Title == "" {
		return false
	}
	if f.include != nil && !f.include.MatchString(p.Title) {
		return false
	}
	if f.exclude != nil && f.exclude.MatchString(p.Title) {
		return false
	}
	return true
}
