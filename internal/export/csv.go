// Package export writes ranked postings to a timestamped delimited file.
package export

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rotisserie/eris"

	"github.com/jobscout/jobscout-cli/internal/config"
	"github.com/jobscout/jobscout-cli/internal/model"
)

// column describes one exportable field: its header name, whether it is
// numeric (numeric fields are written bare, everything else quoted), and how
// to render it from a scored posting. Absent optionals render empty.
type column struct {
	name    string
	numeric bool
	render  func(sp model.ScoredPosting) string
}

// columns is the full export schema in output order.
var columns = []column{
	{"site", false, func(sp model.ScoredPosting) string { return sp.Site }},
	{"title", false, func(sp model.ScoredPosting) string { return sp.Title }},
	{"company", false, func(sp model.ScoredPosting) string { return sp.Company }},
	{"location", false, func(sp model.ScoredPosting) string { return strOrEmpty(sp.Location) }},
	{"date_posted", false, func(sp model.ScoredPosting) string {
		if sp.DatePosted == nil {
			return ""
		}
		return sp.DatePosted.Format("2006-01-02")
	}},
	{"job_type", false, func(sp model.ScoredPosting) string { return strOrEmpty(sp.JobType) }},
	{"interval", false, func(sp model.ScoredPosting) string { return strOrEmpty(sp.Interval) }},
	{"min_amount", true, func(sp model.ScoredPosting) string { return floatOrEmpty(sp.MinAmount) }},
	{"max_amount", true, func(sp model.ScoredPosting) string { return floatOrEmpty(sp.MaxAmount) }},
	{"is_remote", false, func(sp model.ScoredPosting) string { return sp.Remote.String() }},
	{"description", false, func(sp model.ScoredPosting) string { return strOrEmpty(sp.Description) }},
	{"job_url", false, func(sp model.ScoredPosting) string { return sp.JobURL }},
	{"company_url", false, func(sp model.ScoredPosting) string { return sp.CompanyURL }},
	{"composite_score", true, func(sp model.ScoredPosting) string {
		return strconv.FormatFloat(sp.Score, 'f', -1, 64)
	}},
}

// Writer exports one sorted batch per run, dropping configured columns.
type Writer struct {
	outDir    string
	delimiter rune
	drop      mapset.Set[string]
}

// NewWriter builds a Writer from the export configuration.
func NewWriter(cfg config.ExportConfig) *Writer {
	delim := ','
	if cfg.Delimiter != "" {
		delim = []rune(cfg.Delimiter)[0]
	}
	drop := mapset.NewThreadUnsafeSet[string]()
	for _, col := range cfg.DropColumns {
		drop.Add(strings.ToLower(strings.TrimSpace(col)))
	}
	return &Writer{
		outDir:    cfg.OutDir,
		delimiter: delim,
		drop:      drop,
	}
}

// Filename returns the timestamped export filename for the given instant.
func Filename(now time.Time) string {
	return now.Format("20060102_150405") + "_jobs_sorted.csv"
}

// Write writes the header plus one row per posting and returns the file path.
// The file is created exclusively so a run never overwrites a prior export.
func (w *Writer) Write(postings []model.ScoredPosting, now time.Time) (string, error) {
	cols := w.activeColumns()
	path := filepath.Join(w.outDir, Filename(now))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	bw := bufio.NewWriter(f)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = w.quote(c.name)
	}
	if _, err := bw.WriteString(strings.Join(header, string(w.delimiter)) + "\n"); err != nil {
		return "", eris.Wrap(err, "export: write header")
	}

	row := make([]string, len(cols))
	for _, sp := range postings {
		for i, c := range cols {
			if c.numeric {
				row[i] = c.render(sp)
			} else {
				row[i] = w.quote(c.render(sp))
			}
		}
		if _, err := bw.WriteString(strings.Join(row, string(w.delimiter)) + "\n"); err != nil {
			return "", eris.Wrap(err, "export: write row")
		}
	}

	if err := bw.Flush(); err != nil {
		return "", eris.Wrap(err, "export: flush")
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrapf(err, "export: close %s", path)
	}
	return path, nil
}

// activeColumns returns the schema minus the dropped columns.
func (w *Writer) activeColumns() []column {
	active := make([]column, 0, len(columns))
	for _, c := range columns {
		if !w.drop.Contains(c.name) {
			active = append(active, c)
		}
	}
	return active
}

// quote wraps a field in double quotes, doubling embedded quotes so the
// format round-trips losslessly whatever the field contains.
func (w *Writer) quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
