package pipeline

import (
	"fmt"
	"strings"
)

// emptyStageMessages map a terminal stage to the message shown when that
// stage eliminated every candidate.
var emptyStageMessages = map[string]string{
	StageFetch:    "No jobs found matching the criteria.",
	StageTitle:    "No jobs left after title filtering.",
	StageRemote:   "No remote jobs left after filtering by remote flag.",
	StageJobType:  "No jobs left after filtering by employment type.",
	StageInterval: "No jobs left after filtering by pay interval.",
	StageLocation: "No jobs found with a valid US location.",
}

// FormatSummary renders a human-readable summary of a pipeline run.
func FormatSummary(result *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Fetched %d postings\n", result.Fetched)
	for _, stage := range stageOrder {
		count, ok := result.StageCounts[stage]
		if !ok {
			break
		}
		fmt.Fprintf(&b, "  after %-9s %d\n", stage+":", count)
	}

	if result.Empty() {
		msg, ok := emptyStageMessages[result.TerminalStage]
		if !ok {
			msg = "No jobs survived the pipeline."
		}
		b.WriteString(msg)
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Exported %d postings to %s\n", len(result.Survivors), result.ExportPath)

	// Show the top of the ranking for a quick sanity check.
	top := result.Survivors
	if len(top) > 5 {
		top = top[:5]
	}
	b.WriteString("\nTop postings:\n")
	for i, sp := range top {
		date := "-"
		if sp.DatePosted != nil {
			date = sp.DatePosted.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "%2d. %-50s score=%.0f posted=%s\n", i+1, truncate(sp.Title, 50), sp.Score, date)
	}

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
