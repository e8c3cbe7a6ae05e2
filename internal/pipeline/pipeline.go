// Package pipeline implements the filter, score, rank, and export stages
// applied to a batch of job postings.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jobscout/jobscout-cli/internal/config"
	"github.com/jobscout/jobscout-cli/internal/export"
	"github.com/jobscout/jobscout-cli/internal/model"
	"github.com/jobscout/jobscout-cli/internal/source"
	"github.com/jobscout/jobscout-cli/internal/store"
)

// Stage names, used for per-stage survivor counts and empty-batch reporting.
const (
	StageFetch     = "fetch"
	StageTitle     = "title"
	StageRemote    = "remote"
	StageJobType   = "job_type"
	StageInterval  = "interval"
	StageLocation  = "location"
	stagesComplete = "" // terminal stage when the run reached export
)

// stageOrder is the fixed order filters apply in.
var stageOrder = []string{StageTitle, StageRemote, StageJobType, StageInterval, StageLocation}

// Result holds the outcome of one pipeline run.
type Result struct {
	RunID         string
	Fetched       int
	StageCounts   map[string]int
	TerminalStage string // stage after which the batch was empty; "" if exported
	Survivors     []model.ScoredPosting
	ExportPath    string
}

// Empty reports whether the run produced no export.
func (r *Result) Empty() bool { return r.TerminalStage != "" }

// Pipeline wires the external source, filter stages, scorer, ranker,
// exporter, and run-history store together.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	source   source.Source
	exporter *export.Writer
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, src source.Source, exporter *export.Writer) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		source:   src,
		exporter: exporter,
	}
}

// Run fetches one batch of postings and drives it through every stage.
// An empty batch after any filter is a normal terminal state, not an error:
// the result records which stage emptied it and no file is written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("term", p.cfg.Search.Term))
	start := time.Now()

	result := &Result{StageCounts: make(map[string]int, len(stageOrder))}

	titleFilter, err := NewTitleFilter(p.cfg.Filter.TitleInclude, p.cfg.Filter.TitleExclude)
	if err != nil {
		return nil, err
	}

	// Fetch is the only external call; a failure here is fatal to the run.
	batch, err := source.FetchAll(ctx, p.source, p.cfg.Search.Sites, p.query())
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch postings")
	}
	result.Fetched = len(batch)
	log.Info("pipeline: fetched postings",
		zap.Int("count", len(batch)),
		zap.Strings("sites", p.cfg.Search.Sites),
	)

	if len(batch) == 0 {
		return p.finish(ctx, result, StageFetch, start)
	}

	eligibility := Eligibility{
		RemoteOnly:        p.cfg.Search.RemoteOnly,
		AllowedJobTypes:   p.cfg.Filter.AllowedJobTypes,
		ExcludedIntervals: p.cfg.Filter.ExcludedIntervals,
	}

	// Filter stages narrow the batch in order; no stage re-admits a posting.
	stages := map[string]func([]model.Posting) []model.Posting{
		StageTitle:    titleFilter.Apply,
		StageRemote:   eligibility.Remote,
		StageJobType:  eligibility.JobType,
		StageInterval: eligibility.Interval,
		StageLocation: eligibility.Location,
	}

	for _, name := range stageOrder {
		batch = stages[name](batch)
		result.StageCounts[name] = len(batch)
		log.Info("pipeline: stage complete",
			zap.String("stage", name),
			zap.Int("survivors", len(batch)),
		)
		if len(batch) == 0 {
			log.Warn("pipeline: no jobs left after stage", zap.String("stage", name))
			return p.finish(ctx, result, name, start)
		}
	}

	scorer := NewScorer(p.cfg.Score, p.cfg.Search.RemoteOnly)
	result.Survivors = scorer.ScoreAll(batch)
	Rank(result.Survivors)

	path, err := p.exporter.Write(result.Survivors, time.Now())
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: export")
	}
	result.ExportPath = path
	log.Info("pipeline: export written",
		zap.String("path", path),
		zap.Int("rows", len(result.Survivors)),
	)

	return p.finish(ctx, result, stagesComplete, start)
}

// finish records the run in the store and stamps the terminal stage.
func (p *Pipeline) finish(ctx context.Context, result *Result, terminal string, start time.Time) (*Result, error) {
	result.TerminalStage = terminal

	run := &model.Run{
		Query:         p.cfg.Search.Term,
		Sites:         p.cfg.Search.Sites,
		Fetched:       result.Fetched,
		StageCounts:   result.StageCounts,
		TerminalStage: terminal,
		Exported:      len(result.Survivors),
		ExportPath:    result.ExportPath,
		StartedAt:     start.UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
	}
	recorded, err := p.store.RecordRun(ctx, run)
	if err != nil {
		// Run history is observability, not correctness: the export (if any)
		// already exists, so log and carry on.
		zap.L().Warn("pipeline: failed to record run", zap.Error(err))
		return result, nil
	}
	result.RunID = recorded.ID
	return result, nil
}

func (p *Pipeline) query() source.Query {
	return source.Query{
		Term:          p.cfg.Search.Term,
		Location:      p.cfg.Search.Location,
		Country:       p.cfg.Search.Country,
		ResultsWanted: p.cfg.Search.ResultsWanted,
		HoursOld:      p.cfg.Search.HoursOld,
		RemoteOnly:    p.cfg.Search.RemoteOnly,
	}
}
