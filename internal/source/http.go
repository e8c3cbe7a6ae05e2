package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jobscout/jobscout-cli/internal/config"
	"github.com/jobscout/jobscout-cli/internal/model"
)

// HTTPSource fetches postings from a jobspy-compatible search API over HTTP,
// with rate limiting and bounded retry on 429/5xx.
type HTTPSource struct {
	client     *http.Client
	baseURL    string
	maxRetries int
	limiter    *rate.Limiter
}

// NewHTTPSource builds an HTTPSource from the search configuration.
func NewHTTPSource(cfg config.SearchConfig) *HTTPSource {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 3
	}
	perSec := rate.Limit(cfg.RatePerSec)
	if perSec == 0 {
		perSec = 2
	}
	return &HTTPSource{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:    cfg.BaseURL,
		maxRetries: retries,
		limiter:    rate.NewLimiter(perSec, 1),
	}
}

// Fetch runs one search against a single site and returns the parsed batch.
func (s *HTTPSource) Fetch(ctx context.Context, site string, q Query) ([]model.Posting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL(site, q), nil)
	if err != nil {
		return nil, eris.Wrap(err, "source: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "jobscout-cli/1.0")

	resp, err := s.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("source: unexpected status %d from %s", resp.StatusCode, site)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "source: read response")
	}

	var raw struct {
		Jobs []rawPosting `json:"jobs"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrapf(err, "source: decode response from %s", site)
	}

	postings := make([]model.Posting, 0, len(raw.Jobs))
	for _, rp := range raw.Jobs {
		postings = append(postings, rp.toPosting(site))
	}
	return postings, nil
}

func (s *HTTPSource) searchURL(site string, q Query) string {
	params := url.Values{}
	params.Set("site", site)
	params.Set("search_term", q.Term)
	params.Set("location", q.Location)
	params.Set("country", q.Country)
	params.Set("results_wanted", strconv.Itoa(q.ResultsWanted))
	params.Set("hours_old", strconv.Itoa(q.HoursOld))
	params.Set("is_remote", strconv.FormatBool(q.RemoteOnly))
	return fmt.Sprintf("%s/v1/search?%s", s.baseURL, params.Encode())
}

func (s *HTTPSource) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "source: rate limiter wait")
		}

		resp, err := s.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			zap.L().Warn("source: request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			s.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("source: http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("source: retryable status",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			s.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}
	return nil, eris.Wrap(lastErr, "source: all retries exhausted")
}

func (s *HTTPSource) backoff(ctx context.Context, attempt int) {
	d := time.Duration(float64(time.Second) * math.Pow(2, float64(attempt)))
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	d += time.Duration(rand.Int63n(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// rawPosting mirrors the wire schema with salvage types: malformed salaries
// and dates decode to absent instead of failing the batch.
type rawPosting struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	MinAmount   flexFloat  `json:"min_amount"`
	MaxAmount   flexFloat  `json:"max_amount"`
	IsRemote    model.Tri  `json:"is_remote"`
	JobType     *string    `json:"job_type"`
	Interval    *string    `json:"interval"`
	DatePosted  flexDate   `json:"date_posted"`
	JobURL      string     `json:"job_url"`
	CompanyURL  string     `json:"company_url"`
}

func (rp rawPosting) toPosting(site string) model.Posting {
	return model.Posting{
		Title:       rp.Title,
		Company:     rp.Company,
		Location:    rp.Location,
		Description: rp.Description,
		MinAmount:   rp.MinAmount.value,
		MaxAmount:   rp.MaxAmount.value,
		Remote:      rp.IsRemote,
		JobType:     rp.JobType,
		Interval:    rp.Interval,
		DatePosted:  rp.DatePosted.value,
		Site:        site,
		JobURL:      rp.JobURL,
		CompanyURL:  rp.CompanyURL,
	}
}

// flexFloat decodes a number, a numeric string, or anything else as absent.
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.value = &n
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if parsed, perr := strconv.ParseFloat(str, 64); perr == nil {
			f.value = &parsed
		}
	}
	return nil
}

// dateLayouts are the formats accepted for date_posted, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// flexDate decodes a date in any accepted layout; unparseable values are absent.
type flexDate struct {
	value *time.Time
}

func (d *flexDate) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil || str == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			d.value = &t
			return nil
		}
	}
	return nil
}
