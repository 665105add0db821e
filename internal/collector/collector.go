package collector

import (
	"context"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/config"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/models"
)

// StopReason records why pagination ended
type StopReason int

const (
	// Continue is the transient state between pages; a finished run never reports it
	Continue StopReason = iota
	// StopEmpty means a page came back empty. This covers both the true end of
	// results and a failed request; the two are not told apart.
	StopEmpty
	// StopMaxReached means the accumulator hit the max results limit
	StopMaxReached
	// StopPagesExhausted means every planned page was fetched
	StopPagesExhausted
)

func (r StopReason) String() string {
	switch r {
	case Continue:
		return "continue"
	case StopEmpty:
		return "empty page"
	case StopMaxReached:
		return "max results reached"
	case StopPagesExhausted:
		return "pages exhausted"
	default:
		return "unknown"
	}
}

// Fetcher returns the raw records of one result page, or nothing on failure
type Fetcher interface {
	FetchPage(ctx context.Context, page int) []models.RawJob
}

// Result is the outcome of one collection run
type Result struct {
	Rows         []models.JobRow
	Reason       StopReason
	PagesFetched int
	Normalized   int
	Dropped      int
}

// Collector drives a Fetcher across pages
type Collector struct {
	Fetcher Fetcher
	Search  config.Search
	Log     logrus.FieldLogger
	// Bar, when set, is incremented once per fetched page
	Bar *pb.ProgressBar
	// Wait pauses between pages; nil uses a context-aware timer
	Wait func(ctx context.Context, d time.Duration) error
}

// PageCount is the number of pages needed to reach maxResults
func PageCount(maxResults, pageSize int) int {
	return (maxResults + pageSize - 1) / pageSize
}

// Collect fetches and normalizes up to Search.MaxResults rows, then drops rows
// missing a title or a description. A context cancelled during a request or
// the delay ends the run with an error and no rows.
func (c *Collector) Collect(ctx context.Context) (result Result, err error) {
	err = c.Search.Validate()
	if err != nil {
		err = errors.Wrap(err, "invalid search configuration")
		return result, err
	}

	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	wait := c.Wait
	if wait == nil {
		wait = sleep
	}

	maxResults := c.Search.MaxResults
	pages := PageCount(maxResults, c.Search.ResultsPerPage)
	rows := make([]models.JobRow, 0, maxResults)
	state := Continue

	for page := 1; page <= pages; page++ {
		jobs := c.Fetcher.FetchPage(ctx, page)
		result.PagesFetched++
		if c.Bar != nil {
			c.Bar.Increment()
		}

		if len(jobs) == 0 {
			log.WithField("page", page).Info("no results returned, stopping")
			state = StopEmpty
			break
		}

		for _, job := range jobs {
			rows = append(rows, models.Normalize(job))
			if len(rows) >= maxResults {
				break
			}
		}
		log.WithFields(logrus.Fields{"page": page, "rows": len(rows)}).Debug("page collected")

		if len(rows) >= maxResults {
			log.WithField("max_results", maxResults).Info("reached max results limit")
			state = StopMaxReached
			break
		}

		if page == pages {
			state = StopPagesExhausted
			break
		}

		err = wait(ctx, c.Search.Delay)
		if err != nil {
			err = errors.Wrapf(err, "collection interrupted after page %d", page)
			result.Normalized = len(rows)
			return result, err
		}
	}

	result.Normalized = len(rows)
	// a cancelled request looks like an empty page
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Wrap(ctxErr, "collection interrupted")
		return result, err
	}

	result.Reason = state
	result.Rows = make([]models.JobRow, 0, len(rows))
	for _, row := range rows {
		if row.HasRequiredFields() {
			result.Rows = append(result.Rows, row)
		}
	}
	result.Dropped = result.Normalized - len(result.Rows)

	log.WithFields(logrus.Fields{
		"collected": result.Normalized,
		"kept":      len(result.Rows),
		"dropped":   result.Dropped,
		"reason":    result.Reason.String(),
	}).Info("collection finished")

	return result, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
