package advisor

import (
	"context"
	"time"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/logger"
	"github.com/shahabsali127/shiftplan/metrics"
	"github.com/shahabsali127/shiftplan/schedule"
)

// Advisor bounds every call with a timeout and records its outcome.
type Advisor struct {
	client  Client
	timeout time.Duration
	log     logger.Logger
	metrics *metrics.Recorder
}

func New(client Client, timeout time.Duration, log logger.Logger, rec *metrics.Recorder) *Advisor {
	if client == nil {
		client = Unavailable{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Advisor{client: client, timeout: timeout, log: log, metrics: rec}
}

// Analyze asks the service about the given plan. The snapshot is taken by
// the caller, so no lock is held while waiting for the answer.
func (a *Advisor) Analyze(ctx context.Context, snapshot schedule.Snapshot, query string) (string, error) {
	req, err := NewAnalysisRequest(snapshot, query)
	if err != nil {
		return "", err
	}
	return a.generate(ctx, req)
}

// ResearchHolidays asks the service for the holidays of region in year.
func (a *Advisor) ResearchHolidays(ctx context.Context, year int, region calendar.Region) (string, error) {
	return a.generate(ctx, NewHolidayRequest(year, region))
}

func (a *Advisor) generate(ctx context.Context, req Request) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := a.client.Generate(ctx, req)
	took := time.Since(start)
	a.metrics.RecordAdvisor(err, took)

	if err != nil {
		a.log.Warnf("advisor %s request failed after %s: %v", req.Kind, took, err)
		return "", err
	}
	a.log.Debugw("advisor answered", map[string]any{
		"kind":         string(req.Kind),
		"prompt_bytes": len(req.Prompt),
		"answer_bytes": len(text),
		"took_ms":      took.Milliseconds(),
	})
	return text, nil
}
