package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/dgdash/internal/timesheet"
)

// Fetcher reads timesheet rows sorted by date ascending.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]timesheet.Entry, error)
	// FetchBetween returns rows dated in [start, end).
	FetchBetween(ctx context.Context, start, end time.Time) ([]timesheet.Entry, error)
}

// Service runs reports against a Fetcher. Only fetch errors are returned;
// empty selections produce empty reports.
type Service struct {
	fetch Fetcher
	log   logrus.FieldLogger
}

// NewService returns a Service. A nil logger discards log output.
func NewService(f Fetcher, log logrus.FieldLogger) *Service {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Service{fetch: f, log: log}
}

// AllocationReport is the division-of-labor chart data for a window.
type AllocationReport struct {
	Window     Window
	Allocation Allocation
	Rows       int
}

// MetricsReport is a task-specific chart plus its totals panel.
type MetricsReport struct {
	Query    Query
	Table    WideTable
	Totals   Summary
	Grouping Grouping
	// AxisLabel names the period unit for the x axis.
	AxisLabel string
}

func (s *Service) entry(op string) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{"op": op, "refresh_id": uuid.NewString()})
}

// Allocation classifies the rows in w per engineer and bucket.
func (s *Service) Allocation(ctx context.Context, w Window) (AllocationReport, error) {
	log := s.entry("allocation").WithField("window", w.String())
	rep := AllocationReport{Window: w}
	if w.Empty() {
		rep.Allocation = Allocate(nil)
		log.Debug("empty window")
		return rep, nil
	}

	started := time.Now()
	entries, err := s.fetch.FetchBetween(ctx, w.Start, w.End)
	if err != nil {
		log.WithError(err).Error("fetch failed")
		return rep, fmt.Errorf("allocation %s: %w", w, err)
	}
	rep.Allocation = Allocate(entries)
	rep.Rows = len(entries)
	log.WithFields(logrus.Fields{"rows": len(entries), "took": time.Since(started)}).Info("allocation computed")
	return rep, nil
}

// TaskNumbers lists the task numbers recorded under field.
func (s *Service) TaskNumbers(ctx context.Context, field timesheet.Field) ([]string, error) {
	entries, err := s.fetch.FetchAll(ctx)
	if err != nil {
		s.entry("task_numbers").WithError(err).Error("fetch failed")
		return nil, fmt.Errorf("task numbers for %s: %w", field, err)
	}
	return TaskNumbers(entries, field), nil
}

// TaskSpan finds when any of numbers was worked on and picks a grouping.
func (s *Service) TaskSpan(ctx context.Context, field timesheet.Field, numbers []string) (Span, error) {
	entries, err := s.fetch.FetchAll(ctx)
	if err != nil {
		s.entry("task_span").WithError(err).Error("fetch failed")
		return Span{}, fmt.Errorf("task span for %s: %w", field, err)
	}
	return FindSpan(entries, field, numbers), nil
}

// TaskMetrics builds the task chart and totals for q.
func (s *Service) TaskMetrics(ctx context.Context, q Query) (MetricsReport, error) {
	log := s.entry("task_metrics").WithFields(logrus.Fields{
		"field":    q.Field.Column(),
		"tasks":    len(q.Numbers),
		"window":   q.Window.String(),
		"grouping": q.Grouping.String(),
	})
	entries, err := s.fetch.FetchAll(ctx)
	if err != nil {
		log.WithError(err).Error("fetch failed")
		return MetricsReport{Query: q}, fmt.Errorf("task metrics for %s: %w", q.Field, err)
	}
	rep := buildMetricsReport(entries, q)
	log.WithFields(logrus.Fields{"periods": rep.Table.Len(), "department": rep.Totals.Department}).Info("task metrics computed")
	return rep, nil
}

func buildMetricsReport(entries []timesheet.Entry, q Query) MetricsReport {
	m := TaskMetrics(entries, q)
	return MetricsReport{
		Query:     q,
		Table:     m.Table,
		Totals:    Totals(m.Table),
		Grouping:  m.Grouping,
		AxisLabel: m.Grouping.Label(),
	}
}

// RescaleTotals recomputes q's totals for the window an axis event selects.
// The returned report is only meaningful for RescaleRecompute.
func (s *Service) RescaleTotals(ctx context.Context, q Query, ev AxisEvent) (RescaleResult, MetricsReport, error) {
	res := Rescale(ev, q.Window)
	if res.Outcome != RescaleRecompute {
		return res, MetricsReport{}, nil
	}
	q.Window = res.Window
	rep, err := s.TaskMetrics(ctx, q)
	if err != nil {
		return RescaleResult{Outcome: RescaleError, Err: err}, MetricsReport{}, err
	}
	return res, rep, nil
}
