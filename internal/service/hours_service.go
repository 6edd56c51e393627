package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/pkg/export"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

const hoursSummaryCacheKey = "hours:summary"

type hoursSummarizer interface {
	Summaries(ctx context.Context) ([]models.TrainerHoursSummary, error)
}

type hoursCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string) error
}

// HoursExport is a rendered hours report.
type HoursExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// HoursService aggregates the trainer_hours ledger on read.
type HoursService struct {
	hours  hoursSummarizer
	cache  hoursCache
	logger *zap.Logger
	now    func() time.Time
}

// NewHoursService constructs an HoursService. cache may be nil.
func NewHoursService(hours hoursSummarizer, cache hoursCache, logger *zap.Logger) *HoursService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HoursService{hours: hours, cache: cache, logger: logger, now: time.Now}
}

// Summarize totals minutes per trainer, lowest workload first.
func (s *HoursService) Summarize(ctx context.Context) ([]models.TrainerHoursSummary, error) {
	var cached []models.TrainerHoursSummary
	if s.cache != nil && s.cache.Get(ctx, hoursSummaryCacheKey, &cached) {
		return cached, nil
	}

	summaries, err := s.hours.Summaries(ctx)
	if err != nil {
		s.logger.Error("summarize hours failed", zap.Error(err))
		return nil, internalError(err, "failed to summarize hours")
	}
	for i := range summaries {
		summaries[i].TotalHours = minutesToHours(summaries[i].TotalMinutes)
	}

	if s.cache != nil {
		s.cache.Set(ctx, hoursSummaryCacheKey, summaries, 0)
	}
	return summaries, nil
}

// InvalidateCache drops the cached summary after a ledger write.
func (s *HoursService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, hoursSummaryCacheKey); err != nil {
		s.logger.Error("hours summary cache may be stale", zap.Error(err))
	}
}

// Export renders the summary as "csv" or "pdf".
func (s *HoursService) Export(ctx context.Context, format string) (*HoursExport, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "unsupported export format")
	}

	summaries, err := s.Summarize(ctx)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title: "Trainer hours",
		Columns: []export.Column{
			{Header: "trainer_id"},
			{Header: "trainer_name"},
			{Header: "total_minutes", Numeric: true},
			{Header: "total_hours", Numeric: true},
		},
		Rows: make([][]string, 0, len(summaries)),
	}
	for _, summary := range summaries {
		table.Rows = append(table.Rows, []string{
			summary.TrainerID,
			summary.TrainerName,
			strconv.Itoa(summary.TotalMinutes),
			strconv.FormatFloat(summary.TotalHours, 'f', 1, 64),
		})
	}

	body, err := renderer.Render(table)
	if err != nil {
		return nil, internalError(err, "failed to render hours report")
	}
	return &HoursExport{
		Filename:    fmt.Sprintf("trainer-hours-%s.%s", s.now().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// minutesToHours rounds to one decimal place, ties to even, on the exact
// binary value of minutes/60. 15 minutes is 0.2 and 45 minutes is 0.8.
func minutesToHours(minutes int) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(float64(minutes)/60, 'f', 1, 64), 64)
	return rounded
}
