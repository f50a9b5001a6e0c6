package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"github.com/openshelf/openshelf-backend/pkg/metrics"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
	"go.uber.org/multierr"
)

const sweepPageSize = 100

// overdueLister pages through open loans past their due date.
type overdueLister interface {
	ListOverdue(ctx context.Context, now time.Time, page pagination.Params) ([]models.Loan, int64, error)
}

// OverdueSweepJobParams configure the overdue sweep.
type OverdueSweepJobParams struct {
	Logger  *logger.Logger
	Loans   overdueLister
	Metrics *metrics.LoanMetrics
}

// NewOverdueSweepJob builds the job that walks every overdue loan, logs it,
// and exports the total as a gauge.
func NewOverdueSweepJob(params OverdueSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Loans == nil {
		return nil, fmt.Errorf("loans lister required")
	}
	return &overdueSweepJob{
		logg:    params.Logger,
		loans:   params.Loans,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type overdueSweepJob struct {
	logg    *logger.Logger
	loans   overdueLister
	metrics *metrics.LoanMetrics
	now     func() time.Time
}

func (j *overdueSweepJob) Name() string { return "overdue-sweep" }

func (j *overdueSweepJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	var errs []error
	var total int64
	swept := 0
	for page := 1; ; page++ {
		rows, pageTotal, err := j.loans.ListOverdue(ctx, now, pagination.Params{
			Page:     page,
			PageSize: sweepPageSize,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("list overdue page %d: %w", page, err))
			break
		}
		total = pageTotal
		if len(rows) == 0 {
			break
		}
		for i := range rows {
			j.logOverdue(ctx, &rows[i], now)
			swept++
		}
	}

	j.metrics.SetOverdue(total)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"overdue_total": total,
		"swept":         swept,
	})
	j.logg.Info(logCtx, "overdue sweep complete")
	return multierr.Combine(errs...)
}

func (j *overdueSweepJob) logOverdue(ctx context.Context, loan *models.Loan, now time.Time) {
	fields := map[string]any{
		"loan_id":      loan.ID,
		"book_id":      loan.BookID,
		"member_id":    loan.MemberID,
		"due_date":     loan.DueDate,
		"days_overdue": int(now.Sub(loan.DueDate).Hours() / 24),
	}
	if loan.Book != nil {
		fields["book_title"] = loan.Book.Title
	}
	j.logg.Warn(j.logg.WithFields(ctx, fields), "loan overdue")
}
