package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/config"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"github.com/openshelf/openshelf-backend/pkg/metrics"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockAdjuster applies guarded stock deltas inside the caller's transaction.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, delta int) error
}

// Service runs the loan state machine: None -> Active -> Returned, with
// reissue allowed once a loan is closed and stock permits.
type Service interface {
	Issue(ctx context.Context, bookID, memberID uuid.UUID, actor Actor) (*LoanDTO, error)
	Return(ctx context.Context, bookID, memberID uuid.UUID, actor Actor) (*LoanDTO, error)
	ListOverdue(ctx context.Context, page pagination.Params) ([]LoanDTO, int64, error)
	HistoryFor(ctx context.Context, memberID uuid.UUID, actor Actor) (*HistoryDTO, error)
}

type service struct {
	repo    *Repository
	stock   StockAdjuster
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.LoanMetrics
	cfg     config.LoanConfig
	now     func() time.Time
}

// NewService builds a loan service with the required dependencies.
func NewService(repo *Repository, stock StockAdjuster, tx txRunner, logg *logger.Logger, loanMetrics *metrics.LoanMetrics, cfg config.LoanConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock adjuster is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:    repo,
		stock:   stock,
		tx:      tx,
		logg:    logg,
		metrics: loanMetrics,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

func (s *service) attempts() int {
	if s.cfg.ConflictRetries <= 0 {
		return 1
	}
	return s.cfg.ConflictRetries
}

// Issue lends one copy to the member. The stock decrement and loan insert
// land in one transaction; the partial unique index on open (book, member)
// pairs backstops the pre-check under races.
func (s *service) Issue(ctx context.Context, bookID, memberID uuid.UUID, actor Actor) (*LoanDTO, error) {
	if !actor.CanActFor(memberID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot issue loans for another member")
	}

	ctx = s.logg.WithBookID(s.logg.WithMemberID(ctx, memberID.String()), bookID.String())

	var issued *models.Loan
	var lastErr error
	for attempt := 0; attempt < s.attempts(); attempt++ {
		if attempt > 0 {
			s.metrics.IncRetry()
		}
		lastErr = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)

			if _, err := txRepo.FindActive(ctx, bookID, memberID); err == nil {
				s.metrics.IncConflict("active_loan_exists")
				return pkgerrors.New(pkgerrors.CodeConflict, "member already holds this book")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active loan")
			}

			if err := s.stock.AdjustStock(ctx, tx, bookID, -1); err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
					s.metrics.IncConflict("stock_depleted")
					return pkgerrors.New(pkgerrors.CodeStateConflict, "no copies available")
				}
				return err
			}

			now := s.now().UTC()
			loan := &models.Loan{
				BookID:    bookID,
				MemberID:  memberID,
				IssueDate: now,
				DueDate:   now.Add(s.cfg.Period()),
			}
			created, err := txRepo.Create(ctx, loan)
			if err != nil {
				if pkgerrors.IsUniqueViolation(err, "idx_loans_active_pair") {
					s.metrics.IncConflict("active_loan_exists")
					return pkgerrors.New(pkgerrors.CodeConflict, "member already holds this book")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert loan")
			}
			issued = created
			return nil
		})
		if lastErr == nil || !pkgerrors.IsTransientConflict(lastErr) {
			break
		}
	}
	if lastErr != nil {
		if pkgerrors.IsTransientConflict(lastErr) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "loan issue did not settle, retry")
		}
		return nil, lastErr
	}

	s.metrics.IncIssued()
	s.logg.Info(ctx, "loan issued")
	return dtoPtr(toLoanDTO(issued, s.now().UTC())), nil
}

// Return closes the member's active loan and puts the copy back on the
// shelf. The close is a conditional UPDATE so a racing double-return flips
// exactly one row.
func (s *service) Return(ctx context.Context, bookID, memberID uuid.UUID, actor Actor) (*LoanDTO, error) {
	if !actor.CanActFor(memberID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot return loans for another member")
	}

	ctx = s.logg.WithBookID(s.logg.WithMemberID(ctx, memberID.String()), bookID.String())

	var returned *models.Loan
	var lastErr error
	for attempt := 0; attempt < s.attempts(); attempt++ {
		if attempt > 0 {
			s.metrics.IncRetry()
		}
		lastErr = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)

			loan, err := txRepo.FindActive(ctx, bookID, memberID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "no active loan for this book")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active loan")
			}

			now := s.now().UTC()
			closed, err := txRepo.Close(ctx, loan.ID, now)
			if err != nil {
				return err
			}
			if !closed {
				s.metrics.IncConflict("already_returned")
				return pkgerrors.New(pkgerrors.CodeConflict, "loan already returned")
			}

			if err := s.stock.AdjustStock(ctx, tx, bookID, 1); err != nil {
				return err
			}

			loan.ReturnDate = &now
			returned = loan
			return nil
		})
		if lastErr == nil || !pkgerrors.IsTransientConflict(lastErr) {
			break
		}
	}
	if lastErr != nil {
		if pkgerrors.IsTransientConflict(lastErr) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "loan return did not settle, retry")
		}
		return nil, lastErr
	}

	s.metrics.IncReturned()
	s.logg.Info(ctx, "loan returned")
	return dtoPtr(toLoanDTO(returned, s.now().UTC())), nil
}

// ListOverdue pages through open loans past due, oldest first.
func (s *service) ListOverdue(ctx context.Context, page pagination.Params) ([]LoanDTO, int64, error) {
	now := s.now().UTC()
	rows, total, err := s.repo.ListOverdue(ctx, now, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue loans")
	}
	return toLoanDTOs(rows, now), total, nil
}

// HistoryFor splits the member's ledger into active and returned loans.
func (s *service) HistoryFor(ctx context.Context, memberID uuid.UUID, actor Actor) (*HistoryDTO, error) {
	if !actor.CanActFor(memberID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another member's history")
	}

	rows, err := s.repo.HistoryFor(ctx, memberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loan history")
	}

	now := s.now().UTC()
	history := &HistoryDTO{Active: []LoanDTO{}, Returned: []LoanDTO{}}
	for i := range rows {
		dto := toLoanDTO(&rows[i], now)
		if rows[i].IsActive() {
			history.Active = append(history.Active, dto)
		} else {
			history.Returned = append(history.Returned, dto)
		}
	}
	return history, nil
}

func dtoPtr(dto LoanDTO) *LoanDTO {
	return &dto
}
