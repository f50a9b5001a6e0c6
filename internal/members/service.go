package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/config"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"github.com/openshelf/openshelf-backend/pkg/security"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages member enrollment and record upkeep.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*MemberDTO, error)
	Get(ctx context.Context, id uuid.UUID, actor Actor) (*MemberDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput, actor Actor) (*MemberDTO, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	Search(ctx context.Context, query SearchQuery) ([]MemberDTO, int64, error)
}

type service struct {
	repo        *Repository
	tx          txRunner
	logg        *logger.Logger
	passwordCfg config.PasswordConfig
}

// NewService constructs a member service with the provided dependencies.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, tx: tx, logg: logg, passwordCfg: passwordCfg}, nil
}

// Register enrolls a new member with a hashed credential. Email and phone
// number must be unused.
func (s *service) Register(ctx context.Context, input RegisterInput) (*MemberDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	phone := strings.TrimSpace(input.PhoneNumber)

	if err := validateRegister(input, email, phone); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.Member
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if err := ensureContactFree(ctx, txRepo, email, phone, uuid.Nil); err != nil {
			return err
		}

		created, err = txRepo.Create(ctx, &models.Member{
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
			Email:        email,
			PhoneNumber:  phone,
			PasswordHash: passwordHash,
			Address:      input.Address,
			IsAdmin:      input.IsAdmin,
		})
		if err != nil {
			if pkgerrors.IsUniqueViolation(err, "email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			if pkgerrors.IsUniqueViolation(err, "phone_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create member")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithMemberID(ctx, created.ID.String()), "member registered")
	return FromModel(created), nil
}

// Get loads a member record, visible to the member themselves or an admin.
func (s *service) Get(ctx context.Context, id uuid.UUID, actor Actor) (*MemberDTO, error) {
	if !actor.CanActFor(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another member's record")
	}
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	return FromModel(member), nil
}

// Update applies partial changes. Contact changes re-check uniqueness inside
// the transaction.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput, actor Actor) (*MemberDTO, error) {
	if !actor.CanActFor(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot edit another member's record")
	}

	var updated *models.Member
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		member, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}

		email := member.Email
		phone := member.PhoneNumber
		if input.Email != nil {
			email = strings.ToLower(strings.TrimSpace(*input.Email))
			if email == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
			}
		}
		if input.PhoneNumber != nil {
			phone = strings.TrimSpace(*input.PhoneNumber)
			if phone == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "phone number cannot be empty")
			}
		}
		if email != member.Email || phone != member.PhoneNumber {
			checkEmail, checkPhone := email, phone
			if email == member.Email {
				checkEmail = ""
			}
			if phone == member.PhoneNumber {
				checkPhone = ""
			}
			if err := ensureContactFree(ctx, txRepo, checkEmail, checkPhone, member.ID); err != nil {
				return err
			}
		}

		if input.FirstName != nil {
			member.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			member.LastName = strings.TrimSpace(*input.LastName)
		}
		if input.Address != nil {
			member.Address = *input.Address
		}
		member.Email = email
		member.PhoneNumber = phone

		if err := txRepo.Save(ctx, member); err != nil {
			if pkgerrors.IsUniqueViolation(err, "email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			if pkgerrors.IsUniqueViolation(err, "phone_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save member")
		}
		updated = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Delete removes a member. A member holding open loans cannot be removed.
func (s *service) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if !actor.CanActFor(id) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete another member's record")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}

		active, err := txRepo.CountActiveLoans(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active loans")
		}
		if active > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("member holds %d active loan(s)", active))
		}

		if err := txRepo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete member")
		}
		s.logg.Info(s.logg.WithMemberID(ctx, id.String()), "member deleted")
		return nil
	})
}

// Search pages through members matching the filters. Route guards restrict it
// to admins.
func (s *service) Search(ctx context.Context, query SearchQuery) ([]MemberDTO, int64, error) {
	rows, total, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search members")
	}
	return toMemberDTOs(rows), total, nil
}

func validateRegister(input RegisterInput, email, phone string) error {
	switch {
	case strings.TrimSpace(input.FirstName) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "first name is required")
	case strings.TrimSpace(input.LastName) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "last name is required")
	case email == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	case phone == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "phone number is required")
	case len(input.Password) < 8:
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	return nil
}

// ensureContactFree rejects email/phone values already held by a different
// member. Empty values are skipped.
func ensureContactFree(ctx context.Context, repo *Repository, email, phone string, selfID uuid.UUID) error {
	if email != "" {
		if existing, err := repo.FindByEmail(ctx, email); err == nil {
			if existing.ID != selfID {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
	}
	if phone != "" {
		if existing, err := repo.FindByPhone(ctx, phone); err == nil {
			if existing.ID != selfID {
				return pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check phone number")
		}
	}
	return nil
}
