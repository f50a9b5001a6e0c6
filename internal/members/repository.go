package members

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes member persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a members repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new member and returns the persisted model.
func (r *Repository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

// FindByID loads a member by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByEmail retrieves the member matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByPhone retrieves the member matching the provided phone number.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Save persists the full member row.
func (r *Repository) Save(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// Delete removes the member row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, "id = ?", id).Error
}

// CountActiveLoans reports how many open loans the member holds.
func (r *Repository) CountActiveLoans(ctx context.Context, memberID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("member_id = ? AND return_date IS NULL", memberID).
		Count(&count).Error
	return count, err
}

// Search pages through members matching the substring filters.
func (r *Repository) Search(ctx context.Context, query SearchQuery) ([]models.Member, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.Member{})

	if query.Filters.Name != nil {
		pattern := containsPattern(*query.Filters.Name)
		qb = qb.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", pattern, pattern)
	}
	if query.Filters.Email != nil {
		qb = qb.Where("LOWER(email) LIKE ?", containsPattern(*query.Filters.Email))
	}
	if query.Filters.Phone != nil {
		qb = qb.Where("phone_number LIKE ?", "%"+strings.TrimSpace(*query.Filters.Phone)+"%")
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Member
	err := qb.Order("last_name ASC, first_name ASC").
		Offset(query.Page.Offset()).
		Limit(query.Page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func containsPattern(value string) string {
	return "%" + strings.ToLower(strings.TrimSpace(value)) + "%"
}
