package members

import (
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/enums"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
	"github.com/openshelf/openshelf-backend/pkg/types"
)

// Actor identifies who is performing a member operation.
type Actor struct {
	MemberID uuid.UUID
	Role     enums.MemberRole
}

// CanActFor reports whether the actor may operate on the member's record.
func (a Actor) CanActFor(memberID uuid.UUID) bool {
	return a.MemberID == memberID || a.Role.IsAdmin()
}

// MemberDTO is the transport shape that omits the credential hash.
type MemberDTO struct {
	ID          uuid.UUID        `json:"id"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Email       string           `json:"email"`
	PhoneNumber string           `json:"phone_number"`
	Address     types.Address    `json:"address"`
	Role        enums.MemberRole `json:"role"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
	Address     types.Address
	IsAdmin     bool
}

// UpdateInput carries optional field changes; nil means leave unchanged.
type UpdateInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Address     *types.Address
}

// SearchFilters are substring predicates combined with AND.
type SearchFilters struct {
	Name  *string
	Email *string
	Phone *string
}

// SearchQuery bundles filters with pagination.
type SearchQuery struct {
	Filters SearchFilters
	Page    pagination.Params
}

// FromModel converts the persistence model into the transport shape.
func FromModel(m *models.Member) *MemberDTO {
	if m == nil {
		return nil
	}
	return &MemberDTO{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		Address:     m.Address,
		Role:        enums.RoleFor(m.IsAdmin),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toMemberDTOs(rows []models.Member) []MemberDTO {
	out := make([]MemberDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
