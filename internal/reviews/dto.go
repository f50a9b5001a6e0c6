package reviews

import (
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/enums"
)

// Actor identifies who is submitting a review.
type Actor struct {
	MemberID uuid.UUID
	Role     enums.MemberRole
}

// CanActFor reports whether the actor may review on behalf of the member.
func (a Actor) CanActFor(memberID uuid.UUID) bool {
	return a.MemberID == memberID || a.Role.IsAdmin()
}

// SubmitInput carries the review payload.
type SubmitInput struct {
	BookID   uuid.UUID
	MemberID uuid.UUID
	Rating   int
	Comment  string
}

// ReviewDTO is the read model for one review.
type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	BookID     uuid.UUID `json:"book_id"`
	MemberID   uuid.UUID `json:"member_id"`
	MemberName string    `json:"member_name,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReviewDTO(review *models.Review) *ReviewDTO {
	dto := &ReviewDTO{
		ID:        review.ID,
		BookID:    review.BookID,
		MemberID:  review.MemberID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	if review.Member != nil {
		dto.MemberName = review.Member.FullName()
	}
	return dto
}

func toReviewDTOs(rows []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toReviewDTO(&rows[i]))
	}
	return out
}
