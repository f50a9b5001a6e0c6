package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openshelf/openshelf-backend/api/responses"
	"github.com/openshelf/openshelf-backend/api/validators"
	"github.com/openshelf/openshelf-backend/internal/members"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
	"github.com/openshelf/openshelf-backend/pkg/types"
)

// RegisterMemberRequest enrolls a new member.
type RegisterMemberRequest struct {
	FirstName   string        `json:"first_name" validate:"required"`
	LastName    string        `json:"last_name" validate:"required"`
	Email       string        `json:"email" validate:"required,email"`
	PhoneNumber string        `json:"phone_number" validate:"required"`
	Password    string        `json:"password" validate:"required,min=8"`
	Address     types.Address `json:"address"`
}

// UpdateMemberRequest carries partial member record changes.
type UpdateMemberRequest struct {
	FirstName   *string        `json:"first_name,omitempty"`
	LastName    *string        `json:"last_name,omitempty"`
	Email       *string        `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber *string        `json:"phone_number,omitempty"`
	Address     *types.Address `json:"address,omitempty"`
}

// MemberRegister is the public enrollment endpoint.
func MemberRegister(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body RegisterMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Register(r.Context(), members.RegisterInput{
			FirstName:   body.FirstName,
			LastName:    body.LastName,
			Email:       body.Email,
			PhoneNumber: body.PhoneNumber,
			Password:    body.Password,
			Address:     body.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

// MemberProfile returns the authenticated member's own record.
func MemberProfile(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		member, err := svc.Get(r.Context(), actorID, members.Actor{MemberID: actorID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

// MemberDetail returns a member record, self-or-admin.
func MemberDetail(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := pathUUID(chi.URLParam(r, "memberId"), "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		member, err := svc.Get(r.Context(), memberID, members.Actor{MemberID: actorID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

// MemberUpdate applies partial changes to a member record, self-or-admin.
func MemberUpdate(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := pathUUID(chi.URLParam(r, "memberId"), "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body UpdateMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.Update(r.Context(), memberID, members.UpdateInput{
			FirstName:   body.FirstName,
			LastName:    body.LastName,
			Email:       body.Email,
			PhoneNumber: body.PhoneNumber,
			Address:     body.Address,
		}, members.Actor{MemberID: actorID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

// MemberDelete removes a member with no active loans, self-or-admin.
func MemberDelete(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := pathUUID(chi.URLParam(r, "memberId"), "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), memberID, members.Actor{MemberID: actorID, Role: role}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MemberSearch pages through members by name/email/phone substrings. Admin
// only.
func MemberSearch(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := members.SearchQuery{
			Filters: members.SearchFilters{
				Name:  validators.ParseQueryString(r, "name"),
				Email: validators.ParseQueryString(r, "email"),
				Phone: validators.ParseQueryString(r, "phone"),
			},
			Page: page,
		}

		rows, total, err := svc.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, rows, pagination.NewEnvelope(page, total))
	}
}
