package loans

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/enums"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
)

func selfActor(memberID uuid.UUID) Actor {
	return Actor{MemberID: memberID, Role: enums.MemberRoleMember}
}

func TestIssueHappyPath(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 2)
	member := mustCreateTestMember(t, conn)

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	dto, err := svc.Issue(ctx, book.ID, member.ID, selfActor(member.ID))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !dto.IssueDate.Equal(fixed) {
		t.Fatalf("expected issue date %v, got %v", fixed, dto.IssueDate)
	}
	if want := fixed.Add(30 * 24 * time.Hour); !dto.DueDate.Equal(want) {
		t.Fatalf("expected due date %v, got %v", want, dto.DueDate)
	}
	if dto.ReturnDate != nil {
		t.Fatal("new loan must be open")
	}

	var reloaded models.Book
	if err := conn.First(&reloaded, "id = ?", book.ID).Error; err != nil {
		t.Fatalf("reload book: %v", err)
	}
	if reloaded.Stock != 1 {
		t.Fatalf("expected stock decremented to 1, got %d", reloaded.Stock)
	}
}

func TestIssueRejectsSecondActiveLoan(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 5)
	member := mustCreateTestMember(t, conn)

	if _, err := svc.Issue(ctx, book.ID, member.ID, selfActor(member.ID)); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	_, err := svc.Issue(ctx, book.ID, member.ID, selfActor(member.ID))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT for duplicate active loan, got %v", err)
	}

	var reloaded models.Book
	if err := conn.First(&reloaded, "id = ?", book.ID).Error; err != nil {
		t.Fatalf("reload book: %v", err)
	}
	if reloaded.Stock != 4 {
		t.Fatalf("rejected issue must not touch stock, got %d", reloaded.Stock)
	}
}

func TestIssueDrainsStockExactlyOnce(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 1)
	first := mustCreateTestMember(t, conn)
	second := mustCreateTestMember(t, conn)

	if _, err := svc.Issue(ctx, book.ID, first.ID, selfActor(first.ID)); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	// Last copy is out: the competing issue must lose on the stock guard.
	_, err := svc.Issue(ctx, book.ID, second.ID, selfActor(second.ID))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT when shelf is empty, got %v", err)
	}

	var count int64
	if err := conn.Model(&models.Loan{}).Where("book_id = ?", book.ID).Count(&count).Error; err != nil {
		t.Fatalf("count loans: %v", err)
	}
	if count != 1 {
		t.Fatalf("exactly one loan should exist, got %d", count)
	}
	var reloaded models.Book
	if err := conn.First(&reloaded, "id = ?", book.ID).Error; err != nil {
		t.Fatalf("reload book: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", reloaded.Stock)
	}
}

func TestIssueUnknownBook(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	svc := newTestService(t, conn)

	member := mustCreateTestMember(t, conn)

	_, err := svc.Issue(context.Background(), uuid.New(), member.ID, selfActor(member.ID))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestIssueAuthorization(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 2)
	member := mustCreateTestMember(t, conn)
	stranger := mustCreateTestMember(t, conn)

	_, err := svc.Issue(ctx, book.ID, member.ID, selfActor(stranger.ID))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for other member, got %v", err)
	}

	admin := Actor{MemberID: stranger.ID, Role: enums.MemberRoleAdmin}
	if _, err := svc.Issue(ctx, book.ID, member.ID, admin); err != nil {
		t.Fatalf("admin should issue on behalf of member: %v", err)
	}
}

func TestReturnAndReissue(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 1)
	member := mustCreateTestMember(t, conn)

	if _, err := svc.Issue(ctx, book.ID, member.ID, selfActor(member.ID)); err != nil {
		t.Fatalf("issue: %v", err)
	}

	dto, err := svc.Return(ctx, book.ID, member.ID, selfActor(member.ID))
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if dto.ReturnDate == nil {
		t.Fatal("expected return date set")
	}

	var reloaded models.Book
	if err := conn.First(&reloaded, "id = ?", book.ID).Error; err != nil {
		t.Fatalf("reload book: %v", err)
	}
	if reloaded.Stock != 1 {
		t.Fatalf("expected stock back at 1, got %d", reloaded.Stock)
	}

	// Returned is terminal for that loan; a second return finds nothing.
	_, err = svc.Return(ctx, book.ID, member.ID, selfActor(member.ID))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND on double return, got %v", err)
	}

	// Reissue after return is permitted.
	if _, err := svc.Issue(ctx, book.ID, member.ID, selfActor(member.ID)); err != nil {
		t.Fatalf("reissue: %v", err)
	}
}

func TestHistoryForSplitsActiveAndReturned(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	member := mustCreateTestMember(t, conn)
	first := mustCreateTestBook(t, conn, 1)
	second := mustCreateTestBook(t, conn, 1)

	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if _, err := svc.Issue(ctx, first.ID, member.ID, selfActor(member.ID)); err != nil {
		t.Fatalf("issue first: %v", err)
	}
	if _, err := svc.Return(ctx, first.ID, member.ID, selfActor(member.ID)); err != nil {
		t.Fatalf("return first: %v", err)
	}

	svc.now = func() time.Time { return base.Add(24 * time.Hour) }
	if _, err := svc.Issue(ctx, second.ID, member.ID, selfActor(member.ID)); err != nil {
		t.Fatalf("issue second: %v", err)
	}

	history, err := svc.HistoryFor(ctx, member.ID, selfActor(member.ID))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.Active) != 1 || history.Active[0].BookID != second.ID {
		t.Fatalf("expected one active loan on second book, got %+v", history.Active)
	}
	if len(history.Returned) != 1 || history.Returned[0].BookID != first.ID {
		t.Fatalf("expected one returned loan on first book, got %+v", history.Returned)
	}

	stranger := mustCreateTestMember(t, conn)
	if _, err := svc.HistoryFor(ctx, member.ID, selfActor(stranger.ID)); err == nil {
		t.Fatal("expected FORBIDDEN for another member's history")
	}
}

func TestListOverdueService(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 2)
	member := mustCreateTestMember(t, conn)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if _, err := svc.Issue(ctx, book.ID, member.ID, selfActor(member.ID)); err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Not yet due.
	rows, total, err := svc.ListOverdue(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("expected nothing overdue, got total=%d", total)
	}

	// 31 days later the loan is past due.
	svc.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	rows, total, err = svc.ListOverdue(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected one overdue loan, got total=%d", total)
	}
	if !rows[0].Overdue {
		t.Fatal("expected overdue flag set")
	}
}
