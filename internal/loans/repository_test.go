package loans

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
)

func TestFindActiveIgnoresClosedLoans(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 2)
	member := mustCreateTestMember(t, conn)

	now := time.Now().UTC()
	closedAt := now.Add(-time.Hour)
	closed := &models.Loan{
		BookID:     book.ID,
		MemberID:   member.ID,
		IssueDate:  now.Add(-48 * time.Hour),
		DueDate:    now.Add(-24 * time.Hour),
		ReturnDate: &closedAt,
	}
	require.NoError(t, conn.Create(closed).Error)

	_, err := repo.FindActive(ctx, book.ID, member.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	open := &models.Loan{
		BookID:    book.ID,
		MemberID:  member.ID,
		IssueDate: now,
		DueDate:   now.Add(24 * time.Hour),
	}
	require.NoError(t, conn.Create(open).Error)

	found, err := repo.FindActive(ctx, book.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, found.ID)
}

func TestCloseFlipsExactlyOnce(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 1)
	member := mustCreateTestMember(t, conn)

	now := time.Now().UTC()
	loan := &models.Loan{
		BookID:    book.ID,
		MemberID:  member.ID,
		IssueDate: now,
		DueDate:   now.Add(24 * time.Hour),
	}
	require.NoError(t, conn.Create(loan).Error)

	closed, err := repo.Close(ctx, loan.ID, now)
	require.NoError(t, err)
	assert.True(t, closed, "first close should flip the row")

	closed, err = repo.Close(ctx, loan.ID, now)
	require.NoError(t, err)
	assert.False(t, closed, "second close must not flip the row again")
}

func TestListOverdueOrdersByDueDate(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 5)
	now := time.Now().UTC()

	dueOffsets := []time.Duration{-72 * time.Hour, -24 * time.Hour, -48 * time.Hour, 24 * time.Hour}
	for _, offset := range dueOffsets {
		member := mustCreateTestMember(t, conn)
		require.NoError(t, conn.Create(&models.Loan{
			BookID:    book.ID,
			MemberID:  member.ID,
			IssueDate: now.Add(offset - 30*24*time.Hour),
			DueDate:   now.Add(offset),
		}).Error)
	}
	// returned-but-late loan never shows up
	member := mustCreateTestMember(t, conn)
	returnedAt := now.Add(-time.Hour)
	require.NoError(t, conn.Create(&models.Loan{
		BookID:     book.ID,
		MemberID:   member.ID,
		IssueDate:  now.Add(-96 * time.Hour),
		DueDate:    now.Add(-90 * time.Hour),
		ReturnDate: &returnedAt,
	}).Error)

	rows, total, err := repo.ListOverdue(ctx, now, pagination.Params{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i-1].DueDate.After(rows[i].DueDate), "overdue loans out of order at %d", i)
	}
	require.NotNil(t, rows[0].Book)
	assert.NotEmpty(t, rows[0].Book.Title, "expected book preloaded")

	paged, total, err := repo.ListOverdue(ctx, now, pagination.Params{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	assert.Len(t, paged, 1)
}

func TestHistoryForOrdersByIssueDateDesc(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	member := mustCreateTestMember(t, conn)
	now := time.Now().UTC()

	for i, offset := range []time.Duration{-72 * time.Hour, -24 * time.Hour, -48 * time.Hour} {
		book := mustCreateTestBook(t, conn, 1)
		loan := &models.Loan{
			BookID:    book.ID,
			MemberID:  member.ID,
			IssueDate: now.Add(offset),
			DueDate:   now.Add(offset + 30*24*time.Hour),
		}
		if i == 0 {
			returnedAt := now.Add(-time.Hour)
			loan.ReturnDate = &returnedAt
		}
		require.NoError(t, conn.Create(loan).Error)
	}

	rows, err := repo.HistoryFor(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i-1].IssueDate.Before(rows[i].IssueDate), "history out of order at %d", i)
	}
}
