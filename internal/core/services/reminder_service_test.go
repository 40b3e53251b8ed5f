package services

import (
	"context"
	"testing"
	"time"

	"library-borrowing/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepDeadlineSelection(t *testing.T) {
	f := newFixture()
	f.directory.books[1] = &domain.Book{ID: 1, Title: "Dune"}
	f.directory.members[5] = &domain.Member{ID: 5, Name: "Ann"}

	issue := func(issueDate, dueDate time.Time) uint {
		loan, err := f.loans.Issue(context.Background(), &IssueInput{
			MemberID: 5, BookID: 1, IssueDate: issueDate, DueDate: dueDate,
		})
		require.NoError(t, err)
		return loan.ID
	}

	overdueID := issue(date(2024, 2, 1), date(2024, 2, 15)) // overdue
	dueSoonID := issue(date(2024, 2, 20), date(2024, 3, 3)) // due within 3 days
	laterID := issue(date(2024, 2, 25), date(2024, 3, 20))  // not due yet
	returnedID := issue(date(2024, 1, 1), date(2024, 1, 15))
	_, err := f.loans.Return(context.Background(), returnedID, date(2024, 1, 10))
	require.NoError(t, err)

	today := date(2024, 3, 1)
	deadline := today.AddDate(0, 0, DueSoonDays)

	loans, err := f.loanRepo.ListOpenDueBefore(context.Background(), deadline)
	require.NoError(t, err)

	ids := make([]uint, 0, len(loans))
	for _, loan := range loans {
		ids = append(ids, loan.ID)
	}
	assert.ElementsMatch(t, []uint{overdueID, dueSoonID}, ids)
	assert.NotContains(t, ids, laterID)
	assert.NotContains(t, ids, returnedID, "returned loans never show up in the sweep")
}

func TestRunSweepSurvivesStoreOutage(t *testing.T) {
	f := newFixture()
	f.directory.books[1] = &domain.Book{ID: 1, Title: "Dune"}
	f.directory.members[5] = &domain.Member{ID: 5, Name: "Ann"}

	_, err := f.loans.Issue(context.Background(), &IssueInput{
		MemberID: 5, BookID: 1, IssueDate: date(2024, 1, 1), DueDate: date(2024, 1, 15),
	})
	require.NoError(t, err)

	reminder := NewReminderService(f.loanRepo, NewEnricher(f.directory, f.cache))
	reminder.now = func() time.Time { return date(2024, 2, 1) }

	f.directory.booksDown = true
	f.directory.membersDown = true

	// Only logs; must not panic when enrichment cannot reach the stores.
	reminder.RunSweep()
}
