package services

import (
	"context"
	"log"
	"time"

	"library-borrowing/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// DueSoonDays is how far ahead of the due date a loan starts showing up in
// the daily reminder sweep.
const DueSoonDays = 3

// ReminderService runs the daily due-date sweep (08:30) over open loans.
// Member lookups here are display-only; an unreachable member service
// degrades the log line, never the sweep.
type ReminderService struct {
	loanRepo repositories.LoanRepository
	enricher *Enricher
	cron     *cron.Cron
	now      func() time.Time
}

// NewReminderService creates a new reminder service
func NewReminderService(loanRepo repositories.LoanRepository, enricher *Enricher) *ReminderService {
	return &ReminderService{
		loanRepo: loanRepo,
		enricher: enricher,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start schedules the daily sweep
func (s *ReminderService) Start() {
	s.cron.AddFunc("30 8 * * *", s.RunSweep)
	s.cron.Start()
	log.Println("🚀 ReminderService started (due-date sweep daily at 08:30)")
}

// Stop stops the scheduler, waiting for a running sweep to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 ReminderService stopped")
}

// RunSweep logs every open loan that is overdue or due within DueSoonDays.
func (s *ReminderService) RunSweep() {
	ctx := context.Background()
	today := dateOnly(s.now())
	deadline := today.AddDate(0, 0, DueSoonDays)

	loans, err := s.loanRepo.ListOpenDueBefore(ctx, deadline)
	if err != nil {
		log.Printf("❌ Due-date sweep query error: %v", err)
		return
	}

	overdue := 0
	for _, loan := range loans {
		memberName := s.enricher.MemberName(ctx, loan.MemberID)
		bookTitle := s.enricher.BookTitle(ctx, loan.BookID)

		if loan.DueDate.Before(today) {
			overdue++
			log.Printf("⚠️ Loan %d overdue since %s: %q held by %s",
				loan.ID, loan.DueDate.Format("2006-01-02"), bookTitle, memberName)
			continue
		}
		log.Printf("📅 Loan %d due %s: %q held by %s",
			loan.ID, loan.DueDate.Format("2006-01-02"), bookTitle, memberName)
	}

	if len(loans) > 0 {
		log.Printf("📚 Due-date sweep: %d loans due soon, %d overdue", len(loans)-overdue, overdue)
	}
}
