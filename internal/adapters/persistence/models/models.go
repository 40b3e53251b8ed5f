package models

import (
	"time"

	"library-borrowing/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Request Workflow Tables
// ============================================================

// BookRequest represents book_requests table. Status leaves PENDING at most
// once (approve or reject) and is never mutated afterwards.
type BookRequest struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RequesterID uint           `gorm:"not null;index" json:"requester_id"`
	BookID      uint           `gorm:"not null;index" json:"book_id"`
	RequestDate time.Time      `gorm:"type:date;not null" json:"request_date"`
	Status      string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BookRequest) TableName() string {
	return "book_requests"
}

func (r *BookRequest) IsPending() bool {
	return r.Status == string(domain.RequestPending)
}

// BookRequestResponse DTO. RequesterName and BookTitle are filled from the
// member/catalog stores, with placeholders when a store cannot answer.
type BookRequestResponse struct {
	ID            uint      `json:"id"`
	RequesterID   uint      `json:"requester_id"`
	RequesterName string    `json:"requester_name,omitempty"`
	BookID        uint      `json:"book_id"`
	BookTitle     string    `json:"book_title,omitempty"`
	RequestDate   time.Time `json:"request_date"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r *BookRequest) ToResponse() *BookRequestResponse {
	return &BookRequestResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		BookID:      r.BookID,
		RequestDate: r.RequestDate,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
	}
}

// ============================================================
// Loan Ledger Tables
// ============================================================

// Loan represents loans table. ReturnDate is set exactly once by the return
// operation; a loan with ReturnDate set is terminal.
type Loan struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MemberID   uint           `gorm:"not null;index" json:"member_id"`
	BookID     uint           `gorm:"not null;index" json:"book_id"`
	IssueDate  time.Time      `gorm:"type:date;not null" json:"issue_date"`
	DueDate    time.Time      `gorm:"type:date;not null" json:"due_date"`
	ReturnDate *time.Time     `gorm:"type:date" json:"return_date"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string {
	return "loans"
}

func (l *Loan) IsReturned() bool {
	return l.ReturnDate != nil
}

// LoanResponse DTO
type LoanResponse struct {
	ID         uint       `json:"id"`
	MemberID   uint       `json:"member_id"`
	MemberName string     `json:"member_name,omitempty"`
	BookID     uint       `json:"book_id"`
	BookTitle  string     `json:"book_title,omitempty"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (l *Loan) ToResponse() *LoanResponse {
	return &LoanResponse{
		ID:         l.ID,
		MemberID:   l.MemberID,
		BookID:     l.BookID,
		IssueDate:  l.IssueDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		CreatedAt:  l.CreatedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for the tables this service owns.
// Member and book data live in their own services and are never migrated here.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookRequest{},
		&Loan{},
	)
}
