package models

import (
	"fmt"
	"time"

	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Catalog & Accounts (subset used by circulation)
// ============================================================

// Book represents books table
type Book struct {
	ID              uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	ISBN            string         `gorm:"size:20;index" json:"isbn"`
	TotalCopies     int            `gorm:"not null;default:0" json:"total_copies"`
	AvailableCopies int            `gorm:"not null;default:0" json:"available_copies"`
	IsActive        bool           `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// BeforeCreate assigns an ID if none is set
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Member represents members table
type Member struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	FirstName string         `gorm:"size:100;not null" json:"first_name"`
	LastName  string         `gorm:"size:100;not null" json:"last_name"`
	Email     string         `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Role      domain.Role    `gorm:"size:20;not null;default:'Member'" json:"role"`
	IsActive  bool           `gorm:"not null" json:"is_active"`
	JoinDate  time.Time      `gorm:"not null" json:"join_date"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// BeforeCreate assigns an ID if none is set
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// FullName returns "First Last"
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// ============================================================
// Circulation
// ============================================================

// Loan represents loans table
type Loan struct {
	ID           uuid.UUID         `gorm:"type:char(36);primaryKey" json:"id"`
	BookID       uuid.UUID         `gorm:"type:char(36);not null;index" json:"book_id"`
	MemberID     uuid.UUID         `gorm:"type:char(36);not null;index" json:"member_id"`
	CheckoutDate time.Time         `gorm:"not null" json:"checkout_date"`
	DueDate      time.Time         `gorm:"not null;index" json:"due_date"`
	ReturnDate   *time.Time        `json:"return_date"`
	Status       domain.LoanStatus `gorm:"size:20;not null;index;default:'Active'" json:"status"`
	IsRenewed    bool              `gorm:"default:false" json:"is_renewed"`
	RenewalCount int               `gorm:"default:0" json:"renewal_count"`
	// OpenLoanKey is set while the loan holds a copy; the unique index
	// allows one open loan per (book, member).
	OpenLoanKey *string        `gorm:"size:80;uniqueIndex" json:"-"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Book   *Book   `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Fine   *Fine   `gorm:"foreignKey:LoanID" json:"fine,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// BeforeCreate assigns an ID if none is set
func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// OpenLoanKeyFor builds the open-loan key for a (book, member) pair
func OpenLoanKeyFor(bookID, memberID uuid.UUID) *string {
	key := fmt.Sprintf("%s:%s", bookID, memberID)
	return &key
}

// IsPastDue reports whether the due date is before the given day
func (l *Loan) IsPastDue(today time.Time) bool {
	return l.DueDate.Before(today)
}

// Fine represents fines table
type Fine struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	LoanID      uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex" json:"loan_id"`
	MemberID    uuid.UUID       `gorm:"type:char(36);not null;index" json:"member_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description string          `gorm:"size:255" json:"description"`
	IsPaid      bool            `gorm:"default:false;index" json:"is_paid"`
	CreatedDate time.Time       `gorm:"not null;index" json:"created_date"`
	PaidDate    *time.Time      `json:"paid_date"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Fine) TableName() string {
	return "fines"
}

// BeforeCreate assigns an ID if none is set
func (f *Fine) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for circulation tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Book{},
		&Member{},
		&Loan{},
		&Fine{},
	)
}
