package repositories

import (
	"context"

	"gorm.io/gorm"
)

// gormStore implements Store on top of a *gorm.DB (or a transaction handle)
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a new store bound to db
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Books() BookRepository     { return NewBookRepository(s.db) }
func (s *gormStore) Members() MemberRepository { return NewMemberRepository(s.db) }
func (s *gormStore) Loans() LoanRepository     { return NewLoanRepository(s.db) }
func (s *gormStore) Fines() FineRepository     { return NewFineRepository(s.db) }

// Transaction runs fn in a database transaction
func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
