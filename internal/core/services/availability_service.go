package services

import (
	"context"
	"errors"
	"log/slog"

	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityService tracks the available copy count of books.
// It is the only writer of Book.AvailableCopies after creation.
type AvailabilityService struct {
	store repositories.Store
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(store repositories.Store) *AvailabilityService {
	return &AvailabilityService{store: store}
}

// in returns a copy bound to a transaction scope
func (s *AvailabilityService) in(tx repositories.Store) *AvailabilityService {
	return &AvailabilityService{store: tx}
}

// Reserve takes one copy of an active book.
// The check and the decrement are a single conditional UPDATE.
func (s *AvailabilityService) Reserve(ctx context.Context, bookID uuid.UUID) error {
	ok, err := s.store.Books().DecrementAvailable(ctx, bookID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	exists, err := s.store.Books().Exists(ctx, bookID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrBookNotFound
	}
	return domain.ErrBookNotAvailable
}

// Release puts one copy back, never exceeding TotalCopies.
// A release on a book that is already full is logged and absorbed.
func (s *AvailabilityService) Release(ctx context.Context, bookID uuid.UUID) error {
	ok, err := s.store.Books().IncrementAvailable(ctx, bookID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	exists, err := s.store.Books().Exists(ctx, bookID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrBookNotFound
	}

	slog.ErrorContext(ctx, "❌ double release: available copies already at total", "book_id", bookID)
	return nil
}

// IsAvailable reports whether the book is active with at least one copy on the shelf
func (s *AvailabilityService) IsAvailable(ctx context.Context, bookID uuid.UUID) (bool, error) {
	book, err := s.store.Books().GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrBookNotFound
		}
		return false, err
	}
	return book.IsActive && book.AvailableCopies > 0, nil
}

// Availability returns the book with its current counters
func (s *AvailabilityService) Availability(ctx context.Context, bookID uuid.UUID) (*BookAvailability, error) {
	book, err := s.store.Books().GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return &BookAvailability{
		BookID:          book.ID,
		Title:           book.Title,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
		IsAvailable:     book.IsActive && book.AvailableCopies > 0,
	}, nil
}

// BookAvailability is the availability projection of a book
type BookAvailability struct {
	BookID          uuid.UUID `json:"book_id"`
	Title           string    `json:"title"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	IsAvailable     bool      `json:"is_available"`
}
