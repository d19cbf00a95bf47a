package config

import (
	"errors"
	"log/slog"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Existing rows are left untouched.
func (s *Seeder) Run() error {
	slog.Info("🌱 Running database seeders...")

	if err := s.seedBooks(); err != nil {
		return err
	}
	if err := s.seedMembers(); err != nil {
		return err
	}

	slog.Info("✅ Database seeding completed")
	return nil
}

// seedBooks seeds a small catalog for development
func (s *Seeder) seedBooks() error {
	books := []models.Book{
		{Title: "The Go Programming Language", ISBN: "9780134190440", TotalCopies: 3, AvailableCopies: 3, IsActive: true},
		{Title: "Designing Data-Intensive Applications", ISBN: "9781449373320", TotalCopies: 2, AvailableCopies: 2, IsActive: true},
		{Title: "Concurrency in Go", ISBN: "9781491941195", TotalCopies: 1, AvailableCopies: 1, IsActive: true},
		{Title: "The Pragmatic Programmer", ISBN: "9780135957059", TotalCopies: 4, AvailableCopies: 4, IsActive: true},
		{Title: "Out of Print Almanac", ISBN: "9780000000000", TotalCopies: 1, AvailableCopies: 1, IsActive: false},
	}

	for _, b := range books {
		var existing models.Book
		err := s.db.Where("isbn = ?", b.ISBN).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.db.Create(&b).Error; err != nil {
			return err
		}
		slog.Info("   Created book", "title", b.Title, "id", b.ID)
	}
	return nil
}

// seedMembers seeds one account per role
func (s *Seeder) seedMembers() error {
	joined := time.Now().UTC()
	members := []models.Member{
		{FirstName: "Ada", LastName: "Reader", Email: "ada@library.local", Role: domain.RoleMember, IsActive: true, JoinDate: joined},
		{FirstName: "Ben", LastName: "Borrower", Email: "ben@library.local", Role: domain.RoleMember, IsActive: true, JoinDate: joined},
		{FirstName: "Sam", LastName: "Desk", Email: "staff@library.local", Role: domain.RoleStaff, IsActive: true, JoinDate: joined},
		{FirstName: "Alex", LastName: "Admin", Email: "admin@library.local", Role: domain.RoleAdmin, IsActive: true, JoinDate: joined},
	}

	for _, m := range members {
		var existing models.Member
		err := s.db.Where("email = ?", m.Email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.db.Create(&m).Error; err != nil {
			return err
		}
		slog.Info("   Created member", "email", m.Email, "role", m.Role, "id", m.ID)
	}
	return nil
}
