package config

import (
	"errors"
	"log"

	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/core/domain"
	"lendinghub/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db     *gorm.DB
	policy domain.Policy
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, policy domain.Policy) *Seeder {
	return &Seeder{db: db, policy: policy}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedStaff(); err != nil {
		log.Printf("⚠️ Staff seeder skipped: %v", err)
	}
	if err := s.seedCatalog(); err != nil {
		log.Printf("⚠️ Catalog seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedStaff seeds the default admin and librarian.
// This is for development/testing only; create production staff with lendctl.
func (s *Seeder) seedStaff() error {
	staff := []struct {
		username string
		role     domain.Role
	}{
		{"admin", domain.RoleAdmin},
		{"librarian", domain.RoleLibrarian},
	}

	for _, member := range staff {
		var count int64
		s.db.Model(&models.User{}).Where("username = ?", member.username).Count(&count)
		if count > 0 {
			continue
		}

		hashedPassword, err := password.Hash(getEnv("SEED_STAFF_PASSWORD", "admin123456"))
		if err != nil {
			return err
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			user := &models.User{
				Username: member.username,
				Email:    member.username + "@lendinghub.local",
				FullName: string(member.role),
				Password: hashedPassword,
				Role:     string(member.role),
				IsActive: true,
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			return tx.Create(&models.BorrowerProfile{
				UserID:          user.ID,
				MaxBooksAllowed: s.policy.MaxBooksAllowed,
				IsActive:        true,
			}).Error
		})
		if err != nil {
			return err
		}

		log.Printf("✅ %s user created: %s", member.role, member.username)
	}
	return nil
}

// seedCatalog seeds a few categories and items
func (s *Seeder) seedCatalog() error {
	catalog := map[string][]models.Item{
		"Fiction": {
			{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", ISBN: "9780441478125", TotalCopies: 2},
			{Title: "Kindred", Author: "Octavia E. Butler", ISBN: "9780807083697", TotalCopies: 1},
		},
		"Computing": {
			{Title: "The Go Programming Language", Author: "Alan A. A. Donovan", ISBN: "9780134190440", TotalCopies: 3},
		},
		"History": {},
	}

	for name, items := range catalog {
		var category models.Category
		err := s.db.Where("name = ?", name).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = models.Category{Name: name}
			err = s.db.Create(&category).Error
		}
		if err != nil {
			return err
		}

		for _, item := range items {
			var count int64
			s.db.Model(&models.Item{}).Where("isbn = ?", item.ISBN).Count(&count)
			if count > 0 {
				continue
			}

			item.CategoryID = category.ID
			item.AvailableCopies = item.TotalCopies
			item.Status = models.ItemStatusAvailable
			if err := s.db.Create(&item).Error; err != nil {
				return err
			}
		}
	}

	log.Println("✅ Catalog seeded")
	return nil
}
