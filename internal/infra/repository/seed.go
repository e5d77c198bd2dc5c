package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Catalog is the staff directory and service catalog as loaded from a seed
// file. Both are owned by the back office; the scheduler only reads them.
type Catalog struct {
	Staff    []models.Staff   `json:"staff"`
	Services []models.Service `json:"services"`
}

func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	for i, s := range c.Services {
		if s.Name == "" || s.DurationMin <= 0 {
			return nil, fmt.Errorf("seed service #%d: name and a positive duration_min are required", i)
		}
	}
	for i, s := range c.Staff {
		if s.ID == 0 || s.Name == "" {
			return nil, fmt.Errorf("seed staff #%d: id and name are required", i)
		}
	}
	return &c, nil
}

// SeedGorm upserts the catalog so restarts with the same file are harmless.
func SeedGorm(ctx context.Context, db *gorm.DB, c *Catalog) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(c.Staff) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "role", "active", "updated_at"}),
			}).Create(&c.Staff).Error; err != nil {
				return fmt.Errorf("seed staff: %w", err)
			}
		}
		if len(c.Services) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"category", "price", "duration_min"}),
			}).Create(&c.Services).Error; err != nil {
				return fmt.Errorf("seed services: %w", err)
			}
		}
		return nil
	})
}
