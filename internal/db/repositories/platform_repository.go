// platform_repository.go implements PlatformRepository over the fixed platform
// reference set. The rows are seeded by migration; this repository only reads.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/app-catalog/app-catalog/internal/db/models"
)

// PlatformRepository handles lookups against the platform reference table.
type PlatformRepository struct {
	db *sqlx.DB
}

// NewPlatformRepository creates a new platform repository.
func NewPlatformRepository(db *sqlx.DB) *PlatformRepository {
	return &PlatformRepository{db: db}
}

// List returns every platform, ordered by name.
func (r *PlatformRepository) List(ctx context.Context) ([]*models.Platform, error) {
	platforms := make([]*models.Platform, 0)
	err := r.db.SelectContext(ctx, &platforms,
		`SELECT id, name, display_name FROM platforms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	return platforms, nil
}

// GetByName retrieves a platform by its canonical name. Returns (nil, nil)
// when no such platform exists.
func (r *PlatformRepository) GetByName(ctx context.Context, name string) (*models.Platform, error) {
	platform := &models.Platform{}
	err := r.db.GetContext(ctx, platform,
		`SELECT id, name, display_name FROM platforms WHERE name = $1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get platform: %w", err)
	}
	return platform, nil
}
