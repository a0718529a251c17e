// app_repository.go implements AppRepository, the store for apps, versions,
// and per-platform download offerings. It enforces the catalog's uniqueness
// invariants (app_id; (app_id, version); (app_id, platform_id, version_id))
// and owns the atomic submission and cascading-delete transactions.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/app-catalog/app-catalog/internal/catalog"
	"github.com/app-catalog/app-catalog/internal/db/models"
)

// AppRepository handles database operations for apps, versions, and platform
// support rows.
type AppRepository struct {
	db *sqlx.DB
}

// NewAppRepository creates a new app repository.
func NewAppRepository(db *sqlx.DB) *AppRepository {
	return &AppRepository{db: db}
}

const appColumns = `id, app_id, name, developer, description, category, release_date,
	is_featured, approval_status, submitted_by, github_repo, date_added, last_updated`

const versionColumns = `id, app_id, version, release_notes, release_date, min_os_version,
	size_bytes, approval_status, submitted_by, created_at`

// ---- Apps ------------------------------------------------------------------

// CreateApp inserts a new app with status PENDING. A duplicate app_id is
// reported as catalog.ErrConflict, never silently overwritten.
func (r *AppRepository) CreateApp(ctx context.Context, app *models.App) error {
	return createApp(ctx, r.db, app)
}

func createApp(ctx context.Context, q sqlx.ExtContext, app *models.App) error {
	query := `
		INSERT INTO apps (app_id, name, developer, description, category, release_date,
		                  is_featured, approval_status, submitted_by, github_repo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, date_added, last_updated
	`

	err := q.QueryRowxContext(ctx, query,
		app.AppID,
		app.Name,
		app.Developer,
		app.Description,
		app.Category,
		app.ReleaseDate,
		app.IsFeatured,
		models.StatusPending,
		app.SubmittedBy,
		app.GithubRepo,
	).Scan(&app.ID, &app.DateAdded, &app.LastUpdated)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("app %q: %w", app.AppID, catalog.ErrConflict)
		}
		return fmt.Errorf("failed to create app: %w", err)
	}

	app.ApprovalStatus = models.StatusPending
	return nil
}

// GetApp retrieves an app by its external key. Returns (nil, nil) when the
// app does not exist.
func (r *AppRepository) GetApp(ctx context.Context, appID string) (*models.App, error) {
	return getApp(ctx, r.db, appID)
}

func getApp(ctx context.Context, q sqlx.QueryerContext, appID string) (*models.App, error) {
	app := &models.App{}
	err := sqlx.GetContext(ctx, q, app,
		`SELECT `+appColumns+` FROM apps WHERE app_id = $1`, appID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return app, nil
}

// GetAppDetail retrieves an app together with its approved versions, their
// platform offerings, and the distinct set of platform names it supports.
// Returns (nil, nil) when the app does not exist.
func (r *AppRepository) GetAppDetail(ctx context.Context, appID string) (*models.AppDetail, error) {
	app, err := r.GetApp(ctx, appID)
	if err != nil || app == nil {
		return nil, err
	}

	detail := &models.AppDetail{App: *app}

	err = r.db.SelectContext(ctx, &detail.Versions, `
		SELECT `+versionColumns+`
		FROM app_versions
		WHERE app_id = $1 AND approval_status = $2
		ORDER BY release_date DESC`,
		appID, models.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list app versions: %w", err)
	}

	err = r.db.SelectContext(ctx, &detail.PlatformSupport, `
		SELECT s.id, s.app_id, s.platform_id, s.version_id, s.download_url, s.price,
		       p.name AS platform_name, v.version AS version
		FROM app_platform_support s
		JOIN platforms p ON s.platform_id = p.id
		JOIN app_versions v ON s.version_id = v.id
		WHERE s.app_id = $1 AND v.approval_status = $2
		ORDER BY v.release_date DESC, p.name`,
		appID, models.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list platform support: %w", err)
	}

	seen := make(map[string]bool)
	for _, ps := range detail.PlatformSupport {
		if ps.PlatformName != nil && !seen[*ps.PlatformName] {
			seen[*ps.PlatformName] = true
			detail.Platforms = append(detail.Platforms, *ps.PlatformName)
		}
	}

	return detail, nil
}

// ListApproved returns approved apps, newest first, with the total count for
// pagination.
func (r *AppRepository) ListApproved(ctx context.Context, page, pageSize int) ([]*models.App, int, error) {
	return r.listWhere(ctx, `approval_status = $1`, []interface{}{models.StatusApproved}, page, pageSize)
}

// ListByCategory returns approved apps in one category, newest first.
func (r *AppRepository) ListByCategory(ctx context.Context, category string, page, pageSize int) ([]*models.App, int, error) {
	return r.listWhere(ctx, `approval_status = $1 AND category = $2`,
		[]interface{}{models.StatusApproved, category}, page, pageSize)
}

// Search returns approved apps whose name, developer, or description matches
// the query, newest first.
func (r *AppRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*models.App, int, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return r.listWhere(ctx,
		`approval_status = $1 AND (LOWER(name) LIKE $2 OR LOWER(developer) LIKE $2 OR LOWER(description) LIKE $2)`,
		[]interface{}{models.StatusApproved, pattern}, page, pageSize)
}

// ListPending returns apps awaiting moderation, newest first.
func (r *AppRepository) ListPending(ctx context.Context, page, pageSize int) ([]*models.App, int, error) {
	return r.listWhere(ctx, `approval_status = $1`, []interface{}{models.StatusPending}, page, pageSize)
}

func (r *AppRepository) listWhere(ctx context.Context, where string, args []interface{}, page, pageSize int) ([]*models.App, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM apps WHERE `+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count apps: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM apps WHERE %s ORDER BY date_added DESC LIMIT $%d OFFSET $%d`,
		appColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	apps := make([]*models.App, 0)
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list apps: %w", err)
	}

	return apps, total, nil
}

// ListFeatured returns approved apps flagged as featured, newest first.
func (r *AppRepository) ListFeatured(ctx context.Context) ([]*models.App, error) {
	apps := make([]*models.App, 0)
	err := r.db.SelectContext(ctx, &apps, `
		SELECT `+appColumns+`
		FROM apps
		WHERE is_featured = TRUE AND approval_status = $1
		ORDER BY date_added DESC`,
		models.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured apps: %w", err)
	}
	return apps, nil
}

// ListCategories returns the distinct set of categories currently in use.
func (r *AppRepository) ListCategories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	err := r.db.SelectContext(ctx, &categories,
		`SELECT DISTINCT category FROM apps ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// UpdateApp applies a partial update. Only supplied fields are touched, and
// last_updated is refreshed on every call even when no other field changed.
// Returns catalog.ErrNotFound when the app does not exist.
func (r *AppRepository) UpdateApp(ctx context.Context, appID string, patch *models.AppPatch) (*models.App, error) {
	set := []string{"last_updated = NOW()"}
	args := []interface{}{}
	idx := 1

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Developer != nil {
		add("developer", *patch.Developer)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.ReleaseDate != nil {
		add("release_date", *patch.ReleaseDate)
	}
	if patch.IsFeatured != nil {
		add("is_featured", *patch.IsFeatured)
	}

	query := fmt.Sprintf(`UPDATE apps SET %s WHERE app_id = $%d RETURNING %s`,
		strings.Join(set, ", "), idx, appColumns)
	args = append(args, appID)

	app := &models.App{}
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(app)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("app %q: %w", appID, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update app: %w", err)
	}

	return app, nil
}

// DeleteApp removes an app and everything hanging off it in one transaction,
// in a fixed order: platform support, approval history, versions, then the
// app row itself. Deleting an app that does not exist is a no-op reporting
// false, not an error.
func (r *AppRepository) DeleteApp(ctx context.Context, appID string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, txRepeatableRead)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []string{
		`DELETE FROM app_platform_support WHERE app_id = $1`,
		`DELETE FROM app_approval_history WHERE app_id = $1`,
		`DELETE FROM app_versions WHERE app_id = $1`,
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step, appID); err != nil {
			return false, fmt.Errorf("failed to cascade app delete: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM apps WHERE app_id = $1`, appID)
	if err != nil {
		return false, fmt.Errorf("failed to delete app: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit app delete: %w", err)
	}

	return deleted > 0, nil
}

// ---- Versions --------------------------------------------------------------

// CreateVersion inserts a new version with status PENDING. A duplicate
// (app_id, version) is reported as catalog.ErrConflict; a missing app as
// catalog.ErrNotFound.
func (r *AppRepository) CreateVersion(ctx context.Context, version *models.AppVersion) error {
	return createVersion(ctx, r.db, version)
}

func createVersion(ctx context.Context, q sqlx.ExtContext, version *models.AppVersion) error {
	query := `
		INSERT INTO app_versions (app_id, version, release_notes, release_date,
		                          min_os_version, size_bytes, approval_status, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := q.QueryRowxContext(ctx, query,
		version.AppID,
		version.Version,
		version.ReleaseNotes,
		version.ReleaseDate,
		version.MinOSVersion,
		version.SizeBytes,
		models.StatusPending,
		version.SubmittedBy,
	).Scan(&version.ID, &version.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("version %s of app %q: %w", version.Version, version.AppID, catalog.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("app %q: %w", version.AppID, catalog.ErrNotFound)
		}
		return fmt.Errorf("failed to create app version: %w", err)
	}

	version.ApprovalStatus = models.StatusPending
	return nil
}

// GetVersion retrieves a version by its (app_id, version) key. Returns
// (nil, nil) when it does not exist.
func (r *AppRepository) GetVersion(ctx context.Context, appID, version string) (*models.AppVersion, error) {
	v := &models.AppVersion{}
	err := r.db.GetContext(ctx, v,
		`SELECT `+versionColumns+` FROM app_versions WHERE app_id = $1 AND version = $2`,
		appID, version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get app version: %w", err)
	}
	return v, nil
}

// GetVersionByID retrieves a version by its row ID, scoped to an app so a
// version of one app cannot be addressed through another app's URL.
func (r *AppRepository) GetVersionByID(ctx context.Context, appID string, versionID int64) (*models.AppVersion, error) {
	v := &models.AppVersion{}
	err := r.db.GetContext(ctx, v,
		`SELECT `+versionColumns+` FROM app_versions WHERE app_id = $1 AND id = $2`,
		appID, versionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get app version: %w", err)
	}
	return v, nil
}

// ListVersions returns all versions of an app, newest release first.
func (r *AppRepository) ListVersions(ctx context.Context, appID string) ([]*models.AppVersion, error) {
	versions := make([]*models.AppVersion, 0)
	err := r.db.SelectContext(ctx, &versions,
		`SELECT `+versionColumns+` FROM app_versions WHERE app_id = $1 ORDER BY release_date DESC`,
		appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list app versions: %w", err)
	}
	return versions, nil
}

// ListPendingVersions returns versions awaiting moderation joined with their
// app's name, newest release first.
func (r *AppRepository) ListPendingVersions(ctx context.Context, page, pageSize int) ([]*models.PendingVersion, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	pending := make([]*models.PendingVersion, 0)
	err := r.db.SelectContext(ctx, &pending, `
		SELECT v.id, v.app_id, a.name AS app_name, v.version, v.release_date, v.submitted_by
		FROM app_versions v
		JOIN apps a ON v.app_id = a.app_id
		WHERE v.approval_status = $1
		ORDER BY v.release_date DESC
		LIMIT $2 OFFSET $3`,
		models.StatusPending, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending versions: %w", err)
	}
	return pending, nil
}

// ---- Platform support ------------------------------------------------------

// UpsertPlatformSupport inserts a platform offering or, when the
// (app_id, platform_id, version_id) key already exists, updates its download
// URL and price in place. A missing version or platform is reported as
// catalog.ErrNotFound.
func (r *AppRepository) UpsertPlatformSupport(ctx context.Context, support *models.PlatformSupport) error {
	return upsertPlatformSupport(ctx, r.db, support)
}

func upsertPlatformSupport(ctx context.Context, q sqlx.ExtContext, support *models.PlatformSupport) error {
	query := `
		INSERT INTO app_platform_support (app_id, platform_id, version_id, download_url, price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (app_id, platform_id, version_id)
		DO UPDATE SET download_url = EXCLUDED.download_url, price = EXCLUDED.price
		RETURNING id
	`

	err := q.QueryRowxContext(ctx, query,
		support.AppID,
		support.PlatformID,
		support.VersionID,
		support.DownloadURL,
		support.Price,
	).Scan(&support.ID)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("platform support target: %w", catalog.ErrNotFound)
		}
		return fmt.Errorf("failed to upsert platform support: %w", err)
	}

	return nil
}

// ListPlatformSupport returns the platform offerings of one version.
func (r *AppRepository) ListPlatformSupport(ctx context.Context, appID string, versionID int64) ([]*models.PlatformSupport, error) {
	supports := make([]*models.PlatformSupport, 0)
	err := r.db.SelectContext(ctx, &supports, `
		SELECT s.id, s.app_id, s.platform_id, s.version_id, s.download_url, s.price,
		       p.name AS platform_name
		FROM app_platform_support s
		JOIN platforms p ON s.platform_id = p.id
		WHERE s.app_id = $1 AND s.version_id = $2
		ORDER BY p.name`,
		appID, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list platform support: %w", err)
	}
	return supports, nil
}

// ---- Submission ------------------------------------------------------------

// Submit persists a full submission as one repeatable-read transaction:
// create the app if its app_id is new (otherwise reuse the existing row and
// leave it untouched), create the version, then upsert every platform
// offering. Any failure aborts the whole unit; no partial rows become visible
// to readers. New rows start PENDING.
func (r *AppRepository) Submit(ctx context.Context, app *models.App, version *models.AppVersion, supports []*models.PlatformSupport) error {
	tx, err := r.db.BeginTxx(ctx, txRepeatableRead)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := getApp(ctx, tx, app.AppID)
	if err != nil {
		return err
	}
	if existing != nil {
		*app = *existing
	} else if err := createApp(ctx, tx, app); err != nil {
		return err
	}

	version.AppID = app.AppID
	if err := createVersion(ctx, tx, version); err != nil {
		return err
	}

	for _, support := range supports {
		support.AppID = app.AppID
		support.VersionID = version.ID
		if err := upsertPlatformSupport(ctx, tx, support); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}

	return nil
}
