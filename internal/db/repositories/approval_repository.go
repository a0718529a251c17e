// approval_repository.go implements ApprovalRepository, the append-only
// approval ledger and the atomic status transition that feeds it. History rows
// are never updated or deleted through this repository; the authoritative
// current status lives on the app/version row, the ledger is the derived,
// ordered record behind it.
package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/app-catalog/app-catalog/internal/db/models"
)

// ApprovalRepository handles approval decisions and their history.
type ApprovalRepository struct {
	db *sqlx.DB
}

// NewApprovalRepository creates a new approval repository.
func NewApprovalRepository(db *sqlx.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// RecordDecision applies one approval decision atomically: the target row's
// approval_status is updated and exactly one history row is appended, in the
// same repeatable-read transaction. When versionID is nil the decision
// targets the app itself. Returns false — and writes nothing, ledger included
// — when the target app or version does not exist.
func (r *ApprovalRepository) RecordDecision(ctx context.Context, record *models.ApprovalRecord) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, txRepeatableRead)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var res interface {
		RowsAffected() (int64, error)
	}
	if record.VersionID == nil {
		res, err = tx.ExecContext(ctx,
			`UPDATE apps SET approval_status = $1, last_updated = NOW() WHERE app_id = $2`,
			record.Status, record.AppID)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE app_versions SET approval_status = $1 WHERE app_id = $2 AND id = $3`,
			record.Status, record.AppID, *record.VersionID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to update approval status: %w", err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	if updated == 0 {
		// Target missing: roll back so no ledger entry is written.
		return false, nil
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO app_approval_history (app_id, version_id, status, reviewed_by, review_notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, decided_at`,
		record.AppID, record.VersionID, record.Status, record.ReviewedBy, record.ReviewNotes,
	).Scan(&record.ID, &record.DecidedAt)
	if err != nil {
		return false, fmt.Errorf("failed to append approval record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit approval decision: %w", err)
	}

	return true, nil
}

const historyColumns = `h.id, h.app_id, h.version_id, h.status, h.reviewed_by,
	h.review_notes, h.decided_at, u.username AS reviewer_name`

// History returns every decision recorded for an app, newest first, joined
// with the reviewer's username.
func (r *ApprovalRepository) History(ctx context.Context, appID string) ([]*models.ApprovalRecord, error) {
	records := make([]*models.ApprovalRecord, 0)
	err := r.db.SelectContext(ctx, &records, `
		SELECT `+historyColumns+`
		FROM app_approval_history h
		LEFT JOIN users u ON h.reviewed_by = u.user_id
		WHERE h.app_id = $1
		ORDER BY h.decided_at DESC`,
		appID)
	if err != nil {
		return nil, fmt.Errorf("failed to read approval history: %w", err)
	}
	return records, nil
}

// VersionHistory returns the decisions recorded for one version of an app,
// newest first.
func (r *ApprovalRepository) VersionHistory(ctx context.Context, appID string, versionID int64) ([]*models.ApprovalRecord, error) {
	records := make([]*models.ApprovalRecord, 0)
	err := r.db.SelectContext(ctx, &records, `
		SELECT `+historyColumns+`
		FROM app_approval_history h
		LEFT JOIN users u ON h.reviewed_by = u.user_id
		WHERE h.app_id = $1 AND h.version_id = $2
		ORDER BY h.decided_at DESC`,
		appID, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read version approval history: %w", err)
	}
	return records, nil
}
