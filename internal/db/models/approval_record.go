package models

import "time"

// ApprovalRecord is one row of the append-only approval ledger. VersionID is
// nil for decisions that target the app itself. ReviewerName is a join-only
// field populated by history reads.
type ApprovalRecord struct {
	ID          int64     `db:"id" json:"id"`
	AppID       string    `db:"app_id" json:"appId"`
	VersionID   *int64    `db:"version_id" json:"versionId,omitempty"`
	Status      string    `db:"status" json:"status"`
	ReviewedBy  *string   `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewNotes *string   `db:"review_notes" json:"reviewNotes,omitempty"`
	DecidedAt   time.Time `db:"decided_at" json:"decidedAt"`

	ReviewerName *string `db:"reviewer_name" json:"reviewerName,omitempty"`
}
