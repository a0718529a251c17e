// Package models defines the database row types shared by the repositories
// and the API layer. Struct tags carry both the sqlx column mapping and the
// JSON wire names.
package models

import "time"

// Approval statuses shared by apps, versions, and history records.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// ValidStatus reports whether s is a recognized approval status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// App is a catalog entry. AppID is the public slug key (e.g.
// "com.example.myapp"); ID is the internal row ID and never leaves the API.
type App struct {
	ID             int64     `db:"id" json:"-"`
	AppID          string    `db:"app_id" json:"appId"`
	Name           string    `db:"name" json:"name"`
	Developer      string    `db:"developer" json:"developer"`
	Description    string    `db:"description" json:"description"`
	Category       string    `db:"category" json:"category"`
	ReleaseDate    time.Time `db:"release_date" json:"releaseDate"`
	IsFeatured     bool      `db:"is_featured" json:"isFeatured"`
	ApprovalStatus string    `db:"approval_status" json:"approvalStatus"`
	SubmittedBy    *string   `db:"submitted_by" json:"submittedBy,omitempty"`
	GithubRepo     *string   `db:"github_repo" json:"githubRepo,omitempty"`
	DateAdded      time.Time `db:"date_added" json:"dateAdded"`
	LastUpdated    time.Time `db:"last_updated" json:"lastUpdated"`
}

// AppPatch is a partial update; nil fields are left untouched.
type AppPatch struct {
	Name        *string    `json:"name"`
	Developer   *string    `json:"developer"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	ReleaseDate *time.Time `json:"-"`
	IsFeatured  *bool      `json:"isFeatured"`
}

// IsZero reports whether the patch carries no changes at all.
func (p *AppPatch) IsZero() bool {
	return p.Name == nil && p.Developer == nil && p.Description == nil &&
		p.Category == nil && p.ReleaseDate == nil && p.IsFeatured == nil
}

// AppDetail is an app together with its approved versions and platform
// offerings, as served by the detail endpoint.
type AppDetail struct {
	App
	Versions        []*AppVersion      `json:"versions"`
	PlatformSupport []*PlatformSupport `json:"platformSupport"`
	Platforms       []string           `json:"platforms"`
}
