package models

import "time"

// AppVersion is one released version of an app. The (AppID, Version) pair is
// unique; versions carry their own approval status independent of the app's.
type AppVersion struct {
	ID             int64     `db:"id" json:"id"`
	AppID          string    `db:"app_id" json:"appId"`
	Version        string    `db:"version" json:"version"`
	ReleaseNotes   *string   `db:"release_notes" json:"releaseNotes,omitempty"`
	ReleaseDate    time.Time `db:"release_date" json:"releaseDate"`
	MinOSVersion   *string   `db:"min_os_version" json:"minOsVersion,omitempty"`
	SizeBytes      *int64    `db:"size_bytes" json:"sizeBytes,omitempty"`
	ApprovalStatus string    `db:"approval_status" json:"approvalStatus"`
	SubmittedBy    *string   `db:"submitted_by" json:"submittedBy,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// PlatformSupport is one downloadable offering: a (platform, version) pair
// with its download URL and price. PlatformName and Version are join-only
// fields populated by read queries.
type PlatformSupport struct {
	ID          int64   `db:"id" json:"id"`
	AppID       string  `db:"app_id" json:"appId"`
	PlatformID  int64   `db:"platform_id" json:"platformId"`
	VersionID   int64   `db:"version_id" json:"versionId"`
	DownloadURL string  `db:"download_url" json:"downloadUrl"`
	Price       float64 `db:"price" json:"price"`

	PlatformName *string `db:"platform_name" json:"platformName,omitempty"`
	Version      *string `db:"version" json:"version,omitempty"`
}

// PendingVersion is a moderation queue row: a pending version joined with its
// app's display name.
type PendingVersion struct {
	ID          int64     `db:"id" json:"id"`
	AppID       string    `db:"app_id" json:"appId"`
	AppName     string    `db:"app_name" json:"appName"`
	Version     string    `db:"version" json:"version"`
	ReleaseDate time.Time `db:"release_date" json:"releaseDate"`
	SubmittedBy *string   `db:"submitted_by" json:"submittedBy,omitempty"`
}
