package models

// Platform is one of the fixed, seeded target platforms (windows, macos,
// linux, android, ios, web).
type Platform struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	DisplayName string `db:"display_name" json:"displayName"`
}
