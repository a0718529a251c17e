package scm

import "time"

// Repository is the subset of GitHub repository metadata the catalog uses.
type Repository struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	FullName       string `json:"full_name"`
	Description    string `json:"description"`
	Private        bool   `json:"private"`
	HTMLURL        string `json:"html_url"`
	DefaultBranch  string `json:"default_branch"`
	Language       string `json:"language"`
	StargazerCount int    `json:"stargazers_count"`
	Owner          struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// Asset is a downloadable artifact attached to a release. Label is the
// optional display name set when the asset was uploaded; Name is the
// filename.
type Asset struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Label         string `json:"label"`
	ContentType   string `json:"content_type"`
	Size          int64  `json:"size"`
	DownloadCount int    `json:"download_count"`
	DownloadURL   string `json:"browser_download_url"`
}

// Release is a GitHub release with its attached assets.
type Release struct {
	ID          int64      `json:"id"`
	TagName     string     `json:"tag_name"`
	Name        string     `json:"name"`
	Body        string     `json:"body"`
	Draft       bool       `json:"draft"`
	Prerelease  bool       `json:"prerelease"`
	PublishedAt *time.Time `json:"published_at"`
	HTMLURL     string     `json:"html_url"`
	Assets      []Asset    `json:"assets"`
}

// AuthenticatedUser is the profile of the token's owner.
type AuthenticatedUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}
