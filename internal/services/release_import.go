package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/app-catalog/app-catalog/internal/catalog"
	"github.com/app-catalog/app-catalog/internal/crypto"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
	"github.com/app-catalog/app-catalog/internal/scm"
	"github.com/app-catalog/app-catalog/internal/telemetry"
	"github.com/app-catalog/app-catalog/internal/validation"
)

// ErrNoGithubToken is returned when the importing user has never linked a
// GitHub account.
var ErrNoGithubToken = errors.New("services: no stored github token for user")

// ErrNoMappableAssets is returned when a release has assets but none of them
// can be attributed to a catalog platform.
var ErrNoMappableAssets = errors.New("services: release has no assets mappable to a platform")

// clientFactory builds a GitHub client for a decrypted token. Swapped out in
// tests to point at a stub server.
type clientFactory func(token string) *scm.Client

// ImportRequest describes a GitHub release to pull into the catalog.
type ImportRequest struct {
	Owner string `json:"owner" binding:"required"`
	Repo  string `json:"repo" binding:"required"`
	// Tag selects a specific release; empty means the latest release.
	Tag string `json:"tag"`
	// AppID overrides the generated identifier (owner-repo slug) when the
	// repository is already listed under a different app.
	AppID string `json:"appId"`
	// Category is required the first time a repository is imported; later
	// imports reuse the app's existing category.
	Category string `json:"category"`
	UserID   string `json:"-"`
}

// ReleaseImportService turns GitHub releases into catalog submissions. The
// importing user's stored OAuth token is decrypted per request and never held
// in memory longer than the import.
type ReleaseImportService struct {
	userRepo   *repositories.UserRepository
	appRepo    *repositories.AppRepository
	submission *SubmissionService
	cipher     *crypto.TokenCipher
	newClient  clientFactory
}

// NewReleaseImportService creates a release import service. apiURL may be
// empty to use the public GitHub API.
func NewReleaseImportService(
	userRepo *repositories.UserRepository,
	appRepo *repositories.AppRepository,
	submission *SubmissionService,
	cipher *crypto.TokenCipher,
	apiURL string,
) *ReleaseImportService {
	return &ReleaseImportService{
		userRepo:   userRepo,
		appRepo:    appRepo,
		submission: submission,
		cipher:     cipher,
		newClient: func(token string) *scm.Client {
			return scm.NewClient(apiURL, token)
		},
	}
}

// assetPlatformRules maps release asset names to catalog platforms. The
// asset's label is checked before its filename; the first matching rule wins
// and an asset matching nothing is skipped.
var assetPlatformRules = []struct {
	platform string
	markers  []string
}{
	{"windows", []string{"windows", "win64", "win32", ".exe", ".msi"}},
	{"macos", []string{"macos", "darwin", "osx", ".dmg", ".pkg"}},
	{"linux", []string{"linux", ".appimage", ".deb", ".rpm"}},
	{"android", []string{"android", ".apk", ".aab"}},
	{"ios", []string{"ios", ".ipa"}},
	{"web", []string{"web"}},
}

// platformForAsset attributes one release asset to a platform, or "" when no
// rule matches.
func platformForAsset(asset *scm.Asset) string {
	for _, candidate := range []string{asset.Label, asset.Name} {
		c := strings.ToLower(candidate)
		if c == "" {
			continue
		}
		for _, rule := range assetPlatformRules {
			for _, marker := range rule.markers {
				if strings.Contains(c, marker) {
					return rule.platform
				}
			}
		}
	}
	return ""
}

// mapAssets attributes release assets to platforms. When several assets map
// to the same platform the first one (GitHub's upload order) wins. The total
// size across mapped assets is reported for the version record.
func mapAssets(assets []scm.Asset) ([]PlatformEntry, int64) {
	entries := make([]PlatformEntry, 0, len(assets))
	seen := make(map[string]bool)
	var totalSize int64

	for i := range assets {
		platform := platformForAsset(&assets[i])
		if platform == "" || seen[platform] {
			continue
		}
		seen[platform] = true
		totalSize += assets[i].Size
		entries = append(entries, PlatformEntry{
			Platform:    platform,
			DownloadURL: assets[i].DownloadURL,
		})
	}

	return entries, totalSize
}

// ImportRelease fetches the requested release and submits it as a new catalog
// version, creating the app on first import. Drafts are rejected; a release
// whose assets map to no platform yields ErrNoMappableAssets.
func (s *ReleaseImportService) ImportRelease(ctx context.Context, req *ImportRequest) (*SubmissionResult, error) {
	result, err := s.importRelease(ctx, req)
	if err != nil {
		telemetry.ReleaseImportsTotal.WithLabelValues(importOutcome(err)).Inc()
		return nil, err
	}
	telemetry.ReleaseImportsTotal.WithLabelValues("created").Inc()
	return result, nil
}

func importOutcome(err error) string {
	switch {
	case errors.Is(err, scm.ErrRepositoryNotFound), errors.Is(err, scm.ErrReleaseNotFound):
		return "not_found"
	case errors.Is(err, ErrNoMappableAssets):
		return "no_assets"
	default:
		return "error"
	}
}

func (s *ReleaseImportService) importRelease(ctx context.Context, req *ImportRequest) (*SubmissionResult, error) {
	client, err := s.clientFor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	repo, err := client.FetchRepository(ctx, req.Owner, req.Repo)
	if err != nil {
		return nil, err
	}
	release, err := client.FetchRelease(ctx, req.Owner, req.Repo, req.Tag)
	if err != nil {
		return nil, err
	}
	if release.Draft {
		return nil, catalog.NewValidationError("tag", "draft releases cannot be imported")
	}

	platforms, totalSize := mapAssets(release.Assets)
	if len(platforms) == 0 {
		return nil, ErrNoMappableAssets
	}

	appID := req.AppID
	if appID == "" {
		appID = githubAppID(req.Owner, req.Repo)
	}

	sub := &Submission{
		AppID:     appID,
		Name:      repo.Name,
		Developer: repo.Owner.Login,
		Category:  req.Category,
		Version:   validation.NormalizeTag(release.TagName),
		Platforms: platforms,
	}
	if repo.Description != "" {
		sub.Description = repo.Description
	}
	if release.Body != "" {
		sub.ReleaseNotes = &release.Body
	}
	if release.PublishedAt != nil {
		sub.ReleaseDate = validation.FormatReleaseDate(*release.PublishedAt)
	}
	if totalSize > 0 {
		sub.SizeBytes = &totalSize
	}
	fullName := repo.FullName
	sub.GithubRepo = &fullName
	sub.SubmittedBy = &req.UserID

	// Re-imports of an already-listed repository keep the app's existing
	// category and metadata; only the version rows are new.
	existing, err := s.appRepo.GetApp(ctx, appID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		sub.Name = existing.Name
		sub.Developer = existing.Developer
		sub.Description = existing.Description
		sub.Category = existing.Category
	} else if strings.TrimSpace(sub.Category) == "" {
		return nil, catalog.NewValidationError("category", "is required when importing a repository for the first time")
	}

	result, err := s.submission.Submit(ctx, sub)
	if err != nil {
		return nil, err
	}

	slog.Info("release imported",
		"repo", repo.FullName,
		"tag", release.TagName,
		"app_id", appID,
		"platforms", len(platforms))

	return result, nil
}

// UpdateFromRelease pulls a newer release of an already-listed app. Unlike
// ImportRelease it refuses to create the app: an unknown appID is
// catalog.ErrNotFound. On success the app keeps its metadata and gains a new
// PENDING version.
func (s *ReleaseImportService) UpdateFromRelease(ctx context.Context, userID, appID, owner, repo, tag string) (*SubmissionResult, error) {
	app, err := s.appRepo.GetApp(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("app %q: %w", appID, catalog.ErrNotFound)
	}
	return s.ImportRelease(ctx, &ImportRequest{
		Owner:  owner,
		Repo:   repo,
		Tag:    tag,
		AppID:  appID,
		UserID: userID,
	})
}

// ListReleases lists importable releases of a repository on behalf of the
// user, newest first. Drafts are filtered out.
func (s *ReleaseImportService) ListReleases(ctx context.Context, userID, owner, repo string, page, perPage int) ([]scm.Release, error) {
	client, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	releases, err := client.ListReleases(ctx, owner, repo, page, perPage)
	if err != nil {
		return nil, err
	}
	published := releases[:0]
	for _, rel := range releases {
		if !rel.Draft {
			published = append(published, rel)
		}
	}
	return published, nil
}

// ListRepositories lists the user's GitHub repositories for the import
// picker.
func (s *ReleaseImportService) ListRepositories(ctx context.Context, userID string, page, perPage int) ([]scm.Repository, error) {
	client, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.ListUserRepositories(ctx, page, perPage)
}

func (s *ReleaseImportService) clientFor(ctx context.Context, userID string) (*scm.Client, error) {
	stored, err := s.userRepo.GetGithubToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNoGithubToken
	}
	token, err := s.cipher.Open(stored.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt github token: %w", err)
	}
	return s.newClient(token), nil
}

// githubAppID derives a catalog identifier from a repository path, e.g.
// "Some-Org/My.App" becomes "some-org-my.app".
func githubAppID(owner, repo string) string {
	slug := strings.ToLower(owner + "-" + repo)
	slug = strings.ReplaceAll(slug, "_", "-")
	return slug
}
