// Package services implements the business logic that coordinates across
// repositories and external systems: validating and persisting submissions,
// recording approval decisions, and importing GitHub releases into the
// catalog.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/app-catalog/app-catalog/internal/catalog"
	"github.com/app-catalog/app-catalog/internal/db/models"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
	"github.com/app-catalog/app-catalog/internal/telemetry"
	"github.com/app-catalog/app-catalog/internal/validation"
)

// PlatformEntry is one platform offering within a submission.
type PlatformEntry struct {
	Platform    string  `json:"platform" binding:"required"`
	DownloadURL string  `json:"downloadUrl" binding:"required"`
	Price       float64 `json:"price"`
}

// Submission is a complete, validated request to add a version of an app to
// the catalog, creating the app itself if its identifier is new.
type Submission struct {
	AppID        string          `json:"appId" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Developer    string          `json:"developer" binding:"required"`
	Description  string          `json:"description"`
	Category     string          `json:"category" binding:"required"`
	ReleaseDate  string          `json:"releaseDate"`
	GithubRepo   *string         `json:"githubRepo"`
	Version      string          `json:"version" binding:"required"`
	ReleaseNotes *string         `json:"releaseNotes"`
	MinOSVersion *string         `json:"minOsVersion"`
	SizeBytes    *int64          `json:"sizeBytes"`
	Platforms    []PlatformEntry `json:"platforms" binding:"required"`
	SubmittedBy  *string         `json:"-"`
}

// SubmissionResult reports what the submission created.
type SubmissionResult struct {
	App     *models.App        `json:"app"`
	Version *models.AppVersion `json:"version"`
	Created bool               `json:"appCreated"`
}

// SubmissionService validates submissions and persists them atomically.
type SubmissionService struct {
	appRepo      *repositories.AppRepository
	platformRepo *repositories.PlatformRepository
}

// NewSubmissionService creates a submission service.
func NewSubmissionService(appRepo *repositories.AppRepository, platformRepo *repositories.PlatformRepository) *SubmissionService {
	return &SubmissionService{appRepo: appRepo, platformRepo: platformRepo}
}

// Submit validates the submission, resolves its platform names against the
// seeded platform table, and persists app, version, and platform offerings as
// one transaction. Validation failures surface as catalog.ValidationError,
// duplicate versions as catalog.ErrConflict.
func (s *SubmissionService) Submit(ctx context.Context, sub *Submission) (*SubmissionResult, error) {
	releaseDate, supports, err := s.validate(ctx, sub)
	if err != nil {
		telemetry.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	existing, err := s.appRepo.GetApp(ctx, sub.AppID)
	if err != nil {
		telemetry.SubmissionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	app := &models.App{
		AppID:       sub.AppID,
		Name:        strings.TrimSpace(sub.Name),
		Developer:   strings.TrimSpace(sub.Developer),
		Description: sub.Description,
		Category:    strings.TrimSpace(sub.Category),
		ReleaseDate: releaseDate,
		SubmittedBy: sub.SubmittedBy,
		GithubRepo:  sub.GithubRepo,
	}
	version := &models.AppVersion{
		AppID:        sub.AppID,
		Version:      sub.Version,
		ReleaseNotes: sub.ReleaseNotes,
		ReleaseDate:  releaseDate,
		MinOSVersion: sub.MinOSVersion,
		SizeBytes:    sub.SizeBytes,
		SubmittedBy:  sub.SubmittedBy,
	}

	if err := s.appRepo.Submit(ctx, app, version, supports); err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			telemetry.SubmissionsTotal.WithLabelValues("conflict").Inc()
		} else {
			telemetry.SubmissionsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	telemetry.SubmissionsTotal.WithLabelValues("created").Inc()
	slog.Info("submission accepted",
		"app_id", app.AppID,
		"version", version.Version,
		"platforms", len(supports),
		"app_created", existing == nil)

	return &SubmissionResult{App: app, Version: version, Created: existing == nil}, nil
}

func (s *SubmissionService) validate(ctx context.Context, sub *Submission) (time.Time, []*models.PlatformSupport, error) {
	if err := validation.ValidateAppID(sub.AppID); err != nil {
		return time.Time{}, nil, err
	}
	if strings.TrimSpace(sub.Name) == "" {
		return time.Time{}, nil, catalog.NewValidationError("name", "must not be blank")
	}
	if strings.TrimSpace(sub.Developer) == "" {
		return time.Time{}, nil, catalog.NewValidationError("developer", "must not be blank")
	}
	if strings.TrimSpace(sub.Category) == "" {
		return time.Time{}, nil, catalog.NewValidationError("category", "must not be blank")
	}
	if _, err := validation.ParseVersion(sub.Version); err != nil {
		return time.Time{}, nil, err
	}
	if len(sub.Platforms) == 0 {
		return time.Time{}, nil, catalog.NewValidationError("platforms", "at least one platform is required")
	}

	releaseDate, err := validation.ParseReleaseDate(sub.ReleaseDate)
	if err != nil {
		return time.Time{}, nil, err
	}

	supports := make([]*models.PlatformSupport, 0, len(sub.Platforms))
	seen := make(map[string]bool)
	for _, entry := range sub.Platforms {
		name := strings.ToLower(strings.TrimSpace(entry.Platform))
		if seen[name] {
			return time.Time{}, nil, catalog.NewValidationError("platforms", fmt.Sprintf("platform %q listed twice", name))
		}
		seen[name] = true

		if entry.DownloadURL == "" {
			return time.Time{}, nil, catalog.NewValidationError("platforms", fmt.Sprintf("platform %q is missing a download URL", name))
		}
		if entry.Price < 0 {
			return time.Time{}, nil, catalog.NewValidationError("platforms", fmt.Sprintf("platform %q has a negative price", name))
		}

		platform, err := s.platformRepo.GetByName(ctx, name)
		if err != nil {
			return time.Time{}, nil, err
		}
		if platform == nil {
			return time.Time{}, nil, catalog.NewValidationError("platforms", fmt.Sprintf("unknown platform %q", name))
		}

		supports = append(supports, &models.PlatformSupport{
			PlatformID:  platform.ID,
			DownloadURL: entry.DownloadURL,
			Price:       entry.Price,
		})
	}

	return releaseDate, supports, nil
}
