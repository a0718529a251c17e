package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/app-catalog/app-catalog/internal/catalog"
	"github.com/app-catalog/app-catalog/internal/db/models"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
	"github.com/app-catalog/app-catalog/internal/telemetry"
)

// Decision is a reviewer's verdict on an app or on one of its versions.
// VersionID nil targets the app itself.
type Decision struct {
	AppID       string
	VersionID   *int64
	Status      string
	ReviewedBy  *string
	ReviewNotes *string
}

// ApprovalService records review decisions and serves their history.
type ApprovalService struct {
	approvalRepo *repositories.ApprovalRepository
}

// NewApprovalService creates an approval service.
func NewApprovalService(approvalRepo *repositories.ApprovalRepository) *ApprovalService {
	return &ApprovalService{approvalRepo: approvalRepo}
}

// Decide validates and records one decision. The status transition and the
// ledger append happen in a single transaction; a missing target yields
// catalog.ErrNotFound with nothing written. Re-submitting the same status is
// allowed and still appends a ledger row, so the history reflects every
// decision actually made, including reversals and confirmations.
func (s *ApprovalService) Decide(ctx context.Context, d *Decision) (*models.ApprovalRecord, error) {
	status := strings.ToUpper(strings.TrimSpace(d.Status))
	if !models.ValidStatus(status) {
		return nil, catalog.NewValidationError("status", "must be PENDING, APPROVED, or REJECTED")
	}

	record := &models.ApprovalRecord{
		AppID:       d.AppID,
		VersionID:   d.VersionID,
		Status:      status,
		ReviewedBy:  d.ReviewedBy,
		ReviewNotes: d.ReviewNotes,
	}

	updated, err := s.approvalRepo.RecordDecision(ctx, record)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, catalog.ErrNotFound
	}

	scope := "app"
	if d.VersionID != nil {
		scope = "version"
	}
	telemetry.ApprovalDecisionsTotal.WithLabelValues(status, scope).Inc()
	slog.Info("approval decision recorded",
		"app_id", d.AppID,
		"scope", scope,
		"status", status)

	return record, nil
}

// History returns every decision recorded for an app, newest first.
func (s *ApprovalService) History(ctx context.Context, appID string) ([]*models.ApprovalRecord, error) {
	return s.approvalRepo.History(ctx, appID)
}

// VersionHistory returns the decisions recorded for one version, newest
// first.
func (s *ApprovalService) VersionHistory(ctx context.Context, appID string, versionID int64) ([]*models.ApprovalRecord, error) {
	return s.approvalRepo.VersionHistory(ctx, appID, versionID)
}
