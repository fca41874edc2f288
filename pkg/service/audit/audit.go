// Package audit records an append-only version history for sales and serves
// it back for dispute investigation.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/repository"
	"github.com/google/uuid"
)

// Service writes and reads the version ledger. Writing is best-effort: a
// failed Record never fails the mutation it follows, it is logged and
// dropped.
type Service struct {
	versions repository.VersionRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new audit service. versions is the read-path
// repository; Record uses the repository bound to the caller's unit of work
// so a successful version write commits with the mutation it describes.
func NewService(versions repository.VersionRepository, logger *slog.Logger) *Service {
	return &Service{
		versions: versions,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service's clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record appends a full snapshot of the sale to its ledger. Errors are
// swallowed after logging so the primary mutation is never rolled back by
// an audit failure.
func (s *Service) Record(ctx context.Context, uow repository.UnitOfWork, target *sale.Sale, actorID uuid.UUID) {
	versions, err := uow.Versions()
	if err != nil {
		s.logger.Error("version record skipped", "sale_id", target.ID, "error", err)
		return
	}
	number, err := versions.NextNumber(ctx, target.ID)
	if err != nil {
		s.logger.Error("version record skipped", "sale_id", target.ID, "error", err)
		return
	}
	v := &sale.Version{
		ID:        uuid.New(),
		SaleID:    target.ID,
		Number:    number,
		ActorID:   actorID,
		Snapshot:  sale.TakeSnapshot(target),
		CreatedAt: s.now(),
	}
	if err := versions.Create(ctx, v); err != nil {
		s.logger.Error(
			"version record failed",
			"sale_id", target.ID,
			"number", number,
			"error", err,
		)
		return
	}
	s.logger.Debug("version recorded", "sale_id", target.ID, "number", number)
}

// ListVersions returns the sale's versions, newest first.
func (s *Service) ListVersions(ctx context.Context, saleID uuid.UUID) ([]*sale.Version, error) {
	return s.versions.ListBySale(ctx, saleID)
}

// Diff returns the field-level changes between two recorded versions.
func (s *Service) Diff(ctx context.Context, saleID uuid.UUID, from, to int) ([]sale.Change, error) {
	a, err := s.versions.GetByNumber(ctx, saleID, from)
	if err != nil {
		return nil, fmt.Errorf("diff version %d: %w", from, err)
	}
	b, err := s.versions.GetByNumber(ctx, saleID, to)
	if err != nil {
		return nil, fmt.Errorf("diff version %d: %w", to, err)
	}
	return sale.Diff(a.Snapshot, b.Snapshot), nil
}
