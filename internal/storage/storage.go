package storage

import (
	"context"
	"time"

	"pulsefit/coach-app/internal/domain"
)

// DefaultPresignedURLExpiry is used when no expiry is given for download URLs.
const DefaultPresignedURLExpiry = 15 * time.Minute

// PlanArchive snapshots training plans to durable object storage. The weekly
// modification path deletes the retired plan row, so the archive is the only
// place its content survives.
type PlanArchive interface {
	// ArchivePlan stores a JSON snapshot of the plan and returns the object
	// key it was written under.
	ArchivePlan(ctx context.Context, plan *domain.TrainingPlan) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL for retrieving an
	// archived snapshot.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
