package patientimport

import (
	"context"

	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, job *ImportJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*ImportJob, error)
	List(ctx context.Context, limit, offset int) ([]*ImportJob, int, error)
}
