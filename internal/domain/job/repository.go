package job

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (CatalogJob, error)
	// GetByIDs returns the jobs that exist, keyed by id.
	GetByIDs(ctx context.Context, ids []string) (map[string]CatalogJob, error)
	ListAll(ctx context.Context) ([]CatalogJob, error)
	Upsert(ctx context.Context, jobs []CatalogJob) (int, error)
}
