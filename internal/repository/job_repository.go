package repository

import (
	"context"
	"fmt"
	"strings"

	"swipehire/internal/database"
	"swipehire/internal/domain/job"
)

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, title, company, location, tags, date_posted, apply_link, description, source, created_at`

func (r *PostgresJobRepository) GetByID(ctx context.Context, id string) (job.CatalogJob, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanCatalogJob(row)
	if err != nil {
		if database.IsNoRows(err) {
			return job.CatalogJob{}, job.ErrNotFound
		}
		return job.CatalogJob{}, err
	}
	return j, nil
}

func (r *PostgresJobRepository) GetByIDs(ctx context.Context, ids []string) (map[string]job.CatalogJob, error) {
	out := make(map[string]job.CatalogJob, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		j, err := scanCatalogJob(rows)
		if err != nil {
			return nil, err
		}
		out[j.ID] = j
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) ListAll(ctx context.Context) ([]job.CatalogJob, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.CatalogJob, 0)
	for rows.Next() {
		j, err := scanCatalogJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts or refreshes jobs by id inside one transaction. An empty
// DatePosted means today on insert and is left alone on update.
func (r *PostgresJobRepository) Upsert(ctx context.Context, jobs []job.CatalogJob) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	n := 0
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		for _, j := range jobs {
			if strings.TrimSpace(j.ID) == "" {
				continue
			}
			tags := j.Tags
			if tags == nil {
				tags = []string{}
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO jobs (id, title, company, location, tags, date_posted, apply_link, description, source)
				 VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, ''), to_char(now(), 'YYYY-MM-DD')), $7, $8, $9)
				 ON CONFLICT (id) DO UPDATE SET
					title = EXCLUDED.title,
					company = EXCLUDED.company,
					location = EXCLUDED.location,
					tags = EXCLUDED.tags,
					date_posted = CASE WHEN $6 = '' THEN jobs.date_posted ELSE EXCLUDED.date_posted END,
					apply_link = EXCLUDED.apply_link,
					description = EXCLUDED.description,
					source = EXCLUDED.source,
					updated_at = now()`,
				j.ID, j.Title, j.Company, j.Location, tags, j.DatePosted, j.ApplyLink, j.Description, j.Source,
			)
			if err != nil {
				return fmt.Errorf("upsert job %s: %w", j.ID, err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func scanCatalogJob(row database.Row) (job.CatalogJob, error) {
	var j job.CatalogJob
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Tags, &j.DatePosted, &j.ApplyLink, &j.Description, &j.Source, &j.CreatedAt)
	return j, err
}
