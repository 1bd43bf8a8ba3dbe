package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"swipehire/internal/database"
	"swipehire/internal/domain/user"

	"github.com/google/uuid"
)

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Get(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT user_id, info_dict, job_dict, dynamic_keys, feed_cursor, ranked_job_ids, ranked_scores,
		        ranking_updated_at, created_at, updated_at
		 FROM profiles WHERE user_id = $1`, userID)

	var (
		p                     user.Profile
		infoRaw, jobRaw, keys []byte
	)
	err := row.Scan(&p.UserID, &infoRaw, &jobRaw, &keys, &p.FeedCursor, &p.RankedJobIDs, &p.RankedScores,
		&p.RankingUpdatedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return user.Profile{}, user.ErrProfileNotFound
		}
		return user.Profile{}, err
	}

	if err := decodeObject(infoRaw, &p.InfoDict); err != nil {
		return user.Profile{}, fmt.Errorf("decode info_dict: %w", err)
	}
	if err := decodeObject(jobRaw, &p.JobDict); err != nil {
		return user.Profile{}, fmt.Errorf("decode job_dict: %w", err)
	}
	if len(keys) > 0 {
		if err := json.Unmarshal(keys, &p.DynamicKeys); err != nil {
			return user.Profile{}, fmt.Errorf("decode dynamic_keys: %w", err)
		}
	}
	if p.RankedJobIDs == nil {
		p.RankedJobIDs = []string{}
	}
	return p, nil
}

func (r *PostgresProfileRepository) SaveParsed(ctx context.Context, userID uuid.UUID, info, jobDict map[string]any, keys user.DynamicKeys) error {
	infoRaw, err := encodeObject(info)
	if err != nil {
		return err
	}
	jobRaw, err := encodeObject(jobDict)
	if err != nil {
		return err
	}
	keysRaw, err := json.Marshal(normalizeKeys(keys))
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO profiles (user_id, info_dict, job_dict, dynamic_keys, feed_cursor)
		 VALUES ($1, $2, $3, $4, 0)
		 ON CONFLICT (user_id) DO UPDATE SET
			info_dict = EXCLUDED.info_dict,
			job_dict = EXCLUDED.job_dict,
			dynamic_keys = EXCLUDED.dynamic_keys,
			feed_cursor = 0,
			updated_at = now()`,
		userID, infoRaw, jobRaw, keysRaw,
	)
	return err
}

func (r *PostgresProfileRepository) SaveJobDict(ctx context.Context, userID uuid.UUID, jobDict map[string]any) error {
	jobRaw, err := encodeObject(jobDict)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO profiles (user_id, job_dict, feed_cursor)
		 VALUES ($1, $2, 0)
		 ON CONFLICT (user_id) DO UPDATE SET
			job_dict = EXCLUDED.job_dict,
			feed_cursor = 0,
			updated_at = now()`,
		userID, jobRaw,
	)
	return err
}

func (r *PostgresProfileRepository) SaveRanking(ctx context.Context, userID uuid.UUID, ids []string, scores []float64) error {
	if len(ids) != len(scores) {
		return fmt.Errorf("ranking length mismatch: ids=%d scores=%d", len(ids), len(scores))
	}
	if ids == nil {
		ids = []string{}
		scores = []float64{}
	}
	n, err := r.db.Exec(ctx,
		`UPDATE profiles SET ranked_job_ids = $2, ranked_scores = $3, ranking_updated_at = now(), updated_at = now()
		 WHERE user_id = $1`,
		userID, ids, scores,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrProfileNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) SetCursor(ctx context.Context, userID uuid.UUID, cursor int) error {
	n, err := r.db.Exec(ctx,
		`UPDATE profiles SET feed_cursor = $2, updated_at = now() WHERE user_id = $1`, userID, cursor)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrProfileNotFound
	}
	return nil
}

func encodeObject(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

func decodeObject(raw []byte, out *map[string]any) error {
	if len(raw) == 0 {
		*out = map[string]any{}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	if *out == nil {
		*out = map[string]any{}
	}
	return nil
}

func normalizeKeys(k user.DynamicKeys) user.DynamicKeys {
	if k.InfoDict == nil {
		k.InfoDict = []string{}
	}
	if k.JobDict == nil {
		k.JobDict = []string{}
	}
	return k
}
