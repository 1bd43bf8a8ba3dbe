package seeder

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"swipehire/internal/database"

	"github.com/rs/zerolog"
)

type fakeRows struct {
	vals []string
	i    int
}

func (r *fakeRows) Close() {}
func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.vals)
}
func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.vals[r.i-1]
	return nil
}
func (r *fakeRows) Err() error { return nil }

type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) Exec(_ context.Context, _ string, args ...any) (int64, error) {
	id := args[0].(string)
	t.db.inserted = append(t.db.inserted, id)
	if t.db.existing[id] {
		return 0, nil
	}
	return 1, nil
}
func (t *fakeTx) Query(context.Context, string, ...any) (database.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(context.Context, string, ...any) database.Row        { return nil }
func (t *fakeTx) Commit(context.Context) error {
	t.db.committed = true
	return nil
}
func (t *fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct {
	columns   []string
	existing  map[string]bool
	inserted  []string
	committed bool
}

func (d *fakeDB) Ping(context.Context) error { return nil }
func (d *fakeDB) Close() error               { return nil }
func (d *fakeDB) Exec(context.Context, string, ...any) (int64, error) {
	return 0, errors.New("unexpected exec outside tx")
}
func (d *fakeDB) Query(context.Context, string, ...any) (database.Rows, error) {
	return &fakeRows{vals: d.columns}, nil
}
func (d *fakeDB) QueryRow(context.Context, string, ...any) database.Row { return nil }
func (d *fakeDB) Begin(context.Context) (database.Tx, error)            { return &fakeTx{db: d}, nil }
func (d *fakeDB) SQLDB() *sql.DB                                        { return nil }

func jobColumns() []string {
	return []string{"id", "title", "company", "location", "tags", "date_posted", "apply_link", "description", "source", "created_at"}
}

func TestSampleCatalogSeeder_InsertsEveryJob(t *testing.T) {
	db := &fakeDB{columns: jobColumns()}
	r := Runner{Seeders: Defaults(), Logger: zerolog.Nop()}
	if err := r.Run(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(db.inserted) != len(SampleJobs()) || !db.committed {
		t.Fatalf("expected %d inserts committed, got %d (committed=%v)", len(SampleJobs()), len(db.inserted), db.committed)
	}

	seen := map[string]bool{}
	for _, id := range db.inserted {
		if seen[id] {
			t.Fatalf("duplicate sample id %s", id)
		}
		seen[id] = true
	}
}

func TestSampleCatalogSeeder_SchemaMismatch(t *testing.T) {
	db := &fakeDB{columns: []string{"id", "title"}}
	n, err := SampleCatalogSeeder{}.Run(context.Background(), db)
	if n != 0 || !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "apply_link") {
		t.Fatalf("expected missing columns listed, got %v", err)
	}
	if len(db.inserted) != 0 {
		t.Fatalf("nothing may be inserted on mismatch")
	}
}

func TestSampleCatalogSeeder_CountsOnlyNewRows(t *testing.T) {
	db := &fakeDB{columns: jobColumns(), existing: map[string]bool{SampleJobs()[0].ID: true}}
	n, err := SampleCatalogSeeder{}.Run(context.Background(), db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if want := int64(len(SampleJobs()) - 1); n != want {
		t.Fatalf("expected %d new rows, got %d", want, n)
	}
}

func TestRunner_NilDB(t *testing.T) {
	if err := (Runner{Seeders: Defaults()}).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
