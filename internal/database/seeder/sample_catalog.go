package seeder

import (
	"context"
	"fmt"

	"swipehire/internal/database"
	"swipehire/internal/domain/job"
)

const sampleSource = "sample"

// SampleCatalogSeeder inserts a small catalog so a fresh setup has something
// to rank. Existing ids are left alone, imported jobs are never overwritten.
type SampleCatalogSeeder struct{}

func (SampleCatalogSeeder) Name() string { return "sample_catalog" }

// Run reports only the rows it actually inserted.
func (SampleCatalogSeeder) Run(ctx context.Context, db database.DB) (int64, error) {
	if err := requireColumns(ctx, db, "jobs",
		"id", "title", "company", "location", "tags", "date_posted", "apply_link", "description", "source",
	); err != nil {
		return 0, err
	}

	var inserted int64
	err := database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, j := range SampleJobs() {
			n, err := tx.Exec(ctx,
				`INSERT INTO jobs (id, title, company, location, tags, date_posted, apply_link, description, source)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				 ON CONFLICT (id) DO NOTHING`,
				j.ID, j.Title, j.Company, j.Location, j.Tags, j.DatePosted, j.ApplyLink, j.Description, j.Source,
			)
			if err != nil {
				return fmt.Errorf("insert %s: %w", j.ID, err)
			}
			inserted += n
		}
		return nil
	})
	return inserted, err
}

func SampleJobs() []job.CatalogJob {
	return []job.CatalogJob{
		{
			ID:          "sample-go-backend",
			Title:       "Backend Engineer (Go)",
			Company:     "Northwind Labs",
			Location:    "Remote",
			Tags:        []string{"go", "postgresql", "redis", "grpc"},
			DatePosted:  "2026-09-28",
			ApplyLink:   "https://example.com/jobs/go-backend",
			Description: "Build and run Go services behind REST and gRPC APIs. You will own PostgreSQL schemas, Redis caching and the deploy pipeline.",
			Source:      sampleSource,
		},
		{
			ID:          "sample-fullstack",
			Title:       "Fullstack Engineer (React + Go)",
			Company:     "Northwind Labs",
			Location:    "Berlin, DE",
			Tags:        []string{"react", "typescript", "go"},
			DatePosted:  "2026-09-30",
			ApplyLink:   "https://example.com/jobs/fullstack",
			Description: "Ship product features end to end with React and TypeScript on the web and Go on the server.",
			Source:      sampleSource,
		},
		{
			ID:          "sample-frontend",
			Title:       "Frontend Developer",
			Company:     "Globex",
			Location:    "New York, NY",
			Tags:        []string{"react", "next.js", "css", "javascript"},
			DatePosted:  "2026-10-02",
			ApplyLink:   "https://example.com/jobs/frontend",
			Description: "Craft accessible interfaces in React and Next.js and work closely with design on our component library.",
			Source:      sampleSource,
		},
		{
			ID:          "sample-data-engineer",
			Title:       "Data Engineer",
			Company:     "InsightWorks",
			Location:    "London, UK",
			Tags:        []string{"python", "sql", "airflow", "spark"},
			DatePosted:  "2026-09-21",
			ApplyLink:   "https://example.com/jobs/data-engineer",
			Description: "Build batch and streaming pipelines in Python, model warehouse tables in SQL and keep Airflow healthy.",
			Source:      sampleSource,
		},
		{
			ID:          "sample-ml-engineer",
			Title:       "Machine Learning Engineer",
			Company:     "Initech",
			Location:    "Remote",
			Tags:        []string{"python", "pytorch", "nlp", "mlops"},
			DatePosted:  "2026-10-05",
			ApplyLink:   "https://example.com/jobs/ml-engineer",
			Description: "Train and serve NLP models with PyTorch. Own evaluation, feature stores and model monitoring.",
			Source:      sampleSource,
		},
		{
			ID:          "sample-devops",
			Title:       "DevOps Engineer",
			Company:     "CloudKita",
			Location:    "Singapore",
			Tags:        []string{"kubernetes", "docker", "terraform", "aws"},
			DatePosted:  "2026-09-15",
			ApplyLink:   "https://example.com/jobs/devops",
			Description: "Operate Kubernetes clusters on AWS with Terraform, run CI/CD and improve on-call tooling.",
			Source:      sampleSource,
		},
		{
			ID:          "sample-mobile",
			Title:       "Mobile Engineer (iOS)",
			Company:     "Umbrella Apps",
			Location:    "San Francisco, CA",
			Tags:        []string{"swift", "ios", "swiftui"},
			DatePosted:  "2026-10-08",
			ApplyLink:   "https://example.com/jobs/ios",
			Description: "Build our iOS app in Swift and SwiftUI, from offline sync to push notifications.",
			Source:      sampleSource,
		},
		{
			ID:          "sample-product-designer",
			Title:       "Product Designer",
			Company:     "Globex",
			Location:    "Remote",
			Tags:        []string{"figma", "ux", "design systems"},
			DatePosted:  "2026-10-01",
			ApplyLink:   "https://example.com/jobs/designer",
			Description: "Own user research, flows and high fidelity designs in Figma for the hiring product.",
			Source:      sampleSource,
		},
	}
}
