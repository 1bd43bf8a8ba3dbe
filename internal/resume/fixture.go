package resume

import (
	"context"

	"swipehire/internal/domain/user"
)

// Fixture is the canned parse result served when no parser is available.
func Fixture() Parsed {
	return Parsed{
		InfoDict: map[string]any{
			"full_name": "Alex Morgan",
			"email":     "alex.morgan@example.com",
			"phone":     "+1-555-0100",
			"location":  "Austin, TX",
			"github":    "https://github.com/example",
		},
		JobDict: map[string]any{
			"college":            "State University",
			"branch":             "Computer Science and Engineering",
			"year_of_graduation": 2026,
			"experiences": []any{
				map[string]any{
					"company":     "Northwind Health",
					"position":    "Machine Learning Intern",
					"duration":    "May 2025 - Aug 2025",
					"description": "Built a real-time event monitoring service with object detection and OCR.",
				},
				map[string]any{
					"company":     nil,
					"position":    "Research Project",
					"duration":    "Sep 2025 - Present",
					"description": "Building segmentation with U-Net and transformer backbones for damage assessment.",
				},
			},
			"projects": []any{
				map[string]any{
					"name":        "Portfolio Analyzer",
					"duration":    "Feb 2025 - Mar 2025",
					"description": "Agentic workflow for technical and sentiment analysis of equities.",
				},
			},
			"tech_stack": []any{
				"Python", "Go", "SQL", "PostgreSQL", "PyTorch", "TensorFlow", "React", "Docker", "Git",
			},
			"achievements": []any{"Hackathon finalist, 2025"},
			"cgpa":         3.8,
		},
		NewKeysTracker: user.DynamicKeys{
			InfoDict: []string{"github"},
			JobDict:  []string{"achievements", "cgpa"},
		},
	}
}

// FixtureParser always returns Fixture.
type FixtureParser struct{}

func (FixtureParser) Parse(context.Context, string) (Parsed, error) {
	return Fixture(), nil
}
