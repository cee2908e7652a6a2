package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemplatesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAnalysisTemplates(t *testing.T) {
	path := writeTemplatesFile(t, `
templates:
  - name: Board Review
    description: Governance-focused analysis
    analysis_type: board-review
    prompt: Assess board composition and governance practices.
  - name: Financial Deep Dive
    analysis_type: financial-review
    prompt: Examine the financial statements in detail.
`)

	templates, err := LoadAnalysisTemplates(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(templates) != 2 {
		t.Fatalf("len = %d, want 2", len(templates))
	}
	if templates[0].AnalysisType != "board-review" || templates[0].Name != "Board Review" {
		t.Errorf("templates[0] = %+v", templates[0])
	}
	if templates[1].Description != "" {
		t.Errorf("description should be optional, got %q", templates[1].Description)
	}
}

func TestLoadAnalysisTemplatesEmptyPath(t *testing.T) {
	templates, err := LoadAnalysisTemplates("")
	if err != nil {
		t.Fatal(err)
	}
	if templates != nil {
		t.Errorf("empty path should mean no templates, got %+v", templates)
	}
}

func TestLoadAnalysisTemplatesValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing analysis_type",
			content: `
templates:
  - name: Broken
    prompt: some prompt
`,
		},
		{
			name: "missing prompt",
			content: `
templates:
  - name: Broken
    analysis_type: broken-type
`,
		},
		{
			name:    "malformed yaml",
			content: "templates: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemplatesFile(t, tt.content)
			if _, err := LoadAnalysisTemplates(path); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestLoadAnalysisTemplatesMissingFile(t *testing.T) {
	if _, err := LoadAnalysisTemplates(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should be an error")
	}
}
