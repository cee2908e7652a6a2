package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalysisTemplate is a user-defined analysis type loaded from the
// templates file. Templates extend the built-in analysis catalog;
// continuation turns fall back to the generic continuation prompt.
type AnalysisTemplate struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	AnalysisType string `yaml:"analysis_type"`
	Prompt       string `yaml:"prompt"`
}

type templatesFile struct {
	Templates []AnalysisTemplate `yaml:"templates"`
}

// LoadAnalysisTemplates reads custom analysis templates from the YAML
// file at path. An empty path means no custom templates (nil, nil).
func LoadAnalysisTemplates(path string) ([]AnalysisTemplate, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis templates: %w", err)
	}

	var file templatesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse analysis templates: %w", err)
	}

	for i, t := range file.Templates {
		if t.AnalysisType == "" {
			return nil, fmt.Errorf("analysis template %d: missing analysis_type", i)
		}
		if t.Prompt == "" {
			return nil, fmt.Errorf("analysis template %q: missing prompt", t.AnalysisType)
		}
	}

	return file.Templates, nil
}
