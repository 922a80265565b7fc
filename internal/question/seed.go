package question

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Questions []Question `yaml:"questions"`
}

// LoadSeed reads a YAML file of the form
//
//	questions:
//	  - id: q1
//	    container_id: bank-1
//	    type: mcq
//	    prompt_html: "<p>...</p>"
func LoadSeed(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]Question, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	seen := make(map[string]bool, len(f.Questions))
	for i, q := range f.Questions {
		switch {
		case q.ID == "":
			return nil, fmt.Errorf("seed question %d: id required", i)
		case q.ContainerID == "":
			return nil, fmt.Errorf("seed question %s: container_id required", q.ID)
		case !q.Type.Valid():
			return nil, fmt.Errorf("seed question %s: unknown type %q", q.ID, q.Type)
		case seen[q.ID]:
			return nil, fmt.Errorf("seed question %s: duplicate id", q.ID)
		}
		seen[q.ID] = true
	}
	return f.Questions, nil
}

// Seed upserts items through s.
func Seed(ctx context.Context, s Store, items []Question) error {
	for _, q := range items {
		if err := s.UpdateItem(ctx, q); err != nil {
			return fmt.Errorf("seed %s: %w", q.ID, err)
		}
	}
	return nil
}
