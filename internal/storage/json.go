package storage

import (
	"encoding/json"
	"fmt"

	"github.com/curationd/taxora/internal/model"
)

// Paths and embeddings are stored as JSON text columns. SQLite has no native
// array type and the stored shapes are only read back whole, never queried
// into.

func marshalPath(p model.Path) (string, error) {
	data, err := json.Marshal([]string(p))
	if err != nil {
		return "", fmt.Errorf("failed to marshal path: %w", err)
	}
	return string(data), nil
}

func unmarshalPath(s string) (model.Path, error) {
	if s == "" {
		return nil, nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(s), &labels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal path: %w", err)
	}
	return model.Path(labels), nil
}

func marshalPaths(paths []model.Path) (string, error) {
	raw := make([][]string, len(paths))
	for i, p := range paths {
		raw[i] = []string(p)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("failed to marshal paths: %w", err)
	}
	return string(data), nil
}

func unmarshalPaths(s string) ([]model.Path, error) {
	if s == "" {
		return nil, nil
	}
	var raw [][]string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal paths: %w", err)
	}
	paths := make([]model.Path, len(raw))
	for i, labels := range raw {
		paths[i] = model.Path(labels)
	}
	return paths, nil
}

func marshalEmbedding(v []float64) (string, error) {
	if len(v) == 0 {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return string(data), nil
}

func unmarshalEmbedding(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	var v []float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}
	return v, nil
}
