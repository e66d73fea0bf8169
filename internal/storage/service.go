package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SaveResult writes an exported interview summary into resultsDir and
// returns the file path.
func SaveResult(resultsDir string, result *InterviewResult) (string, error) {
	if result.InterviewID == "" {
		return "", fmt.Errorf("interview id is required")
	}

	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", resultsDir, err)
	}

	path := resultPath(resultsDir, result.InterviewID)

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}

	return path, nil
}

// LoadResult reads an exported summary back.
func LoadResult(resultsDir, interviewID string) (*InterviewResult, error) {
	path := resultPath(resultsDir, interviewID)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	var result InterviewResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &result, nil
}

// ListResults returns the ids of all exported summaries, sorted.
func ListResults(resultsDir string) ([]string, error) {
	if _, err := os.Stat(resultsDir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", resultsDir, err)
	}

	results := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || !strings.HasPrefix(name, "interview_") {
			continue
		}
		results = append(results, strings.TrimSuffix(strings.TrimPrefix(name, "interview_"), ".json"))
	}
	sort.Strings(results)

	return results, nil
}

func resultPath(resultsDir, interviewID string) string {
	return filepath.Join(resultsDir, fmt.Sprintf("interview_%s.json", interviewID))
}
