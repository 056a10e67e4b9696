package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Lesson fixtures shared across package tests
const (
	AnimalsQuizCSV   = "dog,куче\ncat,мачка\nbird,птица\nfish,риба\n"
	NumbersMatchCSV  = "one,еден\ntwo,два\n"
	GreetingsSentCSV = "Good morning,Добро утро\nHow are you,Како си\n"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// WriteLesson writes a single lesson file and returns its path
func WriteLesson(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	CreateTestFile(t, path, []byte(content))
	return path
}

// CreateLessonTree builds a content root from topic -> file -> CSV content
// and returns the root directory.
func CreateLessonTree(t *testing.T, topics map[string]map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for topic, files := range topics {
		topicDir := filepath.Join(root, topic)
		if err := os.MkdirAll(topicDir, 0755); err != nil {
			t.Fatalf("Failed to create topic directory %s: %v", topic, err)
		}
		for name, content := range files {
			WriteLesson(t, topicDir, name, content)
		}
	}
	return root
}

// DefaultLessonTree creates a two-topic content root used by most tests:
// 01_animals holds a quiz and a matching game, 02_greetings a sentence file.
func DefaultLessonTree(t *testing.T) string {
	t.Helper()

	return CreateLessonTree(t, map[string]map[string]string{
		"01_animals": {
			"animals.csv":       AnimalsQuizCSV,
			"match_numbers.csv": NumbersMatchCSV,
		},
		"02_greetings": {
			"sentence_greetings_en_mk.csv": GreetingsSentCSV,
		},
	})
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}
