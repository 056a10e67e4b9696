package lesson

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrContentUnavailable is returned when a content path is missing or unreadable
	ErrContentUnavailable = errors.New("content unavailable")
	// ErrMalformedContent is returned when a lesson file violates its row contract
	ErrMalformedContent = errors.New("malformed content")
)

// ContentExtension is the file extension of lesson files
const ContentExtension = ".csv"

// Kind identifies the exercise type of a lesson file
type Kind int

const (
	KindQuiz Kind = iota
	KindMatching
	KindSentence
)

func (k Kind) String() string {
	switch k {
	case KindQuiz:
		return "quiz"
	case KindMatching:
		return "matching"
	case KindSentence:
		return "sentence"
	default:
		return "unknown"
	}
}

// Direction is the translation direction of a sentence builder exercise
type Direction int

const (
	EnglishToMacedonian Direction = iota
	MacedonianToEnglish
)

func (d Direction) String() string {
	if d == MacedonianToEnglish {
		return "mk->en"
	}
	return "en->mk"
}

// Topic is one folder directly under the content root
type Topic struct {
	ID   string // raw folder name, also the progress key
	Path string
}

// ExerciseFile is one lesson file inside a topic
type ExerciseFile struct {
	Path      string
	Name      string
	Kind      Kind
	Direction Direction // only meaningful for KindSentence
}

// Catalog is a read-through view of a content root. Nothing is cached;
// every call re-reads the filesystem.
type Catalog struct {
	root string
}

// NewCatalog creates a catalog over the given content root
func NewCatalog(root string) *Catalog {
	return &Catalog{root: root}
}

// Root returns the content root directory
func (c *Catalog) Root() string {
	return c.root
}

// Topics returns all topic folders sorted by name
func (c *Catalog) Topics() ([]Topic, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("%w: read content root %s: %v", ErrContentUnavailable, c.root, err)
	}

	topics := make([]Topic, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		topics = append(topics, Topic{
			ID:   entry.Name(),
			Path: filepath.Join(c.root, entry.Name()),
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		return topics[i].ID < topics[j].ID
	})
	return topics, nil
}

// ExerciseFiles returns the lesson files of a topic sorted by file name
func (c *Catalog) ExerciseFiles(topic Topic) ([]ExerciseFile, error) {
	entries, err := os.ReadDir(topic.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: read topic %s: %v", ErrContentUnavailable, topic.ID, err)
	}

	var files []ExerciseFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ContentExtension) {
			continue
		}
		files = append(files, Classify(filepath.Join(topic.Path, entry.Name())))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Classify determines kind and direction of a lesson file from its name
func Classify(path string) ExerciseFile {
	name := filepath.Base(path)
	file := ExerciseFile{
		Path: path,
		Name: name,
		Kind: KindQuiz,
	}

	switch {
	case strings.HasPrefix(name, "match_"):
		file.Kind = KindMatching
	case strings.HasPrefix(name, "sentence_"):
		file.Kind = KindSentence
		file.Direction = ParseDirection(name)
	}
	return file
}

// ParseDirection reads a trailing _<src>_<dst> language pair from a file name.
// Anything other than a distinct pair from {en, mk} means english to macedonian.
func ParseDirection(name string) Direction {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(strings.ToLower(base), "_")
	if len(parts) < 2 {
		return EnglishToMacedonian
	}

	src, dst := parts[len(parts)-2], parts[len(parts)-1]
	if src == "mk" && dst == "en" {
		return MacedonianToEnglish
	}
	return EnglishToMacedonian
}
