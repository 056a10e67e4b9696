package lesson

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"codeberg.org/snonux/learnmk/internal/logging"
)

// OverridesFile is the optional display name table inside the content root
const OverridesFile = "topics.yaml"

var defaultOverrides = map[string]string{
	"basicverbs": "Basic Verbs",
}

type overridesDoc struct {
	Overrides map[string]string `yaml:"overrides"`
}

// Names turns raw folder and file names into display names
type Names struct {
	overrides map[string]string
}

// NewNames returns display names using only the built-in override table
func NewNames() *Names {
	n := &Names{overrides: make(map[string]string, len(defaultOverrides))}
	for k, v := range defaultOverrides {
		n.overrides[k] = v
	}
	return n
}

// LoadNames reads topics.yaml from the content root on top of the built-in
// overrides. A missing file is normal; a broken one is logged and ignored.
func LoadNames(root string, log *logging.Logger) *Names {
	log = logging.OrNop(log)
	n := NewNames()

	path := filepath.Join(root, OverridesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cannot read display name overrides", "path", path, "error", err)
		}
		return n
	}

	var doc overridesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Warn("ignoring malformed display name overrides", "path", path, "error", err)
		return n
	}
	for k, v := range doc.Overrides {
		n.overrides[normalizeKey(k)] = v
	}
	log.Debug("display name overrides loaded", "path", path, "count", len(doc.Overrides))
	return n
}

// Topic returns the display name of a topic folder, e.g. "01_basic_verbs"
// becomes "Basic Verbs".
func (n *Names) Topic(folder string) string {
	stripped := stripNumericPrefix(folder)
	if name, ok := n.overrides[normalizeKey(stripped)]; ok {
		return name
	}
	if name, ok := n.overrides[normalizeKey(folder)]; ok {
		return name
	}
	return titleCase(strings.ReplaceAll(stripped, "_", " "))
}

// Exercise returns the button title of the index-th (0 based) exercise file
// of a topic.
func (n *Names) Exercise(topicDisplay string, file ExerciseFile, index int) string {
	base := strings.TrimSuffix(file.Name, filepath.Ext(file.Name))

	switch file.Kind {
	case KindMatching:
		title := titleCase(strings.ReplaceAll(strings.TrimPrefix(base, "match_"), "_", " "))
		return fmt.Sprintf("%s Matching: %s", topicDisplay, title)
	case KindSentence:
		title := strings.TrimPrefix(base, "sentence_")
		title = strings.TrimSuffix(strings.TrimSuffix(title, "_en_mk"), "_mk_en")
		label := "EN → MK"
		if file.Direction == MacedonianToEnglish {
			label = "MK → EN"
		}
		return fmt.Sprintf("%s Sentences: %s (%s)", topicDisplay, titleCase(strings.ReplaceAll(title, "_", " ")), label)
	default:
		return fmt.Sprintf("%s %d", topicDisplay, index+1)
	}
}

func stripNumericPrefix(folder string) string {
	prefix, rest, found := strings.Cut(folder, "_")
	if !found || prefix == "" || rest == "" {
		return folder
	}
	for _, r := range prefix {
		if !unicode.IsDigit(r) {
			return folder
		}
	}
	return rest
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "_", "")
}

func titleCase(s string) string {
	tag := language.English
	for _, r := range s {
		if unicode.In(r, unicode.Cyrillic) {
			tag = language.Macedonian
			break
		}
	}
	return cases.Title(tag).String(strings.TrimSpace(s))
}
