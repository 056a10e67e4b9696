// Package batch reads plain-text word lists, one pair per line.
package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// WordEntry is one line of a word list
type WordEntry struct {
	Macedonian string
	English    string
}

// ReadWordList reads "macedonian = english" lines. Blank lines and lines
// starting with '#' are skipped; a line missing either side is an error
// since there is nothing to translate it with.
func ReadWordList(filename string) ([]WordEntry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	defer f.Close()

	var entries []WordEntry
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		mk, en, ok := strings.Cut(line, "=")
		mk, en = strings.TrimSpace(mk), strings.TrimSpace(en)
		if !ok || mk == "" || en == "" {
			return nil, fmt.Errorf("%s line %d: expected \"macedonian = english\"", filename, n)
		}
		entries = append(entries, WordEntry{Macedonian: mk, English: en})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return entries, nil
}
