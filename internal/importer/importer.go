// Package importer turns spreadsheet workbooks and plain-text word lists
// into lesson folders.
//
// Every sheet becomes one lesson file. A sheet named "01_animals" writes
// 01_animals/words.csv; a sheet named "01_animals match_pets" writes
// 01_animals/match_pets.csv. Columns A and B hold the two sides of a card,
// sentence sheets may use columns C and D for block overrides.
//
// A word list named animals.txt becomes the quiz animals/words.csv.
package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"codeberg.org/snonux/learnmk/internal"
	"codeberg.org/snonux/learnmk/internal/batch"
	"codeberg.org/snonux/learnmk/internal/lesson"
	"codeberg.org/snonux/learnmk/internal/logging"
)

// DefaultFile is the lesson file name of a sheet that names only a topic
const DefaultFile = "words"

// ImportWorkbook converts every sheet of the workbook and returns the
// written file paths in sheet order.
func ImportWorkbook(xlsxPath, contentRoot string, log *logging.Logger) ([]string, error) {
	log = logging.OrNop(log)

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	written := make(map[string]bool)
	var paths []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return paths, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		topic, file := splitSheetName(sheet)
		if topic == "" {
			log.Warn("skipping sheet without a name", "sheet", sheet)
			continue
		}
		path := uniqueTarget(filepath.Join(contentRoot, topic), file, written)

		records := toRecords(rows, lesson.Classify(path).Kind)
		if len(records) == 0 {
			log.Info("skipping empty sheet", "sheet", sheet)
			continue
		}
		if err := writeCSV(path, records); err != nil {
			return paths, err
		}

		written[path] = true
		paths = append(paths, path)
		log.Debug("sheet imported", "sheet", sheet, "path", path, "rows", len(records))
	}
	return paths, nil
}

// ImportWordList converts a "macedonian = english" word list into a quiz
// in a topic folder named after the list file.
func ImportWordList(txtPath, contentRoot string, log *logging.Logger) ([]string, error) {
	log = logging.OrNop(log)

	entries, err := batch.ReadWordList(txtPath)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("word list %s is empty", txtPath)
	}

	topic := internal.SanitizeFilename(strings.TrimSuffix(filepath.Base(txtPath), filepath.Ext(txtPath)))
	path := filepath.Join(contentRoot, topic, DefaultFile+lesson.ContentExtension)

	records := lo.Map(entries, func(e batch.WordEntry, _ int) []string {
		return []string{e.English, e.Macedonian}
	})
	if err := writeCSV(path, records); err != nil {
		return nil, err
	}
	log.Debug("word list imported", "list", txtPath, "path", path, "rows", len(records))
	return []string{path}, nil
}

// Import picks the workbook or word list importer by file extension
func Import(path, contentRoot string, log *logging.Logger) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ImportWorkbook(path, contentRoot, log)
	}
	return ImportWordList(path, contentRoot, log)
}

// splitSheetName returns the topic folder and the file stem of a sheet
func splitSheetName(sheet string) (string, string) {
	fields := strings.Fields(sheet)
	if len(fields) == 0 {
		return "", ""
	}

	topic := internal.SanitizeFilename(fields[0])
	if len(fields) == 1 {
		return topic, DefaultFile
	}
	return topic, internal.SanitizeFilename(strings.Join(fields[1:], "_"))
}

// uniqueTarget numbers repeated file names of one import (words_2.csv, ...)
func uniqueTarget(dir, stem string, written map[string]bool) string {
	path := filepath.Join(dir, stem+lesson.ContentExtension)
	for i := 2; written[path]; i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, lesson.ContentExtension))
	}
	return path
}

// toRecords keeps 2 columns, or up to 4 for sentence files, and drops rows
// that are empty in every cell.
func toRecords(rows [][]string, kind lesson.Kind) [][]string {
	width := 2
	if kind == lesson.KindSentence {
		width = 4
	}

	var records [][]string
	for _, row := range rows {
		cells := lo.Map(row, func(c string, _ int) string { return strings.TrimSpace(c) })
		if lo.EveryBy(cells, func(c string) bool { return c == "" }) {
			continue
		}

		if len(cells) > width {
			cells = cells[:width]
		}
		for len(cells) < 2 {
			cells = append(cells, "")
		}
		if kind == lesson.KindSentence {
			// drop empty trailing override columns
			for len(cells) > 2 && cells[len(cells)-1] == "" {
				cells = cells[:len(cells)-1]
			}
		}
		records = append(records, cells)
	}
	return records
}

func writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create topic directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}
