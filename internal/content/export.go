package content

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"reelpipe/internal/fileutil"
)

var csvColumns = []string{
	"title",
	"content",
	"full_text",
	"author",
	"score",
	"url",
	"created_utc",
	"reading_time_seconds",
	"subreddit",
	"id",
}

// WriteJSON writes items as an indented JSON list.
func WriteJSON(path string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write content json: %w", err)
	}
	return nil
}

// WriteCSV writes items as CSV with a header row.
func WriteCSV(path string, items []Item) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("encode content csv: %w", err)
	}
	for _, item := range items {
		record := []string{
			item.Title,
			item.Content,
			item.FullText,
			item.Author,
			strconv.Itoa(item.Score),
			item.URL,
			strconv.FormatFloat(item.CreatedUTC, 'f', -1, 64),
			strconv.FormatFloat(item.ReadingTimeSeconds, 'f', -1, 64),
			item.Subreddit,
			item.ID,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("encode content csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode content csv: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write content csv: %w", err)
	}
	return nil
}

// Load reads a content export. Files ending in .csv are read as CSV, anything
// else as a JSON list. Items missing a reading time get one estimated.
func Load(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []Item
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		items, err = decodeCSV(f)
	} else {
		items, err = decodeJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load content %s: %w", filepath.Base(path), err)
	}
	for i := range items {
		items[i] = items[i].WithReadingTime()
	}
	return items, nil
}

func decodeJSON(r io.Reader) ([]Item, error) {
	var items []Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeCSV(r io.Reader) ([]Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var items []Item
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		score, err := parseScore(field(record, "score"))
		if err != nil {
			return nil, fmt.Errorf("line %d: score: %w", line, err)
		}
		created, err := parseNumber(field(record, "created_utc"))
		if err != nil {
			return nil, fmt.Errorf("line %d: created_utc: %w", line, err)
		}
		reading, err := parseNumber(field(record, "reading_time_seconds"))
		if err != nil {
			return nil, fmt.Errorf("line %d: reading_time_seconds: %w", line, err)
		}
		items = append(items, Item{
			ID:                 field(record, "id"),
			Subreddit:          field(record, "subreddit"),
			Title:              field(record, "title"),
			Content:            field(record, "content"),
			FullText:           field(record, "full_text"),
			Author:             field(record, "author"),
			Score:              score,
			URL:                field(record, "url"),
			CreatedUTC:         created,
			ReadingTimeSeconds: reading,
		})
	}
	return items, nil
}

func parseNumber(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is not a finite number", value)
	}
	return n, nil
}

// parseScore accepts spreadsheet-style decimals and rounds them to an int.
func parseScore(value string) (int, error) {
	n, err := parseNumber(value)
	if err != nil {
		return 0, err
	}
	n = math.Round(n)
	if n < math.MinInt || n >= math.MaxInt {
		return 0, fmt.Errorf("%q is out of range", strings.TrimSpace(value))
	}
	return int(n), nil
}
