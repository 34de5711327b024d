package rowsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"autopost/poster-go/internal/queue"
	"autopost/poster-go/internal/utils"
)

// Column names that identify a header line, covering both the Indonesian and
// the English authoring schemes.
var headerWords = map[string]struct{}{
	"tanggal": {}, "judul": {}, "teks": {}, "hashtag": {}, "linkaffiliate": {},
	"bg": {}, "music": {}, "status": {}, "jamwib": {},
	"date": {}, "title": {}, "text": {}, "hashtags": {}, "affiliatelink": {},
	"background": {}, "time": {},
}

var delimiters = []rune{',', ';', '\t'}

// CSVSource reads a delimited text queue file. Dialect (delimiter and header
// presence) is sniffed once on the first Load and reused for the rewrite, so
// a semicolon-separated file stays semicolon-separated.
type CSVSource struct {
	Path string

	delimiter rune
	hasHeader bool
	header    []string
	sniffed   bool
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, delimiter: ','}
}

func (s *CSVSource) Load(ctx context.Context) ([]Row, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read queue file: %w", err)
	}

	if !s.sniffed {
		s.sniff(data)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = s.delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse queue file: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	columns := s.header
	start := 0
	if s.hasHeader {
		columns = lines[0]
		s.header = columns
		start = 1
	}

	rows := make([]Row, 0, len(lines)-start)
	for _, line := range lines[start:] {
		row := Row{}
		for i, value := range line {
			if i >= len(columns) {
				break
			}
			row[strings.TrimSpace(columns[i])] = value
		}
		rows = append(rows, row)
	}
	utils.Debug("csv load", "path", s.Path, "rows", len(rows), "delimiter", string(s.delimiter), "header", s.hasHeader)
	return rows, nil
}

// Overwrite rewrites the whole file under the given header, keeping the
// sniffed delimiter. The write goes through a temp file and rename so a crash
// mid-write never truncates the queue.
func (s *CSVSource) Overwrite(ctx context.Context, header []string, rows []Row) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".queue-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp queue file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	writer := csv.NewWriter(tmp)
	writer.Comma = s.delimiter

	if err := writer.Write(header); err != nil {
		tmp.Close()
		return err
	}
	for _, row := range rows {
		line := make([]string, len(header))
		for i, column := range header {
			line[i] = row[column]
		}
		if err := writer.Write(line); err != nil {
			tmp.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("replace queue file: %w", err)
	}

	// The file now carries the canonical header.
	s.hasHeader = true
	s.header = header
	utils.Debug("csv overwrite", "path", s.Path, "rows", len(rows))
	return nil
}

// sniff picks the delimiter with the most occurrences on the first line and
// decides whether that line is a header by looking for known column names.
func (s *CSVSource) sniff(data []byte) {
	firstLine := string(data)
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}

	best := ','
	bestCount := -1
	for _, delim := range delimiters {
		count := strings.Count(firstLine, string(delim))
		if count > bestCount {
			best = delim
			bestCount = count
		}
	}
	s.delimiter = best

	s.hasHeader = false
	for _, cell := range strings.Split(firstLine, string(best)) {
		cell = strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(cell), `"`)))
		if _, ok := headerWords[cell]; ok {
			s.hasHeader = true
			break
		}
	}
	if !s.hasHeader {
		// Headerless files are positional in the canonical column order.
		s.header = queue.CanonicalHeader
	}
	s.sniffed = true
	utils.Debug("csv sniff", "path", s.Path, "delimiter", string(best), "header", s.hasHeader)
}
