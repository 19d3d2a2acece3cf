// Package dataset loads court decision elements from the CSV and JSONL export
// formats. An element is one part of a decision: its identifier, the extracted
// law citations, and optionally the part text used for context rescue.
package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Element is one decision part with its extracted citations.
type Element struct {
	UUID     string
	Part     string
	Content  string
	Citation []string
}

// ID returns the element identifier used in match records: "<uuid>_<part>".
func (e *Element) ID() string {
	return e.UUID + "_" + e.Part
}

// analysisDoc mirrors the analysis JSON column of the export. The citation
// list lives under the "articles de loi" key.
type analysisDoc struct {
	Articles []string `json:"articles de loi"`
}

// Load reads elements from path, dispatching on the file extension.
func Load(path string) ([]Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".jsonl":
		return ReadJSONL(f)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

// nonBlank filters empty and whitespace-only citation strings out of an
// analysis citation list.
func nonBlank(citations []string) []string {
	out := make([]string, 0, len(citations))
	for _, cit := range citations {
		if strings.TrimSpace(cit) != "" {
			out = append(out, cit)
		}
	}
	return out
}

// ReadCSV reads elements from the CSV export. Expected columns: uuid,
// part_number, optionally part_content, and analysis (a JSON object holding
// the citation list). Column order is taken from the header row. Rows whose
// analysis carries no non-blank citation are dropped.
func ReadCSV(r io.Reader) ([]Element, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	uuidCol, ok := cols["uuid"]
	if !ok {
		return nil, fmt.Errorf("csv header missing uuid column")
	}
	partCol, ok := cols["part_number"]
	if !ok {
		return nil, fmt.Errorf("csv header missing part_number column")
	}
	analysisCol, ok := cols["analysis"]
	if !ok {
		return nil, fmt.Errorf("csv header missing analysis column")
	}
	contentCol, hasContent := cols["part_content"]

	var elements []Element
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}
		if uuidCol >= len(row) || partCol >= len(row) || analysisCol >= len(row) {
			continue
		}

		var analysis analysisDoc
		if err := json.Unmarshal([]byte(row[analysisCol]), &analysis); err != nil {
			// Rows with unparseable analysis JSON carry no citations.
			continue
		}
		citations := nonBlank(analysis.Articles)
		if len(citations) == 0 {
			continue
		}

		elem := Element{
			UUID:     row[uuidCol],
			Part:     row[partCol],
			Citation: citations,
		}
		if hasContent && contentCol < len(row) {
			elem.Content = row[contentCol]
		}
		elements = append(elements, elem)
	}
	return elements, nil
}

// jsonlRecord is one line of the JSONL export. part_number and analysis are
// kept raw: the export carries part_number as a number in some dumps and a
// string in others, and analysis as either a JSON object or a JSON-encoded
// string holding one.
type jsonlRecord struct {
	UUID        string          `json:"uuid"`
	PartNumber  json.RawMessage `json:"part_number"`
	PartContent string          `json:"part_content"`
	Analysis    json.RawMessage `json:"analysis"`
}

// partString decodes a part_number value of either shape.
func partString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	return strings.TrimSpace(string(raw))
}

// analysisFields decodes the analysis column, unwrapping the double encoding
// when the column holds a JSON string instead of an object.
func analysisFields(raw json.RawMessage) (analysisDoc, error) {
	var doc analysisDoc
	if err := json.Unmarshal(raw, &doc); err == nil {
		return doc, nil
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return doc, fmt.Errorf("analysis column: %w", err)
	}
	if err := json.Unmarshal([]byte(encoded), &doc); err != nil {
		return doc, fmt.Errorf("analysis column: %w", err)
	}
	return doc, nil
}

// ReadJSONL reads elements from the JSONL export, one JSON object per line.
// Malformed lines are skipped rather than aborting the load; rows without a
// non-blank citation are dropped.
func ReadJSONL(r io.Reader) ([]Element, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var elements []Element
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		analysis, err := analysisFields(rec.Analysis)
		if err != nil {
			continue
		}
		citations := nonBlank(analysis.Articles)
		if len(citations) == 0 {
			continue
		}
		elements = append(elements, Element{
			UUID:     rec.UUID,
			Part:     partString(rec.PartNumber),
			Content:  rec.PartContent,
			Citation: citations,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan jsonl: %w", err)
	}
	return elements, nil
}
