// Package collector is the boundary to the data collection step: it turns
// the raw listing dumps produced by an external map scraper into lead records.
package collector

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jainprashuk/LeadLens/internal/jobs"
	"github.com/Jainprashuk/LeadLens/internal/lead"
	"github.com/Jainprashuk/LeadLens/internal/logger"
)

// ErrNoInput is returned for a job that names no input file.
var ErrNoInput = errors.New("collector: job has no input")

// Collector produces the business records for one job.
type Collector interface {
	Collect(ctx context.Context, job jobs.Job) ([]lead.Record, error)
}

// FileCollector reads a job's input file: a JSON array, JSON lines
// (.jsonl/.ndjson) or CSV with a header row.
type FileCollector struct {
	// BaseDir resolves relative input paths.
	BaseDir string
	Log     logger.Logger
}

// Collect loads, website-resolves and de-duplicates the job's records.
func (c FileCollector) Collect(ctx context.Context, job jobs.Job) ([]lead.Record, error) {
	if job.Input == "" {
		return nil, ErrNoInput
	}
	path := job.Input
	if !filepath.IsAbs(path) && c.BaseDir != "" {
		path = filepath.Join(c.BaseDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	defer f.Close()

	var rows []map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(ctx, f)
	case ".jsonl", ".ndjson":
		rows, err = readJSONLines(ctx, f)
	default:
		rows, err = readJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}

	records := make([]lead.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, lead.ResolveWebsite(lead.RecordFromMap(row)))
	}
	deduped := lead.Dedupe(records)

	if c.Log != nil {
		c.Log.Debug("collected records",
			logger.String("input", path),
			logger.Int("rows", len(rows)),
			logger.Int("records", len(deduped)))
	}
	return deduped, nil
}

func readJSON(r io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if data[0] == '{' {
		var one map[string]any
		if err := dec.Decode(&one); err != nil {
			return nil, err
		}
		return []map[string]any{one}, nil
	}
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func readJSONLines(ctx context.Context, r io.Reader) ([]map[string]any, error) {
	var rows []map[string]any
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		var row map[string]any
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, scanner.Err()
}

func readCSV(ctx context.Context, r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	var rows []map[string]any
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(rec) && name != "" {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Static returns the same records for every job. It is handy for callers that
// already hold records in memory.
type Static []lead.Record

// Collect returns a copy of the records.
func (s Static) Collect(context.Context, jobs.Job) ([]lead.Record, error) {
	out := make([]lead.Record, len(s))
	copy(out, s)
	return out, nil
}
