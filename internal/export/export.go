// Package export writes classified leads to CSV, JSON or Excel files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Jainprashuk/LeadLens/internal/lead"
	"github.com/Jainprashuk/LeadLens/internal/urlutil"
)

// AggregateFile is the cross-job file of positive leads in the data dir.
const AggregateFile = "Leads.csv"

// SheetName names the single worksheet of .xlsx outputs.
const SheetName = "Leads"

// ErrUnsupportedFormat is returned for an output path with an unknown extension.
var ErrUnsupportedFormat = errors.New("export: unsupported output format")

// Columns is the header row shared by every output format.
var Columns = []string{
	"business_name", "rating", "reviews", "has_website", "website", "phone", "photos",
	"category", "address", "maps_url", "lead_type", "classification_reason", "lead_score", "flags",
}

// Row renders l in Columns order.
func Row(l lead.Lead) []string {
	r, c := l.Record, l.Classification
	return []string{
		r.BusinessName,
		strconv.FormatFloat(r.Rating, 'f', -1, 64),
		strconv.Itoa(r.Reviews),
		strconv.FormatBool(r.HasWebsite),
		r.Website,
		r.Phone,
		strconv.Itoa(r.Photos),
		r.Category,
		r.Address,
		r.MapsURL,
		c.LeadType,
		c.Explanation,
		strconv.Itoa(c.Score),
		strings.Join(c.Result.Flags, ";"),
	}
}

// cells is Row with numbers and booleans kept typed for spreadsheets.
func cells(l lead.Lead) []any {
	r, c := l.Record, l.Classification
	return []any{
		r.BusinessName, r.Rating, r.Reviews, r.HasWebsite, r.Website, r.Phone, r.Photos,
		r.Category, r.Address, r.MapsURL, c.LeadType, c.Explanation, c.Score,
		strings.Join(c.Result.Flags, ";"),
	}
}

type jsonLead struct {
	BusinessName         string   `json:"business_name"`
	Rating               float64  `json:"rating"`
	Reviews              int      `json:"reviews"`
	HasWebsite           bool     `json:"has_website"`
	Website              string   `json:"website"`
	Phone                string   `json:"phone"`
	Photos               int      `json:"photos"`
	Category             string   `json:"category"`
	Address              string   `json:"address"`
	MapsURL              string   `json:"maps_url"`
	LeadType             string   `json:"lead_type"`
	ClassificationReason string   `json:"classification_reason"`
	LeadScore            int      `json:"lead_score"`
	Flags                []string `json:"flags"`
}

func toJSON(l lead.Lead) jsonLead {
	r, c := l.Record, l.Classification
	flags := c.Result.Flags
	if flags == nil {
		flags = []string{}
	}
	return jsonLead{
		BusinessName:         r.BusinessName,
		Rating:               r.Rating,
		Reviews:              r.Reviews,
		HasWebsite:           r.HasWebsite,
		Website:              r.Website,
		Phone:                r.Phone,
		Photos:               r.Photos,
		Category:             r.Category,
		Address:              r.Address,
		MapsURL:              r.MapsURL,
		LeadType:             c.LeadType,
		ClassificationReason: c.Explanation,
		LeadScore:            c.Score,
		Flags:                flags,
	}
}

// WriteResults writes leads to path in the format named by its extension:
// .csv, .json or .xlsx. Parent directories are created.
func WriteResults(path string, leads []lead.Lead) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, leads)
	case ".json":
		return writeJSON(path, leads)
	case ".xlsx":
		return writeXLSX(path, leads)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// WriteAggregate overwrites dataDir/Leads.csv with every lead scoring above
// minScore and returns the path and the number of rows written.
func WriteAggregate(dataDir string, leads []lead.Lead, minScore int) (string, int, error) {
	var positive []lead.Lead
	for _, l := range leads {
		if l.Classification.Score > minScore {
			positive = append(positive, l)
		}
	}
	path := filepath.Join(dataDir, AggregateFile)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return path, 0, fmt.Errorf("create data dir: %w", err)
	}
	if err := writeCSV(path, positive); err != nil {
		return path, 0, err
	}
	return path, len(positive), nil
}

func writeCSV(path string, leads []lead.Lead) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}
	for _, l := range leads {
		if err := w.Write(Row(l)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, leads []lead.Lead) error {
	rows := make([]jsonLead, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, toJSON(l))
	}
	return writeIndented(path, rows)
}

func writeXLSX(path string, leads []lead.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	for i, l := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := cells(l)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Candidate is one website candidate with the reason it was kept or dropped.
type Candidate struct {
	Candidate string `json:"candidate"`
	Reason    string `json:"reason"`
}

// DebugEntry describes how one business's website was picked.
type DebugEntry struct {
	BusinessName string      `json:"business_name"`
	Website      string      `json:"website"`
	Candidates   []Candidate `json:"candidates"`
}

// DebugPath is debug_<output file name>.json inside dataDir.
func DebugPath(dataDir, output string) string {
	return filepath.Join(dataDir, "debug_"+filepath.Base(output)+".json")
}

// BuildDebug explains every candidate link of every record.
func BuildDebug(records []lead.Record) []DebugEntry {
	out := make([]DebugEntry, 0, len(records))
	for _, r := range records {
		entry := DebugEntry{BusinessName: r.BusinessName, Website: r.Website, Candidates: []Candidate{}}
		for _, c := range r.Candidates {
			entry.Candidates = append(entry.Candidates, Candidate{Candidate: c, Reason: urlutil.CandidateReason(c)})
		}
		out = append(out, entry)
	}
	return out
}

// WriteDebug writes the candidate report for records to path.
func WriteDebug(path string, records []lead.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create debug dir: %w", err)
	}
	return writeIndented(path, BuildDebug(records))
}

func writeIndented(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
