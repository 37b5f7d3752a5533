// Package jobs loads search jobs and expands multi-city / multi-category
// definitions into one job per search.
package jobs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults for a job that names neither a full search nor a query/city.
const (
	DefaultQuery   = "tiles shop"
	DefaultCity    = "jaipur"
	DefaultScrolls = 5
)

// ErrNoJobs is returned when a job file holds no jobs.
var ErrNoJobs = errors.New("jobs: no jobs defined")

// Job is one search to collect and classify.
type Job struct {
	Search     string   `json:"search,omitempty"`
	Query      string   `json:"query,omitempty"`
	Category   string   `json:"category,omitempty"`
	City       string   `json:"city,omitempty"`
	Scrolls    int      `json:"scrolls,omitempty"`
	Output     string   `json:"output,omitempty"`
	Input      string   `json:"input,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Cities     []string `json:"cities,omitempty"`
}

type rawJob struct {
	Search       string   `json:"search"`
	Query        string   `json:"query"`
	Q            string   `json:"q"`
	Category     string   `json:"category"`
	City         string   `json:"city"`
	CityName     string   `json:"city_name"`
	Scrolls      any      `json:"scrolls"`
	Scroll       any      `json:"scroll"`
	Output       string   `json:"output"`
	Input        string   `json:"input"`
	Categories   []string `json:"categories"`
	CategoryList []string `json:"category_list"`
	Cities       []string `json:"cities"`
	CityList     []string `json:"city_list"`
}

// UnmarshalJSON accepts the field aliases used by hand-written job files.
func (j *Job) UnmarshalJSON(data []byte) error {
	var raw rawJob
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*j = Job{
		Search:     strings.TrimSpace(raw.Search),
		Query:      firstNonEmpty(raw.Query, raw.Q),
		Category:   strings.TrimSpace(raw.Category),
		City:       firstNonEmpty(raw.City, raw.CityName),
		Scrolls:    toInt(raw.Scrolls, raw.Scroll),
		Output:     strings.TrimSpace(raw.Output),
		Input:      strings.TrimSpace(raw.Input),
		Categories: cleanList(raw.Categories, raw.CategoryList),
		Cities:     cleanList(raw.Cities, raw.CityList),
	}
	return nil
}

// Load reads a job file holding either one job object or a list of them.
// A missing file yields (nil, nil) so callers can fall back to flags.
func Load(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read job file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes job JSON (object or list).
func Parse(data []byte) ([]Job, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoJobs
	}
	var list []Job
	if data[0] == '[' {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode job list: %w", err)
		}
	} else {
		var one Job
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("decode job: %w", err)
		}
		list = []Job{one}
	}
	if len(list) == 0 {
		return nil, ErrNoJobs
	}
	return list, nil
}

// FromFlags builds the single job used when no job file is present.
func FromFlags(search, query, city string, scrolls int, output, input string) Job {
	j := Job{Scrolls: scrolls, Output: strings.TrimSpace(output), Input: strings.TrimSpace(input)}
	if s := strings.TrimSpace(search); s != "" {
		j.Search = s
		return j
	}
	j.Query = valueOr(query, DefaultQuery)
	j.City = valueOr(city, DefaultCity)
	return j
}

// Expand turns every multi-category or multi-city job into single searches:
// categories x cities is a cartesian product, categories with one city pair
// each category with it, categories without a city become standalone searches,
// and cities repeat the job's query (or search text) per city. List fields are
// cleared on expanded jobs; plain jobs pass through unchanged.
func Expand(raw []Job) []Job {
	var out []Job
	for _, job := range raw {
		cats, cities := job.Categories, job.Cities
		base := job
		base.Categories, base.Cities = nil, nil

		switch {
		case len(cats) > 0 && len(cities) > 0:
			for _, cat := range cats {
				for _, city := range cities {
					j := base
					j.Search, j.Query, j.City = "", cat, city
					out = append(out, j)
				}
			}
		case len(cats) > 0:
			for _, cat := range cats {
				j := base
				if base.City != "" {
					j.Search, j.Query = "", cat
				} else {
					j.Search = cat
				}
				out = append(out, j)
			}
		case len(cities) > 0:
			q := firstNonEmpty(job.Query, job.Category, job.Search)
			for _, city := range cities {
				j := base
				if q != "" {
					j.Search, j.Query, j.City = "", q, city
				} else {
					j.Search = strings.TrimSpace(job.Search + " in " + city)
				}
				out = append(out, j)
			}
		default:
			out = append(out, job)
		}
	}
	return out
}

// SearchQuery is the text sent to the map search.
func (j Job) SearchQuery() string {
	if j.Search != "" {
		return j.Search
	}
	q := valueOr(j.Query, DefaultQuery)
	c := valueOr(j.City, DefaultCity)
	return q + " in " + c
}

// ScrollCount is the number of result-panel scrolls requested.
func (j Job) ScrollCount(fallback int) int {
	if j.Scrolls > 0 {
		return j.Scrolls
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultScrolls
}

// OutputPath picks where the job's results go: the job's own output, then the
// CLI-wide output, then a name derived from the search and time. Relative
// paths are placed under dataDir.
func (j Job) OutputPath(dataDir, cliOutput string, now time.Time) string {
	out := j.Output
	if out == "" {
		out = strings.TrimSpace(cliOutput)
	}
	if out == "" {
		safe := strings.NewReplacer(" ", "_", "/", "_").Replace(j.SearchQuery())
		out = fmt.Sprintf("leads_%s_%s.csv", safe, now.UTC().Format("20060102T150405Z"))
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(dataDir, out)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func valueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func cleanList(lists ...[]string) []string {
	for _, list := range lists {
		var out []string
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func toInt(values ...any) int {
	for _, v := range values {
		switch t := v.(type) {
		case float64:
			if t > 0 {
				return int(t)
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}
