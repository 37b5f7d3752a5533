// Package lead turns scraped business records into scored, classified sales leads.
package lead

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Record is one business listing. Every field is fully populated: missing or
// unparseable input becomes the zero value at the parsing boundary.
type Record struct {
	BusinessName string   `json:"business_name"`
	Rating       float64  `json:"rating"`
	Reviews      int      `json:"reviews"`
	HasWebsite   bool     `json:"has_website"`
	Website      string   `json:"website"`
	Phone        string   `json:"phone"`
	Photos       int      `json:"photos"`
	Category     string   `json:"category"`
	Address      string   `json:"address,omitempty"`
	MapsURL      string   `json:"maps_url,omitempty"`
	Candidates   []string `json:"website_candidates,omitempty"`
}

var nonCountChars = regexp.MustCompile(`[\s,._']`)

// RecordFromMap builds a Record from any decoded JSON object or CSV row.
// It never fails.
func RecordFromMap(m map[string]any) Record {
	return Record{
		BusinessName: firstString(m, "business_name", "name"),
		Rating:       toFloat(first(m, "rating")),
		Reviews:      toInt(first(m, "reviews", "review_count")),
		HasWebsite:   toBool(first(m, "has_website")),
		Website:      firstString(m, "website"),
		Phone:        firstString(m, "phone", "phone_number"),
		Photos:       toInt(first(m, "photos", "photo_count")),
		Category:     firstString(m, "category"),
		Address:      firstString(m, "address"),
		MapsURL:      firstString(m, "maps_url", "url"),
		Candidates:   toStrings(first(m, "website_candidates")),
	}
}

// ParseRating reads a rating such as "4.3" or "4,3"; anything else is 0.
func ParseRating(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, ",", ".")
	r, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// ParseCount reads a count such as "1,234", "(57)" or "-3"; anything else is 0.
func ParseCount(value string) int {
	value = strings.Trim(strings.TrimSpace(value), "()")
	value = nonCountChars.ReplaceAllString(value, "")
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	return toString(first(m, keys...))
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		return ParseRating(t)
	default:
		return 0
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case float32:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return int(f)
	case string:
		return ParseCount(t)
	default:
		return 0
	}
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "t":
			return true
		}
	}
	return false
}

func toStrings(v any) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		// CSV cells carry candidates separated by whitespace or "|".
		for _, s := range strings.FieldsFunc(t, func(r rune) bool { return r == '|' || r == ' ' || r == '\n' }) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
