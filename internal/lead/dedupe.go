package lead

import (
	"strings"

	"github.com/Jainprashuk/LeadLens/internal/urlutil"
)

// Key identifies a business across result pages: name plus address (or maps
// URL when the address is missing) plus category. Records without a name have
// no key.
func Key(r Record) string {
	name := strings.ToLower(strings.TrimSpace(r.BusinessName))
	if name == "" {
		return ""
	}
	address := strings.ToLower(strings.TrimSpace(r.Address))
	if address == "" {
		address = strings.ToLower(strings.TrimSpace(r.MapsURL))
	}
	cat := strings.ToLower(strings.TrimSpace(r.Category))
	return name + "|" + address + "|" + cat
}

// Dedupe drops unnamed records and folds duplicates into the first
// occurrence, filling its empty fields from later copies. Order is kept.
func Dedupe(records []Record) []Record {
	index := make(map[string]int, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key := Key(r)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			out[i] = merge(out[i], r)
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out
}

func merge(a, b Record) Record {
	if a.Address == "" {
		a.Address = b.Address
	}
	if a.Category == "" {
		a.Category = b.Category
	}
	if a.Rating == 0 && b.Rating != 0 {
		a.Rating = b.Rating
	}
	if a.Reviews == 0 && b.Reviews != 0 {
		a.Reviews = b.Reviews
	}
	if a.Photos == 0 && b.Photos != 0 {
		a.Photos = b.Photos
	}
	if a.MapsURL == "" {
		a.MapsURL = b.MapsURL
	}
	if a.Website == "" {
		a.Website = b.Website
	}
	if a.Phone == "" {
		a.Phone = b.Phone
	}
	a.HasWebsite = a.HasWebsite || b.HasWebsite
	a.Candidates = appendUnique(a.Candidates, b.Candidates...)
	return a
}

// ResolveWebsite fills Website from the record's candidates when it is empty
// or unusable: each candidate is unwrapped from provider redirects and the
// first acceptable link wins. HasWebsite is a listing input and is left as is.
func ResolveWebsite(r Record) Record {
	if r.Website != "" {
		resolved := urlutil.ResolveRedirectTarget(r.Website)
		if urlutil.IsAcceptableWebsiteLink(resolved) {
			r.Website = resolved
			return r
		}
	}
	for _, c := range r.Candidates {
		resolved := urlutil.ResolveRedirectTarget(c)
		if urlutil.IsAcceptableWebsiteLink(resolved) {
			r.Website = resolved
			return r
		}
	}
	return r
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range dst {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}
