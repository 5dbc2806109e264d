package utils

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dcode-github/property_management_system/backend/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

var sortableFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"property_type": true,
}

// ParsePage reads page/limit query params. Missing, non-numeric or
// out-of-range values coerce to the defaults (1/10).
func ParsePage(query url.Values) repository.Page {
	page := parsePositive(query.Get("page"), defaultPage)
	limit := parsePositive(query.Get("limit"), defaultLimit)
	return repository.Page{Number: page, Limit: limit}
}

// ParseSort reads a "field:asc|desc" sort param; anything unrecognized
// falls back to created_at descending.
func ParseSort(query url.Values) repository.Sort {
	raw := query.Get("sort")
	if raw == "" {
		return repository.Sort{Field: "created_at", Desc: true}
	}
	field := raw
	desc := false
	if idx := strings.Index(raw, ":"); idx >= 0 {
		field = raw[:idx]
		desc = strings.EqualFold(raw[idx+1:], "desc")
	}
	if !sortableFields[field] {
		return repository.Sort{Field: "created_at", Desc: true}
	}
	return repository.Sort{Field: field, Desc: desc}
}

func parsePositive(raw string, fallback int64) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
