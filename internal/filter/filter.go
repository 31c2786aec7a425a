// Package filter is the shared faceted filter/sort/paginate pipeline used by
// every listing screen. Screens declare which fields are searchable and which
// facets exist; the engine itself knows nothing about any record shape.
package filter

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"
)

// FacetAll is the sentinel facet value meaning "no constraint".
const FacetAll = "all"

// FacetMe is the sentinel value on a user-scoped facet meaning "records
// belonging to the current user". It is resolved to a concrete identity
// before matching, never inside the generic predicate.
const FacetMe = "me"

// Direction of a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort names a field path and a direction.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Spec is one screen's current filter state. It lives for the session only
// and is never persisted.
type Spec struct {
	Search   string            `json:"search"`
	Facets   map[string]string `json:"facets"`
	Sort     Sort              `json:"sort"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// Schema declares, per screen, which fields the engine may touch. Paths are
// dotted and resolved against the record's exported fields by json tag or
// field name. Unknown paths are ignored at match time, not rejected.
type Schema struct {
	// SearchFields are matched case-insensitively as substrings.
	SearchFields []string
	// Facets maps a facet name to the field path it constrains exactly.
	Facets map[string]string
	// UserFacet names the facet whose "me" value resolves to the caller.
	UserFacet string
}

// Result is one page of a filtered listing.
type Result[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ResolveMe returns a copy of spec with the user-scoped facet's "me" value
// replaced by the caller's canonical identity. Specs without a "me" value
// pass through unchanged.
func (s Schema) ResolveMe(spec Spec, userKey string) Spec {
	if s.UserFacet == "" || spec.Facets[s.UserFacet] != FacetMe {
		return spec
	}
	facets := make(map[string]string, len(spec.Facets))
	for k, v := range spec.Facets {
		facets[k] = v
	}
	facets[s.UserFacet] = userKey
	spec.Facets = facets
	return spec
}

// Apply runs the full pipeline: text search, AND-composed facets, stable
// sort, then pagination. Malformed spec values (unknown facet, unknown sort
// field, out-of-range page) degrade to no-ops; Apply never fails.
func Apply[T any](records []T, schema Schema, spec Spec) Result[T] {
	matched := make([]T, 0, len(records))
	search := strings.ToLower(strings.TrimSpace(spec.Search))

	for _, rec := range records {
		if !matchesSearch(rec, schema.SearchFields, search) {
			continue
		}
		if !matchesFacets(rec, schema.Facets, spec.Facets) {
			continue
		}
		matched = append(matched, rec)
	}

	sortRecords(matched, spec.Sort)

	total := len(matched)
	items, totalPages := paginate(matched, spec.Page, spec.PageSize)
	return Result[T]{Items: items, Total: total, TotalPages: totalPages}
}

func matchesSearch[T any](rec T, fields []string, search string) bool {
	if search == "" {
		return true
	}
	for _, path := range fields {
		val, ok := resolveString(rec, path)
		if ok && strings.Contains(strings.ToLower(val), search) {
			return true
		}
	}
	return false
}

func matchesFacets[T any](rec T, declared map[string]string, active map[string]string) bool {
	for name, want := range active {
		if want == "" || want == FacetAll {
			continue
		}
		path, ok := declared[name]
		if !ok {
			// Stale facet from an older screen version: ignore.
			continue
		}
		got, ok := resolveString(rec, path)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// sortRecords orders records in place. SliceStable keeps ties in input
// order so pagination stays deterministic across repeated calls.
func sortRecords[T any](records []T, s Sort) {
	if s.Field == "" {
		return
	}
	desc := s.Direction == Desc
	sort.SliceStable(records, func(i, j int) bool {
		c := compareField(records[i], records[j], s.Field)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func paginate[T any](records []T, page, pageSize int) ([]T, int) {
	total := len(records)
	if pageSize <= 0 {
		return records, 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []T{}, totalPages
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return records[start:end], totalPages
}

// ────────────────────────────────────────────────────────────────────────────
// Field path resolution
// ────────────────────────────────────────────────────────────────────────────

// resolveString resolves a dotted path to its string form for matching.
func resolveString(rec any, path string) (string, bool) {
	v, ok := resolvePath(reflect.ValueOf(rec), path)
	if !ok {
		return "", false
	}
	if t, isTime := timeValue(v); isTime {
		return t.Format(time.RFC3339), true
	}
	return fmt.Sprint(v.Interface()), true
}

// resolvePath walks a dotted path through exported struct fields, matching
// each segment against the json tag first and the field name second
// (case-insensitive). Pointers are dereferenced along the way.
func resolvePath(v reflect.Value, path string) (reflect.Value, bool) {
	for _, seg := range strings.Split(path, ".") {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		field, ok := findField(v, seg)
		if !ok {
			return reflect.Value{}, false
		}
		v = field
	}
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, true
}

func findField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == name || strings.EqualFold(f.Name, name) {
			return v.Field(i), true
		}
	}
	// Fields promoted from anonymous embedded structs.
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		fv := v.Field(i)
		for fv.Kind() == reflect.Pointer && !fv.IsNil() {
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.Struct {
			if got, ok := findField(fv, name); ok {
				return got, true
			}
		}
	}
	return reflect.Value{}, false
}

// compareField compares two records on one field path: numerics compare
// numerically, times as timestamps, everything else as case-sensitive
// strings. Unresolvable fields compare equal so an unknown sort field is a
// no-op rather than an error.
func compareField(a, b any, path string) int {
	av, aok := resolvePath(reflect.ValueOf(a), path)
	bv, bok := resolvePath(reflect.ValueOf(b), path)
	if !aok || !bok {
		return 0
	}

	if at, ok := timeValue(av); ok {
		if bt, ok := timeValue(bv); ok {
			return at.Compare(bt)
		}
		return 0
	}

	if an, ok := numericValue(av); ok {
		if bn, ok := numericValue(bv); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
		return 0
	}

	return strings.Compare(fmt.Sprint(av.Interface()), fmt.Sprint(bv.Interface()))
}

func timeValue(v reflect.Value) (time.Time, bool) {
	if v.Type() == reflect.TypeOf(time.Time{}) {
		return v.Interface().(time.Time), true
	}
	return time.Time{}, false
}

func numericValue(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}
