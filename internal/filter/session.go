package filter

// Session holds one screen's live filter state and applies the interaction
// rules that every listing shares: toggling sort on the same field flips
// direction, picking a new field resets to ascending, and any search or
// facet change snaps back to page one.
//
// The gateway's own handlers are stateless and rebuild a Spec per request;
// Session is for embedding callers that keep a screen's state server-side
// between interactions.
type Session struct {
	spec Spec
}

// NewSession starts a session on page one with the given page size.
func NewSession(pageSize int) *Session {
	return &Session{spec: Spec{
		Facets:   make(map[string]string),
		Page:     1,
		PageSize: pageSize,
	}}
}

// Spec returns a copy of the current filter state.
func (s *Session) Spec() Spec {
	spec := s.spec
	facets := make(map[string]string, len(spec.Facets))
	for k, v := range spec.Facets {
		facets[k] = v
	}
	spec.Facets = facets
	return spec
}

// SetSearch replaces the search text and resets to page one.
func (s *Session) SetSearch(text string) {
	s.spec.Search = text
	s.spec.Page = 1
}

// SetFacet sets one facet value and resets to page one.
func (s *Session) SetFacet(name, value string) {
	s.spec.Facets[name] = value
	s.spec.Page = 1
}

// ToggleSort sorts by field. Repeated calls on the same field cycle
// asc -> desc -> asc; a different field starts ascending again.
func (s *Session) ToggleSort(field string) {
	if s.spec.Sort.Field == field && s.spec.Sort.Direction == Asc {
		s.spec.Sort.Direction = Desc
		return
	}
	s.spec.Sort = Sort{Field: field, Direction: Asc}
}

// SetPage moves to the given page. Out-of-range values are left to the
// engine, which returns an empty page rather than failing.
func (s *Session) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.spec.Page = page
}
