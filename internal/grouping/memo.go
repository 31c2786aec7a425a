package grouping

import (
	"sync"

	"github.com/resulta/resulta-gateway/internal/model"
)

// Memo caches the most recent grouping keyed by a caller-supplied version
// token (e.g. the upstream fetch timestamp or an ETag). Regrouping the same
// version is a cache hit; a new version replaces the cached entry.
type Memo struct {
	mu      sync.Mutex
	version string
	groups  []model.LevelGroup
}

// NewMemo returns an empty grouping cache.
func NewMemo() *Memo {
	return &Memo{}
}

// Group returns the hierarchy for the given subjects, recomputing only when
// version differs from the cached one. An empty version always recomputes.
func (m *Memo) Group(version string, subjects []model.Subject) []model.LevelGroup {
	if version == "" {
		return Group(subjects)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.version == version && m.groups != nil {
		return m.groups
	}
	m.groups = Group(subjects)
	m.version = version
	return m.groups
}

// Invalidate drops the cached grouping.
func (m *Memo) Invalidate() {
	m.mu.Lock()
	m.version = ""
	m.groups = nil
	m.mu.Unlock()
}
