// Package xref maintains the mapping from cross-reference targets (object
// names like "demo.Spec.resolve(label)") to the page documents that define
// them.
package xref

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
)

// Map is the in-memory object-name to docname mapping for one generation
// run.
type Map struct {
	mu       sync.RWMutex
	docnames map[string]string
}

// NewMap creates an empty cross-reference map.
func NewMap() *Map {
	return &Map{docnames: make(map[string]string)}
}

// Register records the page that defines objectName. Registering the same
// target twice is a hard error: two overloads resolved to the same id, or
// two objects share a name.
func (m *Map) Register(objectName, docname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.docnames[objectName]; ok {
		return apierrors.XrefCollision(objectName, existing)
	}
	m.docnames[objectName] = docname
	return nil
}

// Lookup returns the docname defining objectName.
func (m *Map) Lookup(objectName string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docname, ok := m.docnames[objectName]
	return docname, ok
}

// Targets returns all registered object names, sorted.
func (m *Map) Targets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	targets := make([]string, 0, len(m.docnames))
	for name := range m.docnames {
		targets = append(targets, name)
	}
	sort.Strings(targets)
	return targets
}

// DocHash returns the content hash used to detect unchanged pages across
// runs. It must cover the complete composed page, not just the entry's own
// docstring: parent pages embed member synopses, so a member change has to
// invalidate the parent as well.
func DocHash(content []byte) string {
	h := sha256.New()
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
