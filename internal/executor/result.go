package executor

import (
	"bytes"
	"encoding/json"
	"sort"
	"sync"

	language "github.com/quivergql/quiver/internal/language"
)

// Path locates a field in the response tree: response keys for object
// fields, indexes for list elements.
type Path []PathElement

type PathElement any

// GraphQLError is a located field or request error.
type GraphQLError struct {
	Message    string              `json:"message"`
	Locations  []language.Location `json:"locations,omitempty"`
	Path       Path                `json:"path,omitempty"`
	Extensions map[string]any      `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string { return e.Message }

// ExecutionResult is the assembled response: the data tree plus the
// collected errors. Data is nil when a request error prevented execution or
// a non-null violation reached the root; HasData distinguishes the two, since
// only the latter produces an explicit null in the response.
type ExecutionResult struct {
	Data    any            `json:"data"`
	Errors  []GraphQLError `json:"errors,omitempty"`
	HasData bool           `json:"-"`
}

// OrderedMap is a response object that preserves field collection order
// when serialized, which plain Go maps cannot.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]any)}
}

// Set stores a value under key. The key keeps its original position when
// set again.
func (m *OrderedMap) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string { return m.keys }

// MarshalJSON writes the fields in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// errorCollector is the per-request, append-only error sink. Appends from
// concurrent resolver branches are serialized by the mutex; ordering is
// restored deterministically at assembly time.
type errorCollector struct {
	mu   sync.Mutex
	errs []GraphQLError
}

func newErrorCollector() *errorCollector {
	return &errorCollector{}
}

func (c *errorCollector) add(err GraphQLError) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

// take returns the collected errors ordered by response path, making the
// final error order deterministic regardless of resolver completion order.
func (c *errorCollector) take() []GraphQLError {
	c.mu.Lock()
	errs := c.errs
	c.errs = nil
	c.mu.Unlock()
	sort.SliceStable(errs, func(i, j int) bool {
		return pathLess(errs[i].Path, errs[j].Path)
	})
	return errs
}

// pathLess orders paths element-wise: indexes numerically, keys
// lexicographically, indexes before keys, shorter prefixes first.
func pathLess(a, b Path) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		ai, aIsInt := a[i].(int)
		bi, bIsInt := b[i].(int)
		switch {
		case aIsInt && bIsInt:
			if ai != bi {
				return ai < bi
			}
		case aIsInt:
			return true
		case bIsInt:
			return false
		default:
			as, bs := a[i].(string), b[i].(string)
			if as != bs {
				return as < bs
			}
		}
	}
	return len(a) < len(b)
}

func appendPath(path Path, elem PathElement) Path {
	next := make(Path, len(path)+1)
	copy(next, path)
	next[len(path)] = elem
	return next
}
