package settings

import (
	"encoding/json"
	"maps"
	"sort"
)

// Snapshot is a frozen settings mapping. It is never mutated after Load
// returns, so it is safe for concurrent readers.
type Snapshot struct {
	values map[string]string
}

// NewSnapshot copies values into a new Snapshot.
func NewSnapshot(values map[string]string) Snapshot {
	return Snapshot{values: cloneValues(values)}
}

// Get returns the value stored for key.
func (s Snapshot) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len reports the number of keys.
func (s Snapshot) Len() int {
	return len(s.values)
}

// Keys returns the keys in lexical order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying mapping.
func (s Snapshot) Map() map[string]string {
	return cloneValues(s.values)
}

// MarshalJSON encodes the snapshot as a flat object; an empty snapshot is {}.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.values)
}

func cloneValues(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	maps.Copy(out, src)
	return out
}
