package dataset

// Entry is one metadata key/value pair.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metadata holds the key/value pairs extracted from a file's non-tabular
// header region, preserving the order keys were first seen. Setting an
// existing key overwrites its value without moving the key.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata returns an empty metadata map.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// Set stores value under key.
func (m *Metadata) Set(key, value string) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key and whether it exists.
func (m *Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the stored keys in first-seen order.
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns the pairs in first-seen order.
func (m *Metadata) Entries() []Entry {
	out := make([]Entry, len(m.keys))
	for i, k := range m.keys {
		out[i] = Entry{Key: k, Value: m.values[k]}
	}
	return out
}

// Len returns the number of stored keys.
func (m *Metadata) Len() int {
	return len(m.keys)
}
