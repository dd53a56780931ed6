package models

// Header is the KEY = VALUE label of a PDS3 product, kept in the order
// the keys first appeared in the file.
type Header struct {
	keys   []string
	values map[string]string
}

// NewHeader creates an empty header
func NewHeader() *Header {
	return &Header{
		values: make(map[string]string),
	}
}

// Set stores value under key. A key that is already present keeps its
// original position and takes the new value.
func (h *Header) Set(key, value string) {
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Get returns the value stored under key
func (h *Header) Get(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

// Keys returns the keys in header order
func (h *Header) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Len returns the number of distinct keys
func (h *Header) Len() int {
	return len(h.keys)
}

// Each calls fn for every entry in header order
func (h *Header) Each(fn func(key, value string)) {
	for _, k := range h.keys {
		fn(k, h.values[k])
	}
}
