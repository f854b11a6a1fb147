package component

// Tags is a set of string labels used by raycast filters.
type Tags struct {
	names map[string]struct{}
}

// NewTags builds a tag set.
func NewTags(names ...string) *Tags {
	t := &Tags{names: make(map[string]struct{}, len(names))}
	t.Add(names...)
	return t
}

// Add inserts labels, ignoring empties.
func (t *Tags) Add(names ...string) {
	if t == nil {
		return
	}
	if t.names == nil {
		t.names = make(map[string]struct{}, len(names))
	}
	for _, n := range names {
		if n == "" {
			continue
		}
		t.names[n] = struct{}{}
	}
}

// Remove deletes labels.
func (t *Tags) Remove(names ...string) {
	if t == nil {
		return
	}
	for _, n := range names {
		delete(t.names, n)
	}
}

// Has reports whether any of the given labels is present.
func (t *Tags) Has(names ...string) bool {
	if t == nil {
		return false
	}
	for _, n := range names {
		if _, ok := t.names[n]; ok {
			return true
		}
	}
	return false
}

// Match evaluates a tag query: outer terms are OR-combined, the labels
// inside one term are AND-combined. An empty query matches everything.
func (t *Tags) Match(query [][]string) bool {
	if len(query) == 0 {
		return true
	}
	if t == nil {
		return false
	}
	for _, term := range query {
		if len(term) == 0 {
			continue
		}
		all := true
		for _, n := range term {
			if _, ok := t.names[n]; !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// Len returns the number of labels.
func (t *Tags) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

var TagsComponent = New[*Tags]()
