// Package docpage builds sectioned documentation pages: an ordered section
// registry drives a sidebar with one highlighted entry, and content blocks
// are registered under anchors in the order the page asks for them.
package docpage

// Section is one entry of a page's section registry.
type Section struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}

// Registry is an ordered mapping from section id to display title.
// It is immutable once built.
type Registry struct {
	order  []string
	titles map[string]string
}

// NewRegistry builds a registry in argument order. A repeated id keeps
// the position of its first occurrence and the title of its last.
func NewRegistry(sections ...Section) *Registry {
	r := &Registry{
		order:  make([]string, 0, len(sections)),
		titles: make(map[string]string, len(sections)),
	}
	for _, s := range sections {
		if _, seen := r.titles[s.ID]; !seen {
			r.order = append(r.order, s.ID)
		}
		r.titles[s.ID] = s.Title
	}
	return r
}

// Len returns the number of distinct section ids.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	if r == nil {
		return false
	}
	_, ok := r.titles[id]
	return ok
}

// Title returns the display title for id.
func (r *Registry) Title(id string) (string, bool) {
	if r == nil {
		return "", false
	}
	t, ok := r.titles[id]
	return t, ok
}

// Sections returns the registry in insertion order.
func (r *Registry) Sections() []Section {
	if r == nil {
		return nil
	}
	out := make([]Section, len(r.order))
	for i, id := range r.order {
		out[i] = Section{ID: id, Title: r.titles[id]}
	}
	return out
}
