package loader

// DefSummary is a flat, serializable view of one declared definition.
type DefSummary struct {
	Category  string `json:"category" yaml:"category"`
	Name      string `json:"name" yaml:"name"`
	Key       string `json:"key,omitempty" yaml:"key,omitempty"`
	Extension bool   `json:"extension,omitempty" yaml:"extension,omitempty"`
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	Col       int    `json:"col,omitempty" yaml:"col,omitempty"`
}

// Summary lists the spec's definitions in declaration order.  Extensions are
// reported under their base name with the storage key alongside.
func (s *Spec) Summary() []DefSummary {
	out := make([]DefSummary, 0, len(s.Order))
	for _, tag := range s.Order {
		key := tag.Name.Name
		item := DefSummary{
			Category: tag.Category.Label(),
			Name:     tag.Base(),
			File:     tag.Name.Loc.File,
			Line:     tag.Name.Loc.Line,
			Col:      tag.Name.Loc.Col,
		}
		if tag.Extension {
			item.Key = key
			item.Extension = true
		}
		out = append(out, item)
	}
	return out
}
