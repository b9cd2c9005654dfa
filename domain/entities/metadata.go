package entities

// NameStrategy says where an element's display name came from.
type NameStrategy int

const (
	// NameFromField falls back to the declaring field name.
	NameFromField NameStrategy = iota
	// NameExplicit is a name given in the field declaration.
	NameExplicit
	// NameFromText resolves the name from the element's text when a step is reported.
	NameFromText
)

func (s NameStrategy) String() string {
	switch s {
	case NameExplicit:
		return "explicit"
	case NameFromText:
		return "text"
	default:
		return "field"
	}
}

// MetadataHolder is anything carrying element metadata.
type MetadataHolder interface {
	Meta() *Metadata
}

// Metadata describes one declared UI element for reporting.
type Metadata struct {
	Name         string
	Description  string
	ElementType  string
	Parent       MetadataHolder
	NameStrategy NameStrategy
}

// ParentName returns the parent's display name, or "" for roots.
func (m *Metadata) ParentName() string {
	if m == nil || m.Parent == nil {
		return ""
	}
	return m.Parent.Meta().Name
}

// Path joins the names from the root down to this element.
func (m *Metadata) Path() string {
	if m == nil {
		return ""
	}
	if m.Parent == nil {
		return m.Name
	}
	parent := m.Parent.Meta().Path()
	if parent == "" {
		return m.Name
	}
	return parent + " > " + m.Name
}
