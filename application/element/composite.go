package element

// Element type tags used when a field declaration does not set one.
const (
	TypePage    = "page"
	TypeWidget  = "widget"
	TypeElement = "element"
	TypeList    = "list"
)

// Composite is a node that declares child fields.
type Composite interface {
	Node
	Fields() []Field
}

// PageObject is a composite that is a page root. Page objects are never
// declared inside another composite.
type PageObject interface {
	Composite
	pageObject()
}

// Page is embedded by page objects. Its root is the document root.
type Page struct {
	Element
}

func (*Page) pageObject() {}

// Widget is embedded by composites nested in pages or other widgets. Its
// root comes from the locator of the field that declares it.
type Widget struct {
	Element
}

func (*Widget) widget() {}

type widgetKind interface {
	widget()
}

func defaultType(n Node) string {
	switch n.(type) {
	case PageObject:
		return TypePage
	case widgetKind:
		return TypeWidget
	case Composite:
		return TypeWidget
	default:
		return TypeElement
	}
}

// Children returns the currently assigned child nodes of c in declaration order.
func Children(c Composite) []Node {
	var out []Node
	for _, f := range c.Fields() {
		if n := f.get(); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Walk visits c and its descendants depth first. Field is the declaring
// field name, empty for c itself.
func Walk(c Composite, fn func(depth int, field string, n Node)) {
	var walk func(depth int, field string, n Node)
	walk = func(depth int, field string, n Node) {
		fn(depth, field, n)
		comp, ok := n.(Composite)
		if !ok {
			return
		}
		for _, f := range comp.Fields() {
			if child := f.get(); child != nil {
				walk(depth+1, f.name, child)
			}
		}
	}
	walk(0, "", c)
}
