package definition

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ui_automation/application/element"
	"ui_automation/application/list"
	"ui_automation/domain/interfaces"
)

// Elem is a plain element field.
type Elem struct {
	element.Element
}

// slots holds a composite's field registry and accessors by field name.
type slots struct {
	fields []element.Field
	nodes  map[string]func() element.Node
	order  []string
}

func (s *slots) lookup(name string) (element.Node, bool) {
	get, ok := s.nodes[name]
	if !ok {
		return nil, false
	}
	n := get()
	return n, n != nil
}

// Page is a page object built from a Document.
type Page struct {
	element.Page
	slots
	doc *Document
}

// Fields returns the field registry built from the document.
func (p *Page) Fields() []element.Field { return p.fields }

// Document returns the definition the page was built from.
func (p *Page) Document() *Document { return p.doc }

// URL returns the page address from the definition.
func (p *Page) URL() string { return p.doc.URL }

// FieldNames returns the top-level field names in declaration order.
func (p *Page) FieldNames() []string { return append([]string(nil), p.order...) }

// Lookup returns the node at a dotted field path such as "header.search".
// Paths descend through widget fields only.
func (p *Page) Lookup(path string) (element.Node, error) {
	parts := strings.Split(path, ".")
	current := &p.slots
	for i, part := range parts {
		n, ok := current.lookup(part)
		if !ok {
			return nil, fmt.Errorf("no field %q in %s", part, strings.Join(append([]string{p.Name()}, parts[:i]...), "."))
		}
		if i == len(parts)-1 {
			return n, nil
		}
		w, ok := n.(*Widget)
		if !ok {
			return nil, fmt.Errorf("field %q is not a widget", strings.Join(parts[:i+1], "."))
		}
		current = &w.slots
	}
	return nil, fmt.Errorf("empty field path")
}

// Widget is a widget built from a WidgetDef. It is also a list item.
type Widget struct {
	element.Widget
	slots
	typeName string
	identity string
}

// Fields returns the field registry built from the widget type.
func (w *Widget) Fields() []element.Field { return w.fields }

// TypeName returns the widget type name from the document.
func (w *Widget) TypeName() string { return w.typeName }

// Child returns a direct child by field name.
func (w *Widget) Child(name string) (element.Node, bool) { return w.lookup(name) }

// ID returns the text of the identity field, or the widget's own text when
// the type declares none.
func (w *Widget) ID(ctx context.Context) (string, error) {
	if w.identity == "" {
		return w.Text(ctx)
	}
	n, ok := w.lookup(w.identity)
	if !ok {
		return "", fmt.Errorf("%s: identity field %q is not set", w.Name(), w.identity)
	}
	return n.(*Elem).Text(ctx)
}

// Build checks doc and wires a page built from it.
func Build(w *element.Wirer, doc *Document) (*Page, error) {
	if err := doc.check(); err != nil {
		return nil, err
	}
	b := &builder{doc: doc}
	return element.New(w, func() *Page {
		p := &Page{doc: doc, slots: b.slots(doc.Fields)}
		p.Meta().Name = doc.Name
		return p
	})
}

type builder struct {
	doc *Document
}

func (b *builder) widget(typeName string) *Widget {
	def := b.doc.Widgets[typeName]
	return &Widget{
		slots:    b.slots(def.Fields),
		typeName: typeName,
		identity: def.Identity,
	}
}

func (b *builder) slots(defs []FieldDef) slots {
	s := slots{nodes: make(map[string]func() element.Node, len(defs))}
	for _, def := range defs {
		var f element.Field
		var get func() element.Node

		switch def.kind() {
		case KindWidget:
			ptr := new(*Widget)
			typeName := def.Widget
			f = element.Child(def.Field, ptr, func() *Widget { return b.widget(typeName) }, def.options()...)
			get = func() element.Node { return nodeOf(*ptr) }
		case KindList:
			ptr := new(*list.List[*Widget])
			item := def.Item
			f = list.Of(def.Field, ptr, func(interfaces.Handle) *Widget { return b.widget(item) }, def.options()...)
			get = func() element.Node { return nodeOf(*ptr) }
		default:
			ptr := new(*Elem)
			f = element.Child(def.Field, ptr, func() *Elem { return &Elem{} }, def.options()...)
			get = func() element.Node { return nodeOf(*ptr) }
		}

		s.fields = append(s.fields, f)
		s.nodes[def.Field] = get
		s.order = append(s.order, def.Field)
	}
	return s
}

func nodeOf[T any, P interface {
	*T
	element.Node
}](p P) element.Node {
	if p == nil {
		return nil
	}
	return p
}

func (f FieldDef) options() []element.Option {
	var opts []element.Option
	if f.Find != nil {
		opts = append(opts, element.FindBy(*f.Find))
	}
	if f.Chained != nil {
		opts = append(opts, element.ChainedBy(*f.Chained))
	}
	if f.Name != "" || f.Description != "" {
		opts = append(opts, element.Named(f.Name, f.Description))
	}
	if f.Type != "" {
		opts = append(opts, element.Typed(f.Type))
	}
	if f.NameFromText {
		opts = append(opts, element.NameFromText())
	}
	return opts
}

// WidgetTypes returns the declared widget type names, sorted.
func (d *Document) WidgetTypes() []string {
	names := make([]string, 0, len(d.Widgets))
	for name := range d.Widgets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
