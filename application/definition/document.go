// Package definition builds page objects from YAML documents instead of Go
// types. A document declares the page's fields and the widget types its
// widget and list fields use.
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"ui_automation/domain/entities"
)

// Field kinds.
const (
	KindElement = "element"
	KindWidget  = "widget"
	KindList    = "list"
)

// Document is a parsed page definition.
type Document struct {
	Name    string               `yaml:"name"`
	URL     string               `yaml:"url"`
	Widgets map[string]WidgetDef `yaml:"widgets"`
	Fields  []FieldDef           `yaml:"fields"`
}

// WidgetDef is a reusable widget type. Identity names the child field whose
// text identifies the widget when it is a list item.
type WidgetDef struct {
	Identity string     `yaml:"identity"`
	Fields   []FieldDef `yaml:"fields"`
}

// FieldDef declares one field.
type FieldDef struct {
	Field        string                `yaml:"field"`
	Name         string                `yaml:"name"`
	Description  string                `yaml:"description"`
	Type         string                `yaml:"type"`
	Kind         string                `yaml:"kind"`
	NameFromText bool                  `yaml:"name_from_text"`
	Find         *entities.LocatorSpec `yaml:"find"`
	Chained      *entities.LocatorSpec `yaml:"chained"`
	Widget       string                `yaml:"widget"`
	Item         string                `yaml:"item"`
}

func (f FieldDef) kind() string {
	if f.Kind == "" {
		return KindElement
	}
	return f.Kind
}

// Parse decodes a document, rejecting unknown keys.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty page definition")
		}
		return nil, fmt.Errorf("failed to parse page definition: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("page definition has no name")
	}
	return &doc, nil
}

// ParseBytes is Parse over data.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// check validates field kinds and widget references before anything is built.
func (d *Document) check() error {
	if err := d.checkFields(d.Name, d.Fields); err != nil {
		return err
	}
	for name, w := range d.Widgets {
		if err := d.checkFields(name, w.Fields); err != nil {
			return err
		}
		if w.Identity != "" && !hasField(w.Fields, w.Identity, KindElement) {
			return entities.NewWiringError(name, w.Identity,
				fmt.Errorf("%w: identity must name an element field", entities.ErrListElementNotValid))
		}
		if err := d.checkCycle(name, nil); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) checkFields(owner string, fields []FieldDef) error {
	seen := make(map[string]bool)
	for _, f := range fields {
		if f.Field == "" {
			return fmt.Errorf("%s: field without a name", owner)
		}
		if seen[f.Field] {
			return fmt.Errorf("%s: duplicate field %q", owner, f.Field)
		}
		seen[f.Field] = true

		switch f.kind() {
		case KindElement:
		case KindWidget:
			if _, ok := d.Widgets[f.Widget]; !ok {
				return entities.NewWiringError(owner, f.Field, fmt.Errorf("unknown widget type %q", f.Widget))
			}
		case KindList:
			if f.Item == "" {
				return entities.NewWiringError(owner, f.Field,
					fmt.Errorf("%w: list declares no item type", entities.ErrListComponentType))
			}
			if _, ok := d.Widgets[f.Item]; !ok {
				return entities.NewWiringError(owner, f.Field,
					fmt.Errorf("%w: unknown item type %q", entities.ErrListComponentType, f.Item))
			}
		default:
			return entities.NewWiringError(owner, f.Field, fmt.Errorf("unknown field kind %q", f.Kind))
		}
	}
	return nil
}

// checkCycle rejects widget types that contain themselves through widget
// fields. List items are built lazily and may nest freely.
func (d *Document) checkCycle(name string, path []string) error {
	for _, p := range path {
		if p == name {
			return fmt.Errorf("widget type %q contains itself: %v", name, append(path, name))
		}
	}
	path = append(path, name)
	for _, f := range d.Widgets[name].Fields {
		if f.kind() != KindWidget {
			continue
		}
		if err := d.checkCycle(f.Widget, path); err != nil {
			return err
		}
	}
	return nil
}

func hasField(fields []FieldDef, name, kind string) bool {
	for _, f := range fields {
		if f.Field == name && f.kind() == kind {
			return true
		}
	}
	return false
}
