package element

import (
	"ui_automation/domain/entities"
)

// Field is one entry of a composite's field registry: where the child lives,
// how to construct it, and its declared metadata and locator.
type Field struct {
	name string

	display      string
	description  string
	elementType  string
	nameFromText bool

	find    *entities.LocatorSpec
	chained *entities.LocatorSpec

	get       func() Node
	construct func() Node
	validate  func() error
	pageTyped bool
}

// Option configures a field declaration.
type Option func(*Field)

// Child declares the field stored at ptr. ctor builds the child when the
// field is unset at wiring time; it may be nil for fields assigned by hand.
func Child[T any, P interface {
	*T
	Node
}](field string, ptr *P, ctor func() P, opts ...Option) Field {
	var zero P
	_, page := any(zero).(PageObject)

	f := Field{
		name:      field,
		pageTyped: page,
		get: func() Node {
			if *ptr == nil {
				return nil
			}
			return *ptr
		},
	}
	if ctor != nil {
		f.construct = func() Node {
			v := ctor()
			*ptr = v
			if v == nil {
				return nil
			}
			return v
		}
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Name returns the declaring field name.
func (f Field) Name() string { return f.name }

// HasLocator reports whether the field declares a literal or chained locator.
func (f Field) HasLocator() bool { return f.find != nil || f.chained != nil }

// Locators returns the declared literal and chained locators, nil when unset.
func (f Field) Locators() (find, chained *entities.LocatorSpec) { return f.find, f.chained }

// With returns a copy of f with opts applied.
func (f Field) With(opts ...Option) Field {
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// FindBy sets a literal locator resolved from the document root.
func FindBy(spec entities.LocatorSpec) Option {
	return func(f *Field) { f.find = &spec }
}

// ChainedBy sets a locator resolved inside the declaring composite's root.
func ChainedBy(spec entities.LocatorSpec) Option {
	return func(f *Field) { f.chained = &spec }
}

func ID(id string) Option           { return FindBy(entities.LocatorSpec{ID: id}) }
func CSS(css string) Option         { return FindBy(entities.LocatorSpec{CSS: css}) }
func XPath(xpath string) Option     { return FindBy(entities.LocatorSpec{XPath: xpath}) }
func ClassName(class string) Option { return FindBy(entities.LocatorSpec{ClassName: class}) }

func ChainedID(id string) Option           { return ChainedBy(entities.LocatorSpec{ID: id}) }
func ChainedCSS(css string) Option         { return ChainedBy(entities.LocatorSpec{CSS: css}) }
func ChainedXPath(xpath string) Option     { return ChainedBy(entities.LocatorSpec{XPath: xpath}) }
func ChainedClassName(class string) Option { return ChainedBy(entities.LocatorSpec{ClassName: class}) }

// Named sets the display name and, when non-blank, the description.
func Named(name, description string) Option {
	return func(f *Field) {
		f.display = name
		f.description = description
	}
}

// Typed sets the element type tag used in step names.
func Typed(elementType string) Option {
	return func(f *Field) { f.elementType = elementType }
}

// NameFromText reports the element under its current text.
func NameFromText() Option {
	return func(f *Field) { f.nameFromText = true }
}

// Validate adds a check run before any locator is resolved, whether or not
// the field is set; a failure aborts wiring.
func Validate(fn func() error) Option {
	return func(f *Field) { f.validate = fn }
}
