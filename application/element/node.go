// Package element wires declared page objects, widgets and elements: it
// instantiates child fields, resolves their locators, copies their names and
// links every child to the composite that declares it.
package element

import (
	"fmt"

	"ui_automation/application/steps"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Node is implemented by every type embedding Element.
type Node interface {
	entities.MetadataHolder
	Handle() interfaces.Handle
	Resolve() (interfaces.Handle, error)
	base() *Element
}

// Element is the base of every wired UI element. Embed it (directly or via
// Page or Widget) to make a type wireable.
type Element struct {
	meta    entities.Metadata
	spec    entities.LocatorSpec
	chained bool

	handle  interfaces.Handle
	pending func() (interfaces.Handle, error)

	wirer  *Wirer
	runner *steps.Runner
	policy wait.Policy
}

func (e *Element) base() *Element { return e }

// Meta returns the element's metadata record.
func (e *Element) Meta() *entities.Metadata { return &e.meta }

// Name returns the display name.
func (e *Element) Name() string { return e.meta.Name }

// Description returns the declared description.
func (e *Element) Description() string { return e.meta.Description }

// ElementType returns the reporting type tag.
func (e *Element) ElementType() string { return e.meta.ElementType }

// Parent returns the enclosing composite, nil for page roots.
func (e *Element) Parent() entities.MetadataHolder { return e.meta.Parent }

// Locator returns the committed locator spec.
func (e *Element) Locator() entities.LocatorSpec { return e.spec }

// IsChained reports whether the locator is relative to the parent's root.
func (e *Element) IsChained() bool { return e.chained }

// IsBound reports whether the handle has been resolved.
func (e *Element) IsBound() bool { return e.handle != nil }

// Wirer returns the wirer that wired this element, nil before wiring.
func (e *Element) Wirer() *Wirer { return e.wirer }

// Handle returns the resolved handle, resolving a deferred chained locator
// on first use. It returns nil when resolution is not possible yet.
func (e *Element) Handle() interfaces.Handle {
	h, _ := e.Resolve()
	return h
}

// Resolve is Handle with the resolution error.
func (e *Element) Resolve() (interfaces.Handle, error) {
	if e.handle != nil {
		return e.handle, nil
	}
	if e.pending == nil {
		return nil, fmt.Errorf("%q: %w", e.meta.Name, entities.ErrNotWired)
	}
	h, err := e.pending()
	if err != nil {
		return nil, fmt.Errorf("%q: %w", e.meta.Name, err)
	}
	e.handle = h
	e.pending = nil
	return h, nil
}

// BindRoot binds h as the element's root when it has none yet. It reports
// whether h was taken; a bound element is never rebound.
func (e *Element) BindRoot(h interfaces.Handle) bool {
	if e.handle != nil || h == nil {
		return false
	}
	e.handle = h
	e.pending = nil
	return true
}

func (e *Element) commit(spec entities.LocatorSpec, chained bool, h interfaces.Handle) {
	e.spec = spec
	e.chained = chained
	e.handle = h
	e.pending = nil
}

func (e *Element) deferResolve(spec entities.LocatorSpec, resolve func() (interfaces.Handle, error)) {
	e.spec = spec
	e.chained = true
	e.pending = resolve
}

// canParent reports whether owner may become the parent without changing
// anything.
func (e *Element) canParent(owner entities.MetadataHolder) error {
	if e.meta.Parent == nil || e.meta.Parent == owner {
		return nil
	}
	return fmt.Errorf("%w: %q already belongs to %q", entities.ErrAlreadyParented, e.meta.Name, e.meta.ParentName())
}

func (e *Element) setParent(owner entities.MetadataHolder) error {
	if err := e.canParent(owner); err != nil {
		return err
	}
	e.meta.Parent = owner
	return nil
}

func (e *Element) attach(w *Wirer) {
	e.wirer = w
	e.runner = w.runner
	e.policy = w.policy
}

// String describes the element for messages.
func (e *Element) String() string {
	switch {
	case e.handle != nil:
		return fmt.Sprintf("%s %q [%s]", e.meta.ElementType, e.meta.Name, e.handle.Describe())
	case !e.spec.IsEmpty():
		return fmt.Sprintf("%s %q [%s, unresolved]", e.meta.ElementType, e.meta.Name, e.spec)
	default:
		return fmt.Sprintf("%s %q", e.meta.ElementType, e.meta.Name)
	}
}
