// Package list binds homogeneous element collections. A List re-reads its
// source collection before every operation and rebuilds its typed items.
package list

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ui_automation/application/element"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Item is one component of a list. ID returns the identity used for lookups.
type Item interface {
	element.Node
	ID(ctx context.Context) (string, error)
}

// List is a live collection of items built from the handles its locator
// matches. A filtered list is built from a fixed set of root handles instead.
type List[T Item] struct {
	element.Element

	newItem  func(interfaces.Handle) T
	filtered bool
	snapshot []interfaces.Handle

	items []T
	roots []interfaces.Handle
}

// New creates an unwired list whose items are built with newItem.
func New[T Item](newItem func(interfaces.Handle) T) *List[T] {
	return &List[T]{newItem: newItem}
}

// Of declares a list field stored at ptr. A literal or chained locator
// selects the item roots; declaring more than one strategy, or no item
// constructor, fails wiring.
func Of[T Item](field string, ptr **List[T], newItem func(interfaces.Handle) T, opts ...element.Option) element.Field {
	ctor := func() *List[T] { return New(newItem) }
	opts = append([]element.Option{element.Typed(element.TypeList)}, opts...)

	f := element.Child(field, ptr, ctor, opts...)
	find, chained := f.Locators()

	return f.With(element.Validate(func() error {
		if l := *ptr; l != nil && l.newItem == nil {
			return fmt.Errorf("%w: no constructor for items of type %s", entities.ErrListElementNotValid, itemType[T]())
		}
		for _, spec := range []*entities.LocatorSpec{find, chained} {
			if spec != nil && len(spec.Strategies()) > 1 {
				return fmt.Errorf("%w: list locator %s", entities.ErrConflictingLocator, spec)
			}
		}
		return nil
	}))
}

func itemType[T Item]() string {
	var zero T
	return strings.TrimLeft(fmt.Sprintf("%T", zero), "*")
}

// IsFiltered reports whether the list is built from a fixed root snapshot.
func (l *List[T]) IsFiltered() bool { return l.filtered }

// Cached returns the items built by the last operation without re-reading
// the source collection.
func (l *List[T]) Cached() []T { return l.items }

// rebuild re-reads the source collection and rebuilds every item.
func (l *List[T]) rebuild(ctx context.Context) ([]T, error) {
	w := l.Wirer()
	if w == nil {
		return nil, fmt.Errorf("list %q: %w", l.Name(), entities.ErrNotWired)
	}
	if l.newItem == nil {
		return nil, fmt.Errorf("list %q: %w", l.Name(), entities.ErrListElementNotValid)
	}

	roots := l.snapshot
	if !l.filtered {
		h, err := l.Resolve()
		if err != nil {
			return nil, err
		}
		if roots, err = h.All(ctx); err != nil {
			return nil, fmt.Errorf("list %q: %w", l.Name(), err)
		}
	}

	items := make([]T, 0, len(roots))
	for i, root := range roots {
		item := l.newItem(root)
		if err := w.Adopt(l, item, root, l.Name()+"["+strconv.Itoa(i)+"]"); err != nil {
			return nil, fmt.Errorf("list %q item %d: %w", l.Name(), i, err)
		}
		items = append(items, item)
	}
	l.items = items
	l.roots = roots
	return items, nil
}
