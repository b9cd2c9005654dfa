package list

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ui_automation/application/steps"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Get returns the first item whose identity contains identity.
func (l *List[T]) Get(ctx context.Context, identity string) (T, error) {
	return l.find(ctx, "list_get", identity, strings.Contains)
}

// GetIgnoreCase is Get with case-insensitive matching.
func (l *List[T]) GetIgnoreCase(ctx context.Context, identity string) (T, error) {
	return l.find(ctx, "list_get_ignore_case", identity, func(id, sub string) bool {
		return strings.Contains(strings.ToLower(id), strings.ToLower(sub))
	})
}

func (l *List[T]) find(ctx context.Context, key, identity string, match func(id, sub string) bool) (T, error) {
	var found T
	err := l.Step(ctx, key, steps.Vars{"identity": identity}, func(ctx context.Context) error {
		items, err := l.rebuild(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return entities.Assertf(l.Name(), entities.ErrEmptyList,
				"list %q is empty, no item matches %q", l.Name(), identity)
		}
		for _, item := range items {
			id, err := item.ID(ctx)
			if err != nil {
				return fmt.Errorf("list %q: identity of %s: %w", l.Name(), item.Meta().Name, err)
			}
			if match(id, identity) {
				found = item
				return nil
			}
		}
		return entities.Assertf(l.Name(), entities.ErrNotFound,
			"no item matching %q in list %q of %d items", identity, l.Name(), len(items))
	})
	return found, err
}

// At returns the item at index i.
func (l *List[T]) At(ctx context.Context, i int) (T, error) {
	var found T
	err := l.Step(ctx, "list_at", steps.Vars{"index": strconv.Itoa(i)}, func(ctx context.Context) error {
		items, err := l.rebuild(ctx)
		if err != nil {
			return err
		}
		if i < 0 || i >= len(items) {
			return entities.Assertf(l.Name(), entities.ErrIndexOutOfRange,
				"index %d out of range for list %q of %d items", i, l.Name(), len(items))
		}
		found = items[i]
		return nil
	})
	return found, err
}

// First returns the first item.
func (l *List[T]) First(ctx context.Context) (T, error) {
	return l.edge(ctx, "list_first", func(items []T) T { return items[0] })
}

// Last returns the last item.
func (l *List[T]) Last(ctx context.Context) (T, error) {
	return l.edge(ctx, "list_last", func(items []T) T { return items[len(items)-1] })
}

func (l *List[T]) edge(ctx context.Context, key string, pick func([]T) T) (T, error) {
	var found T
	err := l.Step(ctx, key, nil, func(ctx context.Context) error {
		items, err := l.rebuild(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return entities.Assertf(l.Name(), entities.ErrEmptyList, "list %q is empty", l.Name())
		}
		found = pick(items)
		return nil
	})
	return found, err
}

// Filter returns a list over the items for which keep reports true. The
// result is built from the matching roots as they are now; refreshing it
// rebuilds items from those roots only.
func (l *List[T]) Filter(ctx context.Context, keep func(ctx context.Context, item T) (bool, error)) (*List[T], error) {
	var out *List[T]
	err := l.Step(ctx, "list_filter", nil, func(ctx context.Context) error {
		items, err := l.rebuild(ctx)
		if err != nil {
			return err
		}
		roots := l.roots
		var kept []int
		for i, item := range items {
			ok, err := keep(ctx, item)
			if err != nil {
				return err
			}
			if ok {
				kept = append(kept, i)
			}
		}
		out, err = l.derive(ctx, kept, roots)
		return err
	})
	return out, err
}

// Snapshot returns a list fixed to the roots the collection has now.
func (l *List[T]) Snapshot(ctx context.Context) (*List[T], error) {
	items, err := l.rebuild(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]int, len(items))
	for i := range all {
		all[i] = i
	}
	return l.derive(ctx, all, l.roots)
}

func (l *List[T]) derive(ctx context.Context, indexes []int, roots []interfaces.Handle) (*List[T], error) {
	out := &List[T]{newItem: l.newItem, filtered: true}
	for _, i := range indexes {
		out.snapshot = append(out.snapshot, roots[i])
	}
	meta := out.Meta()
	meta.Name = l.Name()
	meta.Description = l.Description()
	meta.ElementType = l.ElementType()
	if err := l.Wirer().Adopt(l.Parent(), out, nil, ""); err != nil {
		return nil, err
	}
	_, err := out.rebuild(ctx)
	return out, err
}

// Items rebuilds and returns every item.
func (l *List[T]) Items(ctx context.Context) ([]T, error) {
	return l.rebuild(ctx)
}

// Refresh rebuilds the items as a reported step.
func (l *List[T]) Refresh(ctx context.Context) error {
	return l.Step(ctx, "list_refresh", nil, func(ctx context.Context) error {
		_, err := l.rebuild(ctx)
		return err
	})
}

// Size returns the number of items.
func (l *List[T]) Size(ctx context.Context) (int, error) {
	var n int
	err := l.Step(ctx, "list_size", nil, func(ctx context.Context) error {
		items, err := l.rebuild(ctx)
		n = len(items)
		return err
	})
	return n, err
}

// IsDisplayed reports whether at least one item root is visible.
func (l *List[T]) IsDisplayed(ctx context.Context) (bool, error) {
	var shown bool
	err := l.Step(ctx, "list_is_displayed", nil, func(ctx context.Context) error {
		if _, err := l.rebuild(ctx); err != nil {
			return err
		}
		for _, root := range l.roots {
			ok, err := root.IsVisible(ctx)
			if err != nil {
				return err
			}
			if ok {
				shown = true
				return nil
			}
		}
		return nil
	})
	return shown, err
}

// AssertSizeIs fails unless the list has exactly n items.
func (l *List[T]) AssertSizeIs(ctx context.Context, n int) error {
	return l.Step(ctx, "list_assert_size", steps.Vars{"size": strconv.Itoa(n)}, func(ctx context.Context) error {
		items, err := l.rebuild(ctx)
		if err != nil {
			return err
		}
		if len(items) != n {
			return entities.Assertf(l.Name(), entities.ErrSizeMismatch,
				"list %q has %d items, want %d", l.Name(), len(items), n)
		}
		return nil
	})
}

// AssertSizeAbove fails unless the list has more than n items.
func (l *List[T]) AssertSizeAbove(ctx context.Context, n int) error {
	return l.Step(ctx, "list_assert_size_above", steps.Vars{"size": strconv.Itoa(n)}, func(ctx context.Context) error {
		items, err := l.rebuild(ctx)
		if err != nil {
			return err
		}
		if len(items) <= n {
			return entities.Assertf(l.Name(), entities.ErrSizeMismatch,
				"list %q has %d items, want more than %d", l.Name(), len(items), n)
		}
		return nil
	})
}

// Identities returns the identity of every item in order.
func (l *List[T]) Identities(ctx context.Context) ([]string, error) {
	items, err := l.rebuild(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, item := range items {
		if ids[i], err = item.ID(ctx); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// Equal reports whether both lists hold items with the same identities in
// the same order.
func (l *List[T]) Equal(ctx context.Context, other *List[T]) (bool, error) {
	a, err := l.Identities(ctx)
	if err != nil {
		return false, err
	}
	b, err := other.Identities(ctx)
	if err != nil {
		return false, err
	}
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		if a[i] != b[i] {
			return false, nil
		}
	}
	return true, nil
}

// Dump describes every item, one per line.
func (l *List[T]) Dump(ctx context.Context) (string, error) {
	items, err := l.rebuild(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q: %d items\n", l.ElementType(), l.Name(), len(items))
	for i, item := range items {
		id, err := item.ID(ctx)
		if err != nil {
			id = "<" + err.Error() + ">"
		}
		fmt.Fprintf(&b, "  #%d %q %s\n", i, id, l.roots[i].Describe())
	}
	return b.String(), nil
}
