package locator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/domain/entities"
	"ui_automation/infrastructure/browser"
)

const doc = `<html><body>
<div id="menu"><a class="item">Home</a><a class="item">About</a></div>
<a class="item">Outside</a>
</body></html>`

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	drv, err := browser.NewStaticDriver(strings.NewReader(doc), nil)
	require.NoError(t, err)
	return NewResolver(drv)
}

func TestResolve(t *testing.T) {
	r := newResolver(t)
	ctx := context.Background()

	h, err := r.Resolve(entities.LocatorSpec{ClassName: "item"})
	require.NoError(t, err)
	n, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "class_name=item", h.Describe())

	_, err = r.Resolve(entities.LocatorSpec{ID: "menu", CSS: "#menu"})
	assert.ErrorIs(t, err, entities.ErrAmbiguousLocator)
	_, err = r.Resolve(entities.LocatorSpec{})
	assert.ErrorIs(t, err, entities.ErrEmptyLocator)
}

func TestResolveRelative(t *testing.T) {
	r := newResolver(t)
	ctx := context.Background()

	menu, err := r.Resolve(entities.LocatorSpec{ID: "menu"})
	require.NoError(t, err)
	items, err := r.ResolveRelative(entities.LocatorSpec{XPath: ".//a"}, menu)
	require.NoError(t, err)

	n, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "id=menu >> xpath=.//a", items.Describe())

	_, err = r.ResolveRelative(entities.LocatorSpec{CSS: "a"}, nil)
	assert.ErrorIs(t, err, entities.ErrUnresolvedParent)
}
