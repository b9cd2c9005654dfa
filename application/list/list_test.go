package list

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/application/element"
	"ui_automation/application/locator"
	"ui_automation/application/steps"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/browser"
)

const birdsHTML = `<html><body>
<section id="birds">
  <ul>
    <li class="row"><span class="name">Eagle</span></li>
    <li class="row"><span class="name">Hawk</span></li>
    <li class="row"><span class="name">Owl</span></li>
  </ul>
</section>
<div id="entries">
  <p class="entry"><input></p><p class="entry"><input></p>
  <p class="entry"><input></p><p class="entry"><input></p>
  <p class="entry"><input></p><p class="entry"><input></p>
  <p class="entry"><input></p><p class="entry"><input></p>
  <p class="entry"><input></p><p class="entry"><input></p>
</div>
<ul id="nothing"></ul>
</body></html>`

type text struct {
	element.Element
}

func newText() *text { return &text{} }

type row struct {
	element.Widget
	Label *text
}

func newRow(interfaces.Handle) *row { return &row{} }

func (r *row) Fields() []element.Field {
	return []element.Field{element.Child("Label", &r.Label, newText, element.ChainedCSS(".name"))}
}

func (r *row) ID(ctx context.Context) (string, error) { return r.Label.Text(ctx) }

type entry struct {
	element.Widget
	Input *text
}

func newEntry(interfaces.Handle) *entry { return &entry{} }

func (e *entry) Fields() []element.Field {
	return []element.Field{element.Child("Input", &e.Input, newText, element.ChainedXPath(".//input"))}
}

func (e *entry) ID(ctx context.Context) (string, error) { return e.Input.Attribute(ctx, "value") }

type birdsPage struct {
	element.Page
	Birds   *List[*row]
	Entries *List[*entry]
	Nothing *List[*row]
}

func (p *birdsPage) Fields() []element.Field {
	return []element.Field{
		Of("Birds", &p.Birds, newRow, element.CSS("#birds li.row"), element.Named("Birds", "all birds")),
		Of("Entries", &p.Entries, newEntry, element.ClassName("entry")),
		Of("Nothing", &p.Nothing, newRow, element.CSS("#nothing li")),
	}
}

type stepLog struct {
	events []string
}

func (r *stepLog) StartStep(id, name string)           { r.events = append(r.events, "start:"+name) }
func (r *stepLog) StopStep()                            { r.events = append(r.events, "stop") }
func (r *stepLog) SetStatus(status entities.StepStatus) { r.events = append(r.events, "status:"+string(status)) }
func (r *stepLog) Attach(artifact []byte, label string) { r.events = append(r.events, "attach:"+label) }

func newFixture(t *testing.T) (*element.Wirer, *browser.StaticDriver, *stepLog) {
	t.Helper()
	drv, err := browser.NewStaticDriver(strings.NewReader(birdsHTML), nil)
	require.NoError(t, err)
	phrases, err := steps.LoadPhrases("en")
	require.NoError(t, err)
	rep := &stepLog{}
	runner := steps.NewRunner(rep, phrases, nil)
	return element.NewWirer(locator.NewResolver(drv), runner, wait.Policy{Retries: 1}, nil), drv, rep
}

func newBirds(t *testing.T) (*birdsPage, *browser.StaticDriver, *stepLog) {
	t.Helper()
	w, drv, rep := newFixture(t)
	page, err := element.New(w, func() *birdsPage { return &birdsPage{} })
	require.NoError(t, err)
	return page, drv, rep
}

func TestListField(t *testing.T) {
	page, _, _ := newBirds(t)

	assert.Equal(t, "Birds", page.Birds.Name())
	assert.Equal(t, "all birds", page.Birds.Description())
	assert.Equal(t, element.TypeList, page.Birds.ElementType())
	assert.Equal(t, element.TypeList, page.Entries.ElementType())
	assert.Same(t, page, page.Birds.Parent())
	assert.True(t, page.Birds.IsBound())
	assert.False(t, page.Birds.IsFiltered())
}

func TestItemsAreWiredUnderTheList(t *testing.T) {
	page, _, _ := newBirds(t)
	ctx := context.Background()

	items, err := page.Birds.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	second := items[1]
	assert.Equal(t, "Birds[1]", second.Name())
	assert.Equal(t, element.TypeWidget, second.ElementType())
	assert.Same(t, page.Birds, second.Parent())
	assert.Same(t, second, second.Label.Parent())
	assert.Equal(t, "css=#birds li.row >> nth=1 >> css=.name", second.Label.Handle().Describe())

	id, err := second.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hawk", id)
	assert.Equal(t, items, page.Birds.Cached())
}

func TestGetByIdentity(t *testing.T) {
	page, _, rep := newBirds(t)
	ctx := context.Background()

	hawk, err := page.Birds.Get(ctx, "Haw")
	require.NoError(t, err)
	again, err := page.Birds.Get(ctx, "Haw")
	require.NoError(t, err)

	assert.NotSame(t, hawk, again, "every lookup rebuilds the items")
	assert.Equal(t, hawk.Name(), again.Name())
	assert.Equal(t, hawk.Handle().Describe(), again.Handle().Describe())
	assert.Equal(t, "start:Find 'Haw' in list 'Birds'", rep.events[0])

	_, err = page.Birds.Get(ctx, "owl")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	owl, err := page.Birds.GetIgnoreCase(ctx, "owl")
	require.NoError(t, err)
	id, err := owl.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Owl", id)
}

func TestGetAfterTypingIdentities(t *testing.T) {
	page, _, _ := newBirds(t)
	ctx := context.Background()
	names := []string{"Falcon", "Heron", "Ibis", "Kestrel", "Eagle", "Magpie", "Osprey", "Puffin", "Raven", "Swift"}

	entries, err := page.Entries.Items(ctx)
	require.NoError(t, err)
	require.Len(t, entries, len(names))
	for i, e := range entries {
		require.NoError(t, e.Input.Fill(ctx, names[i]))
	}

	eagle, err := page.Entries.Get(ctx, "Eagle")
	require.NoError(t, err)
	id, err := eagle.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Eagle", id)
	assert.Equal(t, "Entries[4]", eagle.Name())

	_, err = page.Entries.Get(ctx, "NotPresent")
	require.Error(t, err)
	var ae *entities.AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "Entries", ae.Container)
	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.Contains(t, err.Error(), `"NotPresent"`)
	assert.Contains(t, err.Error(), `"Entries"`)
}

func TestIndexLookups(t *testing.T) {
	page, _, _ := newBirds(t)
	ctx := context.Background()

	first, err := page.Birds.First(ctx)
	require.NoError(t, err)
	last, err := page.Birds.Last(ctx)
	require.NoError(t, err)
	at, err := page.Birds.At(ctx, 1)
	require.NoError(t, err)

	for want, item := range map[string]*row{"Eagle": first, "Owl": last, "Hawk": at} {
		id, err := item.ID(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	_, err = page.Birds.At(ctx, 3)
	assert.ErrorIs(t, err, entities.ErrIndexOutOfRange)
	assert.Contains(t, err.Error(), "index 3")
	_, err = page.Birds.At(ctx, -1)
	assert.ErrorIs(t, err, entities.ErrIndexOutOfRange)
}

func TestEmptyList(t *testing.T) {
	page, _, _ := newBirds(t)
	ctx := context.Background()

	_, err := page.Nothing.First(ctx)
	assert.ErrorIs(t, err, entities.ErrEmptyList)
	_, err = page.Nothing.Last(ctx)
	assert.ErrorIs(t, err, entities.ErrEmptyList)
	_, err = page.Nothing.Get(ctx, "x")
	assert.ErrorIs(t, err, entities.ErrEmptyList)

	n, err := page.Nothing.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	shown, err := page.Nothing.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.False(t, shown)
}

func TestLastOfSingleItem(t *testing.T) {
	page, _, _ := newBirds(t)
	ctx := context.Background()

	owls, err := page.Birds.Filter(ctx, func(ctx context.Context, r *row) (bool, error) {
		id, err := r.ID(ctx)
		return id == "Owl", err
	})
	require.NoError(t, err)

	last, err := owls.Last(ctx)
	require.NoError(t, err)
	id, err := last.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Owl", id)
}

func TestSizeAssertions(t *testing.T) {
	page, _, _ := newBirds(t)
	ctx := context.Background()

	require.NoError(t, page.Birds.AssertSizeIs(ctx, 3))
	err := page.Birds.AssertSizeIs(ctx, 2)
	assert.ErrorIs(t, err, entities.ErrSizeMismatch)
	assert.Contains(t, err.Error(), "has 3 items, want 2")

	require.NoError(t, page.Birds.AssertSizeAbove(ctx, 2))
	assert.ErrorIs(t, page.Birds.AssertSizeAbove(ctx, 3), entities.ErrSizeMismatch)
}

func TestListReadsFresh(t *testing.T) {
	page, drv, _ := newBirds(t)
	ctx := context.Background()

	n, err := page.Birds.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	drv.Mutate(func(doc *goquery.Document) {
		doc.Find("#birds ul").AppendHtml(`<li class="row"><span class="name">Wren</span></li>`)
	})

	n, err = page.Birds.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	wren, err := page.Birds.Get(ctx, "Wren")
	require.NoError(t, err)
	assert.Equal(t, "Birds[3]", wren.Name())

	drv.Mutate(func(doc *goquery.Document) {
		doc.Find("#birds li").First().Remove()
	})
	first, err := page.Birds.First(ctx)
	require.NoError(t, err)
	id, err := first.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hawk", id)
}

func TestFilterAndSnapshot(t *testing.T) {
	page, drv, _ := newBirds(t)
	ctx := context.Background()

	withA, err := page.Birds.Filter(ctx, func(ctx context.Context, r *row) (bool, error) {
		id, err := r.ID(ctx)
		return strings.Contains(id, "a"), err
	})
	require.NoError(t, err)
	assert.True(t, withA.IsFiltered())
	assert.Equal(t, "Birds", withA.Name())
	assert.Same(t, page, withA.Parent())

	ids, err := withA.Identities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Eagle", "Hawk"}, ids)

	snap, err := page.Birds.Snapshot(ctx)
	require.NoError(t, err)
	same, err := page.Birds.Equal(ctx, snap)
	require.NoError(t, err)
	assert.True(t, same)

	drv.Mutate(func(doc *goquery.Document) {
		doc.Find("#birds ul").AppendHtml(`<li class="row"><span class="name">Gannet</span></li>`)
	})

	n, err := withA.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "a filtered list keeps its roots")
	n, err = page.Birds.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	same, err = page.Birds.Equal(ctx, snap)
	require.NoError(t, err)
	assert.False(t, same)
}

func TestDump(t *testing.T) {
	page, _, _ := newBirds(t)

	out, err := page.Birds.Dump(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, `list "Birds": 3 items`)
	assert.Contains(t, out, `#2 "Owl" css=#birds li.row >> nth=2`)
}

type panel struct {
	element.Widget
	Rows *List[*row]
}

func newPanel() *panel { return &panel{} }

func (p *panel) Fields() []element.Field {
	return []element.Field{Of("Rows", &p.Rows, newRow, element.ChainedCSS(".row"))}
}

func TestChainedListIsUnboundUntilRootIsKnown(t *testing.T) {
	w, drv, _ := newFixture(t)
	ctx := context.Background()

	p, err := element.New(w, newPanel)
	require.NoError(t, err)
	require.NotNil(t, p.Rows)
	assert.False(t, p.Rows.IsBound())

	_, err = p.Rows.Size(ctx)
	assert.ErrorIs(t, err, entities.ErrUnresolvedParent)
	assert.False(t, p.Rows.IsBound())

	require.True(t, p.BindRoot(drv.Find(entities.ByID("birds"))))
	n, err := p.Rows.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, p.Rows.IsBound())
	assert.Equal(t, "id=birds >> css=.row", p.Rows.Handle().Describe())
}

type conflictingListPage struct {
	element.Page
	Birds *List[*row]
}

func (p *conflictingListPage) Fields() []element.Field {
	return []element.Field{
		Of("Birds", &p.Birds, newRow, element.FindBy(entities.LocatorSpec{CSS: "li.row", XPath: "//li"})),
	}
}

func TestListWithTwoStrategiesFails(t *testing.T) {
	w, _, _ := newFixture(t)

	_, err := element.New(w, func() *conflictingListPage { return &conflictingListPage{} })
	require.ErrorIs(t, err, entities.ErrConflictingLocator)

	var we *entities.WiringError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "conflictingListPage", we.Owner)
	assert.Equal(t, "Birds", we.Field)
}

type ctorlessPage struct {
	element.Page
	Birds *List[*row]
}

func (p *ctorlessPage) Fields() []element.Field {
	return []element.Field{Of("Birds", &p.Birds, nil, element.CSS("li.row"))}
}

func TestListWithoutItemConstructorFails(t *testing.T) {
	w, _, _ := newFixture(t)

	_, err := element.New(w, func() *ctorlessPage { return &ctorlessPage{} })
	require.ErrorIs(t, err, entities.ErrListElementNotValid)
	assert.Contains(t, err.Error(), "list.row")
}
