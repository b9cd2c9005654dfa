package element

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/application/locator"
	"ui_automation/application/steps"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/infrastructure/browser"
)

const interactPage = `<html><body>
<button id="go">Go</button>
<span id="secret" hidden>psst</span>
<input id="agree" type="checkbox">
</body></html>`

type stepLog struct {
	events []string
}

func (r *stepLog) StartStep(id, name string)           { r.events = append(r.events, "start:"+name) }
func (r *stepLog) StopStep()                            { r.events = append(r.events, "stop") }
func (r *stepLog) SetStatus(status entities.StepStatus) { r.events = append(r.events, "status:"+string(status)) }
func (r *stepLog) Attach(artifact []byte, label string) { r.events = append(r.events, "attach:"+label) }

type controlsPage struct {
	Page
	Submit  *input
	Secret  *input
	Missing *input
	Agree   *input
}

func (p *controlsPage) Fields() []Field {
	return []Field{
		Child("Submit", &p.Submit, newInput, ID("go"), NameFromText(), Typed("button")),
		Child("Secret", &p.Secret, newInput, ID("secret")),
		Child("Missing", &p.Missing, newInput, CSS("#missing")),
		Child("Agree", &p.Agree, newInput, ID("agree"), Named("Terms", "accept the terms"), Typed("checkbox")),
	}
}

func newControls(t *testing.T) (*controlsPage, *stepLog, *browser.StaticDriver) {
	t.Helper()
	drv, err := browser.NewStaticDriver(strings.NewReader(interactPage), nil)
	require.NoError(t, err)
	phrases, err := steps.LoadPhrases("en")
	require.NoError(t, err)
	rep := &stepLog{}
	runner := steps.NewRunner(rep, phrases, nil).WithScreenshots(drv)
	w := NewWirer(locator.NewResolver(drv), runner, wait.Policy{Retries: 2}, nil)

	page, err := New(w, func() *controlsPage { return &controlsPage{} })
	require.NoError(t, err)
	return page, rep, drv
}

func TestClickReportsStep(t *testing.T) {
	page, rep, drv := newControls(t)
	ctx := context.Background()

	require.NoError(t, page.Agree.Click(ctx))
	assert.Equal(t, []string{"start:Click checkbox 'Terms'", "status:passed", "stop"}, rep.events)
	assert.Equal(t, []string{"click id=agree"}, drv.Events())

	checked, err := page.Agree.Handle().Attribute(ctx, "checked")
	require.NoError(t, err)
	assert.Equal(t, "checked", checked)
}

func TestStepNameFromText(t *testing.T) {
	page, rep, _ := newControls(t)

	require.NoError(t, page.Submit.Click(context.Background()))
	assert.Equal(t, "start:Click button 'Go'", rep.events[0])
	assert.Equal(t, "Submit", page.Submit.Name())
}

func TestTextIsTrimmed(t *testing.T) {
	page, rep, _ := newControls(t)

	text, err := page.Submit.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Go", text)
	assert.Equal(t, "start:Read text of button 'Go'", rep.events[0])
}

func TestAssertDisplayed(t *testing.T) {
	page, rep, _ := newControls(t)
	ctx := context.Background()

	err := page.Secret.AssertDisplayed(ctx)
	require.Error(t, err)
	var ae *entities.AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "Secret", ae.Container)
	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.Equal(t, []string{
		"start:Assert element 'Secret' is displayed",
		"status:failed",
		"attach:screenshot",
		"stop",
	}, rep.events)

	ok, err := page.Missing.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = page.Submit.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWaitDisplayed(t *testing.T) {
	page, _, drv := newControls(t)
	ctx := context.Background()

	err := page.Missing.WaitDisplayed(ctx)
	assert.ErrorIs(t, err, entities.ErrWaitExhausted)

	drv.Mutate(func(doc *goquery.Document) {
		doc.Find("body").AppendHtml(`<p id="missing">late</p>`)
	})
	require.NoError(t, page.Missing.WaitDisplayed(ctx))
}
