package terminal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/infrastructure/storage"
)

const shopHTML = `<html><body>
<form id="search"><input id="q"><button id="go">Find</button></form>
<ul id="products">
  <li class="product"><b class="title">Kettle</b></li>
  <li class="product"><b class="title">Toaster</b></li>
</ul>
<button id="drop">Empty</button>
</body></html>`

const shopYAML = `
name: Shop
widgets:
  product:
    identity: title
    fields:
      - field: title
        chained: {css: .title}
fields:
  - field: query
    find: {id: q}
    description: search box
  - field: submit
    find: {id: go}
    name_from_text: true
  - field: products
    kind: list
    item: product
    find: {css: li.product}
  - field: empty_basket
    find: {id: drop}
    description: remove every product
`

type fixture struct {
	config, definition, html, results string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	chdir(t, t.TempDir())
	dir := t.TempDir()
	f := fixture{
		config:     filepath.Join(dir, "uia.toml"),
		definition: filepath.Join(dir, "shop.yaml"),
		html:       filepath.Join(dir, "shop.html"),
		results:    filepath.Join(dir, "results"),
	}
	cfg := "[wait]\nretry_count = 1\nretry_interval_ms = 0\n\n[report]\nresults_dir = \"" + filepath.ToSlash(f.results) + "\"\n\n[logging]\nlevel = \"error\"\n"
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(f.definition, []byte(shopYAML), 0o644))
	require.NoError(t, os.WriteFile(f.html, []byte(shopHTML), 0o644))
	return f
}

func TestTerminalRun(t *testing.T) {
	f := newFixture(t)
	in := strings.NewReader("fill query kettle\nclick submit\nsize products\nget products Toast\nat products 7\n\nbogus\nhistory\nquit\nsize products\n")
	var out bytes.Buffer

	ti, err := NewTerminalInterface(context.Background(), Options{
		ConfigPath:     f.config,
		DefinitionPath: f.definition,
		HTMLPath:       f.html,
	}, in, &out)
	require.NoError(t, err)
	require.NoError(t, ti.Run(context.Background()))
	require.NoError(t, ti.Close())

	got := out.String()
	assert.Contains(t, got, "Page: Shop")
	assert.Contains(t, got, "> 2\n")
	assert.Contains(t, got, `products[1] "Toaster"`)
	assert.Contains(t, got, "failed: ")
	assert.Contains(t, got, "unknown action")
	assert.Contains(t, got, "5. at products 7 -> failed: ")
	assert.True(t, strings.HasSuffix(got, "Bye!\n"))
	assert.Len(t, ti.Session().History(), 5, "actions after quit are not read")

	store, err := storage.NewJSONStore(f.results)
	require.NoError(t, err)
	history, err := store.LoadHistory()
	require.NoError(t, err)
	assert.Len(t, history, 5)
	run, err := store.LoadRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.NotEmpty(t, run.Steps)
}

func TestTerminalConfirmsDestructiveClicks(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer

	ti, err := NewTerminalInterface(context.Background(), Options{
		ConfigPath:     f.config,
		DefinitionPath: f.definition,
		HTMLPath:       f.html,
	}, strings.NewReader("click empty_basket\nn\nclick empty_basket\nyes\nclick submit\nq\n"), &out)
	require.NoError(t, err)
	defer ti.Close()

	require.NoError(t, ti.Run(context.Background()))
	got := out.String()
	assert.Contains(t, got, "click Shop > empty_basket: destructive control (remove) (risk high). Confirm? (y/n): skipped")
	assert.Equal(t, 2, strings.Count(got, "Confirm?"), "submit is not held back")
	require.Len(t, ti.Session().History(), 2)
	assert.Equal(t, "empty_basket", ti.Session().History()[0].Action.Target)
}

func TestTerminalRunStopsAtEOF(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer

	ti, err := NewTerminalInterface(context.Background(), Options{
		ConfigPath:     f.config,
		DefinitionPath: f.definition,
		HTMLPath:       f.html,
	}, strings.NewReader("size products"), &out)
	require.NoError(t, err)
	defer ti.Close()

	require.NoError(t, ti.Run(context.Background()))
	assert.Contains(t, out.String(), "2\n")
}

func TestNewTerminalInterfaceErrors(t *testing.T) {
	f := newFixture(t)

	_, err := NewTerminalInterface(context.Background(), Options{
		ConfigPath:     f.config,
		DefinitionPath: filepath.Join(t.TempDir(), "missing.yaml"),
		HTMLPath:       f.html,
	}, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)

	_, err = NewTerminalInterface(context.Background(), Options{
		ConfigPath:     f.config,
		DefinitionPath: f.definition,
		HTMLPath:       filepath.Join(t.TempDir(), "missing.html"),
	}, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "failed to initialize browser")
}

func TestInspectCommand(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect", f.definition, "--config", f.config, "--html", f.html})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, strings.Join([]string{
		"Shop [page] document parent=-",
		"  query [element] id=q parent=Shop",
		"  submit [element] id=go parent=Shop",
		"  products [list] css=li.product parent=Shop",
		"  empty_basket [element] id=drop parent=Shop",
		"",
	}, "\n"), out.String())
}

func TestShellCommand(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader("text submit\nexit\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"shell", f.definition, "-c", f.config, "--html", f.html})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Find\n")
}

func TestCommandsRequireDefinition(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"inspect"})
	assert.Error(t, cmd.Execute())
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
