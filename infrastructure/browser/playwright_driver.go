package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/config"
)

// PlaywrightDriver drives Chromium through playwright. Handles wrap
// playwright locators, which re-query the page on every call.
type PlaywrightDriver struct {
	pw        *playwright.Playwright
	browser   playwright.Browser
	context   playwright.BrowserContext
	page      playwright.Page
	pages     []playwright.Page
	pagesMu   sync.Mutex
	cfg       config.BrowserConfig
	statePath string
	logger    *logrus.Logger
}

// NewPlaywrightDriver - starts playwright and opens a page
func NewPlaywrightDriver(cfg config.BrowserConfig, logger *logrus.Logger) (*PlaywrightDriver, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  cfg.Width,
			Height: cfg.Height,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
		AcceptDownloads:   playwright.Bool(true),
	}
	if cfg.UserAgent != "" {
		contextOptions.UserAgent = playwright.String(cfg.UserAgent)
	}
	if cfg.BaseURL != "" {
		contextOptions.BaseURL = playwright.String(cfg.BaseURL)
	}
	if state := loadStorageState(cfg.StateFile, logger); state != nil {
		contextOptions.StorageState = state.ToOptionalStorageState()
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(float64(cfg.SlowMoMS)),
		Args: []string{
			"--disable-popup-blocking",
			"--disable-dev-shm-usage",
			"--disable-infobars",
			"--disable-notifications",
		},
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to launch browser: %w", err), pw.Stop())
	}

	bctx, err := browser.NewContext(contextOptions)
	if err != nil {
		return nil, multierr.Combine(fmt.Errorf("failed to create context: %w", err), browser.Close(), pw.Stop())
	}
	bctx.SetDefaultTimeout(float64(cfg.TimeoutMS))

	page, err := bctx.NewPage()
	if err != nil {
		return nil, multierr.Combine(fmt.Errorf("failed to create page: %w", err), bctx.Close(), browser.Close(), pw.Stop())
	}

	d := &PlaywrightDriver{
		pw:        pw,
		browser:   browser,
		context:   bctx,
		page:      page,
		pages:     []playwright.Page{page},
		cfg:       cfg,
		statePath: cfg.StateFile,
		logger:    logger,
	}
	d.watchPage(page)

	bctx.OnPage(func(newPage playwright.Page) {
		d.pagesMu.Lock()
		d.pages = append(d.pages, newPage)
		d.page = newPage
		d.pagesMu.Unlock()
		d.watchPage(newPage)
		d.logger.WithField("url", newPage.URL()).Debug("switched to new page")
	})

	return d, nil
}

func (d *PlaywrightDriver) watchPage(p playwright.Page) {
	p.OnDialog(func(dialog playwright.Dialog) {
		if err := dialog.Accept(); err != nil {
			d.logger.WithError(err).Warn("failed to accept dialog")
		}
	})
	p.OnClose(func(closed playwright.Page) {
		d.pagesMu.Lock()
		defer d.pagesMu.Unlock()

		for i, open := range d.pages {
			if open == closed {
				d.pages = append(d.pages[:i], d.pages[i+1:]...)
				break
			}
		}
		if d.page == closed && len(d.pages) > 0 {
			d.page = d.pages[len(d.pages)-1]
		}
	})
}

func loadStorageState(path string, logger *logrus.Logger) *playwright.StorageState {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).Warn("failed to read browser state")
		}
		return nil
	}
	var state playwright.StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.WithError(err).Warn("ignoring malformed browser state")
		return nil
	}
	return &state
}

func (d *PlaywrightDriver) currentPage() playwright.Page {
	d.pagesMu.Lock()
	defer d.pagesMu.Unlock()
	return d.page
}

// Navigate - opens target, resolved against the configured base URL
func (d *PlaywrightDriver) Navigate(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := resolveURL(d.cfg.BaseURL, target)
	if err != nil {
		return err
	}
	_, err = d.currentPage().Goto(full, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(d.cfg.TimeoutMS)),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", full, err)
	}
	return nil
}

// Root returns a handle on the current page's document element.
func (d *PlaywrightDriver) Root() interfaces.Handle {
	return &pwHandle{drv: d}
}

// Find locates sel on the current page.
func (d *PlaywrightDriver) Find(sel entities.Selector) interfaces.Handle {
	return d.Root().Locate(sel)
}

// Screenshot captures the full current page as PNG.
func (d *PlaywrightDriver) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.currentPage().Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

// SaveState - writes cookies and local storage to the configured state file
func (d *PlaywrightDriver) SaveState() error {
	if d.context == nil || d.statePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(d.statePath), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if _, err := d.context.StorageState(d.statePath); err != nil {
		if strings.Contains(err.Error(), "closed") {
			return nil
		}
		return fmt.Errorf("failed to save browser state: %w", err)
	}
	return nil
}

// Close - saves state and shuts the browser down
func (d *PlaywrightDriver) Close() error {
	err := d.SaveState()
	if d.context != nil {
		err = multierr.Append(err, d.context.Close())
	}
	if d.browser != nil {
		err = multierr.Append(err, d.browser.Close())
	}
	if d.pw != nil {
		err = multierr.Append(err, d.pw.Stop())
	}
	return err
}

// pwHandle is a playwright locator chain. loc is nil for the document root.
type pwHandle struct {
	drv  *PlaywrightDriver
	loc  playwright.Locator
	desc string
	err  error
}

func (h *pwHandle) locator() playwright.Locator {
	if h.loc == nil {
		return h.drv.currentPage().Locator(":root")
	}
	return h.loc
}

func (h *pwHandle) Locate(sel entities.Selector) interfaces.Handle {
	if h.err != nil {
		return h
	}
	s, err := playwrightSelector(sel)
	if err != nil {
		return &pwHandle{drv: h.drv, desc: h.join(sel.String()), err: err}
	}
	var loc playwright.Locator
	if h.loc == nil {
		loc = h.drv.currentPage().Locator(s)
	} else {
		loc = h.loc.Locator(s)
	}
	return &pwHandle{drv: h.drv, loc: loc, desc: h.join(sel.String())}
}

func (h *pwHandle) join(part string) string {
	if h.desc == "" {
		return part
	}
	return h.desc + " >> " + part
}

func (h *pwHandle) Nth(i int) interfaces.Handle {
	if h.err != nil {
		return h
	}
	return &pwHandle{drv: h.drv, loc: h.locator().Nth(i), desc: h.join(fmt.Sprintf("nth=%d", i))}
}

func (h *pwHandle) All(ctx context.Context) ([]interfaces.Handle, error) {
	if err := h.check(ctx); err != nil {
		return nil, err
	}
	n, err := h.locator().Count()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.desc, err)
	}
	out := make([]interfaces.Handle, n)
	for i := range out {
		out[i] = h.Nth(i)
	}
	return out, nil
}

func (h *pwHandle) Count(ctx context.Context) (int, error) {
	if err := h.check(ctx); err != nil {
		return 0, err
	}
	return h.locator().Count()
}

func (h *pwHandle) Exists(ctx context.Context) (bool, error) {
	n, err := h.Count(ctx)
	return n > 0, err
}

func (h *pwHandle) IsVisible(ctx context.Context) (bool, error) {
	if err := h.check(ctx); err != nil {
		return false, err
	}
	return h.locator().First().IsVisible()
}

func (h *pwHandle) Text(ctx context.Context) (string, error) {
	if err := h.check(ctx); err != nil {
		return "", err
	}
	text, err := h.locator().First().TextContent()
	if err != nil {
		return "", h.wrap(err)
	}
	return text, nil
}

func (h *pwHandle) Attribute(ctx context.Context, name string) (string, error) {
	if err := h.check(ctx); err != nil {
		return "", err
	}
	loc := h.locator().First()
	if name == "value" {
		v, err := loc.InputValue()
		if err == nil {
			return v, nil
		}
		if !notAnInput(err) {
			return "", h.wrap(err)
		}
	}
	v, err := loc.GetAttribute(name)
	if err != nil {
		return "", h.wrap(err)
	}
	return v, nil
}

// notAnInput reports whether InputValue failed because the element exists
// but is not an input, textarea or select. A missing element times out
// instead and must not be waited for a second time.
func notAnInput(err error) bool {
	if errors.Is(err, playwright.ErrTimeout) {
		return false
	}
	return strings.Contains(err.Error(), "is not an <input>")
}

func (h *pwHandle) Click(ctx context.Context) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	return h.wrap(h.locator().First().Click())
}

func (h *pwHandle) Fill(ctx context.Context, text string) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	return h.wrap(h.locator().First().Fill(text))
}

func (h *pwHandle) Describe() string {
	if h.desc == "" {
		return "document"
	}
	return h.desc
}

func (h *pwHandle) check(ctx context.Context) error {
	if h.err != nil {
		return h.err
	}
	return ctx.Err()
}

func (h *pwHandle) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s: %w", entities.ErrElementNotFound, h.Describe(), err)
	}
	return fmt.Errorf("%s: %w", h.Describe(), err)
}

// resolveURL joins target to base when target is relative.
func resolveURL(base, target string) (string, error) {
	if base == "" {
		return target, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	t, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", target, err)
	}
	return b.ResolveReference(t).String(), nil
}
