package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/config"
)

// ChromedpDriver drives Chrome over the DevTools protocol. A handle is a
// selector chain evaluated with chromedp.Nodes on every call.
type ChromedpDriver struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	cfg         config.BrowserConfig
	logger      *logrus.Logger
}

// NewChromedpDriver - starts a Chrome instance
func NewChromedpDriver(cfg config.BrowserConfig, logger *logrus.Logger) (*ChromedpDriver, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.Width, cfg.Height),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if path := chromeBinary(); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))

	// The first Run starts the browser; its context must outlive every later call.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"headless": cfg.Headless,
		"width":    cfg.Width,
		"height":   cfg.Height,
	}).Debug("chrome started")

	return &ChromedpDriver{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// chromeBinary returns CHROME_BINARY_PATH when it names an existing file.
// Otherwise chromedp searches the usual install locations itself.
func chromeBinary() string {
	path := os.Getenv("CHROME_BINARY_PATH")
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// run executes actions on the browser, bounded by the configured timeout and
// by ctx.
func (d *ChromedpDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout())
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate - opens target, resolved against the configured base URL
func (d *ChromedpDriver) Navigate(ctx context.Context, target string) error {
	full, err := resolveURL(d.cfg.BaseURL, target)
	if err != nil {
		return err
	}
	if err := d.run(ctx, chromedp.Navigate(full), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", full, err)
	}
	return nil
}

// Root returns the document handle.
func (d *ChromedpDriver) Root() interfaces.Handle {
	return &cdpHandle{drv: d, nth: -1}
}

// Find locates sel from the document root.
func (d *ChromedpDriver) Find(sel entities.Selector) interfaces.Handle {
	return d.Root().Locate(sel)
}

// Screenshot captures the full page as PNG.
func (d *ChromedpDriver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := d.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}
	return buf, nil
}

// Close - shuts the browser down
func (d *ChromedpDriver) Close() error {
	var err error
	if d.ctx != nil {
		err = multierr.Append(err, chromedp.Cancel(d.ctx))
	}
	if d.cancel != nil {
		d.cancel()
	}
	if d.allocCancel != nil {
		d.allocCancel()
	}
	return err
}

// cdpHandle is a node query chain. parent is nil for the document root.
type cdpHandle struct {
	drv    *ChromedpDriver
	parent *cdpHandle
	sel    entities.Selector
	nth    int
}

func (h *cdpHandle) Locate(sel entities.Selector) interfaces.Handle {
	return &cdpHandle{drv: h.drv, parent: h, sel: sel, nth: -1}
}

func (h *cdpHandle) Nth(i int) interfaces.Handle {
	c := *h
	c.nth = i
	return &c
}

// nodes evaluates the chain. The root evaluates to no nodes and is treated
// as the document by queries scoped to it.
func (h *cdpHandle) nodes(ctx context.Context) ([]*cdp.Node, error) {
	if h.parent == nil {
		return nil, nil
	}
	parents, err := h.parent.nodes(ctx)
	if err != nil {
		return nil, err
	}

	var found []*cdp.Node
	if h.parent.parent == nil {
		found, err = h.query(ctx, nil)
		if err != nil {
			return nil, err
		}
	} else {
		seen := make(map[cdp.NodeID]bool)
		for _, p := range parents {
			ns, err := h.query(ctx, p)
			if err != nil {
				return nil, err
			}
			for _, n := range ns {
				if !seen[n.NodeID] {
					seen[n.NodeID] = true
					found = append(found, n)
				}
			}
		}
	}

	if h.nth >= 0 {
		if h.nth >= len(found) {
			return nil, nil
		}
		return found[h.nth : h.nth+1], nil
	}
	return found, nil
}

func (h *cdpHandle) query(ctx context.Context, from *cdp.Node) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	var action chromedp.Action

	switch css, ok := cssFor(h.sel); {
	case ok && from == nil:
		action = chromedp.Nodes(css, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))
	case ok:
		action = chromedp.Nodes(css, &nodes, chromedp.ByQueryAll, chromedp.FromNode(from), chromedp.AtLeast(0))
	case h.sel.Strategy == entities.StrategyXPath && from == nil:
		action = chromedp.Nodes(h.sel.Value, &nodes, chromedp.BySearch, chromedp.AtLeast(0))
	default:
		return nil, fmt.Errorf("%w: %s inside %s", entities.ErrUnsupportedStrategy, h.sel, h.parent.Describe())
	}

	if err := h.drv.run(ctx, action); err != nil {
		return nil, fmt.Errorf("%s: %w", h.Describe(), err)
	}
	return nodes, nil
}

func (h *cdpHandle) first(ctx context.Context) (*cdp.Node, error) {
	if h.parent == nil {
		var nodes []*cdp.Node
		if err := h.drv.run(ctx, chromedp.Nodes("html", &nodes, chromedp.ByQuery)); err != nil {
			return nil, err
		}
		return nodes[0], nil
	}
	nodes, err := h.nodes(ctx)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrElementNotFound, h.Describe())
	}
	return nodes[0], nil
}

func (h *cdpHandle) All(ctx context.Context) ([]interfaces.Handle, error) {
	nodes, err := h.nodes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.Handle, len(nodes))
	for i := range nodes {
		out[i] = h.Nth(i)
	}
	return out, nil
}

func (h *cdpHandle) Count(ctx context.Context) (int, error) {
	if h.parent == nil {
		return 1, nil
	}
	nodes, err := h.nodes(ctx)
	return len(nodes), err
}

func (h *cdpHandle) Exists(ctx context.Context) (bool, error) {
	n, err := h.Count(ctx)
	return n > 0, err
}

// IsVisible reports whether the first match has a layout box.
func (h *cdpHandle) IsVisible(ctx context.Context) (bool, error) {
	n, err := h.first(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrElementNotFound) {
			return false, nil
		}
		return false, err
	}
	visible := true
	err = h.drv.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if _, err := dom.GetBoxModel().WithNodeID(n.NodeID).Do(ctx); err != nil {
			visible = false
		}
		return nil
	}))
	return visible, err
}

func (h *cdpHandle) Text(ctx context.Context) (string, error) {
	n, err := h.first(ctx)
	if err != nil {
		return "", err
	}
	var text string
	if err := h.drv.run(ctx, chromedp.Text([]cdp.NodeID{n.NodeID}, &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("%s: %w", h.Describe(), err)
	}
	return text, nil
}

func (h *cdpHandle) Attribute(ctx context.Context, name string) (string, error) {
	n, err := h.first(ctx)
	if err != nil {
		return "", err
	}
	ids := []cdp.NodeID{n.NodeID}

	var value string
	var action chromedp.Action
	if name == "value" {
		action = chromedp.Value(ids, &value, chromedp.ByNodeID)
	} else {
		var ok bool
		action = chromedp.AttributeValue(ids, name, &value, &ok, chromedp.ByNodeID)
	}
	if err := h.drv.run(ctx, action); err != nil {
		return "", fmt.Errorf("%s: %w", h.Describe(), err)
	}
	return value, nil
}

func (h *cdpHandle) Click(ctx context.Context) error {
	n, err := h.first(ctx)
	if err != nil {
		return err
	}
	if err := h.drv.run(ctx, chromedp.MouseClickNode(n)); err != nil {
		return fmt.Errorf("%s: %w", h.Describe(), err)
	}
	h.drv.settle()
	return nil
}

func (h *cdpHandle) Fill(ctx context.Context, text string) error {
	n, err := h.first(ctx)
	if err != nil {
		return err
	}
	ids := []cdp.NodeID{n.NodeID}
	err = h.drv.run(ctx,
		chromedp.Clear(ids, chromedp.ByNodeID),
		chromedp.SendKeys(ids, text, chromedp.ByNodeID),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", h.Describe(), err)
	}
	h.drv.settle()
	return nil
}

func (h *cdpHandle) Describe() string {
	var parts []string
	for c := h; c != nil && c.parent != nil; c = c.parent {
		part := c.sel.String()
		if c.nth >= 0 {
			part += fmt.Sprintf(" >> nth=%d", c.nth)
		}
		parts = append([]string{part}, parts...)
	}
	if len(parts) == 0 {
		return "document"
	}
	return strings.Join(parts, " >> ")
}

// settle gives scripted pages a moment between actions when slow motion is set.
func (d *ChromedpDriver) settle() {
	if d.cfg.SlowMoMS > 0 {
		time.Sleep(time.Duration(d.cfg.SlowMoMS) * time.Millisecond)
	}
}
