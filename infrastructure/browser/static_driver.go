package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// StaticDriver serves queries from a parsed HTML document. Every query is
// evaluated against the document as it is at call time, so edits made
// through Mutate are seen by existing handles.
type StaticDriver struct {
	mu     sync.Mutex
	doc    *goquery.Document
	events []string
	logger *logrus.Logger
}

// NewStaticDriver - parses an HTML document into a static driver
func NewStaticDriver(r io.Reader, logger *logrus.Logger) (*StaticDriver, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StaticDriver{doc: doc, logger: logger}, nil
}

// NewStaticDriverFromFile - loads an HTML file into a static driver
func NewStaticDriverFromFile(path string, logger *logrus.Logger) (*StaticDriver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return NewStaticDriver(f, logger)
}

// Root returns the document handle.
func (d *StaticDriver) Root() interfaces.Handle {
	return &staticHandle{drv: d, nth: -1}
}

// Find locates sel from the document root.
func (d *StaticDriver) Find(sel entities.Selector) interfaces.Handle {
	return d.Root().Locate(sel)
}

// Mutate edits the document in place.
func (d *StaticDriver) Mutate(fn func(doc *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.doc)
}

// Events returns the recorded interactions, oldest first.
func (d *StaticDriver) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

// Screenshot returns the serialized document.
func (d *StaticDriver) Screenshot(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out, err := d.doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return []byte(out), nil
}

// Close is a no-op.
func (d *StaticDriver) Close() error {
	return nil
}

func (d *StaticDriver) record(format string, args ...any) {
	event := fmt.Sprintf(format, args...)
	d.events = append(d.events, event)
	d.logger.WithField("driver", "static").Debug(event)
}

type staticHandle struct {
	drv    *StaticDriver
	parent *staticHandle
	sel    entities.Selector
	nth    int
}

func (h *staticHandle) Locate(sel entities.Selector) interfaces.Handle {
	return &staticHandle{drv: h.drv, parent: h, sel: sel, nth: -1}
}

func (h *staticHandle) Nth(i int) interfaces.Handle {
	c := *h
	c.nth = i
	return &c
}

func (h *staticHandle) All(ctx context.Context) ([]interfaces.Handle, error) {
	h.drv.mu.Lock()
	defer h.drv.mu.Unlock()

	nodes, err := h.nodes()
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.Handle, len(nodes))
	for i := range nodes {
		out[i] = h.Nth(i)
	}
	return out, nil
}

func (h *staticHandle) Count(ctx context.Context) (int, error) {
	h.drv.mu.Lock()
	defer h.drv.mu.Unlock()

	nodes, err := h.nodes()
	return len(nodes), err
}

func (h *staticHandle) Exists(ctx context.Context) (bool, error) {
	n, err := h.Count(ctx)
	return n > 0, err
}

func (h *staticHandle) IsVisible(ctx context.Context) (bool, error) {
	h.drv.mu.Lock()
	defer h.drv.mu.Unlock()

	nodes, err := h.nodes()
	if err != nil || len(nodes) == 0 {
		return false, err
	}
	return visible(nodes[0]), nil
}

func (h *staticHandle) Text(ctx context.Context) (string, error) {
	h.drv.mu.Lock()
	defer h.drv.mu.Unlock()

	n, err := h.first()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(goquery.NewDocumentFromNode(n).Text()), nil
}

func (h *staticHandle) Attribute(ctx context.Context, name string) (string, error) {
	h.drv.mu.Lock()
	defer h.drv.mu.Unlock()

	n, err := h.first()
	if err != nil {
		return "", err
	}
	v, _ := attr(n, name)
	return v, nil
}

func (h *staticHandle) Click(ctx context.Context) error {
	h.drv.mu.Lock()
	defer h.drv.mu.Unlock()

	n, err := h.first()
	if err != nil {
		return err
	}
	if t, _ := attr(n, "type"); n.Data == "input" && (t == "checkbox" || t == "radio") {
		if _, checked := attr(n, "checked"); checked {
			removeAttr(n, "checked")
		} else {
			setAttr(n, "checked", "checked")
		}
	}
	h.drv.record("click %s", h.Describe())
	return nil
}

func (h *staticHandle) Fill(ctx context.Context, text string) error {
	h.drv.mu.Lock()
	defer h.drv.mu.Unlock()

	n, err := h.first()
	if err != nil {
		return err
	}
	setAttr(n, "value", text)
	h.drv.record("fill %s %q", h.Describe(), text)
	return nil
}

func (h *staticHandle) Describe() string {
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

// nodes evaluates the query chain. The caller holds drv.mu.
func (h *staticHandle) nodes() ([]*html.Node, error) {
	var found []*html.Node
	if h.parent == nil {
		found = []*html.Node{h.drv.doc.Nodes[0]}
	} else {
		parents, err := h.parent.nodes()
		if err != nil {
			return nil, err
		}
		seen := make(map[*html.Node]bool)
		for _, p := range parents {
			matches, err := query(p, h.sel)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				if !seen[m] {
					seen[m] = true
					found = append(found, m)
				}
			}
		}
	}

	if h.nth < 0 {
		return found, nil
	}
	if h.nth < len(found) {
		return found[h.nth : h.nth+1], nil
	}
	return nil, nil
}

func (h *staticHandle) first() (*html.Node, error) {
	nodes, err := h.nodes()
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrElementNotFound, h.Describe())
	}
	return nodes[0], nil
}

func query(n *html.Node, sel entities.Selector) ([]*html.Node, error) {
	if sel.Strategy == entities.StrategyXPath {
		nodes, err := htmlquery.QueryAll(n, sel.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid xpath %q: %w", sel.Value, err)
		}
		return nodes, nil
	}
	css, ok := cssFor(sel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrUnsupportedStrategy, sel)
	}
	return goquery.NewDocumentFromNode(n).Find(css).Nodes, nil
}

func visible(n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c.Type != html.ElementNode {
			continue
		}
		if _, hidden := attr(c, "hidden"); hidden {
			return false
		}
		if t, _ := attr(c, "type"); c.Data == "input" && t == "hidden" {
			return false
		}
		style, _ := attr(c, "style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
