package element

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"ui_automation/application/locator"
	"ui_automation/application/steps"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Wirer runs the two wiring passes over a composite's field registry.
type Wirer struct {
	resolver *locator.Resolver
	runner   *steps.Runner
	policy   wait.Policy
	logger   *logrus.Logger
}

// NewWirer - creates a wirer; runner may be nil to disable step reporting
func NewWirer(resolver *locator.Resolver, runner *steps.Runner, policy wait.Policy, logger *logrus.Logger) *Wirer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Wirer{
		resolver: resolver,
		runner:   runner,
		policy:   policy,
		logger:   logger,
	}
}

// Runner returns the step runner handed to wired elements.
func (w *Wirer) Runner() *steps.Runner { return w.runner }

// Policy returns the wait policy handed to wired elements.
func (w *Wirer) Policy() wait.Policy { return w.policy }

// New constructs a composite and wires it. On failure no composite is
// returned.
func New[P Composite](w *Wirer, ctor func() P) (P, error) {
	c := ctor()
	if err := w.Wire(c); err != nil {
		var zero P
		return zero, err
	}
	return c, nil
}

// Within constructs a composite rooted at root and wires it.
func Within[P Composite](w *Wirer, root interfaces.Handle, ctor func() P) (P, error) {
	c := ctor()
	c.base().BindRoot(root)
	if err := w.Wire(c); err != nil {
		var zero P
		return zero, err
	}
	return c, nil
}

// Adopt makes n a child of owner rooted at root and wires n when it is a
// composite. Containers use it for the nodes they construct after wiring.
func (w *Wirer) Adopt(owner entities.MetadataHolder, n Node, root interfaces.Handle, name string) error {
	e := n.base()
	if err := e.canParent(owner); err != nil {
		return err
	}
	e.BindRoot(root)
	if e.meta.Name == "" {
		e.meta.Name = name
	}
	if e.meta.ElementType == "" {
		e.meta.ElementType = defaultType(n)
	}
	if err := e.setParent(owner); err != nil {
		return err
	}
	e.attach(w)
	if c, ok := n.(Composite); ok {
		return w.Wire(c)
	}
	return nil
}

// Wire wires c and, recursively, every composite child of c.
//
// Nested page objects are rejected before anything else. Pass A constructs
// unset fields that declare a locator; failures there are logged and the
// field stays unset. Pass B validates every declaration, set or not, and
// rejects children owned by another composite. Only then does it resolve
// locators, copies names and descriptions and sets parents. Any Pass B
// failure aborts wiring.
func (w *Wirer) Wire(c Composite) error {
	owner := typeName(c)
	root := c.base()

	if _, ok := c.(PageObject); ok {
		root.BindRoot(w.resolver.Root())
	}
	if root.meta.Name == "" {
		root.meta.Name = owner
	}
	if root.meta.ElementType == "" {
		root.meta.ElementType = defaultType(c)
	}
	root.attach(w)

	fields := c.Fields()
	for _, f := range fields {
		if f.pageTyped {
			return entities.NewWiringError(owner, f.name,
				fmt.Errorf("%w: pages are roots and cannot be fields", entities.ErrIllegalNesting))
		}
	}

	for i := range fields {
		w.instantiate(owner, &fields[i])
	}

	for _, f := range fields {
		if err := w.check(c, f); err != nil {
			return entities.NewWiringError(owner, f.name, err)
		}
	}
	for _, f := range fields {
		if err := w.apply(c, f); err != nil {
			return entities.NewWiringError(owner, f.name, err)
		}
	}

	for _, f := range fields {
		child, ok := f.get().(Composite)
		if !ok {
			continue
		}
		if err := w.Wire(child); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wirer) instantiate(owner string, f *Field) {
	if f.get() != nil {
		return
	}
	log := w.logger.WithFields(logrus.Fields{"owner": owner, "field": f.name})
	if !f.HasLocator() {
		log.Warn("field has no locator and is not assigned; it must be set by hand")
		return
	}
	if f.construct == nil {
		log.Warn("field declares a locator but has no constructor; it must be set by hand")
		return
	}

	defer func() {
		if p := recover(); p != nil {
			log.WithField("panic", p).Warn("failed to construct field")
		}
	}()
	if f.construct() == nil {
		log.Warn("constructor returned nil")
	}
}

// check validates a field's declaration, and the ownership of an assigned
// child, without resolving or changing anything. Unset fields are checked
// too: a bad declaration fails wiring even when nothing was constructed.
func (w *Wirer) check(owner Composite, f Field) error {
	if f.validate != nil {
		if err := f.validate(); err != nil {
			return err
		}
	}
	if f.find != nil && f.chained != nil {
		return fmt.Errorf("%w: literal %s and chained %s", entities.ErrConflictingLocator, f.find, f.chained)
	}
	for _, spec := range []*entities.LocatorSpec{f.find, f.chained} {
		if spec == nil {
			continue
		}
		if _, err := spec.Selector(); err != nil {
			return err
		}
	}
	if n := f.get(); n != nil {
		return n.base().canParent(owner)
	}
	return nil
}

func (w *Wirer) apply(owner Composite, f Field) error {
	n := f.get()
	if n == nil {
		return nil
	}
	e := n.base()

	w.applyMetadata(e, n, f)

	switch {
	case f.find != nil:
		h, err := w.resolver.Resolve(*f.find)
		if err != nil {
			return err
		}
		e.commit(*f.find, false, h)
		w.logger.WithFields(logrus.Fields{"field": f.name, "locator": f.find.String()}).Debug("resolved locator")
	case f.chained != nil:
		if err := w.bindChained(owner, e, *f.chained); err != nil {
			return err
		}
	}

	if err := e.setParent(owner); err != nil {
		return err
	}
	e.attach(w)
	return nil
}

// bindChained resolves spec inside owner's root now when the root is known,
// and on first access otherwise.
func (w *Wirer) bindChained(owner Composite, e *Element, spec entities.LocatorSpec) error {
	resolve := func() (interfaces.Handle, error) {
		parent, err := owner.Resolve()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", entities.ErrUnresolvedParent, err)
		}
		return w.resolver.ResolveRelative(spec, parent)
	}

	if !owner.base().IsBound() {
		e.deferResolve(spec, resolve)
		w.logger.WithFields(logrus.Fields{"element": e.meta.Name, "locator": spec.String()}).Debug("deferred chained locator")
		return nil
	}
	h, err := resolve()
	if err != nil {
		return err
	}
	e.commit(spec, true, h)
	return nil
}

func (w *Wirer) applyMetadata(e *Element, n Node, f Field) {
	m := &e.meta
	switch {
	case f.display != "":
		m.Name = f.display
		m.NameStrategy = entities.NameExplicit
	case m.Name == "":
		m.Name = f.name
		m.NameStrategy = entities.NameFromField
	}
	if f.nameFromText {
		m.NameStrategy = entities.NameFromText
	}
	if strings.TrimSpace(f.description) != "" {
		m.Description = f.description
	}
	switch {
	case f.elementType != "":
		m.ElementType = f.elementType
	case m.ElementType == "":
		m.ElementType = defaultType(n)
	}
}

func typeName(v any) string {
	name := strings.TrimLeft(fmt.Sprintf("%T", v), "*")
	prefix, args, generic := strings.Cut(name, "[")
	if i := strings.LastIndex(prefix, "."); i >= 0 {
		prefix = prefix[i+1:]
	}
	if generic {
		return prefix + "[" + args
	}
	return prefix
}
