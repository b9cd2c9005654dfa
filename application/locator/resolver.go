// Package locator turns declarative locator specs into driver handles.
package locator

import (
	"fmt"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Resolver maps a LocatorSpec to a Handle. It performs no queries itself;
// handles are lazy and evaluated when first used.
type Resolver struct {
	driver interfaces.Driver
}

// NewResolver - creates a resolver over a driver
func NewResolver(driver interfaces.Driver) *Resolver {
	return &Resolver{driver: driver}
}

// Resolve resolves spec from the document root.
func (r *Resolver) Resolve(spec entities.LocatorSpec) (interfaces.Handle, error) {
	sel, err := spec.Selector()
	if err != nil {
		return nil, err
	}
	return r.driver.Find(sel), nil
}

// ResolveRelative resolves spec inside parent.
func (r *Resolver) ResolveRelative(spec entities.LocatorSpec, parent interfaces.Handle) (interfaces.Handle, error) {
	sel, err := spec.Selector()
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: cannot resolve %s", entities.ErrUnresolvedParent, sel)
	}
	return parent.Locate(sel), nil
}

// Root returns the document root handle used by page objects.
func (r *Resolver) Root() interfaces.Handle {
	return r.driver.Root()
}

// Driver returns the underlying driver.
func (r *Resolver) Driver() interfaces.Driver {
	return r.driver
}
