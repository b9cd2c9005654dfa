package interfaces

import (
	"context"

	"ui_automation/domain/entities"
)

// Handle is a lazily resolved, re-queryable reference to zero or more
// elements. Every read or interaction re-evaluates the query.
type Handle interface {
	// Locate returns a handle scoped to this handle's elements.
	Locate(sel entities.Selector) Handle

	// Nth returns a handle to the i-th match.
	Nth(i int) Handle

	// All snapshots the current matches as individual handles.
	All(ctx context.Context) ([]Handle, error)

	// Count returns the current number of matches.
	Count(ctx context.Context) (int, error)

	// Exists reports whether at least one element matches.
	Exists(ctx context.Context) (bool, error)

	// IsVisible reports whether the first match is visible.
	IsVisible(ctx context.Context) (bool, error)

	// Text returns the text content of the first match.
	Text(ctx context.Context) (string, error)

	// Attribute returns an attribute of the first match.
	Attribute(ctx context.Context, name string) (string, error)

	// Click clicks the first match.
	Click(ctx context.Context) error

	// Fill replaces the value of the first match.
	Fill(ctx context.Context, text string) error

	// Describe returns the query chain for messages.
	Describe() string
}

// Driver defines the browser-query primitive the wiring engine needs
type Driver interface {
	// Root returns the document root handle.
	Root() Handle

	// Find is Root().Locate(sel).
	Find(sel entities.Selector) Handle

	// Screenshot captures the current document.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close releases the session.
	Close() error
}

// Navigator is implemented by drivers backed by a live browser.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}
