package element

import (
	"context"
	"strings"

	"ui_automation/application/steps"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
)

// StepVars returns the placeholder values describing this element.
func (e *Element) StepVars(ctx context.Context) steps.Vars {
	return steps.Vars{
		"element": e.meta.ElementType,
		"name":    e.displayName(ctx),
		"parent":  e.meta.ParentName(),
	}
}

func (e *Element) displayName(ctx context.Context) string {
	if e.meta.NameStrategy != entities.NameFromText || e.handle == nil {
		return e.meta.Name
	}
	text, err := e.handle.Text(ctx)
	if err != nil || strings.TrimSpace(text) == "" {
		return e.meta.Name
	}
	return strings.TrimSpace(text)
}

// Step runs fn as a report step named by key. Widgets use it to report
// their own interactions.
func (e *Element) Step(ctx context.Context, key string, extra steps.Vars, fn func(ctx context.Context) error) error {
	vars := e.StepVars(ctx)
	for k, v := range extra {
		vars[k] = v
	}
	return e.runner.Do(ctx, key, vars, fn)
}

// Click clicks the element.
func (e *Element) Click(ctx context.Context) error {
	return e.Step(ctx, "click", nil, func(ctx context.Context) error {
		h, err := e.Resolve()
		if err != nil {
			return err
		}
		return h.Click(ctx)
	})
}

// Fill replaces the element's value with text.
func (e *Element) Fill(ctx context.Context, text string) error {
	return e.Step(ctx, "fill", steps.Vars{"text": text}, func(ctx context.Context) error {
		h, err := e.Resolve()
		if err != nil {
			return err
		}
		return h.Fill(ctx, text)
	})
}

// Text reads the element's text.
func (e *Element) Text(ctx context.Context) (string, error) {
	return steps.Value(ctx, e.runner, "get_text", e.StepVars(ctx), func(ctx context.Context) (string, error) {
		h, err := e.Resolve()
		if err != nil {
			return "", err
		}
		text, err := h.Text(ctx)
		return strings.TrimSpace(text), err
	})
}

// Attribute reads one attribute of the element.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	vars := e.StepVars(ctx)
	vars["attribute"] = name
	return steps.Value(ctx, e.runner, "get_attribute", vars, func(ctx context.Context) (string, error) {
		h, err := e.Resolve()
		if err != nil {
			return "", err
		}
		return h.Attribute(ctx, name)
	})
}

// IsDisplayed reports whether the element exists and is visible.
func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	return steps.Value(ctx, e.runner, "is_displayed", e.StepVars(ctx), e.displayed)
}

// AssertDisplayed fails with an AssertionError when the element is not displayed.
func (e *Element) AssertDisplayed(ctx context.Context) error {
	return e.Step(ctx, "assert_displayed", nil, func(ctx context.Context) error {
		ok, err := e.displayed(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return entities.Assertf(e.meta.Name, entities.ErrNotFound, "%s is not displayed", e)
		}
		return nil
	})
}

// WaitDisplayed polls until the element is displayed, bounded by the wait policy.
func (e *Element) WaitDisplayed(ctx context.Context) error {
	return e.Step(ctx, "wait_displayed", nil, func(ctx context.Context) error {
		return wait.Until(ctx, e.policy, e.displayed)
	})
}

func (e *Element) displayed(ctx context.Context) (bool, error) {
	h, err := e.Resolve()
	if err != nil {
		return false, err
	}
	ok, err := h.Exists(ctx)
	if err != nil || !ok {
		return false, err
	}
	return h.IsVisible(ctx)
}
