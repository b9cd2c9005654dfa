package entities

import (
	"fmt"
	"strings"
)

// Strategy is the way a selector value is interpreted by the driver.
type Strategy string

const (
	StrategyID        Strategy = "id"
	StrategyCSS       Strategy = "css"
	StrategyXPath     Strategy = "xpath"
	StrategyClassName Strategy = "class_name"
)

// Selector is a single committed lookup rule.
type Selector struct {
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Value    string   `json:"value" yaml:"value"`
}

func (s Selector) String() string {
	return fmt.Sprintf("%s=%s", s.Strategy, s.Value)
}

// IsZero reports whether the selector is unset.
func (s Selector) IsZero() bool {
	return s.Strategy == "" && s.Value == ""
}

func ByID(id string) Selector           { return Selector{Strategy: StrategyID, Value: id} }
func ByCSS(css string) Selector         { return Selector{Strategy: StrategyCSS, Value: css} }
func ByXPath(xpath string) Selector     { return Selector{Strategy: StrategyXPath, Value: xpath} }
func ByClassName(class string) Selector { return Selector{Strategy: StrategyClassName, Value: class} }

// LocatorSpec is a declarative locator. At most one field may be non-blank.
type LocatorSpec struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	CSS       string `json:"css,omitempty" yaml:"css,omitempty"`
	XPath     string `json:"xpath,omitempty" yaml:"xpath,omitempty"`
	ClassName string `json:"class_name,omitempty" yaml:"class_name,omitempty"`
}

// Strategies returns the strategies whose value is non-blank, in declaration order.
func (l LocatorSpec) Strategies() []Strategy {
	var out []Strategy
	for _, s := range l.selectors() {
		out = append(out, s.Strategy)
	}
	return out
}

// IsEmpty reports whether no strategy is set.
func (l LocatorSpec) IsEmpty() bool {
	return len(l.selectors()) == 0
}

// Selector commits the locator to its single strategy.
func (l LocatorSpec) Selector() (Selector, error) {
	sels := l.selectors()
	switch len(sels) {
	case 0:
		return Selector{}, ErrEmptyLocator
	case 1:
		return sels[0], nil
	default:
		names := make([]string, len(sels))
		for i, s := range sels {
			names[i] = string(s.Strategy)
		}
		return Selector{}, fmt.Errorf("%w: %s are all set", ErrAmbiguousLocator, strings.Join(names, ", "))
	}
}

func (l LocatorSpec) String() string {
	sels := l.selectors()
	parts := make([]string, len(sels))
	for i, s := range sels {
		parts[i] = s.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (l LocatorSpec) selectors() []Selector {
	var out []Selector
	add := func(s Strategy, v string) {
		if strings.TrimSpace(v) != "" {
			out = append(out, Selector{Strategy: s, Value: strings.TrimSpace(v)})
		}
	}
	add(StrategyID, l.ID)
	add(StrategyCSS, l.CSS)
	add(StrategyXPath, l.XPath)
	add(StrategyClassName, l.ClassName)
	return out
}
