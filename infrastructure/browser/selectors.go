package browser

import (
	"fmt"
	"strconv"

	"ui_automation/domain/entities"
)

// cssFor translates id, css and class-name selectors to CSS. XPath has no
// CSS equivalent and reports false.
func cssFor(sel entities.Selector) (string, bool) {
	switch sel.Strategy {
	case entities.StrategyCSS:
		return sel.Value, true
	case entities.StrategyID:
		return "[id=" + strconv.Quote(sel.Value) + "]", true
	case entities.StrategyClassName:
		return "[class~=" + strconv.Quote(sel.Value) + "]", true
	default:
		return "", false
	}
}

// playwrightSelector prefixes the selector with its playwright engine.
func playwrightSelector(sel entities.Selector) (string, error) {
	if sel.Strategy == entities.StrategyXPath {
		return "xpath=" + sel.Value, nil
	}
	css, ok := cssFor(sel)
	if !ok {
		return "", fmt.Errorf("%w: %s", entities.ErrUnsupportedStrategy, sel)
	}
	return "css=" + css, nil
}
