// Package session executes actions against a page built from a definition
// and keeps their history.
package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"ui_automation/application/definition"
	"ui_automation/application/element"
	"ui_automation/application/list"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// ItemList is the list type definition pages build.
type ItemList = list.List[*definition.Widget]

type interactive interface {
	element.Node
	Click(ctx context.Context) error
	Fill(ctx context.Context, text string) error
	Text(ctx context.Context) (string, error)
	WaitDisplayed(ctx context.Context) error
}

// Session runs actions against one wired page.
type Session struct {
	page    *definition.Page
	store   interfaces.HistoryStore
	history []entities.ActionResult
	logger  *logrus.Logger
}

// New - creates a session; store may be nil to keep history in memory only
func New(page *definition.Page, store interfaces.HistoryStore, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{
		page:    page,
		store:   store,
		history: make([]entities.ActionResult, 0),
		logger:  logger,
	}
}

// Page returns the page the session drives.
func (s *Session) Page() *definition.Page { return s.page }

// History returns the executed actions in order.
func (s *Session) History() []entities.ActionResult { return s.history }

// Execute runs one action and records its result. The returned error is the
// action's failure; a failure to persist the history is only logged.
func (s *Session) Execute(ctx context.Context, action entities.Action) (entities.ActionResult, error) {
	if err := ctx.Err(); err != nil {
		return entities.ActionResult{Action: action}, fmt.Errorf("action canceled: %w", err)
	}

	data, err := s.execute(ctx, action)
	result := entities.ActionResult{Action: action, Success: err == nil, Data: data}
	if err != nil {
		result.Error = err.Error()
	}
	s.history = append(s.history, result)

	log := s.logger.WithFields(logrus.Fields{"action": action.Type, "target": action.Target})
	if err != nil {
		log.WithError(err).Warn("action failed")
	} else {
		log.Debug("action done")
	}

	if s.store != nil {
		if serr := s.store.SaveHistory(s.history); serr != nil {
			s.logger.WithError(serr).Warn("failed to save history")
		}
	}
	return result, err
}

// Pending returns the pending action when guard wants action confirmed
// before it runs. Unknown targets are left for Execute to report.
func (s *Session) Pending(guard interfaces.ActionGuard, action entities.Action) *entities.PendingAction {
	if guard == nil || action.Target == "" {
		return nil
	}
	n, err := s.page.Lookup(action.Target)
	if err != nil {
		return nil
	}
	return guard.RequiresApproval(action, n.Meta())
}

func (s *Session) execute(ctx context.Context, action entities.Action) (string, error) {
	if action.Type == entities.ActionDump && action.Target == "" {
		return Outline(s.page), nil
	}

	n, err := s.page.Lookup(action.Target)
	if err != nil {
		return "", err
	}

	switch action.Type {
	case entities.ActionClick, entities.ActionFill, entities.ActionText, entities.ActionWait:
		el, ok := n.(interactive)
		if !ok {
			return "", fmt.Errorf("%s does not support %s", action.Target, action.Type)
		}
		return interact(ctx, el, action)

	case entities.ActionSize, entities.ActionGet, entities.ActionAt,
		entities.ActionFirst, entities.ActionLast, entities.ActionDump:
		l, ok := n.(*ItemList)
		if !ok {
			if c, isComposite := n.(element.Composite); isComposite && action.Type == entities.ActionDump {
				return Outline(c), nil
			}
			return "", fmt.Errorf("%s is not a list", action.Target)
		}
		return listAction(ctx, l, action)

	default:
		return "", fmt.Errorf("unknown action: %s", action.Type)
	}
}

func interact(ctx context.Context, el interactive, action entities.Action) (string, error) {
	switch action.Type {
	case entities.ActionClick:
		return "", el.Click(ctx)
	case entities.ActionFill:
		return "", el.Fill(ctx, action.Arg)
	case entities.ActionText:
		return el.Text(ctx)
	default:
		return "", el.WaitDisplayed(ctx)
	}
}

func listAction(ctx context.Context, l *ItemList, action entities.Action) (string, error) {
	var item *definition.Widget
	var err error

	switch action.Type {
	case entities.ActionSize:
		n, err := l.Size(ctx)
		return strconv.Itoa(n), err
	case entities.ActionDump:
		return l.Dump(ctx)
	case entities.ActionGet:
		if action.Arg == "" {
			return "", fmt.Errorf("get needs an identity")
		}
		item, err = l.Get(ctx, action.Arg)
	case entities.ActionAt:
		i, perr := strconv.Atoi(action.Arg)
		if perr != nil {
			return "", fmt.Errorf("at needs an index: %w", perr)
		}
		item, err = l.At(ctx, i)
	case entities.ActionFirst:
		item, err = l.First(ctx)
	case entities.ActionLast:
		item, err = l.Last(ctx)
	}
	if err != nil {
		return "", err
	}
	return describeItem(ctx, item), nil
}

func describeItem(ctx context.Context, item *definition.Widget) string {
	id, err := item.ID(ctx)
	if err != nil {
		id = "<" + err.Error() + ">"
	}
	return fmt.Sprintf("%s %q [%s]", item.Name(), id, item.Handle().Describe())
}

// ParseAction parses "type [target [arg...]]", e.g. "fill header.search red kite".
func ParseAction(line string) (entities.Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return entities.Action{}, fmt.Errorf("empty action")
	}
	action := entities.Action{Type: entities.ActionType(strings.ToLower(fields[0]))}
	if len(fields) > 1 {
		action.Target = fields[1]
	}
	if len(fields) > 2 {
		action.Arg = strings.Join(fields[2:], " ")
	}

	switch action.Type {
	case entities.ActionDump:
	case entities.ActionClick, entities.ActionText, entities.ActionWait, entities.ActionSize,
		entities.ActionFirst, entities.ActionLast, entities.ActionFill, entities.ActionGet, entities.ActionAt:
		if action.Target == "" {
			return action, fmt.Errorf("%s needs a target", action.Type)
		}
	default:
		return action, fmt.Errorf("unknown action: %s", action.Type)
	}
	return action, nil
}

// Outline renders c and its wired descendants, one node per line, with
// type, locator and parent.
func Outline(c element.Composite) string {
	var b strings.Builder
	element.Walk(c, func(depth int, field string, n element.Node) {
		meta := n.Meta()
		locator := "-"
		if h := n.Handle(); h != nil {
			locator = h.Describe()
		} else if l, ok := n.(interface{ Locator() entities.LocatorSpec }); ok && !l.Locator().IsEmpty() {
			locator = l.Locator().String() + " (unresolved)"
		}
		parent := meta.ParentName()
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(&b, "%s%s [%s] %s parent=%s\n", strings.Repeat("  ", depth), meta.Name, meta.ElementType, locator, parent)
	})
	return b.String()
}
