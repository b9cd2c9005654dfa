package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"ui_automation/application/definition"
	"ui_automation/application/element"
	"ui_automation/application/locator"
	"ui_automation/application/session"
	"ui_automation/application/steps"
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/browser"
	"ui_automation/infrastructure/config"
	"ui_automation/infrastructure/logging"
	"ui_automation/infrastructure/report"
	"ui_automation/infrastructure/security"
	"ui_automation/infrastructure/storage"
)

// Options selects what a terminal session loads.
type Options struct {
	ConfigPath     string
	DefinitionPath string
	HTMLPath       string
}

// TerminalInterface wires a page from a definition and drives it from a
// line-oriented prompt.
type TerminalInterface struct {
	cfg      *config.Config
	driver   interfaces.Driver
	session  *session.Session
	guard    interfaces.ActionGuard
	recorder *report.Recorder
	async    *report.Async
	store    *storage.JSONStore
	logger   *logrus.Logger
	reader   *bufio.Reader
	out      io.Writer
}

// NewTerminalInterface - loads configuration, opens the driver and wires the page
func NewTerminalInterface(ctx context.Context, opts Options, in io.Reader, out io.Writer) (*TerminalInterface, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Logging)

	doc, err := definition.Load(opts.DefinitionPath)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewJSONStore(cfg.Report.ResultsDir)
	if err != nil {
		return nil, err
	}

	driver, err := browser.Open(cfg.Browser, opts.HTMLPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	t := &TerminalInterface{
		cfg:      cfg,
		driver:   driver,
		recorder: report.NewRecorder(),
		store:    store,
		guard:    security.NewSecurityLayer(logger),
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
	}

	if nav, ok := driver.(interfaces.Navigator); ok && doc.URL != "" {
		if err := nav.Navigate(ctx, doc.URL); err != nil {
			return nil, multierr.Append(err, driver.Close())
		}
	}

	phrases, err := steps.LoadPhrases(cfg.Report.Locale)
	if err != nil {
		return nil, multierr.Append(err, driver.Close())
	}

	var reporter interfaces.Reporter = report.Tee{
		report.NewLogReporter(logger, cfg.Report.ResultsDir),
		t.recorder,
	}
	if cfg.Report.Async {
		t.async = report.NewAsync(reporter, 64)
		reporter = t.async
	}
	runner := steps.NewRunner(reporter, phrases, logger)
	if cfg.Report.Screenshot {
		runner.WithScreenshots(driver)
	}

	wirer := element.NewWirer(locator.NewResolver(driver), runner, cfg.Wait.Policy(), logger)
	page, err := definition.Build(wirer, doc)
	if err != nil {
		return nil, multierr.Append(err, t.Close())
	}
	t.session = session.New(page, store, logger)
	return t, nil
}

// Session returns the session driven by the prompt.
func (t *TerminalInterface) Session() *session.Session { return t.session }

// Run reads actions until quit or end of input.
func (t *TerminalInterface) Run(ctx context.Context) error {
	fmt.Fprintf(t.out, "Page: %s\n", t.session.Page().Name())
	fmt.Fprintln(t.out, "=================")
	fmt.Fprintln(t.out, "Enter an action (click, fill, text, wait, size, get, at, first, last, dump), 'history', or 'quit'")
	fmt.Fprintln(t.out)

	for {
		fmt.Fprint(t.out, "> ")
		input, err := t.reader.ReadString('\n')
		if err != nil && input == "" {
			if err == io.EOF {
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(t.out, "Bye!")
			return nil
		case "history":
			t.printHistory()
			continue
		}

		action, perr := session.ParseAction(input)
		if perr != nil {
			fmt.Fprintf(t.out, "%v\n", perr)
			continue
		}
		if pending := t.session.Pending(t.guard, action); pending != nil && !t.confirm(pending) {
			fmt.Fprintln(t.out, "skipped")
			continue
		}
		result, xerr := t.session.Execute(ctx, action)
		switch {
		case xerr != nil:
			fmt.Fprintf(t.out, "failed: %v\n", xerr)
		case result.Data != "":
			fmt.Fprintln(t.out, strings.TrimRight(result.Data, "\n"))
		default:
			fmt.Fprintln(t.out, "ok")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (t *TerminalInterface) confirm(p *entities.PendingAction) bool {
	fmt.Fprintf(t.out, "%s %s: %s (risk %s). Confirm? (y/n): ", p.Action.Type, p.Element, p.Reason, p.Risk)
	answer, _ := t.reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (t *TerminalInterface) printHistory() {
	for i, r := range t.session.History() {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		fmt.Fprintf(t.out, "%d. %s %s %s -> %s\n", i+1, r.Action.Type, r.Action.Target, r.Action.Arg, status)
	}
}

// Close flushes reporting, saves the run and closes the driver.
func (t *TerminalInterface) Close() error {
	var err error
	if t.async != nil {
		err = multierr.Append(err, t.async.Close())
	}
	err = multierr.Append(err, t.recorder.Save(t.store))
	err = multierr.Append(err, t.driver.Close())
	return err
}
