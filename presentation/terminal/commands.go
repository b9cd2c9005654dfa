package terminal

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ui_automation/application/definition"
	"ui_automation/application/element"
	"ui_automation/application/locator"
	"ui_automation/application/session"
	"ui_automation/infrastructure/browser"
	"ui_automation/infrastructure/config"
	"ui_automation/infrastructure/logging"
)

var (
	configPath string
	htmlPath   string
)

// NewRootCommand builds the uia command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "uia",
		Short:        "Wire and drive UI page objects",
		Long:         `uia builds page objects from YAML definitions, wires their locators against a browser or a static HTML file, and runs actions against them.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("UIA_CONFIG"), "TOML configuration file")
	root.PersistentFlags().StringVar(&htmlPath, "html", "", "serve the page from a static HTML file instead of a browser")

	root.AddCommand(newInspectCommand(), newShellCommand())
	return root
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <definition.yaml>",
		Short: "Wire a page definition and print its element tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, defPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging)

	doc, err := definition.Load(defPath)
	if err != nil {
		return err
	}
	driver, err := browser.Open(cfg.Browser, htmlPath, logger)
	if err != nil {
		return err
	}
	defer driver.Close()

	wirer := element.NewWirer(locator.NewResolver(driver), nil, cfg.Wait.Policy(), logger)
	page, err := definition.Build(wirer, doc)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), session.Outline(page))
	return nil
}

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell <definition.yaml>",
		Short: "Run actions against a wired page interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			t, err := NewTerminalInterface(ctx, Options{
				ConfigPath:     configPath,
				DefinitionPath: args[0],
				HTMLPath:       htmlPath,
			}, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer t.Close()
			return t.Run(ctx)
		},
	}
}
