package browser

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"ui_automation/domain/interfaces"
	"ui_automation/infrastructure/config"
)

// Open - creates the configured driver, or a static driver over htmlPath when set
func Open(cfg config.BrowserConfig, htmlPath string, logger *logrus.Logger) (interfaces.Driver, error) {
	var (
		drv interfaces.Driver
		err error
	)
	switch {
	case htmlPath != "":
		drv, err = NewStaticDriverFromFile(htmlPath, logger)
	case cfg.Driver == "playwright":
		drv, err = NewPlaywrightDriver(cfg, logger)
	case cfg.Driver == "chromedp":
		drv, err = NewChromedpDriver(cfg, logger)
	case cfg.Driver == "static":
		return nil, fmt.Errorf("the static driver needs an HTML file")
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return drv, nil
}
