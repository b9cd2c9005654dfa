// Package security flags actions that should not run without confirmation.
package security

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

var (
	destructiveKeywords = []string{
		"delete", "remove", "удалить", "удаление",
		"cancel", "отменить", "отмена",
		"clear", "очистить",
		"reset", "сброс",
		"trash", "корзина",
	}
	paymentKeywords = []string{
		"checkout", "pay", "оплатить", "оплата",
		"purchase", "buy", "купить",
		"place order", "оформить заказ",
	}
)

// SecurityLayer grades actions by the names and descriptions of the
// elements they target.
type SecurityLayer struct {
	fold   cases.Caser
	logger *logrus.Logger
}

// NewSecurityLayer - creates a security layer
func NewSecurityLayer(logger *logrus.Logger) *SecurityLayer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SecurityLayer{
		fold:   cases.Fold(),
		logger: logger,
	}
}

// RequiresApproval holds back high-risk actions.
func (s *SecurityLayer) RequiresApproval(action entities.Action, meta *entities.Metadata) *entities.PendingAction {
	if s.RiskLevel(action, meta) != entities.RiskHigh {
		return nil
	}
	reason := s.reason(meta)
	s.logger.WithFields(logrus.Fields{
		"action":  action.Type,
		"element": meta.Path(),
		"reason":  reason,
	}).Info("action requires approval")
	return &entities.PendingAction{
		Action:  action,
		Element: meta.Path(),
		Risk:    entities.RiskHigh,
		Reason:  reason,
	}
}

// RiskLevel grades clicks on destructive or payment controls high, other
// state-changing actions medium and reads low.
func (s *SecurityLayer) RiskLevel(action entities.Action, meta *entities.Metadata) entities.RiskLevel {
	switch action.Type {
	case entities.ActionClick:
		if s.reason(meta) != "" {
			return entities.RiskHigh
		}
		return entities.RiskMedium
	case entities.ActionFill:
		return entities.RiskMedium
	default:
		return entities.RiskLow
	}
}

func (s *SecurityLayer) reason(meta *entities.Metadata) string {
	if meta == nil {
		return ""
	}
	text := s.fold.String(meta.Name + " " + meta.Description)
	if kw := s.match(text, destructiveKeywords); kw != "" {
		return fmt.Sprintf("destructive control (%s)", kw)
	}
	if kw := s.match(text, paymentKeywords); kw != "" {
		return fmt.Sprintf("payment control (%s)", kw)
	}
	return ""
}

func (s *SecurityLayer) match(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, s.fold.String(kw)) {
			return kw
		}
	}
	return ""
}

var _ interfaces.ActionGuard = (*SecurityLayer)(nil)
