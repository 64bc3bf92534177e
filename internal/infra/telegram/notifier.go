package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

// Notifier posts review decisions into the moderators' telegram
// channel. Sends run in their own goroutine and never propagate
// failures into the request path.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger
}

func NewNotifier(token string, chatID int64, log *zap.Logger) (*Notifier, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is empty")
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Notifier{api: api, chatID: chatID, log: log}, nil
}

func (n *Notifier) ResolutionRecorded(item model.ReviewItem, action enums.AuditAction, actorID string) {
	if n == nil || n.api == nil {
		return
	}

	text := formatDecision(item, action, actorID)
	go func() {
		msg := tgbotapi.NewMessage(n.chatID, text)
		if _, err := n.api.Send(msg); err != nil {
			n.log.Warn("decision notification not sent",
				zap.String("item_id", item.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

func formatDecision(item model.ReviewItem, action enums.AuditAction, actorID string) string {
	var b strings.Builder
	switch action {
	case enums.AuditActionApprove:
		b.WriteString("✅ approved")
	case enums.AuditActionReject:
		b.WriteString("⛔ rejected")
	case enums.AuditActionEscalate:
		b.WriteString("⚠️ escalated")
	case enums.AuditActionReactivate:
		b.WriteString("🔓 reactivated")
	default:
		b.WriteString(strings.ToLower(string(action)))
	}
	fmt.Fprintf(&b, " %s %s", item.ItemType, item.ID)
	if actorID != "" {
		fmt.Fprintf(&b, " by %s", actorID)
	}
	if item.ResolutionReason != nil && *item.ResolutionReason != "" {
		fmt.Fprintf(&b, "\nreason: %s", *item.ResolutionReason)
	}
	return b.String()
}
