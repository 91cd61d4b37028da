package notification

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotSender is the part of *tgbotapi.BotAPI used to post messages.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts messages to a single chat.
type TelegramNotifier struct {
	bot    BotSender
	chatID int64
}

// NewTelegramBot connects a bot with the given token.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return bot, nil
}

// NewTelegramNotifier builds a TelegramNotifier.
func NewTelegramNotifier(bot BotSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// Send implements Notifier. Attachments follow the text as documents.
func (n *TelegramNotifier) Send(_ context.Context, message Message) error {
	msg := tgbotapi.NewMessage(n.chatID, renderTelegram(message))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}

	for _, a := range message.Attachments {
		doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FileBytes{Name: a.Name, Bytes: a.Data})
		if _, err := n.bot.Send(doc); err != nil {
			return fmt.Errorf("telegram document %s: %w", a.Name, err)
		}
	}
	return nil
}

func renderTelegram(message Message) string {
	var b strings.Builder
	if message.Subject != "" {
		fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(message.Subject))
	}
	if message.Body != "" {
		b.WriteString(html.EscapeString(message.Body))
		b.WriteString("\n")
	}
	for _, f := range message.Fields {
		fmt.Fprintf(&b, "<b>%s:</b> %s\n", html.EscapeString(f.Label), html.EscapeString(f.Value))
	}
	return strings.TrimRight(b.String(), "\n")
}
