package service

import "context"

// TelegramNotifier sends text messages through a Telegram bot.
type TelegramNotifier interface {
	SendMessage(ctx context.Context, botToken, chatID, text string) error
}
