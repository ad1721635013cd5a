package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier шлёт администратору сообщение об итогах импорта прайса.
// Нулевой Notifier безопасен: все методы — no-op.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func New(token string, chatID int64) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

func (n *Notifier) send(text string) {
	if n == nil || n.bot == nil {
		return
	}
	_, _ = n.bot.Send(tgbotapi.NewMessage(n.chatID, text))
}

func (n *Notifier) ImportPublished(total, imported int) {
	n.send(fmt.Sprintf("Прайс-лист загружен.\nСтрок: %d\nОбновлено позиций: %d", total, imported))
}

func (n *Notifier) ImportConflicted(groups int) {
	n.send(fmt.Sprintf("Прайс-лист отклонён: конфликтов цен — %d. Файл нужно поправить и загрузить заново.", groups))
}
