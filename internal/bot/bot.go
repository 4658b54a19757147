package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/example/vocabot/internal/database"
	"github.com/example/vocabot/internal/export"
	"github.com/example/vocabot/internal/practice"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the handlers use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Deps are the services the bot talks to
type Deps struct {
	Engine     *practice.Engine
	Words      *database.WordRepository
	Categories *database.CategoryRepository
	Results    *database.PracticeResultRepository
	Exporter   *export.Exporter
	Logger     logrus.FieldLogger
	Now        func() time.Time
}

// Bot represents the Telegram bot application
type Bot struct {
	botAPI     *tgbotapi.BotAPI
	api        sender
	engine     *practice.Engine
	words      *database.WordRepository
	categories *database.CategoryRepository
	results    *database.PracticeResultRepository
	exporter   *export.Exporter
	userStates *userStates
	log        logrus.FieldLogger
}

// New creates a new bot instance authorized with token
func New(token string, deps Deps) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}

	b := newBot(botAPI, deps)
	b.botAPI = botAPI
	b.log.Infof("Authorized on account %s", botAPI.Self.UserName)
	return b, nil
}

func newBot(api sender, deps Deps) *Bot {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bot{
		api:        api,
		engine:     deps.Engine,
		words:      deps.Words,
		categories: deps.Categories,
		results:    deps.Results,
		exporter:   deps.Exporter,
		userStates: newUserStates(deps.Now),
		log:        log,
	}
}

// Start receives updates until ctx is cancelled. Updates are handled one at
// a time in arrival order.
func (b *Bot) Start(ctx context.Context) error {
	if b.botAPI == nil {
		return fmt.Errorf("bot is not connected to Telegram")
	}

	// Set up the update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.botAPI.GetUpdatesChan(updateConfig)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Stop stops receiving updates
func (b *Bot) Stop() {
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}
	b.log.Info("Bot stopped")
}

// EvictIdle drops remembered chat state older than idle
func (b *Bot) EvictIdle(idle time.Duration) int {
	return b.userStates.EvictIdle(idle)
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.HandleText(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}

	if err != nil {
		b.log.WithError(err).WithField("update_id", update.UpdateID).Error("Failed to handle update")
	}
}

// sendText sends text with an optional inline keyboard
func (b *Bot) sendText(chatID int64, text string, buttons [][]MenuButton) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🎯 Тренировка", CallbackData: cbPractice},
			{Text: "📊 Статистика", CallbackData: cbStats},
		},
		{
			{Text: "📚 Категории", CallbackData: cbCategories},
			{Text: "📝 Добавить слова", CallbackData: cbAddWords},
		},
		{
			{Text: "📥 Экспорт в Excel", CallbackData: cbExport},
		},
	}
}
