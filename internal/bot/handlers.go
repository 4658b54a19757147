package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/vocabot/internal/practice"
	"github.com/example/vocabot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// defaultCategoryName is used when a chat has not picked a category
const defaultCategoryName = "General"

// HandleCommand processes bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID, userID := message.Chat.ID, message.From.ID

	switch message.Command() {
	case "start", "menu":
		return b.handleStart(chatID)
	case "help":
		return b.handleHelp(chatID)
	case "category":
		return b.handleCategoryCommand(ctx, chatID, userID, message.CommandArguments())
	case "categories":
		return b.showCategories(ctx, chatID, userID)
	case "add":
		return b.handleAddWords(ctx, chatID, userID)
	case "levels":
		return b.handleLevels(ctx, chatID, userID, message.CommandArguments())
	case "practice":
		return b.startPractice(ctx, chatID, userID)
	case "skip":
		return b.handleSkip(ctx, chatID)
	case "cancel":
		return b.handleCancel(chatID)
	case "stats":
		return b.handleStats(ctx, chatID, userID)
	case "export":
		return b.handleExport(ctx, chatID, userID)
	default:
		return b.sendText(chatID, "Неизвестная команда. Используйте /help для списка команд.", b.MainMenuButtons())
	}
}

// HandleText processes plain messages: answers during practice, word lists
// after /add
func (b *Bot) HandleText(ctx context.Context, message *tgbotapi.Message) error {
	chatID, userID := message.Chat.ID, message.From.ID

	if state, ok := b.engine.State(chatID); ok && state.Phase == practice.PhaseAwaitingAnswer {
		step, err := b.engine.Answer(ctx, chatID, message.Text)
		if err != nil {
			return b.sendError(chatID, err)
		}
		return b.sendStep(chatID, step)
	}

	if b.userStates.get(chatID).Awaiting == awaitingWordList {
		return b.processWordList(ctx, chatID, userID, message.Text)
	}

	return b.sendText(chatID, "Не понимаю. Используйте /menu, чтобы открыть меню.", b.MainMenuButtons())
}

// HandleCallback processes inline keyboard presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.WithError(err).Warn("Failed to answer callback")
	}
	if callback.Message == nil {
		return nil
	}
	chatID, userID := callback.Message.Chat.ID, callback.From.ID

	action, arg := parseCallback(callback.Data)
	switch action {
	case cbMainMenu:
		return b.handleStart(chatID)
	case cbPractice:
		return b.startPractice(ctx, chatID, userID)
	case cbCategories:
		return b.showCategories(ctx, chatID, userID)
	case cbAddWords:
		return b.handleAddWords(ctx, chatID, userID)
	case cbStats:
		return b.handleStats(ctx, chatID, userID)
	case cbExport:
		return b.handleExport(ctx, chatID, userID)
	case cbSkip:
		return b.handleSkip(ctx, chatID)
	case cbCancel:
		return b.handleCancel(chatID)
	case cbCategoryPrefix:
		id, err := parseIntArg(arg)
		if err != nil {
			return err
		}
		return b.selectCategory(ctx, chatID, userID, id)
	case cbLevelPrefix:
		level, err := parseIntArg(arg)
		if err != nil {
			return err
		}
		if err := b.engine.ChooseLevel(chatID, int(level)); err != nil {
			return b.sendError(chatID, err)
		}
		return b.sendText(chatID, "Выберите режим:", modeButtons())
	case cbModePrefix:
		return b.handleModeChoice(chatID, arg)
	case cbTypePrefix:
		mode := b.userStates.get(chatID).PendingMode
		if mode == "" {
			mode = practice.ModeLearn
		}
		q, err := b.engine.StartFromSetup(ctx, chatID, mode, practice.Preference(arg))
		if err != nil {
			return b.sendError(chatID, err)
		}
		return b.sendQuestion(chatID, q)
	case cbOptionPrefix:
		wordID, index, err := parseOptionArg(arg)
		if err != nil {
			return err
		}
		step, err := b.engine.AnswerOption(ctx, chatID, wordID, index)
		if err != nil {
			return b.sendError(chatID, err)
		}
		return b.sendStep(chatID, step)
	default:
		return b.sendText(chatID, "⚠️ Неизвестное действие", b.MainMenuButtons())
	}
}

func (b *Bot) handleStart(chatID int64) error {
	text := `Добро пожаловать! 🎓

Добавляйте слова, разбивайте их на уровни и тренируйтесь:
/category <название> - выбрать или создать категорию
/add - добавить слова
/practice - начать тренировку
/help - список команд`
	return b.sendText(chatID, text, b.MainMenuButtons())
}

func (b *Bot) handleHelp(chatID int64) error {
	text := `📋 Команды:

/menu - главное меню
/category <название> - выбрать или создать категорию
/categories - список категорий
/add - добавить слова в формате "слово - перевод"
/levels <N> - разбить слова категории на уровни по N слов
/practice - начать тренировку из 5 слов
/skip - пропустить текущее слово
/cancel - завершить тренировку
/stats - статистика тренировок
/export - выгрузить прогресс в Excel`
	return b.sendText(chatID, text, nil)
}

// currentCategory returns the chat's selected category, falling back to the
// user's default category
func (b *Bot) currentCategory(ctx context.Context, chatID, userID int64) (*models.Category, error) {
	if id := b.userStates.get(chatID).CategoryID; id != 0 {
		category, err := b.categories.GetCategory(ctx, id)
		if err != nil {
			return nil, err
		}
		if category != nil && category.UserID == userID {
			return category, nil
		}
	}

	category, err := b.findOrCreateCategory(ctx, userID, defaultCategoryName)
	if err != nil {
		return nil, err
	}
	b.userStates.update(chatID, func(s *UserState) { s.CategoryID = category.ID })
	return category, nil
}

func (b *Bot) findOrCreateCategory(ctx context.Context, userID int64, name string) (*models.Category, error) {
	category, err := b.categories.GetByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if category != nil {
		return category, nil
	}

	category = &models.Category{UserID: userID, Name: name}
	if err := b.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (b *Bot) handleCategoryCommand(ctx context.Context, chatID, userID int64, args string) error {
	name := strings.TrimSpace(args)
	if name == "" {
		return b.showCategories(ctx, chatID, userID)
	}

	category, err := b.findOrCreateCategory(ctx, userID, name)
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.selectCategory(ctx, chatID, userID, category.ID)
}

func (b *Bot) selectCategory(ctx context.Context, chatID, userID, categoryID int64) error {
	category, err := b.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if category == nil || category.UserID != userID {
		return b.sendText(chatID, "Категория не найдена.", b.MainMenuButtons())
	}

	b.userStates.update(chatID, func(s *UserState) { s.CategoryID = category.ID })
	text := fmt.Sprintf("📚 Категория «%s» выбрана.", category.Name)
	return b.sendText(chatID, text, [][]MenuButton{
		{
			{Text: "🎯 Тренировка", CallbackData: cbPractice},
			{Text: "📝 Добавить слова", CallbackData: cbAddWords},
		},
	})
}

func (b *Bot) showCategories(ctx context.Context, chatID, userID int64) error {
	categories, err := b.categories.GetAllByUserID(ctx, userID)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if len(categories) == 0 {
		return b.sendText(chatID, "У вас пока нет категорий. Создайте её командой /category <название>.", nil)
	}

	buttons := make([][]MenuButton, 0, len(categories))
	for _, c := range categories {
		buttons = append(buttons, []MenuButton{{Text: c.Name, CallbackData: cbCategoryPrefix + strconv.FormatInt(c.ID, 10)}})
	}
	return b.sendText(chatID, "📚 Выберите категорию:", buttons)
}

func (b *Bot) handleAddWords(ctx context.Context, chatID, userID int64) error {
	category, err := b.currentCategory(ctx, chatID, userID)
	if err != nil {
		return b.sendError(chatID, err)
	}

	b.userStates.update(chatID, func(s *UserState) { s.Awaiting = awaitingWordList })
	text := fmt.Sprintf("Отправьте список слов для категории «%s» в формате:\n"+
		"слово - перевод\n\n"+
		"Например:\n"+
		"hello - привет\n"+
		"world - мир", category.Name)
	return b.sendText(chatID, text, nil)
}

// processWordList stores the pairs of a word list in the chat's category
func (b *Bot) processWordList(ctx context.Context, chatID, userID int64, text string) error {
	b.userStates.update(chatID, func(s *UserState) { s.Awaiting = awaitingNothing })

	category, err := b.currentCategory(ctx, chatID, userID)
	if err != nil {
		return b.sendError(chatID, err)
	}

	pairs, problems := ParseWordList(text)
	var added, skipped int
	for _, pair := range pairs {
		existing, err := b.words.FindByText(ctx, category.ID, pair.Word)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Ошибка при проверке «%s»", pair.Word))
			b.log.WithError(err).Error("Failed to look up word")
			continue
		}
		if existing != nil {
			skipped++
			continue
		}

		word := &models.Word{
			UserID:      userID,
			CategoryID:  category.ID,
			Word:        pair.Word,
			Translation: pair.Translation,
		}
		if err := b.engine.Levels().AssignNewWord(ctx, word); err != nil {
			problems = append(problems, fmt.Sprintf("Ошибка при добавлении «%s»", pair.Word))
			b.log.WithError(err).Error("Failed to assign level")
			continue
		}
		if err := b.words.Create(ctx, word); err != nil {
			problems = append(problems, fmt.Sprintf("Ошибка при добавлении «%s»", pair.Word))
			b.log.WithError(err).Error("Failed to create word")
			continue
		}
		added++
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("✅ Слова обработаны:\n- Добавлено: %d\n- Уже были: %d\n", added, skipped))
	if len(problems) > 0 {
		result.WriteString(fmt.Sprintf("\n❌ Ошибки (%d):\n", len(problems)))
		for _, p := range problems {
			result.WriteString("- " + p + "\n")
		}
	}
	result.WriteString("\nНажмите «Тренировка», чтобы начать!")
	return b.sendText(chatID, result.String(), b.MainMenuButtons())
}

func (b *Bot) handleLevels(ctx context.Context, chatID, userID int64, args string) error {
	size, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return b.sendText(chatID, "Пожалуйста, укажите размер уровня: /levels <число слов>", nil)
	}

	category, err := b.currentCategory(ctx, chatID, userID)
	if err != nil {
		return b.sendError(chatID, err)
	}

	levels := b.engine.Levels()
	if err := levels.ReorganizeIntoLevels(ctx, category.ID, size); err != nil {
		if errors.Is(err, practice.ErrValidation) {
			return b.sendText(chatID, "Размер уровня должен быть положительным числом.", nil)
		}
		return b.sendError(chatID, err)
	}

	r, err := levels.CurrentAndMaxLevel(ctx, userID, category.ID)
	if err != nil {
		return b.sendError(chatID, err)
	}
	text := fmt.Sprintf("✅ Слова категории «%s» разбиты на уровни по %d слов. Уровней: %d", category.Name, size, r.Max)
	return b.sendText(chatID, text, b.MainMenuButtons())
}

func (b *Bot) startPractice(ctx context.Context, chatID, userID int64) error {
	category, err := b.currentCategory(ctx, chatID, userID)
	if err != nil {
		return b.sendError(chatID, err)
	}

	r, err := b.engine.ChooseCategory(ctx, chatID, userID, category.ID)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if r.Leveled() {
		text := fmt.Sprintf("📚 «%s»: выберите уровень (1-%d):", category.Name, r.Max)
		return b.sendText(chatID, text, levelButtons(r.Max))
	}
	return b.sendText(chatID, "Выберите режим:", modeButtons())
}

func (b *Bot) handleModeChoice(chatID int64, arg string) error {
	mode, err := practice.ParseMode(arg)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if state, ok := b.engine.State(chatID); !ok || state.Phase != practice.PhaseSelectingMode {
		return b.sendError(chatID, practice.ErrNoSession)
	}

	b.userStates.update(chatID, func(s *UserState) { s.PendingMode = mode })
	return b.sendText(chatID, "Выберите тип заданий:", typeButtons())
}

func (b *Bot) handleSkip(ctx context.Context, chatID int64) error {
	step, err := b.engine.Skip(ctx, chatID)
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendStep(chatID, step)
}

func (b *Bot) handleCancel(chatID int64) error {
	b.userStates.update(chatID, func(s *UserState) {
		s.Awaiting = awaitingNothing
		s.PendingMode = ""
	})
	if !b.engine.Cancel(chatID) {
		return b.sendText(chatID, "Нечего отменять.", b.MainMenuButtons())
	}
	return b.sendText(chatID, "Тренировка остановлена.", b.MainMenuButtons())
}

func (b *Bot) handleStats(ctx context.Context, chatID, userID int64) error {
	stats, err := b.results.GetUserStats(ctx, userID)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if stats.Sessions == 0 {
		return b.sendText(chatID, "У вас пока нет статистики. Начните тренировку!", b.MainMenuButtons())
	}

	text := fmt.Sprintf("📊 Ваша статистика:\n\n"+
		"Тренировок: %d\n"+
		"Слов отработано: %d\n"+
		"Правильных ответов: %d\n"+
		"Средняя успешность: %.1f%%",
		stats.Sessions, stats.WordsPracticed, stats.CorrectWords, stats.AvgPercentage)
	return b.sendText(chatID, text, b.MainMenuButtons())
}

func (b *Bot) handleExport(ctx context.Context, chatID, userID int64) error {
	category, err := b.currentCategory(ctx, chatID, userID)
	if err != nil {
		return b.sendError(chatID, err)
	}

	var buf bytes.Buffer
	if err := b.exporter.Export(ctx, userID, category.ID, &buf); err != nil {
		return b.sendError(chatID, err)
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  category.Name + ".xlsx",
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("📥 Прогресс по категории «%s»", category.Name)
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send export: %w", err)
	}
	return nil
}

func (b *Bot) sendQuestion(chatID int64, q *practice.Question) error {
	return b.sendText(chatID, q.PromptText, questionButtons(q))
}

// sendStep reports the outcome of an answer, then the next question or the summary
func (b *Bot) sendStep(chatID int64, step *practice.Step) error {
	if err := b.sendText(chatID, outcomeText(step), nil); err != nil {
		return err
	}
	if step.Next != nil {
		return b.sendQuestion(chatID, step.Next)
	}
	if step.Summary != nil {
		return b.sendText(chatID, step.Summary.Report(), b.MainMenuButtons())
	}
	return nil
}

func outcomeText(step *practice.Step) string {
	switch step.Outcome {
	case practice.OutcomeCorrect:
		return "✅ Верно!"
	case practice.OutcomeWrong:
		return fmt.Sprintf("❌ Неверно. Правильный ответ: %s", step.CorrectAnswer)
	default:
		return fmt.Sprintf("⏭ Пропущено. Правильный ответ: %s", step.CorrectAnswer)
	}
}

// sendError tells the user what went wrong; validation errors keep the
// current keyboard
func (b *Bot) sendError(chatID int64, err error) error {
	if !errors.Is(err, practice.ErrValidation) && !errors.Is(err, practice.ErrNoWords) && !errors.Is(err, practice.ErrNoSession) {
		b.log.WithError(err).WithField("chat_id", chatID).Error("Request failed")
	}

	var buttons [][]MenuButton
	if !errors.Is(err, practice.ErrValidation) {
		buttons = b.MainMenuButtons()
	}
	return b.sendText(chatID, errorText(err), buttons)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, practice.ErrNoWords):
		return "😔 Нет доступных слов для тренировки. Добавьте новые слова или выберите другой режим."
	case errors.Is(err, practice.ErrValidation):
		return "⚠️ Некорректный ввод, попробуйте ещё раз."
	case errors.Is(err, practice.ErrNoSession):
		return "Нет активной тренировки. Нажмите /practice, чтобы начать."
	default:
		return "❌ Произошла ошибка. Пожалуйста, попробуйте позже."
	}
}
