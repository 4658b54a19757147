package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/vocabot/internal/practice"
)

// Callback data of fixed buttons
const (
	cbMainMenu   = "main_menu"
	cbPractice   = "practice"
	cbCategories = "categories"
	cbAddWords   = "add_words"
	cbStats      = "show_stats"
	cbExport     = "export"
	cbSkip       = "skip"
	cbCancel     = "cancel"
)

// Callback data prefixes of buttons carrying an argument
const (
	cbCategoryPrefix = "cat_"
	cbLevelPrefix    = "level_"
	cbModePrefix     = "mode_"
	cbTypePrefix     = "type_"
	cbOptionPrefix   = "opt_"
)

var callbackPrefixes = []string{cbCategoryPrefix, cbLevelPrefix, cbModePrefix, cbTypePrefix, cbOptionPrefix}

// parseCallback splits callback data into its action and argument
func parseCallback(data string) (action, arg string) {
	for _, p := range callbackPrefixes {
		if strings.HasPrefix(data, p) {
			return p, strings.TrimPrefix(data, p)
		}
	}
	return data, ""
}

func parseIntArg(arg string) (int64, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid callback argument %q: %w", arg, err)
	}
	return n, nil
}

func levelButtons(maxLevel int) [][]MenuButton {
	const perRow = 5

	var rows [][]MenuButton
	var row []MenuButton
	for l := 1; l <= maxLevel; l++ {
		row = append(row, MenuButton{Text: strconv.Itoa(l), CallbackData: cbLevelPrefix + strconv.Itoa(l)})
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows, []MenuButton{{Text: "❌ Отмена", CallbackData: cbCancel}})
}

func modeButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🆕 Учить новые", CallbackData: cbModePrefix + string(practice.ModeLearn)},
			{Text: "🔄 Повторять", CallbackData: cbModePrefix + string(practice.ModeReview)},
		},
		{{Text: "❌ Отмена", CallbackData: cbCancel}},
	}
}

func typeButtons() [][]MenuButton {
	pref := func(p practice.Preference) string { return cbTypePrefix + string(p) }
	return [][]MenuButton{
		{
			{Text: "🧠 По уровню знания", CallbackData: pref(practice.PreferAdaptive)},
			{Text: "🎲 Случайно", CallbackData: pref(practice.PreferRandom)},
		},
		{
			{Text: "🔘 Выбор перевода", CallbackData: pref(practice.PreferenceFor(practice.MultipleChoice))},
			{Text: "⌨️ Ввод перевода", CallbackData: pref(practice.PreferenceFor(practice.Translate))},
		},
		{
			{Text: "🔁 Выбор слова", CallbackData: pref(practice.PreferenceFor(practice.ReverseChoice))},
			{Text: "✍️ Ввод слова", CallbackData: pref(practice.PreferenceFor(practice.ReverseTranslate))},
		},
		{{Text: "❌ Отмена", CallbackData: cbCancel}},
	}
}

// optionData encodes an answer option as opt_<word id>_<index>
func optionData(wordID int64, index int) string {
	return cbOptionPrefix + strconv.FormatInt(wordID, 10) + "_" + strconv.Itoa(index)
}

func parseOptionArg(arg string) (wordID int64, index int, err error) {
	w, i, found := strings.Cut(arg, "_")
	if !found {
		return 0, 0, fmt.Errorf("invalid option callback %q", arg)
	}
	if wordID, err = parseIntArg(w); err != nil {
		return 0, 0, err
	}
	n, err := parseIntArg(i)
	if err != nil {
		return 0, 0, err
	}
	return wordID, int(n), nil
}

func questionButtons(q *practice.Question) [][]MenuButton {
	var rows [][]MenuButton
	for i, option := range q.Options {
		rows = append(rows, []MenuButton{{Text: option, CallbackData: optionData(q.WordID, i)}})
	}
	return append(rows, []MenuButton{
		{Text: "⏭ Пропустить", CallbackData: cbSkip},
		{Text: "❌ Завершить", CallbackData: cbCancel},
	})
}
