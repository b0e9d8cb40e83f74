package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"honeyeat/internal/food"
	"honeyeat/internal/health"
	"honeyeat/internal/history"
	"honeyeat/internal/pantry"
	"honeyeat/internal/recommend"
)

// maxCallbackData is Telegram's limit on callback data, in bytes.
const maxCallbackData = 64

func question(step string) (string, tgbotapi.InlineKeyboardMarkup) {
	switch step {
	case StepSlot:
		return "🕐 *这是哪一顿？*", optionKeyboard(step, recommend.SlotOptions)
	case StepMood:
		return "😊 *现在心情怎么样？*", optionKeyboard(step, recommend.MoodOptions)
	case StepAppetite:
		return "🍚 *饿不饿？*", optionKeyboard(step, recommend.AppetiteOptions)
	case StepFlavor:
		return "🌶 *想吃什么口味？*", optionKeyboard(step, recommend.FlavorOptions)
	case StepTime:
		return "⏱ *时间够吗？*", optionKeyboard(step, recommend.TimeOptions)
	}
	return "🔁 *最近三天吃过的要排除吗？*", tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("排除", "q|"+StepExclude+"|yes"),
			tgbotapi.NewInlineKeyboardButtonData("不排除", "q|"+StepExclude+"|no"),
		),
	)
}

func optionKeyboard[T ~string](step string, opts []recommend.Choice[T]) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, o := range opts {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(o.Label, "q|"+step+"|"+string(o.Value)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// applyAnswer stores value for step and returns the next step.
func applyAnswer(a *recommend.Answers, step, value string) (string, error) {
	var err error
	next := StepDone
	switch step {
	case StepSlot:
		a.Slot, next = recommend.Slot(value), StepMood
	case StepMood:
		a.Mood, next = recommend.Mood(value), StepAppetite
	case StepAppetite:
		a.Appetite, next = recommend.Appetite(value), StepFlavor
	case StepFlavor:
		a.Flavor, next = recommend.Flavor(value), StepTime
	case StepTime:
		a.TimePressure, next = recommend.TimePressure(value), StepExclude
	case StepExclude:
		a.ExcludeRecent = value == "yes"
	default:
		err = fmt.Errorf("unknown questionnaire step %q", step)
	}
	return next, err
}

// foodRef is the callback reference of a dish: its ID, or its name when the
// dish is not in the catalog.
func foodRef(id int64, name string) string {
	if id > 0 {
		return strconv.FormatInt(id, 10)
	}
	return name
}

// confirmKeyboard is shown under a single pick.
// Buttons whose reference does not fit in callback data are left out.
func confirmKeyboard(mode string, f food.Record) tgbotapi.InlineKeyboardMarkup {
	ref := foodRef(f.ID, f.Name)
	var first, second []tgbotapi.InlineKeyboardButton
	if data, ok := callbackData("ok", mode, ref); ok {
		first = append(first, tgbotapi.NewInlineKeyboardButtonData("✅ 就吃这个", data))
	}
	again := "again|" + mode
	if mode == history.ModeCategory {
		again, _ = callbackData("again", mode, string(f.Category))
	}
	if len(again) <= maxCallbackData {
		first = append(first, tgbotapi.NewInlineKeyboardButtonData("🔄 换一个", again))
	}
	if data, ok := callbackData("like", ref); ok {
		second = append(second, tgbotapi.NewInlineKeyboardButtonData("❤️ 喜欢", data))
	}
	if data, ok := callbackData("ban", ref); ok {
		second = append(second, tgbotapi.NewInlineKeyboardButtonData("💔 不想吃", data))
	}
	rows := [][]tgbotapi.InlineKeyboardButton{first}
	if len(second) > 0 {
		rows = append(rows, second)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func duelKeyboard(duel []recommend.ScoredCandidate) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range duel {
		data, ok := callbackData("ok", history.ModePK, foodRef(c.Food.ID, c.Food.Name))
		if !ok {
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("👉 "+c.Food.Name, data))
	}
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 再来一组", "again|"+history.ModePK)),
	}
	if len(row) > 0 {
		rows = append([][]tgbotapi.InlineKeyboardButton{row}, rows...)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func shopKeyboard(almost []pantry.Match) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range almost {
		data, ok := callbackData("shop", m.Name)
		if !ok {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 "+m.Name+" 缺的加入清单", data),
		))
		if len(rows) == 8 {
			break
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func categoryKeyboard(cats []food.Category) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range cats {
		data, ok := callbackData("cat", string(c))
		if !ok {
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(c), data))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func checkinKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💧 喝水", "hc|"+health.HabitWater),
			tgbotapi.NewInlineKeyboardButtonData("🍎 水果", "hc|"+health.HabitFruit),
		),
	)
}

// callbackData joins parts with "|". It reports false when the result exceeds
// the Telegram limit; references are never truncated.
func callbackData(parts ...string) (string, bool) {
	data := strings.Join(parts, "|")
	return data, len(data) <= maxCallbackData
}
