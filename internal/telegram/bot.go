package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"honeyeat/internal/app"
	"honeyeat/internal/config"
	"honeyeat/internal/food"
	"honeyeat/internal/history"
	"honeyeat/internal/logging"
	"honeyeat/internal/metrics"
	"honeyeat/internal/preference"
	"honeyeat/internal/recommend"
)

// SessionTTL is how long a questionnaire, and the answers it collected, stay usable.
const SessionTTL = 30 * time.Minute

// Bot wraps the Telegram API and the app.
type Bot struct {
	api          *tgbotapi.BotAPI
	app          *app.App
	sessions     *SessionRepository
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App, sessions *SessionRepository, metricsStore *metrics.Store) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	logging.Info().Str("account", bot.Self.UserName).Msg("authorized on telegram")

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	logging.Info().Str("description", resp.Description).Msg("webhook set")

	return &Bot{
		api:          bot,
		app:          application,
		sessions:     sessions,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// HandleWebhook parses one update and processes it in the background.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		logging.Warn().Err(err).Msg("error parsing update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch {
	case update.CallbackQuery != nil:
		userID, ok := b.userFor(update.CallbackQuery.From)
		if !ok {
			return
		}
		metrics.BotUpdatesTotal.WithLabelValues("callback").Inc()
		go b.handleCallbackQuery(userID, update.CallbackQuery)
	case update.Message != nil:
		userID, ok := b.userFor(update.Message.From)
		if !ok {
			return
		}
		metrics.BotUpdatesTotal.WithLabelValues("message").Inc()
		go b.processMessage(userID, update.Message)
	}
}

func (b *Bot) userFor(from *tgbotapi.User) (string, bool) {
	if from == nil {
		return "", false
	}
	userID, ok := b.cfg.TelegramUsers[from.ID]
	if !ok {
		logging.Warn().Int64("telegram_id", from.ID).Str("username", from.UserName).Msg("unauthorized access attempt")
		metrics.BotUpdatesTotal.WithLabelValues("unauthorized").Inc()
	}
	return userID, ok
}

func (b *Bot) processMessage(userID string, msg *tgbotapi.Message) {
	ctx := context.Background()
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "eat":
		b.startQuestionnaire(ctx, userID, chatID, history.ModeSmart)
	case "pk":
		b.startQuestionnaire(ctx, userID, chatID, history.ModePK)
	case "random":
		b.sendRandom(ctx, userID, chatID, 0)
	case "fridge":
		items, err := b.app.Pantry(ctx, userID)
		if err != nil {
			b.fail(chatID, "load pantry", err)
			return
		}
		b.send(chatID, formatPantry(items), nil)
	case "add":
		name, n, err := parseQuantityArgs(args)
		if err != nil {
			b.send(chatID, "❌ "+esc(err.Error()), nil)
			return
		}
		if err := b.app.Stock(ctx, userID, name, n); err != nil {
			b.fail(chatID, "stock pantry", err)
			return
		}
		b.send(chatID, fmt.Sprintf("🧊 放进冰箱：%s × %d", esc(name), n), nil)
	case "use":
		name, n, err := parseQuantityArgs(args)
		if err != nil {
			b.send(chatID, "❌ "+esc(err.Error()), nil)
			return
		}
		left, err := b.app.Use(ctx, userID, name, n)
		if err != nil {
			b.fail(chatID, "use pantry", err)
			return
		}
		if left == 0 {
			b.send(chatID, fmt.Sprintf("🍳 %s 用完啦", esc(name)), nil)
		} else {
			b.send(chatID, fmt.Sprintf("🍳 %s 还剩 %d", esc(name), left), nil)
		}
	case "cook":
		b.sendCook(ctx, userID, chatID)
	case "recipe":
		rec, err := parseRecipeArgs(args)
		if err != nil {
			b.send(chatID, "❌ "+esc(err.Error()), nil)
			return
		}
		if err := b.app.SaveRecipe(ctx, userID, rec); err != nil {
			b.fail(chatID, "save recipe", err)
			return
		}
		b.send(chatID, fmt.Sprintf("📖 已保存私房菜：%s", esc(rec.Name)), nil)
	case "shop":
		items, progress, err := b.app.ShoppingList(ctx, userID)
		if err != nil {
			b.fail(chatID, "load shopping list", err)
			return
		}
		b.send(chatID, formatShopping(items, progress), nil)
	case "bought":
		if args == "" {
			b.send(chatID, "❌ 请告诉我买到了什么", nil)
			return
		}
		ok, err := b.app.Bought(ctx, userID, args)
		if err != nil {
			b.fail(chatID, "mark bought", err)
			return
		}
		if !ok {
			b.send(chatID, fmt.Sprintf("🤔 清单里没有待买的 %s", esc(args)), nil)
			return
		}
		b.send(chatID, fmt.Sprintf("✅ %s 已买到，放进冰箱了", esc(args)), nil)
	case "clear":
		n, err := b.app.ClearBought(ctx, userID)
		if err != nil {
			b.fail(chatID, "clear shopping list", err)
			return
		}
		b.send(chatID, fmt.Sprintf("🧹 清掉了 %d 项", n), nil)
	case "checkin":
		c, err := b.app.Checkin(ctx, userID)
		if err != nil {
			b.fail(chatID, "load check-in", err)
			return
		}
		kb := checkinKeyboard()
		b.send(chatID, formatCheckin(c), &kb)
	case "stats":
		s, err := b.app.Stats(ctx, userID)
		if err != nil {
			b.fail(chatID, "load stats", err)
			return
		}
		b.send(chatID, formatStats(s), nil)
	case "category":
		b.handleCategory(ctx, userID, chatID, args)
	case "prefs":
		prefs, err := b.app.Preferences(ctx, userID)
		if err != nil {
			b.fail(chatID, "load preferences", err)
			return
		}
		b.send(chatID, formatPreferences(prefs), nil)
	case "ban", "unban", "fav", "avoid", "mode":
		b.handlePreferenceCommand(ctx, userID, chatID, msg.Command(), args)
	case "food":
		rec, err := parseFoodArgs(args)
		if err != nil {
			b.send(chatID, "❌ "+esc(err.Error()), nil)
			return
		}
		if _, err := b.app.AddFood(ctx, rec); err != nil {
			if errors.Is(err, food.ErrDuplicateName) {
				b.send(chatID, fmt.Sprintf("🤔 菜单里已经有 %s 了", esc(rec.Name)), nil)
				return
			}
			b.fail(chatID, "add food", err)
			return
		}
		b.send(chatID, fmt.Sprintf("🍽 已添加：%s（%s）", esc(rec.Name), esc(string(rec.Category))), nil)
	case "disable", "enable":
		if args == "" {
			b.send(chatID, "❌ 请告诉我菜名", nil)
			return
		}
		active := msg.Command() == "enable"
		if err := b.app.SetFoodActive(ctx, args, active); err != nil {
			if errors.Is(err, app.ErrFoodNotFound) {
				b.send(chatID, fmt.Sprintf("🤔 菜单里没有 %s", esc(args)), nil)
				return
			}
			b.fail(chatID, "set food active", err)
			return
		}
		verb := "下架"
		if active {
			verb = "上架"
		}
		b.send(chatID, fmt.Sprintf("✅ %s 已%s", esc(args), verb), nil)
	case "metrics":
		b.handleMetricsRequest(msg)
	default:
		b.send(chatID, helpText, nil)
	}
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.send(msg.Chat.ID, "⛔ *Access Denied*: Admin only.", nil)
		return
	}
	usage, err := b.metricsStore.GetDailyUsage(context.Background(), 7)
	if err != nil {
		b.fail(msg.Chat.ID, "fetch metrics", err)
		return
	}
	b.send(msg.Chat.ID, formatMetricsReport(usage, metrics.GetSysHealth(dataDir(b.cfg.DatabasePath))), nil)
}

func (b *Bot) startQuestionnaire(ctx context.Context, userID string, chatID int64, mode string) {
	data := SessionContextData{Mode: mode}
	if _, err := b.sessions.Create(ctx, userID, SessionQuestionnaire, StepSlot, data, SessionTTL); err != nil {
		b.fail(chatID, "create session", err)
		return
	}
	text, kb := question(StepSlot)
	b.send(chatID, text, &kb)
}

func (b *Bot) handleCallbackQuery(userID string, query *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))
	if query.Message == nil {
		return
	}
	chatID, messageID := query.Message.Chat.ID, query.Message.MessageID

	parts := strings.SplitN(query.Data, "|", 3)
	switch parts[0] {
	case "q":
		if len(parts) == 3 {
			b.answerQuestion(ctx, userID, chatID, messageID, parts[1], parts[2])
		}
	case "ok":
		if len(parts) == 3 {
			b.confirm(ctx, userID, chatID, messageID, parts[1], parts[2])
		}
	case "again":
		if len(parts) < 2 {
			return
		}
		switch {
		case parts[1] == history.ModeRandom:
			b.sendRandom(ctx, userID, chatID, messageID)
			return
		case parts[1] == history.ModeCategory && len(parts) == 3:
			b.sendCategoryPick(ctx, userID, chatID, messageID, food.Category(parts[2]))
			return
		}
		sess, data, err := b.activeSession(ctx, userID)
		if err != nil || sess == nil || sess.State != StepDone {
			b.edit(chatID, messageID, "⌛ 问卷过期啦，发 /eat 重新开始吧", nil)
			return
		}
		b.runMode(ctx, userID, chatID, messageID, data)
	case "shop":
		if len(parts) < 2 {
			return
		}
		missing, err := b.app.AddMissingToShopping(ctx, userID, parts[1])
		if err != nil {
			b.fail(chatID, "add missing ingredients", err)
			return
		}
		if len(missing) == 0 {
			b.send(chatID, fmt.Sprintf("✅ %s 的食材都齐了", esc(parts[1])), nil)
			return
		}
		b.send(chatID, fmt.Sprintf("🛒 已加入待买清单：%s", strings.Join(escAll(missing), "、")), nil)
	case "like":
		if len(parts) < 2 {
			return
		}
		rec, err := b.app.LikeFood(ctx, userID, parts[1])
		if err != nil {
			b.fail(chatID, "like food", err)
			return
		}
		b.send(chatID, fmt.Sprintf("❤️ 记住啦，以后多推荐%s", esc(string(rec.Category))), nil)
	case "ban":
		if len(parts) < 2 {
			return
		}
		name, err := b.app.DislikeFood(ctx, userID, parts[1])
		if err != nil {
			b.fail(chatID, "dislike food", err)
			return
		}
		b.edit(chatID, messageID, fmt.Sprintf("💔 %s 已拉黑，不会再推荐了", esc(name)), nil)
	case "cat":
		if len(parts) < 2 {
			return
		}
		b.sendCategoryPick(ctx, userID, chatID, messageID, food.Category(parts[1]))
	case "hc":
		if len(parts) < 2 {
			return
		}
		c, err := b.app.ToggleHabit(ctx, userID, parts[1])
		if err != nil {
			b.fail(chatID, "toggle check-in", err)
			return
		}
		kb := checkinKeyboard()
		b.edit(chatID, messageID, formatCheckin(c), &kb)
	}
}

func (b *Bot) activeSession(ctx context.Context, userID string) (*Session, SessionContextData, error) {
	sess, err := b.sessions.GetActive(ctx, userID, SessionQuestionnaire, time.Now())
	if err != nil || sess == nil {
		return nil, SessionContextData{}, err
	}
	data, err := sess.GetContextData()
	if err != nil {
		return nil, SessionContextData{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return sess, data, nil
}

func (b *Bot) answerQuestion(ctx context.Context, userID string, chatID int64, messageID int, step, value string) {
	sess, data, err := b.activeSession(ctx, userID)
	if err != nil {
		b.fail(chatID, "load session", err)
		return
	}
	if sess == nil || sess.State != step {
		b.edit(chatID, messageID, "⌛ 问卷过期啦，发 /eat 重新开始吧", nil)
		return
	}

	next, err := applyAnswer(&data.Answers, step, value)
	if err != nil {
		b.fail(chatID, "apply answer", err)
		return
	}
	if err := b.sessions.Update(ctx, sess.ID, next, data); err != nil {
		b.fail(chatID, "update session", err)
		return
	}
	if next != StepDone {
		text, kb := question(next)
		b.edit(chatID, messageID, text, &kb)
		return
	}
	b.runMode(ctx, userID, chatID, messageID, data)
}

func (b *Bot) runMode(ctx context.Context, userID string, chatID int64, messageID int, data SessionContextData) {
	if data.Mode == history.ModePK {
		duel, err := b.app.PK(ctx, userID, data.Answers)
		if err != nil {
			b.failRecommend(chatID, messageID, err)
			return
		}
		kb := duelKeyboard(duel)
		b.edit(chatID, messageID, formatDuel(duel), &kb)
		return
	}

	res, err := b.app.Recommend(ctx, userID, data.Answers)
	if err != nil {
		b.failRecommend(chatID, messageID, err)
		return
	}
	kb := confirmKeyboard(history.ModeSmart, res.Choice.Food)
	b.edit(chatID, messageID, formatRecommendation(res), &kb)
}

// sendRandom edits messageID when non-zero, otherwise sends a new message.
func (b *Bot) sendRandom(ctx context.Context, userID string, chatID int64, messageID int) {
	pick, err := b.app.Random(ctx, userID, false)
	if err != nil {
		b.failRecommend(chatID, messageID, err)
		return
	}
	text := fmt.Sprintf("🎰 %s 🎰\n\n命运替你选好啦", esc(pick.Food.Name))
	kb := confirmKeyboard(history.ModeRandom, pick.Food)
	if messageID == 0 {
		b.send(chatID, text, &kb)
		return
	}
	b.edit(chatID, messageID, text, &kb)
}

func (b *Bot) confirm(ctx context.Context, userID string, chatID int64, messageID int, mode, ref string) {
	slot := slotAt(time.Now())
	if _, data, err := b.activeSession(ctx, userID); err == nil && data.Answers.Slot != "" {
		slot = data.Answers.Slot
	}

	var (
		name string
		err  error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil && id > 0 {
		name, err = b.app.ConfirmByID(ctx, userID, id, slot, mode, 0)
	} else {
		name = ref
		_, err = b.app.ConfirmByName(ctx, userID, ref, slot, mode, 0)
	}
	if err != nil {
		b.fail(chatID, "record meal", err)
		return
	}
	b.edit(chatID, messageID, fmt.Sprintf("😋 好嘞，今天就吃 %s！已记录", esc(name)), nil)
}

func (b *Bot) handleCategory(ctx context.Context, userID string, chatID int64, args string) {
	if args != "" {
		b.sendCategoryPick(ctx, userID, chatID, 0, food.Category(args))
		return
	}
	cats, err := b.app.Categories(ctx)
	if err != nil {
		b.fail(chatID, "list categories", err)
		return
	}
	kb := categoryKeyboard(cats)
	b.send(chatID, "🎯 *想吃哪一类？*", &kb)
}

// sendCategoryPick edits messageID when non-zero, otherwise sends a new message.
func (b *Bot) sendCategoryPick(ctx context.Context, userID string, chatID int64, messageID int, category food.Category) {
	pick, err := b.app.PickFromCategory(ctx, userID, category, false)
	if err != nil {
		b.failRecommend(chatID, messageID, err)
		return
	}
	text := fmt.Sprintf("🎯 %s 里就吃：%s", esc(string(category)), esc(pick.Food.Name))
	kb := confirmKeyboard(history.ModeCategory, pick.Food)
	if messageID == 0 {
		b.send(chatID, text, &kb)
		return
	}
	b.edit(chatID, messageID, text, &kb)
}

// handlePreferenceCommand applies one of /ban /unban /fav /avoid /mode.
func (b *Bot) handlePreferenceCommand(ctx context.Context, userID string, chatID int64, cmd, args string) {
	if args == "" {
		b.send(chatID, "❌ 请在命令后面写上菜名、分类或模式", nil)
		return
	}
	change, err := preferenceChange(cmd, args)
	if err != nil {
		b.send(chatID, "❌ "+esc(err.Error()), nil)
		return
	}
	prefs, err := b.app.UpdatePreferences(ctx, userID, change)
	if err != nil {
		b.fail(chatID, "save preferences", err)
		return
	}
	b.send(chatID, formatPreferences(prefs), nil)
}

// preferenceChange maps a preference command to the edit it performs.
func preferenceChange(cmd, args string) (func(p *preference.Preferences) bool, error) {
	switch cmd {
	case "ban":
		return func(p *preference.Preferences) bool { return p.Ban(args) }, nil
	case "unban":
		return func(p *preference.Preferences) bool { return p.Unban(args) }, nil
	case "fav":
		return func(p *preference.Preferences) bool { return p.Favor(food.Category(args)) }, nil
	case "avoid":
		return func(p *preference.Preferences) bool { return p.Avoid(food.Category(args)) }, nil
	case "mode":
		mode, err := preference.ParseHealthMode(args)
		if err != nil {
			return nil, fmt.Errorf("健康模式只有 普通、健康、放纵")
		}
		return func(p *preference.Preferences) bool {
			changed := p.HealthMode != mode
			p.HealthMode = mode
			return changed
		}, nil
	}
	return nil, fmt.Errorf("unknown preference command %q", cmd)
}

func (b *Bot) sendCook(ctx context.Context, userID string, chatID int64) {
	res, err := b.app.Cook(ctx, userID)
	if err != nil {
		b.fail(chatID, "match recipes", err)
		return
	}
	if len(res.Almost) == 0 {
		b.send(chatID, formatCook(res), nil)
		return
	}
	kb := shopKeyboard(res.Almost)
	b.send(chatID, formatCook(res), &kb)
}

func (b *Bot) failRecommend(chatID int64, messageID int, err error) {
	text := "😢 没有可推荐的食物了，试试放宽条件吧"
	if !errors.Is(err, app.ErrNoCandidates) {
		logging.Error().Err(err).Msg("recommendation failed")
		text = "❌ 出错了，稍后再试试"
	}
	if messageID == 0 {
		b.send(chatID, text, nil)
		return
	}
	b.edit(chatID, messageID, text, nil)
}

func (b *Bot) fail(chatID int64, op string, err error) {
	logging.Error().Err(err).Str("op", op).Msg("bot operation failed")
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	b.send(chatID, fmt.Sprintf("❌ *出错了：*\n```\n%v\n```", safeErr), nil)
}

func (b *Bot) send(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := b.api.Send(msg); err != nil {
		logging.Warn().Err(err).Int64("chat", chatID).Msg("failed to send message")
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		logging.Warn().Err(err).Int64("chat", chatID).Msg("failed to edit message")
	}
}

// slotAt guesses the meal slot from the clock.
func slotAt(t time.Time) recommend.Slot {
	switch h := t.Hour(); {
	case h >= 5 && h < 10:
		return recommend.SlotBreakfast
	case h >= 10 && h < 14:
		return recommend.SlotLunch
	case h >= 14 && h < 17:
		return recommend.SlotAfternoon
	case h >= 17 && h < 21:
		return recommend.SlotDinner
	}
	return recommend.SlotLateNight
}

func dataDir(dbPath string) string {
	return filepath.Dir(dbPath)
}
