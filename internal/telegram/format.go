package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"honeyeat/internal/app"
	"honeyeat/internal/food"
	"honeyeat/internal/health"
	"honeyeat/internal/history"
	"honeyeat/internal/metrics"
	"honeyeat/internal/pantry"
	"honeyeat/internal/preference"
	"honeyeat/internal/recommend"
	"honeyeat/internal/shopping"
)

const helpText = `🍽️ *亲爱的，今天吃什么？*

/eat 回答几个问题，帮你挑一个
/pk 二选一
/random 随便来一个
/fridge 看看冰箱
/add 食材 [数量] 放进冰箱
/use 食材 [数量] 用掉食材
/cook 现在能做什么
/recipe 菜名: 食材1,食材2 添加私房菜谱
/shop 待买清单
/bought 食材 买到了
/clear 清掉已买的
/checkin 今日打卡
/stats 吃饭统计
/category [分类] 按分类随机
/prefs 我的口味设置
/ban 菜名 拉黑 · /unban 菜名 取消拉黑
/fav 分类 最爱 · /avoid 分类 不吃这类
/mode 普通|健康|放纵 健康模式
/food 菜名 分类 [$|$$|$$$] [标签] 添加菜品
/disable 菜名 · /enable 菜名 下架或上架菜品`

// esc escapes user-supplied text for Markdown messages. Escaped text must
// stay outside bold or italic spans.
func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func escAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = esc(s)
	}
	return out
}

func formatRecommendation(res *recommend.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✨ *今天就吃：* %s ✨\n\n", esc(res.Choice.Food.Name)))
	sb.WriteString(fmt.Sprintf("💡 %s\n", res.Reason))
	sb.WriteString(fmt.Sprintf("🏷 %s · %s\n", esc(string(res.Choice.Food.Category)), res.Choice.Food.Cost))
	if len(res.Top) > 1 {
		sb.WriteString("\n📋 *候选榜*\n")
		for i, c := range res.Top {
			sb.WriteString(fmt.Sprintf("%d. %s (%d分)\n", i+1, esc(c.Food.Name), c.Score))
		}
	}
	return sb.String()
}

func formatDuel(duel []recommend.ScoredCandidate) string {
	if len(duel) == 1 {
		return fmt.Sprintf("🥊 只剩一个选择了：%s", esc(duel[0].Food.Name))
	}
	return fmt.Sprintf("🥊 *PK 时间*\n\n%s  VS  %s\n\n选一个吧！", esc(duel[0].Food.Name), esc(duel[1].Food.Name))
}

func formatPantry(items []pantry.Item) string {
	if len(items) == 0 {
		return "🧊 冰箱空空的，用 /add 放点东西吧"
	}
	var sb strings.Builder
	sb.WriteString("🧊 *我的冰箱*\n\n")
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("• %s × %d（%s）\n", esc(it.Ingredient), it.Quantity, it.Status()))
	}
	return sb.String()
}

func formatCook(res *app.CookResult) string {
	if len(res.Owned) == 0 {
		return "🧊 冰箱空空的，先用 /add 放点食材吧"
	}
	if len(res.Ready) == 0 && len(res.Almost) == 0 {
		return "🤔 现有的食材凑不出菜谱里的菜"
	}
	var sb strings.Builder
	if len(res.Ready) > 0 {
		sb.WriteString("✅ *现在就能做*\n")
		for _, m := range res.Ready {
			sb.WriteString(fmt.Sprintf("• %s\n", esc(m.Name)))
		}
		sb.WriteString("\n")
	}
	if len(res.Almost) > 0 {
		sb.WriteString("🛒 *差一点就能做*\n")
		for _, m := range res.Almost {
			sb.WriteString(fmt.Sprintf("• %s（%d%%）还缺：%s\n", esc(m.Name), int(m.Ratio*100), strings.Join(escAll(m.Missing), "、")))
		}
	}
	return sb.String()
}

func formatShopping(items []shopping.Item, progress int) string {
	if len(items) == 0 {
		return "🛒 待买清单是空的"
	}
	var sb strings.Builder
	sb.WriteString("🛒 *待买清单*\n\n")
	for _, it := range items {
		box := "⬜"
		if it.Bought {
			box = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s %s × %d\n", box, esc(it.Name), it.Quantity))
	}
	sb.WriteString(fmt.Sprintf("\n采购进度 %d%%", progress))
	return sb.String()
}

func formatStats(s *history.Stats) string {
	if s == nil || s.Total == 0 {
		return "📊 还没有吃饭记录，先用 /eat 选一顿吧"
	}
	var sb strings.Builder
	sb.WriteString("📊 *吃饭统计*\n\n")
	sb.WriteString(fmt.Sprintf("• 一共做了 %d 次决定\n", s.Total))
	sb.WriteString(fmt.Sprintf("• 最常吃：%s（%d 次）\n", esc(s.MostCommon), s.MostCommonN))
	sb.WriteString(fmt.Sprintf("• 平均评分：%.1f\n", s.AverageRating))
	if len(s.Modes) > 0 {
		parts := make([]string, 0, len(s.Modes))
		for _, m := range s.Modes {
			parts = append(parts, fmt.Sprintf("%s %d", modeLabel(m.Mode), m.Count))
		}
		sb.WriteString("• 决定方式：" + strings.Join(parts, "，") + "\n")
	}
	return sb.String()
}

func modeLabel(mode string) string {
	switch mode {
	case history.ModeSmart:
		return "智能推荐"
	case history.ModeRandom:
		return "随机"
	case history.ModePK:
		return "PK"
	case history.ModeManual:
		return "手动"
	case history.ModeCategory:
		return "分类"
	}
	return mode
}

func formatCheckin(c health.Checkin) string {
	mark := func(ok bool) string {
		if ok {
			return "✅"
		}
		return "⬜"
	}
	text := fmt.Sprintf("💪 *今日打卡* %s\n\n%s 喝够水\n%s 吃水果", c.Date.Format("01-02"), mark(c.Water), mark(c.Fruit))
	if c.Done() {
		text += "\n\n🎉 今天全部完成！"
	}
	return text
}

func formatMetricsReport(usage []metrics.DailyUsage, h metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d execs, %d empty, %d errors (avg %s)\n",
			d.Date, d.TotalExecution, d.NoCandidates, d.Errors, d.AvgLatency))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", h.AllocMB, h.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", h.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", h.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", h.DataDiskSize))
	return sb.String()
}

func formatPreferences(p preference.Preferences) string {
	yesNo := func(ok bool) string {
		if ok {
			return "是"
		}
		return "否"
	}
	list := func(items []string) string {
		if len(items) == 0 {
			return "无"
		}
		return strings.Join(escAll(items), "、")
	}
	cats := func(cs []food.Category) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = string(c)
		}
		return out
	}

	var sb strings.Builder
	sb.WriteString("⚙️ *我的口味*\n\n")
	sb.WriteString(fmt.Sprintf("• 能吃辣：%s\n", yesNo(p.Spicy)))
	sb.WriteString(fmt.Sprintf("• 爱吃甜：%s\n", yesNo(p.Sweet)))
	sb.WriteString(fmt.Sprintf("• 健康模式：%s\n", healthModeLabel(p.HealthMode)))
	sb.WriteString(fmt.Sprintf("• 最爱分类：%s\n", list(cats(p.FavoriteCategories))))
	sb.WriteString(fmt.Sprintf("• 不吃分类：%s\n", list(cats(p.AvoidCategories))))
	sb.WriteString(fmt.Sprintf("• 黑名单：%s\n", list(p.Blacklist)))
	return sb.String()
}

func healthModeLabel(m preference.HealthMode) string {
	switch m {
	case preference.HealthModeHealthy:
		return "健康"
	case preference.HealthModeIndulgent:
		return "放纵"
	}
	return "普通"
}

// parseFoodArgs reads "<name> <category> [cost] [tag]".
func parseFoodArgs(args string) (food.Record, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return food.Record{}, fmt.Errorf("格式：/food 菜名 分类 [$|$$|$$$] [标签]")
	}
	rec := food.Record{Name: fields[0], Category: food.Category(fields[1])}
	for _, f := range fields[2:] {
		if c := food.CostTier(f); c.Valid() {
			rec.Cost = c
			continue
		}
		if t := food.HealthTag(f); t != food.TagNone && t.Valid() {
			rec.Tag = t
			continue
		}
		return food.Record{}, fmt.Errorf("看不懂 %q：价位用 $、$$、$$$，标签用 Healthy、Spicy、CheatMeal、Sweet、Light、Normal", f)
	}
	return rec, nil
}

// parseQuantityArgs reads "<ingredient> [n]"; n defaults to 1.
func parseQuantityArgs(args string) (string, int, error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 0:
		return "", 0, fmt.Errorf("请告诉我食材名字")
	case 1:
		return fields[0], 1, nil
	}
	last := fields[len(fields)-1]
	n, err := strconv.Atoi(last)
	if err != nil {
		return strings.Join(fields, " "), 1, nil
	}
	if n <= 0 {
		return "", 0, fmt.Errorf("数量要大于 0")
	}
	return strings.Join(fields[:len(fields)-1], " "), n, nil
}

// parseRecipeArgs reads "<name>: a, b, c". Full-width separators are accepted.
func parseRecipeArgs(args string) (pantry.Recipe, error) {
	args = strings.ReplaceAll(args, "：", ":")
	name, list, ok := strings.Cut(args, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return pantry.Recipe{}, fmt.Errorf("格式：/recipe 菜名: 食材1,食材2")
	}
	list = strings.NewReplacer("，", ",", "、", ",").Replace(list)
	var ings []string
	for _, ing := range strings.Split(list, ",") {
		if ing = strings.TrimSpace(ing); ing != "" {
			ings = append(ings, ing)
		}
	}
	return pantry.Recipe{Name: name, Ingredients: ings}, nil
}
