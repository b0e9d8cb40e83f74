package telegram

import (
	"strings"
	"testing"
	"time"

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

func TestFormatRecommendation(t *testing.T) {
	res := &recommend.Result{
		Choice: recommend.ScoredCandidate{
			Food:  food.Record{Name: "包子", Category: food.CategoryBreakfast, Cost: food.CostLow},
			Score: 135,
		},
		Reason: "早上赶时间，拿上就能走，而且早餐就该吃这个",
	}
	res.Top = []recommend.ScoredCandidate{res.Choice, {Food: food.Record{Name: "手抓饼"}, Score: 120}}

	out := formatRecommendation(res)
	if !strings.Contains(out, "*今天就吃：* 包子") {
		t.Error("Missing choice header")
	}
	if !strings.Contains(out, res.Reason) {
		t.Error("Missing reason")
	}
	if !strings.Contains(out, "2. 手抓饼 (120分)") {
		t.Error("Missing ranked candidate")
	}
}

func TestFormatCook(t *testing.T) {
	res := &app.CookResult{
		Owned: []string{"番茄", "鸡蛋"},
		Ready: []pantry.Match{{Name: "番茄炒蛋", Ratio: 1}},
		Almost: []pantry.Match{
			{Name: "西红柿鸡蛋汤", Ratio: 2.0 / 3, Missing: []string{"葱花"}},
			{Name: "扬州炒饭", Ratio: 1.0 / 6, Missing: []string{"米饭", "火腿"}},
		},
	}
	out := formatCook(res)
	if !strings.Contains(out, "• 番茄炒蛋") {
		t.Error("Missing ready recipe")
	}
	if !strings.Contains(out, "西红柿鸡蛋汤（66%）还缺：葱花") {
		t.Errorf("Missing almost-ready recipe, got:\n%s", out)
	}
	if !strings.Contains(out, "米饭、火腿") {
		t.Error("Missing joined ingredients")
	}

	if out := formatCook(&app.CookResult{}); !strings.Contains(out, "冰箱空空的") {
		t.Errorf("Expected empty pantry message, got %q", out)
	}
}

func TestFormatShoppingAndPantry(t *testing.T) {
	items := []shopping.Item{{Name: "牛奶", Quantity: 1}, {Name: "鸡蛋", Quantity: 2, Bought: true}}
	out := formatShopping(items, shopping.Progress(items))
	if !strings.Contains(out, "⬜ 牛奶 × 1") || !strings.Contains(out, "✅ 鸡蛋 × 2") {
		t.Errorf("Unexpected shopping list:\n%s", out)
	}
	if !strings.Contains(out, "采购进度 50%") {
		t.Error("Missing progress")
	}

	out = formatPantry([]pantry.Item{{Ingredient: "鸡蛋", Quantity: 6}, {Ingredient: "番茄", Quantity: 1}})
	if !strings.Contains(out, "鸡蛋 × 6（充足）") || !strings.Contains(out, "番茄 × 1（快用完）") {
		t.Errorf("Unexpected pantry:\n%s", out)
	}
}

func TestFormatStats(t *testing.T) {
	if out := formatStats(&history.Stats{}); !strings.Contains(out, "还没有吃饭记录") {
		t.Errorf("Expected empty stats message, got %q", out)
	}
	out := formatStats(&history.Stats{
		Total: 4, MostCommon: "包子", MostCommonN: 3, AverageRating: 4.5,
		Modes: []history.ModeCount{{Mode: history.ModeSmart, Count: 3}, {Mode: history.ModeRandom, Count: 1}},
	})
	for _, want := range []string{"一共做了 4 次决定", "包子（3 次）", "4.5", "智能推荐 3，随机 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCheckin(t *testing.T) {
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)
	out := formatCheckin(health.Checkin{Date: day, Water: true})
	if !strings.Contains(out, "10-19") || !strings.Contains(out, "✅ 喝够水") || !strings.Contains(out, "⬜ 吃水果") {
		t.Errorf("Unexpected check-in:\n%s", out)
	}
	if strings.Contains(out, "全部完成") {
		t.Error("Did not expect completion message")
	}
	if out := formatCheckin(health.Checkin{Date: day, Water: true, Fruit: true}); !strings.Contains(out, "全部完成") {
		t.Error("Expected completion message")
	}
}

func TestFormatMetricsReport(t *testing.T) {
	out := formatMetricsReport(
		[]metrics.DailyUsage{{Date: "2026-10-19", TotalExecution: 5, NoCandidates: 1}},
		metrics.SysHealth{AllocMB: 3, SysMB: 12, Goroutines: 9, DataDiskSize: "1.2 MB"},
	)
	if !strings.Contains(out, "*2026-10-19*: 5 execs, 1 empty, 0 errors") {
		t.Errorf("Missing usage line:\n%s", out)
	}
	if !strings.Contains(out, "Disk Data: 1.2 MB") {
		t.Error("Missing disk size")
	}
}

func TestParseQuantityArgs(t *testing.T) {
	tests := []struct {
		args    string
		name    string
		n       int
		wantErr bool
	}{
		{"鸡蛋", "鸡蛋", 1, false},
		{"鸡蛋 6", "鸡蛋", 6, false},
		{"青 椒", "青 椒", 1, false},
		{"鸡蛋 0", "", 0, true},
		{"", "", 0, true},
	}
	for _, tt := range tests {
		name, n, err := parseQuantityArgs(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseQuantityArgs(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if name != tt.name || n != tt.n {
			t.Errorf("parseQuantityArgs(%q) = %q, %d; want %q, %d", tt.args, name, n, tt.name, tt.n)
		}
	}
}

func TestParseRecipeArgs(t *testing.T) {
	rec, err := parseRecipeArgs("奶奶的红烧肉：五花肉，冰糖、 老抽")
	if err != nil {
		t.Fatalf("parseRecipeArgs failed: %v", err)
	}
	if rec.Name != "奶奶的红烧肉" || strings.Join(rec.Ingredients, ",") != "五花肉,冰糖,老抽" {
		t.Errorf("Unexpected recipe: %+v", rec)
	}
	if _, err := parseRecipeArgs("没有冒号"); err == nil {
		t.Error("Expected an error without a separator")
	}
}

func TestQuestionnaireFlow(t *testing.T) {
	var a recommend.Answers
	steps := []struct{ step, value string }{
		{StepSlot, "dinner"},
		{StepMood, "happy"},
		{StepAppetite, "very_hungry"},
		{StepFlavor, "heavy"},
		{StepTime, "ample"},
		{StepExclude, "yes"},
	}
	step := StepSlot
	for _, s := range steps {
		if step != s.step {
			t.Fatalf("Expected step %s, got %s", s.step, step)
		}
		next, err := applyAnswer(&a, s.step, s.value)
		if err != nil {
			t.Fatalf("applyAnswer(%s) failed: %v", s.step, err)
		}
		step = next
	}
	if step != StepDone {
		t.Errorf("Expected questionnaire done, got %s", step)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Expected valid answers, got %v", err)
	}
	if !a.ExcludeRecent || a.Flavor != recommend.FlavorHeavySpicy {
		t.Errorf("Unexpected answers: %+v", a)
	}

	if _, err := applyAnswer(&a, "weather", "sunny"); err == nil {
		t.Error("Expected an error for an unknown step")
	}
}

func TestKeyboards(t *testing.T) {
	_, kb := question(StepMood)
	if len(kb.InlineKeyboard) != 2 || len(kb.InlineKeyboard[0]) != 3 {
		t.Errorf("Expected 5 mood buttons in rows of 3, got %v", kb.InlineKeyboard)
	}
	if got := *kb.InlineKeyboard[0][0].CallbackData; got != "q|mood|happy" {
		t.Errorf("Unexpected callback data %q", got)
	}

	kb = confirmKeyboard(history.ModeSmart, food.Record{ID: 12, Name: "包子"})
	if got := *kb.InlineKeyboard[0][0].CallbackData; got != "ok|smart|12" {
		t.Errorf("Unexpected confirm data %q", got)
	}
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("Expected a feedback row, got %v", kb.InlineKeyboard)
	}
	if like, ban := *kb.InlineKeyboard[1][0].CallbackData, *kb.InlineKeyboard[1][1].CallbackData; like != "like|12" || ban != "ban|12" {
		t.Errorf("Unexpected feedback data %q %q", like, ban)
	}

	kb = confirmKeyboard(history.ModeCategory, food.Record{ID: 3, Name: "寿司", Category: food.CategoryJapanese})
	if got := *kb.InlineKeyboard[0][1].CallbackData; got != "again|category|日料" {
		t.Errorf("Expected redraw within the category, got %q", got)
	}

	kb = categoryKeyboard([]food.Category{food.CategoryBreakfast, food.CategoryDessert, food.CategoryBBQ, food.CategoryJapanese})
	if len(kb.InlineKeyboard) != 2 || *kb.InlineKeyboard[1][0].CallbackData != "cat|日料" {
		t.Errorf("Unexpected category keyboard %v", kb.InlineKeyboard)
	}
}

func TestConfirmKeyboardSkipsOversizedNames(t *testing.T) {
	long := strings.Repeat("菜", 30)
	kb := confirmKeyboard(history.ModeRandom, food.Record{Name: long})
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 1 {
		t.Fatalf("Expected only the redraw button, got %v", kb.InlineKeyboard)
	}
	if got := *kb.InlineKeyboard[0][0].CallbackData; got != "again|random" {
		t.Errorf("Unexpected remaining button %q", got)
	}

	kb = duelKeyboard([]recommend.ScoredCandidate{{Food: food.Record{Name: long}}, {Food: food.Record{ID: 4, Name: "寿司"}}})
	if len(kb.InlineKeyboard[0]) != 1 || *kb.InlineKeyboard[0][0].CallbackData != "ok|pk|4" {
		t.Errorf("Expected only the fitting contender, got %v", kb.InlineKeyboard)
	}
}

func TestCallbackData(t *testing.T) {
	long := strings.Repeat("菜", 30)
	got, ok := callbackData("ok", "manual", long)
	if ok {
		t.Errorf("Expected %d-byte data to be rejected", len(got))
	}
	if got != "ok|manual|"+long {
		t.Errorf("Expected the reference untouched, got %q", got)
	}
	if got, ok := callbackData("ok", "pk", "7"); !ok || got != "ok|pk|7" {
		t.Errorf("Unexpected callback data %q", got)
	}
}

func TestMarkdownEscaping(t *testing.T) {
	res := &recommend.Result{
		Choice: recommend.ScoredCandidate{Food: food.Record{Name: "老王_特制*炒饭", Category: food.CategoryChinese}},
		Reason: recommend.FallbackReason,
	}
	out := formatRecommendation(res)
	if !strings.Contains(out, `老王\_特制\*炒饭`) {
		t.Errorf("Expected escaped name, got:\n%s", out)
	}
	out = formatShopping([]shopping.Item{{Name: "[特价]鸡蛋", Quantity: 1}}, 0)
	if !strings.Contains(out, `\[特价]鸡蛋`) {
		t.Errorf("Expected escaped shopping item, got:\n%s", out)
	}
	out = formatDuel([]recommend.ScoredCandidate{{Food: food.Record{Name: "a_b"}}, {Food: food.Record{Name: "c`d"}}})
	if !strings.Contains(out, `a\_b  VS  c\`+"`"+`d`) {
		t.Errorf("Expected escaped duel, got:\n%s", out)
	}
}

func TestParseFoodArgs(t *testing.T) {
	rec, err := parseFoodArgs("提拉米苏 甜品 $$ Sweet")
	if err != nil {
		t.Fatalf("parseFoodArgs failed: %v", err)
	}
	if rec.Name != "提拉米苏" || rec.Category != food.CategoryDessert || rec.Cost != food.CostMedium || rec.Tag != food.TagSweet {
		t.Errorf("Unexpected record %+v", rec)
	}
	if rec, err := parseFoodArgs("煎饼 早餐"); err != nil || rec.Cost != "" || rec.Tag != food.TagNone {
		t.Errorf("Expected optional fields empty, got %+v, %v", rec, err)
	}
	for _, bad := range []string{"", "煎饼", "煎饼 早餐 cheap"} {
		if _, err := parseFoodArgs(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestPreferenceChange(t *testing.T) {
	p := preference.Default()
	tests := []struct {
		cmd, args string
		changed   bool
	}{
		{"ban", "螺蛳粉", true},
		{"ban", "螺蛳粉", false},
		{"fav", "甜品", true},
		{"avoid", "甜品", true},
		{"mode", "健康", true},
		{"mode", "Healthy", false},
		{"unban", "螺蛳粉", true},
	}
	for _, tt := range tests {
		change, err := preferenceChange(tt.cmd, tt.args)
		if err != nil {
			t.Fatalf("preferenceChange(%s) failed: %v", tt.cmd, err)
		}
		if got := change(&p); got != tt.changed {
			t.Errorf("/%s %s changed = %v, want %v", tt.cmd, tt.args, got, tt.changed)
		}
	}
	if p.HealthMode != preference.HealthModeHealthy || !p.Avoids(food.CategoryDessert) || len(p.FavoriteCategories) != 0 || len(p.Blacklist) != 0 {
		t.Errorf("Unexpected preferences %+v", p)
	}
	if _, err := preferenceChange("mode", "keto"); err == nil {
		t.Error("Expected error for unknown health mode")
	}

	out := formatPreferences(p)
	if !strings.Contains(out, "健康模式：健康") || !strings.Contains(out, "不吃分类：甜品") || !strings.Contains(out, "黑名单：无") {
		t.Errorf("Unexpected preferences text:\n%s", out)
	}
}

func TestSlotAt(t *testing.T) {
	tests := []struct {
		hour int
		want recommend.Slot
	}{
		{7, recommend.SlotBreakfast},
		{12, recommend.SlotLunch},
		{15, recommend.SlotAfternoon},
		{19, recommend.SlotDinner},
		{23, recommend.SlotLateNight},
		{2, recommend.SlotLateNight},
	}
	for _, tt := range tests {
		if got := slotAt(time.Date(2026, 10, 19, tt.hour, 0, 0, 0, time.Local)); got != tt.want {
			t.Errorf("slotAt(%d) = %s, want %s", tt.hour, got, tt.want)
		}
	}
}
