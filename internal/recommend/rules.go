package recommend

import (
	"slices"
	"strings"

	"honeyeat/internal/food"
	"honeyeat/internal/preference"
)

// Input is the per-call context every rule sees.
type Input struct {
	Answers     Answers
	Preferences preference.Preferences
}

// Rule is one independent scoring adjustment. Applies must be pure.
type Rule struct {
	Name    string
	Applies func(in Input, f food.Record) bool
	Delta   int
	// Reason is appended to the candidate when the rule fires. Penalties carry
	// no reason: the reason text explains why a dish was picked.
	Reason string
}

// ReasonFavorite is the generic reason of the favorite-category rule. It is
// never used as the secondary half of a reason text.
const ReasonFavorite = "是你最爱的那一类"

// Keyword lists matched as literal substrings of the dish name.
var (
	breakfastKeywords = []string{"包子", "馒头", "面包", "三明治", "饼", "油条"}
	stapleKeywords    = []string{"饭", "面", "粉"}
	noodleKeywords    = []string{"面"}
	soothingKeywords  = []string{"粥", "汤"}
	fillingKeywords   = []string{"饭", "面", "汉堡"}
	spicyKeywords     = []string{"辣", "麻", "火锅"}
	sourSweetKeywords = []string{"糖醋", "番茄", "酸甜"}
)

func inCategory(f food.Record, cats ...food.Category) bool {
	return slices.Contains(cats, f.Category)
}

func hasTag(f food.Record, tags ...food.HealthTag) bool {
	return f.Tag != food.TagNone && slices.Contains(tags, f.Tag)
}

func nameHas(f food.Record, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(f.Name, k) {
			return true
		}
	}
	return false
}

func isBreakfastFood(f food.Record) bool {
	return inCategory(f, food.CategoryBreakfast, food.CategoryQuickMeal, food.CategoryLightMeal) ||
		nameHas(f, breakfastKeywords)
}

// DefaultRules is the rule table, evaluated in order. Deltas accumulate; no
// rule short-circuits another.
var DefaultRules = []Rule{
	// Time of day.
	{
		Name: "breakfast_rushed",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Slot == SlotBreakfast && in.Answers.TimePressure == TimeRushed && isBreakfastFood(f)
		},
		Delta:  50,
		Reason: "早上赶时间，拿上就能走",
	},
	{
		Name: "breakfast",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Slot == SlotBreakfast && isBreakfastFood(f)
		},
		Delta:  35,
		Reason: "早餐就该吃这个",
	},
	{
		Name: "breakfast_too_heavy",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Slot == SlotBreakfast &&
				inCategory(f, food.CategoryBigMeal, food.CategoryHotpot, food.CategoryBBQ, food.CategoryChineseFormal)
		},
		Delta: -50,
	},
	{
		Name: "lunch",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Slot == SlotLunch &&
				(inCategory(f, food.CategoryChinese, food.CategoryHomeStyle, food.CategoryFastFood) || nameHas(f, stapleKeywords))
		},
		Delta:  25,
		Reason: "午饭就要吃得实在",
	},
	{
		Name: "afternoon_treat",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Slot == SlotAfternoon &&
				inCategory(f, food.CategoryDessert, food.CategorySnack, food.CategoryLightMeal)
		},
		Delta:  40,
		Reason: "下午茶来点小甜蜜",
	},
	{
		Name: "afternoon_too_heavy",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Slot == SlotAfternoon && inCategory(f, food.CategoryBigMeal, food.CategoryHomeStyle)
		},
		Delta: -20,
	},
	{
		Name: "dinner",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Slot == SlotDinner &&
				inCategory(f, food.CategoryChinese, food.CategoryWestern, food.CategoryJapanese,
					food.CategoryBigMeal, food.CategoryHomeStyle, food.CategoryBBQ)
		},
		Delta:  25,
		Reason: "晚餐好好犒劳自己",
	},
	{
		Name: "late_night",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Slot == SlotLateNight &&
				(inCategory(f, food.CategoryBBQ, food.CategoryQuickMeal, food.CategorySnack) || nameHas(f, noodleKeywords))
		},
		Delta:  40,
		Reason: "夜宵就馋这一口",
	},
	{
		Name: "late_night_too_heavy",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Slot == SlotLateNight && inCategory(f, food.CategoryBigMeal, food.CategoryWestern)
		},
		Delta: -20,
	},

	// Mood.
	{
		Name: "mood_happy",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Mood == MoodHappy && inCategory(f, food.CategoryDessert, food.CategoryBigMeal, food.CategorySnack)
		},
		Delta:  20,
		Reason: "心情好就该吃点开心的",
	},
	{
		Name: "mood_tired",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Mood == MoodTired && (hasTag(f, food.TagHealthy) || nameHas(f, soothingKeywords))
		},
		Delta:  25,
		Reason: "累了就吃点暖胃的",
	},
	{
		Name: "mood_stressed",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Mood == MoodStressed &&
				(hasTag(f, food.TagCheatMeal) ||
					inCategory(f, food.CategoryBigMeal, food.CategoryFastFood, food.CategoryBBQ, food.CategoryDessert))
		},
		Delta:  30,
		Reason: "压力大，吃顿好的解解压",
	},
	{
		Name: "mood_calm",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Mood == MoodCalm &&
				(inCategory(f, food.CategoryHomeStyle, food.CategoryLightMeal, food.CategoryJapanese) || hasTag(f, food.TagLight))
		},
		Delta:  20,
		Reason: "心情平静，来点舒服的",
	},

	// Appetite.
	{
		Name: "appetite_very_hungry",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Appetite == AppetiteVeryHungry &&
				(hasTag(f, food.TagCheatMeal) ||
					inCategory(f, food.CategoryFastFood, food.CategoryBigMeal, food.CategoryBBQ) ||
					nameHas(f, fillingKeywords))
		},
		Delta:  30,
		Reason: "饿坏了，来顿管饱的",
	},
	{
		Name: "appetite_not_hungry",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Appetite == AppetiteNotHungry &&
				(inCategory(f, food.CategoryLightMeal, food.CategoryDessert, food.CategorySnack) || hasTag(f, food.TagLight))
		},
		Delta:  25,
		Reason: "不太饿，吃点轻松的",
	},
	{
		Name: "appetite_special",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Appetite == AppetiteSpecial &&
				(inCategory(f, food.CategoryJapanese, food.CategoryWestern, food.CategoryBigMeal) || f.Cost == food.CostHigh)
		},
		Delta:  30,
		Reason: "想吃点特别的，就它了",
	},

	// Flavor.
	{
		Name: "flavor_light",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Flavor == FlavorLightHealthy && hasTag(f, food.TagHealthy, food.TagLight)
		},
		Delta:  30,
		Reason: "清淡健康，正合口味",
	},
	{
		Name: "flavor_light_penalty",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Flavor == FlavorLightHealthy &&
				(hasTag(f, food.TagSpicy, food.TagCheatMeal) || inCategory(f, food.CategoryBBQ))
		},
		Delta: -25,
	},
	{
		Name: "flavor_heavy",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Flavor == FlavorHeavySpicy && (hasTag(f, food.TagSpicy) || nameHas(f, spicyKeywords))
		},
		Delta:  40,
		Reason: "重口味，够辣够过瘾",
	},
	{
		Name: "flavor_sour_sweet",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.Flavor == FlavorSourSweet && (hasTag(f, food.TagSweet) || nameHas(f, sourSweetKeywords))
		},
		Delta:  25,
		Reason: "酸酸甜甜刚刚好",
	},

	// Time pressure.
	{
		Name: "time_rushed",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.TimePressure == TimeRushed &&
				inCategory(f, food.CategoryFastFood, food.CategoryQuickMeal, food.CategorySnack, food.CategoryLightMeal)
		},
		Delta:  35,
		Reason: "赶时间，快手又方便",
	},
	{
		Name: "time_ample",
		Applies: func(in Input, f food.Record) bool {
			return in.Answers.TimePressure == TimeAmple &&
				inCategory(f, food.CategoryHomeStyle, food.CategoryBigMeal, food.CategoryWestern, food.CategoryJapanese)
		},
		Delta:  15,
		Reason: "时间充裕，可以慢慢享受",
	},

	// Personal preferences.
	{
		Name: "dislikes_spicy",
		Applies: func(in Input, f food.Record) bool {
			return !in.Preferences.Spicy && hasTag(f, food.TagSpicy)
		},
		Delta: -20,
	},
	{
		Name: "likes_sweet",
		Applies: func(in Input, f food.Record) bool {
			return in.Preferences.Sweet && hasTag(f, food.TagSweet)
		},
		Delta:  15,
		Reason: "你最爱吃甜的",
	},
	{
		Name: "favorite_category",
		Applies: func(in Input, f food.Record) bool {
			return in.Preferences.IsFavorite(f.Category)
		},
		Delta:  20,
		Reason: ReasonFavorite,
	},

	// Health mode.
	{
		Name: "health_mode_healthy",
		Applies: func(in Input, f food.Record) bool {
			return in.Preferences.HealthMode == preference.HealthModeHealthy && hasTag(f, food.TagHealthy)
		},
		Delta:  25,
		Reason: "健康模式，吃得安心",
	},
	{
		Name: "health_mode_healthy_cheat",
		Applies: func(in Input, f food.Record) bool {
			return in.Preferences.HealthMode == preference.HealthModeHealthy && hasTag(f, food.TagCheatMeal)
		},
		Delta: -20,
	},
	{
		Name: "health_mode_indulgent",
		Applies: func(in Input, f food.Record) bool {
			return in.Preferences.HealthMode == preference.HealthModeIndulgent && hasTag(f, food.TagCheatMeal)
		},
		Delta:  20,
		Reason: "放纵模式，今天不忌口",
	},
}
