package recommend

import (
	"errors"
	"fmt"
)

// ErrInvalidAnswer is returned when a questionnaire field is outside its domain.
var ErrInvalidAnswer = errors.New("invalid answer value")

// Slot is the time of day the meal is for.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotAfternoon Slot = "afternoon"
	SlotDinner    Slot = "dinner"
	SlotLateNight Slot = "late_night"
)

type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodTired    Mood = "tired"
	MoodStressed Mood = "stressed"
	MoodCalm     Mood = "calm"
	MoodNeutral  Mood = "neutral"
)

type Appetite string

const (
	AppetiteVeryHungry Appetite = "very_hungry"
	AppetiteNormal     Appetite = "normal"
	AppetiteNotHungry  Appetite = "not_hungry"
	AppetiteSpecial    Appetite = "something_special"
)

type Flavor string

const (
	FlavorLightHealthy Flavor = "light"
	FlavorHeavySpicy   Flavor = "heavy"
	FlavorSourSweet    Flavor = "sour_sweet"
	FlavorSavory       Flavor = "savory"
	FlavorAnything     Flavor = "anything"
)

type TimePressure string

const (
	TimeRushed  TimePressure = "rushed"
	TimeAmple   TimePressure = "ample"
	TimeCanWait TimePressure = "can_wait"
)

// Choice is one selectable answer with its display label.
type Choice[T ~string] struct {
	Value T
	Label string
}

var (
	SlotOptions = []Choice[Slot]{
		{SlotBreakfast, "早餐"}, {SlotLunch, "午餐"}, {SlotAfternoon, "下午茶"},
		{SlotDinner, "晚餐"}, {SlotLateNight, "夜宵"},
	}
	MoodOptions = []Choice[Mood]{
		{MoodHappy, "开心"}, {MoodTired, "疲惫"}, {MoodStressed, "压力山大"},
		{MoodCalm, "平静"}, {MoodNeutral, "一般般"},
	}
	AppetiteOptions = []Choice[Appetite]{
		{AppetiteVeryHungry, "饿坏了"}, {AppetiteNormal, "正常"},
		{AppetiteNotHungry, "不太饿"}, {AppetiteSpecial, "想吃点特别的"},
	}
	FlavorOptions = []Choice[Flavor]{
		{FlavorLightHealthy, "清淡健康"}, {FlavorHeavySpicy, "重口麻辣"}, {FlavorSourSweet, "酸甜"},
		{FlavorSavory, "咸鲜"}, {FlavorAnything, "都行"},
	}
	TimeOptions = []Choice[TimePressure]{
		{TimeRushed, "赶时间"}, {TimeAmple, "时间充裕"}, {TimeCanWait, "可以等"},
	}
)

// Answers is one filled-in questionnaire. It is never persisted.
type Answers struct {
	Slot          Slot         `json:"slot"`
	Mood          Mood         `json:"mood"`
	Appetite      Appetite     `json:"appetite"`
	Flavor        Flavor       `json:"flavor"`
	TimePressure  TimePressure `json:"time_pressure"`
	ExcludeRecent bool         `json:"exclude_recent"`
}

// Validate rejects any field outside its enumerated domain.
func (a Answers) Validate() error {
	return errors.Join(
		check("slot", a.Slot, SlotOptions),
		check("mood", a.Mood, MoodOptions),
		check("appetite", a.Appetite, AppetiteOptions),
		check("flavor", a.Flavor, FlavorOptions),
		check("time_pressure", a.TimePressure, TimeOptions),
	)
}

// ParseAnswers builds Answers from raw strings, accepting either the value or
// the display label of each option.
func ParseAnswers(slot, mood, appetite, flavor, pressure string, excludeRecent bool) (Answers, error) {
	var (
		a    Answers
		errs []error
		err  error
	)
	if a.Slot, err = parse("slot", slot, SlotOptions); err != nil {
		errs = append(errs, err)
	}
	if a.Mood, err = parse("mood", mood, MoodOptions); err != nil {
		errs = append(errs, err)
	}
	if a.Appetite, err = parse("appetite", appetite, AppetiteOptions); err != nil {
		errs = append(errs, err)
	}
	if a.Flavor, err = parse("flavor", flavor, FlavorOptions); err != nil {
		errs = append(errs, err)
	}
	if a.TimePressure, err = parse("time_pressure", pressure, TimeOptions); err != nil {
		errs = append(errs, err)
	}
	a.ExcludeRecent = excludeRecent
	return a, errors.Join(errs...)
}

// Label returns the display label for v, or v itself when unknown.
func Label[T ~string](v T, opts []Choice[T]) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Label
		}
	}
	return string(v)
}

func check[T ~string](field string, v T, opts []Choice[T]) error {
	for _, o := range opts {
		if o.Value == v {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q", ErrInvalidAnswer, field, v)
}

func parse[T ~string](field, raw string, opts []Choice[T]) (T, error) {
	for _, o := range opts {
		if string(o.Value) == raw || o.Label == raw {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q", ErrInvalidAnswer, field, raw)
}
