package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"honeyeat/internal/app"
	"honeyeat/internal/config"
	"honeyeat/internal/database"
	"honeyeat/internal/food"
	"honeyeat/internal/history"
	"honeyeat/internal/logging"
	"honeyeat/internal/metrics"
	"honeyeat/internal/preference"
	"honeyeat/internal/recommend"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	application := app.NewFromDB(db, nil)

	switch os.Args[1] {
	case "migrate":
		// NewDB already applied every migration.
		fmt.Printf("Database ready at %s\n", cfg.DatabasePath)
	case "recommend":
		cmd := flag.NewFlagSet("recommend", flag.ExitOnError)
		user := cmd.String("user", "bf", "Username to recommend for")
		slot := cmd.String("slot", "lunch", "Meal slot")
		mood := cmd.String("mood", "neutral", "Mood")
		appetite := cmd.String("appetite", "normal", "Appetite")
		flavor := cmd.String("flavor", "anything", "Flavor")
		pressure := cmd.String("time", "can_wait", "Time pressure")
		exclude := cmd.Bool("exclude-recent", false, "Skip foods eaten in the last 3 days")
		pk := cmd.Bool("pk", false, "Draw two contenders instead of one")
		confirm := cmd.Bool("confirm", false, "Record the recommendation as eaten")
		cmd.Parse(os.Args[2:])

		answers, err := recommend.ParseAnswers(*slot, *mood, *appetite, *flavor, *pressure, *exclude)
		if err != nil {
			logging.Fatal().Err(err).Msg("invalid answers")
		}
		if *pk {
			duel, err := application.PK(ctx, *user, answers)
			exitOnNoCandidates(err)
			for i, c := range duel {
				fmt.Printf("%d. %s (%d)\n", i+1, c.Food.Name, c.Score)
			}
			return
		}
		res, err := application.Recommend(ctx, *user, answers)
		exitOnNoCandidates(err)
		fmt.Printf("今天就吃：%s\n%s\n\n", res.Choice.Food.Name, res.Reason)
		for i, c := range res.Top {
			fmt.Printf("%d. %-10s %4d  %s\n", i+1, c.Food.Name, c.Score, strings.Join(c.Reasons, "；"))
		}
		if *confirm {
			if _, err := application.Confirm(ctx, *user, res.Choice.Food, answers.Slot, history.ModeSmart, 0); err != nil {
				logging.Fatal().Err(err).Msg("failed to record meal")
			}
			fmt.Println("\n已记录")
		}
	case "random":
		cmd := flag.NewFlagSet("random", flag.ExitOnError)
		user := cmd.String("user", "bf", "Username to pick for")
		exclude := cmd.Bool("exclude-recent", false, "Skip foods eaten in the last 3 days")
		category := cmd.String("category", "", "Only pick from this category")
		cmd.Parse(os.Args[2:])

		var pick *recommend.ScoredCandidate
		if *category != "" {
			pick, err = application.PickFromCategory(ctx, *user, food.Category(*category), *exclude)
		} else {
			pick, err = application.Random(ctx, *user, *exclude)
		}
		exitOnNoCandidates(err)
		fmt.Printf("🎰 %s\n", pick.Food.Name)
	case "cook":
		cmd := flag.NewFlagSet("cook", flag.ExitOnError)
		user := cmd.String("user", "bf", "Username whose pantry to use")
		cmd.Parse(os.Args[2:])

		res, err := application.Cook(ctx, *user)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to match recipes")
		}
		fmt.Println("=== READY ===")
		for _, m := range res.Ready {
			fmt.Printf("- %s\n", m.Name)
		}
		fmt.Println("\n=== ALMOST ===")
		for _, m := range res.Almost {
			fmt.Printf("- %s (%.0f%%) missing: %s\n", m.Name, m.Ratio*100, strings.Join(m.Missing, ", "))
		}
	case "stats":
		cmd := flag.NewFlagSet("stats", flag.ExitOnError)
		user := cmd.String("user", "bf", "Username")
		cmd.Parse(os.Args[2:])

		s, err := application.Stats(ctx, *user)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to load stats")
		}
		fmt.Printf("Total: %d\nMost common: %s (%d)\nAverage rating: %.1f\n", s.Total, s.MostCommon, s.MostCommonN, s.AverageRating)
		for _, m := range s.Modes {
			fmt.Printf("  %-8s %d\n", m.Mode, m.Count)
		}
	case "prefs":
		runPrefs(ctx, application, os.Args[2:])
	case "food":
		runFood(ctx, application, os.Args[2:])
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metrics.NewStore(db.SQL).Cleanup(ctx, *days)
		if err != nil {
			logging.Fatal().Err(err).Msg("cleanup failed")
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func exitOnNoCandidates(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, app.ErrNoCandidates) {
		fmt.Println("没有可推荐的食物")
		os.Exit(2)
	}
	logging.Fatal().Err(err).Msg("recommendation failed")
}

func printUsage() {
	fmt.Println("Usage: honeyeat <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  migrate            Create or upgrade the database")
	fmt.Println("  recommend          Answer the questionnaire with flags and get a dish")
	fmt.Println("  random             Pick any eligible dish")
	fmt.Println("  cook               List recipes the pantry can make")
	fmt.Println("  stats              Show a user's eating history summary")
	fmt.Println("  prefs              Show or edit a user's preferences")
	fmt.Println("  food               Manage the catalog: add, disable, enable")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}

func runPrefs(ctx context.Context, application *app.App, args []string) {
	cmd := flag.NewFlagSet("prefs", flag.ExitOnError)
	user := cmd.String("user", "bf", "Username")
	ban := cmd.String("ban", "", "Dish to blacklist")
	unban := cmd.String("unban", "", "Dish to take off the blacklist")
	fav := cmd.String("fav", "", "Category to favor")
	avoid := cmd.String("avoid", "", "Category to avoid")
	mode := cmd.String("mode", "", "Health mode: Normal, Healthy or Indulgent")
	spicy := cmd.Bool("spicy", true, "Likes spicy food")
	sweet := cmd.Bool("sweet", false, "Likes sweet food")
	cmd.Parse(args)

	set := map[string]bool{}
	cmd.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var healthMode preference.HealthMode
	if set["mode"] {
		m, err := preference.ParseHealthMode(*mode)
		if err != nil {
			logging.Fatal().Err(err).Msg("invalid health mode")
		}
		healthMode = m
	}

	prefs, err := application.UpdatePreferences(ctx, *user, func(p *preference.Preferences) bool {
		changed := false
		if set["ban"] {
			changed = p.Ban(*ban) || changed
		}
		if set["unban"] {
			changed = p.Unban(*unban) || changed
		}
		if set["fav"] {
			changed = p.Favor(food.Category(*fav)) || changed
		}
		if set["avoid"] {
			changed = p.Avoid(food.Category(*avoid)) || changed
		}
		if set["mode"] && p.HealthMode != healthMode {
			p.HealthMode, changed = healthMode, true
		}
		if set["spicy"] && p.Spicy != *spicy {
			p.Spicy, changed = *spicy, true
		}
		if set["sweet"] && p.Sweet != *sweet {
			p.Sweet, changed = *sweet, true
		}
		return changed
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to update preferences")
	}

	fmt.Printf("User: %s\n", *user)
	fmt.Printf("Spicy: %t  Sweet: %t  Health mode: %s\n", prefs.Spicy, prefs.Sweet, prefs.HealthMode)
	fmt.Printf("Favorite: %v\nAvoid: %v\nBlacklist: %v\n", prefs.FavoriteCategories, prefs.AvoidCategories, prefs.Blacklist)
}

func runFood(ctx context.Context, application *app.App, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: honeyeat food <add|disable|enable> [arguments]")
		os.Exit(1)
	}

	switch args[0] {
	case "add":
		cmd := flag.NewFlagSet("food add", flag.ExitOnError)
		name := cmd.String("name", "", "Dish name")
		category := cmd.String("category", "", "Category, e.g. 早餐 or 甜品")
		cost := cmd.String("cost", "$$", "Cost tier: $, $$ or $$$")
		tag := cmd.String("tag", "", "Health tag: Healthy, Spicy, CheatMeal, Sweet, Light or Normal")
		link := cmd.String("link", "", "Recipe link")
		cmd.Parse(args[1:])

		id, err := application.AddFood(ctx, food.Record{
			Name:       *name,
			Category:   food.Category(*category),
			Cost:       food.CostTier(*cost),
			Tag:        food.HealthTag(*tag),
			RecipeLink: *link,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to add food")
		}
		fmt.Printf("Added %s (id %d)\n", *name, id)
	case "disable", "enable":
		cmd := flag.NewFlagSet("food "+args[0], flag.ExitOnError)
		name := cmd.String("name", "", "Dish name")
		cmd.Parse(args[1:])

		active := args[0] == "enable"
		if err := application.SetFoodActive(ctx, *name, active); err != nil {
			logging.Fatal().Err(err).Msg("failed to update food")
		}
		fmt.Printf("%s active=%t\n", *name, active)
	default:
		fmt.Printf("Unknown food command: %s\n", args[0])
		os.Exit(1)
	}
}
