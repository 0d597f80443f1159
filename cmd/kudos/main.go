package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"kudos/internal/analytics"
	"kudos/internal/browser"
	"kudos/internal/cmdlog"
	"kudos/internal/config"
	"kudos/internal/jobs"
	"kudos/internal/metrics"
	"kudos/internal/model"
	"kudos/internal/recommend"
	"kudos/internal/schedule"
	"kudos/internal/stage"
	"kudos/internal/store"
	"kudos/internal/store/actionlog"
	"kudos/internal/suggest"
	"kudos/internal/theme"
	"kudos/internal/util"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "scan":
		cmdScan()
	case "users":
		cmdUsers()
	case "suggest":
		cmdSuggest()
	case "stage":
		cmdStage()
	case "monitor":
		cmdMonitor()
	case "schedule":
		cmdSchedule()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: kudos <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create config and template files")
	fmt.Println("  scan        Read the notifications feed into the snapshot")
	fmt.Println("  users       List users ordered by thank-you priority")
	fmt.Println("  suggest     Render the comment a user would get")
	fmt.Println("  stage       Fill a user's comment box (never submits)")
	fmt.Println("  monitor     Show hourly activity from the action log")
	fmt.Println("  schedule    Show the next staging window")
}

func mustLoadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	metrics.StartServer(cfg.Metrics.Addr)
	return cfg
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func connectSurface(ctx context.Context, cfg config.Config) (*browser.Session, *browser.RoomSurface, error) {
	sess, err := browser.Connect(ctx, browser.Config{
		DebugURL:            cfg.Browser.DebugURL,
		ConnectAttempts:     cfg.Browser.ConnectAttempts,
		ConnectBackoffMs:    cfg.Browser.ConnectBackoffMs,
		NavigationTimeoutMs: cfg.Browser.NavigationTimeoutMs,
	}, browser.RoomHost())
	if err != nil {
		return nil, nil, err
	}
	return sess, browser.NewRoomSurface(sess), nil
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./kudos.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if _, err := os.Stat(cfg.Storage.TemplatesPath); os.IsNotExist(err) {
		if err := suggest.SaveTemplates(cfg.Storage.TemplatesPath, suggest.DefaultTemplates()); err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
	fmt.Println("Templates at:", cfg.Storage.TemplatesPath)
}

func cmdScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	cfgPath := fs.String("config", "./kudos.yaml", "config path")
	pages := fs.Int("pages", 0, "max scroll pages (0 = config value)")
	loop := fs.Bool("loop", false, "keep scanning on the configured interval")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	if *pages <= 0 {
		*pages = cfg.Scan.MaxPages
	}

	err := cmdlog.Run("scan", func() error {
		ctx, cancel := signalContext()
		defer cancel()
		sess, surface, err := connectSurface(ctx, cfg)
		if err != nil {
			return err
		}
		defer sess.Close()
		db, err := actionlog.Open(cfg.Storage.ActionLogPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if *loop {
			interval := time.Duration(cfg.Scan.IntervalMinutes) * time.Minute
			return jobs.RunScanLoop(ctx, surface, db, cfg.Storage.SnapshotPath, *pages, interval)
		}
		n, err := jobs.RunScanOnce(ctx, surface, db, cfg.Storage.SnapshotPath, *pages)
		if err != nil {
			return err
		}
		fmt.Printf("Scan complete: %d new events\n", n)
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdUsers() {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	cfgPath := fs.String("config", "./kudos.yaml", "config path")
	limit := fs.Int("limit", 20, "max users to list")
	all := fs.Bool("all", false, "include users with no countable engagement")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)

	st, err := store.Load(cfg.Storage.SnapshotPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	recs := recommend.RankUsers(st, time.Now(), recommend.Options{
		RequireEngagement: !*all,
		Limit:             *limit,
	})
	for _, r := range recs {
		follow := "following"
		if !r.Record.Following {
			follow = "not-following"
		}
		fmt.Printf("%-20s %-18s likes=%d total=%d %s\n",
			util.TruncateRunes(r.Record.UserID, 20), r.Category,
			r.Record.Count(model.ActionLike), r.Record.TotalCount(), follow)
	}
}

func cmdSuggest() {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	cfgPath := fs.String("config", "./kudos.yaml", "config path")
	user := fs.String("user", "", "user id from the snapshot")
	_ = fs.Parse(os.Args[2:])
	if *user == "" {
		fmt.Println("error: -user is required")
		os.Exit(1)
	}
	cfg := mustLoadConfig(*cfgPath)

	st, err := store.Load(cfg.Storage.SnapshotPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	rec, ok := st.Users[*user]
	if !ok {
		fmt.Println("error: no record for", *user)
		os.Exit(1)
	}
	set, err := suggest.LoadTemplates(cfg.Storage.TemplatesPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	s, err := suggest.Suggest(set, rec)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	text, err := suggest.PolishWithLLM(context.Background(), cfg.LLM, rec.DisplayName, s.Text)
	if err != nil {
		text = s.Text
	}
	fmt.Printf("template=%s\n%s\n", s.TemplateID, text)
}

func cmdStage() {
	fs := flag.NewFlagSet("stage", flag.ExitOnError)
	cfgPath := fs.String("config", "./kudos.yaml", "config path")
	user := fs.String("user", "", "user id from the snapshot")
	_ = fs.Parse(os.Args[2:])
	if *user == "" {
		fmt.Println("error: -user is required")
		os.Exit(1)
	}
	cfg := mustLoadConfig(*cfgPath)

	err := cmdlog.Run("stage", func() error {
		ctx, cancel := signalContext()
		defer cancel()
		set, err := suggest.LoadTemplates(cfg.Storage.TemplatesPath)
		if err != nil {
			return err
		}
		sess, surface, err := connectSurface(ctx, cfg)
		if err != nil {
			return err
		}
		defer sess.Close()
		db, err := actionlog.Open(cfg.Storage.ActionLogPath)
		if err != nil {
			return err
		}
		defer db.Close()

		unlock, err := store.Lock(cfg.Storage.SnapshotPath)
		if err != nil {
			return err
		}
		defer unlock()
		st, err := store.Load(cfg.Storage.SnapshotPath)
		if err != nil {
			return err
		}
		svc := &stage.Service{
			Surface:   surface,
			Templates: set,
			Log:       db,
			Limits:    cfg.Staging,
			LLM:       cfg.LLM,
		}
		if err := surface.Open(ctx); err != nil {
			return err
		}
		updated, outcome, err := svc.StageForUser(ctx, st, *user, time.Now())
		if err != nil {
			return err
		}
		switch outcome {
		case model.Staged:
			if err := store.Save(cfg.Storage.SnapshotPath, updated); err != nil {
				return err
			}
			fmt.Println("Comment staged. Review it in the browser and send it yourself.")
		case model.UserNotFound:
			fmt.Println("User not found on the notifications page; nothing staged.")
		case model.InputBlocked:
			fmt.Println("Comment box was blocked; nothing staged.")
		}
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdMonitor() {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	cfgPath := fs.String("config", "./kudos.yaml", "config path")
	hours := fs.Int("hours", 24, "window to report")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)

	db, err := actionlog.Open(cfg.Storage.ActionLogPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer db.Close()
	now := time.Now().UTC()
	actions, err := db.LoadActionsRange(context.Background(), now.Add(-time.Duration(*hours)*time.Hour), now, "")
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	buckets := analytics.HourlyActions(actions)
	for _, k := range analytics.SortedBucketKeys(buckets) {
		fmt.Printf("%s -> %d\n", k.Format("2006-01-02 15:00"), buckets[k])
	}
}

func cmdSchedule() {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	cfgPath := fs.String("config", "./kudos.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	next := schedule.NextWindow(time.Now(), cfg.Staging.QuietHours)
	fmt.Println("Next staging window:", next.Format(time.RFC3339))
}
