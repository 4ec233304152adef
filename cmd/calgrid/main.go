package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"calgrid/internal/capture"
	"calgrid/internal/config"
	"calgrid/internal/grid"
	"calgrid/internal/ics"
	appLog "calgrid/internal/log"
	"calgrid/internal/strips"
	"calgrid/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	out        string
	month      string
	capture    bool
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("calgrid starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"feed_count", len(conf.Feeds),
		"once", flags.once,
	)

	cacheDir := "/var/lib/calgrid/ics-cache"
	previewPath := "/var/lib/calgrid/preview.png"
	if flags.debug {
		cacheDir = "./cache/ics-cache"
		previewPath = "./cache/preview.png"
	}

	render := renderFunc(conf, cacheDir, flags.month)

	if flags.once {
		if err := runOnce(render, flags.out); err != nil {
			appLog.Error("render failed", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(conf, render, previewPath, flags.capture); err != nil {
		appLog.Error("server exited", err)
		os.Exit(1)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig
	flag.StringVar(&cfg.configPath, "config", "/etc/calgrid/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Render the calendar fragment once and exit")
	flag.StringVar(&cfg.out, "out", "", "Write the -once fragment to this file instead of stdout")
	flag.StringVar(&cfg.month, "month", "", "Month to render as YYYY-MM (default: current month)")
	flag.BoolVar(&cfg.capture, "capture", false, "Capture a PNG preview on each refresh (serve mode)")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug logging and relative cache paths")
	flag.Parse()
	return cfg
}

// renderFunc builds the full fetch → parse → expand → bucket → render
// pipeline as a web.RenderFunc.
func renderFunc(conf *config.Config, cacheDir, month string) web.RenderFunc {
	fetcher := ics.NewFetcher(cacheDir)

	return func(ctx context.Context) (string, error) {
		loc := resolveLocation(conf.Timezone)
		first, last, err := monthRange(month, loc)
		if err != nil {
			return "", err
		}

		feeds := make([]ics.Feed, 0, len(conf.Feeds))
		for _, fc := range conf.Feeds {
			if fc.URL == "" {
				continue
			}
			feeds = append(feeds, ics.Feed{ID: fc.ID, URL: fc.URL, Color: fc.Color})
		}

		results, errs := fetcher.FetchAll(ctx, feeds)
		if len(errs) > 0 {
			appLog.Error("some feeds failed to fetch", errors.Join(errs...), "failed", len(errs))
		}

		parsed := make([]ics.ParsedEvent, 0)
		for _, res := range results {
			events, perr := ics.Parse(res.Feed, res.Body)
			if perr != nil {
				appLog.Error("feed parse failed", perr, "id", res.Feed.ID)
				continue
			}
			parsed = append(parsed, events...)
		}

		// Expand across the whole rendered grid so events on the
		// adjacent-month days still show up.
		fdow := conf.FirstDayOfWeek()
		gridStart, weeks := grid.GridSpan(first, last, fdow)
		occs, err := ics.Expand(parsed, ics.ExpandConfig{
			Location:   loc,
			RangeStart: gridStart,
			RangeEnd:   gridStart.AddDate(0, 0, 7*weeks),
		})
		if err != nil {
			return "", err
		}

		cfg := grid.Config{
			Range:           &grid.DateRange{First: first, Last: last},
			Strips:          strips.Build(occs, first, last, fdow),
			FirstDayOfWeek:  fdow,
			AbbrevDayNames:  conf.Render.AbbrevDayNames,
			ShowToday:       conf.Render.ShowToday,
			ShowHeader:      conf.Render.ShowHeader,
			UseAllDay:       conf.Render.UseAllDay,
			SpanHighlight:   conf.Render.SpanHighlight,
			Width:           conf.Render.Width,
			Height:          conf.Render.Height,
			DayNamesHeight:  conf.Render.DayNamesHeight,
			DayNumsHeight:   conf.Render.DayNumsHeight,
			EventHeight:     conf.Render.EventHeight,
			EventMargin:     conf.Render.EventMargin,
			EventPaddingTop: conf.Render.EventPaddingTop,
			Today:           func() time.Time { return time.Now().In(loc) },
		}
		return grid.Render(cfg)
	}
}

func runOnce(render web.RenderFunc, out string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fragment, err := render(ctx)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println(fragment)
		return nil
	}
	return os.WriteFile(out, []byte(fragment), 0o644)
}

func serve(conf *config.Config, render web.RenderFunc, previewPath string, captureEnabled bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	srv := web.NewServer(conf, render, previewPath)
	httpSrv := &http.Server{Addr: conf.Listen, Handler: srv.Handler()}

	refresh := func() {
		srv.Invalidate()
		if !captureEnabled {
			return
		}
		err := capture.PNG(ctx, capture.Options{
			URL:        "http://" + conf.Listen + "/calendar",
			OutputPath: previewPath,
			Width:      conf.Render.Width,
			Height:     conf.Render.Height,
		})
		if err != nil {
			appLog.Error("preview capture failed", err)
		}
	}

	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", conf.RefreshCron, err)
	}
	sched.Start()
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLog.Info("calgrid exiting")
	return nil
}

// monthRange resolves the inclusive date range of the requested month,
// or of the current month when month is empty.
func monthRange(month string, loc *time.Location) (first, last time.Time, err error) {
	if month == "" {
		now := time.Now().In(loc)
		first = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		t, perr := time.ParseInLocation("2006-01", month, loc)
		if perr != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -month %q (want YYYY-MM): %w", month, perr)
		}
		first = t
	}
	return first, first.AddDate(0, 1, -1), nil
}

func resolveLocation(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone, falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
