package main

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/printyx/printyx-monitor/internal/config"
	"github.com/printyx/printyx-monitor/internal/middleware"
	"github.com/printyx/printyx-monitor/internal/monitor/api"
	"github.com/printyx/printyx-monitor/internal/monitor/client"
	"github.com/printyx/printyx-monitor/internal/monitor/database"
	"github.com/printyx/printyx-monitor/internal/monitor/profile"
	"github.com/printyx/printyx-monitor/internal/monitor/service/aggregate"
	"github.com/printyx/printyx-monitor/internal/monitor/service/breach"
	"github.com/printyx/printyx-monitor/internal/monitor/service/gate"
	"github.com/printyx/printyx-monitor/internal/monitor/service/kpi"
	"github.com/printyx/printyx-monitor/internal/monitor/service/notify"
)

const historyRetention = 30 * 24 * time.Hour

func main() {
	log.Info().Msg("Starting printyx-monitor server")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// optional audit DB; the monitor is fully functional without it
	var db *database.Database
	if d, derr := database.New(cfg.Database.DSN()); derr == nil {
		db = d
		defer db.Close()
	} else {
		log.Error().Err(derr).Msg("audit DB init failed; running without persistence")
	}

	profiles, err := profile.Load(cfg.Monitor.ProfilesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load profiles file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	platform := client.NewFromConfig(&cfg.Platform)
	rdb := aggregate.NewRedisClientFromConfig(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	store := aggregate.NewStore()
	toastCh := make(chan aggregate.Toast, cfg.Monitor.ToastChanSize)
	go aggregate.StartScheduler(ctx, aggregate.Deps{
		Client:   platform,
		Redis:    rdb,
		Store:    store,
		ToastCh:  toastCh,
		Interval: profiles.AlertInterval(parseDuration(cfg.Monitor.AlertInterval, 60*time.Second)),
	})
	go notify.NewConsumer(db, rdb).Start(ctx, toastCh)

	breachMon := breach.NewMonitor(platform).WithRedis(rdb)
	if db != nil {
		breachMon.WithHistory(db)
	}
	go breachMon.Run(ctx, profiles.BreachInterval(parseDuration(cfg.Monitor.BreachInterval, 30*time.Second)))

	kpiMon := kpi.NewMonitor(platform)
	go kpiMon.Run(ctx, profiles.KPIInterval(parseDuration(cfg.Monitor.KPIInterval, 60*time.Second)))

	titles := gate.DefaultTitles()
	titles.Merge(profiles.Titles)
	gates := gate.NewManager(ctx, platform.Validate, parseDuration(cfg.Monitor.GateHideAfter, gate.DefaultHideAfter)).
		WithTitles(titles)
	if db != nil {
		gates.WithAuditor(db)
		go runHistoryPruner(ctx, db)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.TenantAuth(cfg.Platform.TenantID))
	api.NewApi(router, api.Deps{
		Alerts:   store,
		Profiles: profiles,
		Breaches: breachMon,
		KPI:      kpiMon,
		Gates:    gates,
		Redis:    rdb,
	})

	log.Info().Msgf("Starting server on %s", cfg.Server.BindAddr)
	if err := router.Run(cfg.Server.BindAddr); err != nil {
		log.Fatal().Err(err).Msg("start printyx-monitor server failed.")
	}
	log.Info().Msg("printyx-monitor server exit...")
}

// runHistoryPruner trims old audit rows once a day.
func runHistoryPruner(ctx context.Context, db *database.Database) {
	t := time.NewTicker(24 * time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := db.PruneHistory(ctx, historyRetention); err != nil {
				log.Warn().Err(err).Msg("history prune failed")
			}
		}
	}
}

func parseDuration(s string, d time.Duration) time.Duration {
	if s == "" {
		return d
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v
	}
	return d
}
