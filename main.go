package main

import (
	"time"

	"github.com/hyunw00/attendbot/blobstore"
	"github.com/hyunw00/attendbot/bot"
	"github.com/hyunw00/attendbot/config"
	"github.com/hyunw00/attendbot/controllers"
	"github.com/hyunw00/attendbot/imaging"
	"github.com/hyunw00/attendbot/models"
	"github.com/hyunw00/attendbot/platform"
	"github.com/hyunw00/attendbot/routes"
	"github.com/hyunw00/attendbot/sheets"
	"github.com/hyunw00/attendbot/storage"
	"github.com/hyunw00/attendbot/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		utils.Sugar.Warnf("unknown timezone %q, using UTC", cfg.Timezone)
		loc = time.UTC
	}

	// The sheet client is mandatory for the sheet backend. In database mode it
	// only feeds the summarizer, so a missing sheet URL defers to first use.
	sheetClient, err := sheets.NewClient(cfg)
	var summarizer *sheets.Summarizer
	if err == nil {
		summarizer = sheets.NewSummarizer(sheetClient, loc, cfg.CheckinActions, cfg.SheetSummaryName)
	} else if cfg.StorageBackend != "database" {
		utils.Sugar.Fatalf("sheet client: %v", err)
	} else {
		utils.Sugar.Warnf("sheet client unavailable, weekly summaries disabled: %v", err)
	}

	var store storage.Store
	if cfg.StorageBackend == "database" {
		db := config.InitDatabase(&models.User{}, &models.Attendance{})
		store = storage.NewDBStore(db, loc)
	} else {
		store = storage.NewSheetStore(sheetClient, loc)
	}

	uploader, err := blobstore.New(cfg)
	if err != nil {
		utils.Sugar.Fatalf("blob store: %v", err)
	}

	works := platform.NewClient(cfg)
	cooldown := bot.NewCooldown(time.Duration(cfg.CooldownSeconds) * time.Second)
	stop := make(chan struct{})
	defer close(stop)
	cooldown.StartJanitor(time.Minute, stop)

	lateness := bot.NewLatenessPolicy(cfg.WorkdayStart, loc, cfg.LateExemptActions)
	router := bot.NewRouter(cfg, works, store, cooldown, lateness, uploader, imaging.NewPipeline(), loc)

	r := routes.SetupRouter(routes.Controllers{
		Webhook:   controllers.NewWebhookController(cfg, router),
		Admin:     controllers.NewAdminController(store, loc),
		Summary:   controllers.NewSummaryController(summarizer, loc),
		Scheduler: controllers.NewSchedulerController(cfg, summarizer, loc),
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
