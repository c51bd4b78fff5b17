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

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travelbot/internal/config"
	intdb "travelbot/internal/db"
	router "travelbot/internal/http"
	"travelbot/internal/http/handlers"
	"travelbot/internal/intent"
	"travelbot/internal/jobs"
	"travelbot/internal/ner"
	"travelbot/internal/repositories"
	"travelbot/internal/seed"
	"travelbot/internal/services"
	"travelbot/internal/travelapi"
	"travelbot/internal/utils"
	"travelbot/internal/ws"
)

const defaultConfigPath = "config.yaml"

func main() {
	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	var err error
	switch command {
	case "serve":
		err = runServe(args)
	case "import":
		err = runImport(args)
	case "train":
		err = runTrain(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		utils.Logger().Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: travelbot <command> [flags]

Commands:
  serve    start the HTTP API (default)
  import   reload the dataset tables from the datasets directory
  train    fit the intent classifier and save it

Every command accepts -config <path> and -debug.`)
}

// setup parses the common flags, loads the config and installs the logger.
func setup(name string, args []string) (*config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if _, err := utils.InitLogger(cfg.Logging.Debug || *debug); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	utils.Logger().Info("config loaded", zap.String("config_path", *configPath), zap.String("db_driver", cfg.Database.Driver))
	return cfg, nil
}

func runServe(args []string) error {
	cfg, err := setup("serve", args)
	if err != nil {
		return err
	}
	logger := utils.Logger()
	defer func() { _ = logger.Sync() }()

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		return err
	}
	defer config.CloseDB()
	dialect := intdb.DialectFor(cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repositories.EnsureSchema(ctx, db, dialect); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	app := &handlers.App{
		Config:  cfg,
		DB:      db,
		Dialect: dialect,
		Catalog: ner.DefaultCatalog,
		Tagger:  newTagger(cfg.NER),
		ZoomCar: travelapi.NewZoomCar(cfg.ZoomCar),
		Hub:     ws.NewHub(cfg.Server.CORSOrigins),
	}
	app.Hub.WordDelay = cfg.Server.WSWordDelay

	pipeline, trained, err := intent.LoadOrTrain(cfg.Model.Path, cfg.Model.TrainingData, intent.NewAnalyzer(), cfg.Model.MaxFeatures)
	if err != nil {
		logger.Warn("intent model unavailable; chat analysis disabled", zap.Error(err))
	} else {
		app.Classifier = pipeline
		logger.Info("intent model ready", zap.Bool("trained", trained), zap.String("path", cfg.Model.Path))
	}

	if amadeus := travelapi.NewAmadeus(cfg.Amadeus); amadeus.Configured() {
		app.Amadeus = amadeus
	} else {
		logger.Warn("amadeus credentials missing; live flights, hotels and alerts disabled")
	}

	if app.FAQ, err = services.NewFAQIndex(services.FAQs); err != nil {
		return fmt.Errorf("build faq index: %w", err)
	}
	defer app.FAQ.Close()

	if app.Node, err = snowflake.NewNode(1); err != nil {
		return fmt.Errorf("snowflake node: %w", err)
	}

	go app.Hub.Run(ctx)

	store := repositories.Store{DB: db, Dialect: dialect}
	runner := jobs.Runner{
		Cache:  repositories.APICacheRepository{Store: store},
		Travel: repositories.TravelRepository{Store: store},
		Hub:    app.Hub,
		Config: cfg.Jobs,
		Logger: logger,
	}
	go func() {
		if err := runner.Start(ctx); err != nil {
			logger.Error("scheduler failed", zap.Error(err))
		}
	}()

	if cfg.Datasets.Watch {
		w := seed.NewWatcher(seed.NewImporter(db, dialect, cfg.Datasets.Dir, logger), logger)
		if err := w.Start(ctx); err != nil {
			logger.Warn("dataset watcher not started", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newTagger picks the entity tagger; the HTTP tagger falls back to the
// offline gazetteer when the inference endpoint fails.
func newTagger(cfg config.NERConfig) ner.Tagger {
	gazetteer := ner.NewGazetteerTagger(ner.DefaultCatalog)
	if cfg.Provider != "http" {
		return gazetteer
	}
	return ner.Fallback{
		Primary:   ner.NewHTTPTagger(cfg.Endpoint, cfg.Token, cfg.Timeout),
		Secondary: gazetteer,
		OnError: func(err error) {
			utils.Logger().Warn("ner endpoint failed; using gazetteer", zap.Error(err))
		},
	}
}

func runImport(args []string) error {
	cfg, err := setup("import", args)
	if err != nil {
		return err
	}
	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		return err
	}
	defer config.CloseDB()
	dialect := intdb.DialectFor(cfg.Database.Driver)

	ctx := context.Background()
	if err := repositories.EnsureSchema(ctx, db, dialect); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	counts, err := seed.NewImporter(db, dialect, cfg.Datasets.Dir, utils.Logger()).ImportAll(ctx)
	if err != nil {
		return err
	}
	for table, n := range counts {
		fmt.Printf("%-20s %d rows\n", table, n)
	}
	return nil
}

func runTrain(args []string) error {
	cfg, err := setup("train", args)
	if err != nil {
		return err
	}
	samples, err := intent.ReadTrainingCSV(cfg.Model.TrainingData)
	if err != nil {
		return fmt.Errorf("read training data: %w", err)
	}
	m, err := intent.Fit(samples, intent.NewAnalyzer(), cfg.Model.MaxFeatures)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := intent.Save(cfg.Model.Path, m); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	fmt.Printf("trained on %d samples, %d intents, saved to %s\n", len(samples), len(m.Classes), cfg.Model.Path)
	return nil
}
