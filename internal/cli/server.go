package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"notables-quiz-service/internal/app"
	"notables-quiz-service/internal/config"
	"notables-quiz-service/internal/domain"
	filedata "notables-quiz-service/internal/infra/file"
	"notables-quiz-service/internal/infra/memory"
	pgdata "notables-quiz-service/internal/infra/postgres"
	redisstats "notables-quiz-service/internal/infra/redis"
	transport "notables-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port, dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, *dataDir)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag, dataDirFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	dataDir := dataDirFlag
	if dataDir == "" {
		dataDir = cfg.Data.Dir
	}

	var loader app.DatasetLoader = memory.NewStaticDatasetLoader(sampleCountries())
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgdata.NewDatasetLoader(pool)
	case dataDir != "":
		loader = filedata.NewDatasetLoader(dataDir)
	}

	files, err := loader.LoadCountries(ctx)
	if err != nil {
		// Total data-load failure is the one startup condition worth
		// surfacing; the engine itself degrades gracefully past here.
		return err
	}
	pool := app.NewPool(files)
	log.Printf("loaded %d people across %d countries", pool.Len(), len(pool.Countries()))

	var stats app.StatsStore = memory.NewStatsStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		stats = redisstats.NewStatsStore(client, config.Duration(cfg.Redis.TTL, 0))
	}

	sessionCfg := app.DefaultConfig()
	if cfg.Quiz.QueueDepth != 0 {
		sessionCfg.QueueDepth = cfg.Quiz.QueueDepth
	}
	sessionCfg.AdvanceDelay = config.Duration(cfg.Quiz.AdvanceDelay, sessionCfg.AdvanceDelay)
	if cfg.Quiz.AutoAdvance != nil {
		sessionCfg.AutoAdvance = *cfg.Quiz.AutoAdvance
	}
	if cfg.Quiz.Baseline != "" {
		sessionCfg.Baseline = app.BaselineMode(cfg.Quiz.Baseline)
	}

	fetchTimeout := config.Duration(cfg.Quiz.FetchTimeout, 10*time.Second)
	wsHandler := transport.NewWSHandler(pool, sessionCfg, stats, app.NewHTTPImageFetcher(fetchTimeout))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting notables quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCountries provides a minimal built-in roster so the service can
// demo without a data directory or database.
func sampleCountries() []domain.CountryFile {
	occupation := func(s string) *string { return &s }
	year := func(n int) *int { return &n }
	return []domain.CountryFile{
		{
			Country:       "France",
			CountryCode:   "Q142",
			RankingMetric: "sitelinks",
			People: []domain.PersonRecord{
				{ID: 0, Name: "Marie Curie", Sitelinks: 170, BirthYear: year(1867), DeathYear: year(1934), Occupation: occupation("physicist"), WikidataURL: "https://www.wikidata.org/wiki/Q7186", AnswerKey: "marie curie"},
				{ID: 1, Name: "Victor Hugo", Sitelinks: 160, BirthYear: year(1802), DeathYear: year(1885), Occupation: occupation("writer"), WikidataURL: "https://www.wikidata.org/wiki/Q535", AnswerKey: "victor hugo"},
				{ID: 2, Name: "Claude Monet", Sitelinks: 140, BirthYear: year(1840), DeathYear: year(1926), Occupation: occupation("painter"), WikidataURL: "https://www.wikidata.org/wiki/Q296", AnswerKey: "claude monet"},
			},
		},
		{
			Country:       "Japan",
			CountryCode:   "Q17",
			RankingMetric: "sitelinks",
			People: []domain.PersonRecord{
				{ID: 0, Name: "Hokusai", Sitelinks: 110, BirthYear: year(1760), DeathYear: year(1849), Occupation: occupation("painter"), WikidataURL: "https://www.wikidata.org/wiki/Q5586", AnswerKey: "hokusai"},
				{ID: 1, Name: "Akira Kurosawa", Sitelinks: 120, BirthYear: year(1910), DeathYear: year(1998), Occupation: occupation("film director"), WikidataURL: "https://www.wikidata.org/wiki/Q8006", AnswerKey: "akira kurosawa"},
				{ID: 2, Name: "Haruki Murakami", Sitelinks: 100, BirthYear: year(1949), Occupation: occupation("writer"), WikidataURL: "https://www.wikidata.org/wiki/Q189234", AnswerKey: "haruki murakami"},
			},
		},
	}
}
