package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jgivc/causelist/internal/adapter/httpadapter"
	"github.com/jgivc/causelist/internal/adapter/mdadapter"
	"github.com/jgivc/causelist/internal/adapter/scraper"
	"github.com/jgivc/causelist/internal/adapter/tpladapter"
	"github.com/jgivc/causelist/internal/config"
	"github.com/jgivc/causelist/internal/entity"
	httphandler "github.com/jgivc/causelist/internal/handler/http"
	rcounter "github.com/jgivc/causelist/internal/repository/counter"
	scounter "github.com/jgivc/causelist/internal/service/counter"
	"github.com/jgivc/causelist/internal/service/download"
	"github.com/jgivc/causelist/internal/service/job"
	"github.com/jgivc/causelist/internal/service/page"
	"github.com/jgivc/causelist/internal/storage/pdfstore"
)

const (
	redisPingTimeout = 5 * time.Second
	shutdownTimeout  = 5 * time.Second
	batchWaitTimeout = 30 * time.Second
)

type App struct {
	cfgPath string
	envPath string
	cfg     *config.Config
	srv     *http.Server
	jobs    *job.JobService
	rdb     *redis.Client
	cancel  context.CancelFunc
	log     *slog.Logger
}

func New(cfgPath, envPath string) *App {
	return &App{
		cfgPath: cfgPath,
		envPath: envPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath, a.envPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	crepo := a.counterRepository()

	store, err := pdfstore.NewStore(a.cfg.DownloaderConfig.OutputDir, log)
	if err != nil {
		panic(err)
	}

	help, err := mdadapter.NewHelpRenderer(entity.Courts(), log)
	if err != nil {
		panic(err)
	}
	helpPage, err := help.Render()
	if err != nil {
		panic(err)
	}

	rnd, err := tpladapter.NewTplAdapter(a.cfg.UIConfig.TemplateFile)
	if err != nil {
		panic(err)
	}

	ua := a.cfg.SourceConfig.UserAgent
	sc := scraper.NewScraper(&a.cfg.SourceConfig, httpadapter.NewClient(a.cfg.SourceConfig.Timeout, ua), log)
	dSrv := download.NewDownloadService(&a.cfg.DownloaderConfig, httpadapter.NewClient(a.cfg.DownloaderConfig.Timeout, ua), store, log)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.jobs = job.NewJobService(ctx, sc, dSrv, a.cfg.UIConfig.KeepJobs, log)

	cSrv := scounter.NewCounterService(crepo, log)
	pSrv := page.NewPageService(&a.cfg.UIConfig, store, cSrv, a.jobs, helpPage, log)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", httphandler.NewIndexHandler(pSrv, rnd, log))
	mux.Handle("POST /fetch/{$}", httphandler.NewFetchHandler(pSrv, a.jobs, rnd, log))
	mux.Handle("GET /jobs/{id}/{$}", httphandler.NewJobHandler(a.jobs, rnd, log))
	mux.Handle("GET /jobs/{id}/status/{$}", httphandler.NewJobStatusHandler(a.jobs, log))
	mux.Handle("GET /files/{name}", httphandler.NewFileHandler(store, cSrv, log))
	mux.Handle("GET /stat/{$}", httphandler.NewCounterHandler(pSrv, log))

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: mux,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen), slog.String("output_dir", store.Dir()))

		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

// counterRepository keeps re-download counters in redis when redis_url is
// set and in memory otherwise.
func (a *App) counterRepository() scounter.CounterRepository {
	if a.cfg.RedisURL == "" {
		a.log.Info("Counters are kept in memory")

		return rcounter.NewMemoryRepository()
	}

	opt, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		panic(err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		panic(err)
	}
	a.rdb = rdb

	return rcounter.NewRedisRepository(rdb, a.log)
}

// Stop shuts the server down and lets a running batch finish. A batch that
// outlives batchWaitTimeout is cancelled.
func (a *App) Stop() {
	if a.srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		a.log.Error("Cannot shutdown server", slog.Any("error", err))
	}

	done := make(chan struct{})
	go func() {
		a.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(batchWaitTimeout):
		a.log.Warn("Cancel running batch")
		a.cancel()
		<-done
	}
	a.cancel()

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("Cannot close redis client", slog.Any("error", err))
		}
	}
}
