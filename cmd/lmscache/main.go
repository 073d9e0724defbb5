package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magic-lib/go-plat-memo/cache"
	"github.com/magic-lib/go-plat-memo/config"
	"github.com/magic-lib/go-plat-memo/lms"
	"github.com/magic-lib/go-plat-utils/conv"
	"github.com/magic-lib/go-plat-utils/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	opts, err := config.Parse(os.Args[1:])
	switch {
	case config.IsHelp(err):
		os.Exit(0)
	case config.IsFlagError(err):
		os.Exit(2)
	case err != nil:
		logs.DefaultLogger().Error("[lmscache] 参数错误:", err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		logs.DefaultLogger().Error("[lmscache] exit:", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *config.Opts) error {
	metrics := cache.NewMetrics(opts.MetricsNamespace, prometheus.DefaultRegisterer)
	backend, closeBackend := newBackend(ctx, opts, metrics)
	defer closeBackend()

	mysqlRepo, err := lms.NewMySQLRepository(&lms.MySQLConfig{DSN: opts.DSN})
	if err != nil {
		return err
	}

	memoOpts := []cache.Option{cache.WithTTL(opts.DefaultTTL), cache.WithMetrics(metrics)}
	if opts.SingleFlight {
		memoOpts = append(memoOpts, cache.WithSingleFlight())
	}
	repo := lms.NewCachedRepository(mysqlRepo, backend, memoOpts...)

	srv := &http.Server{
		Addr:              opts.Listen,
		Handler:           newMux(repo, backend),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newBackend 按配置选择缓存实现
func newBackend(ctx context.Context, opts *config.Opts, metrics *cache.Metrics) (cache.Backend, func()) {
	switch opts.Backend {
	case config.BackendGoCache:
		return cache.NewGoCacheBackend(opts.DefaultTTL, opts.SweepInterval), func() {}
	case config.BackendTTLCache:
		b := cache.NewTTLCacheBackend(opts.DefaultTTL)
		if opts.SweepInterval <= 0 {
			return b, func() {}
		}
		go b.Start()
		return b, b.Stop
	default:
		s := cache.NewStore(&cache.StoreConfig{DefaultTTL: opts.DefaultTTL, Metrics: metrics})
		s.StartJanitor(ctx, opts.SweepInterval)
		return s, func() {}
	}
}

func newMux(repo *lms.CachedRepository, backend cache.Backend) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		u, err := repo.UserByEmail(r.Context(), r.URL.Query().Get("email"))
		writeResult(w, u, err)
	})
	mux.HandleFunc("GET /courses", func(w http.ResponseWriter, r *http.Request) {
		id, ok := conv.Int64(r.URL.Query().Get("id"))
		if !ok {
			http.Error(w, "课程id不合法", http.StatusBadRequest)
			return
		}
		c, err := repo.CourseByID(r.Context(), id)
		writeResult(w, c, err)
	})
	mux.HandleFunc("GET /courses/lessons", func(w http.ResponseWriter, r *http.Request) {
		id, ok := conv.Int64(r.URL.Query().Get("id"))
		if !ok {
			http.Error(w, "课程id不合法", http.StatusBadRequest)
			return
		}
		lessons, err := repo.LessonsByCourse(r.Context(), id)
		writeResult(w, lessons, err)
	})
	mux.HandleFunc("POST /admin/cache/clear", func(w http.ResponseWriter, r *http.Request) {
		backend.Clear()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func writeResult(w http.ResponseWriter, v any, err error) {
	switch {
	case errors.Is(err, lms.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		logs.DefaultLogger().Warn("[lmscache] lookup error:", err.Error())
		http.Error(w, "服务内部错误", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
