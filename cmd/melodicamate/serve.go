// cmd/melodicamate/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"melodicamate/internal/common/cache"
	"melodicamate/internal/common/config"
	"melodicamate/internal/common/database"
	"melodicamate/internal/common/logger"
	"melodicamate/internal/common/observability"
	"melodicamate/internal/common/ratelimit"
	"melodicamate/internal/common/validation"
	"melodicamate/internal/genai"
	"melodicamate/internal/server"
	"melodicamate/internal/speech"

	ce "melodicamate/internal/handlers/coach/coach-exercise"
	ar "melodicamate/internal/handlers/song/analyze-recording"
	sr "melodicamate/internal/handlers/song/song-request"
	tts "melodicamate/internal/handlers/speech/text-to-speech"
	ntn "melodicamate/internal/handlers/transcribe/notes-to-numbers"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting melodicamate",
		zap.String("version", version),
		zap.String("environment", cfg.App.Environment),
		zap.Bool("gemini", cfg.Gemini.Enabled()),
		zap.Bool("tts", cfg.ElevenLabs.Enabled() && cfg.ElevenLabs.VoiceID != ""),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Cache: Redis when configured, otherwise in-process no-op ---
	var store cache.Cache = cache.Noop{}
	var readinessCache server.Pinger
	if cfg.Cache.Enabled() {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Cache.Redis)
			if err != nil {
				return err
			}
			if err = rdb.Ping(ctx); err != nil {
				_ = rdb.Close()
			}
			return err
		}, 5, time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			store = cache.NewRedisCache(rdb, "responses")
			readinessCache = rdb
			zapLog.Info("Redis connected successfully", zap.String("address", cfg.Cache.Redis.Address))
		}
	}

	// --- Upstream capabilities ---
	caps := genai.NewCapabilities(cfg.Gemini, store, config.GetDuration(cfg.Cache.SongTTL), log)
	synth := speech.New(cfg.ElevenLabs, cfg.TTS.CharLimit, store, config.GetDuration(cfg.Cache.TTSTTL), log)
	validator := validation.MustNew()

	// --- Handlers ---
	coachCfg := ce.LoadConfig()
	coachCfg.TTSCharLimit = cfg.TTS.CharLimit

	recordingCfg := ar.LoadConfig()
	recordingCfg.MaxUploadBytes = cfg.Server.MaxUploadBytes

	ttsCfg := tts.LoadConfig()
	ttsCfg.CharLimit = cfg.TTS.CharLimit

	limiter := ratelimit.New(cfg.RateLimit.PerMinute, config.GetDuration(cfg.RateLimit.IdleTTL))
	go limiter.Run(ctx, time.Minute)

	handler := server.New(server.Dependencies{
		Coach:     ce.NewHandler(coachCfg, caps.Coach, synth, validator, obs, log),
		Notes:     ntn.NewHandler(ntn.LoadConfig(), validator, log),
		Songs:     sr.NewHandler(sr.LoadConfig(), caps.Songs, validator, obs, log),
		Recording: ar.NewHandler(recordingCfg, caps.Analyzer, obs, log),
		TTS:       tts.NewHandler(ttsCfg, synth, validator, obs, log),
		Readiness: server.Readiness{
			Gemini: caps.Live,
			TTS:    cfg.ElevenLabs.Enabled() && cfg.ElevenLabs.VoiceID != "",
			Cache:  readinessCache,
		},
		Limiter: limiter,
		Metrics: promhttp.Handler(),
		Logger:  log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLog.Info("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	zapLog.Info("shutdown complete")
	return nil
}
