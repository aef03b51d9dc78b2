package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"chime/internal/archive"
	"chime/internal/bridge"
	"chime/internal/config"
	"chime/internal/logging"
	"chime/internal/metrics"
	"chime/pkg/ntfy"
)

const (
	reconnectInitialDelay = time.Second
	reconnectMaxDelay     = time.Minute
)

// Watcher holds a long-lived subscription to a topic, archiving every
// received message and optionally republishing it to Redis. It enforces
// single-instance execution with a file lock next to the archive database.
type Watcher struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *ntfy.Client
	store   *archive.Store
	bridge  *bridge.Bridge
	metrics *metrics.Metrics

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	metricsServer *http.Server
}

// Status represents watcher runtime information.
type Status struct {
	Running      bool
	Topic        string
	Server       string
	ArchivePath  string
	LockFilePath string
}

// New constructs a watcher with initialized dependencies. The store is
// required only when the archive is enabled; with the archive disabled the
// watcher never persists messages, regardless of what is passed.
func New(cfg *config.Config, store *archive.Store, logger *slog.Logger) (*Watcher, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("watcher requires config and logger")
	}
	if cfg.Archive.Enabled && store == nil {
		return nil, errors.New("watcher requires an archive store when the archive is enabled")
	}

	client, err := ntfy.New(
		ntfy.WithServer(cfg.Server.BaseURL),
		ntfy.WithTopic(cfg.Topic.Name),
		ntfy.WithToken(cfg.Server.Token),
		ntfy.WithTimeout(time.Duration(cfg.Server.RequestTimeout)*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		logger:   logger.With("component", "watcher"),
		client:   client,
		lockPath: filepath.Join(cfg.Archive.Dir, "chimed.lock"),
	}
	w.lock = flock.New(w.lockPath)
	if cfg.Archive.Enabled {
		w.store = store
	}

	if cfg.Bridge.Enabled {
		w.bridge = bridge.New(&cfg.Bridge)
	}
	if cfg.Metrics.Enabled {
		w.metrics = metrics.New()
	}
	return w, nil
}

// Start acquires the instance lock and launches the subscription loop.
func (w *Watcher) Start(ctx context.Context) error {
	if w.running.Load() {
		return errors.New("watcher already running")
	}

	// The lock lives under the archive dir, which EnsureDirectories skips
	// when the archive is disabled.
	if err := os.MkdirAll(filepath.Dir(w.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another chimed instance is already running")
	}

	if w.bridge != nil {
		if err := w.bridge.Ping(ctx); err != nil {
			_ = w.lock.Unlock()
			return fmt.Errorf("bridge: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	if w.metrics != nil {
		w.startMetricsServer()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(runCtx)
	}()

	w.running.Store(true)
	w.logger.Info("watcher started",
		logging.String("topic", w.client.Topic()),
		logging.String("server", w.client.Server()),
		logging.String("lock", w.lockPath))
	return nil
}

// Stop terminates the subscription loop and releases the instance lock.
func (w *Watcher) Stop() {
	if !w.running.Load() {
		return
	}

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.wg.Wait()

	if w.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := w.metricsServer.Shutdown(shutdownCtx); err != nil {
			w.logger.Warn("metrics server shutdown", logging.Error(err))
		}
		cancel()
		w.metricsServer = nil
	}
	if w.bridge != nil {
		if err := w.bridge.Close(); err != nil {
			w.logger.Warn("bridge close", logging.Error(err))
		}
	}
	if err := w.lock.Unlock(); err != nil {
		w.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	w.running.Store(false)
	w.logger.Info("watcher stopped")
}

// Close stops the watcher and closes the archive store.
func (w *Watcher) Close() error {
	w.Stop()
	if w.store != nil {
		return w.store.Close()
	}
	return nil
}

// Status returns the current watcher status.
func (w *Watcher) Status() Status {
	return Status{
		Running:      w.running.Load(),
		Topic:        w.client.Topic(),
		Server:       w.client.Server(),
		ArchivePath:  w.store.Path(),
		LockFilePath: w.lockPath,
	}
}

// run subscribes to the topic and processes messages until the context is
// cancelled, reconnecting with capped exponential backoff after stream
// failures.
func (w *Watcher) run(ctx context.Context) {
	delay := reconnectInitialDelay
	for {
		streamErr := w.consume(ctx, &delay)
		if ctx.Err() != nil {
			return
		}
		if streamErr != nil {
			if w.metrics != nil {
				w.metrics.StreamErrorsTotal.Inc()
			}
			w.logger.Warn("subscription stream failed",
				logging.Error(streamErr),
				logging.Duration("retry_in", delay))
		} else {
			w.logger.Info("subscription stream ended, reconnecting",
				logging.Duration("retry_in", delay))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if w.metrics != nil {
			w.metrics.ReconnectsTotal.Inc()
		}
		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

// consume drains one subscription stream. It resets the reconnect delay
// after the first successfully handled message.
func (w *Watcher) consume(ctx context.Context, delay *time.Duration) error {
	opts := []ntfy.SubscribeOption{
		ntfy.WithTransport(ntfy.Transport(w.cfg.Subscribe.Transport)),
	}
	if w.cfg.Subscribe.Since != "" {
		opts = append(opts, ntfy.WithSince(w.cfg.Subscribe.Since))
	}
	if w.cfg.Subscribe.Scheduled {
		opts = append(opts, ntfy.WithScheduled())
	}

	var streamErr error
	for msg, err := range w.client.Subscribe(ctx, opts...) {
		if err != nil {
			if errors.Is(err, ntfy.ErrStream) {
				w.logger.Warn("skipping malformed stream line", logging.Error(err))
				continue
			}
			streamErr = err
			break
		}
		w.handle(ctx, msg)
		*delay = reconnectInitialDelay
	}
	return streamErr
}

func (w *Watcher) handle(ctx context.Context, msg ntfy.Message) {
	if w.metrics != nil {
		w.metrics.MessagesReceivedTotal.Inc()
	}
	w.logger.Info("message received",
		logging.String("id", msg.ID),
		logging.String("topic", msg.Topic),
		logging.Int("priority", msg.Priority))

	if w.store != nil {
		inserted, err := w.store.Save(ctx, msg)
		if err != nil {
			w.logger.Error("archive message", logging.Error(err), logging.String("id", msg.ID))
		} else if inserted {
			if w.metrics != nil {
				w.metrics.MessagesArchivedTotal.Inc()
			}
		}
	}

	if w.bridge == nil {
		return
	}
	forwarded, err := w.bridge.Forward(ctx, msg)
	if err != nil {
		if w.metrics != nil {
			w.metrics.RedisOperationErrorsTotal.Inc()
		}
		w.logger.Error("bridge message", logging.Error(err), logging.String("id", msg.ID))
		return
	}
	if w.metrics == nil {
		return
	}
	if forwarded {
		w.metrics.MessagesBridgedTotal.Inc()
	} else {
		w.metrics.DedupHitsTotal.Inc()
	}
}

func (w *Watcher) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", w.metrics.Handler())

	w.metricsServer = &http.Server{
		Addr:              w.cfg.Metrics.Bind,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	server := w.metricsServer
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("metrics server", logging.Error(err))
		}
	}()
	w.logger.Info("metrics endpoint listening", logging.String("bind", w.cfg.Metrics.Bind))
}
