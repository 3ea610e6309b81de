package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/pagepack/internal/http"
	"github.com/wolfeidau/pagepack/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// RebuildFunc rebuilds the output directory after a source change.
type RebuildFunc func(ctx context.Context) error

// Config configures the development server.
type Config struct {
	Host      string
	Port      int
	OutputDir string
	WatchDirs []string
	Ignore    []string
	Debounce  time.Duration
	Rebuild   RebuildFunc
}

// Server serves the build output and rebuilds it when sources change.
type Server struct {
	cfg    Config
	log    zerolog.Logger
	server *http.Server
}

func New(cfg Config, log zerolog.Logger) *Server {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	return &Server{
		cfg:    cfg,
		log:    log,
		server: configureHTTPServer(cfg.Addr(), Handler(cfg.OutputDir, log)),
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Handler serves dir with CORS, no-cache headers and request logging. There
// is no history fallback so unknown paths are a 404.
func Handler(dir string, log zerolog.Logger) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})

	return httpmiddleware.Chain(httpmiddleware.StaticFiles(dir),
		logger.Requests(log),
		httpmiddleware.NoCache(),
		middleware.Handler,
	)
}

// Run serves until ctx is cancelled. When a rebuild function is configured the
// watch dirs are monitored for changes.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)

	if s.cfg.Rebuild != nil && len(s.cfg.WatchDirs) > 0 {
		watcher, err := NewWatcher(s.cfg.WatchDirs, s.cfg.Ignore, s.cfg.Debounce, s.log)
		if err != nil {
			return err
		}
		go func() {
			errCh <- watcher.Run(ctx, s.cfg.Rebuild)
		}()
	}

	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Str("dir", s.cfg.OutputDir).Msg("Starting development server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = s.server.Close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	s.log.Info().Msg("Stopping development server")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
