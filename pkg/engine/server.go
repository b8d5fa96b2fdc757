package engine

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/getmockd/stubdb/pkg/config"
	"github.com/getmockd/stubdb/pkg/logging"
	stubtls "github.com/getmockd/stubdb/pkg/tls"
)

// Server runs the HTTP and HTTPS listeners in front of a handler.
type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	log     *slog.Logger

	// certificate paths already resolved against the config directory
	tlsOptions stubtls.ServerOptions

	mu          sync.Mutex
	running     bool
	httpServer  *http.Server
	httpsServer *http.Server
	httpAddr    string
	httpsAddr   string
	errc        chan error
}

// NewServer prepares listeners for cfg. Nothing is bound until Start.
func NewServer(cfg *config.Config, handler http.Handler, log *slog.Logger) *Server {
	t := cfg.Server.TLS
	ca := make([]string, len(t.CA))
	for i, f := range t.CA {
		ca[i] = cfg.Resolve(f)
	}
	return &Server{
		cfg:     cfg.Server,
		handler: handler,
		log:     logging.WithComponent(log, "server"),
		tlsOptions: stubtls.ServerOptions{
			CertFile:  cfg.Resolve(t.Cert),
			KeyFile:   cfg.Resolve(t.Key),
			CAFiles:   ca,
			MutualTLS: t.MutualSSL,
			AutoCert:  t.AutoCert,
		},
		errc: make(chan error, 2),
	}
}

// Start binds the configured ports and serves in the background. A port of
// zero disables that listener.
func (s *Server) Start() error {
	var httpLn, httpsLn net.Listener
	var err error

	if s.cfg.Port > 0 {
		httpLn, err = net.Listen("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)))
		if err != nil {
			return fmt.Errorf("HTTP listener: %w", err)
		}
	}
	if s.cfg.SecurePort > 0 {
		httpsLn, err = net.Listen("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.SecurePort)))
		if err != nil {
			if httpLn != nil {
				_ = httpLn.Close()
			}
			return fmt.Errorf("HTTPS listener: %w", err)
		}
	}
	return s.Serve(httpLn, httpsLn)
}

// Serve serves on already bound listeners. Either may be nil.
func (s *Server) Serve(httpLn, httpsLn net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server is already running")
	}

	var tlsConfig *tls.Config
	if httpsLn != nil {
		var err error
		tlsConfig, err = stubtls.ServerConfig(s.tlsOptions)
		if err != nil {
			_ = httpsLn.Close()
			if httpLn != nil {
				_ = httpLn.Close()
			}
			return fmt.Errorf("failed to setup TLS: %w", err)
		}
	}

	if httpLn != nil {
		s.httpServer = s.newHTTPServer(nil)
		s.httpAddr = httpLn.Addr().String()
		s.log.Info("server listening", "url", "http://"+s.httpAddr)
		go s.serve("HTTP", func() error { return s.httpServer.Serve(httpLn) })
	}
	if httpsLn != nil {
		s.httpsServer = s.newHTTPServer(tlsConfig)
		s.httpsAddr = httpsLn.Addr().String()
		s.log.Info("secure server listening", "url", "https://"+s.httpsAddr, "mutual", s.tlsOptions.MutualTLS)
		go s.serve("HTTPS", func() error { return s.httpsServer.ServeTLS(httpsLn, "", "") })
	}

	s.running = true
	return nil
}

func (s *Server) newHTTPServer(tlsConfig *tls.Config) *http.Server {
	return &http.Server{
		Handler:      s.handler,
		TLSConfig:    tlsConfig,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelDebug),
	}
}

func (s *Server) serve(name string, fn func() error) {
	if err := fn(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error(name+" server error", "error", err)
		s.errc <- fmt.Errorf("%s server: %w", name, err)
	}
}

// Errors delivers listener failures that happen after Start.
func (s *Server) Errors() <-chan error { return s.errc }

// Addrs returns the bound HTTP and HTTPS addresses, empty when disabled.
func (s *Server) Addrs() (httpAddr, httpsAddr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpAddr, s.httpsAddr
}

// Shutdown stops accepting connections and waits for in-flight requests,
// including those waiting out a latency, until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}
	if s.httpsServer != nil {
		if err := s.httpsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTPS shutdown: %w", err))
		}
	}
	s.running = false
	return errors.Join(errs...)
}
