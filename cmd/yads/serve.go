package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"github.com/toqueteos/webbrowser"
	"golang.org/x/sync/errgroup"

	"github.com/yads-project/yads/internal/csrf"
	"github.com/yads-project/yads/internal/handlers"
	"github.com/yads-project/yads/internal/router"
	"github.com/yads-project/yads/internal/users"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr string
	serveOpen bool
	serveQR   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server until SIGINT or SIGTERM.

In production mode the vite manifest is loaded at startup so a missing
build shows up in the logs immediately. With DEBUG and USE_VITE set, asset
URLs point at the vite dev server and its paths are proxied.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides LISTEN_ADDR)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the site in the default browser")
	serveCmd.Flags().BoolVar(&serveQR, "qr", false, "print a QR code of the site URL")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	resolver := newResolver(cfg, log)
	if !resolver.IsDev() {
		if err := resolver.Warm(); err != nil {
			log.Warn("serving unhashed asset urls", "err", err)
		}
	}

	store, err := users.Open(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer store.Close()

	h := handlers.New(resolver, store, cfg.AdminPath(), log)
	protector := csrf.New(csrf.Options{
		SecretKey:      cfg.SecretKey,
		TrustedOrigins: cfg.CSRFTrustedOrigins,
		Secure:         cfg.Security.SecureCookies,
		Logger:         log,
	})
	mux := router.New(cfg, h, protector, log)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}
	site := siteURL(listener.Addr())
	log.Info("server starting",
		"addr", site,
		"environment", cfg.Environment,
		"debug", cfg.Debug,
		"vite", resolver.IsDev(),
	)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if serveQR {
		if qr, err := qrcode.New(site, qrcode.Medium); err == nil {
			pterm.Println(qr.ToSmallString(false))
		} else {
			log.Warn("render qr code", "err", err)
		}
	}
	if serveOpen {
		if err := webbrowser.Open(site); err != nil {
			log.Warn("open browser", "err", err)
		}
	}

	return g.Wait()
}

// siteURL turns a listener address into a browsable URL, replacing a
// wildcard host with localhost.
func siteURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}
	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
