package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclaw/qrlink/api"
	"github.com/openclaw/qrlink/config"
	"github.com/openclaw/qrlink/metrics"
	"github.com/openclaw/qrlink/panel"
	"github.com/openclaw/qrlink/qr"
	"github.com/openclaw/qrlink/store"
	"github.com/openclaw/qrlink/theme"
)

var version = "v0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "qrlink",
		Short: "Turn links into downloadable QR codes",
	}

	var configPath string
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")

	// --- serve command -------------------------------------------------------
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the QR link panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	root.AddCommand(serveCmd)

	// --- encode command ------------------------------------------------------
	var (
		outPath  string
		svgPath  string
		terminal bool
	)
	encodeCmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Write a QR code PNG for text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(configPath, args[0], outPath, svgPath, terminal)
		},
	}
	encodeCmd.Flags().StringVarP(&outPath, "output", "o", "", "PNG output path (defaults to the configured file name)")
	encodeCmd.Flags().StringVar(&svgPath, "svg", "", "Also write the on-screen SVG to this path")
	encodeCmd.Flags().BoolVarP(&terminal, "terminal", "t", false, "Print the code to the terminal")
	root.AddCommand(encodeCmd)

	// --- theme command -------------------------------------------------------
	var themeAddr string
	themeCmd := &cobra.Command{
		Use:       "theme [light|dark|system]",
		Short:     "Show or set the panel theme on a running server",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "system"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runGet(cmd.OutOrStdout(), themeAddr+"/api/theme")
			}
			return runSetTheme(cmd.OutOrStdout(), themeAddr, args[0])
		},
	}
	themeCmd.Flags().StringVar(&themeAddr, "addr", "http://localhost:8556", "Panel HTTP address")
	root.AddCommand(themeCmd)

	// --- status command ------------------------------------------------------
	var statusAddr string
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Check the panel server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.OutOrStdout(), statusAddr+"/status")
		},
	}
	statusCmd.Flags().StringVar(&statusAddr, "addr", "http://localhost:8556", "Panel HTTP address")
	root.AddCommand(statusCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qrlink %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger from the configured level.
func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// components are the pieces shared by serve and encode.
type components struct {
	store   *store.PreferenceStore
	signal  *theme.ReportedSignal
	panel   *panel.Panel
	metrics *metrics.Metrics
}

func (c *components) Close() {
	c.panel.Close()
	c.store.Close()
}

// buildPanel opens the preference store and wires the theme controller and
// panel from cfg.
func buildPanel(cfg *config.Config, log *slog.Logger) (*components, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	level, err := qr.ParseLevel(cfg.QR.Level)
	if err != nil {
		return nil, err
	}

	prefs, err := store.NewPreferenceStore(filepath.Join(cfg.DataDir, "preferences.db"))
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	osSignal := theme.NewReportedSignal(cfg.Theme.OSScheme == "dark")
	ctrl, err := theme.NewController(context.Background(), prefs, osSignal, log)
	if err != nil {
		prefs.Close()
		return nil, fmt.Errorf("create theme controller: %w", err)
	}

	m := metrics.New()
	p := panel.New(panel.Options{
		Encoder:  qr.PNGEncoder{},
		Renderer: qr.SVGRenderer{},
		Encode:   qr.Options{Width: cfg.QR.Width, Margin: cfg.QR.Margin, Level: level},
		Filename: cfg.QR.Filename,
		Theme:    ctrl,
		Metrics:  m,
		Log:      log,
	})

	return &components{store: prefs, signal: osSignal, panel: p, metrics: m}, nil
}

// runServe is the main service entrypoint that wires all components together.
func runServe(configPath string) error {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Setup logger
	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting qrlink", "version", version, "port", cfg.Port, "data_dir", cfg.DataDir)

	// 3. Build panel, theme controller and preference store
	c, err := buildPanel(cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	// 4. Start HTTP server
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: api.NewRouter(&api.Server{
			Panel:     c.panel,
			Signal:    c.signal,
			Metrics:   c.metrics,
			Log:       log,
			Version:   version,
			StartTime: time.Now(),
		}),
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
		IdleTimeout:  cfg.IdleTimeout.Duration,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	log.Info("panel is running", "url", fmt.Sprintf("http://localhost:%d/", cfg.Port))

	// 5. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("goodbye")
	return nil
}

// runEncode drives the panel once for text and writes its outputs.
func runEncode(configPath, text, outPath, svgPath string, terminal bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	c, err := buildPanel(cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	c.panel.SetLinkText(text)
	c.panel.Wait()

	st := c.panel.State()
	if st.EncodeError != "" {
		return fmt.Errorf("encode: %s", st.EncodeError)
	}
	img, _ := c.panel.Image()
	data, err := qr.DecodeDataURI(img.DataURI)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = c.panel.Filename()
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	fmt.Printf("wrote %s\n", outPath)

	if svgPath != "" {
		if st.RenderError != "" {
			return fmt.Errorf("render: %s", st.RenderError)
		}
		if err := os.WriteFile(svgPath, []byte(st.SVG), 0o644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	if terminal {
		qr.WriteTerminal(os.Stdout, text)
	}
	return nil
}

// runGet prints the body of a GET against the panel server.
func runGet(out io.Writer, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to reach panel at %s: %w", url, err)
	}
	defer resp.Body.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// runSetTheme selects a theme on a running panel server.
func runSetTheme(out io.Writer, addr, pref string) error {
	if _, err := theme.ParsePreference(pref); err != nil {
		return err
	}
	body, err := json.Marshal(map[string]string{"preference": pref})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, addr+"/api/theme", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("set theme failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("set theme failed: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	_, err = io.Copy(out, resp.Body)
	return err
}
