package main

import (
	// standard library
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	// third-party
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	// internal
	"github.com/rmitchellscott/halftone/internal/bitmap"
	"github.com/rmitchellscott/halftone/internal/config"
	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/dither"
	"github.com/rmitchellscott/halftone/internal/handlers"
	"github.com/rmitchellscott/halftone/internal/imageprocessing"
	"github.com/rmitchellscott/halftone/internal/logging"
	"github.com/rmitchellscott/halftone/internal/middleware"
	"github.com/rmitchellscott/halftone/internal/palette"
	"github.com/rmitchellscott/halftone/internal/pipeline"
	"github.com/rmitchellscott/halftone/internal/pollers"
	"github.com/rmitchellscott/halftone/internal/storage"
	"github.com/rmitchellscott/halftone/internal/version"
)

const usage = `usage:
  halftone dither [-workers N] <in.bmp> <out.bmp> <palette> <mode> [reducer]
  halftone dither [-workers N] -preset <name> <in.bmp> <out.bmp>
  halftone import [-fit] [-gray] <in.png|jpg|gif|bmp> <out.bmp> [WxH]
  halftone export <in.bmp> <out.png|out.bmp>
  halftone modes
  halftone serve
  halftone hash-key <key>
  halftone --version`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	settings := config.Load()
	bitmap.MaxPixels = settings.MaxPixels

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "--version", "-v", "version":
		fmt.Println(version.Full())
		return
	case "dither":
		err = runDither(ctx, settings, args)
	case "import":
		err = runImport(args)
	case "export":
		err = runExport(args)
	case "modes":
		err = runModes(settings)
	case "serve":
		err = runServe(ctx, settings)
	case "hash-key":
		err = runHashKey(args)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s\n", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		logging.ErrorWithComponent(logging.ComponentStartup, "command failed", "command", cmd, "error", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad arguments or selections and 1 for everything else
func exitCode(err error) int {
	var configErr *dither.ConfigError
	var usageErr usageError
	if errors.As(err, &configErr) || errors.As(err, &usageErr) {
		return 2
	}
	return 1
}

type usageError string

func (e usageError) Error() string { return string(e) + "\n" + usage }

// loadPresets reads HALFTONE_PRESETS and registers its palettes by name
func loadPresets(settings config.Settings) (*config.Presets, error) {
	presets, err := config.LoadPresets(settings.PresetsFile)
	if err != nil {
		return nil, err
	}
	if err := pipeline.RegisterPresetPalettes(presets); err != nil {
		return nil, err
	}
	if settings.PresetsFile != "" {
		logging.InfoWithComponent(logging.ComponentPresets, "loaded presets", "path", settings.PresetsFile, "count", len(presets.List()))
	}
	return presets, nil
}

func runDither(ctx context.Context, settings config.Settings, args []string) error {
	fs := flag.NewFlagSet("dither", flag.ContinueOnError)
	workers := fs.Int("workers", settings.Workers, "ordered dithering goroutines (0 = GOMAXPROCS)")
	presetName := fs.String("preset", "", "named preset instead of palette/mode/reducer")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	rest := fs.Args()

	presets, err := loadPresets(settings)
	if err != nil {
		return err
	}

	var job pipeline.Job
	switch {
	case *presetName != "":
		if len(rest) != 2 {
			return usageError("dither -preset takes <in> <out>")
		}
		preset, ok := presets.Get(*presetName)
		if !ok {
			return &dither.ConfigError{Field: "preset", Value: *presetName, Err: errors.New("unknown preset")}
		}
		job = pipeline.FromPreset(preset)
	case len(rest) == 4 || len(rest) == 5:
		job = pipeline.Job{Palette: rest[2], Mode: rest[3]}
		if len(rest) == 5 {
			job.Reducer = rest[4]
		}
	default:
		return usageError("dither takes <in> <out> <palette> <mode> [reducer]")
	}
	if job.Workers == 0 {
		job.Workers = *workers
	}

	res, err := pipeline.Run(ctx, rest[0], rest[1], job)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %dx%d %s %s in %s\n", rest[1], res.Width, res.Height, res.Mode, res.Palette, res.Duration.Round(time.Millisecond))
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fit := fs.Bool("fit", false, "letterbox instead of cropping when resizing")
	gray := fs.Bool("gray", false, "convert to grayscale")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	rest := fs.Args()
	if len(rest) != 2 && len(rest) != 3 {
		return usageError("import takes <in> <out.bmp> [WxH]")
	}

	opts := imageprocessing.ImportOptions{Fit: *fit, Grayscale: *gray}
	if len(rest) == 3 {
		w, h, err := parseSize(rest[2])
		if err != nil {
			return usageError(err.Error())
		}
		opts.Width, opts.Height = w, h
	}

	img, err := imageprocessing.Import(rest[0], opts)
	if err != nil {
		return err
	}
	if err := bitmap.Encode(img, rest[1]); err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", rest[1], img)
	return nil
}

// parseSize parses WxH
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, expected WxH", s)
	}
	w, errW := strconv.Atoi(ws)
	h, errH := strconv.Atoi(hs)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, expected WxH", s)
	}
	return w, h, nil
}

func runExport(args []string) error {
	if len(args) != 2 {
		return usageError("export takes <in.bmp> <out.png|out.bmp>")
	}
	img, err := bitmap.Decode(args[0])
	if err != nil {
		return err
	}
	if err := imageprocessing.Export(img.Grid, args[1]); err != nil {
		return err
	}
	fmt.Printf("%s: %dx%d %s\n", args[1], img.Width(), img.Height(), strings.TrimPrefix(filepath.Ext(args[1]), "."))
	return nil
}

func runModes(settings config.Settings) error {
	presets, err := loadPresets(settings)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tKIND\tREDUCERS")
	for _, m := range dither.Modes() {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", m.Name, m.Kind, m.SupportsReducer())
	}
	tw.Flush()

	fmt.Printf("\nreducers: %s\n", strings.Join(dither.Reducers(), ", "))

	fmt.Println("\npalettes:")
	for _, name := range palette.Names() {
		p, _ := palette.Named(name)
		fmt.Printf("  %-10s %s\n", name, p)
	}

	fmt.Println("\npresets:")
	for _, p := range presets.List() {
		fmt.Printf("  %-10s mode=%s palette=%s reducer=%s\n", p.Name, p.Mode, p.Palette, p.Reducer)
	}
	return nil
}

func runHashKey(args []string) error {
	if len(args) != 1 {
		return usageError("hash-key takes <key>")
	}
	hash, err := middleware.HashAPIKey(args[0])
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func runServe(ctx context.Context, settings config.Settings) error {
	logging.InfoWithComponent(logging.ComponentStartup, "Starting halftone", "version", version.String())

	presets, err := loadPresets(settings)
	if err != nil {
		return err
	}

	if err := database.Initialize(); err != nil {
		return err
	}
	defer database.Close()

	if settings.GinMode != "" {
		gin.SetMode(settings.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-API-Key"}
	corsConfig.ExposeHeaders = []string{"X-Job-ID", "Content-Disposition"}
	router.Use(cors.New(corsConfig))

	outputs := storage.NewOutputStore(storage.NewFilesystemBackend(settings.DataDir))
	h := handlers.New(database.GetDB(), outputs, presets, settings.Workers)
	h.MaxUploadBytes = settings.MaxUploadBytes

	limiter := middleware.NewRateLimiter(settings.RateLimitPerMinute, settings.RateLimitBurst)
	protect := []gin.HandlerFunc{limiter.RateLimit()}
	if auth := middleware.NewAPIKeyAuth(settings.APIKeyHash); auth != nil {
		protect = append(protect, auth.Required())
	} else {
		logging.WarnWithComponent(logging.ComponentStartup, "API_KEY_HASH not set, dithering and job routes are open")
	}
	h.Register(router, protect...)

	background := pollers.NewManager()
	for _, p := range []pollers.Poller{
		pollers.NewLimiterCleanupPoller(limiter, 10*time.Minute),
		pollers.NewRetentionPoller(h.Jobs, outputs, settings.OutputRetention, time.Hour),
	} {
		if err := background.Register(p); err != nil {
			return err
		}
	}
	if err := background.Start(ctx); err != nil {
		return err
	}
	defer background.Stop()

	addr := ":" + settings.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.InfoWithComponent(logging.ComponentStartup, "Listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	logging.InfoWithComponent(logging.ComponentStartup, "Shutting down server")
	background.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logging.InfoWithComponent(logging.ComponentStartup, "Server stopped")
	return nil
}
