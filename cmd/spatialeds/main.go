package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-spatialeds/internal/config"
	"github.com/coreman2200/funtimes-spatialeds/internal/driver/fake"
	"github.com/coreman2200/funtimes-spatialeds/internal/driver/opc"
	"github.com/coreman2200/funtimes-spatialeds/internal/driver/preview"
	"github.com/coreman2200/funtimes-spatialeds/internal/layout"
	"github.com/coreman2200/funtimes-spatialeds/internal/led"
	"github.com/coreman2200/funtimes-spatialeds/internal/patterns"
	"github.com/coreman2200/funtimes-spatialeds/internal/render"
	"github.com/coreman2200/funtimes-spatialeds/internal/trigger"
)

func main() {
	// ---- Flags (override config.yaml when set) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		layoutPath = flag.String("layout", "", "JSON layout file (overrides config)")
		pattern    = flag.String("pattern", "", "initial pattern (overrides config)")
		fps        = flag.Int("fps", 0, "frames per second (overrides config)")
		opcAddr    = flag.String("opc", "", "OPC server host:port (overrides config)")
		drivers    = flag.String("driver", "", "comma separated sinks: opc,spi,preview,fake (overrides config)")
		trigAddr   = flag.String("trigger", "", "UDP trigger listen address (overrides config)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	if *layoutPath != "" {
		cfg.Layout = *layoutPath
	}
	if *pattern != "" {
		cfg.Pattern = *pattern
	}
	if *fps > 0 {
		cfg.FPS = *fps
	}
	if *opcAddr != "" {
		cfg.OPC.Addr = *opcAddr
	}
	if *drivers != "" {
		cfg.Driver = strings.Split(*drivers, ",")
	}
	if *trigAddr != "" {
		cfg.Trigger.Addr = *trigAddr
	}

	// ---- Layout ----
	store, err := loadLayout(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("layout", cfg.Layout).Msg("layout")
	}
	n := cfg.Points
	if n <= 0 {
		n = store.Len()
	}
	b := store.Bounds()
	log.Info().Int("points", n).Int("coords", store.Len()).
		Interface("min", b.Min).Interface("max", b.Max).Msg("layout loaded")

	// ---- Patterns ----
	reg := patterns.Default(cfg.StrandLength, cfg.Seed)
	if cfg.Calibration {
		patterns.AddCalibration(reg)
	}
	if len(cfg.Patterns) > 0 {
		if reg, err = reg.Subset(cfg.Patterns); err != nil {
			log.Fatal().Err(err).Msg("patterns")
		}
	}
	start := 0
	if cfg.Pattern != "" {
		if start, err = reg.Index(cfg.Pattern); err != nil {
			log.Fatal().Err(err).Strs("known", reg.List()).Msg("pattern")
		}
	}

	// ---- Triggers ----
	manual := trigger.NewChan()
	listeners := trigger.Any{manual}
	var udp *trigger.UDP
	if cfg.Trigger.Addr != "" {
		udp = trigger.NewUDP(cfg.Trigger.Addr, cfg.Trigger.Interface, time.Duration(cfg.Trigger.RetryMS)*time.Millisecond)
		listeners = append(listeners, udp)
	}
	if cfg.Trigger.AutoAdvanceS > 0 {
		listeners = append(listeners, trigger.NewInterval(time.Duration(cfg.Trigger.AutoAdvanceS*float64(time.Second))))
	}

	// ---- Sinks ----
	var sinks render.Fanout
	var prev *preview.Server
	for _, name := range cfg.Driver {
		switch strings.TrimSpace(name) {
		case "opc":
			sinks = append(sinks, openOPC(cfg.OPC.Addr, cfg.OPC.Channel))
		case "spi":
			s, err := led.Open(cfg.SPI.Port, n, physic.Frequency(cfg.SPI.FreqKHz)*physic.KiloHertz)
			if err != nil {
				log.Warn().Err(err).Str("port", cfg.SPI.Port).Msg("SPI init failed; skipping")
				continue
			}
			sinks = append(sinks, render.NewAsync("spi", s))
		case "preview":
			prev = preview.New(manual, cfg.FPS)
			sinks = append(sinks, render.NewAsync("preview", prev))
		case "fake":
			sinks = append(sinks, render.NewAsync("fake", &fake.Driver{Every: max(1, cfg.FPS)}))
		default:
			log.Warn().Str("driver", name).Msg("unknown driver; skipping")
		}
	}
	if len(sinks) == 0 {
		log.Warn().Msg("no sinks configured; frames go nowhere")
	}

	// ---- Engine ----
	eng, err := render.NewEngine(render.EngineConfig{
		Points:   n,
		Coords:   store.Points(),
		Registry: reg,
		Driver:   sinks,
		Trigger:  listeners,
		Uniforms: &render.Uniforms{Brightness: cfg.Brightness, Params: cfg.TuningParams(), Bools: cfg.Bools},
		FPS:      cfg.FPS,
		Start:    start,
		XFadeS:   cfg.CrossfadeS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}

	var srv *http.Server
	if prev != nil {
		eng.OnFrame = prev.Observe
		srv = &http.Server{
			Addr:         cfg.Preview.Addr,
			Handler:      prev.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.Preview.Addr).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("preview server stopped")
			}
		}()
	}

	// ---- Run until signalled ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("frame loop")
	}
	log.Info().Uint64("frames", eng.Frame()).Msg("shutting down")

	if srv != nil {
		_ = srv.Close()
	}
	if udp != nil {
		_ = udp.Close()
	}
	if err := sinks.Close(); err != nil {
		log.Debug().Err(err).Msg("closing sinks")
	}
}

// openOPC makes the first dial and wraps the sink for the render loop. A
// failed dial is only logged at debug; the sink's Reporter warns once when
// frames start failing.
func openOPC(addr string, channel uint8) *render.Async {
	s := opc.New(addr, channel)
	if err := s.Connect(); err != nil {
		log.Debug().Err(err).Str("addr", addr).Msg("OPC server unreachable; will keep trying")
	}
	return render.NewAsync("opc", s)
}

func loadLayout(cfg *config.Config) (*layout.Store, error) {
	if cfg.Layout != "" {
		return layout.Load(cfg.Layout)
	}
	l := layout.Lattice{
		Dim:   layout.Dim{X: cfg.Dim.X, Y: cfg.Dim.Y, Z: cfg.Dim.Z},
		Pitch: cfg.Pitch,
	}
	if l.Count() <= 0 {
		return nil, layout.ErrTooFewPoints
	}
	return l.Store(), nil
}
