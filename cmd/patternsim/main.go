// Command patternsim renders patterns headless on simulated time and prints
// a per-frame summary, for tuning without hardware.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-spatialeds/internal/driver/fake"
	"github.com/coreman2200/funtimes-spatialeds/internal/layout"
	"github.com/coreman2200/funtimes-spatialeds/internal/patterns"
	"github.com/coreman2200/funtimes-spatialeds/internal/render"
)

func main() {
	var (
		layoutPath = flag.String("layout", "", "JSON layout file; empty uses a lattice")
		x          = flag.Int("x", 64, "lattice points per strand")
		y          = flag.Int("y", 8, "lattice strands")
		z          = flag.Int("z", 1, "lattice panels")
		name       = flag.String("pattern", "", "render only this pattern")
		frames     = flag.Int("frames", 300, "frames per pattern")
		fps        = flag.Int("fps", 60, "simulated frames per second")
		every      = flag.Int("every", 30, "print every nth frame")
		seed       = flag.Int64("seed", 1, "random seed")
		withCalib  = flag.Bool("calib", false, "also simulate the wiring checks")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	var store *layout.Store
	var err error
	strand := *x
	if *layoutPath != "" {
		if store, err = layout.Load(*layoutPath); err != nil {
			log.Fatal().Err(err).Str("layout", *layoutPath).Msg("layout")
		}
	} else {
		store = layout.Lattice{Dim: layout.Dim{X: *x, Y: *y, Z: *z}, Pitch: 1}.Store()
	}

	reg := patterns.Default(strand, *seed)
	if *withCalib {
		patterns.AddCalibration(reg)
	}
	if *name != "" {
		sub, err := reg.Subset([]string{*name})
		if err != nil {
			log.Fatal().Err(err).Strs("known", reg.List()).Msg("pattern")
		}
		reg = sub
	}

	for i := 0; i < reg.Len(); i++ {
		drv := &fake.Driver{Every: *every}
		eng, err := render.NewEngine(render.EngineConfig{
			Points:   store.Len(),
			Coords:   store.Points(),
			Registry: reg,
			Driver:   drv,
			FPS:      *fps,
			Start:    i,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("engine")
		}
		log.Info().Str("pattern", eng.ActiveName()).Int("frames", *frames).Msg("simulating")
		start := time.Now()
		for f := 0; f < *frames; f++ {
			if err := eng.Step(float64(f) / float64(eng.FPS)); err != nil {
				log.Error().Err(err).Msg("step")
			}
		}
		el := time.Since(start)
		log.Info().Str("pattern", eng.ActiveName()).
			Dur("elapsed", el).
			Float64("ms_per_frame", float64(el.Microseconds())/1000/float64(max(1, *frames))).
			Msg("done")
	}
}
