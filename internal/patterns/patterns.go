// Package patterns assembles the built-in pattern cycle.
package patterns

import (
	"math/rand"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
	"github.com/coreman2200/funtimes-spatialeds/internal/render/patterns/calib"
	"github.com/coreman2200/funtimes-spatialeds/internal/render/patterns/discs"
	"github.com/coreman2200/funtimes-spatialeds/internal/render/patterns/lava"
	"github.com/coreman2200/funtimes-spatialeds/internal/render/patterns/rain"
	"github.com/coreman2200/funtimes-spatialeds/internal/render/patterns/twinkle"
	"github.com/coreman2200/funtimes-spatialeds/internal/render/patterns/waves"
	"github.com/coreman2200/funtimes-spatialeds/internal/render/patterns/wobbler"
)

// Names is the default trigger cycle.
var Names = []string{"chill", "dance", "rain", "discs", "lavalamp", "wobbler", "sparkle", "sailormoon"}

// Default builds every pattern in cycle order. Each pattern that needs
// randomness gets its own source split off seed so no two share state.
func Default(strandLen int, seed int64) *render.Registry {
	root := rand.New(rand.NewSource(seed))
	sub := func() *rand.Rand { return rand.New(rand.NewSource(root.Int63())) }

	reg := render.NewRegistry()
	reg.Register(waves.New("chill", waves.Chill))
	reg.Register(waves.New("dance", waves.Dance))
	reg.Register(rain.New("rain", sub()))
	reg.Register(discs.New("discs", strandLen, sub()))
	reg.Register(lava.New("lavalamp"))
	reg.Register(wobbler.New("wobbler", strandLen))
	// sparkle owns its own wave instance; chill's stays untouched
	reg.Register(twinkle.NewSparkle("sparkle", waves.New("sparkle-base", waves.Chill), sub()))
	reg.Register(twinkle.NewSailorMoon("sailormoon", sub()))
	return reg
}

// AddCalibration appends the wiring checks to the end of the cycle.
func AddCalibration(reg *render.Registry) {
	for _, k := range calib.Kinds {
		reg.Register(calib.New(k))
	}
}
