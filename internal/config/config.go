package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type PowerCfg struct {
	BudgetMA float64 `yaml:"budget_ma"` // 0 disables the current limiter
	WhiteCap float64 `yaml:"white_cap"` // max R+G+B per point, as a multiple of 255
	ChanMA   float64 `yaml:"chan_ma"`   // draw per channel at full scale
}

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type OPC struct {
	Addr    string `yaml:"addr"`
	Channel uint8  `yaml:"channel"`
}

type SPI struct {
	Port    string `yaml:"port"`     // "" picks the first port
	FreqKHz int    `yaml:"freq_khz"` // NRZ bit clock, e.g. 2500
}

type Preview struct {
	Addr string `yaml:"addr"`
}

type Trigger struct {
	Addr         string  `yaml:"addr"`           // UDP listen address, "" disables
	Interface    string  `yaml:"interface"`      // bind to this interface's address
	RetryMS      int     `yaml:"retry_ms"`       // listener setup retry period
	AutoAdvanceS float64 `yaml:"auto_advance_s"` // 0 disables
}

type Config struct {
	Driver  []string `yaml:"driver"` // any of opc, spi, preview, fake
	OPC     OPC      `yaml:"opc"`
	SPI     SPI      `yaml:"spi,omitempty"`
	Preview Preview  `yaml:"preview"`

	FPS      int      `yaml:"fps"`
	Pattern  string   `yaml:"pattern"`
	Patterns []string `yaml:"patterns,omitempty"` // cycle order; empty means all

	// Calibration appends the wiring checks to the cycle.
	Calibration bool `yaml:"calibration,omitempty"`

	Layout       string  `yaml:"layout"` // JSON layout file; empty builds a lattice from dim
	Points       int     `yaml:"points"` // 0 means one per coordinate
	StrandLength int     `yaml:"strand_length"`
	Dim          Dim     `yaml:"dim"`
	Pitch        float64 `yaml:"pitch"`

	Gamma      float64 `yaml:"gamma"`
	Brightness float64 `yaml:"brightness"`
	CrossfadeS float64 `yaml:"crossfade_s"`
	Seed       int64   `yaml:"seed"`

	Power   PowerCfg           `yaml:"power"`
	Trigger Trigger            `yaml:"trigger"`
	Params  map[string]float64 `yaml:"params,omitempty"`
	Bools   map[string]bool    `yaml:"bools,omitempty"`
}

// Default mirrors a single fadecandy on localhost driving 8 strands of 64.
func Default() *Config {
	return &Config{
		Driver:       []string{"opc"},
		OPC:          OPC{Addr: "localhost:7890"},
		SPI:          SPI{FreqKHz: 2500},
		Preview:      Preview{Addr: ":8080"},
		FPS:          60,
		Pattern:      "chill",
		StrandLength: 64,
		Dim:          Dim{X: 64, Y: 8, Z: 1},
		Pitch:        1,
		Gamma:        2.2,
		Brightness:   1,
		Power:        PowerCfg{WhiteCap: 3, ChanMA: 20},
		Trigger:      Trigger{Addr: ":5005", RetryMS: 2000},
	}
}

// Load reads path over the defaults; keys absent from the file keep their
// default value.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// TuningParams merges the power settings into the free-form params map
// under the names the renderers read.
func (c *Config) TuningParams() map[string]float64 {
	out := make(map[string]float64, len(c.Params)+3)
	if c.Power.WhiteCap > 0 {
		out["WhiteCap"] = c.Power.WhiteCap
	}
	if c.Power.ChanMA > 0 {
		out["LEDChan_mA"] = c.Power.ChanMA
	}
	if c.Power.BudgetMA > 0 {
		out["Budget_mA"] = c.Power.BudgetMA
	}
	if c.Gamma > 0 {
		out["RainGamma"] = c.Gamma
	}
	for k, v := range c.Params {
		out[k] = v
	}
	return out
}
