package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: [opc, preview]
pattern: rain
opc:
  addr: 10.0.0.5:7890
  channel: 1
trigger:
  auto_advance_s: 90
params:
  RainMaxDrops: 10
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"opc", "preview"}, c.Driver)
	assert.Equal(t, "rain", c.Pattern)
	assert.Equal(t, "10.0.0.5:7890", c.OPC.Addr)
	assert.Equal(t, uint8(1), c.OPC.Channel)
	assert.Equal(t, 90.0, c.Trigger.AutoAdvanceS)
	assert.Equal(t, ":5005", c.Trigger.Addr, "default kept")
	assert.Equal(t, 60, c.FPS, "default kept")
	assert.Equal(t, 10.0, c.Params["RainMaxDrops"])
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Patterns = []string{"rain", "discs"}
	c.Seed = 42
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fps: [not a number"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestTuningParams(t *testing.T) {
	c := Default()
	c.Power.BudgetMA = 4000
	c.Params = map[string]float64{"WhiteCap": 2, "DiscsShiftS": 4}
	p := c.TuningParams()
	assert.Equal(t, 4000.0, p["Budget_mA"])
	assert.Equal(t, 2.0, p["WhiteCap"], "explicit params win")
	assert.Equal(t, 4.0, p["DiscsShiftS"])
	assert.Equal(t, 2.2, p["RainGamma"])
}
