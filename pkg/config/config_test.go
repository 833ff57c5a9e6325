package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.True(t, c.Simulate)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
simulate: false
table: boot.yaml
log:
  level: debug
gpio:
  chip: gpiochip1
  radio_irq: 5
radio:
  spi_port: /dev/spidev0.0
  verify_registers: true
debug:
  port: /dev/ttyUSB0
console:
  drop_every: 10
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.False(t, c.Simulate)
	assert.Equal(t, "boot.yaml", c.Table)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "gpiochip1", c.GPIO.Chip)
	assert.Equal(t, 5, c.GPIO.RadioIRQ)
	assert.Equal(t, 17, c.GPIO.PowerRail)
	assert.Equal(t, "/dev/spidev0.0", c.Radio.SPIPort)
	assert.True(t, c.Radio.VerifyRegisters)
	assert.Equal(t, "/dev/ttyUSB0", c.Debug.Port)
	assert.Equal(t, 115200, c.Debug.BaudRate)
	assert.Equal(t, 10, c.Console.DropEvery)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{name: "hardware without radio port", content: "simulate: false\n", target: ErrNoPorts},
		{name: "bad watchdog", content: "watchdog:\n  timeout_ms: 0\n"},
		{name: "bad console script", content: "console:\n  drop_every: -1\n"},
		{name: "malformed", content: "gpio: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
