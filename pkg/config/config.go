// Package config loads the runtime configuration of the node.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoPorts is returned when hardware mode is selected without a radio port
var ErrNoPorts = errors.New("no radio SPI port configured")

type Config struct {
	Simulate bool   `yaml:"simulate"`
	Table    string `yaml:"table"` // boot execution table, empty means the built in default
	Log      struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	GPIO struct {
		Chip      string `yaml:"chip"`
		PowerRail int    `yaml:"power_rail"`
		Reset     int    `yaml:"radio_reset"`
		TestPoint int    `yaml:"test_point"`
		RadioIRQ  int    `yaml:"radio_irq"`
	} `yaml:"gpio"`
	Radio struct {
		SPIPort         string `yaml:"spi_port"`
		VerifyRegisters bool   `yaml:"verify_registers"`
	} `yaml:"radio"`
	Sensors struct {
		I2CBus      string `yaml:"i2c_bus"`
		ADC         string `yaml:"adc"`
		TempChannel int    `yaml:"temperature_channel"`
		PressAddr   uint8  `yaml:"pressure_address"`
		GyroAddr    uint8  `yaml:"gyro_address"`
	} `yaml:"sensors"`
	Debug struct {
		Port     string `yaml:"port"`
		BaudRate int    `yaml:"baud_rate"`
	} `yaml:"debug"`
	Watchdog struct {
		TimeoutMs int `yaml:"timeout_ms"`
	} `yaml:"watchdog"`
	Console struct {
		// simulated console: every nth reply is lost, 0 never
		DropEvery int `yaml:"drop_every"`
		// simulated console: answer every nth execution table request with a loopback session
		LoopbackEvery int `yaml:"loopback_every"`
	} `yaml:"console"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	c := &Config{Simulate: true}
	c.Log.Level = "info"
	c.GPIO.Chip = "gpiochip0"
	c.GPIO.PowerRail = 17
	c.GPIO.Reset = 27
	c.GPIO.TestPoint = 22
	c.GPIO.RadioIRQ = 23
	c.Sensors.ADC = "/sys/bus/iio/devices/iio:device0"
	c.Sensors.PressAddr = 0x28
	c.Sensors.GyroAddr = 0x68
	c.Debug.BaudRate = 115200
	c.Watchdog.TimeoutMs = 8000
	return c
}

// Load reads path on top of the defaults
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (obj *Config) Validate() error {
	if !obj.Simulate && obj.Radio.SPIPort == "" {
		return ErrNoPorts
	}
	if obj.Watchdog.TimeoutMs <= 0 {
		return fmt.Errorf("invalid watchdog timeout: %d ms", obj.Watchdog.TimeoutMs)
	}
	if obj.Console.DropEvery < 0 || obj.Console.LoopbackEvery < 0 {
		return fmt.Errorf("invalid console script: drop every %d, loopback every %d", obj.Console.DropEvery, obj.Console.LoopbackEvery)
	}
	return nil
}
