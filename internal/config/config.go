// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>

// 実行時の設定
// 環境変数(THERMOPOST_*)を読み、設定ファイルがあればその値で上書きする
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"thermopost/internal/peak"
	"thermopost/internal/pipeline"
	"thermopost/internal/record"
	"thermopost/internal/resample"
)

const envPrefix = "THERMOPOST"

var ErrInvalidConfig = errors.New("設定が不正")

type Config struct {
	HeaderLines int           `yaml:"header_lines" envconfig:"HEADER_LINES" default:"9"`
	Sentinel    string        `yaml:"sentinel" envconfig:"SENTINEL" default:"Max.value"`
	Step        float64       `yaml:"step" envconfig:"STEP" default:"0.1"`
	Window      int           `yaml:"window" envconfig:"WINDOW" default:"40"`
	Logging     LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Chart       ChartConfig   `yaml:"chart" envconfig:"CHART"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text"`
}

// グラフの大きさ(pt)
type ChartConfig struct {
	Width  int  `yaml:"width" envconfig:"WIDTH" default:"1280"`
	Height int  `yaml:"height" envconfig:"HEIGHT" default:"640"`
	Enable bool `yaml:"enable" envconfig:"ENABLE" default:"true"`
}

// 設定を読み込む
// path が空なら環境変数と既定値だけを使う
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("環境変数を読めない: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("設定ファイルを読めない: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.HeaderLines < 0 {
		return fmt.Errorf("%w: header_lines = %d", ErrInvalidConfig, c.HeaderLines)
	}
	if !(c.Step > 0) {
		return fmt.Errorf("%w: step = %v", ErrInvalidConfig, c.Step)
	}
	if c.Window < 1 {
		return fmt.Errorf("%w: window = %d", ErrInvalidConfig, c.Window)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format = %q", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("%w: chart %dx%d", ErrInvalidConfig, c.Chart.Width, c.Chart.Height)
	}
	return nil
}

// パイプラインに渡す設定
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Parse: record.Options{
			HeaderLines: c.HeaderLines,
			Sentinel:    c.Sentinel,
		},
		Step:   c.Step,
		Window: c.Window,
	}
}

// 既定値
func Default() Config {
	return Config{
		HeaderLines: record.DefaultHeaderLines,
		Sentinel:    record.DefaultSentinel,
		Step:        resample.DefaultStep,
		Window:      peak.DefaultWindow,
		Logging:     LoggingConfig{Level: "info", Format: "text"},
		Chart:       ChartConfig{Width: 1280, Height: 640, Enable: true},
	}
}
