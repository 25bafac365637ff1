// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>

// 解析 → 数値化 → 一様時間軸への補間 → 移動窓の全振幅 を順に実行する
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"thermopost/internal/dataset"
	"thermopost/internal/peak"
	"thermopost/internal/record"
	"thermopost/internal/resample"
	"thermopost/internal/schema"
	"thermopost/internal/table"
)

type Options struct {
	Parse  record.Options
	Step   float64 // 時間刻み(s)
	Window int     // 移動窓の標本数
}

func DefaultOptions() Options {
	return Options{
		Parse:  record.DefaultOptions(),
		Step:   resample.DefaultStep,
		Window: peak.DefaultWindow,
	}
}

type Stats struct {
	LinesRead    int
	Rejected     int // 列数不一致で捨てた行
	Dropped      int // 数値に変換できず捨てた行
	Rows         int // 残ったデータ行
	GridPoints   int
	SentinelLine int
}

type Result struct {
	Schema  schema.ChannelSchema
	Raw     *table.Table // 数値化したデータ(距離列付き)
	Metrics *table.Table // 一様時間軸の補間値と rolling-min/max, Delta
	Stats   Stats
}

// 入力ファイルを処理する
func RunFile(path string, s schema.ChannelSchema, opt Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Open", "err", err)
		return nil, err
	}
	defer f.Close()

	return Run(f, s, opt)
}

func Run(r io.Reader, s schema.ChannelSchema, opt Options) (*Result, error) {
	if err := s.Validate(); err != nil {
		slog.Error("Validate", "err", err)
		return nil, err
	}

	parsed, err := record.Parse(r, s, opt.Parse)
	if err != nil {
		return nil, fmt.Errorf("入力を解析できない: %w", err)
	}

	ds, cleanStats, err := dataset.Clean(parsed.Rows, s)
	if err != nil {
		slog.Error("Clean", "err", err)
		return nil, err
	}

	resampled, err := resample.Resample(ds, opt.Step)
	if err != nil {
		slog.Error("Resample", "err", err)
		return nil, err
	}

	metrics, err := peak.Apply(resampled, peak.Channels(s), opt.Window)
	if err != nil {
		slog.Error("Apply", "err", err)
		return nil, err
	}

	return &Result{
		Schema:  s.Clone(),
		Raw:     ds.Table(),
		Metrics: metrics,
		Stats: Stats{
			LinesRead:    parsed.LinesRead,
			Rejected:     len(parsed.Rejected),
			Dropped:      len(cleanStats.Dropped),
			Rows:         ds.Rows(),
			GridPoints:   metrics.Rows(),
			SentinelLine: parsed.SentinelLine,
		},
	}, nil
}

// 2つの表をCSVファイルに保存する
func (r *Result) Save(rawPath, metricsPath string) error {
	if err := r.Raw.SaveCSV(rawPath); err != nil {
		return err
	}
	return r.Metrics.SaveCSV(metricsPath)
}
