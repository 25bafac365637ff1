// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>

// 不等間隔のデータを一様な時間軸へ線形補間する
package resample

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"thermopost/internal/dataset"
	"thermopost/internal/table"
)

// 時間刻み(s)
const DefaultStep = 0.1

// 刻み幅で割った時の丸め誤差の許容量
const gridTolerance = 1e-9

var ErrInvalidStep = errors.New("時間刻みは正の有限値でなければならない")

// 0 から maxTime 以上となる最初の格子点までの一様な時間軸
func NewGrid(maxTime, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, step)
	}
	if math.IsNaN(maxTime) || math.IsInf(maxTime, 0) {
		return nil, fmt.Errorf("最大時間が不正: %v", maxTime)
	}

	last := int(math.Ceil(maxTime/step - gridTolerance))
	if last < 0 {
		last = 0
	}

	grid := make([]float64, last+1)
	for i := range grid {
		grid[i] = float64(i) * step
	}
	return grid, nil
}

// 表の節点 (xs, ys) で grid 上の値を線形補間する
// 範囲外は端の値で一定とする
func Interpolate(xs, ys, grid []float64) ([]float64, error) {
	out := make([]float64, len(grid))
	switch len(xs) {
	case 0:
		return nil, dataset.ErrEmptyDataset
	case 1:
		for i := range out {
			out[i] = ys[0]
		}
		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	for i, x := range grid {
		out[i] = pl.Predict(x)
	}
	return out, nil
}

// Dataset を一様な時間軸に載せ替える。
// 出力列は 時間, 距離(速度チャネルごと), 補間した各チャネル の順。
// 距離は 格子時間 × 平均速度 で求める近似値。
func Resample(ds *dataset.Dataset, step float64) (*table.Table, error) {
	if ds.Rows() == 0 {
		return nil, dataset.ErrEmptyDataset
	}

	s := ds.Schema()
	times := ds.Times()

	grid, err := NewGrid(floats.Max(times), step)
	if err != nil {
		slog.Error("NewGrid", "err", err)
		return nil, err
	}

	tracked := s.Tracked()
	series := make([][]float64, len(tracked))

	var g errgroup.Group
	for i, name := range tracked {
		i, name := i, name
		g.Go(func() error {
			values, _ := ds.Col(name)
			out, err := Interpolate(times, values, grid)
			if err != nil {
				return fmt.Errorf("%q の補間: %w", name, err)
			}
			series[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Interpolate", "err", err)
		return nil, err
	}

	columns := []string{s.Time}
	values := [][]float64{grid}
	for _, sp := range s.Speeds {
		speed, _ := ds.Col(sp.Channel)
		mean := stat.Mean(speed, nil)

		distance := make([]float64, len(grid))
		floats.ScaleTo(distance, mean, grid)

		columns = append(columns, sp.Distance)
		values = append(values, distance)
	}
	columns = append(columns, tracked...)
	values = append(values, series...)

	slog.Info("resampled", "points", len(grid), "step", step, "channels", len(tracked))
	return table.New(columns, values)
}
