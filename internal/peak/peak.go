// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>

// 圧力変動の全振幅(Delta)を移動窓の最大値と最小値から求める
package peak

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"thermopost/internal/schema"
	"thermopost/internal/table"
)

// 移動窓の標本数(0.1 s 刻みで 4 s)
const DefaultWindow = 40

var (
	ErrInvalidWindow  = errors.New("窓の大きさは1以上でなければならない")
	ErrUnknownChannel = errors.New("表にないチャネル")
)

func RollingMinColumn(label string) string { return "rolling-min-" + label }
func RollingMaxColumn(label string) string { return "rolling-max-" + label }
func DeltaColumn(label string) string { return "Delta_" + label }

// 解析対象のチャネル
type Channel struct {
	Label  string // 出力列名に使う
	Column string
}

// スキーマの圧力の組から解析対象(車外側)を得る
func Channels(s schema.ChannelSchema) []Channel {
	out := make([]Channel, len(s.Pairs))
	for i, p := range s.Pairs {
		out[i] = Channel{Label: p.Label, Column: p.Outside}
	}
	return out
}

type Series struct {
	Min   []float64
	Max   []float64
	Delta []float64
}

// 後ろ向きの移動窓で最小値と最大値を求める
// 窓が埋まるまでは先頭からの部分列を使う
func Rolling(values []float64, window int) (mins, maxs []float64) {
	mins = make([]float64, len(values))
	maxs = make([]float64, len(values))
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		w := values[lo : i+1]
		mins[i] = floats.Min(w)
		maxs[i] = floats.Max(w)
	}
	return mins, maxs
}

// 窓が初めて埋まった位置(window-1)の値で、それより前を上書きした複製を返す。
// 立ち上がり部分のばらつきを均すための処理。
// データ数が窓に満たなければ何もしない。
func Backfill(values []float64, window int) []float64 {
	out := append([]float64(nil), values...)
	if len(out) < window {
		return out
	}
	for i := 0; i < window-1; i++ {
		out[i] = out[window-1]
	}
	return out
}

// 1チャネル分の最小値・最大値・Delta
func Compute(values []float64, window int) (Series, error) {
	if window < 1 {
		return Series{}, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}

	rollMin, rollMax := Rolling(values, window)
	rollMin = Backfill(rollMin, window)
	rollMax = Backfill(rollMax, window)

	delta := make([]float64, len(values))
	for i := range delta {
		delta[i] = math.Abs(rollMax[i] - rollMin[i])
	}
	return Series{Min: rollMin, Max: rollMax, Delta: delta}, nil
}

// 補間済みの表に rolling-min-*, rolling-max-*, Delta_* 列を足した新しい表を返す
func Apply(t *table.Table, channels []Channel, window int) (*table.Table, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	for _, ch := range channels {
		if !t.Has(ch.Column) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, ch.Column)
		}
	}

	results := make([]Series, len(channels))

	var g errgroup.Group
	for i, ch := range channels {
		i, ch := i, ch
		g.Go(func() error {
			values, _ := t.Col(ch.Column)
			s, err := Compute(values, window)
			if err != nil {
				return err
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Compute", "err", err)
		return nil, err
	}

	columns := make([]string, 0, 3*len(channels))
	values := make([][]float64, 0, 3*len(channels))
	for i, ch := range channels {
		columns = append(columns, RollingMinColumn(ch.Label), RollingMaxColumn(ch.Label), DeltaColumn(ch.Label))
		values = append(values, results[i].Min, results[i].Max, results[i].Delta)
	}

	if t.Rows() < window {
		slog.Info("warm-up backfill skipped", "rows", t.Rows(), "window", window)
	}
	return t.Append(columns, values)
}
