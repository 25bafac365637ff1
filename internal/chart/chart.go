// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>

// 補間済みの表からグラフを描く
package chart

import (
	"fmt"
	"image/color"
	"log/slog"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"thermopost/internal/peak"
	"thermopost/internal/schema"
	"thermopost/internal/table"
)

type Option struct {
	Width  int // pt
	Height int // pt
}

// 組ごとの線の色
var palette = []color.Color{
	colornames.Black,
	colornames.Darkred,
	colornames.Darkblue,
	colornames.Darkgreen,
	colornames.Darkmagenta,
	colornames.Darkcyan,
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	// 背景色
	p.BackgroundColor = colornames.Snow
	// 補助線
	p.Add(plotter.NewGrid())

	// 凡例の位置を右上に設定
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.Padding = vg.Points(5)
	return p
}

func xys(t *table.Table, xCol, yCol string) (plotter.XYs, error) {
	xs, ok := t.Col(xCol)
	if !ok {
		return nil, fmt.Errorf("列 %q がない", xCol)
	}
	ys, ok := t.Col(yCol)
	if !ok {
		return nil, fmt.Errorf("列 %q がない", yCol)
	}
	pts := make(plotter.XYs, len(xs))
	for i := range pts {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts, nil
}

// 各組の車外(実線)・車内(点線)圧力の時間変化
func SavePressure(path string, t *table.Table, s schema.ChannelSchema, option Option) error {
	p := newPlot("Pressure [kPa] vs Time(s)", s.Time, "Pressure [kPa]")

	for i, pair := range s.Pairs {
		c := palette[i%len(palette)]
		for _, ch := range []struct {
			name   string
			dashed bool
		}{{pair.Outside, false}, {pair.Inside, true}} {
			pts, err := xys(t, s.Time, ch.name)
			if err != nil {
				slog.Error("xys", "err", err)
				return err
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				slog.Error("NewLine", "err", err)
				return err
			}
			line.Color = c
			if ch.dashed {
				line.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
			}
			p.Add(line)
			p.Legend.Add(ch.name, line) // 凡例
		}
	}

	return save(p, path, option)
}

// 各組の全振幅(Delta)の距離変化
// 速度チャネルが複数ある時は組を距離列に順番に割り当てる
func SaveDelta(path string, t *table.Table, s schema.ChannelSchema, window int, step float64, option Option) error {
	p := newPlot(
		fmt.Sprintf("ΔPout [kPa] in Δt = %g sec", float64(window)*step),
		"Distance (m)",
		"ΔPout [kPa]",
	)

	distances := s.DistanceColumns()
	perSpeed := (len(s.Pairs) + len(distances) - 1) / len(distances)
	for i, pair := range s.Pairs {
		pts, err := xys(t, distances[i/perSpeed], peak.DeltaColumn(pair.Label))
		if err != nil {
			slog.Error("xys", "err", err)
			return err
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			slog.Error("NewLinePoints", "err", err)
			return err
		}
		line.Color = palette[i%len(palette)]
		points.Shape = draw.CrossGlyph{}
		points.Color = line.Color
		points.Radius = vg.Points(1.5)
		p.Add(line, points)
		p.Legend.Add("Δ"+pair.Label, line) // 凡例
	}

	return save(p, path, option)
}

// プロットを画像ファイルに保存
func save(p *plot.Plot, path string, option Option) error {
	if err := p.Save(vg.Points(float64(option.Width)), vg.Points(float64(option.Height)), path); err != nil {
		slog.Error("Save", "err", err)
		return err
	}
	slog.Info("saved", "path", path)
	return nil
}
