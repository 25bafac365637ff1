// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>

// データ行を数値に変換して整えた表(Dataset)を作る
package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"thermopost/internal/record"
	"thermopost/internal/schema"
	"thermopost/internal/table"
)

var (
	ErrTimeNotIncreasing = errors.New("時間が狭義単調増加になっていない")
	ErrEmptyDataset      = errors.New("有効なデータ行がない")
)

// 数値化済みのデータ
// 列はスキーマの列順に続けて速度チャネルごとの距離列を持つ
type Dataset struct {
	schema schema.ChannelSchema
	table  *table.Table
}

// 捨てた行の記録
type Drop struct {
	Line   int
	Column string
	Token  string
}

type Stats struct {
	Input   int
	Dropped []Drop
}

func (d *Dataset) Schema() schema.ChannelSchema {
	return d.schema.Clone()
}

func (d *Dataset) Table() *table.Table {
	return d.table
}

func (d *Dataset) Rows() int {
	return d.table.Rows()
}

func (d *Dataset) Times() []float64 {
	v, _ := d.table.Col(d.schema.Time)
	return v
}

func (d *Dataset) Col(name string) ([]float64, bool) {
	return d.table.Col(name)
}

// トークンを数値にする
// NaNは欠損値と同じ扱いにする
func parseValue(token string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return 0, errors.New("NaN")
	}
	return v, nil
}

// 全列を数値に変換し、1列でも変換できなかった行は行ごと捨てる。
// 残った行には 距離 = 時間 × その行の速度 を速度チャネルごとに付け足す。
func Clean(rows []record.RawRow, s schema.ChannelSchema) (*Dataset, Stats, error) {
	stats := Stats{Input: len(rows)}

	columns := make([][]float64, s.Len(), s.Len()+len(s.Speeds))
	for j := range columns {
		columns[j] = make([]float64, 0, len(rows))
	}

	values := make([]float64, s.Len())
	for _, row := range rows {
		if len(row.Tokens) != s.Len() {
			return nil, stats, fmt.Errorf("%d行目: %w", row.Line, record.ErrMalformedLine)
		}
		valid := true
		for j, token := range row.Tokens {
			v, err := parseValue(token)
			if err != nil {
				slog.Warn("dropped", "line", row.Line, "column", s.Channels[j], "token", token)
				stats.Dropped = append(stats.Dropped, Drop{Line: row.Line, Column: s.Channels[j], Token: token})
				valid = false
				break
			}
			values[j] = v
		}
		if !valid {
			continue
		}
		for j, v := range values {
			columns[j] = append(columns[j], v)
		}
	}

	timeIdx, _ := s.Index(s.Time)
	times := columns[timeIdx]
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, stats, fmt.Errorf("%w: %d番目 %v <= %v", ErrTimeNotIncreasing, i, times[i], times[i-1])
		}
	}

	names := append([]string(nil), s.Channels...)
	for _, sp := range s.Speeds {
		speedIdx, _ := s.Index(sp.Channel)
		distance := make([]float64, len(times))
		for i, t := range times {
			distance[i] = t * columns[speedIdx][i]
		}
		names = append(names, sp.Distance)
		columns = append(columns, distance)
	}

	tbl, err := table.New(names, columns)
	if err != nil {
		return nil, stats, err
	}

	slog.Info("cleaned", "rows", tbl.Rows(), "dropped", len(stats.Dropped))
	return &Dataset{schema: s.Clone(), table: tbl}, stats, nil
}
