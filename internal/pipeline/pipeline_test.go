package pipeline

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermopost/internal/dataset"
	"thermopost/internal/peak"
	"thermopost/internal/schema"
)

// モード1の計算結果ファイルを模した入力を作る
// line(i) が空文字を返した行は正常な行にする
func singleTrainInput(n int, line func(i int) string) string {
	var b strings.Builder
	b.WriteString(" TUNNEL AERODYNAMICS SIMULATION\n")
	for i := 1; i < 9; i++ {
		fmt.Fprintf(&b, " header %d\n", i)
	}
	for i := 0; i < n; i++ {
		if l := line(i); l != "" {
			b.WriteString(l + "\n")
			continue
		}
		tm := float64(i) / 10
		p := math.Sin(tm)
		fmt.Fprintf(&b, "%.1f %.4f %.4f %.4f 1.0 2.0 3.0 %.4f %.4f %.4f %.4f 50.0\n",
			tm, p, p/2, p/3, p, p*0.9, -p, -p*0.9)
	}
	b.WriteString(" Max.value 9 9 9 9 9 9 9 9 9 9 9\n")
	b.WriteString(" Min.value 0 0 0 0 0 0 0 0 0 0 0\n")
	return b.String()
}

func normal(int) string { return "" }

func TestScenarioA(t *testing.T) {
	res, err := Run(strings.NewReader(singleTrainInput(50, normal)), schema.SingleTrain(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 50, res.Stats.Rows)
	assert.Equal(t, 50, res.Stats.GridPoints)
	assert.Equal(t, 60, res.Stats.SentinelLine)
	assert.Zero(t, res.Stats.Rejected)
	assert.Zero(t, res.Stats.Dropped)

	grid, _ := res.Metrics.Col("Time(s)")
	dist, _ := res.Metrics.Col("Distance(m)")
	require.Len(t, grid, 50)
	for i := range grid {
		assert.InDelta(t, float64(i)*0.1, grid[i], 1e-12)
		assert.Equal(t, grid[i]*50.0, dist[i])
	}

	// 生データの距離列は 時間 × 速度
	times, _ := res.Raw.Col("Time(s)")
	rawDist, _ := res.Raw.Col("Distance(m)")
	for i := range times {
		assert.InDelta(t, times[i]*50.0, rawDist[i], 1e-12)
	}

	// 節点と一致する格子点は元の値
	src, _ := res.Raw.Col("Pressure Front coach(outside)[kPa]")
	dst, _ := res.Metrics.Col("Pressure Front coach(outside)[kPa]")
	for i := range src {
		assert.InDelta(t, src[i], dst[i], 1e-9)
	}
}

func TestScenarioBMalformedLine(t *testing.T) {
	input := singleTrainInput(50, func(i int) string {
		if i == 20 {
			return "2.0 0.1 0.1 0.1 1.0 2.0 3.0 0.1 0.1 0.1 0.1" // 11 トークン
		}
		return ""
	})

	res, err := Run(strings.NewReader(input), schema.SingleTrain(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Rejected)
	assert.Equal(t, 49, res.Stats.Rows)
	assert.Equal(t, 49, res.Raw.Rows())
}

func TestScenarioCNonNumericField(t *testing.T) {
	input := singleTrainInput(50, func(i int) string {
		if i == 5 {
			return "0.5 0.1 0.1 0.1 1.0 2.0 3.0 ******* 0.1 0.1 0.1 50.0"
		}
		return ""
	})

	res, err := Run(strings.NewReader(input), schema.SingleTrain(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Dropped)
	assert.Equal(t, 49, res.Stats.Rows)

	times, _ := res.Raw.Col("Time(s)")
	assert.NotContains(t, times, 0.5)
}

func TestScenarioDShortDataset(t *testing.T) {
	res, err := Run(strings.NewReader(singleTrainInput(25, normal)), schema.SingleTrain(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 25, res.Metrics.Rows())

	src, _ := res.Metrics.Col("Pressure Rear coach(outside)[kPa]")
	mins, _ := res.Metrics.Col(peak.RollingMinColumn("PRout"))
	maxs, _ := res.Metrics.Col(peak.RollingMaxColumn("PRout"))
	delta, _ := res.Metrics.Col(peak.DeltaColumn("PRout"))

	// 部分窓のまま(立ち上がり部分の上書きはしない)
	assert.Equal(t, src[0], mins[0])
	assert.Equal(t, src[0], maxs[0])
	for i := range delta {
		assert.GreaterOrEqual(t, maxs[i], mins[i])
		assert.GreaterOrEqual(t, delta[i], 0.0)
	}
}

func TestWarmupBackfill(t *testing.T) {
	res, err := Run(strings.NewReader(singleTrainInput(120, normal)), schema.SingleTrain(), DefaultOptions())
	require.NoError(t, err)

	const w = peak.DefaultWindow
	for _, p := range res.Schema.Pairs {
		mins, _ := res.Metrics.Col(peak.RollingMinColumn(p.Label))
		maxs, _ := res.Metrics.Col(peak.RollingMaxColumn(p.Label))
		for i := 0; i < w-1; i++ {
			assert.Equal(t, mins[w-1], mins[i])
			assert.Equal(t, maxs[w-1], maxs[i])
		}
	}
}

func TestMetricsColumns(t *testing.T) {
	res, err := Run(strings.NewReader(singleTrainInput(50, normal)), schema.SingleTrain(), DefaultOptions())
	require.NoError(t, err)

	cols := res.Metrics.Columns()
	assert.Equal(t, []string{"Time(s)", "Distance(m)"}, cols[:2])
	assert.Equal(t, []string{
		"rolling-min-PFout", "rolling-max-PFout", "Delta_PFout",
		"rolling-min-PRout", "rolling-max-PRout", "Delta_PRout",
	}, cols[len(cols)-6:])
	for _, c := range res.Schema.Tracked() {
		assert.Contains(t, cols, c)
	}

	raw := res.Raw.Columns()
	assert.Equal(t, append(schema.SingleTrain().Channels, "Distance(m)"), raw)

	var buf bytes.Buffer
	require.NoError(t, res.Metrics.WriteCSV(&buf))
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.True(t, strings.HasPrefix(header, "Time(s),Distance(m),"))
}

func TestTwoTrainMode(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 9; i++ {
		b.WriteString("header\n")
	}
	for i := 0; i < 60; i++ {
		tm := float64(i) / 10
		fmt.Fprintf(&b, "%.1f 0 0 0 0 0 0 %.2f 0 %.2f 0 40.0 %.2f 0 %.2f 0 60.0\n", tm, tm, -tm, 2*tm, -2*tm)
	}
	b.WriteString("Max.value\n")

	res, err := Run(strings.NewReader(b.String()), schema.TwoTrains(), DefaultOptions())
	require.NoError(t, err)

	d1, _ := res.Raw.Col("Distance(m)-tr1")
	d2, _ := res.Raw.Col("Distance(m)-tr2")
	assert.InDelta(t, 5.9*40, d1[59], 1e-9)
	assert.InDelta(t, 5.9*60, d2[59], 1e-9)

	delta, _ := res.Metrics.Col("Delta_PFout-tr2")
	// 線形増加なので窓が埋まった後の全振幅は 2 × 3.9
	assert.InDelta(t, 7.8, delta[50], 1e-9)
}

func TestRunErrors(t *testing.T) {
	_, err := Run(strings.NewReader(""), schema.ChannelSchema{}, DefaultOptions())
	assert.ErrorIs(t, err, schema.ErrInvalidSchema)

	_, err = Run(strings.NewReader(singleTrainInput(0, normal)), schema.SingleTrain(), DefaultOptions())
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)

	input := singleTrainInput(10, func(i int) string {
		if i == 3 {
			return "0.1 0 0 0 0 0 0 0 0 0 0 50.0" // 時間が戻る
		}
		return ""
	})
	_, err = Run(strings.NewReader(input), schema.SingleTrain(), DefaultOptions())
	assert.ErrorIs(t, err, dataset.ErrTimeNotIncreasing)

	_, err = RunFile(filepath.Join(t.TempDir(), "missing.dat"), schema.SingleTrain(), DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunFileAndSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "case1.dat")
	require.NoError(t, os.WriteFile(in, []byte(singleTrainInput(45, normal)), 0644))

	res, err := RunFile(in, schema.SingleTrain(), DefaultOptions())
	require.NoError(t, err)

	rawPath := filepath.Join(dir, "case1_raw.csv")
	metricsPath := filepath.Join(dir, "case1_interpolated.csv")
	require.NoError(t, res.Save(rawPath, metricsPath))

	raw, err := os.ReadFile(rawPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 46)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(metrics)), "\n"), 46)
}
