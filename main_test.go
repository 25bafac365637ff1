package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermopost/internal/config"
	"thermopost/internal/schema"
)

func TestDeriveOutputPaths(t *testing.T) {
	p := deriveOutputPaths(filepath.Join("runs", "case1.dat"), "")
	assert.Equal(t, filepath.Join("runs", "case1_raw.csv"), p.raw)
	assert.Equal(t, filepath.Join("runs", "case1_interpolated.csv"), p.interpolated)
	assert.Equal(t, filepath.Join("runs", "case1_pressure.png"), p.pressure)
	assert.Equal(t, filepath.Join("runs", "case1_delta.png"), p.delta)

	p = deriveOutputPaths(filepath.Join("runs", "case1.dat"), "out")
	assert.Equal(t, filepath.Join("out", "case1_raw.csv"), p.raw)
}

func TestResolveSchema(t *testing.T) {
	s, err := resolveSchema("3", "")
	require.NoError(t, err)
	assert.Equal(t, "tunnel-with-shaft", s.Name)

	_, err = resolveSchema("9", "")
	assert.ErrorIs(t, err, schema.ErrUnknownMode)
}

func TestProcessTheFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "case3.txt")

	var b strings.Builder
	for i := 0; i < 9; i++ {
		b.WriteString("header\n")
	}
	for i := 0; i < 80; i++ {
		tm := float64(i) / 10
		fmt.Fprintf(&b, "%.1f 0.1 0.2 %.3f 0.0 %.3f 0.0 1 2 3 45.0\n", tm, float64(i%13)/10, -float64(i%7)/10)
	}
	b.WriteString("Max.value\n")
	require.NoError(t, os.WriteFile(input, []byte(b.String()), 0644))

	cfg := config.Default()
	cfg.Chart.Width, cfg.Chart.Height = 400, 200
	s := schema.TunnelWithShaft()

	require.NoError(t, processTheFile(input, "", s, &cfg))

	paths := deriveOutputPaths(input, "")
	for _, p := range []string{paths.raw, paths.interpolated, paths.pressure, paths.delta} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	data, err := os.ReadFile(paths.interpolated)
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.True(t, strings.HasSuffix(header, "rolling-min-PRout,rolling-max-PRout,Delta_PRout"), header)
}
