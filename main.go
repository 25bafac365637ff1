// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>
// 列車がトンネルを通過する空力シミュレーションの結果ファイルから
// 一様時間軸上の圧力変動の全振幅を求める
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"thermopost/internal/chart"
	"thermopost/internal/config"
	"thermopost/internal/logging"
	"thermopost/internal/pipeline"
	"thermopost/internal/schema"
)

// 出力ファイル名
type outputPaths struct {
	raw          string
	interpolated string
	pressure     string
	delta        string
}

// 入力ファイル名から出力ファイル名を作る
func deriveOutputPaths(inputPath string, outDir string) outputPaths {
	// 入力ファイル拡張子を取り除く
	basename := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	if outDir != "" {
		basename = filepath.Join(outDir, filepath.Base(basename))
	}
	return outputPaths{
		raw:          basename + "_raw.csv",
		interpolated: basename + "_interpolated.csv",
		pressure:     basename + "_pressure.png",
		delta:        basename + "_delta.png",
	}
}

// スキーマファイルが指定されていればそれを、無ければ組み込みモードを使う
func resolveSchema(mode string, schemaFile string) (schema.ChannelSchema, error) {
	if schemaFile != "" {
		return schema.Load(schemaFile)
	}
	return schema.Lookup(mode)
}

// 結果ファイルを処理する
func processTheFile(inputPath string, outDir string, s schema.ChannelSchema, cfg *config.Config) error {
	fmt.Printf("input file \"%s\" (%s)\n", inputPath, s.Name)

	result, err := pipeline.RunFile(inputPath, s, cfg.PipelineOptions())
	if err != nil {
		slog.Error("RunFile", "err", err)
		return err
	}

	paths := deriveOutputPaths(inputPath, outDir)
	if err := result.Save(paths.raw, paths.interpolated); err != nil {
		slog.Error("Save", "err", err)
		return err
	}
	fmt.Printf("Data saved to %s\n", paths.raw)
	fmt.Printf("Interpolated data saved to %s\n", paths.interpolated)

	if cfg.Chart.Enable {
		option := chart.Option{Width: cfg.Chart.Width, Height: cfg.Chart.Height}
		if err := chart.SavePressure(paths.pressure, result.Metrics, s, option); err != nil {
			slog.Error("SavePressure", "err", err)
			return err
		}
		if err := chart.SaveDelta(paths.delta, result.Metrics, s, cfg.Window, cfg.Step, option); err != nil {
			slog.Error("SaveDelta", "err", err)
			return err
		}
	}

	st := result.Stats
	fmt.Printf("lines %d, rows %d, rejected %d, dropped %d, grid points %d\n",
		st.LinesRead, st.Rows, st.Rejected, st.Dropped, st.GridPoints)
	return nil
}

// 組み込みモードの一覧を表示する
func printModes() {
	for _, m := range schema.Modes() {
		s, _ := schema.Lookup(m)
		fmt.Printf("mode %s: %s (%d channels)\n", m, s.Name, s.Len())
		for i, c := range s.Channels {
			fmt.Printf("  %2d %s\n", i+1, c)
		}
		for _, p := range s.Pairs {
			fmt.Printf("  Delta_%s <- %s\n", p.Label, p.Outside)
		}
	}
}

func main() {
	var (
		configFile string
		inputFile  string
		schemaFile string
		mode       string
		outDir     string
		step       float64
		window     int
		width      int
		height     int
		noChart    bool
	)

	app := &cli.App{
		Name:    "thermopost",
		Usage:   "トンネル通過時の圧力変動を解析する",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "設定ファイル(YAML)",
				Destination: &configFile,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "結果ファイルを解析する",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "file",
						Aliases:     []string{"f"},
						Usage:       "入力ファイル(引数でも指定できる)",
						Destination: &inputFile,
					},
					&cli.StringFlag{
						Name:        "mode",
						Aliases:     []string{"m"},
						Usage:       "モード(1: 1編成, 2: 2編成, 3: 立坑付き)",
						Destination: &mode,
						Value:       "1",
					},
					&cli.StringFlag{
						Name:        "schema",
						Usage:       "チャネルスキーマ(YAML)、指定時はモードより優先",
						Destination: &schemaFile,
					},
					&cli.StringFlag{
						Name:        "out",
						Aliases:     []string{"o"},
						Usage:       "出力ディレクトリ(既定は入力ファイルと同じ場所)",
						Destination: &outDir,
					},
					&cli.Float64Flag{
						Name:        "step",
						Usage:       "時間刻み(s)",
						Destination: &step,
					},
					&cli.IntFlag{
						Name:        "window",
						Aliases:     []string{"w"},
						Usage:       "移動窓の標本数",
						Destination: &window,
					},
					&cli.IntFlag{
						Name:        "width",
						Aliases:     []string{"W"},
						Usage:       "グラフの横幅(pt)",
						Destination: &width,
					},
					&cli.IntFlag{
						Name:        "height",
						Aliases:     []string{"H"},
						Usage:       "グラフの高さ(pt)",
						Destination: &height,
					},
					&cli.BoolFlag{
						Name:        "no-chart",
						Usage:       "グラフを描かない",
						Destination: &noChart,
					},
				},
				Action: func(c *cli.Context) error {
					if len(inputFile) == 0 {
						inputFile = c.Args().First()
					}
					if len(inputFile) == 0 {
						return cli.Exit("ファイルが指定されていません", -1)
					}

					cfg, err := config.Load(configFile)
					if err != nil {
						slog.Error("config.Load", "err", err)
						return err
					}
					// コマンドラインで指定された値を優先する
					if c.IsSet("step") {
						cfg.Step = step
					}
					if c.IsSet("window") {
						cfg.Window = window
					}
					if c.IsSet("width") {
						cfg.Chart.Width = width
					}
					if c.IsSet("height") {
						cfg.Chart.Height = height
					}
					if noChart {
						cfg.Chart.Enable = false
					}
					if err := cfg.Validate(); err != nil {
						return cli.Exit(err.Error(), -1)
					}
					logging.Setup(cfg.Logging, os.Stderr)

					s, err := resolveSchema(mode, schemaFile)
					if err != nil {
						slog.Error("resolveSchema", "err", err)
						return err
					}

					return processTheFile(inputFile, outDir, s, cfg)
				},
			},
			{
				Name:  "modes",
				Usage: "組み込みモードのチャネル構成を表示する",
				Action: func(c *cli.Context) error {
					printModes()
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("app.Run", "err", err)
		os.Exit(1)
	}
}
