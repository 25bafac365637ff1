// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>
package schema

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

var ErrUnknownMode = errors.New("未知のモード")

const timeChannel = "Time(s)"

// モード1: 1編成が1本のトンネルを通過する
func SingleTrain() ChannelSchema {
	return ChannelSchema{
		Name: "single-train",
		Channels: []string{
			timeChannel,
			"Pressure at x=L/4 Tunnel-1(kPa)",
			"Pressure at x=L/2 Tunnel-1(kPa)",
			"Pressure at x=3L/4 Tunnel-1(kPa)",
			"Velocity at x=L/4 Tunnel-1(m/s)",
			"Velocity at x=L/2 Tunnel-1(m/s)",
			"Velocity at x=3L/4 Tunnel-1(m/s)",
			"Pressure Front coach(outside)[kPa]",
			"Pressure Front coach(inside)[kPa]",
			"Pressure Rear coach(outside)[kPa]",
			"Pressure Rear coach(inside)[kPa]",
			"Speed Train(m/s)",
		},
		Time:   timeChannel,
		Speeds: []Speed{{Channel: "Speed Train(m/s)", Distance: "Distance(m)"}},
		Pairs: []PressurePair{
			{Label: "PFout", Outside: "Pressure Front coach(outside)[kPa]", Inside: "Pressure Front coach(inside)[kPa]"},
			{Label: "PRout", Outside: "Pressure Rear coach(outside)[kPa]", Inside: "Pressure Rear coach(inside)[kPa]"},
		},
	}
}

// モード2: 2編成が1本のトンネルを通過する
func TwoTrains() ChannelSchema {
	return ChannelSchema{
		Name: "two-train",
		Channels: []string{
			timeChannel,
			"Pressure at x=L/4 Tunnel-1(kPa)",
			"Pressure at x=L/2 Tunnel-1(kPa)",
			"Pressure at x=3L/4 Tunnel-1(kPa)",
			"Velocity at x=L/4 Tunnel-1(m/s)",
			"Velocity at x=L/2 Tunnel-1(m/s)",
			"Velocity at x=3L/4 Tunnel-1(m/s)",
			"Pressure Front coach(outside)[kPa]-tr1",
			"Pressure Front coach(inside)[kPa]-tr1",
			"Pressure Rear coach(outside)[kPa]-tr1",
			"Pressure Rear coach(inside)[kPa]-tr1",
			"Speed Train(m/s)-1",
			"Pressure Front coach(outside)[kPa]-tr2",
			"Pressure Front coach(inside)[kPa]-tr2",
			"Pressure Rear coach(outside)[kPa]-tr2",
			"Pressure Rear coach(inside)[kPa]-tr2",
			"Speed Train(m/s)-2",
		},
		Time: timeChannel,
		Speeds: []Speed{
			{Channel: "Speed Train(m/s)-1", Distance: "Distance(m)-tr1"},
			{Channel: "Speed Train(m/s)-2", Distance: "Distance(m)-tr2"},
		},
		Pairs: []PressurePair{
			{Label: "PFout-tr1", Outside: "Pressure Front coach(outside)[kPa]-tr1", Inside: "Pressure Front coach(inside)[kPa]-tr1"},
			{Label: "PRout-tr1", Outside: "Pressure Rear coach(outside)[kPa]-tr1", Inside: "Pressure Rear coach(inside)[kPa]-tr1"},
			{Label: "PFout-tr2", Outside: "Pressure Front coach(outside)[kPa]-tr2", Inside: "Pressure Front coach(inside)[kPa]-tr2"},
			{Label: "PRout-tr2", Outside: "Pressure Rear coach(outside)[kPa]-tr2", Inside: "Pressure Rear coach(inside)[kPa]-tr2"},
		},
	}
}

// モード3: 立坑付きトンネル群を1編成が通過する
func TunnelWithShaft() ChannelSchema {
	return ChannelSchema{
		Name: "tunnel-with-shaft",
		Channels: []string{
			timeChannel,
			"Pressure Middle of Tunnel 1[kPa]",
			"Pressure Middle of Tunnel 2[kPa]",
			"Pressure First coach (outside)[kPa]",
			"Pressure First coach (inside)[kPa]",
			"Pressure Last coach (outside)[kPa]",
			"Pressure Last coach (inside)[kPa]",
			"Velocity Middle of Tunnel 1[m/s]",
			"Velocity Middle of Tunnel 2[m/s]",
			"Velocity Middle of Shaft[m/s]",
			"Speed Train(m/s)",
		},
		Time:   timeChannel,
		Speeds: []Speed{{Channel: "Speed Train(m/s)", Distance: "Distance(m)"}},
		Pairs: []PressurePair{
			{Label: "PFout", Outside: "Pressure First coach (outside)[kPa]", Inside: "Pressure First coach (inside)[kPa]"},
			{Label: "PRout", Outside: "Pressure Last coach (outside)[kPa]", Inside: "Pressure Last coach (inside)[kPa]"},
		},
	}
}

var builtin = map[string]func() ChannelSchema{
	"1": SingleTrain,
	"2": TwoTrains,
	"3": TunnelWithShaft,
}

// 組み込みモード名の一覧
func Modes() []string {
	modes := make([]string, 0, len(builtin))
	for m := range builtin {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// モード名("1", "2", "3")またはスキーマ名から組み込みスキーマを得る
func Lookup(mode string) (ChannelSchema, error) {
	if f, ok := builtin[mode]; ok {
		return f(), nil
	}
	for _, f := range builtin {
		if s := f(); s.Name == mode {
			return s, nil
		}
	}
	return ChannelSchema{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// YAMLで書かれたスキーマファイルを読み込む
func Load(path string) (ChannelSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChannelSchema{}, fmt.Errorf("スキーマファイルを読めない: %w", err)
	}
	var s ChannelSchema
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return ChannelSchema{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if err := s.Validate(); err != nil {
		return ChannelSchema{}, err
	}
	return s, nil
}
