// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>

// 入力ファイルの列構成(チャネルスキーマ)を定義する
package schema

import (
	"errors"
	"fmt"
)

var ErrInvalidSchema = errors.New("不正なチャネルスキーマ")

// 速度チャネルと、そこから導出する距離列の名前
type Speed struct {
	Channel  string `yaml:"channel"`
	Distance string `yaml:"distance"`
}

// 車外/車内の圧力チャネルの組
// 圧力変動(Delta)の解析対象は車外側
type PressurePair struct {
	Label   string `yaml:"label"`
	Outside string `yaml:"outside"`
	Inside  string `yaml:"inside"`
}

// ChannelSchema はデータ行の各列の名前と役割を表す。
// Channels の並びは入力ファイルの列順と一致する。
type ChannelSchema struct {
	Name     string         `yaml:"name"`
	Channels []string       `yaml:"channels"`
	Time     string         `yaml:"time"`
	Speeds   []Speed        `yaml:"speeds"`
	Pairs    []PressurePair `yaml:"pairs"`
}

// 列数
func (s ChannelSchema) Len() int {
	return len(s.Channels)
}

// 列名から列番号を得る
func (s ChannelSchema) Index(name string) (int, bool) {
	for i, c := range s.Channels {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// 一様時間軸へ補間する列(時間列以外のすべて)
func (s ChannelSchema) Tracked() []string {
	tracked := make([]string, 0, len(s.Channels))
	for _, c := range s.Channels {
		if c != s.Time {
			tracked = append(tracked, c)
		}
	}
	return tracked
}

// 距離列の名前
func (s ChannelSchema) DistanceColumns() []string {
	names := make([]string, len(s.Speeds))
	for i, sp := range s.Speeds {
		names[i] = sp.Distance
	}
	return names
}

// 複製を返す
func (s ChannelSchema) Clone() ChannelSchema {
	return ChannelSchema{
		Name:     s.Name,
		Channels: append([]string(nil), s.Channels...),
		Time:     s.Time,
		Speeds:   append([]Speed(nil), s.Speeds...),
		Pairs:    append([]PressurePair(nil), s.Pairs...),
	}
}

// スキーマの整合性を検査する
func (s ChannelSchema) Validate() error {
	if len(s.Channels) == 0 {
		return fmt.Errorf("%w: チャネルがない", ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(s.Channels))
	for _, c := range s.Channels {
		if c == "" {
			return fmt.Errorf("%w: 空のチャネル名", ErrInvalidSchema)
		}
		if seen[c] {
			return fmt.Errorf("%w: チャネル名 %q が重複", ErrInvalidSchema, c)
		}
		seen[c] = true
	}
	if !seen[s.Time] {
		return fmt.Errorf("%w: 時間チャネル %q がない", ErrInvalidSchema, s.Time)
	}
	if len(s.Speeds) == 0 {
		return fmt.Errorf("%w: 速度チャネルがない", ErrInvalidSchema)
	}
	for _, sp := range s.Speeds {
		if !seen[sp.Channel] {
			return fmt.Errorf("%w: 速度チャネル %q がない", ErrInvalidSchema, sp.Channel)
		}
		if sp.Distance == "" || seen[sp.Distance] {
			return fmt.Errorf("%w: 距離列名 %q が不正", ErrInvalidSchema, sp.Distance)
		}
		seen[sp.Distance] = true
	}
	labels := make(map[string]bool, len(s.Pairs))
	for _, p := range s.Pairs {
		if p.Label == "" || labels[p.Label] {
			return fmt.Errorf("%w: ラベル %q が不正", ErrInvalidSchema, p.Label)
		}
		labels[p.Label] = true
		for _, c := range []string{p.Outside, p.Inside} {
			if _, ok := s.Index(c); !ok || c == s.Time {
				return fmt.Errorf("%w: 圧力チャネル %q がない", ErrInvalidSchema, c)
			}
		}
	}
	return nil
}
