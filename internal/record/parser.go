// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>

// 固定書式の計算結果ファイルをデータ行に分割する
package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"thermopost/internal/schema"
)

const (
	DefaultHeaderLines = 9           // 読み飛ばす見出し行数
	DefaultSentinel    = "Max.value" // データの終わりを示す行に含まれる文字列
)

var ErrMalformedLine = errors.New("トークン数が列数と一致しない")

type Options struct {
	HeaderLines int
	Sentinel    string
}

func DefaultOptions() Options {
	return Options{
		HeaderLines: DefaultHeaderLines,
		Sentinel:    DefaultSentinel,
	}
}

// 1行分の未変換トークン
// Tokens はスキーマの列順に並ぶ
type RawRow struct {
	Line   int // ファイル中の行番号(1始まり)
	Tokens []string
}

// 列名からトークンを引く
func (r RawRow) Field(s schema.ChannelSchema, name string) (string, bool) {
	i, ok := s.Index(name)
	if !ok || i >= len(r.Tokens) {
		return "", false
	}
	return r.Tokens[i], true
}

// 列名とトークンの対応表
func (r RawRow) Map(s schema.ChannelSchema) map[string]string {
	m := make(map[string]string, len(r.Tokens))
	for i, c := range s.Channels {
		m[c] = r.Tokens[i]
	}
	return m
}

// 列数不一致で捨てた行
type Rejection struct {
	Line   int
	Tokens int
	Want   int
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%d行目: %v (%d個, 期待値%d個)", r.Line, ErrMalformedLine, r.Tokens, r.Want)
}

func (r Rejection) Unwrap() error {
	return ErrMalformedLine
}

type Result struct {
	Rows         []RawRow
	Rejected     []Rejection
	LinesRead    int // 見出しを含めて読んだ行数
	SentinelLine int // 終端行の行番号(無ければ0)
}

// 入力ファイルを開いて解析する
func ParseFile(path string, s schema.ChannelSchema, opt Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Open", "err", err)
		return nil, err
	}
	defer f.Close()

	return Parse(f, s, opt)
}

// 見出し行を読み飛ばし、終端行の手前までをデータ行として読む
func Parse(r io.Reader, s schema.ChannelSchema, opt Options) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	result := &Result{}
	want := s.Len()

	for scanner.Scan() {
		result.LinesRead++
		lineNo := result.LinesRead
		if lineNo <= opt.HeaderLines {
			continue
		}

		line := scanner.Text()
		if opt.Sentinel != "" && strings.Contains(line, opt.Sentinel) {
			// これ以降の集計欄は全て捨てる
			result.SentinelLine = lineNo
			break
		}

		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != want {
			rej := Rejection{Line: lineNo, Tokens: len(tokens), Want: want}
			slog.Warn("rejected", "err", rej)
			result.Rejected = append(result.Rejected, rej)
			continue
		}
		result.Rows = append(result.Rows, RawRow{Line: lineNo, Tokens: tokens})
	}
	if err := scanner.Err(); err != nil {
		slog.Error("Scan", "err", err)
		return nil, err
	}

	return result, nil
}
