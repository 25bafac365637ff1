// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// 見出し行付きのCSVとして書き出す(行番号列なし)
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.columns); err != nil {
		return fmt.Errorf("見出し行を書けない: %w", err)
	}

	record := make([]string, len(t.columns))
	for i := 0; i < t.rows; i++ {
		for j, v := range t.Row(i) {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("%d行目を書けない: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVファイルに保存する
func (t *Table) SaveCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ディレクトリを作れない: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		slog.Error("Create", "err", err)
		return err
	}
	defer f.Close()

	if err := t.WriteCSV(f); err != nil {
		slog.Error("WriteCSV", "err", err)
		return err
	}

	slog.Info("saved", "path", path, "rows", t.rows, "columns", len(t.columns))
	return f.Close()
}
