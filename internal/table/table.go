// thermopost
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 Akihiro Yamamoto <github.com/ak1211>

// 列名付きの数値表
// 各段の処理は表を書き換えずに新しい表を作って返す
package table

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColumnLength    = errors.New("列の長さが揃っていない")
	ErrDuplicateColumn = errors.New("列名が重複している")
	ErrNoColumns       = errors.New("列がない")
)

type Table struct {
	columns []string
	index   map[string]int
	rows    int
	data    *mat.Dense // 0行の時はnil
}

// 列ごとの値から表を作る
func New(columns []string, values [][]float64) (*Table, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	if len(columns) != len(values) {
		return nil, fmt.Errorf("%w: 列名%d個に対して列%d個", ErrColumnLength, len(columns), len(values))
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := index[c]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		index[c] = i
	}

	rows := len(values[0])
	for i, v := range values {
		if len(v) != rows {
			return nil, fmt.Errorf("%w: %q は%d行(期待値%d行)", ErrColumnLength, columns[i], len(v), rows)
		}
	}

	t := &Table{
		columns: append([]string(nil), columns...),
		index:   index,
		rows:    rows,
	}
	if rows > 0 {
		t.data = mat.NewDense(rows, len(columns), nil)
		for j, v := range values {
			t.data.SetCol(j, v)
		}
	}
	return t, nil
}

// 列名(列順)
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) Rows() int {
	return t.rows
}

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// 列の値の複製を返す
func (t *Table) Col(name string) ([]float64, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	if t.data == nil {
		return []float64{}, true
	}
	return mat.Col(nil, j, t.data), true
}

// 行の値の複製を返す
func (t *Table) Row(i int) []float64 {
	return mat.Row(nil, i, t.data)
}

func (t *Table) At(i int, name string) float64 {
	return t.data.At(i, t.index[name])
}

// 行列として参照する(0行の時はnil)
func (t *Table) Matrix() mat.Matrix {
	if t.data == nil {
		return nil
	}
	return t.data
}

// 右側に列を追加した新しい表を返す
func (t *Table) Append(columns []string, values [][]float64) (*Table, error) {
	all := make([][]float64, 0, len(t.columns)+len(values))
	for _, c := range t.columns {
		v, _ := t.Col(c)
		all = append(all, v)
	}
	all = append(all, values...)
	return New(append(t.Columns(), columns...), all)
}

// 行列を表示する文字列
func (t *Table) String() string {
	if t.data == nil {
		return fmt.Sprintf("%v\n(0 rows)", t.columns)
	}
	return fmt.Sprintf("%v\n%v", t.columns, mat.Formatted(t.data, mat.Prefix(""), mat.Excerpt(3)))
}
