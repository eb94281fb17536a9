// schema.go
package processor

import (
	"strconv"
	"strings"
)

// Schema 列类型探查结果
type Schema struct {
	NumericColumns []string // 按表中列顺序
	HasTimestamp   bool
}

// Inspect 对每一列做一次性的类型判定，返回带类型标注的新表。
// 判定是整列级别的：所有非缺失值都能解析成数字才算数值列。
// 没有任何数值列时返回 *NoAnalyzableDataError
func Inspect(t Table) (Table, Schema, error) {
	kinds := make(map[string]ColumnKind)
	numeric := make(map[string][]float64)
	var sch Schema

	for _, name := range t.df.Names() {
		if name == TimestampColumn {
			kinds[name] = KindTimestamp
			sch.HasTimestamp = true
			continue
		}

		vals, ok := parseNumericColumn(t.df.Col(name).Records())
		if ok {
			kinds[name] = KindNumeric
			numeric[name] = vals
			sch.NumericColumns = append(sch.NumericColumns, name)
		} else {
			kinds[name] = KindText
		}
	}

	if len(sch.NumericColumns) == 0 {
		return t, Schema{HasTimestamp: sch.HasTimestamp}, &NoAnalyzableDataError{}
	}

	out := t
	out.kinds = kinds
	out.numeric = numeric
	return out, sch, nil
}

// parseNumericColumn 尝试把整列解析成浮点数，缺失值记为 NaN。
// 全列缺失也算数值列，统计阶段会得到未定义的结果而不是报错
func parseNumericColumn(cells []string) ([]float64, bool) {
	vals := make([]float64, len(cells))
	for i, cell := range cells {
		if isMissing(cell) {
			vals[i] = nan
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, false
		}
		vals[i] = f
	}
	return vals, true
}

// isMissing 判断单元格是否为缺失值
func isMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "n/a", "nan", "null":
		return true
	}
	return false
}
