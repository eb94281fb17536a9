// pipeline.go
package processor

import (
	"time"
)

// Options 一次分析的用户参数
type Options struct {
	Threshold    float64   // <=0 时用 DefaultThreshold
	Start, End   time.Time // 日期区间，零值表示不限
	SeriesColumn string    // 时序视图选用的列，空串取第一个数值列
}

// Result 一次完整分析的产出，全部是普通数据值，
// 文案和图形由展示层负责
type Result struct {
	Table       Table // 规整化/过滤后的工作表
	Schema      Schema
	Summary     Summary
	Detection   Detection
	Correlation Correlation
	Outliers    Table       // 掩码为真的行
	Series      *TimeSeries // 没有时间列时为 nil
}

// Analyze 串起完整的分析流水线：
// 解码 → 类型探查 → (时间规整化 → 日期过滤) → 统计/检测/相关。
// 三类终止错误在最早发现的阶段返回，后续阶段不再执行；
// 其余边界情况（时间解析失败的行、零方差列、过滤后空表）
// 都在数据模型内部消化，不往上抛
func Analyze(raw []byte, opts Options) (*Result, error) {
	tbl, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return AnalyzeTable(tbl, opts)
}

// AnalyzeTable 从已经载入的表开始分析，xlsx 等非CSV数据源从这里进入
func AnalyzeTable(tbl Table, opts Options) (*Result, error) {
	tbl, sch, err := Inspect(tbl)
	if err != nil {
		return nil, err
	}

	if sch.HasTimestamp {
		tbl = Normalize(tbl)
		tbl = FilterByDate(tbl, opts.Start, opts.End)
	}

	res := &Result{
		Table:       tbl,
		Schema:      sch,
		Summary:     Summarize(tbl, sch.NumericColumns),
		Detection:   Detect(tbl, sch.NumericColumns, opts.Threshold),
		Correlation: Correlate(tbl, sch.NumericColumns),
	}
	res.Outliers = OutlierRows(tbl, res.Detection.Mask)

	if sch.HasTimestamp {
		col := opts.SeriesColumn
		if col == "" && len(sch.NumericColumns) > 0 {
			col = sch.NumericColumns[0]
		}
		if tbl.HasColumn(col) && tbl.Kind(col) == KindNumeric {
			sv := SeriesView(tbl, col, res.Detection.Mask)
			res.Series = &sv
		}
	}

	return res, nil
}
