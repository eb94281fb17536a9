// table.go
package processor

import (
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ColumnKind 列的语义类型，在 Inspect 时确定一次，之后不再变化
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumeric
	KindTimestamp
)

// TimestampColumn 时间列的固定列名（区分大小写）
const TimestampColumn = "timestamp"

// Table 一张传感器日志表。内部的 dataframe 始终保存原始单元格文本，
// 保证导出 CSV 时与输入逐字节一致；数值列和时间列的解析结果挂在旁边。
type Table struct {
	df      dataframe.DataFrame
	kinds   map[string]ColumnKind
	numeric map[string][]float64 // 按行对齐, NaN 表示缺失
	times   []time.Time          // Normalize 之后按行对齐, 否则为 nil
}

func (t Table) Nrow() int       { return t.df.Nrow() }
func (t Table) Names() []string { return t.df.Names() }

// Records 返回含表头的原始文本记录
func (t Table) Records() [][]string { return t.df.Records() }

// Column 返回某一列的原始文本值（不含表头）
func (t Table) Column(name string) []string {
	return t.df.Col(name).Records()
}

// Numeric 返回某数值列解析后的值，缺失为 NaN；非数值列返回 nil
func (t Table) Numeric(name string) []float64 {
	return t.numeric[name]
}

// Timestamps 返回 Normalize 之后每行的时间，未规整化时为 nil
func (t Table) Timestamps() []time.Time { return t.times }

func (t Table) Kind(name string) ColumnKind { return t.kinds[name] }

func (t Table) HasColumn(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func (t Table) String() string { return t.df.String() }

// newTable 从表头和按列组织的文本值构造 Table
func newTable(headers []string, columns [][]string) Table {
	seriesList := make([]series.Series, len(headers))
	for i, name := range headers {
		seriesList[i] = series.New(columns[i], series.String, name)
	}
	return Table{df: dataframe.New(seriesList...)}
}

// subset 取行子集并生成新表，派生数据随行一起取子集。
// 不用 dataframe.Subset，逐列重建可以稳定处理空子集。
func subset(t Table, idx []int) Table {
	names := t.df.Names()
	columns := make([][]string, len(names))
	for c, name := range names {
		records := t.df.Col(name).Records()
		columns[c] = make([]string, 0, len(idx))
		for _, i := range idx {
			columns[c] = append(columns[c], records[i])
		}
	}
	out := newTable(names, columns)
	out.kinds = t.kinds

	if t.numeric != nil {
		out.numeric = make(map[string][]float64, len(t.numeric))
		for name, vals := range t.numeric {
			sub := make([]float64, 0, len(idx))
			for _, i := range idx {
				sub = append(sub, vals[i])
			}
			out.numeric[name] = sub
		}
	}
	if t.times != nil {
		out.times = make([]time.Time, 0, len(idx))
		for _, i := range idx {
			out.times = append(out.times, t.times[i])
		}
	}
	return out
}
