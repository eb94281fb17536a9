// summary.go
package processor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var nan = math.NaN()

// StatNames 描述性统计量的固定顺序，展示层按这个顺序渲染
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Summary 每个统计量到各数值列取值的映射。
// NaN 表示未定义（比如整列缺失），和 0 是两回事
type Summary struct {
	Columns []string
	Values  map[string]map[string]float64 // 统计量名 → 列名 → 取值
}

// Get 取某统计量在某列上的值，未定义时为 NaN
func (s Summary) Get(name, column string) float64 {
	if m, ok := s.Values[name]; ok {
		if v, ok := m[column]; ok {
			return v
		}
	}
	return nan
}

// Summarize 计算每个数值列的描述性统计。纯函数，不修改输入表。
// 标准差用样本标准差（N-1 分母），分位数在相邻次序统计量之间线性插值
func Summarize(t Table, columns []string) Summary {
	values := make(map[string]map[string]float64, len(StatNames))
	for _, name := range StatNames {
		values[name] = make(map[string]float64, len(columns))
	}

	for _, col := range columns {
		xs := nonMissing(t.numeric[col])
		n := len(xs)

		values["count"][col] = float64(n)
		if n == 0 {
			for _, name := range StatNames[1:] {
				values[name][col] = nan
			}
			continue
		}

		sorted := make([]float64, n)
		copy(sorted, xs)
		sort.Float64s(sorted)

		values["mean"][col] = stat.Mean(xs, nil)
		values["std"][col] = stat.StdDev(xs, nil)
		values["min"][col] = sorted[0]
		values["25%"][col] = percentile(sorted, 25)
		values["50%"][col] = percentile(sorted, 50)
		values["75%"][col] = percentile(sorted, 75)
		values["max"][col] = sorted[n-1]
	}

	return Summary{Columns: columns, Values: values}
}

// percentile 在排好序的序列上取 p 分位数（0 <= p <= 100），
// 落在两个次序统计量之间时按权重线性插值
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return nan
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lower := int(rank)
	if lower+1 >= n {
		return sorted[n-1]
	}
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[lower+1]*weight
}

// nonMissing 去掉 NaN 后的副本
func nonMissing(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
