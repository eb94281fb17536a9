// outliers.go
package processor

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultThreshold 异常判定的 z-score 阈值（3 个标准差）
const DefaultThreshold = 3.0

// Detection 异常检测结果。
// ZScores 按列给出每行的 |x-mean|/std；标准差为零或值缺失的位置
// 记为 0，表示"不可能是异常"，比较时不会出现 NaN。
// Mask 每行一个布尔值，任意一列超过阈值整行即为异常。
// Ratio 每列超阈值行数占总行数的百分比，总行数为零时为 NaN
type Detection struct {
	Threshold float64
	Columns   []string
	ZScores   map[string][]float64
	Mask      []bool
	Ratio     map[string]float64
}

// Count 异常行总数
func (d Detection) Count() int {
	n := 0
	for _, flagged := range d.Mask {
		if flagged {
			n++
		}
	}
	return n
}

// Detect 对每个数值列计算 z-score 并标记异常行。
// threshold <= 0 时使用 DefaultThreshold。
// 均值和标准差基于（过滤后）整表的非缺失值，标准差取样本标准差
func Detect(t Table, columns []string, threshold float64) Detection {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	n := t.Nrow()
	det := Detection{
		Threshold: threshold,
		Columns:   columns,
		ZScores:   make(map[string][]float64, len(columns)),
		Mask:      make([]bool, n),
		Ratio:     make(map[string]float64, len(columns)),
	}

	for _, col := range columns {
		xs := t.numeric[col]
		z := make([]float64, n)
		det.ZScores[col] = z

		if n == 0 {
			det.Ratio[col] = nan
			continue
		}

		sample := nonMissing(xs)
		mean := stat.Mean(sample, nil)
		std := stat.StdDev(sample, nil)

		// 常量列（或样本不足）不可能产生异常，显式短路而不是
		// 依赖除零产生的 NaN 参与比较
		if len(sample) == 0 || std == 0 || math.IsNaN(std) {
			det.Ratio[col] = 0
			continue
		}

		exceeded := 0
		for i, x := range xs {
			if math.IsNaN(x) {
				continue // 缺失值不参与判定
			}
			z[i] = math.Abs(x-mean) / std
			if z[i] > threshold {
				det.Mask[i] = true
				exceeded++
			}
		}
		det.Ratio[col] = float64(exceeded) / float64(n) * 100
	}

	return det
}
