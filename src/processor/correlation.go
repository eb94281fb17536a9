// correlation.go
package processor

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Correlation 数值列之间的皮尔逊相关系数矩阵。
// Matrix[i][j] 对应 Columns[i] 和 Columns[j]，NaN 表示未定义
type Correlation struct {
	Columns []string
	Matrix  [][]float64
}

// Get 取两列之间的相关系数，列不存在时为 NaN
func (c Correlation) Get(a, b string) float64 {
	ia, ib := -1, -1
	for i, name := range c.Columns {
		if name == a {
			ia = i
		}
		if name == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return nan
	}
	return c.Matrix[ia][ib]
}

// Correlate 两两计算皮尔逊相关。每一对只用双方都非缺失的行
// （pairwise-complete），某行在一列缺失只影响涉及该列的配对。
// 零方差列与其他列的相关未定义，对角线上仍是 1.0
func Correlate(t Table, columns []string) Correlation {
	k := len(columns)
	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
	}

	for i := 0; i < k; i++ {
		if len(nonMissing(t.numeric[columns[i]])) > 0 {
			matrix[i][i] = 1.0
		} else {
			matrix[i][i] = nan
		}

		for j := i + 1; j < k; j++ {
			r := pairwiseCorrelation(t.numeric[columns[i]], t.numeric[columns[j]])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}

	return Correlation{Columns: columns, Matrix: matrix}
}

// pairwiseCorrelation 在双方都非缺失的行上算相关系数。
// 配对样本不足两个、或任一侧零方差时显式返回 NaN，不做除零运算
func pairwiseCorrelation(a, b []float64) float64 {
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}

	if len(xs) < 2 {
		return nan
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return nan
	}
	return stat.Correlation(xs, ys, nil)
}
