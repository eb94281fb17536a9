package processor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeKnownValues(t *testing.T) {
	tbl, sch := mustInspect(t, "temp\n1\n2\n3\n4\n")

	s := Summarize(tbl, sch.NumericColumns)

	assert.Equal(t, 4.0, s.Get("count", "temp"))
	assert.InDelta(t, 2.5, s.Get("mean", "temp"), 1e-12)
	// 样本标准差：N-1 分母
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.Get("std", "temp"), 1e-12)
	assert.Equal(t, 1.0, s.Get("min", "temp"))
	assert.Equal(t, 4.0, s.Get("max", "temp"))
	// 相邻次序统计量之间线性插值
	assert.InDelta(t, 1.75, s.Get("25%", "temp"), 1e-12)
	assert.InDelta(t, 2.5, s.Get("50%", "temp"), 1e-12)
	assert.InDelta(t, 3.25, s.Get("75%", "temp"), 1e-12)
}

func TestSummarizeSkipsMissing(t *testing.T) {
	tbl, sch := mustInspect(t, "temp\n1\nNA\n3\n")

	s := Summarize(tbl, sch.NumericColumns)

	assert.Equal(t, 2.0, s.Get("count", "temp"))
	assert.InDelta(t, 2.0, s.Get("mean", "temp"), 1e-12)
}

func TestSummarizeEmptyColumnUndefined(t *testing.T) {
	tbl, sch := mustInspect(t, "temp,empty\n1,NA\n2,\n")

	s := Summarize(tbl, sch.NumericColumns)

	// 零个非缺失值：count 是 0，其余统计量未定义而不是 0
	assert.Equal(t, 0.0, s.Get("count", "empty"))
	for _, name := range []string{"mean", "std", "min", "25%", "50%", "75%", "max"} {
		assert.True(t, math.IsNaN(s.Get(name, "empty")), name)
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	tbl, sch := mustInspect(t, "temp\n42\n")

	s := Summarize(tbl, sch.NumericColumns)

	assert.Equal(t, 1.0, s.Get("count", "temp"))
	assert.Equal(t, 42.0, s.Get("mean", "temp"))
	assert.Equal(t, 42.0, s.Get("50%", "temp"))
	// 单个样本的样本标准差未定义
	assert.True(t, math.IsNaN(s.Get("std", "temp")))
}

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	require.Equal(t, 10.0, percentile(sorted, 0))
	assert.InDelta(t, 20.0, percentile(sorted, 25), 1e-12)
	assert.InDelta(t, 30.0, percentile(sorted, 50), 1e-12)
	assert.InDelta(t, 45.0, percentile(sorted, 87.5), 1e-12)
	assert.Equal(t, 50.0, percentile(sorted, 100))
}

func TestStatNamesOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"},
		StatNames)
}
