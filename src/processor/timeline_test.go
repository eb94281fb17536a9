package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDropsAndSorts(t *testing.T) {
	tbl, _ := mustInspect(t, "timestamp,temp\n"+
		"2024-01-03 08:00:00,30\n"+
		"not-a-time,99\n"+
		"2024-01-01 08:00:00,10\n"+
		"2024-01-02 08:00:00,20\n")

	out := Normalize(tbl)

	require.Equal(t, 3, out.Nrow())
	assert.Equal(t, []string{"10", "20", "30"}, out.Column("temp"))
	times := out.Timestamps()
	require.Len(t, times, 3)
	assert.True(t, times[0].Before(times[1]) && times[1].Before(times[2]))
	// 解析后的数值列跟着行一起重排
	assert.Equal(t, []float64{10, 20, 30}, out.Numeric("temp"))
}

func TestNormalizeStableOnEqualTimestamps(t *testing.T) {
	tbl, _ := mustInspect(t, "timestamp,temp\n"+
		"2024-01-01 08:00:00,1\n"+
		"2024-01-01 08:00:00,2\n"+
		"2024-01-01 08:00:00,3\n")

	out := Normalize(tbl)
	assert.Equal(t, []string{"1", "2", "3"}, out.Column("temp"))
}

func TestFilterByDateInclusive(t *testing.T) {
	tbl, _ := mustInspect(t, "timestamp,temp\n"+
		"2024-01-01 23:59:59,1\n"+
		"2024-01-02 00:00:00,2\n"+
		"2024-01-03 12:00:00,3\n"+
		"2024-01-04 00:00:00,4\n")
	tbl = Normalize(tbl)

	out := FilterByDate(tbl,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	// 只比较日期部分，两端都包含
	assert.Equal(t, []string{"1", "2", "3"}, out.Column("temp"))
}

func TestFilterByDateDefaultsToFullRange(t *testing.T) {
	tbl, _ := mustInspect(t, "timestamp,temp\n"+
		"2024-01-01,1\n"+
		"2024-01-05,2\n")
	tbl = Normalize(tbl)

	out := FilterByDate(tbl, time.Time{}, time.Time{})
	assert.Equal(t, 2, out.Nrow())
}

func TestFilterByDateCanEmptyTheTable(t *testing.T) {
	tbl, _ := mustInspect(t, "timestamp,temp\n2024-01-01,1\n2024-01-02,2\n")
	tbl = Normalize(tbl)

	out := FilterByDate(tbl,
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC))

	// 空表是合法结果，不是错误
	assert.Equal(t, 0, out.Nrow())
	assert.Empty(t, out.Timestamps())
}

func TestParseTimestampFormats(t *testing.T) {
	for _, s := range []string{
		"2024-01-02 15:04:05",
		"2024-01-02T15:04:05Z",
		"2024-01-02T15:04:05",
		"2024-01-02 15:04",
		"2024-01-02",
		"2024/01/02 15:04:05",
		"2024/01/02",
	} {
		_, ok := parseTimestamp(s)
		assert.True(t, ok, s)
	}

	_, ok := parseTimestamp("昨天")
	assert.False(t, ok)
	_, ok = parseTimestamp("")
	assert.False(t, ok)
}

func TestSeriesView(t *testing.T) {
	tbl, _ := mustInspect(t, "timestamp,temp\n"+
		"2024-01-01,10\n"+
		"2024-01-02,20\n"+
		"2024-01-03,30\n")
	tbl = Normalize(tbl)

	sv := SeriesView(tbl, "temp", []bool{false, true, false})

	assert.Equal(t, "temp", sv.Column)
	assert.Equal(t, []float64{10, 20, 30}, sv.Values)
	require.Len(t, sv.Outliers, 1)
	assert.Equal(t, 20.0, sv.Outliers[0].Value)
	assert.Equal(t, tbl.Timestamps()[1], sv.Outliers[0].At)
}
