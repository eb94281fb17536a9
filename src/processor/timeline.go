// timeline.go
package processor

import (
	"sort"
	"strings"
	"time"
)

// 宽松解析时间时依次尝试的格式
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// parseTimestamp 宽松解析一个时间字符串，解析不了视为缺失
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize 规整化时间列：解析 timestamp 列，丢掉解析失败的行，
// 再按时间升序排序。先丢弃后排序，排序时不会遇到未定义的时间值。
// 排序是稳定的，时间相同的行保持输入顺序
func Normalize(t Table) Table {
	cells := t.df.Col(TimestampColumn).Records()

	type rowTime struct {
		idx int
		at  time.Time
	}
	kept := make([]rowTime, 0, len(cells))
	for i, cell := range cells {
		if at, ok := parseTimestamp(cell); ok {
			kept = append(kept, rowTime{idx: i, at: at})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].at.Before(kept[j].at)
	})

	idx := make([]int, len(kept))
	times := make([]time.Time, len(kept))
	for i, rt := range kept {
		idx[i] = rt.idx
		times[i] = rt.at
	}

	out := subset(t, idx)
	out.times = times
	return out
}

// FilterByDate 按日期区间过滤，只比较日期部分，两端都包含。
// start/end 为零值时分别取表内最早/最晚日期。
// 区间筛掉所有行时返回空表而不是报错
func FilterByDate(t Table, start, end time.Time) Table {
	if len(t.times) == 0 {
		return t
	}

	if start.IsZero() {
		start = t.times[0]
	}
	if end.IsZero() {
		end = t.times[len(t.times)-1]
	}
	startDate := dateOf(start)
	endDate := dateOf(end)

	idx := make([]int, 0, len(t.times))
	for i, at := range t.times {
		d := dateOf(at)
		if !d.Before(startDate) && !d.After(endDate) {
			idx = append(idx, i)
		}
	}
	return subset(t, idx)
}

// dateOf 去掉时分秒，只留日期
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Point 时间序列上的一个点
type Point struct {
	At    time.Time
	Value float64
}

// TimeSeries 单个传感器的时序视图，Outliers 是被掩码标记的点子集，
// 供展示层叠加标红
type TimeSeries struct {
	Column   string
	Times    []time.Time
	Values   []float64
	Outliers []Point
}

// SeriesView 生成某个数值列的时序视图，要求表已经过 Normalize
func SeriesView(t Table, column string, mask []bool) TimeSeries {
	values := t.numeric[column]
	ts := TimeSeries{
		Column: column,
		Times:  t.times,
		Values: values,
	}
	for i := range mask {
		if mask[i] {
			ts.Outliers = append(ts.Outliers, Point{At: t.times[i], Value: values[i]})
		}
	}
	return ts
}
