// export.go
package processor

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

// OutlierRows 取出掩码为真的行子集，保持原有顺序
func OutlierRows(t Table, mask []bool) Table {
	idx := make([]int, 0, len(mask))
	for i, flagged := range mask {
		if flagged {
			idx = append(idx, i)
		}
	}
	return subset(t, idx)
}

// WriteCSV 把表导出为CSV：UTF-8、带表头、不带行号列。
// 表内保存的是原始单元格文本，同一张表加同一个掩码
// 导出的字节序列完全一致
func (t Table) WriteCSV(w io.Writer) error {
	return t.df.WriteCSV(w)
}

// CSVBytes WriteCSV 的字节切片版本，供下载/附件场景使用
func (t Table) CSVBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReport 把一次分析的结果写成多工作表的xlsx报告：
// 统计摘要、各列异常比例、相关系数矩阵和异常行明细
func WriteReport(res *Result, filePath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("重命名工作表失败: %w", err)
	}
	writeSummarySheet(f, res.Summary)

	if _, err := f.NewSheet("OutlierRatio"); err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}
	writeRatioSheet(f, res.Detection)

	if _, err := f.NewSheet("Correlation"); err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}
	writeCorrelationSheet(f, res.Correlation)

	if _, err := f.NewSheet("Outliers"); err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}
	writeTableSheet(f, "Outliers", res.Outliers)

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存xlsx报告失败: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s Summary) {
	for c, col := range s.Columns {
		cell, _ := excelize.CoordinatesToCellName(c+2, 1)
		f.SetCellValue("Summary", cell, col)
	}
	for r, name := range StatNames {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		f.SetCellValue("Summary", cell, name)
		for c, col := range s.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+2, r+2)
			setNumberCell(f, "Summary", cell, s.Get(name, col))
		}
	}
}

func writeRatioSheet(f *excelize.File, d Detection) {
	f.SetCellValue("OutlierRatio", "A1", "sensor")
	f.SetCellValue("OutlierRatio", "B1", "outlier_ratio_percent")
	for r, col := range d.Columns {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		f.SetCellValue("OutlierRatio", cell, col)
		cell, _ = excelize.CoordinatesToCellName(2, r+2)
		setNumberCell(f, "OutlierRatio", cell, d.Ratio[col])
	}
}

func writeCorrelationSheet(f *excelize.File, corr Correlation) {
	for c, col := range corr.Columns {
		cell, _ := excelize.CoordinatesToCellName(c+2, 1)
		f.SetCellValue("Correlation", cell, col)
		cell, _ = excelize.CoordinatesToCellName(1, c+2)
		f.SetCellValue("Correlation", cell, col)
	}
	for r := range corr.Columns {
		for c := range corr.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+2, r+2)
			setNumberCell(f, "Correlation", cell, corr.Matrix[r][c])
		}
	}
}

func writeTableSheet(f *excelize.File, sheet string, t Table) {
	for rowIdx, row := range t.Records() {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			f.SetCellValue(sheet, cell, val)
		}
	}
}

// setNumberCell NaN 写成字符串，excelize 不接受 NaN 数值
func setNumberCell(f *excelize.File, sheet, cell string, v float64) {
	if math.IsNaN(v) {
		f.SetCellValue(sheet, cell, "NaN")
		return
	}
	f.SetCellValue(sheet, cell, v)
}
