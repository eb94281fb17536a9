// reader.go
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx"

	"SensorInsight/src/processor"
)

// ReadFile 从磁盘读取一份传感器日志并载入成 Table。
// .xlsx 走表格解析，其余一律当作CSV字节流交给编码探测
func ReadFile(filePath string) (processor.Table, error) {
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		xlFile, err := xlsx.OpenFile(filePath)
		if err != nil {
			return processor.Table{}, fmt.Errorf("打开xlsx文件失败: %w", err)
		}
		return fromWorkbook(xlFile)
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return processor.Table{}, fmt.Errorf("读取文件失败: %w", err)
	}
	return processor.Decode(raw)
}

// ReadXLSX 从内存里的xlsx数据载入 Table，供邮件附件场景复用
func ReadXLSX(data []byte) (processor.Table, error) {
	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return processor.Table{}, fmt.Errorf("打开xlsx数据失败: %w", err)
	}
	return fromWorkbook(xlFile)
}

// fromWorkbook 取第一个工作表，首行作为表头
func fromWorkbook(xlFile *xlsx.File) (processor.Table, error) {
	if len(xlFile.Sheets) == 0 {
		return processor.Table{}, fmt.Errorf("excel文件中没有工作表")
	}
	sheet := xlFile.Sheets[0]

	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, cell.String())
		}
		records = append(records, cells)
	}

	return processor.FromRecords(records)
}

// IsSensorLog 判断文件名是否是受支持的传感器日志格式
func IsSensorLog(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}
