// errors.go
package processor

import (
	"fmt"
	"strings"
)

// DecodeError 所有候选编码都无法把输入解析成表格。
// Attempts 保留每个编码的失败原因，便于排查
type DecodeError struct {
	Attempts []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("无法解码CSV输入: %s", strings.Join(e.Attempts, "; "))
}

// EmptyInputError 解析成功但没有数据行
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "CSV文件中没有数据行"
}

// NoAnalyzableDataError 表里没有数值列，后续统计分析无法进行。
// 这是信息性的终止条件，不代表输入格式错误
type NoAnalyzableDataError struct{}

func (e *NoAnalyzableDataError) Error() string {
	return "没有可分析的数值型传感器数据"
}
