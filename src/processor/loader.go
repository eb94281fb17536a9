// loader.go
package processor

import (
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
)

// 编码候选列表，按顺序尝试，第一个成功的生效。
// 顺序即优先级：能被多个编码接受的字节流按列表里靠前的解释
var encodingCandidates = []string{"utf-8", "cp949", "iso-8859-1"}

// Decode 把原始字节流解析成 Table。
// 每次尝试 = 转码 + CSV 解析，两步都通过才算成功；
// 全部失败时返回 *DecodeError，汇总各编码的失败原因。
// 只有表头没有数据行时返回 *EmptyInputError
func Decode(raw []byte) (Table, error) {
	var attempts []string

	for _, name := range encodingCandidates {
		text, err := transcode(raw, name)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		tbl, err := parseCSV(text)
		if err != nil {
			// 数据为空不是编码问题，直接终止而不是换编码重试
			if _, ok := err.(*EmptyInputError); ok {
				return Table{}, err
			}
			attempts = append(attempts, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		return tbl, nil
	}

	return Table{}, &DecodeError{Attempts: attempts}
}

// transcode 把字节流按指定编码转成UTF-8文本
func transcode(raw []byte, name string) (string, error) {
	var dec *encoding.Decoder
	switch name {
	case "utf-8":
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("不是合法的UTF-8字节序列")
		}
		return string(raw), nil
	case "cp949":
		dec = korean.EUCKR.NewDecoder()
	case "iso-8859-1":
		// 单字节编码，任何字节流都能转码
		dec = charmap.ISO8859_1.NewDecoder()
	default:
		return "", fmt.Errorf("不支持的编码 %s", name)
	}

	out, err := dec.Bytes(raw)
	if err != nil {
		return "", err
	}
	// x/text 的解码器遇到非法字节会替换成 U+FFFD 而不是报错，
	// 这里把出现替换符视为该编码解码失败
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", fmt.Errorf("输入包含该编码无法表示的字节")
	}
	return string(out), nil
}

// parseCSV 把UTF-8文本解析成矩形表格。
// 列数不一致、完全没有记录都算解析失败
func parseCSV(text string) (Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("CSV解析失败: %w", err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("输入中没有任何记录")
	}

	headers := records[0]
	if len(records) == 1 {
		return Table{}, &EmptyInputError{}
	}

	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(records)-1)
	}
	for _, row := range records[1:] {
		for i := range headers {
			columns[i] = append(columns[i], row[i])
		}
	}

	return newTable(headers, columns), nil
}

// FromRecords 从已有的文本记录（首行为表头）构造 Table，
// 供 xlsx 等非CSV数据源复用
func FromRecords(records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, fmt.Errorf("输入中没有任何记录")
	}
	if len(records) == 1 {
		return Table{}, &EmptyInputError{}
	}

	headers := records[0]
	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(records)-1)
	}
	for _, row := range records[1:] {
		for i := range headers {
			if i < len(row) {
				columns[i] = append(columns[i], row[i])
			} else {
				columns[i] = append(columns[i], "")
			}
		}
	}
	return newTable(headers, columns), nil
}
