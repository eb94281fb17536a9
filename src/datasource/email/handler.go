// handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"SensorInsight/src/storage"
)

// AttachmentHandler 把邮件里的传感器日志附件落盘到数据目录
type AttachmentHandler struct {
	subjectKeyword string // 主题需包含的关键词
	dataDir        string // 附件保存目录
}

func NewAttachmentHandler(subjectKeyword, dataDir string) *AttachmentHandler {
	return &AttachmentHandler{
		subjectKeyword: subjectKeyword,
		dataDir:        dataDir,
	}
}

// Handle 保存一封邮件里所有受支持格式的附件，返回保存后的路径。
// 不匹配主题关键词或没有可用附件时返回空列表而不是错误
func (h *AttachmentHandler) Handle(email *Email, logger *storage.Logger) ([]string, error) {
	if email == nil {
		return nil, nil
	}
	if h.subjectKeyword != "" && !strings.Contains(email.Subject, h.subjectKeyword) {
		return nil, nil
	}

	if err := ensureDir(h.dataDir); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	var saved []string
	for _, att := range email.Attachments {
		if !isSensorLogAttachment(att.Filename) {
			continue
		}

		// 文件名加UID前缀避免不同邮件的同名附件互相覆盖
		target := filepath.Join(h.dataDir, fmt.Sprintf("%d_%s", email.UID, filepath.Base(att.Filename)))
		if err := os.WriteFile(target, att.Content, 0644); err != nil {
			return saved, fmt.Errorf("保存附件 %s 失败: %w", att.Filename, err)
		}

		logger.Info(fmt.Sprintf("附件已保存: %s (%d 字节)", target, len(att.Content)))
		saved = append(saved, target)
	}

	return saved, nil
}

func isSensorLogAttachment(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// ensureDir 确保目录存在
func ensureDir(dirPath string) error {
	if info, err := os.Stat(dirPath); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s 已存在但不是目录", dirPath)
	}
	return os.MkdirAll(dirPath, 0755)
}
