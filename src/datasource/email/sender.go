// sender.go
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"SensorInsight/src/config"
)

// SendAlert 发送异常告警邮件，附带异常行CSV。
// attachment 为空时只发正文
func SendAlert(c *config.Config, subject, body string, attachment []byte, attachmentName string) error {
	from := c.SendEmail.Username
	password := c.SendEmail.Password

	e := email.NewEmail()
	e.From = fmt.Sprintf("SensorInsight <%s>", from)
	e.To = []string{c.SendEmail.To}
	e.Subject = subject
	e.Text = []byte(body)

	if len(attachment) > 0 {
		if _, err := e.Attach(bytes.NewReader(attachment), attachmentName, "text/csv"); err != nil {
			return fmt.Errorf("附件添加失败: %w", err)
		}
	}

	// 确保服务器地址包含端口
	smtpAddr := c.SendEmail.Server
	if !strings.Contains(smtpAddr, ":") {
		smtpAddr += ":465" // 默认 SSL 端口
	}
	host := strings.Split(smtpAddr, ":")[0]

	// 发送邮件（显式 TLS）
	err := e.SendWithTLS(
		smtpAddr,
		smtp.PlainAuth("", from, password, host),
		&tls.Config{ServerName: host},
	)
	if err != nil {
		return fmt.Errorf("邮件发送失败: %w (Server: %s)", err, smtpAddr)
	}
	return nil
}
