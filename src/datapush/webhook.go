// webhook.go
package datapush

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// 常量定义
const (
	RequestTimeout = 10 * time.Second
	RetryTimes     = 5
	RetryInterval  = 2 * time.Second
)

// AlertMessage 推送给下游系统的异常告警
type AlertMessage struct {
	Title        string             `json:"title"`
	Text         string             `json:"text"`
	Source       string             `json:"source"`        // 触发告警的日志来源（文件名等）
	OutlierCount int                `json:"outlier_count"` // 异常行数
	TotalRows    int                `json:"total_rows"`
	Ratio        map[string]float64 `json:"outlier_ratio"` // 各传感器的异常比例(%)
	PushedAt     time.Time          `json:"pushed_at"`
}

// Pusher 往一个webhook地址推送告警
type Pusher struct {
	url    string
	client *http.Client
}

func NewPusher(url string) *Pusher {
	return &Pusher{
		url:    url,
		client: &http.Client{Timeout: RequestTimeout},
	}
}

// Push 推送一条告警，失败时按固定间隔重试
func (p *Pusher) Push(msg AlertMessage) error {
	if p.url == "" {
		return nil // 未配置webhook时静默跳过
	}
	if msg.PushedAt.IsZero() {
		msg.PushedAt = time.Now()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化告警消息失败: %w", err)
	}

	var lastErr error
	for i := 0; i < RetryTimes; i++ {
		if i > 0 {
			time.Sleep(RetryInterval)
		}
		if lastErr = p.post(payload); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("推送告警失败(重试%d次): %w", RetryTimes, lastErr)
}

func (p *Pusher) post(payload []byte) error {
	resp, err := p.client.Post(p.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook返回状态码 %d", resp.StatusCode)
	}
	return nil
}
