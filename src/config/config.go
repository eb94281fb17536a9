package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Analysis struct {
		Threshold float64 `json:"threshold"` // z-score 异常阈值，0表示用默认值3.0
	} `json:"analysis"`

	Watch struct {
		Dir string `json:"dir"` // 监控传感器日志的目录
	} `json:"watch"`

	Email struct {
		Server        string   `json:"server"`         // IMAP服务器地址
		Username      string   `json:"username"`       // 邮箱用户名
		Password      string   `json:"password"`       // 邮箱密码
		TargetSubject string   `json:"target_subject"` // 需要匹配的邮件主题关键词
		CheckInterval Duration `json:"check_interval"` // 检查新邮件的间隔时间
	} `json:"email"`

	SendEmail struct {
		Server   string `json:"server"`   // SMTP服务器地址
		Username string `json:"username"` // 发件邮箱
		Password string `json:"password"` // 发件密码
		To       string `json:"to"`       // 告警收件人
	} `json:"send_email"`

	Alert struct {
		WebhookURL string `json:"webhook_url"` // 异常告警推送地址，留空则不推送
	} `json:"alert"`

	DataDir    string `json:"data_dir"` // 附件和报告的存储目录
	ReportName string `json:"report_name"`
	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"`
}

// SensorConfig 传感器元数据：展示层用的名称、单位和统计量文案
type SensorConfig struct {
	Labels     map[string]string `json:"labels"`     // 列名 → 展示名
	Units      map[string]string `json:"units"`      // 列名 → 单位
	StatLabels map[string]string `json:"statlabels"` // 统计量 → 展示文案
}

var (
	once                 sync.Once
	instance             *Config
	sensorConfigInstance *SensorConfig
	mu                   sync.RWMutex
)

func LoadConfig(jsonFolder, jsonFile, sensorJsonFile string) (*Config, *SensorConfig, error) {
	var err error
	once.Do(func() {
		instance, sensorConfigInstance, err = loadConfigs(jsonFolder, jsonFile, sensorJsonFile)
	})
	return instance, sensorConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, sensorJsonFile string) (*Config, *SensorConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	sensorConfigFile := filepath.Join(jsonFolder, sensorJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	sensorConfigData, err := readFile(sensorConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取传感器配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	scfgChan := make(chan *SensorConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseSensorConfig(sensorConfigData, scfgChan, errChan)

	cfg, scfg, err := waitForResults(cfgChan, scfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	return cfg, scfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseSensorConfig(data []byte, resultChan chan<- *SensorConfig, errChan chan<- error) {
	var scfg SensorConfig
	if err := json.Unmarshal(data, &scfg); err != nil {
		errChan <- fmt.Errorf("解析SensorConfig失败: %w", err)
		return
	}
	resultChan <- &scfg
}

func waitForResults(
	cfgChan <-chan *Config,
	scfgChan <-chan *SensorConfig,
	errChan <-chan error,
) (*Config, *SensorConfig, error) {
	var (
		cfg    *Config
		scfg   *SensorConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case s := <-scfgChan:
			scfg = s
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || scfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, scfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Label 某列的展示名，未配置时返回列名本身
func (sc *SensorConfig) Label(colName string) string {
	mu.RLock()
	defer mu.RUnlock()
	if label, ok := sc.Labels[colName]; ok {
		return label
	}
	return colName
}

// Unit 某列的单位，未配置时为空串
func (sc *SensorConfig) Unit(colName string) string {
	mu.RLock()
	defer mu.RUnlock()
	return sc.Units[colName]
}

// StatLabel 统计量的展示文案，未配置时返回统计量名本身
func (sc *SensorConfig) StatLabel(statName string) string {
	mu.RLock()
	defer mu.RUnlock()
	if label, ok := sc.StatLabels[statName]; ok {
		return label
	}
	return statName
}

func (sc *SensorConfig) SetLabel(colName, value string) {
	mu.Lock()
	defer mu.Unlock()
	sc.Labels[colName] = value
}
