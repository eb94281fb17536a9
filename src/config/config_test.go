package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigJSON = `{
	"analysis": {"threshold": 2.5},
	"watch": {"dir": "./data"},
	"email": {
		"server": "imap.example.com:993",
		"username": "sensor@example.com",
		"password": "secret",
		"target_subject": "sensor log",
		"check_interval": "5m"
	},
	"send_email": {
		"server": "smtp.example.com:465",
		"username": "alert@example.com",
		"password": "secret",
		"to": "ops@example.com"
	},
	"alert": {"webhook_url": ""},
	"data_dir": "./data",
	"report_name": "report.xlsx",
	"log_name": "sensorinsight.log",
	"log_max_size": "10 * 1024 * 1024"
}`

const testSensorJSON = `{
	"labels": {"temp": "温度"},
	"units": {"temp": "℃"},
	"statlabels": {"mean": "均值"}
}`

func writeTestConfigs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(testConfigJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sensors.json"), []byte(testSensorJSON), 0644))
	return dir
}

// 直接测 loadConfigs，绕开 LoadConfig 的 sync.Once
func TestLoadConfigs(t *testing.T) {
	dir := writeTestConfigs(t)

	cfg, scfg, err := loadConfigs(dir, "config.json", "sensors.json")
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.Analysis.Threshold)
	assert.Equal(t, "imap.example.com:993", cfg.Email.Server)
	assert.Equal(t, "sensor log", cfg.Email.TargetSubject)
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.Email.CheckInterval))
	assert.Equal(t, "ops@example.com", cfg.SendEmail.To)
	assert.Equal(t, "report.xlsx", cfg.ReportName)

	assert.Equal(t, "温度", scfg.Label("temp"))
	assert.Equal(t, "℃", scfg.Unit("temp"))
	assert.Equal(t, "均值", scfg.StatLabel("mean"))
}

func TestLoadConfigsMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, _, err := loadConfigs(dir, "config.json", "sensors.json")
	require.Error(t, err)
}

func TestLoadConfigsBadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sensors.json"), []byte(testSensorJSON), 0644))

	_, _, err := loadConfigs(dir, "config.json", "sensors.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "解析Config失败")
}

func TestSensorConfigFallbacks(t *testing.T) {
	scfg := &SensorConfig{
		Labels:     map[string]string{},
		Units:      map[string]string{},
		StatLabels: map[string]string{},
	}

	// 未配置时回退到原始名称
	assert.Equal(t, "pressure", scfg.Label("pressure"))
	assert.Equal(t, "", scfg.Unit("pressure"))
	assert.Equal(t, "std", scfg.StatLabel("std"))

	scfg.SetLabel("pressure", "压力")
	assert.Equal(t, "压力", scfg.Label("pressure"))
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"90s"`), &d))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	out, err := json.Marshal(Duration(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, `"2h0m0s"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`42`), &d))
}
