package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := NewLogger(path)
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger, path
}

func TestLogWritesEntry(t *testing.T) {
	logger, path := newTestLogger(t)

	logger.Info("分析已完成")
	logger.Error("解码失败")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "INFO: 分析已完成")
	assert.Contains(t, content, "ERROR: 解码失败")
}

func TestSubscribeReceivesEntries(t *testing.T) {
	logger, _ := newTestLogger(t)

	ch := logger.Subscribe()
	logger.Warning("检测到异常")

	select {
	case entry := <-ch:
		assert.Contains(t, entry, "WARNING: 检测到异常")
	case <-time.After(time.Second):
		t.Fatal("没有收到订阅的日志")
	}
}

func TestCheckRotate(t *testing.T) {
	logger, path := newTestLogger(t)

	logger.Info(strings.Repeat("x", 200))
	require.NoError(t, logger.CheckRotate("100"))

	// 超限后原文件被改名，新文件为空
	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestCheckRotateBelowLimit(t *testing.T) {
	logger, path := newTestLogger(t)

	logger.Info("短消息")
	require.NoError(t, logger.CheckRotate("10 * 1024 * 1024"))

	matches, err := filepath.Glob(path + ".*")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestReopen(t *testing.T) {
	logger, _ := newTestLogger(t)
	other := filepath.Join(t.TempDir(), "other.log")

	require.NoError(t, logger.Reopen(other))
	logger.Info("切换之后")

	data, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Contains(t, string(data), "切换之后")
}

func TestEvalSizeExpression(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), eval("10 * 1024 * 1024"))
	assert.Equal(t, int64(512), eval("512"))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "FATAL", FATAL.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
