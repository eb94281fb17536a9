package datapush

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushDeliversAlert(t *testing.T) {
	var got AlertMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	p := NewPusher(srv.URL)
	err := p.Push(AlertMessage{
		Title:        "异常告警",
		Source:       "42_factory.csv",
		OutlierCount: 3,
		TotalRows:    120,
		Ratio:        map[string]float64{"temp": 2.5},
	})
	require.NoError(t, err)

	assert.Equal(t, "异常告警", got.Title)
	assert.Equal(t, "42_factory.csv", got.Source)
	assert.Equal(t, 3, got.OutlierCount)
	assert.Equal(t, 2.5, got.Ratio["temp"])
	assert.False(t, got.PushedAt.IsZero(), "推送时间自动补齐")
}

func TestPushEmptyURLIsNoop(t *testing.T) {
	p := NewPusher("")
	assert.NoError(t, p.Push(AlertMessage{Title: "不会被发送"}))
}

func TestPushRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	p := NewPusher(srv.URL)
	start := time.Now()
	err := p.Push(AlertMessage{Title: "第二次成功"})

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.GreaterOrEqual(t, time.Since(start), RetryInterval)
}

func TestPushKeepsExplicitTimestamp(t *testing.T) {
	var got AlertMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
	}))
	defer srv.Close()

	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	p := NewPusher(srv.URL)
	require.NoError(t, p.Push(AlertMessage{PushedAt: at}))

	assert.True(t, got.PushedAt.Equal(at))
}
