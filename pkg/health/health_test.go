package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestRunAllUp(t *testing.T) {
	c := NewChecker(time.Second)
	c.Register("index", CountCheck("courses", func() int { return 100 }))
	c.Register("postgres", PingCheck(fakePinger{}))

	report := c.Run(context.Background())
	assert.Equal(t, StatusUp, report.Status)
	assert.Equal(t, "100 courses", report.Components["index"].Message)
	assert.Equal(t, []string{"index", "postgres"}, c.Names())
}

func TestOptionalFailureDegrades(t *testing.T) {
	c := NewChecker(time.Second)
	c.Register("index", CountCheck("courses", func() int { return 1 }))
	c.RegisterOptional("redis", PingCheck(fakePinger{err: errors.New("connection refused")}))

	report := c.Run(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	redis := report.Components["redis"]
	assert.Equal(t, StatusDegraded, redis.Status)
	assert.True(t, redis.Optional)
	assert.Equal(t, "connection refused", redis.Message)
}

func TestRequiredFailureIsDown(t *testing.T) {
	c := NewChecker(time.Second)
	c.Register("postgres", PingCheck(fakePinger{err: errors.New("timeout")}))
	c.RegisterOptional("redis", PingCheck(nil))

	report := c.Run(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, "not configured", report.Components["redis"].Message)
}

type pointerPinger struct{}

func (*pointerPinger) Ping(context.Context) error { return nil }

func TestTypedNilPingerIsNotConfigured(t *testing.T) {
	var p *pointerPinger
	got := PingCheck(p)(context.Background())
	assert.Equal(t, StatusDegraded, got.Status)
	assert.Equal(t, "not configured", got.Message)

	got = PingCheck(&pointerPinger{})(context.Background())
	assert.Equal(t, StatusUp, got.Status)
}

func TestEmptyCountIsDegraded(t *testing.T) {
	got := CountCheck("courses", func() int { return 0 })(context.Background())
	assert.Equal(t, StatusDegraded, got.Status)
}

func TestChecksObserveTimeout(t *testing.T) {
	c := NewChecker(20 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) ComponentHealth {
		<-ctx.Done()
		return ComponentHealth{Status: StatusDown, Message: ctx.Err().Error()}
	})
	start := time.Now()
	report := c.Run(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StatusDown, report.Status)
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker(time.Second)
	c.RegisterOptional("redis", PingCheck(nil))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, StatusDegraded, report.Status)

	c.Register("postgres", PingCheck(fakePinger{err: errors.New("down")}))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker(0).LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
