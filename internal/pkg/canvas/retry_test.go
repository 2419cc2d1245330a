package canvas

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

	for i := 0; i < 100; i++ {
		d0 := p.Delay(0)
		assert.GreaterOrEqual(t, d0, 10*time.Millisecond)
		assert.LessOrEqual(t, d0, 15*time.Millisecond)

		d1 := p.Delay(1)
		assert.GreaterOrEqual(t, d1, 20*time.Millisecond)
		assert.LessOrEqual(t, d1, 25*time.Millisecond)

		d2 := p.Delay(2)
		assert.GreaterOrEqual(t, d2, 40*time.Millisecond)
		assert.LessOrEqual(t, d2, 45*time.Millisecond)
	}

	assert.Equal(t, time.Duration(0), RetryPolicy{}.Delay(3))
}

func TestRetryPolicy_DelayIsCapped(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10, BaseDelay: 10 * time.Millisecond, MaxDelay: 25 * time.Millisecond}

	for i := 0; i < 100; i++ {
		d := p.Delay(5)
		assert.GreaterOrEqual(t, d, 25*time.Millisecond)
		assert.LessOrEqual(t, d, 30*time.Millisecond)
	}

	// A cap below the base delay falls back to 64 times the base delay
	p = RetryPolicy{BaseDelay: 10 * time.Millisecond, MaxDelay: time.Millisecond}
	assert.GreaterOrEqual(t, p.Delay(10), 640*time.Millisecond)
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	assert.Equal(t, 1, RetryPolicy{}.Attempts())
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{403, 408, 425, 429, 500, 502, 503, 504} {
		if !retryableStatus(code) {
			t.Errorf("expected %d to be retryable", code)
		}
	}

	for _, code := range []int{200, 301, 400, 401, 404, 410, 422} {
		if retryableStatus(code) {
			t.Errorf("expected %d to be terminal", code)
		}
	}
}

func TestStatusKind(t *testing.T) {
	assert.Equal(t, KindRateLimited, statusKind(http.StatusTooManyRequests))
	assert.Equal(t, KindPermissionDenied, statusKind(http.StatusUnauthorized))
	assert.Equal(t, KindPermissionDenied, statusKind(http.StatusForbidden))
	assert.Equal(t, KindNotFound, statusKind(http.StatusNotFound))
	assert.Equal(t, KindTransientNetwork, statusKind(http.StatusBadGateway))
	assert.Equal(t, KindRemote, statusKind(http.StatusBadRequest))
}

func TestRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, time.Duration(0), retryAfter(resp))

	resp.Header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, retryAfter(resp))

	resp.Header.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Equal(t, time.Duration(0), retryAfter(resp))
	assert.Equal(t, time.Duration(0), retryAfter(nil))
}

func TestSleep_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}
