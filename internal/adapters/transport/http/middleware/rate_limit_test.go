package middleware

import (
	"context"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(t *testing.T, rps float64, burst int, ttl time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.Use(NewRateLimitPerIP(ctx, rps, burst, 100, ttl))
	r.GET("/", func(c *gin.Context) { c.String(200, "ok") })
	return r
}

func doFrom(r *gin.Engine, addr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = addr
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitPerIP_Basic(t *testing.T) {
	r := newLimitedRouter(t, 1, 1, time.Hour)

	if code := doFrom(r, "1.2.3.4:12345"); code != 200 {
		t.Fatalf("want 200, got %d", code)
	}
	if code := doFrom(r, "1.2.3.4:12345"); code != 429 {
		t.Fatalf("want 429, got %d", code)
	}
}

func TestRateLimitPerIP_DifferentHosts(t *testing.T) {
	r := newLimitedRouter(t, 1, 1, time.Hour)

	if code := doFrom(r, "10.0.0.1:1111"); code != 200 {
		t.Fatalf("host A first request must pass, got %d", code)
	}
	if code := doFrom(r, "10.0.0.2:2222"); code != 200 {
		t.Fatalf("host B first request must pass independently, got %d", code)
	}
}

func TestRateLimitPerIP_Burst(t *testing.T) {
	r := newLimitedRouter(t, 0.001, 3, time.Hour)

	for i := 0; i < 3; i++ {
		if code := doFrom(r, "10.0.0.3:1"); code != 200 {
			t.Fatalf("request %d within burst want 200 got %d", i, code)
		}
	}
	if code := doFrom(r, "10.0.0.3:1"); code != 429 {
		t.Fatalf("request over burst want 429 got %d", code)
	}
}

func TestRateLimitPerIP_TTL_Evicts(t *testing.T) {
	ttl := 10 * time.Millisecond
	r := newLimitedRouter(t, 0.001, 1, ttl)

	if code := doFrom(r, "127.0.0.1:5555"); code != 200 {
		t.Fatalf("first req want 200 got %d", code)
	}
	if code := doFrom(r, "127.0.0.1:5555"); code != 429 {
		t.Fatalf("second immediate req want 429 got %d", code)
	}
	time.Sleep(5 * ttl)
	if code := doFrom(r, "127.0.0.1:5555"); code != 200 {
		t.Fatalf("after TTL want 200 got %d", code)
	}
}

func TestRateLimitPerIP_ConcurrentFirstRequests(t *testing.T) {
	const burst = 5
	for round := 0; round < 20; round++ {
		r := newLimitedRouter(t, 0.001, burst, time.Hour)

		var passed atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if doFrom(r, "10.0.0.9:1") == 200 {
					passed.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		if got := passed.Load(); got != burst {
			t.Fatalf("round %d: %d requests passed, want exactly %d", round, got, burst)
		}
	}
}
