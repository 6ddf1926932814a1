package backup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/trian/landing/backend/wishes-service/pkg/metrics"
)

type fakeObjects struct {
	mu         sync.Mutex
	puts       map[string][]byte
	putErr     error
	presignErr error
}

func newFakeObjects() *fakeObjects { return &fakeObjects{puts: map[string][]byte{}} }

func (f *fakeObjects) Put(_ context.Context, key string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://objects.example/" + key, nil
}

func (f *fakeObjects) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

type snap struct {
	data []byte
	err  error
}

func (s snap) Snapshot(context.Context) ([]byte, error) { return s.data, s.err }

func fixedNow() time.Time {
	return time.Date(2024, 3, 5, 14, 30, 0, 0, time.FixedZone("ICT", 7*3600))
}

func TestRun_UploadsSnapshot(t *testing.T) {
	objs := newFakeObjects()
	s := NewService(snap{data: []byte(`[]`)}, objs)
	s.now = fixedNow
	before := testutil.ToFloat64(metrics.Backups.WithLabelValues("ok"))

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "wishes/20240305T073000Z.json", res.Key)
	require.Equal(t, 2, res.Size)
	require.Equal(t, "https://objects.example/wishes/20240305T073000Z.json", res.URL)
	require.Equal(t, []byte(`[]`), objs.puts[res.Key])
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Backups.WithLabelValues("ok")))
}

func TestRun_PresignFailureStillSucceeds(t *testing.T) {
	objs := newFakeObjects()
	objs.presignErr = errors.New("no presign")
	s := NewService(snap{data: []byte(`[]`)}, objs)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.URL)
	require.Equal(t, 1, objs.count())
}

func TestRun_Errors(t *testing.T) {
	before := testutil.ToFloat64(metrics.Backups.WithLabelValues("error"))

	_, err := NewService(snap{err: errors.New("disk gone")}, newFakeObjects()).Run(context.Background())
	require.Error(t, err)

	objs := newFakeObjects()
	objs.putErr = errors.New("bucket gone")
	_, err = NewService(snap{data: []byte(`[]`)}, objs).Run(context.Background())
	require.ErrorContains(t, err, "bucket gone")

	require.Equal(t, before+2, testutil.ToFloat64(metrics.Backups.WithLabelValues("error")))
}

func TestSchedule(t *testing.T) {
	objs := newFakeObjects()
	s := NewService(snap{data: []byte(`[]`)}, objs)
	var n int
	s.now = func() time.Time {
		n++
		return fixedNow().Add(time.Duration(n) * time.Second)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Schedule(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return objs.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Schedule did not stop after cancel")
	}
}

func TestSchedule_DisabledInterval(t *testing.T) {
	s := NewService(snap{data: []byte(`[]`)}, newFakeObjects())
	// returns immediately
	s.Schedule(context.Background(), 0)
}

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	objs := newFakeObjects()
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewService(snap{data: []byte(`[]`)}, objs), func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/backup", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, objs.count())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/backup", nil)
	req.Header.Set("Authorization", "Bearer x")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"key":"wishes/`)
	require.Equal(t, 1, objs.count())

	objs.putErr = errors.New("down")
	req = httptest.NewRequest(http.MethodPost, "/api/admin/backup", nil)
	req.Header.Set("Authorization", "Bearer x")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadGateway, w.Code)
}
