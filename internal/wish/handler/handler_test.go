package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trian/landing/backend/wishes-service/internal/wish"
	"github.com/trian/landing/backend/wishes-service/internal/wish/repository"
	"github.com/trian/landing/backend/wishes-service/internal/wish/service"
)

func testOptions() service.Options {
	return service.Options{
		Location:     time.UTC,
		Lock:         true,
		StrictWrites: true,
		Now:          func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) },
	}
}

func newEngine(svc service.Service, opts ...Option) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	NewHandler(svc, opts...).Register(g.Group("/api"))
	return g
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func listIDs(t *testing.T, g *gin.Engine) []int {
	t.Helper()
	w := do(g, http.MethodGet, "/api/wishes", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []wish.Wish
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	ids := make([]int, 0, len(list))
	for _, x := range list {
		ids = append(ids, x.ID)
	}
	return ids
}

func seed(ids ...int) []wish.Wish {
	out := make([]wish.Wish, 0, len(ids))
	for _, id := range ids {
		out = append(out, wish.Wish{ID: id, Title: wish.DefaultTitle, Author: "seed", Content: "c", Date: "1/1/2026"})
	}
	return out
}

func TestWishHandler_CreateThenList(t *testing.T) {
	repo, err := repository.NewFileRepo(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	g := newEngine(service.New(repo, testOptions()))

	// empty store lists as [] (not null)
	w := do(g, http.MethodGet, "/api/wishes", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())

	w = do(g, http.MethodPost, "/api/wishes", `{"author":"A","content":"Hi"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"id":1,"title":"Lời Tri Ân","author":"A","content":"Hi","date":"19/10/2026"}`, w.Body.String())

	w = do(g, http.MethodGet, "/api/wishes", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"id":1,"title":"Lời Tri Ân","author":"A","content":"Hi","date":"19/10/2026"}]`, w.Body.String())
}

func TestWishHandler_CreateTrimsAndAssignsNextID(t *testing.T) {
	g := newEngine(service.NewMemoryService(testOptions(), seed(5, 2, 1)...))

	w := do(g, http.MethodPost, "/api/wishes", `{"author":" Ann ","content":" Thanks! "}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var got wish.Wish
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 6, got.ID)
	assert.Equal(t, "Ann", got.Author)
	assert.Equal(t, "Thanks!", got.Content)

	require.Equal(t, []int{6, 5, 2, 1}, listIDs(t, g))
}

func TestWishHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty author", `{"author":"","content":"Hi"}`},
		{"missing author", `{"content":"Hi"}`},
		{"missing content", `{"author":"A"}`},
		{"blank content", `{"author":"A","content":"   "}`},
		{"wrong type", `{"author":42,"content":"Hi"}`},
		{"not json", `invalid json`},
		{"no body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newEngine(service.NewMemoryService(testOptions(), seed(1)...))
			w := do(g, http.MethodPost, "/api/wishes", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.JSONEq(t, `{"error":"`+MsgMissingFields+`"}`, w.Body.String())
			require.Equal(t, []int{1}, listIDs(t, g))
		})
	}
}

func TestWishHandler_Delete(t *testing.T) {
	g := newEngine(service.NewMemoryService(testOptions(), seed(3, 2, 1)...))

	w := do(g, http.MethodDelete, "/api/wishes/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"`+MsgDeleted+`"}`, w.Body.String())
	require.Equal(t, []int{3, 1}, listIDs(t, g))
}

func TestWishHandler_DeleteLenientIDs(t *testing.T) {
	for _, id := range []string{"1.5", "1abc", "%201", "+1"} {
		t.Run(id, func(t *testing.T) {
			g := newEngine(service.NewMemoryService(testOptions(), seed(2, 1)...))
			w := do(g, http.MethodDelete, "/api/wishes/"+id, "")
			require.Equal(t, http.StatusOK, w.Code)
			require.JSONEq(t, `{"message":"`+MsgDeleted+`"}`, w.Body.String())
			require.Equal(t, []int{2}, listIDs(t, g))
		})
	}
}

func TestWishHandler_DeleteNotFound(t *testing.T) {
	for _, id := range []string{"999", "abc", ".5", "-1"} {
		t.Run(id, func(t *testing.T) {
			g := newEngine(service.NewMemoryService(testOptions(), seed(1, 2)...))
			w := do(g, http.MethodDelete, "/api/wishes/"+id, "")
			require.Equal(t, http.StatusNotFound, w.Code)
			require.JSONEq(t, `{"error":"`+MsgNotFound+`"}`, w.Body.String())
			require.Len(t, listIDs(t, g), 2)
		})
	}
}

type failingRepo struct{ repository.MemoryRepo }

func (f *failingRepo) Save(context.Context, []wish.Wish) error { return context.DeadlineExceeded }

func TestWishHandler_WriteFailure(t *testing.T) {
	repo := &failingRepo{}
	require.NoError(t, repo.MemoryRepo.Save(context.Background(), seed(1)))

	strict := newEngine(service.New(repo, testOptions()))
	w := do(strict, http.MethodPost, "/api/wishes", `{"author":"A","content":"Hi"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"`+MsgSaveFailed+`"}`, w.Body.String())
	w = do(strict, http.MethodDelete, "/api/wishes/1", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	lenientOpts := testOptions()
	lenientOpts.StrictWrites = false
	lenient := newEngine(service.New(repo, lenientOpts))
	w = do(lenient, http.MethodPost, "/api/wishes", `{"author":"A","content":"Hi"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(lenient, http.MethodDelete, "/api/wishes/1", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestWishHandler_Middlewares(t *testing.T) {
	var writes, admins int
	countWrite := func(c *gin.Context) { writes++; c.Next() }
	denyAdmin := func(c *gin.Context) {
		admins++
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no"})
	}
	g := newEngine(service.NewMemoryService(testOptions(), seed(1)...),
		WithWriteMiddleware(countWrite), WithAdminMiddleware(denyAdmin))

	require.Equal(t, http.StatusOK, do(g, http.MethodGet, "/api/wishes", "").Code)
	require.Equal(t, 0, writes)

	require.Equal(t, http.StatusCreated, do(g, http.MethodPost, "/api/wishes", `{"author":"A","content":"Hi"}`).Code)
	require.Equal(t, 1, writes)
	require.Equal(t, 0, admins)

	require.Equal(t, http.StatusUnauthorized, do(g, http.MethodDelete, "/api/wishes/1", "").Code)
	require.Equal(t, 2, writes)
	require.Equal(t, 1, admins)
	require.Equal(t, []int{2, 1}, listIDs(t, g))
}

func TestWishHandler_LiveRouteOptional(t *testing.T) {
	g := newEngine(service.NewMemoryService(testOptions()))
	require.Equal(t, http.StatusNotFound, do(g, http.MethodGet, "/api/wishes/live", "").Code)

	g = newEngine(service.NewMemoryService(testOptions()), WithLive(func(c *gin.Context) { c.String(http.StatusTeapot, "live") }))
	require.Equal(t, http.StatusTeapot, do(g, http.MethodGet, "/api/wishes/live", "").Code)
}
