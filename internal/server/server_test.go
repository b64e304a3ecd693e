package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	events "github.com/hanpama/fedgraph/internal/events"
	executor "github.com/hanpama/fedgraph/internal/executor"
	reqid "github.com/hanpama/fedgraph/internal/reqid"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

func newTestHandler(t *testing.T, rt executor.Runtime, opts ...Option) *Handler {
	t.Helper()
	sch, err := schema.BuildFromSDL(`type Query { hello: String broken: String }`)
	require.NoError(t, err)
	h, err := New(rt, sch, opts...)
	require.NoError(t, err)
	return h
}

func post(t *testing.T, h http.Handler, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type codedError struct{}

func (codedError) Error() string              { return "not found" }
func (codedError) Extensions() map[string]any { return map[string]any{"code": "NOT_FOUND"} }

func TestForwardedHeaders(t *testing.T) {
	rt := executor.NewMockRuntime(nil)
	var captured metadata.MD
	rt.SetResolver("Query", "hello", func(ctx context.Context, src any, args map[string]any) (any, error) {
		captured, _ = metadata.FromOutgoingContext(ctx)
		return "world", nil
	})
	h := newTestHandler(t, rt, WithForwardHeaders("X-Test"))

	w := post(t, h, `{"query":"{ hello }"}`, "X-Test", "abc", "X-Other", "nope")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"abc"}, captured.Get("x-test"))
	require.Empty(t, captured.Get("x-other"))
}

func TestForwardedHeadersDefaultEmpty(t *testing.T) {
	rt := executor.NewMockRuntime(nil)
	var captured metadata.MD
	rt.SetResolver("Query", "hello", func(ctx context.Context, src any, args map[string]any) (any, error) {
		captured, _ = metadata.FromOutgoingContext(ctx)
		return "world", nil
	})
	h := newTestHandler(t, rt)

	w := post(t, h, `{"query":"{ hello }"}`, "X-Test", "abc")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, captured.Get("x-test"), "header should not be forwarded by default")
}

func TestCORSAndPreflight(t *testing.T) {
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.hello": executor.NewMockValueResolver("world"),
	})
	h := newTestHandler(t, rt, WithCORS("*"))

	w := post(t, h, `{"query":"{ hello }"}`, "Origin", "http://example.com")
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	require.Equal(t, http.StatusNoContent, pw.Code)
	require.Equal(t, "*", pw.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Test", pw.Header().Get("Access-Control-Allow-Headers"))
}

func TestMaxBodyBytes(t *testing.T) {
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.hello": executor.NewMockValueResolver("world"),
	})
	h := newTestHandler(t, rt, WithMaxBodyBytes(10))

	w := post(t, h, `{"query":"1234567890"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestID(t *testing.T) {
	rt := executor.NewMockRuntime(nil)
	var capturedMD metadata.MD
	var capturedID string
	rt.SetResolver("Query", "hello", func(ctx context.Context, src any, args map[string]any) (any, error) {
		capturedMD, _ = metadata.FromOutgoingContext(ctx)
		capturedID, _ = reqid.FromContext(ctx)
		return "world", nil
	})
	h := newTestHandler(t, rt)

	w := post(t, h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, capturedID)
	require.Equal(t, []string{capturedID}, capturedMD.Get(reqid.Header))
	require.Equal(t, capturedID, w.Header().Get(reqid.Header))

	given := "0b6a4a52-5d4b-4a40-9a4e-1f0c7f3c2b11"
	w = post(t, h, `{"query":"{ hello }"}`, reqid.Header, given)
	require.Equal(t, given, capturedID)
	require.Equal(t, given, w.Header().Get(reqid.Header))
}

func TestErrorExtensions(t *testing.T) {
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.hello":  executor.NewMockValueResolver("world"),
		"Query.broken": executor.NewMockErrorResolver(codedError{}),
	})
	h := newTestHandler(t, rt)

	got := decode(t, post(t, h, `{"query":"{ hello broken }"}`))
	require.Equal(t, map[string]any{"hello": "world", "broken": nil}, got["data"])
	require.Equal(t, []any{map[string]any{
		"message":    "not found",
		"locations":  []any{map[string]any{"line": float64(1), "column": float64(9)}},
		"path":       []any{"broken"},
		"extensions": map[string]any{"code": "NOT_FOUND"},
	}}, got["errors"])
}

func TestSyntaxErrorLocations(t *testing.T) {
	h := newTestHandler(t, executor.NewMockRuntime(nil))

	got := decode(t, post(t, h, `{"query":"{ hello "}`))
	errs := got["errors"].([]any)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]any)
	require.NotEmpty(t, first["message"])
	require.Equal(t, []any{map[string]any{"line": float64(1), "column": float64(9)}}, first["locations"])
}

func TestBatchAndGet(t *testing.T) {
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.hello": executor.NewMockValueResolver("world"),
	})
	h := newTestHandler(t, rt)

	w := post(t, h, `[{"query":"{ hello }"},{"query":"{ a: hello }"}]`)
	var batch []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	require.Equal(t, []map[string]any{
		{"data": map[string]any{"hello": "world"}},
		{"data": map[string]any{"a": "world"}},
	}, batch)

	req := httptest.NewRequest("GET", "/?query=%7B+hello+%7D", nil)
	gw := httptest.NewRecorder()
	h.ServeHTTP(gw, req)
	require.Equal(t, map[string]any{"data": map[string]any{"hello": "world"}}, decode(t, gw))
}

func TestGraphiQL(t *testing.T) {
	h := newTestHandler(t, executor.NewMockRuntime(nil))
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "GraphiQL.createFetcher"))

	off := newTestHandler(t, executor.NewMockRuntime(nil), WithGraphiQL(false))
	w = httptest.NewRecorder()
	off.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventsPublished(t *testing.T) {
	bus := eventbus.New()
	var (
		mu       sync.Mutex
		statuses []int
		sizes    []int64
		finishes []events.GraphQLFinish
	)
	eventbus.Subscribe(bus, func(ctx context.Context, e events.HTTPFinish) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, e.Status)
		sizes = append(sizes, e.Bytes)
	})
	eventbus.Subscribe(bus, func(ctx context.Context, e events.GraphQLFinish) {
		mu.Lock()
		defer mu.Unlock()
		finishes = append(finishes, e)
	})
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.hello":  executor.NewMockValueResolver("world"),
		"Query.broken": executor.NewMockErrorResolver(codedError{}),
	})
	h := newTestHandler(t, rt, WithEventBus(bus))

	w := post(t, h, `{"query":"query Q { hello broken }"}`)
	require.Equal(t, []int{http.StatusOK}, statuses)
	require.Equal(t, []int64{int64(w.Body.Len())}, sizes)
	require.Len(t, finishes, 1)
	require.Equal(t, "Q", finishes[0].OperationName)
	require.Equal(t, "query", finishes[0].OperationType)
	require.Len(t, finishes[0].Errors, 1)
	require.Equal(t, []string{"NOT_FOUND"}, finishes[0].Codes)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, executor.NewMockRuntime(nil))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("PUT", "/", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, map[string]any{
		"data":   nil,
		"errors": []any{map[string]any{"message": "method not allowed"}},
	}, decode(t, w))
}
