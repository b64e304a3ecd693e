package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	events "github.com/hanpama/fedgraph/internal/events"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestSubscribeRecordsEvents(t *testing.T) {
	m := New(false)
	bus := eventbus.New()
	off := m.Subscribe(bus)
	defer off()
	ctx := context.Background()

	eventbus.Publish(ctx, bus, events.HTTPFinish{Request: httptest.NewRequest("POST", "/graphql", nil), Status: 200, Duration: time.Millisecond})
	eventbus.Publish(ctx, bus, events.GraphQLFinish{OperationType: "query"})
	eventbus.Publish(ctx, bus, events.GraphQLFinish{OperationType: "query", Errors: []error{errors.New("boom")}, Codes: []string{"FEDERATION_INVALID_SCHEMA"}})
	eventbus.Publish(ctx, bus, events.EntitiesFinish{Representations: 3, Errors: 1, Loads: 1})
	eventbus.Publish(ctx, bus, events.SchemaBuild{Entities: []string{"User", "Product"}})
	eventbus.Publish(ctx, bus, events.SchemaBuild{Gateway: true, Err: errors.New("invalid")})

	out := scrape(t, m)
	for _, line := range []string{
		`fedgraph_http_requests_total{method="POST",status="200"} 1`,
		`fedgraph_graphql_operations_total{outcome="ok",type="query"} 1`,
		`fedgraph_graphql_operations_total{outcome="error",type="query"} 1`,
		`fedgraph_graphql_errors_total{code="FEDERATION_INVALID_SCHEMA"} 1`,
		`fedgraph_entities_representations_total{outcome="ok"} 2`,
		`fedgraph_entities_representations_total{outcome="error"} 1`,
		`fedgraph_entities_loader_calls_total 1`,
		`fedgraph_schema_builds_total{gateway="false",outcome="ok"} 1`,
		`fedgraph_schema_builds_total{gateway="true",outcome="error"} 1`,
		`fedgraph_schema_entity_types 2`,
	} {
		require.Contains(t, out, line)
	}
	require.NotContains(t, out, "go_goroutines")
}

func TestRuntimeCollectors(t *testing.T) {
	require.Contains(t, scrape(t, New(true)), "go_goroutines")
}
