// Package server serves a federation schema over HTTP.
package server

import (
	"context"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"google.golang.org/grpc/metadata"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	events "github.com/hanpama/fedgraph/internal/events"
	executor "github.com/hanpama/fedgraph/internal/executor"
	language "github.com/hanpama/fedgraph/internal/language"
	reqid "github.com/hanpama/fedgraph/internal/reqid"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// Handler serves GraphQL over GET and POST, including batched POST bodies.
type Handler struct {
	exec    *executor.Executor
	opt     Options
	forward map[string]struct{}
}

type Options struct {
	// Timeout bounds requests whose context has no deadline. 0 disables it.
	Timeout time.Duration

	// Pretty indents JSON responses.
	Pretty bool

	// MaxBodyBytes limits the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS is disabled while AllowedOrigins is empty.
	CORS CORSOptions

	// ForwardHeaders lists HTTP headers passed to resolvers as outgoing gRPC
	// metadata, ready for calls to downstream services. Names are
	// case-insensitive.
	ForwardHeaders []string

	// GraphiQL serves the in-browser IDE to HTML clients.
	GraphiQL bool

	// Bus receives HTTP and GraphQL events. Nil disables them.
	Bus *eventbus.Bus
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}
func WithForwardHeaders(headers ...string) Option {
	return func(o *Options) { o.ForwardHeaders = headers }
}
func WithEventBus(b *eventbus.Bus) Option { return func(o *Options) { o.Bus = b } }
func WithGraphiQL(enable bool) Option     { return func(o *Options) { o.GraphiQL = enable } }

// CORSOptions holds simple CORS settings. "*" allows any origin.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a handler executing operations against sch through runtime.
func New(runtime executor.Runtime, sch *schema.Schema, opts ...Option) (*Handler, error) {
	op := Options{Timeout: 10 * time.Second, GraphiQL: true}
	for _, f := range opts {
		f(&op)
	}
	h := &Handler{
		exec:    executor.NewExecutor(runtime, sch),
		opt:     op,
		forward: make(map[string]struct{}, len(op.ForwardHeaders)),
	}
	for _, name := range op.ForwardHeaders {
		h.forward[http.CanonicalHeaderKey(name)] = struct{}{}
	}
	return h, nil
}

// recorder remembers what was written through it for HTTPFinish.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += int64(n)
	return n, err
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, rid := reqid.WithID(r.Context(), r.Header.Get(reqid.Header))
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}
	r = r.WithContext(ctx)
	w.Header().Set(reqid.Header, rid)

	rec := &recorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	eventbus.Publish(ctx, h.opt.Bus, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, h.opt.Bus, events.HTTPFinish{
			Request:  r,
			Status:   rec.status,
			Bytes:    rec.bytes,
			Duration: time.Since(start),
		})
	}()

	h.allowOrigin(rec, r)
	h.serve(rec, r)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
		if h.opt.GraphiQL && r.URL.Query().Get("query") == "" && acceptsHTML(r.Header.Get("Accept")) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, graphiqlPage)
			return
		}
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, failed(requestError("method not allowed")), h.opt.Pretty)
		return
	}

	reqs, batched, perr := parseRequest(r, h.opt.MaxBodyBytes)
	if perr != nil {
		status := http.StatusBadRequest
		if perr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, failed(perr), h.opt.Pretty)
		return
	}

	ctx := metadata.NewOutgoingContext(r.Context(), h.metadata(r))
	results := make([]*executor.ExecutionResult, len(reqs))
	for i, req := range reqs {
		results[i] = h.execute(ctx, req)
	}
	if batched {
		writeJSON(w, http.StatusOK, results, h.opt.Pretty)
		return
	}
	writeJSON(w, http.StatusOK, results[0], h.opt.Pretty)
}

func (h *Handler) execute(ctx context.Context, req GraphQLRequest) *executor.ExecutionResult {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return failed(err)
	}
	opType := ""
	if op := doc.Operations.ForName(req.OperationName); op != nil {
		opType = string(op.Operation)
	} else if len(doc.Operations) == 1 {
		opType = string(doc.Operations[0].Operation)
	}

	start := time.Now()
	eventbus.Publish(ctx, h.opt.Bus, events.GraphQLStart{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
	})
	res := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, nil)
	errs := make([]error, len(res.Errors))
	for i := range res.Errors {
		errs[i] = res.Errors[i]
	}
	eventbus.Publish(ctx, h.opt.Bus, events.GraphQLFinish{
		OperationName: req.OperationName,
		OperationType: opType,
		Errors:        errs,
		Codes:         errorCodes(res.Errors),
		Duration:      time.Since(start),
	})
	return res
}

// metadata carries the forwarded headers and the request id.
func (h *Handler) metadata(r *http.Request) metadata.MD {
	md := metadata.MD{}
	for name, values := range r.Header {
		if _, ok := h.forward[name]; ok {
			md.Append(name, values...)
		}
	}
	if rid, ok := reqid.FromContext(r.Context()); ok {
		md.Set(reqid.Header, rid)
	}
	return md
}

func (h *Handler) allowOrigin(w http.ResponseWriter, r *http.Request) {
	origins := h.opt.CORS.AllowedOrigins
	origin := r.Header.Get("Origin")
	if len(origins) == 0 || origin == "" {
		return
	}
	switch {
	case slices.Contains(origins, "*"):
		w.Header().Set("Access-Control-Allow-Origin", "*")
	case slices.Contains(origins, origin):
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	default:
		return
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}

func acceptsHTML(accept string) bool {
	for _, p := range strings.Split(accept, ",") {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "text/html") || p == "*/*" {
			return true
		}
	}
	return false
}
