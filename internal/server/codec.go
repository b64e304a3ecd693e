package server

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"

	executor "github.com/hanpama/fedgraph/internal/executor"
	language "github.com/hanpama/fedgraph/internal/language"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const errBodyTooLargeMessage = "body too large"

// GraphQLRequest is one operation read from a query string or a body.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// parseRequest reads the operations of r. batched is true when the body was a
// JSON array, in which case the response is an array as well.
func parseRequest(r *http.Request, maxBody int64) (reqs []GraphQLRequest, batched bool, err *language.Error) {
	if r.Method == http.MethodGet {
		req, err := fromQueryString(r.URL.Query())
		if err != nil {
			return nil, false, err
		}
		return []GraphQLRequest{req}, false, nil
	}

	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return nil, false, requestError("unsupported Content-Type")
	}
	body, err := readBody(r, maxBody)
	if err != nil {
		return nil, false, err
	}

	if len(body) > 0 && body[0] == '[' {
		if uerr := json.Unmarshal(body, &reqs); uerr != nil {
			return nil, false, requestError("invalid JSON")
		}
		if len(reqs) == 0 {
			return nil, false, requestError("empty batch")
		}
		return reqs, true, nil
	}
	var req GraphQLRequest
	if uerr := json.Unmarshal(body, &req); uerr != nil {
		return nil, false, requestError("invalid JSON")
	}
	if req.Query == "" {
		return nil, false, requestError("missing 'query'")
	}
	return []GraphQLRequest{req}, false, nil
}

func fromQueryString(q url.Values) (GraphQLRequest, *language.Error) {
	req := GraphQLRequest{Query: q.Get("query"), OperationName: q.Get("operationName")}
	if req.Query == "" {
		return req, requestError("missing 'query'")
	}
	if v := q.Get("variables"); v != "" {
		if err := json.UnmarshalFromString(v, &req.Variables); err != nil {
			return req, requestError("invalid 'variables' JSON")
		}
	}
	return req, nil
}

func readBody(r *http.Request, maxBody int64) ([]byte, *language.Error) {
	defer r.Body.Close()
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, requestError("failed to read body")
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return nil, requestError(errBodyTooLargeMessage)
	}
	return body, nil
}

func requestError(msg string) *language.Error {
	return &language.Error{Message: msg}
}

// failed is the response for an operation that never reached execution.
func failed(err error) *executor.ExecutionResult {
	var ge *language.Error
	if !errors.As(err, &ge) {
		ge = requestError(err.Error())
	}
	e := executor.GraphQLError{Message: ge.Message, Extensions: ge.Extensions}
	for _, loc := range ge.Locations {
		e.Locations = append(e.Locations, executor.Location{Line: loc.Line, Column: loc.Column})
	}
	return &executor.ExecutionResult{Errors: []executor.GraphQLError{e}}
}

// errorCodes returns the "code" extension of every coded error in errs.
func errorCodes(errs []executor.GraphQLError) []string {
	var codes []string
	for _, e := range errs {
		if code, ok := e.Extensions["code"].(string); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
