package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hanpama/fedgraph"
)

// fixtures back a mock subgraph. Fields holds fixed root field values per
// type; Entities holds the records reference resolution picks from.
//
//	fields:
//	  Query:
//	    me: {__typename: User, id: "1"}
//	entities:
//	  User:
//	    - {id: "1", name: Ada}
type fixtures struct {
	Fields   map[string]map[string]any   `yaml:"fields"`
	Entities map[string][]map[string]any `yaml:"entities"`
}

func loadFixtures(path string) (*fixtures, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fixtures
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return &f, nil
}

// resolvers turns the fixtures into a resolver map. Entity types get a
// batched loader matching every representation field against the records.
func (f *fixtures) resolvers() fedgraph.Resolvers {
	m := fedgraph.Resolvers{}
	for typeName, fields := range f.Fields {
		t := m.Ensure(typeName)
		for name, value := range fields {
			value := value
			t.SetField(name, func(context.Context, any, map[string]any) (any, error) {
				return value, nil
			})
		}
	}
	for typeName, records := range f.Entities {
		typeName, records := typeName, records
		m.Ensure(typeName).LoadReferences = func(_ context.Context, queries []fedgraph.LoaderQuery) ([]any, error) {
			out := make([]any, len(queries))
			for i, q := range queries {
				out[i] = match(typeName, records, q.Obj)
			}
			return out, nil
		}
	}
	return m
}

func match(typeName string, records []map[string]any, rep map[string]any) any {
	for _, rec := range records {
		if matches(rec, rep) {
			out := make(map[string]any, len(rec)+1)
			for k, v := range rec {
				out[k] = v
			}
			out["__typename"] = typeName
			return out
		}
	}
	return nil
}

// matches compares by printed value, so YAML integers equal JSON numbers.
func matches(rec, rep map[string]any) bool {
	for k, v := range rep {
		if k == "__typename" {
			continue
		}
		rv, ok := rec[k]
		if !ok || fmt.Sprint(rv) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}
