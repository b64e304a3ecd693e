package language

import (
	"bytes"

	"github.com/vektah/gqlparser/v2/formatter"
)

// Document is a parsed schema description together with the exact text it was
// read from. Source is what `_service { sdl }` reports.
type Document struct {
	Schema *SchemaDocument
	Source string
}

// NewDocument parses one textual schema fragment.
func NewDocument(name, source string) (*Document, error) {
	doc, err := ParseSchema(name, source)
	if err != nil {
		return nil, err
	}
	return &Document{Schema: doc, Source: source}, nil
}

// FromSchemaDocument wraps an already parsed document. The source text is
// recovered from the distinct sources referenced by node positions, in the
// order they are first encountered. Documents assembled by hand carry no
// positions; their source is produced by the gqlparser formatter instead.
func FromSchemaDocument(doc *SchemaDocument) *Document {
	if doc == nil {
		doc = &SchemaDocument{}
	}
	var (
		seen = map[*Source]struct{}{}
		buf  bytes.Buffer
	)
	visit := func(pos *Position) {
		if pos == nil || pos.Src == nil || pos.Src.BuiltIn {
			return
		}
		if _, ok := seen[pos.Src]; ok {
			return
		}
		seen[pos.Src] = struct{}{}
		buf.WriteString(pos.Src.Input)
	}
	for _, def := range doc.Schema {
		visit(def.Position)
	}
	for _, def := range doc.SchemaExtension {
		visit(def.Position)
	}
	for _, def := range doc.Directives {
		visit(def.Position)
	}
	for _, def := range doc.Definitions {
		visit(def.Position)
	}
	for _, def := range doc.Extensions {
		visit(def.Position)
	}
	if len(seen) == 0 {
		formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	}
	return &Document{Schema: doc, Source: buf.String()}
}

// Merge concatenates documents in order. Definitions of every kind are appended
// per document and source texts are joined without a separator. The inputs are
// not modified.
func Merge(docs ...*Document) *Document {
	merged := &SchemaDocument{}
	var buf bytes.Buffer
	for _, d := range docs {
		if d == nil {
			continue
		}
		buf.WriteString(d.Source)
		if d.Schema == nil {
			continue
		}
		merged.Schema = append(merged.Schema, d.Schema.Schema...)
		merged.SchemaExtension = append(merged.SchemaExtension, d.Schema.SchemaExtension...)
		merged.Directives = append(merged.Directives, d.Schema.Directives...)
		merged.Definitions = append(merged.Definitions, d.Schema.Definitions...)
		merged.Extensions = append(merged.Extensions, d.Schema.Extensions...)
	}
	return &Document{Schema: merged, Source: buf.String()}
}
