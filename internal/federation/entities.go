package federation

import (
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// EntityTypes returns the entity types of sch in declaration order: object
// and interface types carrying @key or @extends or declaring a @requires
// field, and the named return types of @provides fields. Root operation types
// are never entities.
func EntityTypes(sch *schema.Schema) []string {
	marked := make(map[string]bool)
	for _, name := range sch.TypeNames() {
		t := sch.Types[name]
		if !isEntityKind(t) {
			continue
		}
		if t.HasDirective(DirectiveKey) || t.HasDirective(DirectiveExtends) {
			marked[name] = true
		}
		for _, f := range t.Fields {
			if f.HasDirective(DirectiveRequires) {
				marked[name] = true
			}
			if f.HasDirective(DirectiveProvides) {
				if rt := sch.Types[f.Type.GetNamedType()]; rt != nil && isEntityKind(rt) {
					marked[rt.Name] = true
				}
			}
		}
	}
	var out []string
	for _, name := range sch.TypeNames() {
		if marked[name] && !sch.IsRootType(name) {
			out = append(out, name)
		}
	}
	return out
}

// EntityMembers returns the object types _Entity is made of: every object
// entity and every object implementing an interface entity, in declaration
// order without duplicates.
func EntityMembers(sch *schema.Schema, entities []string) []string {
	member := make(map[string]bool)
	for _, name := range entities {
		t := sch.Types[name]
		switch t.Kind {
		case schema.TypeKindObject:
			member[name] = true
		case schema.TypeKindInterface:
			for _, impl := range t.PossibleTypes {
				if it := sch.Types[impl]; it != nil && it.Kind == schema.TypeKindObject {
					member[impl] = true
				}
			}
		}
	}
	var out []string
	for _, name := range sch.TypeNames() {
		if member[name] {
			out = append(out, name)
		}
	}
	return out
}

func isEntityKind(t *schema.Type) bool {
	return t.Kind == schema.TypeKindObject || t.Kind == schema.TypeKindInterface
}
