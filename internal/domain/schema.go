package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFieldType is assigned to a field whose descriptor omits the type.
const DefaultFieldType = "any"

// Field is a fully-defaulted dataset field descriptor. Name is a
// dot-delimited path; each dot-separated segment names a key in a nested
// object (e.g. "request.headers.user_agent").
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Unit        string `json:"unit"`
	Hidden      bool   `json:"hidden"`
	Description string `json:"description"`
}

// ValidateFields validates and defaults a batch of raw field descriptors as
// delivered by the dataset-info endpoint. Validation is atomic: if any
// element is malformed, the whole batch is rejected and no fields are
// returned. Unknown keys on a descriptor are ignored.
func ValidateFields(raw []map[string]any) ([]Field, error) {
	fields := make([]Field, 0, len(raw))
	for i, r := range raw {
		f, err := validateField(r)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func validateField(raw map[string]any) (Field, error) {
	f := Field{Type: DefaultFieldType}

	v, ok := raw["name"]
	if !ok {
		return Field{}, errors.New(`missing required key "name"`)
	}
	name, ok := v.(string)
	if !ok {
		return Field{}, fmt.Errorf(`key "name": expected string, got %T`, v)
	}
	if name == "" {
		return Field{}, errors.New(`key "name": must not be empty`)
	}
	f.Name = name

	if v, ok := raw["type"]; ok {
		typ, ok := v.(string)
		if !ok {
			return Field{}, fmt.Errorf(`key "type": expected string, got %T`, v)
		}
		if typ != "" {
			f.Type = typ
		}
	}
	if v, ok := raw["unit"]; ok {
		unit, ok := v.(string)
		if !ok {
			return Field{}, fmt.Errorf(`key "unit": expected string, got %T`, v)
		}
		f.Unit = unit
	}
	if v, ok := raw["hidden"]; ok {
		hidden, ok := v.(bool)
		if !ok {
			return Field{}, fmt.Errorf(`key "hidden": expected bool, got %T`, v)
		}
		f.Hidden = hidden
	}
	if v, ok := raw["description"]; ok {
		desc, ok := v.(string)
		if !ok {
			return Field{}, fmt.Errorf(`key "description": expected string, got %T`, v)
		}
		f.Description = desc
	}
	return f, nil
}

// SchemaTree is a nested mapping from path segment to either a terminal
// type name or a deeper SchemaTree. Keys keep the order in which they were
// first inserted; rendering order is part of the contract, so iteration
// never goes through the map alone.
type SchemaTree struct {
	keys     []string
	children map[string]*schemaNode
}

// schemaNode is either a leaf carrying a type name or a branch carrying a
// subtree, never both.
type schemaNode struct {
	leaf   bool
	typ    string
	branch *SchemaTree
}

func newSchemaTree() *SchemaTree {
	return &SchemaTree{children: make(map[string]*schemaNode)}
}

// BuildSchemaTree folds a validated field list into the nested object shape
// implied by the dotted names. Fields are inserted in input order; a later
// field naming the exact path of an earlier one wins.
func BuildSchemaTree(fields []Field) *SchemaTree {
	t := newSchemaTree()
	for _, f := range fields {
		t.insert(strings.Split(f.Name, "."), f.Type)
	}
	return t
}

func (t *SchemaTree) insert(segments []string, typ string) {
	cur := t
	for _, seg := range segments[:len(segments)-1] {
		node, ok := cur.children[seg]
		if !ok {
			node = &schemaNode{branch: newSchemaTree()}
			cur.keys = append(cur.keys, seg)
			cur.children[seg] = node
		}
		if node.leaf {
			// An earlier field already declared this prefix as a scalar.
			// The input contradicts itself; drop the deeper path instead
			// of failing the batch.
			return
		}
		cur = node.branch
	}

	last := segments[len(segments)-1]
	if _, ok := cur.children[last]; !ok {
		cur.keys = append(cur.keys, last)
	}
	// Unconditional: a terminal assignment collapses any subtree an earlier,
	// longer path left at this key.
	cur.children[last] = &schemaNode{leaf: true, typ: typ}
}

// String renders the tree with the default two-space indent.
func (t *SchemaTree) String() string {
	return t.Render(2)
}

// Render returns the tree as a brace-delimited, line-oriented type
// description. Keys appear in first-insertion order, terminals as
// "<key>: <type>;" and subtrees as recursively rendered blocks indented one
// level deeper. Rendering never mutates the tree and is deterministic for a
// given tree and indent.
func (t *SchemaTree) Render(indent int) string {
	var b strings.Builder
	t.render(&b, indent)
	return b.String()
}

func (t *SchemaTree) render(b *strings.Builder, indent int) {
	b.WriteString("{\n")
	pad := strings.Repeat(" ", indent)
	for _, key := range t.keys {
		node := t.children[key]
		b.WriteString(pad)
		b.WriteString(key)
		b.WriteString(": ")
		if node.leaf {
			b.WriteString(node.typ)
		} else {
			node.branch.render(b, indent+2)
		}
		b.WriteString(";\n")
	}
	b.WriteString(strings.Repeat(" ", indent-2))
	b.WriteString("}")
}
