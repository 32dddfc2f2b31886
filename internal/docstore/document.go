package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Document is the JSON-canonical form of a stored document: values are limited to
// string, float64, bool, nil, []any and map[string]any.
// Adapters that persist JSON (memstore, sqlitestore) evaluate filters and updates on it.
type Document map[string]any

// ToDocument converts a struct (or map) into its JSON-canonical Document.
func ToDocument(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document must be an object")
	}
	return doc, nil
}

// ParseDocument decodes stored JSON.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Canonical converts a single Go value to its JSON-canonical form.
func Canonical(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ID returns the document id, or "" if it has none.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Bytes returns the JSON encoding of the document. Keys are sorted, so equal documents
// encode identically.
func (d Document) Bytes() ([]byte, error) {
	return json.Marshal(map[string]any(d))
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	data, err := d.Bytes()
	if err != nil {
		return nil
	}
	out, _ := ParseDocument(data)
	return out
}

// Decode decodes the document into out.
func (d Document) Decode(out any) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// DecodeAll decodes docs into out, a pointer to a slice.
func DecodeAll(docs []Document, out any) error {
	if docs == nil {
		docs = []Document{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Match reports whether the document satisfies every condition of f.
func (d Document) Match(f Filter) (bool, error) {
	for _, c := range f {
		ok, err := d.matchCond(c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (d Document) matchCond(c Cond) (bool, error) {
	field, present := d[c.Field]
	switch c.Op {
	case OpEq, OpNe:
		want, err := Canonical(c.Value)
		if err != nil {
			return false, err
		}
		eq := present && reflect.DeepEqual(field, want)
		if !present && want == nil {
			eq = true
		}
		if c.Op == OpNe {
			return !eq, nil
		}
		return eq, nil
	case OpIn:
		values, ok := c.Value.([]string)
		if !ok {
			return false, fmt.Errorf("in condition on %s needs []string", c.Field)
		}
		s, ok := field.(string)
		if !ok {
			return false, nil
		}
		for _, v := range values {
			if v == s {
				return true, nil
			}
		}
		return false, nil
	case OpHas:
		want, err := Canonical(c.Value)
		if err != nil {
			return false, err
		}
		if arr, ok := field.([]any); ok {
			return containsValue(arr, want), nil
		}
		return present && reflect.DeepEqual(field, want), nil
	case OpContainsFold:
		term, _ := c.Value.(string)
		s, ok := field.(string)
		if !ok {
			return false, nil
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(term)), nil
	case OpMinLen:
		n, _ := c.Value.(int)
		arr, ok := field.([]any)
		return ok && len(arr) >= n, nil
	}
	return false, fmt.Errorf("unknown operator %d", c.Op)
}

// Apply applies u in place and reports whether the document changed.
func (d Document) Apply(u Update) (bool, error) {
	before, err := d.Bytes()
	if err != nil {
		return false, err
	}

	for k, v := range u.Set {
		cv, err := Canonical(v)
		if err != nil {
			return false, fmt.Errorf("set %s: %w", k, err)
		}
		d[k] = cv
	}
	for k, v := range u.AddToSet {
		cv, err := Canonical(v)
		if err != nil {
			return false, fmt.Errorf("add to %s: %w", k, err)
		}
		arr := asArray(d[k])
		if !containsValue(arr, cv) {
			arr = append(arr, cv)
		}
		d[k] = arr
	}
	for k, v := range u.Pull {
		cv, err := Canonical(v)
		if err != nil {
			return false, fmt.Errorf("pull from %s: %w", k, err)
		}
		cur, present := d[k]
		if !present {
			continue
		}
		kept := make([]any, 0)
		for _, e := range asArray(cur) {
			if !reflect.DeepEqual(e, cv) {
				kept = append(kept, e)
			}
		}
		d[k] = kept
	}
	for _, k := range u.Unset {
		delete(d, k)
	}

	after, err := d.Bytes()
	if err != nil {
		return false, err
	}
	return !bytes.Equal(before, after), nil
}

func asArray(v any) []any {
	switch x := v.(type) {
	case nil:
		return []any{}
	case []any:
		return x
	default:
		return []any{x}
	}
}

func containsValue(arr []any, v any) bool {
	for _, e := range arr {
		if reflect.DeepEqual(e, v) {
			return true
		}
	}
	return false
}
