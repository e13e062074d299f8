package tools

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/kode4food/nebula/pkg/api"
)

// ExtractTool copies the value found at a gjson path into a target state
// entry. The path is applied to the source entry, or to the whole state
// when no source is named
type ExtractTool struct {
	source api.Name
	path   string
	target api.Name
	def    any
	hasDef bool
}

// NewExtractTool creates an extract tool. A non-empty def is a JSON literal
// written to target when the path does not match
func NewExtractTool(
	source api.Name, path string, target api.Name, def string,
) (*ExtractTool, error) {
	t := &ExtractTool{
		source: source,
		path:   path,
		target: target,
	}
	if def != "" {
		if !gjson.Valid(def) {
			return nil, fmt.Errorf("%w: invalid default %q",
				api.ErrInvalidToolDefinition, def)
		}
		t.def = gjson.Parse(def).Value()
		t.hasDef = true
	}
	return t, nil
}

// Transform evaluates the path and writes the result to the target entry
func (t *ExtractTool) Transform(st api.State) (api.State, error) {
	doc, err := t.document(st)
	if err != nil {
		return nil, err
	}

	res := gjson.GetBytes(doc, t.path)
	switch {
	case res.Exists():
		return st.Set(t.target, res.Value()), nil
	case t.hasDef:
		return st.Set(t.target, t.def), nil
	default:
		return st, nil
	}
}

func (t *ExtractTool) document(st api.State) ([]byte, error) {
	if t.source == "" {
		return json.Marshal(st)
	}

	switch v := st[t.source].(type) {
	case string:
		if gjson.Valid(v) {
			return []byte(v), nil
		}
		return json.Marshal(v)
	default:
		return json.Marshal(v)
	}
}
