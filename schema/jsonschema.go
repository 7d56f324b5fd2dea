package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

var reflector = &jsonschema.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// JSONSchema returns the JSON Schema document describing v.
// Field metadata is read from `jsonschema:"title=..,description=.."` struct tags.
func JSONSchema(v any) json.RawMessage {
	s := reflector.Reflect(v)
	s.Version = ""
	bs, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return bs
}
