package schema

import "encoding/json"

// Schema is message schema interface
type Schema interface {
	// String returns the text presentation sent to the language model
	String() string
}

// Stringify returns the text presentation of a schema.
// String schemas are returned verbatim, everything else is JSON encoded.
func Stringify(s Schema) string {
	if s == nil {
		return ""
	}
	if v, ok := s.(String); ok {
		return string(v)
	}
	if v, ok := s.(*String); ok {
		return string(*v)
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes returns the bytes presentation of a schema
func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}

// FromValue returns v when it is a Schema, otherwise its JSON encoding as a String schema
func FromValue(v any) Schema {
	if s, ok := v.(Schema); ok {
		return s
	}
	bs, _ := json.Marshal(v)
	return String(bs)
}
