package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// It handles typical structs/maps/slices; time, complex numbers, funcs and
// channels may not round-trip. For custom encoding (protobuf, msgpack, ...)
// implement Codec and pass it where supported.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used when none is configured.
//
// Persisted snapshots are self-describing (they record the codec name in
// their header), so changing the default never breaks existing files.
var Default Codec = GoJSON{}
