package payload

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/stretchr/objx"

	"github.com/artpar/actuate/pkg/hal"
)

// ValueKey holds a payload that could not be converted to a mapping.
const ValueKey = "value"

// Outcome records which flattening rule applied.
type Outcome int

const (
	// Nested means a sequence was placed under the endpoint's relation.
	Nested Outcome = iota
	// Merged means mapping entries were merged at the top level.
	Merged
	// Converted means an object was converted to a mapping and merged.
	Converted
	// Fallback means conversion failed and the payload sits under "value".
	Fallback
)

// String returns the outcome's metric label.
func (o Outcome) String() string {
	switch o {
	case Nested:
		return "nested"
	case Merged:
		return "merged"
	case Converted:
		return "converted"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Flatten turns a payload into properties.
//
// Sequences are nested under rel so a collection never collides with
// sibling fields. Mapping entries are merged as they are. Anything else is
// converted to a mapping when it encodes as a JSON object; otherwise it is
// kept whole under "value". Flatten never fails.
func Flatten(rel string, v Value) (hal.Properties, Outcome) {
	switch v.kind {
	case Sequence:
		props := hal.NewProperties(1)
		props.Set(rel, v.raw)
		return props, Nested

	case Mapping:
		keys := v.m.Keys()
		props := hal.NewProperties(len(keys))
		for _, k := range keys {
			val, _ := v.m.Get(k)
			props.Set(k, val)
		}
		return props, Merged

	default:
		if props, ok := convert(v.raw); ok {
			return props, Converted
		}
		props := hal.NewProperties(1)
		props.Set(ValueKey, v.raw)
		return props, Fallback
	}
}

// convert maps an object onto its JSON object form. Keys keep the order
// in which the encoder wrote them (struct field order).
func convert(x any) (hal.Properties, bool) {
	if x == nil {
		return hal.Properties{}, false
	}
	data, err := json.Marshal(x)
	if err != nil {
		return hal.Properties{}, false
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return hal.Properties{}, false
	}

	m, err := objx.FromJSON(string(data))
	if err != nil {
		return hal.Properties{}, false
	}
	keys, err := objectKeys(data)
	if err != nil {
		return hal.Properties{}, false
	}

	props := hal.NewProperties(len(keys))
	for _, k := range keys {
		props.Set(k, m[k])
	}
	return props, true
}

// objectKeys lists the top-level keys of a JSON object in document order.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
