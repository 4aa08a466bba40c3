package template

import (
	"encoding/json"
	"fmt"
)

// Metadata is an optional descriptive sidecar attached to a template or
// output. It never affects the template digest. Beyond the standard label
// and color fields it carries an open extension map for forward
// compatibility.
type Metadata struct {
	// Label is a human-readable name for this transaction.
	Label string

	// Color is a display color for rendering this node in a contract graph.
	Color string

	// Extra is a catch-all map for future metadata. Values are kept as raw
	// JSON so arbitrary shapes survive a round trip unchanged.
	Extra map[string]json.RawMessage
}

// NewMetadata returns an empty Metadata.
func NewMetadata() Metadata {
	return Metadata{}
}

// IsEmpty reports whether every field is at its default. Empty Metadata is
// omitted entirely from the persisted representation.
func (m Metadata) IsEmpty() bool {
	return m.Label == "" && m.Color == "" && len(m.Extra) == 0
}

// metadataKeyLabel and metadataKeyColor are reserved in the flattened
// encoding and may not appear in Extra.
const (
	metadataKeyLabel = "label"
	metadataKeyColor = "color"
)

// MarshalJSON encodes the metadata as a single flat object: the label and
// color fields (when set) alongside the extension entries.
func (m Metadata) MarshalJSON() ([]byte, error) {
	flat := make(map[string]json.RawMessage, len(m.Extra)+2)
	for k, v := range m.Extra {
		if k == metadataKeyLabel || k == metadataKeyColor {
			return nil, fmt.Errorf("%w: reserved metadata key %q in extra map", ErrMalformedInput, k)
		}
		flat[k] = v
	}
	if m.Label != "" {
		b, err := json.Marshal(m.Label)
		if err != nil {
			return nil, err
		}
		flat[metadataKeyLabel] = b
	}
	if m.Color != "" {
		b, err := json.Marshal(m.Color)
		if err != nil {
			return nil, err
		}
		flat[metadataKeyColor] = b
	}
	return json.Marshal(flat)
}

// UnmarshalJSON decodes the flat object form produced by MarshalJSON.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	out := Metadata{}
	if raw, ok := flat[metadataKeyLabel]; ok {
		if err := json.Unmarshal(raw, &out.Label); err != nil {
			return fmt.Errorf("%w: metadata label: %w", ErrMalformedInput, err)
		}
		delete(flat, metadataKeyLabel)
	}
	if raw, ok := flat[metadataKeyColor]; ok {
		if err := json.Unmarshal(raw, &out.Color); err != nil {
			return fmt.Errorf("%w: metadata color: %w", ErrMalformedInput, err)
		}
		delete(flat, metadataKeyColor)
	}
	if len(flat) > 0 {
		out.Extra = flat
	}
	*m = out
	return nil
}
