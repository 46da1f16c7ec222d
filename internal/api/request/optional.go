package request

import (
	"encoding/json"
	"fmt"
)

// FieldState distinguishes the three update cases for an optional field.
// A field absent from the payload is left unchanged, an explicit null clears
// it back to the default, and a present value sets it. Collapsing the first
// two cases is exactly the bug these types exist to prevent.
type FieldState int

const (
	FieldUnchanged FieldState = iota
	FieldCleared
	FieldSet
)

// OptionalInt is a three-state integer field (node_quota).
type OptionalInt struct {
	State FieldState
	Value int64
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		o.State = FieldCleared
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return fmt.Errorf("expected integer or null: %w", err)
	}
	o.State = FieldSet
	return nil
}

// OptionalLifetime is a three-state duration field. A set value is either a
// JSON number (seconds) or a duration token ("2h"); the token is kept raw here
// and parsed by the quota policy in core.
type OptionalLifetime struct {
	State   FieldState
	Seconds int64
	Token   string
	IsToken bool
}

func (o *OptionalLifetime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		o.State = FieldCleared
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &o.Token); err != nil {
			return err
		}
		o.IsToken = true
		o.State = FieldSet
		return nil
	}
	if err := json.Unmarshal(data, &o.Seconds); err != nil {
		return fmt.Errorf("expected seconds, duration string or null: %w", err)
	}
	o.State = FieldSet
	return nil
}
