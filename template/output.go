package template

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
)

// Output is a single payment destination within a template: an amount in
// satoshis and the locking script the funds are bound to. The locking script
// may embed another template's digest, which is how the contract compilation
// DAG is formed. The metadata never contributes to the digest.
type Output struct {
	// Amount is the output value in satoshis.
	Amount uint64

	// LockingScript is the script the amount is paid to.
	LockingScript *script.Script

	// Metadata is optional descriptive information about this output.
	Metadata Metadata
}

// outputJSON is the persisted form of an Output.
type outputJSON struct {
	Amount   uint64           `json:"amount"`
	Script   string           `json:"script"`
	Metadata *json.RawMessage `json:"metadata,omitempty"`
}

// MarshalJSON encodes the output with the script as hex. Empty metadata is
// omitted.
func (o Output) MarshalJSON() ([]byte, error) {
	if o.LockingScript == nil {
		return nil, fmt.Errorf("%w: output has nil locking script", ErrMalformedInput)
	}
	rec := outputJSON{
		Amount: o.Amount,
		Script: hex.EncodeToString(o.LockingScript.Bytes()),
	}
	if !o.Metadata.IsEmpty() {
		raw, err := json.Marshal(o.Metadata)
		if err != nil {
			return nil, err
		}
		msg := json.RawMessage(raw)
		rec.Metadata = &msg
	}
	return json.Marshal(rec)
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (o *Output) UnmarshalJSON(data []byte) error {
	// Reject negative amounts before the uint64 field silently wraps.
	var probe struct {
		Amount json.Number `json:"amount"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if len(probe.Amount) > 0 && probe.Amount[0] == '-' {
		return fmt.Errorf("%w: negative output amount %s", ErrMalformedInput, probe.Amount)
	}

	var rec outputJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	scriptBytes, err := hex.DecodeString(rec.Script)
	if err != nil {
		return fmt.Errorf("%w: output script hex: %w", ErrMalformedInput, err)
	}
	out := Output{
		Amount:        rec.Amount,
		LockingScript: script.NewFromBytes(scriptBytes),
	}
	if rec.Metadata != nil {
		if err := json.Unmarshal(*rec.Metadata, &out.Metadata); err != nil {
			return err
		}
	}
	*o = out
	return nil
}
