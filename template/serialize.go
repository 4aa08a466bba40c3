package template

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/transaction"

	"github.com/cryptoquick/sapio/clause"
)

// templateJSON is the persisted/exchanged representation of a Template.
// Field names follow the compiler's wire format; the transaction body is
// carried in the ledger's canonical binary encoding, hex wrapped.
type templateJSON struct {
	Guards     []json.RawMessage `json:"additional_preconditions"`
	CTV        string            `json:"precomputed_template_hash"`
	CTVIndex   uint32            `json:"precomputed_template_hash_idx"`
	Max        uint64            `json:"max_amount_sats"`
	MinFeerate *uint64           `json:"min_feerate_sats_vbyte,omitempty"`
	Metadata   *json.RawMessage  `json:"metadata_map_s2s,omitempty"`
	Tx         string            `json:"transaction_literal"`
	Outputs    []Output          `json:"outputs_info"`
}

// MarshalJSON encodes the template. Empty metadata and an unset minimum
// feerate are omitted entirely.
func (t *Template) MarshalJSON() ([]byte, error) {
	rec := templateJSON{
		Guards:     make([]json.RawMessage, 0, len(t.guards)),
		CTV:        hashHex(t.ctv),
		CTVIndex:   t.ctvIndex,
		Max:        t.max,
		MinFeerate: t.minFeerate,
		Tx:         hex.EncodeToString(t.tx.Bytes()),
		Outputs:    t.outputs,
	}
	for i, g := range t.guards {
		raw, err := clause.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("template: encode guard %d: %w", i, err)
		}
		rec.Guards = append(rec.Guards, raw)
	}
	if !t.metadata.IsEmpty() {
		raw, err := json.Marshal(t.metadata)
		if err != nil {
			return nil, err
		}
		msg := json.RawMessage(raw)
		rec.Metadata = &msg
	}
	return json.Marshal(rec)
}

// UnmarshalJSON decodes a persisted template and re-establishes every
// invariant before the value becomes observable. A record whose claimed
// digest does not match its transaction body is rejected rather than
// silently accepted: accepting it would allow a forged commitment.
func (t *Template) UnmarshalJSON(data []byte) error {
	var rec templateJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	txBytes, err := hex.DecodeString(rec.Tx)
	if err != nil {
		return fmt.Errorf("%w: transaction hex: %w", ErrMalformedInput, err)
	}
	body, err := transaction.NewTransactionFromBytes(txBytes)
	if err != nil {
		return fmt.Errorf("%w: transaction body: %w", ErrMalformedInput, err)
	}

	ctvBytes, err := hex.DecodeString(rec.CTV)
	if err != nil {
		return fmt.Errorf("%w: digest hex: %w", ErrMalformedInput, err)
	}
	claimed, err := chainhash.NewHash(ctvBytes)
	if err != nil {
		return fmt.Errorf("%w: digest: %w", ErrMalformedInput, err)
	}

	guards := make([]clause.Clause, 0, len(rec.Guards))
	for i, raw := range rec.Guards {
		g, err := clause.Unmarshal(raw)
		if err != nil {
			return fmt.Errorf("%w: guard %d: %w", ErrMalformedInput, i, err)
		}
		guards = append(guards, g)
	}

	out := Template{
		guards:     guards,
		ctv:        *claimed,
		ctvIndex:   rec.CTVIndex,
		max:        rec.Max,
		minFeerate: rec.MinFeerate,
		tx:         body,
		outputs:    rec.Outputs,
	}
	if rec.Metadata != nil {
		if err := json.Unmarshal(*rec.Metadata, &out.metadata); err != nil {
			return err
		}
	}
	if err := out.Verify(); err != nil {
		return err
	}
	*t = out
	return nil
}

// hashHex renders a digest as forward-order hex, matching the wire
// encoding (no txid-style byte reversal).
func hashHex(h chainhash.Hash) string {
	return hex.EncodeToString(h[:])
}
