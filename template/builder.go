package template

import (
	"encoding/json"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"

	"github.com/cryptoquick/sapio/clause"
)

const (
	// DefaultVersion is the transaction version used for committed bodies.
	DefaultVersion = uint32(2)

	// DefaultLockTime is the locktime used for committed bodies.
	DefaultLockTime = uint32(0)
)

// Builder is the only supplier of Template values. It accumulates outputs
// and guards, validates the value bounds, and computes the transaction
// body and digest exactly once at Finalize. A Builder is exclusively owned
// by one compilation step; it is not safe for concurrent mutation.
//
// A failed Finalize leaves the pending state untouched, so the caller can
// correct the inputs and finalize again. A successful Finalize consumes
// the Builder: every later call fails with ErrAlreadyFinalized.
type Builder struct {
	outputs    []Output
	guards     []clause.Clause
	version    uint32
	lockTime   uint32
	sequence   uint32
	max        uint64
	maxSet     bool
	minFeerate *uint64
	metadata   Metadata
	finalized  bool
}

// NewBuilder returns a Builder with the fixed version/locktime policy and
// the default input sequence number.
func NewBuilder() *Builder {
	return &Builder{
		version:  DefaultVersion,
		lockTime: DefaultLockTime,
		sequence: transaction.DefaultSequenceNumber,
	}
}

// AddOutput appends a payment of amount satoshis to lockingScript, with
// optional metadata. Output order is insertion order and is fixed in the
// committed transaction body.
func (b *Builder) AddOutput(amount uint64, lockingScript *script.Script, meta Metadata) error {
	if b.finalized {
		return ErrAlreadyFinalized
	}
	if lockingScript == nil {
		return fmt.Errorf("%w: nil locking script", ErrMalformedInput)
	}
	if total := b.pendingTotal(); total+amount < total {
		return fmt.Errorf("%w: output overflows total amount", ErrAmountExceeded)
	}
	b.outputs = append(b.outputs, Output{
		Amount:        amount,
		LockingScript: lockingScript,
		Metadata:      meta,
	})
	return nil
}

// AddGuard appends a spending condition. Guards compose with AND
// semantics, so independent compilation steps may each add their own.
func (b *Builder) AddGuard(g clause.Clause) error {
	if b.finalized {
		return ErrAlreadyFinalized
	}
	if g == nil {
		return fmt.Errorf("%w: nil guard", ErrMalformedInput)
	}
	b.guards = append(b.guards, g)
	return nil
}

// SetMax declares the upper bound on total value this template may
// receive. When never set, the bound defaults to the output total at
// Finalize.
func (b *Builder) SetMax(amount uint64) error {
	if b.finalized {
		return ErrAlreadyFinalized
	}
	b.max = amount
	b.maxSet = true
	return nil
}

// SetMinFeerate declares the minimum feerate in sat/vbyte the compiler
// must enforce when sizing the parent transaction's fee.
func (b *Builder) SetMinFeerate(satsPerVByte uint64) error {
	if b.finalized {
		return ErrAlreadyFinalized
	}
	b.minFeerate = &satsPerVByte
	return nil
}

// SetLockTime overrides the default locktime of the committed body.
// Locktime is digest-relevant.
func (b *Builder) SetLockTime(lockTime uint32) error {
	if b.finalized {
		return ErrAlreadyFinalized
	}
	b.lockTime = lockTime
	return nil
}

// SetSequence overrides the sequence number of the committed body's input.
// Sequence numbers are digest-relevant; a value below the default enables
// relative timelock semantics on the ledger.
func (b *Builder) SetSequence(sequence uint32) error {
	if b.finalized {
		return ErrAlreadyFinalized
	}
	b.sequence = sequence
	return nil
}

// SetLabel sets the metadata label.
func (b *Builder) SetLabel(label string) error {
	if b.finalized {
		return ErrAlreadyFinalized
	}
	b.metadata.Label = label
	return nil
}

// SetColor sets the metadata display color.
func (b *Builder) SetColor(color string) error {
	if b.finalized {
		return ErrAlreadyFinalized
	}
	b.metadata.Color = color
	return nil
}

// SetExtra sets an open-ended metadata extension entry. The label and
// color keys are reserved.
func (b *Builder) SetExtra(key string, value json.RawMessage) error {
	if b.finalized {
		return ErrAlreadyFinalized
	}
	if key == metadataKeyLabel || key == metadataKeyColor {
		return fmt.Errorf("%w: reserved metadata key %q", ErrMalformedInput, key)
	}
	if b.metadata.Extra == nil {
		b.metadata.Extra = make(map[string]json.RawMessage)
	}
	b.metadata.Extra[key] = value
	return nil
}

// Finalize validates the pending state, materializes the transaction body,
// computes the commitment digest scoped to ctvIndex, and returns the
// frozen Template. Current ledgers fix ctvIndex at 0; the parameter exists
// so future multi-input schemes are not a breaking change.
func (b *Builder) Finalize(ctvIndex uint32) (*Template, error) {
	if b.finalized {
		return nil, ErrAlreadyFinalized
	}
	if len(b.outputs) == 0 {
		return nil, ErrEmptyOutputSet
	}

	total := b.pendingTotal()
	max := total
	if b.maxSet {
		if total > b.max {
			return nil, fmt.Errorf("%w: total %d sat > max %d sat",
				ErrAmountExceeded, total, b.max)
		}
		max = b.max
	}

	tx := transaction.NewTransaction()
	tx.Version = b.version
	tx.LockTime = b.lockTime
	tx.AddInput(&transaction.TransactionInput{
		SourceTXID:       &chainhash.Hash{},
		SourceTxOutIndex: 0xffffffff,
		SequenceNumber:   b.sequence,
	})
	for _, o := range b.outputs {
		tx.AddOutput(&transaction.TransactionOutput{
			Satoshis:      o.Amount,
			LockingScript: o.LockingScript,
		})
	}

	t := &Template{
		guards:     append([]clause.Clause(nil), b.guards...),
		ctv:        TemplateHash(tx, ctvIndex),
		ctvIndex:   ctvIndex,
		max:        max,
		minFeerate: b.minFeerate,
		metadata:   b.metadata,
		tx:         tx,
		outputs:    append([]Output(nil), b.outputs...),
	}
	b.finalized = true
	return t, nil
}

// pendingTotal sums the pending output amounts. AddOutput rejects
// additions that would overflow, so the sum is exact.
func (b *Builder) pendingTotal() uint64 {
	var total uint64
	for _, o := range b.outputs {
		total += o.Amount
	}
	return total
}
