// Package template models hash-committed transaction templates for a
// covenant-style ledger primitive: an immutable description of a future
// transaction's outputs, value bounds, and spending guards, bound together
// by a deterministic commitment digest. Templates are produced exclusively
// by a Builder so the cached digest can never drift from the transaction
// body it was computed over.
package template

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/transaction"

	"github.com/cryptoquick/sapio/clause"
)

// Template holds the data needed to construct a committed transaction,
// along with its guards, value bounds, and metadata. All fields are frozen
// at Finalize; a "modified" template is a new template from a new Builder.
type Template struct {
	guards     []clause.Clause
	ctv        chainhash.Hash
	ctvIndex   uint32
	max        uint64
	minFeerate *uint64
	metadata   Metadata
	tx         *transaction.Transaction
	outputs    []Output
}

// Hash returns the cached commitment digest of this template.
func (t *Template) Hash() chainhash.Hash {
	return t.ctv
}

// CtvIndex returns the input index the digest is scoped to. Currently
// always 0; the Builder accepts other indexes for future multi-input
// schemes.
func (t *Template) CtvIndex() uint32 {
	return t.ctvIndex
}

// Max returns the upper bound on total value this template may receive.
func (t *Template) Max() uint64 {
	return t.max
}

// MinFeerate returns the minimum feerate in sat/vbyte the parent
// transaction must pay, and whether one was declared.
func (t *Template) MinFeerate() (uint64, bool) {
	if t.minFeerate == nil {
		return 0, false
	}
	return *t.minFeerate, true
}

// Metadata returns the descriptive metadata attached to this template.
func (t *Template) Metadata() Metadata {
	return t.metadata
}

// Guards returns the spending conditions attached to this template. All
// guards must be satisfied (AND composition) for the template transaction
// to be broadcast.
func (t *Template) Guards() []clause.Clause {
	out := make([]clause.Clause, len(t.guards))
	copy(out, t.guards)
	return out
}

// Outputs returns the resolved outputs. Outputs[i] corresponds to output i
// of the transaction body.
func (t *Template) Outputs() []Output {
	out := make([]Output, len(t.outputs))
	copy(out, t.outputs)
	return out
}

// Tx returns a copy of the committed transaction body.
func (t *Template) Tx() *transaction.Transaction {
	cp, err := transaction.NewTransactionFromBytes(t.tx.Bytes())
	if err != nil {
		// The body was serialized by the Builder; it always reparses.
		panic(fmt.Sprintf("template: reparse committed tx: %v", err))
	}
	return cp
}

// TxBytes returns the canonical serialization of the committed transaction
// body.
func (t *Template) TxBytes() []byte {
	return t.tx.Bytes()
}

// TotalAmount recomputes the total amount spent in this template. This is
// the amount that must be sent to this template for its transaction to
// succeed.
func (t *Template) TotalAmount() uint64 {
	var total uint64
	for _, o := range t.outputs {
		total += o.Amount
	}
	return total
}

// Verify recomputes the digest and cross-checks the output set against the
// transaction body. It returns ErrInvariantViolation if anything disagrees
// with the cached values. Templates produced by a Builder always pass;
// this exists for records received from external sources, where accepting
// a mismatch would mean accepting a forged commitment.
func (t *Template) Verify() error {
	if got := TemplateHash(t.tx, t.ctvIndex); got != t.ctv {
		return fmt.Errorf("%w: recomputed digest %s != cached %s",
			ErrInvariantViolation, hashHex(got), hashHex(t.ctv))
	}
	if len(t.outputs) != len(t.tx.Outputs) {
		return fmt.Errorf("%w: %d output records for %d tx outputs",
			ErrInvariantViolation, len(t.outputs), len(t.tx.Outputs))
	}
	for i, o := range t.outputs {
		if o.Amount != t.tx.Outputs[i].Satoshis {
			return fmt.Errorf("%w: output %d amount %d != tx value %d",
				ErrInvariantViolation, i, o.Amount, t.tx.Outputs[i].Satoshis)
		}
	}
	if total := t.TotalAmount(); total > t.max {
		return fmt.Errorf("%w: total %d sat exceeds max %d sat",
			ErrAmountExceeded, total, t.max)
	}
	return nil
}
