// Package clause implements the boolean-composable spending condition
// language consumed by transaction templates. A clause tree built from
// AND/OR combinators over signature, preimage, timelock, and
// template-commitment leaves is normalized into disjunctive normal form
// and compiled into a locking script for the ledger.
package clause

import (
	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// LockTimeThreshold separates block-height locktimes from unix-time
// locktimes, per the ledger's consensus rule.
const LockTimeThreshold = uint32(500000000)

// Clause is a spending condition. Clauses compose with And and Or; a
// flat sequence of clauses on one template composes with AND semantics.
type Clause interface {
	clause()
}

// Satisfied is the trivially true condition.
type Satisfied struct{}

// SignedBy requires a signature from the holder of Key.
type SignedBy struct {
	Key *ec.PublicKey
}

// PreimageSha256 requires revealing a preimage whose SHA256 equals Hash.
type PreimageSha256 struct {
	Hash [32]byte
}

// After requires the spending transaction's locktime to have reached Time.
// Values below LockTimeThreshold are block heights, above are unix times.
type After struct {
	Time uint32
}

// CheckTemplateVerify requires the spending transaction to match the
// committed template identified by Hash. This is the covenant leaf that
// links a parent output to a child template in the compilation DAG.
type CheckTemplateVerify struct {
	Hash chainhash.Hash
}

// And is satisfied when both sub-clauses are satisfied.
type And struct {
	A, B Clause
}

// Or is satisfied when either sub-clause is satisfied.
type Or struct {
	A, B Clause
}

func (Satisfied) clause()           {}
func (SignedBy) clause()            {}
func (PreimageSha256) clause()      {}
func (After) clause()               {}
func (CheckTemplateVerify) clause() {}
func (And) clause()                 {}
func (Or) clause()                  {}
