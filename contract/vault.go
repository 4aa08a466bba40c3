package contract

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	"github.com/cryptoquick/sapio/clause"
	"github.com/cryptoquick/sapio/template"
)

// VaultParams configures a stepped withdrawal vault.
type VaultParams struct {
	// HotKey receives each withdrawal step, gated by the maturity delay.
	HotKey *ec.PublicKey

	// ColdKey can reclaim funds at any point: from the vault directly, or
	// by undoing an in-flight withdrawal before it matures.
	ColdKey *ec.PublicKey

	// Steps is the number of withdrawal steps the vault is divided into.
	Steps int

	// AmountPerStep is the satoshi amount released per step.
	AmountPerStep uint64

	// Mature is the absolute locktime the hot key must wait out before
	// claiming a withdrawn step.
	Mature uint32
}

// Vault is a compiled stepped-withdrawal contract: a chain of committed
// templates where each step releases one tranche to the hot key (undoable
// by the cold key until maturity) and re-commits the remainder, and every
// level has an escape path sweeping everything to cold storage.
type Vault struct {
	// Graph holds every template in the contract.
	Graph *Graph

	// StepHashes[i] is the digest of the i-th withdrawal step template.
	StepHashes []chainhash.Hash

	// ColdHashes[i] is the digest of the to-cold escape template available
	// at step i.
	ColdHashes []chainhash.Hash

	// LockingScript is the script the funding output must pay to: a choice
	// between committing to the first step or to the full cold sweep.
	LockingScript *script.Script
}

// TotalAmount returns the amount the funding output must carry.
func (p VaultParams) TotalAmount() uint64 {
	return uint64(p.Steps) * p.AmountPerStep
}

// BuildVault compiles the vault into its template graph. Templates are
// built from the last step backwards, so every committed digest exists
// before the parent output that embeds it.
func BuildVault(p VaultParams) (*Vault, error) {
	if p.HotKey == nil || p.ColdKey == nil {
		return nil, fmt.Errorf("%w: vault requires hot and cold keys", ErrInvalidParams)
	}
	if p.Steps < 1 {
		return nil, fmt.Errorf("%w: vault requires at least one step", ErrInvalidParams)
	}
	if p.AmountPerStep == 0 {
		return nil, fmt.Errorf("%w: zero amount per step", ErrInvalidParams)
	}
	if p.Mature == 0 {
		return nil, fmt.Errorf("%w: zero maturity locktime", ErrInvalidParams)
	}

	coldAddr, err := script.NewAddressFromPublicKey(p.ColdKey, true)
	if err != nil {
		return nil, fmt.Errorf("%w: cold address: %w", ErrInvalidParams, err)
	}
	coldScript, err := p2pkh.Lock(coldAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: cold lock script: %w", ErrInvalidParams, err)
	}

	// Withdrawal tranche: cold can undo at any time, hot collects after
	// the maturity delay.
	undoSend, err := clause.Compile(clause.Or{
		A: clause.SignedBy{Key: p.ColdKey},
		B: clause.And{
			A: clause.After{Time: p.Mature},
			B: clause.SignedBy{Key: p.HotKey},
		},
	})
	if err != nil {
		return nil, err
	}

	g := NewGraph()
	steps := make([]chainhash.Hash, p.Steps)
	colds := make([]chainhash.Hash, p.Steps)

	for i := p.Steps - 1; i >= 0; i-- {
		remaining := uint64(p.Steps-i) * p.AmountPerStep

		cold, err := buildColdSweep(i, remaining, coldScript)
		if err != nil {
			return nil, err
		}
		if err := g.Add(cold); err != nil {
			return nil, err
		}
		colds[i] = cold.Hash()

		step, err := buildStep(i, p, undoSend, steps, colds)
		if err != nil {
			return nil, err
		}
		if err := g.Add(step); err != nil {
			return nil, err
		}
		steps[i] = step.Hash()
	}

	lockingScript, err := vaultChoice(steps[0], colds[0])
	if err != nil {
		return nil, err
	}

	return &Vault{
		Graph:         g,
		StepHashes:    steps,
		ColdHashes:    colds,
		LockingScript: lockingScript,
	}, nil
}

// buildColdSweep commits everything remaining at step i to cold storage.
func buildColdSweep(i int, remaining uint64, coldScript *script.Script) (*template.Template, error) {
	b := template.NewBuilder()
	if err := b.SetLabel(fmt.Sprintf("to-cold-%d", i)); err != nil {
		return nil, err
	}
	if err := b.SetColor("blue"); err != nil {
		return nil, err
	}
	if err := b.AddOutput(remaining, coldScript, template.NewMetadata()); err != nil {
		return nil, err
	}
	return b.Finalize(0)
}

// buildStep commits one withdrawal tranche plus, when steps remain, the
// re-vaulted remainder pointing at the next level's templates.
func buildStep(i int, p VaultParams, undoSend *script.Script, steps, colds []chainhash.Hash) (*template.Template, error) {
	b := template.NewBuilder()
	if err := b.SetLabel(fmt.Sprintf("step-%d", i)); err != nil {
		return nil, err
	}
	tranche := template.Metadata{Label: "withdrawal"}
	if err := b.AddOutput(p.AmountPerStep, undoSend, tranche); err != nil {
		return nil, err
	}

	if i < p.Steps-1 {
		next, err := vaultChoice(steps[i+1], colds[i+1])
		if err != nil {
			return nil, err
		}
		revault := uint64(p.Steps-i-1) * p.AmountPerStep
		if err := b.AddOutput(revault, next, template.Metadata{Label: "re-vault"}); err != nil {
			return nil, err
		}
	}
	return b.Finalize(0)
}

// vaultChoice compiles the spend choice at one vault level: commit to the
// next withdrawal step, or sweep everything to cold.
func vaultChoice(step, cold chainhash.Hash) (*script.Script, error) {
	return clause.Compile(clause.Or{
		A: clause.CheckTemplateVerify{Hash: step},
		B: clause.CheckTemplateVerify{Hash: cold},
	})
}
