package template

import (
	"encoding/hex"
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// p2pkhScript returns a P2PKH locking script paying to a hash filled with
// the given byte.
func p2pkhScript(fill byte) *script.Script {
	b := []byte{script.OpDUP, script.OpHASH160, 0x14}
	for i := 0; i < 20; i++ {
		b = append(b, fill)
	}
	b = append(b, script.OpEQUALVERIFY, script.OpCHECKSIG)
	return script.NewFromBytes(b)
}

// testTx builds a transaction body the way the Builder does: version 2,
// locktime 0, one input with the final sequence number.
func testTx(amounts []uint64, fills []byte) *transaction.Transaction {
	tx := transaction.NewTransaction()
	tx.Version = 2
	tx.LockTime = 0
	tx.AddInput(&transaction.TransactionInput{
		SourceTXID:       &chainhash.Hash{},
		SourceTxOutIndex: 0xffffffff,
		SequenceNumber:   0xffffffff,
	})
	for i, amount := range amounts {
		tx.AddOutput(&transaction.TransactionOutput{
			Satoshis:      amount,
			LockingScript: p2pkhScript(fills[i]),
		})
	}
	return tx
}

// Fixed vectors, reproducible by any independent implementation of the
// serialization rules.
func TestTemplateHash_KnownVectors(t *testing.T) {
	tx := testTx([]uint64{300, 400}, []byte{0x11, 0x22})

	idx0 := TemplateHash(tx, 0)
	assert.Equal(t, "31b8b531a43364d9b205b1c345ae60f3a0fba1658ca9625e628895e272838fa8",
		hex.EncodeToString(idx0[:]))

	idx1 := TemplateHash(tx, 1)
	assert.Equal(t, "11a36e7448aa9b607a51bd492f9918882096e0cdb21717142752e7d6b7566ced",
		hex.EncodeToString(idx1[:]))

	single := TemplateHash(testTx([]uint64{546}, []byte{0x11}), 0)
	assert.Equal(t, "ea645a0bc709a0716e93f0e8a9303b53c1d38d94b429bcb5a0bd9b0fc8e2a1cc",
		hex.EncodeToString(single[:]))
}

func TestTemplateHash_Deterministic(t *testing.T) {
	tx := testTx([]uint64{300, 400}, []byte{0x11, 0x22})

	first := TemplateHash(tx, 0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TemplateHash(tx, 0))
	}

	// An independently constructed equal body hashes identically.
	other := testTx([]uint64{300, 400}, []byte{0x11, 0x22})
	assert.Equal(t, first, TemplateHash(other, 0))
}

func TestTemplateHash_Sensitivity(t *testing.T) {
	base := TemplateHash(testTx([]uint64{300, 400}, []byte{0x11, 0x22}), 0)

	tests := []struct {
		name   string
		mutate func(tx *transaction.Transaction)
	}{
		{"version", func(tx *transaction.Transaction) { tx.Version = 1 }},
		{"locktime", func(tx *transaction.Transaction) { tx.LockTime = 1 }},
		{"sequence", func(tx *transaction.Transaction) { tx.Inputs[0].SequenceNumber = 0xfffffffe }},
		{"output value", func(tx *transaction.Transaction) { tx.Outputs[0].Satoshis = 301 }},
		{"output script", func(tx *transaction.Transaction) { tx.Outputs[1].LockingScript = p2pkhScript(0x33) }},
		{"output count", func(tx *transaction.Transaction) {
			tx.AddOutput(&transaction.TransactionOutput{Satoshis: 1, LockingScript: p2pkhScript(0x44)})
		}},
		{"input count", func(tx *transaction.Transaction) {
			tx.AddInput(&transaction.TransactionInput{
				SourceTXID:     &chainhash.Hash{},
				SequenceNumber: 0xffffffff,
			})
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx := testTx([]uint64{300, 400}, []byte{0x11, 0x22})
			tc.mutate(tx)
			assert.NotEqual(t, base, TemplateHash(tx, 0), "digest must change")
		})
	}

	t.Run("index", func(t *testing.T) {
		tx := testTx([]uint64{300, 400}, []byte{0x11, 0x22})
		assert.NotEqual(t, base, TemplateHash(tx, 1))
	})
}

// Input-side fields other than sequence numbers must not affect the
// digest: the whole point is that the spending input can vary while the
// resulting transaction shape cannot.
func TestTemplateHash_IgnoresInputIdentity(t *testing.T) {
	tx := testTx([]uint64{300, 400}, []byte{0x11, 0x22})
	base := TemplateHash(tx, 0)

	otherTxID, err := chainhash.NewHash(make([]byte, 32))
	require.NoError(t, err)
	otherTxID[0] = 0xab

	tx.Inputs[0].SourceTXID = otherTxID
	tx.Inputs[0].SourceTxOutIndex = 7
	tx.Inputs[0].UnlockingScript = script.NewFromBytes([]byte{script.OpTRUE})

	assert.Equal(t, base, TemplateHash(tx, 0))
}

func TestTemplateHash_EmptyOutputScript(t *testing.T) {
	tx := transaction.NewTransaction()
	tx.Version = 2
	tx.AddInput(&transaction.TransactionInput{
		SourceTXID:     &chainhash.Hash{},
		SequenceNumber: 0xffffffff,
	})
	tx.AddOutput(&transaction.TransactionOutput{Satoshis: 0, LockingScript: nil})

	// Total over well-formed bodies: a nil script hashes as zero-length.
	withNil := TemplateHash(tx, 0)
	tx.Outputs[0].LockingScript = script.NewFromBytes(nil)
	assert.Equal(t, withNil, TemplateHash(tx, 0))
}
