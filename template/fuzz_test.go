package template

import (
	"encoding/json"
	"testing"
	"unicode/utf8"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

// FuzzTemplateHashDeterministic checks the digest is total and
// deterministic over arbitrary well-formed bodies.
func FuzzTemplateHashDeterministic(f *testing.F) {
	f.Add(uint32(2), uint32(0), uint32(0xffffffff), uint64(546), []byte{0x51}, uint32(0))
	f.Add(uint32(1), uint32(500000000), uint32(0), uint64(0), []byte{}, uint32(1))
	f.Add(uint32(2), uint32(144), uint32(0xfffffffe), uint64(21000000), make([]byte, 520), uint32(0))

	f.Fuzz(func(t *testing.T, version, lockTime, sequence uint32, amount uint64, scriptBytes []byte, idx uint32) {
		build := func() *transaction.Transaction {
			tx := transaction.NewTransaction()
			tx.Version = version
			tx.LockTime = lockTime
			tx.AddInput(&transaction.TransactionInput{
				SourceTXID:     &chainhash.Hash{},
				SequenceNumber: sequence,
			})
			tx.AddOutput(&transaction.TransactionOutput{
				Satoshis:      amount,
				LockingScript: script.NewFromBytes(scriptBytes),
			})
			return tx
		}

		first := TemplateHash(build(), idx)
		second := TemplateHash(build(), idx)
		if first != second {
			t.Fatalf("digest not deterministic: %s != %s", first, second)
		}
	})
}

// FuzzMetadataRoundTrip checks the flattened metadata encoding survives a
// round trip for arbitrary label/color strings.
func FuzzMetadataRoundTrip(f *testing.F) {
	f.Add("", "")
	f.Add("a label", "#ff0000")
	f.Add("label", "")

	f.Fuzz(func(t *testing.T, label, color string) {
		if !utf8.ValidString(label) || !utf8.ValidString(color) {
			return // encoding/json replaces invalid UTF-8
		}
		m := Metadata{Label: label, Color: color}

		data, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Metadata
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if back.Label != label || back.Color != color {
			t.Fatalf("round trip changed fields: %+v != %+v", back, m)
		}
		if m.IsEmpty() != back.IsEmpty() {
			t.Fatal("emptiness changed across round trip")
		}
	})
}
