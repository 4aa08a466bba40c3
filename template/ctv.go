package template

import (
	"bytes"
	"encoding/binary"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

// TemplateHash computes the covenant commitment digest for a transaction
// body, scoped to the given input index. The digest binds every field that
// determines the resulting transaction shape while deliberately excluding
// input scripts and witness data, so the spending input can vary without
// changing the commitment.
//
// Concatenation order, all integers little-endian:
//
//	version       (4 bytes)
//	locktime      (4 bytes)
//	input count   (4 bytes)
//	SHA256(sequence numbers, 4 bytes each)
//	output count  (4 bytes)
//	SHA256(outputs, each as value(8) || varint(len script) || script)
//	input index   (4 bytes)
//
// The whole concatenation is hashed once with SHA256. The output
// serialization matches the ledger's canonical transaction encoding
// byte-for-byte; any deviation breaks interoperability with the ledger's
// verification rule.
func TemplateHash(tx *transaction.Transaction, inputIndex uint32) chainhash.Hash {
	var buf bytes.Buffer
	writeUint32(&buf, tx.Version)
	writeUint32(&buf, tx.LockTime)
	writeUint32(&buf, uint32(len(tx.Inputs)))
	buf.Write(sequenceHash(tx))
	writeUint32(&buf, uint32(len(tx.Outputs)))
	buf.Write(outputsHash(tx))
	writeUint32(&buf, inputIndex)

	var digest chainhash.Hash
	copy(digest[:], bsvhash.Sha256(buf.Bytes()))
	return digest
}

// sequenceHash hashes the concatenated sequence numbers of all inputs.
func sequenceHash(tx *transaction.Transaction) []byte {
	var buf bytes.Buffer
	for _, in := range tx.Inputs {
		writeUint32(&buf, in.SequenceNumber)
	}
	return bsvhash.Sha256(buf.Bytes())
}

// outputsHash hashes the concatenated canonical serializations of all
// outputs.
func outputsHash(tx *transaction.Transaction) []byte {
	var buf bytes.Buffer
	for _, out := range tx.Outputs {
		writeUint64(&buf, out.Satoshis)
		var scriptBytes []byte
		if out.LockingScript != nil {
			scriptBytes = out.LockingScript.Bytes()
		}
		writeVarInt(&buf, uint64(len(scriptBytes)))
		buf.Write(scriptBytes)
	}
	return bsvhash.Sha256(buf.Bytes())
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

// writeVarInt writes a Bitcoin CompactSize length prefix.
func writeVarInt(buf *bytes.Buffer, v uint64) {
	switch {
	case v < 0xfd:
		buf.WriteByte(byte(v))
	case v <= 0xffff:
		buf.WriteByte(0xfd)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		buf.Write(b[:])
	case v <= 0xffffffff:
		buf.WriteByte(0xfe)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		buf.Write(b[:])
	default:
		buf.WriteByte(0xff)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		buf.Write(b[:])
	}
}
