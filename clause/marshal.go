package clause

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// Clause type tags in the persisted policy representation.
const (
	typeSatisfied = "satisfied"
	typeSignedBy  = "signed_by"
	typePreimage  = "sha256_preimage"
	typeAfter     = "after"
	typeCTV       = "check_template_verify"
	typeAnd       = "and"
	typeOr        = "or"
)

// envelope is the wire form of a clause: a type tag plus the fields the
// tagged variant uses.
type envelope struct {
	Type string          `json:"type"`
	Key  string          `json:"key,omitempty"`
	Hash string          `json:"hash,omitempty"`
	Time uint32          `json:"time,omitempty"`
	A    json.RawMessage `json:"a,omitempty"`
	B    json.RawMessage `json:"b,omitempty"`
}

// Marshal serializes a clause to its persisted policy representation.
func Marshal(c Clause) (json.RawMessage, error) {
	env, err := toEnvelope(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func toEnvelope(c Clause) (*envelope, error) {
	switch v := c.(type) {
	case nil:
		return nil, ErrNilClause
	case Satisfied:
		return &envelope{Type: typeSatisfied}, nil
	case SignedBy:
		if v.Key == nil {
			return nil, fmt.Errorf("%w: SignedBy with nil key", ErrNilClause)
		}
		return &envelope{Type: typeSignedBy, Key: hex.EncodeToString(v.Key.Compressed())}, nil
	case PreimageSha256:
		return &envelope{Type: typePreimage, Hash: hex.EncodeToString(v.Hash[:])}, nil
	case After:
		return &envelope{Type: typeAfter, Time: v.Time}, nil
	case CheckTemplateVerify:
		return &envelope{Type: typeCTV, Hash: hex.EncodeToString(v.Hash[:])}, nil
	case And:
		return combineEnvelope(typeAnd, v.A, v.B)
	case Or:
		return combineEnvelope(typeOr, v.A, v.B)
	default:
		return nil, ErrUnknownClause
	}
}

func combineEnvelope(tag string, a, b Clause) (*envelope, error) {
	rawA, err := Marshal(a)
	if err != nil {
		return nil, err
	}
	rawB, err := Marshal(b)
	if err != nil {
		return nil, err
	}
	return &envelope{Type: tag, A: rawA, B: rawB}, nil
}

// Unmarshal parses a clause from its persisted policy representation.
func Unmarshal(data []byte) (Clause, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	switch env.Type {
	case typeSatisfied:
		return Satisfied{}, nil

	case typeSignedBy:
		keyBytes, err := hex.DecodeString(env.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: key hex: %w", ErrDecode, err)
		}
		key, err := ec.PublicKeyFromBytes(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: public key: %w", ErrDecode, err)
		}
		return SignedBy{Key: key}, nil

	case typePreimage:
		var c PreimageSha256
		if err := decodeHash32(env.Hash, c.Hash[:]); err != nil {
			return nil, err
		}
		return c, nil

	case typeAfter:
		return After{Time: env.Time}, nil

	case typeCTV:
		var h chainhash.Hash
		if err := decodeHash32(env.Hash, h[:]); err != nil {
			return nil, err
		}
		return CheckTemplateVerify{Hash: h}, nil

	case typeAnd, typeOr:
		a, err := Unmarshal(env.A)
		if err != nil {
			return nil, err
		}
		b, err := Unmarshal(env.B)
		if err != nil {
			return nil, err
		}
		if env.Type == typeAnd {
			return And{A: a, B: b}, nil
		}
		return Or{A: a, B: b}, nil

	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnknownClause, env.Type)
	}
}

func decodeHash32(s string, dst []byte) error {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: hash hex: %w", ErrDecode, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: hash must be 32 bytes, got %d", ErrDecode, len(raw))
	}
	copy(dst, raw)
	return nil
}
