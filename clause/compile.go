package clause

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
)

// Compile renders a clause as a locking script. The clause is flattened to
// DNF first; a single path compiles to a straight-line script, multiple
// paths compile to an OP_IF/OP_ELSE ladder where the spender selects the
// path with a leading stack boolean per branch.
func Compile(c Clause) (*script.Script, error) {
	paths, err := Flatten(c)
	if err != nil {
		return nil, err
	}
	return compilePaths(paths)
}

func compilePaths(paths [][]Clause) (*script.Script, error) {
	if len(paths) == 1 {
		return compilePath(paths[0])
	}

	branch, err := compilePath(paths[0])
	if err != nil {
		return nil, err
	}
	rest, err := compilePaths(paths[1:])
	if err != nil {
		return nil, err
	}

	s := &script.Script{}
	if err := s.AppendOpcodes(script.OpIF); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	*s = append(*s, *branch...)
	if err := s.AppendOpcodes(script.OpELSE); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	*s = append(*s, *rest...)
	if err := s.AppendOpcodes(script.OpENDIF); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	return s, nil
}

// compilePath renders one AND-path. Every leaf but the last uses its
// verify form; the last leaf leaves its truth value on the stack.
func compilePath(path []Clause) (*script.Script, error) {
	// Satisfied leaves contribute nothing.
	leaves := make([]Clause, 0, len(path))
	for _, c := range path {
		if _, ok := c.(Satisfied); ok {
			continue
		}
		leaves = append(leaves, c)
	}

	s := &script.Script{}
	if len(leaves) == 0 {
		if err := s.AppendOpcodes(script.OpTRUE); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompile, err)
		}
		return s, nil
	}

	for i, leaf := range leaves {
		last := i == len(leaves)-1
		if err := compileLeaf(s, leaf, last); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func compileLeaf(s *script.Script, leaf Clause, last bool) error {
	switch v := leaf.(type) {
	case SignedBy:
		if v.Key == nil {
			return fmt.Errorf("%w: SignedBy with nil key", ErrCompile)
		}
		if err := s.AppendPushData(v.Key.Compressed()); err != nil {
			return fmt.Errorf("%w: push key: %w", ErrCompile, err)
		}
		op := script.OpCHECKSIGVERIFY
		if last {
			op = script.OpCHECKSIG
		}
		if err := s.AppendOpcodes(op); err != nil {
			return fmt.Errorf("%w: %w", ErrCompile, err)
		}

	case PreimageSha256:
		if err := s.AppendOpcodes(script.OpSHA256); err != nil {
			return fmt.Errorf("%w: %w", ErrCompile, err)
		}
		if err := s.AppendPushData(v.Hash[:]); err != nil {
			return fmt.Errorf("%w: push hash: %w", ErrCompile, err)
		}
		op := script.OpEQUALVERIFY
		if last {
			op = script.OpEQUAL
		}
		if err := s.AppendOpcodes(op); err != nil {
			return fmt.Errorf("%w: %w", ErrCompile, err)
		}

	case After:
		// CLTV leaves the locktime value on the stack; zero would read as
		// false in last position, and a zero locktime is no restriction
		// anyway.
		if v.Time == 0 {
			return fmt.Errorf("%w: After with zero time", ErrCompile)
		}
		if err := s.AppendPushData(scriptNum(v.Time)); err != nil {
			return fmt.Errorf("%w: push locktime: %w", ErrCompile, err)
		}
		if err := s.AppendOpcodes(script.OpCHECKLOCKTIMEVERIFY); err != nil {
			return fmt.Errorf("%w: %w", ErrCompile, err)
		}
		if !last {
			if err := s.AppendOpcodes(script.OpDROP); err != nil {
				return fmt.Errorf("%w: %w", ErrCompile, err)
			}
		}

	case CheckTemplateVerify:
		// The template-check opcode leaves the 32-byte digest on the
		// stack, which is truthy in last position.
		if err := s.AppendPushData(v.Hash[:]); err != nil {
			return fmt.Errorf("%w: push template hash: %w", ErrCompile, err)
		}
		if err := s.AppendOpcodes(script.OpNOP4); err != nil {
			return fmt.Errorf("%w: %w", ErrCompile, err)
		}
		if !last {
			if err := s.AppendOpcodes(script.OpDROP); err != nil {
				return fmt.Errorf("%w: %w", ErrCompile, err)
			}
		}

	default:
		return fmt.Errorf("%w: %T inside a flattened path", ErrCompile, leaf)
	}
	return nil
}

// scriptNum encodes a non-negative integer in the ledger's minimal script
// number format: little-endian, a trailing zero byte when the high bit of
// the top byte is set.
func scriptNum(v uint32) []byte {
	if v == 0 {
		return []byte{}
	}
	var out []byte
	for n := uint64(v); n > 0; n >>= 8 {
		out = append(out, byte(n))
	}
	if out[len(out)-1]&0x80 != 0 {
		out = append(out, 0x00)
	}
	return out
}
