package clause

import (
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *ec.PublicKey {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return priv.PubKey()
}

func testDigest(fill byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = fill
	}
	return h
}

// --- Flatten ---

func TestFlatten_Leaf(t *testing.T) {
	key := testKey(t)
	paths, err := Flatten(SignedBy{Key: key})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 1)
	assert.Equal(t, SignedBy{Key: key}, paths[0][0])
}

func TestFlatten_OrOfOrAndAnd(t *testing.T) {
	a := After{Time: 10}
	b := After{Time: 20}
	c := After{Time: 30}
	d := After{Time: 40}

	// Or(Or(a,b), And(c,d)) => [[a], [b], [c,d]]
	paths, err := Flatten(Or{A: Or{A: a, B: b}, B: And{A: c, B: d}})
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, []Clause{a}, paths[0])
	assert.Equal(t, []Clause{b}, paths[1])
	assert.Equal(t, []Clause{c, d}, paths[2])
}

func TestFlatten_OrUnderAndRejected(t *testing.T) {
	_, err := Flatten(And{
		A: Or{A: Satisfied{}, B: Satisfied{}},
		B: Or{A: Satisfied{}, B: Satisfied{}},
	})
	assert.ErrorIs(t, err, ErrOrUnderAnd)
}

func TestFlatten_SatisfiedContributesNothing(t *testing.T) {
	a := After{Time: 10}
	paths, err := Flatten(And{A: Satisfied{}, B: a})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []Clause{a}, paths[0])
}

func TestFlatten_NilRejected(t *testing.T) {
	_, err := Flatten(nil)
	assert.ErrorIs(t, err, ErrNilClause)
	_, err = Flatten(And{A: After{Time: 1}, B: nil})
	assert.ErrorIs(t, err, ErrNilClause)
}

// --- Compile ---

func TestCompile_SignedBy(t *testing.T) {
	key := testKey(t)
	s, err := Compile(SignedBy{Key: key})
	require.NoError(t, err)

	chunks, err := s.Chunks()
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, key.Compressed(), chunks[0].Data)
	assert.Equal(t, uint8(script.OpCHECKSIG), chunks[1].Op)
}

func TestCompile_AndUsesVerifyForms(t *testing.T) {
	key := testKey(t)
	s, err := Compile(And{A: PreimageSha256{Hash: testDigest(0xaa)}, B: SignedBy{Key: key}})
	require.NoError(t, err)

	chunks, err := s.Chunks()
	require.NoError(t, err)
	// OP_SHA256 <hash> OP_EQUALVERIFY <key> OP_CHECKSIG
	require.Len(t, chunks, 5)
	assert.Equal(t, uint8(script.OpSHA256), chunks[0].Op)
	assert.Equal(t, uint8(script.OpEQUALVERIFY), chunks[2].Op)
	assert.Equal(t, uint8(script.OpCHECKSIG), chunks[4].Op)
}

func TestCompile_OrBuildsBranchLadder(t *testing.T) {
	s, err := Compile(Or{
		A: CheckTemplateVerify{Hash: testDigest(0x11)},
		B: CheckTemplateVerify{Hash: testDigest(0x22)},
	})
	require.NoError(t, err)

	chunks, err := s.Chunks()
	require.NoError(t, err)
	// OP_IF <h1> OP_NOP4 OP_ELSE <h2> OP_NOP4 OP_ENDIF
	require.Len(t, chunks, 7)
	assert.Equal(t, uint8(script.OpIF), chunks[0].Op)
	d1 := testDigest(0x11)
	assert.Equal(t, d1[:], chunks[1].Data)
	assert.Equal(t, uint8(script.OpNOP4), chunks[2].Op)
	assert.Equal(t, uint8(script.OpELSE), chunks[3].Op)
	d2 := testDigest(0x22)
	assert.Equal(t, d2[:], chunks[4].Data)
	assert.Equal(t, uint8(script.OpNOP4), chunks[5].Op)
	assert.Equal(t, uint8(script.OpENDIF), chunks[6].Op)
}

func TestCompile_AfterPushesMinimalNumber(t *testing.T) {
	s, err := Compile(After{Time: 144})
	require.NoError(t, err)

	chunks, err := s.Chunks()
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	// 144 = 0x90; high bit set, so a zero sign byte follows.
	assert.Equal(t, []byte{0x90, 0x00}, chunks[0].Data)
	assert.Equal(t, uint8(script.OpCHECKLOCKTIMEVERIFY), chunks[1].Op)
}

func TestCompile_SatisfiedOnly(t *testing.T) {
	s, err := Compile(Satisfied{})
	require.NoError(t, err)
	chunks, err := s.Chunks()
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, uint8(script.OpTRUE), chunks[0].Op)
}

func TestCompile_ZeroAfterRejected(t *testing.T) {
	_, err := Compile(After{Time: 0})
	assert.ErrorIs(t, err, ErrCompile)
}

func TestCompile_NilKeyRejected(t *testing.T) {
	_, err := Compile(SignedBy{})
	assert.ErrorIs(t, err, ErrCompile)
}

func TestScriptNum(t *testing.T) {
	tests := []struct {
		in   uint32
		want []byte
	}{
		{0, []byte{}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x00}},
		{144, []byte{0x90, 0x00}},
		{500000000, []byte{0x00, 0x65, 0xcd, 0x1d}},
		{65535, []byte{0xff, 0xff, 0x00}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, scriptNum(tc.in), "scriptNum(%d)", tc.in)
	}
}
