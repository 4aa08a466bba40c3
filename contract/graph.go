// Package contract assembles transaction templates into contract graphs.
// Nodes are addressed by digest value rather than pointer identity, so the
// structure is acyclic by construction: a child's digest must exist before
// any parent output can commit to it.
package contract

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"

	"github.com/cryptoquick/sapio/template"
)

// Graph is a collection of templates keyed by commitment digest, with
// edges derived from the template-check references embedded in output
// locking scripts.
type Graph struct {
	nodes map[chainhash.Hash]*template.Template
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[chainhash.Hash]*template.Template)}
}

// Add inserts a template. Inserting a digest that is already present is a
// no-op: equal digests commit to equal content. Templates that fail
// verification are rejected, so the graph never holds a forged node.
func (g *Graph) Add(t *template.Template) error {
	if t == nil {
		return ErrNilTemplate
	}
	if err := t.Verify(); err != nil {
		return err
	}
	if _, ok := g.nodes[t.Hash()]; ok {
		return nil
	}
	g.nodes[t.Hash()] = t
	return nil
}

// Template returns the node with the given digest.
func (g *Graph) Template(h chainhash.Hash) (*template.Template, bool) {
	t, ok := g.nodes[h]
	return t, ok
}

// Size returns the number of nodes.
func (g *Graph) Size() int {
	return len(g.nodes)
}

// Digests returns all node digests in a deterministic (byte-sorted) order.
func (g *Graph) Digests() []chainhash.Hash {
	out := make([]chainhash.Hash, 0, len(g.nodes))
	for h := range g.nodes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// Children returns the digests referenced by the node's output locking
// scripts, in output order. Referenced digests need not be present in the
// graph; a compiler may commit to externally supplied templates.
func (g *Graph) Children(h chainhash.Hash) ([]chainhash.Hash, error) {
	t, ok := g.nodes[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, h.String())
	}
	var refs []chainhash.Hash
	for _, o := range t.Outputs() {
		refs = append(refs, templateRefs(o.LockingScript)...)
	}
	return refs, nil
}

// Roots returns the digests of nodes not referenced by any other node,
// sorted for determinism.
func (g *Graph) Roots() []chainhash.Hash {
	referenced := make(map[chainhash.Hash]bool)
	for h := range g.nodes {
		refs, _ := g.Children(h)
		for _, r := range refs {
			referenced[r] = true
		}
	}
	var roots []chainhash.Hash
	for h := range g.nodes {
		if !referenced[h] {
			roots = append(roots, h)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		return bytes.Compare(roots[i][:], roots[j][:]) < 0
	})
	return roots
}

// templateRefs scans a locking script for 32-byte pushes consumed by the
// template-check opcode and returns them as digests.
func templateRefs(s *script.Script) []chainhash.Hash {
	if s == nil {
		return nil
	}
	chunks, err := s.Chunks()
	if err != nil {
		return nil
	}
	var refs []chainhash.Hash
	for i := 0; i+1 < len(chunks); i++ {
		if len(chunks[i].Data) != 32 || chunks[i+1].Op != script.OpNOP4 {
			continue
		}
		var h chainhash.Hash
		copy(h[:], chunks[i].Data)
		refs = append(refs, h)
	}
	return refs
}
