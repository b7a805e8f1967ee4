package trie

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by GetProof when key has no entry in the trie.
var ErrKeyNotFound = errors.New("trie: key not found")

// Trie is an in-memory builder used to construct fixtures and generate
// proofs for them; it is not used by the bridge module's verification path,
// which only calls the standalone VerifyProof/VerifyProofBatch against a
// proof bag received over RPC.
type Trie struct {
	root  Node
	store Store
}

// NewTrie returns a Trie rooted at root (nil for an empty trie), backed by
// store for flushing newly built nodes.
func NewTrie(root Node, store Store) *Trie {
	return &Trie{root: root, store: store}
}

// Root returns the trie's current root node.
func (t *Trie) Root() Node { return t.root }

func (t *Trie) putToStore(n Node) {
	if n == nil {
		return
	}
	switch n.(type) {
	case *HashNode:
		return
	default:
		t.store.Put(n.Hash(), n.Bytes())
	}
}

func (t *Trie) resolve(n Node) (Node, error) {
	if n == nil {
		return nil, errors.New("trie: nil node")
	}
	hn, ok := n.(*HashNode)
	if !ok {
		return n, nil
	}
	b, found := t.store.Get(hn.hash)
	if !found {
		return nil, fmt.Errorf("trie: missing node for hash %s", hn.hash.StringBE())
	}
	return DecodeNode(b)
}

func cloneBranch(n *BranchNode) *BranchNode {
	nb := NewBranchNode()
	nb.Children = n.Children
	return nb
}

func (t *Trie) buildChain(path []byte, value []byte) Node {
	leaf := NewLeafNode(value)
	t.putToStore(leaf)
	if len(path) == 0 {
		return leaf
	}
	ext := NewExtensionNode(path, leaf)
	t.putToStore(ext)
	return ext
}

// Put inserts or overwrites the value stored under key.
func (t *Trie) Put(key, value []byte) error {
	path := toNibbles(key)
	newRoot, err := t.insert(t.root, path, value)
	if err != nil {
		return err
	}
	t.root = newRoot
	t.putToStore(newRoot)
	return nil
}

func (t *Trie) insert(curr Node, path []byte, value []byte) (Node, error) {
	if curr == nil {
		return t.buildChain(path, value), nil
	}
	resolved, err := t.resolve(curr)
	if err != nil {
		return nil, err
	}
	switch n := resolved.(type) {
	case *LeafNode:
		if len(path) == 0 {
			nl := NewLeafNode(value)
			t.putToStore(nl)
			return nl, nil
		}
		nb := NewBranchNode()
		nb.Children[lastChild] = n
		t.putToStore(n)
		return t.insert(nb, path, value)
	case *ExtensionNode:
		cpl := commonPrefixLen(n.Key, path)
		if cpl == len(n.Key) {
			newNext, err := t.insert(n.Next, path[cpl:], value)
			if err != nil {
				return nil, err
			}
			ne := NewExtensionNode(n.Key, newNext)
			t.putToStore(ne)
			return ne, nil
		}

		nb := NewBranchNode()
		if cpl < len(n.Key) {
			remKey := n.Key[cpl+1:]
			nib := n.Key[cpl]
			var child Node
			if len(remKey) == 0 {
				child = n.Next
			} else {
				ce := NewExtensionNode(remKey, n.Next)
				t.putToStore(ce)
				child = ce
			}
			nb.Children[nib] = child
		}
		if cpl < len(path) {
			newNib := path[cpl]
			newRem := path[cpl+1:]
			nb.Children[newNib] = t.buildChain(newRem, value)
		} else {
			nl := NewLeafNode(value)
			t.putToStore(nl)
			nb.Children[lastChild] = nl
		}
		t.putToStore(nb)
		if cpl == 0 {
			return nb, nil
		}
		ne := NewExtensionNode(path[:cpl], nb)
		t.putToStore(ne)
		return ne, nil
	case *BranchNode:
		if len(path) == 0 {
			nl := NewLeafNode(value)
			t.putToStore(nl)
			newBn := cloneBranch(n)
			newBn.Children[lastChild] = nl
			t.putToStore(newBn)
			return newBn, nil
		}
		nib := path[0]
		newChild, err := t.insert(n.Children[nib], path[1:], value)
		if err != nil {
			return nil, err
		}
		newBn := cloneBranch(n)
		newBn.Children[nib] = newChild
		t.putToStore(newBn)
		return newBn, nil
	default:
		return nil, errInvalidType
	}
}

// GetProof returns the list of node blobs (root first) that VerifyProof
// needs to confirm the value stored under key against the trie's root
// hash.
func (t *Trie) GetProof(key []byte) ([][]byte, error) {
	path := toNibbles(key)
	var proof [][]byte
	cur := t.root
	for {
		resolved, err := t.resolve(cur)
		if err != nil {
			return nil, err
		}
		proof = append(proof, resolved.Bytes())
		switch n := resolved.(type) {
		case *LeafNode:
			if len(path) != 0 {
				return nil, ErrKeyNotFound
			}
			return proof, nil
		case *ExtensionNode:
			if len(path) < len(n.Key) || !bytes.Equal(path[:len(n.Key)], n.Key) {
				return nil, ErrKeyNotFound
			}
			path = path[len(n.Key):]
			cur = n.Next
		case *BranchNode:
			if len(path) == 0 {
				if n.Children[lastChild] == nil {
					return nil, ErrKeyNotFound
				}
				cur = n.Children[lastChild]
				continue
			}
			child := n.Children[path[0]]
			if child == nil {
				return nil, ErrKeyNotFound
			}
			path = path[1:]
			cur = child
		default:
			return nil, errInvalidType
		}
	}
}
