// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package htmemory

import (
	"fmt"
	"unsafe"

	"github.com/Fantom-foundation/LiquidityTree/go/backend/hashtree"
	"github.com/Fantom-foundation/LiquidityTree/go/common"
)

// HashTree is an in-memory structure allowing to make a hash of the whole store state.
// It obtains hashes of individual data pages and reduces them to a hash of the entire state.
type HashTree struct {
	factor       int                   // the branching factor - amount of child nodes per one parent node
	layers       [][]common.Hash       // hashes of the tree nodes, layer 0 holds the page hashes
	dirtyPages   map[int]bool          // set of pages whose hashes need to be recomputed
	pageProvider hashtree.PageProvider // source of the page data
}

// hashTreeFactory is used for implementation of the hashtree.Factory interface
type hashTreeFactory struct {
	branchingFactor int
}

// CreateHashTreeFactory creates a new instance of the hashTreeFactory
func CreateHashTreeFactory(branchingFactor int) *hashTreeFactory {
	return &hashTreeFactory{branchingFactor: branchingFactor}
}

// Create creates a new instance of the HashTree
func (f *hashTreeFactory) Create(pageProvider hashtree.PageProvider) hashtree.HashTree {
	return NewHashTree(f.branchingFactor, pageProvider)
}

// NewHashTree constructs a new HashTree
func NewHashTree(branchingFactor int, pageProvider hashtree.PageProvider) *HashTree {
	return &HashTree{
		factor:       branchingFactor,
		layers:       [][]common.Hash{{}},
		dirtyPages:   map[int]bool{},
		pageProvider: pageProvider,
	}
}

// parentOf provides an index of a parent node, by the child index
func (ht *HashTree) parentOf(childIdx int) int {
	return childIdx / ht.factor
}

// firstChildOf provides an index of the first child, by the index of the parent node
func (ht *HashTree) firstChildOf(parentIdx int) int {
	return parentIdx * ht.factor
}

// MarkUpdated marks a page as changed - to be included into the hash recalculation on commit
func (ht *HashTree) MarkUpdated(page int) {
	ht.dirtyPages[page] = true
}

// commit updates the necessary parts of the hashing tree
func (ht *HashTree) commit() error {
	dirty := make([]int, 0, len(ht.dirtyPages))
	for page := range ht.dirtyPages {
		data, err := ht.pageProvider.GetPage(page)
		if err != nil {
			return fmt.Errorf("failed to get page %d; %w", page, err)
		}
		ht.setNode(0, page, common.Keccak256(data))
		dirty = append(dirty, page)
	}
	ht.dirtyPages = map[int]bool{}

	// reduce the changed nodes towards the root, layer by layer,
	// until a layer with a single node (the root) is reached
	for layer := 0; len(ht.layers[layer]) > 1; layer++ {
		if layer+1 == len(ht.layers) {
			ht.layers = append(ht.layers, []common.Hash{})
		}
		parents := map[int]bool{}
		for _, node := range dirty {
			parents[ht.parentOf(node)] = true
		}
		dirty = dirty[:0]
		for parent := range parents {
			ht.setNode(layer+1, parent, ht.hashOfChildren(layer, parent))
			dirty = append(dirty, parent)
		}
	}
	return nil
}

// hashOfChildren computes the hash of a node from the hashes of its children
func (ht *HashTree) hashOfChildren(childrenLayer, parent int) common.Hash {
	content := make([]byte, 0, ht.factor*common.HashLength)
	firstChild := ht.firstChildOf(parent)
	for i := firstChild; i < firstChild+ht.factor; i++ {
		var childHash common.Hash
		if i < len(ht.layers[childrenLayer]) {
			childHash = ht.layers[childrenLayer][i]
		}
		content = append(content, childHash[:]...)
	}
	return common.Keccak256(content)
}

// setNode sets the hash of a tree node, growing the layer as needed
func (ht *HashTree) setNode(layer, node int, hash common.Hash) {
	for node >= len(ht.layers[layer]) {
		ht.layers[layer] = append(ht.layers[layer], common.Hash{})
	}
	ht.layers[layer][node] = hash
}

// HashRoot provides the hash in the root of the hashing tree
func (ht *HashTree) HashRoot() (out common.Hash, err error) {
	if err := ht.commit(); err != nil {
		return common.Hash{}, err
	}
	topLayer := ht.layers[len(ht.layers)-1]
	if len(topLayer) == 0 {
		return common.Hash{}, nil
	}
	return topLayer[0], nil
}

// GetPageHash provides a hash of the given page
func (ht *HashTree) GetPageHash(page int) (common.Hash, error) {
	if err := ht.commit(); err != nil {
		return common.Hash{}, err
	}
	if page >= len(ht.layers[0]) {
		return common.Hash{}, fmt.Errorf("page %d does not exist in the hashtree", page)
	}
	return ht.layers[0][page], nil
}

// GetBranchingFactor provides the tree branching factor
func (ht *HashTree) GetBranchingFactor() int {
	return ht.factor
}

// Reset removes the hashtree content
func (ht *HashTree) Reset() error {
	ht.layers = [][]common.Hash{{}}
	ht.dirtyPages = map[int]bool{}
	return nil
}

// GetMemoryFootprint provides the size of the hash-tree in memory in bytes
func (ht *HashTree) GetMemoryFootprint() *common.MemoryFootprint {
	size := unsafe.Sizeof(*ht)
	for _, layer := range ht.layers {
		size += uintptr(len(layer)) * unsafe.Sizeof(common.Hash{})
	}
	size += uintptr(len(ht.dirtyPages)) * (unsafe.Sizeof(int(0)) + unsafe.Sizeof(false))
	return common.NewMemoryFootprint(size)
}
