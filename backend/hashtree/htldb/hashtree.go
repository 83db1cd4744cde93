// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package htldb

import (
	"fmt"
	"unsafe"

	"github.com/Fantom-foundation/LiquidityTree/go/backend/hashtree"
	"github.com/Fantom-foundation/LiquidityTree/go/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// HashTree is a structure allowing to make a hash of the whole database state.
// It obtains hashes of individual data pages and reduce them to a hash of the entire state.
// The layer hashes are persisted in the database, so the tree survives a restart.
type HashTree struct {
	db           common.LevelDB
	table        common.TableSpace
	factor       int          // the branching factor - amount of child nodes per one parent node
	dirtyPages   map[int]bool // set of dirty flags of the tree nodes
	maxPage      int
	pageProvider hashtree.PageProvider
}

// hashTreeFactory is used for implementation of the hashtree.Factory interface
type hashTreeFactory struct {
	db              common.LevelDB
	table           common.TableSpace
	branchingFactor int
}

// CreateHashTreeFactory creates a new instance of the hashTreeFactory
func CreateHashTreeFactory(db common.LevelDB, table common.TableSpace, branchingFactor int) *hashTreeFactory {
	return &hashTreeFactory{db: db, table: table, branchingFactor: branchingFactor}
}

// Create creates a new instance of the HashTree
func (f *hashTreeFactory) Create(pageProvider hashtree.PageProvider) hashtree.HashTree {
	return NewHashTree(f.db, f.table, f.branchingFactor, pageProvider)
}

// NewHashTree constructs a new HashTree
func NewHashTree(db common.LevelDB, table common.TableSpace, branchingFactor int, pageProvider hashtree.PageProvider) *HashTree {
	return &HashTree{
		db:           db,
		table:        table,
		factor:       branchingFactor,
		dirtyPages:   map[int]bool{},
		pageProvider: pageProvider,
	}
}

// MarkUpdated marks a page as changed - to be included into the hash recalculation on commit
func (ht *HashTree) MarkUpdated(page int) {
	ht.dirtyPages[page] = true
	if page > ht.maxPage {
		ht.maxPage = page
	}
}

// HashRoot provides the hash in the root of the hashing tree
func (ht *HashTree) HashRoot() (out common.Hash, err error) {
	h, err := ht.commit()
	if err != nil {
		return common.Hash{}, err
	}
	copy(out[:], h)
	return
}

// GetPageHash provides a hash of the given page
func (ht *HashTree) GetPageHash(page int) (common.Hash, error) {
	if _, err := ht.commit(); err != nil {
		return common.Hash{}, err
	}
	hashBytes, err := ht.db.Get(ht.convertKey(0, page).ToBytes(), nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get hash of page %d; %w", page, err)
	}
	return common.HashSerializer{}.FromBytes(hashBytes), nil
}

// GetBranchingFactor provides the tree branching factor
func (ht *HashTree) GetBranchingFactor() int {
	return ht.factor
}

// Reset removes the hashtree content
func (ht *HashTree) Reset() error {
	firstKey := ht.convertKey(0, 0).ToBytes()
	lastKey := ht.convertKey(0xFF, 0).ToBytes()
	r := util.Range{Start: firstKey, Limit: lastKey}
	iter := ht.db.NewIterator(&r, nil)
	defer iter.Release()
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(iter.Key())
	}
	if err := iter.Error(); err != nil {
		return err
	}
	ht.dirtyPages = map[int]bool{}
	ht.maxPage = 0
	return ht.db.Write(batch, nil)
}

// GetMemoryFootprint provides the size of the hash-tree in memory in bytes
func (ht *HashTree) GetMemoryFootprint() *common.MemoryFootprint {
	size := unsafe.Sizeof(*ht)
	size += uintptr(len(ht.dirtyPages)) * (unsafe.Sizeof(int(0)) + unsafe.Sizeof(false))
	return common.NewMemoryFootprint(size)
}

// childrenOfNode provides a concatenation of all children of given node
func (ht *HashTree) childrenOfNode(layer, node int) (data []byte, err error) {
	firstNode := ht.firstChildOf(node)
	lastNode := firstNode + ht.factor
	dbStartKey := ht.convertKey(layer-1, firstNode).ToBytes()
	dbEndKey := ht.convertKey(layer-1, lastNode).ToBytes()
	r := util.Range{Start: dbStartKey, Limit: dbEndKey}
	iter := ht.db.NewIterator(&r, nil)
	defer iter.Release()

	// concatenate hashes of present children, substitute zeros for the missing ones
	data = make([]byte, 0, ht.factor*common.HashLength)
	next := firstNode
	for iter.Next() {
		node := ht.nodeOfKey(iter.Key())
		for ; next < node; next++ {
			data = append(data, make([]byte, common.HashLength)...)
		}
		data = append(data, iter.Value()...)
		next++
	}
	if len(data) < ht.factor*common.HashLength {
		data = append(data, make([]byte, ht.factor*common.HashLength-len(data))...)
	}

	err = iter.Error()
	return
}

// layerLength returns the amount of nodes in the given layer
func (ht *HashTree) layerLength(layer int) (length int, err error) {
	firstNode := ht.convertKey(layer, 0).ToBytes()
	lastNode := ht.convertKey(layer, 0xFFFFFFFF).ToBytes()
	r := util.Range{Start: firstNode, Limit: lastNode}
	iter := ht.db.NewIterator(&r, nil)
	defer iter.Release()
	if iter.Last() {
		length = ht.nodeOfKey(iter.Key()) + 1
	}
	err = iter.Error()
	return
}

// getRootHash reads the hash of the topmost layer from the database
func (ht *HashTree) getRootHash() (hash []byte, err error) {
	firstNode := ht.convertKey(0, 0).ToBytes()
	lastNode := ht.convertKey(0xFF, 0).ToBytes()
	r := util.Range{Start: firstNode, Limit: lastNode}
	iter := ht.db.NewIterator(&r, nil)
	defer iter.Release()
	if iter.Last() {
		hash = iter.Value()
	}
	err = iter.Error()
	return
}

// updateNode updates the hash-node value to the given value
func (ht *HashTree) updateNode(layer, node int, nodeHash common.Hash) error {
	dbKey := ht.convertKey(layer, node).ToBytes()
	return ht.db.Put(dbKey, nodeHash[:], nil)
}

// parentOf provides an index of a parent node, by the child index
func (ht *HashTree) parentOf(childIdx int) int {
	return childIdx / ht.factor
}

// firstChildOf provides an index of the first child, by the index of the parent node
func (ht *HashTree) firstChildOf(parentIdx int) int {
	return parentIdx * ht.factor
}

// updateDirtyNodes updates parent nodes marked as dirty with a hash of its children
func (ht *HashTree) updateDirtyNodes(layer int, dirtyNodes map[int]bool) (newDirtyNodes map[int]bool, nodeHash common.Hash, err error) {
	newDirtyNodes = make(map[int]bool)
	for node := range dirtyNodes {
		var content []byte
		if layer == 0 {
			// hash the data of the page
			content, err = ht.pageProvider.GetPage(node)
		} else {
			// hash children of the current node
			content, err = ht.childrenOfNode(layer, node)
		}
		if err != nil {
			return newDirtyNodes, common.Hash{}, err
		}
		nodeHash = common.Keccak256(content)
		// update the hash of this node
		if err = ht.updateNode(layer, node, nodeHash); err != nil {
			return newDirtyNodes, common.Hash{}, fmt.Errorf("failed to update hashtree node %d/%d; %w", layer, node, err)
		}
		// parent of the updated node needs to be updated - mark dirty
		newDirtyNodes[ht.parentOf(node)] = true
	}
	return
}

// commit updates the necessary parts of the hashing tree
func (ht *HashTree) commit() (hash []byte, err error) {
	// singular case there was no change (i.e. commit called either multiple times or on an empty tree)
	if len(ht.dirtyPages) == 0 {
		return ht.getRootHash()
	}

	dirtyNodes := ht.dirtyPages // nodes at level 0 are 1:1 to pages
	ht.dirtyPages = make(map[int]bool)

	// fetch the number of pages at the bottom
	numPages, err := ht.layerLength(0)
	if err != nil {
		return nil, err
	}
	if ht.maxPage+1 > numPages {
		numPages = ht.maxPage + 1
	}

	var rootHash common.Hash
	for layer := 0; ; layer++ {
		dirtyNodes, rootHash, err = ht.updateDirtyNodes(layer, dirtyNodes)
		if numPages <= 1 || err != nil {
			break
		}
		// ceiling when the division overflows to a next layer node
		padding := 0
		if numPages%ht.factor != 0 {
			padding = 1
		}
		// reduce number of nodes for the next loop
		numPages = numPages/ht.factor + padding
	}

	return rootHash[:], err
}

// convertKey creates the database key of the hash-tree node.
// The key is: [table][H][layer][node], layer is 8bit, node is 32bit.
func (ht *HashTree) convertKey(layer, node int) common.DbKey {
	return ht.table.DBToDBKey(
		common.HashKey.ToDBKey(
			append([]byte{uint8(layer)}, common.Uint32Serializer{}.ToBytes(uint32(node))...)))
}

// nodeOfKey extracts the node index from a database key of a hash-tree node
func (ht *HashTree) nodeOfKey(key []byte) int {
	return int(common.Uint32Serializer{}.FromBytes(key[3:7]))
}
