// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"fmt"
	"unsafe"

	"github.com/Fantom-foundation/LiquidityTree/go/backend/hashtree"
	"github.com/Fantom-foundation/LiquidityTree/go/common"
)

// Store is an in-memory store.Store implementation - it maps IDs to values.
// Pages are allocated on demand, so the index space may be sparse - a property
// the liquidity tree node table relies on, as lazily never-touched nodes
// must not occupy memory.
type Store[I common.Identifier, V any] struct {
	data        map[int][]byte // data of pages [page][byte of page]
	hashTree    hashtree.HashTree
	serializer  common.Serializer[V]
	pageSize    int // the amount of items stored in one page
	itemSize    int // the amount of bytes per one value
	itemDefault V
}

// NewStore constructs a new instance of the in-memory Store.
// It needs a serializer of data items and the default value for a not-set item.
func NewStore[I common.Identifier, V any](
	serializer common.Serializer[V],
	itemDefault V,
	pageSize int,
	hashTreeFactory hashtree.Factory,
) (*Store[I, V], error) {
	if pageSize < serializer.Size() {
		return nil, fmt.Errorf("memory store pageSize too small (minimum %d)", serializer.Size())
	}
	store := &Store[I, V]{
		data:        map[int][]byte{},
		serializer:  serializer,
		pageSize:    pageSize / serializer.Size(),
		itemSize:    serializer.Size(),
		itemDefault: itemDefault,
	}
	store.hashTree = hashTreeFactory.Create(store)
	return store, nil
}

// itemPosition provides the position of an item in data pages
func (m *Store[I, V]) itemPosition(id I) (page int, position int) {
	return int(id) / m.pageSize, int(id) % m.pageSize * m.itemSize
}

// GetPage provides the hashing page data
func (m *Store[I, V]) GetPage(page int) ([]byte, error) {
	data, exists := m.data[page]
	if !exists {
		data = make([]byte, m.pageSize*m.itemSize)
	}
	return data, nil
}

// Set a value of an item
func (m *Store[I, V]) Set(id I, value V) error {
	page, itemPosition := m.itemPosition(id)
	data, exists := m.data[page]
	if !exists {
		data = make([]byte, m.pageSize*m.itemSize)
		m.data[page] = data
	}
	m.serializer.CopyBytes(value, data[itemPosition:itemPosition+m.itemSize])
	m.hashTree.MarkUpdated(page)
	return nil
}

// Get a value of the item (or the itemDefault, if not defined)
func (m *Store[I, V]) Get(id I) (V, error) {
	page, itemPosition := m.itemPosition(id)
	item := m.itemDefault
	if data, exists := m.data[page]; exists {
		item = m.serializer.FromBytes(data[itemPosition : itemPosition+m.itemSize])
	}
	return item, nil
}

// GetStateHash computes and returns a cryptographical hash of the stored data
func (m *Store[I, V]) GetStateHash() (common.Hash, error) {
	return m.hashTree.HashRoot()
}

// Flush the store
func (m *Store[I, V]) Flush() error {
	// commit state hash root
	_, err := m.GetStateHash()
	return err
}

// Close the store
func (m *Store[I, V]) Close() error {
	return m.Flush()
}

// GetMemoryFootprint provides the size of the store in memory in bytes
func (m *Store[I, V]) GetMemoryFootprint() *common.MemoryFootprint {
	size := unsafe.Sizeof(*m)
	size += uintptr(len(m.data)) * uintptr(m.pageSize*m.itemSize)
	footprint := common.NewMemoryFootprint(size)
	footprint.AddChild("hashTree", m.hashTree.GetMemoryFootprint())
	return footprint
}
