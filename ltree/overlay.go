// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ltree

import (
	"github.com/Fantom-foundation/LiquidityTree/go/backend/store"
)

// nodeOverlay is a read-through view of the node table buffering the writes
// of a single operation. Operations mutate the overlay only; the buffered
// writes reach the underlying store when the whole operation has succeeded.
// A rejected operation simply drops its overlay, leaving the table unchanged.
type nodeOverlay struct {
	nodes  store.Store[uint64, Node]
	writes map[uint64]Node
}

func newOverlay(nodes store.Store[uint64, Node]) *nodeOverlay {
	return &nodeOverlay{
		nodes:  nodes,
		writes: map[uint64]Node{},
	}
}

// get provides the buffered version of a node, falling back to the store.
func (o *nodeOverlay) get(id uint64) (Node, error) {
	if node, exists := o.writes[id]; exists {
		return node, nil
	}
	return o.nodes.Get(id)
}

// set buffers a new version of a node.
func (o *nodeOverlay) set(id uint64, node Node) {
	o.writes[id] = node
}

// commit writes all buffered nodes into the underlying store.
func (o *nodeOverlay) commit() error {
	for id, node := range o.writes {
		if err := o.nodes.Set(id, node); err != nil {
			return err
		}
	}
	o.writes = map[uint64]Node{}
	return nil
}
