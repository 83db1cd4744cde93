// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package io

import (
	"fmt"
	"io"

	"github.com/Fantom-foundation/LiquidityTree/go/backend/store"
	"github.com/Fantom-foundation/LiquidityTree/go/common/amount"
	"github.com/Fantom-foundation/LiquidityTree/go/ltree"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/exp/slices"
)

// snapshot is the wire format of an exported liquidity tree: the tree
// lifecycle state plus the raw records of all touched nodes. Node records
// are exported as recorded, including deferred adjustments not yet delivered
// to the leaves, so import reproduces the table bit-exactly.
type snapshot struct {
	Capacity uint64
	NextLeaf uint64
	UpdateId uint64
	Nodes    []nodeRecord
}

// nodeRecord is a single node table entry of the snapshot.
type nodeRecord struct {
	Id       uint64
	UpdateId uint64
	Amount   []byte // 32 bytes, big endian
}

// Export writes an RLP-encoded snapshot of the given tree.
func Export(tree *ltree.Tree, out io.Writer) error {
	ids := touchedNodes(tree)
	records := make([]nodeRecord, 0, len(ids))
	for _, id := range ids {
		node, err := tree.GetNode(id)
		if err != nil {
			return fmt.Errorf("failed to read node %d; %w", id, err)
		}
		a := node.Amount.Bytes32()
		records = append(records, nodeRecord{
			Id:       id,
			UpdateId: node.UpdateId,
			Amount:   a[:],
		})
	}
	return rlp.Encode(out, snapshot{
		Capacity: tree.Capacity(),
		NextLeaf: tree.NextLeaf(),
		UpdateId: tree.UpdateId(),
		Nodes:    records,
	})
}

// Import reads an RLP-encoded snapshot into the given (empty) node table and
// returns the restored tree.
func Import(in io.Reader, nodes store.Store[uint64, ltree.Node]) (*ltree.Tree, error) {
	var s snapshot
	if err := rlp.Decode(in, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot; %w", err)
	}
	for _, record := range s.Nodes {
		if len(record.Amount) != amount.BytesLength {
			return nil, fmt.Errorf("node %d carries a malformed amount", record.Id)
		}
		err := nodes.Set(record.Id, ltree.Node{
			UpdateId: record.UpdateId,
			Amount:   amount.NewFromBytes(record.Amount...),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load node %d; %w", record.Id, err)
		}
	}
	return ltree.RestoreTree(s.Capacity, s.NextLeaf, s.UpdateId, nodes)
}

// touchedNodes enumerates all nodes the tree may have ever written: the
// allocated leaves and all their ancestors. Every tree operation targets an
// allocated leaf or a prefix of allocated leaves, so any written node is an
// ancestor of some allocated leaf.
func touchedNodes(tree *ltree.Tree) []uint64 {
	seen := map[uint64]bool{}
	for leaf := tree.FirstLeaf(); leaf < tree.NextLeaf(); leaf++ {
		for node := leaf; !seen[node]; node = ltree.ParentOf(node) {
			seen[node] = true
			if node == ltree.ParentOf(node) {
				break
			}
		}
	}
	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
