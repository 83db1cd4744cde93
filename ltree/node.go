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
	"encoding/binary"

	"github.com/Fantom-foundation/LiquidityTree/go/common/amount"
)

// Node is a single record of the liquidity tree node table. The amount of an
// inner node aggregates the amounts of the leaves below it; the update
// identifier is the logical clock stamp of the last operation that touched
// the node. A node whose stamp is older than its parent's stamp holds a stale
// amount that does not yet reflect a lazily recorded adjustment.
type Node struct {
	UpdateId uint64
	Amount   amount.Amount
}

// NodeSize is the length of the serialized form of a Node in bytes.
const NodeSize = 8 + amount.BytesLength

// NodeSerializer is a common.Serializer of the Node type.
type NodeSerializer struct{}

func (s NodeSerializer) ToBytes(node Node) []byte {
	res := make([]byte, NodeSize)
	s.CopyBytes(node, res)
	return res
}

func (s NodeSerializer) CopyBytes(node Node, out []byte) {
	binary.BigEndian.PutUint64(out[0:8], node.UpdateId)
	amount.Serializer{}.CopyBytes(node.Amount, out[8:NodeSize])
}

func (s NodeSerializer) FromBytes(bytes []byte) Node {
	return Node{
		UpdateId: binary.BigEndian.Uint64(bytes[0:8]),
		Amount:   amount.Serializer{}.FromBytes(bytes[8:NodeSize]),
	}
}

func (s NodeSerializer) Size() int {
	return NodeSize
}
