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
	"bytes"
	"testing"

	"github.com/Fantom-foundation/LiquidityTree/go/backend/hashtree/htmemory"
	"github.com/Fantom-foundation/LiquidityTree/go/backend/store"
	"github.com/Fantom-foundation/LiquidityTree/go/backend/store/memory"
	"github.com/Fantom-foundation/LiquidityTree/go/common/amount"
	"github.com/Fantom-foundation/LiquidityTree/go/ltree"
)

func newNodeStore(t *testing.T) store.Store[uint64, ltree.Node] {
	t.Helper()
	nodes, err := memory.NewStore[uint64, ltree.Node](ltree.NodeSerializer{}, ltree.Node{}, 1<<12, htmemory.CreateHashTreeFactory(3))
	if err != nil {
		t.Fatalf("failed to create node store; %s", err)
	}
	return nodes
}

func TestSnapshotRoundTrip(t *testing.T) {
	nodes := newNodeStore(t)
	tree, err := ltree.NewTree(8, nodes)
	if err != nil {
		t.Fatalf("failed to create tree; %s", err)
	}
	leaves := make([]uint64, 0, 3)
	for _, value := range []uint64{40, 60, 17} {
		leaf, err := tree.Deposit(amount.New(value))
		if err != nil {
			t.Fatalf("failed to deposit; %s", err)
		}
		leaves = append(leaves, leaf)
	}
	// leave an adjustment parked above the leaves to verify the snapshot
	// carries undelivered state as well
	if err := tree.AddUpTo(amount.New(10), leaves[1]); err != nil {
		t.Fatalf("failed to add prefix profit; %s", err)
	}

	var buffer bytes.Buffer
	if err := Export(tree, &buffer); err != nil {
		t.Fatalf("failed to export; %s", err)
	}

	restoredNodes := newNodeStore(t)
	restored, err := Import(&buffer, restoredNodes)
	if err != nil {
		t.Fatalf("failed to import; %s", err)
	}

	if got, want := restored.Capacity(), tree.Capacity(); got != want {
		t.Errorf("capacity not restored: got %d, want %d", got, want)
	}
	if got, want := restored.NextLeaf(), tree.NextLeaf(); got != want {
		t.Errorf("leaf cursor not restored: got %d, want %d", got, want)
	}
	if got, want := restored.UpdateId(), tree.UpdateId(); got != want {
		t.Errorf("logical clock not restored: got %d, want %d", got, want)
	}

	for _, leaf := range leaves {
		want, err := tree.LeafAmount(leaf)
		if err != nil {
			t.Fatalf("failed to read leaf %d; %s", leaf, err)
		}
		got, err := restored.LeafAmount(leaf)
		if err != nil {
			t.Fatalf("failed to read restored leaf %d; %s", leaf, err)
		}
		if got != want {
			t.Errorf("unexpected amount of leaf %d: got %v, want %v", leaf, got, want)
		}
	}

	wantTotal, err := tree.Total()
	if err != nil {
		t.Fatalf("failed to read total; %s", err)
	}
	gotTotal, err := restored.Total()
	if err != nil {
		t.Fatalf("failed to read restored total; %s", err)
	}
	if gotTotal != wantTotal {
		t.Errorf("unexpected total: got %v, want %v", gotTotal, wantTotal)
	}
}

func TestSnapshotRestoresNodeTableBitExactly(t *testing.T) {
	nodes := newNodeStore(t)
	tree, err := ltree.NewTree(4, nodes)
	if err != nil {
		t.Fatalf("failed to create tree; %s", err)
	}
	for _, value := range []uint64{100, 200, 300} {
		if _, err := tree.Deposit(amount.New(value)); err != nil {
			t.Fatalf("failed to deposit; %s", err)
		}
	}
	if err := tree.AddGlobal(amount.New(33)); err != nil {
		t.Fatalf("failed to add profit; %s", err)
	}

	var buffer bytes.Buffer
	if err := Export(tree, &buffer); err != nil {
		t.Fatalf("failed to export; %s", err)
	}
	restored, err := Import(&buffer, newNodeStore(t))
	if err != nil {
		t.Fatalf("failed to import; %s", err)
	}

	for id := uint64(1); id < 2*tree.Capacity(); id++ {
		want, err := tree.GetNode(id)
		if err != nil {
			t.Fatalf("failed to read node %d; %s", id, err)
		}
		got, err := restored.GetNode(id)
		if err != nil {
			t.Fatalf("failed to read restored node %d; %s", id, err)
		}
		if got != want {
			t.Errorf("node %d differs: got %+v, want %+v", id, got, want)
		}
	}
}

func TestImportRejectsMalformedInput(t *testing.T) {
	if _, err := Import(bytes.NewReader([]byte{0x01, 0x02, 0x03}), newNodeStore(t)); err == nil {
		t.Errorf("malformed input must be rejected")
	}
}
