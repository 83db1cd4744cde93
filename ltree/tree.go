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
	"fmt"

	"github.com/Fantom-foundation/LiquidityTree/go/backend/store"
	"github.com/Fantom-foundation/LiquidityTree/go/common"
	"github.com/Fantom-foundation/LiquidityTree/go/common/amount"
)

// PercentWhole is the fixed-point representation of 100% for withdrawal percent arguments.
const PercentWhole = 1_000_000_000_000

// metadataId is the node table slot holding the tree lifecycle metadata.
// Slot 0 is never used by the tree itself - node indices start at the root index 1.
const metadataId = 0

// rootId is the node index of the tree root.
const rootId = 1

// Tree is a weighted segment tree accounting pooled liquidity. Each leaf slot
// represents one deposit; inner nodes aggregate the amounts of the leaves
// below them. Deposits and withdrawals update a single root-to-leaf path,
// while pool-wide profit and loss adjustments are recorded at the highest
// covering nodes only and distributed pro-rata to the leaves lazily, when a
// later operation forces their reconciliation.
//
// The tree is backed by a store.Store node table and is not thread-safe;
// the caller must make sure at most one operation is in progress at a time.
type Tree struct {
	nodes     store.Store[uint64, Node]
	capacity  uint64 // the number of leaf slots, fixed for the tree lifetime
	firstLeaf uint64 // the node index of the first leaf slot (== capacity)
	lastLeaf  uint64 // the node index of the last leaf slot (== 2*capacity-1)
	nextLeaf  uint64 // the node index of the next unallocated leaf slot
	updateId  uint64 // the logical clock stamped on touched nodes
}

// NewTree creates a liquidity tree with the given leaf capacity on top of the
// given node table. If the node table already contains a tree (its metadata
// slot is non-empty), the cursor and the logical clock resume from the stored
// state. The capacity must be a power of two of at least 2 and is immutable
// for the lifetime of the node table.
func NewTree(capacity uint64, nodes store.Store[uint64, Node]) (*Tree, error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("tree capacity must be a power of two of at least 2, got %d", capacity)
	}
	tree := &Tree{
		nodes:     nodes,
		capacity:  capacity,
		firstLeaf: capacity,
		lastLeaf:  2*capacity - 1,
		nextLeaf:  capacity,
	}
	metadata, err := nodes.Get(metadataId)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree metadata; %w", err)
	}
	if !metadata.Amount.IsZero() {
		cursor := metadata.Amount
		if !cursor.IsUint64() || cursor.Uint64() < capacity || cursor.Uint64() > 2*capacity {
			return nil, fmt.Errorf("tree metadata does not match capacity %d", capacity)
		}
		tree.nextLeaf = cursor.Uint64()
		tree.updateId = metadata.UpdateId
	}
	return tree, nil
}

// RestoreTree initializes the lifecycle metadata of a node table and returns
// a tree resuming from it. It is used by the snapshot import; the node
// records themselves must be loaded into the table by the caller.
func RestoreTree(capacity, nextLeaf, updateId uint64, nodes store.Store[uint64, Node]) (*Tree, error) {
	err := nodes.Set(metadataId, Node{
		UpdateId: updateId,
		Amount:   amount.New(nextLeaf),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store tree metadata; %w", err)
	}
	return NewTree(capacity, nodes)
}

// ParentOf provides the index of the parent of a node.
// By convention, the root is its own parent.
func ParentOf(node uint64) uint64 {
	if node <= rootId {
		return rootId
	}
	return node / 2
}

// Capacity returns the number of leaf slots of the tree.
func (t *Tree) Capacity() uint64 {
	return t.capacity
}

// FirstLeaf returns the node index of the first leaf slot.
func (t *Tree) FirstLeaf() uint64 {
	return t.firstLeaf
}

// NextLeaf returns the node index of the next unallocated leaf slot.
func (t *Tree) NextLeaf() uint64 {
	return t.nextLeaf
}

// UpdateId returns the current value of the logical clock.
func (t *Tree) UpdateId() uint64 {
	return t.updateId
}

// Total returns the current total of all deposits, as recorded at the root.
// The root is updated directly by every operation, so the total is never stale.
func (t *Tree) Total() (amount.Amount, error) {
	root, err := t.nodes.Get(rootId)
	if err != nil {
		return amount.Amount{}, err
	}
	return root.Amount, nil
}

// GetNode provides the raw node table record of the given node. The recorded
// amount of a non-root node may be stale; use LeafAmount for a reconciled
// value. Intended for snapshotting and inspection.
func (t *Tree) GetNode(id uint64) (Node, error) {
	return t.nodes.Get(id)
}

// Deposit allocates the next leaf slot for the given amount and returns its
// node index. The amount must be positive. Fails with ErrCapacityExceeded
// once all leaf slots have been allocated.
func (t *Tree) Deposit(a amount.Amount) (uint64, error) {
	if a.IsZero() {
		return 0, ErrZeroAmount
	}
	if t.nextLeaf > t.lastLeaf {
		return 0, ErrCapacityExceeded
	}
	leaf := t.nextLeaf
	action := t.updateId + 1
	overlay := newOverlay(t.nodes)
	if err := t.updateUp(overlay, leaf, a, false, action); err != nil {
		return 0, err
	}
	if err := overlay.commit(); err != nil {
		return 0, err
	}
	t.updateId = action
	t.nextLeaf++
	return leaf, nil
}

// Withdraw removes the whole current pro-rata share of the given leaf and
// returns the withdrawn amount.
func (t *Tree) Withdraw(leaf uint64) (amount.Amount, error) {
	return t.WithdrawPercent(leaf, PercentWhole)
}

// WithdrawPercent removes the given percent (fixed-point, PercentWhole = 100%)
// of the current pro-rata share of the given leaf and returns the withdrawn
// amount. Deferred adjustments above the leaf are reconciled first, so the
// share reflects all profit and loss recorded so far.
func (t *Tree) WithdrawPercent(leaf uint64, percent uint64) (amount.Amount, error) {
	if percent > PercentWhole {
		return amount.Amount{}, ErrInvalidPercent
	}
	if !t.allocated(leaf) {
		return amount.Amount{}, ErrLeafNotFound
	}
	pushAction := t.updateId + 1
	takeAction := t.updateId + 2
	overlay := newOverlay(t.nodes)

	if err := t.reconcile(overlay, leaf, pushAction); err != nil {
		return amount.Amount{}, err
	}
	node, err := overlay.get(leaf)
	if err != nil {
		return amount.Amount{}, err
	}
	withdrawn, overflow := amount.MulDiv(node.Amount, amount.New(percent), amount.New(PercentWhole))
	if overflow {
		return amount.Amount{}, fmt.Errorf("withdraw amount of leaf %d overflows", leaf)
	}
	if err := t.updateUp(overlay, leaf, withdrawn, true, takeAction); err != nil {
		return amount.Amount{}, err
	}
	if err := overlay.commit(); err != nil {
		return amount.Amount{}, err
	}
	t.updateId = takeAction
	return withdrawn, nil
}

// LeafAmount provides the reconciled amount of the given leaf. Deferred
// adjustments above the leaf are delivered first, so this read advances the
// logical clock, but it never changes the value of any deposit.
func (t *Tree) LeafAmount(leaf uint64) (amount.Amount, error) {
	if !t.allocated(leaf) {
		return amount.Amount{}, ErrLeafNotFound
	}
	action := t.updateId + 1
	overlay := newOverlay(t.nodes)
	if err := t.reconcile(overlay, leaf, action); err != nil {
		return amount.Amount{}, err
	}
	node, err := overlay.get(leaf)
	if err != nil {
		return amount.Amount{}, err
	}
	if err := overlay.commit(); err != nil {
		return amount.Amount{}, err
	}
	t.updateId = action
	return node.Amount, nil
}

// AddGlobal distributes a profit pro-rata over all active leaves.
// The delta is recorded at the highest covering nodes only; leaves observe
// their shares lazily, when a later operation reconciles them.
func (t *Tree) AddGlobal(delta amount.Amount) error {
	return t.adjustGlobal(delta, false)
}

// RemoveGlobal deducts a loss pro-rata over all active leaves. Fails with
// ErrInsufficientAmount if the delta exceeds the current total.
func (t *Tree) RemoveGlobal(delta amount.Amount) error {
	return t.adjustGlobal(delta, true)
}

// AddUpTo distributes a profit pro-rata over the leaves allocated no later
// than the given leaf, leaving any younger deposit unaffected.
func (t *Tree) AddUpTo(delta amount.Amount, leaf uint64) error {
	return t.adjustUpTo(delta, false, leaf)
}

// RemoveUpTo deducts a loss pro-rata over the leaves allocated no later than
// the given leaf, leaving any younger deposit unaffected.
func (t *Tree) RemoveUpTo(delta amount.Amount, leaf uint64) error {
	return t.adjustUpTo(delta, true, leaf)
}

// RangeSum provides the sum of the recorded amounts of the given leaf range
// without reconciling deferred adjustments. Adjustments parked at nodes fully
// inside the range are included; adjustments parked above it are not.
func (t *Tree) RangeSum(begin, end uint64) (amount.Amount, error) {
	if begin < t.firstLeaf || end > t.lastLeaf || begin > end {
		return amount.Amount{}, ErrLeafNotFound
	}
	overlay := newOverlay(t.nodes)
	return t.sumRange(overlay, rootId, t.firstLeaf, t.lastLeaf, begin, end)
}

// GetStateHash computes and returns a cryptographical hash of the node table.
func (t *Tree) GetStateHash() (common.Hash, error) {
	return t.nodes.GetStateHash()
}

// Flush writes the tree lifecycle metadata and flushes the node table.
func (t *Tree) Flush() error {
	err := t.nodes.Set(metadataId, Node{
		UpdateId: t.updateId,
		Amount:   amount.New(t.nextLeaf),
	})
	if err != nil {
		return fmt.Errorf("failed to store tree metadata; %w", err)
	}
	return t.nodes.Flush()
}

// Close flushes and closes the node table.
func (t *Tree) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	return t.nodes.Close()
}

// GetMemoryFootprint provides the size of the tree in memory in bytes.
func (t *Tree) GetMemoryFootprint() *common.MemoryFootprint {
	footprint := common.NewMemoryFootprint(0)
	footprint.AddChild("nodes", t.nodes.GetMemoryFootprint())
	return footprint
}

// allocated is true for leaves below the next-leaf cursor.
func (t *Tree) allocated(leaf uint64) bool {
	return leaf >= t.firstLeaf && leaf < t.nextLeaf
}

// adjustGlobal applies a signed delta over the whole active leaf range.
func (t *Tree) adjustGlobal(delta amount.Amount, isSub bool) error {
	if t.nextLeaf == t.firstLeaf {
		return ErrNoLiquidity
	}
	if delta.IsZero() {
		return nil
	}
	action := t.updateId + 1
	overlay := newOverlay(t.nodes)
	if isSub {
		root, err := overlay.get(rootId)
		if err != nil {
			return err
		}
		if root.Amount.Less(delta) {
			return ErrInsufficientAmount
		}
	}
	if err := t.applyRange(overlay, rootId, t.firstLeaf, t.lastLeaf, t.firstLeaf, t.nextLeaf-1, delta, isSub, action); err != nil {
		return err
	}
	if err := overlay.commit(); err != nil {
		return err
	}
	t.updateId = action
	return nil
}

// adjustUpTo applies a signed delta over the active leaf prefix ending at the
// given leaf. The boundary leaf is reconciled first, so the distribution
// weights along the prefix boundary reflect all previous adjustments.
func (t *Tree) adjustUpTo(delta amount.Amount, isSub bool, leaf uint64) error {
	if !t.allocated(leaf) {
		return ErrLeafNotFound
	}
	if delta.IsZero() {
		return nil
	}
	pushAction := t.updateId + 1
	applyAction := t.updateId + 2
	overlay := newOverlay(t.nodes)
	if err := t.reconcile(overlay, leaf, pushAction); err != nil {
		return err
	}
	if isSub {
		covered, err := t.sumRange(overlay, rootId, t.firstLeaf, t.lastLeaf, t.firstLeaf, leaf)
		if err != nil {
			return err
		}
		if covered.Less(delta) {
			return ErrInsufficientAmount
		}
	}
	if err := t.applyRange(overlay, rootId, t.firstLeaf, t.lastLeaf, t.firstLeaf, leaf, delta, isSub, applyAction); err != nil {
		return err
	}
	if err := overlay.commit(); err != nil {
		return err
	}
	t.updateId = applyAction
	return nil
}

// updateUp applies a delta to a leaf and every ancestor up to the root,
// stamping the whole path with the given action. All nodes of the path become
// mutually consistent; siblings off the path may become stale relative to
// their updated parents.
func (t *Tree) updateUp(overlay *nodeOverlay, leaf uint64, delta amount.Amount, isSub bool, action uint64) error {
	for node := leaf; ; node = ParentOf(node) {
		if err := t.applyToNode(overlay, node, delta, isSub, action); err != nil {
			return err
		}
		if node == rootId {
			return nil
		}
	}
}

// reconcile delivers all deferred adjustments pending above the given leaf:
// it locates the deepest ancestor known to be consistent with everything
// above it and pushes batched totals down from there to the leaf.
func (t *Tree) reconcile(overlay *nodeOverlay, leaf uint64, action uint64) error {
	node, begin, end, err := t.syncedAncestor(overlay, leaf)
	if err != nil {
		return err
	}
	return t.pushDown(overlay, node, begin, end, leaf, action)
}

// syncedAncestor descends from the root towards the given leaf and returns
// the deepest node of the path whose child on the path carries an older stamp
// than the node itself, together with the leaf range the node covers. Data
// above the returned node is consistent; the returned node is the point where
// reconciliation towards the leaf must start. Terminates at the leaf itself
// if the whole path is consistent. This is a pure read.
func (t *Tree) syncedAncestor(overlay *nodeOverlay, leaf uint64) (node, begin, end uint64, err error) {
	node, begin, end = rootId, t.firstLeaf, t.lastLeaf
	record, err := overlay.get(node)
	if err != nil {
		return 0, 0, 0, err
	}
	for node != leaf {
		mid := (begin + end) / 2
		child, childBegin, childEnd := 2*node, begin, mid
		if leaf > mid {
			child, childBegin, childEnd = 2*node+1, mid+1, end
		}
		childRecord, err := overlay.get(child)
		if err != nil {
			return 0, 0, 0, err
		}
		if childRecord.UpdateId < record.UpdateId {
			// the child has not seen the adjustment recorded at this node yet
			return node, begin, end, nil
		}
		node, begin, end, record = child, childBegin, childEnd, childRecord
	}
	return node, begin, end, nil
}

// pushDown propagates the batched total of a node down towards the given
// leaf, one level at a time. On each level the node total is split between
// the two children in proportion to their last recorded amounts; the left
// child receives the floor of its share and the right child the exact
// remainder, so the children always sum to the parent exactly. Children off
// the path to the leaf are left to be reconciled by their own future reads.
func (t *Tree) pushDown(overlay *nodeOverlay, node, begin, end, leaf, action uint64) error {
	for node != leaf {
		record, err := overlay.get(node)
		if err != nil {
			return err
		}
		lChild, rChild := 2*node, 2*node+1
		left, err := overlay.get(lChild)
		if err != nil {
			return err
		}
		right, err := overlay.get(rChild)
		if err != nil {
			return err
		}
		sum, overflow := amount.AddOverflow(left.Amount, right.Amount)
		if overflow {
			return fmt.Errorf("amounts of nodes %d and %d overflow", lChild, rChild)
		}
		if sum.IsZero() {
			// nothing to distribute below this point
			return nil
		}
		lAmount, overflow := amount.MulDiv(record.Amount, left.Amount, sum)
		if overflow {
			return fmt.Errorf("share of node %d overflows", lChild)
		}
		left.Amount, left.UpdateId = lAmount, action
		right.Amount, right.UpdateId = amount.Sub(record.Amount, lAmount), action
		overlay.set(lChild, left)
		overlay.set(rChild, right)

		mid := (begin + end) / 2
		if leaf <= mid {
			node, end = lChild, mid
		} else {
			node, begin = rChild, mid+1
		}
	}
	return nil
}

// applyRange applies a signed delta over the leaf range [targetBegin, targetEnd]
// of the subtree of the given node covering [begin, end]. The delta is written
// at the highest nodes exactly covering the target; their descendants are left
// stale, to be reconciled lazily on a future read. Nodes above the deferral
// points are updated with their full share so that every node of the recursion
// path keeps a correct aggregate.
func (t *Tree) applyRange(overlay *nodeOverlay, node, begin, end, targetBegin, targetEnd uint64, delta amount.Amount, isSub bool, action uint64) error {
	if (begin == targetBegin && end == targetEnd) || begin == end {
		// deferral point: the node covers exactly the targeted leaves
		return t.applyToNode(overlay, node, delta, isSub, action)
	}
	mid := (begin + end) / 2
	lChild, rChild := 2*node, 2*node+1
	if targetBegin > mid {
		if err := t.applyRange(overlay, rChild, mid+1, end, targetBegin, targetEnd, delta, isSub, action); err != nil {
			return err
		}
	} else if targetEnd <= mid {
		if err := t.applyRange(overlay, lChild, begin, mid, targetBegin, targetEnd, delta, isSub, action); err != nil {
			return err
		}
	} else {
		// the target straddles the midpoint - split the delta between the
		// children in proportion to the amounts they hold within the target
		left, err := overlay.get(lChild)
		if err != nil {
			return err
		}
		right, err := overlay.get(rChild)
		if err != nil {
			return err
		}
		rWeight := right.Amount
		if !isSub && targetEnd < end {
			// the right child also covers leaves beyond the target; their
			// amounts must not attract any share of the added delta
			tail, err := t.sumRange(overlay, rChild, mid+1, end, targetEnd+1, end)
			if err != nil {
				return err
			}
			excluded, underflow := amount.SubUnderflow(rWeight, tail)
			if underflow {
				return fmt.Errorf("tail of node %d exceeds its recorded amount", rChild)
			}
			rWeight = excluded
		}
		sum, overflow := amount.AddOverflow(left.Amount, rWeight)
		if overflow {
			return fmt.Errorf("amounts of nodes %d and %d overflow", lChild, rChild)
		}
		if sum.IsZero() {
			// no weights to distribute over - the range is skipped entirely
			return nil
		}
		lShare, overflow := amount.MulDiv(delta, left.Amount, sum)
		if overflow {
			return fmt.Errorf("share of node %d overflows", lChild)
		}
		rShare := amount.Sub(delta, lShare)
		if err := t.applyRange(overlay, lChild, begin, mid, targetBegin, mid, lShare, isSub, action); err != nil {
			return err
		}
		if err := t.applyRange(overlay, rChild, mid+1, end, mid+1, targetEnd, rShare, isSub, action); err != nil {
			return err
		}
	}
	return t.applyToNode(overlay, node, delta, isSub, action)
}

// sumRange accumulates the recorded amounts over the leaf range
// [targetBegin, targetEnd] of the subtree of the given node covering
// [begin, end]. It is a pure read over the recorded (possibly stale) state.
func (t *Tree) sumRange(overlay *nodeOverlay, node, begin, end, targetBegin, targetEnd uint64) (amount.Amount, error) {
	if (begin == targetBegin && end == targetEnd) || begin == end {
		record, err := overlay.get(node)
		if err != nil {
			return amount.Amount{}, err
		}
		return record.Amount, nil
	}
	mid := (begin + end) / 2
	if targetEnd <= mid {
		return t.sumRange(overlay, 2*node, begin, mid, targetBegin, targetEnd)
	}
	if targetBegin > mid {
		return t.sumRange(overlay, 2*node+1, mid+1, end, targetBegin, targetEnd)
	}
	left, err := t.sumRange(overlay, 2*node, begin, mid, targetBegin, mid)
	if err != nil {
		return amount.Amount{}, err
	}
	right, err := t.sumRange(overlay, 2*node+1, mid+1, end, mid+1, targetEnd)
	if err != nil {
		return amount.Amount{}, err
	}
	sum, overflow := amount.AddOverflow(left, right)
	if overflow {
		return amount.Amount{}, fmt.Errorf("range sum of node %d overflows", node)
	}
	return sum, nil
}

// applyToNode adds or subtracts a delta on a single node and stamps it.
func (t *Tree) applyToNode(overlay *nodeOverlay, node uint64, delta amount.Amount, isSub bool, action uint64) error {
	record, err := overlay.get(node)
	if err != nil {
		return err
	}
	if isSub {
		result, underflow := amount.SubUnderflow(record.Amount, delta)
		if underflow {
			return ErrInsufficientAmount
		}
		record.Amount = result
	} else {
		result, overflow := amount.AddOverflow(record.Amount, delta)
		if overflow {
			return fmt.Errorf("amount of node %d overflows", node)
		}
		record.Amount = result
	}
	record.UpdateId = action
	overlay.set(node, record)
	return nil
}
