//
// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use
// of this software will be governed by the GNU Lesser General Public License v3.
//

package pool

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Fantom-foundation/LiquidityTree/go/backend/hashtree"
	"github.com/Fantom-foundation/LiquidityTree/go/backend/hashtree/htldb"
	"github.com/Fantom-foundation/LiquidityTree/go/backend/hashtree/htmemory"
	"github.com/Fantom-foundation/LiquidityTree/go/backend/store"
	"github.com/Fantom-foundation/LiquidityTree/go/backend/store/ldb"
	"github.com/Fantom-foundation/LiquidityTree/go/backend/store/memory"
	"github.com/Fantom-foundation/LiquidityTree/go/common"
	"github.com/Fantom-foundation/LiquidityTree/go/common/amount"
	"github.com/Fantom-foundation/LiquidityTree/go/ltree"
	treeio "github.com/Fantom-foundation/LiquidityTree/go/ltree/io"
	"github.com/syndtr/goleveldb/leveldb"
)

// Pool is the interface consumed by the betting callers: it accepts liquidity
// deposits per provider, pays out a provider's current pro-rata share on
// withdrawal, and books net profit or loss of settled bets into the pool,
// either globally or scoped to the deposits of an early liquidity stage.
//
// A Pool instance serializes its operations internally; concurrent calls are
// safe and are applied one at a time.
type Pool interface {

	// Deposit books new liquidity and returns the leaf id identifying the deposit.
	Deposit(a amount.Amount) (uint64, error)

	// Withdraw removes the whole current share of the deposit and returns the paid amount.
	Withdraw(leaf uint64) (amount.Amount, error)

	// WithdrawPercent removes the given percent (ltree.PercentWhole = 100%)
	// of the current share of the deposit and returns the paid amount.
	WithdrawPercent(leaf uint64, percent uint64) (amount.Amount, error)

	// AddGlobal books a profit pro-rata over all deposits.
	AddGlobal(delta amount.Amount) error

	// RemoveGlobal books a loss pro-rata over all deposits.
	RemoveGlobal(delta amount.Amount) error

	// AddUpTo books a profit pro-rata over the deposits made no later than the given one.
	AddUpTo(delta amount.Amount, leaf uint64) error

	// RemoveUpTo books a loss pro-rata over the deposits made no later than the given one.
	RemoveUpTo(delta amount.Amount, leaf uint64) error

	// LeafAmount provides the reconciled current share of the given deposit.
	LeafAmount(leaf uint64) (amount.Amount, error)

	// RangeSum provides the recorded (non-reconciled) sum over a leaf range.
	RangeSum(begin, end uint64) (amount.Amount, error)

	// Total provides the current total of the pool.
	Total() (amount.Amount, error)

	// Capacity provides the leaf capacity the pool was created with.
	Capacity() uint64

	// FirstLeaf provides the id of the first leaf of the pool.
	FirstLeaf() uint64

	// NextLeaf provides the id the next deposit will be booked under.
	NextLeaf() uint64

	// StateHash provides a cryptographic hash of the pool node table.
	StateHash() (common.Hash, error)

	// Export writes a snapshot of the pool state to the given writer.
	Export(out io.Writer) error

	// Pools provide information on their memory footprint.
	common.MemoryFootprintProvider

	// Also, pools need to be flushed and closed.
	common.FlushAndCloser
}

// capacityKey is the database key persisting the configured tree capacity of
// a LevelDB-hosted pool, verified on every open.
var capacityKey = common.MetadataKey.StrToDBKey("capacity")

// OpenPool opens a liquidity pool in the given directory. The directory is
// only used by persistent variants; the memory variant ignores it. For a
// persistent pool the configured capacity must match the capacity the pool
// was created with; a configured capacity of zero adopts the stored one.
func OpenPool(directory string, configuration Configuration, properties Properties) (Pool, error) {
	nodes, db, err := openStore(directory, configuration, properties)
	if err != nil {
		return nil, err
	}
	capacity := configuration.Capacity
	if db != nil {
		if capacity, err = resolveCapacity(db, configuration.Capacity); err != nil {
			return nil, errors.Join(err, nodes.Close(), closeDb(db))
		}
	}
	tree, err := ltree.NewTree(capacity, nodes)
	if err != nil {
		return nil, errors.Join(err, nodes.Close(), closeDb(db))
	}
	return &liquidityPool{tree: tree, db: db}, nil
}

// ImportPool restores a pool in the given directory from a snapshot created
// by Pool.Export. The capacity of the snapshot must match the configuration,
// unless the configured capacity is zero.
func ImportPool(directory string, configuration Configuration, properties Properties, in io.Reader) (Pool, error) {
	nodes, db, err := openStore(directory, configuration, properties)
	if err != nil {
		return nil, err
	}
	tree, err := treeio.Import(in, nodes)
	if err != nil {
		return nil, errors.Join(err, nodes.Close(), closeDb(db))
	}
	if configuration.Capacity != 0 && tree.Capacity() != configuration.Capacity {
		err = fmt.Errorf("snapshot capacity %d does not match configuration %v", tree.Capacity(), configuration)
		return nil, errors.Join(err, nodes.Close(), closeDb(db))
	}
	if db != nil {
		if _, err = resolveCapacity(db, tree.Capacity()); err != nil {
			return nil, errors.Join(err, nodes.Close(), closeDb(db))
		}
	}
	return &liquidityPool{tree: tree, db: db}, nil
}

// openStore creates the node table store for the configured variant.
func openStore(directory string, configuration Configuration, properties Properties) (store.Store[uint64, ltree.Node], *leveldb.DB, error) {
	pageSize, err := properties.GetInteger(PageSize, defaultPageSize)
	if err != nil {
		return nil, nil, err
	}
	branchingFactor, err := properties.GetInteger(BranchingFactor, defaultBranchingFactor)
	if err != nil {
		return nil, nil, err
	}

	switch configuration.Variant {
	case VariantMemory:
		nodes, err := memory.NewStore[uint64, ltree.Node](
			ltree.NodeSerializer{},
			ltree.Node{},
			pageSize,
			htmemory.CreateHashTreeFactory(branchingFactor))
		return nodes, nil, err

	case VariantLevelDb:
		db, err := leveldb.OpenFile(directory, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open pool database; %w", err)
		}
		var factory hashtree.Factory = htldb.CreateHashTreeFactory(db, common.NodeStoreKey, branchingFactor)
		nodes, err := ldb.NewStore[uint64, ltree.Node](
			db,
			common.NodeStoreKey,
			ltree.NodeSerializer{},
			common.Uint64Serializer{},
			factory,
			ltree.Node{},
			pageSize)
		if err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}
		return nodes, db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported pool variant: %v", configuration.Variant)
	}
}

// resolveCapacity verifies the capacity the database was created with,
// persisting the configured one on the first open. A configured capacity of
// zero adopts the stored capacity and fails on a fresh database.
func resolveCapacity(db *leveldb.DB, configured uint64) (uint64, error) {
	serializer := common.Uint64Serializer{}
	stored, err := db.Get(capacityKey.ToBytes(), nil)
	if err == leveldb.ErrNotFound {
		if configured == 0 {
			return 0, fmt.Errorf("a capacity must be configured to create a new pool")
		}
		return configured, db.Put(capacityKey.ToBytes(), serializer.ToBytes(configured), nil)
	}
	if err != nil {
		return 0, err
	}
	storedCapacity := serializer.FromBytes(stored)
	if configured != 0 && storedCapacity != configured {
		return 0, fmt.Errorf("pool was created with capacity %d, cannot open with %d", storedCapacity, configured)
	}
	return storedCapacity, nil
}

func closeDb(db *leveldb.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// liquidityPool implements the Pool interface on top of a liquidity tree,
// serializing all operations to satisfy the single-mutator discipline the
// tree requires.
type liquidityPool struct {
	tree *ltree.Tree
	db   *leveldb.DB // nil for the memory variant
	mu   sync.Mutex
}

func (p *liquidityPool) Deposit(a amount.Amount) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.Deposit(a)
}

func (p *liquidityPool) Withdraw(leaf uint64) (amount.Amount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.Withdraw(leaf)
}

func (p *liquidityPool) WithdrawPercent(leaf uint64, percent uint64) (amount.Amount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.WithdrawPercent(leaf, percent)
}

func (p *liquidityPool) AddGlobal(delta amount.Amount) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.AddGlobal(delta)
}

func (p *liquidityPool) RemoveGlobal(delta amount.Amount) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.RemoveGlobal(delta)
}

func (p *liquidityPool) AddUpTo(delta amount.Amount, leaf uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.AddUpTo(delta, leaf)
}

func (p *liquidityPool) RemoveUpTo(delta amount.Amount, leaf uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.RemoveUpTo(delta, leaf)
}

func (p *liquidityPool) LeafAmount(leaf uint64) (amount.Amount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.LeafAmount(leaf)
}

func (p *liquidityPool) RangeSum(begin, end uint64) (amount.Amount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.RangeSum(begin, end)
}

func (p *liquidityPool) Total() (amount.Amount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.Total()
}

func (p *liquidityPool) Capacity() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.Capacity()
}

func (p *liquidityPool) FirstLeaf() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.FirstLeaf()
}

func (p *liquidityPool) NextLeaf() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.NextLeaf()
}

func (p *liquidityPool) StateHash() (common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.GetStateHash()
}

func (p *liquidityPool) Export(out io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return treeio.Export(p.tree, out)
}

func (p *liquidityPool) GetMemoryFootprint() *common.MemoryFootprint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.GetMemoryFootprint()
}

func (p *liquidityPool) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.Flush()
}

func (p *liquidityPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(
		p.tree.Close(),
		closeDb(p.db),
	)
}
