// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

// TableSpace divide key-value storage into spaces by adding a prefix to the key.
type TableSpace byte

const (
	// NodeStoreKey is the "table space" of the liquidity tree node table
	NodeStoreKey TableSpace = 'N'
	// MetadataKey is the "table space" of tree lifecycle metadata
	MetadataKey TableSpace = 'M'
	// HashKey is the "table space" for the hash tree
	HashKey TableSpace = 'H'
)

// DbKey expects max size of the 32B key plus at most two bytes
// for the table prefix (e.g. nodes, metadata, ...) and the domain (e.g. data, hash, ...)
type DbKey [34]byte

func (d DbKey) ToBytes() []byte {
	return d[:]
}

// ToDBKey converts the input key to its respective table space key
func (t TableSpace) ToDBKey(key []byte) DbKey {
	var dbKey DbKey
	dbKey[0] = byte(t)
	copy(dbKey[1:], key)
	return dbKey
}

// DBToDBKey prepends the table space to an already converted key
func (t TableSpace) DBToDBKey(key DbKey) DbKey {
	var dbKey DbKey
	dbKey[0] = byte(t)
	copy(dbKey[1:], key[:])
	return dbKey
}

// StrToDBKey converts the input key to its respective table space key
func (t TableSpace) StrToDBKey(key string) DbKey {
	var dbKey DbKey
	dbKey[0] = byte(t)
	copy(dbKey[1:], key)
	return dbKey
}
