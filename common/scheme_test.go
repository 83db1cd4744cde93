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

import (
	"bytes"
	"testing"
)

func TestTableSpacePrefixesKeys(t *testing.T) {
	key := NodeStoreKey.ToDBKey([]byte{1, 2, 3})
	if key[0] != byte(NodeStoreKey) {
		t.Errorf("key is not prefixed with its table space: %x", key)
	}
	if !bytes.Equal(key[1:4], []byte{1, 2, 3}) {
		t.Errorf("key content damaged: %x", key)
	}
}

func TestTableSpacesDoNotCollide(t *testing.T) {
	idx := Uint64Serializer{}.ToBytes(42)
	dataKey := NodeStoreKey.ToDBKey(idx)
	hashKey := NodeStoreKey.DBToDBKey(HashKey.ToDBKey([]byte{0, 0, 0, 0, 42}))
	metaKey := MetadataKey.StrToDBKey("capacity")
	if dataKey == hashKey || dataKey == metaKey || hashKey == metaKey {
		t.Errorf("keys of different table spaces collide")
	}
}
