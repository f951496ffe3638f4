package shard_test

import (
	"encoding/json"
	"testing"

	apperrors "github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/replication"
	"github.com/YouSangSon/shardwatch/internal/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ordersShard = replication.ShardID{Index: "orders", ID: 3}

func item(id int, op replication.OpType, docID, source string) replication.BulkItemRequest {
	var src json.RawMessage
	if source != "" {
		src = json.RawMessage(source)
	}
	return replication.BulkItemRequest{ID: id, OpType: op, DocID: docID, Source: src}
}

func TestStore_ApplyBulk_InOrder(t *testing.T) {
	// Arrange
	store := shard.NewStore()
	req := replication.NewBulkShardRequest(ordersShard, replication.RefreshNone,
		item(0, replication.OpIndex, "1", `{"sku":"A","qty":1}`),
		item(1, replication.OpIndex, "1", `{"sku":"A","qty":2}`),
		item(2, replication.OpUpdate, "1", `{"qty":5}`),
		item(3, replication.OpCreate, "2", `{"sku":"B"}`),
		item(4, replication.OpDelete, "2", ""),
	)

	// Act
	resp, err := store.ApplyBulk(req)

	// Assert
	require.NoError(t, err)
	require.Len(t, resp.Items, 5)
	assert.False(t, resp.HasFailures())
	assert.Equal(t, ordersShard, resp.ShardID)

	assert.Equal(t, shard.ResultCreated, resp.Items[0].Result)
	assert.Equal(t, shard.ResultUpdated, resp.Items[1].Result)
	assert.Equal(t, int64(2), resp.Items[1].Version)
	assert.Equal(t, shard.ResultUpdated, resp.Items[2].Result)
	assert.Equal(t, int64(3), resp.Items[2].Version)
	assert.Equal(t, shard.ResultCreated, resp.Items[3].Result)
	assert.Equal(t, shard.ResultDeleted, resp.Items[4].Result)

	doc, err := store.Get(ordersShard, "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sku":"A","qty":5}`, string(doc.Source))
	assert.Equal(t, 1, store.Count(ordersShard))
}

func TestStore_ApplyBulk_ItemFailures(t *testing.T) {
	// Arrange
	store := shard.NewStore()
	_, err := store.ApplyBulk(replication.NewBulkShardRequest(ordersShard, replication.RefreshNone,
		item(0, replication.OpIndex, "1", `{"a":1}`),
	))
	require.NoError(t, err)

	req := replication.NewBulkShardRequest(ordersShard, replication.RefreshNone,
		item(0, replication.OpCreate, "1", `{"a":2}`),
		item(1, replication.OpUpdate, "missing", `{"a":2}`),
		item(2, replication.OpIndex, "3", `not json`),
		item(3, "upsert", "4", `{}`),
		item(4, replication.OpIndex, "", `{}`),
		item(5, replication.OpDelete, "missing", ""),
		item(6, replication.OpIndex, "5", `{"ok":true}`),
	)

	// Act
	resp, err := store.ApplyBulk(req)

	// Assert
	require.NoError(t, err)
	require.Len(t, resp.Items, 7)
	assert.True(t, resp.HasFailures())
	for i := 0; i < 5; i++ {
		assert.True(t, resp.Items[i].Failed(), "item %d should fail", i)
	}
	assert.False(t, resp.Items[5].Failed())
	assert.Equal(t, shard.ResultNotFound, resp.Items[5].Result)
	assert.False(t, resp.Items[6].Failed())
	assert.Equal(t, 2, store.Count(ordersShard))
}

func TestStore_InvalidShard(t *testing.T) {
	// Arrange
	store := shard.NewStore()
	bad := replication.ShardID{Index: "", ID: 0}

	// Act
	_, bulkErr := store.ApplyBulk(replication.NewBulkShardRequest(bad, replication.RefreshNone))
	_, getErr := store.Get(replication.ShardID{Index: "orders", ID: -1}, "1")
	_, nilErr := store.ApplyBulk(nil)

	// Assert
	assert.True(t, apperrors.Is(bulkErr, apperrors.ErrCodeShardNotFound))
	assert.True(t, apperrors.Is(getErr, apperrors.ErrCodeShardNotFound))
	assert.True(t, apperrors.Is(nilErr, apperrors.ErrCodeInvalidRequest))
}

func TestStore_GetMissing(t *testing.T) {
	// Arrange
	store := shard.NewStore()

	// Act
	doc, err := store.Get(ordersShard, "nope")

	// Assert
	assert.Nil(t, doc)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeDocumentNotFound))
}
