package shard_test

import (
	"context"
	"encoding/json"
	"testing"

	apperrors "github.com/YouSangSon/shardwatch/internal/pkg/errors"
	"github.com/YouSangSon/shardwatch/internal/replication"
	"github.com/YouSangSon/shardwatch/internal/shard"
	"github.com/YouSangSon/shardwatch/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*transport.Service, *shard.Store) {
	t.Helper()
	svc := transport.NewService()
	store := shard.NewStore()
	shard.RegisterHandlers(svc, store)
	return svc, store
}

func TestHandlers_PrimaryThenReplicaThenGet(t *testing.T) {
	// Arrange
	svc, store := newService(t)
	ctx := context.Background()
	bulk := replication.NewBulkShardRequest(ordersShard, replication.RefreshNone,
		item(0, replication.OpIndex, "1", `{"sku":"A"}`),
	)

	// Act
	primary, err := svc.Dispatch(ctx, replication.NewPrimaryRequest(bulk, "alloc-p", 1))
	require.NoError(t, err)
	replica, err := svc.Dispatch(ctx, replication.NewReplicaRequest(bulk, "alloc-r", 1, 0, 0))
	require.NoError(t, err)
	get, err := svc.Dispatch(ctx, &replication.GetRequest{ShardID: ordersShard, DocID: "1"})
	require.NoError(t, err)

	// Assert
	require.Equal(t, transport.VariantResponse, primary.Variant)
	primaryResp := primary.Response.(*replication.BulkShardResponse)
	assert.Equal(t, shard.ResultCreated, primaryResp.Items[0].Result)

	require.Equal(t, transport.VariantResponse, replica.Variant)
	replicaResp := replica.Response.(*replication.BulkShardResponse)
	assert.Equal(t, shard.ResultUpdated, replicaResp.Items[0].Result)

	getResp := get.Response.(*replication.GetResponse)
	assert.True(t, getResp.Found)
	assert.Equal(t, int64(2), getResp.Version)
	assert.JSONEq(t, `{"sku":"A"}`, string(getResp.Source))
	assert.Equal(t, 1, store.Count(ordersShard))
}

func TestHandlers_GetMissingDocument(t *testing.T) {
	// Arrange
	svc, _ := newService(t)

	// Act
	reply, err := svc.Dispatch(context.Background(), &replication.GetRequest{ShardID: ordersShard, DocID: "x"})

	// Assert
	require.NoError(t, err)
	resp := reply.Response.(*replication.GetResponse)
	assert.False(t, resp.Found)
	assert.Equal(t, "x", resp.DocID)
}

func TestHandlers_InvalidShardBecomesErrorReply(t *testing.T) {
	// Arrange
	svc, _ := newService(t)
	bulk := replication.NewBulkShardRequest(replication.ShardID{Index: "orders", ID: -1}, replication.RefreshNone)

	// Act
	reply, err := svc.Dispatch(context.Background(), replication.NewPrimaryRequest(bulk, "alloc", 1))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, transport.VariantError, reply.Variant)
	assert.True(t, apperrors.Is(reply.Err, apperrors.ErrCodeShardNotFound))
}

func TestHandlers_NonBulkInnerRejected(t *testing.T) {
	// Arrange
	svc, _ := newService(t)
	get := &replication.GetRequest{ShardID: ordersShard, DocID: "1"}

	// Act
	reply, err := svc.Dispatch(context.Background(), replication.NewPrimaryRequest(get, "alloc", 1))

	// Assert
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeHandlerNotFound))
	assert.Empty(t, reply.Variant)
}

func TestHandlers_DirectCallRejectsWrongEnvelope(t *testing.T) {
	// Arrange
	h := shard.NewHandlers(shard.NewStore())
	ch := transport.NewLocalChannel("default", "1")
	bulk := replication.NewBulkShardRequest(ordersShard, replication.RefreshNone)

	// Act
	err := h.BulkPrimary(context.Background(), replication.NewReplicaRequest(bulk, "a", 1, 0, 0), ch, nil)

	// Assert
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidRequest))
	assert.False(t, ch.Replied())
}

func TestHandlers_ResponseSerializes(t *testing.T) {
	// Arrange
	svc, _ := newService(t)
	bulk := replication.NewBulkShardRequest(ordersShard, replication.RefreshNone,
		item(0, replication.OpDelete, "ghost", ""),
	)

	// Act
	reply, err := svc.Dispatch(context.Background(), replication.NewPrimaryRequest(bulk, "alloc", 1))
	require.NoError(t, err)
	raw, marshalErr := json.Marshal(reply.Response)

	// Assert
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"shard_id":{"index":"orders","id":3},"items":[{"id":0,"op_type":"delete","doc_id":"ghost","result":"not_found"}]}`, string(raw))
}
