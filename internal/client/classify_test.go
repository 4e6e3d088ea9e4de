package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seansukamto/bankclient/internal/domain"
)

func TestClassify_TransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Classify("GET /accounts", 0, nil, cause)

	var nerr *domain.NetworkError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "GET /accounts", nerr.Op)
	assert.ErrorIs(t, err, cause)
}

func TestClassify_AuthStatuses(t *testing.T) {
	for _, status := range []int{401, 403} {
		err := Classify("GET /transactions/history", status, []byte(`{"message":"invalid token"}`), nil)

		var aerr *domain.AuthError
		require.ErrorAs(t, err, &aerr, "status %d", status)
		assert.Equal(t, status, aerr.Status)
		assert.Equal(t, "invalid token", aerr.Message)
	}
}

func TestClassify_UnhandledStatusIsAPIError(t *testing.T) {
	err := Classify("POST /transfer", 500, []byte(`{"message":"boom"}`), nil)

	var aerr *domain.APIError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 500, aerr.Status)
	assert.Equal(t, "boom", aerr.Message)
}

func TestClassify_SuccessIsNil(t *testing.T) {
	assert.NoError(t, Classify("GET /accounts", 200, nil, nil))
	assert.NoError(t, Classify("POST /transfer", 201, nil, nil))
}

func TestServerMessage_FallsBackAcrossKeys(t *testing.T) {
	assert.Equal(t, "a", serverMessage([]byte(`{"message":"a"}`)))
	assert.Equal(t, "b", serverMessage([]byte(`{"detail":"b"}`)))
	assert.Equal(t, "c", serverMessage([]byte(`{"error":"c"}`)))
	assert.Equal(t, "not json", serverMessage([]byte(`not json`)))
}

func TestRetryableNetwork(t *testing.T) {
	ctx := context.Background()
	assert.True(t, retryableNetwork(ctx, errors.New("connection reset")))
	// a per-attempt timeout matches context.DeadlineExceeded but the outer
	// context is still live, so it stays retryable
	assert.True(t, retryableNetwork(ctx, context.DeadlineExceeded))
	assert.False(t, retryableNetwork(ctx, context.Canceled))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, retryableNetwork(cancelled, errors.New("connection reset")))
}
