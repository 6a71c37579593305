package rpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/outlate/internal/auth"
	"github.com/mmynk/outlate/internal/calculator"
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/money"
	"github.com/mmynk/outlate/internal/ocr"
	"github.com/mmynk/outlate/internal/storage"
)

func TestToConnectErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"validation", &calculator.ValidationError{Field: "tax", Reason: "negative"}, connect.CodeInvalidArgument},
		{"consistency", &calculator.InternalConsistencyError{Check: "balance-sum"}, connect.CodeInternal},
		{"missing row", fmt.Errorf("outing o-1: %w", storage.ErrNotFound), connect.CodeNotFound},
		{"archived", fmt.Errorf("outing o-1: %w", calculator.ErrOutingArchived), connect.CodeFailedPrecondition},
		{"already paid", models.ErrAlreadyPaid, connect.CodeFailedPrecondition},
		{"email taken", auth.ErrEmailExists, connect.CodeAlreadyExists},
		{"weak password", auth.ErrWeakPassword, connect.CodeInvalidArgument},
		{"blank scan", ocr.ErrNoItems, connect.CodeInvalidArgument},
		{"bad login", auth.ErrInvalidCredentials, connect.CodeUnauthenticated},
		{"canceled", context.Canceled, connect.CodeCanceled},
		{"unknown", errors.New("disk on fire"), connect.CodeInternal},
		{"already connect", connect.NewError(connect.CodeUnimplemented, errors.New("no ocr")), connect.CodeUnimplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToConnectError(tt.err).Code())
		})
	}
	assert.Nil(t, ToConnectError(nil))
}

func TestValidationDetailRoundTrip(t *testing.T) {
	err := ToConnectError(fmt.Errorf("add receipt: %w", &calculator.ValidationError{
		ReceiptID: "receipt-1",
		Field:     "items[2].assignedTo",
		Reason:    `item "Caesar Salad" has no assignees`,
	}))

	ve, ok := ValidationDetail(err)
	require.True(t, ok)
	assert.Equal(t, "receipt-1", ve.ReceiptID)
	assert.Equal(t, "items[2].assignedTo", ve.Field)
	assert.Contains(t, ve.Reason, "Caesar Salad")

	_, ok = ValidationDetail(ToConnectError(storage.ErrNotFound))
	assert.False(t, ok)
}

func TestJSONCodec(t *testing.T) {
	type msg struct {
		Name   string      `json:"name"`
		Amount money.Money `json:"amount"`
	}
	codec := JSONCodec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(msg{Name: "Tip", Amount: 1100})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Tip","amount":1100}`, string(data))

	var got msg
	require.NoError(t, codec.Unmarshal([]byte(`{"name":"Tax","amount":495}`), &got))
	assert.Equal(t, msg{Name: "Tax", Amount: 495}, got)

	require.NoError(t, codec.Unmarshal(nil, &got), "empty body is an empty message")
	assert.Error(t, codec.Unmarshal([]byte(`{"nmae":"typo"}`), &got))
	assert.Error(t, codec.Unmarshal([]byte(`{"amount":4.95}`), &got), "amounts are integer cents")
}
