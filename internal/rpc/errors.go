package rpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/outlate/internal/auth"
	"github.com/mmynk/outlate/internal/calculator"
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/ocr"
	"github.com/mmynk/outlate/internal/storage"
)

// ToConnectError maps a domain error to its Connect code. Validation failures
// carry a structured detail with the receipt, field and reason so clients can
// point at the offending input.
func ToConnectError(err error) *connect.Error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}

	var ve *calculator.ValidationError
	switch {
	case errors.As(err, &ve):
		out := connect.NewError(connect.CodeInvalidArgument, err)
		if detail, derr := validationDetail(ve); derr == nil {
			out.AddDetail(detail)
		}
		return out
	case errors.Is(err, calculator.ErrInternalConsistency):
		return connect.NewError(connect.CodeInternal, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, calculator.ErrOutingArchived), errors.Is(err, models.ErrAlreadyPaid):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrMissingName):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ocr.ErrEmptyImage), errors.Is(err, ocr.ErrNoItems):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func validationDetail(ve *calculator.ValidationError) (*connect.ErrorDetail, error) {
	s, err := structpb.NewStruct(map[string]any{
		"receiptId": ve.ReceiptID,
		"field":     ve.Field,
		"reason":    ve.Reason,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewErrorDetail(s)
}

// ValidationDetail extracts the validation detail from an error returned by a
// Connect client, if there is one.
func ValidationDetail(err error) (*calculator.ValidationError, bool) {
	var ce *connect.Error
	if !errors.As(err, &ce) || ce.Code() != connect.CodeInvalidArgument {
		return nil, false
	}
	for _, d := range ce.Details() {
		msg, derr := d.Value()
		if derr != nil {
			continue
		}
		s, ok := msg.(*structpb.Struct)
		if !ok {
			continue
		}
		f := s.GetFields()
		return &calculator.ValidationError{
			ReceiptID: f["receiptId"].GetStringValue(),
			Field:     f["field"].GetStringValue(),
			Reason:    f["reason"].GetStringValue(),
		}, true
	}
	return nil, false
}
