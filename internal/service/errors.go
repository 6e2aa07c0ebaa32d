package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
)

// toConnectError maps engine errors to Connect status codes.
func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, ledger.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, ledger.ErrGroupNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, ledger.ErrNotMember):
		code = connect.CodePermissionDenied
	case errors.Is(err, ledger.ErrUnauthenticated):
		code = connect.CodeUnauthenticated
	default:
		code = connect.CodeInternal
	}

	cerr := connect.NewError(code, err)
	if rule, ok := ledger.RuleOf(err); ok {
		cerr.Meta().Set("Ledger-Rule", string(rule))
	}
	return cerr
}
