package handler

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/rl1809/nft-marketplace/internal/adapter/registry"
	"github.com/rl1809/nft-marketplace/internal/core/ledger"
	"github.com/rl1809/nft-marketplace/internal/core/service"
)

var errMissingAccount = errors.New("missing caller account")

type errorMapping struct {
	target  error
	status  int
	code    codes.Code
	message string
}

var errorMappings = []errorMapping{
	{ledger.ErrAlreadyListed, http.StatusConflict, codes.AlreadyExists, "already listed"},
	{ledger.ErrNotListed, http.StatusNotFound, codes.NotFound, "not listed"},
	{ledger.ErrNotOwner, http.StatusForbidden, codes.PermissionDenied, "not owner"},
	{ledger.ErrNotApproved, http.StatusForbidden, codes.PermissionDenied, "marketplace not approved"},
	{ledger.ErrPriceMustBePositive, http.StatusBadRequest, codes.InvalidArgument, "price must be above zero"},
	{ledger.ErrPriceNotMet, http.StatusPaymentRequired, codes.FailedPrecondition, "price not met"},
	{ledger.ErrNoProceeds, http.StatusConflict, codes.FailedPrecondition, "no proceeds"},
	{ledger.ErrReentrant, http.StatusConflict, codes.Aborted, "nested value transfer rejected"},
	{ledger.ErrClosed, http.StatusServiceUnavailable, codes.Unavailable, "marketplace closed"},
	{service.ErrDuplicateRequest, http.StatusConflict, codes.AlreadyExists, "duplicate request"},
	{service.ErrMissingRequestID, http.StatusBadRequest, codes.InvalidArgument, "missing request id"},
	{registry.ErrItemNotFound, http.StatusNotFound, codes.NotFound, "item does not exist"},
	{errMissingAccount, http.StatusUnauthorized, codes.Unauthenticated, "missing caller account"},
}

// classifyError maps an operation error onto transport codes. Unknown
// errors are reported as internal without leaking their text.
func classifyError(err error) errorMapping {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m
		}
	}
	return errorMapping{target: err, status: http.StatusInternalServerError, code: codes.Internal, message: "internal error"}
}
