package api

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/xtding233/wishcalc/internal/gacha"
	"github.com/xtding233/wishcalc/internal/plan"
	"github.com/xtding233/wishcalc/internal/pricing"
)

// Kind classifies service errors for the transports.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindCanceled
	KindUnavailable
)

// Classify maps an error returned by Service to its Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, gacha.ErrInvalidConfiguration),
		errors.Is(err, gacha.ErrInvalidProb),
		errors.Is(err, plan.ErrInvalidPlan):
		return KindInvalid
	case errors.Is(err, os.ErrNotExist):
		return KindNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrNoResolver), errors.Is(err, pricing.ErrNoPacks):
		return KindUnavailable
	}
	return KindInternal
}

// StatusClientClosedRequest is the de facto status for a request the client
// abandoned.
const StatusClientClosedRequest = 499

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch Classify(err) {
	case KindInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindCanceled:
		return StatusClientClosedRequest
	case KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
