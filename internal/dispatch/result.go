package dispatch

import "net/http"

// Kind says whether the upstream provider sees success or a rejection.
type Kind int

const (
	// Acknowledged is answered with 200, whatever happened internally.
	Acknowledged Kind = iota
	// Rejected is answered with a client-error status.
	Rejected
)

func (k Kind) String() string {
	if k == Rejected {
		return "rejected"
	}
	return "acknowledged"
}

// Reason is the terminal state a delivery reached.
type Reason string

// Rejections.
const (
	ReasonPathMissing  Reason = "path_missing"
	ReasonShopNotFound Reason = "shop_not_found"
	ReasonShopBanned   Reason = "shop_banned"
)

// Acknowledgements.
const (
	ReasonShopInactive        Reason = "shop_inactive"
	ReasonStoreFailure        Reason = "store_failure"
	ReasonMalformedUpdate     Reason = "malformed_update"
	ReasonTokenDecryptFailure Reason = "token_decrypt_failure"
	ReasonSessionFailure      Reason = "session_failure"
	ReasonHandlerFailure      Reason = "handler_failure"
	ReasonHandlerPanic        Reason = "handler_panic"
	ReasonDispatched          Reason = "dispatched"
)

// Result is the outcome of one delivery. Err carries the swallowed fault for
// logging and tests; it never changes the status.
type Result struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

// StatusCode maps the result to the HTTP status returned to the provider.
func (r Result) StatusCode() int {
	if r.Kind != Rejected {
		return http.StatusOK
	}
	switch r.Reason {
	case ReasonShopNotFound:
		return http.StatusNotFound
	case ReasonShopBanned:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func reject(reason Reason, msg string) Result {
	return Result{Kind: Rejected, Reason: reason, Message: msg}
}

func ack(reason Reason, err error) Result {
	return Result{Kind: Acknowledged, Reason: reason, Err: err}
}
