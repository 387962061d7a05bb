package engine

import "errors"

// RejectKind classifies why an order did not fill. Rejections are business
// outcomes, not faults: the account, positions, and ledger are untouched.
type RejectKind string

const (
	// RejectInvalidRequest marks a malformed or incomplete order.
	RejectInvalidRequest RejectKind = "invalid_request"
	// RejectLimitNotFilled marks a limit order whose price bound the
	// current market price does not satisfy. A legitimate non-fill.
	RejectLimitNotFilled RejectKind = "limit_not_filled"
	// RejectInsufficientCash marks a buy the account cannot pay for.
	RejectInsufficientCash RejectKind = "insufficient_cash"
	// RejectInsufficientHoldings marks a sell of more than is held.
	RejectInsufficientHoldings RejectKind = "insufficient_holdings"
)

// Rejection is the typed no-fill result of Execute.
type Rejection struct {
	Kind   RejectKind
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func reject(kind RejectKind, reason string) *Rejection {
	return &Rejection{Kind: kind, Reason: reason}
}

// AsRejection unwraps err into a Rejection, if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
