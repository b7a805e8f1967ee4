// Package bridgeerr collects the bridge's error taxonomy (spec §7): one
// sentinel per user-visible failure string, shared by pkg/lane and
// pkg/bridgemodule so callers can errors.Is against a single stable set
// regardless of which package actually rejected the operation.
package bridgeerr

import "errors"

// Configuration errors: fatal for the operation, never retried.
var (
	ErrLaneClosed       = errors.New("bridge: lane closed")
	ErrUnsupportedChain = errors.New("bridge: unsupported chain")
)

// Capacity errors: operation rejected, the relayer must back off and
// retry once confirmation catches up.
var (
	ErrTooManyPending    = errors.New("bridge: too many pending messages")
	ErrTooManyUnrewarded = errors.New("bridge: too many unrewarded relayer entries")
)

// Validation errors: user error at the submission boundary.
var (
	ErrBadOrigin   = errors.New("bridge: bad call origin")
	ErrBadSize     = errors.New("bridge: call size out of bounds")
	ErrBadWeight   = errors.New("bridge: declared weight out of bounds")
	ErrFeeTooLow   = errors.New("bridge: declared fee below minimal message fee")
	ErrFeeOverflow = errors.New("bridge: fee computation overflowed")
)

// Proof errors: relayer-level, the loop discards the batch and refetches.
var (
	ErrUnknownHeader        = errors.New("bridge: header not known to the finalized-header oracle")
	ErrMalformedProof       = errors.New("bridge: malformed proof")
	ErrCountMismatch        = errors.New("bridge: messages_count does not match the nonce range")
	ErrMissingMessage       = errors.New("bridge: message missing from proof")
	ErrBadMessageEncoding   = errors.New("bridge: message failed to decode")
	ErrBadOutboundLaneState = errors.New("bridge: outbound lane state failed to decode")
	ErrBadInboundLaneState  = errors.New("bridge: inbound lane state failed to decode")
	ErrBadDeliveryProof     = errors.New("bridge: delivery proof inconsistent with inbound lane state")
	ErrEmptyProof           = errors.New("bridge: proof carries neither messages nor outbound lane state")
)

// I/O errors: relayer only, trigger reconnect with backoff.
var (
	ErrDisconnected = errors.New("bridge: chain client disconnected")
	ErrTimeout      = errors.New("bridge: operation timed out")
)
