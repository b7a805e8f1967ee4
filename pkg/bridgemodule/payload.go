// Package bridgemodule implements the on-chain bridge module's three
// entry points (spec §4.E–G): SendMessage (outbound acceptor),
// ReceiveMessagesProof (inbound verifier & dispatcher), and
// ReceiveMessagesDeliveryProof (delivery-confirmation verifier). All
// three are synchronous and side-effect-atomic per spec §5: a rejected
// call leaves the store untouched.
package bridgemodule

import (
	"fmt"

	"github.com/nspcc-dev/bridge-relay/pkg/codec"
	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
)

// OriginKind discriminates MessagePayload.Origin (spec §3).
type OriginKind byte

const (
	OriginSourceRoot OriginKind = iota
	OriginTargetAccount
	OriginSourceAccount
)

// Origin is the call-origin discriminant carried by a MessagePayload.
// Exactly one of the PublicKey/Signature pair (OriginTargetAccount) or
// Account (OriginSourceAccount) is populated, depending on Kind.
type Origin struct {
	Kind      OriginKind
	PublicKey []byte // OriginTargetAccount
	Signature []byte // OriginTargetAccount
	Account   []byte // OriginSourceAccount
}

func (o Origin) encode(w *codec.BinWriter) {
	w.WriteB(byte(o.Kind))
	switch o.Kind {
	case OriginTargetAccount:
		w.WriteVarBytes(o.PublicKey)
		w.WriteVarBytes(o.Signature)
	case OriginSourceAccount:
		w.WriteVarBytes(o.Account)
	}
}

func decodeOrigin(r *codec.BinReader) Origin {
	var o Origin
	o.Kind = OriginKind(r.ReadB())
	switch o.Kind {
	case OriginTargetAccount:
		o.PublicKey = r.ReadVarBytes()
		o.Signature = r.ReadVarBytes()
	case OriginSourceAccount:
		o.Account = r.ReadVarBytes()
	}
	return o
}

// FeePaymentMode discriminates where a dispatched call's weight fee is
// charged (spec §3).
type FeePaymentMode byte

const (
	AtSourceChain FeePaymentMode = iota
	AtTargetChain
)

// MessagePayload is the logical decomposition the dispatcher works with
// (spec §3): version, declared weight, origin, fee-payment mode and the
// encoded target-chain call.
type MessagePayload struct {
	SpecVersion        uint32
	DeclaredWeight     feemath.Weight
	Origin             Origin
	DispatchFeePayment FeePaymentMode
	Call               []byte
}

// EncodeMessagePayload SCALE-encodes payload (spec §6.2).
func EncodeMessagePayload(payload MessagePayload) []byte {
	w := codec.NewBufBinWriter()
	w.WriteU32LE(payload.SpecVersion)
	w.WriteU64LE(uint64(payload.DeclaredWeight))
	payload.Origin.encode(w)
	w.WriteB(byte(payload.DispatchFeePayment))
	w.WriteVarBytes(payload.Call)
	return w.Bytes()
}

// DecodeMessagePayload is the inverse of EncodeMessagePayload; spec §8
// property 6 requires this round-trips any payload the source encoded.
func DecodeMessagePayload(b []byte) (MessagePayload, error) {
	r := codec.NewBinReaderFromBuf(b)
	var p MessagePayload
	p.SpecVersion = r.ReadU32LE()
	p.DeclaredWeight = feemath.Weight(r.ReadU64LE())
	p.Origin = decodeOrigin(r)
	p.DispatchFeePayment = FeePaymentMode(r.ReadB())
	p.Call = r.ReadVarBytes()
	if r.Err != nil {
		return MessagePayload{}, fmt.Errorf("bridgemodule: decoding message payload: %w", r.Err)
	}
	return p, nil
}

// MessageData is the value stored at a source chain's message_key (spec
// §3): opaque payload bytes plus the fee prepaid in bridged-chain balance.
type MessageData struct {
	Payload    []byte
	PrepaidFee feemath.Balance
}

func encodeMessageData(d MessageData) []byte {
	w := codec.NewBufBinWriter()
	w.WriteVarBytes(d.Payload)
	w.WriteU64LE(uint64(d.PrepaidFee))
	return w.Bytes()
}

func decodeMessageData(b []byte) (MessageData, error) {
	r := codec.NewBinReaderFromBuf(b)
	var d MessageData
	d.Payload = r.ReadVarBytes()
	d.PrepaidFee = feemath.Balance(r.ReadU64LE())
	if r.Err != nil {
		return MessageData{}, fmt.Errorf("bridgemodule: decoding message data: %w", r.Err)
	}
	return d, nil
}

func encodeOutboundLaneData(d lanedata) []byte {
	w := codec.NewBufBinWriter()
	w.WriteU64LE(d.OldestUnprunedNonce)
	w.WriteU64LE(d.LatestReceivedNonce)
	w.WriteU64LE(d.LatestGeneratedNonce)
	return w.Bytes()
}

func decodeOutboundLaneData(b []byte) (lanedata, error) {
	r := codec.NewBinReaderFromBuf(b)
	var d lanedata
	d.OldestUnprunedNonce = r.ReadU64LE()
	d.LatestReceivedNonce = r.ReadU64LE()
	d.LatestGeneratedNonce = r.ReadU64LE()
	if r.Err != nil {
		return lanedata{}, fmt.Errorf("bridgemodule: decoding outbound lane state: %w", r.Err)
	}
	return d, nil
}

// lanedata mirrors pkg/lane.OutboundLaneData's fields; bridgemodule
// decodes an outbound-lane-state trie value into this shape rather than
// importing pkg/lane directly, since the wire shape (what a peer chain's
// trie actually stores) and the local transition API are different
// concerns that happen to share field names.
type lanedata struct {
	OldestUnprunedNonce  uint64
	LatestReceivedNonce  uint64
	LatestGeneratedNonce uint64
}
