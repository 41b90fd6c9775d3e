// Package verify cross-checks purchases against the stores' own verification
// endpoints. The native flow already resolved on the device; verification is
// for hosts that don't want to take the client's word for it.
package verify

import "context"

type Verifier interface {

	// VerifyReceipt takes an IAP receipt (for Apple a base64-encoded PKCS#7
	// receipt, for Play a purchase token, for memory a signed payload) and
	// determines whether it is valid for the configured product.
	VerifyReceipt(ctx context.Context, receipt string) (bool, error)

	// GetReceiptIdentifier takes an IAP receipt and returns a stable
	// identifier for it, usable for deduplication by the host.
	GetReceiptIdentifier(ctx context.Context, receipt string) ([]byte, error)
}
