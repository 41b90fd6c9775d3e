package memory

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/iap-bridge/verify"
)

// Verifier is an in-memory verifier for tests and development backends: a
// "receipt" is base64(signature)|message, valid when the signature over the
// message checks out against the configured public key.
type Verifier struct {
	publicKey ed25519.PublicKey
}

func NewVerifier(publicKey ed25519.PublicKey) verify.Verifier {
	return &Verifier{publicKey: publicKey}
}

func (v *Verifier) VerifyReceipt(ctx context.Context, receipt string) (bool, error) {
	signature, message, err := parseReceipt(receipt)
	if err != nil {
		// Unparsable receipts are invalid, not verifier faults.
		return false, nil
	}

	return ed25519.Verify(v.publicKey, message, signature), nil
}

func (v *Verifier) GetReceiptIdentifier(ctx context.Context, receipt string) ([]byte, error) {
	signature, _, err := parseReceipt(receipt)
	if err != nil {
		return nil, err
	}
	return signature, nil
}

// GenerateKeyPair returns a fresh signing pair for tests.
func GenerateKeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// SignReceipt produces a valid receipt for message under the signer key.
func SignReceipt(signer ed25519.PrivateKey, message string) string {
	signature := ed25519.Sign(signer, []byte(message))
	return base64.StdEncoding.EncodeToString(signature) + "|" + message
}

func parseReceipt(receipt string) (signature, message []byte, err error) {
	parts := strings.SplitN(receipt, "|", 2)
	if len(parts) != 2 {
		return nil, nil, errors.Errorf("invalid receipt format: %s", receipt)
	}

	signature, err = base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, errors.Wrap(err, "error decoding signature")
	}

	return signature, []byte(parts[1]), nil
}
