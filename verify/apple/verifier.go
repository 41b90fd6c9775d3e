package apple

import (
	"context"

	"github.com/devsisters/go-applereceipt"
	"github.com/devsisters/go-applereceipt/applepki"

	"github.com/code-payments/iap-bridge/verify"
)

// Verifier validates App Store receipts locally against the Apple root
// certificate chain.
type Verifier struct {
	// bundleID the receipt must have been issued for, e.g. "com.example.app".
	bundleID string

	// productID the receipt must contain a purchase of.
	productID string
}

func NewVerifier(bundleID, productID string) verify.Verifier {
	return &Verifier{
		bundleID:  bundleID,
		productID: productID,
	}
}

func (v *Verifier) VerifyReceipt(ctx context.Context, encodedReceipt string) (bool, error) {
	receipt, err := applereceipt.DecodeBase64(encodedReceipt, applepki.CertPool())
	if err != nil {
		// A receipt that doesn't decode is invalid, not a verifier fault.
		return false, nil
	}

	if receipt.BundleIdentifier != v.bundleID {
		return false, nil
	}

	for _, inApp := range receipt.InAppPurchaseReceipts {
		if inApp.ProductIdentifier == v.productID {
			return true, nil
		}
	}
	return false, nil
}

func (v *Verifier) GetReceiptIdentifier(ctx context.Context, encodedReceipt string) ([]byte, error) {
	receipt, err := applereceipt.DecodeBase64(encodedReceipt, applepki.CertPool())
	if err != nil {
		return nil, err
	}

	return receipt.SHA1Hash, nil
}
