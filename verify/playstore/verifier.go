package playstore

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/androidpublisher/v3"
	"google.golang.org/api/option"

	"github.com/code-payments/iap-bridge/verify"
)

// Play Developer API purchase states: 0 purchased, 1 canceled, 2 pending.
const purchaseStatePurchased = 0

// Verifier checks purchase tokens against the Google Play Developer API.
type Verifier struct {
	// serviceAccountJSON is the contents of a service account key file with
	// access to the Play Developer API.
	serviceAccountJSON []byte

	// packageName is the Android app's package name.
	packageName string

	// productID the token must be for.
	productID string

	// subscription selects the subscriptions endpoint instead of the
	// one-time-products endpoint.
	subscription bool
}

func NewVerifier(serviceAccountJSON []byte, packageName, productID string, subscription bool) verify.Verifier {
	return &Verifier{
		serviceAccountJSON: serviceAccountJSON,
		packageName:        packageName,
		productID:          productID,
		subscription:       subscription,
	}
}

func (v *Verifier) VerifyReceipt(ctx context.Context, purchaseToken string) (bool, error) {
	svc, err := androidpublisher.NewService(ctx, option.WithCredentialsJSON(v.serviceAccountJSON))
	if err != nil {
		return false, errors.Wrap(err, "failed to create android publisher client")
	}

	if v.subscription {
		sub, err := svc.Purchases.Subscriptionsv2.Get(v.packageName, purchaseToken).Context(ctx).Do()
		if err != nil {
			// An unknown or expired token is a 404, not a verifier fault.
			return false, nil
		}
		return sub.SubscriptionState == "SUBSCRIPTION_STATE_ACTIVE" ||
			sub.SubscriptionState == "SUBSCRIPTION_STATE_IN_GRACE_PERIOD", nil
	}

	purchase, err := svc.Purchases.Products.Get(v.packageName, v.productID, purchaseToken).Context(ctx).Do()
	if err != nil {
		return false, nil
	}
	return purchase.PurchaseState == purchaseStatePurchased, nil
}

func (v *Verifier) GetReceiptIdentifier(ctx context.Context, purchaseToken string) ([]byte, error) {
	// Play purchase tokens are already unique per (product, user) purchase.
	return []byte(purchaseToken), nil
}
