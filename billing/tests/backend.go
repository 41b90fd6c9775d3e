// Package tests holds the generic backend conformance suite, run by each
// backend implementation's own tests.
package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/iap-bridge/billing"
)

// Fixture is what a backend's tests provide to the generic suite: a backend
// whose catalog contains SubscriptionProductID (a "subs" product with at
// least one offer of ordered pricing phases), and a teardown resetting all
// purchase state.
type Fixture struct {
	Backend billing.Backend

	// SubscriptionProductID names a purchasable subscription product with
	// offers in the backend's catalog.
	SubscriptionProductID string

	// OfferToken redeems one of that product's offers.
	OfferToken string
}

func RunBackendTests(t *testing.T, f Fixture, teardown func()) {
	for _, tf := range []func(t *testing.T, f Fixture){
		testInitialize,
		testGetProducts,
		testPurchaseAndStatus,
		testRestoreOnlyPurchased,
		testStatusUnknownProduct,
		testAcknowledge,
	} {
		tf(t, f)
		teardown()
	}
}

func testInitialize(t *testing.T, f Fixture) {
	resp, err := f.Backend.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Success)
}

func testGetProducts(t *testing.T, f Fixture) {
	ctx := context.Background()

	resp, err := f.Backend.GetProducts(ctx, []string{f.SubscriptionProductID}, billing.ProductTypeSubs)
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)

	product := resp.Products[0]
	require.Equal(t, f.SubscriptionProductID, product.ProductID)
	require.NotEmpty(t, product.SubscriptionOfferDetails)
	for _, offer := range product.SubscriptionOfferDetails {
		require.NotEmpty(t, offer.OfferToken)
		require.NotEmpty(t, offer.PricingPhases)
	}

	// Zero micros standing in for "unknown price" is forbidden.
	if product.PriceAmountMicros != nil {
		require.GreaterOrEqual(t, *product.PriceAmountMicros, int64(0))
	}

	// Unknown ids just don't come back.
	resp, err = f.Backend.GetProducts(ctx, []string{"definitely_not_a_product"}, billing.ProductTypeSubs)
	require.NoError(t, err)
	require.Empty(t, resp.Products)
}

func testPurchaseAndStatus(t *testing.T, f Fixture) {
	ctx := context.Background()

	token := f.OfferToken
	purchase, err := f.Backend.Purchase(ctx, f.SubscriptionProductID, billing.ProductTypeSubs, &billing.PurchaseOptions{
		OfferToken: &token,
	})
	require.NoError(t, err)
	require.Equal(t, billing.PurchaseStatePurchased, purchase.PurchaseState)
	require.NotEmpty(t, purchase.PurchaseToken)
	require.Equal(t, f.SubscriptionProductID, purchase.ProductID)

	status, err := f.Backend.GetProductStatus(ctx, f.SubscriptionProductID, billing.ProductTypeSubs)
	require.NoError(t, err)
	require.True(t, status.IsOwned)
	require.NotNil(t, status.PurchaseState)
	require.Equal(t, billing.PurchaseStatePurchased, *status.PurchaseState)
}

func testRestoreOnlyPurchased(t *testing.T, f Fixture) {
	ctx := context.Background()

	_, err := f.Backend.Purchase(ctx, f.SubscriptionProductID, billing.ProductTypeSubs, nil)
	require.NoError(t, err)

	resp, err := f.Backend.RestorePurchases(ctx, billing.ProductTypeSubs)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Purchases)
	for _, p := range resp.Purchases {
		require.Equal(t, billing.PurchaseStatePurchased, p.PurchaseState)
	}
}

func testStatusUnknownProduct(t *testing.T, f Fixture) {
	status, err := f.Backend.GetProductStatus(context.Background(), "definitely_not_a_product", billing.ProductTypeSubs)
	require.NoError(t, err, "a missing license must not be an error")

	require.False(t, status.IsOwned)
	require.Nil(t, status.PurchaseState)
	require.Nil(t, status.PurchaseTime)
	require.Nil(t, status.ExpirationTime)
	require.Nil(t, status.IsAutoRenewing)
	require.Nil(t, status.IsAcknowledged)
	require.Nil(t, status.PurchaseToken)
}

func testAcknowledge(t *testing.T, f Fixture) {
	ctx := context.Background()

	purchase, err := f.Backend.Purchase(ctx, f.SubscriptionProductID, billing.ProductTypeSubs, nil)
	require.NoError(t, err)

	resp, err := f.Backend.AcknowledgePurchase(ctx, purchase.PurchaseToken)
	require.NoError(t, err)
	require.True(t, resp.Success)
}
