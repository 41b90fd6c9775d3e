package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/iap-bridge/billing"
	"github.com/code-payments/iap-bridge/billing/tests"
)

func testCatalog() []billing.Product {
	formatted := "$4.99"
	currency := "USD"
	micros := int64(4_990_000)

	return []billing.Product{
		{
			ProductID:         "sku_pro",
			Title:             "Pro",
			Description:       "Pro subscription",
			ProductType:       "subs",
			FormattedPrice:    &formatted,
			PriceCurrencyCode: &currency,
			PriceAmountMicros: &micros,
			SubscriptionOfferDetails: []billing.SubscriptionOffer{
				{
					OfferToken: "tok1",
					BasePlanID: "monthly",
					PricingPhases: []billing.PricingPhase{
						{
							FormattedPrice:    "$4.99",
							PriceCurrencyCode: "USD",
							PriceAmountMicros: 4_990_000,
							BillingPeriod:     "P1M",
							RecurrenceMode:    billing.RecurrenceModeInfiniteRecurring,
						},
					},
				},
			},
		},
		{
			ProductID:   "sku_gems",
			Title:       "Gems",
			Description: "Consumable gems",
			ProductType: "inapp",
		},
	}
}

func TestInMemoryBackend(t *testing.T) {
	backend := NewInMemory(testCatalog()...)
	tests.RunBackendTests(t, tests.Fixture{
		Backend:               backend,
		SubscriptionProductID: "sku_pro",
		OfferToken:            "tok1",
	}, backend.reset)
}

func TestGetProducts_TypeFilter(t *testing.T) {
	backend := NewInMemory(testCatalog()...)
	ctx := context.Background()

	resp, err := backend.GetProducts(ctx, []string{"sku_pro", "sku_gems"}, billing.ProductTypeInApp)
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	require.Equal(t, "sku_gems", resp.Products[0].ProductID)

	resp, err = backend.GetProducts(ctx, []string{"sku_pro", "sku_gems"}, billing.ProductType("all"))
	require.NoError(t, err)
	require.Len(t, resp.Products, 2)
}

func TestScriptedOutcomes(t *testing.T) {
	backend := NewInMemory(testCatalog()...)
	ctx := context.Background()

	backend.SetOutcome("sku_pro", OutcomeCancel)
	purchase, err := backend.Purchase(ctx, "sku_pro", billing.ProductTypeSubs, nil)
	require.NoError(t, err)
	require.Equal(t, billing.PurchaseStateCanceled, purchase.PurchaseState)

	backend.SetOutcome("sku_pro", OutcomePend)
	purchase, err = backend.Purchase(ctx, "sku_pro", billing.ProductTypeSubs, nil)
	require.NoError(t, err)
	require.Equal(t, billing.PurchaseStatePending, purchase.PurchaseState)

	backend.SetOutcome("sku_pro", OutcomeFail)
	_, err = backend.Purchase(ctx, "sku_pro", billing.ProductTypeSubs, nil)
	require.Error(t, err)
	require.Equal(t, billing.KindNativeInvoke, billing.KindOf(err))

	// Canceled and pending purchases never become licenses.
	status, err := backend.GetProductStatus(ctx, "sku_pro", billing.ProductTypeSubs)
	require.NoError(t, err)
	require.False(t, status.IsOwned)
}

func TestPurchase_UnknownOfferToken(t *testing.T) {
	backend := NewInMemory(testCatalog()...)

	bogus := "not_a_token"
	_, err := backend.Purchase(context.Background(), "sku_pro", billing.ProductTypeSubs, &billing.PurchaseOptions{
		OfferToken: &bogus,
	})
	require.Error(t, err)

	var be *billing.Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, "OFFER_NOT_FOUND", be.Code())
}

func TestPurchaseHistory(t *testing.T) {
	backend := NewInMemory(testCatalog()...)
	ctx := context.Background()

	_, err := backend.Purchase(ctx, "sku_pro", billing.ProductTypeSubs, nil)
	require.NoError(t, err)
	_, err = backend.Purchase(ctx, "sku_gems", billing.ProductTypeInApp, nil)
	require.NoError(t, err)

	resp, err := backend.GetPurchaseHistory(ctx)
	require.NoError(t, err)
	require.Len(t, resp.History, 2)
	require.Equal(t, "sku_pro", resp.History[0].ProductID)
	require.EqualValues(t, 1, resp.History[0].Quantity)
}

func TestAcknowledge_UnknownToken(t *testing.T) {
	backend := NewInMemory(testCatalog()...)

	_, err := backend.AcknowledgePurchase(context.Background(), "nope")
	require.Error(t, err)
	require.Equal(t, billing.KindNativeInvoke, billing.KindOf(err))
}
