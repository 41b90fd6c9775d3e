package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/code-payments/iap-bridge/billing"
	"github.com/code-payments/iap-bridge/billing/memory"
	"github.com/code-payments/iap-bridge/dispatch"
)

// Smoke-tests the dispatch path against the in-memory backend: resolve,
// initialize, query, purchase, restore. Product ids come from IAP_PRODUCT_IDS
// (comma-separated, defaults to sku_pro).
func main() {
	_ = godotenv.Load()

	logger := zap.Must(zap.NewDevelopment())
	defer func() { _ = logger.Sync() }()

	ids := strings.Split(envOr("IAP_PRODUCT_IDS", "sku_pro"), ",")

	catalog := make([]billing.Product, 0, len(ids))
	for _, id := range ids {
		formatted := "$4.99"
		currency := "USD"
		micros := int64(4_990_000)
		catalog = append(catalog, billing.Product{
			ProductID:         id,
			Title:             id,
			Description:       "demo subscription",
			ProductType:       "subs",
			FormattedPrice:    &formatted,
			PriceCurrencyCode: &currency,
			PriceAmountMicros: &micros,
			SubscriptionOfferDetails: []billing.SubscriptionOffer{
				{
					OfferToken: id + "_monthly",
					BasePlanID: "monthly",
					PricingPhases: []billing.PricingPhase{
						{
							FormattedPrice:    formatted,
							PriceCurrencyCode: currency,
							PriceAmountMicros: micros,
							BillingPeriod:     "P1M",
							RecurrenceMode:    billing.RecurrenceModeInfiniteRecurring,
						},
					},
				},
			},
		})
	}

	serv, err := dispatch.New(logger, dispatch.Config{
		Backend: memory.NewInMemory(catalog...),
	})
	if err != nil {
		log.Fatal("Failed to resolve billing backend:", err)
	}

	ctx := context.Background()

	if _, err := serv.Initialize(ctx); err != nil {
		log.Fatal("Failed to initialize:", err)
	}

	products, err := serv.GetProducts(ctx, &billing.GetProductsRequest{ProductIDs: ids})
	if err != nil {
		log.Fatal("Failed to get products:", err)
	}
	dump("products", products)

	purchase, err := serv.Purchase(ctx, &billing.PurchaseRequest{ProductID: ids[0]})
	if err != nil {
		log.Fatal("Failed to purchase:", err)
	}
	dump("purchase", purchase)

	restored, err := serv.RestorePurchases(ctx, &billing.RestorePurchasesRequest{})
	if err != nil {
		log.Fatal("Failed to restore purchases:", err)
	}
	dump("restored", restored)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dump(label string, v any) {
	raw, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("%s: %s\n", label, raw)
}
