// Package memory is an in-process billing backend over a configured catalog.
// It exists so the dispatcher and hosts can run the whole stack without a
// native store: the conformance suite runs against it, and purchase outcomes
// can be scripted per product.
package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/code-payments/iap-bridge/billing"
)

// Outcome scripts what Purchase does for a product.
type Outcome uint8

const (
	OutcomeSucceed Outcome = iota
	OutcomeCancel
	OutcomePend
	OutcomeFail
)

const packageName = "com.example.memory"

type license struct {
	purchase billing.Purchase
	expires  *int64
}

type InMemoryBackend struct {
	mu sync.RWMutex

	catalog  map[string]billing.Product
	outcomes map[string]Outcome
	licenses map[string]*license
	history  []billing.PurchaseHistoryRecord

	initialized bool
}

func NewInMemory(catalog ...billing.Product) *InMemoryBackend {
	b := &InMemoryBackend{
		catalog:  map[string]billing.Product{},
		outcomes: map[string]Outcome{},
		licenses: map[string]*license{},
	}
	for _, p := range catalog {
		b.catalog[p.ProductID] = p
	}
	return b
}

// SetOutcome scripts the result of the next purchases of productID.
func (b *InMemoryBackend) SetOutcome(productID string, outcome Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outcomes[productID] = outcome
}

func (b *InMemoryBackend) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.outcomes = map[string]Outcome{}
	b.licenses = map[string]*license{}
	b.history = nil
	b.initialized = false
}

func (b *InMemoryBackend) Initialize(ctx context.Context) (*billing.InitializeResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.initialized = true
	return &billing.InitializeResponse{Success: true}, nil
}

func (b *InMemoryBackend) GetProducts(ctx context.Context, productIDs []string, productType billing.ProductType) (*billing.GetProductsResponse, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	products := make([]billing.Product, 0, len(productIDs))
	for _, id := range productIDs {
		product, ok := b.catalog[id]
		if !ok {
			continue
		}
		if !matchesType(&product, productType) {
			continue
		}
		products = append(products, product)
	}

	return &billing.GetProductsResponse{Products: products}, nil
}

func matchesType(p *billing.Product, productType billing.ProductType) bool {
	switch productType {
	case billing.ProductTypeInApp, billing.ProductTypeSubs:
		return p.ProductType == string(productType)
	default:
		return true
	}
}

func (b *InMemoryBackend) Purchase(ctx context.Context, productID string, productType billing.ProductType, opts *billing.PurchaseOptions) (*billing.Purchase, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	product, ok := b.catalog[productID]
	if !ok {
		return nil, billing.ErrNativeInvoke("product not found")
	}

	if opts != nil && opts.OfferToken != nil && !hasOffer(&product, *opts.OfferToken) {
		return nil, billing.ErrNativeInvoke("unknown offer token").WithCode("OFFER_NOT_FOUND", "")
	}

	switch b.outcomes[productID] {
	case OutcomeFail:
		return nil, billing.ErrNativeInvoke("network error during purchase").WithCode("NETWORK_ERROR", "")
	case OutcomeCancel:
		return b.canceledPurchase(productID, productType), nil
	case OutcomePend:
		return b.pendingPurchase(productID, productType), nil
	}

	now := time.Now().UnixMilli()
	orderID := uuid.NewString()
	token := strings.Join([]string{"mem", productID, orderID}, "_")

	purchase := billing.Purchase{
		OrderID:        &orderID,
		PackageName:    packageName,
		ProductID:      productID,
		PurchaseTime:   now,
		PurchaseToken:  token,
		PurchaseState:  billing.PurchaseStatePurchased,
		IsAutoRenewing: productType == billing.ProductTypeSubs,
		IsAcknowledged: false,
		OriginalJSON:   originalJSON(productID, now),
		Signature:      "",
	}

	lic := &license{purchase: purchase}
	if productType == billing.ProductTypeSubs {
		expires := now + 30*24*60*60*1000
		lic.expires = &expires
	}
	b.licenses[productID] = lic

	b.history = append(b.history, billing.PurchaseHistoryRecord{
		ProductID:     productID,
		PurchaseTime:  now,
		PurchaseToken: token,
		Quantity:      1,
		OriginalJSON:  purchase.OriginalJSON,
		Signature:     "",
	})

	return &purchase, nil
}

func hasOffer(p *billing.Product, offerToken string) bool {
	for _, offer := range p.SubscriptionOfferDetails {
		if offer.OfferToken == offerToken {
			return true
		}
	}
	return false
}

func (b *InMemoryBackend) canceledPurchase(productID string, productType billing.ProductType) *billing.Purchase {
	now := time.Now().UnixMilli()
	return &billing.Purchase{
		PackageName:   packageName,
		ProductID:     productID,
		PurchaseTime:  now,
		PurchaseToken: "mem_" + productID + "_canceled",
		PurchaseState: billing.PurchaseStateCanceled,
		OriginalJSON:  originalJSON(productID, now),
	}
}

func (b *InMemoryBackend) pendingPurchase(productID string, productType billing.ProductType) *billing.Purchase {
	now := time.Now().UnixMilli()
	return &billing.Purchase{
		PackageName:   packageName,
		ProductID:     productID,
		PurchaseTime:  now,
		PurchaseToken: "mem_" + productID + "_pending",
		PurchaseState: billing.PurchaseStatePending,
		OriginalJSON:  originalJSON(productID, now),
	}
}

func (b *InMemoryBackend) RestorePurchases(ctx context.Context, productType billing.ProductType) (*billing.RestorePurchasesResponse, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	purchases := make([]billing.Purchase, 0, len(b.licenses))
	for _, lic := range b.licenses {
		if lic.purchase.PurchaseState != billing.PurchaseStatePurchased {
			continue
		}
		purchases = append(purchases, lic.purchase)
	}

	return &billing.RestorePurchasesResponse{Purchases: purchases}, nil
}

func (b *InMemoryBackend) GetPurchaseHistory(ctx context.Context) (*billing.GetPurchaseHistoryResponse, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	history := make([]billing.PurchaseHistoryRecord, len(b.history))
	copy(history, b.history)
	return &billing.GetPurchaseHistoryResponse{History: history}, nil
}

func (b *InMemoryBackend) AcknowledgePurchase(ctx context.Context, purchaseToken string) (*billing.AcknowledgePurchaseResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, lic := range b.licenses {
		if lic.purchase.PurchaseToken == purchaseToken {
			lic.purchase.IsAcknowledged = true
			return &billing.AcknowledgePurchaseResponse{Success: true}, nil
		}
	}
	return nil, billing.ErrNativeInvoke("no purchase for token").WithCode("TOKEN_NOT_FOUND", "")
}

func (b *InMemoryBackend) GetProductStatus(ctx context.Context, productID string, productType billing.ProductType) (*billing.ProductStatus, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lic, ok := b.licenses[productID]
	if !ok || lic.purchase.PurchaseState != billing.PurchaseStatePurchased {
		return &billing.ProductStatus{
			ProductID: productID,
			IsOwned:   false,
		}, nil
	}

	state := lic.purchase.PurchaseState
	purchaseTime := lic.purchase.PurchaseTime
	autoRenewing := lic.purchase.IsAutoRenewing
	acknowledged := lic.purchase.IsAcknowledged
	token := lic.purchase.PurchaseToken

	return &billing.ProductStatus{
		ProductID:      productID,
		IsOwned:        true,
		PurchaseState:  &state,
		PurchaseTime:   &purchaseTime,
		ExpirationTime: lic.expires,
		IsAutoRenewing: &autoRenewing,
		IsAcknowledged: &acknowledged,
		PurchaseToken:  &token,
	}, nil
}

func originalJSON(productID string, purchaseTime int64) string {
	raw, _ := json.Marshal(map[string]any{
		"productId":    productID,
		"purchaseTime": purchaseTime,
		"backend":      "memory",
	})
	return string(raw)
}
