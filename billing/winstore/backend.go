package winstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/code-payments/iap-bridge/billing"
	"github.com/code-payments/iap-bridge/billing/normalize"
)

// Backend adapts the Windows Store to the billing contract.
//
// Documented approximations, forced by the native API surface:
//   - purchase tokens for fresh purchases are minted as
//     "win_<productId>_<purchaseTimeMillis>" — unique per call, but not a
//     store-issued transaction id;
//   - a subscription's purchase time is estimated as 30 days before its
//     expiration, since only the expiration date is reported;
//   - priceAmountMicros is parsed out of the formatted base price string and
//     is 0 when the string doesn't parse; the formatted price stays
//     authoritative for display.
type Backend struct {
	log         *zap.Logger
	provider    ContextProvider
	packageName string

	mu      sync.RWMutex
	context StoreContext

	now func() time.Time
}

func NewBackend(log *zap.Logger, provider ContextProvider, packageName string) *Backend {
	return &Backend{
		log:         log,
		provider:    provider,
		packageName: packageName,
		now:         time.Now,
	}
}

// storeContext returns the cached native context, acquiring it on first use.
// Construction happens at most once: a concurrent initializer that loses the
// race reuses the already-created handle.
func (b *Backend) storeContext() (StoreContext, error) {
	b.mu.RLock()
	cached := b.context
	b.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.context == nil {
		sc, err := b.provider.GetDefault()
		if err != nil {
			b.log.Warn("Failed to get store context", zap.Error(err))
			return nil, billing.WrapNativeInvoke(err, "failed to get store context")
		}
		b.context = sc
	}
	return b.context, nil
}

func (b *Backend) Initialize(ctx context.Context) (*billing.InitializeResponse, error) {
	if _, err := b.storeContext(); err != nil {
		return nil, err
	}
	return &billing.InitializeResponse{Success: true}, nil
}

// productKinds maps the product type hint onto native store kinds. Anything
// other than the two known hints queries every kind.
func productKinds(productType billing.ProductType) []string {
	switch productType {
	case billing.ProductTypeInApp:
		return []string{kindConsumable, kindUnmanagedConsumable, kindDurable}
	case billing.ProductTypeSubs:
		return []string{kindSubscription}
	default:
		return []string{kindConsumable, kindUnmanagedConsumable, kindDurable, kindSubscription}
	}
}

func (b *Backend) GetProducts(ctx context.Context, productIDs []string, productType billing.ProductType) (*billing.GetProductsResponse, error) {
	sc, err := b.storeContext()
	if err != nil {
		return nil, err
	}

	native, err := sc.GetStoreProducts(ctx, productKinds(productType), productIDs)
	if err != nil {
		return nil, billing.WrapNativeInvoke(err, "failed to get products")
	}

	products := make([]billing.Product, 0, len(native))
	for i := range native {
		products = append(products, convertStoreProduct(&native[i], productType))
	}

	return &billing.GetProductsResponse{Products: products}, nil
}

func convertStoreProduct(sp *StoreProduct, productType billing.ProductType) billing.Product {
	product := billing.Product{
		ProductID:   sp.StoreID,
		Title:       sp.Title,
		Description: sp.Description,
		ProductType: string(productType),
	}

	if sp.Price.FormattedPrice != "" {
		formatted := sp.Price.FormattedPrice
		product.FormattedPrice = &formatted
	}
	if sp.Price.CurrencyCode != "" {
		currency := sp.Price.CurrencyCode
		product.PriceCurrencyCode = &currency
	}

	// The store reports no numeric price; the formatted base price string is
	// the only source. An empty string means no price at all, so the field
	// stays unset rather than claiming the product is free.
	var micros int64
	if sp.Price.FormattedBasePrice != "" {
		micros, _ = normalize.PriceToMicros(sp.Price.FormattedBasePrice)
		product.PriceAmountMicros = &micros
	}

	if productType == billing.ProductTypeSubs {
		product.SubscriptionOfferDetails = convertSkusToOffers(sp, micros)
	}

	return product
}

// convertSkusToOffers reconstructs subscription offers from the product's
// SKUs. Each subscription SKU becomes one offer with a single pricing phase:
// the store has no multi-phase pricing, no cycle count (0 = unknown), and
// every subscription recurs until canceled.
func convertSkusToOffers(sp *StoreProduct, productMicros int64) []billing.SubscriptionOffer {
	var offers []billing.SubscriptionOffer
	for _, sku := range sp.Skus {
		if sku.SubscriptionInfo == nil {
			continue
		}

		phase := billing.PricingPhase{
			FormattedPrice:    sku.Price.FormattedPrice,
			PriceCurrencyCode: sp.Price.CurrencyCode,
			PriceAmountMicros: productMicros,
			BillingPeriod: normalize.BillingPeriod(
				sku.SubscriptionInfo.BillingPeriod,
				normalize.PeriodUnit(sku.SubscriptionInfo.BillingPeriodUnit),
			),
			BillingCycleCount: 0,
			RecurrenceMode:    billing.RecurrenceModeInfiniteRecurring,
		}

		offers = append(offers, billing.SubscriptionOffer{
			OfferToken:    sku.StoreID,
			BasePlanID:    sku.StoreID,
			PricingPhases: []billing.PricingPhase{phase},
		})
	}
	return offers
}

func (b *Backend) Purchase(ctx context.Context, productID string, productType billing.ProductType, opts *billing.PurchaseOptions) (*billing.Purchase, error) {
	sc, err := b.storeContext()
	if err != nil {
		return nil, err
	}

	// The purchase flow gives no distinct signal for an unknown product, so
	// confirm it exists up front.
	known, err := b.GetProducts(ctx, []string{productID}, productType)
	if err != nil {
		return nil, err
	}
	if len(known.Products) == 0 {
		return nil, billing.ErrNativeInvoke("product not found")
	}

	var props *PurchaseProperties
	if opts != nil && opts.OfferToken != nil {
		props = &PurchaseProperties{
			Name:  productID,
			SkuID: *opts.OfferToken,
		}
	}

	result, err := sc.RequestPurchase(ctx, productID, props)
	if err != nil {
		return nil, billing.WrapNativeInvoke(err, "purchase request failed")
	}

	var state billing.PurchaseState
	switch result.Status {
	case PurchaseStatusSucceeded, PurchaseStatusAlreadyPurchased:
		state = billing.PurchaseStatePurchased
	case PurchaseStatusNotPurchased:
		// The user backed out; that's a canceled purchase, not an error.
		state = billing.PurchaseStateCanceled
	case PurchaseStatusNetworkError:
		return nil, billing.ErrNativeInvoke("network error during purchase").
			WithCode(comCode(result.ExtendedErrorCode), result.ExtendedErrorMessage)
	case PurchaseStatusServerError:
		return nil, billing.ErrNativeInvoke("server error during purchase").
			WithCode(comCode(result.ExtendedErrorCode), result.ExtendedErrorMessage)
	default:
		return nil, billing.ErrNativeInvokef("purchase failed with status %d", result.Status).
			WithCode(comCode(result.ExtendedErrorCode), result.ExtendedErrorMessage)
	}

	purchaseTime := b.now().UnixMilli()
	token := fmt.Sprintf("win_%s_%d", productID, purchaseTime)
	orderID := token

	return &billing.Purchase{
		OrderID:        &orderID,
		PackageName:    b.packageName,
		ProductID:      productID,
		PurchaseTime:   purchaseTime,
		PurchaseToken:  token,
		PurchaseState:  state,
		IsAutoRenewing: productType == billing.ProductTypeSubs,
		IsAcknowledged: true, // the store acknowledges automatically
		OriginalJSON: mustJSON(map[string]any{
			"status":    int32(result.Status),
			"message":   result.ExtendedErrorMessage,
			"productId": productID,
		}),
		Signature: "", // the store does not sign purchases
	}, nil
}

func (b *Backend) RestorePurchases(ctx context.Context, productType billing.ProductType) (*billing.RestorePurchasesResponse, error) {
	sc, err := b.storeContext()
	if err != nil {
		return nil, err
	}

	appLicense, err := sc.GetAppLicense(ctx)
	if err != nil {
		return nil, billing.WrapNativeInvoke(err, "failed to get app license")
	}

	purchases := make([]billing.Purchase, 0, len(appLicense.AddOnLicenses))
	for _, license := range appLicense.AddOnLicenses {
		purchase := b.convertLicense(&license, productType)
		if purchase.PurchaseState == billing.PurchaseStatePurchased {
			purchases = append(purchases, *purchase)
		}
	}

	return &billing.RestorePurchasesResponse{Purchases: purchases}, nil
}

// convertLicense reconstructs a purchase from a native license. The store
// only tracks active/inactive, so an inactive license maps to canceled, and
// the purchase time is the 30-days-before-expiration estimate for
// subscriptions (there is no recorded purchase event to read).
func (b *Backend) convertLicense(license *License, productType billing.ProductType) *billing.Purchase {
	var expirationMillis int64
	if license.ExpirationTicks > 0 {
		expirationMillis = normalize.TicksToUnixMillis(license.ExpirationTicks)
	}

	var purchaseTime int64
	if productType == billing.ProductTypeSubs && expirationMillis > 0 {
		purchaseTime = normalize.EstimatePurchaseTimeMillis(expirationMillis)
	} else {
		purchaseTime = b.now().UnixMilli()
	}

	state := billing.PurchaseStateCanceled
	if license.IsActive {
		state = billing.PurchaseStatePurchased
	}

	orderID := license.SkuStoreID
	return &billing.Purchase{
		OrderID:        &orderID,
		PackageName:    b.packageName,
		ProductID:      license.InAppOfferToken,
		PurchaseTime:   purchaseTime,
		PurchaseToken:  license.SkuStoreID,
		PurchaseState:  state,
		IsAutoRenewing: productType == billing.ProductTypeSubs && license.IsActive,
		IsAcknowledged: true,
		OriginalJSON: mustJSON(map[string]any{
			"isActive":       license.IsActive,
			"expirationDate": expirationMillis,
		}),
		Signature: "",
	}
}

// GetPurchaseHistory always fails: the Windows Store has no purchase-history
// primitive to enumerate.
func (b *Backend) GetPurchaseHistory(ctx context.Context) (*billing.GetPurchaseHistoryResponse, error) {
	return nil, billing.ErrUnsupported("getPurchaseHistory")
}

// AcknowledgePurchase succeeds as a no-op; the store acknowledges purchases
// automatically. The method exists to keep the contract uniform.
func (b *Backend) AcknowledgePurchase(ctx context.Context, purchaseToken string) (*billing.AcknowledgePurchaseResponse, error) {
	return &billing.AcknowledgePurchaseResponse{Success: true}, nil
}

func (b *Backend) GetProductStatus(ctx context.Context, productID string, productType billing.ProductType) (*billing.ProductStatus, error) {
	sc, err := b.storeContext()
	if err != nil {
		return nil, err
	}

	appLicense, err := sc.GetAppLicense(ctx)
	if err != nil {
		return nil, billing.WrapNativeInvoke(err, "failed to get app license")
	}

	license, ok := appLicense.AddOnLicenses[productID]
	if !ok {
		// No license is not an error; every optional field stays unset.
		return &billing.ProductStatus{
			ProductID: productID,
			IsOwned:   false,
		}, nil
	}

	var expirationMillis int64
	if license.ExpirationTicks > 0 {
		expirationMillis = normalize.TicksToUnixMillis(license.ExpirationTicks)
	}

	var purchaseTime int64
	if productType == billing.ProductTypeSubs && expirationMillis > 0 {
		purchaseTime = normalize.EstimatePurchaseTimeMillis(expirationMillis)
	} else {
		purchaseTime = expirationMillis
	}

	state := billing.PurchaseStateCanceled
	if license.IsActive {
		state = billing.PurchaseStatePurchased
	}

	autoRenewing := productType == billing.ProductTypeSubs && license.IsActive
	acknowledged := true
	token := license.SkuStoreID

	status := &billing.ProductStatus{
		ProductID:      productID,
		IsOwned:        license.IsActive,
		PurchaseState:  &state,
		PurchaseTime:   &purchaseTime,
		IsAutoRenewing: &autoRenewing,
		IsAcknowledged: &acknowledged,
		PurchaseToken:  &token,
	}
	if expirationMillis > 0 {
		status.ExpirationTime = &expirationMillis
	}
	return status, nil
}

// comCode renders a COM error code the way native tooling prints HRESULTs.
func comCode(code uint32) string {
	if code == 0 {
		return ""
	}
	return fmt.Sprintf("0x%08X", code)
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		// Only maps of scalars reach here.
		panic(err)
	}
	return string(raw)
}
