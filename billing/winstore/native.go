// Package winstore implements the billing backend for the Windows Store.
//
// The native API has no enumerable purchase concept: entitlements exist only
// as licenses (active or not), there is no purchase-history primitive, the
// store acknowledges automatically, and subscription pricing arrives as a
// (count, unit) pair plus formatted price strings. The backend reconstructs
// the domain model from that — which makes some fields documented
// approximations rather than store-issued facts (see Backend).
package winstore

import "context"

// Product kinds understood by the Windows Store catalog query.
const (
	kindConsumable          = "Consumable"
	kindUnmanagedConsumable = "UnmanagedConsumable"
	kindDurable             = "Durable"
	kindSubscription        = "Subscription"
)

// StoreContext is the narrow surface of the native Windows.Services.Store
// context the backend needs. The production implementation binds the WinRT
// COM interface; tests use a fake. Each method blocks on the underlying
// native async operation.
type StoreContext interface {
	// GetStoreProducts queries the catalog for the given store ids, limited
	// to the given product kinds.
	GetStoreProducts(ctx context.Context, kinds, storeIDs []string) ([]StoreProduct, error)

	// RequestPurchase starts the purchase UI flow for one store id and
	// blocks until the user or the store resolves it.
	RequestPurchase(ctx context.Context, storeID string, props *PurchaseProperties) (*PurchaseResult, error)

	// GetAppLicense returns the current app license with its add-on
	// licenses, one per owned product.
	GetAppLicense(ctx context.Context) (*AppLicense, error)
}

// ContextProvider acquires the native store context. Acquisition can fail
// (e.g. the app is not running under a store identity), so the backend
// acquires lazily and caches the handle.
type ContextProvider interface {
	GetDefault() (StoreContext, error)
}

// StoreProduct is a raw native catalog entry.
type StoreProduct struct {
	StoreID     string
	Title       string
	Description string
	Price       StorePrice
	Skus        []StoreSku
}

// StorePrice carries the native price strings. There is no numeric field:
// FormattedBasePrice is the only source for an amount and must be parsed.
type StorePrice struct {
	FormattedPrice     string
	FormattedBasePrice string
	CurrencyCode       string
}

// StoreSku is one native SKU of a product. Subscription SKUs carry
// SubscriptionInfo; others leave it nil.
type StoreSku struct {
	StoreID          string
	Price            StorePrice
	SubscriptionInfo *SubscriptionInfo
}

// SubscriptionInfo is the native (count, unit) billing period.
type SubscriptionInfo struct {
	BillingPeriod     uint32
	BillingPeriodUnit int32
}

// PurchaseProperties are the optional native purchase parameters. A non-empty
// SkuID is forwarded as the {"skuId": ...} extended JSON the store expects
// when purchasing a specific subscription offer.
type PurchaseProperties struct {
	Name  string
	SkuID string
}

// PurchaseStatus is the native StorePurchaseStatus enumeration.
type PurchaseStatus int32

const (
	PurchaseStatusSucceeded        PurchaseStatus = 0
	PurchaseStatusAlreadyPurchased PurchaseStatus = 1
	PurchaseStatusNotPurchased     PurchaseStatus = 2
	PurchaseStatusNetworkError     PurchaseStatus = 3
	PurchaseStatusServerError      PurchaseStatus = 4
)

// PurchaseResult is the native outcome of a purchase request.
type PurchaseResult struct {
	Status PurchaseStatus

	// ExtendedErrorCode/Message carry the COM error, when one was reported.
	ExtendedErrorCode    uint32
	ExtendedErrorMessage string
}

// AppLicense is the native app license with its add-on licenses keyed by
// in-app offer token (the product id).
type AppLicense struct {
	AddOnLicenses map[string]License
}

// License is one native add-on license.
type License struct {
	InAppOfferToken string
	SkuStoreID      string
	IsActive        bool

	// ExpirationTicks is a Windows timestamp: 100-ns ticks since 1601-01-01.
	// Zero means the license does not expire (or the store reported none).
	ExpirationTicks int64
}
