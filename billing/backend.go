package billing

import "context"

// Backend is the contract every platform adapter implements. One Backend is
// active per process, resolved once at startup and never switched.
//
// Every operation is a single blocking request/response unit: no retries, no
// batching, no implicit timeout. An operation may wait on a native async call
// internally, but callers see an opaque synchronous call. Operations are
// independent — none requires Initialize to have been called first, though
// hosts conventionally call it once at startup.
type Backend interface {
	// Initialize acquires the native billing context.
	Initialize(ctx context.Context) (*InitializeResponse, error)

	// GetProducts queries the native catalog for the given product ids.
	GetProducts(ctx context.Context, productIDs []string, productType ProductType) (*GetProductsResponse, error)

	// Purchase starts a native purchase flow and blocks until it resolves.
	// User cancellation is a Purchase with PurchaseStateCanceled, not an
	// error; only native failures (network, server, unknown status) error.
	Purchase(ctx context.Context, productID string, productType ProductType, opts *PurchaseOptions) (*Purchase, error)

	// RestorePurchases returns the user's current entitlements. Only entries
	// whose state is PurchaseStatePurchased are included.
	RestorePurchases(ctx context.Context, productType ProductType) (*RestorePurchasesResponse, error)

	// GetPurchaseHistory returns past transactions. Backends without a native
	// history primitive fail with KindUnsupported.
	GetPurchaseHistory(ctx context.Context) (*GetPurchaseHistoryResponse, error)

	// AcknowledgePurchase acknowledges a purchase by token. Backends whose
	// store acknowledges automatically succeed as a no-op.
	AcknowledgePurchase(ctx context.Context, purchaseToken string) (*AcknowledgePurchaseResponse, error)

	// GetProductStatus reports ownership of one product. A missing license is
	// not an error: IsOwned is false and every optional field is nil.
	GetProductStatus(ctx context.Context, productID string, productType ProductType) (*ProductStatus, error)
}
