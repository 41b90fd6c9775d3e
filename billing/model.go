package billing

import (
	"encoding/json"
	"fmt"
)

// ProductType is the catalog category hint passed to every backend query.
type ProductType string

const (
	ProductTypeInApp ProductType = "inapp"
	ProductTypeSubs  ProductType = "subs"

	// ProductTypeUnspecified lets the backend query every product kind it knows.
	ProductTypeUnspecified ProductType = ""
)

// DefaultProductType is applied whenever a request omits the product type.
const DefaultProductType = ProductTypeSubs

// PurchaseState is the closed purchase-state enum shared by every backend.
// It serializes as the integers 0 (purchased), 1 (canceled), 2 (pending);
// any other integer is a decode failure.
type PurchaseState int32

const (
	PurchaseStatePurchased PurchaseState = 0
	PurchaseStateCanceled  PurchaseState = 1
	PurchaseStatePending   PurchaseState = 2
)

func (s PurchaseState) String() string {
	switch s {
	case PurchaseStatePurchased:
		return "purchased"
	case PurchaseStateCanceled:
		return "canceled"
	case PurchaseStatePending:
		return "pending"
	default:
		return fmt.Sprintf("invalid(%d)", int32(s))
	}
}

func (s PurchaseState) MarshalJSON() ([]byte, error) {
	return json.Marshal(int32(s))
}

func (s *PurchaseState) UnmarshalJSON(data []byte) error {
	var value int32
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	switch value {
	case 0, 1, 2:
		*s = PurchaseState(value)
		return nil
	default:
		return fmt.Errorf("invalid purchase state: %d", value)
	}
}

// RecurrenceMode values for a PricingPhase.
const (
	RecurrenceModeFiniteRecurring   int32 = 0
	RecurrenceModeInfiniteRecurring int32 = 1
	RecurrenceModeOneTimeCharge     int32 = 2
)

// PricingPhase is one pricing tier within a subscription offer. Phases are
// applied in the order the backend reports them.
type PricingPhase struct {
	FormattedPrice    string `json:"formattedPrice"`
	PriceCurrencyCode string `json:"priceCurrencyCode"`
	PriceAmountMicros int64  `json:"priceAmountMicros"`

	// BillingPeriod is an ISO-8601 duration, e.g. "P1M".
	BillingPeriod string `json:"billingPeriod"`

	// BillingCycleCount is 0 when the backend doesn't report a cycle count.
	BillingCycleCount int32 `json:"billingCycleCount"`
	RecurrenceMode    int32 `json:"recurrenceMode"`
}

// SubscriptionOffer describes one redeemable pricing offer of a subscription.
type SubscriptionOffer struct {
	// OfferToken is the opaque backend identifier required to redeem the offer.
	OfferToken    string         `json:"offerToken"`
	BasePlanID    string         `json:"basePlanId"`
	OfferID       *string        `json:"offerId,omitempty"`
	PricingPhases []PricingPhase `json:"pricingPhases"`
}

// Product is a platform-neutral catalog entry.
//
// PriceAmountMicros is nil when the backend cannot report a numeric price;
// zero is reserved for "no reported price" and never stands in for missing
// data, so callers can distinguish missing from free.
type Product struct {
	ProductID   string `json:"productId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ProductType string `json:"productType"`

	FormattedPrice    *string `json:"formattedPrice,omitempty"`
	PriceCurrencyCode *string `json:"priceCurrencyCode,omitempty"`
	PriceAmountMicros *int64  `json:"priceAmountMicros,omitempty"`

	SubscriptionOfferDetails []SubscriptionOffer `json:"subscriptionOfferDetails,omitempty"`
}

// Purchase is one transaction as last reported by the native store.
// Nothing here is persisted; every call re-reads native state.
type Purchase struct {
	OrderID     *string `json:"orderId"`
	PackageName string  `json:"packageName"`
	ProductID   string  `json:"productId"`

	// PurchaseTime is Unix epoch milliseconds.
	PurchaseTime int64 `json:"purchaseTime"`

	// PurchaseToken is required for acknowledgment and history lookups.
	PurchaseToken  string        `json:"purchaseToken"`
	PurchaseState  PurchaseState `json:"purchaseState"`
	IsAutoRenewing bool          `json:"isAutoRenewing"`
	IsAcknowledged bool          `json:"isAcknowledged"`

	// OriginalJSON is the raw backend payload, passed through untouched.
	OriginalJSON string `json:"originalJson"`

	// Signature is empty on backends that don't sign purchases.
	Signature string `json:"signature"`
}

// PurchaseHistoryRecord is a past transaction from the backend's history API.
type PurchaseHistoryRecord struct {
	ProductID     string `json:"productId"`
	PurchaseTime  int64  `json:"purchaseTime"`
	PurchaseToken string `json:"purchaseToken"`
	Quantity      int32  `json:"quantity"`
	OriginalJSON  string `json:"originalJson"`
	Signature     string `json:"signature"`
}

// ProductStatus is a point-in-time ownership snapshot for one product. Every
// optional field is nil when the backend has no license for the product.
type ProductStatus struct {
	ProductID string `json:"productId"`
	IsOwned   bool   `json:"isOwned"`

	PurchaseState  *PurchaseState `json:"purchaseState,omitempty"`
	PurchaseTime   *int64         `json:"purchaseTime,omitempty"`
	ExpirationTime *int64         `json:"expirationTime,omitempty"`
	IsAutoRenewing *bool          `json:"isAutoRenewing,omitempty"`
	IsAcknowledged *bool          `json:"isAcknowledged,omitempty"`
	PurchaseToken  *string        `json:"purchaseToken,omitempty"`
}

// PurchaseOptions are the optional purchase parameters. OfferToken selects a
// subscription offer; the obfuscated ids are forwarded opaquely to backends
// that support them.
type PurchaseOptions struct {
	OfferToken          *string `json:"offerToken,omitempty"`
	ObfuscatedAccountID *string `json:"obfuscatedAccountId,omitempty"`
	ObfuscatedProfileID *string `json:"obfuscatedProfileId,omitempty"`
}

type InitializeResponse struct {
	Success bool `json:"success"`
}

type GetProductsRequest struct {
	ProductIDs  []string    `json:"productIds"`
	ProductType ProductType `json:"productType"`
}

type GetProductsResponse struct {
	Products []Product `json:"products"`
}

// PurchaseRequest carries the purchase options flattened at the top level.
type PurchaseRequest struct {
	ProductID   string      `json:"productId"`
	ProductType ProductType `json:"productType"`

	OfferToken          *string `json:"offerToken,omitempty"`
	ObfuscatedAccountID *string `json:"obfuscatedAccountId,omitempty"`
	ObfuscatedProfileID *string `json:"obfuscatedProfileId,omitempty"`
}

// Options collects the flattened option fields, or nil when none are set.
func (r *PurchaseRequest) Options() *PurchaseOptions {
	if r.OfferToken == nil && r.ObfuscatedAccountID == nil && r.ObfuscatedProfileID == nil {
		return nil
	}
	return &PurchaseOptions{
		OfferToken:          r.OfferToken,
		ObfuscatedAccountID: r.ObfuscatedAccountID,
		ObfuscatedProfileID: r.ObfuscatedProfileID,
	}
}

type RestorePurchasesRequest struct {
	ProductType ProductType `json:"productType"`
}

type RestorePurchasesResponse struct {
	Purchases []Purchase `json:"purchases"`
}

type GetPurchaseHistoryResponse struct {
	History []PurchaseHistoryRecord `json:"history"`
}

type AcknowledgePurchaseRequest struct {
	PurchaseToken string `json:"purchaseToken"`
}

type AcknowledgePurchaseResponse struct {
	Success bool `json:"success"`
}

type GetProductStatusRequest struct {
	ProductID   string      `json:"productId"`
	ProductType ProductType `json:"productType"`
}
