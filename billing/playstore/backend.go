// Package playstore implements the billing backend for Google Play Billing.
//
// Play Billing already speaks the domain model's language — purchase states,
// acknowledgment, offer tokens, and signed payloads are all native concepts —
// so the adapter is a thin pass-through: each operation serializes its request
// over the bridge to the platform-side billing client and decodes the reply.
package playstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/code-payments/iap-bridge/billing"
	"github.com/code-payments/iap-bridge/bridge"
)

const (
	methodInitialize          = "initialize"
	methodGetProducts         = "getProducts"
	methodPurchase            = "purchase"
	methodRestorePurchases    = "restorePurchases"
	methodGetPurchaseHistory  = "getPurchaseHistory"
	methodAcknowledgePurchase = "acknowledgePurchase"
	methodGetProductStatus    = "getProductStatus"
)

type Backend struct {
	log *zap.Logger
	inv bridge.Invoker
}

func NewBackend(log *zap.Logger, inv bridge.Invoker) *Backend {
	return &Backend{
		log: log,
		inv: inv,
	}
}

func (b *Backend) Initialize(ctx context.Context) (*billing.InitializeResponse, error) {
	var resp billing.InitializeResponse
	if err := bridge.Call(ctx, b.inv, methodInitialize, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *Backend) GetProducts(ctx context.Context, productIDs []string, productType billing.ProductType) (*billing.GetProductsResponse, error) {
	req := &billing.GetProductsRequest{
		ProductIDs:  productIDs,
		ProductType: productType,
	}

	var resp billing.GetProductsResponse
	if err := bridge.Call(ctx, b.inv, methodGetProducts, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *Backend) Purchase(ctx context.Context, productID string, productType billing.ProductType, opts *billing.PurchaseOptions) (*billing.Purchase, error) {
	req := &billing.PurchaseRequest{
		ProductID:   productID,
		ProductType: productType,
	}
	if opts != nil {
		req.OfferToken = opts.OfferToken
		req.ObfuscatedAccountID = opts.ObfuscatedAccountID
		req.ObfuscatedProfileID = opts.ObfuscatedProfileID
	}

	var purchase billing.Purchase
	if err := bridge.Call(ctx, b.inv, methodPurchase, req, &purchase); err != nil {
		return nil, err
	}

	b.log.Debug("Native purchase resolved",
		zap.String("product_id", productID),
		zap.String("state", purchase.PurchaseState.String()),
	)
	return &purchase, nil
}

func (b *Backend) RestorePurchases(ctx context.Context, productType billing.ProductType) (*billing.RestorePurchasesResponse, error) {
	req := &billing.RestorePurchasesRequest{ProductType: productType}

	var resp billing.RestorePurchasesResponse
	if err := bridge.Call(ctx, b.inv, methodRestorePurchases, req, &resp); err != nil {
		return nil, err
	}

	// The native query can include non-purchased entries; restore reports
	// only settled ones.
	purchased := resp.Purchases[:0]
	for _, p := range resp.Purchases {
		if p.PurchaseState == billing.PurchaseStatePurchased {
			purchased = append(purchased, p)
		}
	}
	resp.Purchases = purchased
	return &resp, nil
}

func (b *Backend) GetPurchaseHistory(ctx context.Context) (*billing.GetPurchaseHistoryResponse, error) {
	var resp billing.GetPurchaseHistoryResponse
	if err := bridge.Call(ctx, b.inv, methodGetPurchaseHistory, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *Backend) AcknowledgePurchase(ctx context.Context, purchaseToken string) (*billing.AcknowledgePurchaseResponse, error) {
	req := &billing.AcknowledgePurchaseRequest{PurchaseToken: purchaseToken}

	var resp billing.AcknowledgePurchaseResponse
	if err := bridge.Call(ctx, b.inv, methodAcknowledgePurchase, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *Backend) GetProductStatus(ctx context.Context, productID string, productType billing.ProductType) (*billing.ProductStatus, error) {
	req := &billing.GetProductStatusRequest{
		ProductID:   productID,
		ProductType: productType,
	}

	var status billing.ProductStatus
	if err := bridge.Call(ctx, b.inv, methodGetProductStatus, req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
