// Package noop is the backend for platforms with no billing subsystem.
// Every operation fails with the platform-unsupported error.
package noop

import (
	"context"

	"github.com/code-payments/iap-bridge/billing"
)

type Backend struct{}

func NewBackend() *Backend {
	return &Backend{}
}

func (Backend) Initialize(context.Context) (*billing.InitializeResponse, error) {
	return nil, billing.ErrUnsupported("initialize")
}

func (Backend) GetProducts(context.Context, []string, billing.ProductType) (*billing.GetProductsResponse, error) {
	return nil, billing.ErrUnsupported("getProducts")
}

func (Backend) Purchase(context.Context, string, billing.ProductType, *billing.PurchaseOptions) (*billing.Purchase, error) {
	return nil, billing.ErrUnsupported("purchase")
}

func (Backend) RestorePurchases(context.Context, billing.ProductType) (*billing.RestorePurchasesResponse, error) {
	return nil, billing.ErrUnsupported("restorePurchases")
}

func (Backend) GetPurchaseHistory(context.Context) (*billing.GetPurchaseHistoryResponse, error) {
	return nil, billing.ErrUnsupported("getPurchaseHistory")
}

func (Backend) AcknowledgePurchase(context.Context, string) (*billing.AcknowledgePurchaseResponse, error) {
	return nil, billing.ErrUnsupported("acknowledgePurchase")
}

func (Backend) GetProductStatus(context.Context, string, billing.ProductType) (*billing.ProductStatus, error) {
	return nil, billing.ErrUnsupported("getProductStatus")
}
