// Package storekit implements the billing backend for Apple StoreKit.
//
// Like Play Billing, StoreKit reports purchase state and transactions
// natively, so the operations themselves are bridge pass-throughs. What the
// Apple backend adds is a security gate: before every native call the running
// binary's code signature is validated, and any validation failure fails the
// operation closed — no native call is attempted.
package storekit

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/code-payments/iap-bridge/billing"
	"github.com/code-payments/iap-bridge/bridge"
)

// SignatureValidator validates the running binary's code signature.
type SignatureValidator interface {
	Validate(ctx context.Context) error
}

// CodesignValidator validates via the platform codesign tool with strict,
// all-architecture, nested-code checking.
type CodesignValidator struct{}

func (CodesignValidator) Validate(ctx context.Context) error {
	exe, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "failed to resolve executable path")
	}

	// --all-architectures and --deep mirror the strict validation flags the
	// Security framework applies (architecture, nested code, strict).
	cmd := exec.CommandContext(ctx, "/usr/bin/codesign",
		"--verify", "--strict", "--deep", "--all-architectures", exe)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "codesign validation failed: %s", out)
	}
	return nil
}

type Backend struct {
	log       *zap.Logger
	inv       bridge.Invoker
	validator SignatureValidator
}

func NewBackend(log *zap.Logger, inv bridge.Invoker, validator SignatureValidator) *Backend {
	return &Backend{
		log:       log,
		inv:       inv,
		validator: validator,
	}
}

// gate runs the code-signature check. Every operation passes through here
// before touching the native layer.
func (b *Backend) gate(ctx context.Context) error {
	if err := b.validator.Validate(ctx); err != nil {
		b.log.Warn("Code signature validation failed", zap.Error(err))
		return billing.ErrSecurityGate(err, "code signature validation failed")
	}
	return nil
}

func (b *Backend) Initialize(ctx context.Context) (*billing.InitializeResponse, error) {
	if err := b.gate(ctx); err != nil {
		return nil, err
	}

	var resp billing.InitializeResponse
	if err := bridge.Call(ctx, b.inv, "initialize", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *Backend) GetProducts(ctx context.Context, productIDs []string, productType billing.ProductType) (*billing.GetProductsResponse, error) {
	if err := b.gate(ctx); err != nil {
		return nil, err
	}

	req := &billing.GetProductsRequest{
		ProductIDs:  productIDs,
		ProductType: productType,
	}

	var resp billing.GetProductsResponse
	if err := bridge.Call(ctx, b.inv, "getProducts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *Backend) Purchase(ctx context.Context, productID string, productType billing.ProductType, opts *billing.PurchaseOptions) (*billing.Purchase, error) {
	if err := b.gate(ctx); err != nil {
		return nil, err
	}

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
	if err := bridge.Call(ctx, b.inv, "purchase", req, &purchase); err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (b *Backend) RestorePurchases(ctx context.Context, productType billing.ProductType) (*billing.RestorePurchasesResponse, error) {
	if err := b.gate(ctx); err != nil {
		return nil, err
	}

	req := &billing.RestorePurchasesRequest{ProductType: productType}

	var resp billing.RestorePurchasesResponse
	if err := bridge.Call(ctx, b.inv, "restorePurchases", req, &resp); err != nil {
		return nil, err
	}

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
	if err := b.gate(ctx); err != nil {
		return nil, err
	}

	var resp billing.GetPurchaseHistoryResponse
	if err := bridge.Call(ctx, b.inv, "getPurchaseHistory", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *Backend) AcknowledgePurchase(ctx context.Context, purchaseToken string) (*billing.AcknowledgePurchaseResponse, error) {
	if err := b.gate(ctx); err != nil {
		return nil, err
	}

	req := &billing.AcknowledgePurchaseRequest{PurchaseToken: purchaseToken}

	var resp billing.AcknowledgePurchaseResponse
	if err := bridge.Call(ctx, b.inv, "acknowledgePurchase", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *Backend) GetProductStatus(ctx context.Context, productID string, productType billing.ProductType) (*billing.ProductStatus, error) {
	if err := b.gate(ctx); err != nil {
		return nil, err
	}

	req := &billing.GetProductStatusRequest{
		ProductID:   productID,
		ProductType: productType,
	}

	var status billing.ProductStatus
	if err := bridge.Call(ctx, b.inv, "getProductStatus", req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
