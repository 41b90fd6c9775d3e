package billing

import (
	"context"

	"go.uber.org/zap"
)

// ReceiptVerifier optionally cross-checks a purchase against the store's own
// verification endpoint after the native flow reports success. Satisfied by
// the implementations in the verify package.
type ReceiptVerifier interface {
	VerifyReceipt(ctx context.Context, receipt string) (bool, error)
}

// Server fronts the single active Backend with the seven billing operations.
// It applies request defaults, logs, and re-surfaces backend errors unchanged.
// A Server only exists Ready: construction requires a resolved backend, so no
// operation can be reached before platform resolution succeeds.
type Server struct {
	log      *zap.Logger
	backend  Backend
	verifier ReceiptVerifier
}

func NewServer(log *zap.Logger, backend Backend, opts ...ServerOption) *Server {
	s := &Server{
		log:     log,
		backend: backend,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ServerOption func(*Server)

// WithReceiptVerifier enables post-purchase receipt verification. A purchase
// whose receipt fails verification is surfaced as a native-invoke error.
func WithReceiptVerifier(v ReceiptVerifier) ServerOption {
	return func(s *Server) {
		s.verifier = v
	}
}

// Backend returns the active backend.
func (s *Server) Backend() Backend { return s.backend }

func (s *Server) Initialize(ctx context.Context) (*InitializeResponse, error) {
	resp, err := s.backend.Initialize(ctx)
	if err != nil {
		s.log.Warn("Failed to initialize billing backend", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func (s *Server) GetProducts(ctx context.Context, req *GetProductsRequest) (*GetProductsResponse, error) {
	productType := defaultProductType(req.ProductType)

	resp, err := s.backend.GetProducts(ctx, req.ProductIDs, productType)
	if err != nil {
		s.log.Warn("Failed to get products",
			zap.Strings("product_ids", req.ProductIDs),
			zap.String("product_type", string(productType)),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Debug("Got products",
		zap.Int("requested", len(req.ProductIDs)),
		zap.Int("returned", len(resp.Products)),
	)
	return resp, nil
}

func (s *Server) Purchase(ctx context.Context, req *PurchaseRequest) (*Purchase, error) {
	productType := defaultProductType(req.ProductType)

	purchase, err := s.backend.Purchase(ctx, req.ProductID, productType, req.Options())
	if err != nil {
		s.log.Warn("Purchase failed",
			zap.String("product_id", req.ProductID),
			zap.Error(err),
		)
		return nil, err
	}

	if s.verifier != nil && purchase.PurchaseState == PurchaseStatePurchased {
		ok, err := s.verifier.VerifyReceipt(ctx, purchase.PurchaseToken)
		if err != nil {
			s.log.Warn("Failed to verify purchase receipt",
				zap.String("product_id", req.ProductID),
				zap.Error(err),
			)
			return nil, WrapNativeInvoke(err, "receipt verification failed")
		}
		if !ok {
			s.log.Warn("Purchase receipt failed verification",
				zap.String("product_id", req.ProductID),
			)
			return nil, ErrNativeInvoke("receipt failed verification")
		}
	}

	s.log.Debug("Purchase completed",
		zap.String("product_id", req.ProductID),
		zap.String("state", purchase.PurchaseState.String()),
	)
	return purchase, nil
}

func (s *Server) RestorePurchases(ctx context.Context, req *RestorePurchasesRequest) (*RestorePurchasesResponse, error) {
	productType := defaultProductType(req.ProductType)

	resp, err := s.backend.RestorePurchases(ctx, productType)
	if err != nil {
		s.log.Warn("Failed to restore purchases", zap.Error(err))
		return nil, err
	}

	s.log.Debug("Restored purchases", zap.Int("count", len(resp.Purchases)))
	return resp, nil
}

func (s *Server) GetPurchaseHistory(ctx context.Context) (*GetPurchaseHistoryResponse, error) {
	resp, err := s.backend.GetPurchaseHistory(ctx)
	if err != nil {
		s.log.Warn("Failed to get purchase history", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func (s *Server) AcknowledgePurchase(ctx context.Context, req *AcknowledgePurchaseRequest) (*AcknowledgePurchaseResponse, error) {
	resp, err := s.backend.AcknowledgePurchase(ctx, req.PurchaseToken)
	if err != nil {
		s.log.Warn("Failed to acknowledge purchase", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func (s *Server) GetProductStatus(ctx context.Context, req *GetProductStatusRequest) (*ProductStatus, error) {
	productType := defaultProductType(req.ProductType)

	status, err := s.backend.GetProductStatus(ctx, req.ProductID, productType)
	if err != nil {
		s.log.Warn("Failed to get product status",
			zap.String("product_id", req.ProductID),
			zap.Error(err),
		)
		return nil, err
	}
	return status, nil
}

func defaultProductType(t ProductType) ProductType {
	if t == ProductTypeUnspecified {
		return DefaultProductType
	}
	return t
}
