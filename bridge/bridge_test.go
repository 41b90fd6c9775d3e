package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/iap-bridge/billing"
)

type invokerFunc func(ctx context.Context, method string, payload []byte) ([]byte, error)

func (f invokerFunc) Invoke(ctx context.Context, method string, payload []byte) ([]byte, error) {
	return f(ctx, method, payload)
}

func TestCall_RoundTrip(t *testing.T) {
	inv := invokerFunc(func(_ context.Context, method string, payload []byte) ([]byte, error) {
		require.Equal(t, "getProducts", method)

		var env Envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		require.NotEmpty(t, env.ID)
		require.Equal(t, "getProducts", env.Method)
		require.JSONEq(t, `{"productIds":["sku_pro"],"productType":"subs"}`, string(env.Payload))

		return []byte(`{"products":[{"productId":"sku_pro","title":"Pro","description":"","productType":"subs"}]}`), nil
	})

	var resp billing.GetProductsResponse
	req := &billing.GetProductsRequest{
		ProductIDs:  []string{"sku_pro"},
		ProductType: billing.ProductTypeSubs,
	}
	require.NoError(t, Call(context.Background(), inv, "getProducts", req, &resp))
	require.Len(t, resp.Products, 1)
	require.Equal(t, "sku_pro", resp.Products[0].ProductID)
}

func TestCall_NilRequestAndResponse(t *testing.T) {
	inv := invokerFunc(func(_ context.Context, _ string, payload []byte) ([]byte, error) {
		var env Envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		require.Empty(t, env.Payload)
		return []byte(`{}`), nil
	})

	require.NoError(t, Call(context.Background(), inv, "getPurchaseHistory", nil, nil))
}

func TestCall_NativeFailure(t *testing.T) {
	inv := invokerFunc(func(_ context.Context, _ string, _ []byte) ([]byte, error) {
		return nil, errors.New("connection reset")
	})

	err := Call(context.Background(), inv, "purchase", nil, nil)
	require.Error(t, err)
	require.Equal(t, billing.KindNativeInvoke, billing.KindOf(err))
	require.Contains(t, err.Error(), "purchase failed")
}

func TestCall_StructuredNativeFailure(t *testing.T) {
	inv := invokerFunc(func(_ context.Context, _ string, _ []byte) ([]byte, error) {
		return nil, errors.New(`{"code":"BILLING_UNAVAILABLE","message":"service disconnected","data":{"retryable":true}}`)
	})

	err := Call(context.Background(), inv, "purchase", nil, nil)
	require.Error(t, err)

	var be *billing.Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, billing.KindNativeInvoke, be.Kind())
	require.Equal(t, "BILLING_UNAVAILABLE", be.Code())
	require.JSONEq(t, `{"retryable":true}`, be.Data())
	require.Contains(t, be.Error(), "service disconnected")
}

func TestCall_MalformedReply(t *testing.T) {
	inv := invokerFunc(func(_ context.Context, _ string, _ []byte) ([]byte, error) {
		return []byte(`{"products":`), nil
	})

	var resp billing.GetProductsResponse
	err := Call(context.Background(), inv, "getProducts", &billing.GetProductsRequest{}, &resp)
	require.Error(t, err)
	require.Equal(t, billing.KindLocalIO, billing.KindOf(err))
}

func TestCall_InvalidPurchaseStateInReply(t *testing.T) {
	inv := invokerFunc(func(_ context.Context, _ string, _ []byte) ([]byte, error) {
		return []byte(`{"purchases":[{"orderId":null,"packageName":"app","productId":"sku","purchaseTime":0,"purchaseToken":"t","purchaseState":7,"isAutoRenewing":false,"isAcknowledged":false,"originalJson":"","signature":""}]}`), nil
	})

	var resp billing.RestorePurchasesResponse
	err := Call(context.Background(), inv, "restorePurchases", &billing.RestorePurchasesRequest{}, &resp)
	require.Error(t, err)
	require.Equal(t, billing.KindLocalIO, billing.KindOf(err))
	require.Contains(t, err.Error(), "invalid purchase state")
}
