package billing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPurchaseState_DecodeClosedSet(t *testing.T) {
	for raw, expected := range map[string]PurchaseState{
		"0": PurchaseStatePurchased,
		"1": PurchaseStateCanceled,
		"2": PurchaseStatePending,
	} {
		var s PurchaseState
		require.NoError(t, json.Unmarshal([]byte(raw), &s))
		require.Equal(t, expected, s)
	}

	for _, raw := range []string{"3", "-1", "42", `"purchased"`} {
		var s PurchaseState
		err := json.Unmarshal([]byte(raw), &s)
		require.Error(t, err, "raw: %s", raw)
	}

	var s PurchaseState
	err := json.Unmarshal([]byte("7"), &s)
	require.ErrorContains(t, err, "invalid purchase state: 7")
}

func TestProduct_OptionalFieldsOmitted(t *testing.T) {
	raw, err := json.Marshal(Product{
		ProductID:   "sku_gems",
		Title:       "Gems",
		Description: "d",
		ProductType: "inapp",
	})
	require.NoError(t, err)

	// A backend with no numeric price omits the field entirely; zero would
	// falsely claim the product is free.
	require.JSONEq(t, `{"productId":"sku_gems","title":"Gems","description":"d","productType":"inapp"}`, string(raw))
}

func TestProductStatus_UnownedSerializesMinimal(t *testing.T) {
	raw, err := json.Marshal(ProductStatus{ProductID: "sku_pro"})
	require.NoError(t, err)
	require.JSONEq(t, `{"productId":"sku_pro","isOwned":false}`, string(raw))
}

func TestPurchaseRequest_FlattenedOptions(t *testing.T) {
	var req PurchaseRequest
	require.NoError(t, json.Unmarshal([]byte(
		`{"productId":"sku_pro","productType":"subs","offerToken":"tok1","obfuscatedAccountId":"acct"}`,
	), &req))

	opts := req.Options()
	require.NotNil(t, opts)
	require.NotNil(t, opts.OfferToken)
	require.Equal(t, "tok1", *opts.OfferToken)
	require.NotNil(t, opts.ObfuscatedAccountID)
	require.Equal(t, "acct", *opts.ObfuscatedAccountID)
	require.Nil(t, opts.ObfuscatedProfileID)

	require.Nil(t, (&PurchaseRequest{ProductID: "sku_pro"}).Options())
}

func TestPurchase_CamelCaseWire(t *testing.T) {
	orderID := "GPA.1234"
	raw, err := json.Marshal(Purchase{
		OrderID:        &orderID,
		PackageName:    "com.example.app",
		ProductID:      "sku_pro",
		PurchaseTime:   1_700_000_000_000,
		PurchaseToken:  "tok",
		PurchaseState:  PurchaseStatePurchased,
		IsAutoRenewing: true,
		IsAcknowledged: false,
		OriginalJSON:   "{}",
	})
	require.NoError(t, err)

	require.JSONEq(t, `{
		"orderId":"GPA.1234",
		"packageName":"com.example.app",
		"productId":"sku_pro",
		"purchaseTime":1700000000000,
		"purchaseToken":"tok",
		"purchaseState":0,
		"isAutoRenewing":true,
		"isAcknowledged":false,
		"originalJson":"{}",
		"signature":""
	}`, string(raw))
}
