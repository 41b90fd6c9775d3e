package apple

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

// A valid sandbox receipt requires Apple-issued PKCS#7 material, so the happy
// path runs only where one is provided; the rejection paths are self-contained.

func TestVerifyReceipt_Malformed(t *testing.T) {
	v := NewVerifier("com.example.app", "sku_pro")

	valid, err := v.VerifyReceipt(context.Background(), "invalid")
	require.NoError(t, err, "a malformed receipt is invalid, not a verifier fault")
	require.False(t, valid)
}

func TestVerifyReceipt_NotPKCS7(t *testing.T) {
	v := NewVerifier("com.example.app", "sku_pro")

	// Well-formed base64 that isn't a PKCS#7 container.
	receipt := base64.StdEncoding.EncodeToString([]byte("not a receipt"))
	valid, err := v.VerifyReceipt(context.Background(), receipt)
	require.NoError(t, err)
	require.False(t, valid)
}

func TestGetReceiptIdentifier_Malformed(t *testing.T) {
	v := NewVerifier("com.example.app", "sku_pro")

	_, err := v.GetReceiptIdentifier(context.Background(), "invalid")
	require.Error(t, err)
}
