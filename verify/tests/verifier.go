// Package tests holds the generic verifier conformance suite.
package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/iap-bridge/verify"
)

type ReceiptGenerator func(message string) string

func RunGenericVerifierTests(t *testing.T, v verify.Verifier, validReceipt ReceiptGenerator, teardown func()) {
	for _, tf := range []func(t *testing.T, v verify.Verifier, validReceipt ReceiptGenerator){
		testValidReceipt,
		testInvalidReceipt,
	} {
		tf(t, v, validReceipt)
		teardown()
	}
}

func testValidReceipt(t *testing.T, v verify.Verifier, validReceipt ReceiptGenerator) {
	ctx := context.Background()
	receipt := validReceipt("purchase of sku_pro")

	identifier, err := v.GetReceiptIdentifier(ctx, receipt)
	require.NoError(t, err)
	require.NotEmpty(t, identifier)

	valid, err := v.VerifyReceipt(ctx, receipt)
	require.NoError(t, err)
	require.True(t, valid)
}

func testInvalidReceipt(t *testing.T, v verify.Verifier, _ ReceiptGenerator) {
	valid, err := v.VerifyReceipt(context.Background(), "invalid")
	require.NoError(t, err, "a malformed receipt is invalid, not a verifier fault")
	require.False(t, valid)
}
