package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/iap-bridge/verify/tests"
)

func TestVerifier(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	v := NewVerifier(pub)
	tests.RunGenericVerifierTests(t, v, func(message string) string {
		return SignReceipt(priv, message)
	}, func() {})
}

func TestVerifier_WrongKey(t *testing.T) {
	pub, _, err := GenerateKeyPair()
	require.NoError(t, err)
	_, otherPriv, err := GenerateKeyPair()
	require.NoError(t, err)

	v := NewVerifier(pub)
	valid, err := v.VerifyReceipt(context.Background(), SignReceipt(otherPriv, "msg"))
	require.NoError(t, err)
	require.False(t, valid)
}
