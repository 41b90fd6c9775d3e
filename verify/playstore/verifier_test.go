//go:build integration

package playstore

import (
	"os"
	"testing"

	"github.com/code-payments/iap-bridge/verify/tests"
)

// Requires real Play Developer API credentials and a live purchase token:
//
//	PLAY_SERVICE_ACCOUNT_JSON  path to a service account key file
//	PLAY_PACKAGE_NAME          the app's package name
//	PLAY_PRODUCT_ID            the purchased product
//	PLAY_PURCHASE_TOKEN        a settled purchase token for that product
func TestPlaystoreVerifier(t *testing.T) {
	keyPath := os.Getenv("PLAY_SERVICE_ACCOUNT_JSON")
	if keyPath == "" {
		t.Skip("PLAY_SERVICE_ACCOUNT_JSON not set")
	}

	serviceAccount, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("failed to read service account key: %v", err)
	}

	v := NewVerifier(
		serviceAccount,
		os.Getenv("PLAY_PACKAGE_NAME"),
		os.Getenv("PLAY_PRODUCT_ID"),
		false,
	)

	tests.RunGenericVerifierTests(t, v, func(_ string) string {
		return os.Getenv("PLAY_PURCHASE_TOKEN")
	}, func() {})
}
