package billing

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKindDiscrimination(t *testing.T) {
	require.Equal(t, KindLocalIO, KindOf(ErrLocalIO(io.ErrUnexpectedEOF, "decode failed")))
	require.Equal(t, KindNativeInvoke, KindOf(ErrNativeInvoke("store rejected")))
	require.Equal(t, KindUnsupported, KindOf(ErrUnsupported("getPurchaseHistory")))
	require.Equal(t, KindSecurityGate, KindOf(ErrSecurityGate(nil, "bad signature")))

	// Non-billing errors have no kind.
	require.Zero(t, KindOf(errors.New("plain")))

	// Kinds survive wrapping.
	wrapped := errors.Wrap(ErrUnsupported("purchase"), "dispatch")
	require.Equal(t, KindUnsupported, KindOf(wrapped))
}

func TestErrorMessage(t *testing.T) {
	err := ErrNativeInvoke("store query failed").WithCode("0x803F6107", `{"hresult":-2143330041}`)
	require.Equal(t, "iap: store query failed (code 0x803F6107)", err.Error())
	require.Equal(t, "0x803F6107", err.Code())
	require.JSONEq(t, `{"hresult":-2143330041}`, err.Data())

	cause := io.ErrClosedPipe
	require.Equal(t, "iap: bridge call failed: io: read/write on closed pipe",
		WrapNativeInvoke(cause, "bridge call failed").Error())
	require.ErrorIs(t, WrapNativeInvoke(cause, "bridge call failed"), io.ErrClosedPipe)
}

func TestErrorSerializesAsString(t *testing.T) {
	raw, err := json.Marshal(ErrUnsupported("purchase"))
	require.NoError(t, err)
	require.Equal(t, `"iap: purchase is not supported on this platform"`, string(raw))
}
