package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/code-payments/iap-bridge/billing"
	"github.com/code-payments/iap-bridge/billing/memory"
)

type nopInvoker struct{}

func (nopInvoker) Invoke(_ context.Context, _ string, _ []byte) ([]byte, error) {
	return []byte(`{}`), nil
}

func TestNew_ExplicitBackendWins(t *testing.T) {
	backend := memory.NewInMemory()
	serv, err := New(zap.Must(zap.NewDevelopment()), Config{
		Platform: PlatformWindows, // ignored: explicit backend takes priority
		Backend:  backend,
	})
	require.NoError(t, err)
	require.Same(t, billing.Backend(backend), serv.Backend())
}

func TestNew_MissingCollaborators(t *testing.T) {
	log := zap.Must(zap.NewDevelopment())

	_, err := New(log, Config{Platform: PlatformAndroid})
	require.Error(t, err)

	_, err = New(log, Config{Platform: PlatformIOS})
	require.Error(t, err)

	_, err = New(log, Config{Platform: PlatformWindows})
	require.Error(t, err)
}

func TestNew_PlatformSelection(t *testing.T) {
	log := zap.Must(zap.NewDevelopment())

	serv, err := New(log, Config{Platform: PlatformAndroid, Invoker: nopInvoker{}})
	require.NoError(t, err)
	require.NotNil(t, serv)

	serv, err = New(log, Config{Platform: PlatformMacOS, Invoker: nopInvoker{}})
	require.NoError(t, err)
	require.NotNil(t, serv)
}

func TestNew_UnsupportedPlatform(t *testing.T) {
	serv, err := New(zap.Must(zap.NewDevelopment()), Config{Platform: PlatformUnsupported})
	require.NoError(t, err, "unsupported desktops resolve to the no-op backend")

	_, err = serv.Initialize(context.Background())
	require.Error(t, err)
	require.Equal(t, billing.KindUnsupported, billing.KindOf(err))
}
