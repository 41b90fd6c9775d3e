// Package dispatch resolves which billing backend serves the current
// platform and hands back the ready server façade. Resolution happens once,
// at process startup; the backend is never switched afterwards.
package dispatch

import (
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/code-payments/iap-bridge/billing"
	"github.com/code-payments/iap-bridge/billing/noop"
	"github.com/code-payments/iap-bridge/billing/playstore"
	"github.com/code-payments/iap-bridge/billing/storekit"
	"github.com/code-payments/iap-bridge/billing/winstore"
	"github.com/code-payments/iap-bridge/bridge"
)

type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"

	// PlatformUnsupported gets the no-op backend: resolution succeeds,
	// every billing operation reports unsupported.
	PlatformUnsupported Platform = "unsupported"
)

// DetectPlatform maps the running OS onto a billing platform.
func DetectPlatform() Platform {
	switch runtime.GOOS {
	case "android":
		return PlatformAndroid
	case "ios":
		return PlatformIOS
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	default:
		return PlatformUnsupported
	}
}

// Config carries the per-platform collaborators. Only the fields for the
// resolved platform are required.
type Config struct {
	// Platform selects the backend. Zero value means DetectPlatform().
	Platform Platform

	// PackageName is the host application's package identifier, stamped onto
	// purchases by backends whose native store doesn't report one.
	PackageName string

	// Invoker is the native billing binding for the mobile/Apple platforms.
	Invoker bridge.Invoker

	// StoreProvider acquires the Windows store context.
	StoreProvider winstore.ContextProvider

	// Validator overrides the Apple code-signature gate. Defaults to the
	// codesign-based validator.
	Validator storekit.SignatureValidator

	// Backend bypasses platform resolution entirely (e.g. the in-memory
	// backend in tests and development builds).
	Backend billing.Backend

	// Verifier optionally enables post-purchase receipt verification.
	Verifier billing.ReceiptVerifier
}

// New resolves the backend for cfg and returns the serving façade. An error
// means resolution failed and no operation is reachable; there is no
// half-initialized state to observe.
func New(log *zap.Logger, cfg Config) (*billing.Server, error) {
	backend, err := resolve(log, cfg)
	if err != nil {
		return nil, err
	}

	var opts []billing.ServerOption
	if cfg.Verifier != nil {
		opts = append(opts, billing.WithReceiptVerifier(cfg.Verifier))
	}

	log.Info("Resolved billing backend", zap.String("platform", string(platformOf(cfg))))
	return billing.NewServer(log, backend, opts...), nil
}

func platformOf(cfg Config) Platform {
	if cfg.Platform != "" {
		return cfg.Platform
	}
	return DetectPlatform()
}

func resolve(log *zap.Logger, cfg Config) (billing.Backend, error) {
	if cfg.Backend != nil {
		return cfg.Backend, nil
	}

	switch platformOf(cfg) {
	case PlatformAndroid:
		if cfg.Invoker == nil {
			return nil, errors.New("android billing requires a native invoker")
		}
		return playstore.NewBackend(log, cfg.Invoker), nil

	case PlatformIOS, PlatformMacOS:
		if cfg.Invoker == nil {
			return nil, errors.New("storekit billing requires a native invoker")
		}
		validator := cfg.Validator
		if validator == nil {
			validator = storekit.CodesignValidator{}
		}
		return storekit.NewBackend(log, cfg.Invoker, validator), nil

	case PlatformWindows:
		if cfg.StoreProvider == nil {
			return nil, errors.New("windows billing requires a store context provider")
		}
		return winstore.NewBackend(log, cfg.StoreProvider, cfg.PackageName), nil

	default:
		return noop.NewBackend(), nil
	}
}
