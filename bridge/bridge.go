// Package bridge is the one seam where structured requests cross into
// platform-native code. A request is serialized to a camelCase JSON envelope,
// handed to an opaque Invoker, and the raw reply is deserialized back into a
// domain value — or classified into the shared error taxonomy. Everything
// native-unsafe lives behind the Invoker.
package bridge

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/code-payments/iap-bridge/billing"
)

// Invoker executes one named method against a platform-native billing
// component and returns its raw reply payload. Implementations wrap the
// actual FFI/IPC binding for their platform; they must be safe for
// concurrent use.
type Invoker interface {
	Invoke(ctx context.Context, method string, payload []byte) ([]byte, error)
}

// Envelope frames one native call. The id correlates replies and native-side
// logs with the originating call.
type Envelope struct {
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Call marshals req, invokes method on inv, and unmarshals the reply into
// resp. A nil req sends an empty payload; a nil resp discards the reply.
//
// Marshal/unmarshal faults are KindLocalIO. Invoker failures are surfaced as
// KindNativeInvoke, with any code/message/data found in a structured native
// error payload attached.
func Call(ctx context.Context, inv Invoker, method string, req, resp any) error {
	env := Envelope{
		ID:     uuid.NewString(),
		Method: method,
	}

	if req != nil {
		payload, err := json.Marshal(req)
		if err != nil {
			return billing.ErrLocalIO(err, "failed to serialize "+method+" request")
		}
		env.Payload = payload
	}

	raw, err := json.Marshal(&env)
	if err != nil {
		return billing.ErrLocalIO(err, "failed to serialize "+method+" envelope")
	}

	reply, err := inv.Invoke(ctx, method, raw)
	if err != nil {
		return NativeError(err, method)
	}

	if resp == nil {
		return nil
	}
	if err := json.Unmarshal(reply, resp); err != nil {
		return billing.ErrLocalIO(err, "failed to deserialize "+method+" response")
	}
	return nil
}

// NativeError converts an Invoker failure into a KindNativeInvoke error. When
// the failure message is itself a structured native payload (the mobile
// bridges report {"code": ..., "message": ..., "data": ...}), the fields are
// extracted leniently and attached; anything else is passed through as the
// message.
func NativeError(err error, method string) *billing.Error {
	msg := err.Error()
	if !gjson.Valid(msg) {
		return billing.WrapNativeInvoke(err, method+" failed")
	}

	parsed := gjson.Parse(msg)
	message := parsed.Get("message").String()
	if message == "" {
		return billing.WrapNativeInvoke(err, method+" failed")
	}

	return billing.ErrNativeInvoke(method + " failed: " + message).
		WithCode(parsed.Get("code").String(), parsed.Get("data").Raw)
}
