package tokenward

import "context"

type deviceInfoContextKey struct{}
type clientIPContextKey struct{}

// WithDeviceInfo attaches a free-form device/client label to ctx. It becomes
// the device label on refresh-token records created during the request, and
// shows up in session introspection and audit events. May be empty.
func WithDeviceInfo(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceInfoContextKey{}, device)
}

// WithClientIP attaches the caller's IP address to ctx for audit logging.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func deviceInfoFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	device, _ := ctx.Value(deviceInfoContextKey{}).(string)
	return device
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
