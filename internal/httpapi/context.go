package httpapi

import (
	"context"
	"net/http"
)

// serverBaseCtx is canceled by the command on shutdown.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process context whose cancellation aborts
// in-flight backend calls. nil restores Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives from parent, keeping its values, and is additionally
// canceled when other is done. cancel must be called when the work ends.
func joinContexts(parent, other context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	stop := context.AfterFunc(other, func() { cancel(context.Cause(other)) })
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}

// workContext is the context handlers pass to backend calls: a client
// disconnect or shutdown cancels it.
func workContext(r *http.Request) (context.Context, context.CancelFunc) {
	return joinContexts(r.Context(), serverBaseCtx)
}
