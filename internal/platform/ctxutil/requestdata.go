package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries the identity resolved for the current request. UserID is
// the identity-provider subject, not a locally minted ID.
type RequestData struct {
	UserID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
