package auth

import "context"

type ctxKey string

const (
	ctxKeySub   ctxKey = "sub"
	ctxKeyToken ctxKey = "token"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithToken carries the raw bearer token so downstream collaborators (the
// quiz engine's credential provider) can see whether the caller is
// authenticated.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyToken, token)
}

func TokenFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyToken); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
