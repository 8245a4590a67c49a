package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	bearerScheme        = "bearer"
	authorizationHeader = "authorization"
)

type claimsKey struct{}

// ContextWithClaims attaches validated claims to ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims attached by ContextWithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// BearerToken extracts the token from an Authorization value. The scheme
// is matched case-insensitively and may be left out.
func BearerToken(header string) (string, bool) {
	token := strings.TrimSpace(header)
	n := len(bearerScheme)
	if len(token) >= n && strings.EqualFold(token[:n], bearerScheme) && (len(token) == n || token[n] == ' ') {
		token = strings.TrimSpace(token[n:])
	}
	return token, token != ""
}

// UnaryAuthInterceptor validates the bearer token of every call except the
// listed full method names and stores the claims in the handler context.
func UnaryAuthInterceptor(jwtService *JWTService, skipMethods []string) grpc.UnaryServerInterceptor {
	public := make(map[string]bool, len(skipMethods))
	for _, m := range skipMethods {
		public[m] = true
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if public[info.FullMethod] {
			return handler(ctx, req)
		}

		token, err := tokenFromMetadata(ctx)
		if err != nil {
			return nil, err
		}
		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}
		return handler(ContextWithClaims(ctx, claims), req)
	}
}

func tokenFromMetadata(ctx context.Context) (string, error) {
	values := metadata.ValueFromIncomingContext(ctx, authorizationHeader)
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing authorization header")
	}
	token, ok := BearerToken(values[0])
	if !ok {
		return "", status.Error(codes.Unauthenticated, "empty bearer token")
	}
	return token, nil
}
