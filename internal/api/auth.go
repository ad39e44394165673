package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"storebot/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const (
	apiKeyHeaderDefault = "x-api-key"
	requestIDHeader     = "x-request-id"
	permReadCatalog     = "read:catalog"
	permReadStats       = "read:stats"
	clientKeyUnknown    = "unknown"
	healthServicePrefix = "/grpc.health.v1.Health/"
	reflectionPrefixV1  = "/grpc.reflection.v1.ServerReflection/"
	reflectionPrefixV1a = "/grpc.reflection.v1alpha.ServerReflection/"
)

var (
	errMissingAPIKey    = errors.New("missing api key header")
	errInvalidAPIKey    = errors.New("invalid api key")
	errPermissionDenied = errors.New("permission denied")
	errRateLimited      = errors.New("rate limit exceeded")
)

// Authenticator checks API keys and per-client rate limits for both the
// HTTP and the gRPC surface.
type Authenticator struct {
	cfg     config.APIConfig
	header  string
	clients []config.APIClientKey
	limiter *rateLimiter
}

func NewAuthenticator(cfg config.APIConfig) *Authenticator {
	header := strings.ToLower(strings.TrimSpace(cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = apiKeyHeaderDefault
	}
	return &Authenticator{
		cfg:     cfg,
		header:  header,
		clients: cfg.Auth.APIKeys,
		limiter: newRateLimiter(cfg.RateLimit),
	}
}

// lookup compares against every key in constant time.
func (a *Authenticator) lookup(apiKey string) (config.APIClientKey, bool) {
	var found config.APIClientKey
	ok := false
	for _, c := range a.clients {
		if subtle.ConstantTimeCompare([]byte(c.Key), []byte(apiKey)) == 1 {
			found, ok = c, true
		}
	}
	return found, ok
}

// Check validates apiKey against the permission the call requires.
// An empty permission list on a key allows everything.
func (a *Authenticator) Check(apiKey, required string) (config.APIClientKey, error) {
	if !a.cfg.Auth.Enabled {
		return config.APIClientKey{Name: "anonymous"}, nil
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return config.APIClientKey{}, errMissingAPIKey
	}
	client, ok := a.lookup(apiKey)
	if !ok {
		return config.APIClientKey{}, errInvalidAPIKey
	}
	if required == "" || len(client.Permissions) == 0 {
		return client, nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return client, nil
		}
	}
	return client, errPermissionDenied
}

// Allow consumes a token from the bucket of clientKey.
func (a *Authenticator) Allow(clientKey string) error {
	if !a.limiter.allow(clientKey) {
		return errRateLimited
	}
	return nil
}

// Unary returns the gRPC interceptor. Health and reflection stay open so
// that health checks work without credentials.
func (a *Authenticator) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if isOpenMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		apiKey := first(md.Get(a.header))
		if _, err := a.Check(apiKey, requiredPermission(info.FullMethod)); err != nil {
			code := codes.Unauthenticated
			if errors.Is(err, errPermissionDenied) {
				code = codes.PermissionDenied
			}
			return nil, status.Error(code, err.Error())
		}

		if err := a.Allow(grpcClientKey(ctx, apiKey)); err != nil {
			return nil, status.Error(codes.ResourceExhausted, err.Error())
		}
		return handler(ctx, req)
	}
}

func isOpenMethod(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, healthServicePrefix) ||
		strings.HasPrefix(fullMethod, reflectionPrefixV1) ||
		strings.HasPrefix(fullMethod, reflectionPrefixV1a)
}

// requiredPermission maps gRPC methods to permissions. No catalog RPCs are
// exposed yet, so anything that is not open needs read:catalog.
func requiredPermission(fullMethod string) string {
	if fullMethod == "" {
		return ""
	}
	return permReadCatalog
}

func grpcClientKey(ctx context.Context, apiKey string) string {
	if apiKey != "" {
		return apiKey
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return clientKeyUnknown
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}

func LoggingUnaryInterceptor(logger *zerolog.Logger) grpc.UnaryServerInterceptor {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "grpc").Logger()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := requestIDFromMetadata(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)
		dur := time.Since(start)

		code := codes.OK
		if err != nil {
			code = status.Code(err)
		}

		remote := clientKeyUnknown
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}

		base.Info().
			Str("request_id", requestID).
			Str("method", info.FullMethod).
			Str("remote", remote).
			Str("code", code.String()).
			Dur("duration", dur).
			Msg("grpc request")

		return resp, err
	}
}

func requestIDFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if id := first(md.Get(requestIDHeader)); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
