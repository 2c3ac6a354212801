package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey string

const (
	ctxDeviceID   ctxKey = "deviceId"
	ctxTokenValid ctxKey = "tokenValid"
)

// DeviceIDFromContext devolve o deviceId validado pelo middleware, se houver.
func DeviceIDFromContext(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(ctxDeviceID).(string)
	return deviceID, ok
}

// OptionalAuth valida o token quando presente, mas nunca bloqueia a
// requisição. Token ausente ou inválido apenas deixa o contexto sem deviceId.
func (i *DeviceTokenIssuer) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extrairToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		if deviceID, err := i.Verify(token); err == nil {
			ctx = context.WithValue(ctx, ctxDeviceID, deviceID)
			ctx = context.WithValue(ctx, ctxTokenValid, true)
		} else {
			// Token inválido não bloqueia, só fica marcado no contexto.
			ctx = context.WithValue(ctx, ctxTokenValid, false)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth bloqueia a requisição sem um token de dispositivo válido.
func (i *DeviceTokenIssuer) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extrairToken(r)
		if token == "" {
			respondAuthError(w, "Token de autenticação não fornecido", "NO_TOKEN")
			return
		}

		deviceID, err := i.Verify(token)
		if err != nil {
			respondAuthError(w, "Token inválido ou expirado", "INVALID_TOKEN")
			return
		}

		ctx := context.WithValue(r.Context(), ctxDeviceID, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extrairToken lê o token do header Authorization (formato "Bearer <token>").
func extrairToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func respondAuthError(w http.ResponseWriter, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
