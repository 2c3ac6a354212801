// Package auth emite e valida os tokens de dispositivo. Não existe conceito
// de conta de usuário: o token só amarra um deviceId a uma assinatura ativa.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalido cobre token ausente de claims, expirado ou com assinatura
// que não bate com o secret.
var ErrTokenInvalido = errors.New("token inválido ou expirado")

// Validade do token de dispositivo, a mesma janela da assinatura.
const validadeToken = 30 * 24 * time.Hour

// DeviceTokenIssuer emite tokens JWT (HS256) para dispositivos.
type DeviceTokenIssuer struct {
	secret []byte
}

// NewDeviceTokenIssuer cria o emissor com o secret do .env.
func NewDeviceTokenIssuer(secret string) *DeviceTokenIssuer {
	return &DeviceTokenIssuer{secret: []byte(secret)}
}

// Issue gera um token para o dispositivo. Não exige login, apenas o deviceId.
func (i *DeviceTokenIssuer) Issue(deviceID string) (string, error) {
	agora := time.Now()
	claims := jwt.MapClaims{
		"deviceId":  deviceID,
		"type":      "device",
		"timestamp": agora.UnixMilli(),
		"exp":       agora.Add(validadeToken).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify valida o token e devolve o deviceId embutido nele.
func (i *DeviceTokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrTokenInvalido
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenInvalido
	}

	deviceID, ok := claims["deviceId"].(string)
	if !ok || deviceID == "" {
		return "", ErrTokenInvalido
	}

	return deviceID, nil
}
