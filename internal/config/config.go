package config

import "os"

// Config concentra toda a configuração vinda do ambiente.
// As variáveis são lidas uma única vez no boot; nada aqui é mutável depois.
type Config struct {
	Port         string
	DatabasePath string
	AppEnv       string
	CORSOrigin   string

	// Secret usado para assinar os tokens de dispositivo.
	JWTSecret string

	// Provedor PIX configurado: "mercadopago", "asaas", "efi" ou "mock".
	// Vazio ou desconhecido cai no mock quando PixAllowMockFallback permite.
	PixProvider          string
	PixAllowMockFallback bool

	// Dados do recebedor usados pelo provedor mock para montar o copia-e-cola.
	PixKey          string
	PixReceiverName string
	PixReceiverCity string

	StripeSecretKey     string
	StripeWebhookSecret string

	MercadoPagoAccessToken string

	AsaasAPIKey string

	EfiClientID     string
	EfiClientSecret string
}

// Load monta a configuração a partir das variáveis de ambiente.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./subscriptions.db"),
		AppEnv:       getEnv("APP_ENV", "development"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "*"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		PixProvider:          getEnv("PIX_PROVIDER", ""),
		PixAllowMockFallback: getEnv("PIX_ALLOW_MOCK_FALLBACK", "true") != "false",

		PixKey:          getEnv("PIX_KEY", "seu-email@exemplo.com.br"),
		PixReceiverName: getEnv("PIX_RECEIVER_NAME", "Mais Vida App"),
		PixReceiverCity: getEnv("PIX_RECEIVER_CITY", "Sao Paulo"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		MercadoPagoAccessToken: getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),

		AsaasAPIKey: getEnv("ASAAS_API_KEY", ""),

		EfiClientID:     getEnv("EFI_CLIENT_ID", ""),
		EfiClientSecret: getEnv("EFI_CLIENT_SECRET", ""),
	}
}

// IsDevelopment indica se detalhes de erro podem aparecer nas respostas HTTP.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// getEnv busca uma variável de ambiente ou devolve o valor padrão.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
