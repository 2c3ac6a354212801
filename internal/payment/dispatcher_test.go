package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/willjrcristo/go-pix-subscriptions/internal/config"
)

func configTeste() *config.Config {
	return &config.Config{
		PixAllowMockFallback: true,
		PixKey:               "seu-email@exemplo.com.br",
		PixReceiverName:      "Mais Vida App",
		PixReceiverCity:      "Sao Paulo",
	}
}

func TestDispatcher_CreatePix(t *testing.T) {
	t.Run("erro - valor menor ou igual a zero é sempre inválido", func(t *testing.T) {
		d := NewDispatcher(configTeste())

		for _, valor := range []int64{0, -1, -499} {
			_, err := d.CreatePix(context.Background(), valor, "device-1")
			assert.ErrorIs(t, err, ErrValorInvalido)
		}
	})

	t.Run("sem provedor configurado cai no mock com payload PIX bem formado", func(t *testing.T) {
		d := NewDispatcher(configTeste())

		cobranca, err := d.CreatePix(context.Background(), 499, "device-abc-123")
		assert.NoError(t, err)
		assert.True(t, cobranca.IsMock)

		// Formato BR Code: começa com os campos EMV e carrega a chave PIX.
		assert.True(t, strings.HasPrefix(cobranca.CopyPastePayload, "000201"))
		assert.Contains(t, cobranca.CopyPastePayload, "br.gov.bcb.pix")
		assert.Contains(t, cobranca.CopyPastePayload, "seu-email@exemplo.com.br")
		assert.Contains(t, cobranca.CopyPastePayload, "4.99")

		assert.True(t, strings.HasPrefix(cobranca.TransactionID, "mock_"))
		// O deviceId nunca aparece cru no id da transação.
		assert.NotContains(t, cobranca.TransactionID, "device-abc-123")

		assert.True(t, strings.HasPrefix(cobranca.QRImage, "data:image/png;base64,"))
	})

	t.Run("provedor mock explícito também funciona", func(t *testing.T) {
		cfg := configTeste()
		cfg.PixProvider = "mock"
		d := NewDispatcher(cfg)

		cobranca, err := d.CreatePix(context.Background(), 1990, "device-1")
		assert.NoError(t, err)
		assert.True(t, cobranca.IsMock)
	})

	t.Run("fallback desabilitado transforma falta de provedor em erro de configuração", func(t *testing.T) {
		cfg := configTeste()
		cfg.PixAllowMockFallback = false
		d := NewDispatcher(cfg)

		_, err := d.CreatePix(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrConfiguracao)
	})

	t.Run("provedor real sem credencial falha antes de qualquer chamada de rede", func(t *testing.T) {
		cfg := configTeste()
		cfg.PixProvider = "mercadopago" // MERCADOPAGO_ACCESS_TOKEN vazio
		d := NewDispatcher(cfg)

		_, err := d.CreatePix(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrConfiguracao)
	})
}

func TestDispatcher_CreateCardIntent(t *testing.T) {
	t.Run("erro - valor inválido", func(t *testing.T) {
		d := NewDispatcher(configTeste())

		_, err := d.CreateCardIntent(context.Background(), 0, "device-1")
		assert.ErrorIs(t, err, ErrValorInvalido)
	})

	t.Run("erro - cartão não tem mock: sem chave da Stripe é configuração", func(t *testing.T) {
		d := NewDispatcher(configTeste())

		_, err := d.CreateCardIntent(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrConfiguracao)
	})
}

func TestMock_CreatePix(t *testing.T) {
	t.Run("ids de transação distinguem dispositivos pelo hash", func(t *testing.T) {
		m := NewMock("chave@pix.br", "Loja", "Sao Paulo")

		a, err := m.CreatePix(context.Background(), 499, "device-aaa")
		assert.NoError(t, err)
		b, err := m.CreatePix(context.Background(), 499, "device-bbb")
		assert.NoError(t, err)

		sufixoA := a.TransactionID[strings.LastIndex(a.TransactionID, "_")+1:]
		sufixoB := b.TransactionID[strings.LastIndex(b.TransactionID, "_")+1:]
		assert.NotEqual(t, sufixoA, sufixoB)
	})

	t.Run("cobrança expira em uma hora", func(t *testing.T) {
		m := NewMock("chave@pix.br", "Loja", "Sao Paulo")

		cobranca, err := m.CreatePix(context.Background(), 499, "device-1")
		assert.NoError(t, err)
		assert.False(t, cobranca.ExpiresAt.IsZero())
	})
}
