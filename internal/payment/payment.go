// Package payment concentra a integração com os provedores de pagamento.
// Cada provedor vive em seu próprio arquivo e implementa um dos dois formatos
// de operação: cobrança PIX ou Payment Intent de cartão. O Dispatcher escolhe
// o provedor PIX pela configuração e normaliza os erros, para que as camadas
// de cima nunca vejam detalhes de transporte de nenhum provedor.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/willjrcristo/go-pix-subscriptions/internal/config"
)

// Descrição que acompanha toda cobrança, visível na fatura do cliente.
const descricaoProduto = "Assinatura Mensal - Mais Vida em Nossas Vidas"

// Erros de negócio da camada de pagamento.
var (
	ErrValorInvalido = errors.New("valor inválido")
	ErrConfiguracao  = errors.New("provedor de pagamento não configurado")
	ErrProvider      = errors.New("erro no provedor de pagamento")
)

// PixCharge é o artefato efêmero devolvido ao cliente para concluir um
// pagamento PIX fora da API. Nunca é persistido.
type PixCharge struct {
	QRImage          string    `json:"qrImage"`
	CopyPastePayload string    `json:"copyPastePayload"`
	TransactionID    string    `json:"transactionId"`
	ExpiresAt        time.Time `json:"expiresAt"`
	IsMock           bool      `json:"isMock,omitempty"`
}

// CardIntent é o artefato devolvido para um pagamento com cartão.
type CardIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// PixProvider é o contrato comum dos provedores PIX. Cada provedor cuida da
// própria autenticação e do próprio padrão de chamadas; criar a cobrança e
// obter o QR Code são sempre uma operação lógica única: se qualquer passo
// falhar, a chamada inteira falha.
type PixProvider interface {
	CreatePix(ctx context.Context, valorCentavos int64, deviceID string) (*PixCharge, error)
	Nome() string
}

// Dispatcher seleciona o provedor a cada chamada a partir da configuração.
// Não guarda estado mutável: é seguro para uso concorrente e a chamada pode
// ser repetida pelo cliente sem efeito colateral aqui.
type Dispatcher struct {
	cfg *config.Config
}

// NewDispatcher cria o dispatcher de pagamentos.
func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{cfg: cfg}
}

// CreatePix valida o valor, resolve o provedor PIX configurado e gera a
// cobrança. Sem provedor configurado, cai no mock (a menos que o fallback
// esteja desabilitado via PIX_ALLOW_MOCK_FALLBACK=false).
func (d *Dispatcher) CreatePix(ctx context.Context, valorCentavos int64, deviceID string) (*PixCharge, error) {
	if valorCentavos <= 0 {
		return nil, ErrValorInvalido
	}

	provider, err := d.resolvePix()
	if err != nil {
		return nil, err
	}

	slog.Info("Gerando pagamento PIX",
		"provider", provider.Nome(),
		"valor_centavos", valorCentavos)

	cobranca, err := provider.CreatePix(ctx, valorCentavos, deviceID)
	if err != nil {
		return nil, normalizaErro(provider.Nome(), err)
	}

	if cobranca.IsMock {
		slog.Warn("PIX gerado em modo MOCK - configure um provedor real no .env")
	}

	return cobranca, nil
}

// CreateCardIntent cria um Payment Intent de cartão via Stripe.
// Cartão não tem modo mock: sem STRIPE_SECRET_KEY a chamada falha.
func (d *Dispatcher) CreateCardIntent(ctx context.Context, valorCentavos int64, deviceID string) (*CardIntent, error) {
	if valorCentavos <= 0 {
		return nil, ErrValorInvalido
	}

	adapter := NewStripeCard(d.cfg.StripeSecretKey)

	slog.Info("Criando Payment Intent", "valor_centavos", valorCentavos)

	intent, err := adapter.CreateIntent(ctx, valorCentavos, deviceID)
	if err != nil {
		return nil, normalizaErro("stripe", err)
	}

	return intent, nil
}

// resolvePix é uma função pura da configuração: mesmo config, mesmo provedor.
func (d *Dispatcher) resolvePix() (PixProvider, error) {
	switch d.cfg.PixProvider {
	case "mercadopago":
		return NewMercadoPago(d.cfg.MercadoPagoAccessToken), nil
	case "asaas":
		return NewAsaas(d.cfg.AsaasAPIKey), nil
	case "efi":
		return NewEfi(d.cfg.EfiClientID, d.cfg.EfiClientSecret, d.cfg.PixKey), nil
	case "mock":
		return d.mock(), nil
	default:
		// Sem provedor (ou nome desconhecido): o mock mantém a API funcional
		// com zero configuração externa, a menos que o operador desabilite.
		if !d.cfg.PixAllowMockFallback {
			return nil, fmt.Errorf("%w: defina PIX_PROVIDER no .env", ErrConfiguracao)
		}
		return d.mock(), nil
	}
}

func (d *Dispatcher) mock() PixProvider {
	return NewMock(d.cfg.PixKey, d.cfg.PixReceiverName, d.cfg.PixReceiverCity)
}

// normalizaErro garante que nenhum erro cru de transporte vaze desta camada.
func normalizaErro(provider string, err error) error {
	if errors.Is(err, ErrConfiguracao) || errors.Is(err, ErrProvider) || errors.Is(err, ErrValorInvalido) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrProvider, provider, err)
}

// novoHTTPClient devolve o cliente usado nas chamadas aos provedores.
// O timeout transforma provedor pendurado em ErrProvider em vez de deixar a
// requisição presa.
func novoHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// decodeResposta valida o status HTTP e decodifica o corpo JSON da resposta
// de um provedor. Falhas carregam o nome do provedor e o status para
// diagnóstico.
func decodeResposta(provider string, resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		corpo, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s retornou status %d: %s", ErrProvider, provider, resp.StatusCode, corpo)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s devolveu resposta inválida: %v", ErrProvider, provider, err)
	}

	return nil
}
