package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/willjrcristo/go-pix-subscriptions/internal/payment"
	"github.com/willjrcristo/go-pix-subscriptions/internal/service"
)

// PaymentDispatcher é o que o handler de pagamento precisa do dispatcher.
type PaymentDispatcher interface {
	CreatePix(ctx context.Context, valorCentavos int64, deviceID string) (*payment.PixCharge, error)
	CreateCardIntent(ctx context.Context, valorCentavos int64, deviceID string) (*payment.CardIntent, error)
}

// PagamentoHandler lida com a geração de cobranças (cartão e PIX) e com o
// webhook da Stripe.
type PagamentoHandler struct {
	dispatcher PaymentDispatcher
	service    AssinaturaService
	dev        bool
}

// NewPagamentoHandler cria uma nova instância do PagamentoHandler.
func NewPagamentoHandler(d PaymentDispatcher, s AssinaturaService, dev bool) *PagamentoHandler {
	return &PagamentoHandler{
		dispatcher: d,
		service:    s,
		dev:        dev,
	}
}

type pagamentoRequest struct {
	Amount   int64  `json:"amount"`
	DeviceID string `json:"deviceId"`
}

// @Summary      Cria um Payment Intent para pagamento com cartão
// @Description  Retorna o client secret da Stripe para o app concluir o pagamento
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Param        pagamento  body      pagamentoRequest  true  "Valor em centavos e identificador do dispositivo"
// @Success      200        {object}  payment.CardIntent
// @Failure      400        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /pagamento [post]
func (h *PagamentoHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req pagamentoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	intent, err := h.dispatcher.CreateCardIntent(r.Context(), req.Amount, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrValorInvalido):
			respondWithError(w, http.StatusBadRequest, "Valor inválido")
		case errors.Is(err, payment.ErrConfiguracao):
			respondWithJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Stripe não configurado",
				"message": "Configure STRIPE_SECRET_KEY no arquivo .env",
			})
		default:
			h.respondErroPagamento(w, "Erro ao criar pagamento", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, intent)
}

// @Summary      Gera uma cobrança PIX
// @Description  Cria a cobrança no provedor configurado (ou no mock) e retorna o QR Code com o copia-e-cola
// @Tags         pagamentos
// @Accept       json
// @Produce      json
// @Param        pagamento  body      pagamentoRequest  true  "Valor em centavos e identificador do dispositivo"
// @Success      200        {object}  payment.PixCharge
// @Failure      400        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /pix [post]
func (h *PagamentoHandler) CreatePix(w http.ResponseWriter, r *http.Request) {
	var req pagamentoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	cobranca, err := h.dispatcher.CreatePix(r.Context(), req.Amount, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrValorInvalido):
			respondWithError(w, http.StatusBadRequest, "Valor inválido")
		case errors.Is(err, payment.ErrConfiguracao):
			respondWithJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Provedor PIX não configurado",
				"message": "Configure PIX_PROVIDER no arquivo .env",
			})
		default:
			h.respondErroPagamento(w, "Erro ao gerar pagamento PIX", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, cobranca)
}

// StripeWebhook recebe os eventos da Stripe.
// Configure em: https://dashboard.stripe.com/webhooks
func (h *PagamentoHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536) // Limite de 64KB
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("Erro ao ler o corpo do webhook", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Erro ao ler corpo da requisição")
		return
	}

	signature := r.Header.Get("Stripe-Signature")

	if err := h.service.HandleStripeWebhook(payload, signature); err != nil {
		if errors.Is(err, service.ErrWebhookStripe) {
			respondWithError(w, http.StatusBadRequest, "Falha na verificação da assinatura do webhook")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro interno ao processar webhook")
		}
		return
	}

	// 200 OK avisa a Stripe que o evento foi recebido.
	respondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *PagamentoHandler) respondErroPagamento(w http.ResponseWriter, message string, err error) {
	slog.Error(message, "error", err)
	body := map[string]any{"error": message}
	if h.dev {
		body["details"] = err.Error()
	}
	respondWithJSON(w, http.StatusInternalServerError, body)
}
