package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/willjrcristo/go-pix-subscriptions/internal/service"
)

// Para facilitar os testes, o handler depende desta interface, não da
// implementação concreta do serviço.
type AssinaturaService interface {
	Activate(ctx context.Context, req service.AtivacaoRequest) (*service.AtivacaoResult, error)
	Validate(ctx context.Context, deviceID string) (*service.ValidacaoResult, error)
	GetInfo(ctx context.Context, deviceID string) (*service.InfoResult, error)
	Cancel(ctx context.Context, deviceID string) error
	HandleStripeWebhook(payload []byte, signature string) error
}

// AssinaturaHandler lida com as requisições HTTP das rotas de /subscription.
type AssinaturaHandler struct {
	service AssinaturaService
	dev     bool
}

// NewAssinaturaHandler cria uma nova instância do AssinaturaHandler.
// dev controla se os detalhes de erro aparecem nas respostas 500.
func NewAssinaturaHandler(s AssinaturaService, dev bool) *AssinaturaHandler {
	return &AssinaturaHandler{
		service: s,
		dev:     dev,
	}
}

// Routes define e retorna todas as rotas deste handler. Os limitadores de
// requisição e a autenticação opcional chegam prontos do main: ativação e
// validação têm tetos próprios, info e cancel aceitam token quando presente.
func (h *AssinaturaHandler) Routes(optionalAuth, limitAtivacao, limitValidacao func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(limitAtivacao).Post("/activate", h.Activate)   // POST /subscription/activate
	r.With(limitValidacao).Post("/validate", h.Validate)  // POST /subscription/validate
	r.With(optionalAuth).Get("/info", h.Info)             // GET  /subscription/info
	r.With(optionalAuth).Post("/cancel", h.Cancel)        // POST /subscription/cancel

	return r
}

type deviceIDRequest struct {
	DeviceID string `json:"deviceId"`
}

// @Summary      Ativa a assinatura de um dispositivo
// @Description  Registra o pagamento confirmado e abre uma vigência de 30 dias para o dispositivo
// @Tags         assinaturas
// @Accept       json
// @Produce      json
// @Param        ativacao  body      service.AtivacaoRequest  true  "Dados do pagamento confirmado"
// @Success      201       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Failure      503       {object}  map[string]string
// @Router       /subscription/activate [post]
func (h *AssinaturaHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req service.AtivacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	result, err := h.service.Activate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDadosIncompletos):
			respondWithJSON(w, http.StatusBadRequest, map[string]any{
				"error":    "Dados incompletos",
				"required": []string{"deviceId", "transactionId", "paymentMethod", "amount"},
			})
		case errors.Is(err, service.ErrBancoIndisponivel):
			respondServicoOffline(w)
		default:
			h.respondErroInterno(w, "Erro ao processar assinatura", err)
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"message":      "Assinatura ativada com sucesso",
		"subscription": result.Assinatura,
		"token":        result.Token,
	})
}

// @Summary      Valida a vigência da assinatura
// @Description  Checagem permissiva: dispositivo sem assinatura responde status "free" sem erro
// @Tags         assinaturas
// @Accept       json
// @Produce      json
// @Param        consulta  body      deviceIDRequest  true  "Identificador do dispositivo"
// @Success      200       {object}  service.ValidacaoResult
// @Failure      400       {object}  map[string]string
// @Failure      503       {object}  map[string]string
// @Router       /subscription/validate [post]
func (h *AssinaturaHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req deviceIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		respondWithError(w, http.StatusBadRequest, "Device ID não fornecido")
		return
	}

	result, err := h.service.Validate(r.Context(), req.DeviceID)
	if err != nil {
		if errors.Is(err, service.ErrBancoIndisponivel) {
			respondServicoOffline(w)
			return
		}
		h.respondErroInterno(w, "Erro ao validar assinatura", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// @Summary      Consulta informações da assinatura
// @Description  Retorna o resumo completo; dispositivo sem assinatura é 404
// @Tags         assinaturas
// @Produce      json
// @Param        deviceId  query     string  true  "Identificador do dispositivo"
// @Success      200       {object}  service.InfoResult
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /subscription/info [get]
func (h *AssinaturaHandler) Info(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		respondWithError(w, http.StatusBadRequest, "Device ID não fornecido")
		return
	}

	result, err := h.service.GetInfo(r.Context(), deviceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssinaturaNaoEncontrada):
			respondWithJSON(w, http.StatusNotFound, map[string]any{
				"error":    "Assinatura não encontrada",
				"isActive": false,
			})
		case errors.Is(err, service.ErrBancoIndisponivel):
			respondServicoOffline(w)
		default:
			h.respondErroInterno(w, "Erro ao obter informações da assinatura", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// @Summary      Cancela a assinatura de um dispositivo
// @Description  Marca a assinatura como cancelada; cancelar de novo é idempotente
// @Tags         assinaturas
// @Accept       json
// @Produce      json
// @Param        consulta  body      deviceIDRequest  true  "Identificador do dispositivo"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /subscription/cancel [post]
func (h *AssinaturaHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req deviceIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		respondWithError(w, http.StatusBadRequest, "Device ID não fornecido")
		return
	}

	err := h.service.Cancel(r.Context(), req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssinaturaNaoEncontrada):
			respondWithError(w, http.StatusNotFound, "Assinatura não encontrada")
		case errors.Is(err, service.ErrBancoIndisponivel):
			respondServicoOffline(w)
		default:
			h.respondErroInterno(w, "Erro ao cancelar assinatura", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Assinatura cancelada com sucesso",
	})
}

// --- FUNÇÕES AUXILIARES ---

// respondErroInterno devolve 500; o detalhe do erro só sai em desenvolvimento.
func (h *AssinaturaHandler) respondErroInterno(w http.ResponseWriter, message string, err error) {
	slog.Error(message, "error", err)
	body := map[string]any{"error": message}
	if h.dev {
		body["details"] = err.Error()
	}
	respondWithJSON(w, http.StatusInternalServerError, body)
}

// respondServicoOffline é a resposta única de banco indisponível: os
// endpoints recusam em vez de fingir sucesso sem persistência.
func respondServicoOffline(w http.ResponseWriter) {
	respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error":   "Serviço temporariamente indisponível",
		"message": "Banco de dados offline. Tente novamente em alguns minutos.",
		"code":    "DB_OFFLINE",
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	slog.Error("API Error", "code", code, "message", message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
