package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/willjrcristo/go-pix-subscriptions/internal/domain"
	"github.com/willjrcristo/go-pix-subscriptions/internal/repository"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Erros de negócio do ciclo de vida da assinatura.
var (
	ErrAssinaturaNaoEncontrada = errors.New("assinatura não encontrada")
	ErrDadosIncompletos        = errors.New("dados incompletos")
	ErrBancoIndisponivel       = errors.New("banco de dados offline")
	ErrWebhookStripe           = errors.New("erro ao processar webhook da stripe")
)

// Janela de vigência concedida a cada (re)ativação.
const diasVigencia = 30

// TokenIssuer é o emissor de tokens de dispositivo visto pelo serviço.
type TokenIssuer interface {
	Issue(deviceID string) (string, error)
}

// AtivacaoRequest carrega os dados de uma ativação de assinatura.
// DeviceID, TransactionID, PaymentMethod e Amount são obrigatórios.
type AtivacaoRequest struct {
	DeviceID      string                 `json:"deviceId"`
	TransactionID string                 `json:"transactionId"`
	PaymentMethod domain.MetodoPagamento `json:"paymentMethod"`
	Amount        int64                  `json:"amount"`
	DeviceInfo    *domain.DeviceInfo     `json:"deviceInfo,omitempty"`
}

// ResumoAssinatura é o resumo devolvido ao cliente após ativação/renovação.
// O deviceId já sai mascarado.
type ResumoAssinatura struct {
	DeviceID      string                  `json:"deviceId"`
	Status        domain.StatusAssinatura `json:"status"`
	ExpiryDate    time.Time               `json:"expiryDate"`
	DaysRemaining int                     `json:"daysRemaining"`
}

// AtivacaoResult junta o resumo da assinatura e o token emitido.
type AtivacaoResult struct {
	Assinatura ResumoAssinatura
	Token      string
}

// ValidacaoResult é a resposta da checagem permissiva de vigência.
// Dispositivo sem assinatura não é erro: vem como status "free".
type ValidacaoResult struct {
	IsActive      bool       `json:"isActive"`
	Status        string     `json:"status"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	DaysRemaining int        `json:"daysRemaining"`
	Message       string     `json:"message,omitempty"`
}

// InfoResult é o resumo completo devolvido pela consulta de informações.
type InfoResult struct {
	IsActive      bool                    `json:"isActive"`
	Status        domain.StatusAssinatura `json:"status"`
	StartDate     time.Time               `json:"startDate"`
	ExpiryDate    time.Time               `json:"expiryDate"`
	DaysRemaining int                     `json:"daysRemaining"`
	PaymentMethod domain.MetodoPagamento  `json:"paymentMethod"`
	CreatedAt     time.Time               `json:"createdAt"`
}

// AssinaturaService encapsula a máquina de estados da assinatura:
// pending -> active -> expired/cancelled, com reativação sempre permitida.
type AssinaturaService struct {
	repo                repository.AssinaturaRepository
	issuer              TokenIssuer
	stripeWebhookSecret string
}

// NewAssinaturaService cria uma nova instância do AssinaturaService.
func NewAssinaturaService(repo repository.AssinaturaRepository, issuer TokenIssuer, stripeWebhookSecret string) *AssinaturaService {
	return &AssinaturaService{
		repo:                repo,
		issuer:              issuer,
		stripeWebhookSecret: stripeWebhookSecret,
	}
}

// Activate ativa (ou reativa) a assinatura do dispositivo após um pagamento
// confirmado. Sempre sobrescreve transactionId, método, valor e abre uma nova
// janela de 30 dias. Reativar um registro expirado ou cancelado tem o mesmo
// efeito da primeira ativação.
func (s *AssinaturaService) Activate(ctx context.Context, req AtivacaoRequest) (*AtivacaoResult, error) {
	if err := s.checarBanco(ctx); err != nil {
		return nil, err
	}

	if req.DeviceID == "" || req.TransactionID == "" || !req.PaymentMethod.Valido() || req.Amount <= 0 {
		return nil, ErrDadosIncompletos
	}

	existente, err := s.repo.FindByDevice(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}

	agora := time.Now()
	assinatura := domain.Assinatura{
		DeviceID:      req.DeviceID,
		TransactionID: req.TransactionID,
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
		Status:        domain.StatusAtiva,
		StartDate:     agora,
		ExpiryDate:    agora.AddDate(0, 0, diasVigencia),
		DeviceInfo:    req.DeviceInfo,
		CreatedAt:     agora,
		UpdatedAt:     agora,
	}
	if existente != nil {
		// Registro antigo é sobrescrito, mas a data de criação permanece.
		assinatura.CreatedAt = existente.CreatedAt
	}

	salva, err := s.repo.Upsert(ctx, assinatura)
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(req.DeviceID)
	if err != nil {
		return nil, err
	}

	slog.Info("Assinatura ativada",
		"device", domain.MascaraDeviceID(req.DeviceID),
		"metodo", req.PaymentMethod,
		"expira_em", salva.ExpiryDate)

	return &AtivacaoResult{
		Assinatura: ResumoAssinatura{
			DeviceID:      domain.MascaraDeviceID(salva.DeviceID),
			Status:        salva.Status,
			ExpiryDate:    salva.ExpiryDate,
			DaysRemaining: salva.DiasRestantes(agora),
		},
		Token: token,
	}, nil
}

// Validate é a checagem permissiva de vigência. Dispositivo nunca visto
// responde {isActive: false, status: "free"} sem erro. A correção preguiçosa
// de expiração roda antes do cálculo.
func (s *AssinaturaService) Validate(ctx context.Context, deviceID string) (*ValidacaoResult, error) {
	if err := s.checarBanco(ctx); err != nil {
		return nil, err
	}

	assinatura, err := s.carregarComCorrecao(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if assinatura == nil {
		return &ValidacaoResult{
			IsActive: false,
			Status:   "free",
			Message:  "Nenhuma assinatura encontrada",
		}, nil
	}

	agora := time.Now()
	return &ValidacaoResult{
		IsActive:      assinatura.EstaAtiva(agora),
		Status:        string(assinatura.Status),
		ExpiryDate:    &assinatura.ExpiryDate,
		DaysRemaining: assinatura.DiasRestantes(agora),
	}, nil
}

// GetInfo devolve o resumo completo da assinatura. Ao contrário de Validate,
// ausência aqui é um erro explícito de não encontrado. Validate responde uma
// pergunta ("pode usar?"), GetInfo busca um registro.
func (s *AssinaturaService) GetInfo(ctx context.Context, deviceID string) (*InfoResult, error) {
	if err := s.checarBanco(ctx); err != nil {
		return nil, err
	}

	assinatura, err := s.carregarComCorrecao(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if assinatura == nil {
		return nil, ErrAssinaturaNaoEncontrada
	}

	agora := time.Now()
	return &InfoResult{
		IsActive:      assinatura.EstaAtiva(agora),
		Status:        assinatura.Status,
		StartDate:     assinatura.StartDate,
		ExpiryDate:    assinatura.ExpiryDate,
		DaysRemaining: assinatura.DiasRestantes(agora),
		PaymentMethod: assinatura.PaymentMethod,
		CreatedAt:     assinatura.CreatedAt,
	}, nil
}

// Cancel marca a assinatura como cancelada. Cancelar de novo é idempotente:
// mesmo resultado, sem erro. O registro nunca é removido fisicamente.
func (s *AssinaturaService) Cancel(ctx context.Context, deviceID string) error {
	if err := s.checarBanco(ctx); err != nil {
		return err
	}

	assinatura, err := s.repo.FindByDevice(ctx, deviceID)
	if err != nil {
		return err
	}
	if assinatura == nil {
		return ErrAssinaturaNaoEncontrada
	}

	if err := s.repo.UpdateStatus(ctx, deviceID, domain.StatusCancelada); err != nil {
		return err
	}

	slog.Info("Assinatura cancelada", "device", domain.MascaraDeviceID(deviceID))
	return nil
}

// Renew estende a vigência em meses a partir da expiração atual e reativa o
// registro. Capacidade do ciclo de vida usada pelo caminho de webhook de
// cobrança; não há endpoint público montado para ela.
func (s *AssinaturaService) Renew(ctx context.Context, deviceID string, meses int) (*ResumoAssinatura, error) {
	if err := s.checarBanco(ctx); err != nil {
		return nil, err
	}

	assinatura, err := s.repo.FindByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if assinatura == nil {
		return nil, ErrAssinaturaNaoEncontrada
	}

	if meses <= 0 {
		meses = 1
	}

	agora := time.Now()
	assinatura.ExpiryDate = assinatura.ExpiryDate.AddDate(0, meses, 0)
	assinatura.Status = domain.StatusAtiva
	assinatura.UpdatedAt = agora

	salva, err := s.repo.Upsert(ctx, *assinatura)
	if err != nil {
		return nil, err
	}

	return &ResumoAssinatura{
		DeviceID:      domain.MascaraDeviceID(salva.DeviceID),
		Status:        salva.Status,
		ExpiryDate:    salva.ExpiryDate,
		DaysRemaining: salva.DiasRestantes(agora),
	}, nil
}

// HandleStripeWebhook processa os eventos recebidos da Stripe.
// payment_intent.succeeded ativa a assinatura do dispositivo gravado nos
// metadados do intent. É o único caminho de reconciliação por evento.
func (s *AssinaturaService) HandleStripeWebhook(payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.stripeWebhookSecret)
	if err != nil {
		slog.Error("Erro ao verificar a assinatura do webhook", "error", err)
		return ErrWebhookStripe
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("%w: %v", ErrWebhookStripe, err)
		}

		deviceID := pi.Metadata["deviceId"]
		if deviceID == "" || deviceID == "unknown" {
			slog.Warn("Pagamento confirmado sem deviceId nos metadados", "payment_intent", pi.ID)
			return nil
		}

		slog.Info("Pagamento confirmado via webhook",
			"payment_intent", pi.ID,
			"device", domain.MascaraDeviceID(deviceID))

		_, err := s.Activate(context.Background(), AtivacaoRequest{
			DeviceID:      deviceID,
			TransactionID: pi.ID,
			PaymentMethod: domain.MetodoCartao,
			Amount:        pi.Amount,
		})
		return err

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("%w: %v", ErrWebhookStripe, err)
		}
		slog.Warn("Pagamento falhou", "payment_intent", pi.ID)

	default:
		slog.Info("Webhook da Stripe recebido, mas não tratado", "event_type", event.Type)
	}

	return nil
}

// carregarComCorrecao busca a assinatura e aplica a correção preguiçosa:
// registro "active" com expiração vencida vira "expired" como efeito
// colateral da leitura. A gravação condicional acontece no banco em um único
// comando, então leitores concorrentes nunca veem estado intermediário.
func (s *AssinaturaService) carregarComCorrecao(ctx context.Context, deviceID string) (*domain.Assinatura, error) {
	assinatura, err := s.repo.FindByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if assinatura == nil {
		return nil, nil
	}

	agora := time.Now()
	if assinatura.Status == domain.StatusAtiva && !assinatura.ExpiryDate.After(agora) {
		if _, err := s.repo.MarkExpired(ctx, deviceID, agora); err != nil {
			return nil, err
		}
		assinatura.Status = domain.StatusExpirada
	}

	return assinatura, nil
}

// checarBanco transforma banco inacessível em ErrBancoIndisponivel, para os
// endpoints recusarem com um sinal claro de serviço offline em vez de seguir
// sem persistência.
func (s *AssinaturaService) checarBanco(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrBancoIndisponivel, err)
	}
	return nil
}
