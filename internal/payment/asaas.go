package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Asaas cria cobranças PIX pela API do Asaas em dois passos: primeiro a
// cobrança, depois o QR Code dela. Os dois passos formam UMA operação lógica:
// cobrança criada com QR falhando é erro fatal da chamada, nunca um resultado
// parcial. https://www.asaas.com/
type Asaas struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewAsaas cria o adapter do Asaas.
func NewAsaas(apiKey string) *Asaas {
	return &Asaas{
		apiKey:  apiKey,
		baseURL: "https://www.asaas.com",
		http:    novoHTTPClient(),
	}
}

func (p *Asaas) Nome() string {
	return "asaas"
}

func (p *Asaas) CreatePix(ctx context.Context, valorCentavos int64, deviceID string) (*PixCharge, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: ASAAS_API_KEY não configurado no .env", ErrConfiguracao)
	}

	// Passo 1: cria a cobrança.
	corpo, err := json.Marshal(map[string]any{
		"customer":          "cus_000000000000",
		"billingType":       "PIX",
		"value":             float64(valorCentavos) / 100,
		"dueDate":           time.Now().Format("2006-01-02"),
		"description":       descricaoProduto,
		"externalReference": deviceID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/v3/payments", bytes.NewReader(corpo))
	if err != nil {
		return nil, err
	}
	req.Header.Set("access_token", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: asaas: %v", ErrProvider, err)
	}

	var cobranca struct {
		ID      string `json:"id"`
		DueDate string `json:"dueDate"`
	}
	if err := decodeResposta("asaas", resp, &cobranca); err != nil {
		return nil, err
	}

	// Passo 2: busca o QR Code da cobrança recém-criada.
	qrReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/api/v3/payments/"+cobranca.ID+"/pixQrCode", nil)
	if err != nil {
		return nil, err
	}
	qrReq.Header.Set("access_token", p.apiKey)

	qrResp, err := p.http.Do(qrReq)
	if err != nil {
		return nil, fmt.Errorf("%w: asaas: falha ao buscar QR Code: %v", ErrProvider, err)
	}

	var qr struct {
		EncodedImage string `json:"encodedImage"`
		Payload      string `json:"payload"`
	}
	if err := decodeResposta("asaas", qrResp, &qr); err != nil {
		return nil, err
	}

	expiresAt, err := time.Parse("2006-01-02", cobranca.DueDate)
	if err != nil {
		expiresAt = time.Now().Add(24 * time.Hour)
	}

	return &PixCharge{
		QRImage:          qr.EncodedImage,
		CopyPastePayload: qr.Payload,
		TransactionID:    cobranca.ID,
		ExpiresAt:        expiresAt,
	}, nil
}
