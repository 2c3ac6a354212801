package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MercadoPago cria cobranças PIX pela API de payments do Mercado Pago.
// É o provedor mais simples: uma única chamada já devolve o QR Code.
// https://www.mercadopago.com.br/developers
type MercadoPago struct {
	accessToken string
	baseURL     string
	http        *http.Client
}

// NewMercadoPago cria o adapter do Mercado Pago.
func NewMercadoPago(accessToken string) *MercadoPago {
	return &MercadoPago{
		accessToken: accessToken,
		baseURL:     "https://api.mercadopago.com",
		http:        novoHTTPClient(),
	}
}

func (p *MercadoPago) Nome() string {
	return "mercadopago"
}

func (p *MercadoPago) CreatePix(ctx context.Context, valorCentavos int64, deviceID string) (*PixCharge, error) {
	if p.accessToken == "" {
		return nil, fmt.Errorf("%w: MERCADOPAGO_ACCESS_TOKEN não configurado no .env", ErrConfiguracao)
	}

	corpo, err := json.Marshal(map[string]any{
		"transaction_amount": float64(valorCentavos) / 100, // centavos -> reais
		"description":        descricaoProduto,
		"payment_method_id":  "pix",
		"external_reference": deviceID,
		"payer": map[string]string{
			"email": "cliente@email.com",
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/payments", bytes.NewReader(corpo))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: mercadopago: %v", ErrProvider, err)
	}

	var pagamento struct {
		ID                 json.Number `json:"id"`
		DateOfExpiration   string      `json:"date_of_expiration"`
		PointOfInteraction struct {
			TransactionData struct {
				QRCodeBase64 string `json:"qr_code_base64"`
				QRCode       string `json:"qr_code"`
			} `json:"transaction_data"`
		} `json:"point_of_interaction"`
	}
	if err := decodeResposta("mercadopago", resp, &pagamento); err != nil {
		return nil, err
	}

	if pagamento.PointOfInteraction.TransactionData.QRCode == "" {
		return nil, fmt.Errorf("%w: mercadopago não devolveu o código PIX", ErrProvider)
	}

	expiresAt, err := time.Parse(time.RFC3339, pagamento.DateOfExpiration)
	if err != nil {
		expiresAt = time.Now().Add(time.Hour)
	}

	return &PixCharge{
		QRImage:          pagamento.PointOfInteraction.TransactionData.QRCodeBase64,
		CopyPastePayload: pagamento.PointOfInteraction.TransactionData.QRCode,
		TransactionID:    pagamento.ID.String(),
		ExpiresAt:        expiresAt,
	}, nil
}
