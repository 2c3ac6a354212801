package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// Efi (antiga Gerencianet) cria cobranças pela API PIX do Banco Central.
// O fluxo tem três passos: token OAuth por client credentials, criação da
// cobrança (PUT /v2/cob/{txid}) e busca do QR Code pela location. Qualquer
// passo falhando derruba a chamada inteira. https://sejaefi.com.br/
type Efi struct {
	clientID     string
	clientSecret string
	pixKey       string
	baseURL      string
	http         *http.Client
}

// NewEfi cria o adapter da Efi.
func NewEfi(clientID, clientSecret, pixKey string) *Efi {
	return &Efi{
		clientID:     clientID,
		clientSecret: clientSecret,
		pixKey:       pixKey,
		baseURL:      "https://api-pix.gerencianet.com.br",
		http:         novoHTTPClient(),
	}
}

func (p *Efi) Nome() string {
	return "efi"
}

func (p *Efi) CreatePix(ctx context.Context, valorCentavos int64, deviceID string) (*PixCharge, error) {
	if p.clientID == "" || p.clientSecret == "" {
		return nil, fmt.Errorf("%w: EFI_CLIENT_ID ou EFI_CLIENT_SECRET não configurado no .env", ErrConfiguracao)
	}

	token, err := p.autenticar(ctx)
	if err != nil {
		return nil, err
	}

	// txid único por cobrança, derivado do relógio.
	txid := fmt.Sprintf("%d%03d", time.Now().UnixMilli(), rand.IntN(1000))

	corpo, err := json.Marshal(map[string]any{
		"calendario": map[string]any{
			"expiracao": 3600,
		},
		"devedor": map[string]string{
			"nome": "Cliente",
		},
		"valor": map[string]string{
			"original": fmt.Sprintf("%.2f", float64(valorCentavos)/100),
		},
		"chave":              p.pixKey,
		"solicitacaoPagador": descricaoProduto,
		"infoAdicionais": []map[string]string{
			{"nome": "Device ID", "valor": deviceID},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		p.baseURL+"/v2/cob/"+txid, bytes.NewReader(corpo))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: efi: %v", ErrProvider, err)
	}

	var cobranca struct {
		PixCopiaECola string `json:"pixCopiaECola"`
		Loc           struct {
			ID json.Number `json:"id"`
		} `json:"loc"`
	}
	if err := decodeResposta("efi", resp, &cobranca); err != nil {
		return nil, err
	}

	qrReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/v2/loc/"+cobranca.Loc.ID.String()+"/qrcode", nil)
	if err != nil {
		return nil, err
	}
	qrReq.Header.Set("Authorization", "Bearer "+token)

	qrResp, err := p.http.Do(qrReq)
	if err != nil {
		return nil, fmt.Errorf("%w: efi: falha ao buscar QR Code: %v", ErrProvider, err)
	}

	var qr struct {
		ImagemQrcode string `json:"imagemQrcode"`
	}
	if err := decodeResposta("efi", qrResp, &qr); err != nil {
		return nil, err
	}

	return &PixCharge{
		QRImage:          qr.ImagemQrcode,
		CopyPastePayload: cobranca.PixCopiaECola,
		TransactionID:    txid,
		ExpiresAt:        time.Now().Add(time.Hour),
	}, nil
}

// autenticar troca as client credentials por um access token OAuth.
func (p *Efi) autenticar(ctx context.Context) (string, error) {
	corpo := bytes.NewReader([]byte(`{"grant_type":"client_credentials"}`))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/oauth/token", corpo)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: efi: falha na autenticação: %v", ErrProvider, err)
	}

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	if err := decodeResposta("efi", resp, &auth); err != nil {
		return "", err
	}
	if auth.AccessToken == "" {
		return "", fmt.Errorf("%w: efi não devolveu access token", ErrProvider)
	}

	return auth.AccessToken, nil
}
