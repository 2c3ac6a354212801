package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Os adapters reais são testados contra servidores HTTP falsos que devolvem
// os formatos de resposta documentados de cada provedor.

func TestMercadoPago_CreatePix(t *testing.T) {
	t.Run("sucesso - uma chamada devolve QR e copia-e-cola", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/v1/payments", r.URL.Path)
			assert.Equal(t, "Bearer token-teste", r.Header.Get("Authorization"))

			var corpo map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&corpo))
			assert.Equal(t, 4.99, corpo["transaction_amount"]) // centavos -> reais
			assert.Equal(t, "device-1", corpo["external_reference"])

			json.NewEncoder(w).Encode(map[string]any{
				"id":                 123456789,
				"date_of_expiration": "2026-09-01T12:00:00.000-03:00",
				"point_of_interaction": map[string]any{
					"transaction_data": map[string]any{
						"qr_code_base64": "iVBORw0KGgo=",
						"qr_code":        "00020126...6304ABCD",
					},
				},
			})
		}))
		defer srv.Close()

		p := &MercadoPago{accessToken: "token-teste", baseURL: srv.URL, http: srv.Client()}

		cobranca, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.NoError(t, err)
		assert.Equal(t, "123456789", cobranca.TransactionID)
		assert.Equal(t, "iVBORw0KGgo=", cobranca.QRImage)
		assert.Equal(t, "00020126...6304ABCD", cobranca.CopyPastePayload)
		assert.False(t, cobranca.IsMock)
	})

	t.Run("erro - status 4xx vira ErrProvider com o status do upstream", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"invalid access token"}`))
		}))
		defer srv.Close()

		p := &MercadoPago{accessToken: "token-ruim", baseURL: srv.URL, http: srv.Client()}

		_, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrProvider)
		assert.Contains(t, err.Error(), "mercadopago")
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("erro - sem access token falha antes da rede", func(t *testing.T) {
		p := NewMercadoPago("")

		_, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrConfiguracao)
	})

	t.Run("erro - provedor pendurado estoura o timeout do cliente e vira ErrProvider", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		p := &MercadoPago{
			accessToken: "token-teste",
			baseURL:     srv.URL,
			http:        &http.Client{Timeout: 50 * time.Millisecond},
		}

		_, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrProvider)
	})
}

func TestAsaas_CreatePix(t *testing.T) {
	t.Run("sucesso - cria a cobrança e busca o QR Code em dois passos", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/v3/payments", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "chave-teste", r.Header.Get("access_token"))
			json.NewEncoder(w).Encode(map[string]any{
				"id":      "pay_123",
				"dueDate": "2026-09-01",
			})
		})
		mux.HandleFunc("GET /api/v3/payments/pay_123/pixQrCode", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"encodedImage": "iVBORw0KGgo=",
				"payload":      "00020126...6304ABCD",
			})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		p := &Asaas{apiKey: "chave-teste", baseURL: srv.URL, http: srv.Client()}

		cobranca, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.NoError(t, err)
		assert.Equal(t, "pay_123", cobranca.TransactionID)
		assert.Equal(t, "00020126...6304ABCD", cobranca.CopyPastePayload)
	})

	t.Run("erro - cobrança criada com QR falhando derruba a chamada inteira", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/v3/payments", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"id": "pay_123", "dueDate": "2026-09-01"})
		})
		mux.HandleFunc("GET /api/v3/payments/pay_123/pixQrCode", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		p := &Asaas{apiKey: "chave-teste", baseURL: srv.URL, http: srv.Client()}

		_, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrProvider)
	})

	t.Run("erro - sem api key falha antes da rede", func(t *testing.T) {
		p := NewAsaas("")

		_, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrConfiguracao)
	})
}

func TestEfi_CreatePix(t *testing.T) {
	t.Run("sucesso - autentica, cria a cobrança e busca o QR Code", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
			usuario, senha, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", usuario)
			assert.Equal(t, "client-secret", senha)
			json.NewEncoder(w).Encode(map[string]string{"access_token": "token-oauth"})
		})
		mux.HandleFunc("PUT /v2/cob/", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer token-oauth", r.Header.Get("Authorization"))

			var corpo map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&corpo))
			valor := corpo["valor"].(map[string]any)
			assert.Equal(t, "4.99", valor["original"])

			json.NewEncoder(w).Encode(map[string]any{
				"pixCopiaECola": "00020126...6304ABCD",
				"loc":           map[string]any{"id": 777},
			})
		})
		mux.HandleFunc("GET /v2/loc/777/qrcode", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"imagemQrcode": "data:image/png;base64,abc"})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		p := &Efi{
			clientID: "client-id", clientSecret: "client-secret",
			pixKey: "chave@pix.br", baseURL: srv.URL, http: srv.Client(),
		}

		cobranca, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.NoError(t, err)
		assert.Equal(t, "00020126...6304ABCD", cobranca.CopyPastePayload)
		assert.Equal(t, "data:image/png;base64,abc", cobranca.QRImage)
		assert.True(t, len(cobranca.TransactionID) >= 16) // txid derivado do relógio
	})

	t.Run("erro - falha na autenticação derruba a chamada", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		p := &Efi{
			clientID: "client-id", clientSecret: "client-secret",
			pixKey: "chave@pix.br", baseURL: srv.URL, http: srv.Client(),
		}

		_, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrProvider)
		assert.Contains(t, err.Error(), "efi")
	})

	t.Run("erro - sem credenciais falha antes da rede", func(t *testing.T) {
		p := NewEfi("", "", "chave@pix.br")

		_, err := p.CreatePix(context.Background(), 499, "device-1")
		assert.ErrorIs(t, err, ErrConfiguracao)
	})
}

func TestNormalizaErro(t *testing.T) {
	t.Run("erro cru de transporte vira ErrProvider", func(t *testing.T) {
		err := normalizaErro("mercadopago", assert.AnError)
		assert.ErrorIs(t, err, ErrProvider)
		assert.True(t, strings.Contains(err.Error(), "mercadopago"))
	})

	t.Run("erros já normalizados passam intactos", func(t *testing.T) {
		assert.Equal(t, ErrValorInvalido, normalizaErro("asaas", ErrValorInvalido))
	})
}
