package payment

import (
	"context"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// Mock gera cobranças PIX sem nenhuma chamada de rede, para desenvolvimento e
// testes. O payload segue o formato BR Code real (simplificado) e o QR Code é
// um PNG de verdade gerado localmente. Toda cobrança sai com IsMock = true
// para que o operador saiba que nenhum provedor real foi usado.
type Mock struct {
	pixKey       string
	receiverName string
	receiverCity string
}

// NewMock cria o provedor mock com os dados do recebedor vindos do .env.
func NewMock(pixKey, receiverName, receiverCity string) *Mock {
	return &Mock{
		pixKey:       pixKey,
		receiverName: receiverName,
		receiverCity: receiverCity,
	}
}

func (m *Mock) Nome() string {
	return "mock"
}

func (m *Mock) CreatePix(_ context.Context, valorCentavos int64, deviceID string) (*PixCharge, error) {
	// Código copia-e-cola no formato EMV do PIX (versão simplificada).
	copiaECola := fmt.Sprintf(
		"00020126580014br.gov.bcb.pix0136%s520400005303986540%.2f5802BR5913%s6009%s62070503***6304ABCD",
		m.pixKey, float64(valorCentavos)/100, m.receiverName, m.receiverCity)

	png, err := qrcode.Encode(copiaECola, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar QR Code: %w", err)
	}

	// ID de transação determinístico por instante + hash do device, nunca o
	// device_id cru.
	h := fnv.New32a()
	h.Write([]byte(deviceID))
	transactionID := fmt.Sprintf("mock_%d_%08x", time.Now().UnixMilli(), h.Sum32())

	return &PixCharge{
		QRImage:          "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		CopyPastePayload: copiaECola,
		TransactionID:    transactionID,
		ExpiresAt:        time.Now().Add(time.Hour),
		IsMock:           true,
	}, nil
}
