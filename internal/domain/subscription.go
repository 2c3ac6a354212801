package domain

import "time"

// StatusAssinatura representa o estado atual de uma assinatura.
type StatusAssinatura string

const (
	StatusPendente  StatusAssinatura = "pending"
	StatusAtiva     StatusAssinatura = "active"
	StatusExpirada  StatusAssinatura = "expired"
	StatusCancelada StatusAssinatura = "cancelled"
)

// MetodoPagamento identifica o canal usado para pagar a assinatura.
type MetodoPagamento string

const (
	MetodoPix    MetodoPagamento = "pix"
	MetodoCartao MetodoPagamento = "card"
)

// Valido informa se o método de pagamento é um dos suportados.
func (m MetodoPagamento) Valido() bool {
	return m == MetodoPix || m == MetodoCartao
}

// DeviceInfo guarda metadados opcionais do aparelho. Apenas informativo:
// nenhuma regra de negócio depende destes campos.
type DeviceInfo struct {
	Platform string `json:"platform,omitempty"`
	Model    string `json:"model,omitempty"`
	Version  string `json:"version,omitempty"`
}

// Assinatura é o registro durável de assinatura de um dispositivo.
// Existe no máximo UM registro por deviceId. Essa unicidade é garantida
// pela chave primária no banco, não por verificação em memória.
type Assinatura struct {
	// Identificador opaco gerado pelo app no aparelho. Imutável após a criação.
	DeviceID string `json:"deviceId"`

	// Referência do último pagamento. Sobrescrita a cada (re)ativação.
	TransactionID string `json:"transactionId"`

	PaymentMethod MetodoPagamento `json:"paymentMethod"`

	// Valor em centavos (499 = R$ 4,99).
	Amount int64 `json:"amount"`

	Status StatusAssinatura `json:"status"`

	StartDate  time.Time `json:"startDate"`
	ExpiryDate time.Time `json:"expiryDate"`

	DeviceInfo *DeviceInfo `json:"deviceInfo,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EstaAtiva é o predicado autoritativo de vigência: status "active" E data de
// expiração no futuro. O status gravado sozinho não basta: um registro
// "active" vencido ainda não corrigido pela leitura preguiçosa não está ativo.
func (a *Assinatura) EstaAtiva(agora time.Time) bool {
	return a.Status == StatusAtiva && a.ExpiryDate.After(agora)
}

// DiasRestantes calcula os dias até a expiração com divisão por teto sobre a
// diferença em milissegundos (mesma conta feita no app). Retorna 0 quando a
// assinatura não está vigente.
func (a *Assinatura) DiasRestantes(agora time.Time) int {
	if !a.EstaAtiva(agora) {
		return 0
	}
	ms := a.ExpiryDate.Sub(agora).Milliseconds()
	dia := int64(24 * time.Hour / time.Millisecond)
	return int((ms + dia - 1) / dia)
}

// MascaraDeviceID expõe no máximo um prefixo de 8 caracteres do identificador.
// Respostas da API nunca devolvem o ID completo.
func MascaraDeviceID(deviceID string) string {
	if len(deviceID) <= 8 {
		return deviceID + "..."
	}
	return deviceID[:8] + "..."
}
