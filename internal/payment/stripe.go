package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentintent"
)

// StripeCard cria Payment Intents para pagamento com cartão.
// O dinheiro cai na conta bancária configurada no Dashboard da Stripe:
// https://dashboard.stripe.com/settings/payouts
type StripeCard struct {
	secretKey string
}

// NewStripeCard cria o adapter de cartão da Stripe.
func NewStripeCard(secretKey string) *StripeCard {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &StripeCard{secretKey: secretKey}
}

func (p *StripeCard) CreateIntent(ctx context.Context, valorCentavos int64, deviceID string) (*CardIntent, error) {
	if p.secretKey == "" || p.secretKey == "sk_test_SUA_CHAVE_SECRETA_AQUI" {
		return nil, fmt.Errorf("%w: configure STRIPE_SECRET_KEY no arquivo .env", ErrConfiguracao)
	}

	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(valorCentavos),
		Currency: stripe.String(string(stripe.CurrencyBRL)),

		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},

		// Descrição que aparece na fatura do cliente.
		Description: stripe.String(descricaoProduto),

		// Nome que aparece na fatura do cartão.
		StatementDescriptor:       stripe.String("Mais Vida App"),
		StatementDescriptorSuffix: stripe.String("Assinatura"),
	}

	// Metadados permitem correlacionar o evento assíncrono de confirmação de
	// volta ao dispositivo sem nenhuma tabela auxiliar.
	if deviceID == "" {
		deviceID = "unknown"
	}
	params.AddMetadata("deviceId", deviceID)
	params.AddMetadata("productType", "subscription")
	params.AddMetadata("planType", "monthly")
	params.AddMetadata("description", descricaoProduto)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe: %v", ErrProvider, err)
	}

	return &CardIntent{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
	}, nil
}
