package lib

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

type TransferInput struct {
	AmountCents    int64
	Currency       string
	Destination    string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

// PaymentsProvider moves money to celebrities' connected accounts.
type PaymentsProvider interface {
	CreateTransfer(ctx context.Context, in *TransferInput) (string, error)
	CreateConnectedAccount(ctx context.Context, email string, metadata map[string]string) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID string) (string, error)
}

type StripePayments struct {
	client *stripe.Client
}

func NewStripePayments(c *stripe.Client) *StripePayments {
	return &StripePayments{client: c}
}

func (s *StripePayments) CreateTransfer(ctx context.Context, in *TransferInput) (string, error) {
	params := &stripe.TransferCreateParams{
		Amount:      stripe.Int64(in.AmountCents),
		Currency:    stripe.String(in.Currency),
		Destination: stripe.String(in.Destination),
		Description: stripe.String(in.Description),
	}
	params.SetIdempotencyKey(in.IdempotencyKey)
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	tr, err := s.client.V1Transfers.Create(ctx, params)
	if err != nil {
		return "", err
	}
	return tr.ID, nil
}

func (s *StripePayments) CreateConnectedAccount(ctx context.Context, email string, metadata map[string]string) (string, error) {
	acc, err := s.client.V1Accounts.Create(ctx, &stripe.AccountCreateParams{
		Type:     stripe.String("express"),
		Email:    stripe.String(email),
		Metadata: metadata,
		Capabilities: &stripe.AccountCreateCapabilitiesParams{
			Transfers: &stripe.AccountCreateCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return acc.ID, nil
}

func (s *StripePayments) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	accLink, err := s.client.V1AccountLinks.Create(ctx, &stripe.AccountLinkCreateParams{
		Account:    stripe.String(accountID),
		Type:       stripe.String("account_onboarding"),
		ReturnURL:  stripe.String(fmt.Sprint(os.Getenv("APP_HOST"), "/dashboard/payouts")),
		RefreshURL: stripe.String(fmt.Sprint(os.Getenv("APP_HOST"), "/callback/account/refresh")),
	})
	if err != nil {
		return "", err
	}
	return accLink.URL, nil
}

var paymentsProvider PaymentsProvider

func GetPaymentsProvider() PaymentsProvider {
	if paymentsProvider != nil {
		return paymentsProvider
	}
	paymentsProvider = NewStripePayments(GetStripeClient())
	return paymentsProvider
}

// NewPaymentsProvider replaces the provider, e.g. with a mock in tests.
func NewPaymentsProvider(p PaymentsProvider) {
	paymentsProvider = p
}

// ProcessorMessage extracts the human readable part of a Stripe error.
func ProcessorMessage(err error) string {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return err.Error()
}
