// Package payment issues payouts through an external transfer provider.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Gateway is one provider session authorised by a single payout credential.
type Gateway interface {
	CreateQuote(ctx context.Context, sourceCurrency, targetCurrency string, amount int64) (string, error)
	CreateRecipient(ctx context.Context, fullName, iban, currency string) (string, error)
	CreateTransfer(ctx context.Context, recipientID, quoteID, customerTransactionID string) (string, error)
	FundTransfer(ctx context.Context, transferID string) ([]byte, error)
}

// Factory builds a Gateway for a decrypted payout credential.
type Factory func(apiKey string) Gateway

// PayoutRequest describes one money movement to a recipient.
type PayoutRequest struct {
	SourceCurrency string
	TargetCurrency string
	Amount         int64
	RecipientName  string
	RecipientIBAN  string
}

// PayoutResult holds the provider identifiers of a funded transfer.
type PayoutResult struct {
	QuoteID               string
	RecipientID           string
	TransferID            string
	CustomerTransactionID string
	Funding               []byte // raw fund response
}

// Payout runs quote, recipient, transfer and fund in order and stops at the
// first failure. A transfer created before a failed fund call is left as is.
func Payout(ctx context.Context, gw Gateway, req PayoutRequest) (PayoutResult, error) {
	var res PayoutResult
	var err error

	if res.QuoteID, err = gw.CreateQuote(ctx, req.SourceCurrency, req.TargetCurrency, req.Amount); err != nil {
		return PayoutResult{}, fmt.Errorf("create quote: %w", err)
	}
	if res.RecipientID, err = gw.CreateRecipient(ctx, req.RecipientName, req.RecipientIBAN, req.TargetCurrency); err != nil {
		return PayoutResult{}, fmt.Errorf("create recipient: %w", err)
	}
	res.CustomerTransactionID = uuid.NewString()
	if res.TransferID, err = gw.CreateTransfer(ctx, res.RecipientID, res.QuoteID, res.CustomerTransactionID); err != nil {
		return PayoutResult{}, fmt.Errorf("create transfer: %w", err)
	}
	if res.Funding, err = gw.FundTransfer(ctx, res.TransferID); err != nil {
		return PayoutResult{}, fmt.Errorf("fund transfer %s: %w", res.TransferID, err)
	}
	return res, nil
}
