package verifier

import (
	"context"

	"fjacquet/camp-registration/internal/receipt"
)

// CBERequest carries the fields extracted from a CBE receipt.
type CBERequest struct {
	TransactionID   string `json:"transactionId,omitempty"`
	Amount          string `json:"amount,omitempty"`
	Date            string `json:"date,omitempty"`
	SenderAccount   string `json:"senderAccount,omitempty"`
	ReceiverAccount string `json:"receiverAccount,omitempty"`
	SenderName      string `json:"senderName,omitempty"`
}

// CBEResponse is the verification API's answer for a CBE transfer.
type CBEResponse struct {
	Success         bool   `json:"success"`
	Reference       string `json:"reference,omitempty"`
	Amount          string `json:"amount,omitempty"`
	Date            string `json:"date,omitempty"`
	Payer           string `json:"payer,omitempty"`
	PayerAccount    string `json:"payerAccount,omitempty"`
	Receiver        string `json:"receiver,omitempty"`
	ReceiverAccount string `json:"receiverAccount,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Error           string `json:"error,omitempty"`
}

// CBERequestFromFields builds a request from an extraction record. Absent
// fields are left out of the JSON body.
func CBERequestFromFields(f receipt.Fields) CBERequest {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return CBERequest{
		TransactionID:   deref(f.TransactionID),
		Amount:          deref(f.Amount),
		Date:            deref(f.Date),
		SenderAccount:   deref(f.SenderAccount),
		ReceiverAccount: deref(f.ReceiverAccount),
		SenderName:      deref(f.SenderName),
	}
}

// VerifyCBE asks the API to confirm a CBE transfer.
func (c *Client) VerifyCBE(ctx context.Context, req CBERequest) (*CBEResponse, error) {
	var out CBEResponse
	if err := c.postJSON(ctx, EndpointCBE, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
