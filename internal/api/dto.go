package api

import (
	"time"

	"fatture/internal/core"
)

type clientResp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type itemResp struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

type invoiceResp struct {
	ID        string      `json:"id"`
	Number    string      `json:"number"`
	ClientID  string      `json:"client_id"`
	Client    *clientResp `json:"client,omitempty"`
	IssueDate string      `json:"issue_date"`
	DueDate   string      `json:"due_date"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	Items     []itemResp  `json:"items,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func toClientResp(c core.Client) clientResp {
	return clientResp{
		ID:        c.ID,
		Name:      c.Name,
		Company:   c.Company,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

func toInvoiceResp(inv core.Invoice) invoiceResp {
	out := invoiceResp{
		ID:        inv.ID,
		Number:    inv.ShortID(),
		ClientID:  inv.ClientID,
		IssueDate: inv.IssueDate.Format(core.DateLayout),
		DueDate:   inv.DueDate.Format(core.DateLayout),
		Total:     inv.Total,
		Status:    string(inv.Status),
		CreatedAt: inv.CreatedAt,
	}
	if inv.Client != nil {
		cr := toClientResp(*inv.Client)
		out.Client = &cr
	}
	for _, it := range inv.Items {
		out.Items = append(out.Items, itemResp{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal(),
		})
	}
	return out
}
