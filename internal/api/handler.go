// Package api serves the JSON API under /api/v1 with gin.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fatture/internal/core"
	"fatture/internal/log"
	"fatture/internal/services"
	"fatture/internal/store"
)

// Prefix is where the router is mounted on the page mux.
const Prefix = "/api/v1"

// Service is the subset of services.InvoiceService the API needs.
type Service interface {
	CreateClient(ctx context.Context, d core.ClientDraft) (core.Client, error)
	ClientsOverview(ctx context.Context, search string, now time.Time) (services.ClientsOverview, error)
	CreateInvoice(ctx context.Context, d core.InvoiceDraft) (core.Invoice, error)
	GetInvoice(ctx context.Context, id string) (core.Invoice, error)
	ListInvoices(ctx context.Context, q store.InvoiceQuery) ([]core.Invoice, error)
	ToggleStatus(ctx context.Context, id string) (core.Invoice, error)
	InvoicesOverview(ctx context.Context, now time.Time) (services.InvoicesOverview, error)
	Dashboard(ctx context.Context) (core.DashboardSummary, error)
}

type Handler struct {
	svc    Service
	logger *log.Logger
	now    func() time.Time
}

func NewHandler(svc Service, logger *log.Logger, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{svc: svc, logger: logger.WithComponent(log.ComponentAPI), now: now}
}

// NewRouter builds the gin engine. Request logging and tracing happen in the
// page server's middleware chain that wraps it.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.HandleMethodNotAllowed = true

	v1 := r.Group(Prefix)
	v1.GET("/clients", h.ListClients)
	v1.POST("/clients", h.CreateClient)
	v1.GET("/invoices", h.ListInvoices)
	v1.POST("/invoices", h.CreateInvoice)
	v1.GET("/invoices/:id", h.GetInvoice)
	v1.POST("/invoices/:id/toggle", h.ToggleInvoice)
	v1.GET("/stats", h.Stats)

	r.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, CodeNotFound, "Not found")
	})
	r.NoMethod(func(c *gin.Context) {
		Error(c, http.StatusMethodNotAllowed, CodeInvalidParam, "Method not allowed")
	})
	return r
}

// ---------- requests ----------

type createClientReq struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type itemReq struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type createInvoiceReq struct {
	ClientID  string    `json:"client_id"`
	IssueDate string    `json:"issue_date"`
	DueDate   string    `json:"due_date"`
	Items     []itemReq `json:"items"`
}

// ---------- handlers ----------

func (h *Handler) ListClients(c *gin.Context) {
	ov, err := h.svc.ClientsOverview(c.Request.Context(), strings.TrimSpace(c.Query("q")), h.now())
	if err != nil {
		h.fail(c, log.OpList, err, "Failed to load clients")
		return
	}
	out := make([]clientResp, 0, len(ov.Clients))
	for _, cl := range ov.Clients {
		out = append(out, toClientResp(cl))
	}
	Success(c, http.StatusOK, gin.H{
		"clients": out,
		"stats": gin.H{
			"total_clients":  ov.Stats.TotalClients,
			"new_this_month": ov.Stats.NewThisMonth,
			"active_clients": ov.Stats.ActiveClients,
		},
	})
}

func (h *Handler) CreateClient(c *gin.Context) {
	var req createClientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "Invalid request body")
		return
	}
	// Values are stored as typed.
	cl, err := h.svc.CreateClient(c.Request.Context(), core.ClientDraft{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.fail(c, log.OpCreate, err, "Failed to create client. Please try again.")
		return
	}
	Success(c, http.StatusCreated, toClientResp(cl))
}

func (h *Handler) ListInvoices(c *gin.Context) {
	invoices, err := h.svc.ListInvoices(c.Request.Context(), store.InvoiceQuery{})
	if err != nil {
		h.fail(c, log.OpList, err, "Failed to load invoices")
		return
	}
	out := make([]invoiceResp, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResp(inv))
	}
	Success(c, http.StatusOK, gin.H{"invoices": out})
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	var req createInvoiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "Invalid request body")
		return
	}

	draft := core.InvoiceDraft{ClientID: req.ClientID}
	// Unparseable dates stay zero and are reported by validation.
	draft.IssueDate, _ = core.ParseDate(req.IssueDate)
	draft.DueDate, _ = core.ParseDate(req.DueDate)
	for _, it := range req.Items {
		draft.Items = append(draft.Items, core.ItemDraft{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	inv, err := h.svc.CreateInvoice(c.Request.Context(), draft)
	if err != nil {
		h.fail(c, log.OpCreate, err, "Failed to create invoice. Please try again.")
		return
	}
	Success(c, http.StatusCreated, toInvoiceResp(inv))
}

func (h *Handler) GetInvoice(c *gin.Context) {
	inv, err := h.svc.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, log.OpRead, err, "Failed to load invoice")
		return
	}
	Success(c, http.StatusOK, toInvoiceResp(inv))
}

func (h *Handler) ToggleInvoice(c *gin.Context) {
	inv, err := h.svc.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, log.OpToggle, err, "Failed to update invoice status")
		return
	}
	Success(c, http.StatusOK, toInvoiceResp(inv))
}

func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	ov, err := h.svc.InvoicesOverview(ctx, h.now())
	if err != nil {
		h.fail(c, log.OpRead, err, "Failed to load statistics")
		return
	}
	dash, err := h.svc.Dashboard(ctx)
	if err != nil {
		h.fail(c, log.OpRead, err, "Failed to load statistics")
		return
	}

	monthly := make([]gin.H, 0, len(ov.Stats.Monthly))
	for _, b := range ov.Stats.Monthly {
		monthly = append(monthly, gin.H{"label": b.Label, "year": b.Year, "month": int(b.Month), "count": b.Count})
	}
	byStatus := gin.H{}
	for _, g := range ov.Groups.Groups {
		byStatus[string(g.Status)] = len(g.Invoices)
	}
	recent := make([]invoiceResp, 0, len(dash.Recent))
	for _, inv := range dash.Recent {
		recent = append(recent, toInvoiceResp(inv))
	}

	Success(c, http.StatusOK, gin.H{
		"total_invoices": ov.Stats.TotalInvoices,
		"total_revenue":  ov.Stats.TotalRevenue,
		"unpaid":         ov.Stats.Unpaid,
		"monthly":        monthly,
		"by_status":      byStatus,
		"unrecognized":   len(ov.Groups.Unrecognized),
		"recent":         recent,
	})
}
