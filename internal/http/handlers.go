package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fatture/internal/core"
	"fatture/internal/export"
	"fatture/internal/log"
	"fatture/internal/services"
	"fatture/internal/store"
)

// view is the root object handed to every page template.
type view struct {
	Title string
	Nav   string
	Error string
	Data  any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, v view) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, v); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			"template", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError shows the generic error page. err is logged, never displayed.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, op string, err error, message string) {
	s.logger.ErrorContext(r.Context(), message,
		log.NewFields().WithOperation(op).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
	s.render(w, r, http.StatusInternalServerError, "error.html", view{Title: "Error", Error: message})
}

func (s *Server) renderInvoiceNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "invoice_not_found.html", view{Title: "Invoice Not Found", Nav: "invoices"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "error.html", view{Title: "Not Found", Error: "The page you're looking for doesn't exist."})
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and the backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			checks["backend"] = "failed"
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Dashboard(r.Context())
	if err != nil {
		s.renderError(w, r, log.OpRead, err, "Failed to load dashboard")
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", view{Title: "Dashboard", Nav: "dashboard", Data: summary})
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	ov, err := s.svc.ClientsOverview(r.Context(), r.URL.Query().Get("q"), s.now())
	if err != nil {
		s.renderError(w, r, log.OpList, err, "Failed to load clients")
		return
	}
	s.render(w, r, http.StatusOK, "clients.html", view{Title: "Clients", Nav: "clients", Data: ov})
}

func (s *Server) handleNewClient(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "client_new.html", view{Title: "New Client", Nav: "clients", Data: core.ClientDraft{}})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	draft := ParseClientForm(r.PostForm)

	c, err := s.svc.CreateClient(r.Context(), draft)
	if err != nil {
		v := view{Title: "New Client", Nav: "clients", Data: draft}
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			v.Error = ve.Message
			s.render(w, r, http.StatusUnprocessableEntity, "client_new.html", v)
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to create client",
			log.NewFields().WithOperation(log.OpCreate).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		v.Error = "Failed to create client. Please try again."
		s.render(w, r, http.StatusInternalServerError, "client_new.html", v)
		return
	}

	s.logger.InfoContext(r.Context(), "Client created", log.FieldClientID, c.ID)
	Redirect(w, r, "/clients")
}

func (s *Server) handleInvoices(w http.ResponseWriter, r *http.Request) {
	ov, err := s.svc.InvoicesOverview(r.Context(), s.now())
	if err != nil {
		s.renderError(w, r, log.OpList, err, "Failed to load invoices")
		return
	}
	data := struct {
		Overview  services.InvoicesOverview
		Histogram []HistogramBar
	}{ov, histogramBars(ov.Stats)}
	s.render(w, r, http.StatusOK, "invoices.html", view{Title: "Invoices", Nav: "invoices", Data: data})
}

type invoiceFormView struct {
	Clients []core.Client
	Form    InvoiceForm
}

func (s *Server) handleNewInvoice(w http.ResponseWriter, r *http.Request) {
	form := DefaultInvoiceForm()
	form.ClientID = r.URL.Query().Get("client_id")
	s.renderInvoiceForm(w, r, http.StatusOK, form, "")
}

func (s *Server) renderInvoiceForm(w http.ResponseWriter, r *http.Request, status int, form InvoiceForm, msg string) {
	clients, err := s.svc.ListClients(r.Context())
	if err != nil {
		s.renderError(w, r, log.OpList, err, "Failed to load clients")
		return
	}
	s.render(w, r, status, "invoice_new.html", view{
		Title: "Create New Invoice",
		Nav:   "invoices",
		Error: msg,
		Data:  invoiceFormView{Clients: clients, Form: form},
	})
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	form := ParseInvoiceForm(r.PostForm)

	draft, err := form.Draft()
	if err == nil {
		var inv core.Invoice
		inv, err = s.svc.CreateInvoice(r.Context(), draft)
		if err == nil {
			Redirect(w, r, "/invoices/"+inv.ID)
			return
		}
	}

	var ve *core.ValidationError
	if errors.As(err, &ve) {
		s.renderInvoiceForm(w, r, http.StatusUnprocessableEntity, form, ve.Message)
		return
	}
	s.logger.ErrorContext(r.Context(), "Failed to create invoice",
		log.NewFields().WithOperation(log.OpCreate).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
	s.renderInvoiceForm(w, r, http.StatusInternalServerError, form, "Failed to create invoice. Please try again.")
}

func (s *Server) handleInvoiceDetail(w http.ResponseWriter, r *http.Request) {
	inv, err := s.svc.GetInvoice(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		s.renderInvoiceNotFound(w, r)
		return
	}
	if err != nil {
		s.renderError(w, r, log.OpRead, err, "Failed to load invoice")
		return
	}
	s.render(w, r, http.StatusOK, "invoice_detail.html", view{Title: "Invoice " + inv.ShortID(), Nav: "invoices", Data: inv})
}

func (s *Server) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	inv, err := s.svc.ToggleStatus(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.renderInvoiceNotFound(w, r)
		return
	}
	if err != nil {
		s.renderError(w, r, log.OpToggle, err, "Failed to update invoice status")
		return
	}
	RedirectWithNotice(w, r, "/invoices/"+id, "Invoice marked as "+string(inv.Status))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "csv", export.ContentTypeCSV, export.WriteCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "xlsx", export.ContentTypeXLSX, export.WriteXLSX)
}

// handleExport renders into memory first so a failure still yields a clean 500.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(io.Writer, []core.Invoice) error) {
	invoices, err := s.svc.ListInvoices(r.Context(), store.InvoiceQuery{})
	if err != nil {
		s.renderError(w, r, log.OpExport, err, "Failed to export invoices")
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, invoices); err != nil {
		s.renderError(w, r, log.OpExport, err, "Failed to export invoices")
		return
	}

	s.logger.InfoContext(r.Context(), "Invoices exported", "format", ext, log.FieldRowCount, len(invoices))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(s.now(), ext)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
