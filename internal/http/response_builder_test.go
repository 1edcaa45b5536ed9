package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusAccepted).
		BodyHTML("<p>ok</p>").
		Write(w)

	if w.Code != http.StatusAccepted {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusAccepted)
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Trigger("invoice:updated", map[string]string{"id": "abc"}).
		TriggerSuccessNotification("Saved").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	for _, part := range []string{`"invoice:updated"`, `"id":"abc"`, `"show-notification"`, `"type":"success"`, `"message":"Saved"`} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestErrorResponseEscapes(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequestError(`<script>alert(1)</script>`).Write(w)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<script>") {
		t.Errorf("message not escaped: %s", w.Body.String())
	}
}

func TestRedirect(t *testing.T) {
	t.Run("plain form post", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/clients", nil)
		Redirect(w, r, "/clients")
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/clients" {
			t.Errorf("status=%d location=%q", w.Code, w.Header().Get("Location"))
		}
	})

	t.Run("htmx", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/invoices/x/toggle", nil)
		r.Header.Set("HX-Request", "true")
		RedirectWithNotice(w, r, "/invoices/x", "Invoice marked as paid")
		if w.Code != http.StatusOK || w.Header().Get("HX-Redirect") != "/invoices/x" {
			t.Errorf("status=%d hx-redirect=%q", w.Code, w.Header().Get("HX-Redirect"))
		}
		if !strings.Contains(w.Header().Get("HX-Trigger"), "Invoice marked as paid") {
			t.Errorf("missing notification: %s", w.Header().Get("HX-Trigger"))
		}
	})
}
