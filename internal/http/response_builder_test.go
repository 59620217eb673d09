package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuilderWritesTriggersAndBody(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerLedgerChanged().
		TriggerFormReset().
		BodyHTML("<div>ok</div>").
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d", rr.Code)
	}
	if rr.Body.String() != "<div>ok</div>" {
		t.Errorf("body = %q", rr.Body.String())
	}

	var triggers map[string]interface{}
	if err := json.Unmarshal([]byte(rr.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger not JSON: %v", err)
	}
	for _, name := range []string{"ledger:changed", "form:reset"} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("missing trigger %q in %v", name, triggers)
		}
	}
}

func TestBuilderNoTriggersNoHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().BodyHTML("x").Write(rr)
	if rr.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger must be absent without triggers")
	}
}

func TestBodyJSONSetsContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().BodyJSON(map[string]int{"a": 1}).Write(rr)
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
	if rr.Body.String() != `{"a":1}` {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestNotificationTriggerPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHTMXResponse().TriggerSuccessNotification("salvo").Write(rr)

	var triggers map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(rr.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger not JSON: %v", err)
	}
	notif := triggers["show-notification"]
	if notif["type"] != "success" || notif["message"] != "salvo" {
		t.Errorf("payload = %v", notif)
	}
}

func TestErrorResponseEscapesHTML(t *testing.T) {
	rr := httptest.NewRecorder()
	BadRequestError(`<script>alert("x")</script>`).Write(rr)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "<script>") {
		t.Errorf("message not escaped: %s", rr.Body.String())
	}
}

func TestMethodNotAllowedSetsAllow(t *testing.T) {
	rr := httptest.NewRecorder()
	MethodNotAllowedError("GET, POST").Write(rr)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rr.Code)
	}
	if rr.Header().Get("Allow") != "GET, POST" {
		t.Errorf("Allow = %q", rr.Header().Get("Allow"))
	}
}
