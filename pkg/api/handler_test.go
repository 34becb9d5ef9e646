package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/registry"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

func newServer(t *testing.T, mutate func(*config.Config), fns ...OptionFn) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	srv := httptest.NewServer(NewHandler(registry.New(config.Static(cfg)), fns...))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
	return resp.StatusCode, []byte(buf.String())
}

func TestListWizards(t *testing.T) {
	srv := newServer(t, func(c *config.Config) { c.EnabledTypes = []string{"spf", "srv"} })
	code, body := do(t, srv, http.MethodGet, "/wizards", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	var got []wizard.Metadata
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	types := make([]string, 0, len(got))
	for _, m := range got {
		types = append(types, m.Type)
	}
	if diff := cmp.Diff([]string{"spf", "srv"}, types); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(body), `"recordType":"TXT"`) {
		t.Fatalf("metadata should use recordType key: %s", body)
	}
}

func TestRegistryErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		path   string
		want   int
	}{
		{name: "disabled", mutate: func(c *config.Config) { c.Enabled = false }, path: "/wizards/spf/schema", want: http.StatusServiceUnavailable},
		{name: "not allow-listed", mutate: func(c *config.Config) { c.EnabledTypes = []string{"srv"} }, path: "/wizards/spf/schema", want: http.StatusNotFound},
		{name: "unknown type", path: "/wizards/mx/schema", want: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.mutate)
			code, body := do(t, srv, http.MethodGet, tc.path, "")
			if code != tc.want {
				t.Fatalf("status = %d, want %d: %s", code, tc.want, body)
			}
			var payload map[string]string
			if err := json.Unmarshal(body, &payload); err != nil || payload["error"] == "" {
				t.Fatalf("expected error body, got %s", body)
			}
		})
	}
}

func TestStatusForUnknownError(t *testing.T) {
	if got := StatusFor(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status = %d", got)
	}
	if got := StatusFor(registry.ErrInvalidEngine); got != http.StatusInternalServerError {
		t.Fatalf("status = %d", got)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	srv := newServer(t, nil)
	code, body := do(t, srv, http.MethodGet, "/wizards/caa/schema", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	if !strings.Contains(string(body), `"visible_when"`) {
		t.Fatalf("schema should carry visibility rules: %s", body)
	}
}

func TestValidateAndPreview(t *testing.T) {
	srv := newServer(t, nil)

	code, body := do(t, srv, http.MethodPost, "/wizards/dmarc/validate", `{"policy":"none"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	var result record.ValidationResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Valid || len(result.Warnings) == 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	code, body = do(t, srv, http.MethodPost, "/wizards/dmarc/preview", `{"policy":"reject"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	var preview map[string]string
	if err := json.Unmarshal(body, &preview); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(preview["preview"], "v=DMARC1; p=reject") {
		t.Fatalf("preview = %q", preview["preview"])
	}
}

func TestGenerate(t *testing.T) {
	srv := newServer(t, nil)

	code, body := do(t, srv, http.MethodPost, "/wizards/srv/generate",
		`{"service":"_https","protocol":"_tcp","priority":10,"weight":5,"port":443,"target":"www.example.com","ttl":3600}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	var rec record.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := record.Record{Name: "_https._tcp", Type: "SRV", Content: "5 443 www.example.com.", TTL: 3600, Priority: 10}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	code, body = do(t, srv, http.MethodPost, "/wizards/srv/generate", `{"service":"_https","port":0,"target":"192.0.2.1"}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", code, body)
	}
	var result record.ValidationResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Valid || len(result.Errors) == 0 {
		t.Fatalf("expected errors, got %+v", result)
	}
}

func TestParse(t *testing.T) {
	srv := newServer(t, nil)
	code, body := do(t, srv, http.MethodPost, "/wizards/spf/parse",
		`{"content":"\"v=spf1 mx -all\"","name":"@","ttl":120}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	var data record.FormData
	if err := json.Unmarshal(body, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !data.Bool("include_mx") || data.String("all_policy") != "fail" || data.Int("ttl", 0) != 120 {
		t.Fatalf("unexpected form data: %#v", data)
	}
}

func TestBadPayload(t *testing.T) {
	srv := newServer(t, nil)
	for _, body := range []string{"", "{not json", `["list"]`} {
		code, resp := do(t, srv, http.MethodPost, "/wizards/spf/validate", body)
		if code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d: %s", body, code, resp)
		}
	}
}

func TestGuard(t *testing.T) {
	srv := newServer(t, nil, WithGuard(func(r *http.Request) error {
		if r.Header.Get("X-Api-Key") == "" {
			return StatusError{Code: http.StatusUnauthorized}
		}
		return nil
	}))
	code, _ := do(t, srv, http.MethodGet, "/wizards", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d", code)
	}
}

func TestOpenAPIRoute(t *testing.T) {
	srv := newServer(t, nil, WithOpenAPI(func(context.Context) ([]byte, error) {
		return []byte(`{"openapi":"3.0.3"}`), nil
	}))
	code, body := do(t, srv, http.MethodGet, "/openapi.json", "")
	if code != http.StatusOK || !strings.Contains(string(body), "3.0.3") {
		t.Fatalf("status = %d: %s", code, body)
	}
}

func TestRegisterRoutesUnderBasePath(t *testing.T) {
	cfg := config.Default()
	mux := http.NewServeMux()
	pattern, err := RegisterRoutes(mux, "api/", NewHandler(registry.New(config.Static(cfg))))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pattern != "/api/" {
		t.Fatalf("pattern = %q", pattern)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/wizards/tlsa/schema", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := RegisterRoutes(nil, "/api", http.NotFoundHandler()); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}
