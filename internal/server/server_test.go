package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/pdfparser"
	"fjacquet/camp-registration/internal/registration"
	"fjacquet/camp-registration/internal/store"
	"fjacquet/camp-registration/internal/upload"
	"fjacquet/camp-registration/internal/verifier"
)

const telebirrText = "Telebirr Payment Receipt\nPayer 2519****5678 |\nReference No. CGH1ABCDEF\nSettled ETB1000.00\n"

var pdfBytes = []byte("%PDF-1.4\nreceipt")

type env struct {
	handler http.Handler
	store   *store.MemoryStore
	pdf     *pdfparser.MockExtractor
	logger  *logging.MockLogger
}

func newEnv(t *testing.T, text string, v registration.Verifier) *env {
	t.Helper()
	e := &env{
		store:  store.NewMemoryStore(),
		pdf:    pdfparser.NewMockExtractor(text, nil),
		logger: logging.NewMockLogger(),
	}
	svc, err := registration.NewService(registration.Deps{
		Store:    e.store,
		Uploader: &upload.MockUploader{BaseURL: "https://i.ibb.co/x"},
		PDF:      e.pdf,
		Verifier: v,
		Logger:   e.logger,
	}, registration.Options{})
	require.NoError(t, err)
	e.handler = New(svc, e.logger, 1024*1024).Handler()
	return e
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, method, target, name, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestHealth(t *testing.T) {
	e := newEnv(t, "", nil)
	rec := e.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestPayment(t *testing.T) {
	const checkout = "https://checkout.chapa.co/checkout/web/payment/PL-test"
	svc, err := registration.NewService(registration.Deps{
		Store:    store.NewMemoryStore(),
		Uploader: &upload.MockUploader{},
		PDF:      pdfparser.NewMockExtractor("", nil),
		Logger:   logging.NewMockLogger(),
	}, registration.Options{CheckoutURL: checkout})
	require.NoError(t, err)
	h := New(svc, logging.NewMockLogger(), 1024*1024).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payment", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, checkout, decode(t, rec)["checkoutUrl"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payment", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = newEnv(t, "", nil).do(httptest.NewRequest(http.MethodGet, "/api/payment", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode(t, rec)["checkoutUrl"])
}

func TestMiddleware(t *testing.T) {
	e := newEnv(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := e.do(req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, e.logger.HasEntry("INFO", "HTTP request"))

	rec = e.do(httptest.NewRequest(http.MethodOptions, "/api/process-pdf", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	logger := logging.NewMockLogger()
	panicky := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec = httptest.NewRecorder()
	panicky.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, logger.HasEntry("ERROR", "Panic recovered"))
}

func TestMethodNotAllowed(t *testing.T) {
	e := newEnv(t, "", nil)
	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/process-pdf"},
		{http.MethodGet, "/api/scrape-pdf"},
		{http.MethodGet, "/api/receipts/extract"},
		{http.MethodDelete, "/api/registrations"},
		{http.MethodPost, "/api/registrations/abc"},
		{http.MethodGet, "/api/registrations/abc/receipt"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := e.do(httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "Method not allowed", decode(t, rec)["error"])
		})
	}
}

func TestProcessPDF(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantError  string
	}{
		{
			name:       "telebirr receipt",
			text:       telebirrText,
			req:        func(t *testing.T) *http.Request { return multipartRequest(t, http.MethodPost, "/api/process-pdf", "r.pdf", "application/pdf", pdfBytes) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "not telebirr",
			text:       "Some other bank",
			req:        func(t *testing.T) *http.Request { return multipartRequest(t, http.MethodPost, "/api/process-pdf", "r.pdf", "application/pdf", pdfBytes) },
			wantStatus: http.StatusBadRequest,
			wantError:  registration.ReasonNotTelebirr,
		},
		{
			name:       "image",
			req:        func(t *testing.T) *http.Request { return multipartRequest(t, http.MethodPost, "/api/process-pdf", "r.png", "image/png", []byte("png")) },
			wantStatus: http.StatusBadRequest,
			wantError:  "Only PDF files are allowed",
		},
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/process-pdf", strings.NewReader(""))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No file uploaded",
		},
		{
			name:       "too large",
			req:        func(t *testing.T) *http.Request { return multipartRequest(t, http.MethodPost, "/api/process-pdf", "r.pdf", "application/pdf", bytes.Repeat([]byte("a"), 3*1024*1024)) },
			wantStatus: http.StatusBadRequest,
			wantError:  "File size must be less than 1MB",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, tt.text, nil)
			rec := e.do(tt.req(t))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decode(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				assert.Equal(t, false, body["isTelebirr"])
				return
			}
			assert.Equal(t, true, body["success"])
			assert.Equal(t, true, body["isTelebirr"])
			assert.Equal(t, "r.pdf", body["fileName"])
			assert.Contains(t, body["previewText"], "Telebirr Payment Receipt")
		})
	}
}

func TestProcessPDF_ExtractionFailure(t *testing.T) {
	e := newEnv(t, "", nil)
	e.pdf.Err = io.ErrUnexpectedEOF

	rec := e.do(multipartRequest(t, http.MethodPost, "/api/process-pdf", "r.pdf", "application/pdf", pdfBytes))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error processing PDF", decode(t, rec)["error"])
}

func TestScrapePDF(t *testing.T) {
	e := newEnv(t, "line one\nline two", nil)
	rec := e.do(multipartRequest(t, http.MethodPost, "/api/scrape-pdf", "r.pdf", "application/pdf", pdfBytes))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "line one\nline two", decode(t, rec)["text"])
}

func TestExtract(t *testing.T) {
	e := newEnv(t, telebirrText, nil)

	rec := e.do(jsonRequest(t, http.MethodPost, "/api/receipts/extract", map[string]string{
		"text": "Transaction FT25188ABCD1 Amount 1,500.00 Date 07/10/2025",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	fields := decode(t, rec)["fields"].(map[string]any)
	assert.Equal(t, "FT25188ABCD1", fields["transactionId"])
	assert.Equal(t, "1,500.00", fields["amount"])

	rec = e.do(multipartRequest(t, http.MethodPost, "/api/receipts/extract", "r.pdf", "application/pdf", pdfBytes))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Telebirr", body["provider"])
	assert.NotNil(t, body["telebirr"])
}

func TestClassify(t *testing.T) {
	e := newEnv(t, "", nil)
	tests := []struct {
		name      string
		req       map[string]string
		provider  string
		wantMatch any
	}{
		{"telebirr text", map[string]string{"text": "Paid with Telebirr today"}, "Telebirr", nil},
		{"keyword on filename", map[string]string{"fileName": "cbe-slip.pdf", "keyword": "cbe"}, "cbe", true},
		{"keyword miss", map[string]string{"text": "telebirr", "keyword": "Telebirr"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(jsonRequest(t, http.MethodPost, "/api/receipts/classify", tt.req))
			require.Equal(t, http.StatusOK, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.provider, body["provider"])
			assert.Equal(t, tt.wantMatch, body["match"])
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/classify", strings.NewReader("{"))
	rec := e.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegistrationFlow(t *testing.T) {
	e := newEnv(t, "", nil)

	rec := e.do(multipartRequest(t, http.MethodPost, "/api/receipts/upload", "receipt.png", "image/png", []byte("\x89PNG\r\n\x1a\nxx")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var rd models.ReceiptData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rd))
	assert.Equal(t, "https://i.ibb.co/x/receipt.png", rd.URL)

	form := map[string]any{
		"fullName":         "Abebe Kebede",
		"age":              15,
		"gender":           "male",
		"parentName":       "Kebede Alemu",
		"emergencyContact": "12345678",
		"grade":            "9",
		"hobbies":          "football",
		"receipt":          rd,
	}
	rec = e.do(jsonRequest(t, http.MethodPost, "/api/registrations", form))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decode(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/registrations/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "0912345678", body["phone"])
	assert.Equal(t, "pending", body["status"])

	rec = e.do(jsonRequest(t, http.MethodPut, "/api/registrations/"+id+"/receipt", models.ReceiptData{URL: "https://i.ibb.co/x/second.pdf", FileName: "second.pdf"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	reg, err := e.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentPendingVerification, reg.Status)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/registrations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
}

func TestSubmit_InvalidForm(t *testing.T) {
	e := newEnv(t, "", nil)
	rec := e.do(jsonRequest(t, http.MethodPost, "/api/registrations", map[string]any{
		"fullName":         "A",
		"age":              12,
		"gender":           "male",
		"parentName":       "Kebede Alemu",
		"emergencyContact": "123",
		"grade":            "9",
		"hobbies":          "football",
		"receipt":          map[string]string{"url": "u"},
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Invalid registration form", body["error"])
	fields := body["fields"].([]any)
	require.Len(t, fields, 3)
	assert.Equal(t, "age", fields[0].(map[string]any)["field"])
	assert.Equal(t, "Phone number must be 8 digits", fields[1].(map[string]any)["message"])
}

func TestGetRegistration_NotFound(t *testing.T) {
	e := newEnv(t, "", nil)
	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/registrations/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyEndpoints(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case verifier.EndpointCBE:
			_, _ = io.WriteString(w, `{"success":true,"reference":"FT25188ABCD1"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer api.Close()
	v := verifier.NewClient(api.URL, "k", 5*time.Second, api.Client(), logging.NewMockLogger())

	e := newEnv(t, "Transaction FT25188ABCD1 Amount 1,500.00", v)
	rec := e.do(multipartRequest(t, http.MethodPost, "/api/receipts/verify-cbe", "cbe.pdf", "application/pdf", pdfBytes))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["verification"].(map[string]any)["success"])

	id, err := e.store.Create(context.Background(), &models.Registration{FullName: "Abebe Kebede"})
	require.NoError(t, err)
	rec = e.do(multipartRequest(t, http.MethodPost, "/api/registrations/"+id+"/payment", "cbe.pdf", "application/pdf", pdfBytes))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, "FT25188ABCD1", body["reference"])

	reg, err := e.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, reg.Status)
}

func TestVerify_Disabled(t *testing.T) {
	e := newEnv(t, "Transaction FT25188ABCD1", nil)
	rec := e.do(multipartRequest(t, http.MethodPost, "/api/receipts/verify-cbe", "cbe.pdf", "application/pdf", pdfBytes))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
