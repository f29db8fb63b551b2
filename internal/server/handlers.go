package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/parsererror"
	"fjacquet/camp-registration/internal/receipt"
	"fjacquet/camp-registration/internal/registration"
	"fjacquet/camp-registration/internal/validation"
)

// multipartOverhead is allowed on top of the file limit for form framing.
const multipartOverhead = 1 << 20

// uploadedFile is one file read from a multipart "file" field.
type uploadedFile struct {
	Name string
	MIME string
	Data []byte
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*uploadedFile, error) {
	noFile := &parsererror.ValidationError{Field: "file", Reason: "No file uploaded"}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxFileBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxFileBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, &parsererror.ValidationError{
				Field:  "file",
				Reason: fmt.Sprintf("File size must be less than %dMB", s.maxFileBytes/(1024*1024)),
			}
		}
		return nil, noFile
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, noFile
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &uploadedFile{Name: hdr.Filename, MIME: hdr.Header.Get("Content-Type"), Data: data}, nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &parsererror.ValidationError{Reason: "Invalid request body"}
	}
	return nil
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed",
			logging.F(logging.FieldRequestID, RequestIDFrom(r.Context())),
			logging.F(logging.FieldPath, r.URL.Path))
	}
	WriteJSON(w, status, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type paymentResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// handlePayment tells the client where to pay the camp fee.
func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, paymentResponse{CheckoutURL: s.svc.CheckoutURL()})
}

// handleProcessPDF answers 400 with isTelebirr=false for any rejected file.
func (s *Server) handleProcessPDF(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err == nil {
		var res *models.ProcessedPDF
		if res, err = s.svc.ProcessPDF(r.Context(), up.Name, up.MIME, up.Data); err == nil {
			WriteJSON(w, http.StatusOK, res)
			return
		}
	}

	if parsererror.IsValidation(err) {
		_, body := errorResponse(err)
		body.IsTelebirr = boolPtr(false)
		WriteJSON(w, http.StatusBadRequest, body)
		return
	}
	s.logger.WithError(err).Error("Error processing PDF")
	WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Error processing PDF", Details: err.Error()})
}

func (s *Server) handleScrapePDF(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validation.ValidatePDFFile(validation.DetectMIME(up.MIME, up.Data), int64(len(up.Data)), s.maxFileBytes); err != nil {
		s.fail(w, r, err)
		return
	}
	text, err := s.svc.ScrapePDF(r.Context(), up.Data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"text": text})
}

type textRequest struct {
	Text     string `json:"text"`
	FileName string `json:"fileName"`
	Keyword  string `json:"keyword,omitempty"`
}

// handleExtract accepts either a JSON body with text or a multipart file.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if isJSON(r) {
		var req textRequest
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, s.svc.ExtractText(req.Text, req.FileName))
		return
	}

	up, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ex, err := s.svc.ExtractDocument(r.Context(), up.Name, up.Data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ex)
}

type classifyResponse struct {
	Provider string `json:"provider"`
	Keyword  string `json:"keyword,omitempty"`
	Match    *bool  `json:"match,omitempty"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	in := receipt.ClassifyInput{Text: req.Text, Filename: req.FileName}
	resp := classifyResponse{Provider: registration.ClassifyProvider(in)}
	if req.Keyword != "" {
		resp.Keyword = req.Keyword
		resp.Match = boolPtr(receipt.Classify(in, req.Keyword))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rd, err := s.svc.UploadReceipt(r.Context(), up.Name, up.MIME, up.Data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rd)
}

func (s *Server) handleVerifyCBE(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.VerifyCBEPayment(r.Context(), up.Data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

type submitRequest struct {
	validation.Form
	Receipt *models.ReceiptData `json:"receipt"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	reg, err := s.svc.Submit(r.Context(), req.Form, req.Receipt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, reg)
}

func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := s.svc.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"registrations": regs,
		"count":         len(regs),
	})
}

func (s *Server) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reg)
}

func (s *Server) handleAttachReceipt(w http.ResponseWriter, r *http.Request) {
	var rd models.ReceiptData
	if err := decodeJSON(r, &rd); err != nil {
		s.fail(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := s.svc.AttachReceipt(r.Context(), id, rd); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.VerifyRegistrationPayment(r.Context(), r.PathValue("id"), up.Name, strings.TrimSpace(up.MIME), up.Data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
