package handlers

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/arenaops/arena-server/middleware"
	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxProofUploadBytes = 5 << 20 // 5MB

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: ps,
	}
}

// SubmitProof accepts a multipart form with amount, method, an optional
// reference_id and an optional screenshot file.
func (h *PaymentHandler) SubmitProof(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := r.ParseMultipartForm(maxProofUploadBytes); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}

	amount, err := decimal.NewFromString(r.FormValue("amount"))
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid amount"))
		return
	}

	input := services.SubmitProofInput{
		Amount: amount,
		Method: models.PaymentMethod(r.FormValue("method")),
	}

	if ref := r.FormValue("reference_id"); ref != "" {
		input.ReferenceID = &ref
	}

	file, header, err := r.FormFile("screenshot")
	switch {
	case err == nil:
		defer file.Close()
		input.Screenshot = file
		input.ScreenshotContentType = header.Header.Get("Content-Type")
		input.ScreenshotExt = strings.ToLower(path.Ext(header.Filename))
	case errors.Is(err, http.ErrMissingFile):
		// screenshot stays optional
	default:
		badRequestResponse(w, r, err)
		return
	}

	proof, err := h.paymentService.SubmitProof(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"proof": proof}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) ListMyProofs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	proofs, err := h.paymentService.ListUserProofs(r.Context(), userID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"proofs": proofs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	proofs, err := h.paymentService.ListPendingProofs(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"proofs": proofs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PaymentHandler) Review(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	proofID := chi.URLParam(r, "id")
	if proofID == "" {
		badRequestResponse(w, r, errors.New("missing payment proof ID in URL path"))
		return
	}

	var input struct {
		Approve *bool   `json:"approve"`
		Notes   *string `json:"notes"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Approve == nil {
		badRequestResponse(w, r, errors.New("approve is required"))
		return
	}

	proof, err := h.paymentService.ReviewProof(r.Context(), proofID, reviewerID, services.ReviewProofInput{
		Approve: *input.Approve,
		Notes:   input.Notes,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"proof": proof}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
