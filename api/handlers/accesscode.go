package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/wepass-api/access"
	"github.com/linesmerrill/wepass-api/api"
	"github.com/linesmerrill/wepass-api/config"
	"github.com/linesmerrill/wepass-api/models"
)

// AccessCode exported for testing purposes
type AccessCode struct {
	Service *access.Service
}

// CreateAccessCodeRequest is the body of a create call
type CreateAccessCodeRequest struct {
	Visitor string `json:"visitor"`
	Unit    string `json:"unit"`
}

// VerifyAccessCodeRequest is the body of a verify call
type VerifyAccessCodeRequest struct {
	AccessCode *int `json:"accessCode"`
}

// CreateAccessCodeHandler issues a new access code for a visitor
func (a AccessCode) CreateAccessCodeHandler(w http.ResponseWriter, r *http.Request) {
	agent, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var req CreateAccessCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accessCode, err := a.Service.Create(ctx, req.Visitor, req.Unit, agent)
	if err != nil {
		writeAccessError("failed to create access code", w, err)
		return
	}

	writeJSON(w, http.StatusCreated, accessCode)
}

// VerifyAccessCodeHandler marks a presented code as used and returns its resolution
func (a AccessCode) VerifyAccessCodeHandler(w http.ResponseWriter, r *http.Request) {
	agent, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var req VerifyAccessCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.AccessCode == nil {
		config.ErrorStatus("accessCode is required", http.StatusBadRequest, w, access.ErrValidation)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	result, err := a.Service.Verify(ctx, *req.AccessCode, agent)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrCodeNotFound):
			api.GetMetrics().RecordRejection(api.RejectionNotFound)
		case errors.Is(err, access.ErrPropertyScopeMismatch):
			api.GetMetrics().RecordRejection(api.RejectionScopeMismatch)
		}
		writeAccessError("failed to verify access code", w, err)
		return
	}
	api.GetMetrics().RecordResolution(result.ResolutionCode)

	writeJSON(w, http.StatusOK, result)
}

// AccessCodeHistoryHandler lists the codes of a property verified in a day range
func (a AccessCode) AccessCodeHistoryHandler(w http.ResponseWriter, r *http.Request) {
	agent, ok := requireAgent(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit, err := intParam(query.Get("limit"))
	if err != nil {
		config.ErrorStatus("limit must be a number", http.StatusBadRequest, w, err)
		return
	}
	page, err := intParam(query.Get("page"))
	if err != nil {
		config.ErrorStatus("page must be a number", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accessCodes, err := a.Service.History(ctx, access.HistoryRequest{
		PropertyID: mux.Vars(r)["propertyId"],
		From:       query.Get("from"),
		To:         query.Get("to"),
		Limit:      limit,
		Page:       page,
	}, agent)
	if err != nil {
		writeAccessError("failed to get access code history", w, err)
		return
	}

	if agent.Privileged() {
		writeJSON(w, http.StatusOK, accessCodes)
		return
	}
	masked := make([]models.MaskedAccessCode, len(accessCodes))
	for i, accessCode := range accessCodes {
		masked[i] = accessCode.Mask()
	}
	writeJSON(w, http.StatusOK, masked)
}

// AccessCodeByIDHandler returns a single access code with its visitor
func (a AccessCode) AccessCodeByIDHandler(w http.ResponseWriter, r *http.Request) {
	agent, ok := requireAgent(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accessCode, err := a.Service.Get(ctx, mux.Vars(r)["accessCodeId"], agent)
	if err != nil {
		writeAccessError("failed to get access code", w, err)
		return
	}

	writeJSON(w, http.StatusOK, accessCode)
}

// MissingDetailsHandler fills in the visitor of an access code
func (a AccessCode) MissingDetailsHandler(w http.ResponseWriter, r *http.Request) {
	agent, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var details models.VisitorDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accessCode, err := a.Service.ApplyMissingDetails(ctx, mux.Vars(r)["accessCodeId"], details, agent)
	if err != nil {
		writeAccessError("failed to update visitor details", w, err)
		return
	}

	writeJSON(w, http.StatusOK, accessCode)
}

func requireAgent(w http.ResponseWriter, r *http.Request) (access.Agent, bool) {
	agent, ok := api.AgentFromContext(r.Context())
	if !ok {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, nil)
	}
	return agent, ok
}

// writeAccessError maps engine errors onto status codes
func writeAccessError(message string, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrValidation):
		config.ErrorStatus(message, http.StatusBadRequest, w, err)
	case errors.Is(err, access.ErrCodeNotFound):
		config.ErrorStatus(message, http.StatusNotFound, w, access.ErrCodeNotFound)
	case errors.Is(err, access.ErrPropertyScopeMismatch):
		config.ErrorStatus(message, http.StatusForbidden, w, access.ErrPropertyScopeMismatch)
	case errors.Is(err, access.ErrCodeSpaceExhausted):
		api.GetMetrics().RecordRejection(api.RejectionExhausted)
		config.ErrorStatus(message, http.StatusServiceUnavailable, w, access.ErrCodeSpaceExhausted)
	default:
		config.ErrorStatus(message, http.StatusInternalServerError, w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		zap.S().Warnw("failed to write response", "error", err)
	}
}

func intParam(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
