// Package docs WePass Access API.
//
// Documentation of the WePass access code API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
//
//    SecurityDefinitions:
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/wepass-api/api"
	"github.com/linesmerrill/wepass-api/api/handlers"
	"github.com/linesmerrill/wepass-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/access/create access createAccessCode
// Issues a new access code for a visitor to enter a unit.
// responses:
//   201: accessCodeResponse
//   400: errorResponse
//   503: errorResponse

// swagger:parameters createAccessCode
type createAccessCodeParamsWrapper struct {
	// in:body
	Body handlers.CreateAccessCodeRequest
}

// A single access code
// swagger:response accessCodeResponse
type accessCodeResponseWrapper struct {
	// in:body
	Body models.AccessCode
}

// swagger:route POST /api/v1/access/verify access verifyAccessCode
// Verifies a presented access code. resolutionCode is 1 for success, 2 when
// visitor details are missing and 3 when the code has expired.
// responses:
//   200: verificationResponse
//   403: errorResponse
//   404: errorResponse
//   429: errorResponse

// swagger:parameters verifyAccessCode
type verifyAccessCodeParamsWrapper struct {
	// in:body
	Body handlers.VerifyAccessCodeRequest
}

// The resolution of a verification
// swagger:response verificationResponse
type verificationResponseWrapper struct {
	// in:body
	Body models.VerificationResult
}

// swagger:route GET /api/v1/access/history/{propertyId} access accessCodeHistory
// Lists the access codes of a property verified between from and to, both
// given as days in the property timezone.
// responses:
//   200: historyResponse
//   400: errorResponse
//   403: errorResponse

// swagger:parameters accessCodeHistory
type accessCodeHistoryParamsWrapper struct {
	// in:path
	PropertyID string `json:"propertyId"`
	// in:query
	From string `json:"from"`
	// in:query
	To string `json:"to"`
	// in:query
	Limit int `json:"limit"`
	// in:query
	Page int `json:"page"`
}

// Verified access codes, the verified flag is only shown to administrators
// swagger:response historyResponse
type historyResponseWrapper struct {
	// in:body
	Body []models.MaskedAccessCode
}

// swagger:route GET /api/v1/access/{accessCodeId} access accessCodeByID
// Gets a single access code with its visitor.
// responses:
//   200: populatedAccessCodeResponse
//   404: errorResponse

// swagger:route PUT /api/v1/access/{accessCodeId}/missing-details access missingDetails
// Fills in the missing details of the visitor of an access code.
// responses:
//   200: populatedAccessCodeResponse
//   400: errorResponse

// swagger:parameters accessCodeByID missingDetails
type accessCodeIDParamsWrapper struct {
	// in:path
	AccessCodeID string `json:"accessCodeId"`
}

// swagger:parameters missingDetails
type missingDetailsParamsWrapper struct {
	// in:body
	Body models.VisitorDetails
}

// An access code with its visitor
// swagger:response populatedAccessCodeResponse
type populatedAccessCodeResponseWrapper struct {
	// in:body
	Body models.PopulatedAccessCode
}

// swagger:route GET /api/v1/metrics/summary metrics metricsSummary
// Request and verification counters since startup.
// responses:
//   200: metricsSummaryResponse

// swagger:response metricsSummaryResponse
type metricsSummaryResponseWrapper struct {
	// in:body
	Body api.Summary
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
