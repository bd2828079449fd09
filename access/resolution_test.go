package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/wepass-api/access"
	"github.com/linesmerrill/wepass-api/models"
)

var created = time.Date(2024, 1, 10, 8, 0, 0, 0, time.FixedZone("UTC-06:00", -6*3600))

func completeVisitor() *models.User {
	return &models.User{FirstName: "David", LastName: "Bowie", DocumentID: "112880431"}
}

func TestIsExpired_Boundary(t *testing.T) {
	assert.False(t, access.IsExpired(created, created.Add(7*time.Hour-time.Second), access.DefaultValidity))
	assert.False(t, access.IsExpired(created, created.Add(7*time.Hour), access.DefaultValidity))
	assert.True(t, access.IsExpired(created, created.Add(7*time.Hour+time.Second), access.DefaultValidity))
}

func TestResolve_Success(t *testing.T) {
	code := models.AccessCode{CreatedAt: created}

	resolution, missing := access.Resolve(code, completeVisitor(), created.Add(time.Hour), access.DefaultValidity)

	assert.Equal(t, models.ResolutionSuccess, resolution)
	assert.Empty(t, missing)
}

func TestResolve_ExpiredAfterWindow(t *testing.T) {
	code := models.AccessCode{CreatedAt: created}

	resolution, _ := access.Resolve(code, completeVisitor(), created.Add(7*time.Hour+time.Second), access.DefaultValidity)
	assert.Equal(t, models.ResolutionExpired, resolution)

	resolution, _ = access.Resolve(code, completeVisitor(), created.Add(7*time.Hour-time.Second), access.DefaultValidity)
	assert.Equal(t, models.ResolutionSuccess, resolution)
}

func TestResolve_ExpiredTakesPrecedenceOverMissingInfo(t *testing.T) {
	code := models.AccessCode{CreatedAt: created}
	visitor := &models.User{FirstName: "David"}

	resolution, missing := access.Resolve(code, visitor, created.Add(8*time.Hour), access.DefaultValidity)

	assert.Equal(t, models.ResolutionExpired, resolution)
	assert.Empty(t, missing)
}

func TestResolve_MissingInfoListsFieldsInOrder(t *testing.T) {
	code := models.AccessCode{CreatedAt: created}

	resolution, missing := access.Resolve(code, &models.User{LastName: "Bowie"}, created.Add(time.Hour), access.DefaultValidity)

	assert.Equal(t, models.ResolutionMissingInfo, resolution)
	assert.Equal(t, []string{"firstName", "documentID"}, missing)
}

func TestResolve_MissingVisitor(t *testing.T) {
	code := models.AccessCode{CreatedAt: created}

	resolution, missing := access.Resolve(code, nil, created.Add(time.Hour), access.DefaultValidity)

	assert.Equal(t, models.ResolutionMissingInfo, resolution)
	assert.Equal(t, []string{"firstName", "lastName", "documentID"}, missing)
}

func TestResolve_UsesVerificationInstant(t *testing.T) {
	verifiedAt := created.Add(time.Hour)
	code := models.AccessCode{CreatedAt: created, Verified: true, VerifiedAt: &verifiedAt}

	// a day later the code is still resolved as of its verification
	resolution, _ := access.Resolve(code, completeVisitor(), created.Add(24*time.Hour), access.DefaultValidity)

	assert.Equal(t, models.ResolutionSuccess, resolution)
}
