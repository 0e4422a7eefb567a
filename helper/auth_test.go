package helper

import (
	"testing"

	"event_access/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrganizationFromClaim(t *testing.T) {
	db := newTestDB(t)

	orgId := uint(7)
	got, err := ResolveOrganization(db, model.TokenClaim{AccountId: 1, OrganizationId: &orgId})
	require.NoError(t, err)
	assert.Equal(t, uint(7), got)
}

func TestResolveOrganizationFallsBackToAccount(t *testing.T) {
	db := newTestDB(t)

	org := model.Organization{Name: "Imagine Lab"}
	require.NoError(t, db.Create(&org).Error)

	account := model.Account{
		Username: "rrpp1", Email: "rrpp1@example.com", Password: "x",
		Role: "rrpp", Active: true, OrganizationId: &org.ID,
	}
	require.NoError(t, db.Create(&account).Error)

	// claim cũ không mang organizationId: tra lại profile trong DB
	got, err := ResolveOrganization(db, model.TokenClaim{AccountId: account.ID})
	require.NoError(t, err)
	assert.Equal(t, org.ID, got)
}

func TestResolveOrganizationWithoutAnyOrg(t *testing.T) {
	db := newTestDB(t)

	account := model.Account{
		Username: "orphan", Email: "orphan@example.com", Password: "x",
		Role: "staff", Active: true,
	}
	require.NoError(t, db.Create(&account).Error)

	_, err := ResolveOrganization(db, model.TokenClaim{AccountId: account.ID})
	assert.ErrorIs(t, err, ErrNoOrganization)
}

func TestClaimFromTokenReadsAccountToken(t *testing.T) {
	orgId := uint(3)
	signed, err := GenerateAccessToken(model.TokenClaim{
		AccountId: 9, Username: "staff1", Role: "staff", OrganizationId: &orgId,
	})
	require.NoError(t, err)

	token, err := ParseToken(signed)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claim, ok := claimFromToken(token)
	require.True(t, ok)
	assert.Equal(t, uint(9), claim.AccountId)
	assert.Equal(t, "staff1", claim.Username)
	require.NotNil(t, claim.OrganizationId)
	assert.Equal(t, orgId, *claim.OrganizationId)
}

func TestClaimFromTokenRejectsDeviceToken(t *testing.T) {
	// token thiết bị ký cùng secret nhưng không có accountId: phải trả false,
	// không panic
	signed, err := GenerateDeviceToken(&model.Device{DeviceId: "dev-1", OrganizationId: 3})
	require.NoError(t, err)

	token, err := ParseToken(signed)
	require.NoError(t, err)
	require.True(t, token.Valid)

	_, ok := claimFromToken(token)
	assert.False(t, ok)
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("1234")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("1234", hash))
	assert.False(t, CheckPasswordHash("4321", hash))
}
