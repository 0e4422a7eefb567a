package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintVerifyRoundtrip(t *testing.T) {
	signer := NewTokenSigner("super-secret")

	payload := QRPayload{
		EventId:   42,
		Type:      "invitation",
		Email:     "buyer@example.com",
		Timestamp: time.Now().UnixMilli(),
		Issuer:    7,
	}

	token, err := signer.Mint(payload)
	require.NoError(t, err)
	require.Contains(t, token, ".")

	got, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, payload, *got)
}

func TestMintIsDeterministic(t *testing.T) {
	signer := NewTokenSigner("super-secret")
	payload := QRPayload{EventId: 1, Type: "general", Email: "a@b.c", Timestamp: 1000, Issuer: 2}

	t1, err := signer.Mint(payload)
	require.NoError(t, err)
	t2, err := signer.Mint(payload)
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	signer := NewTokenSigner("super-secret")
	token, err := signer.Mint(QRPayload{EventId: 42, Type: "general", Email: "a@b.c", Timestamp: 1000, Issuer: 1})
	require.NoError(t, err)

	parts := strings.SplitN(token, ".", 2)
	require.Len(t, parts, 2)

	// Đổi một ký tự base64 của payload, giữ nguyên chữ ký
	body := []byte(parts[0])
	if body[0] == 'A' {
		body[0] = 'B'
	} else {
		body[0] = 'A'
	}
	tampered := string(body) + "." + parts[1]

	_, err = signer.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	signer := NewTokenSigner("super-secret")
	token, err := signer.Mint(QRPayload{EventId: 42, Type: "general", Email: "a@b.c", Timestamp: 1000, Issuer: 1})
	require.NoError(t, err)

	parts := strings.SplitN(token, ".", 2)
	sig := []byte(parts[1])
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}

	_, err = signer.Verify(parts[0] + "." + string(sig))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenSigner("secret-a").Mint(QRPayload{EventId: 1, Type: "general", Email: "a@b.c", Timestamp: 1, Issuer: 1})
	require.NoError(t, err)

	_, err = NewTokenSigner("secret-b").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	signer := NewTokenSigner("super-secret")

	cases := []string{
		"",
		"no-separator",
		".",
		"onlybody.",
		".onlysig",
		"a.b.c",
		"!!!not-base64!!!.abcdef",
	}
	for _, token := range cases {
		_, err := signer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyRejectsNonHexSignature(t *testing.T) {
	signer := NewTokenSigner("super-secret")
	token, err := signer.Mint(QRPayload{EventId: 1, Type: "general", Email: "a@b.c", Timestamp: 1, Issuer: 1})
	require.NoError(t, err)

	parts := strings.SplitN(token, ".", 2)
	_, err = signer.Verify(parts[0] + ".zzzz")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
