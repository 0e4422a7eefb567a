package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrInvalidToken     = errors.New("malformed qr token")
	ErrInvalidSignature = errors.New("invalid qr signature")
)

// QRPayload được serialize theo thứ tự field khai báo, giữ chữ ký ổn định.
// Không thêm field vào giữa struct.
type QRPayload struct {
	EventId   uint   `json:"event_id"`
	Type      string `json:"type"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp"`
	Issuer    uint   `json:"issuer"`
}

// TokenSigner ký và verify token vé dạng base64(payload) + "." + hex(hmac).
// Secret nạp một lần từ config, không đọc env trong core.
type TokenSigner struct {
	secret []byte
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

func (s *TokenSigner) signature(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

func (s *TokenSigner) Mint(payload QRPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw) + "." + hex.EncodeToString(s.signature(raw)), nil
}

// Verify trả về payload đã ký hoặc ErrInvalidToken / ErrInvalidSignature.
// So sánh HMAC bằng hmac.Equal (constant time), không bao giờ partial trust.
func (s *TokenSigner) Verify(token string) (*QRPayload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrInvalidToken
	}

	raw, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}

	expected, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidSignature
	}

	if !hmac.Equal(s.signature(raw), expected) {
		return nil, ErrInvalidSignature
	}

	var payload QRPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrInvalidToken
	}
	return &payload, nil
}
