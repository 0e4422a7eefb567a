package helper

import (
	"errors"
	"event_access/config"
	"event_access/constants"
	"event_access/database"
	"event_access/model"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrNoOrganization = errors.New("user has no organization assigned")

func jwtSecret() []byte {
	return []byte(config.LoadApp().JWTSecret)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func GetUserByUsername(u string) (*model.Account, error) {
	db := database.DB
	var account model.Account
	if err := db.Where("username = ?", u).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func GenerateAccessToken(tokenClaim model.TokenClaim) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["accountId"] = tokenClaim.AccountId
	claims["username"] = tokenClaim.Username
	claims["role"] = tokenClaim.Role
	if tokenClaim.OrganizationId != nil {
		claims["organizationId"] = *tokenClaim.OrganizationId
	}
	claims["exp"] = time.Now().Add(time.Minute * 60).Unix()

	t, err := token.SignedString(jwtSecret())
	return t, err
}

func GenerateRefreshToken(tokenClaim model.TokenClaim) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["accountId"] = tokenClaim.AccountId
	claims["username"] = tokenClaim.Username
	claims["exp"] = time.Now().Add(time.Hour * 24 * 7).Unix()

	t, err := token.SignedString(jwtSecret())
	return t, err
}

// GenerateDeviceToken phát token cho thiết bị quét sau khi login bằng alias+PIN
func GenerateDeviceToken(device *model.Device) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["deviceId"] = device.DeviceId
	claims["organizationId"] = device.OrganizationId
	claims["exp"] = time.Now().Add(time.Hour * 12).Unix()

	t, err := token.SignedString(jwtSecret())
	return t, err
}

func ParseToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret(), nil
	})
}

// claimFromToken đọc claim account từ JWT. Token không mang accountId (ví dụ
// token thiết bị ký cùng secret) trả false, không bao giờ panic.
func claimFromToken(token *jwt.Token) (model.TokenClaim, bool) {
	tokenClaim, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.TokenClaim{}, false
	}

	rawId, ok := tokenClaim["accountId"].(float64)
	if !ok || rawId <= 0 {
		return model.TokenClaim{}, false
	}
	username, _ := tokenClaim["username"].(string)

	var orgId *uint
	if v, ok := tokenClaim["organizationId"].(float64); ok && v > 0 {
		id := uint(v)
		orgId = &id
	}

	return model.TokenClaim{
		AccountId:      uint(rawId),
		Username:       username,
		OrganizationId: orgId,
	}, true
}

// GetInfoAccountFromToken đọc claim từ Locals("user") và refresh role từ DB.
// Trả về claim, isAdmin, isRrpp.
func GetInfoAccountFromToken(c *fiber.Ctx) (model.TokenClaim, bool, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return model.TokenClaim{}, false, false
	}

	claim, ok := claimFromToken(token)
	if !ok {
		return model.TokenClaim{}, false, false
	}

	var account model.Account
	if err := database.DB.First(&account, claim.AccountId).Error; err != nil {
		return model.TokenClaim{}, false, false
	}
	claim.Role = account.Role

	return claim, account.Role == constants.ROLE_ADMIN, account.Role == constants.ROLE_RRPP
}

// ResolveOrganization xác định organization của principal theo chuỗi fallback:
// claim trong session trước, rồi mới tới profile trong DB. Không resolve được
// là lỗi cứng ErrNoOrganization, không phải filter im lặng.
func ResolveOrganization(db *gorm.DB, claim model.TokenClaim) (uint, error) {
	if claim.OrganizationId != nil && *claim.OrganizationId > 0 {
		return *claim.OrganizationId, nil
	}

	var account model.Account
	if err := db.First(&account, claim.AccountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoOrganization
		}
		return 0, err
	}
	if account.OrganizationId == nil || *account.OrganizationId == 0 {
		return 0, ErrNoOrganization
	}
	return *account.OrganizationId, nil
}
