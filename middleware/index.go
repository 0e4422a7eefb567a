package middleware

import (
	"errors"
	"strings"

	"event_access/helper"
	"event_access/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")

		if token == "" {
			// check header Authorization: Bearer xxx
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if token == "" {
			return utils.ErrorResponse(c, 401, "Missing token", errors.New("no token"))
		}

		jwtToken, err := helper.ParseToken(token)
		if err != nil || !jwtToken.Valid {
			return utils.ErrorResponse(c, 401, "Invalid token", err)
		}

		// Token thiết bị ký cùng secret nhưng không có accountId: chặn ở đây,
		// route staff không nhận token thiết bị
		claims, ok := jwtToken.Claims.(jwt.MapClaims)
		if !ok {
			return utils.ErrorResponse(c, 401, "Invalid token", errors.New("bad claims"))
		}
		if _, ok := claims["accountId"].(float64); !ok {
			return utils.ErrorResponse(c, 401, "Invalid token", errors.New("not an account token"))
		}

		c.Locals("user", jwtToken)
		return c.Next()
	}
}

// DeviceProtected bảo vệ các route của thiết bị quét (token phát bởi login_device)
func DeviceProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return utils.ErrorResponse(c, 401, "Missing device token", errors.New("no token"))
		}

		jwtToken, err := helper.ParseToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil || !jwtToken.Valid {
			return utils.ErrorResponse(c, 401, "Invalid device token", err)
		}

		claims := jwtToken.Claims.(jwt.MapClaims)
		deviceId, _ := claims["deviceId"].(string)
		if deviceId == "" {
			return utils.ErrorResponse(c, 401, "Invalid device token", errors.New("not a device token"))
		}

		c.Locals("deviceId", deviceId)
		return c.Next()
	}
}
