package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

// Config trả về giá trị biến môi trường theo key, load .env một lần duy nhất
func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	})
	return os.Getenv(key)
}

// App giữ toàn bộ cấu hình process-wide, build một lần ở main và truyền tường minh
// vào các collaborator (signer, mailer) — không đọc env lung tung trong core logic.
type App struct {
	QRSecret  string
	JWTSecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	RedisAddr string
}

var (
	app     *App
	appOnce sync.Once
)

func LoadApp() *App {
	appOnce.Do(func() {
		port, err := strconv.Atoi(Config("SMTP_PORT"))
		if err != nil || port == 0 {
			port = 587
		}

		secret := Config("QR_SECRET_KEY")
		if secret == "" {
			log.Println("QR_SECRET_KEY not set, using insecure default")
			secret = "default_secret_change_me"
		}

		app = &App{
			QRSecret:  secret,
			JWTSecret: Config("JWT_SECRET"),
			SMTPHost:  Config("SMTP_HOST"),
			SMTPPort:  port,
			SMTPUser:  Config("SMTP_USERNAME"),
			SMTPPass:  Config("SMTP_PASSWORD"),
			SMTPFrom:  Config("SMTP_FROM"),
			RedisAddr: Config("REDIS_ADDR"),
		}
	})
	return app
}
