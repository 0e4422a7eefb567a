package utils

import (
	"bytes"
	"event_access/config"
	"html/template"
	"io"
	"log"

	"gopkg.in/gomail.v2"
)

// TicketEmailData dữ liệu cho template email vé
type TicketEmailData struct {
	BuyerName string
	EventName string
	Venue     string
	Address   string
	City      string
	Date      string
	Time      string
	Type      string
	TicketId  uint
}

// Mailer gửi email qua SMTP, cấu hình truyền vào một lần từ config.App
type Mailer struct {
	cfg *config.App
}

func NewMailer(cfg *config.App) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendTicketEmail gửi email vé kèm QR PNG (async, lỗi chỉ log — không bao giờ
// rollback vé đã phát hành vì gửi mail thất bại)
func (m *Mailer) SendTicketEmail(to string, data TicketEmailData, qrPNG []byte, onSent func()) {
	go func() {
		tmplPath := "templates/ticket_email.html"
		tmpl, err := template.ParseFiles(tmplPath)
		if err != nil {
			log.Printf("failed to load email template: %v", err)
			return
		}

		var body bytes.Buffer
		if err := tmpl.Execute(&body, data); err != nil {
			log.Printf("failed to render email template: %v", err)
			return
		}

		msg := gomail.NewMessage()
		msg.SetHeader("From", m.cfg.SMTPFrom)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", "Tu entrada para "+data.EventName)
		msg.SetBody("text/html", body.String())

		msg.Embed("ticket-qr.png", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(qrPNG))
			return err
		}))

		d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
		if err := d.DialAndSend(msg); err != nil {
			log.Printf("failed to send ticket email to %s: %v", to, err)
			return
		}

		if onSent != nil {
			onSent()
		}
	}()
}

// SendPlainEmail dùng cho mail vận hành (báo cáo check-in hàng ngày)
func (m *Mailer) SendPlainEmail(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.SMTPFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	return d.DialAndSend(msg)
}
