package mail

import (
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

type MailService struct {
	dialer *gomail.Dialer
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASSWORD")
	return &MailService{
		dialer: gomail.NewDialer(host, port, user, pass),
	}
}

// Enabled сообщает, настроена ли отправка почты.
// Без SMTP_HOST письма не отправляются, регистрация при этом работает.
func Enabled() bool {
	return os.Getenv("SMTP_HOST") != ""
}

// SendWelcomeMail отправляет приветственное письмо после регистрации.
func (m *MailService) SendWelcomeMail(to, name string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", os.Getenv("SMTP_USER"))
	message.SetHeader("To", to)
	message.SetHeader("Subject", "Добро пожаловать в dail")
	message.SetBody("text/html", `
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px; background-color: #f5f5f5;">
			<h2 style="color: #333; text-align: center;">Добро пожаловать в dail</h2>
			<p>Здравствуйте, `+name+`!</p>
			<p>Ваш личный календарь готов. Войдите и добавьте первое событие:</p>
			<p style="text-align: center;"><a href="`+os.Getenv("CLIENT_URL")+`/sign-in" style="display: inline-block; padding: 10px 20px; background-color: #007bff; color: #fff; text-decoration: none; border-radius: 5px;">Открыть календарь</a></p>
			<p>С уважением, команда dail.</p>
		</div>
	`)
	return m.dialer.DialAndSend(message)
}
