package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"
)

// SendPasswordResetEmail envoie le lien de réinitialisation par SMTP
func SendPasswordResetEmail(to, resetURL string) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@veltra.io"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject("Réinitialisation de votre mot de passe Veltra")
	msg.SetBodyString(mail.TypeTextHTML, fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body>
	<p>Bonjour,</p>
	<p>Une demande de réinitialisation de mot de passe a été faite pour votre compte.</p>
	<p><a href="%s">Réinitialiser mon mot de passe</a></p>
	<p>Ce lien expire dans 30 minutes. Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.</p>
</body>
</html>`, resetURL))

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail de réinitialisation à", to)
	return client.DialAndSend(msg)
}
