package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Keoroanthony/go-storefront/internal/utils"
)

var ErrContactSend = errors.New("contact message not sent")

var issueLabels = map[string]string{
	"DELIVERY": "Delivery complaint",
	"PRODUCT":  "Product issue",
	"PAYMENT":  "Payment issue",
	"OTHER":    "Other",
}

type ContactForm struct {
	Name      string `form:"name" json:"name" binding:"required,max=120"`
	Email     string `form:"email" json:"email" binding:"required,email"`
	IssueType string `form:"issue_type" json:"issue_type" binding:"required,oneof=DELIVERY PRODUCT PAYMENT OTHER"`
	OrderCode string `form:"order_code" json:"order_code" binding:"max=20"`
	Message   string `form:"message" json:"message" binding:"required"`
}

func (f ContactForm) email(to string) Email {
	label := issueLabels[f.IssueType]

	subject := "Contact: " + label
	if f.OrderCode != "" {
		subject += " | Order " + f.OrderCode
	}

	lines := []string{
		"Name: " + f.Name,
		"Email: " + f.Email,
		"Reason: " + label,
	}
	if f.OrderCode != "" {
		lines = append(lines, "Order Code: "+f.OrderCode)
	}
	lines = append(lines, "", "Message:", f.Message)

	return Email{
		To:      []string{to},
		ReplyTo: []string{f.Email},
		Subject: subject,
		Text:    strings.Join(lines, "\n"),
	}
}

// SendContactMessage forwards a contact form to the shop inbox with the
// sender as reply-to.
func SendContactMessage(ctx context.Context, mailer Mailer, to string, form ContactForm) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.IssueType = strings.ToUpper(strings.TrimSpace(form.IssueType))
	form.OrderCode = strings.TrimSpace(form.OrderCode)
	form.Message = strings.TrimSpace(form.Message)

	if err := utils.Validate(form).OrNil(); err != nil {
		return err
	}
	if mailer == nil {
		return ErrContactSend
	}
	if err := mailer.Send(ctx, form.email(to)); err != nil {
		return fmt.Errorf("%w: %v", ErrContactSend, err)
	}
	return nil
}
