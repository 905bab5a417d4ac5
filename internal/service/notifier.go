package service

import (
	"context"
	"fmt"
	"log"

	"vital/internal/models"
	"vital/pkg/mailer"
)

// Notifier sends customer-facing confirmation email. It never retries: a
// failed send is acceptable loss since documents stay retrievable from the
// dashboard.
type Notifier struct {
	mail mailer.Sender
	docs *DocumentService
}

func NewNotifier(mail mailer.Sender, docs *DocumentService) *Notifier {
	return &Notifier{mail: mail, docs: docs}
}

// OrderConfirmed emails the receipt, attaching the LMN when one was issued.
func (n *Notifier) OrderConfirmed(ctx context.Context, order *models.Order, lmn *models.LmnRecord) error {
	msg := mailer.Message{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Your order %s is confirmed", order.OrderNumber),
		HTML:    orderConfirmedHTML(order, lmn),
	}
	if lmn != nil {
		content, err := n.docs.LmnPDF(ctx, lmn.LmnNumber)
		if err != nil {
			// Send without the attachment rather than not at all.
			log.Printf("[notifier] render %s for email: %v", lmn.LmnNumber, err)
		} else {
			msg.Attachment = &mailer.Attachment{
				Filename: lmn.LmnNumber + ".pdf",
				Content:  content,
			}
		}
	}
	return n.mail.Send(ctx, msg)
}

// MembershipStarted welcomes a new member.
func (n *Notifier) MembershipStarted(ctx context.Context, m *models.Membership) error {
	return n.mail.Send(ctx, mailer.Message{
		To:      m.CustomerEmail,
		Subject: "Welcome to your membership",
		HTML: fmt.Sprintf("<p>Your <strong>%s</strong> membership is active.</p>"+
			"<p>Manage your plan any time from your dashboard.</p>", m.PlanTier),
	})
}

func orderConfirmedHTML(order *models.Order, lmn *models.LmnRecord) string {
	body := fmt.Sprintf("<p>Thanks for your order.</p>"+
		"<p>Order number: <strong>%s</strong><br>Total: %d.%02d %s</p>",
		order.OrderNumber, order.TotalAmountCents/100, order.TotalAmountCents%100, order.Currency)
	if lmn != nil {
		body += fmt.Sprintf("<p>Your Letter of Medical Necessity (%s) is attached "+
			"and available from your dashboard for HSA/FSA reimbursement.</p>", lmn.LmnNumber)
	}
	return body
}
