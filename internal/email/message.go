// Package email builds workflow notification messages. Delivery lives in
// the ses and noop subpackages.
package email

import (
	"fmt"
	"html"
	"strings"

	"erpdesk/internal/domain"
)

// Message is a rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

var kindLabels = map[domain.DocumentKind]string{
	domain.KindExpense:   "Expense report",
	domain.KindQuotation: "Quotation",
	domain.KindEInvoice:  "E-invoice",
	domain.KindEWayBill:  "E-way bill",
	domain.KindBooking:   "Booking",
}

// KindLabel returns the human-readable name of a document kind.
func KindLabel(kind domain.DocumentKind) string {
	if l, ok := kindLabels[kind]; ok {
		return l
	}
	return string(kind)
}

// DocumentURL links to a document in the web app.
func DocumentURL(frontendURL string, doc *domain.Document) string {
	return fmt.Sprintf("%s/documents/%s", strings.TrimRight(frontendURL, "/"), doc.ID)
}

// ApprovalRequest asks an approver to review a document.
func ApprovalRequest(frontendURL, toName string, doc *domain.Document) Message {
	link := DocumentURL(frontendURL, doc)
	label := KindLabel(doc.Kind)
	amount := doc.Currency + " " + doc.Totals.GrandTotal.StringFixed(2)

	return Message{
		Subject: fmt.Sprintf("%s %s is waiting for your approval", label, doc.Code),
		Text: fmt.Sprintf("Hi %s,\n\n%s %s (%s) for %s is waiting for your approval:\n%s\n\nERPDesk",
			toName, label, doc.Code, doc.Title, amount, link),
		HTML: render(toName,
			fmt.Sprintf("%s <strong>%s</strong> (%s) for %s is waiting for your approval.",
				label, html.EscapeString(doc.Code), html.EscapeString(doc.Title), amount),
			"Review", link),
	}
}

// StatusChanged tells a document's creator about a workflow outcome.
func StatusChanged(frontendURL, toName string, doc *domain.Document) Message {
	link := DocumentURL(frontendURL, doc)
	label := KindLabel(doc.Kind)

	return Message{
		Subject: fmt.Sprintf("%s %s is now %s", label, doc.Code, doc.Status),
		Text: fmt.Sprintf("Hi %s,\n\n%s %s (%s) is now %s.\n%s\n\nERPDesk",
			toName, label, doc.Code, doc.Title, doc.Status, link),
		HTML: render(toName,
			fmt.Sprintf("%s <strong>%s</strong> (%s) is now <strong>%s</strong>.",
				label, html.EscapeString(doc.Code), html.EscapeString(doc.Title), doc.Status),
			"Open document", link),
	}
}

func render(name, body, action, link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <p>Hi %s,</p>
  <p>%s</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">%s</a>
  </p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">ERPDesk</p>
</body>
</html>`, html.EscapeString(name), body, link, action, link)
}
