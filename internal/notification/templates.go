package notification

import "fmt"

// OrderConfirmation builds the buyer-facing confirmation email.
func OrderConfirmation(to, name, orderNumber, totalAmount string) Email {
	return Email{
		To:      to,
		Subject: fmt.Sprintf("Order %s confirmed", orderNumber),
		Body: fmt.Sprintf(
			"<p>Hi %s,</p><p>Thanks for your order! Your order <strong>%s</strong> "+
				"has been placed. Total payable: ৳%s.</p>"+
				"<p>We will notify you once it ships.</p>",
			name, orderNumber, totalAmount,
		),
	}
}

// OpsNewOrderAlert builds the internal new-order notification.
func OpsNewOrderAlert(to, orderNumber, customerName, totalAmount string) Email {
	return Email{
		To:      to,
		Subject: fmt.Sprintf("New order %s", orderNumber),
		Body: fmt.Sprintf(
			"<p>New order <strong>%s</strong> from %s. Total: ৳%s.</p>",
			orderNumber, customerName, totalAmount,
		),
	}
}
