// Package notifications defines the emails the marketplace sends.
package notifications

import (
	"fmt"

	"github.com/plantnet/plantnet/pkg/notification"
)

var mailOnly = []string{notification.ChannelMail}

// OrderPlaced confirms a purchase to the customer.
type OrderPlaced struct {
	TransactionID string
}

func (OrderPlaced) Via() []string { return mailOnly }

func (n OrderPlaced) ToMail() notification.MailData {
	return notification.MailData{
		Subject: "Order Successful",
		Message: fmt.Sprintf("You have placed an order successfully. Transaction id: %s", n.TransactionID),
	}
}

// OrderReceived alerts the seller that an order needs processing.
type OrderReceived struct {
	CustomerName string
}

func (OrderReceived) Via() []string { return mailOnly }

func (n OrderReceived) ToMail() notification.MailData {
	return notification.MailData{
		Subject: "Hurry!, You have an order to process",
		Message: fmt.Sprintf("Get the plants ready for %s", n.CustomerName),
	}
}

// Registered is fired when a user signs in for the first time. It carries
// no address or content, so the dispatcher records it as skipped.
type Registered struct{}

func (Registered) Via() []string { return mailOnly }

func (Registered) ToMail() notification.MailData { return notification.MailData{} }
