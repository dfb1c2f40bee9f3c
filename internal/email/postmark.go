package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/royalbikeclub/royalbike/internal/model"
)

const postmarkURL = "https://api.postmarkapp.com/email"

// Client sends transactional mail through Postmark. One configured client is
// shared by every flow that sends mail.
type Client struct {
	serverToken string
	fromEmail   string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	TextBody string `json:"TextBody"`
}

// SendOTP mails a one-time code for the login or password-reset flow.
func (c *Client) SendOTP(to, code, purpose string) error {
	var subject string
	switch purpose {
	case model.PurposeReset:
		subject = "Your OTP for Password Reset"
	default:
		subject = "Your OTP for Login"
	}

	body := fmt.Sprintf("Your OTP is %s. It will expire in 10 minutes.", code)
	return c.send(postmarkEmail{
		From:     c.fromEmail,
		To:       to,
		Subject:  subject,
		TextBody: body,
	})
}

// SendBookingConfirmation mails the rental summary for a confirmed order.
func (c *Client) SendBookingConfirmation(order *model.Order, bikeName string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour bike rental has been successfully booked! Here are your booking details:\n\nBooking Reference: %s\nBike Name: %s\nRental Days: %d\nTotal Cost: %.2f\nPayment Method: %s\n\nThank you for renting with Royal Bike Club!",
		order.RenterName, order.Reference, bikeName, order.RentalDays, order.TotalCost, order.PaymentMethod,
	)
	return c.send(postmarkEmail{
		From:     c.fromEmail,
		To:       order.RenterEmail,
		Subject:  "Bike Rental Confirmation",
		TextBody: body,
	})
}

func (c *Client) send(payload postmarkEmail) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", postmarkURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
