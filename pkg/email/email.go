// pkg/email/email.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
)

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type WelcomeEmailData struct {
	Name string
}

type PaymentConfirmationData struct {
	Name            string
	ListingTitle    string
	Amount          int64
	TransactionCode string
}

type RenewalRequestedData struct {
	Name         string
	ListingTitle string
	Amount       int64
}

type ModerationResultData struct {
	Name         string
	ListingTitle string
}

func NewEmailService(apiKey string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      "Rentora <noreply@rentora.app>",
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("Resend API response: Status: %d, Body: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}

// Email sending methods
func (s *EmailService) SendWelcomeEmail(email, name string) error {
	data := WelcomeEmailData{
		Name: name,
	}
	return s.sendTemplateEmail(email, "Welcome to Rentora!", "welcome.html", data)
}

func (s *EmailService) SendPaymentConfirmationEmail(email, name, listingTitle string, amount int64, transactionCode string) error {
	data := PaymentConfirmationData{
		Name:            name,
		ListingTitle:    listingTitle,
		Amount:          amount,
		TransactionCode: transactionCode,
	}
	return s.sendTemplateEmail(email, "Payment received", "payment_confirmation.html", data)
}

func (s *EmailService) SendRenewalRequestedEmail(email, name, listingTitle string, amount int64) error {
	data := RenewalRequestedData{
		Name:         name,
		ListingTitle: listingTitle,
		Amount:       amount,
	}
	return s.sendTemplateEmail(email, "Renewal created for your listing", "renewal_requested.html", data)
}

func (s *EmailService) SendListingApprovedEmail(email, name, listingTitle string) error {
	data := ModerationResultData{
		Name:         name,
		ListingTitle: listingTitle,
	}
	return s.sendTemplateEmail(email, "Your listing is live!", "listing_approved.html", data)
}

func (s *EmailService) SendListingRejectedEmail(email, name, listingTitle string) error {
	data := ModerationResultData{
		Name:         name,
		ListingTitle: listingTitle,
	}
	return s.sendTemplateEmail(email, "Your listing was not approved", "listing_rejected.html", data)
}
