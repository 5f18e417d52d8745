package controller

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/gorm"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/database"
	"rentora_backend/pkg/email"
	"rentora_backend/pkg/lifecycle"
	"rentora_backend/pkg/utils/jwt"
)

// CompletePayment confirms a pending payment. Completion is idempotent:
// re-confirming an already-completed payment returns it unchanged.
func CompletePayment(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	payment, err := lifecycleStore.GetPayment(c.Context(), uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}
	if payment.PayerID != claims.UserID && claims.Role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to update this payment",
		})
	}

	payment, err = paymentLedger.Complete(c.Context(), uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}

	sendPaymentConfirmation(payment)

	return c.JSON(fiber.Map{
		"payment": payment,
		"message": "Payment completed, your listing will be reviewed shortly",
	})
}

// CancelPayment marks the caller's pending payment as failed.
func CancelPayment(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	payment, err := lifecycleStore.GetPayment(c.Context(), uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}
	if payment.PayerID != claims.UserID && claims.Role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to update this payment",
		})
	}

	payment, err = paymentLedger.Fail(c.Context(), uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}

	return c.JSON(fiber.Map{
		"payment": payment,
		"message": "Payment cancelled",
	})
}

// RefundPayment is admin-only. The listing is pulled out of public view but
// keeps its expiry date; elapsed visibility is not compensated.
func RefundPayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	payment, err := paymentLedger.Refund(c.Context(), uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}

	return c.JSON(fiber.Map{
		"payment": payment,
		"message": "Payment refunded",
	})
}

// ListMyPayments returns the caller's payment history, most recent first.
func ListMyPayments(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var payments []model.Payment
	if err := database.GetDB().Where("payer_id = ?", claims.UserID).
		Order("created_at desc").
		Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch payments",
		})
	}

	return c.JSON(payments)
}

// CreateCheckoutSession opens a Stripe Checkout session for a pending
// payment. The payment's transaction code rides along as the client
// reference so the webhook can find it again.
func CreateCheckoutSession(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	payment, err := lifecycleStore.GetPayment(c.Context(), uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}
	if payment.PayerID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to pay for this payment",
		})
	}
	if payment.Status != model.PaymentPending {
		return lifecycleError(c, lifecycle.ErrInvalidTransition)
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(payment.TransactionCode),
		SuccessURL:        stripe.String(os.Getenv("STRIPE_SUCCESS_URL")),
		CancelURL:         stripe.String(os.Getenv("STRIPE_CANCEL_URL")),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(payment.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Listing visibility package"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	checkoutSession, err := session.New(params)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create checkout session",
		})
	}

	return c.JSON(fiber.Map{
		"checkout_url": checkoutSession.URL,
	})
}

// HandleStripeWebhook completes payments confirmed by Stripe Checkout. The
// ledger tolerates redelivery, so a retried event is a harmless no-op.
func HandleStripeWebhook(c *fiber.Ctx) error {
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")

	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEvent(payload, signatureHeader, webhookSecret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	log.Printf("Processing Stripe webhook event: %s", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		var sessionData struct {
			ID                string `json:"id"`
			ClientReferenceID string `json:"client_reference_id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &sessionData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		var payment model.Payment
		if err := database.DB.Where("transaction_code = ?", sessionData.ClientReferenceID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Checkout session %s references unknown payment %s", sessionData.ID, sessionData.ClientReferenceID)
				return c.SendStatus(fiber.StatusOK)
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not look up payment",
			})
		}

		completed, err := paymentLedger.Complete(c.Context(), payment.ID)
		if err != nil {
			// non-2xx makes Stripe redeliver; completion is idempotent
			return lifecycleError(c, err)
		}

		sendPaymentConfirmation(completed)
		log.Printf("Payment %d completed via checkout session %s", completed.ID, sessionData.ID)
	}

	return c.SendStatus(fiber.StatusOK)
}

// sendPaymentConfirmation is fire-and-forget; delivery failures only log.
func sendPaymentConfirmation(payment *model.Payment) {
	if email.GlobalEmailService == nil {
		return
	}

	var payer model.User
	if err := database.GetDB().First(&payer, payment.PayerID).Error; err != nil {
		return
	}
	var listing model.Listing
	if err := database.GetDB().First(&listing, payment.ListingID).Error; err != nil {
		return
	}

	if err := email.GlobalEmailService.SendPaymentConfirmationEmail(
		payer.Email, payer.FullName, listing.Title, payment.Amount, payment.TransactionCode,
	); err != nil {
		log.Printf("Could not send payment confirmation email: %v", err)
	}
}
