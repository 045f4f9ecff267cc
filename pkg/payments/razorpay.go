package payments

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// Gateway is the order/verify contract the fee module needs from a
// payment provider.
type Gateway interface {
	// CreateOrder opens an order for the given amount in the smallest
	// currency unit and returns the provider's order ID.
	CreateOrder(amount int, currency, receipt string) (string, error)
	// VerifySignature checks the provider's callback signature.
	VerifySignature(orderID, paymentID, signature string) bool
	// KeyID returns the public key the checkout widget needs.
	KeyID() string
}

// RazorpayGateway implements Gateway on the Razorpay API.
type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
	secret string
}

// NewRazorpay constructs a RazorpayGateway.
func NewRazorpay(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
		secret: keySecret,
	}
}

// CreateOrder opens a Razorpay order.
func (g *RazorpayGateway) CreateOrder(amount int, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay create order: %w", err)
	}
	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("razorpay order response missing id")
	}
	return orderID, nil
}

// VerifySignature validates the checkout callback triple.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, g.secret)
}

// KeyID returns the public key for the checkout widget.
func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}
