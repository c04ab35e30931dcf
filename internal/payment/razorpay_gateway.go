package payment

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"
	"github.com/riffrent/riffrent-api/internal/domain"
)

// razorpayGateway adapts Razorpay orders to the payment-intent contract the
// purchase flow consumes: an order's notes carry the intent metadata and the
// order id doubles as the client confirmation token for hosted checkout.
type razorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) domain.PaymentGateway {
	return &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *razorpayGateway) CreateIntent(ctx context.Context, amountMinor int, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	notes := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		notes[k] = v
	}

	orderData := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"notes":    notes,
	}

	order, err := g.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("payment order creation failed: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return nil, fmt.Errorf("payment provider returned no order id")
	}

	return &domain.PaymentIntent{
		ID:           orderID,
		ClientSecret: orderID,
		Status:       domain.PaymentStatusPending,
		Amount:       amountMinor,
		Currency:     currency,
		Metadata:     metadata,
	}, nil
}

func (g *razorpayGateway) RetrieveIntent(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	order, err := g.client.Order.Fetch(id, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment order: %w", err)
	}

	intent := &domain.PaymentIntent{
		ID:           id,
		ClientSecret: id,
		Status:       mapOrderStatus(order),
		Metadata:     map[string]string{},
	}

	if currency, ok := order["currency"].(string); ok {
		intent.Currency = currency
	}
	// JSON numbers come back as float64 from the SDK.
	if amountPaid, ok := order["amount_paid"].(float64); ok && amountPaid > 0 {
		intent.Amount = int(amountPaid)
	} else if amount, ok := order["amount"].(float64); ok {
		intent.Amount = int(amount)
	}
	if notes, ok := order["notes"].(map[string]interface{}); ok {
		for k, v := range notes {
			if s, ok := v.(string); ok {
				intent.Metadata[k] = s
			}
		}
	}

	return intent, nil
}

// mapOrderStatus folds Razorpay's order lifecycle into the payment-status
// set the purchase state machine understands.
func mapOrderStatus(order map[string]interface{}) domain.PaymentStatus {
	status, _ := order["status"].(string)
	switch status {
	case "paid":
		return domain.PaymentStatusSucceeded
	case "attempted":
		return domain.PaymentStatusProcessing
	case "created":
		return domain.PaymentStatusPending
	default:
		return domain.PaymentStatusFailed
	}
}
