package utils

import (
	"edumitra/config"
	"fmt"
	"log"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// SnapClient is the shared Midtrans Snap client, initialized at bootstrap.
var SnapClient snap.Client

// MockOrderPrefix marks orders that never touched a live gateway. The
// ledger treats them like any other order, which keeps the engine
// exercisable without gateway credentials.
const MockOrderPrefix = "MOCK-"

// InitPaymentGateway configures the Snap client (sandbox environment).
func InitPaymentGateway() {
	if config.AppConfig.MidtransServerKey == "" {
		log.Println("[GATEWAY] No server key configured, running in mock-order mode")
		return
	}
	SnapClient.New(config.AppConfig.MidtransServerKey, midtrans.Sandbox)
}

// GatewayOrder is what the caller needs to take a payment: an order id and,
// for live orders, the gateway redirect.
type GatewayOrder struct {
	OrderID     string
	SnapToken   string
	RedirectURL string
}

// CreatePaymentOrder creates a gateway order for an enrollment charge. In
// mock mode (or with no server key) the order is synthesized locally.
func CreatePaymentOrder(enrollmentID uint, amount float64, name, email string) (*GatewayOrder, error) {
	orderID := fmt.Sprintf("ENR-%d-%s", enrollmentID, uuid.New().String()[:8])

	if config.AppConfig.PaymentMockMode || config.AppConfig.MidtransServerKey == "" {
		return &GatewayOrder{OrderID: MockOrderPrefix + orderID}, nil
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: int64(amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: name,
			Email: email,
		},
	}

	resp, err := SnapClient.CreateTransaction(req)
	if err != nil {
		return nil, err
	}

	return &GatewayOrder{
		OrderID:     orderID,
		SnapToken:   resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// IsMockOrder reports whether an order id came from the mock path.
func IsMockOrder(orderID string) bool {
	return strings.HasPrefix(orderID, MockOrderPrefix)
}

// CheckOrderStatus polls the gateway for the current transaction status of
// an order. Used by the reconciliation sweep for stale PENDING payments.
func CheckOrderStatus(orderID string) (string, error) {
	if IsMockOrder(orderID) {
		return "settlement", nil
	}

	client := resty.New()
	resp, err := client.R().
		SetBasicAuth(config.AppConfig.MidtransServerKey, "").
		SetHeader("Accept", "application/json").
		SetResult(map[string]interface{}{}).
		Get(fmt.Sprintf("%s/%s/status", config.AppConfig.GatewayStatusURL, orderID))
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("gateway status check failed for %s: %d", orderID, resp.StatusCode())
	}

	body, ok := resp.Result().(*map[string]interface{})
	if !ok || body == nil {
		return "", fmt.Errorf("unexpected gateway response for %s", orderID)
	}
	status, _ := (*body)["transaction_status"].(string)
	if status == "" {
		return "", fmt.Errorf("gateway response missing transaction_status for %s", orderID)
	}
	return status, nil
}
