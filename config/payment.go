package config

import (
	"fmt"
	"strconv"
	"strings"
)

// PayuConfig carries the PayU merchant credentials and endpoints. Key and
// salt stay server-side; only the key is ever included in the redirect form.
type PayuConfig struct {
	Key     string
	Salt    string
	BaseURL string // hosted payment page the form posts to

	SuccessURL string
	FailureURL string
}

// CashfreeConfig carries the Cashfree API credentials. ClientSecret is only
// sent on server-to-server order creation, never to a browser.
type CashfreeConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	APIVersion   string
}

// PaymentConfig is the environment-supplied payment surface of the app.
type PaymentConfig struct {
	Payu     PayuConfig
	Cashfree CashfreeConfig

	// TrialAmount is the fixed nominal charge per trial session.
	TrialAmount float64
	ProductInfo string
	FrontendURL string
}

// LoadPaymentConfig reads payment settings from the environment. PAYU_KEY
// and PAYU_SALT are required; everything else has a sandbox default.
func LoadPaymentConfig() (*PaymentConfig, error) {
	key := strings.TrimSpace(envOrDefault("PAYU_KEY", ""))
	salt := strings.TrimSpace(envOrDefault("PAYU_SALT", ""))
	if key == "" || salt == "" {
		return nil, fmt.Errorf("PAYU_KEY and PAYU_SALT must be set")
	}

	amount := 19.0
	if raw := strings.TrimSpace(envOrDefault("TRIAL_AMOUNT", "")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TRIAL_AMOUNT %q: %w", raw, err)
		}
		amount = parsed
	}

	frontend := strings.TrimRight(envOrDefault("FRONTEND_URL", "http://localhost:3000"), "/")

	return &PaymentConfig{
		Payu: PayuConfig{
			Key:        key,
			Salt:       salt,
			BaseURL:    envOrDefault("PAYU_BASE_URL", "https://test.payu.in/_payment"),
			SuccessURL: frontend + "/booking-details",
			FailureURL: frontend + "/trial-booking?payment=failed",
		},
		Cashfree: CashfreeConfig{
			ClientID:     envOrDefault("CASHFREE_CLIENT_ID", ""),
			ClientSecret: envOrDefault("CASHFREE_CLIENT_SECRET", ""),
			BaseURL:      envOrDefault("CASHFREE_BASE_URL", "https://sandbox.cashfree.com"),
			APIVersion:   envOrDefault("CASHFREE_API_VERSION", "2022-09-01"),
		},
		TrialAmount: amount,
		ProductInfo: envOrDefault("TRIAL_PRODUCT_INFO", "AchieveX Trial Session"),
		FrontendURL: frontend,
	}, nil
}
