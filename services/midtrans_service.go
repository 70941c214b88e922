package services

import (
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// MidtransConfig menyimpan kredensial dan identitas merchant.
type MidtransConfig struct {
	ServerKey     string
	ClientKey     string
	IsProduction  bool
	MerchantID    string
	MerchantName  string
	MerchantEmail string
	MerchantPhone string
	WebhookURL    string
}

// MidtransService membungkus panggilan Core API Midtrans untuk pembayaran
// dine-in (QRIS). Billing langganan memakai SDK terpisah di BillingService.
type MidtransService struct {
	config     *MidtransConfig
	httpClient *http.Client
	baseURL    string
}

var (
	midtransService *MidtransService
	midtransOnce    sync.Once
)

const (
	midtransSandboxURL    = "https://api.sandbox.midtrans.com"
	midtransProductionURL = "https://api.midtrans.com"
)

// GetMidtransService mengembalikan instance singleton.
func GetMidtransService() *MidtransService {
	midtransOnce.Do(func() {
		isProduction := os.Getenv("MIDTRANS_ENV") == "production"

		baseURL := midtransSandboxURL
		if isProduction {
			baseURL = midtransProductionURL
		}

		midtransService = &MidtransService{
			config: &MidtransConfig{
				ServerKey:     os.Getenv("MIDTRANS_SERVER_KEY"),
				ClientKey:     os.Getenv("MIDTRANS_CLIENT_KEY"),
				IsProduction:  isProduction,
				MerchantID:    os.Getenv("MIDTRANS_MERCHANT_ID"),
				MerchantName:  os.Getenv("MIDTRANS_MERCHANT_NAME"),
				MerchantEmail: os.Getenv("MIDTRANS_MERCHANT_EMAIL"),
				MerchantPhone: os.Getenv("MIDTRANS_MERCHANT_PHONE"),
				WebhookURL:    os.Getenv("MIDTRANS_WEBHOOK_URL"),
			},
			httpClient: &http.Client{
				Timeout: 30 * time.Second,
			},
			baseURL: baseURL,
		}
	})
	return midtransService
}

// ValidateConfig memastikan semua kredensial wajib sudah diisi.
func (ms *MidtransService) ValidateConfig() error {
	if ms.config.ServerKey == "" {
		return fmt.Errorf("MIDTRANS_SERVER_KEY is not set")
	}
	if ms.config.ClientKey == "" {
		return fmt.Errorf("MIDTRANS_CLIENT_KEY is not set")
	}
	if ms.config.MerchantID == "" {
		return fmt.Errorf("MIDTRANS_MERCHANT_ID is not set")
	}
	return nil
}

// ClientKey diekspos untuk kebutuhan frontend snap/QRIS.
func (ms *MidtransService) ClientKey() string {
	return ms.config.ClientKey
}

func (ms *MidtransService) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(ms.config.ServerKey+":"))
}

// ChargeQRIS membuat transaksi QRIS baru dan mengembalikan string QR + waktu expired.
func (ms *MidtransService) ChargeQRIS(referenceID string, amount float64) (qrString string, expiredAt time.Time, err error) {
	payload := map[string]interface{}{
		"payment_type": "qris",
		"transaction_details": map[string]interface{}{
			"order_id":     referenceID,
			"gross_amount": int64(amount),
		},
		"custom_expiry": map[string]interface{}{
			"expiry_duration": 15,
			"unit":            "minute",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, err
	}

	req, err := http.NewRequest(http.MethodPost, ms.baseURL+"/v2/charge", bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", ms.authHeader())

	resp, err := ms.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, err
	}
	if resp.StatusCode >= 400 {
		return "", time.Time{}, fmt.Errorf("midtrans charge failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		QRString string `json:"qr_string"`
		Actions  []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"actions"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", time.Time{}, err
	}

	qrString = result.QRString
	if qrString == "" {
		for _, action := range result.Actions {
			if action.Name == "generate-qr-code" {
				qrString = action.URL
				break
			}
		}
	}

	return qrString, time.Now().Add(15 * time.Minute), nil
}

// CheckTransactionStatus menanyakan status transaksi ke Midtrans dan
// memetakan jawabannya ke status payment internal.
func (ms *MidtransService) CheckTransactionStatus(referenceID string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, ms.baseURL+"/v2/"+referenceID+"/status", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", ms.authHeader())

	resp, err := ms.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("midtrans status check failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		TransactionStatus string `json:"transaction_status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	return MapTransactionStatus(result.TransactionStatus), nil
}

// MapTransactionStatus memetakan status Midtrans ke status payment internal.
func MapTransactionStatus(transactionStatus string) string {
	switch transactionStatus {
	case "settlement", "capture":
		return PaymentStatusSuccess
	case "pending":
		return PaymentStatusPending
	case "expire":
		return PaymentStatusExpired
	case "cancel":
		return PaymentStatusCancelled
	default:
		return PaymentStatusFailed
	}
}

// ValidateSignature memverifikasi signature callback webhook:
// sha512(order_id + status_code + gross_amount + server_key).
func (ms *MidtransService) ValidateSignature(orderID, statusCode, grossAmount, signature string) bool {
	hash := sha512.Sum512([]byte(orderID + statusCode + grossAmount + ms.config.ServerKey))
	return hex.EncodeToString(hash[:]) == signature
}
