// Package mercadopago implementa ports.PaymentGateway sobre la API REST de Mercado Pago:
// preferencias de checkout, consulta de pagos y validación de firma de webhooks.
package mercadopago

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
)

var _ ports.PaymentGateway = (*Client)(nil)

const defaultBaseURL = "https://api.mercadopago.com"

// ErrInvalidSignature la cabecera x-signature no coincide con el secreto configurado.
var ErrInvalidSignature = errors.New("mercadopago: firma inválida")

// Config credenciales y URLs del checkout.
type Config struct {
	AccessToken     string
	WebhookSecret   string
	BaseURL         string
	NotificationURL string
	SuccessURL      string
	FailureURL      string
	PendingURL      string
	CurrencyID      string
}

// Client cliente HTTP de Mercado Pago.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient construye el cliente. BaseURL vacío = API productiva; CurrencyID vacío = ARS.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.CurrencyID == "" {
		cfg.CurrencyID = "ARS"
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// ── Preferencias ──────────────────────────────────────────────────────────────

type preferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferencePayer struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type backURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	Payer             *preferencePayer `json:"payer,omitempty"`
	ExternalReference string           `json:"external_reference"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	BackURLs          *backURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference crea la preferencia de pago. La cabecera X-Idempotency-Key evita
// preferencias duplicadas si la petición se reintenta.
func (c *Client) CreatePreference(ctx context.Context, in ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	body := preferenceRequest{
		Items:             make([]preferenceItem, 0, len(in.Items)),
		ExternalReference: in.ExternalReference,
		NotificationURL:   c.cfg.NotificationURL,
	}
	for _, it := range in.Items {
		body.Items = append(body.Items, preferenceItem{
			ID:         it.ID,
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.InexactFloat64(), // la API espera número JSON
			CurrencyID: c.cfg.CurrencyID,
		})
	}
	if in.PayerEmail != "" || in.PayerName != "" {
		body.Payer = &preferencePayer{Email: in.PayerEmail, Name: in.PayerName}
	}
	if c.cfg.SuccessURL != "" || c.cfg.FailureURL != "" || c.cfg.PendingURL != "" {
		body.BackURLs = &backURLs{Success: c.cfg.SuccessURL, Failure: c.cfg.FailureURL, Pending: c.cfg.PendingURL}
		if c.cfg.SuccessURL != "" {
			body.AutoReturn = "approved"
		}
	}

	headers := map[string]string{}
	if in.IdempotencyKey != "" {
		headers["X-Idempotency-Key"] = in.IdempotencyKey
	}
	var out preferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", body, headers, &out); err != nil {
		return nil, err
	}
	initPoint := out.InitPoint
	if initPoint == "" {
		initPoint = out.SandboxInitPoint
	}
	return &ports.CheckoutSession{PreferenceID: out.ID, InitPoint: initPoint}, nil
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

type paymentResponse struct {
	ID                json.Number     `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
	DateApproved      *time.Time      `json:"date_approved"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
}

// GetPayment lee el estado autoritativo del pago.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*ports.Payment, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, fmt.Errorf("mercadopago: id de pago vacío")
	}
	var out paymentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &ports.Payment{
		ID:                out.ID.String(),
		Status:            out.Status,
		StatusDetail:      out.StatusDetail,
		ExternalReference: out.ExternalReference,
		Amount:            out.TransactionAmount,
		Currency:          out.CurrencyID,
		PayerEmail:        out.Payer.Email,
		ApprovedAt:        out.DateApproved,
	}, nil
}

// ── Firma de webhooks ─────────────────────────────────────────────────────────

// VerifyNotification valida x-signature ("ts=<ts>,v1=<hmac>") contra el manifiesto
// "id:<data.id>;request-id:<x-request-id>;ts:<ts>;". Sin secreto configurado no valida.
func (c *Client) VerifyNotification(signature, requestID, resourceID string) error {
	if c.cfg.WebhookSecret == "" {
		return nil
	}
	var ts, v1 string
	for _, part := range strings.Split(signature, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "ts":
			ts = v
		case "v1":
			v1 = v
		}
	}
	if ts == "" || v1 == "" {
		return ErrInvalidSignature
	}
	expected := Sign(c.cfg.WebhookSecret, Manifest(resourceID, requestID, ts))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return ErrInvalidSignature
	}
	return nil
}

// Manifest arma el texto firmado. Los ids alfanuméricos se comparan en minúsculas.
func Manifest(resourceID, requestID, ts string) string {
	var b strings.Builder
	if resourceID != "" {
		b.WriteString("id:" + strings.ToLower(resourceID) + ";")
	}
	if requestID != "" {
		b.WriteString("request-id:" + requestID + ";")
	}
	if ts != "" {
		b.WriteString("ts:" + ts + ";")
	}
	return b.String()
}

// Sign devuelve el HMAC-SHA256 hexadecimal del manifiesto.
func Sign(secret, manifest string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

// ── Transporte ────────────────────────────────────────────────────────────────

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

func (c *Client) do(ctx context.Context, method, path string, in any, headers map[string]string, out any) error {
	if c.cfg.AccessToken == "" {
		return fmt.Errorf("mercadopago: MP_ACCESS_TOKEN no configurado")
	}
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("mercadopago: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("mercadopago: crear request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mercadopago: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("mercadopago: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e apiError
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return fmt.Errorf("mercadopago: HTTP %d: %s", resp.StatusCode, e.Message)
		}
		return fmt.Errorf("mercadopago: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mercadopago: deserializar respuesta: %w", err)
	}
	return nil
}
