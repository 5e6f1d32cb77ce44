package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"cinebooking/internal/pkg/clock"
	"cinebooking/internal/pkg/config"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	MomoName        = "MOMO"
	momoRequestType = "captureWallet"
	momoSuccessCode = 0
)

var (
	ErrMomoRejected     = errs.New("momo rejected the payment request")
	ErrInvalidSignature = errs.New("invalid momo signature")
	ErrMalformedIPN     = errs.New("malformed momo notification")
)

// Momo talks to the MoMo wallet gateway. Payment completes asynchronously:
// the customer is redirected and MoMo later posts an IPN to the webhook.
type Momo struct {
	cfg    config.MomoConfig
	client *http.Client
	clock  clock.Clock
}

func NewMomo(cfg config.MomoConfig, clk clock.Clock) *Momo {
	return &Momo{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		clock:  clk,
	}
}

func (*Momo) Name() string { return MomoName }

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
	Deeplink   string `json:"deeplink"`
}

// momoIPN is the notification MoMo posts once the customer has paid or given up.
type momoIPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

func (m *Momo) Initiate(ctx context.Context, req shared.PaymentRequest) (*shared.PaymentInitiation, error) {
	orderID := req.BookingID.String()
	body := momoCreateRequest{
		PartnerCode: m.cfg.PartnerCode,
		AccessKey:   m.cfg.AccessKey,
		RequestID:   orderID + strconv.FormatInt(m.clock.Now().UnixMilli(), 10),
		Amount:      req.Amount,
		OrderID:     orderID,
		OrderInfo:   "Payment for booking " + orderID,
		RedirectURL: m.cfg.RedirectURL,
		IPNURL:      m.cfg.IPNURL,
		RequestType: momoRequestType,
		Lang:        "vi",
	}
	body.Signature = m.sign(createSignatureFields(body))

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(err, "encode momo request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errs.Wrap(err, "build momo request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, errs.Wrap(err, "call momo")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errs.Wrap(err, "read momo response")
	}
	var out momoCreateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errs.Wrapf(err, "decode momo response (status %d)", resp.StatusCode)
	}
	if out.ResultCode != momoSuccessCode {
		slog.Warn("momo rejected payment request",
			"booking_id", orderID,
			"result_code", out.ResultCode,
			"message", out.Message)
		return nil, errs.Wrapf(ErrMomoRejected, "result %d: %s", out.ResultCode, out.Message)
	}

	return &shared.PaymentInitiation{RedirectURL: out.PayURL, Deeplink: out.Deeplink}, nil
}

func (m *Momo) VerifyCallback(_ context.Context, body []byte) (*shared.PaymentCallback, error) {
	var ipn momoIPN
	if err := json.Unmarshal(body, &ipn); err != nil {
		return nil, errs.Wrap(ErrMalformedIPN, err.Error())
	}

	expected := m.sign(ipnSignatureFields(m.cfg.AccessKey, ipn))
	if !hmac.Equal([]byte(expected), []byte(ipn.Signature)) {
		return nil, ErrInvalidSignature
	}

	bookingID, err := uuid.Parse(ipn.OrderID)
	if err != nil {
		return nil, errs.Wrapf(ErrMalformedIPN, "order id %q", ipn.OrderID)
	}

	return &shared.PaymentCallback{
		BookingID:     bookingID,
		Success:       ipn.ResultCode == momoSuccessCode,
		Amount:        ipn.Amount,
		TransactionID: strconv.FormatInt(ipn.TransID, 10),
		Message:       ipn.Message,
	}, nil
}

func (m *Momo) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(m.cfg.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// MoMo signs key=value pairs joined by '&' with keys in alphabetical order.
func createSignatureFields(r momoCreateRequest) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		r.AccessKey, r.Amount, r.ExtraData, r.IPNURL, r.OrderID, r.OrderInfo, r.PartnerCode, r.RedirectURL, r.RequestID, r.RequestType,
	)
}

func ipnSignatureFields(accessKey string, n momoIPN) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		accessKey, n.Amount, n.ExtraData, n.Message, n.OrderID, n.OrderInfo, n.OrderType, n.PartnerCode, n.PayType, n.RequestID, n.ResponseTime, n.ResultCode, n.TransID,
	)
}

// Providers lists the adapters enabled by configuration. The simulator is always on.
func Providers(cfg config.MomoConfig, clk clock.Clock) []shared.PaymentProvider {
	providers := []shared.PaymentProvider{NewSimulator()}
	if cfg.Enabled {
		providers = append(providers, NewMomo(cfg, clk))
	}
	return providers
}

