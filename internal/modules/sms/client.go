// Package sms sends text messages through the MyMobileAPI bulk-message gateway.
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/go-resty/resty/v2"
	"github.com/ttacon/libphonenumber"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

var (
	// ErrNotConfigured is returned when gateway credentials are missing.
	ErrNotConfigured = errors.New("sms gateway not configured")
	// ErrTransport wraps network failures talking to the gateway.
	ErrTransport = errors.New("sms gateway unreachable")
)

type Config struct {
	URL           string
	Username      string
	Password      string
	DefaultRegion string
	Timeout       time.Duration
}

type SendRequest struct {
	Destination string `json:"destination" validate:"required"`
	Message     string `json:"message" validate:"required"`
	TestMode    bool   `json:"testMode"`
}

// Result is the gateway's answer, passed through to the caller.
type Result struct {
	Status int         `json:"status"`
	Body   interface{} `json:"response"`
}

type gatewayPayload struct {
	SendOptions struct {
		TestMode bool `json:"testMode"`
	} `json:"sendOptions"`
	Messages []gatewayMessage `json:"messages"`
}

type gatewayMessage struct {
	Destination string `json:"destination"`
	Content     string `json:"content"`
}

type Client struct {
	http   *resty.Client
	cfg    Config
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = "ZA"
	}
	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &Client{http: rc, cfg: cfg, logger: logger}
}

// NormalizeDestination formats a phone number as E.164, reading national
// numbers in region.
func NormalizeDestination(dest, region string) (string, error) {
	p, err := libphonenumber.Parse(strings.TrimSpace(dest), region)
	if err != nil {
		return "", apperr.Validation("Invalid destination number.")
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", apperr.Validation("Invalid destination number.")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

// Send posts one message. Any HTTP answer from the gateway is a Result;
// only transport failures return ErrTransport.
func (c *Client) Send(ctx context.Context, req SendRequest) (*Result, error) {
	if c.cfg.Username == "" || c.cfg.Password == "" || c.cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	dest, err := NormalizeDestination(req.Destination, c.cfg.DefaultRegion)
	if err != nil {
		return nil, err
	}

	var payload gatewayPayload
	payload.SendOptions.TestMode = req.TestMode
	payload.Messages = []gatewayMessage{{Destination: dest, Content: strings.TrimSpace(req.Message)}}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.Username, c.cfg.Password).
		SetBody(payload).
		Post(c.cfg.URL)
	if err != nil {
		c.logger.Error("sms gateway call failed", zap.String("destination", dest), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	var body interface{}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		body = map[string]string{"raw": resp.String()}
	}
	c.logger.Info("sms sent",
		zap.String("destination", dest),
		zap.Int("status", resp.StatusCode()),
		zap.Bool("test_mode", req.TestMode))
	return &Result{Status: resp.StatusCode(), Body: body}, nil
}
