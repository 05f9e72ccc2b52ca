package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"sasamom-server/internal/config"
	"sasamom-server/internal/logger"
)

const defaultBaseURL = "https://api.twilio.com"

// ErrNotConfigured is returned by Validate when a credential is missing.
var ErrNotConfigured = errors.New("sms gateway credentials missing")

// Gateway delivers a text message to one phone number.
type Gateway interface {
	// Validate checks the gateway can send at all, without sending.
	Validate() error
	Send(ctx context.Context, to, body string) (*SendResult, error)
}

type SendResult struct {
	MessageID string
	Status    string
}

// TwilioClient sends SMS through the Twilio Messages API.
type TwilioClient struct {
	log       *logger.Logger
	cfg       config.SMSConfig
	baseURL   *url.URL
	transport http.RoundTripper
}

func NewTwilioClient(log *logger.Logger, cfg config.SMSConfig) *TwilioClient {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	c := &TwilioClient{
		log:       log.With("client", "TwilioClient"),
		cfg:       cfg,
		transport: http.DefaultTransport,
	}
	if cfg.BaseURL != defaultBaseURL {
		if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
			c.baseURL = u
		} else {
			c.log.Warn("Ignoring invalid TWILIO_BASE_URL", "base_url", cfg.BaseURL)
		}
	}
	return c
}

func (c *TwilioClient) Validate() error {
	var missing []string
	if c.cfg.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if c.cfg.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if c.cfg.FromNumber == "" {
		missing = append(missing, "TWILIO_PHONE_NUMBER")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// HTTPError is a non-2xx answer from the Twilio API.
type HTTPError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "twilio: <nil error>"
	}
	if e.Code != 0 {
		return fmt.Sprintf("twilio http %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("twilio http %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether Twilio refused the message without accepting it.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

func (c *TwilioClient) Send(ctx context.Context, to, body string) (*SendResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, fmt.Errorf("twilio: destination required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("twilio: body required")
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.cfg.FromNumber)
	params.SetBody(body)

	rest := c.restClient(ctx)
	backoff := 500 * time.Millisecond
	for attempt := 0; ; attempt++ {
		res, err := c.createMessage(rest, params)
		if err == nil {
			return res, nil
		}
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || !httpErr.Retryable() || attempt >= c.cfg.MaxRetries {
			return nil, err
		}
		c.log.Warn("Twilio request retrying",
			"destination", to,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", backoff.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// restClient builds an SDK client whose requests carry ctx, so the caller's
// deadline bounds every attempt.
func (c *TwilioClient) restClient(ctx context.Context) *twilio.RestClient {
	base := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(c.cfg.AccountSID, c.cfg.AuthToken),
		HTTPClient: &http.Client{Transport: &requestTransport{
			ctx:     ctx,
			baseURL: c.baseURL,
			next:    c.transport,
		}},
	}
	base.SetAccountSid(c.cfg.AccountSID)
	return twilio.NewRestClientWithParams(twilio.ClientParams{Client: base})
}

func (c *TwilioClient) createMessage(rest *twilio.RestClient, params *twilioapi.CreateMessageParams) (*SendResult, error) {
	msg, err := rest.Api.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			return nil, &HTTPError{StatusCode: restErr.Status, Code: restErr.Code, Message: restErr.Message}
		}
		return nil, err
	}
	if msg.ErrorCode != nil && *msg.ErrorCode != 0 {
		reason := ""
		if msg.ErrorMessage != nil {
			reason = *msg.ErrorMessage
		}
		return nil, fmt.Errorf("twilio: message rejected (code %d): %s", *msg.ErrorCode, reason)
	}
	res := &SendResult{}
	if msg.Sid != nil {
		res.MessageID = *msg.Sid
	}
	if msg.Status != nil {
		res.Status = string(*msg.Status)
	}
	return res, nil
}

// requestTransport attaches the send context to SDK requests and points
// them at a non-default API host when one is configured.
type requestTransport struct {
	ctx     context.Context
	baseURL *url.URL
	next    http.RoundTripper
}

func (t *requestTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(t.ctx)
	if t.baseURL != nil {
		out.URL.Scheme = t.baseURL.Scheme
		out.URL.Host = t.baseURL.Host
		out.Host = ""
	}
	return t.next.RoundTrip(out)
}
