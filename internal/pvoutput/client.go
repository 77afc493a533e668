// internal/pvoutput/client.go

// Package pvoutput uploads inverter telemetry to the PVOutput reporting API
// under its per-minute request budget.
package pvoutput

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BruceRobertson/growatt-mqtt/internal/logger"
)

const defaultBaseURL = "https://pvoutput.org/service/r2/"

const (
	maxAttempts    = 3
	requestTimeout = 10 * time.Second
	retrySleep     = 5 * time.Second

	// lowQuotaThreshold triggers a warning when the remaining request
	// budget drops below it.
	lowQuotaThreshold = 10
)

// ErrGaveUp reports that all attempts for one call were spent.
// The next upload slot is the next opportunity; the client schedules no
// retries of its own beyond the in-call attempts.
var ErrGaveUp = errors.New("pvoutput: gave up after 3 attempts")

// Client talks to the PVOutput service for one system.
type Client struct {
	apiKey   string
	systemID string
	baseURL  string
	hc       *http.Client
	log      *logger.Logger

	// last v1 value actually sent, for upload deduplication
	lastEnergyToday int

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a client for the given API key and system id.
func New(apiKey, systemID string, log *logger.Logger) *Client {
	return &Client{
		apiKey:   apiKey,
		systemID: systemID,
		baseURL:  defaultBaseURL,
		hc:       &http.Client{Timeout: requestTimeout},
		log:      log,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// SendStatus uploads one live status update.
func (c *Client) SendStatus(s Status) error {
	payload, sentEnergy := s.encode(c.lastEnergyToday)
	if sentEnergy {
		c.lastEnergyToday = *s.EnergyGen
	}
	return c.post("addstatus.jsp", payload)
}

// AddOutput uploads end-of-day output for date.
func (c *Client) AddOutput(date time.Time, generatedWh int) error {
	payload := url.Values{}
	payload.Set("d", date.Format("20060102"))
	payload.Set("g", strconv.Itoa(generatedWh))
	return c.post("addoutput.jsp", payload)
}

// post delivers one payload with bounded retries.
//
// Per attempt: HTTP 403 means the rate limit is exhausted, so sleep until the
// server-supplied reset time passes and try again; any other failure logs and
// sleeps a fixed 5 seconds; a 2xx stops immediately. A low remaining quota is
// warned about regardless of outcome.
func (c *Client) post(endpoint string, payload url.Values) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := c.doPost(endpoint, payload)
		if err != nil {
			c.log.Errorw("pvoutput request failed", "endpoint", endpoint, "err", err)
			c.sleep(retrySleep)
			continue
		}
		resp.Body.Close()

		c.warnLowQuota(resp)

		if resp.StatusCode == http.StatusForbidden {
			wait := c.resetWait(resp)
			c.log.Warnw("pvoutput rate limit exceeded",
				"status", resp.StatusCode, "wait", wait)
			c.sleep(wait)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		c.log.Errorw("pvoutput rejected request",
			"endpoint", endpoint, "status", resp.StatusCode)
		c.sleep(retrySleep)
	}

	c.log.Errorw("pvoutput api failed, giving up", "endpoint", endpoint)
	return ErrGaveUp
}

// doPost performs a single form POST with the authentication and
// rate-limit opt-in headers.
func (c *Client) doPost(endpoint string, payload url.Values) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+endpoint,
		strings.NewReader(payload.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Pvoutput-Apikey", c.apiKey)
	req.Header.Set("X-Pvoutput-SystemId", c.systemID)
	req.Header.Set("X-Rate-Limit", "1")

	return c.hc.Do(req)
}

// resetWait computes how long to sleep after a 403: one second past the
// server's reset timestamp.
func (c *Client) resetWait(resp *http.Response) time.Duration {
	reset, err := strconv.ParseFloat(
		strings.TrimSpace(resp.Header.Get("X-Rate-Limit-Reset")), 64)
	if err != nil {
		return retrySleep
	}
	secs := math.Round(reset-float64(c.now().Unix())) + 1
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

func (c *Client) warnLowQuota(resp *http.Response) {
	remaining, err := strconv.Atoi(
		strings.TrimSpace(resp.Header.Get("X-Rate-Limit-Remaining")))
	if err != nil {
		return
	}
	if remaining < lowQuotaThreshold {
		c.log.Warnw("pvoutput request quota low",
			"remaining", remaining,
			"reset", resp.Header.Get("X-Rate-Limit-Reset"))
	}
}
