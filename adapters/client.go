package adapters

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/brettbedarf/filetree/internal/util"
)

// LeveledZerolog adapts a zerolog logger to retryablehttp
type LeveledZerolog struct {
	inner util.Logger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l LeveledZerolog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l LeveledZerolog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l LeveledZerolog) Info(msg string, keysAndValues ...any) {
	l.inner.Info().Fields(keysAndValues).Msg(msg)
}

func (l LeveledZerolog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug().Fields(keysAndValues).Msg(msg)
}

type ClientOption func(*retryablehttp.Client)

// WithMaxRetries sets the maximum number of retries for the HTTP client.
func WithMaxRetries(maxRetries int) ClientOption {
	return func(client *retryablehttp.Client) {
		client.RetryMax = maxRetries
	}
}

// WithRetryWait sets the wait bounds between retries.
func WithRetryWait(waitMin, waitMax time.Duration) ClientOption {
	return func(client *retryablehttp.Client) {
		client.RetryWaitMin = waitMin
		client.RetryWaitMax = waitMax
	}
}

// NewRetryClient returns a stdlib *http.Client that retries connection
// errors and 5xx responses (except 501). Intermediate failures are logged
// at warn level.
func NewRetryClient(options ...ClientOption) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(LeveledZerolog{util.GetLogger("HTTPSource")})

	for _, option := range options {
		option(retryClient)
	}

	client := retryClient.StandardClient()
	client.Timeout = 30 * time.Second
	return client
}
