package client

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/thand-io/reader/internal/metrics"
	"github.com/thand-io/reader/internal/notify"
)

const (
	sessionExpiredTitle  = "Session Expired"
	sessionExpiredDetail = "Your session has expired. Please log in again."
	networkErrorTitle    = "Network Error"
	networkErrorDetail   = "Unable to reach the server. Check your connection and try again."
	timeoutErrorDetail   = "The server took too long to respond. Please try again."
)

// react performs the side effects of a classified failure. It runs at
// most one notification per failed request.
func (c *Client) react(ctx context.Context, log logrus.FieldLogger, req *Request, err error) {
	if err == nil {
		return
	}

	var networkErr *NetworkError
	switch {
	case errors.Is(err, ErrSessionExpired):
		c.expireSession(ctx, log, req.credentialed)

	case errors.As(err, &networkErr):
		log.WithError(networkErr.Err).Debugln("Request failed without a response")
		detail := networkErrorDetail
		if networkErr.Timeout() {
			detail = timeoutErrorDetail
		}
		notify.Error(c.notifier, networkErrorTitle, detail)

	default:
		log.WithError(err).Debugln("Request failed")
	}
}

// expireSession runs the forced logout: drop the credential, remove the
// persisted session, tell the user. Only one caller runs it at a time;
// 401s that arrive while it runs skip straight to returning the error.
// A request sent without a credential had no session to expire (a
// rejected login, say): the credential is already null, so nothing runs.
func (c *Client) expireSession(ctx context.Context, log logrus.FieldLogger, credentialed bool) {
	if !credentialed {
		log.Debugln("Unauthorized without a credential, no session to expire")
		return
	}

	if !c.expiring.CompareAndSwap(false, true) {
		log.Debugln("Session expiry already in progress")
		return
	}
	defer c.expiring.Store(false)

	log.Infoln("Session expired, clearing credentials")

	c.SetToken("")

	if c.clearer != nil {
		// The request context may already be cancelled; the removal must
		// still reach storage.
		if err := c.clearer.Clear(context.WithoutCancel(ctx)); err != nil {
			log.WithError(err).Errorln("Failed to clear expired session")
		}
	}

	metrics.SessionExpiredTotal.Inc()
	metrics.SessionClearsTotal.WithLabelValues(metrics.ClearReasonExpired).Inc()

	notify.Error(c.notifier, sessionExpiredTitle, sessionExpiredDetail)
}
