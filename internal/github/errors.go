package github

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/review-pilot/internal/core"
)

// mapError classifies a go-github failure into the pipeline's error taxonomy.
// Rate limits carry the server's reset hint so the retry executor can honor it.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		resetIn := time.Until(rateErr.Rate.Reset.Time)
		if resetIn < 0 {
			resetIn = 0
		}
		return core.RateLimited(err, resetIn)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var resetIn time.Duration
		if abuseErr.RetryAfter != nil {
			resetIn = *abuseErr.RetryAfter
		}
		return core.RateLimited(err, resetIn)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &core.AuthError{Err: err}
		case http.StatusNotFound, http.StatusGone:
			return &core.NotFoundError{Err: err}
		case http.StatusTooManyRequests:
			return core.RateLimited(err, 0)
		}
		if respErr.Response.StatusCode >= 500 {
			return core.Transient(err)
		}
		return err
	}

	// Anything without an HTTP response is network-level trouble.
	return core.Transient(err)
}

func containsMarker(body, marker string) bool {
	return marker != "" && strings.Contains(body, marker)
}
