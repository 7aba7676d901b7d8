package apiclient_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/ourhour-lab/ourhour-go/pkg/apiclient"
)

func TestIsStatus(t *testing.T) {
	se := &apiclient.StatusError{
		StatusCode: http.StatusUnauthorized,
		Method:     http.MethodGet,
		Path:       "/api/notifications",
	}

	gt.B(t, apiclient.IsStatus(se, http.StatusUnauthorized)).True()
	gt.B(t, apiclient.IsStatus(se, http.StatusForbidden)).False()

	// surviving a wrap
	wrapped := goerr.Wrap(se, "request failed")
	gt.B(t, apiclient.IsStatus(wrapped, http.StatusUnauthorized)).True()

	gt.B(t, apiclient.IsStatus(errors.New("plain"), http.StatusUnauthorized)).False()
	gt.B(t, apiclient.IsStatus(nil, http.StatusUnauthorized)).False()
}

func TestStatusErrorMessage(t *testing.T) {
	se := &apiclient.StatusError{
		StatusCode: http.StatusBadGateway,
		Method:     http.MethodPut,
		Path:       "/api/notifications/read-all",
	}
	gt.S(t, se.Error()).Contains("502")
	gt.S(t, se.Error()).Contains("/api/notifications/read-all")
}
