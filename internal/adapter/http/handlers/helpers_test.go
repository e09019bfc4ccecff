package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"mecanica_booking/internal/adapter/http/middleware"
	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase"

	"github.com/gin-gonic/gin"
)

var (
	asAdmin    = middleware.Principal{UserID: "adm", Role: entities.RoleAdmin}
	asTech     = middleware.Principal{UserID: "tech-1", Role: entities.RoleTechnician}
	asCustomer = middleware.Principal{UserID: "cust-1", Role: entities.RoleCustomer}
	asStranger = middleware.Principal{UserID: "cust-9", Role: entities.RoleCustomer}
)

func newTestRouter(p middleware.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetPrincipal(c, p)
		c.Next()
	})
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestMapError(t *testing.T) {
	conflict := &usecase.SchedulingConflictError{Conflict: entities.BookingConflict{BookingID: "b-1", CustomerName: "Joana", ServiceName: "Alignment"}}

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{usecase.ErrBookingNotFound, http.StatusNotFound, "NOT_FOUND"},
		{usecase.ErrCarNotOwned, http.StatusUnprocessableEntity, "INVALID_REFERENCE"},
		{usecase.ErrTechnicianChoiceNotAllowed, http.StatusBadRequest, "POLICY_VIOLATION"},
		{conflict, http.StatusConflict, "SCHEDULING_CONFLICT"},
		{usecase.ErrBillingAlreadyPaid, http.StatusConflict, "INVALID_TRANSITION"},
		{usecase.ErrConcurrentUpdate, http.StatusServiceUnavailable, "BUSY"},
		{usecase.ErrInvalidAmount, http.StatusBadRequest, "INVALID_REQUEST"},
		{usecase.ErrPaymentGatewayUnauthorized, http.StatusBadGateway, "PAYMENT_PROVIDER_UNAUTHORIZED"},
		{usecase.ErrPaymentGatewayBadRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{usecase.ErrPaymentGatewayNotConfigured, http.StatusServiceUnavailable, "PAYMENT_PROVIDER_UNAVAILABLE"},
		{errors.New("dynamodb down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		got := mapError(tc.err)
		if got.HTTPStatus != tc.status || got.Code != tc.code {
			t.Fatalf("%v: expected %d/%s, got %d/%s", tc.err, tc.status, tc.code, got.HTTPStatus, got.Code)
		}
	}

	if got := mapError(conflict); got.Message != "Technician already has a booking for Alignment with Joana" || got.Details == nil {
		t.Fatalf("unexpected conflict error: %+v", got)
	}
}
