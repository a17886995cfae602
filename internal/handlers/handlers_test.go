package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/handlers"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/SscSPs/salon_management_app/internal/platform/config"
	"github.com/SscSPs/salon_management_app/internal/repositories/memory"
	"github.com/SscSPs/salon_management_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type HandlersTestSuite struct {
	suite.Suite
	cfg    *config.Config
	svc    *portssvc.ServiceContainer
	router *gin.Engine

	establishmentID string
	ownerToken      string
	ownerCookie     *http.Cookie
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cfg = &config.Config{
		IsProduction:               true,
		JWTSecret:                  "handler-test-secret",
		JWTExpiryDuration:          time.Hour,
		JWTIssuer:                  "salon-test",
		RefreshTokenExpiryDuration: 24 * time.Hour,
		RefreshTokenCookieName:     "rtid",
		RefreshTokenCookiePath:     "/api/v1/auth",
	}
	s.svc = services.NewServiceContainer(s.cfg, memory.NewRepositoryProvider(memory.NewStore()))
	s.router = s.newRouter(nil)

	w := s.do(http.MethodPost, "/api/v1/auth/register-establishment", "", map[string]any{
		"establishment": map[string]any{
			"name":        "Studio Bela",
			"plan":        "PRO",
			"openingTime": "09:00",
			"closingTime": "18:00",
			"workingDays": []int{1, 2, 3, 4, 5, 6},
		},
		"adminName": "Olga",
		"email":     "owner@example.com",
		"password":  "password123",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var reg dto.RegisterEstablishmentResponse
	s.decode(w, &reg)
	s.establishmentID = reg.Establishment.EstablishmentID

	s.ownerToken, s.ownerCookie = s.login("owner@example.com", "password123")
}

func (s *HandlersTestSuite) newRouter(loginRate *string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.Default()))
	var err error
	if loginRate == nil {
		err = handlers.RegisterRoutes(r, s.cfg, s.svc, nil)
	} else {
		l, lerr := middleware.NewMemoryLimiter(*loginRate)
		s.Require().NoError(lerr)
		err = handlers.RegisterRoutes(r, s.cfg, s.svc, l)
	}
	s.Require().NoError(err)
	return r
}

func (s *HandlersTestSuite) do(method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *HandlersTestSuite) login(email, password string) (string, *http.Cookie) {
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	s.decode(w, &resp)
	s.Require().NotEmpty(resp.Token)
	return resp.Token, refreshCookie(w, s.cfg.RefreshTokenCookieName)
}

func refreshCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}

func (s *HandlersTestSuite) path(format string, args ...any) string {
	return "/api/v1/establishments/" + s.establishmentID + fmt.Sprintf(format, args...)
}

// nextTuesdayAt returns a Tuesday at least a week ahead, at the given UTC hour.
func nextTuesdayAt(hour int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Tuesday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func (s *HandlersTestSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestProtectedRoutesRequireToken() {
	w := s.do(http.MethodGet, "/api/v1/users/me", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/users/me", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	expired, _, err := utils.GenerateJWT("someone", "ADMIN", s.establishmentID, s.cfg.JWTSecret, time.Minute, s.cfg.JWTIssuer, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	w = s.do(http.MethodGet, "/api/v1/users/me", expired, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "expired")
}

func (s *HandlersTestSuite) TestLoginAndMe() {
	s.Require().NotNil(s.ownerCookie)
	s.True(s.ownerCookie.HttpOnly)

	w := s.do(http.MethodGet, "/api/v1/users/me", s.ownerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me dto.UserResponse
	s.decode(w, &me)
	s.Equal("owner@example.com", me.Email)
	s.Equal(s.establishmentID, me.EstablishmentID)
	s.NotContains(w.Body.String(), "passwordHash")

	w = s.do(http.MethodGet, "/api/v1/users/me/establishments", s.ownerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListEstablishmentsResponse
	s.decode(w, &list)
	s.Require().Len(list.Establishments, 1)
	s.Equal("Studio Bela", list.Establishments[0].Name)
}

func (s *HandlersTestSuite) TestLoginWrongPassword() {
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "owner@example.com", "password": "wrong-password"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "not-an-email"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestLoginRateLimited() {
	limit := "2-M"
	s.router = s.newRouter(&limit)

	body := map[string]string{"email": "owner@example.com", "password": "wrong-password"}
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	s.Equal(http.StatusTooManyRequests, s.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
}

func (s *HandlersTestSuite) TestRefreshRotatesCookie() {
	w := s.do(http.MethodPost, "/api/v1/auth/refresh", "", nil, s.ownerCookie)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.RefreshTokenResponse
	s.decode(w, &resp)
	s.NotEmpty(resp.Token)
	rotated := refreshCookie(w, s.cfg.RefreshTokenCookieName)
	s.Require().NotNil(rotated)
	s.NotEqual(s.ownerCookie.Value, rotated.Value)

	// the previous token no longer matches the stored hash
	w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", nil, s.ownerCookie)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestLogoutRevokesRefreshToken() {
	w := s.do(http.MethodPost, "/api/v1/auth/logout", "", nil, s.ownerCookie)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", nil, s.ownerCookie)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestServiceLifecycle() {
	w := s.do(http.MethodPost, s.path("/services"), s.ownerToken, map[string]any{
		"name": "Haircut", "price": "50", "durationMinutes": 45,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	s.decode(w, &created)

	w = s.do(http.MethodPost, s.path("/services"), s.ownerToken, map[string]any{
		"name": "haircut", "price": "40", "durationMinutes": 30,
	})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, s.path("/services"), s.ownerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page dto.ListResponse[struct {
		ID string `json:"id"`
	}]
	s.decode(w, &page)
	s.Len(page.Items, 1)

	w = s.do(http.MethodDelete, s.path("/services/%s", created.ID), s.ownerToken, nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, s.path("/services/%s", created.ID), s.ownerToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestBindingValidation() {
	w := s.do(http.MethodPost, s.path("/services"), s.ownerToken, map[string]any{"price": "50"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, s.path(""), s.ownerToken, map[string]any{"openingTime": "25:00"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, s.path(""), s.ownerToken, map[string]any{"openingTime": "08:30"})
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, s.path("/services?limit=1000"), s.ownerToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestOtherTenantIsRejected() {
	w := s.do(http.MethodPost, "/api/v1/auth/register-establishment", "", map[string]any{
		"establishment": map[string]any{"name": "Other Salon"},
		"adminName":     "Bruno",
		"email":         "bruno@example.com",
		"password":      "password123",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var other dto.RegisterEstablishmentResponse
	s.decode(w, &other)

	w = s.do(http.MethodGet, "/api/v1/establishments/"+other.Establishment.EstablishmentID, s.ownerToken, nil)
	s.Contains([]int{http.StatusForbidden, http.StatusNotFound}, w.Code)

	w = s.do(http.MethodGet, "/api/v1/establishments/"+other.Establishment.EstablishmentID+"/clients", s.ownerToken, nil)
	s.Contains([]int{http.StatusForbidden, http.StatusNotFound}, w.Code)
}

func (s *HandlersTestSuite) TestClientRegistersAndJoins() {
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name": "Carla", "email": "carla@example.com", "password": "password123",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	clientToken, _ := s.login("carla@example.com", "password123")

	// not a member yet
	w = s.do(http.MethodGet, s.path("/services"), clientToken, nil)
	s.Contains([]int{http.StatusForbidden, http.StatusNotFound}, w.Code)

	w = s.do(http.MethodPost, s.path("/clients/join"), clientToken, map[string]any{"phone": "+55 11 98888-0000"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, s.path("/services"), clientToken, nil)
	s.Equal(http.StatusOK, w.Code)

	// catalogue writes stay with the admin
	w = s.do(http.MethodPost, s.path("/services"), clientToken, map[string]any{"name": "Nails", "price": "20", "durationMinutes": 30})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlersTestSuite) TestAppointmentBookingAndPayment() {
	w := s.do(http.MethodPost, s.path("/services"), s.ownerToken, map[string]any{
		"name": "Haircut", "price": "50", "durationMinutes": 45,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var service struct {
		ID string `json:"id"`
	}
	s.decode(w, &service)

	w = s.do(http.MethodPost, s.path("/employees"), s.ownerToken, map[string]any{
		"name": "Ana", "email": "ana@example.com", "commissionRate": "40", "serviceIDs": []string{service.ID},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var employee struct {
		ID string `json:"id"`
	}
	s.decode(w, &employee)

	w = s.do(http.MethodPost, s.path("/clients"), s.ownerToken, map[string]any{"name": "Dora", "phone": "+55 11 97777-0000"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var client struct {
		ID string `json:"id"`
	}
	s.decode(w, &client)

	start := nextTuesdayAt(10)
	w = s.do(http.MethodGet, s.path("/available-slots?employeeID=%s&serviceID=%s&date=%s", employee.ID, service.ID, start.Format("2006-01-02")), s.ownerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var slots dto.AvailableSlotsResponse
	s.decode(w, &slots)
	s.NotEmpty(slots.Slots)

	booking := map[string]any{
		"clientID":   client.ID,
		"employeeID": employee.ID,
		"serviceID":  service.ID,
		"startTime":  start.Format(time.RFC3339),
	}
	w = s.do(http.MethodPost, s.path("/appointments"), s.ownerToken, booking)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var appt struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PaymentStatus string `json:"paymentStatus"`
	}
	s.decode(w, &appt)
	s.Equal("SCHEDULED", appt.Status)

	w = s.do(http.MethodPost, s.path("/appointments"), s.ownerToken, booking)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, s.path("/appointments/%s/confirm", appt.ID), s.ownerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &appt)
	s.Equal("CONFIRMED", appt.Status)

	w = s.do(http.MethodPost, s.path("/payments"), s.ownerToken, map[string]any{
		"appointmentID": appt.ID, "amount": "80", "method": "PIX",
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, s.path("/payments"), s.ownerToken, map[string]any{
		"appointmentID": appt.ID, "amount": "50", "method": "PIX",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, s.path("/appointments/%s", appt.ID), s.ownerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &appt)
	s.Equal("PAID", appt.PaymentStatus)

	w = s.do(http.MethodDelete, s.path("/appointments/%s", appt.ID), s.ownerToken, nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlersTestSuite) TestReportsRequirePeriod() {
	w := s.do(http.MethodGet, s.path("/reports/period"), s.ownerToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, s.path("/reports/period?from=2026-03-01&to=2026-03-31"), s.ownerToken, nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, s.path("/reports/low-stock"), s.ownerToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, s.path("/commissions?from=2026-03-01&to=2026-03-31"), s.ownerToken, nil)
	s.Equal(http.StatusOK, w.Code)
}
