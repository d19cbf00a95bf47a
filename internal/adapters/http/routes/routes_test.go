package routes

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "routes-test-secret"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type envelope struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Data    jsoniter.RawMessage `json:"data"`
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
	now time.Time
}

func newTestServer(t *testing.T, ping func() error) *testServer {
	t.Helper()

	db, err := config.OpenDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		DBName: filepath.Join(t.TempDir(), "routes.db"),
	}, false)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	cfg := &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: testSecret, Issuer: "libraryhub", AccessTokenMins: 15},
		Policy:  domain.DefaultLoanPolicy(),
	}
	svc := services.NewContainer(repositories.NewStore(db), services.FixedClock{At: now}, cfg.Policy)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.CustomErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	if ping == nil {
		ping = func() error { return nil }
	}
	Setup(app, svc, cfg, ping)

	return &testServer{app: app, db: db, now: now}
}

func (s *testServer) member(t *testing.T, role domain.Role) (*models.Member, string) {
	t.Helper()
	m := &models.Member{
		FirstName: "Route",
		LastName:  string(role),
		Email:     uuid.NewString() + "@library.test",
		Role:      role,
		IsActive:  true,
		JoinDate:  s.now,
	}
	require.NoError(t, s.db.Create(m).Error)

	token, err := jwt.GenerateAccessToken(m.ID, string(role), testSecret, "libraryhub", 15)
	require.NoError(t, err)
	return m, token
}

func (s *testServer) book(t *testing.T, copies int) *models.Book {
	t.Helper()
	b := &models.Book{
		Title:           "Route Book",
		ISBN:            "978" + uuid.NewString()[:10],
		TotalCopies:     copies,
		AvailableCopies: copies,
		IsActive:        true,
	}
	require.NoError(t, s.db.Create(b).Error)
	return b
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	status, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	down := newTestServer(t, func() error { return errors.New("connection refused") })
	status, _ = down.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestAPIInfo_ExposesPolicy(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info struct {
		Policy struct {
			LoanPeriodDays int    `json:"loan_period_days"`
			MaxActiveLoans int    `json:"max_active_loans"`
			FinePerDay     string `json:"fine_per_day"`
		} `json:"policy"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, 10, info.Policy.LoanPeriodDays)
	assert.Equal(t, 5, info.Policy.MaxActiveLoans)
	assert.Equal(t, "0.50", info.Policy.FinePerDay)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodGet, "/api/v1/loans/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = s.do(t, http.MethodGet, "/api/v1/loans/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	_, memberToken := s.member(t, domain.RoleMember)
	status, _ = s.do(t, http.MethodGet, "/api/v1/loans/", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t, nil)
	member, token := s.member(t, domain.RoleMember)
	book := s.book(t, 2)

	status, env := s.do(t, http.MethodPost, "/api/v1/loans/checkout", token, fiber.Map{"book_id": book.ID.String()})
	require.Equal(t, http.StatusCreated, status, env.Error)

	var created struct {
		Loan models.Loan `json:"loan"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, member.ID, created.Loan.MemberID)
	assert.Equal(t, domain.LoanStatusActive, created.Loan.Status)
	assert.True(t, created.Loan.DueDate.Equal(s.now.Add(10*24*time.Hour)))

	status, env = s.do(t, http.MethodPost, "/api/v1/loans/checkout", token, fiber.Map{"book_id": book.ID.String()})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "duplicate_loan", env.Code)

	status, env = s.do(t, http.MethodGet, "/api/v1/books/"+book.ID.String()+"/availability", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"available_copies":1`)

	status, _ = s.do(t, http.MethodPut, "/api/v1/loans/"+created.Loan.ID.String()+"/renew", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodPut, "/api/v1/loans/"+created.Loan.ID.String()+"/renew", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_renewed", env.Code)

	_, otherToken := s.member(t, domain.RoleMember)
	status, _ = s.do(t, http.MethodPut, "/api/v1/loans/"+created.Loan.ID.String()+"/return", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPut, "/api/v1/loans/"+created.Loan.ID.String()+"/return", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodPut, "/api/v1/loans/"+created.Loan.ID.String()+"/return", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "invalid_state", env.Code)
}

func TestCheckoutValidation(t *testing.T) {
	s := newTestServer(t, nil)
	_, token := s.member(t, domain.RoleMember)

	status, _ := s.do(t, http.MethodPost, "/api/v1/loans/checkout", token, fiber.Map{"book_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/loans/checkout", token, fiber.Map{"book_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOverdueSweepAndFinePayment(t *testing.T) {
	s := newTestServer(t, nil)
	member, memberToken := s.member(t, domain.RoleMember)
	_, staffToken := s.member(t, domain.RoleStaff)
	book := s.book(t, 1)

	due := s.now.AddDate(0, 0, -4)
	key := models.OpenLoanKeyFor(book.ID, member.ID)
	loan := &models.Loan{
		BookID:       book.ID,
		MemberID:     member.ID,
		CheckoutDate: due.AddDate(0, 0, -10),
		DueDate:      due,
		Status:       domain.LoanStatusActive,
		OpenLoanKey:  key,
	}
	require.NoError(t, s.db.Create(loan).Error)
	require.NoError(t, s.db.Model(book).Update("available_copies", 0).Error)

	// overdue items block further checkouts, even when staff lends on the member's behalf
	other := s.book(t, 1)
	status, env := s.do(t, http.MethodPost, "/api/v1/loans/checkout", staffToken, fiber.Map{
		"book_id":   other.ID.String(),
		"member_id": member.ID.String(),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "overdue_items", env.Code)

	status, _ = s.do(t, http.MethodPost, "/api/v1/loans/process-overdue", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/loans/process-overdue", staffToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)

	var sweep struct {
		Result domain.SweepResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sweep))
	assert.Equal(t, 1, sweep.Result.ProcessedCount)
	assert.True(t, sweep.Result.FinedAmount.Equal(decimal.RequireFromString("2.00")))

	status, env = s.do(t, http.MethodGet, "/api/v1/fines/member/"+member.ID.String(), memberToken, nil)
	require.Equal(t, http.StatusOK, status)

	var listed struct {
		Fines []models.Fine `json:"fines"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed.Fines, 1)
	fine := listed.Fines[0]
	assert.Equal(t, loan.ID, fine.LoanID)
	assert.False(t, fine.IsPaid)

	status, _ = s.do(t, http.MethodPut, "/api/v1/fines/"+fine.ID.String()+"/pay", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodPut, "/api/v1/fines/"+fine.ID.String()+"/pay", staffToken, nil)
	require.Equal(t, http.StatusOK, status)

	var paid struct {
		Fine models.Fine `json:"fine"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.True(t, paid.Fine.IsPaid)
	assert.NotNil(t, paid.Fine.PaidDate)
}

func TestMemberEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	member, token := s.member(t, domain.RoleMember)
	_, otherToken := s.member(t, domain.RoleMember)
	_, adminToken := s.member(t, domain.RoleAdmin)

	status, env := s.do(t, http.MethodGet, "/api/v1/members/"+member.ID.String()+"/eligibility", token, nil)
	require.Equal(t, http.StatusOK, status)

	var got struct {
		Eligibility domain.Eligibility `json:"eligibility"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Eligibility.Eligible)

	status, _ = s.do(t, http.MethodGet, "/api/v1/members/"+member.ID.String()+"/eligibility", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPut, "/api/v1/members/"+member.ID.String()+"/deactivate", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPut, "/api/v1/members/"+member.ID.String()+"/deactivate", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/members/"+member.ID.String()+"/eligibility", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.False(t, got.Eligibility.Eligible)
	assert.Equal(t, domain.ReasonMemberInactive, got.Eligibility.Reason)
}
