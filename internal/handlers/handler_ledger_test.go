package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portssvc "github.com/sunrisehms/finance_backend/internal/core/ports/services"
	"github.com/sunrisehms/finance_backend/internal/dto"
	"github.com/sunrisehms/finance_backend/internal/handlers"
	"github.com/sunrisehms/finance_backend/internal/utils"
	"github.com/sunrisehms/finance_backend/internal/utils/accounting"
	"github.com/sunrisehms/finance_backend/pkg/config"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) CreateEntry(ctx context.Context, req dto.CreateLedgerEntryRequest, actor domain.Actor) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) GetEntryByID(ctx context.Context, entryID string, actor domain.Actor) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, params dto.ListLedgerEntriesParams, actor domain.Actor) (*dto.ListLedgerEntriesResponse, error) {
	args := m.Called(ctx, params, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLedgerEntriesResponse), args.Error(1)
}

func (m *MockLedgerService) ApproveEntry(ctx context.Context, entryID string, actor domain.Actor) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) RejectEntry(ctx context.Context, entryID string, reason string, actor domain.Actor) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) RequestEdit(ctx context.Context, entryID string, changes domain.EditChanges, reason string, actor domain.Actor) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, changes, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) ApproveEdit(ctx context.Context, entryID string, reason string, actor domain.Actor) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) RejectEdit(ctx context.Context, entryID string, reason string, actor domain.Actor) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) UndoLastAction(ctx context.Context, entryID string, actor domain.Actor) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) DeleteEntry(ctx context.Context, entryID string, actor domain.Actor) error {
	args := m.Called(ctx, entryID, actor)
	return args.Error(0)
}

func (m *MockLedgerService) ListAuditTrail(ctx context.Context, entryID string, actor domain.Actor) ([]domain.LedgerAuditLog, error) {
	args := m.Called(ctx, entryID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerAuditLog), args.Error(1)
}

func (m *MockLedgerService) PreviewBalanceImpact(ctx context.Context, paymentModeID string, t domain.TransactionType, amount decimal.Decimal, actor domain.Actor) (*accounting.BalancePreview, error) {
	args := m.Called(ctx, paymentModeID, t, amount, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.BalancePreview), args.Error(1)
}

// --- Mock ReportService ---
type MockReportService struct {
	mock.Mock
}

var _ portssvc.ReportSvcFacade = (*MockReportService)(nil)

func (m *MockReportService) GetSummary(ctx context.Context, reportType string, startDate, endDate *time.Time, actor domain.Actor) (*dto.SummaryResponse, error) {
	args := m.Called(ctx, reportType, startDate, endDate, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SummaryResponse), args.Error(1)
}

func (m *MockReportService) VerifyPaymentModeIntegrity(ctx context.Context, paymentModeID string, actor domain.Actor) (*domain.BalanceIntegrity, error) {
	args := m.Called(ctx, paymentModeID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceIntegrity), args.Error(1)
}

// --- Mock MasterService ---
type MockMasterService struct {
	mock.Mock
}

var _ portssvc.MasterSvcFacade = (*MockMasterService)(nil)

func (m *MockMasterService) CreatePaymentMode(ctx context.Context, req dto.CreatePaymentModeRequest, actor domain.Actor) (*domain.PaymentMode, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentMode), args.Error(1)
}

func (m *MockMasterService) GetPaymentModeByID(ctx context.Context, paymentModeID string, actor domain.Actor) (*domain.PaymentMode, error) {
	args := m.Called(ctx, paymentModeID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentMode), args.Error(1)
}

func (m *MockMasterService) ListPaymentModes(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.PaymentMode, error) {
	args := m.Called(ctx, includeInactive, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentMode), args.Error(1)
}

func (m *MockMasterService) DeactivatePaymentMode(ctx context.Context, paymentModeID string, actor domain.Actor) error {
	args := m.Called(ctx, paymentModeID, actor)
	return args.Error(0)
}

func (m *MockMasterService) CreateParty(ctx context.Context, req dto.CreateNamedMasterRequest, actor domain.Actor) (*domain.Party, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockMasterService) ListParties(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.Party, error) {
	args := m.Called(ctx, includeInactive, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Party), args.Error(1)
}

func (m *MockMasterService) DeactivateParty(ctx context.Context, partyID string, actor domain.Actor) error {
	args := m.Called(ctx, partyID, actor)
	return args.Error(0)
}

func (m *MockMasterService) CreateHead(ctx context.Context, req dto.CreateNamedMasterRequest, actor domain.Actor) (*domain.Head, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Head), args.Error(1)
}

func (m *MockMasterService) ListHeads(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.Head, error) {
	args := m.Called(ctx, includeInactive, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Head), args.Error(1)
}

func (m *MockMasterService) DeactivateHead(ctx context.Context, headID string, actor domain.Actor) error {
	args := m.Called(ctx, headID, actor)
	return args.Error(0)
}

func (m *MockMasterService) CreatePaymentType(ctx context.Context, req dto.CreateNamedMasterRequest, actor domain.Actor) (*domain.PaymentType, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentType), args.Error(1)
}

func (m *MockMasterService) ListPaymentTypes(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.PaymentType, error) {
	args := m.Called(ctx, includeInactive, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentType), args.Error(1)
}

func (m *MockMasterService) DeactivatePaymentType(ctx context.Context, paymentTypeID string, actor domain.Actor) error {
	args := m.Called(ctx, paymentTypeID, actor)
	return args.Error(0)
}

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest, actor domain.Actor) (*domain.User, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Test Suite ---
type LedgerHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *MockLedgerService
	mockReportService *MockReportService
	mockMasterService *MockMasterService
	mockUserService   *MockUserService
	jwtSecret         string
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockLedgerService = new(MockLedgerService)
	suite.mockReportService = new(MockReportService)
	suite.mockMasterService = new(MockMasterService)
	suite.mockUserService = new(MockUserService)

	cfg := &config.Config{
		JWTSecret:         suite.jwtSecret,
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "finance-backend-test",
		IsProduction:      true, // skip swagger routes
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Ledger: suite.mockLedgerService,
		Report: suite.mockReportService,
		Master: suite.mockMasterService,
		User:   suite.mockUserService,
	})
}

func (suite *LedgerHandlerTestSuite) generateTestToken(userID string, role domain.Role) string {
	token, err := utils.GenerateJWT(userID, string(role), suite.jwtSecret, time.Hour, "finance-backend-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *LedgerHandlerTestSuite) doJSON(method, url string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *LedgerHandlerTestSuite) TestCreateEntry_Success() {
	userID := uuid.NewString()
	amount := decimal.NewFromInt(500)
	entry := &domain.LedgerEntry{
		EntryID:         uuid.NewString(),
		SerialNumber:    "CR-0007",
		TransactionType: domain.Credit,
		Status:          domain.StatusApproved,
		ReceivedAmount:  &amount,
	}

	suite.mockLedgerService.On("CreateEntry",
		mock.Anything,
		mock.MatchedBy(func(req dto.CreateLedgerEntryRequest) bool {
			return req.TransactionType == domain.Credit && req.ReceivedAmount.Equal(amount)
		}),
		domain.Actor{UserID: userID, Role: domain.RoleFinanceExecutive},
	).Return(entry, nil).Once()

	body := map[string]interface{}{
		"transactionType": "CREDIT",
		"description":     "OPD collections",
		"partyId":         uuid.NewString(),
		"headId":          uuid.NewString(),
		"paymentTypeId":   uuid.NewString(),
		"paymentModeId":   uuid.NewString(),
		"receivedAmount":  "500",
	}
	token := suite.generateTestToken(userID, domain.RoleFinanceExecutive)
	w := suite.doJSON(http.MethodPost, "/api/v1/finance/ledger", body, token)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.APIResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Success)
	suite.Contains(resp.Message, "CR-0007")
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestCreateEntry_MissingToken() {
	w := suite.doJSON(http.MethodPost, "/api/v1/finance/ledger", map[string]interface{}{}, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestCreateEntry_MissingFieldsRejected() {
	token := suite.generateTestToken(uuid.NewString(), domain.RoleFinanceExecutive)
	w := suite.doJSON(http.MethodPost, "/api/v1/finance/ledger", map[string]interface{}{
		"transactionType": "CREDIT",
	}, token)

	suite.Equal(http.StatusBadRequest, w.Code)

	var resp dto.APIResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.Success)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestApproveEntry_ForbiddenMapsTo403() {
	entryID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("ApproveEntry", mock.Anything, entryID,
		domain.Actor{UserID: userID, Role: domain.RoleFinanceExecutive}).
		Return(nil, apperrors.ErrForbidden).Once()

	token := suite.generateTestToken(userID, domain.RoleFinanceExecutive)
	w := suite.doJSON(http.MethodPost, "/api/v1/finance/ledger/"+entryID+"/approve", nil, token)

	suite.Equal(http.StatusForbidden, w.Code)

	var resp dto.APIResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.Success)
	suite.Equal("You do not have permission to perform this action", resp.Error)
}

func (suite *LedgerHandlerTestSuite) TestApproveEdit_NoPendingRequestMapsTo400() {
	entryID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("ApproveEdit", mock.Anything, entryID, "",
		domain.Actor{UserID: userID, Role: domain.RoleAdmin}).
		Return(nil, apperrors.NewValidationError("No pending edit request found")).Once()

	token := suite.generateTestToken(userID, domain.RoleAdmin)
	w := suite.doJSON(http.MethodPost, "/api/v1/finance/ledger/"+entryID+"/approve-edit", nil, token)

	suite.Equal(http.StatusBadRequest, w.Code)

	var resp dto.APIResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("No pending edit request found", resp.Error)
}

func (suite *LedgerHandlerTestSuite) TestGetEntry_NotFoundMapsTo404() {
	entryID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("GetEntryByID", mock.Anything, entryID,
		domain.Actor{UserID: userID, Role: domain.RoleViewer}).
		Return(nil, apperrors.NewNotFoundError("ledger entry not found")).Once()

	token := suite.generateTestToken(userID, domain.RoleViewer)
	w := suite.doJSON(http.MethodGet, "/api/v1/finance/ledger/"+entryID, nil, token)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestRejectEntry_MissingReasonRejected() {
	entryID := uuid.NewString()
	token := suite.generateTestToken(uuid.NewString(), domain.RoleFinanceManager)

	w := suite.doJSON(http.MethodPost, "/api/v1/finance/ledger/"+entryID+"/reject", map[string]interface{}{}, token)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "RejectEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestListEntries_PassesFilters() {
	userID := uuid.NewString()

	suite.mockLedgerService.On("ListEntries", mock.Anything,
		mock.MatchedBy(func(p dto.ListLedgerEntriesParams) bool {
			return p.Status == "PENDING" && p.Page == 2 && p.Limit == 25
		}),
		domain.Actor{UserID: userID, Role: domain.RoleViewer},
	).Return(&dto.ListLedgerEntriesResponse{Entries: []dto.LedgerEntryResponse{}, Page: 2, Limit: 25, Total: 0}, nil).Once()

	token := suite.generateTestToken(userID, domain.RoleViewer)
	w := suite.doJSON(http.MethodGet, "/api/v1/finance/ledger?status=PENDING&page=2&limit=25", nil, token)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestLogin_IssuesToken() {
	user := &domain.User{
		UserID:   uuid.NewString(),
		Username: "admin",
		Name:     "System Administrator",
		Role:     domain.RoleAdmin,
		IsActive: true,
	}

	suite.mockUserService.On("Authenticate", mock.Anything, "admin", "correct-horse").Return(user, nil).Once()

	w := suite.doJSON(http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "admin",
		"password": "correct-horse",
	}, "")

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.APIResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Success)
	data, err := json.Marshal(resp.Data)
	suite.Require().NoError(err)
	var login dto.LoginResponse
	suite.Require().NoError(json.Unmarshal(data, &login))
	suite.NotEmpty(login.Token)
	suite.Equal(user.UserID, login.UserID)

	// The issued token must round-trip through the auth middleware.
	claims, err := utils.ParseAndValidateJWT(login.Token, suite.jwtSecret)
	suite.Require().NoError(err)
	suite.Equal(user.UserID, claims.Subject)
	suite.Equal(string(domain.RoleAdmin), claims.Role)
}

func (suite *LedgerHandlerTestSuite) TestLogin_BadCredentials() {
	suite.mockUserService.On("Authenticate", mock.Anything, "admin", "wrong").
		Return(nil, apperrors.ErrForbidden).Once()

	w := suite.doJSON(http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "admin",
		"password": "wrong",
	}, "")

	suite.Equal(http.StatusForbidden, w.Code)
}

func TestLedgerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
