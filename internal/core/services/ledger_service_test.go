package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
	portssvc "github.com/sunrisehms/finance_backend/internal/core/ports/services"
	"github.com/sunrisehms/finance_backend/internal/core/services"
	"github.com/sunrisehms/finance_backend/internal/dto"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) CreateEntry(ctx context.Context, entry *domain.LedgerEntry, balanceDelta decimal.Decimal, audit domain.LedgerAuditLog) error {
	args := m.Called(ctx, entry, balanceDelta, audit)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntries(ctx context.Context, filter portsrepo.ListEntriesFilter) ([]domain.LedgerEntry, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) SaveEntryMutation(ctx context.Context, entry domain.LedgerEntry, balanceDeltas map[string]decimal.Decimal, audits []domain.LedgerAuditLog) error {
	args := m.Called(ctx, entry, balanceDeltas, audits)
	return args.Error(0)
}

// --- Mock PaymentModeRepository ---
type MockPaymentModeRepository struct {
	mock.Mock
}

var _ portsrepo.PaymentModeRepositoryFacade = (*MockPaymentModeRepository)(nil)

func (m *MockPaymentModeRepository) CreatePaymentMode(ctx context.Context, mode domain.PaymentMode) error {
	args := m.Called(ctx, mode)
	return args.Error(0)
}

func (m *MockPaymentModeRepository) FindPaymentModeByID(ctx context.Context, paymentModeID string) (*domain.PaymentMode, error) {
	args := m.Called(ctx, paymentModeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentMode), args.Error(1)
}

func (m *MockPaymentModeRepository) ListPaymentModes(ctx context.Context, includeInactive bool) ([]domain.PaymentMode, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentMode), args.Error(1)
}

func (m *MockPaymentModeRepository) DeactivatePaymentMode(ctx context.Context, paymentModeID string, userID string, now time.Time) error {
	args := m.Called(ctx, paymentModeID, userID, now)
	return args.Error(0)
}

func (m *MockPaymentModeRepository) GetPaymentModeTotals(ctx context.Context, paymentModeID string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, paymentModeID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

// --- Mock MasterRepository ---
type MockMasterRepository struct {
	mock.Mock
}

var _ portsrepo.MasterRepositoryFacade = (*MockMasterRepository)(nil)

func (m *MockMasterRepository) CreateParty(ctx context.Context, party domain.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockMasterRepository) FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockMasterRepository) ListParties(ctx context.Context, includeInactive bool) ([]domain.Party, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Party), args.Error(1)
}

func (m *MockMasterRepository) DeactivateParty(ctx context.Context, partyID string, userID string, now time.Time) error {
	args := m.Called(ctx, partyID, userID, now)
	return args.Error(0)
}

func (m *MockMasterRepository) CreateHead(ctx context.Context, head domain.Head) error {
	args := m.Called(ctx, head)
	return args.Error(0)
}

func (m *MockMasterRepository) FindHeadByID(ctx context.Context, headID string) (*domain.Head, error) {
	args := m.Called(ctx, headID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Head), args.Error(1)
}

func (m *MockMasterRepository) ListHeads(ctx context.Context, includeInactive bool) ([]domain.Head, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Head), args.Error(1)
}

func (m *MockMasterRepository) DeactivateHead(ctx context.Context, headID string, userID string, now time.Time) error {
	args := m.Called(ctx, headID, userID, now)
	return args.Error(0)
}

func (m *MockMasterRepository) CreatePaymentType(ctx context.Context, pt domain.PaymentType) error {
	args := m.Called(ctx, pt)
	return args.Error(0)
}

func (m *MockMasterRepository) FindPaymentTypeByID(ctx context.Context, paymentTypeID string) (*domain.PaymentType, error) {
	args := m.Called(ctx, paymentTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentType), args.Error(1)
}

func (m *MockMasterRepository) ListPaymentTypes(ctx context.Context, includeInactive bool) ([]domain.PaymentType, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentType), args.Error(1)
}

func (m *MockMasterRepository) DeactivatePaymentType(ctx context.Context, paymentTypeID string, userID string, now time.Time) error {
	args := m.Called(ctx, paymentTypeID, userID, now)
	return args.Error(0)
}

// --- Mock AuditLogRepository ---
type MockAuditLogRepository struct {
	mock.Mock
}

var _ portsrepo.AuditLogRepositoryFacade = (*MockAuditLogRepository)(nil)

func (m *MockAuditLogRepository) ListAuditLogsByEntry(ctx context.Context, entryID string) ([]domain.LedgerAuditLog, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerAuditLog), args.Error(1)
}

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo      *MockLedgerRepository
	mockPaymentModeRepo *MockPaymentModeRepository
	mockMasterRepo      *MockMasterRepository
	mockAuditRepo       *MockAuditLogRepository
	service             portssvc.LedgerSvcFacade

	party       domain.Party
	head        domain.Head
	paymentType domain.PaymentType
	mode        domain.PaymentMode
	destMode    domain.PaymentMode

	admin     domain.Actor
	manager   domain.Actor
	executive domain.Actor
	viewer    domain.Actor
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockPaymentModeRepo = new(MockPaymentModeRepository)
	suite.mockMasterRepo = new(MockMasterRepository)
	suite.mockAuditRepo = new(MockAuditLogRepository)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockPaymentModeRepo, suite.mockMasterRepo, suite.mockAuditRepo)

	suite.party = domain.Party{PartyID: uuid.NewString(), Name: "City Diagnostics", IsActive: true}
	suite.head = domain.Head{HeadID: uuid.NewString(), Name: "Pharmacy Purchases", IsActive: true}
	suite.paymentType = domain.PaymentType{PaymentTypeID: uuid.NewString(), Name: "UPI", IsActive: true}
	suite.mode = domain.PaymentMode{
		PaymentModeID:  uuid.NewString(),
		Name:           "Main Cash",
		OpeningBalance: decimal.NewFromInt(1000),
		CurrentBalance: decimal.NewFromInt(1000),
		IsActive:       true,
	}
	suite.destMode = domain.PaymentMode{
		PaymentModeID:  uuid.NewString(),
		Name:           "HDFC Current",
		OpeningBalance: decimal.Zero,
		CurrentBalance: decimal.NewFromInt(5000),
		IsActive:       true,
	}

	suite.admin = domain.Actor{UserID: uuid.NewString(), Role: domain.RoleAdmin}
	suite.manager = domain.Actor{UserID: uuid.NewString(), Role: domain.RoleFinanceManager}
	suite.executive = domain.Actor{UserID: uuid.NewString(), Role: domain.RoleFinanceExecutive}
	suite.viewer = domain.Actor{UserID: uuid.NewString(), Role: domain.RoleViewer}
}

// expectActiveReferences wires the master lookups CreateEntry performs.
func (suite *LedgerServiceTestSuite) expectActiveReferences(withDestination bool) {
	suite.mockMasterRepo.On("FindPartyByID", mock.Anything, suite.party.PartyID).Return(&suite.party, nil).Once()
	suite.mockMasterRepo.On("FindHeadByID", mock.Anything, suite.head.HeadID).Return(&suite.head, nil).Once()
	suite.mockMasterRepo.On("FindPaymentTypeByID", mock.Anything, suite.paymentType.PaymentTypeID).Return(&suite.paymentType, nil).Once()
	suite.mockPaymentModeRepo.On("FindPaymentModeByID", mock.Anything, suite.mode.PaymentModeID).Return(&suite.mode, nil).Once()
	if withDestination {
		suite.mockPaymentModeRepo.On("FindPaymentModeByID", mock.Anything, suite.destMode.PaymentModeID).Return(&suite.destMode, nil).Once()
	}
}

func (suite *LedgerServiceTestSuite) baseRequest(t domain.TransactionType) dto.CreateLedgerEntryRequest {
	return dto.CreateLedgerEntryRequest{
		TransactionType: t,
		Description:     "October supplies",
		PartyID:         suite.party.PartyID,
		HeadID:          suite.head.HeadID,
		PaymentTypeID:   suite.paymentType.PaymentTypeID,
		PaymentModeID:   suite.mode.PaymentModeID,
	}
}

func (suite *LedgerServiceTestSuite) pendingDebit(amount decimal.Decimal) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		EntryID:         uuid.NewString(),
		SerialNumber:    "DR-0042",
		TransactionType: domain.Debit,
		TransactionDate: time.Now().UTC(),
		Description:     "Vendor settlement",
		PartyID:         suite.party.PartyID,
		HeadID:          suite.head.HeadID,
		PaymentTypeID:   suite.paymentType.PaymentTypeID,
		PaymentModeID:   suite.mode.PaymentModeID,
		PaymentAmount:   &amount,
		Status:          domain.StatusPending,
	}
}

// --- CreateEntry ---

func (suite *LedgerServiceTestSuite) TestCreateEntry_CreditAutoApproves() {
	ctx := context.Background()
	amount := decimal.NewFromInt(500)
	req := suite.baseRequest(domain.Credit)
	req.ReceivedAmount = &amount

	suite.expectActiveReferences(false)
	suite.mockLedgerRepo.On("CreateEntry", ctx,
		mock.AnythingOfType("*domain.LedgerEntry"),
		mock.MatchedBy(func(delta decimal.Decimal) bool { return delta.Equal(amount) }),
		mock.MatchedBy(func(audit domain.LedgerAuditLog) bool { return audit.Action == domain.ActionCreated }),
	).Return(nil).Once()

	entry, err := suite.service.CreateEntry(ctx, req, suite.executive)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.StatusApproved, entry.Status)
	suite.Require().NotNil(entry.ApprovedBy)
	suite.Equal(suite.executive.UserID, *entry.ApprovedBy)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockMasterRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_DebitStaysPending() {
	ctx := context.Background()
	amount := decimal.NewFromInt(300)
	req := suite.baseRequest(domain.Debit)
	req.PaymentAmount = &amount

	suite.expectActiveReferences(false)
	suite.mockLedgerRepo.On("CreateEntry", ctx,
		mock.AnythingOfType("*domain.LedgerEntry"),
		mock.MatchedBy(func(delta decimal.Decimal) bool { return delta.IsZero() }),
		mock.AnythingOfType("domain.LedgerAuditLog"),
	).Return(nil).Once()

	entry, err := suite.service.CreateEntry(ctx, req, suite.executive)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPending, entry.Status)
	suite.Nil(entry.ApprovedBy)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_SelfTransferNeedsDestination() {
	ctx := context.Background()
	amount := decimal.NewFromInt(100)
	req := suite.baseRequest(domain.SelfTransfer)
	req.TransferAmount = &amount

	_, err := suite.service.CreateEntry(ctx, req, suite.executive)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "transferToModeId")
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_RejectsForeignAmountField() {
	ctx := context.Background()
	amount := decimal.NewFromInt(500)
	req := suite.baseRequest(domain.Credit)
	req.PaymentAmount = &amount // wrong field for a CREDIT

	_, err := suite.service.CreateEntry(ctx, req, suite.executive)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_SplitComponentsMustSum() {
	ctx := context.Background()
	amount := decimal.NewFromInt(500)
	compA := decimal.NewFromInt(300)
	compB := decimal.NewFromInt(150) // 300 + 150 != 500
	req := suite.baseRequest(domain.Credit)
	req.ReceivedAmount = &amount
	req.ComponentA = &compA
	req.ComponentB = &compB

	_, err := suite.service.CreateEntry(ctx, req, suite.executive)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "sum")
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_ViewerForbidden() {
	ctx := context.Background()
	amount := decimal.NewFromInt(500)
	req := suite.baseRequest(domain.Credit)
	req.ReceivedAmount = &amount

	_, err := suite.service.CreateEntry(ctx, req, suite.viewer)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateEntry_InactivePartyRejected() {
	ctx := context.Background()
	amount := decimal.NewFromInt(500)
	req := suite.baseRequest(domain.Credit)
	req.ReceivedAmount = &amount

	inactive := suite.party
	inactive.IsActive = false
	suite.mockMasterRepo.On("FindPartyByID", mock.Anything, suite.party.PartyID).Return(&inactive, nil).Once()

	_, err := suite.service.CreateEntry(ctx, req, suite.executive)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "inactive")
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- ApproveEntry ---

func (suite *LedgerServiceTestSuite) TestApproveEntry_DebitAppliesNegativeDelta() {
	ctx := context.Background()
	amount := decimal.NewFromInt(200)
	entry := suite.pendingDebit(amount)

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SaveEntryMutation", ctx,
		mock.MatchedBy(func(e domain.LedgerEntry) bool {
			return e.Status == domain.StatusApproved && e.ApprovedBy != nil && *e.ApprovedBy == suite.manager.UserID
		}),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool {
			return len(deltas) == 1 && deltas[suite.mode.PaymentModeID].Equal(amount.Neg())
		}),
		mock.MatchedBy(func(audits []domain.LedgerAuditLog) bool {
			return len(audits) == 1 && audits[0].Action == domain.ActionApproved
		}),
	).Return(nil).Once()

	approved, err := suite.service.ApproveEntry(ctx, entry.EntryID, suite.manager)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, approved.Status)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApproveEntry_SelfTransferMovesBothLegs() {
	ctx := context.Background()
	amount := decimal.NewFromInt(400)
	destID := suite.destMode.PaymentModeID
	entry := suite.pendingDebit(amount)
	entry.TransactionType = domain.SelfTransfer
	entry.PaymentAmount = nil
	entry.TransferAmount = &amount
	entry.TransferToModeID = &destID

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SaveEntryMutation", ctx,
		mock.AnythingOfType("domain.LedgerEntry"),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool {
			return len(deltas) == 2 &&
				deltas[suite.mode.PaymentModeID].Equal(amount.Neg()) &&
				deltas[destID].Equal(amount)
		}),
		mock.AnythingOfType("[]domain.LedgerAuditLog"),
	).Return(nil).Once()

	_, err := suite.service.ApproveEntry(ctx, entry.EntryID, suite.manager)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApproveEntry_NonPendingConflicts() {
	ctx := context.Background()
	entry := suite.pendingDebit(decimal.NewFromInt(200))
	entry.Status = domain.StatusApproved

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.ApproveEntry(ctx, entry.EntryID, suite.manager)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveEntryMutation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApproveEntry_ExecutiveForbidden() {
	ctx := context.Background()

	_, err := suite.service.ApproveEntry(ctx, uuid.NewString(), suite.executive)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "FindEntryByID", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApproveEntry_DeletedEntryBlocked() {
	ctx := context.Background()
	entry := suite.pendingDebit(decimal.NewFromInt(200))
	entry.IsDeleted = true

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.ApproveEntry(ctx, entry.EntryID, suite.manager)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "deleted")
}

// --- RejectEntry ---

func (suite *LedgerServiceTestSuite) TestRejectEntry_StoresReasonWithoutBalanceChange() {
	ctx := context.Background()
	entry := suite.pendingDebit(decimal.NewFromInt(200))
	reason := "duplicate of DR-0041"

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SaveEntryMutation", ctx,
		mock.MatchedBy(func(e domain.LedgerEntry) bool {
			return e.Status == domain.StatusRejected && e.RejectionReason != nil && *e.RejectionReason == reason
		}),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool { return len(deltas) == 0 }),
		mock.MatchedBy(func(audits []domain.LedgerAuditLog) bool {
			return len(audits) == 1 && audits[0].Action == domain.ActionRejected && audits[0].Reason == reason
		}),
	).Return(nil).Once()

	rejected, err := suite.service.RejectEntry(ctx, entry.EntryID, reason, suite.manager)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusRejected, rejected.Status)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

// --- Edit requests ---

func (suite *LedgerServiceTestSuite) TestRequestEdit_SecondPendingRejected() {
	ctx := context.Background()
	entry := suite.pendingDebit(decimal.NewFromInt(200))
	pending := domain.EditPending
	entry.EditRequestStatus = &pending

	desc := "corrected description"
	changes := domain.EditChanges{Description: &desc}

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.RequestEdit(ctx, entry.EntryID, changes, "typo", suite.executive)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "already pending")
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveEntryMutation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRequestEdit_EmptyChangesRejected() {
	ctx := context.Background()

	_, err := suite.service.RequestEdit(ctx, uuid.NewString(), domain.EditChanges{}, "", suite.executive)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "FindEntryByID", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApproveEdit_MergesWithoutBalanceChange() {
	ctx := context.Background()
	original := decimal.NewFromInt(500)
	proposed := decimal.NewFromInt(750)
	desc := "corrected amount after recount"

	entry := suite.pendingDebit(original)
	entry.TransactionType = domain.Credit
	entry.PaymentAmount = nil
	entry.ReceivedAmount = &original
	entry.Status = domain.StatusApproved
	entry.OpeningBalance = decimal.NewFromInt(1000)
	entry.CurrentBalance = decimal.NewFromInt(1500)
	pending := domain.EditPending
	entry.EditRequestStatus = &pending
	entry.ProposedChanges = &domain.EditChanges{Description: &desc, ReceivedAmount: &proposed}

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SaveEntryMutation", ctx,
		mock.MatchedBy(func(e domain.LedgerEntry) bool {
			return e.EditCount == 1 &&
				e.EditRequestStatus != nil && *e.EditRequestStatus == domain.EditApproved &&
				e.Description == desc &&
				e.ReceivedAmount != nil && e.ReceivedAmount.Equal(proposed) &&
				e.CurrentBalance.Equal(decimal.NewFromInt(1500)) // balance snapshot untouched by the edit
		}),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool { return len(deltas) == 0 }),
		mock.MatchedBy(func(audits []domain.LedgerAuditLog) bool {
			return len(audits) == 2 &&
				audits[0].Action == domain.ActionEditApproved &&
				audits[1].Action == domain.ActionUpdated
		}),
	).Return(nil).Once()

	updated, err := suite.service.ApproveEdit(ctx, entry.EntryID, "looks right", suite.admin)

	suite.Require().NoError(err)
	suite.Equal(1, updated.EditCount)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApproveEdit_NoPendingRequest() {
	ctx := context.Background()
	entry := suite.pendingDebit(decimal.NewFromInt(200))

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.ApproveEdit(ctx, entry.EntryID, "", suite.admin)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "No pending edit request found")
}

func (suite *LedgerServiceTestSuite) TestRejectEdit_NoPendingRequest() {
	ctx := context.Background()
	entry := suite.pendingDebit(decimal.NewFromInt(200))

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.RejectEdit(ctx, entry.EntryID, "not needed", suite.admin)

	suite.Require().Error(err)
	suite.ErrorContains(err, "No pending edit request found")
}

func (suite *LedgerServiceTestSuite) TestApproveEdit_ManagerForbidden() {
	ctx := context.Background()

	_, err := suite.service.ApproveEdit(ctx, uuid.NewString(), "", suite.manager)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

// --- UndoLastAction ---

func (suite *LedgerServiceTestSuite) TestUndo_DebitApprovalRestoresBalance() {
	ctx := context.Background()
	amount := decimal.NewFromInt(200)
	now := time.Now().UTC()
	entry := suite.pendingDebit(amount)
	entry.Status = domain.StatusApproved
	entry.ApprovedBy = &suite.manager.UserID
	entry.ApprovedAt = &now

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SaveEntryMutation", ctx,
		mock.MatchedBy(func(e domain.LedgerEntry) bool {
			return e.Status == domain.StatusPending && e.ApprovedBy == nil && e.ApprovedAt == nil
		}),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool {
			return len(deltas) == 1 && deltas[suite.mode.PaymentModeID].Equal(amount)
		}),
		mock.MatchedBy(func(audits []domain.LedgerAuditLog) bool {
			return len(audits) == 1 && audits[0].Action == domain.ActionUpdated
		}),
	).Return(nil).Once()

	undone, err := suite.service.UndoLastAction(ctx, entry.EntryID, suite.manager)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPending, undone.Status)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUndo_SelfTransferApprovalReversesBothLegs() {
	ctx := context.Background()
	amount := decimal.NewFromInt(400)
	destID := suite.destMode.PaymentModeID
	now := time.Now().UTC()

	entry := suite.pendingDebit(amount)
	entry.TransactionType = domain.SelfTransfer
	entry.PaymentAmount = nil
	entry.TransferAmount = &amount
	entry.TransferToModeID = &destID
	entry.Status = domain.StatusApproved
	entry.ApprovedBy = &suite.manager.UserID
	entry.ApprovedAt = &now

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SaveEntryMutation", ctx,
		mock.AnythingOfType("domain.LedgerEntry"),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool {
			return len(deltas) == 2 &&
				deltas[suite.mode.PaymentModeID].Equal(amount) &&
				deltas[destID].Equal(amount.Neg())
		}),
		mock.AnythingOfType("[]domain.LedgerAuditLog"),
	).Return(nil).Once()

	_, err := suite.service.UndoLastAction(ctx, entry.EntryID, suite.manager)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUndo_ByDifferentUserReportsNothing() {
	ctx := context.Background()
	now := time.Now().UTC()
	entry := suite.pendingDebit(decimal.NewFromInt(200))
	entry.Status = domain.StatusApproved
	entry.ApprovedBy = &suite.manager.UserID
	entry.ApprovedAt = &now

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.UndoLastAction(ctx, entry.EntryID, suite.admin)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "nothing to undo")
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveEntryMutation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestUndo_ApprovedCreditReportsNothing() {
	ctx := context.Background()
	amount := decimal.NewFromInt(500)
	entry := suite.pendingDebit(amount)
	entry.TransactionType = domain.Credit
	entry.PaymentAmount = nil
	entry.ReceivedAmount = &amount
	entry.Status = domain.StatusApproved
	entry.ApprovedBy = &suite.manager.UserID

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.UndoLastAction(ctx, entry.EntryID, suite.manager)

	suite.Require().Error(err)
	suite.ErrorContains(err, "nothing to undo")
}

func (suite *LedgerServiceTestSuite) TestUndo_EditApprovalRevertsSubStateOnly() {
	ctx := context.Background()
	now := time.Now().UTC()
	entry := suite.pendingDebit(decimal.NewFromInt(200))
	approved := domain.EditApproved
	entry.EditRequestStatus = &approved
	entry.EditApprovedBy = &suite.admin.UserID
	entry.EditApprovedAt = &now
	entry.EditCount = 1

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SaveEntryMutation", ctx,
		mock.MatchedBy(func(e domain.LedgerEntry) bool {
			return e.EditRequestStatus != nil && *e.EditRequestStatus == domain.EditPending &&
				e.EditApprovedBy == nil && e.EditCount == 1 // merged values stay
		}),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool { return len(deltas) == 0 }),
		mock.AnythingOfType("[]domain.LedgerAuditLog"),
	).Return(nil).Once()

	undone, err := suite.service.UndoLastAction(ctx, entry.EntryID, suite.admin)

	suite.Require().NoError(err)
	suite.Equal(domain.EditPending, *undone.EditRequestStatus)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

// --- DeleteEntry ---

func (suite *LedgerServiceTestSuite) TestDeleteEntry_RequiresAdmin() {
	ctx := context.Background()

	err := suite.service.DeleteEntry(ctx, uuid.NewString(), suite.manager)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "FindEntryByID", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteEntry_SoftDeletes() {
	ctx := context.Background()
	entry := suite.pendingDebit(decimal.NewFromInt(200))

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("SaveEntryMutation", ctx,
		mock.MatchedBy(func(e domain.LedgerEntry) bool { return e.IsDeleted }),
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool { return len(deltas) == 0 }),
		mock.MatchedBy(func(audits []domain.LedgerAuditLog) bool {
			return len(audits) == 1 && audits[0].Action == domain.ActionDeleted
		}),
	).Return(nil).Once()

	err := suite.service.DeleteEntry(ctx, entry.EntryID, suite.admin)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

// --- ListEntries ---

func (suite *LedgerServiceTestSuite) TestListEntries_InvalidStatusRejected() {
	ctx := context.Background()

	_, err := suite.service.ListEntries(ctx, dto.ListLedgerEntriesParams{Status: "MAYBE"}, suite.viewer)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ListEntries", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestListEntries_PagingDefaultsAndCap() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("ListEntries", ctx, mock.MatchedBy(func(f portsrepo.ListEntriesFilter) bool {
		return f.Limit == 200 && f.Offset == 400 // limit capped, page 3
	})).Return([]domain.LedgerEntry{}, int64(0), nil).Once()

	resp, err := suite.service.ListEntries(ctx, dto.ListLedgerEntriesParams{Page: 3, Limit: 1000}, suite.viewer)

	suite.Require().NoError(err)
	suite.Equal(3, resp.Page)
	suite.Equal(200, resp.Limit)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

// --- Audit trail ---

func (suite *LedgerServiceTestSuite) TestListAuditTrail_ReturnsRows() {
	ctx := context.Background()
	entry := suite.pendingDebit(decimal.NewFromInt(200))
	rows := []domain.LedgerAuditLog{
		{LogID: uuid.NewString(), EntryID: entry.EntryID, Action: domain.ActionCreated},
		{LogID: uuid.NewString(), EntryID: entry.EntryID, Action: domain.ActionApproved},
	}

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockAuditRepo.On("ListAuditLogsByEntry", ctx, entry.EntryID).Return(rows, nil).Once()

	got, err := suite.service.ListAuditTrail(ctx, entry.EntryID, suite.viewer)

	suite.Require().NoError(err)
	suite.Len(got, 2)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

// --- PreviewBalanceImpact ---

func (suite *LedgerServiceTestSuite) TestPreviewBalanceImpact_Debit() {
	ctx := context.Background()

	suite.mockPaymentModeRepo.On("FindPaymentModeByID", ctx, suite.mode.PaymentModeID).Return(&suite.mode, nil).Once()

	preview, err := suite.service.PreviewBalanceImpact(ctx, suite.mode.PaymentModeID, domain.Debit, decimal.NewFromInt(120), suite.viewer)

	suite.Require().NoError(err)
	suite.True(preview.ProjectedBalance.Equal(decimal.NewFromInt(880)))
	suite.True(preview.Impact.Equal(decimal.NewFromInt(-120)))
}

func (suite *LedgerServiceTestSuite) TestPreviewBalanceImpact_NonPositiveAmount() {
	ctx := context.Background()

	_, err := suite.service.PreviewBalanceImpact(ctx, suite.mode.PaymentModeID, domain.Debit, decimal.Zero, suite.viewer)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPaymentModeRepo.AssertNotCalled(suite.T(), "FindPaymentModeByID", mock.Anything, mock.Anything)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
