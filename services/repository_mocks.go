package services

import (
	"context"
	"io"
	"time"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/repositories"
	"github.com/arenaops/arena-server/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTxManager runs the transactional function inline with a nil executor,
// so repository mocks observe the same calls they would inside a real
// transaction.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(nil)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.User, error) {
	args := m.Called(ctx, exec, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAvatarKey(ctx context.Context, userID string, avatarKey *string) error {
	args := m.Called(ctx, userID, avatarKey)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) SetBanned(ctx context.Context, userID string, banned bool) error {
	args := m.Called(ctx, userID, banned)
	return args.Error(0)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, userID string, admin bool) error {
	args := m.Called(ctx, userID, admin)
	return args.Error(0)
}

func (m *MockUserRepository) CreditBalance(ctx context.Context, exec repositories.SQLExecutor, userID string, amount decimal.Decimal) error {
	args := m.Called(ctx, exec, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DebitBalance(ctx context.Context, exec repositories.SQLExecutor, userID string, amount decimal.Decimal) error {
	args := m.Called(ctx, exec, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, userID string, won bool, earnings decimal.Decimal) error {
	args := m.Called(ctx, exec, userID, won, earnings)
	return args.Error(0)
}

func (m *MockUserRepository) TopPlayers(ctx context.Context, limit int) ([]models.PlayerRanking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlayerRanking), args.Error(1)
}

// MockTeamRepository is a mock implementation of repositories.TeamRepository
type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Create(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamRepository) GetByJoinCode(ctx context.Context, joinCode string) (*models.Team, error) {
	args := m.Called(ctx, joinCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamRepository) List(ctx context.Context, limit, offset int) ([]models.Team, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *MockTeamRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTeamRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	args := m.Called(ctx, id, logoKey)
	return args.Error(0)
}

func (m *MockTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockTeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *MockTeamRepository) ListMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func (m *MockTeamRepository) CountMembers(ctx context.Context, teamID string) (int, error) {
	args := m.Called(ctx, teamID)
	return args.Int(0), args.Error(1)
}

func (m *MockTeamRepository) FindMembership(ctx context.Context, userID string) (*models.TeamMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamMember), args.Error(1)
}

func (m *MockTeamRepository) TopTeams(ctx context.Context, limit int) ([]models.TeamRanking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamRanking), args.Error(1)
}

// MockTournamentRepository is a mock implementation of repositories.TournamentRepository
type MockTournamentRepository struct {
	mock.Mock
}

func (m *MockTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTournamentRepository) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Tournament, error) {
	args := m.Called(ctx, exec, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTournamentRepository) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	args := m.Called(ctx, exec, id, status)
	return args.Error(0)
}

func (m *MockTournamentRepository) IncrementParticipants(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	args := m.Called(ctx, exec, id)
	return args.Error(0)
}

func (m *MockTournamentRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	args := m.Called(ctx, id, logoKey)
	return args.Error(0)
}

func (m *MockTournamentRepository) ListDueForStatusChange(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tournament), args.Error(1)
}

// MockParticipantRepository is a mock implementation of repositories.ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Participant) error {
	args := m.Called(ctx, exec, p)
	return args.Error(0)
}

func (m *MockParticipantRepository) FindByID(ctx context.Context, id string) (*models.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) FindByUserAndTournament(ctx context.Context, userID, tournamentID string) (*models.Participant, error) {
	args := m.Called(ctx, userID, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Participant, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, status models.ParticipantStatus) error {
	args := m.Called(ctx, exec, id, status)
	return args.Error(0)
}

// MockPaymentProofRepository is a mock implementation of repositories.PaymentProofRepository
type MockPaymentProofRepository struct {
	mock.Mock
}

func (m *MockPaymentProofRepository) Create(ctx context.Context, proof *models.PaymentProof) error {
	args := m.Called(ctx, proof)
	return args.Error(0)
}

func (m *MockPaymentProofRepository) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.PaymentProof, error) {
	args := m.Called(ctx, exec, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentProof), args.Error(1)
}

func (m *MockPaymentProofRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.PaymentProof, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentProof), args.Error(1)
}

func (m *MockPaymentProofRepository) ListByStatus(ctx context.Context, status models.ProofStatus, limit, offset int) ([]models.PaymentProof, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentProof), args.Error(1)
}

func (m *MockPaymentProofRepository) MarkReviewed(ctx context.Context, exec repositories.SQLExecutor, id string, status models.ProofStatus, notes *string, reviewerID string, reviewedAt time.Time) error {
	args := m.Called(ctx, exec, id, status, notes, reviewerID, reviewedAt)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of repositories.WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Append(ctx context.Context, exec repositories.SQLExecutor, tx *models.WalletTransaction) error {
	args := m.Called(ctx, exec, tx)
	return args.Error(0)
}

func (m *MockWalletRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WalletTransaction), args.Error(1)
}

// MockMatchResultRepository is a mock implementation of repositories.MatchResultRepository
type MockMatchResultRepository struct {
	mock.Mock
}

func (m *MockMatchResultRepository) Create(ctx context.Context, exec repositories.SQLExecutor, result *models.MatchResult) error {
	args := m.Called(ctx, exec, result)
	return args.Error(0)
}

func (m *MockMatchResultRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.MatchResult, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MatchResult), args.Error(1)
}

// MockNotificationRepository is a mock implementation of repositories.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockNotificationService is a mock implementation of NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, userID string, typ models.NotificationType, title, body string) {
	m.Called(ctx, userID, typ, title, body)
}

func (m *MockNotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockFileUploader is a mock implementation of storage.FileUploader
type MockFileUploader struct {
	mock.Mock
}

func (m *MockFileUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	args := m.Called(ctx, key, contentType, reader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *MockFileUploader) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockFileUploader) GetPublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}
