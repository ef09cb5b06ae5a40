package services

import (
	"context"
	"testing"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTeamServiceForTest() (TeamService, *MockTeamRepository) {
	teamRepo := new(MockTeamRepository)
	userRepo := new(MockUserRepository)
	uploader := new(MockFileUploader)
	return NewTeamService(teamRepo, userRepo, uploader), teamRepo
}

func TestTeamService_Create_LeaderGetsRosterSpot(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	teamRepo.On("FindMembership", ctx, "user-1").Return(nil, repositories.ErrTeamNotFound)
	teamRepo.On("Create", ctx, mock.MatchedBy(func(team *models.Team) bool {
		return team.Name == "Night Owls" &&
			team.Mode == models.TeamModeDuo &&
			team.MaxMembers == 2 &&
			team.LeaderID == "user-1" &&
			len(team.JoinCode) == 8
	})).Return(nil)
	teamRepo.On("AddMember", ctx, mock.MatchedBy(func(m *models.TeamMember) bool {
		return m.UserID == "user-1" && m.Role == models.TeamRoleLeader
	})).Return(nil)

	team, err := svc.Create(ctx, "user-1", CreateTeamInput{Name: "Night Owls", Mode: models.TeamModeDuo})

	assert.NoError(t, err)
	assert.Len(t, team.Members, 1)
	assert.Equal(t, models.TeamRoleLeader, team.Members[0].Role)
	teamRepo.AssertExpectations(t)
}

func TestTeamService_Create_AlreadyInTeam(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	existing := &models.TeamMember{TeamID: "team-9", UserID: "user-1"}
	teamRepo.On("FindMembership", ctx, "user-1").Return(existing, nil)

	_, err := svc.Create(ctx, "user-1", CreateTeamInput{Name: "Second Team", Mode: models.TeamModeSquad})

	assert.ErrorIs(t, err, ErrAlreadyInTeam)
	teamRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTeamService_Create_InvalidMode(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	_, err := svc.Create(ctx, "user-1", CreateTeamInput{Name: "Bad Mode", Mode: "trio"})

	assert.ErrorIs(t, err, ErrValidationFailed)
	teamRepo.AssertNotCalled(t, "FindMembership", mock.Anything, mock.Anything)
}

func TestTeamService_Create_CleansUpWhenLeaderInsertFails(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	teamRepo.On("FindMembership", ctx, "user-1").Return(nil, repositories.ErrTeamNotFound)
	teamRepo.On("Create", ctx, mock.Anything).Return(nil)
	teamRepo.On("AddMember", ctx, mock.Anything).Return(repositories.ErrTeamMemberConflict)
	teamRepo.On("Delete", ctx, mock.Anything).Return(nil)

	_, err := svc.Create(ctx, "user-1", CreateTeamInput{Name: "Doomed", Mode: models.TeamModeDuo})

	assert.ErrorIs(t, err, ErrAlreadyInTeam)
	teamRepo.AssertCalled(t, "Delete", ctx, mock.Anything)
}

func TestTeamService_JoinByCode_FullTeam(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	team := &models.Team{ID: "team-1", Mode: models.TeamModeDuo, MaxMembers: 2, LeaderID: "user-1", JoinCode: "ABCD2345"}
	teamRepo.On("GetByJoinCode", ctx, "ABCD2345").Return(team, nil)
	teamRepo.On("CountMembers", ctx, "team-1").Return(2, nil)

	_, err := svc.JoinByCode(ctx, "user-3", "ABCD2345")

	assert.ErrorIs(t, err, ErrTeamFull)
	teamRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
}

func TestTeamService_JoinByCode_AddsMember(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	team := &models.Team{ID: "team-1", Mode: models.TeamModeSquad, MaxMembers: 4, LeaderID: "user-1", JoinCode: "ABCD2345"}
	members := []models.TeamMember{
		{TeamID: "team-1", UserID: "user-1", Role: models.TeamRoleLeader},
		{TeamID: "team-1", UserID: "user-2", Role: models.TeamRoleMember},
	}

	teamRepo.On("GetByJoinCode", ctx, "ABCD2345").Return(team, nil)
	teamRepo.On("CountMembers", ctx, "team-1").Return(1, nil)
	teamRepo.On("AddMember", ctx, mock.MatchedBy(func(m *models.TeamMember) bool {
		return m.TeamID == "team-1" && m.UserID == "user-2" && m.Role == models.TeamRoleMember
	})).Return(nil)
	teamRepo.On("GetByID", ctx, "team-1").Return(team, nil)
	teamRepo.On("ListMembers", ctx, "team-1").Return(members, nil)

	joined, err := svc.JoinByCode(ctx, "user-2", "ABCD2345")

	assert.NoError(t, err)
	assert.Len(t, joined.Members, 2)
	teamRepo.AssertExpectations(t)
}

func TestTeamService_Leave_LeaderWithMembersBlocked(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	team := &models.Team{ID: "team-1", LeaderID: "user-1", MaxMembers: 4}
	teamRepo.On("GetByID", ctx, "team-1").Return(team, nil)
	teamRepo.On("CountMembers", ctx, "team-1").Return(3, nil)

	err := svc.Leave(ctx, "team-1", "user-1")

	assert.ErrorIs(t, err, ErrLeaderCannotLeave)
	teamRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	teamRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamService_Leave_LastMemberDissolvesTeam(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	team := &models.Team{ID: "team-1", LeaderID: "user-1", MaxMembers: 2}
	teamRepo.On("GetByID", ctx, "team-1").Return(team, nil)
	teamRepo.On("CountMembers", ctx, "team-1").Return(1, nil)
	teamRepo.On("Delete", ctx, "team-1").Return(nil)

	err := svc.Leave(ctx, "team-1", "user-1")

	assert.NoError(t, err)
	teamRepo.AssertExpectations(t)
}

func TestTeamService_Kick_LeaderOnly(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	team := &models.Team{ID: "team-1", LeaderID: "user-1", MaxMembers: 4}
	teamRepo.On("GetByID", ctx, "team-1").Return(team, nil)

	err := svc.Kick(ctx, "team-1", "user-2", "user-3")

	assert.ErrorIs(t, err, ErrLeaderActionOnly)
	teamRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestTeamService_Kick_RemovesMember(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	team := &models.Team{ID: "team-1", LeaderID: "user-1", MaxMembers: 4}
	teamRepo.On("GetByID", ctx, "team-1").Return(team, nil)
	teamRepo.On("RemoveMember", ctx, "team-1", "user-3").Return(nil)

	err := svc.Kick(ctx, "team-1", "user-1", "user-3")

	assert.NoError(t, err)
	teamRepo.AssertExpectations(t)
}

func TestTeamService_List_BlanksJoinCodes(t *testing.T) {
	ctx := context.Background()
	svc, teamRepo := newTeamServiceForTest()

	teams := []models.Team{
		{ID: "team-1", Name: "Alpha", JoinCode: "ABCD2345"},
		{ID: "team-2", Name: "Bravo", JoinCode: "EFGH6789"},
	}
	teamRepo.On("List", ctx, 50, 0).Return(teams, nil)

	listed, err := svc.List(ctx, 0, 0)

	assert.NoError(t, err)
	for _, team := range listed {
		assert.Empty(t, team.JoinCode)
	}
}
