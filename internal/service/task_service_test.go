package service_test

import (
	"testing"

	"github.com/Baaaki/inmobiliaria-api/internal/broker"
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/repository"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/Baaaki/inmobiliaria-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TaskServiceTestSuite struct {
	suite.Suite
	testDB      *testutil.TestDatabase
	repos       repository.Repositories
	events      *recordingPublisher
	taskService *service.TaskService

	agentA    *models.User
	agentB    *models.User
	propertyA *models.Property
	propertyB *models.Property
}

func (s *TaskServiceTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.repos = repository.NewRepositories(s.testDB.DB)
}

func (s *TaskServiceTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *TaskServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	s.events = &recordingPublisher{}
	s.taskService = service.NewTaskService(s.repos, repository.NewTxRunner(s.testDB.DB), s.events)

	s.agentA = testutil.CreateTestAgent(s.T(), s.testDB.DB, "a")
	s.agentB = testutil.CreateTestAgent(s.T(), s.testDB.DB, "b")
	s.propertyA = testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "A's flat")
	s.propertyB = testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentB.ID, "B's flat")
}

func (s *TaskServiceTestSuite) input(propertyID uuid.UUID) service.TaskInput {
	return service.TaskInput{
		Title:       "Fix leak",
		Description: "Kitchen sink is leaking",
		PropertyID:  propertyID,
	}
}

func (s *TaskServiceTestSuite) TestCreateByAgentAssignsOwner() {
	task, err := s.taskService.CreateByAgent(s.T().Context(), s.input(s.propertyA.ID), s.agentA.ID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), s.agentA.ID, task.AssignedToID)
	assert.Equal(s.T(), s.propertyA.OwnerID, task.AssignedToID)
	assert.False(s.T(), task.IsCompleted)
	require.NotNil(s.T(), task.Property)
	require.NotNil(s.T(), task.AssignedTo)
	assert.Nil(s.T(), task.Property.Owner)

	assigned := s.events.ofType(broker.EventTaskAssigned)
	require.Len(s.T(), assigned, 1)
	assert.Equal(s.T(), s.agentA.ID.String(), assigned[0].AssignedTo)
}

func (s *TaskServiceTestSuite) TestCreateByAgentOnForeignProperty() {
	_, err := s.taskService.CreateByAgent(s.T().Context(), s.input(s.propertyB.ID), s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	_, err = s.taskService.CreateByAgent(s.T().Context(), s.input(uuid.New()), s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	assert.Empty(s.T(), s.events.ofType(broker.EventTaskAssigned))
}

func (s *TaskServiceTestSuite) TestCreateByAdminAssignsPropertyOwner() {
	task, err := s.taskService.CreateByAdmin(s.T().Context(), s.input(s.propertyB.ID))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.agentB.ID, task.AssignedToID)

	_, err = s.taskService.CreateByAdmin(s.T().Context(), s.input(uuid.New()))
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func (s *TaskServiceTestSuite) TestAgentScopedLookupHidesForeignTask() {
	task := testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyA, "Paint")

	_, err := s.taskService.GetByIDForAgent(s.T().Context(), task.ID, s.agentB.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	_, err = s.taskService.GetByIDForAgent(s.T().Context(), uuid.New(), s.agentB.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	own, err := s.taskService.GetByIDForAgent(s.T().Context(), task.ID, s.agentA.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), task.ID, own.ID)
}

func (s *TaskServiceTestSuite) TestUpdateByAgent() {
	task := testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyA, "Paint")

	updated, err := s.taskService.UpdateByAgent(s.T().Context(), task.ID, service.TaskUpdate{IsCompleted: ptr(true)}, s.agentA.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), updated.IsCompleted)
	assert.Equal(s.T(), s.propertyA.ID, updated.PropertyID)

	_, err = s.taskService.UpdateByAgent(s.T().Context(), task.ID, service.TaskUpdate{Title: ptr("Mine")}, s.agentB.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	_, err = s.taskService.UpdateByAgent(s.T().Context(), task.ID, service.TaskUpdate{}, s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNoFieldsToUpdate)
}

func (s *TaskServiceTestSuite) TestUpdateByAdminMovesTaskAndRecomputesAssignee() {
	task := testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyA, "Paint")

	updated, err := s.taskService.UpdateByAdmin(s.T().Context(), task.ID, service.TaskAdminUpdate{PropertyID: &s.propertyB.ID})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.propertyB.ID, updated.PropertyID)
	assert.Equal(s.T(), s.agentB.ID, updated.AssignedToID)

	assigned := s.events.ofType(broker.EventTaskAssigned)
	require.Len(s.T(), assigned, 1)
	assert.Equal(s.T(), s.agentB.ID.String(), assigned[0].AssignedTo)
}

func (s *TaskServiceTestSuite) TestUpdateByAdminUnknownPropertyLeavesTaskUnchanged() {
	task := testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyA, "Paint")
	ghost := uuid.New()

	_, err := s.taskService.UpdateByAdmin(s.T().Context(), task.ID, service.TaskAdminUpdate{
		TaskUpdate: service.TaskUpdate{Title: ptr("Renamed")},
		PropertyID: &ghost,
	})
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	unchanged, err := s.taskService.GetByIDForAdmin(s.T().Context(), task.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Paint", unchanged.Title)
	assert.Equal(s.T(), s.propertyA.ID, unchanged.PropertyID)
	assert.Equal(s.T(), s.agentA.ID, unchanged.AssignedToID)
}

func (s *TaskServiceTestSuite) TestUpdateByAdminWithoutPropertyKeepsAssignee() {
	task := testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyA, "Paint")

	updated, err := s.taskService.UpdateByAdmin(s.T().Context(), task.ID, service.TaskAdminUpdate{
		TaskUpdate: service.TaskUpdate{Description: ptr("Two coats")},
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Two coats", updated.Description)
	assert.Equal(s.T(), s.agentA.ID, updated.AssignedToID)
	assert.Empty(s.T(), s.events.ofType(broker.EventTaskAssigned))
}

func (s *TaskServiceTestSuite) TestDeleteByAgent() {
	task := testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyA, "Paint")

	_, err := s.taskService.DeleteByAgent(s.T().Context(), task.ID, s.agentB.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	deleted, err := s.taskService.DeleteByAgent(s.T().Context(), task.ID, s.agentA.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), task.ID, deleted.ID)
	assert.Len(s.T(), s.events.ofType(broker.EventTaskDeleted), 1)

	_, err = s.taskService.DeleteByAgent(s.T().Context(), task.ID, s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func (s *TaskServiceTestSuite) TestDeleteByAdmin() {
	task := testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyB, "Paint")

	_, err := s.taskService.DeleteByAdmin(s.T().Context(), task.ID)
	require.NoError(s.T(), err)

	_, err = s.taskService.DeleteByAdmin(s.T().Context(), task.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func (s *TaskServiceTestSuite) TestListings() {
	testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyA, "A1")
	testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyA, "A2")
	testutil.CreateTestTask(s.T(), s.testDB.DB, s.propertyB, "B1")

	all, err := s.taskService.GetAll(s.T().Context())
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 3)

	mine, err := s.taskService.GetAllForAgent(s.T().Context(), s.agentA.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), mine, 2)
	for _, task := range mine {
		assert.Equal(s.T(), s.agentA.ID, task.AssignedToID)
	}

	byProperty, err := s.taskService.GetByPropertyForAgent(s.T().Context(), s.propertyA.ID, s.agentA.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), byProperty, 2)

	_, err = s.taskService.GetByPropertyForAgent(s.T().Context(), s.propertyB.ID, s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	adminView, err := s.taskService.GetByPropertyForAdmin(s.T().Context(), s.propertyB.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), adminView, 1)

	_, err = s.taskService.GetByPropertyForAdmin(s.T().Context(), uuid.New())
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func (s *TaskServiceTestSuite) TestEmptyPropertyListIsNotAnError() {
	tasks, err := s.taskService.GetByPropertyForAgent(s.T().Context(), s.propertyA.ID, s.agentA.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), tasks)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
