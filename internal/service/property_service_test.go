package service_test

import (
	"context"
	"sync"
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

// recordingPublisher keeps every published event for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []broker.TaskEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event broker.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) ofType(eventType string) []broker.TaskEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []broker.TaskEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type PropertyServiceTestSuite struct {
	suite.Suite
	testDB          *testutil.TestDatabase
	repos           repository.Repositories
	events          *recordingPublisher
	propertyService *service.PropertyService
	taskService     *service.TaskService

	agentA *models.User
	agentB *models.User
}

func (s *PropertyServiceTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.repos = repository.NewRepositories(s.testDB.DB)
}

func (s *PropertyServiceTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *PropertyServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	s.events = &recordingPublisher{}
	tx := repository.NewTxRunner(s.testDB.DB)
	s.propertyService = service.NewPropertyService(s.repos, tx, s.events)
	s.taskService = service.NewTaskService(s.repos, tx, s.events)

	s.agentA = testutil.CreateTestAgent(s.T(), s.testDB.DB, "a")
	s.agentB = testutil.CreateTestAgent(s.T(), s.testDB.DB, "b")
}

func sampleProperty() service.PropertyInput {
	return service.PropertyInput{
		Title:       "Sunny flat",
		Description: "Two bedroom flat with a balcony",
		Price:       180000,
		Location:    "Valencia",
		Bedrooms:    2,
		Bathrooms:   1,
		Area:        70,
	}
}

func (s *PropertyServiceTestSuite) TestCreateByAgentForcesOwner() {
	property, err := s.propertyService.CreateByAgent(s.T().Context(), sampleProperty(), s.agentA.ID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), s.agentA.ID, property.OwnerID)
	require.NotNil(s.T(), property.Owner)
	assert.Equal(s.T(), s.agentA.Email, property.Owner.Email)
	assert.NotNil(s.T(), property.ImageURLs)
}

func (s *PropertyServiceTestSuite) TestCreateByAdminRequiresExistingOwner() {
	property, err := s.propertyService.CreateByAdmin(s.T().Context(), sampleProperty(), s.agentB.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.agentB.ID, property.OwnerID)

	_, err = s.propertyService.CreateByAdmin(s.T().Context(), sampleProperty(), uuid.New())
	assert.ErrorIs(s.T(), err, service.ErrOwnerNotFound)
}

func (s *PropertyServiceTestSuite) TestGetByID() {
	created := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")

	property, err := s.propertyService.GetByID(s.T().Context(), created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), property.Owner)
	assert.Equal(s.T(), s.agentA.ID, property.Owner.ID)

	_, err = s.propertyService.GetByID(s.T().Context(), uuid.New())
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func (s *PropertyServiceTestSuite) TestGetAllPopulatesOwners() {
	testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "One")
	testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentB.ID, "Two")

	properties, err := s.propertyService.GetAll(s.T().Context())
	require.NoError(s.T(), err)
	require.Len(s.T(), properties, 2)
	for _, p := range properties {
		assert.NotNil(s.T(), p.Owner)
	}
}

func (s *PropertyServiceTestSuite) TestAgentCannotTouchForeignProperty() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentB.ID, "B's flat")

	_, err := s.propertyService.UpdateByAgent(s.T().Context(), property.ID, service.PropertyUpdate{Title: ptr("Mine now")}, s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	_, err = s.propertyService.DeleteByAgent(s.T().Context(), property.ID, s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	unchanged, err := s.propertyService.GetByID(s.T().Context(), property.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "B's flat", unchanged.Title)
}

func (s *PropertyServiceTestSuite) TestUpdateByAgentCannotTransferOwnership() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")

	updated, err := s.propertyService.UpdateByAgent(s.T().Context(), property.ID, service.PropertyUpdate{
		Price:   ptr(99.0),
		OwnerID: &s.agentB.ID,
	}, s.agentA.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 99.0, updated.Price)
	assert.Equal(s.T(), s.agentA.ID, updated.OwnerID)
}

func (s *PropertyServiceTestSuite) TestUpdateEmptyPatch() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")

	_, err := s.propertyService.UpdateByAgent(s.T().Context(), property.ID, service.PropertyUpdate{}, s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNoFieldsToUpdate)
}

func (s *PropertyServiceTestSuite) TestUpdateImageURLs() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")
	urls := []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}

	updated, err := s.propertyService.UpdateByAgent(s.T().Context(), property.ID, service.PropertyUpdate{ImageURLs: &urls}, s.agentA.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), urls, []string(updated.ImageURLs))
}

func (s *PropertyServiceTestSuite) TestAdminOwnerChangeReassignsTasks() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")
	task := testutil.CreateTestTask(s.T(), s.testDB.DB, property, "Paint")

	updated, err := s.propertyService.UpdateByAdmin(s.T().Context(), property.ID, service.PropertyUpdate{OwnerID: &s.agentB.ID})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.agentB.ID, updated.OwnerID)
	assert.Equal(s.T(), s.agentB.ID, updated.Owner.ID)

	moved, err := s.taskService.GetByIDForAdmin(s.T().Context(), task.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.agentB.ID, moved.AssignedToID)

	assigned := s.events.ofType(broker.EventTaskAssigned)
	require.Len(s.T(), assigned, 1)
	assert.Equal(s.T(), task.ID.String(), assigned[0].TaskID)

	// A task created afterwards follows the new owner.
	t2, err := s.taskService.CreateByAdmin(s.T().Context(), service.TaskInput{
		Title:       "Clean",
		Description: "Deep clean",
		PropertyID:  property.ID,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.agentB.ID, t2.AssignedToID)
}

func (s *PropertyServiceTestSuite) TestAdminUpdateWithCurrentOwnerLeavesTasksAlone() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")
	testutil.CreateTestTask(s.T(), s.testDB.DB, property, "Paint")
	testutil.CreateTestTask(s.T(), s.testDB.DB, property, "Fix sink")

	updated, err := s.propertyService.UpdateByAdmin(s.T().Context(), property.ID, service.PropertyUpdate{
		Title:   ptr("Renamed"),
		OwnerID: &s.agentA.ID,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Renamed", updated.Title)
	assert.Equal(s.T(), s.agentA.ID, updated.OwnerID)

	assert.Empty(s.T(), s.events.ofType(broker.EventTaskAssigned))

	tasks, err := s.repos.Tasks.FindPopulated(s.T().Context(), repository.TaskFilter{PropertyID: &property.ID})
	require.NoError(s.T(), err)
	require.Len(s.T(), tasks, 2)
	for _, task := range tasks {
		assert.Equal(s.T(), s.agentA.ID, task.AssignedToID)
	}
}

func (s *PropertyServiceTestSuite) TestCreateKeepsImageURLs() {
	in := sampleProperty()
	in.ImageURLs = []string{"https://example.com/front.jpg", "https://example.com/back.jpg"}

	created, err := s.propertyService.CreateByAgent(s.T().Context(), in, s.agentA.ID)
	require.NoError(s.T(), err)

	stored, err := s.propertyService.GetByID(s.T().Context(), created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), in.ImageURLs, []string(stored.ImageURLs))
}

func (s *PropertyServiceTestSuite) TestAdminOwnerChangeToUnknownUser() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")
	ghost := uuid.New()

	_, err := s.propertyService.UpdateByAdmin(s.T().Context(), property.ID, service.PropertyUpdate{
		Title:   ptr("Renamed"),
		OwnerID: &ghost,
	})
	assert.ErrorIs(s.T(), err, service.ErrOwnerNotFound)

	unchanged, err := s.propertyService.GetByID(s.T().Context(), property.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Flat", unchanged.Title)
	assert.Equal(s.T(), s.agentA.ID, unchanged.OwnerID)
}

func (s *PropertyServiceTestSuite) TestUpdateByAdminUnknownProperty() {
	_, err := s.propertyService.UpdateByAdmin(s.T().Context(), uuid.New(), service.PropertyUpdate{Title: ptr("x")})
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func (s *PropertyServiceTestSuite) TestDeleteCascadesTasks() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")
	other := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Other")
	testutil.CreateTestTask(s.T(), s.testDB.DB, property, "One")
	testutil.CreateTestTask(s.T(), s.testDB.DB, property, "Two")
	keep := testutil.CreateTestTask(s.T(), s.testDB.DB, other, "Keep")

	deleted, err := s.propertyService.DeleteByAgent(s.T().Context(), property.ID, s.agentA.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), property.ID, deleted.ID)

	remaining, err := s.repos.Tasks.FindPopulated(s.T().Context(), repository.TaskFilter{PropertyID: &property.ID})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), remaining)

	kept, err := s.repos.Tasks.FindOne(s.T().Context(), repository.TaskFilter{ID: &keep.ID})
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), kept)
}

func (s *PropertyServiceTestSuite) TestDeleteByAdminCascades() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")
	testutil.CreateTestTask(s.T(), s.testDB.DB, property, "One")

	_, err := s.propertyService.DeleteByAdmin(s.T().Context(), property.ID)
	require.NoError(s.T(), err)

	remaining, err := s.repos.Tasks.FindPopulated(s.T().Context(), repository.TaskFilter{PropertyID: &property.ID})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), remaining)
}

func (s *PropertyServiceTestSuite) TestDeleteByAgentTwiceIsNotFound() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")

	_, err := s.propertyService.DeleteByAgent(s.T().Context(), property.ID, s.agentA.ID)
	require.NoError(s.T(), err)

	_, err = s.propertyService.DeleteByAgent(s.T().Context(), property.ID, s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
	_, err = s.propertyService.DeleteByAgent(s.T().Context(), property.ID, s.agentA.ID)
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func (s *PropertyServiceTestSuite) TestSweepOrphanTasks() {
	property := testutil.CreateTestProperty(s.T(), s.testDB.DB, s.agentA.ID, "Flat")
	testutil.CreateTestTask(s.T(), s.testDB.DB, property, "Live")

	// Simulate a task left behind by an interrupted cascade.
	db := s.testDB.DB
	require.NoError(s.T(), db.Exec("PRAGMA foreign_keys = OFF").Error)
	orphan := &models.Task{
		Title:        "Orphan",
		Description:  "left behind",
		PropertyID:   uuid.New(),
		AssignedToID: s.agentA.ID,
	}
	require.NoError(s.T(), db.Omit("Property", "AssignedTo").Create(orphan).Error)
	require.NoError(s.T(), db.Exec("PRAGMA foreign_keys = ON").Error)

	removed, err := s.propertyService.SweepOrphanTasks(s.T().Context())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), removed)

	left, err := s.repos.Tasks.FindOne(s.T().Context(), repository.TaskFilter{ID: &orphan.ID})
	require.NoError(s.T(), err)
	assert.Nil(s.T(), left)
}

func TestPropertyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PropertyServiceTestSuite))
}
