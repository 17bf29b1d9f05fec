package postingrepo_test

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/adapters/out/postgres/pgtest"
	"marketplace/internal/adapters/out/postgres/postingrepo"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/posting"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type PostingRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *pgtest.Database
	repository *postingrepo.GormPostingRepository
	tracker    *MockAggregateTracker
}

func (suite *PostingRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
}

func (suite *PostingRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Terminate(context.Background()))
}

func (suite *PostingRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = postingrepo.NewGormPostingRepository(suite.database.DB, suite.tracker)
}

func (suite *PostingRepositoryIntegrationTestSuite) addPosting() *posting.Posting {
	p, err := posting.NewPosting(kernel.NewUUID(), kernel.NewUUID(), []byte(`{"title":"fridge","floor":3}`), time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), p))
	return p
}

func (suite *PostingRepositoryIntegrationTestSuite) TestAddAndGet() {
	p := suite.addPosting()

	got, err := suite.repository.Get(context.Background(), p.ID())

	suite.Require().NoError(err)
	suite.Equal(p.OwnerID(), got.OwnerID())
	suite.Equal(posting.Active, got.Status())
	suite.JSONEq(`{"title":"fridge","floor":3}`, string(got.Details()))
	suite.tracker.AssertCalled(suite.T(), "TrackAggregate", p.ID(), p)
}

func (suite *PostingRepositoryIntegrationTestSuite) TestAdd_Duplicate() {
	p := suite.addPosting()

	err := suite.repository.Add(context.Background(), p)

	suite.ErrorIs(err, errs.ErrObjectConflict)
}

func (suite *PostingRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.GetForUpdate(context.Background(), kernel.NewUUID())

	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *PostingRepositoryIntegrationTestSuite) TestSetStatus_CompareAndSet() {
	ctx := context.Background()
	p := suite.addPosting()

	suite.Require().NoError(suite.repository.SetStatus(ctx, p.ID(), posting.Active, posting.Assigned))

	err := suite.repository.SetStatus(ctx, p.ID(), posting.Active, posting.Assigned)
	suite.ErrorIs(err, errs.ErrObjectConflict, "stored status is no longer active")

	got, err := suite.repository.Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(posting.Assigned, got.Status())
}

func (suite *PostingRepositoryIntegrationTestSuite) TestSetStatus_UnknownPosting() {
	err := suite.repository.SetStatus(context.Background(), kernel.NewUUID(), posting.Active, posting.Assigned)

	suite.ErrorIs(err, errs.ErrObjectConflict)
}

func (suite *PostingRepositoryIntegrationTestSuite) TestSetStatus_InvalidStatus() {
	err := suite.repository.SetStatus(context.Background(), kernel.NewUUID(), posting.Unknown, posting.Assigned)

	suite.ErrorIs(err, errs.ErrValueIsInvalid)
}

func TestPostingRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PostingRepositoryIntegrationTestSuite))
}
