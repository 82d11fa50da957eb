package deliveries

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/BearBump/StoreDash/internal/broker/messages"
	"github.com/BearBump/StoreDash/internal/integrations/backend"
	"github.com/BearBump/StoreDash/internal/integrations/backend/synthetic"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	deliveriesmocks "github.com/BearBump/StoreDash/internal/services/deliveries/mocks"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite

	real    *deliveriesmocks.MockDeliveryBackend
	pub     *deliveriesmocks.MockPublisher
	limiter *deliveriesmocks.MockRateLimiter
	synth   *synthetic.Source
	svc     *Service
}

func (s *ServiceSuite) SetupTest() {
	s.real = &deliveriesmocks.MockDeliveryBackend{}
	s.pub = &deliveriesmocks.MockPublisher{}
	s.limiter = &deliveriesmocks.MockRateLimiter{}
	s.synth = synthetic.New(10).WithClock(func() time.Time { return fixedNow })
	s.svc = s.newService(ModeDevelopment)
}

func (s *ServiceSuite) newService(mode Mode) *Service {
	svc := New(s.real, s.synth, s.pub, s.limiter, Options{
		Mode:          mode,
		FallbackCount: 10,
		StatusTopic:   "delivery.status_changed",
		NotifyLimit:   3,
	})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (s *ServiceSuite) TestParseMode() {
	m, err := ParseMode("")
	s.Require().NoError(err)
	s.Require().Equal(ModeBackend, m)

	m, err = ParseMode("development")
	s.Require().NoError(err)
	s.Require().Equal(ModeDevelopment, m)

	m, err = ParseMode("synthetic")
	s.Require().NoError(err)
	s.Require().Equal(ModeSynthetic, m)

	_, err = ParseMode("mock")
	s.Require().ErrorIs(err, models.ErrValidation)
}

func (s *ServiceSuite) TestUnsetModeNeverServesSyntheticRecords() {
	svc := New(s.real, s.synth, nil, nil, Options{FallbackCount: 10})
	s.Require().Equal(ModeBackend, svc.Mode())

	s.real.On("ListDeliveries", mock.Anything, "store-1", mock.Anything).
		Return(nil, models.ErrBackend).Once()

	res, err := svc.FetchCollection(context.Background(), "store-1", backend.FilterParams{})
	s.Require().ErrorIs(err, models.ErrBackend)
	s.Require().False(res.Synthetic)
	s.Require().Empty(res.Records)
}

func (s *ServiceSuite) TestMissingBackendIsAnErrorOutsideSyntheticMode() {
	svc := New(nil, s.synth, nil, nil, Options{Mode: ModeBackend})
	ctx := context.Background()

	res, err := svc.FetchCollection(ctx, "store-1", backend.FilterParams{})
	s.Require().ErrorIs(err, models.ErrBackend)
	s.Require().False(res.Synthetic)
	s.Require().Empty(res.Records)

	_, err = svc.GetDelivery(ctx, "store-1:1")
	s.Require().ErrorIs(err, models.ErrBackend)
	_, err = svc.Partners(ctx, "store-1")
	s.Require().ErrorIs(err, models.ErrBackend)
	_, err = svc.UpdateStatus(ctx, &models.DeliveryRecord{ID: "store-1:1", Status: models.DeliveryStatusPending}, models.DeliveryStatusInTransit)
	s.Require().ErrorIs(err, models.ErrBackend)
	s.Require().ErrorIs(svc.Notify(ctx, "store-1:1", "DELAY"), models.ErrBackend)

	synth := New(nil, s.synth, nil, nil, Options{Mode: ModeSynthetic})
	d, err := synth.GetDelivery(ctx, "store-1:1")
	s.Require().NoError(err)
	s.Require().Equal("store-1:1", d.ID)
}

func (s *ServiceSuite) TestFetchCollection_BackendOK_SingleCall() {
	p := backend.FilterParams{Status: models.DeliveryStatusInTransit, Search: "acme"}
	want := []*models.DeliveryRecord{{ID: "1", Status: models.DeliveryStatusInTransit}}
	s.real.On("ListDeliveries", mock.Anything, "store-1", p).Return(want, nil).Once()

	res, err := s.svc.FetchCollection(context.Background(), "store-1", p)
	s.Require().NoError(err)
	s.Require().False(res.Synthetic)
	s.Require().Equal(want, res.Records)
	s.real.AssertNumberOfCalls(s.T(), "ListDeliveries", 1)
}

func (s *ServiceSuite) TestFetchCollection_BackendNilBecomesEmpty() {
	s.real.On("ListDeliveries", mock.Anything, "store-1", mock.Anything).Return(nil, nil).Once()

	res, err := s.svc.FetchCollection(context.Background(), "store-1", backend.FilterParams{})
	s.Require().NoError(err)
	s.Require().NotNil(res.Records)
	s.Require().Empty(res.Records)
}

func (s *ServiceSuite) TestFetchCollection_DevelopmentFallback_PendingOnly() {
	s.real.On("ListDeliveries", mock.Anything, "store-1", mock.Anything).
		Return(nil, models.ErrBackend).
		Once()

	res, err := s.svc.FetchCollection(context.Background(), "store-1", backend.FilterParams{Status: models.DeliveryStatusPending})
	s.Require().ErrorIs(err, models.ErrBackend)
	s.Require().True(res.Synthetic)
	s.Require().Len(res.Records, 10)
	for i, d := range res.Records {
		s.Require().Equal(models.DeliveryStatusPending, d.Status)
		s.Require().Equal("store-1:PENDING:"+strconv.Itoa(i+1), d.ID)
	}
	s.real.AssertNumberOfCalls(s.T(), "ListDeliveries", 1)
}

func (s *ServiceSuite) TestFetchCollection_BackendMode_NoFallback() {
	svc := s.newService(ModeBackend)
	s.real.On("ListDeliveries", mock.Anything, "store-1", mock.Anything).
		Return(nil, models.ErrBackend).
		Once()

	res, err := svc.FetchCollection(context.Background(), "store-1", backend.FilterParams{})
	s.Require().ErrorIs(err, models.ErrBackend)
	s.Require().False(res.Synthetic)
	s.Require().Empty(res.Records)
}

func (s *ServiceSuite) TestFetchCollection_SyntheticMode_NeverCallsBackend() {
	svc := s.newService(ModeSynthetic)

	res, err := svc.FetchCollection(context.Background(), "store-1", backend.FilterParams{Status: models.DeliveryStatusDelivered})
	s.Require().NoError(err)
	s.Require().True(res.Synthetic)
	s.Require().Len(res.Records, 10)
	s.real.AssertNotCalled(s.T(), "ListDeliveries", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestFetchCollection_CancelledContext_NoFallback() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.real.On("ListDeliveries", mock.Anything, "store-1", mock.Anything).
		Return(nil, context.Canceled).
		Once()

	res, err := s.svc.FetchCollection(ctx, "store-1", backend.FilterParams{})
	s.Require().ErrorIs(err, context.Canceled)
	s.Require().False(res.Synthetic)
	s.Require().Empty(res.Records)
}

func (s *ServiceSuite) TestFetchCollection_Validation() {
	_, err := s.svc.FetchCollection(context.Background(), "", backend.FilterParams{})
	s.Require().ErrorIs(err, models.ErrValidation)

	_, err = s.svc.FetchCollection(context.Background(), "store-1", backend.FilterParams{Status: "LOST"})
	s.Require().ErrorIs(err, models.ErrValidation)

	s.real.AssertNotCalled(s.T(), "ListDeliveries", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestFetchActive_FiltersTerminal() {
	s.real.On("ListDeliveries", mock.Anything, "store-1", backend.FilterParams{}).
		Return([]*models.DeliveryRecord{
			{ID: "1", Status: models.DeliveryStatusPending},
			{ID: "2", Status: models.DeliveryStatusDelivered},
			nil,
			{ID: "3", Status: models.DeliveryStatusInTransit},
			{ID: "4", Status: models.DeliveryStatusCancelled},
		}, nil).
		Once()

	res, err := s.svc.FetchActive(context.Background(), "store-1")
	s.Require().NoError(err)
	s.Require().Len(res.Records, 2)
	s.Require().Equal("1", res.Records[0].ID)
	s.Require().Equal("3", res.Records[1].ID)
}

func (s *ServiceSuite) TestUpdateStatus_IllegalRejectedBeforeBackend() {
	d := &models.DeliveryRecord{ID: "7", Status: models.DeliveryStatusDelivered}

	_, err := s.svc.UpdateStatus(context.Background(), d, models.DeliveryStatusPending)
	s.Require().ErrorIs(err, models.ErrIllegalTransition)
	s.Require().Equal(models.DeliveryStatusDelivered, d.Status)
	s.real.AssertNotCalled(s.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	s.pub.AssertNotCalled(s.T(), "PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestUpdateStatus_SameStateIsNoop() {
	d := &models.DeliveryRecord{ID: "7", Status: models.DeliveryStatusInTransit}

	got, err := s.svc.UpdateStatus(context.Background(), d, models.DeliveryStatusInTransit)
	s.Require().NoError(err)
	s.Require().Same(d, got)
	s.real.AssertNotCalled(s.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestUpdateStatus_InvalidTarget() {
	d := &models.DeliveryRecord{ID: "7", Status: models.DeliveryStatusPending}
	_, err := s.svc.UpdateStatus(context.Background(), d, "LOST")
	s.Require().ErrorIs(err, models.ErrValidation)
}

func (s *ServiceSuite) TestUpdateStatus_DeliveredSetsActualAndPublishes() {
	d := &models.DeliveryRecord{ID: "7", StoreID: "store-1", Status: models.DeliveryStatusInTransit}
	s.real.On("UpdateStatus", mock.Anything, "7", models.DeliveryStatusDelivered).Return(nil).Once()
	s.pub.On("PublishJSON", mock.Anything, "delivery.status_changed", "7", messages.DeliveryStatusChanged{
		DeliveryID: "7",
		StoreID:    "store-1",
		OldStatus:  models.DeliveryStatusInTransit,
		NewStatus:  models.DeliveryStatusDelivered,
		ChangedAt:  fixedNow,
	}).Return(nil).Once()

	got, err := s.svc.UpdateStatus(context.Background(), d, models.DeliveryStatusDelivered)
	s.Require().NoError(err)
	s.Require().Equal(models.DeliveryStatusDelivered, got.Status)
	s.Require().NotNil(got.ActualDelivery)
	s.Require().Equal(fixedNow, *got.ActualDelivery)

	s.Require().Equal(models.DeliveryStatusInTransit, d.Status)
	s.Require().Nil(d.ActualDelivery)
	s.real.AssertExpectations(s.T())
	s.pub.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestUpdateStatus_PublishFailureDoesNotFail() {
	d := &models.DeliveryRecord{ID: "7", Status: models.DeliveryStatusPending}
	s.real.On("UpdateStatus", mock.Anything, "7", models.DeliveryStatusCancelled).Return(nil).Once()
	s.pub.On("PublishJSON", mock.Anything, mock.Anything, "7", mock.Anything).Return(errors.New("kafka down")).Once()

	got, err := s.svc.UpdateStatus(context.Background(), d, models.DeliveryStatusCancelled)
	s.Require().NoError(err)
	s.Require().Equal(models.DeliveryStatusCancelled, got.Status)
	s.Require().Nil(got.ActualDelivery)
}

func (s *ServiceSuite) TestUpdateStatus_BackendFailureLeavesRecord() {
	d := &models.DeliveryRecord{ID: "7", Status: models.DeliveryStatusPending}
	s.real.On("UpdateStatus", mock.Anything, "7", models.DeliveryStatusInTransit).Return(models.ErrBackend).Once()

	got, err := s.svc.UpdateStatus(context.Background(), d, models.DeliveryStatusInTransit)
	s.Require().ErrorIs(err, models.ErrBackend)
	s.Require().Nil(got)
	s.Require().Equal(models.DeliveryStatusPending, d.Status)
	s.pub.AssertNotCalled(s.T(), "PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestChangeStatus_RefetchesHistory() {
	d := &models.DeliveryRecord{ID: "7", Status: models.DeliveryStatusPending}
	events := []*models.TrackingEvent{{ID: "e1", Status: "Order received"}}
	s.real.On("GetDelivery", mock.Anything, "7").Return(d, nil).Once()
	s.real.On("UpdateStatus", mock.Anything, "7", models.DeliveryStatusInTransit).Return(nil).Once()
	s.real.On("GetHistory", mock.Anything, "7").Return(events, nil).Once()
	s.pub.On("PublishJSON", mock.Anything, mock.Anything, "7", mock.Anything).Return(nil).Once()

	got, history, err := s.svc.ChangeStatus(context.Background(), "7", models.DeliveryStatusInTransit)
	s.Require().NoError(err)
	s.Require().Equal(models.DeliveryStatusInTransit, got.Status)
	s.Require().Equal(events, history)
	s.real.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestChangeStatus_NotFound() {
	s.real.On("GetDelivery", mock.Anything, "404").Return(nil, models.ErrNotFound).Once()

	_, _, err := s.svc.ChangeStatus(context.Background(), "404", models.DeliveryStatusInTransit)
	s.Require().ErrorIs(err, models.ErrNotFound)
}

func (s *ServiceSuite) TestNotify_Allowed() {
	key := "rl:notify:7:202503101200"
	s.limiter.On("Allow", mock.Anything, key, int64(3), time.Minute).Return(true, int64(1), nil).Once()
	s.real.On("Notify", mock.Anything, "7", "delay").Return(nil).Once()

	s.Require().NoError(s.svc.Notify(context.Background(), "7", "delay"))
	s.limiter.AssertExpectations(s.T())
	s.real.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestNotify_RateLimited() {
	s.limiter.On("Allow", mock.Anything, mock.Anything, int64(3), time.Minute).Return(false, int64(4), nil).Once()

	err := s.svc.Notify(context.Background(), "7", "delay")
	s.Require().ErrorIs(err, models.ErrRateLimited)
	s.real.AssertNotCalled(s.T(), "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestNotify_LimiterErrorFailsOpen() {
	s.limiter.On("Allow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, int64(0), errors.New("redis down")).Once()
	s.real.On("Notify", mock.Anything, "7", "delay").Return(nil).Once()

	s.Require().NoError(s.svc.Notify(context.Background(), "7", "delay"))
}

func (s *ServiceSuite) TestNotify_Validation() {
	s.Require().ErrorIs(s.svc.Notify(context.Background(), "", "delay"), models.ErrValidation)
	s.Require().ErrorIs(s.svc.Notify(context.Background(), "7", "  "), models.ErrValidation)
	s.limiter.AssertNotCalled(s.T(), "Allow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestReadsUseSyntheticInSyntheticMode() {
	svc := s.newService(ModeSynthetic)

	d, err := svc.GetDelivery(context.Background(), "store-1:2")
	s.Require().NoError(err)
	s.Require().Equal("store-1:2", d.ID)

	ps, err := svc.Partners(context.Background(), "store-1")
	s.Require().NoError(err)
	s.Require().NotEmpty(ps)

	s.real.AssertNotCalled(s.T(), "GetDelivery", mock.Anything, mock.Anything)
	s.real.AssertNotCalled(s.T(), "Partners", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestMapDeliveries_Validation() {
	_, err := s.svc.MapDeliveries(context.Background(), "store-1", "LOST")
	s.Require().ErrorIs(err, models.ErrValidation)

	s.real.On("MapDeliveries", mock.Anything, "store-1", models.DeliveryStatusInTransit).
		Return([]*models.MapPoint{{DeliveryID: "1"}}, nil).
		Once()
	pts, err := s.svc.MapDeliveries(context.Background(), "store-1", models.DeliveryStatusInTransit)
	s.Require().NoError(err)
	s.Require().Len(pts, 1)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
