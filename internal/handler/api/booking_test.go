//go:build unit

package api_test

import (
	"net/http"
	"strings"
	"testing"

	"cinebooking/internal/domain/showtime"
	"cinebooking/internal/domain/voucher"
	"cinebooking/internal/handler/api"
	resdto "cinebooking/internal/handler/dto/response"
	"cinebooking/internal/handler/middleware"
	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/commands"
	"cinebooking/internal/usecase/queries"
	"cinebooking/internal/usecase/shared"
	"cinebooking/tests/common/builder"
	"cinebooking/tests/common/httptest"
	"cinebooking/tests/common/testutil"
	commandsmock "cinebooking/tests/mock/commands"
	queriesmock "cinebooking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// fakeAuth authenticates any bearer token as the suite's customer.
func fakeAuth(customerID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		middleware.SetCustomerID(c, customerID)
		c.Next()
	}
}

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	customerID   uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(middleware.ErrorHandler())

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.customerID = uuid.New()

	h := api.NewBookingHandler(s.mockCommands, s.mockQueries)
	auth := fakeAuth(s.customerID)
	s.router.POST("/api/bookings", auth, h.Create)
	s.router.GET("/api/bookings", auth, h.List)
	s.router.GET("/api/bookings/:id", auth, h.Get)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

type testCaseBooking struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *BookingHandlerTestSuite) TestCreate() {
	url := "/api/bookings"

	bb := builder.NewBookingBuilder()
	reqBody := bb.BuildCreateRequestDTO()
	returnView := bb.BuildView()

	s.Run("success: returns 201 with the pending booking", func() {
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), commands.CreateBookingInput{
			CustomerID: s.customerID,
			ShowtimeID: reqBody.ShowtimeID,
			Seats:      reqBody.Seats,
		}).Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(returnView.ID, body.ID)
		s.Equal("PENDING", body.Status)
		s.Equal(int64(200_000), body.FinalPrice)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Location": "/api/bookings/" + returnView.ID.String()})
	})

	s.Run("success: blank voucher code is dropped", func() {
		m := testutil.DtoMap(s.T(), reqBody, testutil.Field("voucher_code", "   "))
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Cond(func(x any) bool {
			return x.(commands.CreateBookingInput).VoucherCode == nil
		})).Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, m, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []testCaseBooking{
			{name: "missing showtime_id", mutate: testutil.Field("showtime_id", nil), expectCode: http.StatusBadRequest},
			{name: "missing seats", mutate: testutil.Field("seats", nil), expectCode: http.StatusBadRequest},
			{name: "empty seats", mutate: testutil.Field("seats", []string{}), expectCode: http.StatusBadRequest},
			{name: "too many seats", mutate: testutil.Field("seats", strings.Split("A1,A2,A3,A4,A5,A6,A7,A8,A9,A10,B1", ",")), expectCode: http.StatusBadRequest},
			{name: "blank seat code", mutate: testutil.Field("seats", []string{""}), expectCode: http.StatusBadRequest},
			{name: "showtime_id not a uuid", mutate: testutil.Field("showtime_id", "nope"), expectCode: http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				m := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, m, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "Invalid request")
			})
		}
	})

	s.Run("error: 401 without token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	domainErrors := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{"seat taken", showtime.ErrSeatUnavailable, http.StatusConflict, "Seat is no longer available"},
		{"unknown seat", showtime.ErrInvalidSeat, http.StatusBadRequest, "Invalid seat selection"},
		{"showtime missing", commands.ErrShowtimeNotFound, http.StatusNotFound, "Showtime not found"},
		{"voucher used up", errs.Mark(voucher.ErrLimitReached, voucher.ErrInvalid), http.StatusUnprocessableEntity, "Voucher cannot be applied"},
		{"contention", shared.ErrConflict, http.StatusConflict, "retry"},
		{"unexpected", errs.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range domainErrors {
		s.Run("error: "+tc.name, func() {
			s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
			httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectMsg)
		})
	}

	s.Run("error: voucher rejection carries the reason", func() {
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(voucher.ErrBelowMinimum, voucher.ErrInvalid)).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Contains(rec.Body.String(), `"reason":"BELOW_MINIMUM"`)
	})
}

// ================================================================================
// TestGet / TestList
// ================================================================================

func (s *BookingHandlerTestSuite) TestGet() {
	view := builder.NewBookingBuilder().BuildView()
	url := "/api/bookings/" + view.ID.String()

	s.Run("success", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.customerID, view.ID).Return(view, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.Seats, body.Seats)
		s.Equal(view.ExpiresAt.Unix(), body.ExpiresAt.Unix())
	})

	s.Run("error: another customer's booking", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.customerID, view.ID).Return(nil, queries.ErrBookingAccess).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "another customer")
	})

	s.Run("error: not found", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.customerID, view.ID).Return(nil, queries.ErrBookingNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Booking not found")
	})

	s.Run("error: malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings/123", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id")
	})
}

func (s *BookingHandlerTestSuite) TestList() {
	views := []*queries.BookingView{builder.NewBookingBuilder().BuildView(), builder.NewBookingBuilder().BuildView()}

	s.Run("success", func() {
		s.mockQueries.EXPECT().ListByCustomer(gomock.Any(), s.customerID, 5).Return(views, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings?limit=5", nil, "bearer-token")

		var body []resdto.BookingListItemResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body, 2)
		s.Equal(views[0].ID, body[0].ID)
		s.Equal(views[1].FinalPrice, body[1].FinalPrice)
	})

	s.Run("error: limit out of range", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings?limit=1000", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid query")
	})
}
