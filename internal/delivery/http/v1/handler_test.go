package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-trades-backend/config"
	"go-trades-backend/internal/delivery/http/middleware"
	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Setup()
}

type envelope struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// asUser stands in for the auth middleware.
func asUser(id int64, t domain.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(domain.KeyUserID), id)
		c.Set(string(domain.KeyUserRole), t)
		c.Next()
	}
}

func passThrough(c *gin.Context) { c.Next() }

func newEngine(userID int64, userType domain.UserType) (*gin.Engine, *gin.RouterGroup, *gin.RouterGroup) {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	public := r.Group("/v1")
	protected := public.Group("", asUser(userID, userType))
	return r, public, protected
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockJobUsecase struct {
	mock.Mock
}

func (m *mockJobUsecase) CreateJob(ctx context.Context, ownerID int64, input domain.CreateJobInput) (*domain.JobPost, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPost), args.Error(1)
}

func (m *mockJobUsecase) GetJob(ctx context.Context, code string) (*domain.JobPost, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPost), args.Error(1)
}

func (m *mockJobUsecase) ListMyJobs(ctx context.Context, ownerID int64, status *domain.JobStatus, page, limit int) ([]domain.JobPost, domain.Pagination, error) {
	args := m.Called(ctx, ownerID, status, page, limit)
	return args.Get(0).([]domain.JobPost), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *mockJobUsecase) UpdateJob(ctx context.Context, ownerID int64, code string, input domain.UpdateJobInput) (*domain.JobPost, error) {
	args := m.Called(ctx, ownerID, code, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPost), args.Error(1)
}

func (m *mockJobUsecase) UpdateStatus(ctx context.Context, ownerID int64, code string, status domain.JobStatus) (*domain.JobPost, error) {
	args := m.Called(ctx, ownerID, code, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPost), args.Error(1)
}

func (m *mockJobUsecase) DeleteJob(ctx context.Context, ownerID int64, code string) error {
	return m.Called(ctx, ownerID, code).Error(0)
}

func (m *mockJobUsecase) SearchJobs(ctx context.Context, filter domain.SearchFilter) (*domain.SearchPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchPage), args.Error(1)
}

func (m *mockJobUsecase) ExportMyJobs(ctx context.Context, ownerID int64) ([]byte, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func jobRoutes(jobUC domain.JobUsecase, userType domain.UserType) *gin.Engine {
	r, public, protected := newEngine(7, userType)
	NewJobHandler(public, protected, middleware.RequireUserTypes(domain.UserTypeContractor), jobUC)
	return r
}

func TestSearchPassesParsedFilter(t *testing.T) {
	jobUC := new(mockJobUsecase)
	four := 4
	page := &domain.SearchPage{
		Location: &domain.SearchLocationEcho{Name: "Downtown", Latitude: 37.7749, Longitude: -122.4194, SearchRadiusMiles: 25},
		Jobs: []domain.SearchResult{{
			JobID:         "JOB12345",
			Title:         "Carpentry",
			DistanceMiles: &four,
			Pay:           domain.SearchPay{Amount: 25, Unit: domain.PayUnitHour},
			QuickApply:    true,
		}},
		Pagination: domain.SearchPagination{Page: 1, Limit: 10, TotalPages: 3, TotalJobs: 27},
	}
	jobUC.On("SearchJobs", mock.Anything, mock.MatchedBy(func(f domain.SearchFilter) bool {
		return f.Skill == "plumbing" &&
			f.Location != nil && f.Location.Latitude == 37.7749 &&
			f.EffectiveRadius() == 25 &&
			f.PayUnit != nil && *f.PayUnit == domain.PayUnitHour &&
			f.StartDate != nil && f.StartDate.String() == "2025-01-10" &&
			f.EffectiveLimit() == 10
	})).Return(page, nil)

	body := `{
		"skill": "plumbing",
		"availability_today": true,
		"location": {"name": "Downtown", "latitude": 37.7749, "longitude": -122.4194},
		"search_radius_miles": 25,
		"filters": {"start_date": "2025-01-10", "duration_months": 3, "minimum_pay_rate": 20, "pay_unit": "hour"},
		"pagination": {"page": 1, "limit": 10}
	}`
	w := doJSON(jobRoutes(jobUC, domain.UserTypeLaborer), http.MethodPost, "/v1/jobs/search", body)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Status)

	var data domain.SearchPage
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Jobs, 1)
	assert.Equal(t, "JOB12345", data.Jobs[0].JobID)
	assert.Equal(t, int64(27), data.Pagination.TotalJobs)
	jobUC.AssertExpectations(t)
}

func TestSearchRejectsBadFilterBeforeQuerying(t *testing.T) {
	jobUC := new(mockJobUsecase)

	body := `{"location": {"latitude": "north", "longitude": 10}, "search_radius_miles": -5, "pagination": {"page": 0}}`
	w := doJSON(jobRoutes(jobUC, domain.UserTypeLaborer), http.MethodPost, "/v1/jobs/search", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w)
	assert.False(t, env.Status)
	assert.Contains(t, env.Errors, "location.latitude")
	assert.Contains(t, env.Errors, "search_radius_miles")
	assert.Contains(t, env.Errors, "pagination.page")
	jobUC.AssertNotCalled(t, "SearchJobs", mock.Anything, mock.Anything)
}

func TestSearchRequiresAuthentication(t *testing.T) {
	jobUC := new(mockJobUsecase)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	public := r.Group("/v1")
	protected := public.Group("", func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Unauthenticated"})
	})
	NewJobHandler(public, protected, passThrough, jobUC)

	w := doJSON(r, http.MethodPost, "/v1/jobs/search", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	jobUC.AssertNotCalled(t, "SearchJobs", mock.Anything, mock.Anything)
}

func TestSearchAcceptsEmptyBody(t *testing.T) {
	jobUC := new(mockJobUsecase)
	jobUC.On("SearchJobs", mock.Anything, domain.SearchFilter{}).
		Return(&domain.SearchPage{Jobs: []domain.SearchResult{}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/search", nil)
	w := httptest.NewRecorder()
	jobRoutes(jobUC, domain.UserTypeLaborer).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	jobUC.AssertExpectations(t)
}

func TestCreateJobRequiresContractor(t *testing.T) {
	jobUC := new(mockJobUsecase)

	w := doJSON(jobRoutes(jobUC, domain.UserTypeLaborer), http.MethodPost, "/v1/jobs", `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	jobUC.AssertNotCalled(t, "CreateJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateJobReportsFieldErrors(t *testing.T) {
	jobUC := new(mockJobUsecase)

	body := `{"specialization_id": 2, "pay": {"amount": 20, "unit": "fortnight"}}`
	w := doJSON(jobRoutes(jobUC, domain.UserTypeContractor), http.MethodPost, "/v1/jobs", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w)
	assert.Contains(t, env.Errors, "skills")
	assert.Contains(t, env.Errors, "title")
	assert.Equal(t, []string{"must be one of: hour, day, week, month"}, env.Errors["pay.unit"])
}

func TestCreateJob(t *testing.T) {
	jobUC := new(mockJobUsecase)
	jobUC.On("CreateJob", mock.Anything, int64(7), mock.MatchedBy(func(in domain.CreateJobInput) bool {
		return in.Title == "Framing crew" && len(in.SkillCodes) == 1 && *in.Pay.Amount == 30
	})).Return(&domain.JobPost{Code: "JOB10001", Title: "Framing crew", Status: domain.JobStatusActive}, nil)

	body := `{
		"skills": ["SKL100"],
		"specialization_id": 2,
		"title": "Framing crew",
		"start_date": "2026-11-01",
		"duration": {"value": 2, "unit": "weeks"},
		"pay": {"amount": 30, "unit": "hour"},
		"location": {"latitude": 40.7, "longitude": -74.0},
		"description": "Two week framing job"
	}`
	w := doJSON(jobRoutes(jobUC, domain.UserTypeContractor), http.MethodPost, "/v1/jobs", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), "JOB10001")
	jobUC.AssertExpectations(t)
}

func TestUpdateStatusSurfacesUsecaseError(t *testing.T) {
	jobUC := new(mockJobUsecase)
	jobUC.On("UpdateStatus", mock.Anything, int64(7), "JOB10001", domain.JobStatusPending).
		Return(nil, apperror.Unprocessable("Cannot change job status from active to pending"))

	w := doJSON(jobRoutes(jobUC, domain.UserTypeContractor), http.MethodPatch, "/v1/jobs/JOB10001/status", `{"status":"pending"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Cannot change job status from active to pending", decode(t, w).Message)
}

func TestExportServesWorkbook(t *testing.T) {
	jobUC := new(mockJobUsecase)
	jobUC.On("ExportMyJobs", mock.Anything, int64(7)).Return([]byte("PK\x03\x04"), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/export", nil)
	w := httptest.NewRecorder()
	jobRoutes(jobUC, domain.UserTypeContractor).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
}

func TestListMineReadsQuery(t *testing.T) {
	jobUC := new(mockJobUsecase)
	completed := domain.JobStatusCompleted
	jobUC.On("ListMyJobs", mock.Anything, int64(7), &completed, 2, 100).
		Return([]domain.JobPost{}, domain.NewPagination(2, 100, 0), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/mine?status=Completed&page=2&limit=500", nil)
	w := httptest.NewRecorder()
	jobRoutes(jobUC, domain.UserTypeContractor).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	jobUC.AssertExpectations(t)
}

type mockListingUsecase struct {
	mock.Mock
}

func (m *mockListingUsecase) CreateListing(ctx context.Context, userID int64, input domain.CreateListingInput, images []domain.FileUpload) (*domain.Listing, error) {
	args := m.Called(ctx, userID, input, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *mockListingUsecase) UpdateListing(ctx context.Context, userID int64, code string, input domain.UpdateListingInput, images []domain.FileUpload) (*domain.Listing, error) {
	args := m.Called(ctx, userID, code, input, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *mockListingUsecase) DeleteListing(ctx context.Context, userID int64, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

func (m *mockListingUsecase) ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.ListingView, domain.Pagination, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ListingView), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *mockListingUsecase) ListMyListings(ctx context.Context, userID int64, page, limit int) ([]domain.Listing, domain.Pagination, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).([]domain.Listing), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *mockListingUsecase) GetListing(ctx context.Context, code string) (*domain.ListingView, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ListingView), args.Error(1)
}

func TestCreateListingReadsMultipart(t *testing.T) {
	listingUC := new(mockListingUsecase)
	listingUC.On("CreateListing", mock.Anything, int64(7),
		mock.MatchedBy(func(in domain.CreateListingInput) bool {
			return in.Title == "Table saw" && in.CategoryID == 3 && *in.Price == 150
		}),
		mock.MatchedBy(func(images []domain.FileUpload) bool {
			return len(images) == 2 && images[0].Filename == "a.png" && string(images[1].Data) == "second"
		}),
	).Return(&domain.Listing{Code: "LST10001"}, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"title": "Table saw", "category_id": "3", "condition_id": "1", "price": "150", "location": "Austin",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range [][2]string{{"a.png", "first"}, {"b.png", "second"}} {
		fw, err := mw.CreateFormFile("images", f[0])
		require.NoError(t, err)
		_, _ = fw.Write([]byte(f[1]))
	}
	require.NoError(t, mw.Close())

	r, public, protected := newEngine(7, domain.UserTypeLaborer)
	NewListingHandler(public, protected, passThrough, listingUC)

	req := httptest.NewRequest(http.MethodPost, "/v1/listings", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	listingUC.AssertExpectations(t)
}

func TestListListingsBindsQuery(t *testing.T) {
	listingUC := new(mockListingUsecase)
	listingUC.On("ListListings", mock.Anything, mock.MatchedBy(func(f domain.ListingFilter) bool {
		return f.Search == "saw" && f.MaxPrice != nil && *f.MaxPrice == 200 && f.MinPrice == nil
	})).Return([]domain.ListingView{}, domain.NewPagination(1, 10, 0), nil)

	r, public, protected := newEngine(7, domain.UserTypeLaborer)
	NewListingHandler(public, protected, passThrough, listingUC)

	req := httptest.NewRequest(http.MethodGet, "/v1/listings?search=saw&max_price=200", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	listingUC.AssertExpectations(t)
}

type mockOpportunityUsecase struct {
	mock.Mock
}

func (m *mockOpportunityUsecase) PostOpportunity(ctx context.Context, ownerID int64, input domain.CreateOpportunityInput) (*domain.Opportunity, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Opportunity), args.Error(1)
}

func (m *mockOpportunityUsecase) ListOpportunities(ctx context.Context, near *domain.NearbyFilter, page, limit int) ([]domain.Opportunity, domain.Pagination, error) {
	args := m.Called(ctx, near, page, limit)
	return args.Get(0).([]domain.Opportunity), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *mockOpportunityUsecase) ListMyOpportunities(ctx context.Context, ownerID int64, page, limit int) ([]domain.Opportunity, domain.Pagination, error) {
	args := m.Called(ctx, ownerID, page, limit)
	return args.Get(0).([]domain.Opportunity), args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *mockOpportunityUsecase) UpdateOpportunity(ctx context.Context, ownerID int64, code string, input domain.UpdateOpportunityInput) (*domain.Opportunity, error) {
	args := m.Called(ctx, ownerID, code, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Opportunity), args.Error(1)
}

func (m *mockOpportunityUsecase) DeleteOpportunity(ctx context.Context, ownerID int64, code string) error {
	return m.Called(ctx, ownerID, code).Error(0)
}

func TestListOpportunitiesNearby(t *testing.T) {
	oppUC := new(mockOpportunityUsecase)
	oppUC.On("ListOpportunities", mock.Anything, &domain.NearbyFilter{
		Origin:      domain.GeoPoint{Latitude: 30.2, Longitude: -97.7},
		RadiusMiles: domain.DefaultSearchRadiusMiles,
	}, 1, 10).Return([]domain.Opportunity{}, domain.NewPagination(1, 10, 0), nil)

	r, _, protected := newEngine(7, domain.UserTypeApprentice)
	NewOpportunityHandler(protected, passThrough, oppUC)

	req := httptest.NewRequest(http.MethodGet, "/v1/opportunities?latitude=30.2&longitude=-97.7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/v1/opportunities?latitude=30.2", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w).Errors, "longitude")

	oppUC.AssertNumberOfCalls(t, "ListOpportunities", 1)
}

func TestRouterHealthAndAuth(t *testing.T) {
	cfg := &config.Config{
		RateLimitWindowSeconds:   60,
		RateLimitGlobalThreshold: 100,
		RateLimitAuthThreshold:   10,
	}
	r := NewRouter(RouterDeps{Config: cfg})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Status)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decode(t, w).Status)
}
