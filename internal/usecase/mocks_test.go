package usecase_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/security/antivirus"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) UpdateLocation(ctx context.Context, id int64, loc domain.UserLocation) error {
	return m.Called(ctx, id, loc).Error(0)
}
func (m *MockUserRepo) UpdateAvailability(ctx context.Context, id int64, available bool) error {
	return m.Called(ctx, id, available).Error(0)
}
func (m *MockUserRepo) UpdateNotificationStatus(ctx context.Context, id int64, enabled bool) error {
	return m.Called(ctx, id, enabled).Error(0)
}
func (m *MockUserRepo) UpdateFCMToken(ctx context.Context, id int64, token string) error {
	return m.Called(ctx, id, token).Error(0)
}
func (m *MockUserRepo) UpdateProfileImage(ctx context.Context, id int64, url string) error {
	return m.Called(ctx, id, url).Error(0)
}
func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}
func (m *MockUserRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockResetRepo struct {
	mock.Mock
}

func (m *MockResetRepo) Upsert(ctx context.Context, email, otpHash string, expiresAt time.Time) error {
	return m.Called(ctx, email, otpHash, expiresAt).Error(0)
}
func (m *MockResetRepo) GetByEmail(ctx context.Context, email string) (*domain.PasswordReset, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordReset), args.Error(1)
}
func (m *MockResetRepo) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	return m.Called(ctx, email, tokenHash, expiresAt).Error(0)
}
func (m *MockResetRepo) GetByResetToken(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordReset), args.Error(1)
}
func (m *MockResetRepo) RecordOTPFailure(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}
func (m *MockResetRepo) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *MockResetRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockTokens struct {
	mock.Mock
}

func (m *MockTokens) Issue(userID int64, email, userType string) (string, time.Time, error) {
	args := m.Called(userID, email, userType)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendContactEmail(ctx context.Context, req *domain.ContactRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockMailer) SendPasswordResetOTP(ctx context.Context, to, name, otp string, ttl time.Duration) error {
	return m.Called(ctx, to, name, otp, ttl).Error(0)
}

type MockLoginGuard struct {
	mock.Mock
}

func (m *MockLoginGuard) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	args := m.Called(ctx, email, ip)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoginGuard) RecordFailure(ctx context.Context, email, ip, userAgent, requestID string) (bool, error) {
	args := m.Called(ctx, email, ip, userAgent, requestID)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoginGuard) Clear(ctx context.Context, email, ip string) error {
	return m.Called(ctx, email, ip).Error(0)
}

type MockUploadGuard struct {
	mock.Mock
}

func (m *MockUploadGuard) Allow(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) Specializations(ctx context.Context) ([]domain.Specialization, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Specialization), args.Error(1)
}
func (m *MockCatalogRepo) SpecializationExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockCatalogRepo) Skills(ctx context.Context, specializationID *int64) ([]domain.Skill, error) {
	args := m.Called(ctx, specializationID)
	return args.Get(0).([]domain.Skill), args.Error(1)
}
func (m *MockCatalogRepo) SkillsByCodes(ctx context.Context, codes []string) ([]domain.Skill, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).([]domain.Skill), args.Error(1)
}
func (m *MockCatalogRepo) JobRequirements(ctx context.Context) ([]domain.JobRequirement, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.JobRequirement), args.Error(1)
}
func (m *MockCatalogRepo) TradeInterests(ctx context.Context) ([]domain.TradeInterest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.TradeInterest), args.Error(1)
}
func (m *MockCatalogRepo) ListingCategories(ctx context.Context) ([]domain.CatalogItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}
func (m *MockCatalogRepo) ListingConditions(ctx context.Context) ([]domain.CatalogItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.JobPost, skillIDs []int64) error {
	return m.Called(ctx, job, skillIDs).Error(0)
}
func (m *MockJobRepo) GetByCode(ctx context.Context, code string) (*domain.JobPost, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPost), args.Error(1)
}
func (m *MockJobRepo) ListByOwner(ctx context.Context, ownerID int64, status *domain.JobStatus, limit, offset int) ([]domain.JobPost, int64, error) {
	args := m.Called(ctx, ownerID, status, limit, offset)
	return args.Get(0).([]domain.JobPost), args.Get(1).(int64), args.Error(2)
}
func (m *MockJobRepo) Update(ctx context.Context, job *domain.JobPost, skillIDs []int64) error {
	return m.Called(ctx, job, skillIDs).Error(0)
}
func (m *MockJobRepo) UpdateStatus(ctx context.Context, id int64, status domain.JobStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockJobRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockJobRepo) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.JobSearchRow, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.JobSearchRow), args.Get(1).(int64), args.Error(2)
}

type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) AggregateForUsers(ctx context.Context, userIDs []int64) (map[int64]domain.RatingAggregate, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).(map[int64]domain.RatingAggregate), args.Error(1)
}
func (m *MockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}
func (m *MockReviewRepo) ListByReviewee(ctx context.Context, revieweeID int64, jobPostID *int64, limit, offset int) ([]domain.ReviewView, int64, error) {
	args := m.Called(ctx, revieweeID, jobPostID, limit, offset)
	return args.Get(0).([]domain.ReviewView), args.Get(1).(int64), args.Error(2)
}
func (m *MockReviewRepo) LatestForReviewee(ctx context.Context, revieweeID int64) (*time.Time, error) {
	args := m.Called(ctx, revieweeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int64, title, message, notificationType string) error {
	return m.Called(ctx, userID, title, message, notificationType).Error(0)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *MockNotificationRepo) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}
func (m *MockNotificationRepo) MarkRead(ctx context.Context, userID int64, ids []int64) error {
	return m.Called(ctx, userID, ids).Error(0)
}
func (m *MockNotificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockNotificationRepo) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockPush struct {
	mock.Mock
}

func (m *MockPush) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return m.Called(ctx, token, title, body, data).Error(0)
}

type MockOpportunityRepo struct {
	mock.Mock
}

func (m *MockOpportunityRepo) Create(ctx context.Context, o *domain.Opportunity) error {
	return m.Called(ctx, o).Error(0)
}
func (m *MockOpportunityRepo) GetByCode(ctx context.Context, code string) (*domain.Opportunity, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Opportunity), args.Error(1)
}
func (m *MockOpportunityRepo) List(ctx context.Context, near *domain.NearbyFilter, limit, offset int) ([]domain.Opportunity, int64, error) {
	args := m.Called(ctx, near, limit, offset)
	return args.Get(0).([]domain.Opportunity), args.Get(1).(int64), args.Error(2)
}
func (m *MockOpportunityRepo) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Opportunity, int64, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	return args.Get(0).([]domain.Opportunity), args.Get(1).(int64), args.Error(2)
}
func (m *MockOpportunityRepo) Update(ctx context.Context, o *domain.Opportunity) error {
	return m.Called(ctx, o).Error(0)
}
func (m *MockOpportunityRepo) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}
func (m *MockListingRepo) GetByCode(ctx context.Context, code string) (*domain.Listing, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepo) List(ctx context.Context, f domain.ListingFilter, limit, offset int) ([]domain.Listing, int64, error) {
	args := m.Called(ctx, f, limit, offset)
	return args.Get(0).([]domain.Listing), args.Get(1).(int64), args.Error(2)
}
func (m *MockListingRepo) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Listing, int64, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	return args.Get(0).([]domain.Listing), args.Get(1).(int64), args.Error(2)
}
func (m *MockListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}
func (m *MockListingRepo) AddImages(ctx context.Context, listingID int64, images []domain.ListingImage) error {
	return m.Called(ctx, listingID, images).Error(0)
}
func (m *MockListingRepo) RemoveImages(ctx context.Context, listingID int64, codes []string) ([]domain.ListingImage, error) {
	args := m.Called(ctx, listingID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ListingImage), args.Error(1)
}
func (m *MockListingRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetLaborer(ctx context.Context, userID int64) (*domain.LaborerDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LaborerDetails), args.Error(1)
}
func (m *MockProfileRepo) UpsertLaborer(ctx context.Context, d *domain.LaborerDetails) error {
	return m.Called(ctx, d).Error(0)
}
func (m *MockProfileRepo) GetContractor(ctx context.Context, userID int64) (*domain.ContractorDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContractorDetails), args.Error(1)
}
func (m *MockProfileRepo) UpsertContractor(ctx context.Context, d *domain.ContractorDetails) error {
	return m.Called(ctx, d).Error(0)
}
func (m *MockProfileRepo) GetSubcontractor(ctx context.Context, userID int64) (*domain.SubcontractorDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubcontractorDetails), args.Error(1)
}
func (m *MockProfileRepo) UpsertSubcontractor(ctx context.Context, d *domain.SubcontractorDetails) error {
	return m.Called(ctx, d).Error(0)
}
func (m *MockProfileRepo) GetApprentice(ctx context.Context, userID int64) (*domain.ApprenticeDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprenticeDetails), args.Error(1)
}
func (m *MockProfileRepo) UpsertApprentice(ctx context.Context, d *domain.ApprenticeDetails) error {
	return m.Called(ctx, d).Error(0)
}

type MockApprenticeProfileRepo struct {
	mock.Mock
}

func (m *MockApprenticeProfileRepo) Create(ctx context.Context, p *domain.ApprenticeProfile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockApprenticeProfileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.ApprenticeProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprenticeProfile), args.Error(1)
}
func (m *MockApprenticeProfileRepo) Update(ctx context.Context, p *domain.ApprenticeProfile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockApprenticeProfileRepo) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockApprenticeProfileRepo) ListVisible(ctx context.Context, near *domain.NearbyFilter, limit, offset int) ([]domain.ApprenticeProfile, int64, error) {
	args := m.Called(ctx, near, limit, offset)
	return args.Get(0).([]domain.ApprenticeProfile), args.Get(1).(int64), args.Error(2)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}
func (m *MockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context, filename string, data io.Reader) antivirus.ScanResult {
	return m.Called(ctx, filename, data).Get(0).(antivirus.ScanResult)
}
func (m *MockScanner) Name() string { return "mock" }
func (m *MockScanner) Available(ctx context.Context) bool {
	return true
}
