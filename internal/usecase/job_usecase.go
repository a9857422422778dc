package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
)

type jobUsecase struct {
	jobRepo     domain.JobRepository
	catalogRepo domain.CatalogRepository
	ratings     domain.RatingLookup
}

func NewJobUsecase(jobRepo domain.JobRepository, catalogRepo domain.CatalogRepository, ratings domain.RatingLookup) domain.JobUsecase {
	return &jobUsecase{jobRepo: jobRepo, catalogRepo: catalogRepo, ratings: ratings}
}

func (u *jobUsecase) CreateJob(ctx context.Context, ownerID int64, input domain.CreateJobInput) (*domain.JobPost, error) {
	errs := apperror.FieldErrors{}
	checkDuration(errs, "duration", input.Duration)
	checkPay(errs, "pay", input.Pay)
	if input.StartDate == nil || input.StartDate.IsZero() {
		errs.Add("start_date", "is required")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	skills, err := u.resolveSkills(ctx, input.SkillCodes)
	if err != nil {
		return nil, err
	}
	if err := u.checkSpecialization(ctx, input.SpecializationID); err != nil {
		return nil, err
	}

	job := &domain.JobPost{
		UserID:           ownerID,
		SpecializationID: input.SpecializationID,
		Title:            strings.TrimSpace(input.Title),
		CompanyName:      input.CompanyName,
		StartDate:        *input.StartDate,
		Duration:         domain.Duration{Value: input.Duration.Value, Unit: input.Duration.Unit},
		Pay:              payFrom(input.Pay),
		Location:         domain.GeoPoint{Latitude: *input.Location.Latitude, Longitude: *input.Location.Longitude},
		City:             input.Location.City,
		Description:      strings.TrimSpace(input.Description),
		IsFeatured:       input.IsFeatured,
		Status:           domain.JobStatusActive,
		Skills:           skills,
	}
	if err := u.jobRepo.Create(ctx, job, skillIDs(skills)); err != nil {
		return nil, err
	}
	return job, nil
}

func checkDuration(errs apperror.FieldErrors, field string, d domain.DurationInput) {
	if d.Value < 1 {
		errs.Add(field+".value", "must be at least 1")
	}
	if !d.Unit.Valid() {
		errs.Add(field+".unit", "must be one of days, weeks, months")
	}
}

func checkPay(errs apperror.FieldErrors, field string, p domain.PayInput) {
	if p.Amount == nil {
		errs.Add(field+".amount", "is required")
	} else if *p.Amount < 0 {
		errs.Add(field+".amount", "must not be negative")
	}
	if !p.Unit.Valid() {
		errs.Add(field+".unit", "must be one of hour, day, week, month")
	}
}

func payFrom(p domain.PayInput) domain.Pay {
	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return domain.Pay{Amount: *p.Amount, Currency: currency, Unit: p.Unit}
}

// resolveSkills maps public skill codes to catalog rows; every code must exist.
func (u *jobUsecase) resolveSkills(ctx context.Context, codes []string) ([]domain.Skill, error) {
	unique := make([]string, 0, len(codes))
	seen := map[string]bool{}
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		unique = append(unique, c)
	}
	if len(unique) == 0 {
		return nil, apperror.Validation(map[string][]string{"skills": {"at least one skill is required"}})
	}

	skills, err := u.catalogRepo.SkillsByCodes(ctx, unique)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(skills))
	for _, s := range skills {
		found[s.Code] = true
	}
	var missing []string
	for _, c := range unique {
		if !found[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.Validation(map[string][]string{"skills": {"unknown skill: " + strings.Join(missing, ", ")}})
	}
	return skills, nil
}

func skillIDs(skills []domain.Skill) []int64 {
	ids := make([]int64, len(skills))
	for i, s := range skills {
		ids[i] = s.ID
	}
	return ids
}

func (u *jobUsecase) checkSpecialization(ctx context.Context, id int64) error {
	ok, err := u.catalogRepo.SpecializationExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Validation(map[string][]string{"specialization_id": {"does not exist"}})
	}
	return nil
}

func (u *jobUsecase) GetJob(ctx context.Context, code string) (*domain.JobPost, error) {
	job, err := u.jobRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, notFoundAs(err, "Job not found")
	}
	return job, nil
}

func (u *jobUsecase) ownedJob(ctx context.Context, ownerID int64, code string) (*domain.JobPost, error) {
	job, err := u.GetJob(ctx, code)
	if err != nil {
		return nil, err
	}
	if job.UserID != ownerID {
		return nil, apperror.Forbidden("You do not own this job")
	}
	return job, nil
}

func (u *jobUsecase) ListMyJobs(ctx context.Context, ownerID int64, status *domain.JobStatus, page, limit int) ([]domain.JobPost, domain.Pagination, error) {
	if status != nil && !status.Valid() {
		return nil, domain.Pagination{}, apperror.Validation(map[string][]string{"status": {"must be one of pending, active, completed, cancelled"}})
	}
	page, limit = domain.NormalizePage(page, limit)
	jobs, total, err := u.jobRepo.ListByOwner(ctx, ownerID, status, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if jobs == nil {
		jobs = []domain.JobPost{}
	}
	return jobs, domain.NewPagination(page, limit, total), nil
}

func (u *jobUsecase) UpdateJob(ctx context.Context, ownerID int64, code string, input domain.UpdateJobInput) (*domain.JobPost, error) {
	job, err := u.ownedJob(ctx, ownerID, code)
	if err != nil {
		return nil, err
	}

	errs := apperror.FieldErrors{}
	if input.Duration != nil {
		checkDuration(errs, "duration", *input.Duration)
	}
	if input.Pay != nil {
		checkPay(errs, "pay", *input.Pay)
	}
	if input.Location != nil && (input.Location.Latitude == nil || input.Location.Longitude == nil) {
		errs.Add("location", "latitude and longitude are required")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	var ids []int64
	if input.SkillCodes != nil {
		skills, err := u.resolveSkills(ctx, input.SkillCodes)
		if err != nil {
			return nil, err
		}
		job.Skills = skills
		ids = skillIDs(skills)
	}
	if input.SpecializationID != nil {
		if err := u.checkSpecialization(ctx, *input.SpecializationID); err != nil {
			return nil, err
		}
		job.SpecializationID = *input.SpecializationID
	}
	if input.Title != nil {
		job.Title = strings.TrimSpace(*input.Title)
	}
	if input.CompanyName != nil {
		job.CompanyName = trimmedOrNil(*input.CompanyName)
	}
	if input.StartDate != nil && !input.StartDate.IsZero() {
		job.StartDate = *input.StartDate
	}
	if input.Duration != nil {
		job.Duration = domain.Duration{Value: input.Duration.Value, Unit: input.Duration.Unit}
	}
	if input.Pay != nil {
		job.Pay = payFrom(*input.Pay)
	}
	if input.Location != nil {
		job.Location = domain.GeoPoint{Latitude: *input.Location.Latitude, Longitude: *input.Location.Longitude}
		job.City = input.Location.City
	}
	if input.Description != nil {
		job.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsFeatured != nil {
		job.IsFeatured = *input.IsFeatured
	}

	if err := u.jobRepo.Update(ctx, job, ids); err != nil {
		return nil, notFoundAs(err, "Job not found")
	}
	return job, nil
}

func (u *jobUsecase) UpdateStatus(ctx context.Context, ownerID int64, code string, status domain.JobStatus) (*domain.JobPost, error) {
	if !status.Valid() {
		return nil, apperror.Validation(map[string][]string{"status": {"must be one of pending, active, completed, cancelled"}})
	}
	job, err := u.ownedJob(ctx, ownerID, code)
	if err != nil {
		return nil, err
	}
	if !job.Status.CanTransitionTo(status) {
		return nil, apperror.Unprocessable(fmt.Sprintf("Cannot change job status from %s to %s", job.Status, status))
	}
	if err := u.jobRepo.UpdateStatus(ctx, job.ID, status); err != nil {
		return nil, notFoundAs(err, "Job not found")
	}
	job.Status = status
	return job, nil
}

func (u *jobUsecase) DeleteJob(ctx context.Context, ownerID int64, code string) error {
	job, err := u.ownedJob(ctx, ownerID, code)
	if err != nil {
		return err
	}
	return notFoundAs(u.jobRepo.Delete(ctx, job.ID), "Job not found")
}

// SearchJobs validates the filter, runs one page query and decorates the
// page with owner ratings fetched in a single batch.
func (u *jobUsecase) SearchJobs(ctx context.Context, filter domain.SearchFilter) (*domain.SearchPage, error) {
	if errs := filter.Validate(); errs != nil {
		return nil, apperror.Validation(errs)
	}

	rows, total, err := u.jobRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}

	ownerIDs := make([]int64, 0, len(rows))
	seen := map[int64]bool{}
	for _, r := range rows {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ownerIDs = append(ownerIDs, r.UserID)
		}
	}
	aggregates := map[int64]domain.RatingAggregate{}
	if len(ownerIDs) > 0 {
		if aggregates, err = u.ratings.AggregateForUsers(ctx, ownerIDs); err != nil {
			return nil, fmt.Errorf("owner ratings: %w", err)
		}
	}

	jobs := make([]domain.SearchResult, 0, len(rows))
	for _, r := range rows {
		owner, ok := aggregates[r.UserID]
		if !ok {
			owner = domain.RatingAggregate{UserID: r.UserID}
		}
		jobs = append(jobs, domain.SearchResult{
			JobID:         r.Code,
			Title:         r.Title,
			DistanceMiles: domain.WholeMiles(r.DistanceMiles),
			Pay:           domain.SearchPay{Amount: r.Pay.Amount, Unit: r.Pay.Unit},
			Duration:      r.Duration,
			StartDate:     r.StartDate,
			IsFeatured:    r.IsFeatured,
			QuickApply:    true,
			Owner:         owner,
		})
	}

	limit := filter.EffectiveLimit()
	page := &domain.SearchPage{
		Jobs: jobs,
		Pagination: domain.SearchPagination{
			Page:       filter.EffectivePage(),
			Limit:      limit,
			TotalPages: domain.TotalPages(total, limit),
			TotalJobs:  total,
		},
	}
	if loc := filter.Location; loc != nil {
		page.Location = &domain.SearchLocationEcho{
			Name:              loc.Name,
			Latitude:          loc.Latitude,
			Longitude:         loc.Longitude,
			SearchRadiusMiles: filter.EffectiveRadius(),
		}
	}
	return page, nil
}

// exportBatch is the page size used when walking all of an owner's jobs.
const exportBatch = 100

func (u *jobUsecase) ExportMyJobs(ctx context.Context, ownerID int64) ([]byte, error) {
	var jobs []domain.JobPost
	for offset := 0; ; offset += exportBatch {
		batch, total, err := u.jobRepo.ListByOwner(ctx, ownerID, nil, exportBatch, offset)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, batch...)
		if len(batch) < exportBatch || int64(len(jobs)) >= total {
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Jobs"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"JOB ID", "TITLE", "STATUS", "START DATE", "DURATION", "PAY", "CITY", "SKILLS", "FEATURED", "POSTED AT"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, job := range jobs {
		names := make([]string, len(job.Skills))
		for i, s := range job.Skills {
			names[i] = s.Name
		}
		city := ""
		if job.City != nil {
			city = *job.City
		}
		values := []any{
			job.Code,
			job.Title,
			strings.ToUpper(string(job.Status)),
			job.StartDate.String(),
			fmt.Sprintf("%d %s", job.Duration.Value, job.Duration.Unit),
			fmt.Sprintf("%.2f %s / %s", job.Pay.Amount, job.Pay.Currency, job.Pay.Unit),
			city,
			strings.Join(names, ", "),
			job.IsFeatured,
			job.CreatedAt.Format("2006-01-02 15:04"),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
