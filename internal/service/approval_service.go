package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/internal/model"
	"github.com/STAYCALM1234/mabest-alum/internal/repository"
	"github.com/STAYCALM1234/mabest-alum/pkg/events"
)

// ── Approval errors ──

var (
	ErrProfileNotFound    = errors.New("alumni profile not found")
	ErrExportGenerateFail = errors.New("failed to generate the export file")
)

// ApprovalService administrator view over alumni profiles.
// Callers are expected to have been classified as administrators.
type ApprovalService interface {
	// ListProfiles newest first, with counts over the unfiltered list
	ListProfiles(ctx context.Context, req *dto.ProfileListRequest) (*dto.ProfileListResponse, error)
	// SetApproval is idempotent and allows any transition
	SetApproval(ctx context.Context, id string, approved bool) (*dto.AlumniResponse, error)
	// ExportProfiles renders every profile as .xlsx; returns the content and a file name
	ExportProfiles(ctx context.Context) (*bytes.Buffer, string, error)
}

type approvalService struct {
	repo      *repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewApprovalService creates an ApprovalService. publisher may be events.NopPublisher.
func NewApprovalService(repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) ApprovalService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &approvalService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *approvalService) ListProfiles(ctx context.Context, req *dto.ProfileListRequest) (*dto.ProfileListResponse, error) {
	list, err := s.repo.Alumni.List(ctx)
	if err != nil {
		s.logger.Error("list alumni profiles failed", zap.Error(err))
		return nil, err
	}

	var (
		stats   dto.ProfileStats
		status  string
		keyword string
	)
	if req != nil {
		status = req.Status
		keyword = strings.ToLower(strings.TrimSpace(req.Keyword))
	}

	profiles := make([]dto.AlumniResponse, 0, len(list))
	for i := range list {
		a := &list[i]
		st := a.Status()

		stats.Total++
		switch st {
		case model.ApprovalApproved:
			stats.Approved++
		case model.ApprovalRejected:
			stats.Rejected++
		default:
			stats.Pending++
		}

		if status != "" && status != "all" && status != st {
			continue
		}
		if keyword != "" && !matchesKeyword(a, keyword) {
			continue
		}
		profiles = append(profiles, toAlumniResponse(a))
	}

	return &dto.ProfileListResponse{Profiles: profiles, Stats: stats}, nil
}

func matchesKeyword(a *model.Alumni, keyword string) bool {
	return strings.Contains(strings.ToLower(a.Name), keyword) ||
		strings.Contains(strings.ToLower(a.Email), keyword) ||
		strings.Contains(strings.ToLower(a.Course), keyword)
}

func (s *approvalService) SetApproval(ctx context.Context, id string, approved bool) (*dto.AlumniResponse, error) {
	// ids are uuid columns; anything else can never match a row
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProfileNotFound
	}
	alumni, err := s.repo.Alumni.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("look up alumni profile failed", zap.String("alumni_id", id), zap.Error(err))
		return nil, err
	}

	changed := alumni.Approved == nil || *alumni.Approved != approved

	if err := s.repo.Alumni.SetApproval(ctx, id, approved); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("update approval failed", zap.String("alumni_id", id), zap.Error(err))
		return nil, err
	}
	alumni.Approved = &approved

	if changed {
		s.logger.Info("alumni approval changed",
			zap.String("alumni_id", id),
			zap.String("status", alumni.Status()),
		)
		s.publish(ctx, alumni)
	}

	resp := toAlumniResponse(alumni)
	return &resp, nil
}

// publish never fails the approval; the row is already updated
func (s *approvalService) publish(ctx context.Context, a *model.Alumni) {
	evt := events.ApprovalEvent{
		AlumniID:  a.AlumniID,
		Name:      a.Name,
		Email:     a.Email,
		Approved:  a.IsApproved(),
		ChangedAt: s.now().UTC(),
	}
	if err := s.publisher.PublishApproval(ctx, evt); err != nil {
		s.logger.Warn("publish approval event failed",
			zap.String("alumni_id", a.AlumniID),
			zap.Error(err),
		)
	}
}

func (s *approvalService) ExportProfiles(ctx context.Context) (*bytes.Buffer, string, error) {
	list, err := s.repo.Alumni.List(ctx)
	if err != nil {
		s.logger.Error("list alumni profiles failed", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Alumni"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Name", "Email", "Phone", "Course", "Status", "Registered"}
	widths := []float64{24, 32, 18, 26, 12, 20}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheet, col, col, widths[i])
		f.SetCellValue(sheet, cell(col, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i := range list {
		a := &list[i]
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), a.Name)
		f.SetCellValue(sheet, cell("B", row), a.Email)
		f.SetCellValue(sheet, cell("C", row), a.Phone)
		f.SetCellValue(sheet, cell("D", row), a.Course)
		f.SetCellValue(sheet, cell("E", row), a.Status())
		f.SetCellValue(sheet, cell("F", row), a.CreatedAt.Format("2006-01-02 15:04"))
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("alumni_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
