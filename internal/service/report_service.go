package service

import (
	"bytes"
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/repository"
	"civilprep_backend/internal/util"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

const (
	sheetSubjects   = "Subjects"
	sheetGoals      = "Goals"
	sheetTests      = "Tests"
	sheetMoods      = "Moods"
	sheetPrediction = "Prediction"
)

// ReportService 导出 Excel 进度报表
type ReportService struct {
	SubjectRepo *repository.SubjectRepository
	GoalRepo    *repository.DailyGoalRepository
	TestRepo    *repository.TestRecordRepository
	MoodRepo    *repository.MoodRepository
	Analytics   *AnalyticsService
	Storage     *StorageService
	now         func() time.Time
}

func NewReportService(
	subjectRepo *repository.SubjectRepository,
	goalRepo *repository.DailyGoalRepository,
	testRepo *repository.TestRecordRepository,
	moodRepo *repository.MoodRepository,
	analytics *AnalyticsService,
	storage *StorageService,
) *ReportService {
	return &ReportService{
		SubjectRepo: subjectRepo,
		GoalRepo:    goalRepo,
		TestRepo:    testRepo,
		MoodRepo:    moodRepo,
		Analytics:   analytics,
		Storage:     storage,
		now:         time.Now,
	}
}

// ReportExport 上传后的报表信息
type ReportExport struct {
	ObjectName string `json:"object_name"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
}

type reportData struct {
	subjects   []model.SubjectProgress
	goals      []model.DailyGoal
	tests      []model.TestRecord
	moods      []model.MoodEntry
	prediction *model.Prediction
}

func (s *ReportService) load(ctx context.Context, userID uint) (*reportData, error) {
	var d reportData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.subjects, err = s.SubjectRepo.FindByUserID(gctx, userID)
		return wrapLoad("subjects", err)
	})
	g.Go(func() (err error) {
		d.goals, err = s.GoalRepo.FindByUserID(gctx, userID, "")
		return wrapLoad("goals", err)
	})
	g.Go(func() (err error) {
		d.tests, err = s.TestRepo.FindByUserID(gctx, userID, "")
		return wrapLoad("tests", err)
	})
	g.Go(func() (err error) {
		d.moods, err = s.MoodRepo.FindBetween(gctx, userID, "", "")
		return wrapLoad("moods", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.prediction = s.Analytics.GetPrediction(ctx, userID, nil)
	return &d, nil
}

// Build 生成工作簿，调用方负责 Close
func (s *ReportService) Build(ctx context.Context, userID uint) (*excelize.File, error) {
	d, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetSubjects)
	for _, name := range []string{sheetGoals, sheetTests, sheetMoods, sheetPrediction} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &sheetWriter{f: f, style: headerStyle}

	w.header(sheetSubjects, "Subject", "Category", "Lectures", "Total lectures", "DPPs", "Total DPPs", "Revisions", "Questions", "Completion %")
	for _, sp := range d.subjects {
		w.row(sheetSubjects, sp.SubjectName, sp.Category, sp.CompletedLectures, sp.TotalLectures,
			sp.CompletedDPPs, sp.TotalDPPs, sp.RevisionCount, sp.QuestionsCount, sp.CompletionPercentage)
	}

	w.header(sheetGoals, "Date", "Subject", "Hours", "Topics", "Questions", "Notes")
	for _, g := range d.goals {
		w.row(sheetGoals, g.Date, g.Subject, g.HoursStudied, g.TopicsCovered, g.QuestionsSolved, g.Notes)
	}

	w.header(sheetTests, "Date", "Type", "Category", "Subject", "Scored", "Total", "Percentage")
	for _, t := range d.tests {
		w.row(sheetTests, t.AttemptDate, string(t.TestType), t.Category, t.Subject, t.ScoredMarks, t.TotalMarks, model.Round2(t.Percentage()))
	}

	w.header(sheetMoods, "Date", "Mood", "Note")
	for _, m := range d.moods {
		w.row(sheetMoods, m.Date, string(m.Mood), m.Note)
	}

	p := d.prediction
	w.header(sheetPrediction, "Metric", "Value")
	w.row(sheetPrediction, "Generated at", p.GeneratedAt.Format(util.TimeFormat))
	w.row(sheetPrediction, "Readiness", p.Readiness)
	w.row(sheetPrediction, "Prelims estimate", fmt.Sprintf("%.2f / %.0f", p.Stages.Prelims, p.Stages.PrelimsMax))
	w.row(sheetPrediction, "Mains estimate", fmt.Sprintf("%.2f / %.0f", p.Stages.Mains, p.Stages.MainsMax))
	w.row(sheetPrediction, "Interview estimate", fmt.Sprintf("%.2f / %.0f", p.Stages.Interview, p.Stages.InterviewMax))
	w.row(sheetPrediction, "Predicted rank", p.PredictedRank)
	w.row(sheetPrediction, "Qualification probability %", p.QualificationProbability)
	w.row(sheetPrediction, "Fallback", p.Fallback)
	for i, rec := range p.Recommendations {
		w.row(sheetPrediction, fmt.Sprintf("Recommendation %d", i+1), rec)
	}

	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteProgress 把报表写入 w
func (s *ReportService) WriteProgress(ctx context.Context, userID uint, w io.Writer) error {
	f, err := s.Build(ctx, userID)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

// ExportProgress 生成报表并上传到对象存储
func (s *ReportService) ExportProgress(ctx context.Context, userID uint) (*ReportExport, error) {
	var buf bytes.Buffer
	if err := s.WriteProgress(ctx, userID, &buf); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("reports/%d/progress-%s-%s.xlsx",
		userID, s.now().Format("20060102"), uuid.NewString()[:8])
	size := int64(buf.Len())

	url, err := s.Storage.Upload(ctx, objectName, &buf, size, util.MimeXLSX)
	if err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}
	return &ReportExport{ObjectName: objectName, URL: url, Size: size}, nil
}

// sheetWriter 逐行追加，记录第一个错误
type sheetWriter struct {
	f     *excelize.File
	style int
	rows  map[string]int
	err   error
}

func (w *sheetWriter) header(sheet string, titles ...string) {
	values := make([]interface{}, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	w.row(sheet, values...)
	if w.err == nil {
		w.err = w.f.SetRowStyle(sheet, 1, 1, w.style)
	}
}

func (w *sheetWriter) row(sheet string, values ...interface{}) {
	if w.err != nil {
		return
	}
	if w.rows == nil {
		w.rows = make(map[string]int)
	}
	w.rows[sheet]++

	cell, err := excelize.CoordinatesToCellName(1, w.rows[sheet])
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}
