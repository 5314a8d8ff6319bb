package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"certprep-platform/internal/apperr"
	"certprep-platform/internal/logger"
	"certprep-platform/models"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ExportService produces question-bank spreadsheets from the index so exam
// authors can review extracted and generated questions offline.
type ExportService struct {
	records *mongo.Collection
}

func NewExportService(db *mongo.Database) *ExportService {
	return &ExportService{records: db.Collection("index_records")}
}

// ExportQuestionBank writes all question records for a certification (or all
// certifications when empty) into an xlsx workbook and returns its bytes.
func (es *ExportService) ExportQuestionBank(ctx context.Context, certification string) ([]byte, int, error) {
	filter := bson.M{"content_type": models.ContentTypeQuestion}
	if certification != "" && certification != CertificationGeneral {
		filter["certification"] = certification
	}

	cursor, err := es.records.Find(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Downstreamf("failed to query question index: %v", err)
	}
	defer cursor.Close(ctx)

	var records []models.IndexRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode question records: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, apperr.NotFoundf("no questions indexed for certification %s", certification)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Error closing Excel file", "error", err)
		}
	}()

	sheetName := "Questions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Record ID", "Certification", "Question", "Options",
		"Correct Answer", "Difficulty", "Extraction Method", "Source File", "Processed At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, rec := range records {
		row := rowIdx + 2

		var options, correct string
		if rec.Question != nil {
			options = strings.Join(rec.Question.Options, " | ")
			correct = rec.Question.CorrectAnswer
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), rec.RecordID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), rec.Certification)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), rec.Text)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), options)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), correct)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), rec.Difficulty)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), rec.ExtractionMethod)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), rec.SourceFile)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), rec.ProcessedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), len(records), nil
}

// ExportFilename builds a timestamped download name for the workbook.
func ExportFilename(certification string) string {
	if certification == "" {
		certification = "all"
	}
	return fmt.Sprintf("question_bank_%s_%s.xlsx", strings.ToLower(certification), time.Now().Format("20060102_150405"))
}
