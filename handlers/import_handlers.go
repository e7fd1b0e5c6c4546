package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"rationtrack/database"
	"rationtrack/forecast"
	"rationtrack/models"
	"rationtrack/store"
	"rationtrack/utils"
)

// HandleImportObservations ingests a JSON batch of stock observations.
// Every row is validated before anything is written; the batch is all or
// nothing.
// POST /api/v1/data/observations
func HandleImportObservations(c *fiber.Ctx) error {
	var inputs []models.ObservationInput
	if err := c.BodyParser(&inputs); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if len(inputs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Batch is empty"})
	}

	observations := make([]forecast.Observation, 0, len(inputs))
	for i, input := range inputs {
		if err := utils.Validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": fmt.Sprintf("Row %d: %s", i+1, utils.ValidationMessage(err)),
			})
		}
		date, err := time.ParseInLocation("2006-01-02", input.Date, time.UTC)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": fmt.Sprintf("Row %d: date must be formatted as YYYY-MM-DD", i+1),
			})
		}
		observations = append(observations, forecast.Observation{
			ShopID:        input.ShopID,
			Commodity:     input.Commodity,
			Date:          date,
			StockLevel:    input.StockLevel,
			ArrivalAmount: input.ArrivalAmount,
			IsScheduled:   input.IsScheduled,
			Capacity:      input.Capacity,
		})
	}

	supplies := store.NewSupplyStore(database.GetDB())
	count, err := supplies.InsertObservations(c.Context(), observations)
	if err != nil {
		log.Printf("Error inserting observation batch: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not import observations"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "imported": count})
}

// HandleImportSchedule ingests a JSON batch of declared future arrivals.
// POST /api/v1/data/schedule
func HandleImportSchedule(c *fiber.Ctx) error {
	var inputs []models.ScheduleEntryInput
	if err := c.BodyParser(&inputs); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if len(inputs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Batch is empty"})
	}

	entries := make([]forecast.ScheduleEntry, 0, len(inputs))
	for i, input := range inputs {
		if err := utils.Validate.Struct(input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": fmt.Sprintf("Row %d: %s", i+1, utils.ValidationMessage(err)),
			})
		}
		date, err := time.ParseInLocation("2006-01-02", input.Date, time.UTC)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": fmt.Sprintf("Row %d: date must be formatted as YYYY-MM-DD", i+1),
			})
		}
		entries = append(entries, forecast.ScheduleEntry{
			ShopID:         input.ShopID,
			Commodity:      input.Commodity,
			Date:           date,
			ExpectedAmount: input.ExpectedAmount,
		})
	}

	supplies := store.NewSupplyStore(database.GetDB())
	count, err := supplies.InsertScheduleEntries(c.Context(), entries)
	if err != nil {
		log.Printf("Error inserting schedule batch: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not import schedule"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "imported": count})
}

// HandleImportFile ingests observations from an uploaded CSV or XLSX file.
// Expected columns, in order: shop_id, commodity, date (YYYY-MM-DD),
// stock_level, arrival_amount, is_scheduled, capacity. The first row is a
// header; is_scheduled and capacity may be left blank.
// POST /api/v1/data/import (multipart, field "file")
func HandleImportFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Multipart field file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Error opening uploaded file %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Could not read uploaded file"})
	}
	defer file.Close()

	var records [][]string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		records, err = readCSVRecords(file)
	case ".xlsx":
		records, err = readXLSXRecords(file)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Only .csv and .xlsx files are supported"})
	}
	if err != nil {
		log.Printf("Error parsing uploaded file %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Could not parse uploaded file"})
	}

	if len(records) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "File contains no data rows"})
	}

	observations := make([]forecast.Observation, 0, len(records)-1)
	for i, record := range records[1:] {
		observation, err := parseObservationRecord(record)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": fmt.Sprintf("Row %d: %v", i+2, err),
			})
		}
		observations = append(observations, observation)
	}

	supplies := store.NewSupplyStore(database.GetDB())
	count, err := supplies.InsertObservations(c.Context(), observations)
	if err != nil {
		log.Printf("Error inserting imported observations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not import observations"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "imported": count})
}

func readCSVRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func readXLSXRecords(r io.Reader) ([][]string, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return workbook.GetRows(sheets[0])
}

func parseObservationRecord(record []string) (forecast.Observation, error) {
	if len(record) < 5 {
		return forecast.Observation{}, fmt.Errorf("expected at least 5 columns, got %d", len(record))
	}

	shopID := strings.TrimSpace(record[0])
	commodity := strings.TrimSpace(record[1])
	if shopID == "" || commodity == "" {
		return forecast.Observation{}, fmt.Errorf("shop_id and commodity are required")
	}

	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(record[2]), time.UTC)
	if err != nil {
		return forecast.Observation{}, fmt.Errorf("date must be formatted as YYYY-MM-DD")
	}

	stockLevel, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil || stockLevel < 0 {
		return forecast.Observation{}, fmt.Errorf("stock_level must be a non-negative number")
	}

	arrivalAmount, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	if err != nil || arrivalAmount < 0 {
		return forecast.Observation{}, fmt.Errorf("arrival_amount must be a non-negative number")
	}

	isScheduled := false
	if len(record) > 5 && strings.TrimSpace(record[5]) != "" {
		isScheduled, err = strconv.ParseBool(strings.TrimSpace(record[5]))
		if err != nil {
			return forecast.Observation{}, fmt.Errorf("is_scheduled must be true or false")
		}
	}

	var capacity *float64
	if len(record) > 6 && strings.TrimSpace(record[6]) != "" {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(record[6]), 64)
		if err != nil || parsed <= 0 {
			return forecast.Observation{}, fmt.Errorf("capacity must be a positive number")
		}
		capacity = &parsed
	}

	return forecast.Observation{
		ShopID:        shopID,
		Commodity:     commodity,
		Date:          date,
		StockLevel:    stockLevel,
		ArrivalAmount: arrivalAmount,
		IsScheduled:   isScheduled,
		Capacity:      capacity,
	}, nil
}
