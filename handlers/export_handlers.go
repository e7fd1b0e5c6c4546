package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"rationtrack/database"
	"rationtrack/forecast"
	"rationtrack/models"
	"rationtrack/store"
)

const exportWindowDays = 365

var observationHeader = []string{"shop_id", "commodity", "date", "stock_level", "arrival_amount", "is_scheduled", "capacity"}
var alertHeader = []string{"id", "shop_id", "shop_name", "commodity_name", "arrival_date", "quantity_kg", "message", "created_at", "sent_at"}

// HandleExportData exports observations or alerts as XLSX, CSV or JSON.
// GET /api/v1/data/export?type=observations|alerts&format=xlsx|csv|json
func HandleExportData(c *fiber.Ctx) error {
	dataType := c.Query("type", "observations")
	format := c.Query("format", "xlsx")

	var header []string
	var rows [][]interface{}
	var jsonPayload interface{}

	switch dataType {
	case "observations":
		from := time.Now().UTC().AddDate(0, 0, -exportWindowDays)
		supplies := store.NewSupplyStore(database.GetDB())
		observations, err := supplies.AllObservations(c.Context(), from)
		if err != nil {
			log.Printf("Error loading observations for export: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
		}
		header = observationHeader
		rows = observationRows(observations)
		jsonPayload = observations
	case "alerts":
		alerts := store.NewAlertStore(database.GetDB())
		list, _, err := alerts.ListAlerts(c.Context(), 10000, 0)
		if err != nil {
			log.Printf("Error loading alerts for export: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
		}
		header = alertHeader
		rows = alertRows(list)
		jsonPayload = list
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "type must be observations or alerts"})
	}

	filename := fmt.Sprintf("%s-%s", dataType, time.Now().UTC().Format("2006-01-02"))

	switch format {
	case "json":
		return c.JSON(fiber.Map{"status": "success", "data": jsonPayload})
	case "csv":
		payload, err := buildCSV(header, rows)
		if err != nil {
			log.Printf("Error building CSV export: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not build export"})
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.csv", filename))
		return c.Send(payload)
	case "xlsx":
		payload, err := buildXLSX(header, rows)
		if err != nil {
			log.Printf("Error building XLSX export: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not build export"})
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.xlsx", filename))
		return c.Send(payload)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "format must be xlsx, csv or json"})
	}
}

func observationRows(observations []forecast.Observation) [][]interface{} {
	rows := make([][]interface{}, 0, len(observations))
	for _, o := range observations {
		capacity := ""
		if o.Capacity != nil {
			capacity = strconv.FormatFloat(*o.Capacity, 'f', -1, 64)
		}
		rows = append(rows, []interface{}{
			o.ShopID, o.Commodity, o.Date.Format("2006-01-02"),
			o.StockLevel, o.ArrivalAmount, o.IsScheduled, capacity,
		})
	}
	return rows
}

func alertRows(alerts []models.StockAlert) [][]interface{} {
	rows := make([][]interface{}, 0, len(alerts))
	for _, alert := range alerts {
		quantity := ""
		if alert.QuantityKg != nil {
			quantity = strconv.FormatFloat(*alert.QuantityKg, 'f', -1, 64)
		}
		message := ""
		if alert.Message != nil {
			message = *alert.Message
		}
		sentAt := ""
		if alert.SentAt != nil {
			sentAt = alert.SentAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []interface{}{
			alert.ID, alert.ShopID, alert.ShopName, alert.CommodityName,
			alert.ArrivalDate.Format("2006-01-02"), quantity, message,
			alert.CreatedAt.UTC().Format(time.RFC3339), sentAt,
		})
	}
	return rows
}

func buildCSV(header []string, rows [][]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = fmt.Sprint(cell)
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func buildXLSX(header []string, rows [][]interface{}) ([]byte, error) {
	workbook := excelize.NewFile()
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := workbook.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
