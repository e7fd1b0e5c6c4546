package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v4"

	"rationtrack/database"
	"rationtrack/models"
	"rationtrack/utils"
)

var allowedReportStatuses = map[string]bool{
	"pending":       true,
	"investigating": true,
	"resolved":      true,
}

// HandleCreateReport files a community report about a shop and hands the
// citizen back a human-readable reference number to quote in follow-ups.
// POST /api/v1/reports
func HandleCreateReport(c *fiber.Ctx) error {
	var req models.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": utils.ValidationMessage(err)})
	}

	userID, _ := c.Locals("userID").(string)

	reference, err := utils.GenerateReportReference(c.Context(), database.GetDB())
	if err != nil {
		log.Printf("Error generating report reference: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not create report"})
	}

	query := `
		INSERT INTO reports (id, reference_number, user_id, issue_type, description, shop_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, reference_number, user_id, issue_type, description, shop_name, status, created_at, updated_at
	`
	var report models.Report
	err = database.GetDB().QueryRow(c.Context(), query,
		uuid.NewString(), reference, utils.StringPtrOrNil(userID), req.IssueType, req.Description, req.ShopName,
	).Scan(
		&report.ID, &report.ReferenceNumber, &report.UserID, &report.IssueType,
		&report.Description, &report.ShopName, &report.Status, &report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		log.Printf("Error creating report: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not create report"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": report})
}

// HandleListReports returns community reports newest first, optionally
// filtered by status, paginated.
// GET /api/v1/reports?status=...&page=...&pageSize=...
func HandleListReports(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	status := c.Query("status")
	if status != "" && !allowedReportStatuses[status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "status must be one of pending, investigating, resolved"})
	}

	countQuery := "SELECT COUNT(*) FROM reports"
	listQuery := `
		SELECT id, reference_number, user_id, issue_type, description, shop_name, status, created_at, updated_at
		FROM reports
	`
	args := []interface{}{}
	if status != "" {
		countQuery += " WHERE status = $1"
		listQuery += " WHERE status = $1"
		args = append(args, status)
	}
	listQuery += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)

	var total int
	if err := database.GetDB().QueryRow(c.Context(), countQuery, args...).Scan(&total); err != nil {
		log.Printf("Error counting reports: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := database.GetDB().Query(c.Context(), listQuery, args...)
	if err != nil {
		log.Printf("Error listing reports: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}
	defer rows.Close()

	reports := make([]models.Report, 0)
	for rows.Next() {
		var report models.Report
		if err := rows.Scan(
			&report.ID, &report.ReferenceNumber, &report.UserID, &report.IssueType,
			&report.Description, &report.ShopName, &report.Status, &report.CreatedAt, &report.UpdatedAt,
		); err != nil {
			log.Printf("Error scanning report row: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
		}
		reports = append(reports, report)
	}

	return c.JSON(fiber.Map{
		"status":     "success",
		"data":       reports,
		"pagination": utils.CreatePagination(total, page, pageSize),
	})
}

// HandleUpdateReportStatus moves a report through its lifecycle. Only the
// pending, investigating and resolved states exist; resolved is terminal.
// PUT /api/v1/reports/:id/status
func HandleUpdateReportStatus(c *fiber.Ctx) error {
	reportID := c.Params("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if !allowedReportStatuses[req.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "status must be one of pending, investigating, resolved"})
	}

	var current string
	err := database.GetDB().QueryRow(c.Context(),
		"SELECT status FROM reports WHERE id = $1", reportID).Scan(&current)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Report not found"})
		}
		log.Printf("Error fetching report %s: %v", reportID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	if current == "resolved" && req.Status != "resolved" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": "Resolved reports cannot be reopened"})
	}

	var report models.Report
	err = database.GetDB().QueryRow(c.Context(),
		`UPDATE reports SET status = $2, updated_at = NOW() WHERE id = $1
		 RETURNING id, reference_number, user_id, issue_type, description, shop_name, status, created_at, updated_at`,
		reportID, req.Status,
	).Scan(
		&report.ID, &report.ReferenceNumber, &report.UserID, &report.IssueType,
		&report.Description, &report.ShopName, &report.Status, &report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		log.Printf("Error updating report %s status: %v", reportID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not update report"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": report})
}
