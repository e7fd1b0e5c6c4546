package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// GenerateReportReference generates a unique report reference in the format
// RPT-YYYY-NNNN where YYYY is the current year and NNNN is a sequential
// number. Citizens quote this number when following up on an issue.
func GenerateReportReference(ctx context.Context, db *pgxpool.Pool) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("RPT-%d-", year)

	query := `
		SELECT reference_number
		FROM reports
		WHERE reference_number LIKE $1
		ORDER BY reference_number DESC
		LIMIT 1
	`
	pattern := fmt.Sprintf("RPT-%d-%%", year)

	var lastReference string
	err := db.QueryRow(ctx, query, pattern).Scan(&lastReference)
	if err != nil {
		// First report of the year starts the sequence.
		if isNoRows(err) {
			return fmt.Sprintf("%s%04d", prefix, 1), nil
		}
		return "", fmt.Errorf("failed to query last report reference: %w", err)
	}

	var lastSeq int
	_, err = fmt.Sscanf(lastReference, prefix+"%d", &lastSeq)
	if err != nil {
		// If parsing fails, start fresh
		return fmt.Sprintf("%s%04d", prefix, 1), nil
	}

	return fmt.Sprintf("%s%04d", prefix, lastSeq+1), nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
