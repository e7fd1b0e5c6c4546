package utils

import "database/sql"

// NullStringToStringPtr converts a sql.NullString to a *string.
func NullStringToStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

// PointerToString dereferences a *string, rendering nil as "<nil>".
func PointerToString(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

// StringPtrOrNil returns nil for an empty string, a pointer otherwise.
func StringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
