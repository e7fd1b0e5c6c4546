package main

import (
	"math"
	"testing"

	"rationtrack/utils"
)

func TestCreatePagination(t *testing.T) {
	p := utils.CreatePagination(45, 2, 20)
	if p.TotalItems != 45 || p.CurrentPage != 2 || p.PageSize != 20 || p.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", p)
	}

	// Defaults kick in for nonsense input
	p = utils.CreatePagination(10, 0, 0)
	if p.CurrentPage != 1 || p.PageSize != 10 {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestHaversineKm(t *testing.T) {
	// Same point
	if d := utils.HaversineKm(12.97, 77.59, 12.97, 77.59); d != 0 {
		t.Fatalf("expected 0 distance, got %f", d)
	}

	// Bengaluru to Chennai is roughly 290 km
	d := utils.HaversineKm(12.9716, 77.5946, 13.0827, 80.2707)
	if math.Abs(d-290) > 15 {
		t.Fatalf("expected roughly 290 km, got %f", d)
	}
}
