package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func readFixture(t *testing.T, name string) ([]string, [][]string) {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "..", "data", "seeds", name))
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	if len(rows) < 2 {
		t.Fatalf("%s has no data rows", name)
	}
	return rows[0], rows[1:]
}

func fixtureFloat(t *testing.T, header []string, row []string, col string) float64 {
	t.Helper()
	for i, name := range header {
		if strings.TrimSpace(name) == col {
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				t.Fatalf("column %s: invalid value %q: %v", col, row[i], err)
			}
			return v
		}
	}
	t.Fatalf("column %s not found", col)
	return 0
}

// The database schema enforces these same bounds with CHECK constraints;
// the fixtures must satisfy them or seeding fails outright.

func TestSupplierFixturesWithinBounds(t *testing.T) {
	header, rows := readFixture(t, "suppliers.csv")
	for i, row := range rows {
		rating := fixtureFloat(t, header, row, "rating")
		if rating < 1 || rating > 5 {
			t.Errorf("row %d: rating = %v, want within [1, 5]", i+1, rating)
		}
		onTime := fixtureFloat(t, header, row, "on_time_rate")
		if onTime < 0 || onTime > 1 {
			t.Errorf("row %d: on_time_rate = %v, want within [0, 1]", i+1, onTime)
		}
	}
}

func TestProductFixturesWithinBounds(t *testing.T) {
	header, rows := readFixture(t, "products.csv")
	for i, row := range rows {
		holding := fixtureFloat(t, header, row, "holding_cost_pct")
		if holding <= 0 || holding > 1 {
			t.Errorf("row %d: holding_cost_pct = %v, want within (0, 1]", i+1, holding)
		}
		demand := fixtureFloat(t, header, row, "annual_demand")
		if demand < 0 {
			t.Errorf("row %d: annual_demand = %v, want >= 0", i+1, demand)
		}
	}
}
