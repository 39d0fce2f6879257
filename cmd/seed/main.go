package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing seed CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with initial data",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "master",
				Usage:  "Seed master data (suppliers and products)",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: runMasterSeed,
			},
			{
				Name:   "sales",
				Usage:  "Seed historical sales records",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: runSalesSeed,
			},
			{
				Name:  "all",
				Usage: "Seed master data and sales records",
				Flags: []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: func(c *cli.Context) error {
					if err := runMasterSeed(c); err != nil {
						return fmt.Errorf("error running master seed: %w", err)
					}
					if err := runSalesSeed(c); err != nil {
						return fmt.Errorf("error running sales seed: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMasterSeed(c *cli.Context) error {
	dbURL := c.String("db-url")
	dataDir := c.String("data-dir")

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Starting master data seeding...")

	if err := seedTable(ctx, tx, "suppliers",
		[]string{"name", "lead_time_days", "on_time_rate", "rating"},
		filepath.Join(dataDir, "suppliers.csv")); err != nil {
		return fmt.Errorf("failed to seed suppliers: %w", err)
	}

	if err := seedTable(ctx, tx, "products",
		[]string{"code", "name", "unit_cost", "holding_cost_pct", "annual_demand", "demand_std_dev", "lead_time_days", "preferred_supplier_id"},
		filepath.Join(dataDir, "products.csv")); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Master data seeding completed successfully!")
	return nil
}

func runSalesSeed(c *cli.Context) error {
	dbURL := c.String("db-url")
	dataDir := c.String("data-dir")

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Starting sales seeding...")

	count, err := seedSales(ctx, tx, filepath.Join(dataDir, "sales.csv"))
	if err != nil {
		return fmt.Errorf("failed to seed sales: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Sales seeding completed successfully! (%d records)\n", count)
	return nil
}

func seedTable(ctx context.Context, tx *sql.Tx, tableName string, columns []string, filePath string) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}
	for _, col := range columns {
		if _, ok := colIndex[col]; !ok {
			return fmt.Errorf("missing column %q in %s", col, filePath)
		}
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			args[i] = nullIfEmpty(record[colIndex[col]])
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", tableName, err)
		}
		count++
	}

	log.Printf("Seeded %d rows into %s\n", count, tableName)
	return nil
}

func seedSales(ctx context.Context, tx *sql.Tx, filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}
	for _, col := range []string{"sale_date", "product_id", "units_sold", "unit_price"} {
		if _, ok := colIndex[col]; !ok {
			return 0, fmt.Errorf("missing column %q in %s", col, filePath)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO sales_records (sale_date, product_id, units_sold, unit_price) VALUES ($1, $2, $3, $4)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read CSV record: %w", err)
		}

		saleDate, err := time.Parse("2006-01-02", record[colIndex["sale_date"]])
		if err != nil {
			return 0, fmt.Errorf("invalid sale_date %q: %w", record[colIndex["sale_date"]], err)
		}
		productID, err := strconv.ParseInt(record[colIndex["product_id"]], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid product_id %q: %w", record[colIndex["product_id"]], err)
		}
		unitsSold, err := strconv.Atoi(record[colIndex["units_sold"]])
		if err != nil {
			return 0, fmt.Errorf("invalid units_sold %q: %w", record[colIndex["units_sold"]], err)
		}
		unitPrice, err := strconv.ParseFloat(record[colIndex["unit_price"]], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid unit_price %q: %w", record[colIndex["unit_price"]], err)
		}

		if _, err := stmt.ExecContext(ctx, saleDate, productID, unitsSold, unitPrice); err != nil {
			return 0, fmt.Errorf("failed to insert sales record: %w", err)
		}
		count++
	}

	return count, nil
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
