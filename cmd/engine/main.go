package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/supplydash/inventory-engine/internal/cache"
	"github.com/supplydash/inventory-engine/internal/config"
	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/engine"
	"github.com/supplydash/inventory-engine/internal/repository/postgres"
	"github.com/supplydash/inventory-engine/internal/service"
	"github.com/supplydash/inventory-engine/pkg/logger"
)

// app bundles the wired services for CLI actions.
type app struct {
	db        *postgres.DB
	snapshots *service.SnapshotService
	orders    *service.OrderService
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	catalogRepo := postgres.NewCatalogRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)
	poRepo := postgres.NewPORepository(db)
	salesRepo := postgres.NewSalesRepository(db)

	calc := engine.NewCalculator(engine.Params{
		OrderingCost:    cfg.Engine.OrderingCost,
		ZScore:          cfg.Engine.ZScore,
		WorkingDays:     cfg.Engine.WorkingDays,
		DefaultLeadTime: cfg.Engine.DefaultLeadTime,
	})
	rollForward := engine.NewRollForward(catalogRepo, snapshotRepo, poRepo, salesRepo, calc)
	agg := engine.NewAggregator(calc)

	kpiCache, err := cache.NewKPICache(cfg.Cache)
	if err != nil {
		kpiCache = cache.NewNoopKPICache()
	}

	lastSeq, err := poRepo.LastSequence(ctx, time.Now().Year())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read last PO sequence: %w", err)
	}
	numbers := engine.NewPONumberSource(time.Now().Year(), lastSeq)

	return &app{
		db:        db,
		snapshots: service.NewSnapshotService(rollForward, catalogRepo, snapshotRepo, agg, kpiCache, cfg.Engine.BaselineQty),
		orders:    service.NewOrderService(poRepo, catalogRepo, snapshotRepo, calc, numbers),
	}, nil
}

func (a *app) close() {
	a.db.Close()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseDateFlag(c *cli.Context, name string) (time.Time, error) {
	raw := c.String(name)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q, expected YYYY-MM-DD", name, raw)
	}
	return date, nil
}

func main() {
	cliApp := &cli.App{
		Name:  "engine",
		Usage: "Inventory replenishment engine CLI",
		Commands: []*cli.Command{
			{
				Name:  "rollforward",
				Usage: "Roll inventory snapshots forward to a target date",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "Target date (YYYY-MM-DD), defaults to today",
					},
					&cli.Int64SliceFlag{
						Name:  "products",
						Usage: "Product IDs to process (default: all)",
					},
				},
				Action: runRollForward,
			},
			{
				Name:  "order",
				Usage: "Manage purchase orders",
				Subcommands: []*cli.Command{
					{
						Name:  "place",
						Usage: "Place a new purchase order",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "product", Usage: "Product ID", Required: true},
							&cli.Int64Flag{Name: "supplier", Usage: "Supplier ID (default: product's preferred supplier)"},
							&cli.IntFlag{Name: "quantity", Usage: "Order quantity (default: current EOQ)"},
							&cli.StringFlag{Name: "date", Usage: "Order date (YYYY-MM-DD), defaults to today"},
						},
						Action: runOrderPlace,
					},
					{
						Name:      "ship",
						Usage:     "Mark a pending order as in transit",
						ArgsUsage: "<po-number>",
						Action:    runOrderShip,
					},
					{
						Name:      "receive",
						Usage:     "Mark an in-transit order as received",
						ArgsUsage: "<po-number>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "date", Usage: "Actual receipt date (YYYY-MM-DD), defaults to today"},
						},
						Action: runOrderReceive,
					},
					{
						Name:      "cancel",
						Usage:     "Cancel an open order",
						ArgsUsage: "<po-number>",
						Action:    runOrderCancel,
					},
					{
						Name:  "list",
						Usage: "List purchase orders",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "status", Usage: "Filter by status (PENDING, IN_TRANSIT, RECEIVED, CANCELLED)"},
						},
						Action: runOrderList,
					},
				},
			},
			{
				Name:  "report",
				Usage: "Portfolio reports from the latest snapshots",
				Subcommands: []*cli.Command{
					{
						Name:   "alerts",
						Usage:  "Stock alerts ordered by priority",
						Action: runReportAlerts,
					},
					{
						Name:   "costs",
						Usage:  "Per-product annual cost breakdown",
						Action: runReportCosts,
					},
					{
						Name:   "kpis",
						Usage:  "Portfolio-level KPIs",
						Action: runReportKPIs,
					},
					{
						Name:  "savings",
						Usage: "Cost savings versus a fixed baseline order quantity",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "baseline-qty", Usage: "Baseline order quantity (default: configured value)"},
						},
						Action: runReportSavings,
					},
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runRollForward(c *cli.Context) error {
	date, err := parseDateFlag(c, "date")
	if err != nil {
		return err
	}

	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.snapshots.Run(c.Context, date, c.Int64Slice("products"))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runOrderPlace(c *cli.Context) error {
	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	in := service.PlaceOrderInput{
		ProductID:  c.Int64("product"),
		SupplierID: c.Int64("supplier"),
		Quantity:   c.Int("quantity"),
	}
	if raw := c.String("date"); raw != "" {
		date, err := parseDateFlag(c, "date")
		if err != nil {
			return err
		}
		in.OrderDate = &date
	}

	po, err := a.orders.PlaceOrder(c.Context, in)
	if err != nil {
		return err
	}
	return printJSON(po)
}

func runOrderShip(c *cli.Context) error {
	poNumber := c.Args().First()
	if poNumber == "" {
		return fmt.Errorf("missing PO number argument")
	}

	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	po, err := a.orders.Ship(c.Context, poNumber)
	if err != nil {
		return err
	}
	return printJSON(po)
}

func runOrderReceive(c *cli.Context) error {
	poNumber := c.Args().First()
	if poNumber == "" {
		return fmt.Errorf("missing PO number argument")
	}
	date, err := parseDateFlag(c, "date")
	if err != nil {
		return err
	}

	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	po, err := a.orders.Receive(c.Context, poNumber, date)
	if err != nil {
		return err
	}
	return printJSON(po)
}

func runOrderCancel(c *cli.Context) error {
	poNumber := c.Args().First()
	if poNumber == "" {
		return fmt.Errorf("missing PO number argument")
	}

	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	po, err := a.orders.Cancel(c.Context, poNumber)
	if err != nil {
		return err
	}
	return printJSON(po)
}

func runOrderList(c *cli.Context) error {
	var status domain.POStatus
	if raw := c.String("status"); raw != "" {
		parsed, ok := domain.ParsePOStatus(raw)
		if !ok {
			return fmt.Errorf("invalid status %q", raw)
		}
		status = parsed
	}

	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	orders, err := a.orders.List(c.Context, status)
	if err != nil {
		return err
	}
	return printJSON(orders)
}

func runReportAlerts(c *cli.Context) error {
	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	alerts, err := a.snapshots.Alerts(c.Context)
	if err != nil {
		return err
	}
	return printJSON(alerts)
}

func runReportCosts(c *cli.Context) error {
	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	costs, err := a.snapshots.Costs(c.Context)
	if err != nil {
		return err
	}
	return printJSON(costs)
}

func runReportKPIs(c *cli.Context) error {
	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	kpis, err := a.snapshots.KPIs(c.Context)
	if err != nil {
		return err
	}
	return printJSON(kpis)
}

func runReportSavings(c *cli.Context) error {
	a, err := newApp(c.Context)
	if err != nil {
		return err
	}
	defer a.close()

	savings, err := a.snapshots.Savings(c.Context, c.Int("baseline-qty"))
	if err != nil {
		return err
	}
	return printJSON(savings)
}
