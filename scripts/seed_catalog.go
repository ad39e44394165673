package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storebot/internal/config"
	"storebot/internal/database"
	"storebot/internal/google"
	"storebot/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type CatalogFile struct {
	Products []models.Product `yaml:"products"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		catalogPath  = flag.String("catalog", "configs/catalog.yaml", "path to catalog.yaml")
		dbPath       = flag.String("db", "./data/store.db", "path to sqlite db")
		overwrite    = flag.Bool("overwrite", false, "replace products that already exist")
		configPath   = flag.String("config", "configs/config.yaml", "path to config.yaml, used by -rebuild-sheet")
		rebuildSheet = flag.Bool("rebuild-sheet", false, "rewrite the orders sheet from the database")
	)
	flag.Parse()

	data, err := os.ReadFile(*catalogPath)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var catalog CatalogFile
	if err = yaml.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog.Products) == 0 {
		return fmt.Errorf("no products in yaml")
	}
	if err = config.ValidateProducts(catalog.Products); err != nil {
		return err
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *overwrite {
		created, updated := 0, 0
		for i := range catalog.Products {
			replaced, err := db.AddProduct(ctx, &catalog.Products[i])
			if err != nil {
				return fmt.Errorf("add %s: %w", catalog.Products[i].Name, err)
			}
			if replaced {
				updated++
			} else {
				created++
			}
		}
		fmt.Printf("done: created=%d updated=%d\n", created, updated)
	} else {
		added, err := db.SeedProducts(ctx, catalog.Products)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Printf("done: created=%d skipped=%d\n", added, len(catalog.Products)-added)
	}

	if *rebuildSheet {
		return rebuildOrdersSheet(ctx, *configPath, db)
	}
	return nil
}

func rebuildOrdersSheet(ctx context.Context, configPath string, db *database.DB) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Google.Enabled() {
		return fmt.Errorf("google sheets is not configured in %s", configPath)
	}

	sheets, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.OrdersSpreadsheet, cfg.Google.OrdersSheetName)
	if err != nil {
		return fmt.Errorf("init sheets: %w", err)
	}
	orders, err := db.GetOrders(ctx, 0)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	if err := sheets.ReplaceOrders(ctx, orders); err != nil {
		return fmt.Errorf("replace orders: %w", err)
	}
	fmt.Printf("sheet rebuilt: orders=%d\n", len(orders))
	return nil
}
