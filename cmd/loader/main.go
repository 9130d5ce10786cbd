// Package main provides the QuadRoute dataset loader. It populates the
// SQLite transit datasets from GTFS files and seeds the building directory
// in PostgreSQL from YAML.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/quadroute/quadroute/internal/building"
	"github.com/quadroute/quadroute/internal/database"
	"github.com/quadroute/quadroute/internal/gtfs"
	"github.com/quadroute/quadroute/internal/loader"
	"github.com/quadroute/quadroute/internal/stops"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "quadroute-loader").
		Logger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "stops":
		err = runStops(ctx, log, os.Args[2:])
	case "gtfs":
		err = runGTFS(ctx, log, os.Args[2:])
	case "buildings":
		err = runBuildings(ctx, log, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("load failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: loader <command> [flags]

commands:
  stops      load GTFS stops.txt (or a full GTFS zip) into the SQLite dataset
  gtfs       load a GTFS zip (routes, trips, stop times, shapes) into the SQLite dataset
  buildings  seed the building directory in PostgreSQL from a YAML file`)
}

func runStops(ctx context.Context, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("stops", flag.ExitOnError)
	dbPath := fs.String("db", "data/transit.db", "path to the SQLite transit dataset")
	input := fs.String("input", "stops.txt", "path to stops.txt or a GTFS zip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parsed, err := parseStops(*input)
	if err != nil {
		return err
	}

	db, err := database.OpenSQLite(ctx, *dbPath, true)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := stops.NewSQLiteRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure stops schema: %w", err)
	}
	if err := repo.ReplaceAll(ctx, parsed); err != nil {
		return fmt.Errorf("replace stops: %w", err)
	}

	log.Info().
		Int("stops", len(parsed)).
		Str("db", *dbPath).
		Msg("stops dataset loaded")
	return nil
}

func parseStops(input string) ([]stops.Stop, error) {
	if strings.HasSuffix(input, ".zip") {
		ds, err := loader.ParseZip(input)
		if err != nil {
			return nil, err
		}
		return ds.Stops, nil
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return loader.ParseStopsCSV(f)
}

func runGTFS(ctx context.Context, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("gtfs", flag.ExitOnError)
	dbPath := fs.String("db", "data/transit.db", "path to the SQLite transit dataset")
	input := fs.String("input", "gtfs.zip", "path to the GTFS zip")
	withStops := fs.Bool("with-stops", true, "also replace the stop dataset from the zip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ds, err := loader.ParseZip(*input)
	if err != nil {
		return err
	}

	db, err := database.OpenSQLite(ctx, *dbPath, true)
	if err != nil {
		return err
	}
	defer db.Close()

	gtfsRepo := gtfs.NewSQLiteRepository(db)
	if err := gtfsRepo.ReplaceDataset(ctx, ds.Routes, ds.Trips, ds.StopTimes, ds.Shapes); err != nil {
		return fmt.Errorf("replace gtfs dataset: %w", err)
	}

	if *withStops {
		stopsRepo := stops.NewSQLiteRepository(db)
		if err := stopsRepo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure stops schema: %w", err)
		}
		if err := stopsRepo.ReplaceAll(ctx, ds.Stops); err != nil {
			return fmt.Errorf("replace stops: %w", err)
		}
	}

	log.Info().
		Int("routes", len(ds.Routes)).
		Int("trips", len(ds.Trips)).
		Int("stop_times", len(ds.StopTimes)).
		Int("shape_points", len(ds.Shapes)).
		Int("stops", len(ds.Stops)).
		Str("db", *dbPath).
		Msg("gtfs dataset loaded")
	return nil
}

func runBuildings(ctx context.Context, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("buildings", flag.ExitOnError)
	input := fs.String("input", "buildings.yaml", "path to the building seed file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Open(*input)
	if err != nil {
		return err
	}
	defer f.Close()

	parsed, err := loader.ParseBuildingsYAML(f)
	if err != nil {
		return err
	}

	pool, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	repo := building.NewPostgresRepository(pool)
	for _, b := range parsed {
		if err := repo.Upsert(ctx, b); err != nil {
			return fmt.Errorf("upsert building %q: %w", b.ID, err)
		}
	}

	log.Info().
		Int("buildings", len(parsed)).
		Msg("building directory seeded")
	return nil
}
