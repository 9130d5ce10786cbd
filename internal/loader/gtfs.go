// Package loader parses the source datasets the service depends on: GTFS
// feeds for stops and schedules, and the YAML building seed file.
package loader

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/quadroute/quadroute/internal/gtfs"
	"github.com/quadroute/quadroute/internal/stops"
)

// Dataset holds everything parsed from a GTFS zip.
type Dataset struct {
	Stops     []stops.Stop
	Routes    []gtfs.Route
	Trips     []gtfs.Trip
	StopTimes []gtfs.StopTime
	Shapes    []gtfs.ShapePoint
}

// ParseZip reads a GTFS zip file. Missing optional files (shapes.txt) leave
// the corresponding slice empty; missing required files are an error.
func ParseZip(path string) (*Dataset, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open gtfs zip: %w", err)
	}
	defer r.Close()

	files := make(map[string]*zip.File)
	for _, f := range r.File {
		files[f.Name] = f
	}

	ds := &Dataset{}

	required := []struct {
		name  string
		parse func(io.Reader) error
	}{
		{"stops.txt", func(rc io.Reader) error {
			parsed, perr := ParseStopsCSV(rc)
			ds.Stops = parsed
			return perr
		}},
		{"routes.txt", func(rc io.Reader) error {
			parsed, perr := parseRoutes(rc)
			ds.Routes = parsed
			return perr
		}},
		{"trips.txt", func(rc io.Reader) error {
			parsed, perr := parseTrips(rc)
			ds.Trips = parsed
			return perr
		}},
		{"stop_times.txt", func(rc io.Reader) error {
			parsed, perr := parseStopTimes(rc)
			ds.StopTimes = parsed
			return perr
		}},
	}

	for _, file := range required {
		f, ok := files[file.name]
		if !ok {
			return nil, fmt.Errorf("gtfs zip is missing %s", file.name)
		}
		if err := parseZipFile(f, file.parse); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file.name, err)
		}
	}

	if f, ok := files["shapes.txt"]; ok {
		err := parseZipFile(f, func(rc io.Reader) error {
			parsed, perr := parseShapes(rc)
			ds.Shapes = parsed
			return perr
		})
		if err != nil {
			return nil, fmt.Errorf("parse shapes.txt: %w", err)
		}
	}

	return ds, nil
}

func parseZipFile(f *zip.File, parse func(io.Reader) error) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return parse(rc)
}

// ParseStopsCSV parses a GTFS stops.txt stream. Station-level records
// (location_type 1) are skipped; riders board at platforms and poles.
func ParseStopsCSV(r io.Reader) ([]stops.Stop, error) {
	records, idx, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	var out []stops.Stop
	for _, record := range records {
		if getField(record, idx, "location_type") == "1" {
			continue
		}

		lat, err := strconv.ParseFloat(getField(record, idx, "stop_lat"), 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(getField(record, idx, "stop_lon"), 64)
		if err != nil {
			continue
		}

		out = append(out, stops.Stop{
			ID:   getField(record, idx, "stop_id"),
			Code: getField(record, idx, "stop_code"),
			Name: getField(record, idx, "stop_name"),
			Lat:  lat,
			Lng:  lng,
		})
	}

	return out, nil
}

func parseRoutes(r io.Reader) ([]gtfs.Route, error) {
	records, idx, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	var out []gtfs.Route
	for _, record := range records {
		out = append(out, gtfs.Route{
			ID:        getField(record, idx, "route_id"),
			ShortName: getField(record, idx, "route_short_name"),
			LongName:  getField(record, idx, "route_long_name"),
			Color:     getField(record, idx, "route_color"),
		})
	}
	return out, nil
}

func parseTrips(r io.Reader) ([]gtfs.Trip, error) {
	records, idx, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	var out []gtfs.Trip
	for _, record := range records {
		out = append(out, gtfs.Trip{
			ID:       getField(record, idx, "trip_id"),
			RouteID:  getField(record, idx, "route_id"),
			Headsign: getField(record, idx, "trip_headsign"),
			ShapeID:  getField(record, idx, "shape_id"),
		})
	}
	return out, nil
}

func parseStopTimes(r io.Reader) ([]gtfs.StopTime, error) {
	records, idx, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	var out []gtfs.StopTime
	for _, record := range records {
		seq, err := strconv.Atoi(getField(record, idx, "stop_sequence"))
		if err != nil {
			continue
		}
		out = append(out, gtfs.StopTime{
			TripID:        getField(record, idx, "trip_id"),
			StopID:        getField(record, idx, "stop_id"),
			StopSequence:  seq,
			ArrivalTime:   getField(record, idx, "arrival_time"),
			DepartureTime: getField(record, idx, "departure_time"),
		})
	}
	return out, nil
}

func parseShapes(r io.Reader) ([]gtfs.ShapePoint, error) {
	records, idx, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	var out []gtfs.ShapePoint
	for _, record := range records {
		lat, err := strconv.ParseFloat(getField(record, idx, "shape_pt_lat"), 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(getField(record, idx, "shape_pt_lon"), 64)
		if err != nil {
			continue
		}
		seq, err := strconv.Atoi(getField(record, idx, "shape_pt_sequence"))
		if err != nil {
			continue
		}
		out = append(out, gtfs.ShapePoint{
			ShapeID:  getField(record, idx, "shape_id"),
			Lat:      lat,
			Lng:      lng,
			Sequence: seq,
		})
	}
	return out, nil
}

// readCSV reads a whole CSV stream and returns its records plus a header
// index. Short records are tolerated; GTFS feeds in the wild have them.
func readCSV(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, err
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}

	return records, idx, nil
}

func getField(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
