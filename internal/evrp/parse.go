package evrp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	demandSectionMarker  = "SECCION_DEMANDA"
	stationSectionMarker = "ID_NODOS_ESTACIONES_CARGA"
)

// LoadFile parses an instance file; the instance is named after the file.
func LoadFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	inst, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	inst.Name = filepath.Base(path)
	return inst, nil
}

// Parse reads the line-oriented instance format: seven "KEY value" header
// lines (optimum, vehicles, dimension, stations, capacity, battery,
// consumption rate), a coordinates header, "id x y" lines up to the demand
// marker, "id demand" lines up to the station marker and one station id per
// line after it.
func Parse(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	next := func() (string, bool) {
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line != "" {
				return line, true
			}
		}
		return "", false
	}

	header := make([]string, 7)
	for i := range header {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("unexpected end of input in header (line %d)", lineNo)
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected \"KEY value\", got %q", lineNo, line)
		}
		header[i] = fields[1]
	}

	optimum, err := strconv.ParseFloat(header[0], 64)
	if err != nil {
		return nil, fmt.Errorf("optimum value: %w", err)
	}
	vehicles, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("number of vehicles: %w", err)
	}
	if _, err := strconv.Atoi(header[2]); err != nil {
		return nil, fmt.Errorf("dimension: %w", err)
	}
	if _, err := strconv.Atoi(header[3]); err != nil {
		return nil, fmt.Errorf("number of charge stations: %w", err)
	}
	capacity, err := strconv.ParseFloat(header[4], 64)
	if err != nil {
		return nil, fmt.Errorf("carrying capacity: %w", err)
	}
	battery, err := strconv.ParseFloat(header[5], 64)
	if err != nil {
		return nil, fmt.Errorf("battery capacity: %w", err)
	}
	rate, err := strconv.ParseFloat(header[6], 64)
	if err != nil {
		return nil, fmt.Errorf("consumption rate: %w", err)
	}

	// Заголовок секции координат
	if _, ok := next(); !ok {
		return nil, fmt.Errorf("unexpected end of input before coordinates (line %d)", lineNo)
	}

	coords := make(map[NodeID]Point)
	for {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("missing %s marker", demandSectionMarker)
		}
		if line == demandSectionMarker {
			break
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: expected \"id x y\", got %q", lineNo, line)
		}
		id, err := parseID(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: x coordinate: %w", lineNo, err)
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: y coordinate: %w", lineNo, err)
		}
		coords[id] = Point{X: x, Y: y}
	}

	demand := make(map[NodeID]float64)
	for {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("missing %s marker", stationSectionMarker)
		}
		if line == stationSectionMarker {
			break
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected \"id demand\", got %q", lineNo, line)
		}
		id, err := parseID(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		d, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: demand: %w", lineNo, err)
		}
		demand[id] = d
	}

	var stations []NodeID
	for {
		line, ok := next()
		if !ok {
			break
		}
		id, err := parseID(strings.Fields(line)[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		stations = append(stations, id)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	inst, err := NewInstance(Fleet{
		Vehicles:         vehicles,
		CarryingCapacity: capacity,
		BatteryCapacity:  battery,
		ConsumptionRate:  rate,
	}, coords, demand, stations)
	if err != nil {
		return nil, err
	}
	inst.OptimumValue = optimum
	return inst, nil
}

func parseID(s string) (NodeID, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("node id %q: %w", s, err)
	}
	return NodeID(v), nil
}
