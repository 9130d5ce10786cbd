package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/quadroute/quadroute/internal/geo"
)

// Engine tuning constants.
const (
	// BusSpeedMPS is the assumed average in-service bus speed, stops and
	// traffic included.
	BusSpeedMPS = 6.0

	// BoardingStopRadiusM bounds the boarding-stop search around the rider.
	BoardingStopRadiusM = 800.0
	// AlightingStopRadiusM bounds the exit-stop search around the destination.
	AlightingStopRadiusM = 500.0

	boardingStopLimit  = 10
	alightingStopLimit = 5

	// defaultWalkFromStopMins is the flat last-leg estimate used when no
	// exit stop is found near the destination.
	defaultWalkFromStopMins = 5.0

	// minWalkingSpeedMPS is the floor applied to small positive speeds.
	minWalkingSpeedMPS = 0.1

	maxOptionsCeiling = 10
)

// Engine synthesizes travel options against an injected DataProvider.
type Engine struct {
	provider DataProvider
}

// NewEngine returns an Engine backed by the given provider.
func NewEngine(provider DataProvider) *Engine {
	return &Engine{provider: provider}
}

// Compute evaluates all feasible WALK and BUS options for the input and
// returns them ranked by arrival time. An empty slice means no option fits
// the deadline; that is a valid result, not an error. Provider failures
// degrade to missing data and never fail the computation.
func (e *Engine) Compute(ctx context.Context, in Input) ([]Option, error) {
	if in.ArriveBy.IsZero() {
		return nil, ErrInvalidArriveBy
	}

	walkSpeed := in.WalkingSpeedMPS
	if walkSpeed > 0 && walkSpeed < minWalkingSpeedMPS {
		walkSpeed = minWalkingSpeedMPS
	}

	maxOpts := in.MaxOptions
	if maxOpts < 1 {
		maxOpts = 1
	}
	if maxOpts > maxOptionsCeiling {
		maxOpts = maxOptionsCeiling
	}

	budgetMins := in.ArriveBy.Sub(in.Now).Minutes() - in.BufferMinutes

	destName := in.DestinationName
	if destName == "" {
		destName = "destination"
	}

	directMeters := geo.DistanceMeters(in.Rider.Lat, in.Rider.Lng, in.Destination.Lat, in.Destination.Lng)

	var walkOption *Option
	walkOnlyMins := walkMinutes(directMeters, walkSpeed)
	if walkOnlyMins <= budgetMins {
		departIn := math.Max(0, budgetMins-walkOnlyMins)
		walkOption = &Option{
			Type:            OptionWalk,
			Summary:         fmt.Sprintf("Walk to %s (%.0f min)", destName, walkOnlyMins),
			ETAMinutes:      round1(walkOnlyMins),
			DepartInMinutes: round1(departIn),
			Steps: []Step{{
				Type:            StepWalkToDest,
				DurationMinutes: round1(walkOnlyMins),
				BuildingID:      in.DestinationBuildingID,
				DestLat:         in.Destination.Lat,
				DestLng:         in.Destination.Lng,
			}},
		}
	}

	busCandidates := e.busCandidates(ctx, in, walkSpeed, budgetMins)

	// Rank bus candidates by raw travel time, summary as tiebreaker, and
	// reserve one slot for the walk option when it exists.
	sort.SliceStable(busCandidates, func(i, j int) bool {
		if busCandidates[i].score != busCandidates[j].score {
			return busCandidates[i].score < busCandidates[j].score
		}
		return busCandidates[i].option.Summary < busCandidates[j].option.Summary
	})

	busSlots := maxOpts
	if walkOption != nil {
		busSlots--
	}
	if busSlots > len(busCandidates) {
		busSlots = len(busCandidates)
	}

	options := make([]Option, 0, maxOpts)
	for _, c := range busCandidates[:busSlots] {
		options = append(options, c.option)
	}
	if walkOption != nil {
		options = append(options, *walkOption)
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].ETAMinutes != options[j].ETAMinutes {
			return options[i].ETAMinutes < options[j].ETAMinutes
		}
		return options[i].Summary < options[j].Summary
	})
	if len(options) > maxOpts {
		options = options[:maxOpts]
	}
	return options, nil
}

type scoredOption struct {
	option Option
	score  float64
}

// busCandidates evaluates every (boarding stop, departure) pair within reach
// of the rider. Stop and departure lookups that fail are treated as empty.
func (e *Engine) busCandidates(ctx context.Context, in Input, walkSpeed, budgetMins float64) []scoredOption {
	boarding, err := e.provider.NearbyStops(ctx, in.Rider.Lat, in.Rider.Lng, BoardingStopRadiusM, boardingStopLimit)
	if err != nil || len(boarding) == 0 {
		return nil
	}

	exitStop, walkFromStopMins := e.exitLeg(ctx, in, walkSpeed)

	candidates := make([]scoredOption, 0, len(boarding))
	for i := range boarding {
		stop := boarding[i]
		walkToStopMeters := geo.DistanceMeters(in.Rider.Lat, in.Rider.Lng, stop.Lat, stop.Lng)
		walkToStopMins := walkMinutes(walkToStopMeters, walkSpeed)

		departures, err := e.provider.Departures(ctx, stop.ID)
		if err != nil {
			continue
		}
		for _, dep := range departures {
			waitMins := math.Max(0, float64(dep.ExpectedMins)-walkToStopMins)

			rideFrom := Coordinate{Lat: stop.Lat, Lng: stop.Lng}
			rideTo := in.Destination
			if exitStop != nil {
				rideTo = Coordinate{Lat: exitStop.Lat, Lng: exitStop.Lng}
			}
			rideMeters := geo.DistanceMeters(rideFrom.Lat, rideFrom.Lng, rideTo.Lat, rideTo.Lng)
			rideMins := rideMeters / BusSpeedMPS / 60.0

			total := walkToStopMins + waitMins + rideMins + walkFromStopMins
			if total > budgetMins {
				continue
			}

			headsign := dep.Headsign
			if headsign == "" {
				headsign = "destination"
			}

			steps := []Step{
				{Type: StepWalkToStop, DurationMinutes: round1(walkToStopMins), Stop: &stop},
				{Type: StepWait, DurationMinutes: round1(waitMins), Stop: &stop},
				{
					Type:            StepRide,
					DurationMinutes: round1(rideMins),
					Route:           dep.Route,
					Headsign:        dep.Headsign,
					Stop:            &stop,
					AlightingStop:   exitStop,
				},
				{
					Type:            StepWalkToDest,
					DurationMinutes: round1(walkFromStopMins),
					BuildingID:      in.DestinationBuildingID,
					DestLat:         in.Destination.Lat,
					DestLng:         in.Destination.Lng,
				},
			}

			candidates = append(candidates, scoredOption{
				score: total,
				option: Option{
					Type:            OptionBus,
					Summary:         fmt.Sprintf("Bus %s to %s (%.0f min)", dep.Route, headsign, total),
					ETAMinutes:      round1(total),
					DepartInMinutes: round1(math.Max(0, budgetMins-total)),
					Steps:           steps,
				},
			})
		}
	}
	return candidates
}

// exitLeg picks the stop nearest the destination within the alighting radius
// and computes the final walk. Without such a stop the ride targets the
// destination directly and the last leg falls back to a flat estimate.
func (e *Engine) exitLeg(ctx context.Context, in Input, walkSpeed float64) (*Stop, float64) {
	stops, err := e.provider.NearbyStops(ctx, in.Destination.Lat, in.Destination.Lng, AlightingStopRadiusM, alightingStopLimit)
	if err != nil || len(stops) == 0 {
		return nil, defaultWalkFromStopMins
	}

	best := stops[0]
	bestDist := geo.DistanceMeters(in.Destination.Lat, in.Destination.Lng, best.Lat, best.Lng)
	for _, s := range stops[1:] {
		d := geo.DistanceMeters(in.Destination.Lat, in.Destination.Lng, s.Lat, s.Lng)
		if d < bestDist {
			best, bestDist = s, d
		}
	}
	return &best, walkMinutes(bestDist, walkSpeed)
}

// walkMinutes converts a distance to walking minutes. Non-positive speeds
// yield +Inf so dependent options fall out of the budget filter instead of
// dividing by zero.
func walkMinutes(meters, speedMPS float64) float64 {
	if speedMPS <= 0 {
		return math.Inf(1)
	}
	return meters / speedMPS / 60.0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
