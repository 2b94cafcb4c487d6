package schedule

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flightworks/schedpipe/core/model"
)

// scheduleFile mirrors the YAML layout of a schedule file.
type scheduleFile struct {
	ID        string `yaml:"id"`
	Airline   string `yaml:"airline"`
	Season    string `yaml:"season"`
	Templates []struct {
		ID               string `yaml:"id"`
		Carrier          string `yaml:"carrier"`
		FlightNumber     string `yaml:"flight_number"`
		Origin           string `yaml:"origin"`
		Destination      string `yaml:"destination"`
		Departure        string `yaml:"departure"`
		Arrival          string `yaml:"arrival"`
		ArrivalDayOffset int    `yaml:"arrival_day_offset"`
		Days             string `yaml:"days"`
		EffectiveFrom    string `yaml:"effective_from"`
		EffectiveTo      string `yaml:"effective_to"`
		AircraftType     string `yaml:"aircraft_type"`
		Tail             string `yaml:"tail"`
		Seats            int    `yaml:"seats"`
		CrewBase         string `yaml:"crew_base"`
		FrequencyPerWeek int    `yaml:"frequency_per_week"`
	} `yaml:"templates"`
}

// LoadFile reads a schedule from a YAML file. Every template is
// validated before the schedule is returned; the first invalid template
// fails the load.
func LoadFile(path string) (*Schedule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf scheduleFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if sf.ID == "" {
		return nil, fmt.Errorf("%s: schedule id is required", path)
	}
	s := &Schedule{ID: sf.ID, Airline: sf.Airline, Season: sf.Season, Version: 1}
	for _, ft := range sf.Templates {
		from, err := parseDate(ft.EffectiveFrom)
		if err != nil {
			return nil, fmt.Errorf("template %s%s: effective_from: %w", ft.Carrier, ft.FlightNumber, err)
		}
		to, err := parseDate(ft.EffectiveTo)
		if err != nil {
			return nil, fmt.Errorf("template %s%s: effective_to: %w", ft.Carrier, ft.FlightNumber, err)
		}
		dep, err := model.ParseTimeOfDay(ft.Departure)
		if err != nil {
			return nil, fmt.Errorf("template %s%s: departure: %w", ft.Carrier, ft.FlightNumber, err)
		}
		arr, err := model.ParseTimeOfDay(ft.Arrival)
		if err != nil {
			return nil, fmt.Errorf("template %s%s: arrival: %w", ft.Carrier, ft.FlightNumber, err)
		}
		tpl := model.FlightTemplate{
			ID:               ft.ID,
			Carrier:          ft.Carrier,
			FlightNumber:     ft.FlightNumber,
			Origin:           ft.Origin,
			Destination:      ft.Destination,
			DepartureTime:    dep,
			ArrivalTime:      arr,
			ArrivalDayOffset: ft.ArrivalDayOffset,
			Days:             model.DayPattern(ft.Days),
			EffectiveFrom:    from,
			EffectiveTo:      to,
			AircraftType:     ft.AircraftType,
			Tail:             ft.Tail,
			Seats:            ft.Seats,
			CrewBase:         ft.CrewBase,
			FrequencyPerWeek: ft.FrequencyPerWeek,
		}
		if tpl.ID == "" {
			tpl.ID = tpl.Designator()
		}
		if tpl.FrequencyPerWeek == 0 {
			tpl.FrequencyPerWeek = tpl.Days.Frequency()
		}
		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("template %s: %w", tpl.ID, err)
		}
		s.Templates = append(s.Templates, tpl)
	}
	return s, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	return time.Parse(model.DateLayout, s)
}
