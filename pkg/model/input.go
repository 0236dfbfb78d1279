package model

import (
	"encoding/json"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"

	appErrors "github.com/classmesh/timegrid/pkg/errors"
)

// RawInput is the shape of one scheduling request as decoded from JSON.
// Weights are optional and override the configured soft-constraint weights.
type RawInput struct {
	Grid      Grid
	Faculties []Faculty
	Subjects  []Subject
	Rooms     []Room
	Divisions []Division
	Weights   *SoftWeights
}

// Input is a validated scheduling request. It is read-only for the duration
// of a search run; the engine deep-copies whatever it needs to mutate.
type Input struct {
	Grid      Grid       `validate:"required"`
	Faculties []Faculty  `validate:"min=1,dive"`
	Subjects  []Subject  `validate:"dive"`
	Rooms     []Room     `validate:"min=1,dive"`
	Divisions []Division `validate:"dive"`
	Weights   *SoftWeights
}

var validate = validator.New()

// InputFromJson reads a scheduling request from a JSON file.
func InputFromJson(file string) (Input, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Input{}, appErrors.Wrap(err, appErrors.CodeInvalidDomainInput, "cannot read input file")
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Input{}, appErrors.Wrap(err, appErrors.CodeInvalidDomainInput, "cannot parse input file")
	}

	var rawInput RawInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return Input{}, appErrors.Wrap(err, appErrors.CodeInvalidDomainInput, "cannot decode input file")
	}
	return ProcessRawInput(rawInput)
}

// ProcessRawInput validates a decoded request and promotes it to an Input.
func ProcessRawInput(rawInput RawInput) (Input, error) {
	input := Input{
		Grid:      rawInput.Grid,
		Faculties: rawInput.Faculties,
		Subjects:  rawInput.Subjects,
		Rooms:     rawInput.Rooms,
		Divisions: rawInput.Divisions,
		Weights:   rawInput.Weights,
	}

	if err := ValidateInput(input); err != nil {
		return Input{}, err
	}
	return input, nil
}

// ValidateInput checks an Input against the domain invariants. Every breach is
// reported as an InvalidDomainInput error; the engine refuses to search over
// anything this function rejects.
func ValidateInput(input Input) error {
	//** Structural validation
	if err := validate.Struct(input); err != nil {
		return appErrors.Wrap(err, appErrors.CodeInvalidDomainInput, "malformed input record")
	}

	grid := input.Grid

	//** Faculties
	for i, faculty := range input.Faculties {
		if faculty.Id != uint64(i) {
			return appErrors.Newf(appErrors.CodeInvalidDomainInput, "faculty %q: id %v does not match position %v", faculty.Name, faculty.Id, i)
		}
		if err := checkAvailability(grid, faculty.Availability); err != nil {
			return appErrors.Newf(appErrors.CodeInvalidDomainInput, "faculty %q: %v", faculty.Name, err)
		}
		for _, slot := range faculty.PreferredSlots {
			if !grid.Contains(slot) {
				return appErrors.Newf(appErrors.CodeInvalidDomainInput, "faculty %q: preferred slot (day %v, period %v) is outside the grid", faculty.Name, slot.Day, slot.Period)
			}
		}
	}

	//** Subjects
	for i, subject := range input.Subjects {
		if subject.Id != uint64(i) {
			return appErrors.Newf(appErrors.CodeInvalidDomainInput, "subject %q: id %v does not match position %v", subject.Name, subject.Id, i)
		}
		if subject.Duration > grid.Periods {
			return appErrors.Newf(appErrors.CodeInvalidDomainInput, "subject %q: duration %v does not fit a day of %v periods", subject.Name, subject.Duration, grid.Periods)
		}
		for _, faculty := range subject.EligibleFaculty {
			if faculty >= uint64(len(input.Faculties)) {
				return appErrors.Newf(appErrors.CodeInvalidDomainInput, "subject %q: unknown eligible faculty %v", subject.Name, faculty)
			}
		}
		if subject.Prerequisite != nil && (*subject.Prerequisite >= uint64(len(input.Subjects)) || *subject.Prerequisite == subject.Id) {
			return appErrors.Newf(appErrors.CodeInvalidDomainInput, "subject %q: invalid prerequisite %v", subject.Name, *subject.Prerequisite)
		}
	}

	//** Rooms
	for i, room := range input.Rooms {
		if room.Id != uint64(i) {
			return appErrors.Newf(appErrors.CodeInvalidDomainInput, "room %q: id %v does not match position %v", room.Name, room.Id, i)
		}
		if err := checkAvailability(grid, room.Availability); err != nil {
			return appErrors.Newf(appErrors.CodeInvalidDomainInput, "room %q: %v", room.Name, err)
		}
	}

	//** Divisions
	for i, division := range input.Divisions {
		if division.Id != uint64(i) {
			return appErrors.Newf(appErrors.CodeInvalidDomainInput, "division %q: id %v does not match position %v", division.Name, division.Id, i)
		}

		for j, subGroup := range division.SubGroups {
			if subGroup.Id != uint64(j) {
				return appErrors.Newf(appErrors.CodeInvalidDomainInput, "division %q: sub-group %q id %v does not match position %v", division.Name, subGroup.Name, subGroup.Id, j)
			}
			if subGroup.Students > division.Students {
				return appErrors.Newf(appErrors.CodeInvalidDomainInput, "division %q: sub-group %q holds %v students but the division holds %v", division.Name, subGroup.Name, subGroup.Students, division.Students)
			}
		}

		// The same (subject, sub-group) pair may be demanded only once per division
		seen := make(map[[2]uint64]bool)
		for _, entry := range division.Subjects {
			if entry.Subject >= uint64(len(input.Subjects)) {
				return appErrors.Newf(appErrors.CodeInvalidDomainInput, "division %q: unknown subject %v", division.Name, entry.Subject)
			}
			if entry.SubGroup != nil && *entry.SubGroup >= uint64(len(division.SubGroups)) {
				return appErrors.Newf(appErrors.CodeInvalidDomainInput, "division %q: unknown sub-group %v for subject %v", division.Name, *entry.SubGroup, entry.Subject)
			}

			key := [2]uint64{entry.Subject, subGroupKey(entry.SubGroup)}
			if seen[key] {
				return appErrors.Newf(appErrors.CodeInvalidDomainInput, "division %q: duplicate entry for subject %q", division.Name, input.Subjects[entry.Subject].Name)
			}
			seen[key] = true

			subject := input.Subjects[entry.Subject]
			weekly := entry.WeeklyLectures
			if weekly == 0 {
				weekly = subject.WeeklyLectures
			}
			if weekly*subject.Duration > grid.Slots() {
				return appErrors.Newf(appErrors.CodeInvalidDomainInput, "division %q: subject %q demands %v periods but the grid only has %v slots", division.Name, subject.Name, weekly*subject.Duration, grid.Slots())
			}
		}
	}

	//** Weights
	if input.Weights != nil {
		weights := []float64{
			input.Weights.PreferredSlots,
			input.Weights.RoomLocality,
			input.Weights.LoadBalance,
			input.Weights.DayCompactness,
			input.Weights.SlotConsistency,
		}
		if lo.SomeBy(weights, func(weight float64) bool { return weight < 0 }) {
			return appErrors.New(appErrors.CodeInvalidDomainInput, "soft-constraint weights must not be negative")
		}
	}

	return nil
}

// checkAvailability verifies a [period][day] bitmap matches the grid exactly.
func checkAvailability(grid Grid, availability [][]bool) error {
	if uint64(len(availability)) != grid.Periods {
		return appErrors.Newf(appErrors.CodeInvalidDomainInput, "availability has %v period rows, grid has %v periods", len(availability), grid.Periods)
	}
	if slices.ContainsFunc(availability, func(row []bool) bool { return uint64(len(row)) != grid.Days }) {
		return appErrors.Newf(appErrors.CodeInvalidDomainInput, "availability rows must span %v days", grid.Days)
	}
	return nil
}
