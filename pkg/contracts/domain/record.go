package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical date format used on export and in JSON.
const DateLayout = "2006-01-02"

// Field is a single named raw value taken from an input row.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ExtraFields holds the columns a record did not consume, in original column order.
type ExtraFields []Field

// Get returns the value stored under name.
func (e ExtraFields) Get(name string) (string, bool) {
	for _, f := range e {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Keys returns the field names in order.
func (e ExtraFields) Keys() []string {
	keys := make([]string, len(e))
	for i, f := range e {
		keys[i] = f.Name
	}
	return keys
}

// Record is one normalized observation for a location and date.
// Records are built once from an input row and treated as read-only afterwards.
type Record struct {
	Date     time.Time `json:"date"`
	Location string    `json:"location"`

	NewCases              int64 `json:"new_cases"`
	NewDeaths             int64 `json:"new_deaths"`
	NewVaccinated         int64 `json:"new_vaccinated"`
	AccumulatedCases      int64 `json:"accumulated_cases"`
	AccumulatedDeaths     int64 `json:"accumulated_deaths"`
	AccumulatedVaccinated int64 `json:"accumulated_vaccinated"`

	Extra ExtraFields `json:"extra_fields,omitempty"`
}

// Metric returns the value of a numeric role. Non-metric roles yield 0.
func (r Record) Metric(role Role) int64 {
	switch role {
	case RoleNewCases:
		return r.NewCases
	case RoleNewDeaths:
		return r.NewDeaths
	case RoleNewVaccinated:
		return r.NewVaccinated
	case RoleAccumulatedCases:
		return r.AccumulatedCases
	case RoleAccumulatedDeaths:
		return r.AccumulatedDeaths
	case RoleAccumulatedVaccinated:
		return r.AccumulatedVaccinated
	}
	return 0
}

// SetMetric assigns the value of a numeric role. It is only used while a
// record is being built.
func (r *Record) SetMetric(role Role, value int64) {
	switch role {
	case RoleNewCases:
		r.NewCases = value
	case RoleNewDeaths:
		r.NewDeaths = value
	case RoleNewVaccinated:
		r.NewVaccinated = value
	case RoleAccumulatedCases:
		r.AccumulatedCases = value
	case RoleAccumulatedDeaths:
		r.AccumulatedDeaths = value
	case RoleAccumulatedVaccinated:
		r.AccumulatedVaccinated = value
	}
}

// MonthKey returns the "MM/YYYY" bucket of the record date.
func (r Record) MonthKey() string {
	return MonthKey(r.Date)
}

// MonthKey formats t as "MM/YYYY".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%02d/%d", int(t.Month()), t.Year())
}

// MarshalJSON renders the date as YYYY-MM-DD and extra fields as an object.
func (r Record) MarshalJSON() ([]byte, error) {
	type alias struct {
		Date                  string            `json:"date"`
		Location              string            `json:"location"`
		NewCases              int64             `json:"new_cases"`
		NewDeaths             int64             `json:"new_deaths"`
		NewVaccinated         int64             `json:"new_vaccinated"`
		AccumulatedCases      int64             `json:"accumulated_cases"`
		AccumulatedDeaths     int64             `json:"accumulated_deaths"`
		AccumulatedVaccinated int64             `json:"accumulated_vaccinated"`
		Extra                 map[string]string `json:"extra_fields,omitempty"`
	}

	out := alias{
		Date:                  r.Date.Format(DateLayout),
		Location:              r.Location,
		NewCases:              r.NewCases,
		NewDeaths:             r.NewDeaths,
		NewVaccinated:         r.NewVaccinated,
		AccumulatedCases:      r.AccumulatedCases,
		AccumulatedDeaths:     r.AccumulatedDeaths,
		AccumulatedVaccinated: r.AccumulatedVaccinated,
	}
	if len(r.Extra) > 0 {
		out.Extra = make(map[string]string, len(r.Extra))
		for _, f := range r.Extra {
			out.Extra[f.Name] = f.Value
		}
	}
	return json.Marshal(out)
}
