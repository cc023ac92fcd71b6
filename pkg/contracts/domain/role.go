package domain

// Role is the semantic category assigned to a column of an ingested table.
type Role string

const (
	RoleDate                  Role = "date"
	RoleLocation              Role = "location"
	RoleNewCases              Role = "new_cases"
	RoleNewDeaths             Role = "new_deaths"
	RoleNewVaccinated         Role = "new_vaccinated"
	RoleAccumulatedCases      Role = "accumulated_cases"
	RoleAccumulatedDeaths     Role = "accumulated_deaths"
	RoleAccumulatedVaccinated Role = "accumulated_vaccinated"
)

// ClassificationOrder is the priority order used when matching column names
// against role keywords. The first role whose keywords match wins, so
// reordering this slice changes classification results.
var ClassificationOrder = []Role{
	RoleDate,
	RoleLocation,
	RoleNewCases,
	RoleNewDeaths,
	RoleNewVaccinated,
	RoleAccumulatedCases,
	RoleAccumulatedDeaths,
	RoleAccumulatedVaccinated,
}

// MetricRoles lists the six numeric roles in positional order: the columns
// immediately after date and location are read in this order when no column
// was classified into a metric role.
var MetricRoles = []Role{
	RoleNewCases,
	RoleNewDeaths,
	RoleNewVaccinated,
	RoleAccumulatedCases,
	RoleAccumulatedDeaths,
	RoleAccumulatedVaccinated,
}

// IsMetric reports whether r is one of the six numeric roles.
func (r Role) IsMetric() bool {
	for _, m := range MetricRoles {
		if r == m {
			return true
		}
	}
	return false
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	for _, known := range ClassificationOrder {
		if r == known {
			return true
		}
	}
	return false
}

// ColumnRole binds one original column name to its inferred role. ByName
// is set when the role came from the column name rather than its values.
type ColumnRole struct {
	Column string `json:"column"`
	Role   Role   `json:"role"`
	ByName bool   `json:"by_name"`
}

// RoleMapping maps original column names to roles, in original column order.
// Unmapped columns are absent. A mapping is built once per load and never
// modified afterwards.
type RoleMapping []ColumnRole

// RoleOf returns the role assigned to column.
func (m RoleMapping) RoleOf(column string) (Role, bool) {
	for _, cr := range m {
		if cr.Column == column {
			return cr.Role, true
		}
	}
	return "", false
}

// ColumnFor returns the column mapped to role. When several columns share a
// role, the leftmost column matched by name is returned, and failing that
// the leftmost column matched by content.
func (m RoleMapping) ColumnFor(role Role) (string, bool) {
	column, found := "", false
	for _, cr := range m {
		if cr.Role != role {
			continue
		}
		if cr.ByName {
			return cr.Column, true
		}
		if !found {
			column, found = cr.Column, true
		}
	}
	return column, found
}

// AsMap returns the mapping as a plain column -> role map.
func (m RoleMapping) AsMap() map[string]Role {
	out := make(map[string]Role, len(m))
	for _, cr := range m {
		out[cr.Column] = cr.Role
	}
	return out
}
