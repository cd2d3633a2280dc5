package timesheet

// EngineerInfo maps a source identifier to the display name used in reports.
type EngineerInfo struct {
	ID   string
	Name string
}

var roster = []EngineerInfo{
	{ID: "ashahinian", Name: "Andre"},
	{ID: "jbarron", Name: "Jacob"},
	{ID: "jtorres", Name: "Josiah"},
	{ID: "malpert", Name: "Michael"},
}

var rosterByID = func() map[string]EngineerInfo {
	m := make(map[string]EngineerInfo, len(roster))
	for _, e := range roster {
		m[e.ID] = e
	}
	return m
}()

// Roster returns a copy of the fixed engineer roster in display order.
func Roster() []EngineerInfo {
	out := make([]EngineerInfo, len(roster))
	copy(out, roster)
	return out
}

// RosterNames returns the display names in roster order.
func RosterNames() []string {
	names := make([]string, len(roster))
	for i, e := range roster {
		names[i] = e.Name
	}
	return names
}

// LookupEngineer finds a roster engineer by source identifier.
func LookupEngineer(id string) (EngineerInfo, bool) {
	e, ok := rosterByID[id]
	return e, ok
}
