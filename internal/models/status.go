package models

// RecordsPerGroup is the fixed length of every record list in a snapshot.
const RecordsPerGroup = 20

// PersonRecord is one synthetic identity row shown by the dashboard tables.
type PersonRecord struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	SSN     string `json:"ssn"`
	UUID    string `json:"uuid"`
}

// StatusGroup holds the two status tables.
type StatusGroup struct {
	Active     []PersonRecord `json:"active"`
	Historical []PersonRecord `json:"historical"`
}

// StatusSnapshot is the payload of a single broadcast tick. It is built from
// scratch every tick and never modified after construction.
type StatusSnapshot struct {
	Status StatusGroup    `json:"status"`
	Tasks  []PersonRecord `json:"tasks"`
}

// Active returns the active records.
func (s StatusSnapshot) Active() []PersonRecord {
	return s.Status.Active
}

// Historical returns the historical records.
func (s StatusSnapshot) Historical() []PersonRecord {
	return s.Status.Historical
}
