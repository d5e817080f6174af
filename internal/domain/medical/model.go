package medical

// History item statuses.
const (
	HistoryActive   = "active"
	HistoryChronic  = "chronic"
	HistoryResolved = "resolved"
)

// Medication statuses.
const (
	MedicationActive    = "active"
	MedicationCompleted = "completed"
	MedicationStopped   = "stopped"
)

// Allergy severities double as the status field for filtering.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// HistoryItem is one past or ongoing condition on a patient's chart,
// fetched from the upstream clinical API.
type HistoryItem struct {
	ID            string  `json:"id"`
	PatientID     string  `json:"patient_id"`
	Condition     string  `json:"condition"`
	DiagnosedDate string  `json:"diagnosed_date"`
	Doctor        string  `json:"doctor"`
	Status        string  `json:"status"`
	Notes         *string `json:"notes,omitempty"`
}

// Medication is one prescription line on the patient's chart. Stored in
// the key-value store as demo-quality data.
type Medication struct {
	ID           string  `json:"id"`
	PatientID    string  `json:"patient_id"`
	Name         string  `json:"name"`
	Dosage       string  `json:"dosage"`
	Frequency    string  `json:"frequency"`
	PrescribedBy string  `json:"prescribed_by"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date,omitempty"`
	Status       string  `json:"status"`
}

// Allergy is one recorded allergy. Stored alongside medications in the
// key-value store.
type Allergy struct {
	ID            string  `json:"id"`
	PatientID     string  `json:"patient_id"`
	Allergen      string  `json:"allergen"`
	Reaction      string  `json:"reaction"`
	Severity      string  `json:"severity"`
	DiagnosedDate string  `json:"diagnosed_date"`
	Notes         *string `json:"notes,omitempty"`
}
