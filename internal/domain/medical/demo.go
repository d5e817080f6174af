package medical

func strptr(s string) *string { return &s }

// demoHistory is the sample chart served when neither the upstream API
// nor a cached snapshot can provide real records.
func demoHistory(patientID string) []*HistoryItem {
	return []*HistoryItem{
		{
			ID: "hist-1", PatientID: patientID,
			Condition: "Hypertension", DiagnosedDate: "2021-03-15",
			Doctor: "Dr. Sarah Mitchell", Status: HistoryChronic,
			Notes: strptr("Controlled with medication, monitor quarterly"),
		},
		{
			ID: "hist-2", PatientID: patientID,
			Condition: "Seasonal influenza", DiagnosedDate: "2024-01-22",
			Doctor: "Dr. James Okafor", Status: HistoryResolved,
		},
		{
			ID: "hist-3", PatientID: patientID,
			Condition: "Type 2 diabetes", DiagnosedDate: "2022-09-08",
			Doctor: "Dr. Sarah Mitchell", Status: HistoryActive,
			Notes: strptr("Diet-managed, HbA1c review in six months"),
		},
	}
}

func demoMedications(patientID string) []*Medication {
	return []*Medication{
		{
			ID: "med-1", PatientID: patientID,
			Name: "Lisinopril", Dosage: "10mg", Frequency: "Once daily",
			PrescribedBy: "Dr. Sarah Mitchell", StartDate: "2021-03-20",
			Status: MedicationActive,
		},
		{
			ID: "med-2", PatientID: patientID,
			Name: "Metformin", Dosage: "500mg", Frequency: "Twice daily",
			PrescribedBy: "Dr. Sarah Mitchell", StartDate: "2022-09-10",
			Status: MedicationActive,
		},
		{
			ID: "med-3", PatientID: patientID,
			Name: "Oseltamivir", Dosage: "75mg", Frequency: "Twice daily",
			PrescribedBy: "Dr. James Okafor", StartDate: "2024-01-22",
			EndDate: strptr("2024-01-27"), Status: MedicationCompleted,
		},
	}
}

func demoAllergies(patientID string) []*Allergy {
	return []*Allergy{
		{
			ID: "alg-1", PatientID: patientID,
			Allergen: "Penicillin", Reaction: "Hives", Severity: SeverityModerate,
			DiagnosedDate: "2015-06-02",
		},
		{
			ID: "alg-2", PatientID: patientID,
			Allergen: "Peanuts", Reaction: "Anaphylaxis", Severity: SeveritySevere,
			DiagnosedDate: "2008-11-19",
			Notes:         strptr("Carries an epinephrine auto-injector"),
		},
	}
}
