package store

import "context"

// SamplePatients is the demo data set inserted by Seed.
var SamplePatients = []Patient{
	{Name: "John Doe", Age: "45", Disease: "Hypertension"},
	{Name: "Jane Smith", Age: "32", Disease: "Diabetes"},
	{Name: "Alice Johnson", Age: "60", Disease: "Arthritis"},
	{Name: "Bob Brown", Age: "28", Disease: "Asthma"},
	{Name: "Charlie Davis", Age: "50", Disease: "Heart Disease"},
	{Name: "David Evans", Age: "19", Disease: "Allergies"},
	{Name: "Eve Foster", Age: "72", Disease: "Osteoporosis"},
	{Name: "Frank Green", Age: "35", Disease: "Migraine"},
	{Name: "Grace Harris", Age: "41", Disease: "Thyroid Disorder"},
	{Name: "Henry Irving", Age: "55", Disease: "Cancer"},
	{Name: "Ivy Jackson", Age: "29", Disease: "Anemia"},
	{Name: "Jack King", Age: "63", Disease: "COPD"},
}

// Seed inserts the sample patients and returns how many were created.
// Inserts go through Create, so registered hooks fire for each row.
func (s *Store) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, p := range SamplePatients {
		if _, err := s.Create(ctx, p); err != nil {
			return created, err
		}
		created++
	}
	s.log.Info().Int("created", created).Msg("Seeded sample patients")
	return created, nil
}
