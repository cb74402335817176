package domain

// StudyMetadata describes the units and origin of a dataset.
// Every field is optional.
type StudyMetadata struct {
	Study    string `json:"study,omitempty"`
	TimeUnit string `json:"time_unit,omitempty"`
	ConcUnit string `json:"conc_unit,omitempty"`
	DoseUnit string `json:"dose_unit,omitempty"`
}

// Empty reports whether no field is set.
func (m StudyMetadata) Empty() bool {
	return m == StudyMetadata{}
}
