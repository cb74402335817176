package domain

import (
	"math"
	"testing"
)

func TestObservation_Validate(t *testing.T) {
	valid := Observation{SubjectID: "1", Time: 0.5, Conc: 2, Dose: 100, InfusionDuration: 1}

	tests := []struct {
		name    string
		mutate  func(o *Observation)
		wantErr bool
	}{
		{"valid", func(o *Observation) {}, false},
		{"bolus", func(o *Observation) { o.InfusionDuration = 0 }, false},
		{"missing id", func(o *Observation) { o.SubjectID = "" }, true},
		{"negative time", func(o *Observation) { o.Time = -1 }, true},
		{"negative conc", func(o *Observation) { o.Conc = -0.1 }, true},
		{"zero dose", func(o *Observation) { o.Dose = 0 }, true},
		{"nan conc", func(o *Observation) { o.Conc = math.NaN() }, true},
		{"negative duration", func(o *Observation) { o.InfusionDuration = -2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			err := o.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSubjectSeries_SortsByTime(t *testing.T) {
	in := []Observation{
		{SubjectID: "a", Time: 4, Conc: 1},
		{SubjectID: "a", Time: 1, Conc: 2},
		{SubjectID: "a", Time: 2, Conc: 3},
	}
	s, err := NewSubjectSeries("a", in)
	if err != nil {
		t.Fatalf("NewSubjectSeries: %v", err)
	}
	for i, want := range []float64{1, 2, 4} {
		if s.Observations[i].Time != want {
			t.Errorf("Observations[%d].Time = %v, want %v", i, s.Observations[i].Time, want)
		}
	}
	if in[0].Time != 4 {
		t.Error("input slice was reordered")
	}
}

func TestNewSubjectSeries_RejectsForeignObservation(t *testing.T) {
	_, err := NewSubjectSeries("a", []Observation{{SubjectID: "b"}})
	if err == nil {
		t.Fatal("expected error for observation of another subject")
	}
}

func TestGroupBySubject(t *testing.T) {
	obs := []Observation{
		{SubjectID: "2", Time: 1},
		{SubjectID: "1", Time: 2},
		{SubjectID: "2", Time: 0},
		{SubjectID: "1", Time: 1},
	}
	got := GroupBySubject(obs)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("ids = %s,%s, want 1,2", got[0].ID, got[1].ID)
	}
	if got[1].Observations[0].Time != 0 {
		t.Errorf("subject 2 not sorted by time: %+v", got[1].Observations)
	}
	if n := len(Pool(got)); n != 4 {
		t.Errorf("Pool len = %d, want 4", n)
	}
}

func TestDescribe(t *testing.T) {
	all := GroupBySubject([]Observation{
		{SubjectID: "1", Time: 0.5, Dose: 100, InfusionDuration: 1},
		{SubjectID: "1", Time: 8, Dose: 100, InfusionDuration: 1},
		{SubjectID: "2", Time: 2, Dose: 200, InfusionDuration: 0.5},
	})
	st := Describe(all)
	if st.Subjects != 2 || st.Observations != 3 {
		t.Errorf("counts = %d/%d, want 2/3", st.Subjects, st.Observations)
	}
	if st.MinTime != 0.5 || st.MaxTime != 8 {
		t.Errorf("time range = [%v, %v], want [0.5, 8]", st.MinTime, st.MaxTime)
	}
	if len(st.Doses) != 2 || st.Doses[0] != 100 || st.Doses[1] != 200 {
		t.Errorf("Doses = %v", st.Doses)
	}
	if len(st.InfusionDurations) != 2 || st.InfusionDurations[0] != 0.5 {
		t.Errorf("InfusionDurations = %v", st.InfusionDurations)
	}
}
