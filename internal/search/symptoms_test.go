package search

import (
	"context"
	"testing"
)

func TestAnalyzeSymptoms(t *testing.T) {
	tests := []struct {
		symptoms string
		want     []string
	}{
		{"constant bloating and acid reflux after meals", []string{SpecPanchakarma, SpecKayachikitsa}},
		{"cannot sleep, constant anxiety and stress at work", []string{SpecRasayana, SpecSwasthavritta}},
		{"itchy skin rash on both arms", []string{SpecKayachikitsa}},
		{"irregular periods and suspected pcos", []string{SpecPrasutiTantra}},
		{"my baby has trouble feeding", []string{SpecKaumaraBhritya}},
		{"general tiredness nothing specific", []string{SpecGeneral}},
	}

	for _, tt := range tests {
		got := AnalyzeSymptoms(tt.symptoms)
		if len(got) != len(tt.want) {
			t.Errorf("AnalyzeSymptoms(%q) = %v, want %v", tt.symptoms, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("AnalyzeSymptoms(%q) = %v, want %v", tt.symptoms, got, tt.want)
				break
			}
		}
	}
}

func TestAnalyzeSymptomsUnionsGroups(t *testing.T) {
	got := AnalyzeSymptoms("joint pain, poor sleep and bad digestion")

	want := map[string]bool{
		SpecPanchakarma: true, SpecKayachikitsa: true,
		SpecRasayana: true, SpecSwasthavritta: true,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want the union of pain, sleep and digestion groups", got)
	}
	for _, spec := range got {
		if !want[spec] {
			t.Errorf("unexpected specialization %q", spec)
		}
	}
}

func TestMatchesDoctor(t *testing.T) {
	specs := []string{SpecPanchakarma, SpecKayachikitsa}

	if !MatchesDoctor([]string{SpecPanchakarma}, "", specs, "bad digestion") {
		t.Error("specialization overlap not matched")
	}
	if !MatchesDoctor(nil, "digestion, gut health", specs, "chronic digestion trouble") {
		t.Error("custom keyword overlap not matched")
	}
	if MatchesDoctor([]string{SpecPrasutiTantra}, "fertility", specs, "bad digestion") {
		t.Error("unrelated doctor matched")
	}
}

type fakeLister struct{ doctors []Doctor }

func (f *fakeLister) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return f.doctors, nil
}

func TestSearchRanksBySpecializationOverlap(t *testing.T) {
	lister := &fakeLister{doctors: []Doctor{
		{DID: "d1", Name: "Dr. Meera Nair", Specializations: []string{SpecPanchakarma, SpecKayachikitsa}},
		{DID: "d2", Name: "Dr. Arjun Pillai", Specializations: []string{SpecKayachikitsa}},
		{DID: "d3", Name: "Dr. Kavya Iyer", Specializations: []string{SpecPrasutiTantra}},
	}}
	svc := NewService(lister, nil)

	recs, err := svc.Search(context.Background(), "severe stomach pain and acid reflux")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2: %+v", len(recs), recs)
	}
	if recs[0].DID != "d1" {
		t.Errorf("top result = %s, want d1 (double overlap)", recs[0].DID)
	}
	if recs[0].MatchScore <= recs[1].MatchScore {
		t.Errorf("scores not descending: %d then %d", recs[0].MatchScore, recs[1].MatchScore)
	}
}

func TestSearchFallsBackToAllDoctors(t *testing.T) {
	lister := &fakeLister{doctors: []Doctor{
		{DID: "d3", Name: "Dr. Kavya Iyer", Specializations: []string{SpecPrasutiTantra}},
	}}
	svc := NewService(lister, nil)

	recs, err := svc.Search(context.Background(), "unusual metallic taste sensation")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(recs) != 1 || recs[0].DID != "d3" {
		t.Errorf("fallback pool not returned: %+v", recs)
	}
}

func TestSearchCapsAtThree(t *testing.T) {
	var doctors []Doctor
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		doctors = append(doctors, Doctor{
			DID: "d" + name, Name: "Dr. " + name,
			Specializations: []string{SpecKayachikitsa},
		})
	}
	svc := NewService(&fakeLister{doctors: doctors}, nil)

	recs, err := svc.Search(context.Background(), "itchy skin rash everywhere")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("got %d recommendations, want cap of 3", len(recs))
	}
}
