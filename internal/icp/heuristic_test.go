package icp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func perfectFitFacts() CompanyFacts {
	return CompanyFacts{
		CompanySize:         "201-500",
		FundingStage:        "Series C",
		PipelineStages:      []string{"Phase 2", "Phase 3"},
		TechnologyPlatforms: []string{"Mammalian CHO"},
		FocusAreas:          []string{"Bispecifics", "mAbs"},
		Location:            "Massachusetts, USA",
		ManufacturingStatus: "No Public Partner",
	}
}

func TestScoreCompany_PerfectFitHitsCeiling(t *testing.T) {
	s := NewHeuristicScorer(CompanyCeiling)
	total, breakdown := s.ScoreCompany(perfectFitFacts())
	// 15 + 15 + 20 + 20 + 10 + 10 + 5 = 95.
	assert.Equal(t, 95, total)
	assert.NotEmpty(t, breakdown)
}

func TestScoreCompany_NeverExceedsCeiling(t *testing.T) {
	s := NewHeuristicScorer(50)
	total, _ := s.ScoreCompany(perfectFitFacts())
	assert.Equal(t, 50, total)
}

func TestScoreCompany_MixedPlatformPartialCredit(t *testing.T) {
	f := perfectFitFacts()
	f.TechnologyPlatforms = []string{"Mammalian CHO"}
	f.FocusAreas = []string{"mAbs", "Cell Therapy"}
	s := NewHeuristicScorer(CompanyCeiling)
	_, breakdown := s.ScoreCompany(f)
	for _, b := range breakdown {
		if b.Criterion == "production_technology" {
			assert.Equal(t, 12, b.Points)
			return
		}
	}
	t.Fatal("production_technology missing from breakdown")
}

func TestScoreCompany_NonMammalianScoresZeroTechnology(t *testing.T) {
	f := CompanyFacts{
		TechnologyPlatforms: []string{"Viral Vectors"},
		FocusAreas:          []string{"Gene Therapy"},
	}
	s := NewHeuristicScorer(CompanyCeiling)
	_, breakdown := s.ScoreCompany(f)
	for _, b := range breakdown {
		assert.NotEqual(t, "production_technology", b.Criterion)
	}
}

func TestScoreCompany_UnknownManufacturingStatusMidpoint(t *testing.T) {
	s := NewHeuristicScorer(CompanyCeiling)
	_, breakdown := s.ScoreCompany(CompanyFacts{})
	found := false
	for _, b := range breakdown {
		if b.Criterion == "manufacturing_status" {
			assert.Equal(t, 5, b.Points)
			found = true
		}
	}
	assert.True(t, found)
}

func TestScoreCompany_EasternEuropeGeography(t *testing.T) {
	f := CompanyFacts{Location: "Warsaw, Poland"}
	s := NewHeuristicScorer(CompanyCeiling)
	_, breakdown := s.ScoreCompany(f)
	for _, b := range breakdown {
		if b.Criterion == "geography" {
			assert.Equal(t, 6, b.Points)
			return
		}
	}
	t.Fatal("geography missing from breakdown")
}

func TestScoreUrgency_Indicators(t *testing.T) {
	f := CompanyFacts{
		LatestFundingRound: "Series B, March 2026",
		IntelligenceNotes:  "Advancing to Phase 3; hired new COO; expanding manufacturing capacity",
	}
	score := ScoreUrgency(f, "2026", "2025")
	// 30 funding + 25 clinical + 25 leadership + 20 manufacturing = 100.
	assert.Equal(t, 100, score)
}

func TestScoreUrgency_Empty(t *testing.T) {
	assert.Equal(t, 0, ScoreUrgency(CompanyFacts{}, "2026", "2025"))
}
