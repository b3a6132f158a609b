package services

import (
	"context"
	"testing"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
)

type stubCaregiverLister struct {
	caregivers []models.CaregiverProfile
}

func (s *stubCaregiverLister) List(_ context.Context, _ repository.CaregiverListFilter) ([]models.CaregiverProfile, int, error) {
	return s.caregivers, len(s.caregivers), nil
}

func buildCaregiver(id int64, city string, specs, langs, hobbies []string, expYears int, acceptsPets, hasCar bool) models.CaregiverProfile {
	return models.CaregiverProfile{
		ID:              id,
		City:            city,
		Specializations: specs,
		Languages:       langs,
		Hobbies:         hobbies,
		ExperienceYears: expYears,
		AcceptsPets:     acceptsPets,
		HasCar:          hasCar,
	}
}

func TestCalculateMatchScorePerfectMatch(t *testing.T) {
	caregiver := buildCaregiver(1, "São Paulo",
		[]string{"Alzheimer/Demência"},
		[]string{"Português", "Espanhol"},
		[]string{"Leitura", "Música", "Jardinagem", "Xadrez"},
		7, true, true)
	client := &models.ClientProfile{
		ElderCity:          "são paulo",
		CareLevel:          "alzheimer",
		PreferredLanguages: []string{"Português"},
		HasPets:            true,
		ElderHobbies:       []string{"Leitura", "Música", "Jardinagem", "Caminhada"},
		NeedsDriver:        true,
	}

	if got := CalculateMatchScore(&caregiver, client); got != 99 {
		t.Fatalf("expected score 99, got %v", got)
	}
}

func TestCalculateMatchScorePartialSpecialization(t *testing.T) {
	caregiver := buildCaregiver(1, "Rio de Janeiro", []string{"Companhia"}, nil, nil, 0, true, false)
	client := &models.ClientProfile{
		ElderCity: "Curitiba",
		CareLevel: "medical",
	}

	// 15 partial spec + 15 default language + 10 pets + 10 driver
	if got := CalculateMatchScore(&caregiver, client); got != 50 {
		t.Fatalf("expected score 50, got %v", got)
	}
}

func TestCalculateMatchScoreDefaultsLanguageToPortuguese(t *testing.T) {
	caregiver := buildCaregiver(1, "Santos", nil, nil, nil, 0, false, false)
	client := &models.ClientProfile{ElderCity: "Niterói", CareLevel: "companionship", HasPets: true, NeedsDriver: true}

	// Only the implicit Português/Português overlap scores.
	if got := CalculateMatchScore(&caregiver, client); got != 15 {
		t.Fatalf("expected score 15, got %v", got)
	}
}

func TestCalculateMatchScoreCapsHobbyOverlap(t *testing.T) {
	hobbies := []string{"a", "b", "c", "d", "e"}
	with := buildCaregiver(1, "x", nil, nil, hobbies, 0, true, true)
	without := buildCaregiver(2, "x", nil, nil, hobbies[:1], 0, true, true)
	client := &models.ClientProfile{ElderCity: "y", ElderHobbies: hobbies}

	a := CalculateMatchScore(&with, client)
	b := CalculateMatchScore(&without, client)
	if a-b != 7 {
		t.Fatalf("expected capped overlap gap of 7 (10 vs 3), got %v vs %v", a, b)
	}
}

func TestRankCaregiversSortsByScore(t *testing.T) {
	service := NewMatchingService(&stubCaregiverLister{
		caregivers: []models.CaregiverProfile{
			buildCaregiver(1, "Campinas", nil, nil, nil, 0, true, true),
			buildCaregiver(2, "São Paulo", []string{"Enfermagem"}, nil, nil, 6, true, true),
			buildCaregiver(3, "São Paulo", []string{"Companhia"}, nil, nil, 3, true, true),
		},
	})

	ranked, total, err := service.RankCaregivers(context.Background(), &models.ClientProfile{
		ElderCity: "São Paulo",
		CareLevel: "medical",
	}, repository.CaregiverListFilter{})
	if err != nil {
		t.Fatalf("RankCaregivers: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if ranked[0].ID != 2 || ranked[1].ID != 3 || ranked[2].ID != 1 {
		t.Fatalf("unexpected order: %d, %d, %d", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
	if ranked[0].MatchScore <= ranked[1].MatchScore {
		t.Fatalf("expected strictly decreasing scores, got %v then %v", ranked[0].MatchScore, ranked[1].MatchScore)
	}
}
