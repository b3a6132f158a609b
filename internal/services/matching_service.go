package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/danielagrograos-wq/senior/internal/models"
	"github.com/danielagrograos-wq/senior/internal/repository"
)

// careLevelSpecializations maps each care level to the specialization tags
// that satisfy it. Tags are the Portuguese labels caregivers pick in the app.
var careLevelSpecializations = map[string][]string{
	"companionship": {"Cuidados Gerais", "Companhia"},
	"mobility":      {"Mobilidade Reduzida", "Fisioterapia"},
	"medical":       {"Enfermagem", "Cuidados Médicos"},
	"alzheimer":     {"Alzheimer/Demência"},
	"post_surgery":  {"Pós-Operatório", "Enfermagem"},
}

const defaultLanguage = "Português"

type caregiverLister interface {
	List(ctx context.Context, filter repository.CaregiverListFilter) ([]models.CaregiverProfile, int, error)
}

type MatchingService struct {
	caregiverRepo caregiverLister
}

func NewMatchingService(caregiverRepo caregiverLister) *MatchingService {
	return &MatchingService{caregiverRepo: caregiverRepo}
}

// RankCaregivers scores every caregiver matching the filter against the
// client's care profile and returns them best-first. Ties keep the
// repository's rating order.
func (s *MatchingService) RankCaregivers(
	ctx context.Context,
	clientProfile *models.ClientProfile,
	filter repository.CaregiverListFilter,
) ([]models.CaregiverWithScore, int, error) {
	caregivers, total, err := s.caregiverRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	ranked := make([]models.CaregiverWithScore, 0, len(caregivers))
	for _, caregiver := range caregivers {
		ranked = append(ranked, models.CaregiverWithScore{
			CaregiverProfile: caregiver,
			MatchScore:       CalculateMatchScore(&caregiver, clientProfile),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	return ranked, total, nil
}

// CalculateMatchScore rates caregiver/client compatibility on a 0-100 scale:
// care level 30, language 15, city 15, pets 10, driver 10, experience 10,
// hobby overlap up to 10.
func CalculateMatchScore(caregiver *models.CaregiverProfile, client *models.ClientProfile) float64 {
	score := 0.0

	required := careLevelSpecializations[client.CareLevel]
	if hasAnyTag(caregiver.Specializations, required) {
		score += 30
	} else if len(caregiver.Specializations) > 0 {
		score += 15
	}

	clientLangs := client.PreferredLanguages
	if len(clientLangs) == 0 {
		clientLangs = []string{defaultLanguage}
	}
	caregiverLangs := caregiver.Languages
	if len(caregiverLangs) == 0 {
		caregiverLangs = []string{defaultLanguage}
	}
	if hasAnyTag(caregiverLangs, clientLangs) {
		score += 15
	}

	if strings.EqualFold(caregiver.City, client.ElderCity) {
		score += 15
	}

	if !client.HasPets || caregiver.AcceptsPets {
		score += 10
	}

	if !client.NeedsDriver || caregiver.HasCar {
		score += 10
	}

	switch {
	case caregiver.ExperienceYears >= 5:
		score += 10
	case caregiver.ExperienceYears >= 2:
		score += 5
	}

	if len(client.ElderHobbies) > 0 && len(caregiver.Hobbies) > 0 {
		overlap := countOverlap(client.ElderHobbies, caregiver.Hobbies)
		score += math.Min(float64(overlap)*3, 10)
	}

	return math.Min(math.Round(score*10)/10, 100)
}

func hasAnyTag(haystack, needles []string) bool {
	for _, needle := range needles {
		for _, value := range haystack {
			if value == needle {
				return true
			}
		}
	}
	return false
}

func countOverlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, value := range a {
		set[value] = struct{}{}
	}
	count := 0
	seen := make(map[string]struct{}, len(b))
	for _, value := range b {
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		if _, ok := set[value]; ok {
			count++
		}
	}
	return count
}
