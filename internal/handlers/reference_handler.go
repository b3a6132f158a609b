package handlers

import "github.com/gofiber/fiber/v2"

// ReferenceHandler serves the static catalog data the mobile app uses to
// populate its pickers.
type ReferenceHandler struct{}

func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

type city struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type careLevel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var launchCities = []city{
	{ID: "campo-grande", Name: "Campo Grande", State: "MS"},
	{ID: "sao-paulo", Name: "São Paulo", State: "SP"},
	{ID: "curitiba", Name: "Curitiba", State: "PR"},
	{ID: "fortaleza", Name: "Fortaleza", State: "CE"},
}

var specializationTags = []string{
	"Cuidados Gerais", "Alzheimer/Demência", "Pós-Operatório",
	"Fisioterapia", "Enfermagem", "Acompanhamento Hospitalar",
	"Cuidados Noturnos", "Mobilidade Reduzida", "Diabetes", "Hipertensão",
}

var careLevels = []careLevel{
	{ID: "companionship", Name: "Companhia", Description: "Companhia e atividades básicas"},
	{ID: "mobility", Name: "Mobilidade", Description: "Auxílio com mobilidade e locomoção"},
	{ID: "medical", Name: "Cuidados Médicos", Description: "Medicamentos e procedimentos básicos"},
	{ID: "alzheimer", Name: "Alzheimer/Demência", Description: "Cuidados especializados para demência"},
	{ID: "post_surgery", Name: "Pós-Operatório", Description: "Recuperação após cirurgia"},
}

func (h *ReferenceHandler) ListCities(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"cities": launchCities})
}

func (h *ReferenceHandler) ListSpecializations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"specializations": specializationTags})
}

func (h *ReferenceHandler) ListCareLevels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"care_levels": careLevels})
}
