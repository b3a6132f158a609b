package services

import "testing"

func TestContainsContactInfo(t *testing.T) {
	blocked := []string{
		"me chama no whatsapp",
		"Telegram: @maria",
		"meu instagram é @cuidadora",
		"liga 11 98765-4321",
		"11987654321",
		"manda email para maria@exemplo.com.br",
	}
	for _, message := range blocked {
		if !ContainsContactInfo(message) {
			t.Fatalf("expected %q to be flagged", message)
		}
	}

	allowed := []string{
		"Cheguei, a dona Ana almoçou bem",
		"Podemos confirmar o horário de amanhã às 14h?",
		"Medicação das 8h foi dada",
	}
	for _, message := range allowed {
		if ContainsContactInfo(message) {
			t.Fatalf("expected %q to pass", message)
		}
	}
}
