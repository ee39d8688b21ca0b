package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
	"github.com/kirillkom/quote-assistant/internal/core/ports"
)

const fallbackQuestion = "Kan du beskriva jobbet mer i detalj, till exempel vad som ska göras och ungefär hur stor ytan är?"

type InterpretUseCase struct {
	generator ports.TextGenerator
	registry  *jobs.Registry
	timeout   time.Duration
}

func NewInterpretUseCase(generator ports.TextGenerator, registry *jobs.Registry, timeout time.Duration) *InterpretUseCase {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &InterpretUseCase{generator: generator, registry: registry, timeout: timeout}
}

// Interpret turns free text into a structured interpretation. It never fails:
// generator errors and unreadable responses produce a conservative fallback.
func (uc *InterpretUseCase) Interpret(ctx context.Context, description string, history []domain.Message, requiredFields []string) domain.Interpretation {
	if uc.generator == nil {
		return uc.fallback(description, "no_generator", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	raw, err := uc.generator.GenerateJSON(callCtx, buildInterpretationRequest(description, history, requiredFields, uc.registry))
	if err != nil {
		return uc.fallback(description, "generator_error", domain.WrapError(domain.ErrInterpretation, "generate interpretation", err))
	}

	interp, err := parseInterpretation(raw)
	if err != nil {
		return uc.fallback(description, "parse_error", err)
	}

	interp.JobType = uc.canonicalJobType(interp.JobType, description)
	fields := append(append([]string(nil), requiredFields...), uc.registry.Find(interp.JobType).RequiredInput...)
	return enforceExplicitNumbers(interp, fields, description, history)
}

func (uc *InterpretUseCase) canonicalJobType(modelKey, description string) string {
	if def, ok := uc.registry.Lookup(modelKey); ok {
		return def.Key
	}
	def, _ := uc.registry.Match(description)
	return def.Key
}

func (uc *InterpretUseCase) fallback(description, reason string, err error) domain.Interpretation {
	slog.Warn("interpretation_fallback", "fallback_reason", reason, "error", err)
	def, _ := uc.registry.Match(description)
	return domain.Interpretation{
		JobType:              def.Key,
		MissingCriticalInfo:  true,
		ClarificationsNeeded: []string{fallbackQuestion},
		Source:               domain.InterpretationFromFallback,
	}
}

var numberToken = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// enforceExplicitNumbers clears required numeric fields whose value does not
// appear as a number in the customer's messages, recording them as estimates.
func enforceExplicitNumbers(interp domain.Interpretation, requiredFields []string, description string, history []domain.Message) domain.Interpretation {
	stated := statedNumbers(description, history)
	for _, field := range requiredFields {
		value := interp.NumericValue(field)
		if value <= 0 || numberStated(stated, value) {
			continue
		}
		interp.Assumptions = append(interp.Assumptions, fmt.Sprintf("%s uppskattad till %s men ej angiven", fieldLabel(field), strconv.FormatFloat(value, 'f', -1, 64)))
		switch field {
		case domain.FieldArea:
			interp.Area = nil
		case domain.FieldLength:
			interp.Length = nil
		case domain.FieldQuantity:
			interp.Quantity = nil
		case domain.FieldRooms:
			interp.Rooms = nil
		}
	}
	return interp
}

// statedNumbers collects the numbers the customer wrote. Figures from assistant
// turns are suggestions and do not count as stated.
func statedNumbers(description string, history []domain.Message) []float64 {
	var out []float64
	for _, tok := range numberToken.FindAllString(conversationText(description, history), -1) {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", "."), 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func numberStated(stated []float64, value float64) bool {
	for _, v := range stated {
		if math.Abs(v-value) < 0.01 {
			return true
		}
	}
	return false
}

func fieldLabel(field string) string {
	switch field {
	case domain.FieldArea:
		return "Yta (kvm)"
	case domain.FieldLength:
		return "Längd (m)"
	case domain.FieldQuantity:
		return "Antal"
	case domain.FieldRooms:
		return "Antal rum"
	default:
		return field
	}
}

func buildInterpretationRequest(description string, history []domain.Message, requiredFields []string, registry *jobs.Registry) domain.TextRequest {
	keys := make([]string, 0)
	for _, def := range registry.Definitions() {
		keys = append(keys, def.Key)
	}

	var sys strings.Builder
	sys.WriteString("Du tolkar jobbeskrivningar från svenska hantverkare. Svara ENDAST med ett JSON-objekt, utan kodblock eller förklaringar.\n")
	sys.WriteString("Fält: jobType (en av: " + strings.Join(keys, ", ") + "), area, length, quantity, rooms (tal eller null), ")
	sys.WriteString("complexity (simple|normal|complex), accessibility (easy|normal|hard), qualityLevel (budget|standard|premium), ")
	sys.WriteString("specialRequirements, exclusions, inclusions, assumptions, clarificationsNeeded (listor av strängar), ")
	sys.WriteString("customerProvidesMaterial, missingCriticalInfo (bool), startMonth (1-12 eller null), location (sträng).\n")
	sys.WriteString("Hitta aldrig på mätvärden. Om ett mått inte uttryckligen anges: sätt fältet till null, skriv uppskattningen i assumptions och sätt missingCriticalInfo=true.\n")
	if len(requiredFields) > 0 {
		sys.WriteString("Obligatoriska fält för detta jobb: " + strings.Join(requiredFields, ", ") + ".\n")
	}

	var user strings.Builder
	if len(history) > 0 {
		user.WriteString("Tidigare konversation:\n")
		for _, m := range history {
			user.WriteString(m.Role + ": " + m.Content + "\n")
		}
		user.WriteString("\n")
	}
	user.WriteString("Beskrivning: " + description)

	return domain.TextRequest{SystemInstructions: sys.String(), UserPrompt: user.String()}
}
