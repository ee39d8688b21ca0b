package offline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

func generate(t *testing.T, prompt string) interpretation {
	t.Helper()
	raw, err := New(nil).GenerateJSON(context.Background(), domain.TextRequest{UserPrompt: prompt})
	require.NoError(t, err)
	var out interpretation
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestGenerateJSONReadsMeasurementsAndQuality(t *testing.T) {
	out := generate(t, "Beskrivning: Måla 3 rum, totalt 45 kvm, premiumkvalitet i juni")

	assert.Equal(t, "målning", out.JobType)
	require.NotNil(t, out.Area)
	assert.Equal(t, 45.0, *out.Area)
	require.NotNil(t, out.Rooms)
	assert.Equal(t, 3.0, *out.Rooms)
	assert.Equal(t, "premium", out.QualityLevel)
	require.NotNil(t, out.StartMonth)
	assert.Equal(t, 6, *out.StartMonth)
	assert.False(t, out.MissingCriticalInfo)
}

func TestGenerateJSONUsesConversationHistory(t *testing.T) {
	prompt := "Tidigare konversation:\nuser: Renovera badrum 5 kvm\n\nBeskrivning: Ta bort golvvärmen"
	out := generate(t, prompt)

	assert.Equal(t, "badrum", out.JobType)
	require.NotNil(t, out.Area)
	assert.Equal(t, 5.0, *out.Area)
	assert.Equal(t, []string{"golvvärmen"}, out.Exclusions)
}

func TestGenerateJSONFlagsMissingRequiredInput(t *testing.T) {
	out := generate(t, "Beskrivning: Byta fönster i huset")

	assert.Equal(t, "fönsterbyte", out.JobType)
	assert.Nil(t, out.Quantity)
	assert.True(t, out.MissingCriticalInfo)
}

func TestReasonDeductionHasNoOpinion(t *testing.T) {
	verdict, err := New(nil).ReasonDeduction(context.Background(), "något", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DeductionNone, verdict.DeductionType)
	assert.Zero(t, verdict.Confidence)
}
