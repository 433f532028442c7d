package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	reply    string
	err      error
	prompt   string
	deadline time.Time
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	f.deadline, _ = ctx.Deadline()
	return f.reply, f.err
}

func TestCookingAssistant_Chat(t *testing.T) {
	gen := &fakeGenerator{reply: "Sear the steak first."}
	assistant := NewCookingAssistant(gen, discardLogger())

	reply, err := assistant.Chat(context.Background(), "  how do I cook steak?  ")
	require.NoError(t, err)
	assert.Equal(t, "Sear the steak first.", reply)
	assert.Equal(t, "how do I cook steak?", gen.prompt)
	assert.WithinDuration(t, time.Now().Add(assistantTimeout), gen.deadline, 5*time.Second)
}

func TestCookingAssistant_EmptyPrompt(t *testing.T) {
	gen := &fakeGenerator{}
	assistant := NewCookingAssistant(gen, discardLogger())

	_, err := assistant.Chat(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Empty(t, gen.prompt)
}

func TestCookingAssistant_EmptyReply(t *testing.T) {
	assistant := NewCookingAssistant(&fakeGenerator{reply: " "}, discardLogger())

	reply, err := assistant.Chat(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, emptyReply, reply)
}

func TestCookingAssistant_UpstreamError(t *testing.T) {
	assistant := NewCookingAssistant(&fakeGenerator{err: errors.New("quota exceeded")}, discardLogger())

	_, err := assistant.Chat(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestCookingAssistant_Disabled(t *testing.T) {
	assistant := NewCookingAssistant(nil, discardLogger())
	assert.False(t, assistant.Enabled())

	_, err := assistant.Chat(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrServiceDisabled)
}
