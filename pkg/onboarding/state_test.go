package onboarding

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	forward := []Status{
		StatusNotStarted,
		StatusLocatingWindow,
		StatusAwaitingLoad,
		StatusExecutingSteps,
		StatusCompleted,
	}
	for i := 0; i+1 < len(forward); i++ {
		assert.True(t, canTransition(forward[i], forward[i+1]), "%s -> %s", forward[i], forward[i+1])
		assert.True(t, canTransition(forward[i], StatusAborted), "%s -> aborted", forward[i])
	}

	assert.False(t, canTransition(StatusNotStarted, StatusExecutingSteps), "no skipping")
	assert.False(t, canTransition(StatusAwaitingLoad, StatusLocatingWindow), "no going back")
	assert.False(t, canTransition(StatusExecutingSteps, StatusExecutingSteps))

	for _, to := range append(forward, StatusAborted) {
		assert.False(t, canTransition(StatusCompleted, to), "completed -> %s", to)
		assert.False(t, canTransition(StatusAborted, to), "aborted -> %s", to)
	}
}

func TestState_Transition(t *testing.T) {
	st := State{Status: StatusNotStarted}
	require.NoError(t, st.transition(StatusLocatingWindow))
	assert.Equal(t, StatusLocatingWindow, st.Status)

	err := st.transition(StatusCompleted)
	require.Error(t, err)
	assert.Equal(t, StatusLocatingWindow, st.Status)
}

func TestResult_JSON(t *testing.T) {
	res := &Result{
		State: State{Status: StatusAborted, StepIndex: 8, Step: "seed word 5", Reason: "ElementInteractionError: import-srp__srp-word-5"},
		Steps: []StepRecord{
			{Index: 0, Name: "accept terms", Element: ElementTermsCheckbox, Action: ActionClick, Status: StepPassed},
		},
		Released: true,
		Err:      errors.New("not serialized"),
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	state := decoded["state"].(map[string]any)
	assert.Equal(t, "aborted", state["status"])
	assert.Equal(t, float64(8), state["step_index"])
	assert.NotContains(t, decoded, "Err")
	assert.Equal(t, true, decoded["released"])
}

func TestResult_Attempted(t *testing.T) {
	res := &Result{Steps: []StepRecord{
		{Element: ElementSeedConfirm, Status: StepPassed},
		{Element: ElementPasswordNew, Status: StepSkipped},
		{Element: ElementOnboardingDone, Status: StepFailed},
	}}
	assert.Equal(t, []ElementID{ElementSeedConfirm, ElementOnboardingDone}, res.Attempted())
	assert.False(t, res.Succeeded())
	assert.Equal(t, KindNone, res.Kind())
}
