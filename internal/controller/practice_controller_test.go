package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAttempts(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		subjects []string
	}{
		{name: "single object", body: `{"subject":"Polity","is_correct":true,"time_taken_seconds":70}`, subjects: []string{"Polity"}},
		{name: "subject named attempts", body: `{"subject":"attempts","is_correct":true,"time_taken_seconds":45}`, subjects: []string{"attempts"}},
		{name: "array", body: ` [{"subject":"Economy"},{"subject":"History"}]`, subjects: []string{"Economy", "History"}},
		{name: "wrapped batch", body: `{"attempts":[{"subject":"Ethics","time_taken_seconds":30}]}`, subjects: []string{"Ethics"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			batch, err := decodeAttempts([]byte(tc.body))
			require.NoError(t, err)

			got := make([]string, 0, len(batch.Attempts))
			for _, a := range batch.Attempts {
				got = append(got, a.Subject)
			}
			assert.Equal(t, tc.subjects, got)
		})
	}
}

func TestDecodeAttemptsRejectsInvalid(t *testing.T) {
	for _, body := range []string{
		`{"attempts":[]}`,
		`[]`,
		`{"subject":"Polity","time_taken_seconds":-5}`,
		`"Polity"`,
		`{not json`,
	} {
		_, err := decodeAttempts([]byte(body))
		assert.Error(t, err, body)
	}
}
