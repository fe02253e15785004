package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeInputParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: `100`, want: "100"},
		{raw: `12.345`, want: "12.345"},
		{raw: `"7.5"`, want: "7.5"},
		{raw: `" 3 "`, want: "3"},
		{raw: `-1`, want: "-1"},
		{raw: `"abc"`, wantErr: true},
		{raw: `null`, wantErr: true},
		{raw: ``, wantErr: true},
		{raw: `true`, wantErr: true},
		{raw: `0e1000`, want: "0"},
		{raw: `1e59`, want: "1" + strings.Repeat("0", 59)},
		{raw: `"0.1234567890123456789"`, want: "0.123456789012345679"},
		{raw: `1e60`, wantErr: true},
		{raw: `1e400`, wantErr: true},
		{raw: `"1e400"`, wantErr: true},
		{raw: `"1e5000000"`, wantErr: true},
		{raw: `"1e-5000000"`, wantErr: true},
		{raw: `"-1e2000000000"`, wantErr: true},
		{raw: `"` + strings.Repeat("9", 61) + `"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(caseName(tt.raw), func(t *testing.T) {
			amount, err := StakeInput{Amount: json.RawMessage(tt.raw)}.ParseAmount()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, amount.String())
		})
	}
}

func TestStakeInputDecodesBothAmountForms(t *testing.T) {
	var in StakeInput
	require.NoError(t, json.Unmarshal([]byte(`{"walletAddress":"W1","amount":"42","txHash":"tx"}`), &in))

	amount, err := in.ParseAmount()
	require.NoError(t, err)
	assert.Equal(t, "42", amount.String())
}

func caseName(raw string) string {
	if len(raw) > 24 {
		return raw[:24]
	}
	return raw
}
