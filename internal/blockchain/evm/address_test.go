package evm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"lowercase", "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82", true},
		{"uppercase body", "0x0E09FABB73BD3ADE0A17ECC321FD13A19E81CE82", true},
		{"checksummed", "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", true},
		{"bad checksum", "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81ce82", false},
		{"uppercase prefix", "0X0e09fabb73bd3ade0a17ecc321fd13a19e81ce82", false},
		{"uppercase prefix checksummed", "0X0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", false},
		{"no prefix", "0e09fabb73bd3ade0a17ecc321fd13a19e81ce82", false},
		{"too short", "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce", false},
		{"not hex", "0xzz09fabb73bd3ade0a17ecc321fd13a19e81ce82", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAddress(tt.address))
		})
	}
}

func TestChecksum(t *testing.T) {
	got, err := Checksum("0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82")
	require.NoError(t, err)
	assert.Equal(t, "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", got)

	_, err = Checksum("0x123")
	assert.Error(t, err)
}
