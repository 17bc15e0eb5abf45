package reconcile

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenlists/internal/blockchain/evm"
	"github.com/rovshanmuradov/tokenlists/internal/types"
)

type factMap map[string]types.CanonicalFact

func (m factMap) Fact(address string) (types.CanonicalFact, bool) {
	f, ok := m[types.AddressKey(address)]
	return f, ok
}

func addr(i int) string {
	return fmt.Sprintf("0x%040x", i)
}

func candidate(i int, name, symbol string, decimals int) types.CandidateEntry {
	return types.CandidateEntry{
		Address:  addr(i),
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
		ChainID:  56,
		LogoURI:  fmt.Sprintf("https://logo/%d.png", i),
	}
}

func TestReconcileTakesSymbolAndDecimalsFromChainAndNameFromSource(t *testing.T) {
	facts := factMap{addr(1): {Symbol: "TKA", Name: "Token A On Chain", Decimals: 18}}
	in := []types.CandidateEntry{candidate(1, "Token A", "tka", 9)}

	res := New(zap.NewNop()).Reconcile(in, facts)
	require.Len(t, res.Entries, 1)

	checksummed, err := evm.Checksum(addr(1))
	require.NoError(t, err)

	assert.Equal(t, types.SanitizedEntry{
		Name:     "Token A",
		Symbol:   "TKA",
		Address:  checksummed,
		ChainID:  56,
		Decimals: 18,
		LogoURI:  "https://logo/1.png",
	}, res.Entries[0])

	// расхождения считаются, но запись не отбрасывают
	assert.Equal(t, Mismatches{Decimals: 1, Name: 1, Symbol: 1}, res.Stats.Mismatches)
}

func TestReconcileDuplicateByAddress(t *testing.T) {
	const cake = "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82"
	facts := factMap{cake: {Symbol: "CAKE", Name: "PancakeSwap Token", Decimals: 18}}

	first := candidate(1, "X", "CAKE", 18)
	first.Address = cake
	second := candidate(1, "Y", "CAKE", 18)
	second.Address = cake
	checksummed := candidate(1, "Z", "CAKE", 18)
	checksummed.Address = "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82"
	in := []types.CandidateEntry{first, second, checksummed}

	res := New(zap.NewNop()).Reconcile(in, facts)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "X", res.Entries[0].Name)
	assert.Equal(t, 2, res.Stats.Duplicate)
}

func TestReconcileDuplicateByName(t *testing.T) {
	facts := factMap{
		addr(1): {Symbol: "A", Name: "X", Decimals: 18},
		addr(2): {Symbol: "B", Name: "X", Decimals: 18},
	}
	in := []types.CandidateEntry{
		candidate(1, "X", "A", 18),
		candidate(2, "X", "B", 18),
	}

	res := New(zap.NewNop()).Reconcile(in, facts)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "A", res.Entries[0].Symbol)
	assert.Equal(t, 1, res.Stats.Duplicate)
	assert.Equal(t, ReasonDuplicate, res.Dropped[0].Reason)
}

func TestReconcileDuplicateOnlyAgainstEmittedEntries(t *testing.T) {
	facts := factMap{
		addr(1): {Symbol: "BAD SYMBOL", Name: "X", Decimals: 18},
		addr(2): {Symbol: "GOOD", Name: "X", Decimals: 18},
	}
	in := []types.CandidateEntry{
		candidate(1, "X", "BAD", 18),
		candidate(2, "X", "GOOD", 18),
	}

	res := New(zap.NewNop()).Reconcile(in, facts)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "GOOD", res.Entries[0].Symbol)
	assert.Equal(t, 1, res.Stats.InvalidNameOrSymbol)
	assert.Equal(t, 0, res.Stats.Duplicate)
}

func TestReconcileBadAddress(t *testing.T) {
	facts := factMap{addr(1): {Symbol: "A", Name: "A", Decimals: 18}}
	malformed := candidate(3, "Malformed", "M", 18)
	malformed.Address = "0x1234"

	in := []types.CandidateEntry{
		malformed,
		candidate(2, "Unresolved", "U", 18),
		candidate(1, "Ok", "A", 18),
	}

	res := New(zap.NewNop()).Reconcile(in, facts)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, 2, res.Stats.BadAddress)
	assert.Equal(t, "Ok", res.Entries[0].Name)
}

func TestReconcileBadAddressWinsOverDuplicate(t *testing.T) {
	facts := factMap{addr(1): {Symbol: "A", Name: "A", Decimals: 18}}
	in := []types.CandidateEntry{
		candidate(1, "Same", "A", 18),
		candidate(2, "Same", "B", 18),
	}

	res := New(zap.NewNop()).Reconcile(in, facts)
	assert.Equal(t, 1, res.Stats.BadAddress)
	assert.Equal(t, 0, res.Stats.Duplicate)
}

func TestReconcileInvalidNameOrSymbol(t *testing.T) {
	tests := []struct {
		name       string
		candidate  string
		realSymbol string
		wantKept   bool
	}{
		{"valid", "Token", "TKN", true},
		{"symbol with special chars", "Token", "a+b-c%d/e$f", true},
		{"symbol max length", "Token", strings.Repeat("S", 20), true},
		{"symbol too long", "Token", strings.Repeat("S", 21), false},
		{"symbol empty", "Token", "", false},
		{"symbol with space", "Token", "TK N", false},
		{"symbol with dot", "Token", "TK.N", false},
		{"symbol non ascii", "Token", "ТКН", false},
		{"name max length", strings.Repeat("n", 40), "TKN", true},
		{"name too long", strings.Repeat("n", 41), "TKN", false},
		{"name empty", "", "TKN", false},
		{"name cyrillic max length", strings.Repeat("я", 40), "TKN", true},
		{"name emoji max length", strings.Repeat("🥞", 20), "TKN", true},
		{"name emoji too long", strings.Repeat("🥞", 21), "TKN", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := factMap{addr(1): {Symbol: tt.realSymbol, Name: "on chain", Decimals: 18}}
			res := New(zap.NewNop()).Reconcile([]types.CandidateEntry{candidate(1, tt.candidate, "X", 18)}, facts)

			if tt.wantKept {
				assert.Len(t, res.Entries, 1)
				assert.Equal(t, 0, res.Stats.InvalidNameOrSymbol)
			} else {
				assert.Empty(t, res.Entries)
				assert.Equal(t, 1, res.Stats.InvalidNameOrSymbol)
			}
		})
	}
}

func TestReconcileChecksumsAddresses(t *testing.T) {
	const lower = "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82"
	const upper = "0xBB4CDB9CBD36B01BD1CBAEBF2DE08D9173BC095C"
	facts := factMap{
		lower: {Symbol: "CAKE", Name: "PancakeSwap Token", Decimals: 18},
		types.AddressKey(upper): {Symbol: "WBNB", Name: "Wrapped BNB", Decimals: 18},
	}
	in := []types.CandidateEntry{
		{Address: lower, Name: "PancakeSwap Token", Symbol: "CAKE", Decimals: 18, ChainID: 56},
		{Address: upper, Name: "Wrapped BNB", Symbol: "WBNB", Decimals: 18, ChainID: 56},
	}

	res := New(zap.NewNop()).Reconcile(in, facts)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", res.Entries[0].Address)
	assert.Equal(t, "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", res.Entries[1].Address)
	assert.Equal(t, 0, res.Stats.BadAddress)
	assert.True(t, res.Stats.Balanced())
}

func TestReconcileKeepsInputOrder(t *testing.T) {
	facts := factMap{}
	var in []types.CandidateEntry
	for i := 10; i >= 1; i-- {
		facts[addr(i)] = types.CanonicalFact{Symbol: fmt.Sprintf("T%d", i), Name: "n", Decimals: 18}
		in = append(in, candidate(i, fmt.Sprintf("Token %d", i), "", 18))
	}
	// запись в середине отбрасывается
	in[4].Name = ""

	res := New(zap.NewNop()).Reconcile(in, facts)
	require.Len(t, res.Entries, 9)

	var names []string
	for _, e := range res.Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Token 10", "Token 9", "Token 8", "Token 7", "Token 5", "Token 4", "Token 3", "Token 2", "Token 1"}, names)
}

// randomInput строит детерминированный набор кандидатов со всеми видами проблем
func randomInput(seed int64, n int) ([]types.CandidateEntry, factMap) {
	rng := rand.New(rand.NewSource(seed))
	symbols := []string{"CAKE", "BUSD", "bad symbol", "", strings.Repeat("X", 25), "W$T", "a/b"}
	names := []string{"Alpha", "Beta", "Gamma", "", strings.Repeat("long", 11), "Delta", "Alpha"}

	facts := factMap{}
	in := make([]types.CandidateEntry, 0, n)
	for i := 0; i < n; i++ {
		id := rng.Intn(n/2 + 1)
		c := candidate(id+1, names[rng.Intn(len(names))]+fmt.Sprint(rng.Intn(5)), "", rng.Intn(19))
		switch rng.Intn(10) {
		case 0:
			c.Address = "0xnothex"
		case 1:
			c.Name = names[rng.Intn(len(names))]
		}
		if rng.Intn(6) != 0 {
			facts[addr(id+1)] = types.CanonicalFact{
				Symbol:   symbols[rng.Intn(len(symbols))],
				Name:     "chain",
				Decimals: uint8(rng.Intn(19)),
			}
		}
		in = append(in, c)
	}
	return in, facts
}

func TestReconcileProperties(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		in, facts := randomInput(seed, 300)
		res := New(zap.NewNop()).Reconcile(in, facts)

		// каждая запись учтена ровно один раз
		require.True(t, res.Stats.Balanced(), "seed %d: %+v", seed, res.Stats)
		require.Equal(t, len(in), len(res.Entries)+res.Stats.Dropped())
		require.Len(t, res.Dropped, res.Stats.Dropped())

		seenAddr := map[string]bool{}
		seenName := map[string]bool{}
		for _, e := range res.Entries {
			assert.True(t, evm.IsValidAddress(e.Address))
			checksummed, err := evm.Checksum(e.Address)
			require.NoError(t, err)
			assert.Equal(t, checksummed, e.Address)
			assert.False(t, seenAddr[strings.ToLower(e.Address)], "duplicate address %s", e.Address)
			assert.False(t, seenName[e.Name], "duplicate name %s", e.Name)
			seenAddr[strings.ToLower(e.Address)] = true
			seenName[e.Name] = true

			assert.True(t, ValidSymbol(e.Symbol), "symbol %q", e.Symbol)
			assert.True(t, ValidName(e.Name), "name %q", e.Name)

			fact, ok := facts.Fact(e.Address)
			require.True(t, ok)
			assert.Equal(t, int(fact.Decimals), e.Decimals)
			assert.Equal(t, fact.Symbol, e.Symbol)
		}
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	in, facts := randomInput(42, 200)
	first := New(zap.NewNop()).Reconcile(in, facts)
	second := New(zap.NewNop()).Reconcile(in, facts)
	assert.Equal(t, first, second)
}

func TestStats(t *testing.T) {
	s := Stats{Input: 10, Output: 4, BadAddress: 3, Duplicate: 2, InvalidNameOrSymbol: 1}
	assert.Equal(t, 6, s.Dropped())
	assert.True(t, s.Balanced())

	s.Output = 5
	assert.False(t, s.Balanced())
}
