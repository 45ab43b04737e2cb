package reference

import (
	"testing"

	"dumpster-backoffice/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func march2024() Scope {
	return ScopeFor("RV", domain.MustParseDate("2024-03-18"))
}

func mustNext(t *testing.T, scope Scope, existing []string, policy Policy) string {
	t.Helper()
	code, err := Next(scope, existing, policy)
	require.NoError(t, err)
	return code
}

func mustNextN(t *testing.T, scope Scope, existing []string, policy Policy, count int) []string {
	t.Helper()
	codes, err := NextN(scope, existing, policy, count)
	require.NoError(t, err)
	return codes
}

func TestNext_GapFillAndMaxPlusOne(t *testing.T) {
	existing := []string{"RV24/03/01", "RV24/03/03"}

	assert.Equal(t, "RV24/03/02", mustNext(t, march2024(), existing, PolicyFirstGap))
	assert.Equal(t, "RV24/03/04", mustNext(t, march2024(), existing, PolicyMaxPlusOne))
}

func TestNext_EmptyScope(t *testing.T) {
	assert.Equal(t, "RV24/03/01", mustNext(t, march2024(), nil, PolicyFirstGap))
	assert.Equal(t, "RV24/03/01", mustNext(t, march2024(), nil, PolicyMaxPlusOne))
}

func TestNext_IgnoresOtherScopesAndJunk(t *testing.T) {
	existing := []string{
		"RV24/02/07", // other month
		"RV23/03/09", // other year
		"XX24/03/05", // other prefix
		"RV24/03/ab",
		"RV24/03/01-void",
		" RV24/03/02",
		"RV24/03/01",
	}
	assert.Equal(t, "RV24/03/02", mustNext(t, march2024(), existing, PolicyFirstGap))
	assert.Equal(t, "RV24/03/02", mustNext(t, march2024(), existing, PolicyMaxPlusOne))
}

func TestNext_WidensPastTwoDigits(t *testing.T) {
	var existing []string
	for i := 1; i <= 99; i++ {
		existing = append(existing, march2024().Format(i))
	}
	assert.Equal(t, "RV24/03/100", mustNext(t, march2024(), existing, PolicyFirstGap))
	assert.Equal(t, "RV24/03/100", mustNext(t, march2024(), existing, PolicyMaxPlusOne))

	// Three-digit codes still parse for max-plus-one.
	assert.Equal(t, "RV24/03/124", mustNext(t, march2024(), []string{"RV24/03/123"}, PolicyMaxPlusOne))
}

func TestScope_PrefixIsQuoted(t *testing.T) {
	s := Scope{Prefix: "R.V", Year: 2024, Month: 3}
	assert.Equal(t, "R.V24/03/02", mustNext(t, s, []string{"R.V24/03/01", "RXV24/03/07"}, PolicyMaxPlusOne))
}

func TestNextN(t *testing.T) {
	existing := []string{"RV24/03/01", "RV24/03/03"}

	assert.Equal(t,
		[]string{"RV24/03/02", "RV24/03/04", "RV24/03/05"},
		mustNextN(t, march2024(), existing, PolicyFirstGap, 3))
	assert.Equal(t,
		[]string{"RV24/03/04", "RV24/03/05"},
		mustNextN(t, march2024(), existing, PolicyMaxPlusOne, 2))
	assert.Empty(t, mustNextN(t, march2024(), existing, PolicyMaxPlusOne, 0))
}

func TestNext_UnknownPolicy(t *testing.T) {
	for _, p := range []Policy{"", "random"} {
		_, err := Next(march2024(), []string{"RV24/03/01"}, p)
		assert.Error(t, err)

		codes, err := NextN(march2024(), nil, p, 2)
		assert.Error(t, err)
		assert.Nil(t, codes)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("first-gap")
	require.NoError(t, err)
	assert.Equal(t, PolicyFirstGap, p)

	_, err = ParsePolicy("random")
	assert.True(t, domain.IsValidation(err))
}
