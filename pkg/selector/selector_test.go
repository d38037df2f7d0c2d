package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptySelectorMatchesEverything(t *testing.T) {
	assert.True(t, Matches("", map[string]string{"a": "b"}))
	assert.True(t, Matches("", nil))
}

func TestEqualityOperators(t *testing.T) {
	labels := map[string]string{"env": "prod"}
	assert.True(t, Matches("env=prod", labels))
	assert.True(t, Matches("env==prod", labels))
	assert.False(t, Matches("env=staging", labels))
	assert.True(t, Matches("env!=staging", labels))
	assert.False(t, Matches("env!=prod", labels))
}

func TestNotEqualMatchesAbsence(t *testing.T) {
	assert.True(t, Matches("env!=prod", map[string]string{}))
}

func TestSetOperators(t *testing.T) {
	labels := map[string]string{"tier": "cache"}
	assert.True(t, Matches("tier in (cache, db)", labels))
	assert.False(t, Matches("tier in (db, queue)", labels))
	assert.True(t, Matches("tier notin (db, queue)", labels))
	assert.False(t, Matches("tier notin (cache, db)", labels))
}

func TestNotInMatchesAbsence(t *testing.T) {
	assert.True(t, Matches("tier notin (cache)", map[string]string{}))
}

func TestPresenceOperators(t *testing.T) {
	labels := map[string]string{"managed": "true"}
	assert.True(t, Matches("managed", labels))
	assert.False(t, Matches("!managed", labels))
	assert.True(t, Matches("!absent", labels))
	assert.False(t, Matches("absent", labels))
}

func TestConjunctionOfMultipleAtoms(t *testing.T) {
	labels := map[string]string{"env": "prod", "tier": "cache"}
	assert.True(t, Matches("env=prod,tier in (cache,db)", labels))
	assert.False(t, Matches("env=prod,tier in (db,queue)", labels))
}

func TestEmptySetIsBoundaryCase(t *testing.T) {
	_, err := Parse("a in ()")
	require.NoError(t, err)
	assert.False(t, Matches("a in ()", map[string]string{"a": "x"}))
	assert.True(t, Matches("a notin ()", map[string]string{"a": "x"}))
}

func TestWhitespaceIsNonSignificantExceptInKeyword(t *testing.T) {
	assert.True(t, Matches("  env  =  prod  ", map[string]string{"env": "prod"}))
	assert.True(t, Matches("tier in ( cache , db )", map[string]string{"tier": "db"}))
}

func TestParseErrorReportsOffendingSubstringAndSpan(t *testing.T) {
	_, err := Parse("env==")
	require.Error(t, err)
	assert.ErrorContains(t, err, "parse error")
	assert.ErrorContains(t, err, `"env=="`)
	assert.ErrorContains(t, err, "position 5")
}

func TestParseErrorOnMalformedSet(t *testing.T) {
	_, err := Parse("tier in cache)")
	require.Error(t, err)
}

func TestParseErrorOnInvalidCharacter(t *testing.T) {
	_, err := Parse("env=@prod")
	require.Error(t, err)
}
