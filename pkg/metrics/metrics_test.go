package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ObjectsTotal)
	ObjectsTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ObjectsTotal))

	before = testutil.ToFloat64(ErrorsTotal)
	ErrorsTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ErrorsTotal))
}
