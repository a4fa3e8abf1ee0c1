package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(CartMutations.WithLabelValues("add"))
	CartMutations.WithLabelValues("add").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CartMutations.WithLabelValues("add")))

	FeedDecisions.WithLabelValues("reject").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(FeedDecisions.WithLabelValues("reject")), 1.0)
}
