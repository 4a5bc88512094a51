package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_RecordsBusinessMetrics(t *testing.T) {
	c := NewCollector("memebase_test")

	c.RecordInteraction("view")
	c.RecordInteraction("view")
	c.RecordInteraction("copy")
	c.RecordLedgerPersistFailure()
	c.RecordBucketsPruned(3)
	c.RecordBucketsPruned(0)
	c.RecordUpload("bulk", "saved_locally")
	c.RecordChampionLookup(false)
	c.RecordHTTPRequest("GET", "/api/v1/champion", "200", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.InteractionsRecorded.WithLabelValues("view")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.InteractionsRecorded.WithLabelValues("copy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LedgerPersistFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.LedgerBucketsPruned))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.UploadOutcomes.WithLabelValues("bulk", "saved_locally")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ChampionLookups.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/v1/champion", "200")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordInteraction("click")
		c.RecordLedgerPersistFailure()
		c.RecordUpload("single", "success")
		c.RecordChampionLookup(true)
		c.RecordHTTPRequest("GET", "/", "200", time.Second)
	})
}
