package metrics

import (
	"testing"
	"time"

	"github.com/edgeflow/edgeinfer/internal/model"
)

func TestRecordFunctions(t *testing.T) {
	// Record helpers must not panic and must accept repeated calls.
	RecordRequest("meta")
	RecordRequest("infr")
	RecordRequest("infr")
	RecordInference(3 * time.Millisecond)
	RecordInference(8 * time.Millisecond)
	RecordSizeReject()
	RecordTimeout("count")
	RecordTimeout("payload")
}

func TestSetModelDimensions(t *testing.T) {
	SetModelDimensions(model.Header{T: 16, F: 6, H: 3, Hidden: 32})
	// Re-publishing the same header is a gauge update, not an error.
	SetModelDimensions(model.Header{T: 16, F: 6, H: 3, Hidden: 32})
}
