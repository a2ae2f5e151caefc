package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodes(t *testing.T) {
	before := testutil.ToFloat64(treeNodes)
	AddNodes(4)
	AddNodes(-2)
	assert.Equal(t, before+2, testutil.ToFloat64(treeNodes))
}

func TestRecordMutation(t *testing.T) {
	c := mutationsTotal.WithLabelValues("insert_dir", "SUCCESS")
	before := testutil.ToFloat64(c)
	RecordMutation("insert_dir", "SUCCESS")
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordCheck(t *testing.T) {
	valid := checksTotal.WithLabelValues("tree", "valid")
	invalid := checksTotal.WithLabelValues("tree", "invalid")
	vb, ib := testutil.ToFloat64(valid), testutil.ToFloat64(invalid)

	RecordCheck("tree", true)
	RecordCheck("tree", false)
	RecordCheck("tree", false)

	assert.Equal(t, vb+1, testutil.ToFloat64(valid))
	assert.Equal(t, ib+2, testutil.ToFloat64(invalid))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	RecordCheckDuration(time.Millisecond)
	RecordMutation("remove_dir", "NO_SUCH_PATH")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "filetree_mutations_total")
	assert.Contains(t, body, "filetree_check_duration_seconds")
}
