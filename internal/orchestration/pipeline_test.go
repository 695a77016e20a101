package orchestration

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
	"github.com/alcoccoque/pbirs-connector/internal/endpoint"
	"github.com/alcoccoque/pbirs-connector/internal/sink"
)

type fakeSource struct {
	units  []*cdm.WorkUnit
	report *endpoint.SourceReport
}

func (f *fakeSource) ID() string { return "fake" }
func (f *fakeSource) ValidateConfig(ctx context.Context) (*endpoint.ValidationResult, error) {
	return &endpoint.ValidationResult{Valid: true}, nil
}
func (f *fakeSource) GetDescriptor() *endpoint.Descriptor { return &endpoint.Descriptor{ID: "fake"} }
func (f *fakeSource) Report() *endpoint.SourceReport    { return f.report }
func (f *fakeSource) Close() error                      { return nil }

func (f *fakeSource) WorkUnits(ctx context.Context) endpoint.Iterator[*cdm.WorkUnit] {
	f.report = endpoint.NewSourceReport()
	return endpoint.NewSliceIterator(f.units)
}

type failingSink struct {
	failAfter int
	writes    int
	closed    bool
}

func (s *failingSink) Write(ctx context.Context, wu *cdm.WorkUnit) error {
	if s.writes == s.failAfter {
		return errors.New("disk full")
	}
	s.writes++
	return nil
}

func (s *failingSink) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

func testUnits() []*cdm.WorkUnit {
	urn := cdm.DashboardURN("pbirs", "dashboards.r1")
	return []*cdm.WorkUnit{
		cdm.NewWorkUnit("pbirs", cdm.NewUpsert(cdm.EntityDashboard, urn, cdm.Status{})),
		cdm.NewWorkUnit("pbirs", cdm.NewUpsert(cdm.EntityDashboard, urn, cdm.Ownership{})),
		cdm.NewWorkUnit("pbirs", cdm.NewUpsert(cdm.EntityDashboard, urn, cdm.BrowsePaths{})),
	}
}

func TestRun_WritesEveryUnit(t *testing.T) {
	var buf bytes.Buffer
	src := &fakeSource{units: testUnits()}
	var gotRun sink.Run

	result, err := Run(context.Background(), src, "pbirs", func(ctx context.Context, run sink.Run) (sink.Sink, error) {
		gotRun = run
		return sink.NewJSONLSink(&buf), nil
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Written)
	assert.Equal(t, src.report.RunID, result.RunID)
	assert.Equal(t, "pbirs", gotRun.Platform)
	assert.Equal(t, result.RunID, gotRun.ID)
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

func TestRun_ObjectStoreTarget(t *testing.T) {
	store := sink.NewLocalStore(t.TempDir())
	src := &fakeSource{units: testUnits()}

	result, err := Run(context.Background(), src, "pbirs", func(ctx context.Context, run sink.Run) (sink.Sink, error) {
		return sink.NewObjectStoreSink(store, sink.ObjectStoreConfig{Bucket: "b"}, run, nil), nil
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "minio://b/workunits/pbirs/"+result.RunID+".jsonl", result.SinkTarget)
	keys, err := store.ListPrefix(context.Background(), "b", "workunits")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestRun_SinkFailureStopsAndCloses(t *testing.T) {
	out := &failingSink{failAfter: 1}
	src := &fakeSource{units: testUnits()}

	result, err := Run(context.Background(), src, "pbirs", func(ctx context.Context, run sink.Run) (sink.Sink, error) {
		return out, nil
	}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, result.Written)
	assert.True(t, out.closed)
}

func TestRun_SinkFactoryError(t *testing.T) {
	_, err := Run(context.Background(), &fakeSource{}, "pbirs", func(ctx context.Context, run sink.Run) (sink.Sink, error) {
		return nil, errors.New("no route")
	}, nil)
	assert.ErrorContains(t, err, "open sink")

	_, err = Run(context.Background(), nil, "pbirs", nil, nil)
	assert.Error(t, err)
}
