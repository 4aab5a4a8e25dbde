package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colljump/internal/application"
	"colljump/internal/domain"
	"colljump/internal/ports"
)

func userTarget() domain.ResolvedCollection {
	return domain.ResolvedCollection{
		Record:  domain.CollectionRecord{ID: 10, Key: "ABCD1234", Name: "Research", LibraryID: 1},
		Library: domain.Library{ID: 1, Type: domain.LibraryTypeUser},
	}
}

func groupTarget() domain.ResolvedCollection {
	return domain.ResolvedCollection{
		Record:  domain.CollectionRecord{ID: 20, Key: "WXYZ9876", Name: "Shared", LibraryID: 42},
		Library: domain.Library{ID: 42, Type: domain.LibraryTypeGroup, GroupID: 7001},
	}
}

func outcomes(r *SelectionReport) []Outcome {
	out := make([]Outcome, len(r.Attempts))
	for i, a := range r.Attempts {
		out[i] = a.Outcome
	}
	return out
}

func TestSelectionDriver_URIFirst(t *testing.T) {
	tests := []struct {
		name    string
		target  domain.ResolvedCollection
		wantURI string
	}{
		{"user library", userTarget(), "zotero://select/library/collections/ABCD1234"},
		{"group library", groupTarget(), "zotero://select/groups/42/collections/WXYZ9876"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			sel := &fakeURISelector{rec: rec}
			host := ports.Host{
				URISelector: sel,
				Pane:        &fakePane{rec: rec},
				View:        &fakeView{rec: rec},
			}

			report, err := NewSelectionDriver(host, nil, WithSettleDelay(0)).Select(context.Background(), tt.target)
			require.NoError(t, err)

			assert.Equal(t, []string{tt.wantURI}, sel.uris)
			assert.Equal(t, StrategyURI, report.Winner)
			assert.Equal(t, tt.wantURI, report.URI)
			assert.Equal(t, []string{"uri.select"}, rec.list())
		})
	}
}

func TestSelectionDriver_LauncherFallback(t *testing.T) {
	rec := &recorder{}
	launcher := &fakeLauncher{rec: rec}

	report, err := NewSelectionDriver(ports.Host{URLLauncher: launcher}, nil, WithSettleDelay(0)).
		Select(context.Background(), userTarget())
	require.NoError(t, err)

	assert.Equal(t, []string{"zotero://select/library/collections/ABCD1234"}, launcher.urls)
	assert.Equal(t, StrategyURI, report.Winner)
}

func TestSelectionDriver_FallsThroughToView(t *testing.T) {
	rec := &recorder{}
	host := ports.Host{
		URISelector: &fakeURISelector{rec: rec, err: errHost},
		Pane:        &fakePane{rec: rec, switchErr: errHost},
		View:        &fakeView{rec: rec},
	}

	report, err := NewSelectionDriver(host, nil, WithSettleDelay(0)).Select(context.Background(), userTarget())
	require.NoError(t, err)

	assert.Equal(t, StrategyView, report.Winner)
	assert.Equal(t, []Outcome{OutcomeFailed, OutcomeFailed, OutcomeSuccess}, outcomes(report))
	assert.Equal(t, []string{"uri.select", "pane.switch", "view.selectByID", "view.dispatch"}, rec.list())

	var se *application.StrategyError
	require.ErrorAs(t, report.Attempts[1].Err, &se)
	assert.Equal(t, StrategyPane, se.Strategy)
	assert.ErrorIs(t, report.Attempts[1].Err, errHost)
}

func TestSelectionDriver_AllFail(t *testing.T) {
	rec := &recorder{}
	host := ports.Host{
		URISelector: &fakeURISelector{rec: rec, err: errHost},
		Pane:        &fakePane{rec: rec, selectErr: errHost},
		View:        &fakeView{rec: rec, selectErr: errHost, rows: map[int64]int{10: 0}, rowErr: errHost},
	}

	report, err := NewSelectionDriver(host, nil, WithSettleDelay(0)).Select(context.Background(), userTarget())
	require.Error(t, err)
	assert.ErrorIs(t, err, application.ErrAllStrategiesFailed)

	assert.False(t, report.Succeeded())
	assert.Equal(t, []Outcome{OutcomeFailed, OutcomeFailed, OutcomeFailed, OutcomeFailed}, outcomes(report))
	assert.Equal(t, []string{
		"uri.select",
		"pane.switch", "pane.select",
		"view.selectByID",
		"view.expand", "view.selectRow",
	}, rec.list())
}

func TestSelectionDriver_NoCapabilities(t *testing.T) {
	report, err := NewSelectionDriver(ports.Host{}, nil, WithSettleDelay(0)).Select(context.Background(), userTarget())
	assert.ErrorIs(t, err, application.ErrAllStrategiesFailed)
	assert.Equal(t, []Outcome{OutcomeUnavailable, OutcomeUnavailable, OutcomeUnavailable, OutcomeUnavailable}, outcomes(report))
}

func TestSelectionDriver_RecoversPanics(t *testing.T) {
	rec := &recorder{}
	view := &fakeView{rec: rec, panicky: true, rows: map[int64]int{10: 3}}

	var (
		report *SelectionReport
		err    error
	)
	assert.NotPanics(t, func() {
		report, err = NewSelectionDriver(ports.Host{View: view}, nil, WithSettleDelay(0)).
			Select(context.Background(), userTarget())
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyRow, report.Winner)
	assert.Equal(t, OutcomeFailed, report.Attempts[2].Outcome)
	assert.Contains(t, report.Attempts[2].Err.Error(), "host panic")
	assert.Contains(t, rec.list(), "view.ensureVisible")
}

func TestSelectionDriver_ViewIgnoringSelectionFallsToRow(t *testing.T) {
	rec := &recorder{}
	view := &fakeView{rec: rec, ignoreSel: true, rows: map[int64]int{10: 0}}

	report, err := NewSelectionDriver(ports.Host{View: view}, nil, WithSettleDelay(0)).
		Select(context.Background(), userTarget())
	require.NoError(t, err)
	assert.Equal(t, StrategyRow, report.Winner)

	selected, ok := view.SelectedID()
	require.True(t, ok)
	assert.Equal(t, int64(10), selected)
}

func TestSelectionDriver_MissingRow(t *testing.T) {
	rec := &recorder{}
	view := &fakeView{rec: rec, selectErr: errHost}

	report, err := NewSelectionDriver(ports.Host{View: view}, nil, WithSettleDelay(0)).
		Select(context.Background(), userTarget())
	assert.ErrorIs(t, err, application.ErrAllStrategiesFailed)
	assert.Contains(t, report.Attempts[3].Err.Error(), "no visible row")
}

func TestSelectionDriver_Cancelled(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	host := ports.Host{
		URISelector: &fakeURISelector{rec: rec, err: errHost},
		View:        &fakeView{rec: rec},
	}
	report, err := NewSelectionDriver(host, nil).Select(ctx, userTarget())
	require.Error(t, err)
	assert.ErrorIs(t, err, application.ErrAllStrategiesFailed)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Len(t, report.Attempts, 2)
	assert.NotContains(t, rec.list(), "view.selectByID")
}
