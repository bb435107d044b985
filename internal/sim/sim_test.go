package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/vehicle-vendor/pkg/conversation"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

var epoch = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func TestBundledGraphs(t *testing.T) {
	assert.Equal(t, []string{"airwolf", "boatvendor"}, GraphNames())

	actions := map[string]bool{}
	for _, name := range GraphNames() {
		g, err := LoadGraph(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, g.ShortName)
		for _, s := range g.Speeches {
			for _, r := range s.Responses {
				if r.Action != "" {
					actions[r.Action] = true
					_, ok := r.ScrapThreshold()
					assert.True(t, ok, "%s/%s has a scrap price", name, s.Name)
				}
			}
		}
	}
	for _, info := range vehicle.All() {
		assert.True(t, actions[info.BuyAction], "some vendor sells %s", info.Type)
	}
}

func TestLoadGraph_Unknown(t *testing.T) {
	_, err := LoadGraph("bandit-camp")
	assert.Error(t, err)
}

func TestParseGraph(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "short_name: x\nspeeches: []\n", "no speech nodes"},
		{"dangling target", "short_name: x\nspeeches:\n  - name: a\n    responses:\n      - target: b\n", "unknown node"},
		{"not yaml", "speeches: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGraph([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func newWorld(t *testing.T) *World {
	t.Helper()
	g, err := LoadGraph("boatvendor")
	require.NoError(t, err)
	w := NewWorld(epoch, "vendor-1", g, nil)
	w.Connect("p1")
	return w
}

func TestWorld_VanillaPurchase(t *testing.T) {
	w := newWorld(t)
	w.SetItemAmount("p1", host.ScrapItem, 45)

	w.Start("p1")
	out, err := w.Choose("p1", 0)
	require.NoError(t, err)
	assert.Equal(t, "rowboat_pay", out.Node)

	opts := w.Options("p1")
	require.Len(t, opts, 3)
	assert.True(t, opts[0].Available)
	assert.False(t, opts[1].Available, "inverse condition hides the can't afford option")

	out, err = w.Choose("p1", 0)
	require.NoError(t, err)
	require.NotNil(t, out.Spawned)
	assert.Equal(t, 5, w.ItemAmount("p1", host.ScrapItem))
	assert.Equal(t, StartingFuel, out.Spawned.Fuel().FuelAmount())
	assert.Equal(t, "boat_bought", out.Node)

	out, err = w.Choose("p1", 0)
	require.NoError(t, err)
	assert.True(t, out.Ended())
	_, err = w.Choose("p1", 0)
	assert.ErrorIs(t, err, ErrNotTalking)
}

func TestWorld_RejectsUnmetConditions(t *testing.T) {
	w := newWorld(t)
	w.Start("p1")
	_, err := w.Choose("p1", 0)
	require.NoError(t, err)

	out, err := w.Choose("p1", 0)
	require.NoError(t, err)
	assert.True(t, out.Rejected)
	assert.Equal(t, "rowboat_pay", out.Node)
	assert.Empty(t, w.Spawned())
}

func TestWorld_BadIndex(t *testing.T) {
	w := newWorld(t)
	w.Start("p1")
	_, err := w.Choose("p1", 9)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestWorld_ClientView(t *testing.T) {
	w := newWorld(t)
	w.SetItemAmount("p1", host.ScrapItem, 10)

	w.SendDisplaySnapshot("p1", host.ScrapItem, 40)
	assert.Equal(t, 40, w.DisplayedScrap("p1"))
	assert.Equal(t, 10, w.ItemAmount("p1", host.ScrapItem))

	w.Resync("p1")
	assert.Equal(t, 10, w.DisplayedScrap("p1"))
}

func TestWorld_ForceNode(t *testing.T) {
	w := newWorld(t)
	w.Start("p1")

	w.ForceNode(w.VendorID(), "p1", "subs")
	speech, ok := w.Speech("p1")
	require.True(t, ok)
	assert.Equal(t, "subs", speech.Name)

	w.ForceNode(w.VendorID(), "p1", conversation.EndNode)
	_, ok = w.Speech("p1")
	assert.False(t, ok)
	assert.Len(t, w.Forced, 2)
}
