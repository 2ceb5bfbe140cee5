package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/aerorefuel/internal/geo"
	"github.com/elektrokombinacija/aerorefuel/internal/tower"
)

func towerAt(id string, pos geo.Position) *tower.Tower {
	return tower.New(tower.Config{
		ID: id, Position: pos,
		LaunchTime: time.Minute, LandingTime: time.Minute,
		ParallelLaunchers: 1, ParallelLanders: 1,
	}, time.UTC, nil)
}

func TestNearestTowersOrdering(t *testing.T) {
	s := New(&World{Towers: map[string]*tower.Tower{
		"tower-1": towerAt("tower-1", geo.NewPosition(0, 0, 0)),
		"tower-2": towerAt("tower-2", geo.NewPosition(30, 30, 30)),
		"tower-3": towerAt("tower-3", geo.NewPosition(110, 110, 110)),
	}}, nil)

	got := s.nearestTowers(geo.NewPosition(50, 50, 50))
	ids := make([]string, len(got))
	for i, tw := range got {
		ids[i] = tw.ID()
	}
	require.Equal(t, []string{"tower-2", "tower-1", "tower-3"}, ids)
}

func TestPartialPlanGeneratorAdvancesOneAxisAtATime(t *testing.T) {
	g := &partialPlanGenerator{
		startTowers: []*tower.Tower{
			towerAt("s0", geo.NewPosition(0, 0, 0)),
			towerAt("s1", geo.NewPosition(1, 0, 0)),
		},
		finishTowers: []*tower.Tower{
			towerAt("f0", geo.NewPosition(10, 0, 0)),
			towerAt("f1", geo.NewPosition(11, 0, 0)),
		},
		visited: make(map[[2]int]bool),
	}

	var pairs [][2]string
	for {
		s, f, ok := g.next()
		if !ok {
			break
		}
		pairs = append(pairs, [2]string{s.ID(), f.ID()})
	}
	require.Equal(t, [][2]string{
		{"s0", "f0"},
		{"s0", "f1"},
		{"s1", "f0"},
		{"s1", "f1"},
	}, pairs)
}
