package parking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLevel() *Level {
	l := NewLevel(0)
	l.AddSpot(NewSpot(1, Motorcycle))
	l.AddSpot(NewSpot(2, Compact))
	l.AddSpot(NewSpot(3, Compact))
	l.AddSpot(NewSpot(4, Large))
	return l
}

func TestLevelAllocateExactFirst(t *testing.T) {
	l := newTestLevel()

	id, ok := l.Allocate(NewVehicle("CAR-1", "", Car), Large)
	require.True(t, ok)
	assert.Equal(t, SpotID(2), id)

	id, ok = l.Allocate(NewVehicle("CAR-2", "", Car), Large)
	require.True(t, ok)
	assert.Equal(t, SpotID(3), id)
}

func TestLevelAllocateFallsBackToLargerSize(t *testing.T) {
	l := newTestLevel()

	l.Allocate(NewVehicle("CAR-1", "", Car), Large)
	l.Allocate(NewVehicle("CAR-2", "", Car), Large)

	id, ok := l.Allocate(NewVehicle("CAR-3", "", Car), Large)
	require.True(t, ok)
	assert.Equal(t, SpotID(4), id, "third car should take the large spot")

	_, ok = l.Allocate(NewVehicle("CAR-4", "", Car), Large)
	assert.False(t, ok)

	id, ok = l.Allocate(NewVehicle("BIKE-1", "", MotorcycleVehicle), Large)
	require.True(t, ok)
	assert.Equal(t, SpotID(1), id, "motorcycle spot is still free")
}

func TestLevelAllocateNeverDownsizes(t *testing.T) {
	l := NewLevel(0)
	l.AddSpot(NewSpot(1, Motorcycle))
	l.AddSpot(NewSpot(2, Compact))

	_, ok := l.Allocate(NewVehicle("TRUCK-1", "", Truck), Large)
	assert.False(t, ok)
	assert.Equal(t, 1, l.AvailableCount(Motorcycle))
	assert.Equal(t, 1, l.AvailableCount(Compact))
}

func TestLevelAllocateRespectsCeiling(t *testing.T) {
	l := NewLevel(0)
	l.AddSpot(NewSpot(1, Large))

	_, ok := l.Allocate(NewVehicle("CAR-1", "", Car), Compact)
	assert.False(t, ok, "large spot is above the ceiling")

	id, ok := l.Allocate(NewVehicle("CAR-1", "", Car), Large)
	require.True(t, ok)
	assert.Equal(t, SpotID(1), id)
}

func TestLevelRelease(t *testing.T) {
	l := newTestLevel()
	id, _ := l.Allocate(NewVehicle("CAR-1", "", Car), Large)

	assert.True(t, l.Release(id))
	assert.Equal(t, 2, l.AvailableCount(Compact))

	assert.False(t, l.Release(id), "second release of the same spot is a no-op")
	assert.False(t, l.Release(99), "unknown spot")
}

func TestLevelAvailableCount(t *testing.T) {
	l := newTestLevel()

	assert.Equal(t, 1, l.AvailableCount(Motorcycle))
	assert.Equal(t, 2, l.AvailableCount(Compact))
	assert.Equal(t, 1, l.AvailableCount(Large))

	l.Allocate(NewVehicle("TRUCK-1", "", Truck), Large)
	assert.Equal(t, 0, l.AvailableCount(Large))
	assert.Equal(t, 1, l.Capacity(Large))
}

func TestLevelSnapshot(t *testing.T) {
	l := newTestLevel()
	l.Allocate(NewVehicle("KA01HH1234", "White", Car), Large)

	snapshot := l.Snapshot()
	require.Len(t, snapshot, 4)

	assert.Equal(t, SpotID(1), snapshot[0].ID)
	assert.False(t, snapshot[0].Occupied)

	assert.Equal(t, SpotID(2), snapshot[1].ID)
	assert.True(t, snapshot[1].Occupied)
	assert.Equal(t, "KA01HH1234", snapshot[1].Registration)
	assert.Equal(t, "White", snapshot[1].Color)
}

func TestLevelConcurrentAllocateIsExclusive(t *testing.T) {
	l := NewLevel(0)
	for i := 1; i <= 10; i++ {
		l.AddSpot(NewSpot(SpotID(i), Compact))
	}

	const workers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted = make(map[SpotID]int)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, ok := l.Allocate(NewVehicle("CAR", "", Car), Compact)
			if ok {
				mu.Lock()
				granted[id]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, granted, 10)
	for id, n := range granted {
		assert.Equal(t, 1, n, "spot %d handed out more than once", id)
	}
	assert.Equal(t, 0, l.AvailableCount(Compact))
}
