package rainfall

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRainFieldSpawn(t *testing.T) {

	rain := NewRainField(nil, rand.New(rand.NewSource(1)))

	require.Equal(t, 15000, rain.Count())
	require.Len(t, rain.Positions, 15000*3)

	for i := 0; i < rain.Count(); i++ {
		p := rain.Position(i)
		assert.GreaterOrEqual(t, p.Y, float32(30))
		assert.LessOrEqual(t, p.Y, float32(45))
		assert.LessOrEqual(t, p.X*p.X, float32(20*20))
		assert.LessOrEqual(t, p.Z*p.Z, float32(20*20))
		assert.GreaterOrEqual(t, rain.Velocities[i], float32(0.15))
		assert.LessOrEqual(t, rain.Velocities[i], float32(0.45))
	}

}

func TestRainFieldStaysInBounds(t *testing.T) {

	rain := NewRainField(nil, rand.New(rand.NewSource(2)))

	// Long enough for every drop to reach the floor and respawn at least once.
	for tick := 0; tick < 600; tick++ {

		rain.Advance()

		for i := 0; i < rain.Count(); i++ {
			y := rain.Positions[i*3+1]
			if y < -20 || y > 45 {
				t.Fatalf("drop %d left bounds at tick %d: y = %f", i, tick, y)
			}
		}

	}

}

func TestRainFieldRespawn(t *testing.T) {

	settings := NewRainSettings()
	settings.Count = 1

	rain := NewRainField(settings, rand.New(rand.NewSource(3)))
	rain.Positions[0], rain.Positions[1], rain.Positions[2] = 4, -19.9, -2
	rain.Velocities[0] = 0.3

	rain.Advance()

	p := rain.Position(0)
	assert.GreaterOrEqual(t, p.Y, float32(30))
	assert.LessOrEqual(t, p.Y, float32(45))
	assert.Equal(t, float32(4), p.X, "horizontal position is kept on respawn")
	assert.Equal(t, float32(-2), p.Z, "horizontal position is kept on respawn")

	// A drop above the floor just falls.
	rain.Positions[1] = 10
	rain.Advance()
	assert.InDelta(t, 9.7, rain.Positions[1], 1e-5)

}

func TestRainFieldDirty(t *testing.T) {

	rain := NewRainField(nil, rand.New(rand.NewSource(4)))
	assert.True(t, rain.Dirty())

	rain.MarkClean()
	assert.False(t, rain.Dirty())

	rain.Advance()
	assert.True(t, rain.Dirty())

}

func BenchmarkRainFieldAdvance(b *testing.B) {

	rain := NewRainField(nil, rand.New(rand.NewSource(5)))

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		rain.Advance()
	}

}
