package rainfall

import (
	"math/rand"

	"github.com/solarlune/rainfall/math32"
)

// NumberRange represents a range of possible values, and allows the RainField to get a random value from within that range.
type NumberRange struct {
	Min, Max float32
}

// NewNumberRange returns a new NumberRange spanning min to max.
func NewNumberRange(min, max float32) *NumberRange {
	return &NumberRange{Min: min, Max: max}
}

// Set sets the minimum and maximum values of the NumberRange.
func (ran *NumberRange) Set(min, max float32) {
	ran.Min = min
	ran.Max = max
}

// Value returns a random value within the NumberRange, using the random source given. The result lies in [Min, Max).
func (ran *NumberRange) Value(rng *rand.Rand) float32 {
	return ran.Min + (ran.Max-ran.Min)*rng.Float32()
}

// RainSettings controls how a RainField spawns and recycles its drops.
type RainSettings struct {
	Count int // How many drops the field holds; this is fixed for the life of the RainField.

	Radius         float32      // Radius of the disc (around the Y axis) drops spawn within
	RadialFraction *NumberRange // Fraction of Radius drops spawn at, so that the center of the disc stays sparse
	SpawnHeight    *NumberRange // Height range drops spawn (and respawn) at
	Speed          *NumberRange // Distance a drop falls each tick
	FloorY         float32      // Once a drop falls below this height, it respawns within SpawnHeight

	Color   Color   // Color of each drop
	Opacity float32 // Opacity of each drop; drops are blended additively
	Size    float32 // Size of each drop in world units, at a distance of one unit from the camera
}

// NewRainSettings returns the default RainSettings: 15000 drops falling within a disc of radius 20 from heights of
// 30 to 45 down to -20.
func NewRainSettings() *RainSettings {
	return &RainSettings{
		Count:          15000,
		Radius:         20,
		RadialFraction: NewNumberRange(0.1, 1.0),
		SpawnHeight:    NewNumberRange(30, 45),
		Speed:          NewNumberRange(0.15, 0.45),
		FloorY:         -20,
		Color:          NewColorFromHexInt(0xaaaaff),
		Opacity:        0.6,
		Size:           0.1,
	}
}

// RainField represents a fixed-size field of falling rain drops. Positions are stored flat (x, y, z for each drop) so
// that the renderer can walk them without any per-drop allocation.
type RainField struct {
	Node *Node // Node the drops are positioned relative to

	Settings   *RainSettings
	Positions  []float32
	Velocities []float32

	rng   *rand.Rand
	dirty bool
}

// NewRainField creates a RainField, spawning every drop at a random point within the settings given.
// If settings is nil, NewRainSettings() is used. If rng is nil, a time-seeded source is used.
func NewRainField(settings *RainSettings, rng *rand.Rand) *RainField {

	if settings == nil {
		settings = NewRainSettings()
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	rain := &RainField{
		Node:       NewNode("rain"),
		Settings:   settings,
		Positions:  make([]float32, settings.Count*3),
		Velocities: make([]float32, settings.Count),
		rng:        rng,
		dirty:      true,
	}

	for i := 0; i < settings.Count; i++ {

		theta := rng.Float32() * math32.Pi * 2

		// The radial fraction is drawn separately for X and Z, so drops scatter within the disc rather than on rings.
		rain.Positions[i*3] = math32.Cos(theta) * settings.Radius * settings.RadialFraction.Value(rng)
		rain.Positions[i*3+1] = settings.SpawnHeight.Value(rng)
		rain.Positions[i*3+2] = math32.Sin(theta) * settings.Radius * settings.RadialFraction.Value(rng)

		rain.Velocities[i] = settings.Speed.Value(rng)

	}

	return rain

}

// Count returns the number of drops in the RainField.
func (rain *RainField) Count() int {
	return len(rain.Velocities)
}

// Position returns the local position of the drop at the index given.
func (rain *RainField) Position(index int) Vector3 {
	return Vector3{rain.Positions[index*3], rain.Positions[index*3+1], rain.Positions[index*3+2]}
}

// Advance moves every drop down by its velocity. Drops that fall below the floor respawn at a random height within
// the spawn range; their horizontal position is kept, so each drop falls along the same column forever.
func (rain *RainField) Advance() {

	floor := rain.Settings.FloorY

	for i, v := range rain.Velocities {

		y := rain.Positions[i*3+1] - v

		if y < floor {
			y = rain.Settings.SpawnHeight.Value(rain.rng)
		}

		rain.Positions[i*3+1] = y

	}

	rain.dirty = true

}

// Dirty returns true if the drops have moved since the renderer last consumed them.
func (rain *RainField) Dirty() bool {
	return rain.dirty
}

// MarkClean clears the dirty flag; the renderer calls this after rebuilding its drop vertices.
func (rain *RainField) MarkClean() {
	rain.dirty = false
}
