package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOverlayFade(t *testing.T) {

	status := NewStatusOverlay(InitialStatus)
	assert.True(t, status.Visible())
	assert.Equal(t, float32(1), status.Alpha())

	status.ShowStatus("Loading model: 50%")
	assert.Equal(t, "Loading model: 50%", status.Text)

	// Updating without a fade changes nothing.
	status.Update(1)
	assert.Equal(t, float32(1), status.Alpha())

	status.HideStatus()
	assert.True(t, status.Fading())

	status.Update(status.FadeDuration / 2)
	assert.Less(t, status.Alpha(), float32(1))
	assert.Greater(t, status.Alpha(), float32(0))
	assert.True(t, status.Visible())

	for i := 0; i < 60 && status.Visible(); i++ {
		status.Update(1.0 / 60)
	}

	assert.False(t, status.Visible())
	assert.False(t, status.Fading())
	assert.Equal(t, float32(0), status.Alpha())

}

func TestStatusOverlayShowCancelsFade(t *testing.T) {

	status := NewStatusOverlay(InitialStatus)

	status.HideStatus()
	status.Update(status.FadeDuration / 2)

	status.ShowStatus("Error loading model!")

	assert.False(t, status.Fading())
	assert.True(t, status.Visible())
	assert.Equal(t, float32(1), status.Alpha())

	status.Update(10)
	assert.True(t, status.Visible(), "shown text stays until hidden again")

}
