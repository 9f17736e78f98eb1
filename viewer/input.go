package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Action is something a key press does to the viewer.
type Action int

const (
	ActionNone Action = iota
	ActionRotateLeft
	ActionRotateRight
	ActionRotateUp
	ActionRotateDown
	ActionZoomIn
	ActionZoomOut
	ActionToggleFullscreen
	ActionScreenshot
	ActionToggleDebug
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionRotateLeft:
		return "rotate left"
	case ActionRotateRight:
		return "rotate right"
	case ActionRotateUp:
		return "rotate up"
	case ActionRotateDown:
		return "rotate down"
	case ActionZoomIn:
		return "zoom in"
	case ActionZoomOut:
		return "zoom out"
	case ActionToggleFullscreen:
		return "toggle fullscreen"
	case ActionScreenshot:
		return "screenshot"
	case ActionToggleDebug:
		return "toggle debug"
	case ActionQuit:
		return "quit"
	}
	return "none"
}

// ActionForKeyCode maps a legacy DOM key code, as reported by browser hosts, to an Action.
func ActionForKeyCode(code int) Action {
	switch code {
	case 37:
		return ActionRotateLeft
	case 39:
		return ActionRotateRight
	case 38:
		return ActionRotateUp
	case 40:
		return ActionRotateDown
	case 107, 187: // Numpad +, =
		return ActionZoomIn
	case 109, 189: // Numpad -, -
		return ActionZoomOut
	}
	return ActionNone
}

// ActionForKey maps a key to an Action.
func ActionForKey(key ebiten.Key) Action {
	switch key {
	case ebiten.KeyArrowLeft:
		return ActionRotateLeft
	case ebiten.KeyArrowRight:
		return ActionRotateRight
	case ebiten.KeyArrowUp:
		return ActionRotateUp
	case ebiten.KeyArrowDown:
		return ActionRotateDown
	case ebiten.KeyEqual, ebiten.KeyNumpadAdd:
		return ActionZoomIn
	case ebiten.KeyMinus, ebiten.KeyNumpadSubtract:
		return ActionZoomOut
	case ebiten.KeyF4:
		return ActionToggleFullscreen
	case ebiten.KeyF12:
		return ActionScreenshot
	case ebiten.KeyF1:
		return ActionToggleDebug
	case ebiten.KeyEscape:
		return ActionQuit
	}
	return ActionNone
}

// HandleKey performs the Action bound to a key that was just pressed.
func (app *App) HandleKey(key ebiten.Key) error {
	return app.Perform(ActionForKey(key))
}

// Perform carries out an Action. Quitting returns ebiten.Termination, which ends the game loop cleanly.
// Rotation and zoom are unbounded.
func (app *App) Perform(action Action) error {

	rotate := app.Config.Camera.RotateStep
	zoom := app.Config.Camera.ZoomStep

	switch action {
	case ActionRotateLeft:
		app.Scene.Rotate(0, -rotate, 0)
	case ActionRotateRight:
		app.Scene.Rotate(0, rotate, 0)
	case ActionRotateUp:
		app.Scene.Rotate(-rotate, 0, 0)
	case ActionRotateDown:
		app.Scene.Rotate(rotate, 0, 0)
	case ActionZoomIn:
		app.Camera.Move(0, 0, -zoom)
	case ActionZoomOut:
		app.Camera.Move(0, 0, zoom)
	case ActionToggleFullscreen:
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	case ActionScreenshot:
		app.screenshotPending = true
	case ActionToggleDebug:
		app.ShowDebug = !app.ShowDebug
	case ActionQuit:
		return ebiten.Termination
	default:
		return nil
	}

	app.logger.Debug("key action", "action", action.String())

	return nil

}

// Resize updates the viewer for a view of w by h logical pixels, with pixelRatio physical pixels per logical pixel.
// The camera's aspect ratio and render target follow the new size, and the dither pattern is laid out over the
// logical resolution.
func (app *App) Resize(w, h int, pixelRatio float32) {

	if w == app.width && h == app.height && pixelRatio == app.pixelRatio {
		return
	}

	app.width, app.height, app.pixelRatio = w, h, pixelRatio

	app.Camera.Resize(w, h, pixelRatio)
	app.Dither.SetResolution(w, h)

	app.logger.Debug("resized", "width", w, "height", h, "pixelRatio", pixelRatio)

}
