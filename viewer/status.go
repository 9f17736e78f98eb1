package viewer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/basicfont"
)

// StatusOverlay shows a line of status text in the top-left corner of the screen. Hiding it fades it out.
type StatusOverlay struct {
	Text         string
	FadeDuration float32 // Seconds

	TextColor       color.RGBA
	BackgroundColor color.RGBA

	alpha   float32
	visible bool
	fade    *gween.Tween
}

// NewStatusOverlay returns a visible StatusOverlay showing the text given.
func NewStatusOverlay(initial string) *StatusOverlay {
	return &StatusOverlay{
		Text:            initial,
		FadeDuration:    0.5,
		TextColor:       color.RGBA{255, 255, 255, 255},
		BackgroundColor: color.RGBA{0, 0, 0, 160},
		alpha:           1,
		visible:         true,
	}
}

// ShowStatus shows the text given at full opacity, cancelling any fade in progress.
func (s *StatusOverlay) ShowStatus(text string) {
	s.Text = text
	s.alpha = 1
	s.visible = true
	s.fade = nil
}

// HideStatus starts fading the overlay out.
func (s *StatusOverlay) HideStatus() {
	if !s.visible || s.fade != nil {
		return
	}
	s.fade = gween.New(s.alpha, 0, s.FadeDuration, ease.OutQuad)
}

// Update advances the fade by dt seconds.
func (s *StatusOverlay) Update(dt float32) {

	if s.fade == nil {
		return
	}

	alpha, finished := s.fade.Update(dt)
	s.alpha = alpha

	if finished {
		s.alpha = 0
		s.visible = false
		s.fade = nil
	}

}

// Visible returns if the overlay is still drawn.
func (s *StatusOverlay) Visible() bool {
	return s.visible
}

// Fading returns if the overlay is fading out.
func (s *StatusOverlay) Fading() bool {
	return s.fade != nil
}

// Alpha returns the overlay's current opacity.
func (s *StatusOverlay) Alpha() float32 {
	return s.alpha
}

// Draw draws the overlay onto screen, scaled up by scale (usually the device scale factor).
func (s *StatusOverlay) Draw(screen *ebiten.Image, scale float64) {
	if !s.visible || s.Text == "" {
		return
	}
	drawTextBox(screen, s.Text, 0, 0, scale, s.alpha, s.TextColor, s.BackgroundColor)
}

var face text.Face

func basicFace() text.Face {
	if face == nil {
		face = text.NewGoXFace(basicfont.Face7x13)
	}
	return face
}

// measureTextBox returns the size of the box drawTextBox draws for txt, before scaling.
func measureTextBox(txt string) (w, h float64) {
	const padding = 4
	metrics := basicFace().Metrics()
	w, h = text.Measure(txt, basicFace(), metrics.HAscent+metrics.HDescent)
	return w + padding*2, h + padding*2
}

// drawTextBox draws txt over a filled box with its top-left corner at x, y (in screen pixels).
func drawTextBox(screen *ebiten.Image, txt string, x, y float64, scale float64, alpha float32, fg, bg color.RGBA) {

	const padding = 4

	metrics := basicFace().Metrics()
	lineSpacing := metrics.HAscent + metrics.HDescent

	w, h := measureTextBox(txt)

	bg.A = uint8(float32(bg.A) * alpha)
	bg.R = uint8(float32(bg.R) * alpha)
	bg.G = uint8(float32(bg.G) * alpha)
	bg.B = uint8(float32(bg.B) * alpha)

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w*scale), float32(h*scale), bg, false)

	opt := &text.DrawOptions{}
	opt.LineSpacing = lineSpacing
	opt.GeoM.Translate(padding, padding)
	opt.GeoM.Scale(scale, scale)
	opt.GeoM.Translate(x, y)
	opt.ColorScale.ScaleWithColor(fg)
	opt.ColorScale.ScaleAlpha(alpha)

	text.Draw(screen, txt, basicFace(), opt)

}
