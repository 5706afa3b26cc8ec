package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"image"
	"image/png"
	"math/big"
	mathrand "math/rand"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/smartvoting/backend/internal/session"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	captchaLength  = 5
	captchaWidth   = 200
	captchaHeight  = 70
	captchaCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// smoothKernel matches the classic 3x3 smoothing filter (centre weight 5).
var smoothKernel = [9]float64{1, 1, 1, 1, 5, 1, 1, 1, 1}

// CaptchaService issues single-use image challenges bound to a session id.
type CaptchaService struct {
	store session.Store
	ttl   time.Duration
	face  font.Face
}

func NewCaptchaService(store session.Store, ttl time.Duration) (*CaptchaService, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse captcha font: %w", err)
	}
	return &CaptchaService{
		store: store,
		ttl:   ttl,
		face:  truetype.NewFace(f, &truetype.Options{Size: 36}),
	}, nil
}

// GenerateCaptchaText returns n characters drawn from [A-Z0-9].
func GenerateCaptchaText(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(captchaCharset)))
	for i := range out {
		idx, _ := rand.Int(rand.Reader, max)
		out[i] = captchaCharset[idx.Int64()]
	}
	return string(out)
}

// Issue stores a fresh answer for sid and returns the challenge as PNG.
func (s *CaptchaService) Issue(ctx context.Context, sid string) ([]byte, error) {
	text := GenerateCaptchaText(captchaLength)
	if err := s.store.SetCaptcha(ctx, sid, text, s.ttl); err != nil {
		return nil, fmt.Errorf("store captcha: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Render(text)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Check compares input case-insensitively with the stored answer. It fails
// when no captcha was issued for sid.
func (s *CaptchaService) Check(ctx context.Context, sid, input string) (bool, error) {
	want, err := s.store.Captcha(ctx, sid)
	if err != nil {
		return false, err
	}
	if want == "" {
		return false, nil
	}
	return strings.ToUpper(strings.TrimSpace(input)) == want, nil
}

// Consume invalidates the stored answer after a successful registration.
func (s *CaptchaService) Consume(ctx context.Context, sid string) error {
	return s.store.ClearCaptcha(ctx, sid)
}

// Render draws text over noise lines and points, then smooths the result.
func (s *CaptchaService) Render(text string) image.Image {
	dc := gg.NewContext(captchaWidth, captchaHeight)
	dc.SetRGB255(255, 255, 255)
	dc.Clear()

	dc.SetRGB255(200, 200, 200)
	dc.SetLineWidth(1)
	for i := 0; i < 6; i++ {
		dc.DrawLine(
			float64(mathrand.Intn(captchaWidth+1)), float64(mathrand.Intn(captchaHeight+1)),
			float64(mathrand.Intn(captchaWidth+1)), float64(mathrand.Intn(captchaHeight+1)))
		dc.Stroke()
	}

	dc.SetFontFace(s.face)
	x := 12.0
	for _, ch := range text {
		y := float64(6 + mathrand.Intn(13))
		dc.SetRGB255(10+mathrand.Intn(71), 10+mathrand.Intn(71), 10+mathrand.Intn(71))
		dc.DrawStringAnchored(string(ch), x, y, 0, 1)
		x += 34
	}

	for i := 0; i < 120; i++ {
		dc.SetRGB255(mathrand.Intn(256), mathrand.Intn(256), mathrand.Intn(256))
		dc.SetPixel(mathrand.Intn(captchaWidth), mathrand.Intn(captchaHeight))
	}

	return imaging.Convolve3x3(dc.Image(), smoothKernel, &imaging.ConvolveOptions{Normalize: true})
}
