// Package dlib adapts github.com/Kagami/go-face to face.Encoder.
//
// It needs the dlib models shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat and mmod_human_face_detector.dat
// in the configured models directory.
package dlib

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"sync"

	goface "github.com/Kagami/go-face"
	"github.com/smartvoting/backend/internal/face"
)

type Recognizer struct {
	mu  sync.Mutex
	rec *goface.Recognizer
}

var _ face.Encoder = (*Recognizer)(nil)

func New(modelsDir string) (*Recognizer, error) {
	rec, err := goface.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("load face models from %s: %w", modelsDir, err)
	}
	log.Printf("[FACE] Recognizer loaded from %s", modelsDir)
	return &Recognizer{rec: rec}, nil
}

// Encode returns one descriptor per detected face. Input may be JPEG, PNG or
// GIF; dlib only reads JPEG so other formats are re-encoded first.
func (r *Recognizer) Encode(ctx context.Context, img []byte) ([]face.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := toJPEG(img)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	faces, err := r.rec.Recognize(data)
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	out := make([]face.Descriptor, 0, len(faces))
	for _, f := range faces {
		d := make(face.Descriptor, len(f.Descriptor))
		copy(d, f.Descriptor[:])
		out = append(out, d)
	}
	return out, nil
}

func (r *Recognizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec.Close()
}

func toJPEG(img []byte) ([]byte, error) {
	decoded, format, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "jpeg" {
		return img, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
