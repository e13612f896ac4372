package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ironsheep/ocr-gateway/internal/imaging"
)

// fakeEngine returns canned tokens and records how often and with what it
// was called.
type fakeEngine struct {
	tokens []Token
	err    error
	delay  time.Duration
	panics bool
	calls  atomic.Int32
	last   []byte
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, img []byte) ([]Token, error) {
	f.calls.Add(1)
	f.last = img
	if f.panics {
		panic("engine exploded")
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.tokens, f.err
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func TestRecognize(t *testing.T) {
	engine := &fakeEngine{tokens: []Token{{"Hello", 90}, {"", -1}, {"World", 80}}}
	r := NewRecognizer(engine, time.Second, imaging.PreprocessOptions{})

	data := pngBytes(t, 64, 32)
	result, err := r.Recognize(context.Background(), data)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if result.Text != "Hello World" {
		t.Errorf("expected 'Hello World', got %q", result.Text)
	}
	if result.Confidence != 0.85 {
		t.Errorf("expected 0.85, got %v", result.Confidence)
	}
	if result.Metadata.Width != 64 || result.Metadata.Height != 32 || result.Metadata.Format != "PNG" {
		t.Errorf("unexpected metadata: %+v", result.Metadata)
	}
	if !bytes.Equal(engine.last, data) {
		t.Error("without preprocessing the engine should receive the original bytes")
	}
}

func TestRecognize_NormalizesText(t *testing.T) {
	engine := &fakeEngine{tokens: []Token{{"multi\n\nline", 70}, {"word", 70}}}
	r := NewRecognizer(engine, time.Second, imaging.PreprocessOptions{})

	result, err := r.Recognize(context.Background(), pngBytes(t, 8, 8))
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "multi line word" {
		t.Errorf("expected normalized text, got %q", result.Text)
	}
}

func TestRecognize_Preprocess(t *testing.T) {
	engine := &fakeEngine{}
	r := NewRecognizer(engine, time.Second, imaging.PreprocessOptions{Scale: 2})

	result, err := r.Recognize(context.Background(), pngBytes(t, 10, 10))
	if err != nil {
		t.Fatal(err)
	}

	// Metadata describes the upload, not the preprocessed image
	if result.Metadata.Width != 10 {
		t.Errorf("expected original width 10, got %d", result.Metadata.Width)
	}
	_, info, err := imaging.Decode(engine.last)
	if err != nil {
		t.Fatalf("engine received undecodable bytes: %v", err)
	}
	if info.Width != 20 {
		t.Errorf("engine should see the upscaled image, got width %d", info.Width)
	}
}

func TestRecognize_Unreadable(t *testing.T) {
	engine := &fakeEngine{}
	r := NewRecognizer(engine, time.Second, imaging.PreprocessOptions{})

	_, err := r.Recognize(context.Background(), []byte("definitely not an image"))
	if !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("expected ErrUnreadableImage, got %v", err)
	}
	if !IsUnreadable(err) {
		t.Error("IsUnreadable should report true")
	}
	if engine.calls.Load() != 0 {
		t.Error("engine must not be called for unreadable input")
	}
}

func TestRecognize_PixelLimit(t *testing.T) {
	engine := &fakeEngine{tokens: []Token{{"Hello", 90}}}
	r := NewRecognizer(engine, time.Second, imaging.PreprocessOptions{})
	r.SetMaxPixels(100)

	_, err := r.Recognize(context.Background(), pngBytes(t, 20, 10))
	if !IsUnreadable(err) {
		t.Fatalf("expected unreadable error, got %v", err)
	}
	if !errors.Is(err, imaging.ErrTooManyPixels) {
		t.Errorf("expected ErrTooManyPixels in chain, got %v", err)
	}
	if engine.calls.Load() != 0 {
		t.Error("engine must not be called for oversized input")
	}

	if _, err := r.Recognize(context.Background(), pngBytes(t, 10, 10)); err != nil {
		t.Errorf("image at the limit should pass: %v", err)
	}
}

func TestRecognize_EngineError(t *testing.T) {
	engine := &fakeEngine{err: errors.New("tesseract init failed")}
	r := NewRecognizer(engine, time.Second, imaging.PreprocessOptions{})

	_, err := r.Recognize(context.Background(), pngBytes(t, 8, 8))
	var perr *ProcessingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProcessingError, got %T: %v", err, err)
	}
	if perr.Error() != "tesseract init failed" {
		t.Errorf("message should be preserved, got %q", perr.Error())
	}
	if IsUnreadable(err) {
		t.Error("engine failure must not be classified as unreadable")
	}
}

func TestRecognize_Timeout(t *testing.T) {
	engine := &fakeEngine{delay: 500 * time.Millisecond}
	r := NewRecognizer(engine, 20*time.Millisecond, imaging.PreprocessOptions{})

	start := time.Now()
	_, err := r.Recognize(context.Background(), pngBytes(t, 8, 8))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	var perr *ProcessingError
	if !errors.As(err, &perr) {
		t.Error("timeout should be a processing error")
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("Recognize should return at the timeout, took %s", elapsed)
	}
}

func TestRecognize_Panic(t *testing.T) {
	engine := &fakeEngine{panics: true}
	r := NewRecognizer(engine, time.Second, imaging.PreprocessOptions{})

	_, err := r.Recognize(context.Background(), pngBytes(t, 8, 8))
	var perr *ProcessingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProcessingError after panic, got %v", err)
	}
}

func TestNewRecognizer_DefaultTimeout(t *testing.T) {
	r := NewRecognizer(&fakeEngine{}, 0, imaging.PreprocessOptions{})
	if r.timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %s", r.timeout)
	}
	if r.Engine().Name() != "fake" {
		t.Errorf("unexpected engine %q", r.Engine().Name())
	}
}
