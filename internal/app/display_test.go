package app

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/imu_conditioner/internal/imu"
	"github.com/relabs-tech/imu_conditioner/internal/orientation"
)

func litPixels(img *image1bit.VerticalLSB, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestDisplayLinesWaiting(t *testing.T) {
	d := &displayData{}
	assert.Equal(t, []string{"IMU conditioner", "Waiting..."}, d.displayLines())
}

func TestDisplayLines(t *testing.T) {
	d := &displayData{}
	d.setPose(orientation.Pose{Roll: 1.3, Pitch: -3.5})
	d.setHeading(imu.Heading{Angle: 92.34, AngleRate: -1.5})
	d.setSample(imu.Sample{TempF: 77, Available: true})

	assert.Equal(t, []string{
		"R   1.3 P  -3.5",
		"HDG     92.3",
		"RATE   -1.5/s",
		"T  77.0F OK",
	}, d.displayLines())

	d.setSample(imu.Sample{TempF: 77})
	assert.Equal(t, "T  77.0F N/A", d.displayLines()[3])
}

func TestDisplayLinesPartial(t *testing.T) {
	d := &displayData{}
	d.setHeading(imu.Heading{Angle: 5})

	lines := d.displayLines()
	require.Len(t, lines, 3)
	assert.Equal(t, "R   --- P   ---", lines[0])
}

func TestRenderLines(t *testing.T) {
	img := renderLines([]string{"", "HDG"})

	assert.Equal(t, image.Rect(0, 0, screenWidth, screenHeight), img.Bounds())
	assert.Zero(t, litPixels(img, image.Rect(0, 0, screenWidth, lineHeight-3)))
	assert.NotZero(t, litPixels(img, image.Rect(0, lineHeight, screenWidth, 2*lineHeight)))
}

func TestRenderLinesClipsRows(t *testing.T) {
	rows := []string{"A", "B", "C", "D", "E", "F"}
	assert.Equal(t, litPixels(renderLines(rows[:4]), image.Rect(0, 0, screenWidth, screenHeight)),
		litPixels(renderLines(rows), image.Rect(0, 0, screenWidth, screenHeight)))
}

type fakeScreen struct {
	mu    sync.Mutex
	draws int
}

func (s *fakeScreen) Bounds() image.Rectangle { return image.Rect(0, 0, screenWidth, screenHeight) }

func (s *fakeScreen) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	s.mu.Lock()
	s.draws++
	s.mu.Unlock()
	return nil
}

func (s *fakeScreen) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

func TestRunDisplayLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dev := &fakeScreen{}
	done := make(chan struct{})
	go func() {
		runDisplayLoop(ctx, dev, &displayData{}, time.Millisecond, zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool { return dev.count() >= 3 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
