package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

var _ Camera = (*MockCamera)(nil)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("ReadFrame() after sequence error = %v, want ErrNoMoreFrames", err)
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_Blank(t *testing.T) {
	cam := NewBlankCamera()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Fatalf("ReadFrame() on closed camera error = %v, want ErrCameraNotOpen", err)
	}

	cam.Open()
	defer cam.Close()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer f.Close()
	if f.Empty() {
		t.Error("blank frame should not be empty")
	}
	if cam.Opens() != 1 {
		t.Errorf("Opens() = %d, want 1", cam.Opens())
	}
}

func TestMockCamera_OpenError(t *testing.T) {
	cam := NewBlankCamera()
	want := errors.New("device busy")
	cam.SetOpenError(want)

	if err := cam.Open(); !errors.Is(err, want) {
		t.Fatalf("Open() error = %v, want %v", err, want)
	}
	if cam.IsOpen() {
		t.Error("camera should stay closed after failed Open")
	}

	cam.SetOpenError(nil)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !cam.IsOpen() {
		t.Error("camera should be open")
	}
}

func TestMockCamera_SetFPS(t *testing.T) {
	cam := NewBlankCamera()
	if cam.FPS() != DefaultFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), DefaultFPS)
	}
	cam.SetFPS(5)
	cam.SetFPS(0)
	if cam.FPS() != 5 {
		t.Errorf("FPS() = %d, want 5", cam.FPS())
	}
}

func TestMockCamera_Flicker(t *testing.T) {
	cam, release := NewFlickerCamera()
	defer release()

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	md := NewMotionDetector(0)
	defer md.Close()

	for i := 0; i < 4; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		motion, _ := md.Detect(f)
		f.Close()

		if i == 0 && motion {
			t.Error("first frame has no baseline and should not be motion")
		}
		if i > 0 && !motion {
			t.Errorf("frame %d should be motion", i)
		}
	}
}
