package wgpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/aaalloc/sviet/scene"
	"github.com/aaalloc/sviet/scene/bvh"
	"github.com/aaalloc/sviet/types"
)

func TestAsBytesSlice(t *testing.T) {
	nodes := []bvh.Node{
		{Min: types.XYZ(1, 2, 3), Data: 42, Max: types.XYZ(4, 5, 6), Count: 1},
		{Min: types.XYZ(-1, -2, -3), Data: 7, Max: types.XYZ(0, 0, 0), Count: 0},
	}

	data := asBytes(nodes)
	if len(data) != 64 {
		t.Fatalf("expected 64 bytes for 2 nodes; got %d", len(data))
	}

	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])); got != 1 {
		t.Fatalf("expected min.x == 1; got %f", got)
	}
	if got := binary.LittleEndian.Uint32(data[12:16]); got != 42 {
		t.Fatalf("expected data word 42; got %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != 1 {
		t.Fatalf("expected count 1; got %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[32+12 : 32+16]); got != 7 {
		t.Fatalf("expected second node data word 7; got %d", got)
	}
}

func TestAsBytesEmptySlice(t *testing.T) {
	if data := asBytes([]scene.Sphere{}); data != nil {
		t.Fatalf("expected nil view for empty slice; got %d bytes", len(data))
	}
}

func TestAsBytesStructValue(t *testing.T) {
	param := scene.RenderParam{
		SamplesMaxPerPixel: 100,
		SamplesPerPixel:    4,
		TotalSamples:       16,
		ClearSamples:       1,
		MaxDepth:           50,
	}

	data := asBytes(param)
	if len(data) != 20 {
		t.Fatalf("expected 20 bytes; got %d", len(data))
	}
	for i, want := range []uint32{100, 4, 16, 1, 50} {
		if got := binary.LittleEndian.Uint32(data[i*4 : i*4+4]); got != want {
			t.Fatalf("field %d: expected %d; got %d", i, want, got)
		}
	}
}

func TestAsBytesStructPointer(t *testing.T) {
	frame := &scene.FrameData{Width: 640, Height: 480, Index: 3}

	data := asBytes(frame)
	if len(data) != 12 {
		t.Fatalf("expected 12 bytes; got %d", len(data))
	}
	if got := binary.LittleEndian.Uint32(data[0:4]); got != 640 {
		t.Fatalf("expected width 640; got %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[8:12]); got != 3 {
		t.Fatalf("expected index 3; got %d", got)
	}
}

func TestGpuStructSizes(t *testing.T) {
	cases := []struct {
		name string
		data interface{}
		size int
	}{
		{"sphere", scene.Sphere{}, 32},
		{"triangle", scene.Triangle{}, 96},
		{"material", scene.GpuMaterial{}, 48},
		{"camera", scene.Camera{}.Pack(1, 1), 96},
		{"object", scene.Object{}, 16},
		{"bvh node", bvh.Node{}, 32},
	}

	for _, tc := range cases {
		if got := len(asBytes(tc.data)); got != tc.size {
			t.Fatalf("%s: expected %d bytes; got %d", tc.name, tc.size, got)
		}
	}
}
