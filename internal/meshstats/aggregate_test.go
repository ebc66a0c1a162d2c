package meshstats

import (
	"testing"

	"glbstats/internal/mathutil"
	"glbstats/internal/mesh"
)

func unitBox() mesh.Mesh {
	return mesh.Box(mathutil.Vec3{0, 0, 0}, mathutil.Vec3{1, 1, 1})
}

func TestIsWatertight(t *testing.T) {
	box := unitBox()
	flipped := unitBox()
	flipped.Faces[0] = [3]int{flipped.Faces[0][0], flipped.Faces[0][2], flipped.Faces[0][1]}
	degenerate := unitBox()
	degenerate.Faces = append(degenerate.Faces, [3]int{0, 0, 1})

	tests := []struct {
		name string
		m    mesh.Mesh
		want bool
	}{
		{"closed box", box, true},
		{"open bottom", box.WithoutFaces(mesh.BoxBottom), false},
		{"inconsistent winding", flipped, false},
		{"degenerate face", degenerate, false},
		{"two disjoint boxes", mesh.Concatenate(box, mesh.Box(mathutil.Vec3{2, 0, 0}, mathutil.Vec3{3, 1, 1})), true},
		{"no faces", mesh.Mesh{}, true},
		{"duplicated face", mesh.Concatenate(box, mesh.Mesh{Faces: [][3]int{box.Faces[0]}}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWatertight(tt.m); got != tt.want {
				t.Errorf("IsWatertight = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeValidityClosedCube(t *testing.T) {
	v, err := AnalyzeValidity([]mesh.Mesh{unitBox()}, 1)
	if err != nil {
		t.Fatalf("AnalyzeValidity: %v", err)
	}
	if !*v.Watertight || *v.TriangleCount != 12 || *v.VolumeRatio != 1 || *v.PotentiallyInvalid {
		t.Errorf("validity = watertight %v, triangles %v, ratio %v, invalid %v",
			*v.Watertight, *v.TriangleCount, *v.VolumeRatio, *v.PotentiallyInvalid)
	}
}

func TestAnalyzeValidityOpenCube(t *testing.T) {
	open := unitBox().WithoutFaces(mesh.BoxBottom)
	v, err := AnalyzeValidity([]mesh.Mesh{open}, 1)
	if err != nil {
		t.Fatalf("AnalyzeValidity: %v", err)
	}
	if *v.Watertight {
		t.Error("open cube reported watertight")
	}
	if *v.TriangleCount != 10 {
		t.Errorf("triangles = %d, want 10", *v.TriangleCount)
	}
	if want := *v.VolumeRatio < MinFillRatio; *v.PotentiallyInvalid != want {
		t.Errorf("invalid = %v with ratio %v", *v.PotentiallyInvalid, *v.VolumeRatio)
	}
}

func TestAnalyzeValidityHollowShell(t *testing.T) {
	// Raised cube without its top: the signed volume cancels to zero.
	open := mesh.Box(mathutil.Vec3{0, 2, 0}, mathutil.Vec3{1, 3, 1}).WithoutFaces(mesh.BoxTop)
	v, err := AnalyzeValidity([]mesh.Mesh{open}, 1)
	if err != nil {
		t.Fatalf("AnalyzeValidity: %v", err)
	}
	if *v.VolumeRatio != 0 {
		t.Errorf("ratio = %v, want 0", *v.VolumeRatio)
	}
	if !*v.PotentiallyInvalid {
		t.Error("hollow open shell should be flagged")
	}
}

func TestAnalyzeValidityNoTriangles(t *testing.T) {
	v, err := AnalyzeValidity(nil, 1)
	if err != nil {
		t.Fatalf("AnalyzeValidity: %v", err)
	}
	if !*v.Watertight || *v.TriangleCount != 0 || v.VolumeRatio != nil || *v.PotentiallyInvalid {
		t.Errorf("validity = %+v", v)
	}
}

func TestAnalyzeValidityZeroBoxVolume(t *testing.T) {
	v, err := AnalyzeValidity([]mesh.Mesh{unitBox().WithoutFaces(mesh.BoxBottom)}, 0)
	if err != nil {
		t.Fatalf("AnalyzeValidity: %v", err)
	}
	if v.VolumeRatio != nil {
		t.Errorf("ratio = %v, want nil", *v.VolumeRatio)
	}
	if *v.PotentiallyInvalid {
		t.Error("nil ratio must not flag")
	}
}

func TestAnalyzeValidityDegradesOnFailure(t *testing.T) {
	broken := mesh.Mesh{
		Vertices: []mathutil.Vec3{{0, 0, 0}},
		Faces:    [][3]int{{0, 5, 9}},
	}
	v, err := AnalyzeValidity([]mesh.Mesh{broken}, 1)
	if err == nil {
		t.Fatal("expected error for out-of-range face")
	}
	if !v.Degraded() || v.VolumeRatio != nil {
		t.Errorf("validity not fully nil: %+v", v)
	}
}
