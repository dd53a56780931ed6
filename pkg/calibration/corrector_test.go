package calibration

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func constant(rows, cols int, v float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(rows, cols, data)
}

// TestCorrectIdentity checks that zero dark and unit flat leave the image unchanged
func TestCorrectIdentity(t *testing.T) {
	image := mat.NewDense(3, 4, []float64{
		0, 1, 2, 3,
		10, 20, 30, 40,
		255, 128, 64, 7,
	})

	out, err := Correct(image, constant(3, 4, 0), constant(3, 4, 1))
	if err != nil {
		t.Fatalf("Failed to correct image: %v", err)
	}
	if !mat.Equal(out, image) {
		t.Errorf("Expected identity correction, got\n%v", mat.Formatted(out))
	}
}

// TestCorrectValues checks the element-wise formula
func TestCorrectValues(t *testing.T) {
	image := mat.NewDense(2, 2, []float64{10, 20, 30, 40})
	dark := mat.NewDense(2, 2, []float64{2, 4, 6, 8})
	flat := mat.NewDense(2, 2, []float64{2, 4, 0.5, 0})

	out, err := Correct(image, dark, flat)
	if err != nil {
		t.Fatalf("Failed to correct image: %v", err)
	}

	expected := []float64{4, 4, 48}
	for i, want := range expected {
		if got := out.At(i/2, i%2); got != want {
			t.Errorf("Expected element %d = %v, got %v", i, want, got)
		}
	}
	if !math.IsInf(out.At(1, 1), 1) {
		t.Errorf("Expected +Inf for zero flat field, got %v", out.At(1, 1))
	}

	// inputs are not modified
	if image.At(0, 0) != 10 || dark.At(0, 0) != 2 {
		t.Error("Correct modified its inputs")
	}
}

// TestCorrectZeroOverZero yields NaN
func TestCorrectZeroOverZero(t *testing.T) {
	out, err := Correct(constant(1, 1, 5), constant(1, 1, 5), constant(1, 1, 0))
	if err != nil {
		t.Fatalf("Failed to correct image: %v", err)
	}
	if !math.IsNaN(out.At(0, 0)) {
		t.Errorf("Expected NaN, got %v", out.At(0, 0))
	}
}

// TestCorrectShapeMismatch rejects frames of a different shape
func TestCorrectShapeMismatch(t *testing.T) {
	image := constant(4, 4, 1)

	_, err := Correct(image, constant(4, 3, 0), constant(4, 4, 1))
	var sm *ShapeMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("Expected ShapeMismatchError, got %v", err)
	}
	if sm.Frame != "dark" || sm.FrameCols != 3 {
		t.Errorf("Unexpected mismatch details: %+v", sm)
	}

	_, err = Correct(image, constant(4, 4, 0), constant(3, 4, 1))
	if !errors.As(err, &sm) || sm.Frame != "flat" {
		t.Errorf("Expected flat ShapeMismatchError, got %v", err)
	}
}
