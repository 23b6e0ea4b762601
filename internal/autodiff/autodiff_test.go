package autodiff_test

import (
	"math"
	"testing"

	"github.com/ivimnet/ivimnet/internal/autodiff"
	"github.com/ivimnet/ivimnet/internal/parallel"
	"gonum.org/v1/gonum/mat"
)

// TestBackend_Name tests the Name method.
func TestBackend_Name(t *testing.T) {
	backend := autodiff.New()
	expected := "Autodiff(gonum)"
	if backend.Name() != expected {
		t.Errorf("Name() = %s, want %s", backend.Name(), expected)
	}
}

// TestTape_Recording tests tape recording on/off.
func TestTape_Recording(t *testing.T) {
	tape := autodiff.New().Tape()

	if tape.IsRecording() {
		t.Error("Tape should not be recording initially")
	}

	tape.StartRecording()
	if !tape.IsRecording() {
		t.Error("Tape should be recording after StartRecording()")
	}

	tape.StopRecording()
	if tape.IsRecording() {
		t.Error("Tape should not be recording after StopRecording()")
	}
}

// TestTape_Clear tests tape clearing.
func TestTape_Clear(t *testing.T) {
	backend := autodiff.New()
	tape := backend.Tape()
	tape.StartRecording()

	x := mat.NewDense(1, 2, []float64{1, 2})
	row := mat.NewDense(1, 2, []float64{3, 4})
	backend.AddRow(x, row)

	if tape.NumOps() == 0 {
		t.Error("Tape should have recorded operations")
	}

	tape.Clear()
	if tape.NumOps() != 0 {
		t.Errorf("Tape should be empty after Clear(), got %d ops", tape.NumOps())
	}
	// Clearing between batches keeps the tape recording.
	if !tape.IsRecording() {
		t.Error("Tape should still be recording after Clear()")
	}
}

// TestBackend_NoRecording tests that operations are not recorded when disabled.
func TestBackend_NoRecording(t *testing.T) {
	backend := autodiff.New()

	x := mat.NewDense(2, 2, []float64{-1, 2, 3, -4})
	backend.Abs(x)
	backend.ELU(x, 1)

	if backend.Tape().NumOps() != 0 {
		t.Errorf("Expected 0 ops while not recording, got %d", backend.Tape().NumOps())
	}
}

// TestMatMulTrans_Forward tests x @ wᵀ.
func TestMatMulTrans_Forward(t *testing.T) {
	backend := autodiff.New()

	x := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	w := mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 1})
	got := backend.MatMulTrans(x, w)

	want := mat.NewDense(2, 2, []float64{1, 5, 4, 11})
	if !mat.Equal(got, want) {
		t.Errorf("MatMulTrans = %v, want %v", mat.Formatted(got), mat.Formatted(want))
	}
}

// TestAddRow_Backward tests that the bias gradient sums over the batch.
func TestAddRow_Backward(t *testing.T) {
	backend := autodiff.New()
	backend.Tape().StartRecording()

	x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	row := mat.NewDense(1, 2, []float64{10, 20})
	out := backend.AddRow(x, row)

	if out.At(2, 1) != 26 {
		t.Errorf("out[2,1] = %v, want 26", out.At(2, 1))
	}

	grads := backend.Backward(out)
	gradRow := grads[row]
	if gradRow.At(0, 0) != 3 || gradRow.At(0, 1) != 3 {
		t.Errorf("grad_row = %v, want [3 3]", mat.Formatted(gradRow))
	}
	if !mat.Equal(grads[x], mat.NewDense(3, 2, []float64{1, 1, 1, 1, 1, 1})) {
		t.Errorf("grad_x = %v, want ones", mat.Formatted(grads[x]))
	}
}

// TestELU_Forward tests both branches of ELU.
func TestELU_Forward(t *testing.T) {
	backend := autodiff.New()

	x := mat.NewDense(1, 3, []float64{-1, 0, 2})
	got := backend.ELU(x, 1)

	want := []float64{math.Exp(-1) - 1, 0, 2}
	for j, w := range want {
		if math.Abs(got.At(0, j)-w) > 1e-12 {
			t.Errorf("elu[%d] = %v, want %v", j, got.At(0, j), w)
		}
	}
}

// TestELU_Backward tests the ELU derivative.
func TestELU_Backward(t *testing.T) {
	backend := autodiff.New()
	backend.Tape().StartRecording()

	x := mat.NewDense(1, 2, []float64{-2, 3})
	y := backend.ELU(x, 1)
	grads := backend.Backward(y)

	if got, want := grads[x].At(0, 0), math.Exp(-2); math.Abs(got-want) > 1e-12 {
		t.Errorf("d elu/dx at -2 = %v, want %v", got, want)
	}
	if got := grads[x].At(0, 1); got != 1 {
		t.Errorf("d elu/dx at 3 = %v, want 1", got)
	}
}

// TestAbs_Backward tests the sign gradient of |x|.
func TestAbs_Backward(t *testing.T) {
	backend := autodiff.New()
	backend.Tape().StartRecording()

	x := mat.NewDense(1, 3, []float64{-2, 0, 5})
	y := backend.Abs(x)
	if y.At(0, 0) != 2 || y.At(0, 2) != 5 {
		t.Errorf("Abs = %v", mat.Formatted(y))
	}

	grads := backend.Backward(y)
	want := []float64{-1, 0, 1}
	for j, w := range want {
		if grads[x].At(0, j) != w {
			t.Errorf("grad[%d] = %v, want %v", j, grads[x].At(0, j), w)
		}
	}
}

// TestMSE tests the loss value and its gradient.
func TestMSE(t *testing.T) {
	backend := autodiff.New()
	backend.Tape().StartRecording()

	pred := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	target := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	loss := backend.MSE(pred, target)

	// (0 + 1 + 4 + 9) / 4
	if got := loss.At(0, 0); got != 3.5 {
		t.Errorf("MSE = %v, want 3.5", got)
	}

	grads := backend.Backward(loss)
	want := mat.NewDense(2, 2, []float64{0, 0.5, 1, 1.5})
	if !mat.EqualApprox(grads[pred], want, 1e-12) {
		t.Errorf("grad_pred = %v, want %v", mat.Formatted(grads[pred]), mat.Formatted(want))
	}
}

// TestBackward_GradientAccumulation tests that a matrix used twice collects both gradients.
func TestBackward_GradientAccumulation(t *testing.T) {
	backend := autodiff.New()
	backend.Tape().StartRecording()

	x := mat.NewDense(1, 2, []float64{1, 2})
	// y = x + x, where the second operand is broadcast as a row.
	y := backend.AddRow(x, x)
	grads := backend.Backward(y)

	if grads[x].At(0, 0) != 2 || grads[x].At(0, 1) != 2 {
		t.Errorf("grad_x = %v, want [2 2]", mat.Formatted(grads[x]))
	}
}

// TestBackward_PanicsWithoutOps tests that an empty tape is reported.
func TestBackward_PanicsWithoutOps(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for empty tape")
		}
	}()
	backend := autodiff.New()
	backend.Backward(mat.NewDense(1, 1, []float64{1}))
}

// TestBackend_ParallelMatchesSequential tests that splitting rows does not change results.
func TestBackend_ParallelMatchesSequential(t *testing.T) {
	const rows, cols = 64, 5
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.Sin(float64(i)) * 3
	}
	x := mat.NewDense(rows, cols, data)

	seq := autodiff.NewWithConfig(parallel.Sequential())
	par := autodiff.NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkRow: 4})

	if !mat.Equal(seq.ELU(x, 1), par.ELU(x, 1)) {
		t.Error("ELU differs between sequential and parallel execution")
	}
	if !mat.Equal(seq.Abs(x), par.Abs(x)) {
		t.Error("Abs differs between sequential and parallel execution")
	}
}
