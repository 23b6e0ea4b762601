// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ivim estimates intravoxel incoherent motion parameters with a small
// feed-forward network and searches over the network depth.
//
// # Overview
//
// An estimator maps the normalised signals of a voxel, one per non-zero
// b-value, to three non-negative parameters: the pseudo-diffusion
// coefficient Dp, the tissue diffusion coefficient Dt and the perfusion
// fraction Fp. The reconstructor turns them back into signals with
//
//	S(b) = Fp·exp(−b·Dp) + (1−Fp)·exp(−b·Dt)
//
// and training minimises the mean squared error between reconstructed and
// observed signals. No ground truth parameters are needed.
//
// # Grid search
//
//	hp := ivim.DefaultConfig()
//	ds, err := ivim.Synthesize(hp.Phantom, hp.BValues, hp.Seed)
//	runner, err := ivim.NewRunner(hp, ds)
//	results, err := runner.Run(ctx)
//	fmt.Println(results.Table())
//
// Results are written to hp.Output after every cell; missing cells read back
// as NaN with a pending status.
//
// # Single fit
//
//	res, err := ivim.Fit(ctx, hp.Cell(0, 2), ds)
//	pred := res.Net.Forward(ds.X)
//	dp, dt, fp := pred.Dp(), pred.Dt(), pred.Fp()
package ivim
