// Command ivimgrid searches over the depth of an IVIM parameter estimator.
//
// For every run and every depth 0 … max-depth−1 it trains a fresh estimator
// until early stopping and records the best training loss. The results grid
// is rewritten after every cell, so an interrupted search can be resumed.
//
//	ivimgrid -synthetic -runs 10 -max-depth 10 -output gridsearch_layers.npz
//	ivimgrid -config search.yaml -data phantom.csv -plot loss.png
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/ivimnet/ivimnet/internal/config"
	"github.com/ivimnet/ivimnet/internal/data"
	"github.com/ivimnet/ivimnet/internal/gridsearch"
	"github.com/ivimnet/ivimnet/internal/train"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const version = "v0.1.0"

var (
	flagConfig      = flag.String("config", "", "YAML file with hyperparameters; flags override its values")
	flagWriteConfig = flag.String("write-config", "", "Write the effective hyperparameters to this YAML file and exit")
	flagData        = flag.String("data", "", "Phantom signals, .csv (columns b<value>) or .npz (array X)")
	flagSynthetic   = flag.Bool("synthetic", false, "Synthesise the phantom from the configured ranges even if a data file is set")
	flagOutput      = flag.String("output", "", "NPZ results file, rewritten after every cell")
	flagPlot        = flag.String("plot", "", "Save a plot of best loss versus depth to this file (.png, .svg, .pdf)")
	flagProgress    = flag.Bool("progress", true, "Show a progress bar for every cell")
	flagResume      = flag.Bool("resume", false, "Skip cells already completed in the output file")
	flagRuns        = flag.Int("runs", 0, "Number of repetitions of the search")
	flagMaxDepth    = flag.Int("max-depth", 0, "Depths 0 … max-depth−1 are searched")
	flagEpochs      = flag.Int("epochs", 0, "Epoch budget of every cell")
	flagPatience    = flag.Int("patience", 0, "Epochs without improvement before a cell stops")
	flagBatch       = flag.Int("batch", 0, "Batch size")
	flagLR          = flag.Float64("lr", 0, "Learning rate")
	flagSeed        = flag.Uint64("seed", 0, "Base random seed")
	flagVersion     = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *flagVersion {
		fmt.Printf("ivimgrid %s\n", version)
		return
	}

	hp := must.M1(hyperparameters())
	if *flagWriteConfig != "" {
		must.M(hp.Save(*flagWriteConfig))
		klog.Infof("Hyperparameters written to %s", *flagWriteConfig)
		return
	}

	ds := must.M1(dataset(hp))
	klog.Infof("Phantom: %s voxels, %d b-values %v", humanize.Comma(int64(ds.Len())), len(ds.BValues), ds.BValues)

	if dir := filepath.Dir(hp.Output); dir != "." {
		must.M(os.MkdirAll(dir, 0o755))
	}

	var opts []gridsearch.Option
	if *flagProgress {
		opts = append(opts, gridsearch.WithProgress(os.Stderr))
	}
	if *flagResume {
		if prev, err := gridsearch.LoadResults(hp.Output); err == nil {
			opts = append(opts, gridsearch.WithResume(prev))
		} else if !errors.Is(err, os.ErrNotExist) {
			klog.Exitf("Cannot resume from %s: %+v", hp.Output, err)
		}
	}
	opts = append(opts, gridsearch.WithCellHook(func(res *train.Result) {
		klog.Infof("Run %d, depth %d done: best loss %g (%s, %d epochs)",
			res.Run, res.Depth, res.BestLoss, res.Reason, res.Epochs)
	}))

	runner := must.M1(gridsearch.NewRunner(hp, ds, opts...))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	results, err := runner.Run(ctx)
	if results != nil {
		fmt.Println(results.Table())
		if d := results.BestDepth(); d >= 0 {
			fmt.Printf("Best depth: %d\n", d)
		}
		if *flagPlot != "" && results.Completed() > 0 {
			if perr := results.SavePlot(*flagPlot); perr != nil {
				klog.Errorf("Plot: %+v", perr)
			} else {
				klog.Infof("Plot saved to %s", *flagPlot)
			}
		}
	}
	if err != nil {
		klog.Exitf("Grid search stopped: %+v", err)
	}
}

// hyperparameters layers defaults, the optional YAML file and explicitly set
// flags, in that order.
func hyperparameters() (config.Hyperparameters, error) {
	hp := config.Default()
	if *flagConfig != "" {
		var err error
		if hp, err = config.Load(*flagConfig); err != nil {
			return hp, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			hp.DataFile = *flagData
		case "synthetic":
			if *flagSynthetic {
				hp.DataFile = ""
			}
		case "output":
			hp.Output = *flagOutput
		case "runs":
			hp.Runs = *flagRuns
		case "max-depth":
			hp.MaxDepth = *flagMaxDepth
		case "epochs":
			hp.Epochs = *flagEpochs
		case "patience":
			hp.Patience = *flagPatience
		case "batch":
			hp.BatchSize = *flagBatch
		case "lr":
			hp.LearningRate = *flagLR
		case "seed":
			hp.Seed = *flagSeed
		}
	})
	return hp, hp.Validate()
}

func dataset(hp config.Hyperparameters) (*data.Dataset, error) {
	if hp.DataFile != "" {
		return data.Load(hp.DataFile, hp.BValues)
	}
	klog.Infof("Synthesising phantom of %s voxels", humanize.Comma(int64(hp.Phantom.Samples)))
	// The phantom stream is kept apart from every cell stream.
	return data.Synthesize(hp.Phantom, hp.BValues, hp.Cell(-1, -1).Source())
}
