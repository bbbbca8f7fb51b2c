package codebook

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/codebook/blobstore"
	"github.com/hupe1980/codebook/distance"
	"github.com/hupe1980/codebook/lbg"
	"github.com/hupe1980/codebook/persistence"
	"github.com/hupe1980/codebook/resource"
	"github.com/hupe1980/codebook/stats"
	"github.com/hupe1980/codebook/vq"
)

// Result holds the output of a training run.
type Result struct {
	// Codebook is the trained codebook, finalSize x dim.
	Codebook [][]float64

	// Assignments maps each training vector to its nearest codeword.
	Assignments []int

	// Distortion is the mean distance between training vectors and their
	// assigned codewords.
	Distortion float64
}

// Report summarizes cluster quality for a training result.
type Report struct {
	// Occupancy holds the number of training vectors assigned to each
	// codeword.
	Occupancy []int

	// EmptyClusters lists codeword indices with no assigned vectors.
	EmptyClusters []int

	// Spread holds the per-dimension standard deviation of each cluster.
	// Entries for empty clusters are nil.
	Spread [][]float64
}

// Designer trains, evaluates and publishes vector quantization codebooks.
//
// A Designer is safe for sequential reuse; concurrent Design calls on the
// same Designer are not supported because the trainer keeps per-run state.
type Designer struct {
	dim         int
	initialSize int
	targetSize  int
	o           options
	trainer     *lbg.LBG
	quantizer   *vq.Quantizer
	calc        *distance.Calculator
}

// NewDesigner creates a Designer for codebooks over vectors of length dim,
// growing from initialSize to at least targetSize entries.
func NewDesigner(dim, initialSize, targetSize int, optFns ...Option) (*Designer, error) {
	if dim < 1 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", dim)
	}

	o := applyOptions(optFns)

	lbgOpts := append([]lbg.Option{}, o.lbgOptions...)
	lbgOpts = append(lbgOpts, lbg.WithLogger(o.logger.Logger))

	trainer, err := lbg.New(dim-1, initialSize, targetSize, lbgOpts...)
	if err != nil {
		return nil, err
	}

	quantizer, err := vq.NewQuantizer(dim-1, o.metric)
	if err != nil {
		return nil, err
	}

	calc, err := distance.NewCalculator(dim-1, o.metric)
	if err != nil {
		return nil, err
	}

	return &Designer{
		dim:         dim,
		initialSize: initialSize,
		targetSize:  targetSize,
		o:           o,
		trainer:     trainer,
		quantizer:   quantizer,
		calc:        calc,
	}, nil
}

// Dim returns the vector dimension.
func (d *Designer) Dim() int {
	return d.dim
}

// FinalCodebookSize returns the codebook size a successful run produces.
func (d *Designer) FinalCodebookSize() int {
	return d.trainer.FinalCodebookSize()
}

// Design trains a codebook from scratch. The initial codeword is the
// centroid of the training set, so Design requires initialSize == 1.
// For larger initial codebooks use DesignFrom with an explicit seed.
func (d *Designer) Design(ctx context.Context, trainingVectors [][]float64) (*Result, error) {
	if err := d.validateTraining(trainingVectors); err != nil {
		return nil, err
	}
	if d.initialSize != 1 {
		return nil, ErrSeedRequired
	}

	centroid, err := d.centroid(trainingVectors)
	if err != nil {
		return nil, err
	}

	return d.run(ctx, trainingVectors, [][]float64{centroid})
}

// DesignFrom trains a codebook starting from an explicit seed codebook of
// initialSize entries.
func (d *Designer) DesignFrom(ctx context.Context, trainingVectors, seedCodebook [][]float64) (*Result, error) {
	if err := d.validateTraining(trainingVectors); err != nil {
		return nil, err
	}
	return d.run(ctx, trainingVectors, seedCodebook)
}

func (d *Designer) validateTraining(trainingVectors [][]float64) error {
	if len(trainingVectors) == 0 {
		return ErrNoTrainingData
	}
	for _, v := range trainingVectors {
		if len(v) != d.dim {
			return &ErrDimensionMismatch{Expected: d.dim, Actual: len(v)}
		}
	}
	return nil
}

func (d *Designer) centroid(trainingVectors [][]float64) ([]float64, error) {
	acc, err := stats.New(d.dim-1, 1)
	if err != nil {
		return nil, err
	}

	var buf stats.Buffer
	acc.Clear(&buf)
	for _, v := range trainingVectors {
		if err := acc.Accumulate(v, &buf); err != nil {
			return nil, err
		}
	}
	return acc.Mean(&buf)
}

func (d *Designer) run(ctx context.Context, trainingVectors, seedCodebook [][]float64) (*Result, error) {
	if rc := d.o.controller; rc != nil {
		if err := rc.AcquireWorker(ctx); err != nil {
			return nil, err
		}
		defer rc.ReleaseWorker()
	}

	start := time.Now()
	codebook, assignments, err := d.trainer.Run(ctx, trainingVectors, seedCodebook)
	if err != nil {
		d.o.metricsCollector.RecordDesign(0, time.Since(start), err)
		d.o.logger.LogDesign(ctx, 0, len(trainingVectors), 0, err)
		return nil, err
	}

	distortion, err := d.distortion(trainingVectors, codebook, assignments)
	if err != nil {
		return nil, err
	}

	d.o.metricsCollector.RecordDesign(len(codebook), time.Since(start), nil)
	d.o.logger.LogDesign(ctx, len(codebook), len(trainingVectors), distortion, nil)

	return &Result{
		Codebook:    codebook,
		Assignments: assignments,
		Distortion:  distortion,
	}, nil
}

func (d *Designer) distortion(trainingVectors, codebook [][]float64, assignments []int) (float64, error) {
	var total float64
	for i, v := range trainingVectors {
		dist, err := d.calc.Distance(v, codebook[assignments[i]])
		if err != nil {
			return 0, err
		}
		total += dist
	}
	return total / float64(len(trainingVectors)), nil
}

// Encode maps each input vector to the index of its nearest codeword.
func (d *Designer) Encode(ctx context.Context, vecs, codebook [][]float64) ([]int, error) {
	start := time.Now()
	assignments, err := d.quantizer.EncodeBatch(ctx, vecs, codebook, d.o.encodeWorkers)
	d.o.metricsCollector.RecordEncode(len(vecs), time.Since(start), err)
	d.o.logger.LogEncode(ctx, len(vecs), err)
	return assignments, err
}

// Report computes cluster occupancy and per-cluster spread for a result.
// trainingVectors must be the set the result was trained on.
func (d *Designer) Report(trainingVectors [][]float64, result *Result) (*Report, error) {
	lists, err := vq.BuildInvertedLists(result.Assignments, len(result.Codebook))
	if err != nil {
		return nil, err
	}

	acc, err := stats.New(d.dim-1, 2)
	if err != nil {
		return nil, err
	}

	spread := make([][]float64, len(result.Codebook))
	var buf stats.Buffer
	for i := range result.Codebook {
		if lists.Cardinality(i) == 0 {
			continue
		}
		acc.Clear(&buf)
		it := lists.List(i).Iterator()
		for it.HasNext() {
			if err := acc.Accumulate(trainingVectors[int(it.Next())], &buf); err != nil {
				return nil, err
			}
		}
		sd, err := acc.StandardDeviation(&buf)
		if err != nil {
			return nil, err
		}
		spread[i] = sd
	}

	return &Report{
		Occupancy:     lists.Occupancy(),
		EmptyClusters: lists.EmptyLists(),
		Spread:        spread,
	}, nil
}

// SaveSnapshot writes the trained codebook to a snapshot file. The write is
// atomic: the snapshot appears under its final name only when complete.
func (d *Designer) SaveSnapshot(filename string, result *Result) error {
	start := time.Now()
	err := persistence.SaveToFile(filename, func(w io.Writer) error {
		return persistence.WriteCodebook(w, result.Codebook, d.o.metric, d.o.compression)
	})
	d.o.metricsCollector.RecordSnapshot(time.Since(start), err)
	d.o.logger.LogSnapshot(context.Background(), filename, err)
	return err
}

// LoadSnapshot reads a codebook snapshot written by SaveSnapshot and checks
// that it matches the Designer's order and metric.
func (d *Designer) LoadSnapshot(filename string) ([][]float64, error) {
	var codebook [][]float64
	var metric distance.Metric

	err := persistence.LoadFromFile(filename, func(r io.Reader) error {
		var err error
		codebook, metric, err = persistence.ReadCodebook(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	if metric != d.o.metric {
		return nil, fmt.Errorf("snapshot metric %s does not match designer metric %s", metric, d.o.metric)
	}
	if len(codebook) > 0 && len(codebook[0]) != d.dim {
		return nil, &ErrDimensionMismatch{Expected: d.dim, Actual: len(codebook[0])}
	}
	return codebook, nil
}

// Publish uploads the codebook snapshot and assignment table to a blob
// store under "<name>.cbk" and "<name>.asn". Uploads honor the configured
// resource controller's IO limit.
func (d *Designer) Publish(ctx context.Context, store blobstore.Store, name string, result *Result) error {
	start := time.Now()

	written, err := d.publish(ctx, store, name, result)

	d.o.metricsCollector.RecordPublish(written, time.Since(start), err)
	d.o.logger.LogPublish(ctx, name, written, err)
	return err
}

func (d *Designer) publish(ctx context.Context, store blobstore.Store, name string, result *Result) (int64, error) {
	var written int64

	n, err := d.upload(ctx, store, name+".cbk", func(w io.Writer) error {
		return persistence.WriteCodebook(w, result.Codebook, d.o.metric, d.o.compression)
	})
	written += n
	if err != nil {
		return written, err
	}

	n, err = d.upload(ctx, store, name+".asn", func(w io.Writer) error {
		return persistence.WriteAssignments(w, result.Assignments)
	})
	written += n
	return written, err
}

func (d *Designer) upload(ctx context.Context, store blobstore.Store, name string, writeFunc func(io.Writer) error) (int64, error) {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: blob}
	var dst io.Writer = cw
	if d.o.controller != nil {
		dst = resource.NewRateLimitedWriter(ctx, cw, d.o.controller)
	}

	if err := writeFunc(dst); err != nil {
		blob.Close()
		return cw.n, err
	}
	return cw.n, blob.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
