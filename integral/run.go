package integral

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/notargets/FractureKernel/comm"
	"github.com/notargets/FractureKernel/crackfront"
	"github.com/notargets/FractureKernel/fields"
	"github.com/notargets/FractureKernel/logging"
	"github.com/notargets/FractureKernel/mesh"
	"github.com/notargets/FractureKernel/partitions"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/ptr"
)

// Run evaluates the integral with one processing unit per partition of
// layout and returns the value agreed on by all units. A nil layout runs a
// single unit over the whole mesh.
func Run(ctx context.Context, cfg Config, front crackfront.Definition, msh *mesh.Mesh,
	provider fields.Provider, layout *partitions.PartitionLayout, opts ...Option) (float64, error) {
	ctx, span := otel.Tracer("integral").Start(ctx, "integral.Run",
		trace.WithAttributes(
			attribute.Int("point", ptr.Deref(cfg.PointIndex, 0)),
			attribute.Int("ring", cfg.RingIndex),
			attribute.String("q_function", cfg.QFunction.String()),
		),
	)
	defer span.End()
	start := time.Now()
	log := logr.FromContextOrDiscard(ctx)

	numUnits := 1
	if layout != nil {
		numUnits = len(layout.Partitions)
	}
	if numUnits == 0 {
		return 0, fmt.Errorf("partition layout has no partitions")
	}

	// every unit is set up before any of them integrates
	units := make([]*Evaluator, numUnits)
	for i := range units {
		unitOpts := append([]Option{}, opts...)
		if layout != nil {
			unitOpts = append(unitOpts, WithElements(layout.Partitions[i].Elements))
		}
		u, err := New(cfg, front, msh, provider, unitOpts...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
		u.InitialSetup()
		units[i] = u
	}
	log.V(logging.DEBUG).Info("interaction integral setup", "units", len(units),
		"point", units[0].point, "ring", cfg.RingIndex, "qFunction", cfg.QFunction.String(),
		"twoDimensional", units[0].acc.TreatAs2D)

	group, err := comm.NewGroup(len(units))
	if err != nil {
		return 0, err
	}
	results := make([]float64, len(units))
	g, gctx := errgroup.WithContext(ctx)
	for rank, u := range units {
		g.Go(func() error {
			c, err := group.Comm(rank)
			if err != nil {
				group.Abort(err)
				return err
			}
			if err = u.Execute(gctx); err != nil {
				group.Abort(err)
				return err
			}
			results[rank], err = u.GetValue(c)
			return err
		})
	}
	if err = g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	units[0].metrics.observeRun(cfg.QFunction, time.Since(start).Seconds())
	span.SetAttributes(attribute.Float64("value", results[0]))
	return results[0], nil
}

// Sweep evaluates every ring of rings at every front point of points and
// returns the values indexed [point][ring]. cfg.PointIndex and
// cfg.RingIndex are overridden.
func Sweep(ctx context.Context, cfg Config, front crackfront.Definition, msh *mesh.Mesh,
	provider fields.Provider, layout *partitions.PartitionLayout, points, rings []int,
	opts ...Option) ([][]float64, error) {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = make([]float64, len(rings))
		for j, r := range rings {
			c := cfg
			c.PointIndex = ptr.To(p)
			c.RingIndex = r
			v, err := Run(ctx, c, front, msh, provider, layout, opts...)
			if err != nil {
				return nil, fmt.Errorf("point %d ring %d: %w", p, r, err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}
