package main

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
)

// benchParams controls the synthetic workload.
type benchParams struct {
	size    int
	rounds  int
	churn   float64
	seed    uint64
	dupRate float64
}

func (a *app) benchCmd() *cobra.Command {
	var p benchParams

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure check throughput on random collections",
		Long: `Bench diffs a stream of randomly mutated collections and reports
checks per second and change counts.

Each round swaps, inserts and removes about churn*size items.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBench(cmd, p)
		},
	}

	cmd.Flags().IntVarP(&p.size, "size", "n", 1000, "Items per collection")
	cmd.Flags().IntVarP(&p.rounds, "rounds", "r", 200, "Number of checks")
	cmd.Flags().Float64Var(&p.churn, "churn", 0.05, "Fraction of items changed per round")
	cmd.Flags().Float64Var(&p.dupRate, "duplicates", 0, "Fraction of items that repeat another item")
	cmd.Flags().Uint64Var(&p.seed, "seed", 1, "Random seed")

	return cmd
}

func (a *app) runBench(cmd *cobra.Command, p benchParams) error {
	registry := prometheus.NewRegistry()
	metrics := middleware.Prometheus(middleware.WithRegistry(registry))
	d := differ.New(differ.WithObserver(middleware.Multi(metrics, middleware.Logging(a.logger))))

	rng := rand.New(rand.NewPCG(p.seed, p.seed^0x9e3779b97f4a7c15))
	items := benchItems(rng, p.size, p.dupRate)
	next := p.size

	var elapsed time.Duration
	for range p.rounds {
		start := time.Now()
		if _, err := d.Check(items); err != nil {
			return err
		}
		elapsed += time.Since(start)
		items, next = mutate(rng, items, p.churn, next)
	}

	out := cmd.OutOrStdout()
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	success(out, "%d checks of %d items in %s", p.rounds, p.size, elapsed.Round(time.Microsecond))
	if elapsed > 0 {
		info(out, "%.0f checks/sec", float64(p.rounds)/elapsed.Seconds())
	}
	for _, kind := range []string{middleware.KindAdded, middleware.KindMoved, middleware.KindRemoved, middleware.KindIdentity} {
		info(out, "%-9s %.0f", kind, counterValue(families, "iterdiff_changes_total", "kind", kind))
	}
	return nil
}

func benchItems(rng *rand.Rand, n int, dupRate float64) []string {
	items := make([]string, n)
	for i := range items {
		if i > 0 && rng.Float64() < dupRate {
			items[i] = items[rng.IntN(i)]
			continue
		}
		items[i] = "item-" + strconv.Itoa(i)
	}
	return items
}

// mutate returns a changed copy of items. next numbers new items.
func mutate(rng *rand.Rand, items []string, churn float64, next int) ([]string, int) {
	out := make([]string, len(items))
	copy(out, items)
	n := max(1, int(float64(len(out))*churn))
	for range n {
		if len(out) == 0 {
			break
		}
		switch rng.IntN(3) {
		case 0:
			i, j := rng.IntN(len(out)), rng.IntN(len(out))
			out[i], out[j] = out[j], out[i]
		case 1:
			i := rng.IntN(len(out) + 1)
			out = append(out[:i], append([]string{"item-" + strconv.Itoa(next)}, out[i:]...)...)
			next++
		default:
			i := rng.IntN(len(out))
			out = append(out[:i], out[i+1:]...)
		}
	}
	return out, next
}

func counterValue(families []*dto.MetricFamily, name, label, value string) float64 {
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
