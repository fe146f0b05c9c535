package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gosuri/uiprogress"
	"gonum.org/v1/gonum/floats"

	"landmorph/erosion"
	"landmorph/generators"
)

func main() {
	res := flag.Int("res", 129, "grid resolution (2^n + 1 for midpoint displacement)")
	seed := flag.Int64("seed", 1337, "seed for terrain generation and erosion")
	iters := flag.Int("iters", 128, "basic-model iterations")
	mode := flag.String("mode", "basic", "erosion pipeline: basic or advanced")
	years := flag.Float64("years", 10000, "advanced-model simulated years")
	step := flag.Float64("step", 100, "advanced-model time step in years")
	worldSize := flag.Float64("world", 5000, "real-world extent in metres (advanced model)")
	flag.Parse()

	gen, err := generators.NewMidpointDisplacement(*res, *seed)
	if err != nil {
		log.Fatal(err)
	}
	gen.Generate(0.5, 0.5)
	heights := gen.Grid().Heights()
	printStats("initial", heights)

	cfg := erosion.DefaultConfig()
	cfg.Iterations = *iters
	cfg.Seed = *seed
	engine, err := erosion.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(100).AppendCompleted().PrependElapsed()
	stage := "starting"
	bar.PrependFunc(func(b *uiprogress.Bar) string { return fmt.Sprintf("%-22s", stage) })
	engine.SetProgressFunc(func(progress float64, s string) {
		stage = s
		bar.Set(int(progress * 100))
	})

	var result []float64
	switch *mode {
	case "basic":
		if err := engine.SetHeightData(heights, *res); err != nil {
			log.Fatal(err)
		}
		result, err = engine.ApplyErosion()
	case "advanced":
		adv := erosion.DefaultAdvancedConfig()
		adv.TotalTime = *years
		adv.TimeStep = *step
		if err := engine.SetAdvancedConfig(adv); err != nil {
			log.Fatal(err)
		}
		if err := engine.SetHeightDataWithWorldSize(heights, *res, *worldSize); err != nil {
			log.Fatal(err)
		}
		result, err = engine.ApplyAdvancedErosion()
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
	uiprogress.Stop()
	if err != nil {
		log.Fatal(err)
	}

	printStats("eroded", result)
	if *mode == "advanced" {
		r := engine.Results()
		fmt.Printf("evolved %.0f years, %d river paths, %d knickpoints\n",
			r.TimeEvolved, len(r.RiverNetwork), len(r.Knickpoints))
	}
}

func printStats(label string, samples []float64) {
	mean := floats.Sum(samples) / float64(len(samples))
	fmt.Printf("%s: min %.4f max %.4f mean %.4f\n",
		label, floats.Min(samples), floats.Max(samples), mean)
}
