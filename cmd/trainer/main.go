// Command trainer fits the burnout regression forest on synthetic
// study-session data and writes the model artifact the server loads.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/yourname/studyhabits/internal/predict"
)

func main() {
	var (
		samples = flag.Int("samples", 15000, "synthetic training samples to generate")
		trees   = flag.Int("trees", 200, "trees in the forest")
		depth   = flag.Int("depth", 5, "maximum tree depth")
		minLeaf = flag.Int("min-leaf", 5, "minimum samples per leaf")
		seed    = flag.Int64("seed", 42, "rng seed")
		out     = flag.String("out", "data/burnout_model.json", "artifact output path")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	data := predict.GenerateTrainingData(*samples, rng)

	split := len(data) * 8 / 10
	train, test := data[:split], data[split:]

	cfg := predict.TrainConfig{Trees: *trees, MaxDepth: *depth, MinLeaf: *minLeaf}
	model := predict.TrainForest(train, cfg, rng)

	mse, r2 := predict.Evaluate(model, test)
	fmt.Printf("trained %d trees on %d samples\n", *trees, len(train))
	fmt.Printf("holdout MSE: %.2f  R2: %.3f\n", mse, r2)

	if err := model.Save(*out); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}
	fmt.Printf("model written to %s\n", *out)
}
