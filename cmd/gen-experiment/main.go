package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/occlusion/internal/config"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/dsl"
	"gopkg.in/yaml.v3"
)

var shapes = []string{"circle", "square", "triangle", "star", "cross", "diamond"}

func main() {
	targetDir := "examples/experiments"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}
	blocks := 4
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		check(err)
		blocks = n
	}

	// Ensure dir exists
	check(os.MkdirAll(targetDir, 0755))
	fmt.Printf("Generating counterbalanced experiment in: %s\n", targetDir)

	exp := generate(blocks, rand.New(rand.NewPCG(1, 2)))

	var yamlBuf bytes.Buffer
	enc := yaml.NewEncoder(&yamlBuf)
	enc.SetIndent(2)
	check(enc.Encode(exp))
	write(targetDir, "pilot.yaml", yamlBuf.Bytes())

	var tomlBuf bytes.Buffer
	check(toml.NewEncoder(&tomlBuf).Encode(exp))
	write(targetDir, "pilot.toml", tomlBuf.Bytes())

	jsonData, err := json.MarshalIndent(exp, "", "  ")
	check(err)
	write(targetDir, "pilot.json", append(jsonData, '\n'))
}

// generate builds one trial per block. Every block shows each shape once in a
// shuffled order; the first movement alternates so both directions are balanced.
func generate(blocks int, rng *rand.Rand) config.Experiment {
	b := dsl.New().
		Default("timing_cycle", domain.DefaultTimingCycle).
		Default("canvas_size", []int{400, 400}).
		Counterbalance()

	for block := 0; block < blocks; block++ {
		stimuli := make([]string, len(shapes))
		for i, j := range rng.Perm(len(shapes)) {
			stimuli[i] = path.Join("img", shapes[j]+".png")
		}
		b.Trial().Stimuli(stimuli...).Data("block", block)
	}

	return config.Experiment{
		Name:        "pilot",
		Description: fmt.Sprintf("%d counterbalanced blocks of %d shapes.", blocks, len(shapes)),
		Trials:      b.Build(),
	}
}

func write(dir, name string, data []byte) {
	target := filepath.Join(dir, name)
	check(os.WriteFile(target, data, 0644))
	fmt.Printf("  wrote %s\n", target)
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
