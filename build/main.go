package main

import (
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"
)

func run(a *goyek.A, name string, args ...string) {
	a.Helper()
	a.Logf("Run %s %v", name, args)
	cmd := exec.CommandContext(a.Context(), name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		a.Error(err)
	}
}

var vet = goyek.Define(goyek.Task{
	Name:  "vet",
	Usage: "Run go vet on all packages",
	Action: func(a *goyek.A) {
		run(a, "go", "vet", "./...")
	},
})

var test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run the tests with the race detector",
	Action: func(a *goyek.A) {
		run(a, "go", "test", "-race", "./...")
	},
})

var experiments = goyek.Define(goyek.Task{
	Name:  "experiments",
	Usage: "Regenerate the sample experiment files",
	Action: func(a *goyek.A) {
		run(a, "go", "run", "./cmd/gen-experiment", "examples/experiments")
	},
})

var validate = goyek.Define(goyek.Task{
	Name:  "validate",
	Usage: "Validate the bundled experiments",
	Action: func(a *goyek.A) {
		for _, f := range []string{"demo.yaml", "demo.toml", "demo.json"} {
			run(a, "go", "run", "./cmd/occlusion", "validate", "examples/experiments/"+f)
		}
	},
})

var _ = goyek.Define(goyek.Task{
	Name:  "all",
	Usage: "Run vet, test and validate",
	Deps:  goyek.Deps{vet, test, validate},
})

func main() {
	goyek.Main(os.Args[1:])
}
