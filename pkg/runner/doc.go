/*
Package runner is the experiment host: it plays an ordered list of trials on one drawing surface.

For each trial the runner looks up the plugin for the trial type, hands it a block carrying the trial
index, stores whatever the trial writes under the session ID and checks that the trial signalled Next
before moving on.

# Usage

	reg := registry.NewRegistry(occlusion.New())
	r := runner.NewRunner(reg,
		runner.WithSessionID("participant-07"),
		runner.WithStore(file.NewStore("./results")),
	)

	trials, err := r.Expand(params)
	if err != nil {
		log.Fatal(err)
	}

	report, err := r.Run(ctx, surface, trials)
*/
package runner
