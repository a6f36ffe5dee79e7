/*
Package ports defines the driven ports (interfaces) of the occlusion runtime.

These interfaces decouple the trial state machine from rendering backends,
time sources and result storage, so a trial can run on a terminal, headless in
a simulation, or inside tests with a virtual clock.

# Key Interfaces

  - Surface / Sprite: The minimal drawing capability a trial needs.
  - Clock: Provides time and cancellable waits.
  - Block: The host side of a running trial (index, data sink, advancement).
  - Plugin: A trial type (create configs from params, run one trial).
  - ResultStore: Persists result records per session.
  - DistributedLocker: Coordinates session access across replicas.
*/
package ports
