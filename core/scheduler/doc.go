package scheduler

// Package scheduler implements the energy-dispatch planner for a
// solar-battery-grid-generator microgrid. Given a generation forecast and a
// device catalog it runs a greedy forward simulation, one slot at a time,
// balancing the selected load against supply across the battery, the grid
// and the backup generator. Plans can be persisted, exported or published
// by the surrounding layers.
